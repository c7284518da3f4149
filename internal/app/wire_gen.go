//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject

package app

import (
	"context"
	"fairdash/internal/config"
)

func buildAppWithWire(ctx context.Context, cfg *config.Config) (*App, error) {
	appBuilder := provideAppBuilder(cfg)
	app, err := provideAppFromBuilder(appBuilder, ctx)
	if err != nil {
		return nil, err
	}
	return app, nil
}

func buildToolkitWithWire(cfg *config.Config) (*Toolkit, error) {
	appBuilder := provideAppBuilder(cfg)
	toolkit, err := provideToolkitFromBuilder(appBuilder)
	if err != nil {
		return nil, err
	}
	return toolkit, nil
}
