//go:build wireinject

package app

import (
	"context"

	"fairdash/internal/config"

	"github.com/google/wire"
)

var builderSet = wire.NewSet(
	provideAppBuilder,
	wire.Bind(new(appBuilderDeps), new(*AppBuilder)),
)

func buildAppWithWire(ctx context.Context, cfg *config.Config) (*App, error) {
	wire.Build(builderSet, provideAppFromBuilder)
	return nil, nil
}

func buildToolkitWithWire(cfg *config.Config) (*Toolkit, error) {
	wire.Build(builderSet, provideToolkitFromBuilder)
	return nil, nil
}
