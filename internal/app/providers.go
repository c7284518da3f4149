package app

import (
	"context"

	"fairdash/internal/config"
)

type appBuilderDeps interface {
	Build(context.Context) (*App, error)
	BuildToolkit() (*Toolkit, error)
}

func provideAppFromBuilder(b appBuilderDeps, ctx context.Context) (*App, error) {
	return b.Build(ctx)
}

func provideToolkitFromBuilder(b appBuilderDeps) (*Toolkit, error) {
	return b.BuildToolkit()
}

func provideAppBuilder(cfg *config.Config) *AppBuilder {
	return NewAppBuilder(cfg)
}
