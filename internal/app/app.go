package app

import (
	"context"
	"fmt"

	"fairdash/internal/config"
	"fairdash/internal/logger"
	outcomehttp "fairdash/internal/transport/http/outcome"

	"golang.org/x/sync/errgroup"
)

// App 负责应用级编排：加载配置→初始化依赖→启动 HTTP 服务。
type App struct {
	cfg     *config.Config
	toolkit *Toolkit
	http    *outcomehttp.Server
	Summary *StartupSummary
}

// NewApp 根据配置构建应用对象（不启动）
func NewApp(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	return buildAppWithWire(context.Background(), cfg)
}

// NewToolkit builds the panel components without the HTTP server.
func NewToolkit(cfg *config.Config) (*Toolkit, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	return buildToolkitWithWire(cfg)
}

// Run 启动 HTTP 服务，直到 ctx 取消。
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	if a.Summary != nil {
		a.Summary.Print()
	}
	if a.http == nil {
		return fmt.Errorf("http server not initialized")
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := a.http.Start(ctx); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})
	return group.Wait()
}

// Toolkit exposes the panel components (for tests and the CLI).
func (a *App) Toolkit() *Toolkit {
	if a == nil {
		return nil
	}
	return a.toolkit
}

// Server exposes the HTTP server.
func (a *App) Server() *outcomehttp.Server {
	if a == nil {
		return nil
	}
	return a.http
}
