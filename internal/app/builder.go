package app

import (
	"context"
	"fmt"

	"fairdash/internal/config"
	"fairdash/internal/fairness"
	"fairdash/internal/i18n"
	"fairdash/internal/logger"
	"fairdash/internal/metrics"
	"fairdash/internal/outcome"
	"fairdash/internal/render"
	outcomehttp "fairdash/internal/transport/http/outcome"
)

// Toolkit 聚合面板构建与渲染所需的全部组件，HTTP 服务与 CLI 共用。
type Toolkit struct {
	Config      *config.Config
	Strings     *i18n.Registry
	Catalog     *metrics.Registry
	Formatter   *metrics.Formatter
	Decoder     *fairness.Decoder
	Service     *outcome.Service
	Renderer    *render.Renderer
	Snapshotter *render.Snapshotter
}

// Labels resolves the string table for a locale or Accept-Language value.
func (t *Toolkit) Labels(lang string) outcome.Localizer {
	return t.Strings.Localizer(lang)
}

type AppBuilder struct {
	cfg *config.Config

	stringsFn func(config.LocaleConfig) (*i18n.Registry, error)
	decoderFn func() (*fairness.Decoder, error)
	httpFn    func(config.AppConfig, *outcomehttp.Router) (*outcomehttp.Server, error)
}

type AppBuilderOption func(*AppBuilder)

// WithStrings replaces the string registry constructor.
func WithStrings(fn func(config.LocaleConfig) (*i18n.Registry, error)) AppBuilderOption {
	return func(b *AppBuilder) {
		if fn != nil {
			b.stringsFn = fn
		}
	}
}

// WithHTTPServer replaces the HTTP server constructor.
func WithHTTPServer(fn func(config.AppConfig, *outcomehttp.Router) (*outcomehttp.Server, error)) AppBuilderOption {
	return func(b *AppBuilder) {
		if fn != nil {
			b.httpFn = fn
		}
	}
}

func NewAppBuilder(cfg *config.Config, opts ...AppBuilderOption) *AppBuilder {
	b := &AppBuilder{
		cfg:       cfg,
		stringsFn: loadStrings,
		decoderFn: fairness.NewDecoder,
		httpFn:    buildHTTPServer,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func loadStrings(cfg config.LocaleConfig) (*i18n.Registry, error) {
	reg, err := i18n.NewRegistry(i18n.Options{
		DefaultLanguage: cfg.Default,
		OverridePath:    cfg.StringsPath,
		Watch:           cfg.Watch,
	})
	if err != nil {
		return nil, fmt.Errorf("加载字符串表失败: %w", err)
	}
	return reg, nil
}

func buildHTTPServer(cfg config.AppConfig, router *outcomehttp.Router) (*outcomehttp.Server, error) {
	server, err := outcomehttp.NewServer(outcomehttp.ServerConfig{
		Addr:   cfg.HTTPAddr,
		Router: router,
	})
	if err != nil {
		return nil, fmt.Errorf("初始化 HTTP 服务失败: %w", err)
	}
	logger.Infof("✓ HTTP 接口监听 %s", server.Addr())
	return server, nil
}

// BuildToolkit 按配置装配字符串表、指标目录、格式化器、解码器与渲染器。
func (b *AppBuilder) BuildToolkit() (*Toolkit, error) {
	if b.cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	cfg := b.cfg

	strs, err := b.stringsFn(cfg.Locale)
	if err != nil {
		return nil, err
	}
	snap := strs.Snapshot()
	logger.Infof("✓ 已加载 %d 种语言: %v", len(snap.Languages), snap.Languages)

	dec, err := b.decoderFn()
	if err != nil {
		return nil, fmt.Errorf("初始化请求解码器失败: %w", err)
	}

	tk := &Toolkit{
		Config:  cfg,
		Strings: strs,
		Catalog: metrics.DefaultRegistry(),
		Decoder: dec,
	}
	tk.Formatter = metrics.NewFormatter(tk.Catalog, cfg.Format.DefaultSignificantDigits)
	tk.Service = outcome.NewService(tk.Formatter, tk.Catalog, tk.Labels, outcome.Options{
		BarTextDecimals: cfg.Format.BarTextDecimals,
		TooltipDecimals: cfg.Format.TooltipDecimals,
		PrimaryColor:    cfg.Render.PrimaryColor,
		AreaHeight:      cfg.Render.AreaHeightPx,
	})
	tk.Renderer = render.NewRenderer(render.Options{
		Theme:           cfg.Render.Theme,
		WidthPx:         cfg.Render.WidthPx,
		HeightPx:        cfg.Render.HeightPx,
		BackgroundColor: cfg.Render.BackgroundColor,
		AssetsHost:      cfg.Render.AssetsHost,
	}, tk.Labels)
	tk.Snapshotter = render.NewSnapshotter(tk.Renderer, render.SnapshotOptions{
		Enabled:          cfg.Render.Snapshot.Enabled,
		Timeout:          cfg.Render.Snapshot.Timeout(),
		FailureThreshold: cfg.Render.Snapshot.FailureThreshold,
		Cooldown:         cfg.Render.Snapshot.Cooldown(),
	})
	logger.Infof("✓ 指标目录 %d 项，有效数字 %d 位", len(tk.Catalog.List()), cfg.Format.DefaultSignificantDigits)
	return tk, nil
}

func (b *AppBuilder) Build(ctx context.Context) (*App, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	tk, err := b.BuildToolkit()
	if err != nil {
		return nil, err
	}
	if tk.Snapshotter.Enabled() {
		if err := tk.Snapshotter.EnsureHeadlessAvailable(ctx); err != nil {
			logger.Warnf("PNG 快照不可用，请求将返回错误: %v", err)
		}
	}

	router := &outcomehttp.Router{
		Decoder:     tk.Decoder,
		Service:     tk.Service,
		Renderer:    tk.Renderer,
		Snapshotter: tk.Snapshotter,
		Catalog:     tk.Catalog,
		Labels:      tk.Labels,
	}
	server, err := b.httpFn(b.cfg.App, router)
	if err != nil {
		return nil, err
	}

	tk.Strings.OnChange(func(s i18n.Snapshot) {
		logger.Infof("字符串表已重载 (version=%d, languages=%v)", s.Version, s.Languages)
	})

	return &App{
		cfg:     b.cfg,
		toolkit: tk,
		http:    server,
		Summary: newStartupSummary(b.cfg, tk, server),
	}, nil
}
