package app

import (
	"fmt"
	"io"
	"os"
	"strings"

	"fairdash/internal/config"
	"fairdash/internal/metrics"
	outcomehttp "fairdash/internal/transport/http/outcome"
)

type StartupSummary struct {
	Env      string
	HTTPAddr string
	Locale   LocaleSummary
	Format   config.FormatConfig
	Render   RenderSummary
	Metrics  []string
}

type LocaleSummary struct {
	Default     string
	Languages   []string
	StringsPath string
	Watch       bool
}

type RenderSummary struct {
	Theme           string
	WidthPx         int
	HeightPx        int
	PrimaryColor    string
	SnapshotEnabled bool
	SnapshotTimeout string
}

func newStartupSummary(cfg *config.Config, tk *Toolkit, server *outcomehttp.Server) *StartupSummary {
	s := &StartupSummary{
		Env:    cfg.App.Env,
		Format: cfg.Format,
		Locale: LocaleSummary{
			Default:     cfg.Locale.Default,
			Languages:   tk.Strings.Snapshot().Languages,
			StringsPath: cfg.Locale.StringsPath,
			Watch:       cfg.Locale.Watch,
		},
		Render: RenderSummary{
			Theme:           cfg.Render.Theme,
			WidthPx:         cfg.Render.WidthPx,
			HeightPx:        cfg.Render.HeightPx,
			PrimaryColor:    cfg.Render.PrimaryColor,
			SnapshotEnabled: tk.Snapshotter.Enabled(),
			SnapshotTimeout: cfg.Render.Snapshot.Timeout().String(),
		},
		Metrics: metricKeys(tk.Catalog),
	}
	if server != nil {
		s.HTTPAddr = server.Addr()
	}
	return s
}

func metricKeys(reg *metrics.Registry) []string {
	opts := reg.List()
	keys := make([]string, 0, len(opts))
	for _, o := range opts {
		keys = append(keys, o.Key)
	}
	return keys
}

func (s *StartupSummary) Print() {
	s.Fprint(os.Stdout)
}

// Fprint 输出启动摘要。
func (s *StartupSummary) Fprint(w io.Writer) {
	title := "启动配置摘要 (STARTUP SUMMARY)"
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintf(w, "%*s\n", 40+len(title)/2, title)
	fmt.Fprintln(w, strings.Repeat("=", 80))

	fmt.Fprintln(w, "[服务 (SERVICE)]")
	fmt.Fprintf(w, "  运行环境: %s\n", orDash(s.Env))
	fmt.Fprintf(w, "  监听地址: %s\n", orDash(s.HTTPAddr))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[语言 (LOCALES)]")
	fmt.Fprintf(w, "  默认语言: %s\n", orDash(s.Locale.Default))
	fmt.Fprintf(w, "  已加载: %s\n", formatList(s.Locale.Languages))
	fmt.Fprintf(w, "  覆盖文件: %s (热加载=%t)\n", orDash(s.Locale.StringsPath), s.Locale.Watch)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[数字格式 (NUMBER FORMAT)]")
	fmt.Fprintf(w, "  有效数字: %d\n", s.Format.DefaultSignificantDigits)
	fmt.Fprintf(w, "  柱状图标签小数位: %d\n", s.Format.BarTextDecimals)
	fmt.Fprintf(w, "  提示框小数位: %d\n", s.Format.TooltipDecimals)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[图表 (CHARTS)]")
	fmt.Fprintf(w, "  主题: %s  尺寸: %dx%d  主色: %s\n", orDash(s.Render.Theme), s.Render.WidthPx, s.Render.HeightPx, orDash(s.Render.PrimaryColor))
	if s.Render.SnapshotEnabled {
		fmt.Fprintf(w, "  PNG 快照: 启用 (超时 %s)\n", s.Render.SnapshotTimeout)
	} else {
		fmt.Fprintln(w, "  PNG 快照: 关闭")
	}
	fmt.Fprintf(w, "  指标: %s\n", formatList(s.Metrics))
	fmt.Fprintln(w, strings.Repeat("=", 80))
}

func formatList(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
