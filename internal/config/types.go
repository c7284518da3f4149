package config

import (
	"strings"
	"time"
)

// Config 是 fairdash 的主配置载体。
type Config struct {
	App    AppConfig    `toml:"app"`
	Locale LocaleConfig `toml:"locale"`
	Format FormatConfig `toml:"format"`
	Render RenderConfig `toml:"render"`
}

type AppConfig struct {
	Env       string `toml:"env"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	LogPath   string `toml:"log_path"`
	HTTPAddr  string `toml:"http_addr"`
}

// LocaleConfig 控制字符串表：默认语言、可选覆盖文件与热加载。
type LocaleConfig struct {
	Default     string `toml:"default"`
	StringsPath string `toml:"strings_path"`
	Watch       bool   `toml:"watch"`
}

// FormatConfig holds display precision for outcome values.
type FormatConfig struct {
	DefaultSignificantDigits int `toml:"default_significant_digits"`
	BarTextDecimals          int `toml:"bar_text_decimals"`
	TooltipDecimals          int `toml:"tooltip_decimals"`
}

type RenderConfig struct {
	Theme           string         `toml:"theme"`
	WidthPx         int            `toml:"width_px"`
	HeightPx        int            `toml:"height_px"`
	AreaHeightPx    int            `toml:"area_height_px"`
	PrimaryColor    string         `toml:"primary_color"`
	BackgroundColor string         `toml:"background_color"`
	AssetsHost      string         `toml:"assets_host"`
	Snapshot        SnapshotConfig `toml:"snapshot"`
}

type SnapshotConfig struct {
	Enabled          bool `toml:"enabled"`
	TimeoutSeconds   int  `toml:"timeout_seconds"`
	FailureThreshold int  `toml:"failure_threshold"` // 连续失败多少次后熔断
	CooldownSeconds  int  `toml:"cooldown_seconds"`  // 熔断后多久再试探
}

// Timeout returns the capture timeout as a duration.
func (s SnapshotConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

func (s SnapshotConfig) Cooldown() time.Duration {
	return time.Duration(s.CooldownSeconds) * time.Second
}

// keySet 用于追踪配置文件中显式设置的字段路径。
type keySet map[string]struct{}

func (k keySet) mark(path string) {
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return
	}
	k[path] = struct{}{}
}

func (k keySet) isSet(path string) bool {
	if len(k) == 0 {
		return false
	}
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return false
	}
	_, ok := k[path]
	return ok
}

// fieldDefault 描述单个字段的默认值设置规则。
type fieldDefault struct {
	key   string
	need  func() bool
	apply func()
}
