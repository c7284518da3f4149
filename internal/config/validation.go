package config

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/language"
)

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// validate 对配置进行基础校验。
func validate(c *Config) error {
	if err := c.App.validate(); err != nil {
		return err
	}
	if err := c.Locale.validate(); err != nil {
		return err
	}
	if err := c.Format.validate(); err != nil {
		return err
	}
	if err := c.Render.validate(); err != nil {
		return err
	}
	return nil
}

func (a *AppConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(a.LogLevel)) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("app.log_level must be one of debug/info/warn/error, got %q", a.LogLevel)
	}
	switch strings.ToLower(strings.TrimSpace(a.LogFormat)) {
	case "text", "json":
	default:
		return fmt.Errorf("app.log_format must be text or json, got %q", a.LogFormat)
	}
	if strings.TrimSpace(a.HTTPAddr) == "" {
		return fmt.Errorf("app.http_addr cannot be empty")
	}
	return nil
}

func (l *LocaleConfig) validate() error {
	if _, err := language.Parse(strings.TrimSpace(l.Default)); err != nil {
		return fmt.Errorf("locale.default is not a valid language tag (%s): %w", l.Default, err)
	}
	if l.Watch && strings.TrimSpace(l.StringsPath) == "" {
		return fmt.Errorf("locale.watch requires locale.strings_path")
	}
	return nil
}

func (f *FormatConfig) validate() error {
	if f.DefaultSignificantDigits < 1 || f.DefaultSignificantDigits > 15 {
		return fmt.Errorf("format.default_significant_digits must be within [1,15]")
	}
	if f.BarTextDecimals < 0 || f.BarTextDecimals > 10 {
		return fmt.Errorf("format.bar_text_decimals must be within [0,10]")
	}
	if f.TooltipDecimals < 0 || f.TooltipDecimals > 10 {
		return fmt.Errorf("format.tooltip_decimals must be within [0,10]")
	}
	return nil
}

func (r *RenderConfig) validate() error {
	if r.WidthPx <= 0 || r.HeightPx <= 0 {
		return fmt.Errorf("render.width_px and render.height_px must be > 0")
	}
	if r.AreaHeightPx < 0 {
		return fmt.Errorf("render.area_height_px must be >= 0")
	}
	if c := strings.TrimSpace(r.PrimaryColor); c != "" && !hexColor.MatchString(c) {
		return fmt.Errorf("render.primary_color must be a hex colour, got %q", r.PrimaryColor)
	}
	if r.Snapshot.Enabled && r.Snapshot.TimeoutSeconds <= 0 {
		return fmt.Errorf("render.snapshot.timeout_seconds must be > 0 when snapshots are enabled")
	}
	if r.Snapshot.FailureThreshold < 0 || r.Snapshot.CooldownSeconds < 0 {
		return fmt.Errorf("render.snapshot failure_threshold and cooldown_seconds must be >= 0")
	}
	return nil
}
