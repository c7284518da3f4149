package config

import (
	"strings"
)

// 默认值常量
const (
	defaultAppEnv            = "dev"
	defaultAppLogLevel       = "info"
	defaultAppLogFormat      = "text"
	defaultAppHTTPAddr       = ":9992"
	defaultLocale            = "en"
	defaultSignificantDigits = 3
	defaultBarTextDecimals   = 2
	defaultTooltipDecimals   = 3
	defaultRenderTheme       = "white"
	defaultRenderWidth       = 900
	defaultRenderHeight      = 400
	defaultPrimaryColor      = "#4472C4"
	defaultSnapshotTimeout   = 20
	defaultBreakerThreshold  = 3
	defaultBreakerCooldown   = 30
)

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults(nil)
	return cfg
}

// applyDefaults 为所有子配置应用默认值。
func (c *Config) applyDefaults(keys keySet) {
	c.App.applyDefaults(keys)
	c.Locale.applyDefaults(keys)
	c.Format.applyDefaults(keys)
	c.Render.applyDefaults(keys)
}

func (a *AppConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("app.env", &a.Env, defaultAppEnv),
		stringFieldDefault("app.log_level", &a.LogLevel, defaultAppLogLevel),
		stringFieldDefault("app.log_format", &a.LogFormat, defaultAppLogFormat),
		stringFieldDefault("app.http_addr", &a.HTTPAddr, defaultAppHTTPAddr),
	)
}

func (l *LocaleConfig) applyDefaults(keys keySet) {
	if l == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("locale.default", &l.Default, defaultLocale),
	)
}

func (f *FormatConfig) applyDefaults(keys keySet) {
	if f == nil {
		return
	}
	applyFieldDefaults(keys,
		intFieldDefault("format.default_significant_digits", &f.DefaultSignificantDigits, defaultSignificantDigits),
		intFieldDefault("format.bar_text_decimals", &f.BarTextDecimals, defaultBarTextDecimals),
		intFieldDefault("format.tooltip_decimals", &f.TooltipDecimals, defaultTooltipDecimals),
	)
}

func (r *RenderConfig) applyDefaults(keys keySet) {
	if r == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("render.theme", &r.Theme, defaultRenderTheme),
		intFieldDefault("render.width_px", &r.WidthPx, defaultRenderWidth),
		intFieldDefault("render.height_px", &r.HeightPx, defaultRenderHeight),
		stringFieldDefault("render.primary_color", &r.PrimaryColor, defaultPrimaryColor),
		intFieldDefault("render.snapshot.timeout_seconds", &r.Snapshot.TimeoutSeconds, defaultSnapshotTimeout),
		intFieldDefault("render.snapshot.failure_threshold", &r.Snapshot.FailureThreshold, defaultBreakerThreshold),
		intFieldDefault("render.snapshot.cooldown_seconds", &r.Snapshot.CooldownSeconds, defaultBreakerCooldown),
	)
	// area_height_px stays 0 unless set: the panel then uses height_px.
	r.Theme = strings.ToLower(strings.TrimSpace(r.Theme))
}

// Helper functions

func applyFieldDefaults(keys keySet, defs ...fieldDefault) {
	for _, def := range defs {
		if def.apply == nil {
			continue
		}
		if def.key != "" && keys.isSet(def.key) {
			continue
		}
		if def.need != nil && !def.need() {
			continue
		}
		def.apply()
	}
}

func stringFieldDefault(key string, target *string, def string) fieldDefault {
	return fieldDefault{
		key: key,
		need: func() bool {
			return target != nil && strings.TrimSpace(*target) == ""
		},
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

func intFieldDefault(key string, target *int, def int) fieldDefault {
	return fieldDefault{
		key:  key,
		need: func() bool { return target != nil && *target <= 0 },
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}
