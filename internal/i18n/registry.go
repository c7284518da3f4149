// Package i18n serves the dashboard's localized strings.
package i18n

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"fairdash/internal/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed strings/*.yaml
var builtin embed.FS

// Snapshot 是某一时刻已加载字符串表的公开视图。
type Snapshot struct {
	Version   int64
	LoadedAt  time.Time
	Languages []string
}

// ChangeListener 在覆盖文件重载后触发。
type ChangeListener func(Snapshot)

// Options configure a Registry.
type Options struct {
	DefaultLanguage string
	// OverridePath is an optional YAML file keyed by language whose entries
	// replace or extend the built-in tables.
	OverridePath string
	Watch        bool
}

// Registry 管理所有语言的字符串表，并在覆盖文件变化时热加载。
type Registry struct {
	defaultTag language.Tag
	path       string
	v          *viper.Viper

	mu        sync.RWMutex
	version   int64
	loadedAt  time.Time
	tables    map[string]*Table
	tags      []language.Tag
	matcher   language.Matcher
	listeners []ChangeListener
}

// NewRegistry loads the built-in tables plus the optional override file.
func NewRegistry(opts Options) (*Registry, error) {
	def := strings.TrimSpace(opts.DefaultLanguage)
	if def == "" {
		def = "en"
	}
	tag, err := language.Parse(def)
	if err != nil {
		return nil, fmt.Errorf("i18n: invalid default language %q: %w", def, err)
	}
	r := &Registry{defaultTag: tag, path: strings.TrimSpace(opts.OverridePath)}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	if r.path != "" && opts.Watch {
		v := viper.New()
		v.SetConfigFile(r.path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("i18n: read override file failed: %w", err)
		}
		v.OnConfigChange(func(evt fsnotify.Event) {
			if err := r.Reload(); err != nil {
				logger.Errorf("i18n reload failed (%s): %v", evt.Name, err)
				return
			}
			r.notifyListeners()
		})
		v.WatchConfig()
		r.v = v
	}
	return r, nil
}

// Reload rebuilds every table from the embedded files and the override file.
func (r *Registry) Reload() error {
	raw, err := loadBuiltin()
	if err != nil {
		return err
	}
	if r.path != "" {
		overrides, err := readOverrideFile(r.path)
		if err != nil {
			return err
		}
		for lang, entries := range overrides {
			if raw[lang] == nil {
				raw[lang] = map[string]string{}
			}
			for k, v := range entries {
				raw[lang][k] = v
			}
		}
	}
	tables, tags, err := buildTables(r.defaultTag, raw)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.tables = tables
	r.tags = tags
	r.matcher = language.NewMatcher(tags)
	r.version++
	r.loadedAt = time.Now()
	r.mu.Unlock()
	logger.Infof("i18n registry loaded %d languages (default=%s)", len(tags), r.defaultTag)
	return nil
}

// Localizer returns the best table for lang, which may be a single tag
// ("zh-CN") or an Accept-Language header value. Empty or unparsable input
// yields the default language.
func (r *Registry) Localizer(lang string) *Table {
	r.mu.RLock()
	defer r.mu.RUnlock()
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return r.tables[r.tags[0].String()]
	}
	desired, _, err := language.ParseAcceptLanguage(lang)
	if err != nil || len(desired) == 0 {
		return r.tables[r.tags[0].String()]
	}
	_, idx, _ := r.matcher.Match(desired...)
	if idx < 0 || idx >= len(r.tags) {
		return r.tables[r.tags[0].String()]
	}
	return r.tables[r.tags[idx].String()]
}

// Default returns the default language table.
func (r *Registry) Default() *Table {
	return r.Localizer("")
}

// Snapshot 返回当前加载状态。
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	langs := make([]string, len(r.tags))
	for i, t := range r.tags {
		langs[i] = t.String()
	}
	return Snapshot{Version: r.version, LoadedAt: r.loadedAt, Languages: langs}
}

// OnChange registers fn to run after every successful hot reload.
func (r *Registry) OnChange(fn ChangeListener) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	r.listeners = append(r.listeners, fn)
	r.mu.Unlock()
}

func (r *Registry) notifyListeners() {
	snap := r.Snapshot()
	r.mu.RLock()
	listeners := append([]ChangeListener(nil), r.listeners...)
	r.mu.RUnlock()
	for _, fn := range listeners {
		go func(cb ChangeListener) {
			defer safeRecover("i18n listener")
			cb(snap)
		}(fn)
	}
}

func safeRecover(tag string) {
	if rec := recover(); rec != nil {
		logger.Errorf("%s panic: %v", tag, rec)
	}
}

func loadBuiltin() (map[string]map[string]string, error) {
	files, err := builtin.ReadDir("strings")
	if err != nil {
		return nil, fmt.Errorf("i18n: list built-in tables: %w", err)
	}
	out := make(map[string]map[string]string, len(files))
	for _, f := range files {
		name := f.Name()
		if f.IsDir() || filepath.Ext(name) != ".yaml" {
			continue
		}
		data, err := builtin.ReadFile(path.Join("strings", name))
		if err != nil {
			return nil, err
		}
		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("i18n: parse %s: %w", name, err)
		}
		entries := make(map[string]string)
		flatten("", doc, entries)
		out[strings.TrimSuffix(name, ".yaml")] = entries
	}
	return out, nil
}

// readOverrideFile 解析形如 {en: {Fairness: {...}}, zh: {...}} 的覆盖文件。
func readOverrideFile(p string) (map[string]map[string]string, error) {
	raw, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("i18n: read override file failed: %w", err)
	}
	var doc map[string]any
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("i18n: parse override file failed: %w", err)
	}
	out := make(map[string]map[string]string, len(doc))
	for lang, node := range doc {
		entries := make(map[string]string)
		flatten("", node, entries)
		out[strings.TrimSpace(lang)] = entries
	}
	return out, nil
}

// buildTables orders tags with the default first so the matcher falls back
// to it.
func buildTables(def language.Tag, raw map[string]map[string]string) (map[string]*Table, []language.Tag, error) {
	byTag := make(map[string]map[string]string, len(raw))
	parsed := make(map[string]language.Tag, len(raw))
	for name, entries := range raw {
		tag, err := language.Parse(name)
		if err != nil {
			return nil, nil, fmt.Errorf("i18n: invalid language %q: %w", name, err)
		}
		byTag[tag.String()] = entries
		parsed[tag.String()] = tag
	}
	defEntries, ok := byTag[def.String()]
	if !ok {
		return nil, nil, fmt.Errorf("i18n: no string table for default language %s", def)
	}
	root := newTable(def, defEntries, nil)
	tables := map[string]*Table{def.String(): root}
	tags := []language.Tag{def}
	others := make([]string, 0, len(byTag))
	for name := range byTag {
		if name != def.String() {
			others = append(others, name)
		}
	}
	sort.Strings(others)
	for _, name := range others {
		tag := parsed[name]
		tables[name] = newTable(tag, byTag[name], root)
		tags = append(tags, tag)
	}
	return tables, tags, nil
}
