package i18n

import (
	"fmt"
	"strconv"
	"strings"

	"fairdash/internal/logger"

	"golang.org/x/text/language"
)

// Table 是单一语言的只读字符串表。缺失的键回退到默认语言。
type Table struct {
	lang     language.Tag
	entries  map[string]string
	fallback *Table
}

func newTable(lang language.Tag, entries map[string]string, fallback *Table) *Table {
	if entries == nil {
		entries = map[string]string{}
	}
	return &Table{lang: lang, entries: entries, fallback: fallback}
}

// Language returns the table's BCP 47 tag.
func (t *Table) Language() language.Tag {
	if t == nil {
		return language.Und
	}
	return t.lang
}

// Lookup returns the string for a dotted key such as
// "Fairness.Report.tooltipPrediction", or "" when no table has it.
func (t *Table) Lookup(key string) string {
	if t == nil {
		return ""
	}
	if val, ok := t.entries[key]; ok {
		return val
	}
	if t.fallback != nil && t.fallback != t {
		return t.fallback.Lookup(key)
	}
	logger.Debugf("i18n: missing key %s (lang=%s)", key, t.lang)
	return ""
}

// FormatTemplate substitutes {0}, {1}, ... with the positional args.
func (t *Table) FormatTemplate(template string, args ...any) string {
	return FormatTemplate(template, args...)
}

// Len reports how many keys the table defines itself.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// FormatTemplate substitutes {0}, {1}, ... with the positional args.
// Placeholders without a matching argument are left in place.
func FormatTemplate(template string, args ...any) string {
	if len(args) == 0 || !strings.Contains(template, "{") {
		return template
	}
	pairs := make([]string, 0, len(args)*2)
	for i, arg := range args {
		pairs = append(pairs, "{"+strconv.Itoa(i)+"}", fmt.Sprint(arg))
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// flatten 将嵌套的 YAML 映射展开为 "a.b.c" 形式的键。
func flatten(prefix string, node any, dest map[string]string) {
	switch val := node.(type) {
	case map[string]any:
		for k, v := range val {
			flatten(joinKey(prefix, k), v, dest)
		}
	case map[any]any:
		for k, v := range val {
			ks, ok := k.(string)
			if !ok {
				continue
			}
			flatten(joinKey(prefix, ks), v, dest)
		}
	case nil:
	default:
		if prefix != "" {
			dest[prefix] = fmt.Sprint(val)
		}
	}
}

func joinKey(prefix, key string) string {
	key = strings.TrimSpace(key)
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
