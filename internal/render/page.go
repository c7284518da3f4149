// Package render draws outcome panels: echarts charts, HTML pages, text
// tables and PNG snapshots.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"fairdash/internal/outcome"
)

const (
	defaultWidthPx  = 900
	defaultHeightPx = 400
	defaultTheme    = "white"
	defaultAssets   = "https://go-echarts.github.io/go-echarts-assets/assets/"

	KeyHowToRead        = "Fairness.Report.howToRead"
	KeyGroupLabel       = "Fairness.Report.groupLabel"
	KeySensitiveFeature = "Fairness.Report.sensitiveFeature"
	KeyReportTitle      = "Fairness.Report.reportTitle"
)

// Options control chart size and look.
type Options struct {
	Theme           string
	WidthPx         int
	HeightPx        int
	BackgroundColor string
	AssetsHost      string
}

func (o Options) withDefaults() Options {
	if o.Theme == "" {
		o.Theme = defaultTheme
	}
	if o.WidthPx <= 0 {
		o.WidthPx = defaultWidthPx
	}
	if o.HeightPx <= 0 {
		o.HeightPx = defaultHeightPx
	}
	if o.AssetsHost == "" {
		o.AssetsHost = defaultAssets
	}
	return o
}

// Renderer turns panels into charts and pages.
type Renderer struct {
	opts   Options
	labels outcome.LocalizerFunc
}

func NewRenderer(opts Options, labels outcome.LocalizerFunc) *Renderer {
	return &Renderer{opts: opts.withDefaults(), labels: labels}
}

// Options returns the effective options.
func (r *Renderer) Options() Options { return r.opts }

func (r *Renderer) localizer(lang string) outcome.Localizer {
	if r.labels == nil {
		return nopLocalizer{}
	}
	return r.labels(lang)
}

type nopLocalizer struct{}

func (nopLocalizer) Lookup(string) string                     { return "" }
func (nopLocalizer) FormatTemplate(t string, _ ...any) string { return t }

type pageView struct {
	Title     string
	Lang      string
	Scripts   []string
	Sections  []sectionView
	HowToRead string
}

type sectionView struct {
	Label        string
	Help         []string
	FeatureLabel string
	Feature      string
	GroupLabel   string
	MetricLabel  string
	Rows         []rowView
	Element      template.HTML
	Script       template.HTML
}

type rowView struct {
	Group string
	Value string
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="{{ .Lang }}">
<head>
<meta charset="utf-8">
<title>{{ .Title }}</title>
{{- range .Scripts }}
<script src="{{ . }}"></script>
{{- end }}
<style>
body { font-family: -apple-system, "Segoe UI", Helvetica, Arial, sans-serif; color: #1f2937; margin: 24px; }
section.panel { margin-bottom: 40px; }
details.help { margin: 4px 0 12px; color: #4b5563; }
table.summary { border-collapse: collapse; margin: 8px 0 16px; }
table.summary th, table.summary td { border-bottom: 1px solid #e5e7eb; padding: 4px 12px; text-align: left; }
table.summary td.value { text-align: right; font-variant-numeric: tabular-nums; }
</style>
</head>
<body>
<h1>{{ .Title }}</h1>
{{- range .Sections }}
<section class="panel">
<h2>{{ .Label }}</h2>
{{- if .Help }}
<details class="help"><summary>{{ $.HowToRead }}</summary>
{{- range .Help }}
<p>{{ . }}</p>
{{- end }}
</details>
{{- end }}
{{- if .Feature }}
<p class="feature">{{ .FeatureLabel }}: <strong>{{ .Feature }}</strong></p>
{{- end }}
<table class="summary">
<thead><tr><th>{{ .GroupLabel }}</th><th>{{ .MetricLabel }}</th></tr></thead>
<tbody>
{{- range .Rows }}
<tr><td>{{ .Group }}</td><td class="value">{{ .Value }}</td></tr>
{{- end }}
</tbody>
</table>
{{ .Element }}
{{ .Script }}
</section>
{{- end }}
</body>
</html>
`))

// Page renders one panel as a standalone HTML document.
func (r *Renderer) Page(w io.Writer, p outcome.Panel) error {
	return r.writePage(w, "", p.Locale, []outcome.Panel{p})
}

func (r *Renderer) writePage(w io.Writer, title, lang string, panels []outcome.Panel) error {
	sections := make([]sectionView, len(panels))
	scripts := newAssetSet()
	for i, p := range panels {
		sec, assets, err := r.section(p)
		if err != nil {
			return fmt.Errorf("render panel #%d: %w", i+1, err)
		}
		sections[i] = sec
		scripts.add(assets...)
	}
	return r.executePage(w, title, lang, sections, scripts.values)
}

func (r *Renderer) executePage(w io.Writer, title, lang string, sections []sectionView, scripts []string) error {
	loc := r.localizer(lang)
	if title == "" {
		title = loc.Lookup(KeyReportTitle)
	}
	if lang == "" {
		lang = "en"
	}
	view := pageView{
		Title:     title,
		Lang:      lang,
		Scripts:   scripts,
		Sections:  sections,
		HowToRead: loc.Lookup(KeyHowToRead),
	}
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, view); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// section builds the view of one panel and the script assets its chart needs.
func (r *Renderer) section(p outcome.Panel) (sectionView, []string, error) {
	loc := r.localizer(p.Locale)
	sec := sectionView{
		Label:        p.Header.Label,
		Help:         p.Header.Help,
		FeatureLabel: loc.Lookup(KeySensitiveFeature),
		Feature:      p.Table.BinGroup,
		GroupLabel:   loc.Lookup(KeyGroupLabel),
		MetricLabel:  p.Table.MetricLabel,
	}
	for i, label := range p.Table.BinLabels {
		row := rowView{Group: label}
		if i < len(p.Table.FormattedBinValues) {
			row.Value = p.Table.FormattedBinValues[i]
		}
		sec.Rows = append(sec.Rows, row)
	}
	chart, err := r.Chart(p)
	if err != nil || chart == nil {
		return sec, nil, err
	}
	snippet := chart.RenderSnippet()
	sec.Element = template.HTML(snippet.Element)
	sec.Script = template.HTML(snippet.Script)
	return sec, chart.GetAssets().JSAssets.Values, nil
}

type assetSet struct {
	seen   map[string]struct{}
	values []string
}

func newAssetSet() *assetSet {
	return &assetSet{seen: map[string]struct{}{}}
}

func (s *assetSet) add(values ...string) {
	for _, v := range values {
		if _, ok := s.seen[v]; ok {
			continue
		}
		s.seen[v] = struct{}{}
		s.values = append(s.values, v)
	}
}
