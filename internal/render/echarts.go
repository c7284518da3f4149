package render

import (
	"fmt"
	"strings"

	"fairdash/internal/outcome"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/render"
	"github.com/go-echarts/go-echarts/v2/types"
	"github.com/google/uuid"
)

const (
	colorText       = "#1f2937"
	colorTextMuted  = "#6b7280"
	colorBarLabel   = "#ffffff"
	colorMeanMarker = "#111827"

	pointSymbolSize = 6
	meanSymbolSize  = 12

	percentTickFormatter = `function (value) { return Math.round(value * 100).toLocaleString() + '%'; }`
	pointTooltip         = `function (params) { return params.seriesType === 'scatter' ? params.name : ''; }`
)

// Chart is a go-echarts chart that can be embedded into a page.
type Chart interface {
	components.Charter
	RenderSnippet() render.ChartSnippet
}

// Chart converts the panel's chart spec into an echarts chart. A panel with
// no series yields a nil chart.
func (r *Renderer) Chart(p outcome.Panel) (Chart, error) {
	if p.Chart.Empty() {
		return nil, nil
	}
	series := p.Chart.Series[0]
	switch series.Kind {
	case outcome.KindBar:
		return r.barChart(p, series), nil
	case outcome.KindBox:
		return r.boxChart(p, series), nil
	default:
		return nil, fmt.Errorf("render: unknown series kind %q", series.Kind)
	}
}

func (r *Renderer) initialization(p outcome.Panel) opts.Initialization {
	height := r.opts.HeightPx
	if p.AreaHeight > 0 {
		height = p.AreaHeight
	}
	return opts.Initialization{
		Theme:           r.opts.Theme,
		Width:           fmt.Sprintf("%dpx", r.opts.WidthPx),
		Height:          fmt.Sprintf("%dpx", height),
		BackgroundColor: r.opts.BackgroundColor,
		ChartID:         "outcome_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		AssetsHost:      r.opts.AssetsHost,
	}
}

func (r *Renderer) title(p outcome.Panel) charts.GlobalOpts {
	return charts.WithTitleOpts(opts.Title{
		Title:         p.Header.Label,
		Left:          "left",
		TitleStyle:    &opts.TextStyle{Color: colorText, FontSize: 16},
		SubtitleStyle: &opts.TextStyle{Color: colorTextMuted},
	})
}

func (r *Renderer) barChart(p outcome.Panel, s outcome.Series) *charts.Bar {
	xAxis := opts.XAxis{
		Type:      "value",
		Min:       0,
		AxisLabel: &opts.AxisLabel{Color: colorTextMuted},
	}
	if p.Chart.XAxis.TickFormat == outcome.WholePercentTick {
		xAxis.Max = 1
		xAxis.AxisLabel.Formatter = opts.FuncOpts(percentTickFormatter)
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(r.initialization(p)),
		r.title(p),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		// hoverinfo "skip": the value is already printed inside the bar.
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(false)}),
		charts.WithXAxisOpts(xAxis),
		charts.WithYAxisOpts(opts.YAxis{
			Type:      "category",
			Inverse:   opts.Bool(true),
			AxisLabel: &opts.AxisLabel{Color: colorText},
		}),
	)

	labels := categoryLabels(p.Table.BinLabels, s.Y)
	data := make([]opts.BarData, len(s.X))
	for i, v := range s.X {
		item := opts.BarData{Value: v, ItemStyle: &opts.ItemStyle{Color: s.Color}}
		if i < len(labels) {
			item.Name = labels[i]
		}
		if i < len(s.Text) {
			item.Label = &opts.Label{
				Show:      opts.Bool(true),
				Position:  s.TextPosition,
				Color:     colorBarLabel,
				Formatter: types.FuncStr(s.Text[i]),
			}
		}
		data[i] = item
	}
	bar.SetXAxis(labels)
	bar.AddSeries(s.Name, data)
	bar.XYReversal()
	return bar
}

// boxChart draws one horizontal box per group with every prediction overlaid
// as a point. Points are not jittered: a category axis only places them on
// the group line.
func (r *Renderer) boxChart(p outcome.Panel, s outcome.Series) *charts.BoxPlot {
	labels := p.Table.BinLabels
	box := charts.NewBoxPlot()
	box.SetGlobalOptions(
		charts.WithInitializationOpts(r.initialization(p)),
		r.title(p),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:      opts.Bool(true),
			Trigger:   "item",
			Formatter: opts.FuncOpts(pointTooltip),
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "value",
			Scale:     opts.Bool(true),
			AxisLabel: &opts.AxisLabel{Color: colorTextMuted},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:      "category",
			Data:      labels,
			Inverse:   opts.Bool(true),
			AxisLabel: &opts.AxisLabel{Show: opts.Bool(true), Color: colorText},
		}),
	)

	grouped := groupPoints(s.X, s.Y, len(labels))
	boxes := make([]opts.BoxPlotData, len(labels))
	means := make([]opts.ScatterData, 0, len(labels))
	for g, values := range grouped {
		boxes[g] = opts.BoxPlotData{Name: labels[g]}
		if len(values) == 0 {
			continue
		}
		sum := Summarize(values)
		boxes[g].Value = sum.BoxValue()
		means = append(means, opts.ScatterData{
			Name:       labels[g],
			Value:      []interface{}{sum.Mean, g},
			Symbol:     "diamond",
			SymbolSize: meanSymbolSize,
		})
	}
	box.AddSeries(s.Name, boxes, charts.WithItemStyleOpts(opts.ItemStyle{BorderColor: s.Color}))

	overlay := charts.NewScatter()
	if s.BoxPoints != "" {
		points := make([]opts.ScatterData, 0, len(s.X))
		for i, v := range s.X {
			if i >= len(s.Y) || s.Y[i] < 0 || s.Y[i] >= len(labels) {
				continue
			}
			name := ""
			if i < len(s.Text) {
				name = s.Text[i]
			}
			points = append(points, opts.ScatterData{Name: name, Value: []interface{}{v, s.Y[i]}, SymbolSize: pointSymbolSize})
		}
		overlay.AddSeries("points", points, charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Color, Opacity: opts.Float(0.6)}))
	}
	if s.BoxMean && len(means) > 0 {
		overlay.AddSeries("mean", means,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: colorMeanMarker}),
			charts.WithSeriesTooltipOpts(opts.SeriesTooltip{Formatter: "{b}"}),
		)
	}
	box.Overlap(overlay)
	return box
}

// categoryLabels orders group names by the bar positions.
func categoryLabels(names []string, positions []int) []string {
	out := make([]string, len(positions))
	for i, pos := range positions {
		if pos >= 0 && pos < len(names) {
			out[i] = names[pos]
		} else {
			out[i] = fmt.Sprintf("#%d", pos)
		}
	}
	return out
}
