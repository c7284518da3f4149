// Package outcome decides how the outcome panel of the fairness dashboard is
// drawn: which chart, which data, which header and help text.
package outcome

import "fairdash/internal/metrics"

// Kind is the chart series type.
type Kind string

const (
	KindBar Kind = "bar"
	KindBox Kind = "box"
)

const (
	orientationHorizontal = "h"

	// WholePercentTick formats axis ticks as whole percentages (0%..100%).
	WholePercentTick = ",.0%"

	defaultBarTextDecimals = 2
	defaultTooltipDecimals = 3
	defaultJitter          = 0.4
)

// Localization keys read by the selector.
const (
	KeySelectionRate             = "Fairness.Metrics.selectionRate"
	KeyDistributionOfPredictions = "Fairness.Report.distributionOfPredictions"
	KeyTooltipPrediction         = "Fairness.Report.tooltipPrediction"
	KeyClassificationHowToRead   = "Fairness.Report.classificationOutcomesHowToRead"
	KeyRegressionHowToRead       = "Fairness.Report.regressionOutcomesHowToRead"
)

// Series is one chart trace. Field names on the wire follow the plotting
// vocabulary of the dashboard.
type Series struct {
	Kind         Kind      `json:"type"`
	Name         string    `json:"name,omitempty"`
	Orientation  string    `json:"orientation"`
	X            []float64 `json:"x"`
	Y            []int     `json:"y"`
	Text         []string  `json:"text"`
	TextPosition string    `json:"textposition,omitempty"`
	HoverInfo    string    `json:"hoverinfo,omitempty"`
	HoverOn      string    `json:"hoveron,omitempty"`
	BoxMean      bool      `json:"boxmean,omitempty"`
	BoxPoints    string    `json:"boxpoints,omitempty"`
	Jitter       float64   `json:"jitter,omitempty"`
	PointPos     float64   `json:"pointpos"`
	Color        string    `json:"color,omitempty"`
}

// Axis carries formatting hints for one axis.
type Axis struct {
	TickFormat string `json:"tickformat,omitempty"`
}

// ChartSpec is a render-ready chart description.
type ChartSpec struct {
	Series []Series `json:"data"`
	XAxis  Axis     `json:"xaxis"`
}

// Empty reports whether no series was populated.
func (c ChartSpec) Empty() bool { return len(c.Series) == 0 }

// Kind returns the kind of the first series, or "" for an empty chart.
func (c ChartSpec) Kind() Kind {
	if c.Empty() {
		return ""
	}
	return c.Series[0].Kind
}

// HeaderBundle is the panel header label plus the help popover strings.
type HeaderBundle struct {
	Label string   `json:"label"`
	Help  []string `json:"help"`
}

// Result is the output of one selector invocation.
type Result struct {
	OutcomeKey         string       `json:"outcomeKey"`
	Chart              ChartSpec    `json:"chart"`
	Header             HeaderBundle `json:"header"`
	FormattedBinValues []string     `json:"formattedBinValues"`
}

// SummaryTable feeds the per-group table shown next to the chart.
type SummaryTable struct {
	BinGroup           string    `json:"binGroup"`
	BinLabels          []string  `json:"binLabels"`
	FormattedBinValues []string  `json:"formattedBinValues"`
	BinValues          []float64 `json:"binValues"`
	MetricLabel        string    `json:"metricLabel"`
}

// Panel is everything the outcome view needs to draw itself.
type Panel struct {
	Result
	Table      SummaryTable `json:"table"`
	AreaHeight int          `json:"areaHeight,omitempty"`
	Locale     string       `json:"locale,omitempty"`
}

// NumberFormatter is the numeric formatting collaborator.
type NumberFormatter interface {
	FormatFixed(value float64, key string, decimals int) string
	FormatDefault(value float64, key string) string
	FormatRaw(value float64) string
}

// Localizer is the string-table collaborator.
type Localizer interface {
	Lookup(key string) string
	FormatTemplate(template string, args ...any) string
}

// MetricCatalog resolves the title of a metric key.
type MetricCatalog interface {
	TitleKey(key string) string
}

var (
	_ NumberFormatter = (*metrics.Formatter)(nil)
	_ MetricCatalog   = (*metrics.Registry)(nil)
)
