package outcome

import (
	"fairdash/internal/fairness"
	"fairdash/internal/metrics"
)

// Options tune the selector's display precision and colour.
type Options struct {
	BarTextDecimals int
	TooltipDecimals int
	PrimaryColor    string
	// AreaHeight is used when the request does not carry one; 0 leaves it
	// to the renderer.
	AreaHeight int
}

func (o Options) withDefaults() Options {
	if o.BarTextDecimals <= 0 {
		o.BarTextDecimals = defaultBarTextDecimals
	}
	if o.TooltipDecimals <= 0 {
		o.TooltipDecimals = defaultTooltipDecimals
	}
	return o
}

// Selector picks the outcome chart for a prediction type. It keeps no state
// between calls.
type Selector struct {
	num     NumberFormatter
	loc     Localizer
	catalog MetricCatalog
	opts    Options
}

func NewSelector(num NumberFormatter, loc Localizer, catalog MetricCatalog, opts Options) *Selector {
	return &Selector{num: num, loc: loc, catalog: catalog, opts: opts.withDefaults()}
}

// OutcomeKey is the metric the outcome bins hold for a prediction type.
func OutcomeKey(pt fairness.PredictionType) string {
	if pt == fairness.BinaryClassification {
		return metrics.SelectionRate
	}
	return metrics.Average
}

// Select builds the chart, header and table values for one panel. Exactly one
// branch fires for a known prediction type; any other type yields a blank
// header, no help text and no series.
func (s *Selector) Select(pt fairness.PredictionType, m fairness.Metrics, groupNames []string, binVector []int) Result {
	key := OutcomeKey(pt)
	res := Result{
		OutcomeKey: key,
		Header:     HeaderBundle{Help: []string{}},
	}
	switch pt {
	case fairness.BinaryClassification:
		res.Chart = s.selectionRateBars(m.Outcomes.Bins, len(groupNames), key)
		res.Header = HeaderBundle{
			Label: s.loc.Lookup(KeySelectionRate),
			Help:  []string{s.loc.Lookup(KeyClassificationHowToRead)},
		}
	case fairness.Probability:
		res.Chart = s.predictionBoxes(m.Predictions, binVector, func(v float64) string {
			return s.num.FormatFixed(v, metrics.Average, s.opts.TooltipDecimals)
		})
		res.Header = s.distributionHeader()
	case fairness.Regression:
		res.Chart = s.predictionBoxes(m.Predictions, binVector, s.num.FormatRaw)
		res.Header = s.distributionHeader()
	}

	// Independent of the bar text above: default precision, not fixed decimals.
	res.FormattedBinValues = make([]string, len(m.Outcomes.Bins))
	for i, v := range m.Outcomes.Bins {
		res.FormattedBinValues[i] = s.num.FormatDefault(v, key)
	}
	return res
}

func (s *Selector) selectionRateBars(bins []float64, groups int, key string) ChartSpec {
	positions := make([]int, groups)
	for i := range positions {
		positions[i] = i
	}
	text := make([]string, len(bins))
	for i, v := range bins {
		text[i] = s.num.FormatFixed(v, key, s.opts.BarTextDecimals)
	}
	return ChartSpec{
		Series: []Series{{
			Kind:         KindBar,
			Name:         s.metricTitle(key),
			Orientation:  orientationHorizontal,
			X:            append([]float64{}, bins...),
			Y:            positions,
			Text:         text,
			TextPosition: "inside",
			HoverInfo:    "skip",
			Color:        s.opts.PrimaryColor,
		}},
		XAxis: Axis{TickFormat: WholePercentTick},
	}
}

func (s *Selector) predictionBoxes(predictions []float64, binVector []int, render func(float64) string) ChartSpec {
	template := s.loc.Lookup(KeyTooltipPrediction)
	text := make([]string, len(predictions))
	for i, v := range predictions {
		text[i] = s.loc.FormatTemplate(template, render(v))
	}
	return ChartSpec{
		Series: []Series{{
			Kind:        KindBox,
			Orientation: orientationHorizontal,
			X:           append([]float64{}, predictions...),
			Y:           append([]int{}, binVector...),
			Text:        text,
			HoverInfo:   "text",
			HoverOn:     "points",
			BoxMean:     true,
			BoxPoints:   "all",
			Jitter:      defaultJitter,
			PointPos:    0,
			Color:       s.opts.PrimaryColor,
		}},
	}
}

func (s *Selector) distributionHeader() HeaderBundle {
	return HeaderBundle{
		Label: s.loc.Lookup(KeyDistributionOfPredictions),
		Help:  []string{s.loc.Lookup(KeyRegressionHowToRead)},
	}
}

func (s *Selector) metricTitle(key string) string {
	if s.catalog == nil {
		return ""
	}
	titleKey := s.catalog.TitleKey(key)
	if titleKey == "" {
		return ""
	}
	return s.loc.Lookup(titleKey)
}

// Panel composes the selector result with the summary table.
func (s *Selector) Panel(req fairness.PanelRequest) Panel {
	dc := req.DashboardContext
	res := s.Select(dc.ModelMetadata.PredictionType, req.Metrics, dc.GroupNames, dc.BinVector)
	height := req.AreaHeight
	if height <= 0 {
		height = s.opts.AreaHeight
	}
	return Panel{
		Result: res,
		Table: SummaryTable{
			BinGroup:           req.FeatureName(),
			BinLabels:          append([]string{}, dc.GroupNames...),
			FormattedBinValues: res.FormattedBinValues,
			BinValues:          append([]float64{}, req.Metrics.Outcomes.Bins...),
			MetricLabel:        s.metricTitle(res.OutcomeKey),
		},
		AreaHeight: height,
		Locale:     req.Locale,
	}
}
