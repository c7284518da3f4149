package outcome

import (
	"fmt"
	"testing"

	"fairdash/internal/fairness"
	"fairdash/internal/i18n"
	"fairdash/internal/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestSelector(t *testing.T) *Selector {
	t.Helper()
	reg, err := i18n.NewRegistry(i18n.Options{DefaultLanguage: "en"})
	require.NoError(t, err)
	catalog := metrics.DefaultRegistry()
	return NewSelector(metrics.NewFormatter(catalog, 0), reg.Default(), catalog, Options{PrimaryColor: "#4472C4"})
}

func TestSelectBinaryClassification(t *testing.T) {
	s := newTestSelector(t)
	m := fairness.Metrics{Outcomes: fairness.Outcomes{Bins: []float64{0.2, 0.5}}}

	res := s.Select(fairness.BinaryClassification, m, []string{"A", "B"}, []int{1, 1, 0, 7})

	require.Len(t, res.Chart.Series, 1)
	series := res.Chart.Series[0]
	assert.Equal(t, KindBar, series.Kind)
	assert.Equal(t, "h", series.Orientation)
	assert.Equal(t, []float64{0.2, 0.5}, series.X)
	assert.Equal(t, []int{0, 1}, series.Y, "positions ignore the supplied bin vector")
	assert.Equal(t, []string{"20.00%", "50.00%"}, series.Text)
	assert.Equal(t, "inside", series.TextPosition)
	assert.Equal(t, "skip", series.HoverInfo)
	assert.Equal(t, "Selection rate", series.Name)
	assert.Equal(t, "#4472C4", series.Color)
	assert.Equal(t, WholePercentTick, res.Chart.XAxis.TickFormat)

	assert.Equal(t, "Selection rate", res.Header.Label)
	require.Len(t, res.Header.Help, 1)
	assert.Contains(t, res.Header.Help[0], "selection rate in each group")

	assert.Equal(t, metrics.SelectionRate, res.OutcomeKey)
	assert.Equal(t, []string{"20%", "50%"}, res.FormattedBinValues)
}

func TestSelectBinaryClassificationKeepsFormattingPassesApart(t *testing.T) {
	s := newTestSelector(t)
	m := fairness.Metrics{Outcomes: fairness.Outcomes{Bins: []float64{0.123456}}}

	res := s.Select(fairness.BinaryClassification, m, []string{"A"}, nil)
	assert.Equal(t, []string{"12.35%"}, res.Chart.Series[0].Text)
	assert.Equal(t, []string{"12.3%"}, res.FormattedBinValues)
}

func TestSelectProbability(t *testing.T) {
	s := newTestSelector(t)
	m := fairness.Metrics{
		Outcomes:    fairness.Outcomes{Bins: []float64{0.1, 0.9}},
		Predictions: []float64{0.1, 0.9},
	}

	res := s.Select(fairness.Probability, m, []string{"A", "B"}, []int{0, 1})

	require.Len(t, res.Chart.Series, 1)
	series := res.Chart.Series[0]
	assert.Equal(t, KindBox, series.Kind)
	assert.Equal(t, []float64{0.1, 0.9}, series.X)
	assert.Equal(t, []int{0, 1}, series.Y)
	assert.Equal(t, []string{"Predicted value: 0.100", "Predicted value: 0.900"}, series.Text)
	assert.True(t, series.BoxMean)
	assert.Equal(t, "all", series.BoxPoints)
	assert.Equal(t, 0.4, series.Jitter)
	assert.Equal(t, "text", series.HoverInfo)
	assert.Equal(t, "points", series.HoverOn)
	assert.Empty(t, res.Chart.XAxis.TickFormat)

	assert.Equal(t, "Distribution of predictions", res.Header.Label)
	require.Len(t, res.Header.Help, 1)
	assert.Contains(t, res.Header.Help[0], "Box plots")

	assert.Equal(t, metrics.Average, res.OutcomeKey)
	assert.Equal(t, []string{"0.1", "0.9"}, res.FormattedBinValues)
}

func TestSelectRegressionUsesRawValue(t *testing.T) {
	s := newTestSelector(t)
	m := fairness.Metrics{
		Outcomes:    fairness.Outcomes{Bins: []float64{1.23456}},
		Predictions: []float64{1.23456},
	}

	res := s.Select(fairness.Regression, m, []string{"A"}, []int{0})

	require.Len(t, res.Chart.Series, 1)
	assert.Equal(t, []string{"Predicted value: 1.23456"}, res.Chart.Series[0].Text)
	assert.Equal(t, []string{"1.23"}, res.FormattedBinValues)
	assert.Equal(t, "Distribution of predictions", res.Header.Label)
}

func TestSelectMissingPredictions(t *testing.T) {
	s := newTestSelector(t)
	m := fairness.Metrics{Outcomes: fairness.Outcomes{Bins: []float64{2, 3}}}

	for _, pt := range []fairness.PredictionType{fairness.Probability, fairness.Regression} {
		res := s.Select(pt, m, []string{"A", "B"}, nil)
		require.Len(t, res.Chart.Series, 1, pt)
		assert.Empty(t, res.Chart.Series[0].X, pt)
		assert.Empty(t, res.Chart.Series[0].Text, pt)
		assert.Len(t, res.FormattedBinValues, 2, pt)
	}
}

func TestSelectUnknownPredictionType(t *testing.T) {
	s := newTestSelector(t)
	m := fairness.Metrics{Outcomes: fairness.Outcomes{Bins: []float64{0.2}}, Predictions: []float64{1}}

	for _, pt := range []fairness.PredictionType{"", "clustering"} {
		res := s.Select(pt, m, []string{"A"}, []int{0})
		assert.True(t, res.Chart.Empty())
		assert.Equal(t, Kind(""), res.Chart.Kind())
		assert.Empty(t, res.Chart.XAxis.TickFormat)
		assert.Equal(t, "", res.Header.Label)
		assert.Empty(t, res.Header.Help)
		assert.Equal(t, metrics.Average, res.OutcomeKey)
		assert.Equal(t, []string{"0.2"}, res.FormattedBinValues)
	}
}

func TestSelectFormattedBinValuesLength(t *testing.T) {
	s := newTestSelector(t)
	bins := []float64{0.1, 0.2, 0.3, 0.4}
	m := fairness.Metrics{Outcomes: fairness.Outcomes{Bins: bins}, Predictions: []float64{0.5}}
	names := []string{"a", "b", "c", "d"}

	for _, pt := range []fairness.PredictionType{fairness.BinaryClassification, fairness.Probability, fairness.Regression} {
		res := s.Select(pt, m, names, []int{2})
		assert.Len(t, res.FormattedBinValues, len(bins), pt)
	}
}

func TestSelectIsPure(t *testing.T) {
	s := newTestSelector(t)
	bins := []float64{0.2, 0.5}
	preds := []float64{0.3, 0.7, 0.1}
	m := fairness.Metrics{Outcomes: fairness.Outcomes{Bins: bins}, Predictions: preds}

	for _, pt := range []fairness.PredictionType{fairness.BinaryClassification, fairness.Probability, fairness.Regression, "other"} {
		first := s.Select(pt, m, []string{"A", "B"}, []int{0, 1, 1})
		second := s.Select(pt, m, []string{"A", "B"}, []int{0, 1, 1})
		assert.Equal(t, first, second, pt)
	}

	res := s.Select(fairness.BinaryClassification, m, []string{"A", "B"}, nil)
	res.Chart.Series[0].X[0] = 99
	assert.Equal(t, 0.2, bins[0], "chart data must not alias the input")
}

type mockLocalizer struct {
	mock.Mock
}

func (m *mockLocalizer) Lookup(key string) string {
	m.Called(key)
	return "<" + key + ">"
}

func (m *mockLocalizer) FormatTemplate(template string, args ...any) string {
	return fmt.Sprintf("%s|%v", template, args)
}

func TestSelectHeaderComesFromFiringBranch(t *testing.T) {
	cases := []struct {
		pt     fairness.PredictionType
		header string
		help   string
	}{
		{fairness.BinaryClassification, KeySelectionRate, KeyClassificationHowToRead},
		{fairness.Probability, KeyDistributionOfPredictions, KeyRegressionHowToRead},
		{fairness.Regression, KeyDistributionOfPredictions, KeyRegressionHowToRead},
	}
	for _, tc := range cases {
		loc := new(mockLocalizer)
		loc.On("Lookup", mock.Anything).Return()
		catalog := metrics.DefaultRegistry()
		s := NewSelector(metrics.NewFormatter(catalog, 0), loc, catalog, Options{})

		m := fairness.Metrics{Outcomes: fairness.Outcomes{Bins: []float64{0.5}}, Predictions: []float64{0.5}}
		res := s.Select(tc.pt, m, []string{"A"}, []int{0})

		assert.Equal(t, "<"+tc.header+">", res.Header.Label, tc.pt)
		assert.Equal(t, []string{"<" + tc.help + ">"}, res.Header.Help, tc.pt)
		if tc.pt != fairness.BinaryClassification {
			loc.AssertCalled(t, "Lookup", KeyTooltipPrediction)
			loc.AssertNotCalled(t, "Lookup", KeySelectionRate)
		} else {
			loc.AssertNotCalled(t, "Lookup", KeyDistributionOfPredictions)
		}
	}
}

func TestPanel(t *testing.T) {
	s := newTestSelector(t)
	req := fairness.PanelRequest{
		DashboardContext: fairness.DashboardContext{
			ModelMetadata: fairness.ModelMetadata{PredictionType: fairness.BinaryClassification, FeatureNames: []string{"sex", "age"}},
			GroupNames:    []string{"F", "M"},
		},
		Metrics:          fairness.Metrics{Outcomes: fairness.Outcomes{Bins: []float64{0.25, 0.75}}},
		SelectedBinIndex: 1,
		AreaHeight:       400,
	}

	p := s.Panel(req)
	assert.Equal(t, "age", p.Table.BinGroup)
	assert.Equal(t, []string{"F", "M"}, p.Table.BinLabels)
	assert.Equal(t, []string{"25%", "75%"}, p.Table.FormattedBinValues)
	assert.Equal(t, []float64{0.25, 0.75}, p.Table.BinValues)
	assert.Equal(t, "Selection rate", p.Table.MetricLabel)
	assert.Equal(t, 400, p.AreaHeight)
	assert.Equal(t, p.FormattedBinValues, p.Table.FormattedBinValues)

	req.DashboardContext.ModelMetadata.PredictionType = fairness.Regression
	assert.Equal(t, "Average prediction", s.Panel(req).Table.MetricLabel)
}

func TestPanelDefaultAreaHeight(t *testing.T) {
	reg, err := i18n.NewRegistry(i18n.Options{})
	require.NoError(t, err)
	catalog := metrics.DefaultRegistry()
	s := NewSelector(metrics.NewFormatter(catalog, 0), reg.Default(), catalog, Options{AreaHeight: 320})

	req := fairness.PanelRequest{
		DashboardContext: fairness.DashboardContext{
			ModelMetadata: fairness.ModelMetadata{PredictionType: fairness.Regression},
			GroupNames:    []string{"a"},
		},
		Metrics: fairness.Metrics{Outcomes: fairness.Outcomes{Bins: []float64{1}}},
	}
	assert.Equal(t, 320, s.Panel(req).AreaHeight)

	req.AreaHeight = 500
	assert.Equal(t, 500, s.Panel(req).AreaHeight)
}
