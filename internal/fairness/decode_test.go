package fairness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const classificationPanel = `{
  "dashboardContext": {
    "modelMetadata": {"PredictionType": "binaryClassification", "featureNames": ["sex", "race"]},
    "groupNames": ["A", "B"],
    "binVector": [0, 1, 1]
  },
  "metrics": {"outcomes": {"bins": [0.2, 0.5]}},
  "selectedBinIndex": 1
}`

func TestDecodePanel(t *testing.T) {
	dec, err := NewDecoder()
	require.NoError(t, err)

	req, err := dec.DecodePanel([]byte(classificationPanel))
	require.NoError(t, err)
	assert.Equal(t, BinaryClassification, req.DashboardContext.ModelMetadata.PredictionType)
	assert.Equal(t, []float64{0.2, 0.5}, req.Metrics.Outcomes.Bins)
	assert.Equal(t, []int{0, 1, 1}, req.DashboardContext.BinVector)
	assert.Equal(t, "race", req.FeatureName())
}

func TestDecodePanelPredictionTypeNames(t *testing.T) {
	dec, err := NewDecoder()
	require.NoError(t, err)

	cases := map[string]PredictionType{
		`"BinaryClassification"`:  BinaryClassification,
		`"Probability"`:           Probability,
		`" regression "`:          Regression,
		`"clustering"`:            PredictionType("clustering"),
		`"binary_classification"`: PredictionType("binary_classification"),
		`"proba"`:                 PredictionType("proba"),
	}
	for raw, want := range cases {
		body := `{"dashboardContext":{"modelMetadata":{"PredictionType":` + raw + `},"groupNames":["A"]},"metrics":{"outcomes":{"bins":[1]}}}`
		req, err := dec.DecodePanel([]byte(body))
		require.NoError(t, err, raw)
		assert.Equal(t, want, req.DashboardContext.ModelMetadata.PredictionType, raw)
	}
}

func TestDecodePanelShortcutPredictionType(t *testing.T) {
	dec, err := NewDecoder()
	require.NoError(t, err)

	body := `{"predictionType":"regression","dashboardContext":{"modelMetadata":{},"groupNames":["A"]},"metrics":{"outcomes":{"bins":[1]}}}`
	req, err := dec.DecodePanel([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, Regression, req.DashboardContext.ModelMetadata.PredictionType)
}

func TestDecodePanelRejects(t *testing.T) {
	dec, err := NewDecoder()
	require.NoError(t, err)

	cases := map[string]string{
		"empty":          ``,
		"malformed":      `{"dashboardContext":`,
		"array root":     `[]`,
		"missing bins":   `{"dashboardContext":{"modelMetadata":{},"groupNames":["A"]},"metrics":{"outcomes":{}}}`,
		"string bins":    `{"dashboardContext":{"modelMetadata":{},"groupNames":["A"]},"metrics":{"outcomes":{"bins":["x"]}}}`,
		"length":         `{"dashboardContext":{"modelMetadata":{},"groupNames":["A","B"]},"metrics":{"outcomes":{"bins":[1]}}}`,
		"bin range":      `{"dashboardContext":{"modelMetadata":{},"groupNames":["A"],"binVector":[0,1]},"metrics":{"outcomes":{"bins":[1]}}}`,
		"pred mismatch":  `{"dashboardContext":{"modelMetadata":{},"groupNames":["A"],"binVector":[0]},"metrics":{"outcomes":{"bins":[1]},"predictions":[1,2]}}`,
		"negative index": `{"dashboardContext":{"modelMetadata":{},"groupNames":["A"]},"metrics":{"outcomes":{"bins":[1]}},"selectedBinIndex":-1}`,
	}
	for name, body := range cases {
		_, err := dec.DecodePanel([]byte(body))
		assert.ErrorIs(t, err, ErrInvalidRequest, name)
	}
}

func TestDecodeReport(t *testing.T) {
	dec, err := NewDecoder()
	require.NoError(t, err)

	body := `{"title":"Audit","locale":"en","panels":[` + classificationPanel + `,
	  {"locale":"zh","dashboardContext":{"modelMetadata":{"PredictionType":"regression"},"groupNames":["A"],"binVector":[0]},
	   "metrics":{"outcomes":{"bins":[3.5]},"predictions":[3.5]}}]}`
	report, err := dec.DecodeReport([]byte(body))
	require.NoError(t, err)
	require.Len(t, report.Panels, 2)
	assert.Equal(t, "Audit", report.Title)
	assert.Equal(t, "en", report.Panels[0].Locale)
	assert.Equal(t, "zh", report.Panels[1].Locale)
	assert.Equal(t, Regression, report.Panels[1].DashboardContext.ModelMetadata.PredictionType)

	_, err = dec.DecodeReport([]byte(`{"panels":[]}`))
	assert.ErrorIs(t, err, ErrInvalidRequest)
	_, err = dec.DecodeReport([]byte(`{"panels":[{"metrics":{}}]}`))
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestFeatureNameOutOfRange(t *testing.T) {
	req := PanelRequest{SelectedBinIndex: 3}
	assert.Equal(t, "", req.FeatureName())
}
