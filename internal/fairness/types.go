// Package fairness holds the dashboard-side inputs of an outcome panel.
package fairness

import "strings"

// PredictionType 描述模型输出形态，决定图表形状。
type PredictionType string

const (
	BinaryClassification PredictionType = "binaryClassification"
	Probability          PredictionType = "probability"
	Regression           PredictionType = "regression"
)

// predictionTypeNames maps the case-folded wire names; anything else is an
// unknown type and gets the blank panel.
var predictionTypeNames = map[string]PredictionType{
	"binaryclassification": BinaryClassification,
	"probability":          Probability,
	"regression":           Regression,
}

// ParsePredictionType matches the three wire names regardless of case.
// Unknown values are returned verbatim with ok=false.
func ParsePredictionType(raw string) (PredictionType, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if pt, ok := predictionTypeNames[key]; ok {
		return pt, true
	}
	return PredictionType(raw), false
}

// Valid reports whether pt is one of the three known types.
func (pt PredictionType) Valid() bool {
	switch pt {
	case BinaryClassification, Probability, Regression:
		return true
	}
	return false
}

func (pt PredictionType) String() string { return string(pt) }

// ModelMetadata 是仪表盘中与模型相关的元信息。
type ModelMetadata struct {
	PredictionType PredictionType `json:"PredictionType"`
	FeatureNames   []string       `json:"featureNames,omitempty"`
}

// DashboardContext carries group labels for the selected sensitive feature.
// BinVector holds, per observation, the index of the group it belongs to.
type DashboardContext struct {
	ModelMetadata ModelMetadata `json:"modelMetadata"`
	GroupNames    []string      `json:"groupNames"`
	BinVector     []int         `json:"binVector,omitempty"`
}

// Outcomes holds one aggregated outcome value per group.
type Outcomes struct {
	Global *float64  `json:"global,omitempty"`
	Bins   []float64 `json:"bins"`
}

// Metrics 是一次面板渲染所需的指标数据，只读。
type Metrics struct {
	Outcomes    Outcomes  `json:"outcomes"`
	Predictions []float64 `json:"predictions,omitempty"`
}

// PanelRequest is one outcome panel worth of input.
type PanelRequest struct {
	DashboardContext DashboardContext `json:"dashboardContext"`
	Metrics          Metrics          `json:"metrics"`
	SelectedBinIndex int              `json:"selectedBinIndex"`
	AreaHeight       int              `json:"areaHeight,omitempty"`
	Locale           string           `json:"locale,omitempty"`
}

// FeatureName returns the name of the selected sensitive feature, or "" when
// the index is out of range.
func (r PanelRequest) FeatureName() string {
	names := r.DashboardContext.ModelMetadata.FeatureNames
	if r.SelectedBinIndex < 0 || r.SelectedBinIndex >= len(names) {
		return ""
	}
	return names[r.SelectedBinIndex]
}

// ReportRequest groups several panels rendered onto one page.
type ReportRequest struct {
	Title  string         `json:"title,omitempty"`
	Locale string         `json:"locale,omitempty"`
	Panels []PanelRequest `json:"panels"`
}
