// Package metrics describes the performance and outcome metrics a fairness
// panel can display, and how their values are turned into text.
package metrics

import (
	"sort"
	"strings"

	"fairdash/internal/fairness"
)

// Keys used by the outcome panel.
const (
	SelectionRate = "selection_rate"
	Average       = "average"
)

// Option 描述单个指标的显示属性。
type Option struct {
	Key             string                    `json:"key"`
	TitleKey        string                    `json:"titleKey"`
	IsPercentage    bool                      `json:"isPercentage"`
	IsMinimization  bool                      `json:"isMinimization"`
	PredictionTypes []fairness.PredictionType `json:"predictionTypes"`
}

// AppliesTo reports whether the metric makes sense for the given model type.
func (o Option) AppliesTo(pt fairness.PredictionType) bool {
	for _, t := range o.PredictionTypes {
		if t == pt {
			return true
		}
	}
	return false
}

var (
	classificationOnly = []fairness.PredictionType{fairness.BinaryClassification}
	probabilityOnly    = []fairness.PredictionType{fairness.Probability}
	regressionOnly     = []fairness.PredictionType{fairness.Regression}
	continuous         = []fairness.PredictionType{fairness.Probability, fairness.Regression}
	allTypes           = []fairness.PredictionType{fairness.BinaryClassification, fairness.Probability, fairness.Regression}
)

func defaultOptions() []Option {
	return []Option{
		{Key: "accuracy_score", TitleKey: "Fairness.Metrics.accuracyScore", IsPercentage: true, PredictionTypes: classificationOnly},
		{Key: "balanced_accuracy_score", TitleKey: "Fairness.Metrics.balancedAccuracyScore", IsPercentage: true, PredictionTypes: classificationOnly},
		{Key: "precision_score", TitleKey: "Fairness.Metrics.precisionScore", IsPercentage: true, PredictionTypes: classificationOnly},
		{Key: "recall_score", TitleKey: "Fairness.Metrics.recallScore", IsPercentage: true, PredictionTypes: classificationOnly},
		{Key: "specificity_score", TitleKey: "Fairness.Metrics.specificityScore", IsPercentage: true, PredictionTypes: classificationOnly},
		{Key: "zero_one_loss", TitleKey: "Fairness.Metrics.zeroOneLoss", IsPercentage: true, IsMinimization: true, PredictionTypes: classificationOnly},
		{Key: "miss_rate", TitleKey: "Fairness.Metrics.missRate", IsPercentage: true, IsMinimization: true, PredictionTypes: classificationOnly},
		{Key: "fallout_rate", TitleKey: "Fairness.Metrics.falloutRate", IsPercentage: true, IsMinimization: true, PredictionTypes: classificationOnly},
		{Key: "false_positive_over_total", TitleKey: "Fairness.Metrics.falsePositiveOverTotal", IsPercentage: true, IsMinimization: true, PredictionTypes: classificationOnly},
		{Key: "false_negative_over_total", TitleKey: "Fairness.Metrics.falseNegativeOverTotal", IsPercentage: true, IsMinimization: true, PredictionTypes: classificationOnly},
		{Key: SelectionRate, TitleKey: "Fairness.Metrics.selectionRate", IsPercentage: true, PredictionTypes: classificationOnly},
		{Key: "auc", TitleKey: "Fairness.Metrics.auc", PredictionTypes: probabilityOnly},
		{Key: "log_loss", TitleKey: "Fairness.Metrics.logLoss", IsMinimization: true, PredictionTypes: probabilityOnly},
		{Key: "balanced_root_mean_squared_error", TitleKey: "Fairness.Metrics.balancedRootMeanSquaredError", IsMinimization: true, PredictionTypes: probabilityOnly},
		{Key: "root_mean_squared_error", TitleKey: "Fairness.Metrics.rootMeanSquaredError", IsMinimization: true, PredictionTypes: continuous},
		{Key: "mean_squared_error", TitleKey: "Fairness.Metrics.meanSquaredError", IsMinimization: true, PredictionTypes: continuous},
		{Key: "mean_absolute_error", TitleKey: "Fairness.Metrics.meanAbsoluteError", IsMinimization: true, PredictionTypes: continuous},
		{Key: "overprediction", TitleKey: "Fairness.Metrics.overprediction", IsMinimization: true, PredictionTypes: continuous},
		{Key: "underprediction", TitleKey: "Fairness.Metrics.underprediction", IsMinimization: true, PredictionTypes: continuous},
		{Key: "r2_score", TitleKey: "Fairness.Metrics.r2Score", PredictionTypes: regressionOnly},
		{Key: Average, TitleKey: "Fairness.Metrics.average", PredictionTypes: allTypes},
	}
}

// Registry is a read-only lookup of metric options by key.
type Registry struct {
	options map[string]Option
}

// NewRegistry builds a registry; a later option overrides an earlier one
// with the same key.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{options: make(map[string]Option, len(opts))}
	for _, opt := range opts {
		key := strings.TrimSpace(opt.Key)
		if key == "" {
			continue
		}
		opt.Key = key
		r.options[key] = opt
	}
	return r
}

// DefaultRegistry returns the dashboard's metric table.
func DefaultRegistry() *Registry {
	return NewRegistry(defaultOptions()...)
}

func (r *Registry) Option(key string) (Option, bool) {
	if r == nil {
		return Option{}, false
	}
	opt, ok := r.options[key]
	return opt, ok
}

// TitleKey returns the localization key of the metric title.
func (r *Registry) TitleKey(key string) string {
	opt, ok := r.Option(key)
	if !ok {
		return ""
	}
	return opt.TitleKey
}

func (r *Registry) IsPercentage(key string) bool {
	opt, ok := r.Option(key)
	return ok && opt.IsPercentage
}

// List returns every option sorted by key.
func (r *Registry) List() []Option {
	if r == nil {
		return nil
	}
	out := make([]Option, 0, len(r.options))
	for _, opt := range r.options {
		out = append(out, opt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// ForPredictionType lists the options applicable to pt, sorted by key.
func (r *Registry) ForPredictionType(pt fairness.PredictionType) []Option {
	var out []Option
	for _, opt := range r.List() {
		if opt.AppliesTo(pt) {
			out = append(out, opt)
		}
	}
	return out
}
