package outcome

import (
	"errors"
	"fmt"

	"fairdash/internal/fairness"
	"fairdash/internal/logger"
)

// ErrUnsupportedPredictionType is reported by Service when the request names
// a prediction type the selector has no chart for.
var ErrUnsupportedPredictionType = errors.New("unsupported prediction type")

// LocalizerFunc resolves the string table for a locale or Accept-Language value.
type LocalizerFunc func(lang string) Localizer

// Service builds panels for incoming requests, choosing the string table per
// request locale.
type Service struct {
	num       NumberFormatter
	catalog   MetricCatalog
	localizer LocalizerFunc
	opts      Options
}

func NewService(num NumberFormatter, catalog MetricCatalog, localizer LocalizerFunc, opts Options) *Service {
	return &Service{num: num, catalog: catalog, localizer: localizer, opts: opts}
}

// Selector returns a selector bound to the string table of lang.
func (s *Service) Selector(lang string) *Selector {
	return NewSelector(s.num, s.localizer(lang), s.catalog, s.opts)
}

// Build returns the panel for req. For an unknown prediction type the blank
// panel is still returned, together with ErrUnsupportedPredictionType.
func (s *Service) Build(req fairness.PanelRequest) (Panel, error) {
	panel := s.Selector(req.Locale).Panel(req)
	pt := req.DashboardContext.ModelMetadata.PredictionType
	if !pt.Valid() {
		logger.With("component", "outcome").Warn("no outcome chart for prediction type", "prediction_type", pt.String())
		return panel, fmt.Errorf("%w: %q", ErrUnsupportedPredictionType, pt.String())
	}
	return panel, nil
}

// BuildAll builds the panels of a report in order, stopping at the first error.
func (s *Service) BuildAll(report fairness.ReportRequest) ([]Panel, error) {
	panels := make([]Panel, 0, len(report.Panels))
	for i, req := range report.Panels {
		if req.Locale == "" {
			req.Locale = report.Locale
		}
		p, err := s.Build(req)
		if err != nil {
			return nil, fmt.Errorf("panel #%d: %w", i+1, err)
		}
		panels = append(panels, p)
	}
	return panels, nil
}
