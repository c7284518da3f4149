package outcomehttp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fairdash/internal/fairness"
	"fairdash/internal/i18n"
	"fairdash/internal/metrics"
	"fairdash/internal/outcome"
	"fairdash/internal/render"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const panelBody = `{
  "dashboardContext": {
    "modelMetadata": {"PredictionType": "binaryClassification", "featureNames": ["sex"]},
    "groupNames": ["Female", "Male"]
  },
  "metrics": {"outcomes": {"bins": [0.2, 0.5]}},
  "selectedBinIndex": 0
}`

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	return newTestServerWithSnapshots(t, render.SnapshotOptions{Enabled: false})
}

func newTestServerWithSnapshots(t *testing.T, snapOpts render.SnapshotOptions) http.Handler {
	t.Helper()
	reg, err := i18n.NewRegistry(i18n.Options{DefaultLanguage: "en"})
	require.NoError(t, err)
	dec, err := fairness.NewDecoder()
	require.NoError(t, err)
	catalog := metrics.DefaultRegistry()
	labels := func(lang string) outcome.Localizer { return reg.Localizer(lang) }
	renderer := render.NewRenderer(render.Options{}, labels)

	srv, err := NewServer(ServerConfig{Router: &Router{
		Decoder:     dec,
		Service:     outcome.NewService(metrics.NewFormatter(catalog, 0), catalog, labels, outcome.Options{}),
		Renderer:    renderer,
		Snapshotter: render.NewSnapshotter(renderer, snapOpts),
		Catalog:     catalog,
		Labels:      labels,
	}})
	require.NoError(t, err)
	return srv.Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestRequestIDIsEchoed(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/healthz", "", requestIDHeader, "abc-123")
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func TestMetrics(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/metrics?predictionType=regression", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Metrics []struct {
			Key   string `json:"key"`
			Title string `json:"title"`
		} `json:"metrics"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	keys := make([]string, 0, len(body.Metrics))
	for _, m := range body.Metrics {
		keys = append(keys, m.Key)
		if m.Key == metrics.Average {
			assert.Equal(t, "Average prediction", m.Title)
		}
	}
	assert.Contains(t, keys, metrics.Average)
	assert.NotContains(t, keys, metrics.SelectionRate)

	rec = do(t, h, http.MethodGet, "/api/metrics?predictionType=nope", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPanel(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/api/outcome/panel", panelBody)
	require.Equal(t, http.StatusOK, rec.Code)

	var panel outcome.Panel
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &panel))
	assert.Equal(t, "selection_rate", panel.OutcomeKey)
	assert.Equal(t, "Selection rate", panel.Header.Label)
	require.Len(t, panel.Chart.Series, 1)
	assert.Equal(t, []string{"20.00%", "50.00%"}, panel.Chart.Series[0].Text)
	assert.Equal(t, []int{0, 1}, panel.Chart.Series[0].Y)
	assert.Equal(t, ",.0%", panel.Chart.XAxis.TickFormat)
	assert.Equal(t, []string{"20%", "50%"}, panel.FormattedBinValues)
	assert.Equal(t, "sex", panel.Table.BinGroup)
}

func TestPanelUsesAcceptLanguage(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/api/outcome/panel", panelBody, "Accept-Language", "zh-CN,zh;q=0.9")
	require.Equal(t, http.StatusOK, rec.Code)
	var panel outcome.Panel
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &panel))
	assert.Equal(t, "选择率", panel.Header.Label)
}

func TestPanelErrors(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/outcome/panel", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	unknown := strings.Replace(panelBody, "binaryClassification", "ranking", 1)
	rec = do(t, h, http.MethodPost, "/api/outcome/panel", unknown)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body struct {
		Error string        `json:"error"`
		Panel outcome.Panel `json:"panel"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "ranking")
	assert.Empty(t, body.Panel.Chart.Series)
	assert.Equal(t, "", body.Panel.Header.Label)
	assert.Equal(t, []string{}, body.Panel.Header.Help)
}

func TestChart(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/api/outcome/chart", panelBody)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "<h2>Selection rate</h2>")
	assert.Contains(t, rec.Body.String(), "echarts.init")
}

func TestSnapshotDisabled(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/api/outcome/snapshot", panelBody)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestReport(t *testing.T) {
	body := `{"title":"Credit model","panels":[` + panelBody + `,` +
		strings.Replace(panelBody, "binaryClassification", "regression", 1) + `]}`
	rec := do(t, newTestServer(t), http.MethodPost, "/api/outcome/report", body)
	require.Equal(t, http.StatusOK, rec.Code)
	html := rec.Body.String()
	assert.Contains(t, html, "<title>Credit model</title>")
	assert.Equal(t, 2, strings.Count(html, `<section class="panel">`))
	assert.Contains(t, html, "<h2>Distribution of predictions</h2>")
}

func TestReportRejectsUnknownType(t *testing.T) {
	body := `{"panels":[` + strings.Replace(panelBody, "binaryClassification", "ranking", 1) + `]}`
	rec := do(t, newTestServer(t), http.MethodPost, "/api/outcome/report", body)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestSnapshotCircuitOpen(t *testing.T) {
	h := newTestServerWithSnapshots(t, render.SnapshotOptions{
		Enabled:          true,
		FailureThreshold: 2,
		Cooldown:         time.Hour,
		Capture: func(context.Context, []byte, int, int) ([]byte, error) {
			return nil, errors.New("chrome crashed")
		},
	})

	for i := 0; i < 2; i++ {
		rec := do(t, h, http.MethodPost, "/api/outcome/snapshot", panelBody)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	}
	rec := do(t, h, http.MethodPost, "/api/outcome/snapshot", panelBody)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "temporarily unavailable")
}

func TestSnapshotPNG(t *testing.T) {
	h := newTestServerWithSnapshots(t, render.SnapshotOptions{
		Enabled: true,
		Capture: func(context.Context, []byte, int, int) ([]byte, error) {
			return []byte("\x89PNG"), nil
		},
	})
	rec := do(t, h, http.MethodPost, "/api/outcome/snapshot", panelBody)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "\x89PNG", rec.Body.String())
}

func TestBodyTooLarge(t *testing.T) {
	h := newTestServer(t)
	big := `{"pad":"` + strings.Repeat("a", maxBodyBytes) + `"}`

	rec := do(t, h, http.MethodPost, "/api/outcome/panel", big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/outcome/report", big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
