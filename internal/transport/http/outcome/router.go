package outcomehttp

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"fairdash/internal/fairness"
	"fairdash/internal/logger"
	"fairdash/internal/metrics"
	"fairdash/internal/outcome"
	"fairdash/internal/render"

	"github.com/gin-gonic/gin"
)

const maxBodyBytes = 8 << 20

// errBodyTooLarge marks a request body cut off at maxBodyBytes.
var errBodyTooLarge = errors.New("request body too large")

// Router 暴露 outcome 面板相关接口。
type Router struct {
	Decoder     *fairness.Decoder
	Service     *outcome.Service
	Renderer    *render.Renderer
	Snapshotter *render.Snapshotter
	Catalog     *metrics.Registry
	Labels      outcome.LocalizerFunc
}

// Register 将路由挂载到给定分组下（通常为 /api）。
func (r *Router) Register(group *gin.RouterGroup) {
	if group == nil {
		return
	}
	group.GET("/metrics", r.handleMetrics)
	out := group.Group("/outcome")
	out.POST("/panel", r.handlePanel)
	out.POST("/chart", r.handleChart)
	out.POST("/snapshot", r.handleSnapshot)
	out.POST("/report", r.handleReport)
}

type metricView struct {
	metrics.Option
	Title string `json:"title"`
}

func (r *Router) handleMetrics(c *gin.Context) {
	options := r.Catalog.List()
	if raw := strings.TrimSpace(c.Query("predictionType")); raw != "" {
		pt, ok := fairness.ParsePredictionType(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown prediction type: " + raw})
			return
		}
		options = r.Catalog.ForPredictionType(pt)
	}
	loc := r.Labels(c.GetHeader("Accept-Language"))
	views := make([]metricView, len(options))
	for i, opt := range options {
		views[i] = metricView{Option: opt, Title: loc.Lookup(opt.TitleKey)}
	}
	c.JSON(http.StatusOK, gin.H{"metrics": views})
}

func (r *Router) handlePanel(c *gin.Context) {
	panel, err := r.buildPanel(c)
	if err != nil {
		if errors.Is(err, outcome.ErrUnsupportedPredictionType) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "panel": panel})
			return
		}
		r.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, panel)
}

func (r *Router) handleChart(c *gin.Context) {
	panel, err := r.buildPanel(c)
	if err != nil {
		r.writeError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := r.Renderer.Page(&buf, panel); err != nil {
		r.writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (r *Router) handleSnapshot(c *gin.Context) {
	if !r.Snapshotter.Enabled() {
		r.writeError(c, render.ErrSnapshotDisabled)
		return
	}
	panel, err := r.buildPanel(c)
	if err != nil {
		r.writeError(c, err)
		return
	}
	png, err := r.Snapshotter.Snapshot(c.Request.Context(), panel)
	if err != nil {
		r.writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (r *Router) handleReport(c *gin.Context) {
	raw, err := readBody(c)
	if err != nil {
		r.writeError(c, err)
		return
	}
	report, err := r.Decoder.DecodeReport(raw)
	if err != nil {
		r.writeError(c, err)
		return
	}
	if report.Locale == "" {
		report.Locale = c.GetHeader("Accept-Language")
	}
	panels, err := r.Service.BuildAll(report)
	if err != nil {
		r.writeError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := r.Renderer.Report(c.Request.Context(), &buf, report.Title, report.Locale, panels); err != nil {
		r.writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// buildPanel decodes the request body and builds the panel. The locale falls
// back to the Accept-Language header.
func (r *Router) buildPanel(c *gin.Context) (outcome.Panel, error) {
	raw, err := readBody(c)
	if err != nil {
		return outcome.Panel{}, err
	}
	req, err := r.Decoder.DecodePanel(raw)
	if err != nil {
		return outcome.Panel{}, err
	}
	if req.Locale == "" {
		req.Locale = c.GetHeader("Accept-Language")
	}
	return r.Service.Build(req)
}

func readBody(c *gin.Context) ([]byte, error) {
	body := http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	raw, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("%w: limit %d bytes", errBodyTooLarge, tooLarge.Limit)
		}
		return nil, errors.Join(fairness.ErrInvalidRequest, err)
	}
	return raw, nil
}

func (r *Router) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errBodyTooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, fairness.ErrInvalidRequest):
		status = http.StatusBadRequest
	case errors.Is(err, outcome.ErrUnsupportedPredictionType):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, render.ErrSnapshotDisabled), errors.Is(err, render.ErrSnapshotUnavailable):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		logger.With("component", "http").Error("request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
