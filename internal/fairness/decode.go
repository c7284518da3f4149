package fairness

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"
)

// ErrInvalidRequest marks payloads that fail parsing, schema or shape checks.
var ErrInvalidRequest = errors.New("invalid panel request")

//go:embed schema/panel.json
var panelSchema string

const panelSchemaURL = "panel.json"

var predictionTypePaths = []string{
	"dashboardContext.modelMetadata.PredictionType",
	"dashboardContext.modelMetadata.predictionType",
	"predictionType",
}

// Decoder turns raw JSON into validated panel requests.
type Decoder struct {
	panel *jsonschema.Schema
}

// NewDecoder compiles the embedded panel schema.
func NewDecoder() (*Decoder, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(panelSchemaURL, strings.NewReader(panelSchema)); err != nil {
		return nil, fmt.Errorf("add panel schema: %w", err)
	}
	schema, err := compiler.Compile(panelSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile panel schema: %w", err)
	}
	return &Decoder{panel: schema}, nil
}

// DecodePanel parses a single panel request.
func (d *Decoder) DecodePanel(raw []byte) (PanelRequest, error) {
	node, err := parseRoot(raw)
	if err != nil {
		return PanelRequest{}, err
	}
	return d.decodePanelNode(node)
}

// DecodeReport parses {"title", "locale", "panels": [...]}. Panels without a
// locale inherit the report's.
func (d *Decoder) DecodeReport(raw []byte) (ReportRequest, error) {
	node, err := parseRoot(raw)
	if err != nil {
		return ReportRequest{}, err
	}
	panels := node.Get("panels")
	if !panels.IsArray() {
		return ReportRequest{}, fmt.Errorf("%w: panels must be an array", ErrInvalidRequest)
	}
	report := ReportRequest{
		Title:  strings.TrimSpace(node.Get("title").String()),
		Locale: strings.TrimSpace(node.Get("locale").String()),
	}
	var decodeErr error
	idx := 0
	panels.ForEach(func(_, value gjson.Result) bool {
		idx++
		req, err := d.decodePanelNode(value)
		if err != nil {
			decodeErr = fmt.Errorf("panel #%d: %w", idx, err)
			return false
		}
		if req.Locale == "" {
			req.Locale = report.Locale
		}
		report.Panels = append(report.Panels, req)
		return true
	})
	if decodeErr != nil {
		return ReportRequest{}, decodeErr
	}
	if len(report.Panels) == 0 {
		return ReportRequest{}, fmt.Errorf("%w: panels is empty", ErrInvalidRequest)
	}
	return report, nil
}

func parseRoot(raw []byte) (gjson.Result, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return gjson.Result{}, fmt.Errorf("%w: empty body", ErrInvalidRequest)
	}
	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, fmt.Errorf("%w: malformed json", ErrInvalidRequest)
	}
	node := gjson.ParseBytes(raw)
	if !node.IsObject() {
		return gjson.Result{}, fmt.Errorf("%w: root must be an object", ErrInvalidRequest)
	}
	return node, nil
}

func (d *Decoder) decodePanelNode(node gjson.Result) (PanelRequest, error) {
	var doc any
	if err := json.Unmarshal([]byte(node.Raw), &doc); err != nil {
		return PanelRequest{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if err := d.panel.Validate(doc); err != nil {
		return PanelRequest{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	var req PanelRequest
	if err := json.Unmarshal([]byte(node.Raw), &req); err != nil {
		return PanelRequest{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	req.DashboardContext.ModelMetadata.PredictionType = readPredictionType(node)
	req.Locale = strings.TrimSpace(req.Locale)
	if err := checkShape(req); err != nil {
		return PanelRequest{}, err
	}
	return req, nil
}

// readPredictionType reads the dashboard field or the top-level shortcut;
// unknown values pass through untouched.
func readPredictionType(node gjson.Result) PredictionType {
	for _, path := range predictionTypePaths {
		val := node.Get(path)
		if !val.Exists() {
			continue
		}
		pt, _ := ParsePredictionType(val.String())
		return pt
	}
	return ""
}

func checkShape(req PanelRequest) error {
	groups := len(req.DashboardContext.GroupNames)
	bins := len(req.Metrics.Outcomes.Bins)
	if groups != bins {
		return fmt.Errorf("%w: %d group names but %d outcome bins", ErrInvalidRequest, groups, bins)
	}
	for i, g := range req.DashboardContext.BinVector {
		if g >= groups {
			return fmt.Errorf("%w: binVector[%d]=%d out of range for %d groups", ErrInvalidRequest, i, g, groups)
		}
	}
	preds := len(req.Metrics.Predictions)
	vec := len(req.DashboardContext.BinVector)
	if preds > 0 && vec > 0 && preds != vec {
		return fmt.Errorf("%w: %d predictions but binVector has %d entries", ErrInvalidRequest, preds, vec)
	}
	return nil
}
