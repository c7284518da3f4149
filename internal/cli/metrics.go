package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"fairdash/internal/fairness"
	"fairdash/internal/metrics"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

type metricRow struct {
	metrics.Option
	Title string `json:"title"`
}

func newMetricsCommand(root *rootFlags) *cobra.Command {
	var predictionType, format string
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "List the metrics known to the dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tk, err := toolkitFrom(cmd)
			if err != nil {
				return err
			}
			options := tk.Catalog.List()
			if raw := strings.TrimSpace(predictionType); raw != "" {
				pt, ok := fairness.ParsePredictionType(raw)
				if !ok {
					return fmt.Errorf("unknown prediction type %q", raw)
				}
				options = tk.Catalog.ForPredictionType(pt)
			}
			loc := tk.Labels(root.locale)
			rows := make([]metricRow, len(options))
			for i, opt := range options {
				rows[i] = metricRow{Option: opt, Title: loc.Lookup(opt.TitleKey)}
			}

			out := cmd.OutOrStdout()
			switch strings.ToLower(format) {
			case formatJSON:
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			case formatMarkdown, formatTable, "text":
				tw := table.NewWriter()
				tw.SetOutputMirror(out)
				tw.SetStyle(table.StyleLight)
				tw.AppendHeader(table.Row{"Key", "Title", "Percentage", "Minimize", "Prediction types"})
				for _, r := range rows {
					tw.AppendRow(table.Row{r.Key, r.Title, yesNo(r.IsPercentage), yesNo(r.IsMinimization), joinTypes(r.PredictionTypes)})
				}
				if strings.EqualFold(format, formatMarkdown) {
					tw.RenderMarkdown()
				} else {
					tw.Render()
				}
				return nil
			default:
				return fmt.Errorf("unknown format %q (want table|markdown|json)", format)
			}
		},
	}
	cmd.Flags().StringVarP(&predictionType, "prediction-type", "p", "", "only metrics that apply to this prediction type")
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format: table|markdown|json")
	return cmd
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func joinTypes(types []fairness.PredictionType) string {
	if len(types) == 0 {
		return "all"
	}
	parts := make([]string, len(types))
	for i, pt := range types {
		parts[i] = pt.String()
	}
	return strings.Join(parts, ", ")
}
