package render

import (
	"fmt"
	"io"
	"strings"

	"fairdash/internal/outcome"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// TableFormat selects the text table flavour.
type TableFormat string

const (
	TableText     TableFormat = "text"
	TableMarkdown TableFormat = "markdown"
)

// WriteTable prints the panel's summary table: header label as title, one
// row per group and the help text as caption.
func (r *Renderer) WriteTable(w io.Writer, p outcome.Panel, format TableFormat) error {
	loc := r.localizer(p.Locale)

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	if p.Header.Label != "" {
		t.SetTitle("%s", p.Header.Label)
	}
	t.AppendHeader(table.Row{loc.Lookup(KeyGroupLabel), p.Table.MetricLabel})
	for i, label := range p.Table.BinLabels {
		value := ""
		if i < len(p.Table.FormattedBinValues) {
			value = p.Table.FormattedBinValues[i]
		}
		t.AppendRow(table.Row{label, value})
	}
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})

	var caption []string
	if p.Table.BinGroup != "" {
		caption = append(caption, fmt.Sprintf("%s: %s", loc.Lookup(KeySensitiveFeature), p.Table.BinGroup))
	}
	caption = append(caption, p.Header.Help...)
	if len(caption) > 0 {
		t.SetCaption("%s", strings.Join(caption, "\n"))
	}

	var out string
	switch format {
	case TableMarkdown:
		out = t.RenderMarkdown()
	default:
		out = t.Render()
	}
	_, err := fmt.Fprintln(w, out)
	return err
}
