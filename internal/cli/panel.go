package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"fairdash/internal/app"
	"fairdash/internal/outcome"
	"fairdash/internal/render"

	"github.com/spf13/cobra"
)

const (
	formatJSON     = "json"
	formatTable    = "table"
	formatMarkdown = "markdown"
	formatHTML     = "html"
	formatPNG      = "png"
)

var panelFormats = []string{formatJSON, formatTable, formatMarkdown, formatHTML, formatPNG}

func newPanelCommand(root *rootFlags) *cobra.Command {
	var input, output, format string
	cmd := &cobra.Command{
		Use:   "panel",
		Short: "Build the outcome panel of one request",
		Example: `  # Summary table on the terminal
  fairplot panel -i request.json -f table

  # Standalone chart page
  fairplot panel -i request.json -f html -o outcome.html`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tk, err := toolkitFrom(cmd)
			if err != nil {
				return err
			}
			return runPanel(cmd, tk, root.locale, input, output, format)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "-", "panel request JSON file (- for stdin)")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file (- for stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", formatJSON, "output format: "+strings.Join(panelFormats, "|"))
	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return panelFormats, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

func runPanel(cmd *cobra.Command, tk *app.Toolkit, locale, input, output, format string) error {
	format = strings.ToLower(strings.TrimSpace(format))
	if !validFormat(format) {
		return fmt.Errorf("unknown format %q (want %s)", format, strings.Join(panelFormats, "|"))
	}
	raw, err := readInput(cmd, input)
	if err != nil {
		return err
	}
	req, err := tk.Decoder.DecodePanel(raw)
	if err != nil {
		return err
	}
	if req.Locale == "" {
		req.Locale = locale
	}
	panel, err := tk.Service.Build(req)
	if err != nil {
		return err
	}

	// PNG capture can fail; do it before the output file is created.
	var png []byte
	if format == formatPNG {
		if png, err = tk.Snapshotter.Snapshot(cmd.Context(), panel); err != nil {
			return err
		}
	}

	w, closeFn, err := openOutput(cmd, output)
	if err != nil {
		return err
	}
	if err := writePanel(w, tk, panel, format, png); err != nil {
		_ = closeFn()
		return err
	}
	return closeFn()
}

func writePanel(w io.Writer, tk *app.Toolkit, panel outcome.Panel, format string, png []byte) error {
	switch format {
	case formatTable:
		return tk.Renderer.WriteTable(w, panel, render.TableText)
	case formatMarkdown:
		return tk.Renderer.WriteTable(w, panel, render.TableMarkdown)
	case formatHTML:
		return tk.Renderer.Page(w, panel)
	case formatPNG:
		_, err := w.Write(png)
		return err
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(panel)
	}
}

func validFormat(format string) bool {
	for _, f := range panelFormats {
		if f == format {
			return true
		}
	}
	return false
}
