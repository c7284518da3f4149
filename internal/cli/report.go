package cli

import (
	"github.com/spf13/cobra"
)

func newReportCommand(root *rootFlags) *cobra.Command {
	var input, output string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render every panel of a report request into one HTML page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tk, err := toolkitFrom(cmd)
			if err != nil {
				return err
			}
			raw, err := readInput(cmd, input)
			if err != nil {
				return err
			}
			report, err := tk.Decoder.DecodeReport(raw)
			if err != nil {
				return err
			}
			if report.Locale == "" {
				report.Locale = root.locale
			}
			panels, err := tk.Service.BuildAll(report)
			if err != nil {
				return err
			}
			w, closeFn, err := openOutput(cmd, output)
			if err != nil {
				return err
			}
			if err := tk.Renderer.Report(cmd.Context(), w, report.Title, report.Locale, panels); err != nil {
				_ = closeFn()
				return err
			}
			return closeFn()
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "-", "report request JSON file (- for stdin)")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output HTML file (- for stdout)")
	return cmd
}
