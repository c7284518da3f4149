// Package cli implements the fairplot command line: build outcome panels
// from request files and print them as JSON, tables, HTML or PNG.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"fairdash/internal/app"
	"fairdash/internal/config"
	"fairdash/internal/logger"

	"github.com/spf13/cobra"
)

const configEnv = "FAIRDASH_CONFIG"

type toolkitKey struct{}

type rootFlags struct {
	configPath string
	locale     string
	verbose    bool
}

// NewRootCmd creates the fairplot command tree.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:   "fairplot",
		Short: "Render fairness outcome panels from request files",
		Long: `fairplot builds the outcome chart of a fairness assessment from a panel
request and prints it as JSON, a text or markdown table, an HTML page or a
PNG snapshot.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			return flags.prepare(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default: $"+configEnv+", built-in defaults when unset)")
	root.PersistentFlags().StringVarP(&flags.locale, "locale", "l", "", "locale used when the request carries none")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "log at the configured level instead of warn")

	root.AddCommand(newPanelCommand(flags))
	root.AddCommand(newReportCommand(flags))
	root.AddCommand(newMetricsCommand(flags))
	return root
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func (f *rootFlags) prepare(cmd *cobra.Command) error {
	path := strings.TrimSpace(f.configPath)
	if path == "" {
		path = os.Getenv(configEnv)
	}
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return err
	}

	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetFormat(cfg.App.LogFormat)
	if f.verbose {
		logger.SetLevel(cfg.App.LogLevel)
	} else {
		logger.SetLevel("warn")
	}

	tk, err := app.NewToolkit(cfg)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, toolkitKey{}, tk))
	return nil
}

func toolkitFrom(cmd *cobra.Command) (*app.Toolkit, error) {
	if ctx := cmd.Context(); ctx != nil {
		if tk, ok := ctx.Value(toolkitKey{}).(*app.Toolkit); ok && tk != nil {
			return tk, nil
		}
	}
	return nil, fmt.Errorf("toolkit not initialized")
}

// readInput reads a file, or stdin when path is "-" or empty.
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	path = strings.TrimSpace(path)
	if path == "" || path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return raw, nil
}

// openOutput returns stdout when path is "-" or empty.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	path = strings.TrimSpace(path)
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
