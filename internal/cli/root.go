// Package cli implements the reportctl command line tool: offline rendering
// and delivery of job records, and credential management.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"fieldreport/internal/infra"
)

type configKey struct{}

// NewRootCommand builds the command tree. Output that is meant for the user
// goes to out; logs go to stderr.
func NewRootCommand(out io.Writer) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "reportctl",
		Short:         "Render and deliver field service job reports",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			cfg, err := infra.LoadConfig()
			if err != nil {
				return err
			}
			level := "warn"
			if verbose {
				level = "debug"
			}
			logger := infra.NewLoggerTo(cmd.ErrOrStderr(), "development", level)
			ctx := logger.WithContext(cmd.Context())
			cmd.SetContext(context.WithValue(ctx, configKey{}, cfg))
			return nil
		},
	}
	root.SetOut(out)
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newRenderCmd())
	root.AddCommand(newSMTPPasswordCmd())
	return root
}

// Execute runs the tool with the process arguments.
func Execute(ctx context.Context) error {
	return NewRootCommand(os.Stdout).ExecuteContext(ctx)
}

func configFrom(cmd *cobra.Command) *infra.Config {
	if cfg, ok := cmd.Context().Value(configKey{}).(*infra.Config); ok {
		return cfg
	}
	return &infra.Config{}
}

func loggerFrom(cmd *cobra.Command) zerolog.Logger {
	return *zerolog.Ctx(cmd.Context())
}
