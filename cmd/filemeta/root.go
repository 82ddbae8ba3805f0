package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/filemeta/internal/logging"
)

const version = "0.1.0"

// newRootCmd builds the command tree. Each call returns fresh flag state.
func newRootCmd() *cobra.Command {
	var logLevel, logFormat string

	cmd := &cobra.Command{
		Use:   "filemeta",
		Short: "Detect the layout, encoding and field types of delimited text files",
		Long: `filemeta examines delimited text files and reports their character set,
delimiter, enclosure, junk header and footer lines, and the inferred type of
every field.

Defaults are read from the same DETECT_* environment variables as the server.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), logLevel, logFormat))
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")

	cmd.AddCommand(newAnalyzeCmd())
	return cmd
}
