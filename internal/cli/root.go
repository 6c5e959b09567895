// Package cli implements the bioexec command-line client.
package cli

import (
	"log/slog"
	"os"

	"github.com/me/bioexec/internal/logging"
	"github.com/spf13/cobra"
)

var (
	flagServer    string
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string

	logger *slog.Logger
	client *Client
)

// defaultServer returns the default server URL, checking BIOEXEC_SERVER env var first.
func defaultServer() string {
	if s := os.Getenv("BIOEXEC_SERVER"); s != "" {
		return s
	}
	return "http://localhost:8080"
}

// NewRootCmd creates the root cobra command for the bioexec CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "bioexec",
		Short: "bioexec — run bioinformatics tools wherever they are installed",
		Long:  "bioexec resolves how a tool is installed (PATH, environment modules, Singularity, Docker) and invokes it in a sandboxed working directory.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagDebug {
				flagLogLevel = "debug"
			}
			logger = logging.NewLogger(logging.ParseLevel(flagLogLevel), flagLogFormat)
			client = NewClient(flagServer, logger)
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagServer, "server", defaultServer(), "BioExec server URL (or BIOEXEC_SERVER env)")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")

	root.AddCommand(
		newToolsCmd(),
		newDetectCmd(),
		newRunCmd(),
		newHistoryCmd(),
		newJobsCmd(),
	)

	return root
}
