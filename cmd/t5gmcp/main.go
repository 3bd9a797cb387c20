// t5gmcp: Telco5G dashboard MCP server
//
// Exposes the T5G dashboard API (cards, cases, escalations, issues, bugs,
// details) as MCP tools, including a merged view that attaches each
// card's case data, and ships a small chat client for it.
//
// Usage:
//
//	t5gmcp serve              # MCP server (stdio transport)
//	t5gmcp serve -t http      # MCP server on :8000/mcp, metrics on /metrics
//	t5gmcp get -d cards       # call one tool and print its JSON
//	t5gmcp chat               # interactive chat against a running server
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/t5g-dashboard/t5gmcp/internal/config"
	"github.com/t5g-dashboard/t5gmcp/internal/logging"
	t5gserver "github.com/t5g-dashboard/t5gmcp/internal/server"
)

var (
	// Global flags
	configPath string
	logLevel   string

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "t5gmcp",
	Short: "MCP server for the Telco5G dashboard",
	Long: `t5gmcp serves the T5G dashboard API over the Model Context Protocol.

Tools return JIRA cards, customer cases, escalations, issues, bugs and case
details, plus get_all_case_data, which attaches each card's case data by
case number.

Settings come from --config (YAML), then the environment:
  DASHBOARD_API   dashboard API base URL (required for serve)
  MCP_URL         MCP endpoint used by get and chat
  CHAT_MODEL      Gemini model used by chat
  T5G_DATA_DIR    snapshot history directory
  T5G_LOG_LEVEL   debug, info, warn or error`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		logger, err = logging.New(cfg.LogLevel)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "t5gmcp v%s\n", t5gserver.Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default from config)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
