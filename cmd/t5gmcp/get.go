package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/t5g-dashboard/t5gmcp/internal/chat"
	"github.com/t5g-dashboard/t5gmcp/internal/dashboard"
	t5gserver "github.com/t5g-dashboard/t5gmcp/internal/server"
)

// allCaseData is the get -d value for the merged view.
const allCaseData = "all_case_data"

// dataTypes are the values accepted by get -d, in help order.
var dataTypes = []string{"cards", "cases", "bugs", "details", "escalations", "issues", allCaseData}

var (
	getData   string
	getMCPURL string
)

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Call one dashboard tool on a running server and print its JSON",
	Long: `Call get_<data> on a running t5gmcp server and print the result.

Data types: cards, cases, bugs, details, escalations, issues, all_case_data.`,
	Example: "  t5gmcp get -d all_case_data --mcp-url http://localhost:8000/mcp",
	Args:    cobra.NoArgs,
	RunE:    runGet,
}

func init() {
	getCmd.Flags().StringVarP(&getData, "data", "d", "", "Data type to fetch (required)")
	getCmd.Flags().StringVar(&getMCPURL, "mcp-url", "", "MCP server URL (default from config or MCP_URL)")
	_ = getCmd.MarkFlagRequired("data")
	_ = getCmd.RegisterFlagCompletionFunc("data", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return dataTypes, cobra.ShellCompDirectiveNoFileComp
	})
}

// toolForData maps a get -d value to its tool name.
func toolForData(data string) (string, error) {
	if data == allCaseData {
		return "get_" + allCaseData, nil
	}
	src, err := dashboard.ParseSource(data)
	if err != nil {
		return "", fmt.Errorf("unknown data type: %s", data)
	}
	return "get_" + string(src), nil
}

func runGet(cmd *cobra.Command, args []string) error {
	tool, err := toolForData(getData)
	if err != nil {
		return err
	}

	url := cfg.Chat.MCPURL
	if getMCPURL != "" {
		url = getMCPURL
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	caller, err := chat.Dial(ctx, url, t5gserver.Version)
	if err != nil {
		return err
	}
	defer func() { _ = caller.Close() }()

	data, err := caller.CallTool(ctx, tool, nil)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), data)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
