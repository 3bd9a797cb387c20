package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/t5g-dashboard/t5gmcp/internal/chat"
	t5gserver "github.com/t5g-dashboard/t5gmcp/internal/server"
)

var (
	chatMCPURL string
	chatModel  string
	chatNoLLM  bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with a running t5gmcp server",
	Long: `Start an interactive chat against a running t5gmcp server.

When GEMINI_API_KEY or GOOGLE_API_KEY is set, a Gemini model picks which
tool to call. Otherwise, or with --no-llm, messages are routed to a tool by
keyword (cards, cases, bugs, issues, details, escalations, full case data).

Type 'exit' or 'quit' to leave.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatMCPURL, "mcp-url", "", "MCP server URL (default from config or MCP_URL)")
	chatCmd.Flags().StringVar(&chatModel, "model", "", "Gemini model (default from config or CHAT_MODEL)")
	chatCmd.Flags().BoolVar(&chatNoLLM, "no-llm", false, "Disable the LLM and use keyword routing")
}

// apiKey returns the Gemini API key from the environment.
func apiKey() string {
	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		return k
	}
	return os.Getenv("GOOGLE_API_KEY")
}

func runChat(cmd *cobra.Command, args []string) error {
	if chatMCPURL != "" {
		cfg.Chat.MCPURL = chatMCPURL
	}
	if chatModel != "" {
		cfg.Chat.Model = chatModel
	}
	if chatNoLLM {
		cfg.Chat.NoLLM = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	caller, err := chat.Dial(ctx, cfg.Chat.MCPURL, t5gserver.Version)
	if err != nil {
		return err
	}
	defer func() { _ = caller.Close() }()

	assistant := newAssistant(ctx, caller)
	return chat.NewSession(assistant, cmd.InOrStdin(), cmd.OutOrStdout()).Run(ctx)
}

// newAssistant picks the Gemini assistant when it is enabled and usable,
// falling back to keyword routing.
func newAssistant(ctx context.Context, caller chat.ToolCaller) chat.Assistant {
	key := apiKey()
	if cfg.Chat.NoLLM || key == "" {
		return chat.NewKeywordAssistant(caller)
	}

	client, err := chat.NewGenAIClient(ctx, key)
	if err != nil {
		logger.Warn("LLM disabled, using keyword routing", zap.Error(err))
		return chat.NewKeywordAssistant(caller)
	}
	assistant, err := chat.NewGenAIAssistant(ctx, client.Models, cfg.Chat.Model, caller, logger.Named("chat"))
	if err != nil {
		logger.Warn("LLM disabled, using keyword routing", zap.Error(err))
		return chat.NewKeywordAssistant(caller)
	}
	logger.Info("chat using Gemini", zap.String("model", cfg.Chat.Model))
	return assistant
}
