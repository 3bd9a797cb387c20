package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// StatusPrompt handles the dashboard-status MCP prompt.
// It asks the AI to compare the latest snapshots.
type StatusPrompt struct{}

// NewStatusPrompt creates a StatusPrompt.
func NewStatusPrompt() *StatusPrompt {
	return &StatusPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *StatusPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("dashboard-status",
		mcp.WithPromptDescription(
			"Report what changed on the T5G dashboard since the last recorded run: "+
				"card counts, escalations and degraded sources.",
		),
	)
}

// Handle processes the dashboard-status prompt request.
func (p *StatusPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "T5G Dashboard Status",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Please run `list_snapshots` with limit=2 to see the two most recent runs.\n\n" +
						"Then:\n" +
						"1. If there are none, run `get_all_case_data` and report its counts\n" +
						"2. Otherwise compare the counts between the two runs\n" +
						"3. Highlight any degraded sources, since their fields were null in that run\n" +
						"4. Suggest whether a fresh `get_all_case_data` call is worthwhile",
				),
			},
		},
	}, nil
}
