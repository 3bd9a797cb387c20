// Package prompts implements MCP prompt handlers for t5gmcp.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to run a specific sequence of tool calls.
package prompts

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// TriagePrompt handles the case-triage MCP prompt.
type TriagePrompt struct{}

// NewTriagePrompt creates a TriagePrompt.
func NewTriagePrompt() *TriagePrompt {
	return &TriagePrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *TriagePrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("case-triage",
		mcp.WithPromptDescription(
			"Triage Telco5G customer cases. Pulls the enriched case data and "+
				"walks through escalations, open bugs and linked issues.",
		),
		mcp.WithArgument("case_number",
			mcp.ArgumentDescription("Focus on a single customer case. Omit to triage every card."),
		),
	)
}

// Handle processes the case-triage prompt request.
func (p *TriagePrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	caseNumber := ""
	if args := req.Params.Arguments; args != nil {
		caseNumber = strings.TrimSpace(args["case_number"])
	}

	if caseNumber != "" {
		return &mcp.GetPromptResult{
			Description: fmt.Sprintf("Triage case %s", caseNumber),
			Messages: []mcp.PromptMessage{
				{
					Role: mcp.RoleUser,
					Content: mcp.NewTextContent(fmt.Sprintf(
						"Please run `get_case` with case_number='%s'.\n\n"+
							"Then:\n"+
							"1. Summarize the case record (owner, status, severity) and its JIRA card\n"+
							"2. Say whether the case is escalated\n"+
							"3. List linked issues and bugs, flagging anything still open\n"+
							"4. Recommend the next action for the case owner\n\n"+
							"If no card matches, say so and suggest checking the case number.",
						caseNumber,
					)),
				},
			},
		}, nil
	}

	return &mcp.GetPromptResult{
		Description: "Triage all Telco5G cases",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Please run `get_all_case_data` to load every JIRA card with its case data.\n\n" +
						"Then:\n" +
						"1. List escalated cases first, with their card key and case owner\n" +
						"2. Call out cards with open bugs or issues but no escalation\n" +
						"3. Point out cards whose case field is null (case number missing or unknown)\n" +
						"4. Finish with a short table: card, case number, escalated, bug count, issue count",
				),
			},
		},
	}, nil
}
