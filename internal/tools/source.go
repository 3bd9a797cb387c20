package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/t5g-dashboard/t5gmcp/internal/dashboard"
)

var sourceDescriptions = map[dashboard.Source]string{
	dashboard.Cards:       "Retrieve all JIRA cards from the dashboard.",
	dashboard.Cases:       "Retrieve all customer cases from the dashboard.",
	dashboard.Bugs:        "Retrieve all JIRA bugs from the dashboard, keyed by case number.",
	dashboard.Details:     "Retrieve all extended case details from the dashboard, keyed by case number.",
	dashboard.Escalations: "Retrieve the list of escalated cases from the dashboard.",
	dashboard.Issues:      "Retrieve all issues associated with a case from the dashboard, keyed by case number.",
}

// SourceTool handles one of the get_<source> MCP tools. It returns the
// dashboard payload as-is.
type SourceTool struct {
	fetcher Fetcher
	source  dashboard.Source
}

// NewSourceTool creates a SourceTool for src.
func NewSourceTool(fetcher Fetcher, src dashboard.Source) *SourceTool {
	return &SourceTool{fetcher: fetcher, source: src}
}

// Name returns the tool name, get_<source>.
func (t *SourceTool) Name() string {
	return "get_" + string(t.source)
}

// Definition returns the MCP tool definition.
func (t *SourceTool) Definition() mcp.Tool {
	desc, ok := sourceDescriptions[t.source]
	if !ok {
		desc = fmt.Sprintf("Retrieve %s from the dashboard.", t.source)
	}
	return mcp.NewTool(t.Name(),
		mcp.WithDescription(desc),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

// Handle fetches the source and returns it.
func (t *SourceTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	v, err := t.fetcher.Fetch(ctx, t.source)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to fetch %s: %v", t.source, err)), nil
	}
	return structuredResult(v)
}
