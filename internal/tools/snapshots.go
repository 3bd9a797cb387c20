package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/t5g-dashboard/t5gmcp/internal/casedata"
	"github.com/t5g-dashboard/t5gmcp/internal/snapshot"
)

// ListSnapshotsTool handles the list_snapshots MCP tool.
type ListSnapshotsTool struct {
	store *snapshot.Store
}

// NewListSnapshotsTool creates a ListSnapshotsTool.
func NewListSnapshotsTool(store *snapshot.Store) *ListSnapshotsTool {
	return &ListSnapshotsTool{store: store}
}

// Definition returns the MCP tool definition for list_snapshots.
func (t *ListSnapshotsTool) Definition() mcp.Tool {
	return mcp.NewTool("list_snapshots",
		mcp.WithDescription(
			"List recent get_all_case_data runs, newest first, with card, case, "+
				"escalation, issue, bug and detail counts. Use get_snapshot to load one.",
		),
		mcp.WithNumber("limit",
			mcp.Description("Max results (default: 10, max: 100)"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

// Handle processes the list_snapshots tool call.
func (t *ListSnapshotsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := intArg(req, "limit", 10)
	if limit > 100 {
		limit = 100
	}

	snaps, err := t.store.Recent(limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list snapshots: %v", err)), nil
	}

	if len(snaps) == 0 {
		return mcp.NewToolResultText("No snapshots recorded yet. Call get_all_case_data first."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d snapshots:\n\n", len(snaps))
	for i, s := range snaps {
		fmt.Fprintf(&b, "[%d] %s (%s) - %s: %d cards, %d with case, %d escalated, %d with issues, %d with bugs, %d with details",
			i+1, s.ID, s.CreatedAt, s.Stats.Shape,
			s.Stats.Cards, s.Stats.WithCase, s.Stats.Escalated,
			s.Stats.WithIssues, s.Stats.WithBugs, s.Stats.WithDetails,
		)
		if len(s.Degraded) > 0 {
			fmt.Fprintf(&b, " | degraded: %s", strings.Join(s.Degraded, ", "))
		}
		b.WriteString("\n")
	}

	return mcp.NewToolResultText(b.String()), nil
}

// GetSnapshotTool handles the get_snapshot MCP tool.
type GetSnapshotTool struct {
	store *snapshot.Store
}

// NewGetSnapshotTool creates a GetSnapshotTool.
func NewGetSnapshotTool(store *snapshot.Store) *GetSnapshotTool {
	return &GetSnapshotTool{store: store}
}

// Definition returns the MCP tool definition for get_snapshot.
func (t *GetSnapshotTool) Definition() mcp.Tool {
	return mcp.NewTool("get_snapshot",
		mcp.WithDescription("Return the enriched case data stored by an earlier get_all_case_data run."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Snapshot ID from list_snapshots"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

// Handle processes the get_snapshot tool call.
func (t *GetSnapshotTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strings.TrimSpace(req.GetString("id", ""))
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}

	snap, err := t.store.Get(id)
	if errors.Is(err, snapshot.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("snapshot %s not found", id)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load snapshot: %v", err)), nil
	}

	payload, err := casedata.Decode([]byte(snap.Payload))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("snapshot %s is corrupt: %v", id, err)), nil
	}
	return structuredResult(payload)
}
