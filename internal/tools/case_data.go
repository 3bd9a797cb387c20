package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/t5g-dashboard/t5gmcp/internal/casedata"
	"github.com/t5g-dashboard/t5gmcp/internal/dashboard"
)

// DegradedObserver is told about auxiliary sources with an unusable shape.
type DegradedObserver interface {
	ObserveDegraded(source string)
	ObserveMerge(stats casedata.Stats)
}

// enricher fetches all six sources and runs the merge.
type enricher struct {
	fetcher Fetcher
	metrics DegradedObserver
	logger  *zap.Logger
}

type enrichment struct {
	merged   casedata.Merged
	stats    casedata.Stats
	degraded []string
}

func (e *enricher) run(ctx context.Context) (*enrichment, error) {
	src, err := e.fetcher.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	idx := casedata.NormalizeAll(src)
	var degraded []string
	for _, aux := range []struct {
		source dashboard.Source
		index  *casedata.Index
	}{
		{dashboard.Cases, idx.Cases},
		{dashboard.Escalations, idx.Escalations},
		{dashboard.Issues, idx.Issues},
		{dashboard.Bugs, idx.Bugs},
		{dashboard.Details, idx.Details},
	} {
		if aux.index.Degraded() {
			degraded = append(degraded, string(aux.source))
			e.logger.Warn("dashboard source has an unexpected shape; its fields will be null",
				zap.String("source", string(aux.source)))
			if e.metrics != nil {
				e.metrics.ObserveDegraded(string(aux.source))
			}
		}
	}

	merged := casedata.Merge(src.Cards, idx.Cases, idx.Escalations, idx.Issues, idx.Bugs, idx.Details)
	stats := casedata.Summarize(merged)
	if e.metrics != nil {
		e.metrics.ObserveMerge(stats)
	}

	if !stats.Enriched() {
		e.logger.Warn("cards payload is neither a mapping nor a list; enrichment skipped",
			zap.String("type", fmt.Sprintf("%T", src.Cards)))
	} else {
		e.logger.Info("case data merged",
			zap.String("shape", string(stats.Shape)),
			zap.Int("cards", stats.Cards),
			zap.Int("with_case", stats.WithCase),
			zap.Int("escalated", stats.Escalated),
			zap.Strings("degraded", degraded),
		)
	}

	return &enrichment{merged: merged, stats: stats, degraded: degraded}, nil
}

// AllCaseDataTool handles the get_all_case_data MCP tool.
type AllCaseDataTool struct {
	enricher *enricher
	observer RunObserver
}

// NewAllCaseDataTool creates an AllCaseDataTool. metrics and logger may be nil.
func NewAllCaseDataTool(fetcher Fetcher, metrics DegradedObserver, logger *zap.Logger) *AllCaseDataTool {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AllCaseDataTool{enricher: &enricher{fetcher: fetcher, metrics: metrics, logger: logger}}
}

// SetObserver wires a RunObserver (typically the snapshot bridge).
func (t *AllCaseDataTool) SetObserver(obs RunObserver) {
	t.observer = obs
}

// Definition returns the MCP tool definition for get_all_case_data.
func (t *AllCaseDataTool) Definition() mcp.Tool {
	return mcp.NewTool("get_all_case_data",
		mcp.WithDescription(
			"Return JIRA cards with their case data attached by case_number. "+
				"Each card gains: case (customer case record or null), escalated (boolean), "+
				"issues, bugs and details (payload for the case or null). "+
				"Cards fetched as a list come back as {\"items\": [...]}.",
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

// Handle fetches all sources, merges them and returns the enriched cards.
func (t *AllCaseDataTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := t.enricher.run(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to fetch case data: %v", err)), nil
	}
	notifyObserver(t.observer, res.stats, res.degraded, res.merged.Output)
	return structuredResult(res.merged.Output)
}

// CaseTool handles the get_case MCP tool: the enriched cards for one case.
type CaseTool struct {
	enricher *enricher
}

// NewCaseTool creates a CaseTool. metrics and logger may be nil.
func NewCaseTool(fetcher Fetcher, metrics DegradedObserver, logger *zap.Logger) *CaseTool {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CaseTool{enricher: &enricher{fetcher: fetcher, metrics: metrics, logger: logger}}
}

// Definition returns the MCP tool definition for get_case.
func (t *CaseTool) Definition() mcp.Tool {
	return mcp.NewTool("get_case",
		mcp.WithDescription(
			"Return the enriched JIRA cards for a single customer case number. "+
				"Matching tolerates numeric vs string case numbers; an all-digit query also ignores leading zeros.",
		),
		mcp.WithString("case_number",
			mcp.Required(),
			mcp.Description("Customer case number, e.g. 01234567"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

// Handle processes the get_case tool call.
func (t *CaseTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	caseNumber := strings.TrimSpace(req.GetString("case_number", ""))
	if caseNumber == "" {
		return mcp.NewToolResultError("'case_number' is required"), nil
	}

	res, err := t.enricher.run(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to fetch case data: %v", err)), nil
	}

	found := casedata.FindByCaseNumber(res.merged, caseQuery(caseNumber))
	matches := make([]any, len(found))
	for i, rec := range found {
		matches[i] = rec
	}

	out := casedata.NewObject()
	out.Set("case_number", caseNumber)
	out.Set("matches", matches)
	return structuredResult(out)
}

// caseQuery types a user-supplied case number. The argument arrives as a
// string whatever the user meant, so an all-digit query is treated as a
// number and matches zero-padded case numbers.
func caseQuery(s string) any {
	for _, r := range s {
		if r < '0' || r > '9' {
			return s
		}
	}
	return json.Number(s)
}
