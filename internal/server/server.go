// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it creates concrete implementations
// and injects them into the tools/prompts/resources that depend on them.
// No business logic lives here, only wiring.
package server

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/t5g-dashboard/t5gmcp/internal/config"
	"github.com/t5g-dashboard/t5gmcp/internal/dashboard"
	"github.com/t5g-dashboard/t5gmcp/internal/metrics"
	"github.com/t5g-dashboard/t5gmcp/internal/prompts"
	"github.com/t5g-dashboard/t5gmcp/internal/resources"
	"github.com/t5g-dashboard/t5gmcp/internal/snapshot"
	"github.com/t5g-dashboard/t5gmcp/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Name is the MCP server name announced to clients.
const Name = "t5gmcp"

// New creates and configures the MCP server with all tools, prompts,
// and resources registered. m and logger may be nil.
//
// The returned cleanup function closes the snapshot store and must be
// called on shutdown (typically via defer). It is always non-nil and safe
// to call even if the snapshot store failed to open.
func New(cfg config.Config, logger *zap.Logger, m *metrics.Metrics) (*server.MCPServer, func(), error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	// --- Create shared dependencies ---

	client, err := dashboard.New(cfg.DashboardAPI,
		dashboard.WithTimeout(cfg.RequestTimeout),
		dashboard.WithRateLimit(cfg.RateLimit, cfg.RateBurst),
		dashboard.WithObserver(m),
		dashboard.WithLogger(logger.Named("dashboard")),
	)
	if err != nil {
		return nil, noop, fmt.Errorf("creating dashboard client: %w", err)
	}

	// --- Create the MCP server ---

	s := server.NewMCPServer(
		Name,
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithToolHandlerMiddleware(observeTools(m, logger)),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register dashboard source tools ---

	for _, src := range dashboard.AllSources {
		tool := tools.NewSourceTool(client, src)
		s.AddTool(tool.Definition(), tool.Handle)
	}

	// --- Register enrichment tools ---

	toolLogger := logger.Named("tools")

	allCaseData := tools.NewAllCaseDataTool(client, m, toolLogger)
	s.AddTool(allCaseData.Definition(), allCaseData.Handle)

	caseTool := tools.NewCaseTool(client, m, toolLogger)
	s.AddTool(caseTool.Definition(), caseTool.Handle)

	// --- Register snapshot tools ---
	//
	// Snapshot history is an independent subsystem: if it fails to
	// initialize, the dashboard tools keep working. We log a warning and
	// skip registration.

	cleanup := noop
	var history resources.History

	store, storeErr := openSnapshots(cfg)
	switch {
	case storeErr != nil:
		logger.Warn("snapshot history disabled", zap.Error(storeErr))
	case store == nil:
		logger.Info("snapshot history disabled: no data_dir configured")
	default:
		cleanup = func() {
			if err := store.Close(); err != nil {
				logger.Warn("snapshot store close", zap.Error(err))
			}
		}
		history = store

		allCaseData.SetObserver(tools.NewSnapshotBridge(store, logger.Named("snapshot")))

		listTool := tools.NewListSnapshotsTool(store)
		s.AddTool(listTool.Definition(), listTool.Handle)

		getTool := tools.NewGetSnapshotTool(store)
		s.AddTool(getTool.Definition(), getTool.Handle)
	}

	// --- Register prompts ---

	triagePrompt := prompts.NewTriagePrompt()
	s.AddPrompt(triagePrompt.Definition(), triagePrompt.Handle)

	statusPrompt := prompts.NewStatusPrompt()
	s.AddPrompt(statusPrompt.Definition(), statusPrompt.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(client.BaseURL(), history)
	s.AddResource(resourceHandler.StatusResource(), resourceHandler.HandleStatus)

	return s, cleanup, nil
}

// noop is a no-op cleanup function used when the snapshot store is
// disabled or hasn't been initialized.
func noop() {}

// openSnapshots opens the snapshot store, or returns nil when no data
// directory is configured.
func openSnapshots(cfg config.Config) (*snapshot.Store, error) {
	if cfg.DataDir == "" {
		return nil, nil
	}
	return snapshot.New(snapshot.Config{
		DataDir:   cfg.DataDir,
		Retention: cfg.SnapshotRetention,
	})
}

// observeTools counts and logs every tool call.
func observeTools(m *metrics.Metrics, logger *zap.Logger) server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			start := time.Now()
			res, err := next(ctx, req)
			failed := err != nil || (res != nil && res.IsError)
			m.ObserveToolCall(req.Params.Name, failed)
			logger.Debug("tool call",
				zap.String("tool", req.Params.Name),
				zap.Bool("failed", failed),
				zap.Duration("elapsed", time.Since(start)),
			)
			return res, err
		}
	}
}

// serverInstructions returns the system instructions that tell the AI
// how to use the dashboard tools.
func serverInstructions() string {
	return `You have access to the Telco5G (T5G) dashboard: JIRA cards that track
customer support cases, plus the cases themselves, escalations, linked issues,
bugs and extended case details.

## Which tool to call

- get_all_case_data: the default. Returns every JIRA card with its case data
  attached (case, escalated, issues, bugs, details). Use it for any question
  that spans cards and cases.
- get_case: the enriched cards for one customer case number. Prefer it when
  the user names a case.
- get_cards, get_cases, get_escalations, get_issues, get_bugs, get_details:
  one raw dashboard source, unmerged. Use them only when the user asks for
  that source specifically.
- list_snapshots / get_snapshot: earlier get_all_case_data runs, when history
  is enabled. Use them to answer "what changed" without refetching.

## Reading enriched cards

- case is null when the card has no case_number or the case is unknown.
- escalated is always true or false.
- issues, bugs and details are null when the dashboard has nothing for the
  case, or when that source returned an unexpected shape.
- Case numbers match across sources even when one side is numeric or has
  leading zeros ("00123" and 123 are the same case).
- Cards fetched as a list come back as {"items": [...]}.`
}
