// Package resources implements MCP resource handlers for t5gmcp.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (t5g://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/t5g-dashboard/t5gmcp/internal/dashboard"
	"github.com/t5g-dashboard/t5gmcp/internal/snapshot"
)

// StatusURI addresses the dashboard status resource.
const StatusURI = "t5g://dashboard/status"

// History is the part of the snapshot store the status resource reads.
type History interface {
	Stats() (*snapshot.Stats, error)
	Latest() (*snapshot.Snapshot, error)
}

// Handler manages t5gmcp resource endpoints.
type Handler struct {
	dashboardURL string
	history      History
}

// NewHandler creates a resource Handler. history may be nil when the
// snapshot store is disabled.
func NewHandler(dashboardURL string, history History) *Handler {
	return &Handler{dashboardURL: dashboardURL, history: history}
}

// Status is the JSON document served at StatusURI.
type Status struct {
	DashboardAPI     string             `json:"dashboard_api"`
	Sources          []string           `json:"sources"`
	SnapshotsEnabled bool               `json:"snapshots_enabled"`
	Snapshots        *snapshot.Stats    `json:"snapshots,omitempty"`
	Latest           *snapshot.Snapshot `json:"latest,omitempty"`
}

// StatusResource returns the MCP resource definition for dashboard status.
func (h *Handler) StatusResource() mcp.Resource {
	return mcp.NewResource(
		StatusURI,
		"T5G Dashboard Status",
		mcp.WithResourceDescription("Dashboard API endpoint, available sources, and the most recent enrichment run"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleStatus returns the current status as JSON.
func (h *Handler) HandleStatus(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	status := Status{DashboardAPI: h.dashboardURL}
	for _, src := range dashboard.AllSources {
		status.Sources = append(status.Sources, string(src))
	}

	if h.history != nil {
		status.SnapshotsEnabled = true
		stats, err := h.history.Stats()
		if err != nil {
			return errorResource(req.Params.URI, err.Error()), nil
		}
		status.Snapshots = stats

		latest, err := h.history.Latest()
		if err != nil {
			return errorResource(req.Params.URI, err.Error()), nil
		}
		status.Latest = latest
	}

	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling status: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
