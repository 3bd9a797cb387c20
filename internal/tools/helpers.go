// Package tools implements the t5gmcp MCP tool handlers.
//
// Each tool is a struct that receives its dependencies via a constructor
// and exposes Definition() for registration and Handle() with mcp-go's
// CallToolRequest signature. Domain failures (dashboard down, bad
// arguments) come back as error results, never as Go errors, so the
// calling model sees the message.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/t5g-dashboard/t5gmcp/internal/casedata"
	"github.com/t5g-dashboard/t5gmcp/internal/dashboard"
)

// Fetcher is the slice of the dashboard client the tools use.
type Fetcher interface {
	Fetch(ctx context.Context, src dashboard.Source) (any, error)
	FetchAll(ctx context.Context) (casedata.Sources, error)
}

// ResultField wraps payloads that are not JSON objects, since structured
// tool content must be an object.
const ResultField = "result"

// WrappedMeta is the _meta flag set on results whose payload sits under
// ResultField. Clients unwrap only when it is true.
const WrappedMeta = "t5gmcp/wrapped"

// structuredResult returns v as structured content with its JSON text as
// the fallback content block.
func structuredResult(v any) (*mcp.CallToolResult, error) {
	_, isObject := v.(*casedata.Object)
	if !isObject {
		wrapped := casedata.NewObject()
		wrapped.Set(ResultField, v)
		v = wrapped
	}
	text, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	res := mcp.NewToolResultStructured(v, string(text))
	if !isObject {
		res.Meta = mcp.NewMetaFromMap(map[string]any{WrappedMeta: true})
	}
	return res, nil
}

// intArg extracts an integer argument from a tool request, returning
// defaultVal if the key is missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}
