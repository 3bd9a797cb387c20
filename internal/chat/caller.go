package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/t5g-dashboard/t5gmcp/internal/casedata"
	"github.com/t5g-dashboard/t5gmcp/internal/tools"
)

// ToolCaller invokes tools on an MCP server.
type ToolCaller interface {
	ListTools(ctx context.Context) ([]mcp.Tool, error)
	CallTool(ctx context.Context, name string, args map[string]any) (any, error)
}

// ToolError is a tool call the server answered with an error result.
type ToolError struct {
	Tool    string
	Message string
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %s: %s", e.Tool, e.Message)
}

// MCPCaller is a ToolCaller backed by an mcp-go client.
type MCPCaller struct {
	client *client.Client
}

// clientName is announced to the server during initialization.
const clientName = "t5gmcp-chat"

// Dial connects to the streamable HTTP MCP endpoint at url and runs the
// initialize handshake.
func Dial(ctx context.Context, url, version string) (*MCPCaller, error) {
	c, err := client.NewStreamableHttpClient(url)
	if err != nil {
		return nil, fmt.Errorf("creating MCP client: %w", err)
	}
	caller, err := NewMCPCaller(ctx, c, version)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("connecting to %s: %w", url, err)
	}
	return caller, nil
}

// NewMCPCaller starts c and performs the initialize handshake.
func NewMCPCaller(ctx context.Context, c *client.Client, version string) (*MCPCaller, error) {
	if err := c.Start(ctx); err != nil {
		return nil, err
	}
	req := mcp.InitializeRequest{}
	req.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	req.Params.ClientInfo = mcp.Implementation{Name: clientName, Version: version}
	if _, err := c.Initialize(ctx, req); err != nil {
		return nil, fmt.Errorf("initialize: %w", err)
	}
	return &MCPCaller{client: c}, nil
}

// Close shuts the connection down.
func (m *MCPCaller) Close() error {
	return m.client.Close()
}

// ListTools returns the server's tool catalog.
func (m *MCPCaller) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	res, err := m.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("listing tools: %w", err)
	}
	return res.Tools, nil
}

// CallTool calls a tool and returns its payload. The JSON text block is
// preferred over structured content because it keeps key order; the
// "result" wrapper used for non-object payloads is removed.
func (m *MCPCaller) CallTool(ctx context.Context, name string, args map[string]any) (any, error) {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	res, err := m.client.CallTool(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", name, err)
	}
	return toolPayload(name, res)
}

func toolPayload(name string, res *mcp.CallToolResult) (any, error) {
	text := textContent(res)
	if res.IsError {
		return nil, &ToolError{Tool: name, Message: text}
	}

	if payload, err := casedata.Decode([]byte(text)); err == nil {
		return unwrapResult(payload, res), nil
	}
	if res.StructuredContent != nil {
		return res.StructuredContent, nil
	}
	if text == "" {
		return nil, errors.New("empty tool result")
	}
	return text, nil
}

// unwrapResult removes the {"result": v} wrapper from results the server
// flagged as wrapped. A genuine object with a lone "result" key is kept.
func unwrapResult(v any, res *mcp.CallToolResult) any {
	if res.Meta == nil || res.Meta.AdditionalFields[tools.WrappedMeta] != true {
		return v
	}
	obj, ok := v.(*casedata.Object)
	if !ok {
		return v
	}
	if inner, ok := obj.Get(tools.ResultField); ok {
		return inner
	}
	return v
}

func textContent(res *mcp.CallToolResult) string {
	var parts []string
	for _, c := range res.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// encodeJSON renders v as JSON, indented when indent is set.
func encodeJSON(v any, indent bool) (string, error) {
	var (
		data []byte
		err  error
	)
	if indent {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
