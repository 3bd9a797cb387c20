package chat

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// toolOutputLimit caps the tool output handed back to the model.
const toolOutputLimit = 100000

const noResponse = "(no response)"

const systemPrompt = "You are a helpful assistant. You can call tools to retrieve T5G dashboard data. " +
	"Prefer calling a tool when the user asks for dashboard information. " +
	"get_all_case_data returns JIRA cards with their case, escalation, issues, bugs and details attached."

// Generator is the slice of the genai client the assistant uses.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GenAIAssistant lets a Gemini model decide which tool to call. History
// is kept for the lifetime of the assistant.
type GenAIAssistant struct {
	gen     Generator
	model   string
	caller  ToolCaller
	tools   []*genai.Tool
	history []*genai.Content
	logger  *zap.Logger
}

// NewGenAIClient creates a Gemini API client.
func NewGenAIClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if apiKey == "" {
		return nil, errors.New("GenAI API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return client, nil
}

// NewGenAIAssistant offers the server's tool catalog to the model as
// function declarations. logger may be nil.
func NewGenAIAssistant(ctx context.Context, gen Generator, model string, caller ToolCaller, logger *zap.Logger) (*GenAIAssistant, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	catalog, err := caller.ListTools(ctx)
	if err != nil {
		return nil, err
	}
	decls := make([]*genai.FunctionDeclaration, 0, len(catalog))
	for _, t := range catalog {
		decls = append(decls, functionDeclaration(t))
	}
	return &GenAIAssistant{
		gen:    gen,
		model:  model,
		caller: caller,
		tools:  []*genai.Tool{{FunctionDeclarations: decls}},
		logger: logger,
	}, nil
}

func (a *GenAIAssistant) config(withTools bool) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.2),
	}
	if withTools {
		cfg.Tools = a.tools
	}
	return cfg
}

// Reply sends message to the model. When the model asks for a tool, the
// first call is run and its output returned to the model for a final
// answer; further calls in the same turn are ignored.
func (a *GenAIAssistant) Reply(ctx context.Context, message string) (string, error) {
	a.history = append(a.history, genai.NewContentFromText(message, genai.RoleUser))

	first, err := a.gen.GenerateContent(ctx, a.model, a.history, a.config(true))
	if err != nil {
		a.history = a.history[:len(a.history)-1]
		return "", fmt.Errorf("generating reply: %w", err)
	}

	calls := first.FunctionCalls()
	if len(calls) == 0 {
		return a.answer(first), nil
	}

	call := calls[0]
	a.logger.Debug("model requested tool", zap.String("tool", call.Name), zap.Int("requested", len(calls)))
	a.history = append(a.history, genai.NewContentFromParts(
		[]*genai.Part{{FunctionCall: call}}, genai.RoleModel,
	))
	a.history = append(a.history, genai.NewContentFromFunctionResponse(
		call.Name, a.runTool(ctx, call), genai.RoleUser,
	))

	second, err := a.gen.GenerateContent(ctx, a.model, a.history, a.config(false))
	if err != nil {
		// Drop the user turn, the call and its response.
		a.history = a.history[:len(a.history)-3]
		return "", fmt.Errorf("generating reply: %w", err)
	}
	return a.answer(second), nil
}

// runTool calls the tool and packages its output as a function response.
func (a *GenAIAssistant) runTool(ctx context.Context, call *genai.FunctionCall) map[string]any {
	data, err := a.caller.CallTool(ctx, call.Name, call.Args)
	if err != nil {
		a.logger.Warn("tool call failed", zap.String("tool", call.Name), zap.Error(err))
		return map[string]any{"error": err.Error()}
	}
	out, err := encodeJSON(data, false)
	if err != nil {
		return map[string]any{"error": err.Error()}
	}
	return map[string]any{"output": truncate(out, toolOutputLimit)}
}

// answer records the model's text in the history and returns it.
func (a *GenAIAssistant) answer(resp *genai.GenerateContentResponse) string {
	text := resp.Text()
	if text == "" {
		text = noResponse
	}
	a.history = append(a.history, genai.NewContentFromText(text, genai.RoleModel))
	return text
}

// functionDeclaration converts an MCP tool definition for the model.
func functionDeclaration(t mcp.Tool) *genai.FunctionDeclaration {
	params := &genai.Schema{
		Type:       genai.TypeObject,
		Properties: map[string]*genai.Schema{},
		Required:   t.InputSchema.Required,
	}

	names := make([]string, 0, len(t.InputSchema.Properties))
	for name := range t.InputSchema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		params.Properties[name] = propertySchema(t.InputSchema.Properties[name])
	}

	return &genai.FunctionDeclaration{
		Name:        t.Name,
		Description: t.Description,
		Parameters:  params,
	}
}

func propertySchema(prop any) *genai.Schema {
	schema := &genai.Schema{Type: genai.TypeString}
	m, ok := prop.(map[string]any)
	if !ok {
		return schema
	}
	switch m["type"] {
	case "number":
		schema.Type = genai.TypeNumber
	case "integer":
		schema.Type = genai.TypeInteger
	case "boolean":
		schema.Type = genai.TypeBoolean
	}
	if d, ok := m["description"].(string); ok {
		schema.Description = d
	}
	return schema
}
