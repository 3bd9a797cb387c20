package chat

import (
	"context"
	"fmt"
)

// Assistant answers one chat message.
type Assistant interface {
	Reply(ctx context.Context, message string) (string, error)
}

// keywordReplyLimit caps the JSON shown for a keyword-routed reply.
const keywordReplyLimit = 2000

// KeywordAssistant answers by routing the message to a single tool and
// printing its output.
type KeywordAssistant struct {
	caller ToolCaller
}

// NewKeywordAssistant creates a KeywordAssistant.
func NewKeywordAssistant(caller ToolCaller) *KeywordAssistant {
	return &KeywordAssistant{caller: caller}
}

// Reply routes message to a tool. Tool failures become the reply text so
// the session keeps going.
func (a *KeywordAssistant) Reply(ctx context.Context, message string) (string, error) {
	tool, ok := Route(message)
	if !ok {
		return HelpText, nil
	}

	data, err := a.caller.CallTool(ctx, tool, nil)
	if err != nil {
		return fmt.Sprintf("Error calling tool %s: %v", tool, err), nil
	}
	pretty, err := encodeJSON(data, true)
	if err != nil {
		return fmt.Sprintf("Error encoding %s output: %v", tool, err), nil
	}
	return "Here you go (truncated):\n" + truncate(pretty, keywordReplyLimit), nil
}
