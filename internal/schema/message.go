package schema

import (
	"encoding/json"
	"time"
)

// ToolCall represents one operation invocation in an assistant message.
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// ToWireMap serialises a ToolCall into the OpenAI wire-format map.
// Used by provider implementations when building the JSON request body.
func (tc ToolCall) ToWireMap() map[string]any {
	argsJSON, _ := json.Marshal(tc.Arguments)
	return map[string]any{
		"id":   tc.ID,
		"type": "function",
		"function": map[string]any{
			"name":      tc.Name,
			"arguments": string(argsJSON),
		},
	}
}

// Message is one entry in the conversation history.
//
// Role is one of: "system", "user", "assistant", "tool".
//
// Content holds the message text:
//   - system / user / tool: plain string
//   - assistant: *string (may be nil when only tool calls are present)
//
// ToolCalls is populated for assistant messages that invoke operations.
// ToolCallID and ToolName are set for tool-result messages.
// StructuredData carries raw operation results attached to an assistant
// message so the dashboard can render them; it is never sent to the LLM.
type Message struct {
	Role           string
	Content        any // string | *string
	ToolCalls      []ToolCall
	ToolCallID     string // "tool" role only
	ToolName       string // "tool" role only
	Timestamp      time.Time
	StructuredData map[string]any // assistant role only; session-local
	OperationsUsed []string       // assistant role only; session-local
}

func NewSystemMessage(content any) Message {
	return Message{
		Role:      "system",
		Content:   content,
		Timestamp: time.Now(),
	}
}

func NewUserMessage(content any) Message {
	return Message{
		Role:      "user",
		Content:   content,
		Timestamp: time.Now(),
	}
}

func NewAssistantMessage(content *string, toolCalls []ToolCall) Message {
	return Message{
		Role:      "assistant",
		Content:   content,
		ToolCalls: toolCalls,
		Timestamp: time.Now(),
	}
}

func NewToolResultMessage(toolCallID, toolName, result string) Message {
	return Message{
		Role:       "tool",
		Content:    result,
		ToolCallID: toolCallID,
		ToolName:   toolName,
		Timestamp:  time.Now(),
	}
}

// Text returns the message content as a plain string regardless of how it is
// held (string for user/system/tool, *string for assistant).
func (m Message) Text() string {
	switch c := m.Content.(type) {
	case string:
		return c
	case *string:
		if c != nil {
			return *c
		}
	}
	return ""
}
