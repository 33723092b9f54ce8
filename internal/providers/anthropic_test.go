package providers

import (
	"reflect"
	"testing"

	"github.com/watchdeck/watchdeck/internal/schema"
)

func TestConvertMessagesToAnthropic(t *testing.T) {
	reply := "checking"
	msgs := schema.NewMessages()
	msgs.AddSystem("you are watchdeck")
	msgs.AddUser("why did batch b-42 fail?")
	msgs.Messages = append(msgs.Messages, schema.NewAssistantMessage(&reply, []schema.ToolCall{
		{ID: "t1", Name: "get_batch", Arguments: map[string]any{"batchId": "b-42"}},
	}))
	msgs.AddToolResult("t1", "get_batch", `{"status":"failed"}`)
	msgs.AddToolResult("t2", "get_batch_failures", `{"errors":3}`)

	system, converted := convertMessagesToAnthropic(msgs)

	if system != "you are watchdeck" {
		t.Errorf("system = %q", system)
	}
	// user, assistant, then one merged user message with two tool_result blocks.
	if len(converted) != 3 {
		t.Fatalf("expected 3 wire messages, got %d", len(converted))
	}
	if converted[1]["role"] != "assistant" {
		t.Errorf("expected assistant second, got %v", converted[1]["role"])
	}
	last := converted[2]
	if last["role"] != "user" {
		t.Fatalf("tool results must ride in a user message, got %v", last["role"])
	}
	blocks, ok := last["content"].([]any)
	if !ok || len(blocks) != 2 {
		t.Fatalf("expected 2 merged tool_result blocks, got %v", last["content"])
	}
	first, _ := blocks[0].(map[string]any)
	if first["type"] != "tool_result" || first["tool_use_id"] != "t1" {
		t.Errorf("unexpected block: %v", first)
	}
}

// A tool result merged into a plain-text user message must keep the user's
// text as a text block ahead of the tool_result.
func TestConvertMessagesToAnthropic_ToolAfterUserText(t *testing.T) {
	msgs := schema.NewMessages()
	msgs.AddUser("what happened to flow f-1?")
	msgs.AddToolResult("t1", "get_flow", `{"state":"paused"}`)

	_, converted := convertMessagesToAnthropic(msgs)

	if len(converted) != 1 {
		t.Fatalf("expected 1 wire message, got %d", len(converted))
	}
	blocks, ok := converted[0]["content"].([]any)
	if !ok || len(blocks) != 2 {
		t.Fatalf("expected text block plus tool_result, got %v", converted[0]["content"])
	}
	text, _ := blocks[0].(map[string]any)
	if text["type"] != "text" || text["text"] != "what happened to flow f-1?" {
		t.Errorf("user text dropped in merge: %v", text)
	}
	result, _ := blocks[1].(map[string]any)
	if result["type"] != "tool_result" || result["tool_use_id"] != "t1" {
		t.Errorf("unexpected block: %v", result)
	}
}

func TestConvertToolsToAnthropic(t *testing.T) {
	params := map[string]any{
		"type":       "object",
		"properties": map[string]any{"batchId": map[string]any{"type": "string"}},
		"required":   []any{"batchId"},
	}
	tools := []map[string]any{{
		"type": "function",
		"function": map[string]any{
			"name":        "get_batch",
			"description": "Fetch one batch.",
			"parameters":  params,
		},
	}}

	out := convertToolsToAnthropic(tools)
	if len(out) != 1 {
		t.Fatalf("expected 1 tool, got %d", len(out))
	}
	if out[0]["name"] != "get_batch" {
		t.Errorf("name = %v", out[0]["name"])
	}
	// Schema must travel losslessly under input_schema.
	if !reflect.DeepEqual(out[0]["input_schema"], params) {
		t.Errorf("schema not carried losslessly: %v", out[0]["input_schema"])
	}
}

const anthropicToolUseResponse = `{
	"content": [
		{"type": "text", "text": "Let me look."},
		{"type": "tool_use", "id": "tu_1", "name": "get_flow", "input": {"flowId": "f-1"}},
		{"type": "tool_use", "id": "tu_2", "name": "list_flows"}
	],
	"stop_reason": "tool_use",
	"usage": {"input_tokens": 7, "output_tokens": 9}
}`

func TestParseAnthropicResponse(t *testing.T) {
	resp, err := parseAnthropicResponse([]byte(anthropicToolUseResponse))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text() != "Let me look." {
		t.Errorf("text = %q", resp.Text())
	}
	if len(resp.Requests) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(resp.Requests))
	}
	if resp.Requests[0].ID != "tu_1" || resp.Requests[0].Arguments["flowId"] != "f-1" {
		t.Errorf("unexpected request: %+v", resp.Requests[0])
	}
	// Absent input must become an empty map.
	if resp.Requests[1].Arguments == nil {
		t.Error("expected empty argument map for missing input")
	}
	if resp.FinishReason != "tool_calls" {
		t.Errorf("finish reason = %q", resp.FinishReason)
	}
	if resp.Usage["total_tokens"] != 16 {
		t.Errorf("total tokens = %d", resp.Usage["total_tokens"])
	}
}

func TestParseAnthropicResponse_Idempotent(t *testing.T) {
	a, _ := parseAnthropicResponse([]byte(anthropicToolUseResponse))
	b, _ := parseAnthropicResponse([]byte(anthropicToolUseResponse))
	if !reflect.DeepEqual(a.Requests, b.Requests) {
		t.Errorf("parse is not idempotent")
	}
}
