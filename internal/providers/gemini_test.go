package providers

import (
	"reflect"
	"testing"

	"github.com/watchdeck/watchdeck/internal/schema"
)

func TestConvertMessagesToGemini(t *testing.T) {
	reply := "on it"
	msgs := schema.NewMessages()
	msgs.AddSystem("instruction")
	msgs.AddUser("pause flow f-9")
	msgs.Messages = append(msgs.Messages, schema.NewAssistantMessage(&reply, []schema.ToolCall{
		{ID: "c1", Name: "pause_flow", Arguments: map[string]any{"flowId": "f-9"}},
	}))
	msgs.AddToolResult("c1", "pause_flow", `{"paused":true}`)

	system, contents := convertMessagesToGemini(msgs)

	if system != "instruction" {
		t.Errorf("system = %q", system)
	}
	// user, model, user(functionResponse).
	if len(contents) != 3 {
		t.Fatalf("expected 3 contents, got %d", len(contents))
	}
	if contents[1]["role"] != "model" {
		t.Errorf("assistant must map to model role, got %v", contents[1]["role"])
	}
	parts, _ := contents[2]["parts"].([]any)
	if len(parts) != 1 {
		t.Fatalf("expected 1 functionResponse part, got %v", contents[2]["parts"])
	}
	fr, _ := parts[0].(map[string]any)["functionResponse"].(map[string]any)
	if fr == nil || fr["name"] != "pause_flow" {
		t.Errorf("unexpected functionResponse: %v", parts[0])
	}
}

func TestConvertToolsToGemini_ScrubsUnsupportedKeys(t *testing.T) {
	tools := []map[string]any{{
		"type": "function",
		"function": map[string]any{
			"name":        "list_batches",
			"description": "List batches.",
			"parameters": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"status": map[string]any{
						"type":    "string",
						"enum":    []any{"success", "failed", "staging"},
						"default": "failed",
					},
					"limit": map[string]any{"type": "integer", "minimum": float64(1)},
				},
				"required": []any{"status"},
			},
		},
	}}

	out := convertToolsToGemini(tools)
	if len(out) != 1 {
		t.Fatalf("expected 1 declaration, got %d", len(out))
	}
	params, _ := out[0]["parameters"].(map[string]any)
	if params == nil {
		t.Fatal("parameters dropped entirely")
	}
	if _, ok := params["additionalProperties"]; ok {
		t.Error("additionalProperties must be scrubbed")
	}
	props, _ := params["properties"].(map[string]any)
	status, _ := props["status"].(map[string]any)
	if status == nil {
		t.Fatal("property dropped; degrade must keep the field")
	}
	if _, ok := status["default"]; ok {
		t.Error("default must be scrubbed")
	}
	if _, ok := status["enum"]; !ok {
		t.Error("enum must survive")
	}
	if _, ok := params["required"]; !ok {
		t.Error("required must survive")
	}
}

const geminiFunctionCallResponse = `{
	"candidates": [{
		"content": {"parts": [
			{"text": "Checking the dataset."},
			{"functionCall": {"name": "get_dataset", "args": {"datasetId": "d-7"}}},
			{"functionCall": {"name": "list_batches"}}
		]},
		"finishReason": "STOP"
	}],
	"usageMetadata": {"promptTokenCount": 3, "candidatesTokenCount": 4, "totalTokenCount": 7}
}`

func TestParseGeminiResponse(t *testing.T) {
	resp, err := parseGeminiResponse([]byte(geminiFunctionCallResponse))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text() != "Checking the dataset." {
		t.Errorf("text = %q", resp.Text())
	}
	if len(resp.Requests) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(resp.Requests))
	}
	if resp.Requests[0].Name != "get_dataset" || resp.Requests[0].Arguments["datasetId"] != "d-7" {
		t.Errorf("unexpected request: %+v", resp.Requests[0])
	}
	if resp.Requests[1].Arguments == nil {
		t.Error("missing args must become an empty map")
	}
	// Synthesised IDs must be unique within the turn and deterministic.
	if resp.Requests[0].ID == resp.Requests[1].ID {
		t.Error("request IDs must be unique within the turn")
	}
	if resp.FinishReason != "tool_calls" {
		t.Errorf("finish reason = %q", resp.FinishReason)
	}
}

func TestParseGeminiResponse_Idempotent(t *testing.T) {
	a, _ := parseGeminiResponse([]byte(geminiFunctionCallResponse))
	b, _ := parseGeminiResponse([]byte(geminiFunctionCallResponse))
	if !reflect.DeepEqual(a.Requests, b.Requests) {
		t.Errorf("parse is not idempotent: %v vs %v", a.Requests, b.Requests)
	}
}

func TestFactoryDispatch(t *testing.T) {
	cases := []struct {
		params Params
		want   schema.Constraints
	}{
		{Params{ProviderName: "anthropic", DefaultModel: "claude-sonnet-4"}, schema.Constraints{RequireLeadingUser: true, StrictAlternation: true}},
		{Params{ProviderName: "gemini", DefaultModel: "gemini-2.0-flash"}, schema.Constraints{RequireLeadingUser: true, StrictAlternation: true}},
		{Params{ProviderName: "openai", DefaultModel: "gpt-4o"}, schema.Constraints{}},
		{Params{ProviderName: "", DefaultModel: "claude-haiku"}, schema.Constraints{RequireLeadingUser: true, StrictAlternation: true}},
		{Params{ProviderName: "openrouter", DefaultModel: "meta-llama/llama-3-70b"}, schema.Constraints{}},
	}
	for _, c := range cases {
		p := New(c.params)
		if got := p.Constraints(); got != c.want {
			t.Errorf("New(%+v).Constraints() = %+v, want %+v", c.params, got, c.want)
		}
	}
}
