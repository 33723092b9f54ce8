package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/watchdeck/watchdeck/internal/schema"
)

const openAIToolCallResponse = `{
	"choices": [{
		"message": {
			"content": null,
			"tool_calls": [
				{"id": "call_1", "function": {"name": "get_batch", "arguments": "{\"batchId\":\"b-42\"}"}},
				{"id": "call_2", "function": {"name": "list_datasets", "arguments": ""}}
			]
		},
		"finish_reason": "tool_calls"
	}],
	"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
}`

func TestParseOpenAIResponse_ToolCalls(t *testing.T) {
	resp, err := parseOpenAIResponse([]byte(openAIToolCallResponse))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != nil {
		t.Errorf("expected nil content, got %q", *resp.Content)
	}
	if len(resp.Requests) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(resp.Requests))
	}
	if resp.Requests[0].Name != "get_batch" || resp.Requests[0].Arguments["batchId"] != "b-42" {
		t.Errorf("unexpected first request: %+v", resp.Requests[0])
	}
	// Empty arguments string must yield an empty map, not a failure.
	if resp.Requests[1].Arguments == nil || len(resp.Requests[1].Arguments) != 0 {
		t.Errorf("expected empty argument map, got %v", resp.Requests[1].Arguments)
	}
	if resp.FinishReason != "tool_calls" {
		t.Errorf("finish reason = %q", resp.FinishReason)
	}
}

func TestParseOpenAIResponse_TextOnly(t *testing.T) {
	raw := `{"choices":[{"message":{"content":"All batches look healthy."},"finish_reason":"stop"}],"usage":{}}`
	resp, err := parseOpenAIResponse([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.HasRequests() {
		t.Error("expected no requests")
	}
	if resp.Text() != "All batches look healthy." {
		t.Errorf("text = %q", resp.Text())
	}
}

// Parsing is a pure function: the same bytes must yield the same sequence.
func TestParseOpenAIResponse_Idempotent(t *testing.T) {
	a, err := parseOpenAIResponse([]byte(openAIToolCallResponse))
	if err != nil {
		t.Fatal(err)
	}
	b, err := parseOpenAIResponse([]byte(openAIToolCallResponse))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a.Requests, b.Requests) {
		t.Errorf("parse is not idempotent: %v vs %v", a.Requests, b.Requests)
	}
}

func TestParseOpenAIResponse_MalformedArguments(t *testing.T) {
	raw := `{"choices":[{"message":{"tool_calls":[{"id":"c1","function":{"name":"run_query","arguments":"{\"sql\": \"SELECT"}}]},"finish_reason":"tool_calls"}],"usage":{}}`
	resp, err := parseOpenAIResponse([]byte(raw))
	if err != nil {
		t.Fatalf("malformed arguments must not fail the turn: %v", err)
	}
	if len(resp.Requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(resp.Requests))
	}
	if resp.Requests[0].Arguments == nil {
		t.Error("expected empty argument map substituted for malformed JSON")
	}
}

func TestRepairJSON(t *testing.T) {
	cases := []struct {
		in   string
		want map[string]any
	}{
		{"", map[string]any{}},
		{`{"a":1}`, map[string]any{"a": float64(1)}},
		{`{"a":"x"}}`, map[string]any{"a": "x"}},
	}
	for _, c := range cases {
		got, err := repairJSON(c.in)
		if err != nil {
			t.Errorf("repairJSON(%q) error: %v", c.in, err)
			continue
		}
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("repairJSON(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestOpenAIChat_WireFormat(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"ok"},"finish_reason":"stop"}],"usage":{}}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider("test-key", srv.URL, "gpt-4o", nil)

	msgs := schema.NewMessages()
	msgs.AddSystem("sys")
	msgs.AddUser("hello")

	tools := []map[string]any{{
		"type": "function",
		"function": map[string]any{
			"name":        "echo",
			"description": "Echo.",
			"parameters":  map[string]any{"type": "object", "properties": map[string]any{}},
		},
	}}

	resp, err := p.Chat(context.Background(), msgs, tools, schema.NewChatOptions("", 512, 0.2))
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if resp.Text() != "ok" {
		t.Errorf("text = %q", resp.Text())
	}

	if captured["model"] != "gpt-4o" {
		t.Errorf("model = %v", captured["model"])
	}
	if captured["tool_choice"] != "auto" {
		t.Errorf("tool_choice = %v", captured["tool_choice"])
	}
	wireMsgs, _ := captured["messages"].([]any)
	if len(wireMsgs) != 2 {
		t.Fatalf("expected 2 wire messages, got %d", len(wireMsgs))
	}
	first, _ := wireMsgs[0].(map[string]any)
	if first["role"] != "system" || first["content"] != "sys" {
		t.Errorf("unexpected system message: %v", first)
	}
}

func TestOpenAIChat_HTTPErrorIsProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewOpenAIProvider("k", srv.URL, "gpt-4o", nil)
	_, err := p.Chat(context.Background(), schema.NewMessages(schema.NewUserMessage("hi")), nil, schema.ChatOptions{})
	if err == nil {
		t.Fatal("expected error")
	}
	var perr *schema.ProviderError
	if !errors.As(err, &perr) {
		t.Errorf("expected ProviderError, got %T: %v", err, err)
	}
}
