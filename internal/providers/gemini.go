package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/watchdeck/watchdeck/internal/schema"
)

// GeminiProvider speaks the Gemini generateContent API. Gemini knows only
// "user" and "model" roles, requires the first content to be user-authored,
// and takes the system instruction in a dedicated systemInstruction field.
// Function calls carry no identifier on the wire, so a deterministic one is
// synthesised per request (parsing stays a pure function of the raw bytes)
// to keep the executor's per-request bookkeeping uniform.
type GeminiProvider struct {
	apiKey       string
	apiBase      string
	defaultModel string
	httpClient   *http.Client
}

// NewGeminiProvider constructs a provider from raw config values.
func NewGeminiProvider(apiKey, apiBase, defaultModel string) *GeminiProvider {
	if apiBase == "" {
		apiBase = "https://generativelanguage.googleapis.com/v1beta"
	}
	return &GeminiProvider{
		apiKey:       apiKey,
		apiBase:      strings.TrimRight(apiBase, "/"),
		defaultModel: defaultModel,
		httpClient:   &http.Client{Timeout: 120 * time.Second},
	}
}

func (p *GeminiProvider) DefaultModel() string { return p.defaultModel }

// Constraints implements schema.LLMProvider.
func (p *GeminiProvider) Constraints() schema.Constraints {
	return schema.Constraints{RequireLeadingUser: true, StrictAlternation: true}
}

// Chat implements schema.LLMProvider.
func (p *GeminiProvider) Chat(
	ctx context.Context,
	messages schema.Messages,
	tools []map[string]any,
	opts schema.ChatOptions,
) (schema.LLMResponse, error) {
	model := opts.Model
	if model == "" {
		model = p.defaultModel
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	system, contents := convertMessagesToGemini(messages)

	body := map[string]any{
		"contents": contents,
		"generationConfig": map[string]any{
			"maxOutputTokens": maxTokens,
			"temperature":     opts.Temperature,
		},
	}
	if system != "" {
		body["systemInstruction"] = map[string]any{
			"parts": []any{map[string]any{"text": system}},
		}
	}
	if len(tools) > 0 {
		body["tools"] = []map[string]any{
			{"functionDeclarations": convertToolsToGemini(tools)},
		}
	}

	data, err := json.Marshal(body)
	if err != nil {
		return schema.LLMResponse{}, &schema.ProviderError{Provider: "gemini", Err: fmt.Errorf("marshal request: %w", err)}
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", p.apiBase, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return schema.LLMResponse{}, &schema.ProviderError{Provider: "gemini", Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return schema.LLMResponse{}, &schema.ProviderError{Provider: "gemini", Err: fmt.Errorf("HTTP request: %w", err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return schema.LLMResponse{}, &schema.ProviderError{Provider: "gemini", Err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return schema.LLMResponse{}, &schema.ProviderError{
			Provider: "gemini",
			Err:      fmt.Errorf("HTTP %d: %s", resp.StatusCode, friendlyHTTPError(resp.StatusCode, raw)),
		}
	}

	out, err := parseGeminiResponse(raw)
	if err != nil {
		return schema.LLMResponse{}, &schema.ProviderError{Provider: "gemini", Err: err}
	}
	return out, nil
}

// convertMessagesToGemini converts typed messages to Gemini contents.
// Returns (system_instruction, contents). Tool results become
// functionResponse parts inside user-role contents.
func convertMessagesToGemini(messages schema.Messages) (string, []map[string]any) {
	var system string
	var out []map[string]any

	appendParts := func(role string, parts ...any) {
		if len(out) > 0 && out[len(out)-1]["role"] == role {
			prev := out[len(out)-1]
			prev["parts"] = append(prev["parts"].([]any), parts...)
			return
		}
		out = append(out, map[string]any{"role": role, "parts": append([]any{}, parts...)})
	}

	for _, msg := range messages.Messages {
		switch msg.Role {
		case "system":
			if s := msg.Text(); s != "" {
				if system != "" {
					system += "\n\n"
				}
				system += s
			}

		case "user":
			appendParts("user", map[string]any{"text": msg.Text()})

		case "tool":
			appendParts("user", map[string]any{
				"functionResponse": map[string]any{
					"name":     msg.ToolName,
					"response": map[string]any{"result": anyToString(msg.Content)},
				},
			})

		case "assistant":
			var parts []any
			if s := msg.Text(); s != "" {
				parts = append(parts, map[string]any{"text": s})
			}
			for _, tc := range msg.ToolCalls {
				parts = append(parts, map[string]any{
					"functionCall": map[string]any{
						"name": tc.Name,
						"args": tc.Arguments,
					},
				})
			}
			if len(parts) == 0 {
				parts = []any{map[string]any{"text": ""}}
			}
			appendParts("model", parts...)
		}
	}
	return system, out
}

// geminiSchemaKeys is the subset of JSON Schema the Gemini API accepts.
// Anything else is dropped from the declaration. The property itself always
// survives, only the unsupported keyword is lost.
var geminiSchemaKeys = map[string]bool{
	"type":        true,
	"description": true,
	"enum":        true,
	"items":       true,
	"properties":  true,
	"required":    true,
	"format":      true,
	"minimum":     true,
	"maximum":     true,
	"nullable":    true,
}

// scrubSchemaForGemini recursively removes schema constructs Gemini rejects
// (additionalProperties, $schema, default, ...).
func scrubSchemaForGemini(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, sub := range val {
			if k == "properties" {
				props, ok := sub.(map[string]any)
				if !ok {
					continue
				}
				scrubbed := make(map[string]any, len(props))
				for name, ps := range props {
					scrubbed[name] = scrubSchemaForGemini(ps)
				}
				out[k] = scrubbed
				continue
			}
			if !geminiSchemaKeys[k] {
				continue
			}
			if k == "items" {
				out[k] = scrubSchemaForGemini(sub)
				continue
			}
			out[k] = sub
		}
		return out
	default:
		return v
	}
}

// convertToolsToGemini converts OpenAI function schemas to Gemini
// functionDeclarations.
func convertToolsToGemini(tools []map[string]any) []map[string]any {
	out := make([]map[string]any, 0, len(tools))
	for _, t := range tools {
		fn, _ := t["function"].(map[string]any)
		if fn == nil {
			continue
		}
		decl := map[string]any{
			"name":        fn["name"],
			"description": fn["description"],
		}
		if params, ok := fn["parameters"].(map[string]any); ok {
			if props, ok := params["properties"].(map[string]any); !ok || len(props) > 0 {
				decl["parameters"] = scrubSchemaForGemini(params)
			}
		}
		out = append(out, decl)
	}
	return out
}

// geminiRespBody models the generateContent response.
type geminiRespBody struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text         string `json:"text"`
				FunctionCall *struct {
					Name string         `json:"name"`
					Args map[string]any `json:"args"`
				} `json:"functionCall"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

func parseGeminiResponse(raw []byte) (schema.LLMResponse, error) {
	var body geminiRespBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return schema.LLMResponse{}, fmt.Errorf("parse Gemini response: %w", err)
	}
	if len(body.Candidates) == 0 {
		return schema.LLMResponse{}, fmt.Errorf("empty candidates in response")
	}

	cand := body.Candidates[0]

	var contentStr string
	var requests []schema.OperationRequest
	for _, part := range cand.Content.Parts {
		if part.FunctionCall != nil {
			args := part.FunctionCall.Args
			if args == nil {
				args = map[string]any{}
			}
			requests = append(requests, schema.OperationRequest{
				ID:        fmt.Sprintf("call-%d", len(requests)),
				Name:      part.FunctionCall.Name,
				Arguments: args,
			})
			continue
		}
		contentStr += part.Text
	}

	var content *string
	if contentStr != "" {
		content = &contentStr
	}

	finish := strings.ToLower(cand.FinishReason)
	if finish == "" {
		finish = "stop"
	}
	if len(requests) > 0 {
		finish = "tool_calls"
	}

	return schema.LLMResponse{
		Content:      content,
		Requests:     requests,
		FinishReason: finish,
		Usage: map[string]int{
			"prompt_tokens":     body.UsageMetadata.PromptTokenCount,
			"completion_tokens": body.UsageMetadata.CandidatesTokenCount,
			"total_tokens":      body.UsageMetadata.TotalTokenCount,
		},
	}, nil
}
