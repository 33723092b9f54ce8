package schema

import "context"

// ChatOptions configures a single LLM chat request.
type ChatOptions struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

func NewChatOptions(model string, maxTokens int, temperature float64) ChatOptions {
	return ChatOptions{
		Model:       model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
}

// OperationRequest represents one operation invocation requested by the LLM.
// Arguments are unvalidated until execution time.
type OperationRequest struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// LLMResponse is the normalised response from any LLM provider.
type LLMResponse struct {
	Content      *string // nil when the response contains only operation requests
	Requests     []OperationRequest
	FinishReason string
	Usage        map[string]int // "prompt_tokens", "completion_tokens", "total_tokens"
}

// HasRequests reports whether the response contains at least one operation request.
func (r LLMResponse) HasRequests() bool { return len(r.Requests) > 0 }

// Text returns the natural-language portion of the response, or "".
func (r LLMResponse) Text() string {
	if r.Content == nil {
		return ""
	}
	return *r.Content
}

// Constraints describes the structural rules a provider imposes on the turn
// sequence it accepts. The conversation builder normalises history against
// these before any request is made.
type Constraints struct {
	// RequireLeadingUser: the first turn must be user-authored.
	RequireLeadingUser bool
	// StrictAlternation: no two consecutive turns may share a role.
	StrictAlternation bool
	// InlineSystem: the provider has no standalone system slot; the system
	// instruction must be prepended to the first user turn.
	InlineSystem bool
}

// LLMProvider is the interface every LLM backend must satisfy.
// tools is the operation catalog in OpenAI function-calling format; each
// adapter converts it to its own wire format losslessly, degrading
// unsupported schema constructs conservatively rather than dropping them.
type LLMProvider interface {
	Chat(ctx context.Context, messages Messages, tools []map[string]any, opts ChatOptions) (LLMResponse, error)
	DefaultModel() string
	Constraints() Constraints
}
