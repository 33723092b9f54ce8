// Package agent drives a copilot turn end to end: it assembles the
// provider-ready conversation, hands operation requests to the executor,
// folds the results back into the transcript and re-prompts the model until
// it produces a final answer, suspends for approval, or runs out of
// follow-up budget.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/watchdeck/watchdeck/internal/conversation"
	"github.com/watchdeck/watchdeck/internal/executor"
	"github.com/watchdeck/watchdeck/internal/registry"
	"github.com/watchdeck/watchdeck/internal/schema"
	"github.com/watchdeck/watchdeck/internal/shared/llmutils"
)

const (
	defaultMaxFollowUps = 1
	defaultMemoryWindow = 20

	providerFailureText = "Sorry, I ran into a problem talking to the language model. Please try again in a moment."
	budgetExhaustedText = "I ran out of operation budget before I could finish answering. Try narrowing the question or ask me to continue."
	emptyAnswerText     = "I don't have anything to add."

	cancelledResultText = "Operation cancelled by the operator."
)

// Settings holds the per-copilot tuning knobs. Zero values fall back to
// sensible defaults in New.
type Settings struct {
	Model        string
	MaxTokens    int
	Temperature  float64
	MemoryWindow int
	MaxFollowUps int
}

// Copilot owns one conversation loop over a provider, a registry and an
// executor. It is stateless between turns; all conversation state lives in
// the history the caller passes in and the Outcome it gets back.
type Copilot struct {
	provider schema.LLMProvider
	reg      *registry.Registry
	exec     *executor.Executor
	prompt   *conversation.Prompt
	settings Settings
}

// New wires a Copilot. MaxFollowUps and MemoryWindow default when unset.
func New(provider schema.LLMProvider, reg *registry.Registry, exec *executor.Executor, prompt *conversation.Prompt, settings Settings) *Copilot {
	if settings.MaxFollowUps <= 0 {
		settings.MaxFollowUps = defaultMaxFollowUps
	}
	if settings.MemoryWindow <= 0 {
		settings.MemoryWindow = defaultMemoryWindow
	}
	return &Copilot{
		provider: provider,
		reg:      reg,
		exec:     exec,
		prompt:   prompt,
		settings: settings,
	}
}

// PendingApproval is the suspended state of a turn that hit one or more
// approval-gated operations. Requests lists what still awaits a decision;
// the unexported fields carry everything Resume needs to pick the turn back
// up once every request has been approved or cancelled.
type PendingApproval struct {
	Requests []executor.Pending

	conv       schema.Messages
	results    []executor.Result
	used       []string
	structured map[string]any
	userText   string
	round      int
}

// Outcome is what one turn (or one Resume step) produced. Exactly one of
// FinalText and Pending is meaningful: a non-nil Pending means the turn is
// suspended and NewMessages is empty.
type Outcome struct {
	FinalText      string
	StructuredData map[string]any
	OperationsUsed []string
	Pending        *PendingApproval
	NewMessages    []schema.Message
}

// Converse runs one copilot turn: history plus the new user text in, a final
// answer or a suspended approval out. The caller's history slice is never
// mutated; on completion NewMessages carries the two messages to append.
func (c *Copilot) Converse(ctx context.Context, history []schema.Message, userText string) (*Outcome, error) {
	conv := conversation.Build(history, userText, c.prompt.Render(), c.provider.Constraints(), c.settings.MemoryWindow)
	return c.loop(ctx, conv, userText, 0, nil, make(map[string]any))
}

// Resume decides one pending request on a suspended turn. With requests
// still undecided it returns another suspended Outcome; once the last one is
// decided it folds all results into the conversation and re-prompts the
// model for the follow-up answer.
func (c *Copilot) Resume(ctx context.Context, p *PendingApproval, requestID string, approve bool) (*Outcome, error) {
	if p == nil {
		return nil, fmt.Errorf("resume: no suspended turn")
	}
	idx := -1
	for i, res := range p.results {
		if res.RequestID == requestID && res.Status == executor.StatusPendingApproval {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("resume: request %s is not awaiting approval", requestID)
	}

	var (
		res executor.Result
		err error
	)
	if approve {
		res, err = c.exec.Approve(ctx, p.results[idx].ApprovalToken)
	} else {
		res, err = c.exec.Cancel(p.results[idx].ApprovalToken)
	}
	if err != nil {
		return nil, err
	}
	p.results[idx] = res

	remaining := p.Requests[:0]
	for _, pr := range p.Requests {
		if pr.RequestID != requestID {
			remaining = append(remaining, pr)
		}
	}
	p.Requests = remaining

	if len(p.Requests) > 0 {
		return &Outcome{OperationsUsed: append([]string(nil), p.used...), Pending: p}, nil
	}

	conv := p.conv
	used := p.used
	foldResults(&conv, p.results, p.structured, &used)
	return c.loop(ctx, conv, p.userText, p.round, used, p.structured)
}

// loop is the shared re-prompt cycle. round counts operation rounds already
// executed; when the model requests operations with no budget left the turn
// ends with whatever text the model supplied.
func (c *Copilot) loop(ctx context.Context, conv schema.Messages, userText string, round int, used []string, structured map[string]any) (*Outcome, error) {
	defs := c.reg.Definitions()
	opts := schema.NewChatOptions(c.settings.Model, c.settings.MaxTokens, c.settings.Temperature)

	for {
		resp, err := c.provider.Chat(ctx, conv, defs, opts)
		if err != nil {
			slog.Error("provider request failed", "error", err)
			return &Outcome{FinalText: providerFailureText, OperationsUsed: used}, nil
		}

		if !resp.HasRequests() {
			text := llmutils.StringOrDefault(llmutils.StripThink(resp.Text()), emptyAnswerText)
			return c.finished(userText, text, used, structured), nil
		}

		if round >= c.settings.MaxFollowUps {
			slog.Warn("follow-up budget exhausted",
				"rounds", round,
				"wanted", llmutils.OperationHint(resp.Requests))
			text := llmutils.StringOrDefault(llmutils.StripThink(resp.Text()), budgetExhaustedText)
			return c.finished(userText, text, used, structured), nil
		}

		calls := make([]schema.ToolCall, 0, len(resp.Requests))
		for _, req := range resp.Requests {
			calls = append(calls, schema.ToolCall{ID: req.ID, Name: req.Name, Arguments: req.Arguments})
		}
		conv.AddAssistant(resp.Content, calls)

		slog.Info("executing operations", "hint", llmutils.OperationHint(resp.Requests))
		results := c.exec.Execute(ctx, resp.Requests)
		round++

		if pend := c.pendingOf(resp.Requests, results); len(pend) > 0 {
			slog.Info("turn suspended for approval", "pending", len(pend))
			return &Outcome{
				OperationsUsed: append([]string(nil), used...),
				Pending: &PendingApproval{
					Requests:   pend,
					conv:       conv,
					results:    results,
					used:       used,
					structured: structured,
					userText:   userText,
					round:      round,
				},
			}, nil
		}

		foldResults(&conv, results, structured, &used)
	}
}

// finished assembles the completed-turn Outcome, including the two messages
// the caller appends to its history.
func (c *Copilot) finished(userText, text string, used []string, structured map[string]any) *Outcome {
	assistant := schema.NewAssistantMessage(&text, nil)
	if len(structured) > 0 {
		assistant.StructuredData = structured
	}
	assistant.OperationsUsed = used
	return &Outcome{
		FinalText:      text,
		StructuredData: structured,
		OperationsUsed: used,
		NewMessages:    []schema.Message{schema.NewUserMessage(userText), assistant},
	}
}

// pendingOf maps parked results back to approval descriptions in request
// order.
func (c *Copilot) pendingOf(requests []schema.OperationRequest, results []executor.Result) []executor.Pending {
	var pend []executor.Pending
	for i, res := range results {
		if res.Status != executor.StatusPendingApproval {
			continue
		}
		desc := ""
		if op, ok := c.reg.Get(res.Operation); ok {
			desc = op.Description()
		}
		pend = append(pend, executor.Pending{
			RequestID:   res.RequestID,
			Operation:   res.Operation,
			Arguments:   requests[i].Arguments,
			Description: desc,
		})
	}
	return pend
}

// foldResults appends one tool-result message per decided result and records
// which operations actually ran. Cancelled requests are reported to the
// model but never counted as used.
func foldResults(conv *schema.Messages, results []executor.Result, structured map[string]any, used *[]string) {
	for _, res := range results {
		switch res.Status {
		case executor.StatusCompleted:
			conv.AddToolResult(res.RequestID, res.Operation, renderValue(res.Value))
			structured[res.RequestID] = res.Value
			*used = append(*used, res.Operation)
		case executor.StatusFailed:
			conv.AddToolResult(res.RequestID, res.Operation, "Error: "+res.Err.Error())
			*used = append(*used, res.Operation)
		case executor.StatusCancelled:
			conv.AddToolResult(res.RequestID, res.Operation, cancelledResultText)
		}
	}
}

// renderValue turns an operation result into the string the model sees.
func renderValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
