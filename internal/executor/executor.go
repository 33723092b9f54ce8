// Package executor runs parsed operation requests against the registry,
// gating mutating operations behind explicit human approval. Failures are
// isolated per request: one bad request never suppresses its siblings.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/watchdeck/watchdeck/internal/registry"
	"github.com/watchdeck/watchdeck/internal/schema"
)

// Status is the caller-facing outcome of one operation request.
type Status string

const (
	StatusCompleted       Status = "completed"
	StatusFailed          Status = "failed"
	StatusPendingApproval Status = "pending_approval"
	StatusCancelled       Status = "cancelled"
)

// ApprovalState tracks one approval-gated request through its lifecycle.
type ApprovalState int

const (
	StatePending ApprovalState = iota
	StateApproved
	StateExecuting
	StateCompleted
	StateFailed
	StateCancelled
)

func (s ApprovalState) String() string {
	switch s {
	case StatePending:
		return "PENDING"
	case StateApproved:
		return "APPROVED"
	case StateExecuting:
		return "EXECUTING"
	case StateCompleted:
		return "COMPLETED"
	case StateFailed:
		return "FAILED"
	case StateCancelled:
		return "CANCELLED"
	}
	return "UNKNOWN"
}

// Result is the outcome of one request. Exactly one of Value/Err is set for
// completed/failed requests; both are nil while pending or cancelled.
// ApprovalToken is set only on PENDING_APPROVAL results: request IDs are
// unique within one model turn, not globally, so Approve and Cancel key on
// the token instead.
type Result struct {
	RequestID     string
	Operation     string
	Status        Status
	Value         any
	Err           error
	ApprovalToken string
}

// Pending describes a suspended request for the approval surface.
type Pending struct {
	RequestID   string         `json:"requestId"`
	Operation   string         `json:"operationName"`
	Arguments   map[string]any `json:"arguments"`
	Description string         `json:"description"`
}

type pendingEntry struct {
	req   schema.OperationRequest
	op    schema.Operation
	state ApprovalState
}

// Executor owns the approval/execution state for operation requests.
// The registry is read-only; the only mutable state is the pending table.
type Executor struct {
	reg *registry.Registry

	mu      sync.Mutex
	pending map[string]*pendingEntry
}

// New creates an Executor over the given registry.
func New(reg *registry.Registry) *Executor {
	return &Executor{reg: reg, pending: make(map[string]*pendingEntry)}
}

// Execute resolves and runs a batch of requests. Requests whose operations do
// not require approval run concurrently; the returned slice always matches
// the input order, one Result per request, regardless of completion order.
// Approval-gated requests are parked as PENDING_APPROVAL and their handlers
// are not invoked.
func (e *Executor) Execute(ctx context.Context, requests []schema.OperationRequest) []Result {
	results := make([]Result, len(requests))

	g, gctx := errgroup.WithContext(ctx)
	for i, req := range requests {
		op, ok := e.reg.Get(req.Name)
		if !ok {
			results[i] = Result{
				RequestID: req.ID,
				Operation: req.Name,
				Status:    StatusFailed,
				Err:       &schema.UnknownOperationError{Name: req.Name},
			}
			continue
		}

		if op.RequiresApproval() {
			results[i] = Result{
				RequestID:     req.ID,
				Operation:     req.Name,
				Status:        StatusPendingApproval,
				ApprovalToken: e.park(req, op),
			}
			continue
		}

		i, req, op := i, req, op
		g.Go(func() error {
			results[i] = e.run(gctx, req, op)
			return nil
		})
	}
	g.Wait() //nolint:errcheck // goroutines never return errors; isolation is per request

	return results
}

// Approve runs the handler for a previously parked request, exactly once.
// token identifies the parked entry and must still be PENDING.
func (e *Executor) Approve(ctx context.Context, token string) (Result, error) {
	e.mu.Lock()
	entry, ok := e.pending[token]
	if !ok {
		e.mu.Unlock()
		return Result{}, fmt.Errorf("no pending request for token %q", token)
	}
	if entry.state != StatePending {
		e.mu.Unlock()
		return Result{}, fmt.Errorf("request %q is %s, not PENDING", entry.req.ID, entry.state)
	}
	entry.state = StateApproved
	e.mu.Unlock()

	slog.Info("Operation approved", "operation", entry.req.Name, "request_id", entry.req.ID)

	res := e.run(ctx, entry.req, entry.op)

	e.mu.Lock()
	if res.Status == StatusCompleted {
		entry.state = StateCompleted
	} else {
		entry.state = StateFailed
	}
	delete(e.pending, token)
	e.mu.Unlock()

	return res, nil
}

// Cancel discards a parked request. Its handler is never invoked.
func (e *Executor) Cancel(token string) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, ok := e.pending[token]
	if !ok {
		return Result{}, fmt.Errorf("no pending request for token %q", token)
	}
	if entry.state != StatePending {
		return Result{}, fmt.Errorf("request %q is %s, not PENDING", entry.req.ID, entry.state)
	}
	entry.state = StateCancelled
	delete(e.pending, token)

	slog.Info("Operation cancelled", "operation", entry.req.Name, "request_id", entry.req.ID)

	return Result{
		RequestID: entry.req.ID,
		Operation: entry.req.Name,
		Status:    StatusCancelled,
	}, nil
}

// PendingRequests returns the approval surface's view of parked requests.
func (e *Executor) PendingRequests() []Pending {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Pending, 0, len(e.pending))
	for _, entry := range e.pending {
		out = append(out, Pending{
			RequestID:   entry.req.ID,
			Operation:   entry.req.Name,
			Arguments:   entry.req.Arguments,
			Description: entry.op.Description(),
		})
	}
	return out
}

// park stores a gated request under a freshly generated token and returns it.
// Provider request IDs are only unique within one turn (Gemini synthesises
// call-0, call-1, ... per response), so they cannot key the table: a second
// suspended turn would overwrite the first and an approval recorded for one
// request could run another.
func (e *Executor) park(req schema.OperationRequest, op schema.Operation) string {
	token := uuid.NewString()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending[token] = &pendingEntry{req: req, op: op, state: StatePending}
	return token
}

// run executes a single resolved request: validate, invoke, capture.
// Handler panics are contained and converted to UpstreamError; nothing
// crosses the execution boundary untyped.
func (e *Executor) run(ctx context.Context, req schema.OperationRequest, op schema.Operation) (res Result) {
	res = Result{RequestID: req.ID, Operation: req.Name}

	defer func() {
		if r := recover(); r != nil {
			res.Status = StatusFailed
			res.Err = &schema.UpstreamError{Service: req.Name, Msg: fmt.Sprintf("panic: %v", r)}
		}
	}()

	if err := validateArgs(op.Parameters(), req.Arguments); err != nil {
		res.Status = StatusFailed
		res.Err = err
		return res
	}

	slog.Info("Executing operation", "operation", req.Name, "request_id", req.ID)

	value, err := op.Execute(ctx, req.Arguments)
	if err != nil {
		res.Status = StatusFailed
		res.Err = schema.AsUpstream(req.Name, err)
		return res
	}
	res.Status = StatusCompleted
	res.Value = value
	return res
}
