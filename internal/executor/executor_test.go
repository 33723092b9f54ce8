package executor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/watchdeck/watchdeck/internal/registry"
	"github.com/watchdeck/watchdeck/internal/schema"
)

type stubOp struct {
	name     string
	approval bool
	params   string
	calls    atomic.Int64
	execute  func(ctx context.Context, args map[string]any) (any, error)
}

func (s *stubOp) Name() string           { return s.name }
func (s *stubOp) Description() string    { return "stub " + s.name }
func (s *stubOp) RequiresApproval() bool { return s.approval }
func (s *stubOp) Parameters() json.RawMessage {
	if s.params == "" {
		return json.RawMessage(`{"type":"object","properties":{}}`)
	}
	return json.RawMessage(s.params)
}
func (s *stubOp) Execute(ctx context.Context, args map[string]any) (any, error) {
	s.calls.Add(1)
	if s.execute != nil {
		return s.execute(ctx, args)
	}
	return map[string]any{"ok": true}, nil
}

func mustRegistry(t *testing.T, ops ...schema.Operation) *registry.Registry {
	t.Helper()
	reg, err := registry.NewBuilder().WithAll(ops...).Build()
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	return reg
}

func req(id, name string, args map[string]any) schema.OperationRequest {
	if args == nil {
		args = map[string]any{}
	}
	return schema.OperationRequest{ID: id, Name: name, Arguments: args}
}

func TestExecute_OrderPreservedFailuresIsolated(t *testing.T) {
	ok1 := &stubOp{name: "op_a"}
	bad := &stubOp{name: "op_b", execute: func(context.Context, map[string]any) (any, error) {
		return nil, errors.New("downstream exploded")
	}}
	ok2 := &stubOp{name: "op_c", execute: func(context.Context, map[string]any) (any, error) {
		time.Sleep(10 * time.Millisecond) // finishes last, must still be third
		return "slow", nil
	}}

	e := New(mustRegistry(t, ok1, bad, ok2))
	results := e.Execute(context.Background(), []schema.OperationRequest{
		req("r1", "op_a", nil), req("r2", "op_b", nil), req("r3", "op_c", nil),
	})

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, want := range []string{"r1", "r2", "r3"} {
		if results[i].RequestID != want {
			t.Errorf("results[%d].RequestID = %q, want %q", i, results[i].RequestID, want)
		}
	}
	if results[0].Status != StatusCompleted {
		t.Errorf("op_a should complete, got %s (%v)", results[0].Status, results[0].Err)
	}
	if results[1].Status != StatusFailed {
		t.Errorf("op_b should fail, got %s", results[1].Status)
	}
	var up *schema.UpstreamError
	if !errors.As(results[1].Err, &up) || up.Msg != "downstream exploded" {
		t.Errorf("original failure message must be preserved, got %v", results[1].Err)
	}
	if results[2].Status != StatusCompleted || results[2].Value != "slow" {
		t.Errorf("op_c suppressed by sibling failure: %+v", results[2])
	}
}

func TestExecute_UnknownOperation(t *testing.T) {
	e := New(mustRegistry(t, &stubOp{name: "op_a"}))
	results := e.Execute(context.Background(), []schema.OperationRequest{
		req("r1", "delete_everything", nil),
		req("r2", "op_a", nil),
	})

	if results[0].Status != StatusFailed {
		t.Fatalf("unknown operation should fail, got %s", results[0].Status)
	}
	var unknown *schema.UnknownOperationError
	if !errors.As(results[0].Err, &unknown) || unknown.Name != "delete_everything" {
		t.Errorf("expected UnknownOperationError, got %v", results[0].Err)
	}
	if results[1].Status != StatusCompleted {
		t.Errorf("sibling must still run, got %s", results[1].Status)
	}
}

func TestExecute_ApprovalNeverRunsHandler(t *testing.T) {
	wipe := &stubOp{name: "wipe", approval: true}
	e := New(mustRegistry(t, wipe))

	results := e.Execute(context.Background(), []schema.OperationRequest{req("r1", "wipe", nil)})

	if results[0].Status != StatusPendingApproval {
		t.Fatalf("expected pending approval, got %s", results[0].Status)
	}
	if wipe.calls.Load() != 0 {
		t.Fatal("handler ran before approval")
	}

	pending := e.PendingRequests()
	if len(pending) != 1 || pending[0].RequestID != "r1" || pending[0].Operation != "wipe" {
		t.Fatalf("unexpected pending surface: %+v", pending)
	}
	if pending[0].Description == "" {
		t.Error("pending request must carry the operation description")
	}
}

func TestApprove_RunsExactlyOnce(t *testing.T) {
	wipe := &stubOp{name: "wipe", approval: true}
	e := New(mustRegistry(t, wipe))
	parked := e.Execute(context.Background(), []schema.OperationRequest{req("r1", "wipe", nil)})
	if parked[0].ApprovalToken == "" {
		t.Fatal("pending result must carry an approval token")
	}

	res, err := e.Approve(context.Background(), parked[0].ApprovalToken)
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if res.Status != StatusCompleted {
		t.Errorf("expected completed, got %s (%v)", res.Status, res.Err)
	}
	if wipe.calls.Load() != 1 {
		t.Errorf("handler ran %d times, want 1", wipe.calls.Load())
	}

	// A second approve for the same request must not re-run the handler.
	if _, err := e.Approve(context.Background(), parked[0].ApprovalToken); err == nil {
		t.Error("expected error approving an already-resolved request")
	}
	if wipe.calls.Load() != 1 {
		t.Errorf("handler re-ran on duplicate approve: %d", wipe.calls.Load())
	}
}

func TestCancel_HandlerNeverInvoked(t *testing.T) {
	wipe := &stubOp{name: "wipe", approval: true}
	e := New(mustRegistry(t, wipe))
	parked := e.Execute(context.Background(), []schema.OperationRequest{req("r1", "wipe", nil)})

	res, err := e.Cancel(parked[0].ApprovalToken)
	if err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if res.Status != StatusCancelled {
		t.Errorf("expected cancelled, got %s", res.Status)
	}
	if res.RequestID != "r1" {
		t.Errorf("cancelled RequestID = %q, want r1", res.RequestID)
	}
	if wipe.calls.Load() != 0 {
		t.Error("cancelled request's handler was invoked")
	}
	if _, err := e.Approve(context.Background(), parked[0].ApprovalToken); err == nil {
		t.Error("approve after cancel must fail")
	}
}

// Request IDs repeat across turns (Gemini synthesises call-0, call-1, ... per
// response), so an approval must settle exactly the entry it was parked for.
func TestApprove_SameRequestIDAcrossBatches(t *testing.T) {
	pause := &stubOp{name: "pause_flow", approval: true}
	del := &stubOp{name: "delete_dataset", approval: true}
	e := New(mustRegistry(t, pause, del))

	first := e.Execute(context.Background(), []schema.OperationRequest{req("call-0", "pause_flow", nil)})
	second := e.Execute(context.Background(), []schema.OperationRequest{req("call-0", "delete_dataset", nil)})
	if first[0].ApprovalToken == second[0].ApprovalToken {
		t.Fatal("parked entries must get distinct tokens")
	}

	res, err := e.Approve(context.Background(), first[0].ApprovalToken)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if res.Operation != "pause_flow" {
		t.Fatalf("approved %q, want pause_flow", res.Operation)
	}
	if pause.calls.Load() != 1 || del.calls.Load() != 0 {
		t.Errorf("calls = pause %d / delete %d, want 1 / 0", pause.calls.Load(), del.calls.Load())
	}

	// The second batch's entry is still independently decidable.
	res2, err := e.Cancel(second[0].ApprovalToken)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if res2.Operation != "delete_dataset" || del.calls.Load() != 0 {
		t.Errorf("cancel settled %q (calls %d)", res2.Operation, del.calls.Load())
	}
	if left := e.PendingRequests(); len(left) != 0 {
		t.Errorf("pending table not drained: %+v", left)
	}
}

func TestApprove_UnknownRequestID(t *testing.T) {
	e := New(mustRegistry(t, &stubOp{name: "op_a"}))
	if _, err := e.Approve(context.Background(), "nope"); err == nil {
		t.Error("expected error for unknown request id")
	}
	if _, err := e.Cancel("nope"); err == nil {
		t.Error("expected error for unknown request id")
	}
}

func TestExecute_ValidationFailureSurfacedNotThrown(t *testing.T) {
	op := &stubOp{
		name:   "get_batch",
		params: `{"type":"object","properties":{"batchId":{"type":"string"}},"required":["batchId"]}`,
	}
	e := New(mustRegistry(t, op))

	results := e.Execute(context.Background(), []schema.OperationRequest{
		req("r1", "get_batch", nil),                                // missing required
		req("r2", "get_batch", map[string]any{"batchId": 42.0}),    // wrong type
		req("r3", "get_batch", map[string]any{"batchId": "b-1"}),   // valid
	})

	var verr *schema.ValidationError
	if results[0].Status != StatusFailed || !errors.As(results[0].Err, &verr) {
		t.Errorf("missing required arg must fail validation: %+v", results[0])
	}
	if results[1].Status != StatusFailed || !errors.As(results[1].Err, &verr) {
		t.Errorf("wrong type must fail validation: %+v", results[1])
	}
	if results[2].Status != StatusCompleted {
		t.Errorf("valid args must execute: %+v", results[2])
	}
	if op.calls.Load() != 1 {
		t.Errorf("handler ran %d times, want 1 (validation failures never reach it)", op.calls.Load())
	}
}

func TestExecute_PanicContained(t *testing.T) {
	boom := &stubOp{name: "boom", execute: func(context.Context, map[string]any) (any, error) {
		panic("handler bug")
	}}
	e := New(mustRegistry(t, boom, &stubOp{name: "fine"}))

	results := e.Execute(context.Background(), []schema.OperationRequest{
		req("r1", "boom", nil), req("r2", "fine", nil),
	})

	if results[0].Status != StatusFailed {
		t.Fatalf("panic must surface as failure, got %s", results[0].Status)
	}
	var up *schema.UpstreamError
	if !errors.As(results[0].Err, &up) {
		t.Errorf("panic must convert to UpstreamError, got %T", results[0].Err)
	}
	if results[1].Status != StatusCompleted {
		t.Error("sibling suppressed by panic")
	}
}

func TestExecute_EnumValidation(t *testing.T) {
	op := &stubOp{
		name:   "list_batches",
		params: `{"type":"object","properties":{"status":{"type":"string","enum":["success","failed"]}}}`,
	}
	e := New(mustRegistry(t, op))

	results := e.Execute(context.Background(), []schema.OperationRequest{
		req("r1", "list_batches", map[string]any{"status": "exploded"}),
		req("r2", "list_batches", map[string]any{"status": "failed"}),
	})
	if results[0].Status != StatusFailed {
		t.Errorf("out-of-enum value must fail: %+v", results[0])
	}
	if results[1].Status != StatusCompleted {
		t.Errorf("enum member must pass: %+v", results[1])
	}
}

func TestExecute_LargeConcurrentBatch(t *testing.T) {
	var ops []schema.Operation
	for i := 0; i < 20; i++ {
		i := i
		ops = append(ops, &stubOp{name: fmt.Sprintf("op_%d", i), execute: func(context.Context, map[string]any) (any, error) {
			return i, nil
		}})
	}
	e := New(mustRegistry(t, ops...))

	var reqs []schema.OperationRequest
	for i := 0; i < 20; i++ {
		reqs = append(reqs, req(fmt.Sprintf("r%d", i), fmt.Sprintf("op_%d", i), nil))
	}
	results := e.Execute(context.Background(), reqs)
	for i, r := range results {
		if r.Value != i {
			t.Errorf("results[%d] = %v, want %d (order must match input)", i, r.Value, i)
		}
	}
}
