package session

import (
	"os"
	"strings"
	"testing"

	"github.com/watchdeck/watchdeck/internal/schema"
)

func text(s string) *string { return &s }

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	s := m.GetOrCreate("gateway:conv-1")
	answer := "Two batches failed."
	assistant := schema.NewAssistantMessage(&answer, nil)
	assistant.OperationsUsed = []string{"list_batches"}
	assistant.StructuredData = map[string]any{"r1": map[string]any{"count": float64(2)}}
	s.AddMessages([]schema.Message{
		schema.NewUserMessage("what failed?"),
		assistant,
	})
	if err := m.Save(s); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// A fresh manager must reload from disk, not the cache.
	m2, err := NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	got := m2.GetOrCreate("gateway:conv-1")
	if got.Len() != 2 {
		t.Fatalf("reloaded %d messages, want 2", got.Len())
	}
	hist := got.History(0)
	if hist[0].Role != "user" || hist[0].Text() != "what failed?" {
		t.Errorf("user turn = %+v", hist[0])
	}
	if hist[1].Text() != "Two batches failed." {
		t.Errorf("assistant text = %q", hist[1].Text())
	}
	if len(hist[1].OperationsUsed) != 1 || hist[1].OperationsUsed[0] != "list_batches" {
		t.Errorf("operations used = %v", hist[1].OperationsUsed)
	}
	if hist[1].StructuredData == nil {
		t.Errorf("structured data lost on reload")
	}
}

func TestSaveAndReload_ToolCalls(t *testing.T) {
	dir := t.TempDir()
	m, _ := NewManager(dir)

	s := m.GetOrCreate("conv-tools")
	s.AddMessages([]schema.Message{
		schema.NewAssistantMessage(nil, []schema.ToolCall{
			{ID: "r1", Name: "get_batch", Arguments: map[string]any{"batchId": "b-1"}},
		}),
		schema.NewToolResultMessage("r1", "get_batch", `{"status":"failed"}`),
	})
	if err := m.Save(s); err != nil {
		t.Fatalf("Save: %v", err)
	}

	m2, _ := NewManager(dir)
	hist := m2.GetOrCreate("conv-tools").History(0)
	if len(hist) != 2 {
		t.Fatalf("len = %d", len(hist))
	}
	if len(hist[0].ToolCalls) != 1 || hist[0].ToolCalls[0].Name != "get_batch" {
		t.Fatalf("tool calls = %+v", hist[0].ToolCalls)
	}
	if hist[0].ToolCalls[0].Arguments["batchId"] != "b-1" {
		t.Errorf("arguments = %v", hist[0].ToolCalls[0].Arguments)
	}
	if hist[1].ToolCallID != "r1" || hist[1].ToolName != "get_batch" {
		t.Errorf("tool result = %+v", hist[1])
	}
}

func TestHistory_Bounded(t *testing.T) {
	m, _ := NewManager(t.TempDir())
	s := m.GetOrCreate("conv-window")
	for i := 0; i < 10; i++ {
		s.AddMessages([]schema.Message{
			schema.NewUserMessage("q"),
			schema.NewAssistantMessage(text("a"), nil),
		})
	}
	if got := len(s.History(6)); got != 6 {
		t.Errorf("History(6) = %d messages", got)
	}
	if got := len(s.History(0)); got != 20 {
		t.Errorf("History(0) = %d messages", got)
	}
}

func TestSessionPath_SanitisesKey(t *testing.T) {
	m, _ := NewManager(t.TempDir())
	s := m.GetOrCreate(`gateway:../../etc?passwd`)
	s.AddMessages([]schema.Message{schema.NewUserMessage("hi")})
	if err := m.Save(s); err != nil {
		t.Fatalf("Save: %v", err)
	}
	entries, err := os.ReadDir(m.sessionsDir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("sessions dir entries = %v err = %v", entries, err)
	}
	if strings.ContainsAny(entries[0].Name(), `:?/\`) {
		t.Errorf("unsafe filename %q", entries[0].Name())
	}
}

func TestList_NewestFirst(t *testing.T) {
	dir := t.TempDir()
	m, _ := NewManager(dir)

	a := m.GetOrCreate("conv-a")
	a.AddMessages([]schema.Message{schema.NewUserMessage("first")})
	if err := m.Save(a); err != nil {
		t.Fatalf("Save: %v", err)
	}
	b := m.GetOrCreate("conv-b")
	b.AddMessages([]schema.Message{schema.NewUserMessage("second")})
	if err := m.Save(b); err != nil {
		t.Fatalf("Save: %v", err)
	}

	list := m.List()
	if len(list) != 2 {
		t.Fatalf("List = %d sessions", len(list))
	}
}
