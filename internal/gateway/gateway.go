// Package gateway is the WebSocket surface the dashboard backend talks to.
// It owns session lookup and history persistence; the copilot core below it
// never touches storage. Frames are JSON, one request per frame, handled
// sequentially per connection so a conversation sees one in-flight turn at
// a time.
package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/watchdeck/watchdeck/internal/agent"
	"github.com/watchdeck/watchdeck/internal/executor"
	"github.com/watchdeck/watchdeck/internal/notify"
	"github.com/watchdeck/watchdeck/internal/schema"
	"github.com/watchdeck/watchdeck/internal/session"
)

// Copilot is the conversation surface the gateway drives.
type Copilot interface {
	Converse(ctx context.Context, history []schema.Message, userText string) (*agent.Outcome, error)
	Resume(ctx context.Context, p *agent.PendingApproval, requestID string, approve bool) (*agent.Outcome, error)
}

// Frame is one inbound dashboard request.
type Frame struct {
	Type           string `json:"type"` // chat | approve | cancel
	ConversationID string `json:"conversationId,omitempty"`
	Text           string `json:"text,omitempty"`
	RequestID      string `json:"requestId,omitempty"`
}

// Reply is one outbound frame.
type Reply struct {
	Type           string             `json:"type"` // reply | pending | error
	ConversationID string             `json:"conversationId"`
	Text           string             `json:"text,omitempty"`
	OperationsUsed []string           `json:"operationsUsed,omitempty"`
	StructuredData map[string]any     `json:"structuredData,omitempty"`
	Requests       []executor.Pending `json:"requests,omitempty"`
	Error          string             `json:"error,omitempty"`
}

// Server serves the dashboard WebSocket and the health endpoint.
type Server struct {
	copilot   Copilot
	sessions  *session.Manager
	notifiers *notify.Set
	upgrader  websocket.Upgrader
}

// NewServer wires a gateway Server.
func NewServer(copilot Copilot, sessions *session.Manager, notifiers *notify.Set) *Server {
	return &Server{
		copilot:   copilot,
		sessions:  sessions,
		notifiers: notifiers,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// The dashboard backend is the only expected peer.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handler returns the HTTP mux with /ws and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
	})
	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	slog.Info("gateway listening", "addr", addr)

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	slog.Info("dashboard connected", "remote", r.RemoteAddr)

	// Suspended turns keyed by conversation ID, scoped to this connection:
	// an approval decision must come back over the socket that saw the
	// pending frame.
	pending := make(map[string]*agent.PendingApproval)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			slog.Info("dashboard disconnected", "remote", r.RemoteAddr)
			return
		}

		var frame Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			s.write(conn, Reply{Type: "error", Error: "malformed frame"})
			continue
		}

		reply := s.handleFrame(r.Context(), frame, pending)
		s.write(conn, reply)
	}
}

func (s *Server) handleFrame(ctx context.Context, frame Frame, pending map[string]*agent.PendingApproval) Reply {
	convID := frame.ConversationID

	switch frame.Type {
	case "chat":
		if frame.Text == "" {
			return Reply{Type: "error", ConversationID: convID, Error: "chat frame needs text"}
		}
		if convID == "" {
			convID = uuid.NewString()
		}
		if _, busy := pending[convID]; busy {
			return Reply{Type: "error", ConversationID: convID,
				Error: "conversation has operations awaiting approval"}
		}

		sess := s.sessions.GetOrCreate("gateway:" + convID)
		out, err := s.copilot.Converse(ctx, sess.History(0), frame.Text)
		if err != nil {
			return Reply{Type: "error", ConversationID: convID, Error: err.Error()}
		}
		return s.outcomeReply(ctx, convID, out, pending)

	case "approve", "cancel":
		p, ok := pending[convID]
		if !ok {
			return Reply{Type: "error", ConversationID: convID, Error: "nothing awaiting approval"}
		}
		if frame.RequestID == "" {
			return Reply{Type: "error", ConversationID: convID, Error: "decision frame needs requestId"}
		}
		out, err := s.copilot.Resume(ctx, p, frame.RequestID, frame.Type == "approve")
		if err != nil {
			return Reply{Type: "error", ConversationID: convID, Error: err.Error()}
		}
		return s.outcomeReply(ctx, convID, out, pending)

	default:
		return Reply{Type: "error", ConversationID: convID, Error: "unknown frame type " + frame.Type}
	}
}

// outcomeReply turns an Outcome into the frame to send, updating the
// pending table and persisting completed turns.
func (s *Server) outcomeReply(ctx context.Context, convID string, out *agent.Outcome, pending map[string]*agent.PendingApproval) Reply {
	if out.Pending != nil {
		pending[convID] = out.Pending
		s.notifyPending(ctx, convID, out.Pending)
		return Reply{
			Type:           "pending",
			ConversationID: convID,
			Requests:       out.Pending.Requests,
		}
	}

	delete(pending, convID)

	if len(out.NewMessages) > 0 {
		sess := s.sessions.GetOrCreate("gateway:" + convID)
		sess.AddMessages(out.NewMessages)
		if err := s.sessions.Save(sess); err != nil {
			slog.Warn("session save failed", "conversation", convID, "error", err)
		}
	}

	return Reply{
		Type:           "reply",
		ConversationID: convID,
		Text:           out.FinalText,
		OperationsUsed: out.OperationsUsed,
		StructuredData: out.StructuredData,
	}
}

func (s *Server) notifyPending(ctx context.Context, convID string, p *agent.PendingApproval) {
	if s.notifiers == nil || s.notifiers.Len() == 0 {
		return
	}
	for _, req := range p.Requests {
		s.notifiers.Broadcast(ctx,
			"Approval needed: "+req.Operation+" (conversation "+convID+")")
	}
}

func (s *Server) write(conn *websocket.Conn, reply Reply) {
	data, err := json.Marshal(reply)
	if err != nil {
		slog.Warn("encode reply failed", "error", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Warn("write frame failed", "error", err)
	}
}
