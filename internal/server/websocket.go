package server

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/ternarybob/oaktree/internal/status"
	"github.com/ternarybob/oaktree/internal/ui"
	"github.com/ternarybob/oaktree/internal/value"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSMessage is the JSON envelope broadcast to every client of a run's
// event stream (§4.12).
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// broadcastUI is a ui.UserInterface that fans every call out to the
// WebSocket clients currently subscribed to one run, modeled on the
// teacher's WebSocketHandler: a connection set guarded by its own mutex
// map so concurrent broadcasts never interleave writes on one socket.
type broadcastUI struct {
	ui.Base

	mu      sync.Mutex
	clients map[*websocket.Conn]*sync.Mutex
}

func newBroadcastUI() *broadcastUI {
	return &broadcastUI{clients: make(map[*websocket.Conn]*sync.Mutex)}
}

// Register adds a connection to the broadcast set.
func (b *broadcastUI) Register(conn *websocket.Conn) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clients[conn] = &sync.Mutex{}
}

// Unregister removes a connection, e.g. once its read loop exits.
func (b *broadcastUI) Unregister(conn *websocket.Conn) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.clients, conn)
}

func (b *broadcastUI) broadcast(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for conn, connMu := range b.clients {
		connMu.Lock()
		_ = conn.WriteMessage(websocket.TextMessage, data)
		connMu.Unlock()
	}
}

func (b *broadcastUI) UpdateInstructionStatus(node ui.NodeInfo, newStatus status.ExecutionStatus) {
	b.broadcast(WSMessage{Type: "status", Payload: map[string]string{
		"id":     node.ID,
		"type":   node.TypeName,
		"name":   node.Name,
		"status": newStatus.String(),
	}})
}

func (b *broadcastUI) VariableUpdated(name string, v value.Value, connected bool) {
	text, _ := v.AsString()
	b.broadcast(WSMessage{Type: "variable", Payload: map[string]interface{}{
		"name":      name,
		"value":     text,
		"connected": connected,
	}})
}

func (b *broadcastUI) Message(text string) {
	b.broadcast(WSMessage{Type: "message", Payload: text})
}

func (b *broadcastUI) Log(severity ui.Severity, text string) {
	b.broadcast(WSMessage{Type: "log", Payload: map[string]string{
		"severity": string(severity),
		"text":     text,
	}})
}

var _ ui.UserInterface = (*broadcastUI)(nil)

// handleWS upgrades GET /ws?run_id=... to a WebSocket and registers the
// connection against that run's broadcastUI until the connection closes.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	runID := r.URL.Query().Get("run_id")
	rn, ok := s.registry.Get(runID)
	if !ok {
		http.Error(w, "unknown run_id", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("server: websocket upgrade failed")
		return
	}
	defer conn.Close()

	rn.broadcast.Register(conn)
	defer rn.broadcast.Unregister(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
