package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/FocuswithJustin/SchemaCanvas/core/session"
	"github.com/FocuswithJustin/SchemaCanvas/internal/logging"
	"github.com/gorilla/websocket"
)

var (
	// GlobalHub is the shared WebSocket hub for broadcasting graph updates.
	GlobalHub *Hub

	upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     checkOrigin,
	}
)

// maxMessageBytes caps a single live-edit update frame.
const maxMessageBytes = 1 << 20

// UpdateMessage is what clients send: the full edited DDL text.
type UpdateMessage struct {
	Type string `json:"type"` // "update"
	Text string `json:"text"`
}

// GraphMessage is pushed to every client after a pipeline run: the
// merged graph document on success, the pipeline error otherwise.
type GraphMessage struct {
	Type    string          `json:"type"` // "graph", "error"
	Graph   json.RawMessage `json:"graph,omitempty"`
	Message string          `json:"message,omitempty"`
}

// checkOrigin validates the Origin header against the configured allow
// list. Requests without an Origin header (non-browser clients) pass.
func checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(ServerConfig.AllowedOrigins) == 0 {
		return true
	}
	for _, allowed := range ServerConfig.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

// Client represents a WebSocket client connection.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub maintains active WebSocket connections and broadcasts messages.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new WebSocket hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's main loop to handle client registration and
// broadcasting. When the last client detaches the session drops back
// from LiveEditing to plain Editing.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			connected := len(h.clients)
			h.mu.Unlock()
			logging.WebSocketEvent("client_connected", connected)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			remaining := len(h.clients)
			h.mu.Unlock()
			logging.WebSocketEvent("client_disconnected", remaining)
			if remaining == 0 {
				leaveLiveEditing()
			}

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Client channel full, disconnect
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast marshals a message and queues it for every client.
func (h *Hub) Broadcast(msg GraphMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		logging.Error("failed to marshal websocket message", "error", err)
		return
	}

	select {
	case h.broadcast <- data:
	default:
		logging.Warn("broadcast channel full, dropping message")
	}
}

// broadcastGraph pushes a committed graph document to all live clients.
func broadcastGraph(doc []byte) {
	if GlobalHub == nil {
		return
	}
	GlobalHub.Broadcast(GraphMessage{Type: "graph", Graph: doc})
}

func broadcastError(message string) {
	if GlobalHub == nil {
		return
	}
	GlobalHub.Broadcast(GraphMessage{Type: "error", Message: message})
}

// enterLiveEditing takes the session mutex and promotes the session
// into live mode.
func enterLiveEditing() {
	sessionMu.Lock()
	defer sessionMu.Unlock()
	ensureLiveEditing()
}

// ensureLiveEditing promotes the session into LiveEditing, opening an
// edit first when the session is clean. A REST apply or cancel can drop
// the session back to Clean while clients are still attached; the next
// update reopens it. Callers hold sessionMu.
func ensureLiveEditing() {
	if activeSession == nil {
		return
	}
	switch activeSession.State() {
	case session.Clean:
		activeSession.BeginEdit()
		activeSession.ToggleLive()
		logging.SessionTransition(string(session.Clean), string(session.LiveEditing), "trigger", "ws")
	case session.Editing:
		activeSession.ToggleLive()
		logging.SessionTransition(string(session.Editing), string(session.LiveEditing), "trigger", "ws")
	}
}

// leaveLiveEditing drops back to plain Editing once the last client
// detaches. The edit stays open; the REST client decides whether to
// apply or cancel.
func leaveLiveEditing() {
	sessionMu.Lock()
	defer sessionMu.Unlock()
	if activeSession == nil {
		return
	}
	if activeSession.State() == session.LiveEditing {
		activeSession.ToggleLive()
		logging.SessionTransition(string(session.LiveEditing), string(session.Editing), "trigger", "ws_detach")
	}
}

// readPump reads update messages from the WebSocket connection and runs
// each one through the pipeline.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageBytes)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Error("websocket unexpected close", "error", err)
			}
			break
		}
		c.handleUpdate(data)
	}
}

// handleUpdate runs one live edit through the pipeline. Success
// broadcasts the merged graph; pipeline failure broadcasts the error
// and keeps the text buffer as sent.
func (c *Client) handleUpdate(data []byte) {
	var msg UpdateMessage
	if err := json.Unmarshal(data, &msg); err != nil || msg.Type != "update" {
		reply, _ := json.Marshal(GraphMessage{Type: "error", Message: `expected {"type":"update","text":...}`})
		c.trySend(reply)
		return
	}

	sessionMu.Lock()
	ensureLiveEditing()
	err := activeSession.SetText(msg.Text)
	var doc []byte
	if err == nil {
		doc, err = activeSession.Graph().ToJSON()
	}
	sessionMu.Unlock()

	if err != nil {
		logging.PipelineError("live_edit", err)
		broadcastError(err.Error())
		return
	}
	broadcastGraph(doc)
}

// trySend queues a message for this client only, dropping it if the
// client is backed up.
func (c *Client) trySend(data []byte) {
	select {
	case c.send <- data:
	default:
	}
}

// writePump writes messages to the WebSocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Flush any additional queued messages
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleWebSocket upgrades the connection and attaches the client to
// the live editing session.
func handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if GlobalHub == nil {
		http.Error(w, "WebSocket hub not initialized", http.StatusInternalServerError)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("websocket upgrade failed", "error", err)
		return
	}

	enterLiveEditing()

	client := &Client{
		hub:  GlobalHub,
		conn: conn,
		send: make(chan []byte, 256),
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}
