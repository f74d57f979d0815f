package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/pricisTrail/dlpgui/internal/model"
)

type client struct {
	conn *websocket.Conn
	hub  *Hub
	send chan []byte
}

func (c *client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			c.hub.RemoveClient(c)
			return
		}
	}
}

// Hub fans session events out to all connected WebSocket clients. It is the
// event sink the download service publishes into; with no clients connected
// every publish is a cheap no-op.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]bool
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients: make(map[*client]bool),
		logger:  logger,
	}
}

func (h *Hub) AddClient(conn *websocket.Conn) *client {
	c := &client{
		conn: conn,
		hub:  h,
		send: make(chan []byte, 64),
	}

	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()

	go c.writePump()
	return c
}

func (h *Hub) RemoveClient(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleWS upgrades the request and keeps the connection registered until the
// client goes away. Inbound messages are drained and discarded; the protocol
// is one-way.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		CheckOrigin: checkOrigin,
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	h.logger.Debug("websocket client connected", "remote", r.RemoteAddr)
	c := h.AddClient(conn)

	go func() {
		defer func() {
			h.RemoveClient(c)
			h.logger.Debug("websocket client disconnected", "remote", r.RemoteAddr)
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Progress implements the download event sink.
func (h *Hub) Progress(ev model.ProgressEvent) {
	h.broadcast(Message{Type: MsgProgress, Payload: ev})
}

func (h *Hub) Title(id, title string) {
	h.broadcast(Message{Type: MsgTitle, Payload: TitlePayload{ID: id, Title: title}})
}

func (h *Hub) Log(id, message string, isError bool) {
	h.broadcast(Message{Type: MsgLog, Payload: LogPayload{ID: id, Message: message, IsError: isError}})
}

func (h *Hub) Status(id string, status model.DownloadStatus) {
	h.broadcast(Message{Type: MsgStatus, Payload: StatusPayload{ID: id, Status: status}})
}

func (h *Hub) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("broadcast marshal failed", "type", msg.Type, "error", err)
		return
	}

	// Sends happen under the read lock while RemoveClient closes channels
	// under the write lock, so a close can never interleave a send. Slow
	// clients are collected and removed only after the lock is released.
	h.mu.RLock()
	var slow []*client
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		// Client can't keep up, disconnect it
		h.logger.Warn("websocket client too slow, disconnecting")
		h.RemoveClient(c)
	}
}

func checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	parsed, err := url.Parse(origin)
	if err != nil {
		return false
	}

	host := parsed.Host
	if host == "" {
		return false
	}

	if host == r.Host {
		return true
	}
	if strings.HasPrefix(host, "localhost:") || host == "localhost" {
		return true
	}
	if strings.HasPrefix(host, "127.0.0.1:") || host == "127.0.0.1" {
		return true
	}
	if strings.HasPrefix(host, "[::1]:") || host == "::1" {
		return true
	}

	return false
}
