package main

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"cryptoanalyzer/internal/dashboard"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMessage = 512
	sendBuffer = 16
)

// event is the envelope pushed to websocket clients.
type event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// hub fans loop output out to websocket clients. It implements
// dashboard.Renderer; text frames from clients are forwarded as commands.
type hub struct {
	upgrader websocket.Upgrader
	log      *zap.Logger
	commands chan<- string

	mu      sync.Mutex
	clients map[*client]struct{}
	last    []byte
}

func newHub(log *zap.Logger, commands chan<- string) *hub {
	return &hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log:      log,
		commands: commands,
		clients:  map[*client]struct{}{},
	}
}

func (h *hub) Snapshot(s dashboard.Snapshot) {
	b := h.encode("snapshot", s)
	if b == nil {
		return
	}
	h.mu.Lock()
	h.last = b
	h.mu.Unlock()
	h.broadcast(b)
}

func (h *hub) Detail(d dashboard.Detail) { h.broadcast(h.encode("detail", d)) }
func (h *hub) Message(msg string)        { h.broadcast(h.encode("message", msg)) }
func (h *hub) Error(err error)           { h.broadcast(h.encode("error", err.Error())) }

func (h *hub) encode(kind string, data any) []byte {
	b, err := json.Marshal(event{Type: kind, Data: data})
	if err != nil {
		h.log.Error("encode event", zap.String("type", kind), zap.Error(err))
		return nil
	}
	return b
}

func (h *hub) broadcast(b []byte) {
	if b == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- b:
		default:
			// slow consumer
			delete(h.clients, c)
			close(c.send)
		}
	}
}

func (h *hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// Count returns the number of connected clients.
func (h *hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *hub) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("websocket upgrade", zap.Error(err))
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	if h.last != nil {
		c.send <- h.last
	}
	h.mu.Unlock()
	h.log.Debug("websocket connected", zap.String("remote", r.RemoteAddr))

	go h.writePump(c)
	h.readPump(c)
}

func (h *hub) readPump(c *client) {
	defer func() {
		h.remove(c)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessage)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		kind, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("websocket read", zap.Error(err))
			}
			return
		}
		line := strings.TrimSpace(string(msg))
		if kind != websocket.TextMessage || line == "" || h.commands == nil {
			continue
		}
		select {
		case h.commands <- line:
		default:
			h.log.Warn("command dropped, loop busy", zap.String("command", line))
		}
	}
}

func (h *hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
