// Package sync mirrors a URL state store across WebSocket clients, so every
// open tab of the same view sees the same address-bar state.
package sync

import (
	"encoding/json"
	"log/slog"
	"net/http"
	stdsync "sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/urlstate"
	"github.com/vango-dev/urlstate/pkg/store"
)

// Message is the wire format, one JSON object per WebSocket text message.
// The server sends "state" messages carrying the current encoded state;
// clients send "set" messages to replace it.
type Message struct {
	Type string `json:"type"`
	Text string `json:"text"`
	Mode string `json:"mode,omitempty"`
}

// Option configures a Hub.
type Option func(*Hub)

// WithLogger sets the logger; defaults to slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(h *Hub) { h.log = l }
}

// WithReadTimeout bounds how long a client may stay silent.
func WithReadTimeout(d time.Duration) Option {
	return func(h *Hub) { h.readTimeout = d }
}

// WithWriteTimeout bounds each outbound write.
func WithWriteTimeout(d time.Duration) Option {
	return func(h *Hub) { h.writeTimeout = d }
}

// WithCheckOrigin sets the upgrader's origin check.
func WithCheckOrigin(fn func(*http.Request) bool) Option {
	return func(h *Hub) { h.upgrader.CheckOrigin = fn }
}

// Hub fans one store out to many WebSocket clients. Every store flush is
// broadcast; every client "set" goes through the store, which re-broadcasts,
// so all clients converge on the same state.
type Hub struct {
	engine *urlstate.Engine
	store  *store.Store
	log    *slog.Logger

	upgrader     websocket.Upgrader
	readTimeout  time.Duration
	writeTimeout time.Duration

	mu          stdsync.Mutex
	clients     map[*client]struct{}
	closed      bool
	unsubscribe func()
}

type client struct {
	conn *websocket.Conn
	mu   stdsync.Mutex // serializes writes
}

// NewHub creates a hub bound to a store and subscribes to its flushes.
func NewHub(engine *urlstate.Engine, st *store.Store, opts ...Option) *Hub {
	h := &Hub{
		engine:       engine,
		store:        st,
		log:          slog.Default(),
		readTimeout:  60 * time.Second,
		writeTimeout: 10 * time.Second,
		clients:      map[*client]struct{}{},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.unsubscribe = st.Subscribe(h.broadcast)
	return h
}

// Handler returns the upgrade endpoint. Each connection immediately receives
// the current state, then every subsequent flush.
func (h *Hub) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.log.Error("upgrade failed", "error", err)
			return
		}
		c := &client{conn: conn}

		h.mu.Lock()
		if h.closed {
			h.mu.Unlock()
			conn.Close()
			return
		}
		h.clients[c] = struct{}{}
		h.mu.Unlock()

		if text, err := h.engine.Stringify(h.store.Get()); err == nil {
			h.send(c, Message{Type: "state", Text: text})
		}
		h.readLoop(c)
	})
}

// Close detaches from the store and closes every connection.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = map[*client]struct{}{}
	h.mu.Unlock()

	h.unsubscribe()
	for _, c := range clients {
		c.conn.Close()
	}
}

func (h *Hub) readLoop(c *client) {
	defer h.drop(c)
	for {
		c.conn.SetReadDeadline(time.Now().Add(h.readTimeout))
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				h.log.Error("read error", "error", err)
			}
			return
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			h.log.Warn("malformed message", "error", err)
			continue
		}
		if msg.Type != "set" {
			continue
		}
		v, err := h.engine.Parse(msg.Text, h.store.Hint())
		if err != nil {
			h.log.Warn("unparseable state", "error", err)
			continue
		}
		// The store's flush broadcasts back to every client.
		h.store.Set(v)
	}
}

func (h *Hub) broadcast(u store.Update) {
	msg := Message{Type: "state", Text: u.Text, Mode: modeText(u.Mode)}
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()
	for _, c := range clients {
		h.send(c, msg)
	}
}

func (h *Hub) send(c *client, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		h.log.Error("write error", "error", err)
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.conn.Close()
}

func modeText(m store.HistoryMode) string {
	if m == store.ModePush {
		return "push"
	}
	return "replace"
}
