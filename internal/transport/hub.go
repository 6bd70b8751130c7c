// Package transport carries protocol messages over WebSocket connections.
//
// Each connection has two outbound queues. The reliable queue carries
// responses and events; a client that lets it fill up is disconnected. The
// unreliable queue carries world snapshots and drops frames when full.
package transport

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/omega-realm/worldserver/internal/presence"
	"github.com/omega-realm/worldserver/internal/protocol"
)

// Handler receives decoded client messages
type Handler interface {
	HandleMessage(ctx context.Context, conn presence.ConnID, m protocol.Message)
	HandleDisconnect(conn presence.ConnID)
}

// Config holds the per-connection limits
type Config struct {
	ReliableQueue   int
	UnreliableQueue int
	WriteWait       time.Duration
	PongWait        time.Duration
	MaxMessageSize  int64
}

func DefaultConfig() Config {
	return Config{
		ReliableQueue:   256,
		UnreliableQueue: 16,
		WriteWait:       10 * time.Second,
		PongWait:        60 * time.Second,
		MaxMessageSize:  64 * 1024,
	}
}

func (c Config) pingPeriod() time.Duration {
	return (c.PongWait * 9) / 10
}

// Hub owns every live connection and implements presence.Sender
type Hub struct {
	cfg      Config
	upgrader websocket.Upgrader

	mu     sync.RWMutex
	conns  map[presence.ConnID]*client
	nextID atomic.Uint64

	dropped atomic.Uint64
}

func NewHub(cfg Config) *Hub {
	return &Hub{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		conns: make(map[presence.ConnID]*client),
	}
}

// client is one WebSocket connection and its outbound queues
type client struct {
	id         presence.ConnID
	ws         *websocket.Conn
	reliable   chan []byte
	unreliable chan []byte
	done       chan struct{}
	once       sync.Once
}

func (h *Hub) newClient(ws *websocket.Conn) *client {
	c := &client{
		id:         presence.ConnID(h.nextID.Add(1)),
		ws:         ws,
		reliable:   make(chan []byte, h.cfg.ReliableQueue),
		unreliable: make(chan []byte, h.cfg.UnreliableQueue),
		done:       make(chan struct{}),
	}
	h.mu.Lock()
	h.conns[c.id] = c
	h.mu.Unlock()
	return c
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		if c.ws != nil {
			c.ws.Close()
		}
	})
}

func (h *Hub) lookup(id presence.ConnID) (*client, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.conns[id]
	return c, ok
}

func (h *Hub) forget(id presence.ConnID) {
	h.mu.Lock()
	delete(h.conns, id)
	h.mu.Unlock()
}

// SendReliable queues m for conn. A full queue closes the connection.
func (h *Hub) SendReliable(id presence.ConnID, m protocol.Message) {
	c, ok := h.lookup(id)
	if !ok {
		return
	}
	data, err := protocol.Encode(m)
	if err != nil {
		log.Printf("[Transport] %v", err)
		return
	}
	select {
	case <-c.done:
	case c.reliable <- data:
	default:
		log.Printf("[Transport] Conn %d reliable queue full, closing", id)
		c.close()
	}
}

// SendUnreliable queues m for conn, dropping it when the queue is full
func (h *Hub) SendUnreliable(id presence.ConnID, m protocol.Message) {
	c, ok := h.lookup(id)
	if !ok {
		return
	}
	data, err := protocol.Encode(m)
	if err != nil {
		log.Printf("[Transport] %v", err)
		return
	}
	select {
	case <-c.done:
	case c.unreliable <- data:
	default:
		h.dropped.Add(1)
	}
}

// Dropped is the number of unreliable frames discarded so far
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// Len is the number of open connections
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.RLock()
	all := make([]*client, 0, len(h.conns))
	for _, c := range h.conns {
		all = append(all, c)
	}
	h.mu.RUnlock()
	for _, c := range all {
		c.close()
	}
}

// ServeWS upgrades requests to WebSocket connections served by handler
func (h *Hub) ServeWS(handler Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("[Transport] Upgrade failed: %v", err)
			return
		}
		c := h.newClient(ws)
		log.Printf("[Transport] Conn %d connected from %s", c.id, r.RemoteAddr)

		go h.writePump(c)
		go h.readPump(c, handler)
	}
}

func (h *Hub) readPump(c *client, handler Handler) {
	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		c.close()
		h.forget(c.id)
		handler.HandleDisconnect(c.id)
		log.Printf("[Transport] Conn %d disconnected", c.id)
	}()

	c.ws.SetReadLimit(h.cfg.MaxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
	})
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[Transport] Conn %d read error: %v", c.id, err)
			}
			return
		}
		m, err := protocol.Decode(data)
		if errors.Is(err, protocol.ErrUnknownType) {
			continue
		}
		if err != nil {
			log.Printf("[Transport] Conn %d sent bad frame: %v", c.id, err)
			continue
		}
		handler.HandleMessage(ctx, c.id, m)
	}
}

// writePump drains both queues onto the socket. Reliable frames are always
// written before pending snapshots.
func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(h.cfg.pingPeriod())
	defer func() {
		ticker.Stop()
		c.close()
	}()
	for {
		select {
		case <-c.done:
			return
		case data := <-c.reliable:
			if !h.write(c, data) {
				return
			}
		default:
			select {
			case <-c.done:
				continue
			case data := <-c.reliable:
				if !h.write(c, data) {
					return
				}
			case data := <-c.unreliable:
				if !h.write(c, data) {
					return
				}
			case <-ticker.C:
				c.ws.SetWriteDeadline(time.Now().Add(h.cfg.WriteWait))
				if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}
}

func (h *Hub) write(c *client, data []byte) bool {
	c.ws.SetWriteDeadline(time.Now().Add(h.cfg.WriteWait))
	return c.ws.WriteMessage(websocket.TextMessage, data) == nil
}
