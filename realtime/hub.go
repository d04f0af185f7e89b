/*
hub.go - Websocket fan-out

PURPOSE:
  The Hub implements Emitter over websocket connections. Clients join
  and leave per-thread rooms; user-addressed events route through a
  presence Registry so every open connection of a user gets the message.

DELIVERY:
  Best-effort. Each client has a bounded outbound buffer; a full buffer
  drops the message and logs, it never blocks the emitting goroutine.

WIRE FORMAT:
  Inbound:  {"action": "join-thread" | "leave-thread", "thread": "<id>"}
  Outbound: the Event's JSON encoding: {"type": ..., "payload": ...}
*/
package realtime

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/peerwise/forum-engine/credit"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// sendBuffer is each client's outbound queue. Overflow drops.
	sendBuffer = 64
)

// =============================================================================
// PRESENCE REGISTRY
// =============================================================================

// Conn is one deliverable connection. Deliver reports whether the
// message was queued.
type Conn interface {
	Deliver(msg []byte) bool
}

// Registry tracks which connections belong to which user. The Hub calls
// Bind on connect and Unbind on disconnect; user-addressed events are
// delivered to whatever Find returns.
type Registry interface {
	Bind(user credit.UserID, c Conn)
	Unbind(user credit.UserID, c Conn)
	Find(user credit.UserID) []Conn
}

// MemoryRegistry is the in-process Registry.
type MemoryRegistry struct {
	mu    sync.RWMutex
	conns map[credit.UserID]map[Conn]struct{}
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{conns: make(map[credit.UserID]map[Conn]struct{})}
}

func (r *MemoryRegistry) Bind(user credit.UserID, c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.conns[user]
	if !ok {
		set = make(map[Conn]struct{})
		r.conns[user] = set
	}
	set[c] = struct{}{}
}

func (r *MemoryRegistry) Unbind(user credit.UserID, c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.conns[user]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(r.conns, user)
	}
}

func (r *MemoryRegistry) Find(user credit.UserID) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.conns[user]
	out := make([]Conn, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out
}

// =============================================================================
// HUB
// =============================================================================

// Hub owns the websocket clients and implements Emitter.
type Hub struct {
	registry Registry
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
	rooms   map[string]map[*client]struct{}
}

// NewHub creates a Hub using the given presence registry. checkOrigin
// may be nil to accept any origin.
func NewHub(registry Registry, checkOrigin func(*http.Request) bool) *Hub {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Hub{
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		clients: make(map[*client]struct{}),
		rooms:   make(map[string]map[*client]struct{}),
	}
}

// ServeHTTP upgrades the request and runs the connection. The user is
// identified by the `user` query parameter.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user := credit.UserID(r.URL.Query().Get("user"))
	if user == "" {
		http.Error(w, "missing user parameter", http.StatusBadRequest)
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	c := &client{
		hub:  h,
		conn: ws,
		user: user,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.registry.Bind(user, c)

	log.WithField("user", user).Debug("websocket client connected")

	go c.writePump()
	go c.readPump()
}

// Emit delivers the event to its addressees. Never blocks.
func (h *Hub) Emit(ev Event) {
	msg, err := json.Marshal(ev)
	if err != nil {
		log.WithError(err).WithField("type", ev.Type).Warn("event marshal failed")
		return
	}

	switch {
	case ev.UserID != "":
		for _, c := range h.registry.Find(ev.UserID) {
			if !c.Deliver(msg) {
				log.WithFields(log.Fields{"user": ev.UserID, "type": ev.Type}).
					Warn("event dropped, client buffer full")
			}
		}
	case ev.Room != "":
		h.mu.RLock()
		members := make([]*client, 0, len(h.rooms[ev.Room]))
		for c := range h.rooms[ev.Room] {
			members = append(members, c)
		}
		h.mu.RUnlock()
		for _, c := range members {
			if !c.Deliver(msg) {
				log.WithFields(log.Fields{"room": ev.Room, "type": ev.Type}).
					Warn("event dropped, client buffer full")
			}
		}
	default:
		h.mu.RLock()
		all := make([]*client, 0, len(h.clients))
		for c := range h.clients {
			all = append(all, c)
		}
		h.mu.RUnlock()
		for _, c := range all {
			if !c.Deliver(msg) {
				log.WithField("type", ev.Type).Warn("event dropped, client buffer full")
			}
		}
	}
}

var _ Emitter = (*Hub)(nil)

func (h *Hub) join(c *client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.rooms[room]
	if !ok {
		set = make(map[*client]struct{})
		h.rooms[room] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) leave(c *client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.rooms, room)
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	for room, set := range h.rooms {
		delete(set, c)
		if len(set) == 0 {
			delete(h.rooms, room)
		}
	}
	h.mu.Unlock()
	h.registry.Unbind(c.user, c)
}

// =============================================================================
// CLIENT
// =============================================================================

type client struct {
	hub  *Hub
	conn *websocket.Conn
	user credit.UserID

	send chan []byte
	done chan struct{}
	once sync.Once
}

// Deliver queues a message without blocking. The send channel is never
// closed; a closing client signals through done instead, so a late
// Deliver can never panic.
func (c *client) Deliver(msg []byte) bool {
	select {
	case <-c.done:
		return false
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *client) close() {
	c.once.Do(func() {
		c.hub.drop(c)
		close(c.done)
		c.conn.Close()
	})
}

// clientMessage is what clients send upstream.
type clientMessage struct {
	Action string `json:"action"`
	Thread string `json:"thread"`
}

func (c *client) readPump() {
	defer c.close()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).WithField("user", c.user).Debug("websocket read failed")
			}
			return
		}
		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.WithError(err).WithField("user", c.user).Debug("unreadable client message")
			continue
		}
		switch msg.Action {
		case "join-thread":
			if msg.Thread != "" {
				c.hub.join(c, msg.Thread)
			}
		case "leave-thread":
			if msg.Thread != "" {
				c.hub.leave(c, msg.Thread)
			}
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
