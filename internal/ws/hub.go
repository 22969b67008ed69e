// Package ws streams a user's newly saved sessions to their connected
// dashboard clients.
package ws

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"keystroke-lab/backend/internal/auth"
	"keystroke-lab/backend/internal/models"
	"keystroke-lab/backend/internal/services"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
)

type Message struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

type client struct {
	conn   *websocket.Conn
	userID int
	send   chan Message
}

// Hub fans newly created session records out to the owning user's clients.
type Hub struct {
	mu      sync.RWMutex
	clients map[int]map[*client]struct{}

	auth    *auth.Service
	metrics *services.Metrics
}

func NewHub(authSvc *auth.Service, metrics *services.Metrics) *Hub {
	return &Hub{
		clients: make(map[int]map[*client]struct{}),
		auth:    authSvc,
		metrics: metrics,
	}
}

// HandleFeed upgrades the connection after authenticating the bearer token
// (header or ?token= query parameter, since browsers cannot set headers on
// websocket dials).
func (h *Hub) HandleFeed(w http.ResponseWriter, r *http.Request) {
	userID, err := h.auth.UserIDFromRequest(r)
	if err != nil {
		if token := r.URL.Query().Get("token"); token != "" {
			userID, err = h.auth.ParseToken(token)
		}
	}
	if err != nil {
		h.metrics.IncrementAuthFailures()
		http.Error(w, "Invalid authentication token", http.StatusUnauthorized)
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	c := &client{
		conn:   conn,
		userID: userID,
		send:   make(chan Message, 16),
	}
	h.register(c)
	log.Printf("WebSocket client connected: user %d", userID)

	go h.writePump(c)
	go h.readPump(c)

	c.send <- Message{
		Type:      "WELCOME",
		Timestamp: time.Now().Unix(),
		Payload:   map[string]interface{}{"message": "Connected to session feed"},
	}
}

// BroadcastSession delivers a freshly saved record to the owner's clients.
// Slow clients are skipped rather than blocking the save path.
func (h *Hub) BroadcastSession(s models.Session) {
	msg := Message{
		Type:      "SESSION_SAVED",
		Payload:   s,
		Timestamp: time.Now().Unix(),
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[s.UserID] {
		select {
		case c.send <- msg:
			h.metrics.IncrementWSMessages()
		default:
		}
	}
}

// ActiveClients reports how many feed connections are open.
func (h *Hub) ActiveClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

// CloseAll terminates every connection; called on shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, set := range h.clients {
		for c := range set {
			close(c.send)
			c.conn.Close()
		}
		delete(h.clients, userID)
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
	h.metrics.IncrementWSConnections()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.userID]
	if !ok {
		return
	}
	if _, present := set[c]; !present {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
	h.metrics.DecrementWSConnections()
}

func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
		log.Printf("WebSocket client disconnected: user %d", c.userID)
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error for user %d: %v", c.userID, err)
			}
			return
		}

		switch msg.Type {
		case "PING":
			select {
			case c.send <- Message{Type: "PONG", Timestamp: time.Now().Unix()}:
			default:
			}
		default:
			log.Printf("Unknown message type: %s", msg.Type)
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
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
