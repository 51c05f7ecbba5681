package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/ikkim/storerating-backend/internal/app/model"
	"github.com/ikkim/storerating-backend/pkg/logger"
)

const (
	// Maximum client messages handled per second; the rest are ignored.
	maxMessagesPerSecond = 10

	// SendBufferSize is the per-connection queue length. A client whose
	// queue is full is disconnected.
	SendBufferSize = 64

	EventRating = "rating"
	EventPong   = "pong"
)

// ClientMessage is a message sent by the owner's client.
type ClientMessage struct {
	Type string `json:"type"`
}

// RatingEvent is pushed to the owner of the rated store.
type RatingEvent struct {
	Type    string        `json:"type"`
	Rating  *model.Rating `json:"rating"`
	Created bool          `json:"created"`
}

// Client is one websocket session of a store owner.
type Client struct {
	Hub     *Hub
	Conn    *Conn
	OwnerID uint
	Send    chan []byte

	messageCount  int
	lastResetTime time.Time
	rateMu        sync.Mutex

	// closed guards Send against sends racing the hub closing it.
	closed bool
	sendMu sync.Mutex
}

func NewClient(hub *Hub, conn *Conn, ownerID uint) *Client {
	return &Client{
		Hub:           hub,
		Conn:          conn,
		OwnerID:       ownerID,
		Send:          make(chan []byte, SendBufferSize),
		lastResetTime: time.Now(),
	}
}

// trySend queues data without blocking. It reports false when the queue is
// full or Send has been closed.
func (c *Client) trySend(data []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

// closeSend closes Send once and ends the session's WritePump.
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
}

type ownerMessage struct {
	ownerID uint
	data    []byte
}

// Hub fans rating events out to the connected sessions of each store owner.
type Hub struct {
	// owner id -> sessions (an owner may be connected from several devices)
	clients map[uint][]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan *ownerMessage

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint][]*Client),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan *ownerMessage, 1024),
	}
}

// Run processes registrations and broadcasts until ctx is cancelled. On exit
// every remaining session's send channel is closed.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.OwnerID] = append(h.clients[client.OwnerID], client)
			sessions := len(h.clients[client.OwnerID])
			h.mu.Unlock()
			logger.Info("Live feed client registered", map[string]interface{}{
				"owner_id":       client.OwnerID,
				"total_sessions": sessions,
			})

		case client := <-h.unregister:
			h.removeClient(client)

		case msg := <-h.broadcast:
			h.mu.RLock()
			for _, client := range h.clients[msg.ownerID] {
				if !client.trySend(msg.data) {
					go h.Unregister(client)
					logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
						"owner_id": msg.ownerID,
					})
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	list := h.clients[client.OwnerID]
	remaining := make([]*Client, 0, len(list))
	found := false
	for _, c := range list {
		if c == client {
			found = true
			continue
		}
		remaining = append(remaining, c)
	}
	if !found {
		return
	}

	if len(remaining) == 0 {
		delete(h.clients, client.OwnerID)
	} else {
		h.clients[client.OwnerID] = remaining
	}
	client.closeSend()

	logger.Info("Live feed client unregistered", map[string]interface{}{
		"owner_id":           client.OwnerID,
		"remaining_sessions": len(remaining),
	})
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ownerID, list := range h.clients {
		for _, c := range list {
			c.closeSend()
		}
		delete(h.clients, ownerID)
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// SendToOwner queues a message for every session of ownerID. Messages are
// dropped when the broadcast queue is full.
func (h *Hub) SendToOwner(ownerID uint, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		logger.Error("Failed to marshal message", err)
		return err
	}

	select {
	case h.broadcast <- &ownerMessage{ownerID: ownerID, data: data}:
	default:
		logger.Warn("Broadcast channel full, message dropped", map[string]interface{}{
			"owner_id": ownerID,
		})
	}
	return nil
}

// NotifyRating publishes a stored rating to the store owner's live feed.
func (h *Hub) NotifyRating(ownerID uint, rating *model.Rating, created bool) {
	if err := h.SendToOwner(ownerID, RatingEvent{Type: EventRating, Rating: rating, Created: created}); err != nil {
		logger.Error("Failed to publish rating event", err, map[string]interface{}{
			"owner_id":  ownerID,
			"rating_id": rating.ID,
		})
	}
}

func (h *Hub) IsOwnerOnline(ownerID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[ownerID]
	return ok
}

// HandleClientMessage answers {"type":"ping"} application pings. Other
// message types are ignored.
func (h *Hub) HandleClientMessage(client *Client, message []byte) {
	client.rateMu.Lock()
	now := time.Now()
	if now.Sub(client.lastResetTime) >= time.Second {
		client.messageCount = 0
		client.lastResetTime = now
	}
	client.messageCount++
	count := client.messageCount
	client.rateMu.Unlock()

	if count > maxMessagesPerSecond {
		logger.Warn("Rate limit exceeded", map[string]interface{}{
			"owner_id": client.OwnerID,
			"count":    count,
		})
		return
	}

	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		logger.Warn("Failed to parse client message", map[string]interface{}{
			"owner_id": client.OwnerID,
			"error":    err.Error(),
		})
		return
	}

	if msg.Type == "ping" {
		data, _ := json.Marshal(ClientMessage{Type: EventPong})
		client.trySend(data)
	}
}
