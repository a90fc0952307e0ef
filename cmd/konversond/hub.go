package main

import (
	"encoding/json"
	"sync"
)

// Hub fans a stream of ghost-move updates out to every connected websocket
// client, grounded on the teacher's hub.go channel-broadcast pattern.
type Hub struct {
	mu      sync.Mutex
	clients map[*Client]struct{}
	publish chan ghostUpdate
}

// Client wraps one websocket connection's outbound buffer.
type Client struct {
	send chan []byte
}

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ghostUpdate mirrors the teacher's per-move ghost-board push, stripped of
// UI animation timing: one completed search depth's current best move.
type ghostUpdate struct {
	RequestID string  `json:"request_id"`
	Depth     int     `json:"depth"`
	Score     int     `json:"score"`
	Move      moveDTO `json:"move"`
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		publish: make(chan ghostUpdate, 64),
	}
}

func (h *Hub) Run(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case update := <-h.publish:
			h.mu.Lock()
			for client := range h.clients {
				client.sendJSON(wsMessage{Type: "ghost", Payload: mustMarshal(update)})
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *Hub) HasClients() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients) > 0
}

func (h *Hub) Publish(update ghostUpdate) {
	select {
	case h.publish <- update:
	default:
	}
}

func (c *Client) sendJSON(msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func mustMarshal(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}
