// Package websocket implements a Hub for broadcasting live match summaries.
// WebSockets are persistent two-way connections between the server and clients. Unlike
// regular HTTP, the server can push data the moment it changes: every time a hole is recorded,
// corrected or undone, everyone watching that match gets the new summary without polling.
package websocket

import (
	"context"
	"sync"
)

// sendBuffer is how many summaries a client may fall behind before it is dropped.
const sendBuffer = 16

// Client represents a single connected WebSocket client watching one match.
type Client struct {
	MatchID string      // Which match this client is watching; used to route messages
	Send    chan []byte // Outgoing messages; the Hub writes here, the connection's writer drains it
}

// NewClient returns a client for matchID with a buffered Send channel.
func NewClient(matchID string) *Client {
	return &Client{MatchID: matchID, Send: make(chan []byte, sendBuffer)}
}

// Message is a unit of data to broadcast to all clients watching a specific match.
type Message struct {
	MatchID string
	Data    []byte // Typically a JSON-encoded match summary
}

// Hub manages all active WebSocket connections, grouped by match ID.
// It runs in its own goroutine and processes registration, unregistration and broadcast events
// through channels, so the clients map is only ever modified by that goroutine.
type Hub struct {
	// clients is a nested map: matchID -> set of clients.
	clients map[string]map[*Client]bool

	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client

	// done is closed when Run returns; sends after that are dropped instead of blocking.
	done chan struct{}

	// mu guards clients for readers outside the Run goroutine (WatcherCount).
	mu sync.RWMutex
}

// NewHub creates a Hub. The broadcast channel is buffered so a scorer's request does not wait
// on slow watchers; register and unregister are unbuffered and complete synchronously.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run is the Hub's event loop. Start it in a goroutine; it returns when ctx is cancelled,
// closing every remaining client's Send channel.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for matchID, clients := range h.clients {
				for client := range clients {
					close(client.Send)
				}
				delete(h.clients, matchID)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.MatchID] == nil {
				h.clients[client.MatchID] = make(map[*Client]bool)
			}
			h.clients[client.MatchID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.remove(client)

		case msg := <-h.broadcast:
			h.mu.RLock()
			clients := h.clients[msg.MatchID]
			h.mu.RUnlock()

			for client := range clients {
				select {
				case client.Send <- msg.Data:
				default:
					// Send is full: the client is too slow. Drop it rather than stall every
					// other watcher of the match.
					h.remove(client)
				}
			}
		}
	}
}

// remove deletes a client and closes its Send channel. Only called from Run.
func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[client.MatchID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.Send) // Signals the connection's writer to stop
	if len(clients) == 0 {
		delete(h.clients, client.MatchID)
	}
}

// BroadcastToMatch sends data to all clients currently watching the given match.
// After the Hub has stopped it returns without sending.
func (h *Hub) BroadcastToMatch(matchID string, data []byte) {
	select {
	case h.broadcast <- &Message{MatchID: matchID, Data: data}:
	case <-h.done:
	}
}

// Register adds a client to the Hub so it starts receiving broadcasts for its match.
// Registering with a stopped Hub closes the client's Send channel at once.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.Send)
	}
}

// Unregister removes a client from the Hub when its connection closes.
// Unregistering a client the Hub already dropped, or after the Hub stopped, is a no-op.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// WatcherCount returns how many clients are watching a match.
func (h *Hub) WatcherCount(matchID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[matchID])
}
