package sse

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// EventType defines the SSE event name.
type EventType string

const (
	EventSessionUpdated   EventType = "session.updated"
	EventQuotationSaved   EventType = "quotation.saved"
	EventQuotationDeleted EventType = "quotation.deleted"
)

// SessionEvent is the payload pushed to SSE clients. Events carrying an
// OperatorID only reach that operator's clients.
type SessionEvent struct {
	Event           EventType `json:"event"`
	OperatorID      int       `json:"-"`
	SessionID       string    `json:"sessionId,omitempty"`
	QuotationNumber string    `json:"quotationNumber,omitempty"`
	Items           int       `json:"items"`
	Total           string    `json:"total,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// Client represents a connected SSE client. A client with an empty
// SessionID receives the events of every session of its operator.
type Client struct {
	ID         string
	SessionID  string
	OperatorID int
	Events     chan []byte
}

// Hub manages SSE client connections and broadcasts.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewHub creates a new SSE hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

// Register adds a new client and returns it for streaming.
func (h *Hub) Register(clientID, sessionID string, operatorID int) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()

	c := &Client{
		ID:         clientID,
		SessionID:  sessionID,
		OperatorID: operatorID,
		Events:     make(chan []byte, 64),
	}
	h.clients[clientID] = c
	log.Info().Str("client_id", clientID).Str("session_id", sessionID).Int("total_clients", len(h.clients)).Msg("SSE client connected")
	return c
}

// Unregister removes a client and closes its channel.
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.clients[clientID]; ok {
		close(c.Events)
		delete(h.clients, clientID)
		log.Info().Str("client_id", clientID).Int("total_clients", len(h.clients)).Msg("SSE client disconnected")
	}
}

// Broadcast sends an event to the clients following its session and
// operator.
// Non-blocking: drops message if client buffer is full.
func (h *Hub) Broadcast(event *SessionEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal SSE event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients {
		if event.OperatorID != 0 && c.OperatorID != event.OperatorID {
			continue
		}
		if c.SessionID != "" && c.SessionID != event.SessionID {
			continue
		}
		select {
		case c.Events <- data:
		default:
			log.Warn().Str("client_id", c.ID).Msg("SSE client buffer full, dropping event")
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
