package services

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Borrow lifecycle event types pushed to connected staff dashboards.
const (
	EventRequestCreated   = "request.created"
	EventRequestCancelled = "request.cancelled"
	EventRequestApproved  = "request.approved"
	EventRequestRejected  = "request.rejected"
	EventLoanReturned     = "loan.returned"
)

type Event struct {
	Type      string    `json:"type"`
	RequestID string    `json:"requestId,omitempty"`
	RecordID  string    `json:"recordId,omitempty"`
	BookID    string    `json:"bookId,omitempty"`
	StudentID string    `json:"studentId,omitempty"`
	At        time.Time `json:"at"`
}

// EventHub fans borrow lifecycle events out to websocket clients. Slow
// consumers drop events rather than blocking the lifecycle services.
type EventHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	ch      chan Event
}

func NewEventHub() *EventHub {
	return &EventHub{
		clients: map[*websocket.Conn]bool{},
		ch:      make(chan Event, 32),
	}
}

func (h *EventHub) Run(ctx context.Context) {
	for {
		select {
		case event := <-h.ch:
			h.mu.Lock()
			for conn := range h.clients {
				_ = conn.WriteJSON(event)
			}
			h.mu.Unlock()
		case <-ctx.Done():
			return
		}
	}
}

// Broadcast is safe on a nil hub so services can run without one in tests.
func (h *EventHub) Broadcast(event Event) {
	if h == nil {
		return
	}
	select {
	case h.ch <- event:
	default:
	}
}

func (h *EventHub) Add(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()
}

func (h *EventHub) Remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
}
