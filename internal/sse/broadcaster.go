// Package sse fans session notifications out to read-only viewers over
// server-sent events.
package sse

import (
	"encoding/json"
	"maps"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aaronzipp/wargame-turns/internal/session"
)

// SendTimeout bounds how long a broadcast waits on one slow viewer.
const SendTimeout = 2 * time.Second

// Message is a single server-sent event.
type Message struct {
	Event string
	Data  string
}

// Clients is the viewer registry of one session.
type Clients struct {
	mu      sync.RWMutex
	clients map[chan Message]string // channel -> viewer id
	logger  *zap.Logger
}

// NewClients creates an empty registry.
func NewClients(logger *zap.Logger) *Clients {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Clients{clients: make(map[chan Message]string), logger: logger}
}

// Add registers a viewer channel.
func (c *Clients) Add(client chan Message, viewerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, id := range c.clients {
		if id == viewerID && viewerID != "" {
			c.logger.Warn("viewer opened an additional stream", zap.String("viewer", viewerID))
			break
		}
	}
	c.clients[client] = viewerID
}

// Remove unregisters a viewer channel.
func (c *Clients) Remove(client chan Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.clients, client)
	c.logger.Debug("viewer removed", zap.Int("viewers", len(c.clients)))
}

// Count returns the number of connected viewers.
func (c *Clients) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.clients)
}

// Broadcast sends a message to every viewer. Viewers that do not accept
// it within SendTimeout miss it.
func (c *Clients) Broadcast(event, data string) {
	c.mu.RLock()
	clients := maps.Clone(c.clients)
	c.mu.RUnlock()

	msg := Message{Event: event, Data: data}
	sent := 0
	for client := range clients {
		select {
		case client <- msg:
			sent++
		case <-time.After(SendTimeout):
			c.logger.Debug("timeout sending to viewer")
		}
	}
	c.logger.Debug("broadcast", zap.String("event", event), zap.Int("sent", sent), zap.Int("viewers", len(clients)))
}

// EventName maps a notification kind to its stream event name.
func EventName(n session.Notification) string {
	switch n.(type) {
	case session.PhaseChanged:
		return EventPhaseChanged
	case session.TurnChanged:
		return EventTurnChanged
	case session.ReadinessChanged:
		return EventReadinessChanged
	case session.ClockTicked:
		return EventClockTicked
	case session.TurnEnded:
		return EventTurnEnded
	default:
		return n.Kind()
	}
}

// BroadcastNotification sends n to every viewer as JSON.
func (c *Clients) BroadcastNotification(n session.Notification) {
	data, err := json.Marshal(n)
	if err != nil {
		c.logger.Error("encode notification", zap.String("kind", n.Kind()), zap.Error(err))
		return
	}
	c.Broadcast(EventName(n), string(data))
}
