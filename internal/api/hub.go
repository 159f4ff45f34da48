package api

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/nerrad567/homesim-core/internal/activity"
	"github.com/nerrad567/homesim-core/internal/device"
	"github.com/nerrad567/homesim-core/internal/infrastructure/logging"
)

// Channels pushed to websocket subscribers.
const (
	ChannelDeviceChanged  = "device.changed"
	ChannelDeviceRemoved  = "device.removed"
	ChannelActivityLogged = "activity.logged"

	// ChannelAll subscribes a client to every channel.
	ChannelAll = "*"
)

// DeviceRemovedEvent is the payload of a device.removed event.
type DeviceRemovedEvent struct {
	ID device.ID `json:"id"`
}

// ActivityEvent is the payload of an activity.logged event.
type ActivityEvent struct {
	Entry   string    `json:"entry"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// Hub fans registry changes out to connected panels.
// It implements device.Notifier.
type Hub struct {
	logger *logging.Logger
	now    func() time.Time

	mu      sync.RWMutex
	clients map[*wsClient]struct{}
}

// NewHub creates a hub with no clients.
func NewHub(logger *logging.Logger) *Hub {
	return &Hub{
		logger:  logger,
		now:     time.Now,
		clients: make(map[*wsClient]struct{}),
	}
}

// Run blocks until ctx ends, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()

	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*wsClient]struct{})
	h.mu.Unlock()

	for c := range clients {
		c.shutdown()
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) add(c *wsClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("websocket client connected", "clients", n)
}

func (h *Hub) remove(c *wsClient) {
	h.mu.Lock()
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("websocket client disconnected", "clients", n)
}

// Broadcast sends an event to every client subscribed to channel.
// Slow clients whose buffers are full miss the event.
func (h *Hub) Broadcast(channel string, payload any) {
	data, err := json.Marshal(WSMessage{
		Type:      WSTypeEvent,
		EventType: channel,
		Timestamp: h.now().UTC().Format(time.RFC3339),
		Payload:   payload,
	})
	if err != nil {
		h.logger.Error("failed to marshal broadcast", "channel", channel, "error", err)
		return
	}

	h.mu.RLock()
	targets := make([]*wsClient, 0, len(h.clients))
	for c := range h.clients {
		if c.subscribed(channel) {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	dropped := 0
	for _, c := range targets {
		if !c.enqueue(data) {
			dropped++
		}
	}
	if dropped > 0 {
		h.logger.Warn("broadcast dropped for slow clients", "channel", channel, "dropped", dropped)
	}
}

func (h *Hub) DeviceChanged(d device.Device) {
	h.Broadcast(ChannelDeviceChanged, d)
}

func (h *Hub) DeviceRemoved(id device.ID) {
	h.Broadcast(ChannelDeviceRemoved, DeviceRemovedEvent{ID: id})
}

func (h *Hub) ActivityLogged(e activity.Entry) {
	h.Broadcast(ChannelActivityLogged, ActivityEvent{
		Entry:   e.String(),
		Message: e.Message,
		Time:    e.Time,
	})
}
