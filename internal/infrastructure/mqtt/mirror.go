package mqtt

import (
	"context"
	"encoding/json"

	"github.com/nerrad567/homesim-core/internal/activity"
	"github.com/nerrad567/homesim-core/internal/device"
)

// mirrorQueueSize bounds the number of events waiting to be published.
const mirrorQueueSize = 256

// Publisher is the subset of Client used by Mirror.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// message is one pending publish.
type message struct {
	topic    string
	payload  []byte
	retained bool
}

// Mirror implements device.Notifier by publishing registry changes to MQTT.
//
// Notifications are queued and published from Run so that registry callers
// never wait on the broker. Events arriving while the queue is full are dropped.
type Mirror struct {
	pub    Publisher
	topics Topics
	qos    byte
	queue  chan message
	logger Logger
}

// NewMirror creates a mirror publishing through pub.
func NewMirror(pub Publisher, topics Topics, qos byte) *Mirror {
	return &Mirror{
		pub:    pub,
		topics: topics,
		qos:    qos,
		queue:  make(chan message, mirrorQueueSize),
	}
}

// SetLogger sets a logger for publish failures.
func (m *Mirror) SetLogger(logger Logger) {
	m.logger = logger
}

// Run publishes queued events until ctx is cancelled.
func (m *Mirror) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-m.queue:
			if err := m.pub.Publish(msg.topic, msg.payload, m.qos, msg.retained); err != nil && m.logger != nil {
				m.logger.Warn("mqtt mirror publish failed", "topic", msg.topic, "error", err)
			}
		}
	}
}

// DeviceChanged publishes a retained snapshot of d.
func (m *Mirror) DeviceChanged(d device.Device) {
	payload, err := json.Marshal(d)
	if err != nil {
		m.warn("failed to marshal device", err)
		return
	}
	m.enqueue(message{topic: m.topics.Device(uint64(d.ID)), payload: payload, retained: true})
}

// DeviceRemoved clears the retained snapshot of the removed device.
func (m *Mirror) DeviceRemoved(id device.ID) {
	m.enqueue(message{topic: m.topics.Device(uint64(id)), payload: []byte{}, retained: true})
}

// ActivityLogged publishes an activity entry.
func (m *Mirror) ActivityLogged(e activity.Entry) {
	payload, err := json.Marshal(map[string]any{
		"time":    e.Time,
		"message": e.Message,
		"display": e.String(),
	})
	if err != nil {
		m.warn("failed to marshal activity entry", err)
		return
	}
	m.enqueue(message{topic: m.topics.Activity(), payload: payload})
}

func (m *Mirror) enqueue(msg message) {
	select {
	case m.queue <- msg:
	default:
		m.warn("dropping mirror event", ErrQueueFull)
	}
}

func (m *Mirror) warn(msg string, err error) {
	if m.logger != nil {
		m.logger.Warn(msg, "error", err)
	}
}
