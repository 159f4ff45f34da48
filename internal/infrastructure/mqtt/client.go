package mqtt

import (
	"context"
	"fmt"
	"sync"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/homesim-core/internal/infrastructure/config"
)

// Client is a publish-only broker connection. It announces the simulator on
// the retained status topic and leaves a will so subscribers notice a crash.
//
// Safe for concurrent use.
type Client struct {
	pc       pahomqtt.Client
	clientID string
	qos      byte
	topics   Topics

	mu           sync.RWMutex
	connected    bool
	onDisconnect func(err error)
}

// Logger is the logging surface used by this package.
// *logging.Logger satisfies it.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Connect dials the broker described by cfg and waits for the session.
// Reconnects after that are automatic.
func Connect(cfg config.MQTTConfig) (*Client, error) {
	c := &Client{
		clientID: cfg.Broker.ClientID,
		qos:      byte(cfg.QoS),
		topics:   Topics{Prefix: cfg.TopicPrefix},
	}

	opts := buildClientOptions(cfg)
	opts.SetWill(c.topics.SystemStatus(), string(statusPayload(statusOffline, c.clientID, "unexpected_disconnect")), 1, true)
	opts.SetOnConnectHandler(func(pahomqtt.Client) { c.announce() })
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) { c.lost(err) })

	c.pc = pahomqtt.NewClient(opts)
	if err := wait(c.pc.Connect(), defaultConnectTimeout); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	// The connect handler runs on its own goroutine and may not have fired yet.
	c.setConnected(true)
	return c, nil
}

// Close publishes a graceful offline status and disconnects.
func (c *Client) Close() error {
	if c.pc == nil {
		return nil
	}

	if c.IsConnected() {
		//nolint:errcheck // the broker may already be gone
		wait(c.pc.Publish(c.topics.SystemStatus(), c.qos, true, statusPayload(statusOffline, c.clientID, "graceful_shutdown")), defaultPublishTimeout)
	}
	c.pc.Disconnect(defaultDisconnectQuiesce)
	c.setConnected(false)
	return nil
}

// HealthCheck returns ErrNotConnected while the session is down.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("mqtt health check: %w", err)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

// IsConnected reports whether the session is currently up.
func (c *Client) IsConnected() bool {
	if c.pc == nil {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected && c.pc.IsConnected()
}

// SetOnDisconnect registers fn to run when the connection drops.
func (c *Client) SetOnDisconnect(fn func(err error)) {
	c.mu.Lock()
	c.onDisconnect = fn
	c.mu.Unlock()
}

func (c *Client) setConnected(v bool) {
	c.mu.Lock()
	c.connected = v
	c.mu.Unlock()
}

// announce runs on every (re)connect and replaces the retained will.
func (c *Client) announce() {
	c.setConnected(true)
	c.pc.Publish(c.topics.SystemStatus(), c.qos, true, statusPayload(statusOnline, c.clientID, ""))
}

func (c *Client) lost(err error) {
	c.mu.Lock()
	c.connected = false
	fn := c.onDisconnect
	c.mu.Unlock()

	if fn != nil {
		fn(err)
	}
}
