package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/homesim-core/internal/activity"
	"github.com/nerrad567/homesim-core/internal/device"
	"github.com/nerrad567/homesim-core/internal/infrastructure/config"
)

// testConfig returns a valid MQTT configuration for testing.
func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Enabled: true,
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "homesim-test",
		},
		QoS:         1,
		TopicPrefix: "homesim",
	}
}

// fakePublisher records publishes for assertions.
type fakePublisher struct {
	mu       sync.Mutex
	messages []message
	err      error
}

func (f *fakePublisher) Publish(topic string, payload []byte, _ byte, retained bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message{topic: topic, payload: payload, retained: retained})
	return f.err
}

func (f *fakePublisher) snapshot() []message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]message, len(f.messages))
	copy(out, f.messages)
	return out
}

// =============================================================================
// Topic Tests
// =============================================================================

func TestTopics(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{name: "device", got: Topics{Prefix: "home"}.Device(3), want: "home/devices/3"},
		{name: "all devices", got: Topics{Prefix: "home"}.AllDevices(), want: "home/devices/+"},
		{name: "activity", got: Topics{Prefix: "home"}.Activity(), want: "home/activity"},
		{name: "status", got: Topics{Prefix: "home"}.SystemStatus(), want: "home/system/status"},
		{name: "default prefix", got: Topics{}.Activity(), want: "homesim/activity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

// =============================================================================
// Option Tests
// =============================================================================

func TestBuildClientOptions(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.Username = "sim"
	cfg.Auth.Password = "secret"

	opts := buildClientOptions(cfg)

	if len(opts.Servers) != 1 || opts.Servers[0].String() != "tcp://127.0.0.1:1883" {
		t.Errorf("Servers = %v, want [tcp://127.0.0.1:1883]", opts.Servers)
	}
	if opts.ClientID != "homesim-test" {
		t.Errorf("ClientID = %q, want %q", opts.ClientID, "homesim-test")
	}
	if opts.Username != "sim" {
		t.Errorf("Username = %q, want %q", opts.Username, "sim")
	}
	if !opts.AutoReconnect {
		t.Error("AutoReconnect = false, want true")
	}
}

func TestBuildClientOptions_TLS(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.TLS = true

	opts := buildClientOptions(cfg)

	if opts.Servers[0].Scheme != "ssl" {
		t.Errorf("scheme = %q, want ssl", opts.Servers[0].Scheme)
	}
	if opts.TLSConfig == nil || opts.TLSConfig.MinVersion != tlsMinVersion {
		t.Error("expected TLS config with minimum version set")
	}
}

func TestStatusPayload(t *testing.T) {
	tests := []struct {
		status, reason string
	}{
		{status: statusOnline},
		{status: statusOffline, reason: "graceful_shutdown"},
	}

	for _, tt := range tests {
		var decoded statusMessage
		if err := json.Unmarshal(statusPayload(tt.status, "homesim", tt.reason), &decoded); err != nil {
			t.Fatalf("%s payload is not JSON: %v", tt.status, err)
		}
		if decoded.Status != tt.status || decoded.ClientID != "homesim" || decoded.Reason != tt.reason {
			t.Errorf("decoded = %+v", decoded)
		}
		if _, err := time.Parse(time.RFC3339, decoded.Timestamp); err != nil {
			t.Errorf("timestamp %q: %v", decoded.Timestamp, err)
		}
	}
}

// =============================================================================
// Publish Validation Tests
// =============================================================================

func TestPublish_Validation(t *testing.T) {
	c := &Client{}

	tests := []struct {
		name    string
		topic   string
		payload []byte
		qos     byte
		want    error
	}{
		{name: "empty topic", topic: "", qos: 1, want: ErrInvalidTopic},
		{name: "bad qos", topic: "homesim/activity", qos: 3, want: ErrInvalidQoS},
		{name: "oversized", topic: "homesim/activity", payload: make([]byte, maxPayloadSize+1), want: ErrPublishFailed},
		{name: "not connected", topic: "homesim/activity", qos: 1, want: ErrNotConnected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Publish(tt.topic, tt.payload, tt.qos, false)
			if !errors.Is(err, tt.want) {
				t.Errorf("Publish() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestClient_HealthCheckDisconnected(t *testing.T) {
	c := &Client{}
	if err := c.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close() on unconnected client error = %v", err)
	}
}

// =============================================================================
// Mirror Tests
// =============================================================================

func waitForMessages(t *testing.T, pub *fakePublisher, n int) []message {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if msgs := pub.snapshot(); len(msgs) >= n {
			return msgs
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d messages, got %d", n, len(pub.snapshot()))
	return nil
}

func TestMirror_PublishesRegistryChanges(t *testing.T) {
	pub := &fakePublisher{}
	mirror := NewMirror(pub, Topics{Prefix: "homesim"}, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go mirror.Run(ctx) //nolint:errcheck // returns nil on cancel

	registry := device.NewRegistry(activity.NewLog(activity.DefaultCapacity))
	registry.AddNotifier(mirror)

	lamp := registry.AddDevice("Lamp", device.DeviceTypeLight, device.ConnectivityOnline)
	registry.RemoveDevice(lamp.ID)

	msgs := waitForMessages(t, pub, 4)

	if msgs[0].topic != "homesim/devices/1" || !msgs[0].retained {
		t.Errorf("first message = %s retained=%v, want retained homesim/devices/1", msgs[0].topic, msgs[0].retained)
	}
	var snapshot device.Device
	if err := json.Unmarshal(msgs[0].payload, &snapshot); err != nil {
		t.Fatalf("device payload is not JSON: %v", err)
	}
	if snapshot.Name != "Lamp" {
		t.Errorf("snapshot.Name = %q, want Lamp", snapshot.Name)
	}

	if msgs[1].topic != "homesim/activity" || msgs[1].retained {
		t.Errorf("second message = %s retained=%v, want non-retained activity", msgs[1].topic, msgs[1].retained)
	}
	if !strings.Contains(string(msgs[1].payload), "Added new light: Lamp (online)") {
		t.Errorf("activity payload = %s", msgs[1].payload)
	}

	if msgs[2].topic != "homesim/devices/1" || len(msgs[2].payload) != 0 || !msgs[2].retained {
		t.Errorf("removal message = %s %q, want empty retained payload", msgs[2].topic, msgs[2].payload)
	}
}

func TestMirror_DropsWhenQueueFull(t *testing.T) {
	pub := &fakePublisher{}
	mirror := NewMirror(pub, Topics{}, 0)

	for i := 0; i < mirrorQueueSize+10; i++ {
		mirror.DeviceRemoved(device.ID(i + 1))
	}

	if got := len(mirror.queue); got != mirrorQueueSize {
		t.Errorf("queue length = %d, want %d", got, mirrorQueueSize)
	}
}
