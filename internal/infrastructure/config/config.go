package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the home device simulator.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Site      SiteConfig      `yaml:"site"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	Logging   LoggingConfig   `yaml:"logging"`
	Activity  ActivityConfig  `yaml:"activity"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Panel     PanelConfig     `yaml:"panel"`
	Devices   []SeedDevice    `yaml:"devices"`
}

// SiteConfig contains site-specific information.
type SiteConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// ActivityConfig controls the in-memory activity log.
type ActivityConfig struct {
	// Capacity is the number of entries kept, newest first.
	Capacity int `yaml:"capacity"`
}

// MQTTConfig contains settings for the optional activity mirror.
// When disabled no broker connection is attempted.
type MQTTConfig struct {
	Enabled     bool             `yaml:"enabled"`
	Broker      MQTTBrokerConfig `yaml:"broker"`
	Auth        MQTTAuthConfig   `yaml:"auth"`
	QoS         int              `yaml:"qos"`
	TopicPrefix string           `yaml:"topic_prefix"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// InfluxDBConfig contains settings for the optional telemetry recorder.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// PanelConfig controls the browser panel.
type PanelConfig struct {
	// Dir serves panel assets from disk instead of the embedded copy when set.
	Dir string `yaml:"dir"`
}

// SeedDevice describes a device created at startup so the demo is not empty.
type SeedDevice struct {
	Name         string `yaml:"name"`
	Type         string `yaml:"type"`
	Connectivity string `yaml:"connectivity"`
}

// Load builds the configuration from defaults, the YAML file at path and
// HOMESIM_* environment variables, in that order, then validates it.
// A missing file is reported with an error wrapping fs.ErrNotExist.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return finish(cfg)
}

// Default is Load without a file.
func Default() (*Config, error) {
	return finish(defaultConfig())
}

func finish(cfg *Config) (*Config, error) {
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			ID:   "home-001",
			Name: "Demo Home",
		},
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Activity: ActivityConfig{
			Capacity: 50,
		},
		MQTT: MQTTConfig{
			Enabled: false,
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "homesim",
			},
			QoS:         1,
			TopicPrefix: "homesim",
		},
		InfluxDB: InfluxDBConfig{
			Enabled:       false,
			URL:           "http://localhost:8086",
			Org:           "homesim",
			Bucket:        "homesim",
			BatchSize:     100,
			FlushInterval: 10,
		},
	}
}

// envOverride binds one environment variable to a config field.
// Values that fail to parse are ignored.
type envOverride struct {
	name  string
	apply func(cfg *Config, v string)
}

var envOverrides = []envOverride{
	{"HOMESIM_API_HOST", func(c *Config, v string) { c.API.Host = v }},
	{"HOMESIM_API_PORT", func(c *Config, v string) { setInt(&c.API.Port, v) }},
	{"HOMESIM_LOG_LEVEL", func(c *Config, v string) { c.Logging.Level = v }},
	{"HOMESIM_MQTT_ENABLED", func(c *Config, v string) { setBool(&c.MQTT.Enabled, v) }},
	{"HOMESIM_MQTT_HOST", func(c *Config, v string) { c.MQTT.Broker.Host = v }},
	{"HOMESIM_MQTT_USERNAME", func(c *Config, v string) { c.MQTT.Auth.Username = v }},
	{"HOMESIM_MQTT_PASSWORD", func(c *Config, v string) { c.MQTT.Auth.Password = v }},
	{"HOMESIM_INFLUXDB_ENABLED", func(c *Config, v string) { setBool(&c.InfluxDB.Enabled, v) }},
	{"HOMESIM_INFLUXDB_URL", func(c *Config, v string) { c.InfluxDB.URL = v }},
	{"HOMESIM_INFLUXDB_TOKEN", func(c *Config, v string) { c.InfluxDB.Token = v }},
}

func applyEnvOverrides(cfg *Config) {
	for _, o := range envOverrides {
		if v := os.Getenv(o.name); v != "" {
			o.apply(cfg, v)
		}
	}
}

func setInt(dst *int, v string) {
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}

func setBool(dst *bool, v string) {
	if b, err := strconv.ParseBool(v); err == nil {
		*dst = b
	}
}

// Validate reports every problem found, joined into one error.
func (c *Config) Validate() error {
	var errs []string

	if c.Site.ID == "" {
		errs = append(errs, "site.id is required")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if c.WebSocket.Path != "" && !strings.HasPrefix(c.WebSocket.Path, "/") {
		errs = append(errs, "websocket.path must start with /")
	}
	if c.WebSocket.PingInterval < 1 {
		errs = append(errs, "websocket.ping_interval must be at least 1")
	}
	if c.WebSocket.PongTimeout < 1 {
		errs = append(errs, "websocket.pong_timeout must be at least 1")
	}
	if c.WebSocket.MaxMessageSize < 1 {
		errs = append(errs, "websocket.max_message_size must be at least 1")
	}

	if c.Activity.Capacity < 1 {
		errs = append(errs, "activity.capacity must be at least 1")
	}

	if c.MQTT.Enabled {
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			errs = append(errs, "mqtt.qos must be 0, 1, or 2")
		}
		if c.MQTT.Broker.Host == "" {
			errs = append(errs, "mqtt.broker.host is required when mqtt is enabled")
		}
	}

	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required when influxdb is enabled")
		}
		if c.InfluxDB.Org == "" || c.InfluxDB.Bucket == "" {
			errs = append(errs, "influxdb.org and influxdb.bucket are required when influxdb is enabled")
		}
	}

	for i, d := range c.Devices {
		if strings.TrimSpace(d.Name) == "" {
			errs = append(errs, fmt.Sprintf("devices[%d].name is required", i))
		}
		switch strings.ToLower(d.Connectivity) {
		case "", "online", "offline":
		default:
			errs = append(errs, fmt.Sprintf("devices[%d].connectivity must be online or offline", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// ReadTimeout returns Read as a Duration.
func (t APITimeoutConfig) ReadTimeout() time.Duration {
	return time.Duration(t.Read) * time.Second
}

// WriteTimeout returns Write as a Duration.
func (t APITimeoutConfig) WriteTimeout() time.Duration {
	return time.Duration(t.Write) * time.Second
}

// IdleTimeout returns Idle as a Duration.
func (t APITimeoutConfig) IdleTimeout() time.Duration {
	return time.Duration(t.Idle) * time.Second
}
