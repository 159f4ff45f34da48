package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/homesim-core/internal/infrastructure/config"
	"github.com/nerrad567/homesim-core/internal/infrastructure/logging"
)

// Websocket message types.
const (
	WSTypeSubscribe   = "subscribe"
	WSTypeUnsubscribe = "unsubscribe"
	WSTypePing        = "ping"
	WSTypePong        = "pong"
	WSTypeEvent       = "event"
	WSTypeResponse    = "response"
	WSTypeError       = "error"

	wsSendBufferSize = 256

	defaultPingInterval   = 30 * time.Second
	defaultPongTimeout    = 10 * time.Second
	defaultMaxMessageSize = 8192
)

// WSMessage is the envelope for every websocket frame in both directions.
type WSMessage struct {
	Type      string `json:"type"`
	ID        string `json:"id,omitempty"`
	EventType string `json:"event_type,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Payload   any    `json:"payload,omitempty"`
}

// WSSubscribePayload lists the channels of a subscribe or unsubscribe request.
type WSSubscribePayload struct {
	Channels []string `json:"channels"`
}

// inboundMessage defers payload decoding until the type is known.
type inboundMessage struct {
	Type    string          `json:"type"`
	ID      string          `json:"id"`
	Payload json.RawMessage `json:"payload"`
}

// checkOrigin accepts upgrades without an Origin header, from the serving
// host itself, or from an origin allowed by the CORS settings.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if u, err := url.Parse(origin); err == nil && strings.EqualFold(u.Host, r.Host) {
		return true
	}
	return originAllowed(s.cfg.CORS.AllowedOrigins, origin)
}

// wsClient is one connected panel.
type wsClient struct {
	conn   *websocket.Conn
	logger *logging.Logger

	out       chan []byte
	done      chan struct{}
	closeOnce sync.Once

	readWait  time.Duration
	pingEvery time.Duration
	writeWait time.Duration
	maxSize   int64

	mu       sync.RWMutex
	channels map[string]struct{}
}

func newWSClient(conn *websocket.Conn, cfg config.WebSocketConfig, logger *logging.Logger) *wsClient {
	ping := time.Duration(cfg.PingInterval) * time.Second
	if ping <= 0 {
		ping = defaultPingInterval
	}
	pong := time.Duration(cfg.PongTimeout) * time.Second
	if pong <= 0 {
		pong = defaultPongTimeout
	}
	maxSize := int64(cfg.MaxMessageSize)
	if maxSize <= 0 {
		maxSize = defaultMaxMessageSize
	}
	return &wsClient{
		conn:      conn,
		logger:    logger,
		out:       make(chan []byte, wsSendBufferSize),
		done:      make(chan struct{}),
		readWait:  ping + pong,
		pingEvery: ping,
		writeWait: pong,
		maxSize:   maxSize,
		channels:  make(map[string]struct{}),
	}
}

// handleWebSocket upgrades the request and attaches the client to the hub.
// No authentication is performed.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "origin", r.Header.Get("Origin"), "error", err)
		return
	}

	c := newWSClient(conn, s.wsCfg, s.logger)
	s.hub.add(c)

	go c.writeLoop()
	go func() {
		defer s.hub.remove(c)
		c.readLoop()
	}()
}

// shutdown stops both loops. Safe to call more than once.
func (c *wsClient) shutdown() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// enqueue queues data for the write loop. It reports false if the client is
// gone or its buffer is full.
func (c *wsClient) enqueue(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.out <- data:
		return true
	default:
		return false
	}
}

func (c *wsClient) subscribed(channel string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, ok := c.channels[ChannelAll]; ok {
		return true
	}
	_, ok := c.channels[channel]
	return ok
}

func (c *wsClient) readLoop() {
	defer c.shutdown()

	c.conn.SetReadLimit(c.maxSize)
	extend := func() error {
		return c.conn.SetReadDeadline(time.Now().Add(c.readWait))
	}
	//nolint:errcheck // a failed deadline surfaces as a read error
	extend()
	c.conn.SetPongHandler(func(string) error { return extend() })

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read error", "error", err)
			}
			return
		}
		// Browsers may ignore protocol pings, so any frame counts as liveness.
		//nolint:errcheck // a failed deadline surfaces as a read error
		extend()
		c.dispatch(data)
	}
}

func (c *wsClient) writeLoop() {
	ticker := time.NewTicker(c.pingEvery)
	defer func() {
		ticker.Stop()
		c.shutdown()
	}()

	write := func(kind int, data []byte) error {
		//nolint:errcheck // a failed deadline surfaces as a write error
		c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
		return c.conn.WriteMessage(kind, data)
	}

	for {
		select {
		case <-c.done:
			//nolint:errcheck // best-effort close frame
			write(websocket.CloseMessage, nil)
			return
		case data := <-c.out:
			if err := write(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			if err := write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *wsClient) dispatch(data []byte) {
	var msg inboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.reply("", WSTypeError, errorPayload("invalid JSON message"))
		return
	}

	switch msg.Type {
	case WSTypePing:
		c.reply(msg.ID, WSTypePong, nil)
	case WSTypeSubscribe:
		c.updateChannels(msg, true)
	case WSTypeUnsubscribe:
		c.updateChannels(msg, false)
	default:
		c.reply(msg.ID, WSTypeError, errorPayload("unknown message type: "+msg.Type))
	}
}

func (c *wsClient) updateChannels(msg inboundMessage, add bool) {
	var req WSSubscribePayload
	if err := json.Unmarshal(msg.Payload, &req); err != nil || len(req.Channels) == 0 {
		c.reply(msg.ID, WSTypeError, errorPayload("payload must list channels"))
		return
	}

	c.mu.Lock()
	for _, ch := range req.Channels {
		if add {
			c.channels[ch] = struct{}{}
		} else {
			delete(c.channels, ch)
		}
	}
	c.mu.Unlock()

	key := "unsubscribed"
	if add {
		key = "subscribed"
	}
	c.reply(msg.ID, WSTypeResponse, map[string][]string{key: req.Channels})
}

func (c *wsClient) reply(id, msgType string, payload any) {
	data, err := json.Marshal(WSMessage{
		Type:      msgType,
		ID:        id,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   payload,
	})
	if err != nil {
		return
	}
	c.enqueue(data)
}

func errorPayload(message string) map[string]string {
	return map[string]string{"message": message}
}
