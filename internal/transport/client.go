// Pollsync - Real-time Poll Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pollsync

package transport

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/tomtom215/pollsync/internal/logging"
	"github.com/tomtom215/pollsync/internal/metrics"
)

// ErrClosed is returned by Run once the client has been closed.
var ErrClosed = errors.New("transport: client closed")

// State is the connection lifecycle state.
type State int32

const (
	StateClosed State = iota
	StateConnecting
	StateOpen
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Config configures a Client.
type Config struct {
	// URL is the full endpoint, e.g. ws://localhost:8000/ws.
	URL string
	// ReconnectEnabled schedules a new attempt after every close.
	ReconnectEnabled bool
	// ReconnectDelay is the fixed wait before each attempt. There is no backoff.
	ReconnectDelay time.Duration
	// HandshakeTimeout bounds the opening handshake.
	HandshakeTimeout time.Duration
	// WriteTimeout bounds each outbound frame.
	WriteTimeout time.Duration
	// PingInterval enables keep-alive pings when positive. The read deadline
	// is twice the interval and is extended by every pong.
	PingInterval time.Duration
}

// DefaultConfig returns a configuration for url with the standard timings.
func DefaultConfig(url string) Config {
	return Config{
		URL:              url,
		ReconnectEnabled: true,
		ReconnectDelay:   2 * time.Second,
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     10 * time.Second,
		PingInterval:     30 * time.Second,
	}
}

// Client holds one persistent WebSocket connection to the event stream and
// reconnects after a fixed delay whenever it drops.
//
// Inbound frames are delivered to the registered handler one at a time, in
// receipt order, from a single read goroutine. Handlers must not call Close.
type Client struct {
	cfg    Config
	dialer websocket.Dialer
	logger zerolog.Logger

	// Lifecycle state (protected by mu)
	mu      sync.Mutex
	conn    *websocket.Conn
	state   State
	started bool
	closed  bool
	timer   *time.Timer
	cancel  context.CancelFunc
	done    chan struct{}

	// Single writer at a time for data frames
	writeMu sync.Mutex

	// Callbacks (protected by handlerMu)
	handlerMu     sync.RWMutex
	onMessage     func([]byte)
	onStateChange func(State)

	wg sync.WaitGroup
}

// New creates a client. No connection is made until Connect or Run.
func New(cfg Config) *Client {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = 2 * time.Second
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	return &Client{
		cfg: cfg,
		dialer: websocket.Dialer{
			HandshakeTimeout: cfg.HandshakeTimeout,
		},
		logger: logging.WithComponent("transport"),
		state:  StateClosed,
		done:   make(chan struct{}),
	}
}

// OnMessage registers the inbound frame handler, replacing any previous one.
func (c *Client) OnMessage(handler func([]byte)) {
	c.handlerMu.Lock()
	defer c.handlerMu.Unlock()
	c.onMessage = handler
}

// OnStateChange registers an observer for lifecycle transitions.
func (c *Client) OnStateChange(observer func(State)) {
	c.handlerMu.Lock()
	defer c.handlerMu.Unlock()
	c.onStateChange = observer
}

// State returns the current lifecycle state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect starts the connection lifecycle in the background and returns
// immediately. Calling Connect more than once, or after Close, does nothing.
func (c *Client) Connect(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started || c.closed {
		return
	}
	c.started = true

	loopCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(1)
	go c.loop(loopCtx)
}

// Run connects and blocks until ctx is done or the client is closed.
// The client is closed when Run returns.
func (c *Client) Run(ctx context.Context) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrClosed
	}

	c.Connect(ctx)

	select {
	case <-ctx.Done():
		c.Close()
		return ctx.Err()
	case <-c.done:
		return ErrClosed
	}
}

// Send marshals event and writes it as one text frame. When the connection
// is not open the event is dropped silently; nothing is queued. A failed
// write closes the connection, which triggers the reconnect path.
func (c *Client) Send(event any) {
	c.mu.Lock()
	conn := c.conn
	open := c.state == StateOpen
	c.mu.Unlock()

	if !open || conn == nil {
		metrics.WSMessagesDropped.Inc()
		c.logger.Debug().Msg("Dropping outbound event, connection not open")
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		metrics.WSErrors.WithLabelValues("marshal").Inc()
		c.logger.Warn().Err(err).Msg("Failed to encode outbound event")
		return
	}

	c.writeMu.Lock()
	if err := conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout)); err != nil {
		c.logger.Debug().Err(err).Msg("Failed to set write deadline")
	}
	err = conn.WriteMessage(websocket.TextMessage, data)
	c.writeMu.Unlock()

	if err != nil {
		metrics.WSErrors.WithLabelValues("write").Inc()
		c.logger.Warn().Err(err).Msg("Write failed, closing connection")
		_ = conn.Close()
		return
	}
	metrics.WSMessagesSent.Inc()
}

// Close tears the client down: handlers are deregistered first, then any
// pending reconnect is cancelled, then the socket is closed. When Close
// returns no handler will fire again. Close is idempotent.
func (c *Client) Close() {
	c.handlerMu.Lock()
	c.onMessage = nil
	c.onStateChange = nil
	c.handlerMu.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	cancel := c.cancel
	conn := c.conn
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		c.closeConn(conn)
	}

	c.wg.Wait()

	c.mu.Lock()
	c.state = StateClosed
	c.mu.Unlock()
	metrics.WSConnectionState.Set(float64(StateClosed))

	close(c.done)
	c.logger.Info().Msg("Transport closed")
}

// loop drives connect, read, and reconnect until the client is closed.
func (c *Client) loop(ctx context.Context) {
	defer c.wg.Done()

	for {
		c.setState(StateConnecting)

		conn, err := c.dial(ctx)
		if err == nil {
			if !c.attach(conn) {
				c.closeConn(conn)
				return
			}
			c.setState(StateOpen)
			c.readLoop(ctx, conn)
			c.detach(conn)
		} else if ctx.Err() == nil {
			metrics.WSErrors.WithLabelValues("dial").Inc()
			c.logger.Warn().Err(err).Str("url", c.cfg.URL).Msg("Connection attempt failed")
		}

		c.setState(StateClosed)

		if ctx.Err() != nil || !c.cfg.ReconnectEnabled {
			return
		}
		if !c.waitReconnect(ctx) {
			return
		}
		metrics.WSReconnects.Inc()
	}
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	c.logger.Info().Str("url", c.cfg.URL).Msg("Connecting")

	conn, resp, err := c.dialer.DialContext(ctx, c.cfg.URL, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return nil, &DialError{Status: resp.StatusCode, Err: err}
		}
		return nil, &DialError{Err: err}
	}
	return conn, nil
}

// attach publishes conn unless the client was closed while dialing.
func (c *Client) attach(conn *websocket.Conn) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.conn = conn
	return true
}

func (c *Client) detach(conn *websocket.Conn) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.mu.Unlock()
	_ = conn.Close()
}

// waitReconnect arms the reconnect timer and waits for it. It reports false
// when the client was closed first.
func (c *Client) waitReconnect(ctx context.Context) bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	timer := time.NewTimer(c.cfg.ReconnectDelay)
	c.timer = timer
	c.mu.Unlock()

	c.logger.Info().Dur("delay", c.cfg.ReconnectDelay).Msg("Connection lost, reconnecting")

	defer func() {
		c.mu.Lock()
		if c.timer == timer {
			c.timer = nil
		}
		c.mu.Unlock()
	}()

	select {
	case <-timer.C:
		return ctx.Err() == nil
	case <-ctx.Done():
		timer.Stop()
		return false
	}
}

// readLoop delivers frames until the connection fails.
func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) {
	stopPing := make(chan struct{})
	defer close(stopPing)

	if c.cfg.PingInterval > 0 {
		readTimeout := 2 * c.cfg.PingInterval
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(readTimeout))
		})
		c.wg.Add(1)
		go c.pingLoop(conn, stopPing)
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			switch {
			case ctx.Err() != nil:
			case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway):
				c.logger.Info().Msg("Connection closed by server")
			default:
				metrics.WSErrors.WithLabelValues("read").Inc()
				c.logger.Warn().Err(err).Msg("Read error")
			}
			return
		}

		metrics.WSMessagesReceived.Inc()

		c.handlerMu.RLock()
		handler := c.onMessage
		c.handlerMu.RUnlock()

		if handler != nil {
			handler(data)
		}
	}
}

// pingLoop sends keep-alive pings until stop is closed or a ping fails.
func (c *Client) pingLoop(conn *websocket.Conn, stop <-chan struct{}) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.cfg.WriteTimeout)); err != nil {
				c.logger.Debug().Err(err).Msg("Keep-alive ping failed")
				_ = conn.Close()
				return
			}
		}
	}
}

// closeConn sends a close frame and closes the socket.
func (c *Client) closeConn(conn *websocket.Conn) {
	if err := conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(1*time.Second),
	); err != nil {
		c.logger.Debug().Err(err).Msg("Failed to send close message")
	}
	if err := conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Failed to close connection")
	}
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	if c.state == s {
		c.mu.Unlock()
		return
	}
	c.state = s
	c.mu.Unlock()

	metrics.WSConnectionState.Set(float64(s))
	c.logger.Debug().Str("state", s.String()).Msg("State change")

	c.handlerMu.RLock()
	observer := c.onStateChange
	c.handlerMu.RUnlock()

	if observer != nil {
		observer(s)
	}
}
