// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/bureau-foundation/fwconsole/lib/clock"
	"github.com/bureau-foundation/fwconsole/lib/codec"
	"github.com/bureau-foundation/fwconsole/lib/netutil"
	"github.com/bureau-foundation/fwconsole/protocol"
)

// MaxFrameSize bounds one inbound websocket message. Raw log exports
// and rule sets arrive as single frames.
const MaxFrameSize int64 = 16 << 20

// eventBuffer is the capacity of the Events channel.
const eventBuffer = 64

// errSessionReset ends a connection whose handshake raced a
// ResetSession and so carried the previous session's cookies.
var errSessionReset = errors.New("session reset during handshake")

// Config holds Client parameters. Zero durations take the defaults
// noted on each field.
type Config struct {
	// URL is the ws:// or wss:// endpoint.
	URL string

	// Codec is the preferred framing, offered first. Defaults to
	// protocol.JSON.
	Codec protocol.Codec

	// Header is added to the handshake request.
	Header http.Header

	// DialTimeout bounds each handshake, and each write. Default 10s.
	DialTimeout time.Duration

	// KeepaliveInterval is the period between pings. Default 25s.
	KeepaliveInterval time.Duration

	// ReconnectMin and ReconnectMax bound the reconnect backoff, which
	// doubles after each failed attempt. Defaults 500ms and 10s.
	ReconnectMin time.Duration
	ReconnectMax time.Duration

	Clock  clock.Clock
	Logger *slog.Logger
}

// Client is a reconnecting websocket client for the event protocol.
type Client struct {
	url       string
	preferred protocol.Codec
	header    http.Header
	timing    timing
	clock     clock.Clock
	logger    *slog.Logger

	events chan Event
	// wake interrupts a backoff wait after ResetSession.
	wake chan struct{}

	mu    sync.Mutex
	conn  *websocket.Conn
	codec protocol.Codec
	jar   http.CookieJar
	// sessionConnected is true once a connection of the current
	// server session has been established.
	sessionConnected bool
	// resetting marks a connection dropped by ResetSession, whose end
	// is not reported as a disconnect.
	resetting bool
}

type timing struct {
	dial, keepalive, reconnectMin, reconnectMax time.Duration
}

// New returns a Client. Nothing is dialed until Run.
func New(config Config) (*Client, error) {
	if config.URL == "" {
		return nil, errors.New("transport: URL is required")
	}
	if config.Clock == nil {
		return nil, errors.New("transport: Clock is required")
	}
	if config.Logger == nil {
		return nil, errors.New("transport: Logger is required")
	}
	preferred := config.Codec
	if preferred == nil {
		preferred = protocol.JSON
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("transport: creating cookie jar: %w", err)
	}

	t := timing{
		dial:         orDefault(config.DialTimeout, 10*time.Second),
		keepalive:    orDefault(config.KeepaliveInterval, 25*time.Second),
		reconnectMin: orDefault(config.ReconnectMin, 500*time.Millisecond),
		reconnectMax: orDefault(config.ReconnectMax, 10*time.Second),
	}
	t.reconnectMax = max(t.reconnectMax, t.reconnectMin)

	return &Client{
		url:       config.URL,
		preferred: preferred,
		header:    config.Header,
		timing:    t,
		clock:     config.Clock,
		logger:    config.Logger,
		events:    make(chan Event, eventBuffer),
		wake:      make(chan struct{}, 1),
		jar:       jar,
	}, nil
}

func orDefault(value, fallback time.Duration) time.Duration {
	if value > 0 {
		return value
	}
	return fallback
}

// Events delivers lifecycle changes and inbound envelopes in order.
// The channel is not closed when Run returns.
func (c *Client) Events() <-chan Event {
	return c.events
}

// IsConnected reports whether a connection is live.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Run connects and keeps reconnecting until ctx is cancelled. It
// returns nil on cancellation.
func (c *Client) Run(ctx context.Context) error {
	backoff := c.timing.reconnectMin
	for {
		established, err := c.runConnection(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if errors.Is(err, errSessionReset) || c.takeReset() {
			backoff = c.timing.reconnectMin
			continue
		}
		if established {
			backoff = c.timing.reconnectMin
		}

		level := slog.LevelWarn
		if established && netutil.IsExpectedCloseError(err) {
			level = slog.LevelInfo
		}
		c.logger.Log(ctx, level, "simulator connection ended",
			"url", c.url,
			"error", err,
			"backoff", backoff,
		)

		select {
		case <-ctx.Done():
			return nil
		case <-c.wake:
			backoff = c.timing.reconnectMin
			continue
		case <-c.clock.After(backoff):
		}
		backoff = min(backoff*2, c.timing.reconnectMax)
	}
}

// runConnection dials once and serves the connection until it ends.
// established reports whether the handshake succeeded.
func (c *Client) runConnection(ctx context.Context) (established bool, err error) {
	c.mu.Lock()
	jar := c.jar
	c.mu.Unlock()

	dialCtx, cancelDial := context.WithTimeout(ctx, c.timing.dial)
	conn, response, err := websocket.Dial(dialCtx, c.url, &websocket.DialOptions{
		HTTPClient:   &http.Client{Jar: jar},
		HTTPHeader:   c.header,
		Subprotocols: protocol.Subprotocols(c.preferred),
	})
	cancelDial()
	if err != nil {
		if response != nil && response.Body != nil {
			body := netutil.ErrorBody(response.Body)
			return false, fmt.Errorf("dialing %s: HTTP %d %s: %w", c.url, response.StatusCode, body, err)
		}
		return false, fmt.Errorf("dialing %s: %w", c.url, err)
	}

	selected, err := protocol.CodecForSubprotocol(conn.Subprotocol())
	if err != nil {
		conn.Close(websocket.StatusProtocolError, "unsupported subprotocol")
		return false, err
	}
	conn.SetReadLimit(MaxFrameSize)

	connCtx, cancelConn := context.WithCancel(ctx)
	defer cancelConn()

	c.mu.Lock()
	if c.jar != jar {
		c.mu.Unlock()
		conn.CloseNow()
		return false, errSessionReset
	}
	reconnect := c.sessionConnected
	c.sessionConnected = true
	c.conn = conn
	c.codec = selected
	c.mu.Unlock()

	c.logger.Info("connected to simulator",
		"url", c.url,
		"subprotocol", conn.Subprotocol(),
		"codec", selected.Name(),
		"reconnect", reconnect,
	)
	c.emit(ctx, Connected{Reconnect: reconnect, Subprotocol: conn.Subprotocol(), Codec: selected.Name()})

	go c.keepalive(connCtx, conn)

	readErr := c.readFrames(connCtx, conn, selected)

	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	reset := c.resetting
	c.mu.Unlock()
	conn.CloseNow()

	if ctx.Err() == nil && !reset {
		c.emit(ctx, Disconnected{Err: readErr})
	}
	return true, readErr
}

// readFrames decodes frames until the connection fails. Undecodable
// frames are logged and skipped.
func (c *Client) readFrames(ctx context.Context, conn *websocket.Conn, selected protocol.Codec) error {
	for {
		_, frame, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		envelope, err := selected.Decode(frame)
		if err != nil {
			attrs := []any{"codec", selected.Name(), "bytes", len(frame), "error", err}
			if selected.Binary() {
				if diagnostic, diagErr := codec.Diagnose(frame); diagErr == nil {
					attrs = append(attrs, "diagnostic", diagnostic)
				}
			}
			c.logger.Warn("dropping undecodable frame", attrs...)
			continue
		}
		if !c.emit(ctx, Received{Envelope: envelope}) {
			return ctx.Err()
		}
	}
}

// keepalive pings until ctx ends or a ping fails. A failed ping closes
// the connection, which ends readFrames.
func (c *Client) keepalive(ctx context.Context, conn *websocket.Conn) {
	ticker := c.clock.NewTicker(c.timing.keepalive)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, c.timing.keepalive)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				if ctx.Err() == nil {
					c.logger.Warn("keepalive ping failed", "url", c.url, "error", err)
				}
				conn.CloseNow()
				return
			}
		}
	}
}

func (c *Client) emit(ctx context.Context, event Event) bool {
	select {
	case c.events <- event:
		return true
	case <-ctx.Done():
		return false
	}
}

// Send writes message on the live connection. It returns
// protocol.ErrDisconnected, without queueing, when there is none.
func (c *Client) Send(ctx context.Context, message protocol.Message) error {
	c.mu.Lock()
	conn, selected := c.conn, c.codec
	c.mu.Unlock()
	if conn == nil {
		return protocol.ErrDisconnected
	}

	frame, err := selected.Encode(message)
	if err != nil {
		return err
	}
	messageType := websocket.MessageText
	if selected.Binary() {
		messageType = websocket.MessageBinary
	}

	writeCtx, cancel := context.WithTimeout(ctx, c.timing.dial)
	defer cancel()
	if err := conn.Write(writeCtx, messageType, frame); err != nil {
		return fmt.Errorf("sending %s: %w", message.Event, err)
	}
	c.logger.Debug("sent event", "event", message.Event, "bytes", len(frame))
	return nil
}

// ResetSession discards the session cookies and drops the live
// connection without reporting a disconnect. The next connection,
// made immediately, starts a new server session and is reported with
// Reconnect false.
func (c *Client) ResetSession() error {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return fmt.Errorf("transport: creating cookie jar: %w", err)
	}

	c.mu.Lock()
	c.jar = jar
	c.sessionConnected = false
	conn := c.conn
	if conn != nil {
		c.resetting = true
		c.conn = nil
	}
	c.mu.Unlock()

	if conn != nil {
		// The close handshake waits on the server; the caller is the
		// event loop and must not.
		go conn.Close(websocket.StatusNormalClosure, "session reset")
		return nil
	}
	select {
	case c.wake <- struct{}{}:
	default:
	}
	return nil
}

// takeReset reports and clears a pending reset.
func (c *Client) takeReset() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	reset := c.resetting
	c.resetting = false
	return reset
}
