package ws

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	apperrors "github.com/aaronzipp/wargame-turns/internal/errors"
	"github.com/aaronzipp/wargame-turns/internal/models"
	"github.com/aaronzipp/wargame-turns/internal/protocol"
)

// EventHandler receives decoded inbound events.
type EventHandler func(mode models.Mode, ev protocol.Event) error

// Client is the transport of a session following a remote authority.
type Client struct {
	url    string
	mode   models.Mode
	logger *zap.Logger

	mu      sync.Mutex
	conn    *websocket.Conn
	handler EventHandler
	closed  bool
	done    chan struct{}
}

// NewClient prepares a client for url. Nothing is dialed until Init.
func NewClient(url string, mode models.Mode, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{url: url, mode: mode, logger: logger, done: make(chan struct{})}
}

// Handle sets the inbound event handler.
func (c *Client) Handle(fn EventHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = fn
}

// Init dials the authority and starts reading events.
func (c *Client) Init(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeTransport, "dial "+c.url, err)
	}
	conn.SetReadLimit(maxMessageSize)

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	go c.readPump(conn)
	go c.pingLoop(conn)
	c.logger.Info("connected to authority", zap.String("url", c.url))
	return nil
}

// Done is closed when the connection ends.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Send implements syncadapter.Transport.
func (c *Client) Send(ctx context.Context, req protocol.Request) error {
	data, err := protocol.EncodeRequest(c.mode, req)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil || c.closed {
		return apperrors.New(apperrors.CodeTransport, "not connected")
	}
	deadline := time.Now().Add(writeWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = c.conn.SetWriteDeadline(deadline)
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return apperrors.Wrap(apperrors.CodeTransport, "write "+req.Kind(), err)
	}
	return nil
}

func (c *Client) readPump(conn *websocket.Conn) {
	defer c.Dispose()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("authority connection lost", zap.Error(err))
			}
			return
		}
		mode, ev, err := protocol.DecodeEvent(data)
		if err != nil {
			c.logger.Debug("ignoring undecodable frame", zap.Error(err))
			continue
		}

		c.mu.Lock()
		handler := c.handler
		c.mu.Unlock()
		if handler == nil {
			continue
		}
		if err := handler(mode, ev); err != nil {
			c.logger.Debug("event not applied", zap.String("kind", ev.Kind()), zap.Error(err))
		}
	}
}

func (c *Client) pingLoop(conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.mu.Lock()
			err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			c.mu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

// Dispose closes the connection. It is safe to call more than once.
func (c *Client) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
	if c.conn != nil {
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		_ = c.conn.Close()
	}
}
