package binance

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WSClient handles the combined-stream WebSocket connection and message routing.
type WSClient struct {
	url            string
	streams        []string
	handler        func([]byte)
	readTimeout    time.Duration
	reconnectDelay time.Duration
	dialer         *websocket.Dialer
	logger         *zap.Logger

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewWSClient creates a client subscribing to the given stream names
// (e.g. "btcbrl@miniTicker") on a combined-stream endpoint.
func NewWSClient(url string, streams []string, logger *zap.Logger) *WSClient {
	return &WSClient{
		url:            url,
		streams:        streams,
		readTimeout:    60 * time.Second,
		reconnectDelay: 3 * time.Second,
		dialer:         websocket.DefaultDialer,
		logger:         logger,
	}
}

// SetMessageHandler sets the function to handle incoming messages.
func (c *WSClient) SetMessageHandler(h func([]byte)) {
	c.handler = h
}

// SetTimeouts overrides the read deadline and the delay between reconnect attempts.
func (c *WSClient) SetTimeouts(read, reconnect time.Duration) {
	if read > 0 {
		c.readTimeout = read
	}
	if reconnect > 0 {
		c.reconnectDelay = reconnect
	}
}

// Connect dials the endpoint and subscribes to the configured streams.
// It does not start the listener.
func (c *WSClient) Connect(ctx context.Context) error {
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	sub := SubscribeRequest{Method: "SUBSCRIBE", Params: c.streams, ID: 1}
	if err := conn.WriteJSON(sub); err != nil {
		_ = conn.Close()
		return fmt.Errorf("websocket subscribe: %w", err)
	}

	c.mu.Lock()
	old := c.conn
	c.conn = conn
	c.mu.Unlock()
	if old != nil {
		_ = old.Close()
	}

	// Run's cancel hook may have fired before conn was stored
	if err := ctx.Err(); err != nil {
		_ = c.Close()
		return err
	}

	c.logger.Info("websocket connected", zap.String("url", c.url), zap.Int("streams", len(c.streams)))
	return nil
}

// Run connects and dispatches messages until ctx is cancelled, reconnecting
// and resubscribing whenever the connection drops.
func (c *WSClient) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { _ = c.Close() })
	defer stop()

	for {
		if err := c.Connect(ctx); err != nil {
			c.logger.Warn("websocket connect failed", zap.Error(err))
		} else {
			err := c.listen()
			if ctx.Err() == nil {
				c.logger.Warn("websocket read error, reconnecting", zap.Error(err))
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.reconnectDelay):
		}
	}
}

func (c *WSClient) listen() error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return errors.New("websocket not connected")
	}

	for {
		_ = conn.SetReadDeadline(time.Now().Add(c.readTimeout))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if c.handler != nil {
			c.handler(msg)
		}
	}
}

// Close sends a close frame and closes the current connection.
func (c *WSClient) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn == nil {
		return nil
	}
	_ = conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	return conn.Close()
}
