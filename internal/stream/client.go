package stream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/muurk/midnightbrew/internal/logging"
	"github.com/muurk/midnightbrew/internal/version"
	"go.uber.org/zap"
)

const (
	// DefaultDialTimeout bounds the WebSocket handshake
	DefaultDialTimeout = 5 * time.Second

	writeWait = 10 * time.Second
)

// Client is a connection to the testimonial stream.
type Client struct {
	conn     *websocket.Conn
	messages chan Message
	done     chan struct{}

	writeMu sync.Mutex
	closeMu sync.Once
}

// WebSocketURL converts an http(s) base URL to the stream URL.
func WebSocketURL(baseURL string, jump bool) (string, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid server URL %q: %w", baseURL, err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported URL scheme %q", u.Scheme)
	}
	u.Path += TestimonialsPath
	if jump {
		u.RawQuery = "jump=true"
	}
	return u.String(), nil
}

// Dial connects to the stream of the server at baseURL. Messages are
// delivered on Messages until the connection ends.
func Dial(ctx context.Context, baseURL string, jump bool) (*Client, error) {
	wsURL, err := WebSocketURL(baseURL, jump)
	if err != nil {
		return nil, err
	}

	dialer := websocket.Dialer{HandshakeTimeout: DefaultDialTimeout}
	header := http.Header{}
	header.Set("User-Agent", version.UserAgent(version.Storefront))

	conn, resp, err := dialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("failed to connect to %s: %w (HTTP %d)", wsURL, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("failed to connect to %s: %w", wsURL, err)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	logging.Debug("Connected to testimonial stream", zap.String("url", wsURL))

	c := &Client{
		conn:     conn,
		messages: make(chan Message, 16),
		done:     make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Messages returns the channel of server messages. It is closed when the
// connection ends.
func (c *Client) Messages() <-chan Message {
	return c.messages
}

func (c *Client) readLoop() {
	defer close(c.messages)
	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logging.Debug("Testimonial stream closed", zap.Error(err))
			}
			return
		}
		select {
		case c.messages <- msg:
		case <-c.done:
			return
		}
	}
}

// Send writes a command to the server.
func (c *Client) Send(cmd Command) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(cmd); err != nil {
		return fmt.Errorf("failed to send %s command: %w", cmd.Command, err)
	}
	return nil
}

// Close sends a close frame and releases the connection.
func (c *Client) Close() error {
	var err error
	c.closeMu.Do(func() {
		close(c.done)
		c.writeMu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		c.writeMu.Unlock()
		err = c.conn.Close()
	})
	return err
}
