package ws

import (
	"context"
	"sync"
	"time"

	"nhooyr.io/websocket"

	"github.com/mcoot/boardbank/internal/model"
)

// Client is one live websocket connection and its outbound queue
type Client struct {
	id          model.ConnectionID
	conn        *websocket.Conn
	send        chan []byte
	ctx         context.Context
	cancel      context.CancelFunc
	closeOnce   sync.Once
	connectedAt time.Time
}

func newClient(ctx context.Context, id model.ConnectionID, conn *websocket.Conn, bufferSize int, now time.Time) *Client {
	ctx, cancel := context.WithCancel(ctx)
	return &Client{
		id:          id,
		conn:        conn,
		send:        make(chan []byte, bufferSize),
		ctx:         ctx,
		cancel:      cancel,
		connectedAt: now,
	}
}

// ID returns the connection identity
func (c *Client) ID() model.ConnectionID {
	return c.id
}

// Done is closed once the client is shutting down
func (c *Client) Done() <-chan struct{} {
	return c.ctx.Done()
}

// enqueue queues a frame without blocking. It reports false when the client
// is closed or its buffer is full.
func (c *Client) enqueue(frame []byte) bool {
	select {
	case <-c.ctx.Done():
		return false
	default:
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// close stops the client's loops and closes the socket in the background,
// so callers holding locks never wait on the close handshake
func (c *Client) close(code websocket.StatusCode, reason string) {
	c.closeOnce.Do(func() {
		c.cancel()
		if c.conn != nil {
			go func() {
				_ = c.conn.Close(code, reason)
			}()
		}
	})
}
