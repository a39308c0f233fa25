// Package guiws fans the GUI service's throttled price updates out to
// websocket-connected dashboards.
//
// Grounded on _examples/ndrandal-feed-simulator/internal/session
// (client.go/manager.go/handler.go's registration-map + buffered
// send-channel + ping-keepalive shape), simplified from per-client
// symbol subscriptions and dual JSON/binary encoding (this dashboard has
// one feed and one wire format: JSON) down to broadcast-to-everyone.
package guiws

import (
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
)

// Client represents one connected dashboard websocket.
type Client struct {
	ID   uint64
	Conn *websocket.Conn

	sendCh    chan []byte
	done      chan struct{}
	closeOnce sync.Once

	Dropped uint64
}

var clientIDCounter uint64

// NewClient wraps conn with a buffered send channel of the given size.
func NewClient(conn *websocket.Conn, bufferSize int) *Client {
	return &Client{
		ID:     atomic.AddUint64(&clientIDCounter, 1),
		Conn:   conn,
		sendCh: make(chan []byte, bufferSize),
		done:   make(chan struct{}),
	}
}

// Send enqueues data for the write pump. Returns false and counts a drop
// when the client's buffer is full.
func (c *Client) Send(data []byte) bool {
	select {
	case c.sendCh <- data:
		return true
	default:
		atomic.AddUint64(&c.Dropped, 1)
		return false
	}
}

// SendCh returns the send channel for the write pump.
func (c *Client) SendCh() <-chan []byte {
	return c.sendCh
}

// Done returns a channel closed when the client disconnects.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Close terminates the client connection, idempotently.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.Conn.Close()
	})
}
