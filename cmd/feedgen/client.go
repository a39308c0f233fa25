package main

import (
	"bufio"
	"context"
	"log"
	"net"
	"sync"
	"time"
)

// feedClient maintains a single persistent outbound connection to one of the
// pipeline's inbound feed ports and redials once a second on disconnect,
// mirroring the single-client-at-a-time contract described in
// internal/connector.Inbound's doc comment from the other side of the wire.
type feedClient struct {
	name string
	addr string

	mu sync.Mutex
	w  *bufio.Writer
	c  net.Conn
}

// dialFeedClient starts a feedClient and its background redial loop. The
// first dial happens synchronously so early Send calls don't race startup.
func dialFeedClient(ctx context.Context, name, addr string) *feedClient {
	fc := &feedClient{name: name, addr: addr}
	fc.connect(ctx)
	go fc.redialLoop(ctx)
	return fc
}

func (fc *feedClient) redialLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		fc.mu.Lock()
		dead := fc.c == nil
		fc.mu.Unlock()
		if dead {
			fc.connect(ctx)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Second):
		}
	}
}

func (fc *feedClient) connect(ctx context.Context) {
	d := net.Dialer{Timeout: 3 * time.Second}
	conn, err := d.DialContext(ctx, "tcp", fc.addr)
	if err != nil {
		log.Printf("feedgen %s: dial %s: %v", fc.name, fc.addr, err)
		return
	}
	log.Printf("feedgen %s: connected to %s", fc.name, fc.addr)
	fc.mu.Lock()
	fc.c = conn
	fc.w = bufio.NewWriter(conn)
	fc.mu.Unlock()
}

// Send writes line plus a trailing newline. A write failure drops the
// connection so the redial loop reconnects on its next pass; the line itself
// is not retried, matching the pipeline's no-buffering wire contract.
func (fc *feedClient) Send(line string) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	if fc.w == nil {
		return
	}
	if _, err := fc.w.WriteString(line + "\n"); err != nil {
		fc.drop()
		return
	}
	if err := fc.w.Flush(); err != nil {
		fc.drop()
	}
}

func (fc *feedClient) drop() {
	log.Printf("feedgen %s: write error, will redial", fc.name)
	fc.c.Close()
	fc.c = nil
	fc.w = nil
}

func (fc *feedClient) Close() {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	if fc.c != nil {
		fc.c.Close()
	}
}
