package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/slatedeck/slate/pkg/idx"
)

const (
	// sendBuffer bounds the per-connection outbound queue. A full buffer
	// means a slow consumer; frames to it are dropped, not blocked on.
	sendBuffer = 256

	writeTimeout = 10 * time.Second
)

// Conn is one remote's session. The id, not the socket, is the connection's
// identity everywhere else in the package. The mutable session state
// (version, auth, active profile, lastPong) is guarded by the Registry's
// mutex, never touched directly.
type Conn struct {
	id   idx.ID
	sock *websocket.Conn

	send      chan Envelope
	closed    chan struct{}
	closeOnce sync.Once

	// Guarded by Registry.mu.
	clientVersion   string
	authenticated   bool
	activeProfileID string
	connectedAt     time.Time
	lastPong        time.Time
}

// newConn wraps an accepted socket. A nil socket is allowed: tests exercise
// the protocol by draining the send channel directly.
func newConn(id idx.ID, sock *websocket.Conn) *Conn {
	now := time.Now()
	return &Conn{
		id:          id,
		sock:        sock,
		send:        make(chan Envelope, sendBuffer),
		closed:      make(chan struct{}),
		connectedAt: now,
		lastPong:    now,
	}
}

func (c *Conn) ID() idx.ID { return c.id }

// Enqueue queues a frame for delivery, reporting whether it was accepted.
// Delivery is best effort: a closed connection or a full buffer loses the
// frame and the caller decides whether that matters.
func (c *Conn) Enqueue(env Envelope) bool {
	select {
	case <-c.closed:
		return false
	default:
	}

	select {
	case c.send <- env:
		return true
	case <-c.closed:
		return false
	default:
		return false
	}
}

// Close is idempotent and safe from any goroutine.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		if c.sock != nil {
			_ = c.sock.Close()
		}
	})
}

// writePump serializes all socket writes. Frames already queued when the
// connection closes are discarded; within the connection order is FIFO.
func (c *Conn) writePump() {
	for {
		select {
		case env := <-c.send:
			_ = c.sock.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.sock.WriteJSON(env); err != nil {
				c.Close()
				return
			}
		case <-c.closed:
			return
		}
	}
}
