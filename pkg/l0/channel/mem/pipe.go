// Package mem provides an in-memory link.Channel pair.
package mem

import (
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robotalks/ethlink/pkg/l0/link"
)

// QueueSize is the number of frames buffered in each direction.
// Frames sent while the queue is full are lost, like on a real link.
const QueueSize = 64

// Conn is one end of a Pipe.
type Conn struct {
	// Drop decides whether the n-th (0-based) frame sent is lost.
	// It must be set before the Conn is used.
	Drop func(n int, frame []byte) bool

	in      <-chan []byte
	out     chan<- []byte
	timeout time.Duration
	sent    atomic.Int64
	done    chan struct{}
	once    sync.Once
}

// Pipe creates a connected pair of channels.
func Pipe() (*Conn, *Conn) {
	ab, ba := make(chan []byte, QueueSize), make(chan []byte, QueueSize)
	return &Conn{in: ba, out: ab, done: make(chan struct{})},
		&Conn{in: ab, out: ba, done: make(chan struct{})}
}

// Sent returns the number of Send calls, including dropped frames.
func (c *Conn) Sent() int {
	return int(c.sent.Load())
}

// Send implements link.Channel.
func (c *Conn) Send(frame []byte) (int, error) {
	select {
	case <-c.done:
		return 0, io.ErrClosedPipe
	default:
	}
	n := int(c.sent.Add(1) - 1)
	if c.Drop != nil && c.Drop(n, frame) {
		return len(frame), nil
	}
	select {
	case c.out <- append([]byte(nil), frame...):
	default:
	}
	return len(frame), nil
}

// Receive implements link.Channel.
func (c *Conn) Receive() ([]byte, error) {
	var expired <-chan time.Time
	if c.timeout > 0 {
		timer := time.NewTimer(c.timeout)
		defer timer.Stop()
		expired = timer.C
	}
	select {
	case frame := <-c.in:
		return frame, nil
	case <-expired:
		return nil, link.ErrTimeout
	case <-c.done:
		return nil, io.ErrClosedPipe
	}
}

// SetTimeout implements link.Channel.
func (c *Conn) SetTimeout(d time.Duration) {
	c.timeout = d
}

// Timeout implements link.Channel.
func (c *Conn) Timeout() time.Duration {
	return c.timeout
}

// Close implements link.Channel.
func (c *Conn) Close() error {
	c.once.Do(func() { close(c.done) })
	return nil
}
