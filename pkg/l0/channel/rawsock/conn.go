package rawsock

import (
	"errors"
	"os"
	"time"

	"github.com/robotalks/ethlink/pkg/l0/link"
)

// Conn is an open raw socket.
type Conn struct {
	file    *os.File
	timeout time.Duration
	buf     []byte
}

// newConn wraps a non-blocking socket so reads go through the runtime
// poller, which makes deadlines and Close unblock pending reads.
func newConn(fd int, name string) *Conn {
	return &Conn{
		file: os.NewFile(uintptr(fd), name),
		buf:  make([]byte, snapLen),
	}
}

// Send implements link.Channel.
func (c *Conn) Send(frame []byte) (int, error) {
	return c.file.Write(frame)
}

// Receive implements link.Channel.
func (c *Conn) Receive() ([]byte, error) {
	var deadline time.Time
	if c.timeout > 0 {
		deadline = time.Now().Add(c.timeout)
	}
	if err := c.file.SetReadDeadline(deadline); err != nil {
		return nil, err
	}
	n, err := c.file.Read(c.buf)
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return nil, link.ErrTimeout
		}
		return nil, err
	}
	return append([]byte(nil), c.buf[:n]...), nil
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
	return c.file.Close()
}
