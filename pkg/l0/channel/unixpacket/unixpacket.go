// Package unixpacket implements link.Channel over a SOCK_SEQPACKET unix
// socket, the local substitute of the physical link used with a simulated
// board.
package unixpacket

import (
	"context"
	"errors"
	"net"
	"os"
	"syscall"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/ethlink/pkg/l0/link"
)

const (
	// DefaultPath is the rendezvous point of the local substitute.
	DefaultPath = "/tmp/tmpLocalSocket"
	// DialRetryDelay is the pause between connection attempts.
	DialRetryDelay = 10 * time.Millisecond

	bufferSize = 4096
)

// Conn is a connected local substitute channel.
type Conn struct {
	conn    *net.UnixConn
	timeout time.Duration
	buf     []byte
}

func newConn(conn *net.UnixConn) *Conn {
	return &Conn{conn: conn, buf: make([]byte, bufferSize)}
}

// Dial connects to the peer listening at path. It keeps retrying while
// nobody listens there yet, until ctx is done. Other failures are returned.
func Dial(ctx context.Context, path string) (*Conn, error) {
	addr := &net.UnixAddr{Name: path, Net: "unixpacket"}
	for attempt := 0; ; attempt++ {
		conn, err := net.DialUnix(addr.Net, nil, addr)
		if err == nil {
			glog.V(1).Infof("connected to %s", path)
			return newConn(conn), nil
		}
		if !notListening(err) {
			return nil, err
		}
		if attempt == 0 {
			glog.Infof("waiting for peer on %s", path)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(DialRetryDelay):
		}
	}
}

func notListening(err error) bool {
	return errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ENOENT)
}

// Send implements link.Channel.
func (c *Conn) Send(frame []byte) (int, error) {
	return c.conn.Write(frame)
}

// Receive implements link.Channel.
func (c *Conn) Receive() ([]byte, error) {
	var deadline time.Time
	if c.timeout > 0 {
		deadline = time.Now().Add(c.timeout)
	}
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return nil, err
	}
	n, err := c.conn.Read(c.buf)
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
	return c.conn.Close()
}

// Listener accepts local substitute connections, playing the board side.
type Listener struct {
	l *net.UnixListener
}

// Listen listens at path, replacing a stale socket file left there.
func Listen(path string) (*Listener, error) {
	if fi, err := os.Lstat(path); err == nil && fi.Mode()&os.ModeSocket != 0 {
		if err = os.Remove(path); err != nil {
			return nil, err
		}
	}
	l, err := net.ListenUnix("unixpacket", &net.UnixAddr{Name: path, Net: "unixpacket"})
	if err != nil {
		return nil, err
	}
	return &Listener{l: l}, nil
}

// Accept waits for the next connection.
func (l *Listener) Accept() (*Conn, error) {
	conn, err := l.l.AcceptUnix()
	if err != nil {
		return nil, err
	}
	return newConn(conn), nil
}

// Close stops listening and removes the socket file.
func (l *Listener) Close() error {
	return l.l.Close()
}
