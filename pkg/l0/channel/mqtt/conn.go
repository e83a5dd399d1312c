// Package mqtt implements link.Channel over an MQTT broker, bridging the
// host to a simulated board running elsewhere.
package mqtt

import (
	"io"
	"sync"
	"time"

	"github.com/robotalks/ethlink/pkg/l0/link"
)

// QueueSize is the number of frames buffered before new ones are dropped.
const QueueSize = 64

// Role decides which topics a Conn publishes to and subscribes.
type Role int

// Roles
const (
	Host Role = iota
	Board
)

func (r Role) String() string {
	if r == Board {
		return "board"
	}
	return "host"
}

// Topics returns the subscribed and published topics of the role.
func (r Role) Topics() (sub, pub string) {
	if r == Board {
		return "to-board", "to-host"
	}
	return "to-host", "to-board"
}

// Conn carries one frame per MQTT message.
type Conn struct {
	Bridge   *Bridge
	SubTopic string
	PubTopic string

	timeout  time.Duration
	packetCh chan []byte
	done     chan struct{}
	once     sync.Once
}

func newConn(b *Bridge, role Role) *Conn {
	c := &Conn{
		Bridge:   b,
		packetCh: make(chan []byte, QueueSize),
		done:     make(chan struct{}),
	}
	c.SubTopic, c.PubTopic = role.Topics()
	return c
}

// Dial connects to the broker at brokerURL and subscribes the topics of role.
func Dial(brokerURL string, role Role) (*Conn, error) {
	opts, prefix, err := BridgeOptions(brokerURL, role)
	if err != nil {
		return nil, err
	}
	b := NewBridge(opts, prefix, role)
	if err = b.Connect(); err != nil {
		return nil, err
	}
	c := newConn(b, role)
	if err = b.Subscribe(c.SubTopic, c.handleFrame); err != nil {
		b.Close()
		return nil, err
	}
	return c, nil
}

// Send implements link.Channel.
func (c *Conn) Send(frame []byte) (int, error) {
	if err := c.Bridge.Publish(c.PubTopic, frame); err != nil {
		return 0, err
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
	case frame := <-c.packetCh:
		return frame, nil
	case <-expired:
		return nil, link.ErrTimeout
	case <-c.done:
		return nil, io.EOF
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
func (c *Conn) Close() (err error) {
	c.once.Do(func() {
		close(c.done)
		if c.Bridge != nil {
			err = c.Bridge.Unsubscribe(c.SubTopic)
			c.Bridge.Close()
		}
	})
	return
}

func (c *Conn) handleFrame(frame []byte) {
	select {
	case c.packetCh <- append([]byte(nil), frame...):
	default:
	}
}
