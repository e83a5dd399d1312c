package env

import (
	"context"
	"fmt"

	"github.com/golang/glog"

	"github.com/robotalks/ethlink/pkg/l0/channel/mqtt"
	"github.com/robotalks/ethlink/pkg/l0/channel/rawsock"
	"github.com/robotalks/ethlink/pkg/l0/channel/unixpacket"
	"github.com/robotalks/ethlink/pkg/l0/link"
)

// OpenChannel opens the host side of the configured backend.
// The raw socket only accepts frames carrying hdr's protocol tag
// addressed to hdr's source.
func (c *Config) OpenChannel(ctx context.Context, hdr link.Header) (link.Channel, error) {
	glog.Infof("open %s link", c.Backend)
	switch c.Backend {
	case PhysicalLink:
		filter, err := rawsock.Filter(hdr.Protocol(), hdr.Source())
		if err != nil {
			return nil, err
		}
		conn, err := rawsock.Open(c.Interface, hdr.Protocol(), filter)
		if err != nil {
			return nil, err
		}
		return conn, nil
	case LocalSubstitute:
		conn, err := unixpacket.Dial(ctx, c.SocketPath)
		if err != nil {
			return nil, err
		}
		return conn, nil
	case MQTTBridge:
		conn, err := mqtt.Dial(c.BrokerURL, mqtt.Host)
		if err != nil {
			return nil, err
		}
		return conn, nil
	default:
		return nil, fmt.Errorf("unknown backend %v", c.Backend)
	}
}

// OpenBoardChannel opens the board side of the configured backend,
// used by board simulators. With LocalSubstitute it blocks until the
// host connects or ctx is done.
func (c *Config) OpenBoardChannel(ctx context.Context) (link.Channel, error) {
	switch c.Backend {
	case LocalSubstitute:
		l, err := unixpacket.Listen(c.SocketPath)
		if err != nil {
			return nil, err
		}
		defer l.Close()
		done := make(chan struct{})
		defer close(done)
		go func() {
			select {
			case <-ctx.Done():
				l.Close()
			case <-done:
			}
		}()
		glog.Infof("waiting for host on %s", c.SocketPath)
		conn, err := l.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, err
		}
		return conn, nil
	case MQTTBridge:
		conn, err := mqtt.Dial(c.BrokerURL, mqtt.Board)
		if err != nil {
			return nil, err
		}
		return conn, nil
	default:
		return nil, fmt.Errorf("backend %v has no simulated board side", c.Backend)
	}
}
