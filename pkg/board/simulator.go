package board

import (
	"context"
	"net"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/ethlink/pkg/l0/link"
	"github.com/robotalks/ethlink/pkg/transfer"
)

// OpenFunc opens the board end of a channel for the next host session.
type OpenFunc func(context.Context) (link.Channel, error)

// Simulator serves host sessions one after another, each on a channel
// returned by Open.
type Simulator struct {
	Open OpenFunc
	Host net.HardwareAddr
	Mode Mode

	RetryInterval time.Duration
	// MaxRetries also bounds how many intervals a waiting board idles
	// before the session fails with link.ErrNoReply.
	MaxRetries int
	Metrics    *link.Metrics
	Options    []transfer.Option

	Data      []byte
	OnReceive ReceiveFunc
	// Sessions limits the number of sessions served, 0 for no limit.
	Sessions int
}

// Name implements fx.Named.
func (s *Simulator) Name() string {
	return "simulator:" + string(s.Mode)
}

// Run implements fx.Runnable.
func (s *Simulator) Run(ctx context.Context) error {
	for n := 1; ; n++ {
		ch, err := s.Open(ctx)
		if err != nil {
			return err
		}
		b, err := New(ch, s.Host, s.Mode, s.Options...)
		if err != nil {
			ch.Close()
			return err
		}
		if s.RetryInterval > 0 {
			b.Link.RetryInterval = s.RetryInterval
		}
		b.Link.MaxRetries = s.MaxRetries
		b.Link.Metrics = s.Metrics
		b.Data, b.OnReceive = s.Data, s.OnReceive
		if err = b.Run(ctx); err != nil {
			return err
		}
		if s.Sessions > 0 && n >= s.Sessions {
			return nil
		}
		glog.Info("session ended, waiting for next host")
	}
}
