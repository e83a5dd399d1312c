package link

import (
	"context"
	"fmt"
	"time"

	"github.com/golang/glog"
)

// DefaultRetryInterval is the interval between retransmissions.
const DefaultRetryInterval = 100 * time.Millisecond

// Link runs the stop-and-wait protocol over a Channel, framing payloads
// with Header. Like Channel, a Link must not be used concurrently.
type Link struct {
	Channel
	Header
	// RetryInterval is both the receive timeout of a timed operation and
	// the retransmission period.
	RetryInterval time.Duration
	// MaxRetries limits retransmissions of a timed operation, 0 means
	// retrying forever.
	MaxRetries int
	// Metrics is optional.
	Metrics *Metrics
}

// New creates a Link with default retry settings.
func New(ch Channel, hdr Header) *Link {
	return &Link{
		Channel:       ch,
		Header:        hdr,
		RetryInterval: DefaultRetryInterval,
	}
}

func (l *Link) retryInterval() time.Duration {
	if l.RetryInterval > 0 {
		return l.RetryInterval
	}
	return DefaultRetryInterval
}

func (l *Link) send(frame []byte) error {
	if _, err := l.Channel.Send(frame); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	l.Metrics.sent()
	glog.V(3).Infof("SND %d bytes", len(frame))
	return nil
}

// exchange sends frame and waits for any reply, retransmitting on every
// receive timeout. When frame is nil, it only waits. The caller must have
// applied the retry interval as channel timeout.
func (l *Link) exchange(ctx context.Context, frame []byte) ([]byte, error) {
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if frame != nil {
			if attempt > 0 {
				l.Metrics.retransmitted()
			}
			if err := l.send(frame); err != nil {
				return nil, err
			}
		}
		reply, err := l.Channel.Receive()
		if err == nil {
			l.Metrics.received()
			glog.V(3).Infof("RCV %d bytes", len(reply))
			return reply, nil
		}
		if !IsTimeout(err) {
			return nil, fmt.Errorf("receive: %w", err)
		}
		if l.MaxRetries > 0 && attempt >= l.MaxRetries {
			return nil, fmt.Errorf("%w after %d attempts", ErrNoReply, attempt+1)
		}
		if attempt > 0 && attempt%50 == 0 {
			glog.Warningf("still waiting for peer after %d attempts", attempt)
		}
	}
}
