package link

import (
	"context"

	"github.com/golang/glog"
)

// SyncAckFirst pings the peer every RetryInterval until it answers.
// It's used by the side initiating a transfer.
func (l *Link) SyncAckFirst(ctx context.Context) error {
	defer overrideTimeout(l.Channel, l.retryInterval())()
	if _, err := l.exchange(ctx, l.Header.Encode(nil)); err != nil {
		return err
	}
	glog.V(1).Info("sync: peer answered")
	return nil
}

// SyncAckLast waits for the first ping from the peer and answers it once.
// It's used by the side waiting for a transfer.
func (l *Link) SyncAckLast(ctx context.Context) error {
	defer overrideTimeout(l.Channel, l.retryInterval())()
	if _, err := l.exchange(ctx, nil); err != nil {
		return err
	}
	if err := l.send(l.Header.Encode(nil)); err != nil {
		return err
	}
	glog.V(1).Info("sync: answered peer")
	return nil
}
