package link

import "context"

// SendAndAck sends payload and waits for the peer to echo it back,
// retransmitting every RetryInterval until a reply arrives. It returns the
// number of bytes differing between payload and the echo.
//
// Mismatches are not retried, the caller decides what to do with them.
func (l *Link) SendAndAck(ctx context.Context, payload []byte) (int, error) {
	frame := l.Header.Encode(payload)

	restore := overrideTimeout(l.Channel, l.retryInterval())
	reply, err := l.exchange(ctx, frame)
	restore()
	if err != nil {
		return 0, err
	}

	echoed, err := Decode(reply)
	if err != nil {
		return 0, err
	}
	errs := CountMismatches(payload, echoed)
	l.Metrics.mismatched(errs)
	return errs, nil
}

// RcvAndAck receives one frame and echoes its payload back to the peer.
// It uses the current channel timeout and never retries.
//
// The returned payload includes any padding added by the peer.
func (l *Link) RcvAndAck(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	frame, err := l.Channel.Receive()
	if err != nil {
		return nil, err
	}
	l.Metrics.received()
	payload, err := Decode(frame)
	if err != nil {
		return nil, err
	}
	if err = l.send(l.Header.Encode(payload)); err != nil {
		return nil, err
	}
	return payload, nil
}
