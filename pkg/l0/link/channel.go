package link

import "time"

// Channel is a bidirectional, message-oriented endpoint. Each Send transmits
// exactly one frame and each Receive returns exactly one frame.
//
// A Channel is owned by a single user at a time and is not safe for
// concurrent operations.
type Channel interface {
	// Send transmits one frame.
	Send(frame []byte) (int, error)
	// Receive blocks up to Timeout for one frame. It returns an error
	// satisfying IsTimeout when nothing arrives in time.
	Receive() ([]byte, error)
	// SetTimeout sets the receive timeout, 0 blocks indefinitely.
	SetTimeout(time.Duration)
	// Timeout returns the current receive timeout.
	Timeout() time.Duration
	// Close releases the endpoint, unblocking a pending Receive.
	Close() error
}

// overrideTimeout swaps in d as the receive timeout and returns the func
// restoring the previous value.
func overrideTimeout(ch Channel, d time.Duration) func() {
	prev := ch.Timeout()
	ch.SetTimeout(d)
	return func() { ch.SetTimeout(prev) }
}
