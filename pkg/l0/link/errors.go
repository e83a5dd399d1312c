package link

import (
	"errors"
	"os"
)

var (
	// ErrTimeout indicates no frame arrived within the channel timeout.
	ErrTimeout = errors.New("receive timeout")
	// ErrTruncated indicates a frame shorter than the header.
	ErrTruncated = errors.New("truncated frame")
	// ErrNoReply indicates the peer didn't reply within the retry limit.
	ErrNoReply = errors.New("no reply")
)

// IsTimeout tells whether err is a receive timeout from a Channel.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout) || os.IsTimeout(err)
}
