//go:build !linux

package rawsock

import (
	"errors"

	"golang.org/x/net/bpf"
)

// ErrUnsupported is returned by Open on platforms without AF_PACKET.
var ErrUnsupported = errors.New("raw link sockets require linux")

// Open always fails on this platform.
func Open(iface string, proto uint16, filter []bpf.RawInstruction) (*Conn, error) {
	return nil, ErrUnsupported
}
