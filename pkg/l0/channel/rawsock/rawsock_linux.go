//go:build linux

package rawsock

import (
	"encoding/binary"
	"fmt"
	"net"

	"github.com/golang/glog"
	"golang.org/x/net/bpf"
	"golang.org/x/sys/unix"
)

// Open creates a raw socket for frames tagged with proto and binds it to
// iface. The optional filter is attached before binding.
func Open(iface string, proto uint16, filter []bpf.RawInstruction) (*Conn, error) {
	ifi, err := net.InterfaceByName(iface)
	if err != nil {
		return nil, err
	}
	fd, err := unix.Socket(unix.AF_PACKET, unix.SOCK_RAW|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, int(htons(proto)))
	if err != nil {
		return nil, fmt.Errorf("socket: %w", err)
	}
	if len(filter) > 0 {
		if err = attachFilter(fd, filter); err != nil {
			unix.Close(fd)
			return nil, fmt.Errorf("attach filter: %w", err)
		}
	}
	if err = unix.Bind(fd, &unix.SockaddrLinklayer{Protocol: htons(proto), Ifindex: ifi.Index}); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("bind %s: %w", iface, err)
	}
	glog.V(1).Infof("raw socket bound to %s (index %d, proto %04x)", iface, ifi.Index, proto)
	return newConn(fd, "packet:"+iface), nil
}

func attachFilter(fd int, filter []bpf.RawInstruction) error {
	prog := make([]unix.SockFilter, len(filter))
	for i, ins := range filter {
		prog[i] = unix.SockFilter{Code: ins.Op, Jt: ins.Jt, Jf: ins.Jf, K: ins.K}
	}
	return unix.SetsockoptSockFprog(fd, unix.SOL_SOCKET, unix.SO_ATTACH_FILTER, &unix.SockFprog{
		Len:    uint16(len(prog)),
		Filter: &prog[0],
	})
}

func htons(v uint16) uint16 {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	return binary.NativeEndian.Uint16(b[:])
}
