package link

import (
	"encoding/binary"
	"fmt"
	"net"
)

const (
	// AddrLength is the length of a link address.
	AddrLength = 6
	// HeaderLength is the length of the frame header.
	HeaderLength = 2*AddrLength + 2
	// MaxFrameSize is the largest payload carried by a single frame (link MTU).
	MaxFrameSize = 1500
	// MinPayloadSize makes header plus payload reach the 64-byte
	// Ethernet minimum (including the 4-byte FCS added by hardware).
	MinPayloadSize = 64 - 18
	// DefaultProtocol is the protocol tag (EtherType) of the link.
	DefaultProtocol uint16 = 0x6000
)

// DefaultDestination returns the address of the board.
func DefaultDestination() net.HardwareAddr {
	return net.HardwareAddr{0x01, 0x60, 0x6e, 0x11, 0x02, 0x0f}
}

// Header is the fixed prefix of every frame in a session.
type Header [HeaderLength]byte

// NewHeader builds the header from addresses and protocol tag.
func NewHeader(dst, src net.HardwareAddr, proto uint16) (h Header, err error) {
	if len(dst) != AddrLength {
		return h, fmt.Errorf("invalid destination address %q", dst)
	}
	if len(src) != AddrLength {
		return h, fmt.Errorf("invalid source address %q", src)
	}
	copy(h[:AddrLength], dst)
	copy(h[AddrLength:], src)
	binary.BigEndian.PutUint16(h[2*AddrLength:], proto)
	return h, nil
}

// Destination returns the destination address.
func (h Header) Destination() net.HardwareAddr {
	return net.HardwareAddr(append([]byte(nil), h[:AddrLength]...))
}

// Source returns the source address.
func (h Header) Source() net.HardwareAddr {
	return net.HardwareAddr(append([]byte(nil), h[AddrLength:2*AddrLength]...))
}

// Protocol returns the protocol tag.
func (h Header) Protocol() uint16 {
	return binary.BigEndian.Uint16(h[2*AddrLength:])
}

// Encode wraps payload into a frame, padding it with zeros up to
// MinPayloadSize. The length of payload isn't checked against MaxFrameSize.
func (h Header) Encode(payload []byte) []byte {
	size := len(payload)
	if size < MinPayloadSize {
		size = MinPayloadSize
	}
	b := make([]byte, HeaderLength+size)
	copy(b, h[:])
	copy(b[HeaderLength:], payload)
	return b
}

// Decode returns the payload of a frame. The header content isn't validated,
// only its length.
func Decode(frame []byte) ([]byte, error) {
	if len(frame) < HeaderLength {
		return nil, ErrTruncated
	}
	return frame[HeaderLength:], nil
}

// CountMismatches compares sent and echoed payloads position by position
// over their common length.
func CountMismatches(sent, echoed []byte) (n int) {
	if len(echoed) < len(sent) {
		sent = sent[:len(echoed)]
	}
	for i, b := range sent {
		if b != echoed[i] {
			n++
		}
	}
	return
}
