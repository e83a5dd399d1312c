package rawsock

import (
	"encoding/binary"
	"fmt"
	"net"

	"golang.org/x/net/bpf"
)

// snapLen is the number of bytes of a frame kept by the filter.
const snapLen = 4096

// Filter returns a socket filter accepting only frames tagged with proto
// and addressed to dst.
func Filter(proto uint16, dst net.HardwareAddr) ([]bpf.RawInstruction, error) {
	prog, err := filterProgram(proto, dst)
	if err != nil {
		return nil, err
	}
	return bpf.Assemble(prog)
}

func filterProgram(proto uint16, dst net.HardwareAddr) ([]bpf.Instruction, error) {
	if len(dst) != 6 {
		return nil, fmt.Errorf("invalid address %q", dst)
	}
	return []bpf.Instruction{
		bpf.LoadAbsolute{Off: 12, Size: 2},
		bpf.JumpIf{Cond: bpf.JumpNotEqual, Val: uint32(proto), SkipTrue: 4},
		bpf.LoadAbsolute{Off: 0, Size: 4},
		bpf.JumpIf{Cond: bpf.JumpNotEqual, Val: binary.BigEndian.Uint32(dst[:4]), SkipTrue: 2},
		bpf.LoadAbsolute{Off: 4, Size: 2},
		bpf.JumpIf{Cond: bpf.JumpEqual, Val: uint32(binary.BigEndian.Uint16(dst[4:])), SkipTrue: 1},
		bpf.RetConstant{Val: 0},
		bpf.RetConstant{Val: snapLen},
	}, nil
}
