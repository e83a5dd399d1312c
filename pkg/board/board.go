// Package board simulates the embedded end of a link, so the host tools
// can be exercised without hardware.
package board

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync/atomic"
	"syscall"

	"github.com/golang/glog"

	fx "github.com/robotalks/ethlink/pkg/framework"
	"github.com/robotalks/ethlink/pkg/l0/link"
	"github.com/robotalks/ethlink/pkg/transfer"
)

// Mode is what the board does with the link.
type Mode string

// Modes
const (
	// ModeEcho answers the host handshake then echoes every frame.
	ModeEcho Mode = "echo"
	// ModeRecv receives variable size files pushed by the host.
	ModeRecv Mode = "recv"
	// ModeSend serves Data to the host as a variable size file.
	ModeSend Mode = "send"
)

// ParseMode validates the mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeEcho, ModeRecv, ModeSend:
		return m, nil
	default:
		return "", fmt.Errorf("unknown board mode %q", s)
	}
}

// ReceiveFunc is called for each file received in ModeRecv.
type ReceiveFunc func(data []byte, rep *transfer.Report) error

// Board is a simulated board.
type Board struct {
	Link     *link.Link
	Transfer *transfer.Transfer
	Mode     Mode

	Data      []byte
	OnReceive ReceiveFunc

	echoed atomic.Int64
}

// Header builds the header of frames sent by the board to host.
func Header(host net.HardwareAddr) (link.Header, error) {
	return link.NewHeader(host, link.DefaultDestination(), link.DefaultProtocol)
}

// New creates a Board on ch talking to host.
func New(ch link.Channel, host net.HardwareAddr, mode Mode, opts ...transfer.Option) (*Board, error) {
	hdr, err := Header(host)
	if err != nil {
		return nil, err
	}
	l := link.New(ch, hdr)
	return &Board{
		Link:     l,
		Transfer: transfer.New(l, opts...),
		Mode:     mode,
	}, nil
}

// Echoed returns the number of frames echoed in ModeEcho.
func (b *Board) Echoed() int {
	return int(b.echoed.Load())
}

// Name implements fx.Named.
func (b *Board) Name() string {
	return "board:" + string(b.Mode)
}

// Run implements fx.Runnable. It serves one host session and returns nil
// when the host hangs up. The channel blocks without timeout and is closed
// when ctx is done or the session ends.
func (b *Board) Run(ctx context.Context) error {
	b.Link.SetTimeout(0)
	return fx.RunWithContextCloser(ctx, b.Link, func() error {
		switch b.Mode {
		case ModeEcho:
			return b.echo(ctx)
		case ModeRecv:
			return b.serveRecv(ctx)
		case ModeSend:
			return b.serveSend(ctx)
		default:
			return fmt.Errorf("unknown board mode %q", b.Mode)
		}
	})
}

func (b *Board) echo(ctx context.Context) error {
	if err := b.Link.SyncAckLast(ctx); err != nil {
		return endSession(err)
	}
	glog.Info("host connected")
	for {
		payload, err := b.Link.RcvAndAck(ctx)
		if err != nil {
			return endSession(err)
		}
		b.echoed.Add(1)
		glog.V(2).Infof("echoed %d bytes", len(payload))
	}
}

func (b *Board) serveRecv(ctx context.Context) error {
	for {
		data, rep, err := b.Transfer.ReceiveVariable(ctx)
		if err != nil {
			return endSession(err)
		}
		if b.OnReceive != nil {
			if err = b.OnReceive(data, rep); err != nil {
				return err
			}
		}
	}
}

func (b *Board) serveSend(ctx context.Context) error {
	for {
		rep, err := b.Transfer.SendVariable(ctx, b.Data)
		if err != nil {
			return endSession(err)
		}
		if rep.ErrorBytes > 0 {
			glog.Warningf("transfer %s: host echoed %d bad bytes", rep.ID, rep.ErrorBytes)
		}
	}
}

// PeerClosed tells whether err comes from the host closing its end.
func PeerClosed(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ECONNRESET)
}

func endSession(err error) error {
	if PeerClosed(err) {
		glog.Infof("host disconnected: %v", err)
		return nil
	}
	return err
}
