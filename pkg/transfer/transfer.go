package transfer

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"

	"github.com/robotalks/ethlink/pkg/l0/link"
)

const sizeFieldLength = 4

// Report summarizes a finished transfer.
type Report struct {
	ID         uuid.UUID
	Bytes      int
	Frames     int
	ErrorBytes int
	Elapsed    time.Duration
}

// Transfer sends and receives files over a Link.
type Transfer struct {
	link   *link.Link
	config Config
}

// New creates a Transfer over l.
func New(l *link.Link, opts ...Option) *Transfer {
	if l == nil {
		panic("link cannot be nil")
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Transfer{link: l, config: cfg}
}

// Frames returns the number of data frames needed for size bytes.
// An empty file still takes one frame.
func (t *Transfer) Frames(size int) int {
	if size <= 0 {
		return 1
	}
	return (size-1)/t.config.ChunkSize + 1
}

// Send synchronizes with the peer and sends data, whose size the
// peer must already know.
func (t *Transfer) Send(ctx context.Context, data []byte) (*Report, error) {
	rep := t.newReport(len(data))
	start := time.Now()
	if err := t.link.SyncAckFirst(ctx); err != nil {
		return rep, fmt.Errorf("sync: %w", err)
	}
	return rep, t.finish(rep, start, t.sendFrames(ctx, rep, data))
}

// SendVariable synchronizes with the peer, announces the size of data and
// sends it.
func (t *Transfer) SendVariable(ctx context.Context, data []byte) (*Report, error) {
	rep := t.newReport(len(data))
	start := time.Now()
	if err := t.link.SyncAckFirst(ctx); err != nil {
		return rep, fmt.Errorf("sync: %w", err)
	}
	var size [sizeFieldLength]byte
	binary.LittleEndian.PutUint32(size[:], uint32(len(data)))
	errs, err := t.link.SendAndAck(ctx, size[:])
	if err != nil {
		return rep, fmt.Errorf("size: %w", err)
	}
	if errs > 0 {
		glog.Warningf("transfer %s: size announcement echoed with %d bad bytes", rep.ID, errs)
		rep.ErrorBytes += errs
	}
	return rep, t.finish(rep, start, t.sendFrames(ctx, rep, data))
}

// Receive synchronizes with the peer and receives size bytes.
func (t *Transfer) Receive(ctx context.Context, size int) ([]byte, *Report, error) {
	rep := t.newReport(size)
	start := time.Now()
	if err := t.link.SyncAckLast(ctx); err != nil {
		return nil, rep, fmt.Errorf("sync: %w", err)
	}
	data, err := t.receiveFrames(ctx, rep, size)
	return data, rep, t.finish(rep, start, err)
}

// ReceiveVariable synchronizes with the peer, reads the size announcement
// and receives the data.
func (t *Transfer) ReceiveVariable(ctx context.Context) ([]byte, *Report, error) {
	start := time.Now()
	if err := t.link.SyncAckLast(ctx); err != nil {
		return nil, t.newReport(0), fmt.Errorf("sync: %w", err)
	}
	payload, err := t.link.RcvAndAck(ctx)
	if err != nil {
		return nil, t.newReport(0), fmt.Errorf("size: %w", err)
	}
	if len(payload) < sizeFieldLength {
		return nil, t.newReport(0), &SizeError{Size: -1, Max: t.config.MaxSize}
	}
	announced := binary.LittleEndian.Uint32(payload)
	if uint64(announced) > uint64(t.config.MaxSize) {
		return nil, t.newReport(0), &SizeError{Size: int64(announced), Max: t.config.MaxSize}
	}
	size := int(announced)
	glog.V(1).Infof("receiving %d bytes", size)
	rep := t.newReport(size)
	data, err := t.receiveFrames(ctx, rep, size)
	return data, rep, t.finish(rep, start, err)
}

func (t *Transfer) newReport(size int) *Report {
	return &Report{ID: uuid.New(), Frames: t.Frames(size)}
}

func (t *Transfer) sendFrames(ctx context.Context, rep *Report, data []byte) error {
	for i := 0; i < rep.Frames; i++ {
		chunk := data[min(i*t.config.ChunkSize, len(data)):min((i+1)*t.config.ChunkSize, len(data))]
		errs, err := t.link.SendAndAck(ctx, chunk)
		if err != nil {
			return fmt.Errorf("frame %d/%d: %w", i+1, rep.Frames, err)
		}
		rep.Bytes += len(chunk)
		rep.ErrorBytes += errs
		t.progress(i, rep.Frames-1)
	}
	return nil
}

func (t *Transfer) receiveFrames(ctx context.Context, rep *Report, size int) ([]byte, error) {
	data := make([]byte, 0, size)
	for i := 0; i < rep.Frames; i++ {
		expected := min(size-len(data), t.config.ChunkSize)
		payload, err := t.link.RcvAndAck(ctx)
		if err != nil {
			return data, fmt.Errorf("frame %d/%d: %w", i+1, rep.Frames, err)
		}
		if len(payload) < expected {
			return data, &FrameError{Frame: i + 1, Expected: expected, Actual: len(payload)}
		}
		data = append(data, payload[:expected]...)
		rep.Bytes = len(data)
		t.progress(i, rep.Frames-1)
	}
	return data, nil
}

func (t *Transfer) progress(current, total int) {
	if fn := t.config.Progress; fn != nil {
		fn(current, total)
	}
}

func (t *Transfer) finish(rep *Report, start time.Time, err error) error {
	rep.Elapsed = time.Since(start)
	if err == nil {
		glog.Infof("transfer %s: %d bytes in %d frames, %d error bytes, %v",
			rep.ID, rep.Bytes, rep.Frames, rep.ErrorBytes, rep.Elapsed)
	}
	return err
}
