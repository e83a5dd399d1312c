package board

import (
	"bytes"
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/ethlink/pkg/l0/channel/mem"
	"github.com/robotalks/ethlink/pkg/l0/link"
	"github.com/robotalks/ethlink/pkg/transfer"
)

var hostAddr = net.HardwareAddr{0x02, 0, 0, 0, 0, 0x01}

type testEnv struct {
	host  *link.Link
	board *Board
	ctx   context.Context
	done  chan error
	err   error
	once  sync.Once
	stop  func()
}

func newTestEnv(t *testing.T, mode Mode) *testEnv {
	hostCh, boardCh := mem.Pipe()
	hdr, err := link.NewHeader(link.DefaultDestination(), hostAddr, link.DefaultProtocol)
	require.NoError(t, err)
	b, err := New(boardCh, hostAddr, mode, transfer.WithChunkSize(100))
	require.NoError(t, err)

	env := &testEnv{host: link.New(hostCh, hdr), board: b, done: make(chan error, 1)}
	env.host.RetryInterval = 200 * time.Millisecond
	env.host.MaxRetries = 20
	b.Link.RetryInterval = 500 * time.Millisecond
	var cancel func()
	env.ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	go func() { env.done <- b.Run(env.ctx) }()
	env.stop = func() {
		env.once.Do(func() {
			cancel()
			select {
			case env.err = <-env.done:
			case <-time.After(5 * time.Second):
				t.Error("board did not stop")
			}
			hostCh.Close()
		})
	}
	t.Cleanup(env.stop)
	return env
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("recv")
	require.NoError(t, err)
	require.Equal(t, ModeRecv, m)
	_, err = ParseMode("flash")
	require.Error(t, err)
}

func TestHeader(t *testing.T) {
	hdr, err := Header(hostAddr)
	require.NoError(t, err)
	require.Equal(t, hostAddr, hdr.Destination())
	require.Equal(t, link.DefaultDestination(), hdr.Source())
}

func TestEcho(t *testing.T) {
	env := newTestEnv(t, ModeEcho)
	require.Equal(t, "board:echo", env.board.Name())
	require.NoError(t, env.host.SyncAckFirst(env.ctx))
	for _, msg := range []string{"hello", "board"} {
		errs, err := env.host.SendAndAck(env.ctx, []byte(msg))
		require.NoError(t, err)
		require.Zero(t, errs)
	}
	require.Eventually(t, func() bool { return env.board.Echoed() >= 2 }, time.Second, 10*time.Millisecond)
}

func TestRecv(t *testing.T) {
	env := newTestEnv(t, ModeRecv)
	received := make(chan []byte, 1)
	env.board.OnReceive = func(data []byte, rep *transfer.Report) error {
		received <- data
		return nil
	}
	data := bytes.Repeat([]byte("0123456789"), 25)
	rep, err := transfer.New(env.host, transfer.WithChunkSize(100)).SendVariable(env.ctx, data)
	require.NoError(t, err)
	require.Zero(t, rep.ErrorBytes)
	require.Equal(t, data, <-received)
}

func TestSend(t *testing.T) {
	env := newTestEnv(t, ModeSend)
	env.board.Data = []byte("firmware log")
	data, rep, err := transfer.New(env.host, transfer.WithChunkSize(100)).ReceiveVariable(env.ctx)
	require.NoError(t, err)
	require.Equal(t, "firmware log", string(data))
	require.Equal(t, 1, rep.Frames)
}

func TestRunStopsOnCancel(t *testing.T) {
	env := newTestEnv(t, ModeEcho)
	env.stop()
	require.ErrorIs(t, env.err, context.Canceled)
}
