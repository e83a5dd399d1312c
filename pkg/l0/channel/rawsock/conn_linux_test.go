package rawsock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/robotalks/ethlink/pkg/l0/link"
)

func socketPair(t *testing.T) (*Conn, *Conn) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_SEQPACKET|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	require.NoError(t, err)
	a, b := newConn(fds[0], "a"), newConn(fds[1], "b")
	t.Cleanup(func() {
		a.Close()
		b.Close()
	})
	return a, b
}

func TestConn(t *testing.T) {
	a, b := socketPair(t)
	n, err := a.Send([]byte("frame"))
	require.NoError(t, err)
	require.Equal(t, 5, n)
	frame, err := b.Receive()
	require.NoError(t, err)
	require.Equal(t, []byte("frame"), frame)
}

func TestConnTimeout(t *testing.T) {
	_, b := socketPair(t)
	b.SetTimeout(10 * time.Millisecond)
	require.Equal(t, 10*time.Millisecond, b.Timeout())
	start := time.Now()
	_, err := b.Receive()
	require.Equal(t, link.ErrTimeout, err)
	require.True(t, time.Since(start) >= 10*time.Millisecond)
}

func TestConnCloseUnblocks(t *testing.T) {
	_, b := socketPair(t)
	errCh := make(chan error, 1)
	go func() {
		_, err := b.Receive()
		errCh <- err
	}()
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, b.Close())
	select {
	case err := <-errCh:
		require.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("receive not unblocked by close")
	}
}
