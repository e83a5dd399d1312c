package unixpacket

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/ethlink/pkg/l0/link"
)

func TestDialBeforeListen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sock")

	type dialed struct {
		conn *Conn
		err  error
	}
	dialCh := make(chan dialed, 1)
	go func() {
		conn, err := Dial(context.Background(), path)
		dialCh <- dialed{conn, err}
	}()

	time.Sleep(30 * time.Millisecond)
	l, err := Listen(path)
	require.NoError(t, err)
	defer l.Close()
	board, err := l.Accept()
	require.NoError(t, err)
	defer board.Close()

	d := <-dialCh
	require.NoError(t, d.err)
	host := d.conn
	defer host.Close()

	_, err = host.Send([]byte("ping"))
	require.NoError(t, err)
	frame, err := board.Receive()
	require.NoError(t, err)
	require.Equal(t, []byte("ping"), frame)

	host.SetTimeout(10 * time.Millisecond)
	require.Equal(t, 10*time.Millisecond, host.Timeout())
	_, err = host.Receive()
	require.Equal(t, link.ErrTimeout, err)
}

func TestDialCanceled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err := Dial(ctx, filepath.Join(t.TempDir(), "sock"))
	require.Equal(t, context.DeadlineExceeded, err)
}

func TestDialNotRetried(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0644))
	done := make(chan error, 1)
	go func() {
		_, err := Dial(context.Background(), filepath.Join(file, "sock"))
		done <- err
	}()
	select {
	case err := <-done:
		require.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("dial kept retrying")
	}
}

func TestListenReplacesStaleSocket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sock")
	l, err := Listen(path)
	require.NoError(t, err)
	// keep the file around like a crashed process would
	l.l.SetUnlinkOnClose(false)
	require.NoError(t, l.Close())

	l, err = Listen(path)
	require.NoError(t, err)
	require.NoError(t, l.Close())
}
