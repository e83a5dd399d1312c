package env

import (
	"context"
	"flag"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/robotalks/ethlink/pkg/l0/channel/unixpacket"
	"github.com/robotalks/ethlink/pkg/l0/link"
)

func TestParseBackend(t *testing.T) {
	for _, b := range []Backend{PhysicalLink, LocalSubstitute, MQTTBridge} {
		text, err := b.MarshalText()
		require.NoError(t, err)
		var parsed Backend
		require.NoError(t, parsed.UnmarshalText(text))
		require.Equal(t, b, parsed)
	}
	b, err := ParseBackend(" MQTT ")
	require.NoError(t, err)
	require.Equal(t, MQTTBridge, b)
	_, err = ParseBackend("serial")
	require.Error(t, err)
	_, err = Backend(7).MarshalText()
	require.Error(t, err)
}

func TestBackendYAML(t *testing.T) {
	var v struct {
		B Backend `yaml:"b"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("b: local\n"), &v))
	require.Equal(t, LocalSubstitute, v.B)
	require.Error(t, yaml.Unmarshal([]byte("b: [local]\n"), &v))
	require.ErrorContains(t, yaml.Unmarshal([]byte("b: nope\n"), &v), "line 1")
}

func TestApplyEnv(t *testing.T) {
	vars := map[string]string{
		"ETHLINK_PC":          "",
		"ETHLINK_IFACE":       "enp3s0",
		"ETHLINK_RMAC":        "00:1b:21:aa:bb:cc",
		"ETHLINK_SOCKET":      "/run/board.sock",
		"ETHLINK_MAX_RETRIES": "9",
	}
	lookup := func(key string) (string, bool) {
		val, ok := vars[key]
		return val, ok
	}
	conf := Config{Backend: PhysicalLink}
	applyEnv(&conf, lookup)
	require.Equal(t, LocalSubstitute, conf.Backend)
	require.Equal(t, "enp3s0", conf.Interface)
	require.Equal(t, "00:1b:21:aa:bb:cc", conf.SourceAddr)
	require.Equal(t, "/run/board.sock", conf.SocketPath)
	require.Equal(t, 9, conf.MaxRetries)

	vars["ETHLINK_BACKEND"] = "mqtt"
	applyEnv(&conf, lookup)
	require.Equal(t, MQTTBridge, conf.Backend)
}

func TestBindFlags(t *testing.T) {
	conf := NewConfig()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	conf.BindFlags(fs)
	require.NoError(t, fs.Parse([]string{
		"-backend", "local",
		"-socket", "/tmp/x",
		"-retry-interval", "20ms",
		"-max-retries", "3",
	}))
	require.Equal(t, LocalSubstitute, conf.Backend)
	require.Equal(t, "/tmp/x", conf.SocketPath)
	require.Equal(t, 20*time.Millisecond, conf.RetryInterval)
	require.Equal(t, 3, conf.MaxRetries)
	require.Error(t, fs.Parse([]string{"-backend", "serial"}))
}

func TestNewConfigCopies(t *testing.T) {
	conf := NewConfig()
	conf.Interface = "changed"
	require.NotEqual(t, "changed", Default().Interface)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "link.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte(`
backend = "mqtt"
broker = "mqtt://lab:1883/bench/"
retry-interval = "250ms"
max-retries = 40
`), 0644))
	yamlPath := filepath.Join(dir, "link.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
backend: local
socket: /tmp/board.sock
source: "02:00:00:00:00:01"
retry-interval: 50ms
`), 0644))

	conf := NewConfig()
	require.NoError(t, conf.LoadFile(tomlPath))
	require.Equal(t, MQTTBridge, conf.Backend)
	require.Equal(t, "mqtt://lab:1883/bench/", conf.BrokerURL)
	require.Equal(t, 250*time.Millisecond, conf.RetryInterval)
	require.Equal(t, 40, conf.MaxRetries)

	conf = NewConfig()
	require.NoError(t, conf.LoadFile(yamlPath))
	require.Equal(t, LocalSubstitute, conf.Backend)
	require.Equal(t, "/tmp/board.sock", conf.SocketPath)
	require.Equal(t, "02:00:00:00:00:01", conf.SourceAddr)
	require.Equal(t, 50*time.Millisecond, conf.RetryInterval)

	jsonPath := filepath.Join(dir, "link.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte("{}"), 0644))
	require.ErrorContains(t, NewConfig().LoadFile(jsonPath), "unknown config file type")

	badPath := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(badPath, []byte(`backend = "serial"`), 0644))
	require.ErrorContains(t, NewConfig().LoadFile(badPath), "bad.toml")
}

func TestHeader(t *testing.T) {
	conf := &Config{Backend: LocalSubstitute, SourceAddr: "02:00:00:00:00:01"}
	hdr, err := conf.Header()
	require.NoError(t, err)
	require.Equal(t, link.DefaultDestination(), hdr.Destination())
	require.Equal(t, "02:00:00:00:00:01", hdr.Source().String())
	require.Equal(t, link.DefaultProtocol, hdr.Protocol())

	conf.SourceAddr = "bogus"
	_, err = conf.Header()
	require.Error(t, err)
}

func TestLocalAddrFromID(t *testing.T) {
	a := localAddrFromID("machine-a")
	b := localAddrFromID("machine-b")
	require.Len(t, a, link.AddrLength)
	require.Equal(t, a, localAddrFromID("machine-a"))
	require.NotEqual(t, a, b)
	for _, addr := range []net.HardwareAddr{a, b} {
		require.Zero(t, addr[0]&0x01, "unicast")
		require.NotZero(t, addr[0]&0x02, "locally administered")
	}
}

func TestUnknownBackend(t *testing.T) {
	conf := &Config{Backend: Backend(9), SourceAddr: "02:00:00:00:00:01"}
	_, err := conf.NewLink(context.Background(), nil)
	require.ErrorContains(t, err, "unknown backend")
	_, err = conf.OpenBoardChannel(context.Background())
	require.Error(t, err)
}

func TestLocalSubstituteLink(t *testing.T) {
	conf := &Config{
		Backend:       LocalSubstitute,
		SourceAddr:    "02:00:00:00:00:01",
		SocketPath:    filepath.Join(t.TempDir(), "sock"),
		RetryInterval: 30 * time.Millisecond,
		MaxRetries:    5,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	boardCh := make(chan link.Channel, 1)
	go func() {
		ch, err := conf.OpenBoardChannel(ctx)
		if err != nil {
			boardCh <- nil
			return
		}
		boardCh <- ch
	}()

	l, err := conf.NewLink(ctx, nil)
	require.NoError(t, err)
	defer l.Close()
	require.IsType(t, &unixpacket.Conn{}, l.Channel)
	require.Equal(t, 30*time.Millisecond, l.RetryInterval)
	require.Equal(t, 5, l.MaxRetries)

	board := <-boardCh
	require.NotNil(t, board)
	defer board.Close()
	hdr, err := conf.Header()
	require.NoError(t, err)
	_, err = l.Send(hdr.Encode([]byte("ping")))
	require.NoError(t, err)
	frame, err := board.Receive()
	require.NoError(t, err)
	payload, err := link.Decode(frame)
	require.NoError(t, err)
	require.Equal(t, "ping", string(payload[:4]))
}

func TestOpenBoardChannelCanceled(t *testing.T) {
	conf := &Config{Backend: LocalSubstitute, SocketPath: filepath.Join(t.TempDir(), "sock")}
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)
	_, err := conf.OpenBoardChannel(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
