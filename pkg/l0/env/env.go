// Package env builds links from configuration. It is the only place reading
// ETHLINK_* environment variables.
package env

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/golang/glog"
	"gopkg.in/yaml.v3"

	"github.com/robotalks/ethlink/pkg/l0/channel/unixpacket"
	"github.com/robotalks/ethlink/pkg/l0/link"
)

// Config provides common options to open a link.
type Config struct {
	Backend Backend `toml:"backend" yaml:"backend"`

	// Interface is the network interface used by PhysicalLink.
	Interface string `toml:"interface" yaml:"interface"`
	// SourceAddr overrides the source hardware address, e.g. 00:1b:21:aa:bb:cc.
	SourceAddr string `toml:"source" yaml:"source"`
	// SocketPath is the unix socket used by LocalSubstitute.
	SocketPath string `toml:"socket" yaml:"socket"`
	// BrokerURL is used by MQTTBridge, e.g. mqtt://localhost:1883/ethlink/
	BrokerURL string `toml:"broker" yaml:"broker"`

	RetryInterval time.Duration `toml:"retry-interval" yaml:"retry-interval"`
	MaxRetries    int           `toml:"max-retries" yaml:"max-retries"`
}

var defaultConfig = Config{
	Backend:       PhysicalLink,
	Interface:     "eth0",
	SocketPath:    unixpacket.DefaultPath,
	BrokerURL:     "mqtt://localhost:1883/ethlink/",
	RetryInterval: link.DefaultRetryInterval,
}

func init() {
	applyEnv(&defaultConfig, os.LookupEnv)
}

func applyEnv(conf *Config, lookup func(string) (string, bool)) {
	if _, ok := lookup("ETHLINK_PC"); ok {
		conf.Backend = LocalSubstitute
	}
	if val, ok := lookup("ETHLINK_BACKEND"); ok && val != "" {
		if err := conf.Backend.Set(val); err != nil {
			glog.Warningf("ETHLINK_BACKEND ignored: %v", err)
		}
	}
	if val, ok := lookup("ETHLINK_IFACE"); ok && val != "" {
		conf.Interface = val
	}
	if val, ok := lookup("ETHLINK_RMAC"); ok && val != "" {
		conf.SourceAddr = val
	}
	if val, ok := lookup("ETHLINK_SOCKET"); ok && val != "" {
		conf.SocketPath = val
	}
	if val, ok := lookup("ETHLINK_BROKER"); ok && val != "" {
		conf.BrokerURL = val
	}
	if val, ok := lookup("ETHLINK_MAX_RETRIES"); ok && val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			conf.MaxRetries = n
		}
	}
}

// SetupFlags binds the default config to flags in fs.
func SetupFlags(fs *flag.FlagSet) {
	defaultConfig.BindFlags(fs)
}

// BindFlags binds conf to flags in fs.
func (c *Config) BindFlags(fs *flag.FlagSet) {
	fs.Var(&c.Backend, "backend", "Link backend: physical, local or mqtt.")
	fs.StringVar(&c.Interface, "iface", c.Interface, "Network interface of the physical link.")
	fs.StringVar(&c.SourceAddr, "src", c.SourceAddr, "Source hardware address.")
	fs.StringVar(&c.SocketPath, "socket", c.SocketPath, "Unix socket of the local substitute.")
	fs.StringVar(&c.BrokerURL, "broker", c.BrokerURL, "MQTT broker URL of the bridge.")
	fs.DurationVar(&c.RetryInterval, "retry-interval", c.RetryInterval, "Interval between retransmissions.")
	fs.IntVar(&c.MaxRetries, "max-retries", c.MaxRetries, "Give up after this many retransmissions, 0 for never.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// LoadFile overlays the config with a TOML or YAML file, chosen by extension.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch ext := filepath.Ext(path); ext {
	case ".toml":
		_, err = toml.Decode(string(data), c)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		return fmt.Errorf("unknown config file type %q", ext)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Header builds the frame header from the config.
func (c *Config) Header() (link.Header, error) {
	src, err := c.Source()
	if err != nil {
		return link.Header{}, err
	}
	return link.NewHeader(link.DefaultDestination(), src, link.DefaultProtocol)
}

// NewLink opens the channel and wraps it as a Link.
func (c *Config) NewLink(ctx context.Context, metrics *link.Metrics) (*link.Link, error) {
	hdr, err := c.Header()
	if err != nil {
		return nil, err
	}
	ch, err := c.OpenChannel(ctx, hdr)
	if err != nil {
		return nil, err
	}
	l := link.New(ch, hdr)
	if c.RetryInterval > 0 {
		l.RetryInterval = c.RetryInterval
	}
	l.MaxRetries = c.MaxRetries
	l.Metrics = metrics
	return l, nil
}
