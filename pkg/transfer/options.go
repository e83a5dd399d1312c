package transfer

import "github.com/robotalks/ethlink/pkg/l0/link"

const (
	// DefaultChunkSize matches the chunk size of the board firmware.
	DefaultChunkSize = link.MaxFrameSize
	// DefaultMaxSize limits announced sizes in variable mode.
	DefaultMaxSize = 64 << 20
)

// ProgressFunc is called after every frame with the 0-based frame index
// and the index of the last frame.
type ProgressFunc func(current, total int)

// Config holds the transfer configuration.
type Config struct {
	ChunkSize int
	MaxSize   int
	Progress  ProgressFunc
}

func defaultConfig() Config {
	return Config{
		ChunkSize: DefaultChunkSize,
		MaxSize:   DefaultMaxSize,
	}
}

// Option is a functional option for configuring a Transfer.
type Option func(*Config)

// WithChunkSize sets the payload size of data frames.
// Both sides must use the same chunk size.
func WithChunkSize(size int) Option {
	return func(c *Config) {
		if size > 0 && size <= link.MaxFrameSize {
			c.ChunkSize = size
		}
	}
}

// WithMaxSize sets the largest size accepted in variable mode.
func WithMaxSize(size int) Option {
	return func(c *Config) {
		if size >= 0 {
			c.MaxSize = size
		}
	}
}

// WithProgress sets a callback reporting progress per frame.
func WithProgress(fn ProgressFunc) Option {
	return func(c *Config) {
		c.Progress = fn
	}
}
