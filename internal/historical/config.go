package historical

import (
	"bondflow/pkg/exception"

	"github.com/yanun0323/errors"
)

const (
	defaultBufferSize = 64 * 1024

	// TimeLayout prefixes every persisted line.
	TimeLayout = "2006-01-02 15:04:05.000000"
)

// Output file names.
const (
	FilePositions    = "positions.txt"
	FileRisk         = "risk.txt"
	FileExecutions   = "executions.txt"
	FileStreaming    = "streaming.txt"
	FileInquiries    = "allinquiries.txt"
	FileGUI          = "gui.txt"
	FileBucketedRisk = "bucketedrisk.txt"
)

// Config controls the file sinks.
type Config struct {
	Dir        string
	BufferSize int
}

// DefaultConfig returns a baseline configuration writing into dir.
func DefaultConfig(dir string) Config {
	return Config{
		Dir:        dir,
		BufferSize: defaultBufferSize,
	}
}

func (c Config) withDefaults() Config {
	if c.BufferSize == 0 {
		c.BufferSize = defaultBufferSize
	}
	return c
}

// Validate checks if the configuration is usable.
func (c Config) Validate() error {
	if c.Dir == "" {
		return errors.Wrap(exception.ErrInvalidArgument, "invalid historical config: Dir is empty")
	}
	if c.BufferSize <= 0 {
		return errors.Wrap(exception.ErrInvalidArgument, "invalid historical config: BufferSize must be > 0")
	}
	return nil
}
