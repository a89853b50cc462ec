package geodsp

import (
	"errors"
	"fmt"
	"runtime"
)

// Config holds the execution settings shared by all kernels of a [Kernels]
// instance.
type Config struct {
	// Workers is the number of goroutines a kernel may spread work over.
	// Set to 0 to use runtime.GOMAXPROCS(0).
	Workers int

	// EnableParallel enables parallel channel and segment processing.
	// When false every kernel runs sequentially on the calling goroutine.
	EnableParallel bool

	// MaxTableSize bounds the number of float64 entries of the cos/sin tables
	// the spectrum estimator may precompute per call. Set to 0 for the
	// default (32 MiB of tables); a negative value disables tables.
	MaxTableSize int
}

// Common errors returned by the kernels. Returned errors wrap one of these
// with details; test with errors.Is.
var (
	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = errors.New("invalid geodsp configuration")

	// ErrDimensionMismatch indicates a buffer shorter than its declared
	// dimensions require.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrInvalidParameter indicates a count, rate or frequency outside its
	// valid domain.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrInvalidCoefficients indicates an SOS matrix with a non-finite
	// entry or a section whose a0 is not 1.
	ErrInvalidCoefficients = errors.New("invalid SOS coefficients")

	// ErrNoSegments indicates stacking with no segments to average.
	ErrNoSegments = errors.New("no segments to stack")
)

// DefaultConfig returns parallel execution over GOMAXPROCS workers.
func DefaultConfig() *Config {
	return &Config{
		Workers:        0,
		EnableParallel: true,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative", ErrInvalidConfig)
	}

	if c.Workers > maxWorkers {
		return fmt.Errorf("%w: too many workers (max %d)", ErrInvalidConfig, maxWorkers)
	}

	return nil
}

// New creates a kernel set with the specified configuration.
func New(config *Config) (*Kernels, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	workers := config.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if !config.EnableParallel {
		workers = 1
	}

	return &Kernels{
		workers:      workers,
		maxTableSize: config.MaxTableSize,
	}, nil
}
