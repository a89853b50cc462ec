package geodsp

import "github.com/tphakala/go-geodsp/internal/engine"

// Execution limits
const (
	maxWorkers = 1024 // Maximum configurable worker count
)

// SOS layout, re-exported for callers sizing their buffers.
const (
	// CoefficientsPerSection is the number of SOS entries per section:
	// b0, b1, b2, a0, a1, a2.
	CoefficientsPerSection = engine.SectionStride

	// StatePerSection is the number of state values per section and channel.
	StatePerSection = engine.StateStride
)

// Coefficient row offsets
const (
	coeffA0 = 3 // Leading denominator coefficient, must be 1
)
