package engine

// Second-order section layout.
const (
	// SectionStride is the number of coefficients per section: b0, b1, b2, a0, a1, a2.
	SectionStride = 6

	// StateStride is the number of state values per section: z0, z1.
	StateStride = 2

	// Offsets into one section's coefficient sextuple.
	coeffB0 = 0
	coeffB1 = 1
	coeffB2 = 2
	coeffA1 = 4
	coeffA2 = 5
)

// Spectrum estimator constants.
const (
	// DefaultMaxTableSize bounds the number of float64 entries (cos + sin)
	// the estimator may precompute per call: 1<<22 entries = 32 MiB.
	DefaultMaxTableSize = 1 << 22

	// tableMinChannels is the channel count from which shared cos/sin tables
	// pay for themselves; a single channel uses the phasor recurrence.
	tableMinChannels = 2

	// phasorResync is the number of samples between exact sin/cos
	// evaluations in the phasor recurrence, bounding rounding drift.
	phasorResync = 256
)

// Stacking reducer constants.
const (
	// minStackChunk is the smallest per-worker output range for which the
	// reducer partitions by output index instead of by segment.
	minStackChunk = 1024

	// stackCancelInterval is the number of segments between context checks.
	stackCancelInterval = 64
)
