package survey

const (
	sosRowLen = 6 // b0 b1 b2 a0 a1 a2

	// decibelFactor converts an amplitude ratio to dB.
	decibelFactor = 20

	// minMagnitude floors magnitudes before taking logarithms.
	minMagnitude = 1e-12
)
