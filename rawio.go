package geodsp

import "github.com/tphakala/go-geodsp/internal/rawio"

// Raw file errors.
var (
	// ErrOpenFailed indicates that a raw sample file could not be opened.
	ErrOpenFailed = rawio.ErrOpenFailed

	// ErrEmptyRead indicates that a raw sample file held no complete sample.
	ErrEmptyRead = rawio.ErrEmptyRead
)

// LoadRawSamples reads up to len(buffer) little-endian float32 samples from
// the start of the file at path into buffer and returns how many complete
// samples were read. The file may be shorter than buffer; elements past the
// returned count are left unchanged.
//
// A file that cannot be opened fails with ErrOpenFailed; a file from which no
// complete sample can be read fails with ErrEmptyRead.
func LoadRawSamples(path string, buffer []float32) (int, error) {
	return rawio.Load(path, buffer)
}

// WriteRawSamples writes samples to path as contiguous little-endian float32,
// the layout LoadRawSamples reads.
func WriteRawSamples(path string, samples []float32) error {
	return rawio.Save(path, samples)
}
