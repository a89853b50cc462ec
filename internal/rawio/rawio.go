// Package rawio reads and writes headerless files of little-endian float32
// samples, the interchange format of the acquisition front end.
package rawio

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

// SampleSize is the number of bytes per stored sample.
const SampleSize = 4

// ioBufferSize is the size of the bufio buffers wrapped around files.
const ioBufferSize = 64 * 1024

var (
	// ErrOpenFailed indicates that the file could not be opened.
	ErrOpenFailed = errors.New("cannot open raw sample file")

	// ErrEmptyRead indicates that the file was opened but not a single
	// complete sample could be read, including when the first read fails.
	ErrEmptyRead = errors.New("no samples read")
)

// Load fills buffer with up to len(buffer) samples from the start of the file
// at path and returns the number of complete samples read. A trailing partial
// sample is ignored. Elements of buffer past the returned count are left
// unchanged.
func Load(path string, buffer []float32) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrOpenFailed, err)
	}
	defer f.Close()

	n, err := NewReader(f).Read(buffer)
	if err != nil && !errors.Is(err, io.EOF) {
		if n == 0 {
			return 0, fmt.Errorf("%w: %s: %w", ErrEmptyRead, path, err)
		}
		return n, fmt.Errorf("read %s: %w", path, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: %s", ErrEmptyRead, path)
	}
	return n, nil
}

// Save writes samples to path, replacing any existing file, so that Load
// returns them unchanged.
func Save(path string, samples []float32) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := NewWriter(f)
	if err := w.Write(samples); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// Reader decodes little-endian float32 samples from an io.Reader.
type Reader struct {
	r   *bufio.Reader
	buf [SampleSize]byte
}

// NewReader wraps r in a buffered sample reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReaderSize(r, ioBufferSize)}
}

// Read decodes up to len(dst) samples into dst. It returns the number of
// complete samples decoded and io.EOF once the stream is exhausted. A partial
// sample at end of stream is dropped.
func (r *Reader) Read(dst []float32) (int, error) {
	for i := range dst {
		if _, err := io.ReadFull(r.r, r.buf[:]); err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) {
				err = io.EOF
			}
			return i, err
		}
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(r.buf[:]))
	}
	return len(dst), nil
}

// Writer encodes float32 samples in little-endian order.
type Writer struct {
	w   *bufio.Writer
	buf [SampleSize]byte
}

// NewWriter wraps w in a buffered sample writer. Call Flush when done.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriterSize(w, ioBufferSize)}
}

// Write encodes samples.
func (w *Writer) Write(samples []float32) error {
	for _, s := range samples {
		binary.LittleEndian.PutUint32(w.buf[:], math.Float32bits(s))
		if _, err := w.w.Write(w.buf[:]); err != nil {
			return err
		}
	}
	return nil
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}
