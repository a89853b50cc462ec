// Package pipeline holds the buffering used between a caller that delivers
// samples in arbitrary chunks and a consumer that needs fixed-size blocks.
package pipeline

import (
	"sync"
)

// Float is the sample type constraint of RingBuffer.
type Float interface {
	float32 | float64
}

// RingBuffer implements a growable circular buffer of samples.
// It is safe for concurrent use.
type RingBuffer[F Float] struct {
	data     []F
	capacity int
	size     int
	readPos  int
	writePos int
	mu       sync.Mutex
}

// NewRingBuffer creates a new ring buffer with the specified capacity.
func NewRingBuffer[F Float](capacity int) *RingBuffer[F] {
	if capacity < 1 {
		capacity = 1
	}

	return &RingBuffer[F]{
		data:     make([]F, capacity),
		capacity: capacity,
	}
}

// Write adds samples to the buffer.
// If the buffer doesn't have enough space, it will grow automatically.
func (b *RingBuffer[F]) Write(samples []F) {
	b.mu.Lock()
	defer b.mu.Unlock()

	needed := len(samples)
	if needed == 0 {
		return
	}

	if b.size+needed > b.capacity {
		b.grow(b.size + needed)
	}

	// At most two copies: up to the end of data, then from the start.
	n := copy(b.data[b.writePos:], samples)
	copy(b.data, samples[n:])
	b.writePos = (b.writePos + needed) % b.capacity
	b.size += needed
}

// ReadInto moves up to len(dst) samples into dst and returns how many were
// moved.
func (b *RingBuffer[F]) ReadInto(dst []F) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.peekLocked(dst)
	b.readPos = (b.readPos + n) % b.capacity
	b.size -= n
	if b.size == 0 {
		b.readPos, b.writePos = 0, 0
	}
	return n
}

func (b *RingBuffer[F]) peekLocked(dst []F) int {
	n := min(len(dst), b.size)
	if n == 0 {
		return 0
	}
	first := copy(dst[:n], b.data[b.readPos:min(b.readPos+n, b.capacity)])
	copy(dst[first:n], b.data[:n-first])
	return n
}

// Available returns the number of samples available for reading.
func (b *RingBuffer[F]) Available() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// Clear removes all samples from the buffer.
func (b *RingBuffer[F]) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.size = 0
	b.readPos = 0
	b.writePos = 0
}

// grow increases the buffer capacity to at least the specified size.
func (b *RingBuffer[F]) grow(minCapacity int) {
	newCapacity := b.capacity
	for newCapacity < minCapacity {
		newCapacity *= bufferGrowthFactor
	}

	newData := make([]F, newCapacity)
	b.peekLocked(newData[:b.size])

	b.data = newData
	b.capacity = newCapacity
	b.readPos = 0
	b.writePos = b.size
}
