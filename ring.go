package luxpwm

import "fmt"

// SampleRing keeps the last Cap() filtered readings. Once full, every Push
// overwrites the oldest entry.
type SampleRing struct {
	buffer []float64
	idx    int
	count  int
}

// NewSampleRing returns an empty ring holding up to n samples.
func NewSampleRing(n int) (*SampleRing, error) {
	if n < 1 {
		return nil, fmt.Errorf("luxpwm: could not create sample ring of %d: %w", n, ErrInvalidCapacity)
	}

	return &SampleRing{
		buffer: make([]float64, n),
	}, nil
}

// Push stores v as the newest sample.
func (r *SampleRing) Push(v float64) {
	r.buffer[r.idx] = v
	r.idx++
	r.idx %= len(r.buffer)

	if r.count < len(r.buffer) {
		r.count++
	}
}

// Len returns the number of stored samples.
func (r *SampleRing) Len() int {
	return r.count
}

// Cap returns the capacity of the ring.
func (r *SampleRing) Cap() int {
	return len(r.buffer)
}

// Full reports whether the ring has wrapped at least once.
func (r *SampleRing) Full() bool {
	return r.count == len(r.buffer)
}

// Snapshot copies the stored samples into dst, oldest first, and returns the
// result. dst is reused when it has enough capacity. The result is never nil,
// an empty ring yields an empty slice.
func (r *SampleRing) Snapshot(dst []float64) []float64 {
	if dst == nil || cap(dst) < r.count {
		dst = make([]float64, r.count)
	}
	dst = dst[:r.count]

	start := 0
	if r.Full() {
		start = r.idx
	}
	n := copy(dst, r.buffer[start:r.count])
	copy(dst[n:], r.buffer[:start])

	return dst
}
