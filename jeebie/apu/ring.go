package apu

import "sync/atomic"

// Ring is a lock-free single-producer/single-consumer ring buffer of
// interleaved stereo samples (L,R int16 pairs). The emulation thread is the
// sole producer (Push); the host audio callback is the sole consumer
// (Drain) — this is the one structure in the core that crosses threads.
// Capacity is fixed at construction to the next power of two at least as
// large as the requested frame count (spec: sample_rate/25, ~40ms).
type Ring struct {
	buf      []int16 // len == capacity*2, interleaved L,R
	mask     uint64  // capacity-1
	writeIdx atomic.Uint64
	readIdx  atomic.Uint64
	lastL    atomic.Int32
	lastR    atomic.Int32
}

// NewRing creates a ring sized to the next power of two at least
// capacityFrames stereo frames.
func NewRing(capacityFrames int) *Ring {
	if capacityFrames < 1 {
		capacityFrames = 1
	}
	cap := nextPow2(capacityFrames)
	return &Ring{buf: make([]int16, cap*2), mask: uint64(cap - 1)}
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// Push is called by the emulation thread once per resampled stereo frame.
// It never blocks: if the consumer has fallen behind, the oldest unread
// frame is dropped to make room.
func (r *Ring) Push(left, right int16) {
	w := r.writeIdx.Load()
	read := r.readIdx.Load()
	if w-read >= uint64(len(r.buf)/2) {
		r.readIdx.Store(read + 1)
	}

	i := (w & r.mask) * 2
	r.buf[i] = left
	r.buf[i+1] = right
	r.lastL.Store(int32(left))
	r.lastR.Store(int32(right))
	r.writeIdx.Store(w + 1)
}

// Drain fills dst (interleaved L,R, len(dst) must be even) with
// len(dst)/2 stereo frames. On underflow the remaining frames repeat the
// last known output so silence does not click.
func (r *Ring) Drain(dst []int16) {
	n := len(dst) / 2
	read := r.readIdx.Load()
	write := r.writeIdx.Load()
	available := write - read
	lastL := int16(r.lastL.Load())
	lastR := int16(r.lastR.Load())

	for i := 0; i < n; i++ {
		if uint64(i) < available {
			idx := ((read + uint64(i)) & r.mask) * 2
			dst[i*2] = r.buf[idx]
			dst[i*2+1] = r.buf[idx+1]
		} else {
			dst[i*2] = lastL
			dst[i*2+1] = lastR
		}
	}

	advance := available
	if uint64(n) < advance {
		advance = uint64(n)
	}
	r.readIdx.Store(read + advance)
}
