package runtime

import "sync/atomic"

// RingBuffer is a single-producer single-consumer lock-free queue of
// interleaved stereo float32 frames. The render Worker is the sole writer;
// Runtime.Callback, invoked from the audio host's real-time thread, is the
// sole reader. Neither side ever blocks or allocates once the ring is built,
// which is the property spec.md §4.5 requires of the audio callback path.
type RingBuffer struct {
	buf   []float32 // capacity is a power of two, in samples (2 per frame)
	mask  uint32
	write atomic.Uint32
	read  atomic.Uint32
}

// NewRingBuffer allocates a ring holding capacityFrames stereo frames.
// capacityFrames is rounded up to the next power of two.
func NewRingBuffer(capacityFrames int) *RingBuffer {
	n := 1
	for n < capacityFrames {
		n <<= 1
	}
	return &RingBuffer{
		buf:  make([]float32, n*2),
		mask: uint32(n*2 - 1),
	}
}

// FramesAvailable reports how many stereo frames are queued for the reader.
func (r *RingBuffer) FramesAvailable() int {
	w := r.write.Load()
	rd := r.read.Load()
	return int(w-rd) / 2
}

// FreeFrames reports how many stereo frames can still be written without
// overwriting unread data.
func (r *RingBuffer) FreeFrames() int {
	return (len(r.buf) - int(r.write.Load()-r.read.Load())) / 2
}

// Write copies as many interleaved stereo samples from frames as will fit,
// returning the number of frames actually written. It never blocks: when the
// ring is full it simply writes fewer frames, leaving the rest for the next
// call (the Worker retries).
func (r *RingBuffer) Write(frames []float32) int {
	free := r.FreeFrames() * 2
	n := len(frames)
	if n > free {
		n = free
	}
	n -= n % 2
	w := r.write.Load()
	for i := 0; i < n; i++ {
		r.buf[(w+uint32(i))&r.mask] = frames[i]
	}
	r.write.Store(w + uint32(n))
	return n / 2
}

// Read copies as many interleaved stereo samples as are available into out,
// returning the number of frames actually read. It never blocks: on
// underrun it returns fewer frames (the caller zero-fills the remainder).
func (r *RingBuffer) Read(out []float32) int {
	avail := r.FramesAvailable() * 2
	n := len(out)
	if n > avail {
		n = avail
	}
	n -= n % 2
	rd := r.read.Load()
	for i := 0; i < n; i++ {
		out[i] = r.buf[(rd+uint32(i))&r.mask]
	}
	r.read.Store(rd + uint32(n))
	return n / 2
}
