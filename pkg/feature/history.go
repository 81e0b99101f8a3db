package feature

// DefaultCapacity bounds the history when no explicit capacity is given.
const DefaultCapacity = 1000

// History is a fixed-capacity, insertion-ordered buffer of Samples. When
// full, the oldest sample is evicted (strict FIFO). It is owned by a single
// control loop and is not safe for concurrent use.
type History struct {
	buf  []Sample
	head int
	size int
}

// NewHistory creates a History holding at most capacity samples. A capacity
// of zero or less falls back to DefaultCapacity.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &History{buf: make([]Sample, capacity)}
}

// Append adds a sample, evicting the oldest one if the buffer is full. O(1).
func (h *History) Append(s Sample) {
	if h.size < len(h.buf) {
		h.buf[(h.head+h.size)%len(h.buf)] = s
		h.size++
		return
	}
	h.buf[h.head] = s
	h.head = (h.head + 1) % len(h.buf)
}

// Len returns the number of samples currently held.
func (h *History) Len() int {
	return h.size
}

// Cap returns the fixed capacity.
func (h *History) Cap() int {
	return len(h.buf)
}

// Snapshot returns the samples oldest-first as a fresh slice. Later appends
// do not mutate a snapshot already handed out.
func (h *History) Snapshot() []Sample {
	out := make([]Sample, h.size)
	for i := range out {
		out[i] = h.buf[(h.head+i)%len(h.buf)]
	}
	return out
}
