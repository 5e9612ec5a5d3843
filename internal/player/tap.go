package player

import "sync"

// Tap is a thread-safe ring of the most recent mono samples handed to the
// audio device. The analysis graph reads from it on every frame.
type Tap struct {
	mu   sync.Mutex
	buf  []float64
	w    int // write position
	fill int
}

// NewTap creates a tap holding up to size samples.
func NewTap(size int) *Tap {
	return &Tap{buf: make([]float64, size)}
}

// Write appends a mono mix of frames, overwriting the oldest samples if full.
func (t *Tap) Write(frames [][2]float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	size := len(t.buf)
	for _, f := range frames {
		t.buf[t.w] = (f[0] + f[1]) / 2
		t.w = (t.w + 1) % size
	}
	t.fill = min(t.fill+len(frames), size)
}

// RecentSamples returns up to n most recent samples, oldest first.
func (t *Tap) RecentSamples(n int) []float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	n = min(n, t.fill)
	if n <= 0 {
		return nil
	}

	size := len(t.buf)
	out := make([]float64, n)
	start := (t.w - n + size) % size
	for i := range n {
		out[i] = t.buf[(start+i)%size]
	}
	return out
}

// Clear forgets everything written so far.
func (t *Tap) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.w = 0
	t.fill = 0
}
