package analyser

import (
	"errors"
	"math"
	"testing"

	"github.com/olivier-w/zalgoplayer/internal/spectrum"
)

type stubMedia struct {
	samples []float64
}

func (m *stubMedia) RecentSamples(n int) []float64 {
	if n > len(m.samples) {
		n = len(m.samples)
	}
	return m.samples[len(m.samples)-n:]
}

func sine(n, bin, size int, amp float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * math.Sin(2*math.Pi*float64(bin)*float64(i)/float64(size))
	}
	return out
}

func attach(t *testing.T, m Media, opts Options) *Node {
	t.Helper()
	node, err := NewSource(m, opts).Attach()
	if err != nil {
		t.Fatalf("Attach() error = %v", err)
	}
	return node
}

func TestAttachOnlyOnce(t *testing.T) {
	src := NewSource(&stubMedia{}, DefaultOptions())
	if _, err := src.Attach(); err != nil {
		t.Fatalf("first Attach() error = %v", err)
	}
	if _, err := src.Attach(); !errors.Is(err, ErrAlreadyAttached) {
		t.Fatalf("expected ErrAlreadyAttached, got %v", err)
	}
}

func TestAttachRequiresMedia(t *testing.T) {
	_, err := NewSource(nil, DefaultOptions()).Attach()
	if !errors.Is(err, ErrNoMedia) {
		t.Fatalf("expected ErrNoMedia, got %v", err)
	}
}

func TestAttachRejectsBadOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.MinDecibels = opts.MaxDecibels
	if _, err := NewSource(&stubMedia{}, opts).Attach(); err == nil {
		t.Fatal("expected error for empty decibel range")
	}
}

func TestCaptureSilenceIsZero(t *testing.T) {
	node := attach(t, &stubMedia{samples: make([]float64, 256)}, DefaultOptions())

	mags, err := node.CaptureMagnitudes(64)
	if err != nil {
		t.Fatalf("CaptureMagnitudes() error = %v", err)
	}
	if len(mags) != 64 {
		t.Fatalf("expected 64 buckets, got %d", len(mags))
	}
	for i, m := range mags {
		if m != 0 {
			t.Fatalf("bucket %d: expected 0 for silence, got %d", i, m)
		}
	}
	if node.FFTSize() != 128 || node.FrequencyBinCount() != 64 {
		t.Fatalf("expected fft size 128 / 64 bins, got %d / %d", node.FFTSize(), node.FrequencyBinCount())
	}
}

func TestCaptureWithoutSamplesIsSilence(t *testing.T) {
	node := attach(t, &stubMedia{}, DefaultOptions())
	mags, err := node.CaptureMagnitudes(16)
	if err != nil {
		t.Fatalf("CaptureMagnitudes() error = %v", err)
	}
	for i, m := range mags {
		if m != 0 {
			t.Fatalf("bucket %d: expected 0, got %d", i, m)
		}
	}
}

func TestCapturePeaksAtToneBin(t *testing.T) {
	const size = 128
	opts := DefaultOptions()
	opts.SmoothingTimeConstant = 0
	node := attach(t, &stubMedia{samples: sine(size, 10, size, 1)}, opts)

	mags, err := node.CaptureMagnitudes(size / 2)
	if err != nil {
		t.Fatalf("CaptureMagnitudes() error = %v", err)
	}
	if mags[10] != 255 {
		t.Fatalf("expected full-scale tone bin, got %d", mags[10])
	}
	if mags[40] >= mags[10] {
		t.Fatalf("expected distant bin below tone bin, got %d vs %d", mags[40], mags[10])
	}
}

func TestCaptureSmoothingRampsUp(t *testing.T) {
	const size = 64
	media := &stubMedia{samples: make([]float64, size)}
	node := attach(t, media, DefaultOptions())

	if _, err := node.CaptureMagnitudes(size / 2); err != nil {
		t.Fatalf("CaptureMagnitudes() error = %v", err)
	}
	media.samples = sine(size, 4, size, 0.01)

	first, _ := node.CaptureMagnitudes(size / 2)
	var last []uint8
	for range 30 {
		last, _ = node.CaptureMagnitudes(size / 2)
	}
	if first[4] >= last[4] {
		t.Fatalf("expected smoothed bin to rise over time, got %d then %d", first[4], last[4])
	}
}

func TestCaptureRejectsInvalidBucketCount(t *testing.T) {
	node := attach(t, &stubMedia{}, DefaultOptions())
	for _, buckets := range []int{0, 8, 1 << 15} {
		if _, err := node.CaptureMagnitudes(buckets); !errors.Is(err, spectrum.ErrInvalidAnalysisSize) {
			t.Fatalf("buckets %d: expected ErrInvalidAnalysisSize, got %v", buckets, err)
		}
	}
}

func TestBlackmanWindowEndsAtZero(t *testing.T) {
	w := blackman(64)
	if math.Abs(w[0]) > 1e-12 {
		t.Fatalf("expected window to start at 0, got %v", w[0])
	}
	if math.Abs(w[32]-1) > 1e-12 {
		t.Fatalf("expected window peak 1 at center, got %v", w[32])
	}
}
