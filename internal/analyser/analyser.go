// Package analyser turns the audio currently playing into byte frequency
// snapshots, the way a browser AnalyserNode does: Blackman window, FFT,
// temporal smoothing and a decibel range mapped onto 0..255.
package analyser

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/olivier-w/zalgoplayer/internal/spectrum"
	"gonum.org/v1/gonum/dsp/fourier"
)

var (
	ErrNoMedia         = errors.New("no media to analyse")
	ErrAlreadyAttached = errors.New("analysis graph already attached")
)

// Media is the playing audio an analysis graph listens to.
type Media interface {
	// RecentSamples returns up to n of the most recently played mono
	// samples in [-1, 1], oldest first.
	RecentSamples(n int) []float64
}

// Options tune the analysis.
type Options struct {
	// SmoothingTimeConstant blends each snapshot with the previous one (0..1).
	SmoothingTimeConstant float64
	// MinDecibels maps to byte 0, MaxDecibels to byte 255.
	MinDecibels float64
	MaxDecibels float64
}

// DefaultOptions match the browser AnalyserNode defaults.
func DefaultOptions() Options {
	return Options{
		SmoothingTimeConstant: 0.8,
		MinDecibels:           -100,
		MaxDecibels:           -30,
	}
}

func (o Options) validate() error {
	if o.SmoothingTimeConstant < 0 || o.SmoothingTimeConstant > 1 {
		return fmt.Errorf("smoothing time constant %v outside [0, 1]", o.SmoothingTimeConstant)
	}
	if o.MinDecibels >= o.MaxDecibels {
		return fmt.Errorf("min decibels %v must be below max decibels %v", o.MinDecibels, o.MaxDecibels)
	}
	return nil
}

// Source builds the analysis graph for one media handle, exactly once.
type Source struct {
	media Media
	opts  Options
	node  *Node
}

// NewSource binds media to a not yet attached Source.
func NewSource(media Media, opts Options) *Source {
	return &Source{media: media, opts: opts}
}

// Attach constructs the analysis node. It fails without media and on any
// call after the first successful one.
func (s *Source) Attach() (*Node, error) {
	if s.node != nil {
		return nil, ErrAlreadyAttached
	}
	if s.media == nil {
		return nil, ErrNoMedia
	}
	if err := s.opts.validate(); err != nil {
		return nil, err
	}
	s.node = &Node{media: s.media, opts: s.opts}
	return s.node, nil
}

// Node computes frequency snapshots from the media's recent samples.
// It is not safe for concurrent use.
type Node struct {
	media Media
	opts  Options

	fftSize  int
	fft      *fourier.FFT
	window   []float64
	frame    []float64
	coeffs   []complex128
	smoothed []float64
}

// SetFFTSize reconfigures the transform. Changing size drops the smoothing
// history.
func (n *Node) SetFFTSize(size int) error {
	if err := spectrum.ValidateAnalysisSize(size); err != nil {
		return err
	}
	if size == n.fftSize {
		return nil
	}
	n.fftSize = size
	n.fft = fourier.NewFFT(size)
	n.window = blackman(size)
	n.frame = make([]float64, size)
	n.coeffs = make([]complex128, size/2+1)
	n.smoothed = make([]float64, size/2)
	return nil
}

func (n *Node) FFTSize() int { return n.fftSize }

// FrequencyBinCount is half the FFT size.
func (n *Node) FrequencyBinCount() int { return n.fftSize / 2 }

// CaptureMagnitudes returns bucketCount byte magnitudes for the most recent
// 2*bucketCount samples.
func (n *Node) CaptureMagnitudes(bucketCount int) ([]uint8, error) {
	if err := n.SetFFTSize(spectrum.AnalysisSize(bucketCount)); err != nil {
		return nil, err
	}
	out := make([]uint8, bucketCount)
	n.byteFrequencyData(out)
	return out, nil
}

func (n *Node) byteFrequencyData(dst []uint8) {
	samples := n.media.RecentSamples(n.fftSize)

	// Left-pad with silence when less than a full frame has played.
	pad := n.fftSize - len(samples)
	for i := range n.frame {
		v := 0.0
		if i >= pad {
			v = samples[i-pad]
		}
		n.frame[i] = v * n.window[i]
	}

	n.coeffs = n.fft.Coefficients(n.coeffs, n.frame)

	tau := n.opts.SmoothingTimeConstant
	rangeScale := 255 / (n.opts.MaxDecibels - n.opts.MinDecibels)
	scale := 1 / float64(n.fftSize)
	for k := range dst {
		mag := cmplx.Abs(n.coeffs[k]) * scale
		n.smoothed[k] = tau*n.smoothed[k] + (1-tau)*mag
		dst[k] = toByte((linearToDecibels(n.smoothed[k]) - n.opts.MinDecibels) * rangeScale)
	}
}

func linearToDecibels(v float64) float64 {
	if v <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(v)
}

func toByte(v float64) uint8 {
	switch {
	case math.IsNaN(v), v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v)
}

// blackman is the periodic Blackman window the browser analyser applies.
func blackman(size int) []float64 {
	const (
		alpha = 0.16
		a0    = 0.5 * (1 - alpha)
		a1    = 0.5
		a2    = 0.5 * alpha
	)
	w := make([]float64, size)
	for i := range w {
		x := float64(i) / float64(size)
		w[i] = a0 - a1*math.Cos(2*math.Pi*x) + a2*math.Cos(4*math.Pi*x)
	}
	return w
}
