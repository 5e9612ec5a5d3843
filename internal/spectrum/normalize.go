package spectrum

import (
	"errors"
	"fmt"
)

const (
	// MinAnalysisSize and MaxAnalysisSize bound the FFT size (2^5..2^15).
	MinAnalysisSize = 1 << 5
	MaxAnalysisSize = 1 << 15

	fullScale = 255
)

// ErrInvalidAnalysisSize is returned for FFT sizes that are odd or out of range.
var ErrInvalidAnalysisSize = errors.New("invalid analysis size")

// AnalysisSize returns the FFT size that yields columns frequency buckets.
func AnalysisSize(columns int) int {
	return columns * 2
}

// ValidateAnalysisSize checks that size is positive, even and within
// [MinAnalysisSize, MaxAnalysisSize].
func ValidateAnalysisSize(size int) error {
	if size <= 0 || size%2 != 0 || size < MinAnalysisSize || size > MaxAnalysisSize {
		return fmt.Errorf("%w: %d (expected an even size in [%d, %d])",
			ErrInvalidAnalysisSize, size, MinAnalysisSize, MaxAnalysisSize)
	}
	return nil
}

// Normalize scales byte magnitudes into [0, maxPerColumn].
func Normalize(magnitudes []uint8, maxPerColumn int) []float64 {
	return NormalizeInto(make([]float64, len(magnitudes)), magnitudes, maxPerColumn)
}

// NormalizeInto is Normalize writing into dst, which must be at least as
// long as magnitudes. It returns dst[:len(magnitudes)].
func NormalizeInto(dst []float64, magnitudes []uint8, maxPerColumn int) []float64 {
	dst = dst[:len(magnitudes)]
	scale := float64(maxPerColumn)
	for i, m := range magnitudes {
		dst[i] = float64(m) * scale / fullScale
	}
	return dst
}
