package glyph

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"unicode/utf8"
)

// ErrInvalidInput is returned by Enhance for mismatched lengths or counts
// that cannot be turned into a glyph total.
var ErrInvalidInput = errors.New("invalid glyph input")

// PlaceholderRune is the base character each column is drawn on.
const PlaceholderRune = '-'

// Placeholder returns the base text for n columns.
func Placeholder(n int) string {
	if n < 0 {
		n = 0
	}
	return strings.Repeat(string(PlaceholderRune), n)
}

// Generator stacks randomly sampled palette glyphs on base characters.
// It is not safe for concurrent use.
type Generator struct {
	palette *Palette
	rng     *rand.Rand
}

// NewGenerator returns a Generator drawing from p. A nil rng selects a
// randomly seeded source.
func NewGenerator(p *Palette, rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Generator{palette: p, rng: rng}
}

// Palette returns the palette the generator samples from.
func (g *Generator) Palette() *Palette { return g.palette }

// Enhance appends floor(counts[i]) glyphs to the i-th rune of base.
// Zero and NaN counts append nothing.
func (g *Generator) Enhance(base string, counts []float64) (string, error) {
	if n := utf8.RuneCountInString(base); n != len(counts) {
		return "", fmt.Errorf("%w: %d base characters for %d counts", ErrInvalidInput, n, len(counts))
	}

	total := 0
	for i, c := range counts {
		k, err := glyphCount(c)
		if err != nil {
			return "", fmt.Errorf("column %d: %w", i, err)
		}
		total += k
	}

	var b strings.Builder
	// Every glyph in the combining block encodes to two bytes.
	b.Grow(len(base) + total*2)

	i := 0
	for _, r := range base {
		b.WriteRune(r)
		k, _ := glyphCount(counts[i])
		g.writeStack(&b, k)
		i++
	}
	return b.String(), nil
}

func (g *Generator) writeStack(b *strings.Builder, k int) {
	n := g.palette.Len()
	for range k {
		b.WriteString(g.palette.glyphs[g.rng.IntN(n)])
	}
}

func glyphCount(c float64) (int, error) {
	switch {
	case c == 0 || math.IsNaN(c):
		return 0, nil
	case c < 0:
		return 0, fmt.Errorf("%w: negative count %v", ErrInvalidInput, c)
	case math.IsInf(c, 0):
		return 0, fmt.Errorf("%w: infinite count", ErrInvalidInput)
	}
	return int(math.Floor(c)), nil
}
