package glyph

import (
	"errors"
	"math"
	"math/rand/v2"
	"strings"
	"testing"
	"unicode/utf8"
)

func newTestGenerator(t *testing.T, mode Mode, seed uint64) *Generator {
	t.Helper()
	p, err := NewPalette(mode, Standard)
	if err != nil {
		t.Fatalf("NewPalette() error = %v", err)
	}
	return NewGenerator(p, rand.New(rand.NewPCG(seed, seed)))
}

// columns splits a rendered frame back into base rune + glyph runs.
func columns(s string) []string {
	var cols []string
	for _, r := range s {
		if r == PlaceholderRune {
			cols = append(cols, "")
		}
		cols[len(cols)-1] += string(r)
	}
	return cols
}

func TestEnhanceAppendsFlooredCounts(t *testing.T) {
	g := newTestGenerator(t, Top, 1)

	out, err := g.Enhance("----", []float64{0, 5.02, 10, 2.51})
	if err != nil {
		t.Fatalf("Enhance() error = %v", err)
	}

	cols := columns(out)
	want := []int{1, 6, 11, 3}
	if len(cols) != len(want) {
		t.Fatalf("expected %d columns, got %d", len(want), len(cols))
	}
	for i, c := range cols {
		if got := utf8.RuneCountInString(c); got != want[i] {
			t.Fatalf("column %d: expected %d runes, got %d", i, want[i], got)
		}
	}
}

func TestEnhanceOutputLengthMatchesCounts(t *testing.T) {
	g := newTestGenerator(t, Mirror, 7)
	counts := []float64{3.9, 0, 1, 12.2, 0.5, 7}
	base := "abcdef"

	out, err := g.Enhance(base, counts)
	if err != nil {
		t.Fatalf("Enhance() error = %v", err)
	}

	wantLen := 0
	for _, c := range counts {
		wantLen += 1 + int(math.Floor(c))
	}
	runes := []rune(out)
	if len(runes) != wantLen {
		t.Fatalf("expected %d runes, got %d", wantLen, len(runes))
	}

	offset := 0
	for i, r := range base {
		if runes[offset] != r {
			t.Fatalf("expected base %q at offset %d, got %q", r, offset, runes[offset])
		}
		offset += 1 + int(math.Floor(counts[i]))
	}
}

func TestEnhanceTreatsNaNAsZero(t *testing.T) {
	g := newTestGenerator(t, Top, 3)
	out, err := g.Enhance("--", []float64{math.NaN(), 0})
	if err != nil {
		t.Fatalf("Enhance() error = %v", err)
	}
	if out != "--" {
		t.Fatalf("expected bare base text, got %q", out)
	}
}

func TestEnhanceRejectsLengthMismatch(t *testing.T) {
	g := newTestGenerator(t, Top, 3)
	_, err := g.Enhance("---", []float64{1, 2})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestEnhanceRejectsNegativeAndInfiniteCounts(t *testing.T) {
	g := newTestGenerator(t, Top, 3)
	for _, c := range []float64{-0.5, -3, math.Inf(1), math.Inf(-1)} {
		if _, err := g.Enhance("-", []float64{c}); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("count %v: expected ErrInvalidInput, got %v", c, err)
		}
	}
}

func TestEnhanceDrawsFromPalette(t *testing.T) {
	g := newTestGenerator(t, Bottom, 11)
	allowed := make(map[rune]bool)
	for _, s := range g.Palette().Glyphs() {
		allowed[[]rune(s)[0]] = true
	}

	out, err := g.Enhance("-", []float64{200})
	if err != nil {
		t.Fatalf("Enhance() error = %v", err)
	}
	for i, r := range []rune(out)[1:] {
		if !allowed[r] {
			t.Fatalf("glyph %d (%U) not in bottom palette", i, r)
		}
	}
}

func TestEnhanceResamplesGlyphIdentities(t *testing.T) {
	g := newTestGenerator(t, Top, 42)
	counts := []float64{30, 30, 30}

	first, err := g.Enhance("---", counts)
	if err != nil {
		t.Fatalf("Enhance() error = %v", err)
	}
	second, err := g.Enhance("---", counts)
	if err != nil {
		t.Fatalf("Enhance() error = %v", err)
	}

	if utf8.RuneCountInString(first) != utf8.RuneCountInString(second) {
		t.Fatalf("expected equal rune counts, got %d and %d",
			utf8.RuneCountInString(first), utf8.RuneCountInString(second))
	}
	if first == second {
		t.Fatal("expected re-rendered glyph identities to differ")
	}
}

func TestEnhanceIsReproducibleWithSameSeed(t *testing.T) {
	a := newTestGenerator(t, Mirror, 99)
	b := newTestGenerator(t, Mirror, 99)
	counts := []float64{4, 8, 2}

	outA, _ := a.Enhance("---", counts)
	outB, _ := b.Enhance("---", counts)
	if outA != outB {
		t.Fatalf("expected identical frames for identical seeds:\n%q\n%q", outA, outB)
	}
}

func TestPlaceholder(t *testing.T) {
	if got := Placeholder(4); got != "----" {
		t.Fatalf("expected %q, got %q", "----", got)
	}
	if got := Placeholder(-1); got != "" {
		t.Fatalf("expected empty placeholder, got %q", got)
	}
	if !strings.HasPrefix(Placeholder(64), "--") {
		t.Fatal("expected placeholder of dashes")
	}
}
