package glyph

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedMode is returned when a Mode has no glyphs in the selected Table.
var ErrUnsupportedMode = errors.New("unsupported glyph mode")

// Mode selects where the combining marks stack relative to the base character.
type Mode uint8

const (
	Top Mode = iota
	Bottom
	Mirror
)

func (m Mode) String() string {
	switch m {
	case Top:
		return "top"
	case Bottom:
		return "bottom"
	case Mirror:
		return "mirror"
	}
	return fmt.Sprintf("mode(%d)", uint8(m))
}

// ParseMode accepts "top", "bottom", "mirror" and "both".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "top":
		return Top, nil
	case "bottom":
		return Bottom, nil
	case "mirror", "both":
		return Mirror, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedMode, s)
}

// Table identifies which set of combining mark ranges is compiled in.
// Classic predates the below-the-line marks and cannot build Bottom or Mirror.
type Table uint8

const (
	Standard Table = iota
	Classic
)

func (t Table) String() string {
	switch t {
	case Standard:
		return "standard"
	case Classic:
		return "classic"
	}
	return fmt.Sprintf("table(%d)", uint8(t))
}

// ParseTable accepts "standard" and "classic".
func ParseTable(s string) (Table, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard":
		return Standard, nil
	case "classic":
		return Classic, nil
	}
	return 0, fmt.Errorf("unknown glyph table %q", s)
}

// Supports reports whether NewPalette can build mode from this table.
func (t Table) Supports(m Mode) bool {
	switch m {
	case Top:
		return t == Standard || t == Classic
	case Bottom, Mirror:
		return t == Standard
	}
	return false
}

type runeRange struct{ lo, hi rune }

// Combining Diacritical Marks block (U+0300..U+036F), split by placement.
var (
	aboveMarks = []runeRange{
		{0x0300, 0x0315},
		{0x031A, 0x031B},
		{0x033D, 0x0344},
		{0x0346, 0x0346},
		{0x034A, 0x034C},
		{0x0351, 0x0351},
		{0x0363, 0x036F},
	}
	belowMarks = []runeRange{
		{0x0316, 0x0319},
		{0x031C, 0x0333},
		{0x0339, 0x033C},
		{0x0345, 0x0345},
		{0x0347, 0x0349},
		{0x034D, 0x034E},
		{0x0353, 0x0356},
	}
)

// Palette is the ordered, read-only set of combining glyphs for one Mode.
type Palette struct {
	mode   Mode
	glyphs []string
}

// NewPalette builds the palette for mode. Mirror is the Top sequence followed
// by the Bottom sequence.
func NewPalette(mode Mode, table Table) (*Palette, error) {
	if !table.Supports(mode) {
		return nil, fmt.Errorf("%w: %s in %s table", ErrUnsupportedMode, mode, table)
	}

	var glyphs []string
	switch mode {
	case Top:
		glyphs = appendRanges(glyphs, aboveMarks)
	case Bottom:
		glyphs = appendRanges(glyphs, belowMarks)
	case Mirror:
		glyphs = appendRanges(glyphs, aboveMarks)
		glyphs = appendRanges(glyphs, belowMarks)
	}
	return &Palette{mode: mode, glyphs: glyphs}, nil
}

func appendRanges(dst []string, ranges []runeRange) []string {
	for _, r := range ranges {
		for c := r.lo; c <= r.hi; c++ {
			dst = append(dst, string(c))
		}
	}
	return dst
}

func (p *Palette) Mode() Mode { return p.mode }
func (p *Palette) Len() int   { return len(p.glyphs) }

// At returns the glyph at index i.
func (p *Palette) At(i int) string { return p.glyphs[i] }

// Glyphs returns a copy of the palette contents.
func (p *Palette) Glyphs() []string {
	out := make([]string, len(p.glyphs))
	copy(out, p.glyphs)
	return out
}
