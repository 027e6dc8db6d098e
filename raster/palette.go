package raster

import (
	"errors"
	"image/color"
)

// MaxPaletteSize is the largest number of entries a GIF color table holds.
const MaxPaletteSize = 256

// ErrPaletteTooLarge is returned when a palette would exceed MaxPaletteSize.
var ErrPaletteTooLarge = errors.New("raster: palette exceeds 256 entries")

// Palette is an ordered list of at most 256 colors.
// The position of an entry is its pixel index.
type Palette struct {
	entries []color.NRGBA
}

// NewPalette creates a palette of n opaque black entries.
func NewPalette(n int) (*Palette, error) {
	if n < 0 || n > MaxPaletteSize {
		return nil, ErrPaletteTooLarge
	}
	p := &Palette{entries: make([]color.NRGBA, n)}
	for i := range p.entries {
		p.entries[i].A = 0xff
	}
	return p, nil
}

// PaletteFromColors builds a palette from a list of colors, in order.
func PaletteFromColors(colors ...color.NRGBA) (*Palette, error) {
	if len(colors) > MaxPaletteSize {
		return nil, ErrPaletteTooLarge
	}
	entries := make([]color.NRGBA, len(colors))
	copy(entries, colors)
	return &Palette{entries: entries}, nil
}

// Len returns the number of entries.
func (p *Palette) Len() int {
	if p == nil {
		return 0
	}
	return len(p.entries)
}

// At returns entry i, or the zero color when i is out of range.
func (p *Palette) At(i int) color.NRGBA {
	if i < 0 || i >= p.Len() {
		return color.NRGBA{}
	}
	return p.entries[i]
}

// Set replaces entry i. Setting past the end grows the palette up to 256
// entries, filling the gap with opaque black.
func (p *Palette) Set(i int, c color.NRGBA) error {
	if i < 0 || i >= MaxPaletteSize {
		return ErrPaletteTooLarge
	}
	if i >= len(p.entries) {
		if err := p.Resize(i + 1); err != nil {
			return err
		}
	}
	p.entries[i] = c
	return nil
}

// Resize truncates or grows the palette. New entries are opaque black.
func (p *Palette) Resize(n int) error {
	if n < 0 || n > MaxPaletteSize {
		return ErrPaletteTooLarge
	}
	if n <= len(p.entries) {
		p.entries = p.entries[:n]
		return nil
	}
	for len(p.entries) < n {
		p.entries = append(p.entries, color.NRGBA{A: 0xff})
	}
	return nil
}

// Padded returns a copy with at least n entries.
func (p *Palette) Padded(n int) *Palette {
	c := p.Clone()
	if n > c.Len() {
		_ = c.Resize(n)
	}
	return c
}

// Clone returns a deep copy.
func (p *Palette) Clone() *Palette {
	if p == nil {
		return &Palette{}
	}
	entries := make([]color.NRGBA, len(p.entries))
	copy(entries, p.entries)
	return &Palette{entries: entries}
}

// Equal reports whether both palettes hold the same entries in the same order.
func (p *Palette) Equal(o *Palette) bool {
	if p.Len() != o.Len() {
		return false
	}
	for i := 0; i < p.Len(); i++ {
		if p.entries[i] != o.entries[i] {
			return false
		}
	}
	return true
}

// EqualRGB is like Equal but ignores the alpha channel, which GIF does not store.
func (p *Palette) EqualRGB(o *Palette) bool {
	if p.Len() != o.Len() {
		return false
	}
	for i := 0; i < p.Len(); i++ {
		a, b := p.entries[i], o.entries[i]
		if a.R != b.R || a.G != b.G || a.B != b.B {
			return false
		}
	}
	return true
}
