package quant

import (
	"errors"
	"fmt"
	"image/color"
	"slices"

	"github.com/gogpu/spritegif/raster"
)

// Errors returned by the quantizer.
var (
	// ErrEmptyPalette is returned when remapping onto a palette with no entries.
	ErrEmptyPalette = errors.New("quant: empty palette")

	// ErrIndexOutOfRange is returned when an indexed pixel has no palette entry.
	ErrIndexOutOfRange = errors.New("quant: pixel index outside palette")
)

// Options configures Quantize.
type Options struct {
	// MaxColors caps the palette size, including the transparent entry.
	// Values outside [1, 256] mean 256.
	MaxColors int

	// ReserveTransparent keeps index 0 for transparency even when no pixel
	// is transparent, so every frame of a sprite agrees on the slot. An
	// opaque frame whose colors need every entry gets them instead and
	// reports no transparent entry.
	ReserveTransparent bool
}

// Result is an indexed frame ready for the GIF encoder.
type Result struct {
	Image       *raster.Image
	Palette     *raster.Palette
	Transparent int // -1 when the frame has no transparent entry

	// Exact reports that every opaque color got its own entry.
	Exact bool
}

// Quantize converts an RGB raster into an indexed raster and palette.
// Pixels with alpha 0 map to index 0 whatever their RGB channels; any other
// alpha counts as opaque.
func Quantize(img *raster.Image, opts Options) (*Result, error) {
	if img.Mode() != raster.ModeRGB {
		return nil, fmt.Errorf("quant: quantize %s image: %w", img.Mode(), raster.ErrModeMismatch)
	}
	maxColors := opts.MaxColors
	if maxColors < 1 || maxColors > raster.MaxPaletteSize {
		maxColors = raster.MaxPaletteSize
	}

	counts := make(map[uint32]int)
	var order []uint32
	hasTransparent := false
	w, h := img.Width(), img.Height()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := img.NRGBAAt(x, y)
			if c.A == 0 {
				hasTransparent = true
				continue
			}
			k := packRGB(c)
			if counts[k] == 0 {
				order = append(order, k)
			}
			counts[k]++
		}
	}

	reserve := hasTransparent || (opts.ReserveTransparent && len(order) < maxColors)
	budget := maxColors
	if reserve {
		budget--
	}
	if budget < 1 && len(order) > 0 {
		budget = 1
	}

	var colors []color.NRGBA
	exact := len(order) <= budget
	if exact {
		colors = make([]color.NRGBA, len(order))
		for i, k := range order {
			colors[i] = unpackRGB(k)
		}
	} else {
		buckets := make([]bucket, 0, len(order))
		for _, k := range order {
			c := unpackRGB(k)
			buckets = append(buckets, bucket{key: k, rgb: [3]uint8{c.R, c.G, c.B}, n: counts[k]})
		}
		slices.SortFunc(buckets, func(a, b bucket) int { return int(a.key) - int(b.key) })
		colors = medianCut(buckets, budget)
	}

	res := &Result{Transparent: -1, Exact: exact}
	entries := colors
	offset := 0
	if reserve {
		entries = append([]color.NRGBA{{}}, colors...)
		res.Transparent = 0
		offset = 1
	}
	pal, err := raster.PaletteFromColors(entries...)
	if err != nil {
		return nil, err
	}
	res.Palette = pal

	out, err := raster.NewImage(raster.ModeIndexed, w, h)
	if err != nil {
		return nil, err
	}
	var lookup func(color.NRGBA) uint8
	if exact {
		index := make(map[uint32]uint8, len(order))
		for i, k := range order {
			index[k] = uint8(i + offset)
		}
		lookup = func(c color.NRGBA) uint8 { return index[packRGB(c)] }
	} else {
		lookup = NewMapper(pal, res.Transparent).Index
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := img.NRGBAAt(x, y)
			if c.A == 0 {
				continue // index 0 is the transparent entry
			}
			out.SetIndex(x, y, lookup(c))
		}
	}
	res.Image = out
	return res, nil
}

// Remap converts an RGB raster onto a fixed palette without changing it.
// Pixels with alpha 0 take the transparent index when transparent >= 0;
// everything else takes the nearest entry other than transparent.
func Remap(img *raster.Image, pal *raster.Palette, transparent int) (*raster.Image, error) {
	if img.Mode() != raster.ModeRGB {
		return nil, fmt.Errorf("quant: remap %s image: %w", img.Mode(), raster.ErrModeMismatch)
	}
	if pal.Len() == 0 {
		return nil, ErrEmptyPalette
	}
	if transparent >= pal.Len() {
		transparent = -1
	}
	out, err := raster.NewImage(raster.ModeIndexed, img.Width(), img.Height())
	if err != nil {
		return nil, err
	}
	m := NewMapper(pal, transparent)
	for y := 0; y < img.Height(); y++ {
		for x := 0; x < img.Width(); x++ {
			c := img.NRGBAAt(x, y)
			if c.A == 0 && transparent >= 0 {
				out.SetIndex(x, y, uint8(transparent))
				continue
			}
			out.SetIndex(x, y, m.Index(c))
		}
	}
	return out, nil
}

// Expand converts an indexed raster to RGB through pal. The transparent
// index (when >= 0) becomes alpha 0.
func Expand(img *raster.Image, pal *raster.Palette, transparent int) (*raster.Image, error) {
	if img.Mode() != raster.ModeIndexed {
		return nil, fmt.Errorf("quant: expand %s image: %w", img.Mode(), raster.ErrModeMismatch)
	}
	out, err := raster.NewImage(raster.ModeRGB, img.Width(), img.Height())
	if err != nil {
		return nil, err
	}
	for y := 0; y < img.Height(); y++ {
		for x := 0; x < img.Width(); x++ {
			idx := int(img.IndexAt(x, y))
			if idx == transparent {
				continue
			}
			if idx >= pal.Len() {
				return nil, fmt.Errorf("%w: index %d at (%d,%d), palette has %d entries",
					ErrIndexOutOfRange, idx, x, y, pal.Len())
			}
			c := pal.At(idx)
			c.A = 0xff
			out.SetNRGBA(x, y, c)
		}
	}
	return out, nil
}

// CheckIndices verifies that every pixel of an indexed raster addresses an
// entry of pal.
func CheckIndices(img *raster.Image, pal *raster.Palette) error {
	n := pal.Len()
	for y := 0; y < img.Height(); y++ {
		for x := 0; x < img.Width(); x++ {
			if idx := int(img.IndexAt(x, y)); idx >= n {
				return fmt.Errorf("%w: index %d at (%d,%d), palette has %d entries",
					ErrIndexOutOfRange, idx, x, y, n)
			}
		}
	}
	return nil
}
