package spritegif

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/gogpu/spritegif/internal/composite"
	"github.com/gogpu/spritegif/internal/gif"
	"github.com/gogpu/spritegif/internal/quant"
	"github.com/gogpu/spritegif/raster"
)

// Decode reads a GIF stream into an indexed sprite.
//
// The sprite has one image layer with a full-canvas cel per frame; frames
// stored as sub-rectangles are composited honoring their disposal. The layer
// is a background layer when the first frame has no transparent color.
// Pixels kept from earlier frames are moved into each frame's palette, which
// grows as needed; when a palette would pass 256 entries the sprite is RGB.
// A malformed stream yields an error wrapping ErrFormat and no sprite.
func (c *Codec) Decode(r io.Reader) (*Sprite, error) {
	file, err := gif.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("spritegif: decode: %w", err)
	}
	s, err := c.reconstruct(file)
	if err != nil {
		return nil, fmt.Errorf("spritegif: decode: %w", err)
	}
	Logger().Info("spritegif: decoded sprite",
		"width", s.Width,
		"height", s.Height,
		"frames", s.FrameCount(),
		"background", s.BackgroundLayer() != nil)
	return s, nil
}

// errPaletteFull reports that pixels carried over from earlier frames have no
// room in a later frame's palette.
var errPaletteFull = errors.New("spritegif: carried pixels do not fit the frame palette")

// reconstruct builds an indexed sprite, or an RGB one when frames with
// different palettes cannot share indices.
func (c *Codec) reconstruct(file *gif.File) (*Sprite, error) {
	s, err := c.rebuild(file, raster.ModeIndexed)
	if errors.Is(err, errPaletteFull) {
		Logger().Debug("spritegif: decoding as RGB", "reason", err)
		return c.rebuild(file, raster.ModeRGB)
	}
	return s, err
}

func (c *Codec) rebuild(file *gif.File, mode raster.Mode) (*Sprite, error) {
	width, height := file.Width, file.Height
	if width == 0 || height == 0 {
		// Some writers leave the logical screen empty; use the frames' extent.
		var r image.Rectangle
		for _, f := range file.Frames {
			r = r.Union(f.Bounds)
		}
		width, height = r.Max.X, r.Max.Y
		if width == 0 || height == 0 {
			return nil, fmt.Errorf("%w: empty logical screen", ErrFormat)
		}
	}

	s := NewSprite(mode, width, height, len(file.Frames))
	s.LoopCount = file.LoopCount
	s.Comment = file.Comment

	first := file.Frames[0].Transparent()
	opaque := first < 0
	var empty uint8
	var emptyColor color.NRGBA
	keep := -1
	if !opaque {
		s.TransparentIndex = uint8(first)
		empty = uint8(first)
		keep = first
	} else {
		empty = file.BackgroundIndex
		if int(empty) >= file.Palette.Len() {
			empty = 0
		}
		firstPal := file.Frames[0].Palette
		if firstPal == nil {
			firstPal = file.Palette
		}
		emptyColor = firstPal.At(int(empty))
		emptyColor.A = 0xff
	}

	layer := NewImageLayer("Layer 1")
	layer.SetBackground(opaque)
	s.AddLayer(layer)

	screen, err := raster.NewImage(mode, width, height)
	if err != nil {
		return nil, err
	}
	if mode == raster.ModeIndexed {
		screen.FillIndex(empty)
	} else {
		screen.FillNRGBA(emptyColor)
	}

	var screenPal, prevPal *raster.Palette
	for i, f := range file.Frames {
		pal := f.Palette
		if pal == nil {
			pal = file.Palette
		}
		pal = pal.Clone()

		pix, err := frameImage(f)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}

		disposal := DisposalUnspecified
		delay := 0
		if f.Control != nil {
			disposal = Disposal(f.Control.Disposal)
			delay = f.Control.Delay
		}

		if mode == raster.ModeIndexed && screenPal != nil && !pal.Equal(screenPal) {
			// A frame restoring the screen later needs every pixel remapped.
			var covered func(x, y int) bool
			if disposal != DisposalPrevious {
				covered = coveredBy(f, pix)
			}
			pal, err = carryOver(screen, screenPal, pal, keep, covered)
			if err != nil {
				return nil, fmt.Errorf("frame %d: %w", i, err)
			}
		}
		screenPal = pal

		stored := pal
		if c.opts.legacyPalette {
			stored = pal.Padded(raster.MaxPaletteSize)
		}
		if i == 0 || !stored.Equal(prevPal) {
			s.SetPalette(i, stored)
		}
		prevPal = stored

		var saved *raster.Image
		if disposal == DisposalPrevious {
			saved = screen.Clone()
		}

		src := composite.Source{Image: pix, X: f.Bounds.Min.X, Y: f.Bounds.Min.Y, Opacity: 0xff}
		transparent := f.Transparent()
		if mode == raster.ModeRGB && pix != nil {
			if src.Image, err = quant.Expand(pix, pal, transparent); err != nil {
				return nil, fmt.Errorf("frame %d: %w", i, err)
			}
			transparent = -1
		}
		if err := composite.Draw(screen, src, transparent); err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		layer.SetCel(i, NewCel(screen.Clone()))
		s.Frames[i] = FrameInfo{Duration: delayToDuration(delay), Disposal: disposal}

		Logger().Debug("spritegif: frame",
			"frame", i,
			"bounds", f.Bounds,
			"colors", pal.Len(),
			"transparent", f.Transparent(),
			"disposal", disposal)

		switch disposal {
		case DisposalBackground:
			clearRect(screen, f.Bounds, empty, emptyColor)
		case DisposalPrevious:
			screen = saved
		}
	}
	return s, nil
}

// coveredBy reports the screen pixels a frame paints over.
func coveredBy(f *gif.Frame, pix *raster.Image) func(x, y int) bool {
	return func(x, y int) bool {
		if pix == nil || !image.Pt(x, y).In(f.Bounds) {
			return false
		}
		return int(pix.IndexAt(x-f.Bounds.Min.X, y-f.Bounds.Min.Y)) != f.Transparent()
	}
}

// carryOver rewrites the indices of screen, which address from, so that they
// address a copy of to. Colors missing from to are appended to it. Pixels
// equal to keep, and pixels reported by covered, are left alone.
func carryOver(screen *raster.Image, from, to *raster.Palette, keep int, covered func(x, y int) bool) (*raster.Palette, error) {
	out := to.Clone()
	remap := make(map[uint8]uint8)
	for y := 0; y < screen.Height(); y++ {
		for x := 0; x < screen.Width(); x++ {
			idx := screen.IndexAt(x, y)
			if int(idx) == keep || (covered != nil && covered(x, y)) {
				continue
			}
			j, ok := remap[idx]
			if !ok {
				c := from.At(int(idx))
				if j, ok = findRGB(out, c, idx, keep); !ok {
					n := out.Len()
					if n == keep {
						n++
					}
					if n >= raster.MaxPaletteSize {
						return nil, fmt.Errorf("%w: %d colors already in use", errPaletteFull, out.Len())
					}
					_ = out.Set(n, c)
					j = uint8(n)
				}
				remap[idx] = j
			}
			screen.SetIndex(x, y, j)
		}
	}
	return out, nil
}

// findRGB returns an entry of pal with the RGB of c, other than skip. The
// entry at prefer wins when it matches.
func findRGB(pal *raster.Palette, c color.NRGBA, prefer uint8, skip int) (uint8, bool) {
	same := func(i int) bool {
		e := pal.At(i)
		return i != skip && i < pal.Len() && e.R == c.R && e.G == c.G && e.B == c.B
	}
	if same(int(prefer)) {
		return prefer, true
	}
	for i := 0; i < pal.Len(); i++ {
		if same(i) {
			return uint8(i), true
		}
	}
	return 0, false
}

// frameImage wraps a frame's pixels in an indexed raster.
func frameImage(f *gif.Frame) (*raster.Image, error) {
	w, h := f.Bounds.Dx(), f.Bounds.Dy()
	if w == 0 || h == 0 {
		return nil, nil
	}
	img, err := raster.NewImage(raster.ModeIndexed, w, h)
	if err != nil {
		return nil, err
	}
	copy(img.Pix(), f.Pix)
	return img, nil
}

func clearRect(img *raster.Image, r image.Rectangle, idx uint8, c color.NRGBA) {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if img.Mode() == raster.ModeIndexed {
				img.SetIndex(x, y, idx)
				continue
			}
			img.SetNRGBA(x, y, c)
		}
	}
}
