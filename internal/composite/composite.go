// Package composite flattens a sprite's layer stack into one raster per frame.
//
// GIF has no partial transparency, so flattening is a straight replace:
// a source pixel is either transparent and leaves the destination alone,
// or it overwrites the destination as a fully opaque pixel.
package composite

import (
	"fmt"
	"image/color"

	"github.com/gogpu/spritegif/raster"
)

// Source is one cel placed on the canvas.
type Source struct {
	// Image holds the cel pixels in the canvas mode. A nil Image draws nothing.
	Image *raster.Image

	// X and Y are the cel's top-left corner in canvas coordinates.
	X, Y int

	// Opacity is the combined layer and cel opacity, 0..255.
	Opacity uint8
}

// Canvas describes the output raster.
type Canvas struct {
	Width  int
	Height int
	Mode   raster.Mode

	// TransparentIndex is the "empty" value of indexed canvases.
	TransparentIndex uint8
}

// Flatten composites layers bottom-to-top onto a new raster.
//
// The raster starts empty (alpha 0, or TransparentIndex) unless background
// is non-nil, in which case it starts from the background cel drawn fully
// opaque over an opaque base (black, or TransparentIndex used as a color).
// A frame where nothing is drawn is returned filled with the empty value.
func Flatten(c Canvas, background *Source, layers []Source) (*raster.Image, error) {
	out, err := raster.NewImage(c.Mode, c.Width, c.Height)
	if err != nil {
		return nil, err
	}

	switch c.Mode {
	case raster.ModeIndexed:
		out.FillIndex(c.TransparentIndex)
	case raster.ModeRGB:
		if background != nil {
			out.FillNRGBA(color.NRGBA{A: 0xff})
		}
	}

	if background != nil && background.Image != nil {
		if err := drawBackground(out, background); err != nil {
			return nil, err
		}
	}
	for i := range layers {
		if err := Draw(out, layers[i], int(c.TransparentIndex)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// clip returns the canvas-space rectangle a source covers, as source
// coordinates [sx0, sx1) x [sy0, sy1).
func clip(dst *raster.Image, s *Source) (sx0, sy0, sx1, sy1 int) {
	sx0 = max(0, -s.X)
	sy0 = max(0, -s.Y)
	sx1 = min(s.Image.Width(), dst.Width()-s.X)
	sy1 = min(s.Image.Height(), dst.Height()-s.Y)
	return
}

func checkMode(dst *raster.Image, s *Source) error {
	if s.Image.Mode() != dst.Mode() {
		return fmt.Errorf("composite: %s cel on %s canvas: %w", s.Image.Mode(), dst.Mode(), raster.ErrModeMismatch)
	}
	return nil
}

func drawBackground(dst *raster.Image, s *Source) error {
	if err := checkMode(dst, s); err != nil {
		return err
	}
	sx0, sy0, sx1, sy1 := clip(dst, s)
	for sy := sy0; sy < sy1; sy++ {
		for sx := sx0; sx < sx1; sx++ {
			dx, dy := sx+s.X, sy+s.Y
			if dst.Mode() == raster.ModeIndexed {
				dst.SetIndex(dx, dy, s.Image.IndexAt(sx, sy))
				continue
			}
			px := s.Image.NRGBAAt(sx, sy)
			px.A = 0xff
			dst.SetNRGBA(dx, dy, px)
		}
	}
	return nil
}

// Draw straight-replaces the non-transparent pixels of s onto dst.
// On indexed rasters pixels equal to transparent are skipped; pass -1 to
// copy every index.
func Draw(dst *raster.Image, s Source, transparent int) error {
	if s.Image == nil || s.Opacity == 0 {
		return nil
	}
	if err := checkMode(dst, &s); err != nil {
		return err
	}
	sx0, sy0, sx1, sy1 := clip(dst, &s)
	for sy := sy0; sy < sy1; sy++ {
		for sx := sx0; sx < sx1; sx++ {
			dx, dy := sx+s.X, sy+s.Y
			if dst.Mode() == raster.ModeIndexed {
				if idx := s.Image.IndexAt(sx, sy); int(idx) != transparent {
					dst.SetIndex(dx, dy, idx)
				}
				continue
			}
			px := s.Image.NRGBAAt(sx, sy)
			if MulAlpha(px.A, s.Opacity) == 0 {
				continue
			}
			px.A = 0xff
			dst.SetNRGBA(dx, dy, px)
		}
	}
	return nil
}

// MulAlpha returns a*b/255 rounded to nearest.
func MulAlpha(a, b uint8) uint8 {
	t := uint32(a)*uint32(b) + 0x80
	return uint8((t + t>>8) >> 8)
}
