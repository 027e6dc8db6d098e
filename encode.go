package spritegif

import (
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/gogpu/spritegif/internal/composite"
	"github.com/gogpu/spritegif/internal/gif"
	"github.com/gogpu/spritegif/internal/parallel"
	"github.com/gogpu/spritegif/internal/quant"
	"github.com/gogpu/spritegif/raster"
)

// indexedFrame is one flattened, palettized frame ready for the container.
type indexedFrame struct {
	pix         *raster.Image
	palette     *raster.Palette
	transparent int
	exact       bool
}

// frameSource is the part of a sprite needed to build every frame.
type frameSource struct {
	sprite       *Sprite
	background   *ImageLayer
	layers       []*ImageLayer
	quantization QuantizationMode
	maxColors    int
}

// Encode writes s to w as a GIF89a stream.
//
// The first failing frame aborts the whole encode; nothing is written to w
// in that case.
func (c *Codec) Encode(w io.Writer, s *Sprite) error {
	if err := s.validate(); err != nil {
		return err
	}

	src := c.source(s)
	n := s.FrameCount()
	var frames []*indexedFrame
	if c.opts.workers > 1 && n > 1 {
		pool := parallel.NewWorkerPool(min(c.opts.workers, n))
		defer pool.Close()
		var err error
		frames, err = parallel.Map(pool, n, src.build)
		if err != nil {
			return err
		}
	} else {
		frames = make([]*indexedFrame, n)
		for i := range frames {
			f, err := src.build(i)
			if err != nil {
				return err
			}
			frames[i] = f
		}
	}

	file := c.container(s, src, frames)
	if err := gif.Encode(w, file); err != nil {
		return fmt.Errorf("spritegif: encode: %w", err)
	}

	Logger().Info("spritegif: encoded sprite",
		"width", s.Width,
		"height", s.Height,
		"frames", n,
		"mode", s.Mode,
		"quantization", src.quantization,
		"global_palette", file.Palette != nil)
	return nil
}

func (c *Codec) source(s *Sprite) *frameSource {
	layers := visibleImageLayers(s.Root)
	src := &frameSource{
		sprite:       s,
		quantization: c.opts.quantization,
		maxColors:    c.opts.maxColors,
	}
	if bg := s.BackgroundLayer(); bg != nil {
		src.background = bg
		if len(layers) > 0 && layers[0] == bg {
			layers = layers[1:]
		}
	}
	src.layers = layers

	if src.quantization == QuantizeAuto {
		src.quantization = Quantize
		if s.Mode == raster.ModeIndexed {
			src.quantization = NoQuantize
		}
	}
	return src
}

// flatten composites the visible layers of one frame.
func (src *frameSource) flatten(frame int) (*raster.Image, error) {
	s := src.sprite
	canvas := composite.Canvas{
		Width:            s.Width,
		Height:           s.Height,
		Mode:             s.Mode,
		TransparentIndex: s.TransparentIndex,
	}

	var background *composite.Source
	if src.background != nil {
		background = &composite.Source{}
		if cel := src.background.Cel(frame); cel != nil {
			background = &composite.Source{Image: cel.Image, X: cel.X, Y: cel.Y, Opacity: 0xff}
		}
	}

	var sources []composite.Source
	for _, l := range src.layers {
		cel := l.Cel(frame)
		if cel == nil || cel.Image == nil {
			continue
		}
		sources = append(sources, composite.Source{
			Image:   cel.Image,
			X:       cel.X,
			Y:       cel.Y,
			Opacity: composite.MulAlpha(l.Opacity(), cel.Opacity),
		})
	}
	return composite.Flatten(canvas, background, sources)
}

// build flattens and palettizes one frame.
func (src *frameSource) build(frame int) (*indexedFrame, error) {
	img, err := src.flatten(frame)
	if err != nil {
		return nil, fmt.Errorf("spritegif: frame %d: %w", frame, err)
	}
	f, err := src.palettize(frame, img)
	if err != nil {
		return nil, fmt.Errorf("spritegif: frame %d: %w", frame, err)
	}

	Logger().Debug("spritegif: frame",
		"frame", frame,
		"colors", f.palette.Len(),
		"transparent", f.transparent,
		"exact", f.exact)
	return f, nil
}

func (src *frameSource) palettize(frame int, img *raster.Image) (*indexedFrame, error) {
	s := src.sprite
	opaque := src.background != nil

	// Declared transparent index for sprites without a background.
	transparent := -1
	if !opaque {
		transparent = int(s.TransparentIndex)
	}

	switch {
	case src.quantization == NoQuantize && s.Mode == raster.ModeIndexed:
		pal := withSlot(s.PaletteFor(frame), transparent)
		if err := quant.CheckIndices(img, pal); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPaletteOverflow, err)
		}
		return &indexedFrame{pix: img, palette: pal, transparent: transparent, exact: true}, nil

	case src.quantization == NoQuantize:
		pal := s.PaletteFor(frame)
		if pal.Len() == 0 {
			return nil, fmt.Errorf("%w: %w", ErrPaletteOverflow, quant.ErrEmptyPalette)
		}
		pal = withSlot(pal, transparent)
		pix, err := quant.Remap(img, pal, transparent)
		if err != nil {
			return nil, err
		}
		return &indexedFrame{pix: pix, palette: pal, transparent: transparent}, nil
	}

	rgb := img
	if s.Mode == raster.ModeIndexed {
		var err error
		rgb, err = quant.Expand(img, s.PaletteFor(frame), transparent)
		if err != nil {
			if errors.Is(err, quant.ErrIndexOutOfRange) {
				return nil, fmt.Errorf("%w: %w", ErrPaletteOverflow, err)
			}
			return nil, err
		}
	}
	res, err := quant.Quantize(rgb, quant.Options{
		MaxColors:          src.maxColors,
		ReserveTransparent: !opaque,
	})
	if err != nil {
		return nil, err
	}
	return &indexedFrame{pix: res.Image, palette: res.Palette, transparent: res.Transparent, exact: res.Exact}, nil
}

// withSlot returns pal grown so that index i exists.
func withSlot(pal *raster.Palette, i int) *raster.Palette {
	if i < pal.Len() {
		return pal
	}
	return pal.Padded(i + 1)
}

// container assembles the GIF structures. Frames share a global color table
// when all their palettes are identical.
func (c *Codec) container(s *Sprite, src *frameSource, frames []*indexedFrame) *gif.File {
	file := &gif.File{
		Width:     s.Width,
		Height:    s.Height,
		LoopCount: -1,
		Comment:   s.Comment,
	}
	if c.opts.comment != "" {
		file.Comment = c.opts.comment
	}

	loop := s.LoopCount
	if c.opts.loopSet {
		loop = c.opts.loopCount
	}
	if loop >= 0 && (len(frames) > 1 || c.opts.loopSet) {
		file.LoopCount = min(loop, 0xffff)
	}

	shared := true
	for _, f := range frames[1:] {
		if !f.palette.EqualRGB(frames[0].palette) {
			shared = false
			break
		}
	}
	if shared {
		file.Palette = frames[0].palette
	}

	bounds := image.Rect(0, 0, s.Width, s.Height)
	for i, f := range frames {
		info := s.Frames[i]
		disposal := info.Disposal
		if disposal == DisposalUnspecified {
			disposal = DisposalNone
			if src.background == nil {
				disposal = DisposalBackground
			}
		}
		gf := &gif.Frame{
			Bounds: bounds,
			Pix:    f.pix.Pix(),
			Control: &gif.GraphicControl{
				Disposal:    gif.Disposal(disposal),
				Delay:       durationToDelay(info.Duration),
				Transparent: f.transparent,
			},
		}
		if !shared {
			gf.Palette = f.palette
		}
		file.Frames = append(file.Frames, gf)
	}
	return file
}
