package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"time"

	// Input formats for encode.
	_ "image/gif"
	_ "image/png"

	"github.com/urfave/cli/v3"
	_ "golang.org/x/image/bmp"

	"github.com/gogpu/spritegif"
	"github.com/gogpu/spritegif/raster"
)

func encodeCommand() *cli.Command {
	return &cli.Command{
		Name:      "encode",
		Usage:     "build an animated GIF from image files, one frame each",
		ArgsUsage: "OUTPUT FRAME...",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "delay",
				Value: 100,
				Usage: "frame duration in milliseconds",
			},
			&cli.StringFlag{
				Name:  "quantize",
				Value: spritegif.QuantizeAuto.String(),
				Usage: "auto, quantize or no-quantize",
			},
			&cli.IntFlag{
				Name:  "max-colors",
				Value: 256,
				Usage: "palette size limit when quantizing",
			},
			&cli.IntFlag{
				Name:  "loop",
				Value: 0,
				Usage: "extra plays, 0 loops forever, -1 plays once without loop extension",
			},
			&cli.StringFlag{
				Name:  "comment",
				Usage: "comment extension text",
			},
			&cli.IntFlag{
				Name:  "workers",
				Value: 1,
				Usage: "frames processed in parallel",
			},
			&cli.BoolFlag{
				Name:  "background",
				Usage: "treat frames as an opaque background layer",
			},
		},
		Action: runEncode,
	}
}

func runEncode(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() < 2 {
		return fmt.Errorf("encode: expected OUTPUT and at least one FRAME")
	}
	args := cmd.Args().Slice()
	out, inputs := args[0], args[1:]

	mode, err := spritegif.ParseQuantizationMode(cmd.String("quantize"))
	if err != nil {
		return err
	}

	frames := make([]image.Image, 0, len(inputs))
	for _, path := range inputs {
		var img image.Image
		err := readFile(path, func(r io.Reader) error {
			var err error
			img, _, err = image.Decode(r)
			return err
		})
		if err != nil {
			return fmt.Errorf("encode: %s: %w", path, err)
		}
		frames = append(frames, img)
	}

	s, err := buildSprite(frames, cmd.Bool("background"))
	if err != nil {
		return err
	}
	delay := time.Duration(cmd.Int("delay")) * time.Millisecond
	for i := range s.Frames {
		s.Frames[i].Duration = delay
	}

	opts := []spritegif.Option{
		spritegif.WithQuantization(mode),
		spritegif.WithMaxColors(int(cmd.Int("max-colors"))),
		spritegif.WithLoopCount(int(cmd.Int("loop"))),
		spritegif.WithComment(cmd.String("comment")),
		spritegif.WithWorkers(int(cmd.Int("workers"))),
	}
	if err := writeFile(out, func(w io.Writer) error { return spritegif.Encode(w, s, opts...) }); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	fmt.Fprintf(stdout(cmd), "%s: %d frames, %dx%d\n", out, s.FrameCount(), s.Width, s.Height)
	return nil
}

// buildSprite makes a one-layer sprite from decoded frames. Frames that all
// share one palette become an indexed sprite; anything else is RGB.
func buildSprite(frames []image.Image, background bool) (*spritegif.Sprite, error) {
	b := frames[0].Bounds()
	pal, transparent := sharedPalette(frames)
	if pal != nil && transparent < 0 && !background {
		// Transparent pixels need a slot of their own.
		if pal.Len() == raster.MaxPaletteSize {
			pal = nil
		} else {
			transparent = pal.Len()
		}
	}

	mode := raster.ModeRGB
	if pal != nil {
		mode = raster.ModeIndexed
	}
	s := spritegif.NewSprite(mode, b.Dx(), b.Dy(), len(frames))
	layer := spritegif.NewImageLayer("Layer 1")
	layer.SetBackground(background)
	s.AddLayer(layer)

	if pal != nil {
		s.SetPalette(0, pal)
		s.TransparentIndex = uint8(max(transparent, 0))
	}

	for i, src := range frames {
		fb := src.Bounds()
		var (
			img *raster.Image
			err error
		)
		if p, ok := src.(*image.Paletted); ok && pal != nil {
			img, err = indexedImage(p)
		} else {
			img, err = raster.FromImage(src)
		}
		if err != nil {
			return nil, fmt.Errorf("encode: frame %d: %w", i, err)
		}
		layer.SetCel(i, &spritegif.Cel{
			Image:   img,
			X:       fb.Min.X - b.Min.X,
			Y:       fb.Min.Y - b.Min.Y,
			Opacity: 0xff,
		})
	}
	return s, nil
}

// sharedPalette returns the palette common to all paletted frames and the
// index of its first fully transparent entry (or -1), or nil when the frames
// do not share one.
func sharedPalette(frames []image.Image) (*raster.Palette, int) {
	var first color.Palette
	for _, f := range frames {
		p, ok := f.(*image.Paletted)
		if !ok || len(p.Palette) == 0 || len(p.Palette) > raster.MaxPaletteSize {
			return nil, -1
		}
		if first == nil {
			first = p.Palette
			continue
		}
		if len(p.Palette) != len(first) {
			return nil, -1
		}
		for i := range first {
			if p.Palette[i] != first[i] {
				return nil, -1
			}
		}
	}

	colors := make([]color.NRGBA, len(first))
	transparent := -1
	for i, c := range first {
		colors[i] = color.NRGBAModel.Convert(c).(color.NRGBA)
		if colors[i].A == 0 && transparent < 0 {
			transparent = i
		}
	}
	pal, err := raster.PaletteFromColors(colors...)
	if err != nil {
		return nil, -1
	}
	return pal, transparent
}

func indexedImage(p *image.Paletted) (*raster.Image, error) {
	b := p.Bounds()
	img, err := raster.NewImage(raster.ModeIndexed, b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			img.SetIndex(x, y, p.ColorIndexAt(b.Min.X+x, b.Min.Y+y))
		}
	}
	return img, nil
}
