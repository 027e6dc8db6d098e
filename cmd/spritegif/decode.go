package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"

	"github.com/gogpu/spritegif"
)

func decodeCommand() *cli.Command {
	return &cli.Command{
		Name:      "decode",
		Usage:     "write every frame of a GIF as an image file",
		ArgsUsage: "FILE OUTDIR",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "scale",
				Value: 1,
				Usage: "nearest-neighbor upscale factor",
			},
			&cli.StringFlag{
				Name:  "format",
				Value: "png",
				Usage: "output format: png or bmp",
			},
			&cli.BoolFlag{
				Name:  "legacy-palette",
				Usage: "pad palettes to 256 entries",
			},
		},
		Action: runDecode,
	}
}

func runDecode(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 2 {
		return fmt.Errorf("decode: expected FILE and OUTDIR, got %d arguments", cmd.Args().Len())
	}
	scale := int(cmd.Int("scale"))
	if scale < 1 {
		return fmt.Errorf("decode: --scale must be at least 1, got %d", scale)
	}
	format := cmd.String("format")
	var encode func(io.Writer, image.Image) error
	switch format {
	case "png":
		encode = png.Encode
	case "bmp":
		encode = bmp.Encode
	default:
		return fmt.Errorf("decode: unknown format %q", format)
	}

	data, err := os.ReadFile(cmd.Args().Get(0))
	if err != nil {
		return err
	}
	s, err := spritegif.Decode(bytes.NewReader(data),
		spritegif.WithLegacyPaletteSize(cmd.Bool("legacy-palette")))
	if err != nil {
		return err
	}
	layer, err := imageLayer(s)
	if err != nil {
		return err
	}

	outDir := cmd.Args().Get(1)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	transparent := int(s.TransparentIndex)
	if s.BackgroundLayer() != nil {
		transparent = -1
	}
	for i := 0; i < s.FrameCount(); i++ {
		cel := layer.Cel(i)
		if cel == nil {
			continue
		}
		var img image.Image = cel.Image.ToNRGBA(s.PaletteFor(i), transparent)
		if scale > 1 {
			b := img.Bounds()
			dst := image.NewNRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
			draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
			img = dst
		}
		name := filepath.Join(outDir, fmt.Sprintf("frame_%03d.%s", i, format))
		if err := writeFile(name, func(w io.Writer) error { return encode(w, img) }); err != nil {
			return fmt.Errorf("decode: frame %d: %w", i, err)
		}
		fmt.Fprintln(stdout(cmd), name)
	}
	return nil
}
