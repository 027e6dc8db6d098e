package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"github.com/gogpu/spritegif"
)

func infoCommand() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "print the structure of a GIF",
		ArgsUsage: "FILE",
		Action:    runInfo,
	}
}

func runInfo(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("info: expected one FILE argument, got %d", cmd.Args().Len())
	}
	path := cmd.Args().First()
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	cfg, err := spritegif.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return err
	}
	s, err := spritegif.Decode(bytes.NewReader(data))
	if err != nil {
		return err
	}
	layer, err := imageLayer(s)
	if err != nil {
		return err
	}

	w := stdout(cmd)
	heading := color.New(color.Bold, color.FgCyan).SprintFunc()
	label := color.New(color.FgHiBlack).SprintFunc()

	var total time.Duration
	for _, f := range s.Frames {
		total += f.Duration
	}

	fmt.Fprintf(w, "%s %s\n", heading("File"), path)
	fmt.Fprintf(w, "  %s %s (%s bytes)\n", label("size      "), humanize.Bytes(uint64(len(data))), humanize.Comma(int64(len(data))))
	fmt.Fprintf(w, "  %s GIF%s\n", label("version   "), cfg.Version)
	fmt.Fprintf(w, "  %s %dx%d\n", label("canvas    "), cfg.Width, cfg.Height)
	fmt.Fprintf(w, "  %s %d\n", label("global    "), cfg.GlobalColors)
	fmt.Fprintf(w, "  %s %d (%s)\n", label("frames    "), s.FrameCount(), total)
	fmt.Fprintf(w, "  %s %s\n", label("loop      "), loopText(s.LoopCount))
	if s.BackgroundLayer() != nil {
		fmt.Fprintf(w, "  %s opaque\n", label("background"))
	} else {
		fmt.Fprintf(w, "  %s transparent index %d\n", label("background"), s.TransparentIndex)
	}
	if s.Comment != "" {
		fmt.Fprintf(w, "  %s %q\n", label("comment   "), s.Comment)
	}

	fmt.Fprintf(w, "%s\n", heading("Frames"))
	for i, f := range s.Frames {
		colors := s.PaletteFor(i).Len()
		fmt.Fprintf(w, "  #%-4d %8s  disposal=%-11s colors=%d", i, f.Duration, f.Disposal, colors)
		if cel := layer.Cel(i); cel != nil {
			fmt.Fprintf(w, "  used=%d", usedColors(cel.Image.Pix()))
		}
		fmt.Fprintln(w)
	}
	return nil
}

func loopText(n int) string {
	switch {
	case n < 0:
		return "none"
	case n == 0:
		return "forever"
	default:
		return humanize.Comma(int64(n)) + " extra"
	}
}

func usedColors(pix []byte) int {
	var seen [256]bool
	n := 0
	for _, p := range pix {
		if !seen[p] {
			seen[p] = true
			n++
		}
	}
	return n
}
