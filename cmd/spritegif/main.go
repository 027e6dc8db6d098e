// Command spritegif inspects, unpacks and builds animated GIFs.
//
// Usage:
//
//	spritegif info anim.gif
//	spritegif decode --scale 4 anim.gif frames/
//	spritegif encode --delay 80 out.gif frames/*.png
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/multierr"

	"github.com/gogpu/spritegif"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "spritegif:", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "spritegif",
		Usage:   "inspect, unpack and build animated GIFs",
		Version: spritegif.Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log per-frame details to stderr",
			},
		},
		Before: setupLogging,
		Commands: []*cli.Command{
			infoCommand(),
			decodeCommand(),
			encodeCommand(),
		},
	}
}

func setupLogging(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	level := slog.LevelWarn
	if cmd.Bool("verbose") {
		level = slog.LevelDebug
	}
	spritegif.SetLogger(slog.New(slog.NewTextHandler(stderr(cmd), &slog.HandlerOptions{Level: level})))
	return ctx, nil
}

func stdout(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func stderr(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}

// writeFile creates path and hands a buffered writer to write.
func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(f))

	bw := bufio.NewWriter(f)
	if err := write(bw); err != nil {
		return err
	}
	return bw.Flush()
}

// readFile opens path and hands a buffered reader to read.
func readFile(path string, read func(io.Reader) error) (err error) {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(f))
	return read(bufio.NewReader(f))
}

// imageLayer returns the single image layer of a decoded sprite.
func imageLayer(s *spritegif.Sprite) (*spritegif.ImageLayer, error) {
	for _, l := range s.Root.Children() {
		switch l := l.(type) {
		case *spritegif.ImageLayer:
			return l, nil
		case *spritegif.GroupLayer:
			continue
		}
	}
	return nil, fmt.Errorf("sprite has no image layer")
}
