package spritegif

import (
	"fmt"
	"io"

	"github.com/gogpu/spritegif/internal/gif"
)

// Codec reads and writes sprites as GIF. A Codec is immutable and safe for
// concurrent use.
type Codec struct {
	opts options
}

// NewCodec returns a Codec configured by opts.
func NewCodec(opts ...Option) *Codec {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return &Codec{opts: o}
}

// Config describes a GIF without decoding its frames.
type Config struct {
	Width  int
	Height int

	// Version is "87a" or "89a".
	Version string

	// GlobalColors is the size of the global color table, 0 when absent.
	GlobalColors int
}

// DecodeConfig reads the GIF header and logical screen descriptor.
func (c *Codec) DecodeConfig(r io.Reader) (Config, error) {
	cfg, err := gif.DecodeConfig(r)
	if err != nil {
		return Config{}, fmt.Errorf("spritegif: decode config: %w", err)
	}
	return Config{
		Width:        cfg.Width,
		Height:       cfg.Height,
		Version:      cfg.Version,
		GlobalColors: cfg.GlobalColors,
	}, nil
}

// Encode writes s to w with a Codec configured by opts.
func Encode(w io.Writer, s *Sprite, opts ...Option) error {
	return NewCodec(opts...).Encode(w, s)
}

// Decode reads a sprite from r with a Codec configured by opts.
func Decode(r io.Reader, opts ...Option) (*Sprite, error) {
	return NewCodec(opts...).Decode(r)
}

// DecodeConfig reads the GIF header and logical screen descriptor from r.
func DecodeConfig(r io.Reader) (Config, error) {
	return NewCodec().DecodeConfig(r)
}
