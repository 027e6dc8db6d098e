package spritegif

import "fmt"

// QuantizationMode selects how frames are reduced to a palette.
type QuantizationMode int

const (
	// QuantizeAuto quantizes RGB sprites and keeps the palette of indexed ones.
	QuantizeAuto QuantizationMode = iota

	// Quantize always builds a new palette from the flattened pixels.
	Quantize

	// NoQuantize always uses the sprite's own palette for each frame:
	// indexed pixels are written unchanged and RGB pixels take the nearest
	// palette entry.
	NoQuantize
)

// String returns the mode name.
func (m QuantizationMode) String() string {
	switch m {
	case QuantizeAuto:
		return "auto"
	case Quantize:
		return "quantize"
	case NoQuantize:
		return "no-quantize"
	default:
		return fmt.Sprintf("QuantizationMode(%d)", int(m))
	}
}

// ParseQuantizationMode parses the names returned by String.
func ParseQuantizationMode(s string) (QuantizationMode, error) {
	for _, m := range []QuantizationMode{QuantizeAuto, Quantize, NoQuantize} {
		if m.String() == s {
			return m, nil
		}
	}
	return QuantizeAuto, fmt.Errorf("spritegif: unknown quantization mode %q", s)
}

// Option configures a Codec.
//
// Example:
//
//	c := spritegif.NewCodec(
//	    spritegif.WithQuantization(spritegif.NoQuantize),
//	    spritegif.WithLoopCount(3),
//	)
type Option func(*options)

type options struct {
	quantization  QuantizationMode
	loopCount     int
	loopSet       bool
	comment       string
	workers       int
	legacyPalette bool
	maxColors     int
}

func defaultOptions() options {
	return options{
		quantization: QuantizeAuto,
		workers:      1,
		maxColors:    256,
	}
}

// WithQuantization sets the quantization mode. Unknown modes mean QuantizeAuto.
func WithQuantization(m QuantizationMode) Option {
	return func(o *options) {
		if m < QuantizeAuto || m > NoQuantize {
			m = QuantizeAuto
		}
		o.quantization = m
	}
}

// WithLoopCount overrides the sprite's loop count: 0 loops forever, n > 0
// plays n extra times and a negative value omits the loop extension.
// Values above 65535 are clamped.
func WithLoopCount(n int) Option {
	return func(o *options) {
		o.loopCount = min(max(n, -1), 0xffff)
		o.loopSet = true
	}
}

// WithComment adds a comment extension, replacing the sprite's comment.
// Characters outside ISO-8859-1 are written as SUB (0x1A).
func WithComment(s string) Option {
	return func(o *options) {
		o.comment = s
	}
}

// WithWorkers flattens and quantizes up to n frames at once.
// Output is identical for every n. Values below 1 mean 1.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = max(n, 1)
	}
}

// WithLegacyPaletteSize makes Decode pad every palette to 256 entries
// instead of reporting the color table size stored in the file.
func WithLegacyPaletteSize(enabled bool) Option {
	return func(o *options) {
		o.legacyPalette = enabled
	}
}

// WithMaxColors caps quantized palettes, the transparent entry included.
// Values are clamped to [2, 256].
func WithMaxColors(n int) Option {
	return func(o *options) {
		o.maxColors = min(max(n, 2), 256)
	}
}
