// Package raster provides the pixel buffers and palettes exchanged between
// the sprite model, the compositor, the quantizer and the GIF codec.
package raster

import "fmt"

// Mode is the pixel storage mode of an Image.
type Mode uint8

const (
	// ModeRGB stores straight (non-premultiplied) RGBA, 4 bytes per pixel.
	ModeRGB Mode = iota

	// ModeIndexed stores one palette index per pixel.
	ModeIndexed

	// modeCount is the number of modes (for internal use).
	modeCount
)

// BytesPerPixel returns the storage size of one pixel.
func (m Mode) BytesPerPixel() int {
	switch m {
	case ModeRGB:
		return 4
	case ModeIndexed:
		return 1
	default:
		return 0
	}
}

// IsValid reports whether m is a known mode.
func (m Mode) IsValid() bool {
	return m < modeCount
}

// String returns a human-readable name.
func (m Mode) String() string {
	switch m {
	case ModeRGB:
		return "RGB"
	case ModeIndexed:
		return "Indexed"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}
