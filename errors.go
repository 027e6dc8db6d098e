package spritegif

import (
	"errors"

	"github.com/gogpu/spritegif/internal/gif"
	"github.com/gogpu/spritegif/internal/quant"
)

// Error kinds. Test with errors.Is; returned errors carry more context.
var (
	// ErrFormat reports a malformed or truncated GIF stream.
	ErrFormat = gif.ErrFormat

	// ErrUnsupported reports a valid GIF construct this package cannot handle.
	ErrUnsupported = gif.ErrUnsupported

	// ErrPaletteOverflow reports that a frame's pixels do not fit its
	// palette without quantization.
	ErrPaletteOverflow = errors.New("spritegif: frame does not fit its palette")

	// ErrIndexOutOfRange reports an indexed pixel without a palette entry.
	// It is wrapped by ErrPaletteOverflow errors.
	ErrIndexOutOfRange = quant.ErrIndexOutOfRange

	// ErrNoFrames is returned when encoding a sprite without frames.
	ErrNoFrames = errors.New("spritegif: sprite has no frames")

	// ErrNilSprite is returned when encoding a nil sprite.
	ErrNilSprite = errors.New("spritegif: nil sprite")

	// ErrInvalidSprite is returned for sprites that cannot be represented
	// as GIF, such as canvases larger than 65535 pixels on a side.
	ErrInvalidSprite = errors.New("spritegif: invalid sprite")
)
