// Package gif reads and writes the GIF87a/GIF89a container: header, logical
// screen descriptor, color tables, extensions and LZW image blocks.
//
// The package works on already indexed frames. Compositing, quantization
// and sprite reconstruction live in the callers.
//
// The format is described at https://www.w3.org/Graphics/GIF/spec-gif89a.txt.
package gif

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/spritegif/raster"
)

// Error kinds. Every decoding failure wraps ErrFormat or ErrUnsupported,
// every encoding failure wraps ErrInvalid.
var (
	// ErrFormat is returned for a malformed or truncated stream.
	ErrFormat = errors.New("gif: malformed stream")

	// ErrUnsupported is returned for valid but unsupported constructs.
	ErrUnsupported = errors.New("gif: unsupported feature")

	// ErrInvalid is returned when a File cannot be encoded.
	ErrInvalid = errors.New("gif: invalid file")
)

var (
	errBadSignature = fmt.Errorf("%w: bad signature", ErrFormat)
	errNoPalette    = fmt.Errorf("%w: no color table for frame", ErrFormat)
	errNoFrames     = fmt.Errorf("%w: no image data", ErrFormat)
	errBadPixel     = fmt.Errorf("%w: pixel index outside color table", ErrFormat)
	errLitWidth     = fmt.Errorf("%w: minimum code size out of range", ErrFormat)
)

// Block introducers and extension labels.
const (
	sExtension       = 0x21
	sImageDescriptor = 0x2C
	sTrailer         = 0x3B

	eText           = 0x01
	eGraphicControl = 0xF9
	eComment        = 0xFE
	eApplication    = 0xFF
)

// Packed field masks.
const (
	fColorTable     = 1 << 7
	fColorRes       = 7 << 4
	fColorTableBits = 7

	ifLocalColorTable = 1 << 7
	ifInterlace       = 1 << 6

	gcTransparentColorSet = 1 << 0
	gcUserInput           = 1 << 1
	gcDisposalShift       = 2
	gcDisposalMask        = 7 << gcDisposalShift
)

// Disposal says what happens to a frame's area before the next frame.
type Disposal uint8

const (
	// DisposalUnspecified leaves the choice to the viewer.
	DisposalUnspecified Disposal = 0
	// DisposalNone keeps the frame in place.
	DisposalNone Disposal = 1
	// DisposalBackground clears the frame's area.
	DisposalBackground Disposal = 2
	// DisposalPrevious restores the area to what it was before the frame.
	DisposalPrevious Disposal = 3
)

// String returns a human-readable name.
func (d Disposal) String() string {
	switch d {
	case DisposalUnspecified:
		return "unspecified"
	case DisposalNone:
		return "none"
	case DisposalBackground:
		return "background"
	case DisposalPrevious:
		return "previous"
	default:
		return fmt.Sprintf("Disposal(%d)", uint8(d))
	}
}

// GraphicControl is the graphic control extension preceding a frame.
type GraphicControl struct {
	Disposal Disposal

	// Delay is in hundredths of a second.
	Delay int

	// Transparent is the transparent color index, or -1.
	Transparent int

	UserInput bool
}

// Frame is one image block.
type Frame struct {
	// Bounds is the frame rectangle on the logical screen.
	Bounds image.Rectangle

	// Palette is the local color table, or nil to use the global one.
	Palette *raster.Palette

	// Pix holds Bounds.Dx()*Bounds.Dy() indices in row order (never in
	// interlaced order; interlacing only affects the wire format).
	Pix []byte

	Interlaced bool

	// Control is the preceding graphic control extension, or nil.
	Control *GraphicControl
}

// Transparent returns the frame's transparent index, or -1.
func (f *Frame) Transparent() int {
	if f.Control == nil {
		return -1
	}
	return f.Control.Transparent
}

// File is a whole GIF stream.
type File struct {
	Width  int
	Height int

	// Palette is the global color table, or nil.
	Palette *raster.Palette

	BackgroundIndex uint8

	// LoopCount is the NETSCAPE2.0 loop count: -1 when absent, 0 forever.
	LoopCount int

	// Comment is the concatenated text of all comment extensions.
	Comment string

	Frames []*Frame

	// Version is "87a" or "89a" after decoding; Encode always writes "89a".
	Version string
}

// Config is the logical screen information available without decoding frames.
type Config struct {
	Width        int
	Height       int
	Version      string
	GlobalColors int
}

// tableBits returns the smallest b in [1, 8] with 1<<b >= n.
func tableBits(n int) int {
	b := 1
	for 1<<b < n && b < 8 {
		b++
	}
	return b
}

// LitWidth returns the LZW minimum code size for a palette of n entries.
func LitWidth(n int) int {
	return max(2, tableBits(n))
}

// interlacePasses lists the start row and step of each interlace pass.
var interlacePasses = [4]struct{ start, step int }{
	{0, 8}, {4, 8}, {2, 4}, {1, 2},
}

// interlacedRows returns, for each row in wire order, the image row it holds.
func interlacedRows(height int) []int {
	rows := make([]int, 0, height)
	for _, p := range interlacePasses {
		for y := p.start; y < height; y += p.step {
			rows = append(rows, y)
		}
	}
	return rows
}
