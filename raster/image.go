package raster

import (
	"errors"
	"image"
	"image/color"
)

// Common errors for raster operations.
var (
	// ErrInvalidDimensions is returned when width or height is non-positive.
	ErrInvalidDimensions = errors.New("raster: invalid dimensions")

	// ErrInvalidMode is returned when the mode is not recognized.
	ErrInvalidMode = errors.New("raster: invalid mode")

	// ErrModeMismatch is returned when an operation needs the other pixel mode.
	ErrModeMismatch = errors.New("raster: pixel mode mismatch")
)

// Image is a width x height grid of pixels in a single Mode.
//
// RGB images store straight RGBA bytes; indexed images store one palette
// index per pixel. Image is not safe for concurrent writes.
type Image struct {
	pix    []byte
	width  int
	height int
	stride int
	mode   Mode
}

// NewImage creates a zeroed image. A zeroed RGB image is fully transparent,
// a zeroed indexed image points every pixel at entry 0.
func NewImage(mode Mode, width, height int) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	if !mode.IsValid() {
		return nil, ErrInvalidMode
	}
	stride := width * mode.BytesPerPixel()
	return &Image{
		pix:    make([]byte, stride*height),
		width:  width,
		height: height,
		stride: stride,
		mode:   mode,
	}, nil
}

// MustImage is like NewImage but panics on error. It is meant for tests and
// for sizes that are already validated.
func MustImage(mode Mode, width, height int) *Image {
	img, err := NewImage(mode, width, height)
	if err != nil {
		panic(err)
	}
	return img
}

// Width returns the image width in pixels.
func (m *Image) Width() int { return m.width }

// Height returns the image height in pixels.
func (m *Image) Height() int { return m.height }

// Mode returns the pixel mode.
func (m *Image) Mode() Mode { return m.mode }

// Stride returns the number of bytes per row.
func (m *Image) Stride() int { return m.stride }

// Pix returns the underlying pixel bytes, row-major.
func (m *Image) Pix() []byte { return m.pix }

// Bounds returns the image rectangle anchored at the origin.
func (m *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.width, m.height)
}

func (m *Image) in(x, y int) bool {
	return x >= 0 && x < m.width && y >= 0 && y < m.height
}

// NRGBAAt returns the color at (x, y) of an RGB image.
// Out-of-bounds reads and indexed images return the zero color.
func (m *Image) NRGBAAt(x, y int) color.NRGBA {
	if m.mode != ModeRGB || !m.in(x, y) {
		return color.NRGBA{}
	}
	i := y*m.stride + x*4
	return color.NRGBA{R: m.pix[i], G: m.pix[i+1], B: m.pix[i+2], A: m.pix[i+3]}
}

// SetNRGBA sets the color at (x, y) of an RGB image.
// Out-of-bounds writes and writes to indexed images are ignored.
func (m *Image) SetNRGBA(x, y int, c color.NRGBA) {
	if m.mode != ModeRGB || !m.in(x, y) {
		return
	}
	i := y*m.stride + x*4
	m.pix[i+0] = c.R
	m.pix[i+1] = c.G
	m.pix[i+2] = c.B
	m.pix[i+3] = c.A
}

// IndexAt returns the palette index at (x, y) of an indexed image.
func (m *Image) IndexAt(x, y int) uint8 {
	if m.mode != ModeIndexed || !m.in(x, y) {
		return 0
	}
	return m.pix[y*m.stride+x]
}

// SetIndex sets the palette index at (x, y) of an indexed image.
func (m *Image) SetIndex(x, y int, idx uint8) {
	if m.mode != ModeIndexed || !m.in(x, y) {
		return
	}
	m.pix[y*m.stride+x] = idx
}

// FillIndex sets every pixel of an indexed image to idx.
func (m *Image) FillIndex(idx uint8) {
	if m.mode != ModeIndexed {
		return
	}
	for i := range m.pix {
		m.pix[i] = idx
	}
}

// FillNRGBA sets every pixel of an RGB image to c.
func (m *Image) FillNRGBA(c color.NRGBA) {
	if m.mode != ModeRGB {
		return
	}
	for i := 0; i < len(m.pix); i += 4 {
		m.pix[i+0] = c.R
		m.pix[i+1] = c.G
		m.pix[i+2] = c.B
		m.pix[i+3] = c.A
	}
}

// Clone returns a deep copy.
func (m *Image) Clone() *Image {
	pix := make([]byte, len(m.pix))
	copy(pix, m.pix)
	return &Image{
		pix:    pix,
		width:  m.width,
		height: m.height,
		stride: m.stride,
		mode:   m.mode,
	}
}

// Equal reports whether both images have the same mode, size and pixels.
func (m *Image) Equal(o *Image) bool {
	if m == nil || o == nil {
		return m == o
	}
	if m.mode != o.mode || m.width != o.width || m.height != o.height {
		return false
	}
	for y := 0; y < m.height; y++ {
		a := m.pix[y*m.stride : y*m.stride+m.width*m.mode.BytesPerPixel()]
		b := o.pix[y*o.stride : y*o.stride+o.width*o.mode.BytesPerPixel()]
		if string(a) != string(b) {
			return false
		}
	}
	return true
}

// ToNRGBA converts the image to a standard library NRGBA image.
//
// Indexed images are resolved through pal; pixels equal to transparent
// (when transparent >= 0) and indices past the end of pal become fully
// transparent. RGB images are copied and pal is ignored.
func (m *Image) ToNRGBA(pal *Palette, transparent int) *image.NRGBA {
	out := image.NewNRGBA(m.Bounds())
	if m.mode == ModeRGB {
		for y := 0; y < m.height; y++ {
			copy(out.Pix[y*out.Stride:y*out.Stride+m.width*4], m.pix[y*m.stride:])
		}
		return out
	}
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			idx := int(m.pix[y*m.stride+x])
			if idx == transparent || pal == nil || idx >= pal.Len() {
				continue
			}
			out.SetNRGBA(x, y, pal.At(idx))
		}
	}
	return out
}

// FromImage converts any image.Image to an RGB Image.
func FromImage(src image.Image) (*Image, error) {
	b := src.Bounds()
	dst, err := NewImage(ModeRGB, b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			dst.SetNRGBA(x, y, c)
		}
	}
	return dst, nil
}
