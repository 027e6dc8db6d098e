package lzw

import (
	"errors"
	"io"
)

// Decoding errors.
var (
	// ErrCorrupt is returned for a code that is neither a literal, a control
	// code, nor an already defined table entry.
	ErrCorrupt = errors.New("lzw: invalid code")

	// ErrTooMuchData is returned when the stream expands past the destination.
	ErrTooMuchData = errors.New("lzw: too much image data")

	// ErrNotEnoughData is returned when the stream ends before the destination is full.
	ErrNotEnoughData = errors.New("lzw: not enough image data")
)

const noCode = 0xffff

// Decoder expands one image's LZW stream.
type Decoder struct {
	cr       codeReader
	litWidth uint
	clear    uint16
	eoi      uint16
	hi       uint16
	overflow uint16
	last     uint16

	prefix  [1 << MaxWidth]uint16
	suffix  [1 << MaxWidth]uint8
	scratch [1 << MaxWidth]uint8
}

// NewDecoder returns a Decoder reading codes from r. litWidth is the GIF
// minimum code size, in [2, 8].
func NewDecoder(r io.ByteReader, litWidth int) (*Decoder, error) {
	if litWidth < 2 || litWidth > 8 {
		return nil, ErrLitWidth
	}
	d := &Decoder{
		cr:       codeReader{r: r},
		litWidth: uint(litWidth),
		clear:    1 << uint(litWidth),
	}
	d.eoi = d.clear + 1
	d.reset()
	return d, nil
}

func (d *Decoder) reset() {
	d.cr.width = d.litWidth + 1
	d.hi = d.eoi
	d.overflow = 1 << (d.litWidth + 1)
	d.last = noCode
}

// Decode expands codes into dst until the end-of-information code and
// returns the number of bytes written. A source that ends without the
// end-of-information code is accepted once dst is full.
func (d *Decoder) Decode(dst []byte) (int, error) {
	n := 0
	for {
		code, err := d.cr.read()
		if err != nil {
			if err == io.EOF {
				if n == len(dst) {
					return n, nil
				}
				err = io.ErrUnexpectedEOF
			}
			return n, err
		}

		switch {
		case code < d.clear:
			if n >= len(dst) {
				return n, ErrTooMuchData
			}
			dst[n] = uint8(code)
			n++
			if d.last != noCode {
				d.suffix[d.hi] = uint8(code)
				d.prefix[d.hi] = d.last
			}
		case code == d.clear:
			d.reset()
			continue
		case code == d.eoi:
			return n, nil
		case code <= d.hi:
			c, i := code, len(d.scratch)-1
			if code == d.hi && d.last != noCode {
				// The code being defined expands to last + first(last).
				c = d.last
				for c >= d.clear {
					c = d.prefix[c]
				}
				d.scratch[i] = uint8(c)
				i--
				c = d.last
			}
			for c >= d.clear {
				d.scratch[i] = d.suffix[c]
				i--
				c = d.prefix[c]
			}
			d.scratch[i] = uint8(c)
			if d.last != noCode {
				d.suffix[d.hi] = uint8(c)
				d.prefix[d.hi] = d.last
			}
			seq := d.scratch[i:]
			if n+len(seq) > len(dst) {
				n += copy(dst[n:], seq)
				return n, ErrTooMuchData
			}
			n += copy(dst[n:], seq)
		default:
			return n, ErrCorrupt
		}

		d.last, d.hi = code, d.hi+1
		if d.hi >= d.overflow {
			if d.cr.width == MaxWidth {
				d.last = noCode
				d.hi--
			} else {
				d.cr.width++
				d.overflow <<= 1
			}
		}
	}
}

// Decompress expands one complete LZW stream into dst, which must be
// exactly the size of the decoded image.
func Decompress(r io.ByteReader, litWidth int, dst []byte) error {
	d, err := NewDecoder(r, litWidth)
	if err != nil {
		return err
	}
	n, err := d.Decode(dst)
	if err != nil {
		return err
	}
	if n < len(dst) {
		return ErrNotEnoughData
	}
	return nil
}
