package gif

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/gogpu/spritegif/internal/lzw"
	"github.com/gogpu/spritegif/raster"
)

const maxDimension = 0xffff

// writer is the subset of bufio.Writer the encoder needs.
type writer interface {
	io.Writer
	io.ByteWriter
	Flush() error
}

type encoder struct {
	w   writer
	err error
	buf [16]byte
}

// Encode writes f to w as a GIF89a stream.
//
// Frames without a local palette use the global one; it is an error for a
// frame to have neither. Color tables are padded with black to the next
// power of two.
func Encode(w io.Writer, f *File) error {
	if err := validate(f); err != nil {
		return err
	}

	e := encoder{}
	if ww, ok := w.(writer); ok {
		e.w = ww
	} else {
		e.w = bufio.NewWriter(w)
	}

	e.writeHeader(f)
	if f.LoopCount >= 0 {
		e.writeLoop(f.LoopCount)
	}
	if f.Comment != "" {
		e.writeComment(f.Comment)
	}
	for i, fr := range f.Frames {
		e.writeFrame(f, fr)
		if e.err != nil {
			return fmt.Errorf("gif: frame %d: %w", i, e.err)
		}
	}
	e.writeByte(sTrailer)
	if e.err != nil {
		return e.err
	}
	return e.w.Flush()
}

func validate(f *File) error {
	if f == nil {
		return fmt.Errorf("%w: nil file", ErrInvalid)
	}
	if f.Width < 1 || f.Width > maxDimension || f.Height < 1 || f.Height > maxDimension {
		return fmt.Errorf("%w: screen size %dx%d", ErrInvalid, f.Width, f.Height)
	}
	if len(f.Frames) == 0 {
		return fmt.Errorf("%w: no frames", ErrInvalid)
	}
	if f.LoopCount > 0xffff {
		return fmt.Errorf("%w: loop count %d", ErrInvalid, f.LoopCount)
	}
	for i, fr := range f.Frames {
		b := fr.Bounds
		if b.Min.X < 0 || b.Min.Y < 0 || b.Max.X > maxDimension || b.Max.Y > maxDimension || b.Empty() {
			return fmt.Errorf("%w: frame %d bounds %v", ErrInvalid, i, b)
		}
		if len(fr.Pix) != b.Dx()*b.Dy() {
			return fmt.Errorf("%w: frame %d has %d pixels, want %d", ErrInvalid, i, len(fr.Pix), b.Dx()*b.Dy())
		}
		pal := fr.Palette
		if pal == nil {
			pal = f.Palette
		}
		if pal.Len() == 0 {
			return fmt.Errorf("%w: frame %d has no color table", ErrInvalid, i)
		}
		if c := fr.Control; c != nil {
			if c.Transparent >= pal.Len() {
				return fmt.Errorf("%w: frame %d transparent index %d outside color table", ErrInvalid, i, c.Transparent)
			}
			if c.Delay < 0 || c.Delay > 0xffff {
				return fmt.Errorf("%w: frame %d delay %d", ErrInvalid, i, c.Delay)
			}
		}
	}
	return nil
}

func (e *encoder) write(p []byte) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.Write(p)
}

func (e *encoder) writeByte(b byte) {
	if e.err != nil {
		return
	}
	e.err = e.w.WriteByte(b)
}

func (e *encoder) writeHeader(f *File) {
	e.write([]byte("GIF89a"))

	binary.LittleEndian.PutUint16(e.buf[0:2], uint16(f.Width))
	binary.LittleEndian.PutUint16(e.buf[2:4], uint16(f.Height))
	e.buf[4] = 0
	e.buf[5] = 0
	e.buf[6] = 0 // aspect ratio
	if f.Palette.Len() > 0 {
		bits := tableBits(f.Palette.Len())
		e.buf[4] = fColorTable | fColorRes | byte(bits-1)
		e.buf[5] = f.BackgroundIndex
	}
	e.write(e.buf[:7])

	if f.Palette.Len() > 0 {
		e.writeColorTable(f.Palette)
	}
}

func (e *encoder) writeColorTable(p *raster.Palette) {
	n := 1 << tableBits(p.Len())
	table := make([]byte, 3*n)
	for i := 0; i < p.Len(); i++ {
		c := p.At(i)
		table[3*i+0] = c.R
		table[3*i+1] = c.G
		table[3*i+2] = c.B
	}
	e.write(table)
}

func (e *encoder) writeLoop(count int) {
	e.buf[0] = sExtension
	e.buf[1] = eApplication
	e.buf[2] = 11
	e.write(e.buf[:3])
	e.write([]byte("NETSCAPE2.0"))
	e.buf[0] = 3 // sub-block size
	e.buf[1] = 1 // loop sub-block id
	binary.LittleEndian.PutUint16(e.buf[2:4], uint16(count))
	e.buf[4] = 0
	e.write(e.buf[:5])
}

func (e *encoder) writeComment(s string) {
	enc := encoding.ReplaceUnsupported(charmap.ISO8859_1.NewEncoder())
	text, err := enc.String(s)
	if err != nil {
		if e.err == nil {
			e.err = fmt.Errorf("gif: comment: %w", err)
		}
		return
	}
	e.writeByte(sExtension)
	e.writeByte(eComment)
	if e.err != nil {
		return
	}
	bw := lzw.NewBlockWriter(e.w)
	if _, err := bw.Write([]byte(text)); err != nil {
		e.err = err
		return
	}
	e.err = bw.Close()
}

func (e *encoder) writeControl(c *GraphicControl) {
	flags := byte(c.Disposal&7) << gcDisposalShift
	if c.UserInput {
		flags |= gcUserInput
	}
	transparent := byte(0)
	if c.Transparent >= 0 {
		flags |= gcTransparentColorSet
		transparent = byte(c.Transparent)
	}
	e.buf[0] = sExtension
	e.buf[1] = eGraphicControl
	e.buf[2] = 4
	e.buf[3] = flags
	binary.LittleEndian.PutUint16(e.buf[4:6], uint16(c.Delay))
	e.buf[6] = transparent
	e.buf[7] = 0
	e.write(e.buf[:8])
}

func (e *encoder) writeFrame(f *File, fr *Frame) {
	if fr.Control != nil {
		e.writeControl(fr.Control)
	}

	b := fr.Bounds
	e.buf[0] = sImageDescriptor
	binary.LittleEndian.PutUint16(e.buf[1:3], uint16(b.Min.X))
	binary.LittleEndian.PutUint16(e.buf[3:5], uint16(b.Min.Y))
	binary.LittleEndian.PutUint16(e.buf[5:7], uint16(b.Dx()))
	binary.LittleEndian.PutUint16(e.buf[7:9], uint16(b.Dy()))
	flags := byte(0)
	pal := f.Palette
	if fr.Palette.Len() > 0 {
		pal = fr.Palette
		flags |= ifLocalColorTable | byte(tableBits(pal.Len())-1)
	}
	if fr.Interlaced {
		flags |= ifInterlace
	}
	e.buf[9] = flags
	e.write(e.buf[:10])
	if flags&ifLocalColorTable != 0 {
		e.writeColorTable(pal)
	}

	litWidth := LitWidth(pal.Len())
	e.writeByte(byte(litWidth))
	if e.err != nil {
		return
	}

	pix := fr.Pix
	if fr.Interlaced {
		pix = interlace(pix, b.Dx(), b.Dy())
	}
	bw := lzw.NewBlockWriter(e.w)
	if err := lzw.Compress(bw, litWidth, pix); err != nil {
		e.err = err
		return
	}
	e.err = bw.Close()
}

// interlace reorders rows from image order to wire order.
func interlace(pix []byte, width, height int) []byte {
	out := make([]byte, len(pix))
	for i, y := range interlacedRows(height) {
		copy(out[i*width:(i+1)*width], pix[y*width:(y+1)*width])
	}
	return out
}
