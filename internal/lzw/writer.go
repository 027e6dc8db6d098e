package lzw

import (
	"errors"
	"io"
)

const (
	// MaxWidth is the widest code GIF allows.
	MaxWidth = 12

	maxCode     = 1<<MaxWidth - 1
	invalidCode = 1<<32 - 1
)

// Encoding errors.
var (
	// ErrLitWidth is returned for a minimum code size outside [2, 8].
	ErrLitWidth = errors.New("lzw: literal width out of range")

	// ErrLiteral is returned when an input byte does not fit the literal width.
	ErrLiteral = errors.New("lzw: input byte too large for the literal width")

	// ErrClosed is returned when writing to a closed Encoder.
	ErrClosed = errors.New("lzw: encoder closed")
)

// Encoder compresses one image's index stream.
type Encoder struct {
	cw       codeWriter
	litWidth uint
	clear    uint32
	hi       uint32
	overflow uint32
	saved    uint32
	table    map[uint32]uint32
	closed   bool
}

// NewEncoder returns an Encoder writing codes to w. litWidth is the GIF
// minimum code size, in [2, 8].
func NewEncoder(w io.ByteWriter, litWidth int) (*Encoder, error) {
	if litWidth < 2 || litWidth > 8 {
		return nil, ErrLitWidth
	}
	e := &Encoder{
		cw:       codeWriter{w: w},
		litWidth: uint(litWidth),
		clear:    1 << uint(litWidth),
		saved:    invalidCode,
		table:    make(map[uint32]uint32, 1<<MaxWidth),
	}
	e.reset()
	return e, nil
}

// reset returns the code table to its initial state. It does not emit a
// clear code.
func (e *Encoder) reset() {
	e.cw.width = e.litWidth + 1
	e.hi = e.clear + 1
	e.overflow = 1 << (e.litWidth + 1)
	clear(e.table)
}

// incHi advances the next implied code and widens the code size when
// needed. When the table is full it emits a clear code, resets, and
// reports true.
func (e *Encoder) incHi() (bool, error) {
	e.hi++
	if e.hi == e.overflow {
		e.cw.width++
		e.overflow <<= 1
	}
	if e.hi == maxCode {
		if err := e.cw.write(e.clear); err != nil {
			return false, err
		}
		e.reset()
		return true, nil
	}
	return false, nil
}

// Write compresses p. The first call emits the leading clear code.
func (e *Encoder) Write(p []byte) (int, error) {
	if e.closed {
		return 0, ErrClosed
	}
	for i, b := range p {
		lit := uint32(b)
		if lit >= e.clear {
			return i, ErrLiteral
		}
		if e.saved == invalidCode {
			if err := e.cw.write(e.clear); err != nil {
				return i, err
			}
			e.saved = lit
			continue
		}
		key := e.saved<<8 | lit
		if code, ok := e.table[key]; ok {
			e.saved = code
			continue
		}
		if err := e.cw.write(e.saved); err != nil {
			return i, err
		}
		e.saved = lit
		full, err := e.incHi()
		if err != nil {
			return i, err
		}
		if !full {
			e.table[key] = e.hi
		}
	}
	return len(p), nil
}

// Close writes the pending code and the end-of-information code and flushes
// the last partial byte. It does not close the underlying writer.
func (e *Encoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	if e.saved != invalidCode {
		if err := e.cw.write(e.saved); err != nil {
			return err
		}
		if _, err := e.incHi(); err != nil {
			return err
		}
	} else {
		if err := e.cw.write(e.clear); err != nil {
			return err
		}
	}
	if err := e.cw.write(e.clear + 1); err != nil {
		return err
	}
	return e.cw.flush()
}

// Compress encodes pix as one complete LZW stream.
func Compress(w io.ByteWriter, litWidth int, pix []byte) error {
	e, err := NewEncoder(w, litWidth)
	if err != nil {
		return err
	}
	if _, err := e.Write(pix); err != nil {
		return err
	}
	return e.Close()
}
