package lzw

import "io"

// codeWriter packs variable-width codes LSB-first into bytes.
type codeWriter struct {
	w     io.ByteWriter
	bits  uint32
	nBits uint
	width uint
}

func (c *codeWriter) write(code uint32) error {
	c.bits |= code << c.nBits
	c.nBits += c.width
	for c.nBits >= 8 {
		if err := c.w.WriteByte(uint8(c.bits)); err != nil {
			return err
		}
		c.bits >>= 8
		c.nBits -= 8
	}
	return nil
}

// flush writes any pending partial byte, zero-padded in the high bits.
func (c *codeWriter) flush() error {
	if c.nBits == 0 {
		return nil
	}
	err := c.w.WriteByte(uint8(c.bits))
	c.bits, c.nBits = 0, 0
	return err
}

// codeReader unpacks variable-width codes LSB-first from bytes.
type codeReader struct {
	r     io.ByteReader
	bits  uint32
	nBits uint
	width uint
}

// read returns the next code. io.EOF is returned only when the source is
// exhausted on a byte boundary of a code.
func (c *codeReader) read() (uint16, error) {
	for c.nBits < c.width {
		b, err := c.r.ReadByte()
		if err != nil {
			if err == io.EOF && c.nBits > 0 && c.bits != 0 {
				err = io.ErrUnexpectedEOF
			}
			return 0, err
		}
		c.bits |= uint32(b) << c.nBits
		c.nBits += 8
	}
	code := uint16(c.bits & (1<<c.width - 1))
	c.bits >>= c.width
	c.nBits -= c.width
	return code, nil
}
