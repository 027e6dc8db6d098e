package lzw

import (
	"errors"
	"io"
)

// maxBlockLen is the largest payload of one GIF data sub-block.
const maxBlockLen = 255

// ErrShortBlock is returned when a sub-block ends before its declared length.
var ErrShortBlock = errors.New("lzw: truncated data sub-block")

// Reader is the source interface the block reader needs. Wrap plain
// io.Readers in a bufio.Reader first.
type Reader interface {
	io.Reader
	io.ByteReader
}

// BlockWriter frames a byte stream into GIF data sub-blocks: a length byte
// of 1..255 followed by that many bytes, terminated by a zero-length block
// on Close.
type BlockWriter struct {
	w   io.Writer
	buf [1 + maxBlockLen]byte
	n   int
	err error
}

// NewBlockWriter returns a BlockWriter writing to w.
func NewBlockWriter(w io.Writer) *BlockWriter {
	return &BlockWriter{w: w}
}

// WriteByte implements io.ByteWriter.
func (b *BlockWriter) WriteByte(c byte) error {
	if b.err != nil {
		return b.err
	}
	b.n++
	b.buf[b.n] = c
	if b.n == maxBlockLen {
		return b.flush()
	}
	return nil
}

// Write implements io.Writer.
func (b *BlockWriter) Write(p []byte) (int, error) {
	for i, c := range p {
		if err := b.WriteByte(c); err != nil {
			return i, err
		}
	}
	return len(p), nil
}

func (b *BlockWriter) flush() error {
	if b.n == 0 {
		return nil
	}
	b.buf[0] = uint8(b.n)
	_, b.err = b.w.Write(b.buf[:b.n+1])
	b.n = 0
	return b.err
}

// Close flushes the pending sub-block and writes the block terminator.
// It does not close the underlying writer.
func (b *BlockWriter) Close() error {
	if err := b.flush(); err != nil {
		return err
	}
	b.buf[0] = 0
	_, b.err = b.w.Write(b.buf[:1])
	if b.err == nil {
		b.err = errors.New("lzw: write to closed block writer")
		return nil
	}
	return b.err
}

// BlockReader presents the payload of a run of GIF data sub-blocks as one
// continuous stream. It returns io.EOF at the zero-length terminator.
type BlockReader struct {
	r     Reader
	buf   [maxBlockLen]byte
	slice []byte
	err   error
}

// NewBlockReader returns a BlockReader reading from r.
func NewBlockReader(r Reader) *BlockReader {
	return &BlockReader{r: r}
}

func (b *BlockReader) fill() error {
	if b.err != nil {
		return b.err
	}
	n, err := b.r.ReadByte()
	if err != nil {
		b.err = unexpected(err)
		return b.err
	}
	if n == 0 {
		b.err = io.EOF
		return b.err
	}
	b.slice = b.buf[:n]
	if _, err := io.ReadFull(b.r, b.slice); err != nil {
		b.slice = nil
		b.err = ErrShortBlock
		return b.err
	}
	return nil
}

// ReadByte implements io.ByteReader.
func (b *BlockReader) ReadByte() (byte, error) {
	for len(b.slice) == 0 {
		if err := b.fill(); err != nil {
			return 0, err
		}
	}
	c := b.slice[0]
	b.slice = b.slice[1:]
	return c, nil
}

// Read implements io.Reader.
func (b *BlockReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	for len(b.slice) == 0 {
		if err := b.fill(); err != nil {
			return 0, err
		}
	}
	n := copy(p, b.slice)
	b.slice = b.slice[n:]
	return n, nil
}

// Drain consumes the rest of the sub-blocks up to and including the
// terminator and returns how many payload bytes were skipped.
func (b *BlockReader) Drain() (int, error) {
	skipped := len(b.slice)
	b.slice = nil
	for {
		err := b.fill()
		if err == io.EOF {
			return skipped, nil
		}
		if err != nil {
			return skipped, err
		}
		skipped += len(b.slice)
		b.slice = nil
	}
}

func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
