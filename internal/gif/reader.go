package gif

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/gogpu/spritegif/internal/lzw"
	"github.com/gogpu/spritegif/raster"
)

type decoder struct {
	r    lzw.Reader
	file *File
	gce  *GraphicControl
	text strings.Builder
	tmp  [768]byte
}

// Decode reads a complete GIF87a or GIF89a stream.
func Decode(r io.Reader) (*File, error) {
	d := newDecoder(r)
	if err := d.readHeader(); err != nil {
		return nil, err
	}
	if err := d.readBlocks(); err != nil {
		return nil, err
	}
	return d.file, nil
}

// DecodeConfig reads only the header and logical screen descriptor.
func DecodeConfig(r io.Reader) (Config, error) {
	d := newDecoder(r)
	if err := d.readHeader(); err != nil {
		return Config{}, err
	}
	return Config{
		Width:        d.file.Width,
		Height:       d.file.Height,
		Version:      d.file.Version,
		GlobalColors: d.file.Palette.Len(),
	}, nil
}

func newDecoder(r io.Reader) *decoder {
	d := &decoder{file: &File{LoopCount: -1}}
	if rr, ok := r.(lzw.Reader); ok {
		d.r = rr
	} else {
		d.r = bufio.NewReader(r)
	}
	return d
}

// formatError wraps a read failure, turning early EOFs into ErrFormat.
func formatError(what string, err error) error {
	switch {
	case errors.Is(err, ErrFormat), errors.Is(err, ErrUnsupported):
		return err
	case err == io.EOF, errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, lzw.ErrShortBlock):
		return fmt.Errorf("%w: %s: truncated", ErrFormat, what)
	case errors.Is(err, lzw.ErrCorrupt), errors.Is(err, lzw.ErrTooMuchData),
		errors.Is(err, lzw.ErrNotEnoughData), errors.Is(err, lzw.ErrLitWidth):
		return fmt.Errorf("%w: %s: %w", ErrFormat, what, err)
	default:
		return fmt.Errorf("gif: %s: %w", what, err)
	}
}

func (d *decoder) readFull(p []byte, what string) error {
	if _, err := io.ReadFull(d.r, p); err != nil {
		return formatError(what, err)
	}
	return nil
}

func (d *decoder) readHeader() error {
	if err := d.readFull(d.tmp[:13], "header"); err != nil {
		return err
	}
	switch string(d.tmp[:6]) {
	case "GIF87a":
		d.file.Version = "87a"
	case "GIF89a":
		d.file.Version = "89a"
	default:
		if string(d.tmp[:3]) == "GIF" {
			return fmt.Errorf("%w: version %q", ErrUnsupported, d.tmp[3:6])
		}
		return errBadSignature
	}
	d.file.Width = int(binary.LittleEndian.Uint16(d.tmp[6:8]))
	d.file.Height = int(binary.LittleEndian.Uint16(d.tmp[8:10]))
	flags := d.tmp[10]
	d.file.BackgroundIndex = d.tmp[11]

	if flags&fColorTable != 0 {
		p, err := d.readColorTable(flags)
		if err != nil {
			return err
		}
		d.file.Palette = p
	}
	slogger().Debug("gif: header",
		"version", d.file.Version,
		"width", d.file.Width,
		"height", d.file.Height,
		"global_colors", d.file.Palette.Len())
	return nil
}

func (d *decoder) readColorTable(flags byte) (*raster.Palette, error) {
	n := 1 << (1 + uint(flags&fColorTableBits))
	if err := d.readFull(d.tmp[:3*n], "color table"); err != nil {
		return nil, err
	}
	colors := make([]color.NRGBA, n)
	for i := range colors {
		colors[i] = color.NRGBA{R: d.tmp[3*i], G: d.tmp[3*i+1], B: d.tmp[3*i+2], A: 0xff}
	}
	return raster.PaletteFromColors(colors...)
}

func (d *decoder) readBlocks() error {
	for {
		c, err := d.r.ReadByte()
		if err != nil {
			return formatError("block introducer", err)
		}
		switch c {
		case sExtension:
			if err := d.readExtension(); err != nil {
				return err
			}
		case sImageDescriptor:
			if err := d.readImage(); err != nil {
				return err
			}
		case sTrailer:
			if len(d.file.Frames) == 0 {
				return errNoFrames
			}
			d.file.Comment = d.text.String()
			return nil
		default:
			return fmt.Errorf("%w: unknown block type 0x%.2x", ErrFormat, c)
		}
	}
}

func (d *decoder) readExtension() error {
	label, err := d.r.ReadByte()
	if err != nil {
		return formatError("extension", err)
	}
	switch label {
	case eGraphicControl:
		return d.readGraphicControl()
	case eApplication:
		return d.readApplication()
	case eComment:
		return d.readComment()
	case eText:
		slogger().Debug("gif: skipping plain text extension")
	default:
		slogger().Warn("gif: skipping unknown extension", "label", fmt.Sprintf("0x%.2x", label))
	}
	_, err = lzw.NewBlockReader(d.r).Drain()
	if err != nil {
		return formatError("extension", err)
	}
	return nil
}

func (d *decoder) readGraphicControl() error {
	if err := d.readFull(d.tmp[:6], "graphic control"); err != nil {
		return err
	}
	if d.tmp[0] != 4 {
		return fmt.Errorf("%w: graphic control block size %d", ErrFormat, d.tmp[0])
	}
	flags := d.tmp[1]
	gce := &GraphicControl{
		Disposal:    Disposal((flags & gcDisposalMask) >> gcDisposalShift),
		Delay:       int(binary.LittleEndian.Uint16(d.tmp[2:4])),
		Transparent: -1,
		UserInput:   flags&gcUserInput != 0,
	}
	if flags&gcTransparentColorSet != 0 {
		gce.Transparent = int(d.tmp[4])
	}
	if d.tmp[5] != 0 {
		return fmt.Errorf("%w: graphic control missing terminator", ErrFormat)
	}
	if d.gce != nil {
		slogger().Warn("gif: graphic control without image, replacing")
	}
	d.gce = gce
	return nil
}

func (d *decoder) readApplication() error {
	size, err := d.r.ReadByte()
	if err != nil {
		return formatError("application extension", err)
	}
	if err := d.readFull(d.tmp[:size], "application extension"); err != nil {
		return err
	}
	id := string(d.tmp[:size])
	br := lzw.NewBlockReader(d.r)
	if size == 11 && (id == "NETSCAPE2.0" || id == "ANIMEXTS1.0") {
		var sub [3]byte
		if _, err := io.ReadFull(br, sub[:]); err == nil && sub[0] == 1 {
			d.file.LoopCount = int(binary.LittleEndian.Uint16(sub[1:3]))
		}
	} else {
		slogger().Debug("gif: skipping application extension", "id", id)
	}
	if _, err := br.Drain(); err != nil {
		return formatError("application extension", err)
	}
	return nil
}

func (d *decoder) readComment() error {
	raw, err := io.ReadAll(lzw.NewBlockReader(d.r))
	if err != nil {
		return formatError("comment", err)
	}
	text, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return fmt.Errorf("gif: comment: %w", err)
	}
	d.text.Write(text)
	return nil
}

func (d *decoder) readImage() error {
	if err := d.readFull(d.tmp[:9], "image descriptor"); err != nil {
		return err
	}
	left := int(binary.LittleEndian.Uint16(d.tmp[0:2]))
	top := int(binary.LittleEndian.Uint16(d.tmp[2:4]))
	width := int(binary.LittleEndian.Uint16(d.tmp[4:6]))
	height := int(binary.LittleEndian.Uint16(d.tmp[6:8]))
	flags := d.tmp[8]

	fr := &Frame{
		Bounds:     image.Rect(left, top, left+width, top+height),
		Interlaced: flags&ifInterlace != 0,
		Control:    d.gce,
	}
	d.gce = nil
	index := len(d.file.Frames)

	if !fr.Bounds.In(image.Rect(0, 0, d.file.Width, d.file.Height)) {
		slogger().Warn("gif: frame outside logical screen",
			"frame", index, "bounds", fr.Bounds)
	}

	pal := d.file.Palette
	if flags&ifLocalColorTable != 0 {
		p, err := d.readColorTable(flags)
		if err != nil {
			return err
		}
		fr.Palette = p
		pal = p
	}
	if pal.Len() == 0 {
		return errNoPalette
	}
	if t := fr.Transparent(); t >= pal.Len() {
		slogger().Warn("gif: transparent index outside color table",
			"frame", index, "index", t)
	}

	litWidth, err := d.r.ReadByte()
	if err != nil {
		return formatError("image data", err)
	}
	if litWidth < 2 || litWidth > 8 {
		return errLitWidth
	}

	fr.Pix = make([]byte, width*height)
	br := lzw.NewBlockReader(d.r)
	if err := lzw.Decompress(br, int(litWidth), fr.Pix); err != nil {
		return formatError(fmt.Sprintf("frame %d", index), err)
	}
	skipped, err := br.Drain()
	if err != nil {
		return formatError(fmt.Sprintf("frame %d", index), err)
	}
	if skipped > 0 {
		slogger().Debug("gif: trailing image data ignored", "frame", index, "bytes", skipped)
	}

	n := pal.Len()
	for _, p := range fr.Pix {
		if int(p) >= n {
			return errBadPixel
		}
	}
	if fr.Interlaced {
		fr.Pix = deinterlace(fr.Pix, width, height)
	}

	slogger().Debug("gif: frame",
		"index", index,
		"bounds", fr.Bounds,
		"local_palette", fr.Palette != nil,
		"interlaced", fr.Interlaced)
	d.file.Frames = append(d.file.Frames, fr)
	return nil
}

// deinterlace reorders rows from wire order to image order.
func deinterlace(pix []byte, width, height int) []byte {
	out := make([]byte, len(pix))
	for i, y := range interlacedRows(height) {
		copy(out[y*width:(y+1)*width], pix[i*width:(i+1)*width])
	}
	return out
}
