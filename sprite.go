package spritegif

import (
	"fmt"
	"time"

	"github.com/gogpu/spritegif/raster"
)

// DefaultFrameDuration is the duration of frames created by NewSprite.
const DefaultFrameDuration = 100 * time.Millisecond

// Disposal says what happens to a frame's area before the next frame is shown.
type Disposal uint8

const (
	// DisposalUnspecified lets the encoder choose: frames of sprites without
	// a background layer are cleared, others are kept.
	DisposalUnspecified Disposal = iota
	// DisposalNone keeps the frame in place.
	DisposalNone
	// DisposalBackground clears the frame to transparent.
	DisposalBackground
	// DisposalPrevious restores what was shown before the frame.
	DisposalPrevious
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

// FrameInfo is the per-frame metadata of a sprite.
type FrameInfo struct {
	// Duration is stored in hundredths of a second, rounded down.
	Duration time.Duration
	Disposal Disposal
}

// Sprite is a layered, animated image.
type Sprite struct {
	Width  int
	Height int
	Mode   raster.Mode

	// TransparentIndex is the "empty" pixel of indexed sprites. It is also the
	// transparent color written for indexed sprites without a background layer.
	TransparentIndex uint8

	// Root holds the layer tree, bottom first.
	Root *GroupLayer

	// Palettes are keyed by the frame at which they take effect: frame i uses
	// the last non-nil Palettes[j] with j <= i.
	Palettes []*raster.Palette

	Frames []FrameInfo

	// LoopCount is the number of extra plays: 0 loops forever and -1 means
	// the file carries no loop information.
	LoopCount int

	Comment string
}

// NewSprite returns an empty sprite with the given number of frames of
// DefaultFrameDuration each.
func NewSprite(mode raster.Mode, width, height, frames int) *Sprite {
	s := &Sprite{
		Width:  width,
		Height: height,
		Mode:   mode,
		Root:   NewGroupLayer(""),
		Frames: make([]FrameInfo, max(frames, 0)),
	}
	for i := range s.Frames {
		s.Frames[i].Duration = DefaultFrameDuration
	}
	return s
}

// FrameCount returns the number of frames.
func (s *Sprite) FrameCount() int { return len(s.Frames) }

// AddLayer puts l on top of the layer stack.
func (s *Sprite) AddLayer(l Layer) {
	if s.Root == nil {
		s.Root = NewGroupLayer("")
	}
	s.Root.Add(l)
}

// SetPalette makes p the palette from frame on.
func (s *Sprite) SetPalette(frame int, p *raster.Palette) {
	for len(s.Palettes) <= frame {
		s.Palettes = append(s.Palettes, nil)
	}
	s.Palettes[frame] = p
}

// PaletteFor returns the palette in effect at frame, or nil.
func (s *Sprite) PaletteFor(frame int) *raster.Palette {
	for i := min(frame, len(s.Palettes)-1); i >= 0; i-- {
		if s.Palettes[i] != nil {
			return s.Palettes[i]
		}
	}
	return nil
}

// BackgroundLayer returns the bottom image layer when it is flagged as
// background, or nil. A hidden background layer still counts: it supplies
// the base of every frame.
func (s *Sprite) BackgroundLayer() *ImageLayer {
	if l := bottomImageLayer(s.Root); l != nil && l.IsBackground() {
		return l
	}
	return nil
}

func (s *Sprite) validate() error {
	if s == nil {
		return ErrNilSprite
	}
	if s.Width < 1 || s.Width > 0xffff || s.Height < 1 || s.Height > 0xffff {
		return fmt.Errorf("%w: canvas %dx%d", ErrInvalidSprite, s.Width, s.Height)
	}
	if !s.Mode.IsValid() {
		return fmt.Errorf("%w: %w", ErrInvalidSprite, raster.ErrInvalidMode)
	}
	if len(s.Frames) == 0 {
		return ErrNoFrames
	}
	return nil
}

// durationToDelay converts a frame duration to GIF hundredths of a second.
func durationToDelay(d time.Duration) int {
	return int(min(max(d/(10*time.Millisecond), 0), 0xffff))
}

func delayToDuration(delay int) time.Duration {
	return time.Duration(delay) * 10 * time.Millisecond
}
