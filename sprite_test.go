package spritegif

import (
	"testing"
	"time"

	"github.com/gogpu/spritegif/raster"
)

func TestNewSprite(t *testing.T) {
	s := NewSprite(raster.ModeRGB, 10, 20, 3)
	if s.Width != 10 || s.Height != 20 || s.Mode != raster.ModeRGB {
		t.Errorf("NewSprite() = %dx%d %v", s.Width, s.Height, s.Mode)
	}
	if s.FrameCount() != 3 {
		t.Errorf("FrameCount() = %d, want 3", s.FrameCount())
	}
	for i, f := range s.Frames {
		if f.Duration != DefaultFrameDuration || f.Disposal != DisposalUnspecified {
			t.Errorf("frame %d = %+v", i, f)
		}
	}
	if NewSprite(raster.ModeRGB, 1, 1, -2).FrameCount() != 0 {
		t.Error("negative frame count should give no frames")
	}
}

func TestPaletteFor(t *testing.T) {
	a := testPalette(t)
	b := testPalette(t, red, green)

	s := NewSprite(raster.ModeIndexed, 1, 1, 5)
	if s.PaletteFor(0) != nil {
		t.Error("PaletteFor(0) on a sprite without palettes should be nil")
	}
	s.SetPalette(0, a)
	s.SetPalette(3, b)

	tests := []struct {
		frame int
		want  *raster.Palette
	}{
		{0, a}, {1, a}, {2, a}, {3, b}, {4, b}, {99, b},
	}
	for _, tt := range tests {
		if got := s.PaletteFor(tt.frame); got != tt.want {
			t.Errorf("PaletteFor(%d) = %p, want %p", tt.frame, got, tt.want)
		}
	}
}

func TestBackgroundLayer(t *testing.T) {
	bottom := NewImageLayer("bottom")
	top := NewImageLayer("top")
	top.SetBackground(true)

	s := NewSprite(raster.ModeRGB, 1, 1, 1)
	s.AddLayer(bottom)
	s.AddLayer(top)
	if s.BackgroundLayer() != nil {
		t.Error("a background flag above the bottom layer should not count")
	}

	bottom.SetBackground(true)
	if s.BackgroundLayer() != bottom {
		t.Error("BackgroundLayer() should return the bottom layer")
	}

	bottom.SetVisible(false)
	if s.BackgroundLayer() != bottom {
		t.Error("a hidden background layer should still be the background")
	}

	nested := NewImageLayer("nested")
	nested.SetBackground(true)
	grouped := NewSprite(raster.ModeRGB, 1, 1, 1)
	grouped.AddLayer(NewGroupLayer("empty"))
	grouped.AddLayer(NewGroupLayer("group", nested, NewImageLayer("above")))
	if grouped.BackgroundLayer() != nested {
		t.Error("BackgroundLayer() should find the bottom layer inside groups")
	}
}

func TestVisibleImageLayersOrder(t *testing.T) {
	a, b, c, d := NewImageLayer("a"), NewImageLayer("b"), NewImageLayer("c"), NewImageLayer("d")
	inner := NewGroupLayer("inner", b, c)
	hiddenGroup := NewGroupLayer("hidden", NewImageLayer("x"))
	hiddenGroup.SetVisible(false)
	root := NewGroupLayer("", a, inner, hiddenGroup)
	root.Add(d)

	got := visibleImageLayers(root)
	want := []string{"a", "b", "c", "d"}
	if len(got) != len(want) {
		t.Fatalf("visibleImageLayers() returned %d layers, want %d", len(got), len(want))
	}
	for i, l := range got {
		if l.Name() != want[i] {
			t.Errorf("layer %d = %q, want %q", i, l.Name(), want[i])
		}
	}
	if visibleImageLayers(nil) != nil {
		t.Error("visibleImageLayers(nil) should be nil")
	}
	if len(inner.Children()) != 2 {
		t.Errorf("Children() = %d layers, want 2", len(inner.Children()))
	}
}

func TestImageLayerCels(t *testing.T) {
	l := NewImageLayer("l")
	if l.Opacity() != 255 || !l.Visible() || l.IsBackground() {
		t.Errorf("NewImageLayer() defaults: opacity %d visible %v background %v", l.Opacity(), l.Visible(), l.IsBackground())
	}
	cel := NewCel(raster.MustImage(raster.ModeRGB, 1, 1))
	if cel.Opacity != 255 {
		t.Errorf("NewCel().Opacity = %d, want 255", cel.Opacity)
	}
	l.SetCel(2, cel)
	if l.Cel(2) != cel || l.Cel(1) != nil {
		t.Error("Cel() did not return the stored cel")
	}
	l.SetCel(2, nil)
	if l.Cel(2) != nil {
		t.Error("SetCel(nil) should remove the cel")
	}
}

func TestDelayConversion(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want int
	}{
		{0, 0},
		{-time.Second, 0},
		{9 * time.Millisecond, 0},
		{10 * time.Millisecond, 1},
		{100 * time.Millisecond, 10},
		{135 * time.Millisecond, 13},
		{time.Hour, 0xffff},
	}
	for _, tt := range tests {
		if got := durationToDelay(tt.d); got != tt.want {
			t.Errorf("durationToDelay(%v) = %d, want %d", tt.d, got, tt.want)
		}
	}
	if got := delayToDuration(13); got != 130*time.Millisecond {
		t.Errorf("delayToDuration(13) = %v, want 130ms", got)
	}
}

func TestDisposalString(t *testing.T) {
	tests := []struct {
		d    Disposal
		want string
	}{
		{DisposalUnspecified, "unspecified"},
		{DisposalNone, "none"},
		{DisposalBackground, "background"},
		{DisposalPrevious, "previous"},
		{Disposal(5), "Disposal(5)"},
	}
	for _, tt := range tests {
		if got := tt.d.String(); got != tt.want {
			t.Errorf("Disposal(%d).String() = %q, want %q", uint8(tt.d), got, tt.want)
		}
	}
}
