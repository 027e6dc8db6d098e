package quant

import (
	"errors"
	"image/color"
	"testing"

	"github.com/gogpu/spritegif/raster"
)

func rgbImage(t *testing.T, w, h int, px map[[2]int]color.NRGBA) *raster.Image {
	t.Helper()
	img := raster.MustImage(raster.ModeRGB, w, h)
	for p, c := range px {
		img.SetNRGBA(p[0], p[1], c)
	}
	return img
}

func TestQuantizeExact(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}
	green := color.NRGBA{G: 255, A: 255}
	blue := color.NRGBA{B: 255, A: 255}
	black := color.NRGBA{A: 255}

	tests := []struct {
		name            string
		pixels          map[[2]int]color.NRGBA
		reserve         bool
		wantLen         int
		wantTransparent int
	}{
		{
			name:            "transparent pixel reserves index 0",
			pixels:          map[[2]int]color.NRGBA{{0, 0}: {R: 9, G: 9, B: 9, A: 0}, {0, 1}: red, {1, 0}: green, {1, 1}: blue},
			wantLen:         4,
			wantTransparent: 0,
		},
		{
			name:            "opaque frame uses every slot",
			pixels:          map[[2]int]color.NRGBA{{0, 0}: black, {0, 1}: red, {1, 0}: green, {1, 1}: blue},
			wantLen:         4,
			wantTransparent: -1,
		},
		{
			name:            "reserved slot without transparent pixels",
			pixels:          map[[2]int]color.NRGBA{{0, 0}: black, {0, 1}: red, {1, 0}: green, {1, 1}: blue},
			reserve:         true,
			wantLen:         5,
			wantTransparent: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := rgbImage(t, 2, 2, tt.pixels)
			res, err := Quantize(img, Options{ReserveTransparent: tt.reserve})
			if err != nil {
				t.Fatalf("Quantize() error = %v", err)
			}
			if !res.Exact {
				t.Error("Exact = false, want true")
			}
			if res.Palette.Len() != tt.wantLen {
				t.Errorf("palette size = %d, want %d", res.Palette.Len(), tt.wantLen)
			}
			if res.Transparent != tt.wantTransparent {
				t.Errorf("Transparent = %d, want %d", res.Transparent, tt.wantTransparent)
			}
			for p, c := range tt.pixels {
				idx := int(res.Image.IndexAt(p[0], p[1]))
				if c.A == 0 {
					if idx != 0 {
						t.Errorf("transparent pixel %v -> %d, want 0", p, idx)
					}
					continue
				}
				if got := res.Palette.At(idx); got != c {
					t.Errorf("pixel %v -> entry %d = %v, want %v", p, idx, got, c)
				}
			}
		})
	}
}

func TestQuantizeFullOpaquePalette(t *testing.T) {
	img := raster.MustImage(raster.ModeRGB, 16, 16)
	for i := 0; i < 256; i++ {
		img.SetNRGBA(i%16, i/16, color.NRGBA{R: uint8(i), G: uint8(255 - i), B: uint8(i * 7), A: 255})
	}

	tests := []struct {
		name    string
		reserve bool
	}{
		{"no reservation", false},
		{"reservation yields to colors", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Quantize(img, Options{ReserveTransparent: tt.reserve})
			if err != nil {
				t.Fatalf("Quantize() error = %v", err)
			}
			if !res.Exact {
				t.Error("Exact = false, want true")
			}
			if res.Transparent != -1 {
				t.Errorf("Transparent = %d, want -1", res.Transparent)
			}
			if res.Palette.Len() != 256 {
				t.Fatalf("palette size = %d, want 256", res.Palette.Len())
			}
			for i := 0; i < 256; i++ {
				x, y := i%16, i/16
				if got := res.Palette.At(int(res.Image.IndexAt(x, y))); got != img.NRGBAAt(x, y) {
					t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, img.NRGBAAt(x, y))
				}
			}
		})
	}

	img.SetNRGBA(0, 0, color.NRGBA{})
	res, err := Quantize(img, Options{ReserveTransparent: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.Transparent != 0 || !res.Exact || res.Palette.Len() != 256 {
		t.Errorf("with a transparent pixel: Transparent = %d, Exact = %v, size %d, want 0, true, 256",
			res.Transparent, res.Exact, res.Palette.Len())
	}
}

func TestQuantizeFirstAppearanceOrder(t *testing.T) {
	img := raster.MustImage(raster.ModeRGB, 3, 1)
	img.SetNRGBA(0, 0, color.NRGBA{B: 200, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 200, A: 255})
	img.SetNRGBA(2, 0, color.NRGBA{B: 200, A: 255})

	res, err := Quantize(img, Options{})
	if err != nil {
		t.Fatal(err)
	}
	want := []uint8{0, 1, 0}
	for x, w := range want {
		if got := res.Image.IndexAt(x, 0); got != w {
			t.Errorf("IndexAt(%d) = %d, want %d", x, got, w)
		}
	}
}

func gradient(w, h int) *raster.Image {
	img := raster.MustImage(raster.ModeRGB, w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 255 / (w - 1)), G: uint8(y * 255 / (h - 1)), B: uint8((x + y) % 256), A: 255})
		}
	}
	return img
}

func TestQuantizeReducesLargeColorSets(t *testing.T) {
	img := gradient(64, 64)
	res, err := Quantize(img, Options{ReserveTransparent: true})
	if err != nil {
		t.Fatalf("Quantize() error = %v", err)
	}
	if res.Exact {
		t.Error("Exact = true for 4096 colors")
	}
	if res.Palette.Len() > raster.MaxPaletteSize {
		t.Fatalf("palette size = %d, exceeds 256", res.Palette.Len())
	}
	if err := CheckIndices(res.Image, res.Palette); err != nil {
		t.Fatalf("CheckIndices() error = %v", err)
	}

	var total int
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			idx := int(res.Image.IndexAt(x, y))
			if idx == 0 {
				t.Fatalf("opaque pixel (%d,%d) mapped to the transparent slot", x, y)
			}
			total += distance(img.NRGBAAt(x, y), res.Palette.At(idx))
		}
	}
	// Mean squared error per pixel stays small for a smooth gradient.
	if mean := total / (64 * 64); mean > 300 {
		t.Errorf("mean squared error = %d, want <= 300", mean)
	}
}

func TestQuantizeDeterministic(t *testing.T) {
	img := gradient(40, 40)
	a, err := Quantize(img, Options{MaxColors: 32})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		b, err := Quantize(img.Clone(), Options{MaxColors: 32})
		if err != nil {
			t.Fatal(err)
		}
		if !a.Palette.Equal(b.Palette) {
			t.Fatal("palette differs between runs")
		}
		if !a.Image.Equal(b.Image) {
			t.Fatal("indices differ between runs")
		}
	}
	if a.Palette.Len() != 32 {
		t.Errorf("palette size = %d, want 32", a.Palette.Len())
	}
}

func TestQuantizeRejectsIndexed(t *testing.T) {
	img := raster.MustImage(raster.ModeIndexed, 1, 1)
	if _, err := Quantize(img, Options{}); !errors.Is(err, raster.ErrModeMismatch) {
		t.Errorf("Quantize(indexed) error = %v, want ErrModeMismatch", err)
	}
}

func TestRemap(t *testing.T) {
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	red := color.NRGBA{R: 255, A: 255}
	pal, _ := raster.PaletteFromColors(white, red)

	img := raster.MustImage(raster.ModeRGB, 2, 2)
	img.FillNRGBA(white)
	img.SetNRGBA(0, 0, red)
	img.SetNRGBA(1, 1, color.NRGBA{R: 196, A: 255})

	out, err := Remap(img, pal, -1)
	if err != nil {
		t.Fatalf("Remap() error = %v", err)
	}
	want := [2][2]uint8{{1, 0}, {0, 1}} // [x][y]
	for x := 0; x < 2; x++ {
		for y := 0; y < 2; y++ {
			if got := out.IndexAt(x, y); got != want[x][y] {
				t.Errorf("IndexAt(%d,%d) = %d, want %d", x, y, got, want[x][y])
			}
		}
	}
}

func TestRemapTransparent(t *testing.T) {
	pal, _ := raster.PaletteFromColors(color.NRGBA{A: 255}, color.NRGBA{R: 10, A: 255}, color.NRGBA{R: 250, A: 255})
	img := raster.MustImage(raster.ModeRGB, 2, 1)
	img.SetNRGBA(1, 0, color.NRGBA{A: 255}) // black, but index 0 is transparent

	out, err := Remap(img, pal, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got := out.IndexAt(0, 0); got != 0 {
		t.Errorf("transparent pixel -> %d, want 0", got)
	}
	if got := out.IndexAt(1, 0); got != 1 {
		t.Errorf("black pixel -> %d, want 1 (nearest non-transparent)", got)
	}

	if _, err := Remap(img, &raster.Palette{}, -1); !errors.Is(err, ErrEmptyPalette) {
		t.Errorf("Remap(empty) error = %v, want ErrEmptyPalette", err)
	}
}

func TestExpand(t *testing.T) {
	pal, _ := raster.PaletteFromColors(color.NRGBA{R: 1, A: 255}, color.NRGBA{G: 2, A: 255})
	img := raster.MustImage(raster.ModeIndexed, 2, 1)
	img.SetIndex(1, 0, 1)

	out, err := Expand(img, pal, 0)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if got := out.NRGBAAt(0, 0); got.A != 0 {
		t.Errorf("transparent index expanded to %v", got)
	}
	if got := out.NRGBAAt(1, 0); got != pal.At(1) {
		t.Errorf("pixel = %v, want %v", got, pal.At(1))
	}

	img.SetIndex(0, 0, 5)
	if _, err := Expand(img, pal, -1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Expand() error = %v, want ErrIndexOutOfRange", err)
	}
}

func TestMapperTiesPickLowestIndex(t *testing.T) {
	pal, _ := raster.PaletteFromColors(color.NRGBA{R: 10, A: 255}, color.NRGBA{R: 30, A: 255})
	m := NewMapper(pal, -1)
	if got := m.Index(color.NRGBA{R: 20, A: 255}); got != 0 {
		t.Errorf("Index() = %d, want 0", got)
	}
	if got := m.Index(color.NRGBA{R: 20, A: 255}); got != 0 {
		t.Errorf("memoized Index() = %d, want 0", got)
	}
}
