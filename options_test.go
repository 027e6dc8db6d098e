package spritegif

import "testing"

func TestNewCodecDefaults(t *testing.T) {
	c := NewCodec()
	want := defaultOptions()
	if c.opts != want {
		t.Errorf("NewCodec().opts = %+v, want %+v", c.opts, want)
	}
	if NewCodec(nil).opts != want {
		t.Error("NewCodec(nil) should ignore the nil option")
	}
}

func TestOptions(t *testing.T) {
	tests := []struct {
		name  string
		opt   Option
		check func(o options) bool
	}{
		{"quantize", WithQuantization(Quantize), func(o options) bool { return o.quantization == Quantize }},
		{"no quantize", WithQuantization(NoQuantize), func(o options) bool { return o.quantization == NoQuantize }},
		{"unknown quantization", WithQuantization(QuantizationMode(42)), func(o options) bool { return o.quantization == QuantizeAuto }},
		{"loop", WithLoopCount(5), func(o options) bool { return o.loopSet && o.loopCount == 5 }},
		{"loop disabled", WithLoopCount(-9), func(o options) bool { return o.loopSet && o.loopCount == -1 }},
		{"loop clamped", WithLoopCount(70000), func(o options) bool { return o.loopCount == 0xffff }},
		{"comment", WithComment("hi"), func(o options) bool { return o.comment == "hi" }},
		{"workers", WithWorkers(8), func(o options) bool { return o.workers == 8 }},
		{"workers floor", WithWorkers(-1), func(o options) bool { return o.workers == 1 }},
		{"legacy palette", WithLegacyPaletteSize(true), func(o options) bool { return o.legacyPalette }},
		{"max colors", WithMaxColors(16), func(o options) bool { return o.maxColors == 16 }},
		{"max colors low", WithMaxColors(0), func(o options) bool { return o.maxColors == 2 }},
		{"max colors high", WithMaxColors(1000), func(o options) bool { return o.maxColors == 256 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCodec(tt.opt)
			if !tt.check(c.opts) {
				t.Errorf("options = %+v", c.opts)
			}
		})
	}
}

func TestQuantizationModeString(t *testing.T) {
	tests := []struct {
		mode QuantizationMode
		want string
	}{
		{QuantizeAuto, "auto"},
		{Quantize, "quantize"},
		{NoQuantize, "no-quantize"},
		{QuantizationMode(9), "QuantizationMode(9)"},
	}
	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("QuantizationMode(%d).String() = %q, want %q", int(tt.mode), got, tt.want)
		}
	}
}

func TestParseQuantizationMode(t *testing.T) {
	for _, m := range []QuantizationMode{QuantizeAuto, Quantize, NoQuantize} {
		got, err := ParseQuantizationMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseQuantizationMode(%q) = %v, %v, want %v", m.String(), got, err, m)
		}
	}
	if _, err := ParseQuantizationMode("lossy"); err == nil {
		t.Error("ParseQuantizationMode(\"lossy\") should fail")
	}
}

func TestWithMaxColorsLimitsPalette(t *testing.T) {
	s := rgbAnimation(t, 1)
	got := decodeSprite(t, encodeSprite(t, s, WithMaxColors(8)))
	// Eight entries including the reserved transparent one.
	if n := got.PaletteFor(0).Len(); n != 8 {
		t.Errorf("palette size = %d, want 8", n)
	}
	pix := celImage(t, onlyLayer(t, got), 0)
	for _, p := range pix.Pix() {
		if p >= 8 {
			t.Fatalf("pixel index %d outside 8-entry palette", p)
		}
	}
}
