package core

import (
	"errors"
	"image/color"
	"testing"
)

func TestColorHex(t *testing.T) {
	tests := []struct {
		color Color
		want  string
	}{
		{0x000000, "#000000"},
		{0xFFFFFF, "#ffffff"},
		{0x0000AA, "#0000aa"},
		{0x123456, "#123456"},
		{0x000001, "#000001"},
		{0xFF123456, "#123456"}, // bits above 24 ignored
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.color.Hex(); got != tt.want {
				t.Errorf("Color(%#x).Hex() = %q, want %q", uint32(tt.color), got, tt.want)
			}
			if len(tt.color.Hex()) != 7 {
				t.Errorf("Hex() length = %d, want 7", len(tt.color.Hex()))
			}
		})
	}
}

func TestColorFromRGB(t *testing.T) {
	c := ColorFromRGB(255, 128, 64)
	if c != 0xFF8040 {
		t.Errorf("ColorFromRGB = %#x, want 0xff8040", uint32(c))
	}

	r, g, b := c.RGB()
	if r != 255 || g != 128 || b != 64 {
		t.Errorf("RGB() = (%d,%d,%d), want (255,128,64)", r, g, b)
	}
}

func TestColorFromHex(t *testing.T) {
	tests := []struct {
		hex     string
		want    Color
		wantErr bool
	}{
		{"#FF8040", 0xFF8040, false},
		{"#ff8040", 0xFF8040, false},
		{"FF8040", 0xFF8040, false},
		{"#FFF", 0xFFFFFF, false},
		{"#000", 0x000000, false},
		{"invalid", 0, true},
		{"#GGGGGG", 0, true},
		{"#12345", 0, true},
	}

	for _, tt := range tests {
		c, err := ColorFromHex(tt.hex)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ColorFromHex(%q): expected error", tt.hex)
			}
			continue
		}
		if err != nil {
			t.Errorf("ColorFromHex(%q): unexpected error: %v", tt.hex, err)
			continue
		}
		if c != tt.want {
			t.Errorf("ColorFromHex(%q) = %#x, want %#x", tt.hex, uint32(c), uint32(tt.want))
		}
	}
}

func TestColorHexRoundTrip(t *testing.T) {
	for _, c := range []Color{0x000000, 0xFFFFFF, 0xA0B0C0, 0x010203} {
		back, err := ColorFromHex(c.Hex())
		if err != nil {
			t.Fatalf("ColorFromHex(%q): %v", c.Hex(), err)
		}
		if back != c {
			t.Errorf("round trip %#x -> %q -> %#x", uint32(c), c.Hex(), uint32(back))
		}
	}
}

func TestColorRGBA(t *testing.T) {
	got := Color(0x102030).RGBA()
	want := color.RGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xFF}
	if got != want {
		t.Errorf("RGBA() = %v, want %v", got, want)
	}
	if back := ColorFromStd(got); back != 0x102030 {
		t.Errorf("ColorFromStd = %#x, want 0x102030", uint32(back))
	}
}

func TestColorBlend(t *testing.T) {
	if got := ColorBlack.Blend(ColorWhite, 0); got != ColorBlack {
		t.Errorf("Blend(0) = %s, want black", got)
	}
	if got := ColorBlack.Blend(ColorWhite, 1); got != ColorWhite {
		t.Errorf("Blend(1) = %s, want white", got)
	}
	mid := ColorBlack.Blend(ColorWhite, 0.5)
	r, g, b := mid.RGB()
	if r < 127 || r > 128 || g != r || b != r {
		t.Errorf("Blend(0.5) = %s, want mid gray", mid)
	}
}

func TestPreconditionError(t *testing.T) {
	err := &PreconditionError{Op: "write_cell", Row: 30, Col: 2, Char: 65, Width: 80, Height: 25}
	if !errors.Is(err, ErrPrecondition) {
		t.Error("PreconditionError should unwrap to ErrPrecondition")
	}
	if err.Error() == "" {
		t.Error("Error() should not be empty")
	}

	var pe *PreconditionError
	wrapped := error(err)
	if !errors.As(wrapped, &pe) || pe.Row != 30 {
		t.Error("errors.As should recover the PreconditionError")
	}
}
