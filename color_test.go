package sprite

import (
	"image/color"
	"testing"
)

func TestColorMul(t *testing.T) {
	tests := []struct {
		name string
		a, b Color
		want Color
	}{
		{"white identity", Color{0x80, 0x40, 0x20, 0xff}, White, Color{0x80, 0x40, 0x20, 0xff}},
		{"black kills", Color{0x80, 0x40, 0x20, 0xff}, Color{0, 0, 0, 0xff}, Color{0, 0, 0, 0xff}},
		{"half alpha", Color{0xff, 0xff, 0xff, 0xff}, Color{0xff, 0xff, 0xff, 0x80}, Color{0xff, 0xff, 0xff, 0x80}},
		{"channelwise", Color{0xff, 0x80, 0, 0xff}, Color{0x80, 0xff, 0xff, 0xff}, Color{0x80, 0x80, 0, 0xff}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Mul(tt.b); got != tt.want {
				t.Errorf("%v.Mul(%v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestColorMulCommutative(t *testing.T) {
	a := Color{0x12, 0x34, 0x56, 0x78}
	b := Color{0x9a, 0xbc, 0xde, 0xf0}
	if a.Mul(b) != b.Mul(a) {
		t.Errorf("Mul not commutative: %v vs %v", a.Mul(b), b.Mul(a))
	}
}

func TestFromColor(t *testing.T) {
	got := FromColor(color.RGBA{R: 1, G: 2, B: 3, A: 255})
	want := Color{1, 2, 3, 255}
	if got != want {
		t.Errorf("FromColor = %v, want %v", got, want)
	}
}

func TestColorRoundTrip(t *testing.T) {
	c := Color{10, 20, 30, 255}
	r, g, b, a := c.Color().RGBA()
	if r>>8 != 10 || g>>8 != 20 || b>>8 != 30 || a>>8 != 255 {
		t.Errorf("Color().RGBA() = %d,%d,%d,%d", r>>8, g>>8, b>>8, a>>8)
	}
}
