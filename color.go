package sprite

import "image/color"

// Color is an 8-bit RGBA tint, non-premultiplied. It is the color carried
// on draw commands and multiplied into the sampled texel by the GPU
// backend.
type Color struct {
	R, G, B, A uint8
}

// White is the neutral tint: texels pass through unchanged.
var White = Color{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// RGB creates an opaque color from RGB components.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 0xff}
}

// FromColor converts a standard color.Color to Color.
func FromColor(c color.Color) Color {
	r, g, b, a := c.RGBA()
	return Color{
		R: uint8(r >> 8),
		G: uint8(g >> 8),
		B: uint8(b >> 8),
		A: uint8(a >> 8),
	}
}

// Color converts to the standard color.Color interface.
func (c Color) Color() color.Color {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// Mul composes two tints by per-channel multiplication. Tinting an already
// tinted drawable multiplies, it does not replace.
func (c Color) Mul(other Color) Color {
	return Color{
		R: uint8(uint16(c.R) * uint16(other.R) / 0xff),
		G: uint8(uint16(c.G) * uint16(other.G) / 0xff),
		B: uint8(uint16(c.B) * uint16(other.B) / 0xff),
		A: uint8(uint16(c.A) * uint16(other.A) / 0xff),
	}
}
