// Package text provides font loading, HarfBuzz shaping, and glyph
// rasterization for the atlas pipeline.
//
// A FontSource wraps parsed font data and is shared across the
// application. The Shaper turns a string into positioned glyphs using
// go-text/typesetting's HarfBuzz port, and the Rasterizer renders
// individual glyphs into alpha masks (or RGBA for embedded bitmap
// glyphs) suitable for atlas upload.
//
// All coordinates follow the y-down screen convention used by the rest
// of the module; font-unit outlines are flipped during rasterization.
package text
