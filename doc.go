// Package sprite batches 2D sprite and text drawing through GPU
// texture atlases.
//
// A Canvas registers images and fonts, records draw calls between
// BeginFrame and EndFrame, and emits a Frame per cycle: the atlas
// texture writes that must be applied first, then draw batches in
// submission order. Glyph coverage masks live in an R8 atlas, sprites
// and color emoji in an RGBA8 atlas; both are paged and grow on demand.
//
// Rasterized content is cached across frames keyed by content identity
// (image id, or font/glyph/size/subpixel bucket). Entries referenced by
// the current frame are pinned; under atlas pressure the least recently
// used unpinned entry is evicted one at a time until the new item fits.
//
// The package is GPU-agnostic: render defines the texture contracts
// and backend/wgpu implements them over gogpu/wgpu for hosts that use
// that stack.
//
//	c, _ := sprite.New()
//	img := c.AddImage(pngImage)
//	font, _ := c.AddFont(ttfData, "en")
//
//	c.BeginFrame()
//	c.DrawSprite(img, sprite.DrawOptions{Transform: sprite.Translate(10, 10)})
//	c.DrawText("score: 42", font, 16, sprite.Point{X: 10, Y: 40}, sprite.DrawOptions{})
//	frame, _ := c.EndFrame()
//	// apply frame.Writes, then draw frame.Batches
package sprite
