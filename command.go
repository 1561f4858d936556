package sprite

import (
	"image"

	"github.com/gogpu/sprite/atlas"
)

// BlendMode selects how a draw command composites over the target.
// It is part of the batch key: adjacent commands must share a blend mode to
// be merged into one draw call.
type BlendMode uint8

const (
	// BlendAlpha is standard source-over alpha blending. Text and most
	// sprites use it.
	BlendAlpha BlendMode = iota

	// BlendAdditive adds source to destination, for glows and particles.
	BlendAdditive

	// BlendOpaque overwrites the destination, ignoring source alpha.
	BlendOpaque
)

// String returns the string representation of the blend mode.
func (b BlendMode) String() string {
	switch b {
	case BlendAlpha:
		return "Alpha"
	case BlendAdditive:
		return "Additive"
	case BlendOpaque:
		return "Opaque"
	default:
		return "Unknown"
	}
}

// DrawCommand is one recorded draw of an atlas region: a textured quad with
// a transform, tint, blend mode and clip. Commands are created per draw
// call, consumed by the batcher at frame end, and never retained across
// frames. Submission order is the z order.
type DrawCommand struct {
	// Region is the atlas slot whose pixels this command samples.
	Region atlas.Region

	// Src is the sampled sub-rectangle in page pixel space. Equal to
	// Region.Rect for whole-slot draws; a sub-rectangle for sprite slices.
	Src atlas.Rect

	// Transform maps the unit quad scaled to Src dimensions into target
	// space.
	Transform Matrix

	// Tint is multiplied into every sampled texel.
	Tint Color

	// Blend selects the compositing mode.
	Blend BlendMode

	// Clip restricts the draw to a target-space rectangle. The zero
	// rectangle means unclipped.
	Clip image.Rectangle
}

// batchKey is the render state shared by all commands of one batch.
type batchKey struct {
	kind  atlas.Kind
	page  atlas.PageID
	blend BlendMode
	clip  image.Rectangle
}

func (c *DrawCommand) key() batchKey {
	return batchKey{
		kind:  c.Region.Kind,
		page:  c.Region.Page,
		blend: c.Blend,
		clip:  c.Clip,
	}
}

// Batch is a maximal run of consecutive draw commands sharing render state,
// submitted as one GPU draw call. Batches are produced fresh every frame
// and never persisted.
type Batch struct {
	Kind     atlas.Kind
	Page     atlas.PageID
	Blend    BlendMode
	Clip     image.Rectangle
	Commands []DrawCommand
}
