package text

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"math"
	"sync"

	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/font/opentype"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"

	_ "image/jpeg" // embedded sbix/CBDT bitmaps
	_ "image/png"
)

// Rasterization errors.
var (
	ErrEmptyGlyph       = errors.New("text: glyph has no visible image")
	ErrUnsupportedGlyph = errors.New("text: unsupported glyph format")
)

// GlyphImage is a rasterized glyph ready for atlas upload.
// Pixels are tightly packed rows: 1 byte per pixel for masks, 4 bytes
// (RGBA) for color glyphs.
//
// Left and Top place the image relative to the pen position on the
// baseline: the image's top-left corner goes at (pen.X + Left,
// pen.Y - Top) in y-down screen coordinates.
type GlyphImage struct {
	Pixels []byte
	Width  int
	Height int

	// Mask is true for alpha-only glyphs, false for RGBA color glyphs
	// (embedded bitmap emoji).
	Mask bool

	Left int
	Top  int
}

// Rasterizer renders individual glyphs into GlyphImages.
// Outline glyphs are filled with golang.org/x/image/vector; embedded
// bitmap glyphs (PNG/JPEG emoji) are decoded and scaled.
//
// Rasterizer is safe for concurrent use.
type Rasterizer struct {
	// mu guards faces. font.Face caches glyph lookups and is not
	// concurrent-safe, so all GlyphData access goes through the lock.
	mu    sync.Mutex
	faces map[*FontSource]*font.Face
}

// NewRasterizer creates an empty Rasterizer.
func NewRasterizer() *Rasterizer {
	return &Rasterizer{faces: make(map[*FontSource]*font.Face)}
}

// Rasterize renders glyph gid of src at size pixels per em.
// subOffset is a horizontal subpixel shift in [0, 1) applied before
// pixel snapping, so the same glyph can be cached at several fractional
// positions.
//
// Glyphs with no visible image (spaces) return ErrEmptyGlyph.
func (rz *Rasterizer) Rasterize(src *FontSource, gid font.GID, size float64, subOffset float64) (*GlyphImage, error) {
	if src == nil {
		return nil, errors.New("text: nil font source")
	}
	if size <= 0 {
		return nil, fmt.Errorf("text: invalid glyph size %v", size)
	}

	rz.mu.Lock()
	defer rz.mu.Unlock()

	face, ok := rz.faces[src]
	if !ok {
		face = src.NewFace()
		rz.faces[src] = face
	}

	switch data := face.GlyphData(gid).(type) {
	case font.GlyphOutline:
		return rasterizeOutline(data, size, float64(src.Upem()), subOffset)
	case font.GlyphBitmap:
		return rasterizeBitmap(data, size)
	case nil:
		return nil, ErrEmptyGlyph
	default:
		return nil, ErrUnsupportedGlyph
	}
}

// Forget drops the cached face for src. Call when a FontSource is no
// longer in use.
func (rz *Rasterizer) Forget(src *FontSource) {
	rz.mu.Lock()
	defer rz.mu.Unlock()
	delete(rz.faces, src)
}

// rasterizeOutline fills a vector outline into an alpha mask.
// Font units are y-up; the output image is y-down, so Y coordinates
// are negated while scaling by size/upem.
func rasterizeOutline(outline font.GlyphOutline, size, upem, subOffset float64) (*GlyphImage, error) {
	if len(outline.Segments) == 0 {
		return nil, ErrEmptyGlyph
	}

	scale := float32(size / upem)

	// Bounds in screen space, including the subpixel shift.
	minX, minY := float32(math.Inf(1)), float32(math.Inf(1))
	maxX, maxY := float32(math.Inf(-1)), float32(math.Inf(-1))
	grow := func(px, py float32) {
		x := px*scale + float32(subOffset)
		y := -py * scale
		minX = min(minX, x)
		minY = min(minY, y)
		maxX = max(maxX, x)
		maxY = max(maxY, y)
	}
	for _, s := range outline.Segments {
		switch s.Op {
		case opentype.SegmentOpMoveTo, opentype.SegmentOpLineTo:
			grow(s.Args[0].X, s.Args[0].Y)
		case opentype.SegmentOpQuadTo:
			grow(s.Args[0].X, s.Args[0].Y)
			grow(s.Args[1].X, s.Args[1].Y)
		case opentype.SegmentOpCubeTo:
			grow(s.Args[0].X, s.Args[0].Y)
			grow(s.Args[1].X, s.Args[1].Y)
			grow(s.Args[2].X, s.Args[2].Y)
		}
	}

	left := int(math.Floor(float64(minX)))
	top := int(math.Floor(float64(minY)))
	w := int(math.Ceil(float64(maxX))) - left
	h := int(math.Ceil(float64(maxY))) - top
	if w <= 0 || h <= 0 {
		return nil, ErrEmptyGlyph
	}

	// Shift so the outline lands inside [0,w)x[0,h).
	offX := float32(subOffset) - float32(left)
	offY := -float32(top)

	ras := vector.NewRasterizer(w, h)
	ras.DrawOp = draw.Src
	started := false
	pt := func(px, py float32) (float32, float32) {
		return px*scale + offX, -py*scale + offY
	}
	for _, s := range outline.Segments {
		switch s.Op {
		case opentype.SegmentOpMoveTo:
			if started {
				ras.ClosePath()
			}
			ras.MoveTo(pt(s.Args[0].X, s.Args[0].Y))
			started = true
		case opentype.SegmentOpLineTo:
			ras.LineTo(pt(s.Args[0].X, s.Args[0].Y))
		case opentype.SegmentOpQuadTo:
			bx, by := pt(s.Args[0].X, s.Args[0].Y)
			cx, cy := pt(s.Args[1].X, s.Args[1].Y)
			ras.QuadTo(bx, by, cx, cy)
		case opentype.SegmentOpCubeTo:
			bx, by := pt(s.Args[0].X, s.Args[0].Y)
			cx, cy := pt(s.Args[1].X, s.Args[1].Y)
			dx, dy := pt(s.Args[2].X, s.Args[2].Y)
			ras.CubeTo(bx, by, cx, cy, dx, dy)
		}
	}
	if started {
		ras.ClosePath()
	}

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	ras.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	return &GlyphImage{
		Pixels: tightAlpha(mask),
		Width:  w,
		Height: h,
		Mask:   true,
		Left:   left,
		Top:    -top, // distance above the baseline
	}, nil
}

// rasterizeBitmap decodes an embedded bitmap glyph and scales it so its
// height matches the requested size. Bitmap glyphs sit on the baseline.
func rasterizeBitmap(bm font.GlyphBitmap, size float64) (*GlyphImage, error) {
	if bm.Format != font.PNG && bm.Format != font.JPG {
		return nil, ErrUnsupportedGlyph
	}

	img, _, err := image.Decode(bytes.NewReader(bm.Data))
	if err != nil {
		return nil, fmt.Errorf("text: decode bitmap glyph: %w", err)
	}

	sb := img.Bounds()
	if sb.Dx() == 0 || sb.Dy() == 0 {
		return nil, ErrEmptyGlyph
	}

	h := int(math.Round(size))
	if h < 1 {
		h = 1
	}
	w := int(math.Round(size * float64(sb.Dx()) / float64(sb.Dy())))
	if w < 1 {
		w = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, sb, draw.Src, nil)

	return &GlyphImage{
		Pixels: tightRGBA(dst),
		Width:  w,
		Height: h,
		Mask:   false,
		Left:   0,
		Top:    h,
	}, nil
}

// tightAlpha returns the tightly packed pixel rows of an alpha image.
func tightAlpha(m *image.Alpha) []byte {
	w, h := m.Rect.Dx(), m.Rect.Dy()
	if m.Stride == w {
		return m.Pix
	}
	out := make([]byte, w*h)
	for y := 0; y < h; y++ {
		copy(out[y*w:(y+1)*w], m.Pix[y*m.Stride:y*m.Stride+w])
	}
	return out
}

// tightRGBA returns the tightly packed pixel rows of an RGBA image.
func tightRGBA(m *image.RGBA) []byte {
	w, h := m.Rect.Dx(), m.Rect.Dy()
	if m.Stride == 4*w {
		return m.Pix
	}
	out := make([]byte, 4*w*h)
	for y := 0; y < h; y++ {
		copy(out[y*4*w:(y+1)*4*w], m.Pix[y*m.Stride:y*m.Stride+4*w])
	}
	return out
}
