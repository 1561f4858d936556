package sprite

import (
	"errors"
	"fmt"
	"image"
	"image/draw"

	gtfont "github.com/go-text/typesetting/font"

	"github.com/gogpu/sprite/atlas"
	"github.com/gogpu/sprite/cache"
	"github.com/gogpu/sprite/text"
)

// ImageID identifies a registered sprite image.
type ImageID uint32

// FontID identifies a registered font.
type FontID uint32

// DrawOptions carry the per-draw render state. The zero value draws
// untransformed, untinted, alpha-blended and unclipped.
type DrawOptions struct {
	// Transform maps the item's pixel rectangle into target space.
	// The zero Matrix means identity.
	Transform Matrix

	// Tint is multiplied into every sampled texel. The zero Color means
	// white (no tint).
	Tint Color

	// Blend selects the compositing mode.
	Blend BlendMode

	// Clip restricts drawing to a target-space rectangle. The zero
	// rectangle means unclipped.
	Clip image.Rectangle
}

func (o DrawOptions) normalize() DrawOptions {
	if o.Transform == (Matrix{}) {
		o.Transform = Identity()
	}
	if o.Tint == (Color{}) {
		o.Tint = White
	}
	return o
}

// Frame is the output of one BeginFrame/EndFrame cycle: the atlas pixel
// uploads that must happen before drawing, then the draw batches in
// submission order. Consumers apply Writes (render.PageTable does this
// over a GPU backend), then issue one draw call per Batch.
type Frame struct {
	Writes  []atlas.Write
	Batches []Batch

	// PageWidth and PageHeight are the atlas page texture dimensions,
	// needed to normalize Src rectangles into texture coordinates.
	PageWidth  int
	PageHeight int
}

type registeredImage struct {
	pixels []byte // tightly packed RGBA
	w, h   int
}

type registeredFont struct {
	src *text.FontSource
}

// Canvas is the front door of the module: it registers sprites and
// fonts, records draw calls, and at frame end emits the atlas uploads
// and draw batches the GPU consumer needs. The Canvas owns a mask atlas
// for glyph coverage and a color atlas for sprites and bitmap emoji,
// with one shared cache across both.
//
// Canvas is not safe for concurrent use; drive it from the render
// goroutine.
type Canvas struct {
	opts canvasOptions

	masks  *atlas.Atlas
	colors *atlas.Atlas
	maskUp *atlas.Uploader
	colUp  *atlas.Uploader
	cache  *cache.Cache

	batcher Batcher

	shaper   *text.Shaper
	raster   *text.Rasterizer
	fallback *text.FallbackList

	images    map[ImageID]*registeredImage
	nextImage ImageID

	fonts    map[FontID]*registeredFont
	fontIDs  map[*text.FontSource]FontID
	nextFont FontID

	inFrame bool
}

// New creates a Canvas. Invalid option combinations return a
// *ConfigError; all later failures are per-operation and recoverable.
func New(opts ...Option) (*Canvas, error) {
	o := defaultCanvasOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if o.subpixel < 1 || o.subpixel > 64 {
		return nil, &ConfigError{Field: "SubpixelPositions", Reason: fmt.Sprintf("%d out of range [1,64]", o.subpixel)}
	}
	if o.pageWidth > o.maxTextureDim {
		o.pageWidth = o.maxTextureDim
	}
	if o.pageHeight > o.maxTextureDim {
		o.pageHeight = o.maxTextureDim
	}

	cfg := atlas.Config{
		PageWidth:     o.pageWidth,
		PageHeight:    o.pageHeight,
		MaxPages:      o.maxPages,
		MaxTextureDim: o.maxTextureDim,
		Padding:       o.padding,
	}
	masks, err := atlas.New(atlas.Mask, cfg)
	if err != nil {
		return nil, &ConfigError{Field: "PageSize", Reason: err.Error()}
	}
	colors, err := atlas.New(atlas.Color, cfg)
	if err != nil {
		return nil, &ConfigError{Field: "PageSize", Reason: err.Error()}
	}

	c := &Canvas{
		opts:     o,
		masks:    masks,
		colors:   colors,
		maskUp:   atlas.NewUploader(masks),
		colUp:    atlas.NewUploader(colors),
		shaper:   text.NewShaper(o.locale),
		raster:   text.NewRasterizer(),
		fallback: text.NewFallbackList(o.locale),
		images:   make(map[ImageID]*registeredImage),
		fonts:    make(map[FontID]*registeredFont),
		fontIDs:  make(map[*text.FontSource]FontID),
	}
	c.cache = cache.New(masks, colors, c.maskUp, c.colUp,
		&canvasRasterizer{c}, cache.Config{MaxAge: o.maxCacheAge})
	return c, nil
}

// AddImage registers an image as a sprite source and returns its handle.
// The pixels are copied and converted to RGBA; img can be discarded
// afterwards. Atlas placement is deferred until the sprite is first
// drawn.
func (c *Canvas) AddImage(img image.Image) ImageID {
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)

	id := c.nextImage
	c.nextImage++
	c.images[id] = &registeredImage{pixels: rgba.Pix, w: b.Dx(), h: b.Dy()}
	return id
}

// ImageSize returns the pixel dimensions of a registered image.
func (c *Canvas) ImageSize(id ImageID) (w, h int, err error) {
	img, ok := c.images[id]
	if !ok {
		return 0, 0, ErrUnknownImage
	}
	return img.w, img.h, nil
}

// AddFont parses TTF/OTF data and registers it both as a drawable font
// and as a fallback candidate. langs are the BCP 47 tags the font
// covers; they order it in locale-aware fallback.
func (c *Canvas) AddFont(data []byte, langs ...string) (FontID, error) {
	src, err := text.NewFontSource(data)
	if err != nil {
		return 0, err
	}
	id := c.nextFont
	c.nextFont++
	c.fonts[id] = &registeredFont{src: src}
	c.fontIDs[src] = id
	c.fallback.Add(src, langs...)
	return id, nil
}

// BeginFrame starts recording a frame. Draw calls are only valid
// between BeginFrame and EndFrame.
func (c *Canvas) BeginFrame() error {
	if c.inFrame {
		return errors.New("sprite: BeginFrame called twice without EndFrame")
	}
	c.inFrame = true
	return nil
}

// EndFrame finishes the frame: it flushes staged atlas pixels into
// upload writes, groups the recorded commands into batches, ages the
// cache, and returns everything the consumer needs to draw.
func (c *Canvas) EndFrame() (*Frame, error) {
	if !c.inFrame {
		return nil, ErrNotInFrame
	}
	c.inFrame = false

	writes := c.maskUp.Flush()
	writes = append(writes, c.colUp.Flush()...)
	batches := c.batcher.Finish(c)
	c.cache.EndFrame()

	return &Frame{
		Writes:     writes,
		Batches:    batches,
		PageWidth:  c.opts.pageWidth,
		PageHeight: c.opts.pageHeight,
	}, nil
}

// DrawSprite records a draw of the whole image.
func (c *Canvas) DrawSprite(id ImageID, opts DrawOptions) error {
	w, h, err := c.ImageSize(id)
	if err != nil {
		return err
	}
	return c.drawSpriteRect(id, image.Rect(0, 0, w, h), opts)
}

// DrawSpriteRegion records a draw of a sub-rectangle of the image, in
// image pixel coordinates. Slices share the image's single atlas slot;
// only Src differs, so slices of one image still batch together.
func (c *Canvas) DrawSpriteRegion(id ImageID, sub image.Rectangle, opts DrawOptions) error {
	img, ok := c.images[id]
	if !ok {
		return ErrUnknownImage
	}
	if sub != sub.Intersect(image.Rect(0, 0, img.w, img.h)) || sub.Empty() {
		return fmt.Errorf("sprite: region %v outside %dx%d image", sub, img.w, img.h)
	}
	return c.drawSpriteRect(id, sub, opts)
}

func (c *Canvas) drawSpriteRect(id ImageID, sub image.Rectangle, opts DrawOptions) error {
	if !c.inFrame {
		return ErrNotInFrame
	}
	slot, err := c.cache.Resolve(cache.Key{Kind: cache.Sprite, ID: uint64(id)})
	if err != nil {
		return err
	}

	opts = opts.normalize()
	c.batcher.Record(DrawCommand{
		Region: slot.Region,
		Src: atlas.Rect{
			X: slot.Region.Rect.X + sub.Min.X,
			Y: slot.Region.Rect.Y + sub.Min.Y,
			W: sub.Dx(),
			H: sub.Dy(),
		},
		Transform: opts.Transform,
		Tint:      opts.Tint,
		Blend:     opts.Blend,
		Clip:      opts.Clip,
	})
	return nil
}

// DrawText shapes s with the font and records one draw command per
// visible glyph. pos is the pen origin on the baseline; size is pixels
// per em. Glyphs the font lacks go through locale fallback, and glyphs
// that cannot be rasterized are replaced by the configured fallback
// rune. Spaces and other invisible glyphs advance the pen but record
// nothing. A glyph that cannot be placed is skipped, never the rest of
// the run; those failures come back joined after the run completes.
func (c *Canvas) DrawText(s string, font FontID, size float64, pos Point, opts DrawOptions) error {
	if !c.inFrame {
		return ErrNotInFrame
	}
	f, ok := c.fonts[font]
	if !ok {
		return ErrUnknownFont
	}
	glyphs, _ := c.shaper.Shape(s, f.src, size)
	return c.drawGlyphRun(font, f, glyphs, []rune(s), size, pos, opts)
}

// PreparedText is a string shaped once for repeated drawing. It caches the
// glyph positions and line metrics, so drawing it skips shaping entirely;
// re-prepare when the string, font or size changes.
type PreparedText struct {
	font   FontID
	size   float64
	glyphs []text.Glyph
	runes  []rune
	m      text.Metrics
}

// Metrics returns the shaped line metrics of the prepared string.
func (p *PreparedText) Metrics() text.Metrics { return p.m }

// PrepareText shapes s once for repeated drawing with DrawPrepared.
// Unlike DrawText it may be called outside a frame.
func (c *Canvas) PrepareText(s string, font FontID, size float64) (*PreparedText, error) {
	f, ok := c.fonts[font]
	if !ok {
		return nil, ErrUnknownFont
	}
	glyphs, m := c.shaper.Shape(s, f.src, size)
	return &PreparedText{
		font:   font,
		size:   size,
		glyphs: glyphs,
		runes:  []rune(s),
		m:      m,
	}, nil
}

// DrawPrepared records the glyphs of a prepared string without reshaping.
func (c *Canvas) DrawPrepared(p *PreparedText, pos Point, opts DrawOptions) error {
	if !c.inFrame {
		return ErrNotInFrame
	}
	f, ok := c.fonts[p.font]
	if !ok {
		return ErrUnknownFont
	}
	return c.drawGlyphRun(p.font, f, p.glyphs, p.runes, p.size, pos, opts)
}

// drawGlyphRun records one command per visible glyph of an already shaped
// run. Per-glyph failures never abort the run: glyphs that cannot be placed
// are skipped with a warning and reported joined after the rest have been
// recorded.
func (c *Canvas) drawGlyphRun(font FontID, f *registeredFont, glyphs []text.Glyph, runes []rune, size float64, pos Point, opts DrawOptions) error {
	opts = opts.normalize()

	var runErr error
	for _, g := range glyphs {
		gid := uint32(g.GID)
		fid := font

		if gid == 0 && g.Cluster < len(runes) {
			// The font has no glyph for this rune; try fallback fonts.
			if fb := c.fallback.Resolve(runes[g.Cluster], f.src); fb != nil {
				if fbGID, ok := fb.GlyphID(runes[g.Cluster]); ok {
					gid = uint32(fbGID)
					fid = c.fontIDs[fb]
				}
			}
		}

		err := c.drawGlyph(fid, gid, size, pos.X+g.X, pos.Y+g.Y, opts)
		if err == nil || errors.Is(err, text.ErrEmptyGlyph) {
			continue // spaces record nothing
		}
		if errors.Is(err, ErrRasterizationFailed) {
			// Substitute the fallback rune; give up on the glyph if even
			// that fails.
			sub, ok := f.src.GlyphID(c.opts.fallbackRune)
			if !ok {
				continue
			}
			err = c.drawGlyph(font, uint32(sub), size, pos.X+g.X, pos.Y+g.Y, opts)
			if err == nil || errors.Is(err, text.ErrEmptyGlyph) || errors.Is(err, ErrRasterizationFailed) {
				continue
			}
		}
		// Atlas pressure or a backend failure on one glyph must not drop
		// the glyphs after it.
		Logger().Warn("skipping glyph", "glyph", gid, "err", err)
		runErr = errors.Join(runErr, err)
	}
	return runErr
}

// drawGlyph resolves one glyph bitmap and records its quad.
func (c *Canvas) drawGlyph(font FontID, gid uint32, size, penX, penY float64, opts DrawOptions) error {
	intX, bucket := quantizeX(penX, c.opts.subpixel)

	slot, err := c.cache.Resolve(cache.Key{
		Kind:     cache.Glyph,
		ID:       uint64(font),
		Glyph:    gid,
		Size:     int32(size * 64),
		Subpixel: bucket,
	})
	if err != nil {
		return err
	}

	// Color glyphs (emoji) carry their own pixels; the caller's tint only
	// applies to coverage masks.
	tint := opts.Tint
	if !slot.Mask {
		tint = White
	}

	// Place the bitmap's top-left corner relative to the baseline pen
	// position, then apply the caller's transform.
	x := float64(intX + slot.Left)
	y := penY - float64(slot.Top)
	c.batcher.Record(DrawCommand{
		Region:    slot.Region,
		Src:       slot.Region.Rect,
		Transform: opts.Transform.Multiply(Translate(x, y)),
		Tint:      tint,
		Blend:     opts.Blend,
		Clip:      opts.Clip,
	})
	return nil
}

// MeasureText returns the shaped metrics of s without caching or
// drawing anything.
func (c *Canvas) MeasureText(s string, font FontID, size float64) (text.Metrics, error) {
	f, ok := c.fonts[font]
	if !ok {
		return text.Metrics{}, ErrUnknownFont
	}
	return c.shaper.Measure(s, f.src, size), nil
}

// Generation implements Freshness over the canvas's two atlases, letting
// the batcher drop commands whose page was reset mid-frame.
func (c *Canvas) Generation(kind atlas.Kind, page atlas.PageID) uint32 {
	if kind == atlas.Mask {
		return c.masks.Generation(page)
	}
	return c.colors.Generation(page)
}

// Stats returns cumulative cache hit, miss and eviction counts.
func (c *Canvas) Stats() (hits, misses, evictions uint64) {
	return c.cache.Stats()
}

// Clear drops every cached atlas entry and resets all pages. Registered
// images and fonts survive; their pixels re-enter the atlas on next use.
func (c *Canvas) Clear() {
	c.cache.Clear()
	c.masks.Clear()
	c.colors.Clear()
}

// quantizeX splits a pen x position into an integer pixel and a
// subpixel bucket in [0, buckets).
func quantizeX(x float64, buckets int) (int, uint8) {
	if buckets <= 1 {
		return int(x + 0.5), 0
	}
	i := int(x)
	if x < 0 && x != float64(i) {
		i--
	}
	b := int((x - float64(i)) * float64(buckets))
	if b >= buckets {
		b = buckets - 1
	}
	return i, uint8(b)
}

// canvasRasterizer adapts the canvas's image registry and glyph
// rasterizer to the cache's Rasterizer interface.
type canvasRasterizer struct {
	c *Canvas
}

func (r *canvasRasterizer) Rasterize(key cache.Key) (*cache.Bitmap, error) {
	switch key.Kind {
	case cache.Sprite:
		img, ok := r.c.images[ImageID(key.ID)]
		if !ok {
			return nil, ErrUnknownImage
		}
		return &cache.Bitmap{
			Pixels: img.pixels,
			W:      img.w,
			H:      img.h,
			Mask:   false,
		}, nil

	case cache.Glyph:
		f, ok := r.c.fonts[FontID(key.ID)]
		if !ok {
			return nil, ErrUnknownFont
		}
		offset := float64(key.Subpixel) / float64(r.c.opts.subpixel)
		img, err := r.c.raster.Rasterize(f.src, gtfont.GID(key.Glyph), float64(key.Size)/64, offset)
		if err != nil {
			return nil, err
		}
		return &cache.Bitmap{
			Pixels: img.Pixels,
			W:      img.Width,
			H:      img.Height,
			Mask:   img.Mask,
			Left:   img.Left,
			Top:    img.Top,
		}, nil

	default:
		return nil, fmt.Errorf("sprite: unknown cache kind %d", key.Kind)
	}
}
