package atlas

import (
	"errors"
	"fmt"
)

// Sentinel errors for atlas allocation.
var (
	// ErrAtlasFull is returned when a rectangle cannot be placed on any
	// existing page and no further page may be added. Recoverable per item:
	// the caller typically evicts cache entries and retries, or skips the
	// draw.
	ErrAtlasFull = errors.New("atlas: full")

	// ErrInvalidSize is returned for non-positive allocation dimensions.
	ErrInvalidSize = errors.New("atlas: invalid allocation size")
)

// Config holds the construction-time limits of an Atlas.
type Config struct {
	// PageWidth and PageHeight are the dimensions of every page in pixels.
	PageWidth  int
	PageHeight int

	// MaxPages bounds how many pages the atlas may create under pressure.
	MaxPages int

	// MaxTextureDim is the largest page dimension the GPU backend accepts.
	MaxTextureDim int

	// Padding is inserted around every placed rectangle to avoid sampling
	// bleed between neighbors.
	Padding int
}

// DefaultConfig returns the default atlas configuration: 1024×1024 pages,
// up to 8 of them, one pixel of padding.
func DefaultConfig() Config {
	return Config{
		PageWidth:     1024,
		PageHeight:    1024,
		MaxPages:      8,
		MaxTextureDim: 8192,
		Padding:       1,
	}
}

// Validate checks the configuration, returning a descriptive error for the
// first violated constraint.
func (c Config) Validate() error {
	if c.PageWidth <= 0 || c.PageHeight <= 0 {
		return fmt.Errorf("atlas: page dimensions must be positive, got %dx%d", c.PageWidth, c.PageHeight)
	}
	if c.MaxTextureDim > 0 && (c.PageWidth > c.MaxTextureDim || c.PageHeight > c.MaxTextureDim) {
		return fmt.Errorf("atlas: page dimensions %dx%d exceed max texture dimension %d",
			c.PageWidth, c.PageHeight, c.MaxTextureDim)
	}
	if c.MaxPages <= 0 {
		return fmt.Errorf("atlas: max pages must be positive, got %d", c.MaxPages)
	}
	if c.Padding < 0 {
		return fmt.Errorf("atlas: padding must not be negative, got %d", c.Padding)
	}
	return nil
}

// page is one fixed-size texture surface and its packing state.
type page struct {
	sky        *skyline
	free       []Rect // reclaimable rectangles, in free order
	live       int    // regions currently owned by cache entries
	generation uint32
}

// Atlas allocates rectangular regions across a bounded set of equally sized
// pages. It owns all packing state; pixel contents are handled separately by
// the Uploader.
//
// Atlas is not safe for concurrent use. All mutation happens on the render
// goroutine.
type Atlas struct {
	kind  Kind
	cfg   Config
	pages []*page
}

// New creates an empty atlas of the given kind. The first page is created
// lazily on the first allocation.
func New(kind Kind, cfg Config) (*Atlas, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Atlas{kind: kind, cfg: cfg}, nil
}

// Kind returns the pixel layout of this atlas.
func (a *Atlas) Kind() Kind { return a.kind }

// Config returns the construction-time configuration.
func (a *Atlas) Config() Config { return a.cfg }

// PageCount returns the number of pages created so far.
func (a *Atlas) PageCount() int { return len(a.pages) }

// Generation returns the current generation of the given page.
// Regions whose Generation differs are stale.
func (a *Atlas) Generation(id PageID) uint32 {
	if int(id) < 0 || int(id) >= len(a.pages) {
		return 0
	}
	return a.pages[id].generation
}

// Allocate places a w×h rectangle on the first page with room, adding a new
// page if all existing ones are exhausted and the page budget allows.
// Returns ErrAtlasFull when nothing fits, ErrInvalidSize for non-positive
// dimensions. Given the same sequence of Allocate and Free calls, placement
// is reproducible.
func (a *Atlas) Allocate(w, h int) (Region, error) {
	if w <= 0 || h <= 0 {
		return Region{}, ErrInvalidSize
	}
	pw := w + 2*a.cfg.Padding
	ph := h + 2*a.cfg.Padding
	if pw > a.cfg.PageWidth || ph > a.cfg.PageHeight {
		// Oversized items can never fit, regardless of eviction.
		return Region{}, ErrAtlasFull
	}

	for id, p := range a.pages {
		if r, ok := a.allocateOn(p, pw, ph); ok {
			return a.region(PageID(id), p, r), nil
		}
	}

	if len(a.pages) >= a.cfg.MaxPages {
		return Region{}, ErrAtlasFull
	}
	p := &page{sky: newSkyline(a.cfg.PageWidth, a.cfg.PageHeight)}
	a.pages = append(a.pages, p)
	r, ok := a.allocateOn(p, pw, ph)
	if !ok {
		return Region{}, ErrAtlasFull
	}
	return a.region(PageID(len(a.pages)-1), p, r), nil
}

func (a *Atlas) region(id PageID, p *page, r Rect) Region {
	pad := a.cfg.Padding
	return Region{
		Kind:       a.kind,
		Page:       id,
		Rect:       Rect{X: r.X + pad, Y: r.Y + pad, W: r.W - 2*pad, H: r.H - 2*pad},
		Generation: p.generation,
	}
}

// allocateOn tries the page free list first, then the skyline frontier.
// Free-list reuse is best fit by area with ties broken by free order. The
// reused slot is shrunk to the requested size; any leftover sliver stays
// unusable until the page resets. Fragmentation is resolved lazily, by
// later allocations failing and the caller evicting more entries, never by
// repacking in the hot path.
func (a *Atlas) allocateOn(p *page, w, h int) (Rect, bool) {
	best := -1
	bestArea := 0
	for i, f := range p.free {
		if f.W < w || f.H < h {
			continue
		}
		if best == -1 || f.Area() < bestArea {
			best = i
			bestArea = f.Area()
		}
	}
	if best != -1 {
		f := p.free[best]
		p.free = append(p.free[:best], p.free[best+1:]...)
		p.live++
		return Rect{X: f.X, Y: f.Y, W: w, H: h}, true
	}

	x, y, ok := p.sky.place(w, h)
	if !ok {
		return Rect{}, false
	}
	p.live++
	return Rect{X: x, Y: y, W: w, H: h}, true
}

// Free returns a region's rectangle to its page. The page is not compacted;
// the rectangle joins the free list for later reuse. When the last live
// region on a page is freed, the page's packing state is reset and its
// generation advances, invalidating any Region still referencing it.
//
// Stale regions (generation mismatch) are ignored: their page has already
// been reset and the pixels reclaimed.
func (a *Atlas) Free(r Region) {
	if r.Kind != a.kind || int(r.Page) < 0 || int(r.Page) >= len(a.pages) {
		return
	}
	p := a.pages[r.Page]
	if r.Generation != p.generation {
		return
	}
	pad := a.cfg.Padding
	p.free = append(p.free, Rect{
		X: r.Rect.X - pad,
		Y: r.Rect.Y - pad,
		W: r.Rect.W + 2*pad,
		H: r.Rect.H + 2*pad,
	})
	p.live--
	if p.live <= 0 {
		p.sky.reset()
		p.free = p.free[:0]
		p.live = 0
		p.generation++
	}
}

// Clear resets every page and advances all generations. Used when the whole
// cache is invalidated, e.g. on a font set change.
func (a *Atlas) Clear() {
	for _, p := range a.pages {
		p.sky.reset()
		p.free = p.free[:0]
		p.live = 0
		p.generation++
	}
}
