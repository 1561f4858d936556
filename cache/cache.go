// Package cache maps content-identity keys (a glyph at a size, a sprite
// image) to live atlas regions, rasterizing misses and evicting
// least-recently-used entries under atlas pressure.
//
// The cache is the only writer of entry recency and pin state. Entries used
// by the current frame are pinned and never evicted; EndFrame unpins
// everything and advances the frame clock. The cache instance is explicitly
// owned by its caller; there is no global cache.
package cache

import (
	"errors"
	"fmt"

	"github.com/gogpu/sprite/atlas"
)

// Sentinel errors for cache resolution.
var (
	// ErrRasterizationFailed is returned when the rasterizer cannot produce
	// pixels for a key. Recoverable: the caller substitutes a fallback key
	// or skips the item.
	ErrRasterizationFailed = errors.New("cache: rasterization failed")
)

// Kind distinguishes the two rasterization sources.
type Kind uint8

const (
	// Sprite entries come from registered bitmap images.
	Sprite Kind = iota

	// Glyph entries come from shaped, rasterized font glyphs.
	Glyph
)

// Key is the content identity of one rasterizable unit. Keys compare by
// exact equality; there is no fuzzy matching.
type Key struct {
	// Kind selects the rasterization source.
	Kind Kind

	// ID is the image id for sprites, the font id for glyphs.
	ID uint64

	// Glyph is the glyph index within the font. Zero for sprites.
	Glyph uint32

	// Size is the size class in 26.6 fixed point. Zero for sprites.
	Size int32

	// Subpixel is the horizontal subpixel position bucket.
	Subpixel uint8
}

// Bitmap is the pixel output of rasterizing one key.
type Bitmap struct {
	// Pixels holds W*H alpha bytes when Mask is set, W*H*4 RGBA bytes
	// otherwise.
	Pixels []byte
	W, H   int

	// Mask selects the single-channel atlas; color bitmaps (sprites, color
	// emoji) go to the RGBA atlas.
	Mask bool

	// Left and Top position the bitmap relative to the item origin: Left is
	// the horizontal bearing, Top the distance from the baseline to the
	// bitmap's top edge. Both are zero for sprites.
	Left, Top int
}

// Rasterizer produces pixels for cache misses. Rasterization is synchronous,
// CPU-bound work; a Resolve that misses can take noticeably longer than a
// hit, so callers wanting predictable frame times should warm the cache.
type Rasterizer interface {
	Rasterize(key Key) (*Bitmap, error)
}

// Slot is a resolved cache entry: the atlas region holding the pixels plus
// the placement metadata the draw path needs.
type Slot struct {
	Region atlas.Region
	Left   int
	Top    int
	Mask   bool
}

// Config bounds the cache.
type Config struct {
	// MaxAge is the number of frames an entry may go unused before EndFrame
	// evicts it regardless of atlas pressure. Zero disables age eviction.
	MaxAge uint64
}

// DefaultConfig returns the default cache configuration: entries unused for
// 100 frames are dropped.
func DefaultConfig() Config {
	return Config{MaxAge: 100}
}

type entry struct {
	key      Key
	region   atlas.Region
	left     int
	top      int
	mask     bool
	lastUsed uint64 // frame of last hit
	seq      uint64 // insertion order, tie-break for eviction
	pinned   bool
}

// Cache resolves keys to atlas regions. It owns the key→entry mapping and
// is the only writer of pin and recency state.
//
// Cache is not safe for concurrent use; all mutation happens on the render
// goroutine.
type Cache struct {
	masks  *atlas.Atlas
	colors *atlas.Atlas
	maskUp *atlas.Uploader
	colUp  *atlas.Uploader
	raster Rasterizer
	cfg    Config

	entries map[Key]*entry
	frame   uint64
	nextSeq uint64

	hits      uint64
	misses    uint64
	evictions uint64
}

// New creates a cache over one mask and one color atlas. Rasterized pixels
// are staged through the matching uploader, so the atlas and uploader pairs
// must belong together.
func New(masks, colors *atlas.Atlas, maskUp, colUp *atlas.Uploader, r Rasterizer, cfg Config) *Cache {
	return &Cache{
		masks:   masks,
		colors:  colors,
		maskUp:  maskUp,
		colUp:   colUp,
		raster:  r,
		cfg:     cfg,
		entries: make(map[Key]*entry),
	}
}

// Len returns the number of live entries.
func (c *Cache) Len() int { return len(c.entries) }

// Frame returns the current frame number.
func (c *Cache) Frame() uint64 { return c.frame }

// Stats returns cumulative hit, miss and eviction counts.
func (c *Cache) Stats() (hits, misses, evictions uint64) {
	return c.hits, c.misses, c.evictions
}

// Resolve returns the atlas slot for key, rasterizing and placing it on a
// miss. The returned entry is pinned until EndFrame and cannot be evicted
// while the current frame references it.
//
// Under atlas pressure Resolve evicts unpinned entries, least recently used
// first, retrying the allocation after each eviction. Only when every
// unpinned entry of the same atlas kind is gone and the item still does not
// fit does it return atlas.ErrAtlasFull.
func (c *Cache) Resolve(key Key) (Slot, error) {
	if e, ok := c.entries[key]; ok {
		if c.atlasFor(e.mask).Generation(e.region.Page) == e.region.Generation {
			e.lastUsed = c.frame
			e.pinned = true
			c.hits++
			return c.slot(e), nil
		}
		// The page was reset since this entry was placed. The pixels are
		// gone; treat it as a miss.
		delete(c.entries, key)
	}
	c.misses++

	bm, err := c.raster.Rasterize(key)
	if err != nil {
		return Slot{}, fmt.Errorf("%w: %w", ErrRasterizationFailed, err)
	}
	if bm == nil || bm.W <= 0 || bm.H <= 0 {
		return Slot{}, fmt.Errorf("%w: empty bitmap", ErrRasterizationFailed)
	}

	a := c.atlasFor(bm.Mask)
	region, err := c.allocate(a, bm.W, bm.H)
	if err != nil {
		return Slot{}, err
	}

	up := c.colUp
	if bm.Mask {
		up = c.maskUp
	}
	if err := up.Stage(region.Page, region.Rect, bm.Pixels); err != nil {
		a.Free(region)
		return Slot{}, err
	}

	e := &entry{
		key:      key,
		region:   region,
		left:     bm.Left,
		top:      bm.Top,
		mask:     bm.Mask,
		lastUsed: c.frame,
		seq:      c.nextSeq,
		pinned:   true,
	}
	c.nextSeq++
	c.entries[key] = e
	return c.slot(e), nil
}

// allocate tries the atlas, evicting one unpinned entry at a time until the
// allocation succeeds or no candidate remains.
func (c *Cache) allocate(a *atlas.Atlas, w, h int) (atlas.Region, error) {
	for {
		region, err := a.Allocate(w, h)
		if err == nil {
			return region, nil
		}
		if !errors.Is(err, atlas.ErrAtlasFull) {
			return atlas.Region{}, err
		}
		if !c.evictOne(a.Kind()) {
			return atlas.Region{}, err
		}
	}
}

// evictOne removes the unpinned entry of the given atlas kind with the
// smallest (lastUsed, seq). The selection is a full scan, but by a total
// order, so it is deterministic regardless of map iteration order.
func (c *Cache) evictOne(kind atlas.Kind) bool {
	var victim *entry
	for _, e := range c.entries {
		if e.pinned || e.region.Kind != kind {
			continue
		}
		if victim == nil ||
			e.lastUsed < victim.lastUsed ||
			(e.lastUsed == victim.lastUsed && e.seq < victim.seq) {
			victim = e
		}
	}
	if victim == nil {
		return false
	}
	c.evict(victim)
	return true
}

func (c *Cache) evict(e *entry) {
	c.atlasFor(e.mask).Free(e.region)
	delete(c.entries, e.key)
	c.evictions++
}

// EndFrame unpins every entry and advances the frame clock. Entries whose
// last use is older than MaxAge frames are evicted now, bounding the steady
// state footprint the way pressure eviction bounds the peak.
func (c *Cache) EndFrame() {
	var stale []*entry
	for _, e := range c.entries {
		e.pinned = false
		if c.cfg.MaxAge > 0 && c.frame-e.lastUsed >= c.cfg.MaxAge {
			stale = append(stale, e)
		}
	}
	for _, e := range stale {
		c.evict(e)
	}
	c.frame++
}

// Clear drops all entries and frees their regions. Used when the underlying
// font or sprite set changes and every cached bitmap is invalid.
func (c *Cache) Clear() {
	for _, e := range c.entries {
		c.atlasFor(e.mask).Free(e.region)
	}
	c.entries = make(map[Key]*entry)
}

func (c *Cache) atlasFor(mask bool) *atlas.Atlas {
	if mask {
		return c.masks
	}
	return c.colors
}

func (c *Cache) slot(e *entry) Slot {
	return Slot{Region: e.region, Left: e.left, Top: e.top, Mask: e.mask}
}
