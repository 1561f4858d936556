// Package atlas manages fixed-capacity texture pages and the placement of
// sprite and glyph bitmaps on them.
//
// An Atlas owns a bounded set of Pages. Each page packs rectangles with an
// online skyline allocator: a frontier of occupied-height segments is kept
// per page, and a new rectangle goes to the segment where it ends up lowest
// (ties broken by narrower segment, then leftmost position, so placement is
// reproducible across runs).
//
// Freeing a region does not compact the page. Freed rectangles go to a
// per-page free list and are reused by later allocations of equal or smaller
// size; remaining fragmentation is resolved lazily, by later allocations
// failing and the caller evicting more entries. Only when a page has no live
// regions left is its packing state reset, which bumps the page generation
// and invalidates every Region previously handed out for it.
//
// The Uploader tracks the pixel side: it keeps a CPU shadow buffer per page,
// records dirty rectangles as bitmaps are staged, and emits a coalesced list
// of texture writes per frame.
package atlas
