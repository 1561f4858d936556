package atlas

import (
	"errors"
	"fmt"
	"slices"
)

// ErrBadStage is returned when staged pixels do not match the target
// rectangle, or the rectangle lies outside the page.
var ErrBadStage = errors.New("atlas: staged pixels do not fit target rect")

// Write is one pending texture write: the pixels for a single dirty
// rectangle of a single page, tightly packed row by row.
//
// All Writes returned by a Flush must be applied by the GPU backend before
// any batch referencing the same pages is submitted. This ordering is an API
// contract of the frame cycle, not something the uploader can enforce.
type Write struct {
	Kind   Kind
	Page   PageID
	Rect   Rect
	Pixels []byte

	// BytesPerRow is the stride of Pixels, always Rect.W times the kind's
	// pixel size.
	BytesPerRow int
}

// shadow is the CPU-side copy of one page's pixels plus its dirty state.
type shadow struct {
	pix   []byte
	dirty []Rect
}

// Uploader accumulates pixel writes against an atlas's pages and emits the
// minimal set of texture write operations per frame.
//
// Staged pixels are copied into a per-page shadow buffer immediately, so the
// caller may reuse its source buffer after Stage returns. Flush coalesces
// overlapping and adjacent dirty rectangles on the same page into their
// bounding rectangle, keeping the number of GPU upload calls small.
type Uploader struct {
	atlas *Atlas
	pages map[PageID]*shadow
}

// NewUploader creates an uploader tracking the given atlas's pages.
func NewUploader(a *Atlas) *Uploader {
	return &Uploader{
		atlas: a,
		pages: make(map[PageID]*shadow),
	}
}

// Stage copies src into the page shadow buffer at r and marks r dirty.
// src must hold exactly r.W*r.H pixels in the atlas's pixel layout.
func (u *Uploader) Stage(page PageID, r Rect, src []byte) error {
	cfg := u.atlas.Config()
	bpp := u.atlas.Kind().BytesPerPixel()
	if r.Empty() || r.X < 0 || r.Y < 0 || r.Right() > cfg.PageWidth || r.Bottom() > cfg.PageHeight {
		return fmt.Errorf("%w: rect %+v outside %dx%d page", ErrBadStage, r, cfg.PageWidth, cfg.PageHeight)
	}
	if len(src) != r.W*r.H*bpp {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrBadStage, len(src), r.W*r.H*bpp)
	}

	s := u.pages[page]
	if s == nil {
		s = &shadow{pix: make([]byte, cfg.PageWidth*cfg.PageHeight*bpp)}
		u.pages[page] = s
	}

	stride := cfg.PageWidth * bpp
	rowLen := r.W * bpp
	for row := 0; row < r.H; row++ {
		dst := s.pix[(r.Y+row)*stride+r.X*bpp:]
		copy(dst[:rowLen], src[row*rowLen:(row+1)*rowLen])
	}
	s.dirty = append(s.dirty, r)
	return nil
}

// Flush coalesces all dirty rectangles and returns one Write per merged
// rectangle, ordered by page then by merge result. The dirty state is
// cleared; the shadow pixels are kept for the next frame.
func (u *Uploader) Flush() []Write {
	if len(u.pages) == 0 {
		return nil
	}

	// Map iteration order is not deterministic; walk pages by id instead.
	ids := make([]PageID, 0, len(u.pages))
	for id := range u.pages {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var writes []Write
	for _, id := range ids {
		s := u.pages[id]
		if len(s.dirty) == 0 {
			continue
		}
		for _, r := range coalesce(s.dirty) {
			writes = append(writes, u.extract(id, s, r))
		}
		s.dirty = s.dirty[:0]
	}
	return writes
}

// extract slices a tightly packed copy of r out of the shadow buffer.
func (u *Uploader) extract(id PageID, s *shadow, r Rect) Write {
	cfg := u.atlas.Config()
	bpp := u.atlas.Kind().BytesPerPixel()
	stride := cfg.PageWidth * bpp
	rowLen := r.W * bpp

	pix := make([]byte, rowLen*r.H)
	for row := 0; row < r.H; row++ {
		src := s.pix[(r.Y+row)*stride+r.X*bpp:]
		copy(pix[row*rowLen:(row+1)*rowLen], src[:rowLen])
	}
	return Write{
		Kind:        u.atlas.Kind(),
		Page:        id,
		Rect:        r,
		Pixels:      pix,
		BytesPerRow: rowLen,
	}
}

// coalesce merges overlapping and edge-adjacent rectangles into their
// bounding rectangle, repeating until no further merge applies. Quadratic in
// the number of dirty rects, which stays small (a handful of uploads per
// frame in steady state).
func coalesce(dirty []Rect) []Rect {
	merged := append([]Rect(nil), dirty...)
	for {
		changed := false
		for i := 0; i < len(merged); i++ {
			for j := i + 1; j < len(merged); j++ {
				if !merged[i].Touches(merged[j]) {
					continue
				}
				merged[i] = merged[i].Union(merged[j])
				merged = append(merged[:j], merged[j+1:]...)
				j--
				changed = true
			}
		}
		if !changed {
			return merged
		}
	}
}
