package atlas

// Kind identifies the pixel layout of an atlas and its pages.
type Kind uint8

const (
	// Mask is a single-channel alpha atlas (one byte per pixel).
	// Glyph coverage masks live here.
	Mask Kind = iota

	// Color is a four-channel RGBA atlas (four bytes per pixel).
	// Sprites and color glyphs (emoji) live here.
	Color
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case Mask:
		return "Mask"
	case Color:
		return "Color"
	default:
		return "Unknown"
	}
}

// BytesPerPixel returns the pixel stride for the kind.
func (k Kind) BytesPerPixel() int {
	if k == Color {
		return 4
	}
	return 1
}

// PageID identifies one texture page within an Atlas.
type PageID int

// Rect is an integer rectangle in page pixel space.
type Rect struct {
	X, Y, W, H int
}

// Right returns the exclusive right edge.
func (r Rect) Right() int { return r.X + r.W }

// Bottom returns the exclusive bottom edge.
func (r Rect) Bottom() int { return r.Y + r.H }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Area returns the rectangle area in pixels.
func (r Rect) Area() int { return r.W * r.H }

// Overlaps reports whether r and other share any pixel.
func (r Rect) Overlaps(other Rect) bool {
	return r.X < other.Right() && other.X < r.Right() &&
		r.Y < other.Bottom() && other.Y < r.Bottom()
}

// Touches reports whether r and other overlap or share an edge.
// Used by the uploader when coalescing dirty rectangles.
func (r Rect) Touches(other Rect) bool {
	return r.X <= other.Right() && other.X <= r.Right() &&
		r.Y <= other.Bottom() && other.Y <= r.Bottom()
}

// Union returns the bounding rectangle of r and other.
func (r Rect) Union(other Rect) Rect {
	if r.Empty() {
		return other
	}
	if other.Empty() {
		return r
	}
	x := min(r.X, other.X)
	y := min(r.Y, other.Y)
	return Rect{
		X: x,
		Y: y,
		W: max(r.Right(), other.Right()) - x,
		H: max(r.Bottom(), other.Bottom()) - y,
	}
}

// Region is a rectangular slot on an atlas page, uniquely owned by at most
// one cache entry at a time.
//
// Generation records the owning page's generation at allocation time. When
// the page is later reset, its generation advances and the region becomes
// stale: drawing through it would sample wrong pixels, so stale regions must
// be dropped and re-resolved.
type Region struct {
	Kind       Kind
	Page       PageID
	Rect       Rect
	Generation uint32
}
