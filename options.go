package sprite

// Option configures a Canvas during creation.
//
// Example:
//
//	// Defaults: 1024x1024 pages, up to 8 per atlas kind.
//	c, err := sprite.New(provider)
//
//	// Larger pages for glyph-heavy workloads
//	c, err := sprite.New(provider, sprite.WithPageSize(2048, 2048))
type Option func(*canvasOptions)

// canvasOptions holds optional configuration for Canvas creation.
type canvasOptions struct {
	pageWidth     int
	pageHeight    int
	maxPages      int
	maxTextureDim int
	padding       int
	locale        string
	subpixel      int
	fallbackRune  rune
	maxCacheAge   uint64
}

// defaultCanvasOptions returns the default canvas options.
func defaultCanvasOptions() canvasOptions {
	return canvasOptions{
		pageWidth:     1024,
		pageHeight:    1024,
		maxPages:      8,
		maxTextureDim: 8192,
		padding:       1,
		locale:        "en-US",
		subpixel:      4,
		fallbackRune:  '�',
		maxCacheAge:   100,
	}
}

// WithPageSize sets the dimensions of each atlas page texture.
func WithPageSize(w, h int) Option {
	return func(o *canvasOptions) {
		o.pageWidth = w
		o.pageHeight = h
	}
}

// WithMaxPages caps how many pages each atlas may grow to.
func WithMaxPages(n int) Option {
	return func(o *canvasOptions) {
		o.maxPages = n
	}
}

// WithMaxTextureDim clamps page dimensions to the device texture limit.
func WithMaxTextureDim(dim int) Option {
	return func(o *canvasOptions) {
		o.maxTextureDim = dim
	}
}

// WithPadding sets the pixel gap kept around every atlas allocation.
// Padding prevents sampler bleed between neighboring regions.
func WithPadding(px int) Option {
	return func(o *canvasOptions) {
		o.padding = px
	}
}

// WithLocale sets the BCP 47 locale tag used for script itemization and
// font fallback during text shaping.
func WithLocale(tag string) Option {
	return func(o *canvasOptions) {
		o.locale = tag
	}
}

// WithSubpixelPositions sets how many horizontal subpixel buckets glyphs
// are rasterized at. 1 disables subpixel positioning; 4 is the default.
func WithSubpixelPositions(n int) Option {
	return func(o *canvasOptions) {
		o.subpixel = n
	}
}

// WithFallbackRune sets the rune substituted when a glyph cannot be
// rasterized. Defaults to U+FFFD.
func WithFallbackRune(r rune) Option {
	return func(o *canvasOptions) {
		o.fallbackRune = r
	}
}

// WithMaxCacheAge sets how many frames an atlas entry may go unused
// before it becomes eligible for age-based eviction.
func WithMaxCacheAge(frames uint64) Option {
	return func(o *canvasOptions) {
		o.maxCacheAge = frames
	}
}
