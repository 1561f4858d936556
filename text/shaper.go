package text

import (
	"sync"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/bidi"
)

// Glyph is a single positioned glyph produced by shaping.
// X and Y are pen positions in pixels relative to the text origin on
// the baseline, with shaping offsets already applied. Y grows downward.
type Glyph struct {
	GID     font.GID
	Cluster int

	X, Y     float64
	XAdvance float64
	YAdvance float64
}

// Metrics describes the vertical extent and total advance of a shaped
// string, in pixels.
type Metrics struct {
	// Ascent is the distance from the baseline to the top of the line,
	// positive up.
	Ascent float64

	// Descent is the distance from the baseline to the bottom of the
	// line, positive down.
	Descent float64

	// Gap is the recommended additional spacing between lines.
	Gap float64

	// Advance is the total horizontal advance of the string.
	Advance float64
}

// Height returns the line height (ascent + descent).
func (m Metrics) Height() float64 { return m.Ascent + m.Descent }

// Shaper converts strings into positioned glyphs using
// go-text/typesetting's HarfBuzz implementation. Text is split into
// bidi runs first, so mixed LTR/RTL strings shape correctly.
//
// Shaper is safe for concurrent use. HarfbuzzShaper instances carry
// mutable buffers and are pooled; each Shape call also creates its own
// lightweight font.Face since font.Face is not concurrent-safe.
type Shaper struct {
	pool sync.Pool

	// lang is passed to HarfBuzz for language-specific shaping rules.
	lang language.Language
}

// NewShaper creates a Shaper. locale is a BCP 47 tag such as "en-US";
// it selects language-specific OpenType rules during shaping.
func NewShaper(locale string) *Shaper {
	if locale == "" {
		locale = "en"
	}
	return &Shaper{
		pool: sync.Pool{
			New: func() any {
				return &shaping.HarfbuzzShaper{}
			},
		},
		lang: language.NewLanguage(locale),
	}
}

// Shape shapes s with the given font at size pixels per em.
// Glyphs are returned in visual order with absolute pen positions.
func (sh *Shaper) Shape(s string, src *FontSource, size float64) ([]Glyph, Metrics) {
	if s == "" || src == nil {
		return nil, Metrics{}
	}

	runes := []rune(s)
	face := src.NewFace()
	fixedSize := fixed.Int26_6(size * 64)

	hb := sh.pool.Get().(*shaping.HarfbuzzShaper)
	defer sh.pool.Put(hb)

	var (
		glyphs  []Glyph
		metrics Metrics
		x, y    float64
	)

	for _, run := range bidiRuns(s) {
		input := shaping.Input{
			Text:      runes,
			RunStart:  run.start,
			RunEnd:    run.end,
			Direction: run.dir,
			Face:      face,
			Size:      fixedSize,
			Script:    runScript(runes[run.start:run.end]),
			Language:  sh.lang,
		}
		out := hb.Shape(input)

		if asc := fixedToFloat(out.LineBounds.Ascent); asc > metrics.Ascent {
			metrics.Ascent = asc
		}
		if desc := -fixedToFloat(out.LineBounds.Descent); desc > metrics.Descent {
			metrics.Descent = desc
		}
		if gap := fixedToFloat(out.LineBounds.Gap); gap > metrics.Gap {
			metrics.Gap = gap
		}

		for _, g := range out.Glyphs {
			glyphs = append(glyphs, Glyph{
				GID:      g.GlyphID,
				Cluster:  g.TextIndex(),
				X:        x + fixedToFloat(g.XOffset),
				Y:        y - fixedToFloat(g.YOffset),
				XAdvance: fixedToFloat(g.XAdvance),
				YAdvance: fixedToFloat(g.YAdvance),
			})
			x += fixedToFloat(g.XAdvance)
			y -= fixedToFloat(g.YAdvance)
		}
	}

	metrics.Advance = x
	return glyphs, metrics
}

// Measure shapes s and returns only its metrics.
func (sh *Shaper) Measure(s string, src *FontSource, size float64) Metrics {
	_, m := sh.Shape(s, src, size)
	return m
}

// bidiRun is a maximal substring with a single text direction,
// identified by rune offsets into the source string.
type bidiRun struct {
	start, end int
	dir        di.Direction
}

// bidiRuns splits s into directional runs using the Unicode bidi
// algorithm. A string with no RTL content yields a single LTR run.
func bidiRuns(s string) []bidiRun {
	n := len([]rune(s))

	var p bidi.Paragraph
	if _, err := p.SetString(s); err != nil {
		return []bidiRun{{start: 0, end: n, dir: di.DirectionLTR}}
	}
	ordering, err := p.Order()
	if err != nil {
		return []bidiRun{{start: 0, end: n, dir: di.DirectionLTR}}
	}

	runs := make([]bidiRun, 0, ordering.NumRuns())
	for i := 0; i < ordering.NumRuns(); i++ {
		run := ordering.Run(i)
		start, end := run.Pos() // rune indices, end inclusive
		dir := di.DirectionLTR
		if run.Direction() == bidi.RightToLeft {
			dir = di.DirectionRTL
		}
		runs = append(runs, bidiRun{start: start, end: end + 1, dir: dir})
	}
	if len(runs) == 0 {
		return []bidiRun{{start: 0, end: n, dir: di.DirectionLTR}}
	}
	return runs
}

// runScript returns the script of the first rune with a concrete
// script, defaulting to Latin.
func runScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

// fixedToFloat converts a fixed.Int26_6 value to float64.
func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64.0
}
