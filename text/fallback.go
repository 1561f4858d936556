package text

import (
	"sort"

	"golang.org/x/text/language"
)

// FallbackList picks a substitute FontSource when the preferred font
// has no glyph for a rune. Sources registered with language tags that
// match the list's locale are tried before the rest; within the same
// affinity, registration order wins.
//
// FallbackList is not safe for concurrent mutation; register fonts up
// front and share it read-only.
type FallbackList struct {
	locale  language.Tag
	entries []fallbackEntry
}

type fallbackEntry struct {
	src  *FontSource
	conf language.Confidence
	idx  int
}

// NewFallbackList creates a FallbackList for the given BCP 47 locale
// tag. An unparseable tag falls back to English ordering.
func NewFallbackList(locale string) *FallbackList {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &FallbackList{locale: tag}
}

// Add registers src as a fallback candidate. langs are the BCP 47 tags
// the font is designed for; they determine its priority for this
// list's locale. A font with no tags ranks last.
func (f *FallbackList) Add(src *FontSource, langs ...string) {
	conf := language.No
	if len(langs) > 0 {
		tags := make([]language.Tag, 0, len(langs))
		for _, l := range langs {
			if t, err := language.Parse(l); err == nil {
				tags = append(tags, t)
			}
		}
		if len(tags) > 0 {
			_, _, conf = language.NewMatcher(tags).Match(f.locale)
		}
	}

	f.entries = append(f.entries, fallbackEntry{
		src:  src,
		conf: conf,
		idx:  len(f.entries),
	})
	sort.SliceStable(f.entries, func(i, j int) bool {
		if f.entries[i].conf != f.entries[j].conf {
			return f.entries[i].conf > f.entries[j].conf
		}
		return f.entries[i].idx < f.entries[j].idx
	})
}

// Resolve returns a source able to display r. The preferred source wins
// when it covers r; otherwise the best-ranked registered fallback that
// covers r is returned, and nil when none does.
func (f *FallbackList) Resolve(r rune, preferred *FontSource) *FontSource {
	if preferred != nil && preferred.HasRune(r) {
		return preferred
	}
	for _, e := range f.entries {
		if e.src != preferred && e.src.HasRune(r) {
			return e.src
		}
	}
	return nil
}

// Len returns the number of registered fallback sources.
func (f *FallbackList) Len() int { return len(f.entries) }
