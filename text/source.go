package text

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/go-text/typesetting/font"
)

// ErrEmptyFontData is returned when font data is empty.
var ErrEmptyFontData = errors.New("text: empty font data")

// FontSource represents a loaded font file (TTF or OTF).
// One FontSource serves all sizes; sizing happens at shaping and
// rasterization time. FontSource is heavyweight and should be shared
// across the application.
//
// FontSource is safe for concurrent use.
// FontSource must not be copied after creation (enforced by copyCheck).
type FontSource struct {
	// addr is used for copy protection. It must point to the
	// FontSource itself.
	addr *FontSource

	// parsed is the read-only parsed font, safe for concurrent use.
	// font.Face instances derived from it are not, so callers create
	// their own faces per goroutine.
	parsed *font.Font

	upem uint16
	name string

	// mu guards face, a shared Face used for coverage queries.
	mu   sync.Mutex
	face *font.Face
}

// NewFontSource parses font data into a FontSource.
// The data slice is copied internally and can be reused after this call.
func NewFontSource(data []byte) (*FontSource, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}

	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)

	face, err := font.ParseTTF(bytes.NewReader(dataCopy))
	if err != nil {
		return nil, fmt.Errorf("text: parse font: %w", err)
	}

	s := &FontSource{
		parsed: face.Font,
		upem:   face.Upem(),
		name:   face.Describe().Family,
		face:   face,
	}
	s.addr = s
	return s, nil
}

// NewFontSourceFromFile loads a FontSource from a font file path.
func NewFontSourceFromFile(path string) (*FontSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("text: read font file: %w", err)
	}
	return NewFontSource(data)
}

// Name returns the font family name, or "" if the font does not
// declare one.
func (s *FontSource) Name() string {
	s.copyCheck()
	return s.name
}

// Upem returns the font's units per em.
func (s *FontSource) Upem() uint16 {
	s.copyCheck()
	return s.upem
}

// Font returns the parsed font for advanced operations.
// The returned *font.Font is read-only and safe for concurrent use.
func (s *FontSource) Font() *font.Font {
	s.copyCheck()
	return s.parsed
}

// NewFace creates a fresh font.Face over the parsed font.
// font.Face is not safe for concurrent use; callers own the returned
// instance.
func (s *FontSource) NewFace() *font.Face {
	s.copyCheck()
	return font.NewFace(s.parsed)
}

// HasRune reports whether the font maps r to a non-notdef glyph.
func (s *FontSource) HasRune(r rune) bool {
	s.copyCheck()
	s.mu.Lock()
	defer s.mu.Unlock()
	gid, ok := s.face.NominalGlyph(r)
	return ok && gid != 0
}

// GlyphID returns the glyph index for r, or (0, false) when the font
// has no mapping for it.
func (s *FontSource) GlyphID(r rune) (font.GID, bool) {
	s.copyCheck()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.face.NominalGlyph(r)
}

// copyCheck panics if FontSource was copied by value.
func (s *FontSource) copyCheck() {
	if s.addr != s {
		panic("text: FontSource must not be copied by value")
	}
}
