package text

import (
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

func TestNewFontSourceEmptyData(t *testing.T) {
	if _, err := NewFontSource(nil); err != ErrEmptyFontData {
		t.Errorf("NewFontSource(nil) error = %v, want ErrEmptyFontData", err)
	}
}

func TestNewFontSourceInvalidData(t *testing.T) {
	if _, err := NewFontSource([]byte("not a font")); err == nil {
		t.Error("NewFontSource(garbage) succeeded, want error")
	}
}

func TestFontSourceMetadata(t *testing.T) {
	src, err := NewFontSource(goregular.TTF)
	if err != nil {
		t.Fatalf("NewFontSource: %v", err)
	}
	if src.Name() == "" {
		t.Error("Name() is empty")
	}
	if src.Upem() == 0 {
		t.Error("Upem() = 0")
	}
}

func TestFontSourceCoverage(t *testing.T) {
	src, err := NewFontSource(goregular.TTF)
	if err != nil {
		t.Fatalf("NewFontSource: %v", err)
	}
	if !src.HasRune('A') {
		t.Error("HasRune('A') = false, want true")
	}
	// Go Regular does not cover CJK.
	if src.HasRune('中') {
		t.Error("HasRune(U+4E2D) = true, want false")
	}
}

func TestFontSourceGlyphID(t *testing.T) {
	src, err := NewFontSource(goregular.TTF)
	if err != nil {
		t.Fatalf("NewFontSource: %v", err)
	}
	gid, ok := src.GlyphID('A')
	if !ok || gid == 0 {
		t.Errorf("GlyphID('A') = (%d, %v), want non-notdef glyph", gid, ok)
	}
}

func TestFontSourceCopyPanics(t *testing.T) {
	src, err := NewFontSource(goregular.TTF)
	if err != nil {
		t.Fatalf("NewFontSource: %v", err)
	}
	defer func() {
		if recover() == nil {
			t.Error("copied FontSource did not panic")
		}
	}()
	cp := *src
	_ = cp.Name()
}
