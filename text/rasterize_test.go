package text

import (
	"errors"
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

func TestRasterizeLetter(t *testing.T) {
	src := testSource(t)
	rz := NewRasterizer()

	gid, ok := src.GlyphID('A')
	if !ok {
		t.Fatal("no glyph for 'A'")
	}

	img, err := rz.Rasterize(src, gid, 32, 0)
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}
	if !img.Mask {
		t.Error("outline glyph not a mask")
	}
	if img.Width <= 0 || img.Height <= 0 {
		t.Fatalf("image size %dx%d, want positive", img.Width, img.Height)
	}
	if len(img.Pixels) != img.Width*img.Height {
		t.Errorf("len(Pixels) = %d, want %d", len(img.Pixels), img.Width*img.Height)
	}
	var covered bool
	for _, p := range img.Pixels {
		if p != 0 {
			covered = true
			break
		}
	}
	if !covered {
		t.Error("rasterized glyph is entirely transparent")
	}
	// 'A' sits on the baseline with its cap above it.
	if img.Top <= 0 {
		t.Errorf("Top = %d, want above baseline", img.Top)
	}
}

func TestRasterizeSpaceIsEmpty(t *testing.T) {
	src := testSource(t)
	rz := NewRasterizer()

	gid, ok := src.GlyphID(' ')
	if !ok {
		t.Fatal("no glyph for space")
	}
	if _, err := rz.Rasterize(src, gid, 32, 0); !errors.Is(err, ErrEmptyGlyph) {
		t.Errorf("Rasterize(space) error = %v, want ErrEmptyGlyph", err)
	}
}

func TestRasterizeSizeScales(t *testing.T) {
	src := testSource(t)
	rz := NewRasterizer()

	gid, _ := src.GlyphID('M')
	small, err := rz.Rasterize(src, gid, 12, 0)
	if err != nil {
		t.Fatalf("Rasterize 12px: %v", err)
	}
	large, err := rz.Rasterize(src, gid, 48, 0)
	if err != nil {
		t.Fatalf("Rasterize 48px: %v", err)
	}
	if large.Height <= small.Height {
		t.Errorf("48px glyph height %d not larger than 12px height %d",
			large.Height, small.Height)
	}
}

func TestRasterizeInvalidArgs(t *testing.T) {
	src := testSource(t)
	rz := NewRasterizer()
	gid, _ := src.GlyphID('A')

	if _, err := rz.Rasterize(nil, gid, 16, 0); err == nil {
		t.Error("nil source accepted")
	}
	if _, err := rz.Rasterize(src, gid, 0, 0); err == nil {
		t.Error("zero size accepted")
	}
}

func TestRasterizeSubpixelOffsets(t *testing.T) {
	src := testSource(t)
	rz := NewRasterizer()
	gid, _ := src.GlyphID('l')

	a, err := rz.Rasterize(src, gid, 17, 0)
	if err != nil {
		t.Fatalf("Rasterize offset 0: %v", err)
	}
	b, err := rz.Rasterize(src, gid, 17, 0.5)
	if err != nil {
		t.Fatalf("Rasterize offset 0.5: %v", err)
	}
	// Same glyph at a shifted position stays within a pixel of the
	// unshifted width.
	if diff := b.Width - a.Width; diff < -1 || diff > 1 {
		t.Errorf("width changed by %d pixels across subpixel offset", diff)
	}
}

func TestGoldenFontBitmapGlyphs(t *testing.T) {
	// Go Regular has no embedded bitmap glyphs; every glyph should come
	// back as a mask.
	src, err := NewFontSource(goregular.TTF)
	if err != nil {
		t.Fatalf("NewFontSource: %v", err)
	}
	rz := NewRasterizer()
	for _, r := range "gQ7" {
		gid, ok := src.GlyphID(r)
		if !ok {
			t.Fatalf("no glyph for %q", r)
		}
		img, err := rz.Rasterize(src, gid, 20, 0)
		if err != nil {
			t.Fatalf("Rasterize(%q): %v", r, err)
		}
		if !img.Mask {
			t.Errorf("glyph %q not rasterized as mask", r)
		}
	}
}
