package atlas

import (
	"errors"
	"testing"
)

func testConfig(w, h, maxPages int) Config {
	return Config{
		PageWidth:     w,
		PageHeight:    h,
		MaxPages:      maxPages,
		MaxTextureDim: 8192,
		Padding:       0,
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"default", DefaultConfig(), false},
		{"zero width", testConfig(0, 256, 1), true},
		{"negative height", testConfig(256, -1, 1), true},
		{"zero max pages", testConfig(256, 256, 0), true},
		{"page exceeds max dim", Config{PageWidth: 16384, PageHeight: 256, MaxPages: 1, MaxTextureDim: 8192}, true},
		{"negative padding", Config{PageWidth: 256, PageHeight: 256, MaxPages: 1, Padding: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAllocateInvalidSize(t *testing.T) {
	a, err := New(Mask, testConfig(256, 256, 1))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.Allocate(0, 10); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("Allocate(0, 10) error = %v, want ErrInvalidSize", err)
	}
	if _, err := a.Allocate(10, -1); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("Allocate(10, -1) error = %v, want ErrInvalidSize", err)
	}
}

func TestAllocateFullPageHeight(t *testing.T) {
	a, err := New(Mask, testConfig(64, 64, 1))
	if err != nil {
		t.Fatal(err)
	}
	r, err := a.Allocate(16, 64)
	if err != nil {
		t.Fatalf("full-height Allocate error = %v", err)
	}
	if r.Rect.H != 64 || r.Rect.Y != 0 {
		t.Errorf("full-height region = %+v, want y 0 h 64", r.Rect)
	}
	if _, err := a.Allocate(48, 16); err != nil {
		t.Errorf("Allocate beside full-height region error = %v", err)
	}
}

func TestAllocateOversized(t *testing.T) {
	a, err := New(Mask, testConfig(256, 256, 4))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.Allocate(300, 10); !errors.Is(err, ErrAtlasFull) {
		t.Errorf("oversized Allocate error = %v, want ErrAtlasFull", err)
	}
	if got := a.PageCount(); got != 0 {
		t.Errorf("PageCount() after oversized Allocate = %d, want 0", got)
	}
}

// 100x100 allocations on a 256x256 page with max pages 1: a 2x2 grid fits,
// further allocations fail with ErrAtlasFull.
func TestAllocateSinglePageExhaustion(t *testing.T) {
	a, err := New(Mask, testConfig(256, 256, 1))
	if err != nil {
		t.Fatal(err)
	}

	var regions []Region
	for i := 0; i < 4; i++ {
		r, err := a.Allocate(100, 100)
		if err != nil {
			t.Fatalf("Allocate %d failed: %v", i, err)
		}
		regions = append(regions, r)
	}
	for i := 0; i < len(regions); i++ {
		for j := i + 1; j < len(regions); j++ {
			if regions[i].Rect == regions[j].Rect {
				t.Errorf("regions %d and %d share a rect", i, j)
			}
			if regions[i].Rect.Overlaps(regions[j].Rect) {
				t.Errorf("regions %d and %d overlap: %+v vs %+v", i, j, regions[i].Rect, regions[j].Rect)
			}
		}
	}

	if _, err := a.Allocate(100, 100); !errors.Is(err, ErrAtlasFull) {
		t.Errorf("fifth Allocate error = %v, want ErrAtlasFull", err)
	}
	if got := a.PageCount(); got != 1 {
		t.Errorf("PageCount() = %d, want 1", got)
	}
}

// With max pages 2, the allocation that exhausts page 0 spills to page 1
// instead of failing.
func TestAllocatePageGrowth(t *testing.T) {
	a, err := New(Mask, testConfig(256, 256, 2))
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 4; i++ {
		if _, err := a.Allocate(100, 100); err != nil {
			t.Fatalf("Allocate %d failed: %v", i, err)
		}
	}
	r5, err := a.Allocate(100, 100)
	if err != nil {
		t.Fatalf("fifth Allocate failed: %v", err)
	}
	if r5.Page != 1 {
		t.Errorf("fifth region on page %d, want 1", r5.Page)
	}
	if got := a.PageCount(); got != 2 {
		t.Errorf("PageCount() = %d, want 2", got)
	}
}

// No two live regions on one page may overlap, for any allocate/free
// sequence.
func TestPackingInvariant(t *testing.T) {
	a, err := New(Mask, testConfig(512, 512, 2))
	if err != nil {
		t.Fatal(err)
	}

	sizes := []struct{ w, h int }{
		{37, 12}, {100, 40}, {64, 64}, {13, 90}, {200, 31},
		{8, 8}, {120, 120}, {45, 17}, {77, 77}, {16, 240},
	}

	var live []Region
	for round := 0; round < 20; round++ {
		for _, sz := range sizes {
			r, err := a.Allocate(sz.w, sz.h)
			if errors.Is(err, ErrAtlasFull) {
				continue
			}
			if err != nil {
				t.Fatalf("Allocate(%d, %d) failed: %v", sz.w, sz.h, err)
			}
			live = append(live, r)
		}
		// Free every third region to churn the free lists.
		var kept []Region
		for i, r := range live {
			if i%3 == 0 {
				a.Free(r)
			} else {
				kept = append(kept, r)
			}
		}
		live = kept

		for i := 0; i < len(live); i++ {
			for j := i + 1; j < len(live); j++ {
				ri, rj := live[i], live[j]
				if ri.Page != rj.Page || ri.Generation != a.Generation(ri.Page) || rj.Generation != a.Generation(rj.Page) {
					continue
				}
				if ri.Rect.Overlaps(rj.Rect) {
					t.Fatalf("round %d: live regions overlap: %+v and %+v", round, ri, rj)
				}
			}
		}
	}
}

// Identical call sequences must yield identical placements.
func TestDeterministicPlacement(t *testing.T) {
	run := func() []Region {
		a, err := New(Mask, testConfig(256, 256, 2))
		if err != nil {
			t.Fatal(err)
		}
		var out []Region
		for i := 0; i < 40; i++ {
			w := 10 + (i*7)%50
			h := 10 + (i*13)%50
			r, err := a.Allocate(w, h)
			if errors.Is(err, ErrAtlasFull) {
				continue
			}
			if err != nil {
				t.Fatal(err)
			}
			out = append(out, r)
			if i%4 == 3 {
				a.Free(r)
			}
		}
		return out
	}

	first := run()
	second := run()
	if len(first) != len(second) {
		t.Fatalf("placement count differs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("placement %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestFreeReuse(t *testing.T) {
	a, err := New(Mask, testConfig(256, 256, 1))
	if err != nil {
		t.Fatal(err)
	}

	r1, err := a.Allocate(64, 64)
	if err != nil {
		t.Fatal(err)
	}
	// Keep the page alive so freeing r1 does not reset it.
	if _, err := a.Allocate(32, 32); err != nil {
		t.Fatal(err)
	}

	a.Free(r1)
	r2, err := a.Allocate(64, 64)
	if err != nil {
		t.Fatal(err)
	}
	if r2.Rect != r1.Rect {
		t.Errorf("freed slot not reused: got %+v, want %+v", r2.Rect, r1.Rect)
	}
	if r2.Generation != r1.Generation {
		t.Errorf("generation changed on reuse: %d vs %d", r2.Generation, r1.Generation)
	}
}

func TestPageResetBumpsGeneration(t *testing.T) {
	a, err := New(Mask, testConfig(256, 256, 1))
	if err != nil {
		t.Fatal(err)
	}

	r, err := a.Allocate(64, 64)
	if err != nil {
		t.Fatal(err)
	}
	gen := a.Generation(r.Page)
	a.Free(r) // last live region: page resets

	if got := a.Generation(r.Page); got != gen+1 {
		t.Errorf("Generation() after reset = %d, want %d", got, gen+1)
	}

	// The stale region must be ignored by a second Free.
	a.Free(r)
	if got := a.Generation(r.Page); got != gen+1 {
		t.Errorf("Generation() after stale Free = %d, want %d", got, gen+1)
	}
}

func TestClear(t *testing.T) {
	a, err := New(Color, testConfig(256, 256, 2))
	if err != nil {
		t.Fatal(err)
	}
	r, err := a.Allocate(100, 100)
	if err != nil {
		t.Fatal(err)
	}
	a.Clear()
	if got := a.Generation(r.Page); got != r.Generation+1 {
		t.Errorf("Generation() after Clear = %d, want %d", got, r.Generation+1)
	}
	// All space must be reusable again.
	for i := 0; i < 4; i++ {
		if _, err := a.Allocate(100, 100); err != nil {
			t.Fatalf("Allocate %d after Clear failed: %v", i, err)
		}
	}
}

func TestPaddingSeparatesRegions(t *testing.T) {
	cfg := testConfig(64, 64, 1)
	cfg.Padding = 1
	a, err := New(Mask, cfg)
	if err != nil {
		t.Fatal(err)
	}
	r1, err := a.Allocate(16, 16)
	if err != nil {
		t.Fatal(err)
	}
	r2, err := a.Allocate(16, 16)
	if err != nil {
		t.Fatal(err)
	}
	if r1.Rect.W != 16 || r1.Rect.H != 16 {
		t.Errorf("region rect = %+v, want 16x16", r1.Rect)
	}
	gap := r2.Rect.X - r1.Rect.Right()
	if gap < 2*cfg.Padding {
		t.Errorf("padding gap = %d, want >= %d", gap, 2*cfg.Padding)
	}
}
