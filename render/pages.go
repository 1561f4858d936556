package render

import (
	"fmt"

	"github.com/gogpu/sprite/atlas"
)

// PageTable owns one GPU texture per live atlas page and applies the
// pixel writes a frame produces. Pages are created lazily on first
// write through the backend's TextureFactory.
//
// PageTable is not safe for concurrent use; drive it from the frame
// loop like the Canvas that feeds it.
type PageTable struct {
	factory TextureFactory
	writer  TextureWriter

	pageW, pageH int

	textures map[pageKey]Texture
}

type pageKey struct {
	kind atlas.Kind
	page atlas.PageID
}

// NewPageTable creates a PageTable producing pageW x pageH textures.
func NewPageTable(factory TextureFactory, writer TextureWriter, pageW, pageH int) *PageTable {
	return &PageTable{
		factory:  factory,
		writer:   writer,
		pageW:    pageW,
		pageH:    pageH,
		textures: make(map[pageKey]Texture),
	}
}

// Texture returns the texture for an atlas page, or nil if the page
// has never been written to.
func (pt *PageTable) Texture(kind atlas.Kind, page atlas.PageID) Texture {
	return pt.textures[pageKey{kind, page}]
}

// Apply uploads a frame's atlas writes, creating page textures as
// needed. Writes are applied in order; on error the remaining writes
// are skipped so the caller can retry the whole frame.
func (pt *PageTable) Apply(writes []atlas.Write) error {
	for _, w := range writes {
		tex, err := pt.ensure(w.Kind, w.Page)
		if err != nil {
			return err
		}
		r := w.Rect
		if err := pt.writer.WriteTexture(tex, r.X, r.Y, r.W, r.H, w.Pixels, w.BytesPerRow); err != nil {
			return fmt.Errorf("render: upload %v page %d %v: %w", w.Kind, w.Page, r, err)
		}
	}
	return nil
}

// Release destroys all page textures. Call when the canvas is cleared
// or the device is lost.
func (pt *PageTable) Release() {
	for k, tex := range pt.textures {
		tex.Destroy()
		delete(pt.textures, k)
	}
}

func (pt *PageTable) ensure(kind atlas.Kind, page atlas.PageID) (Texture, error) {
	key := pageKey{kind, page}
	if tex, ok := pt.textures[key]; ok {
		return tex, nil
	}
	tex, err := pt.factory.CreateTexture(PageDescriptor(kind, page, pt.pageW, pt.pageH))
	if err != nil {
		return nil, fmt.Errorf("render: create %v page %d: %w", kind, page, err)
	}
	pt.textures[key] = tex
	return tex, nil
}
