package sprite

import (
	"errors"
	"fmt"

	"github.com/gogpu/sprite/atlas"
	"github.com/gogpu/sprite/cache"
)

// Sentinel errors surfaced by the sprite package. Per-item failures never
// abort a frame; only construction-time misconfiguration is fatal.
var (
	// ErrAtlasFull means a single item could not be placed even after
	// evicting every unpinned cache entry. The draw is skipped and the
	// frame continues.
	ErrAtlasFull = atlas.ErrAtlasFull

	// ErrRasterizationFailed means the shaping or image collaborator could
	// not produce pixels for an item. The fallback glyph is substituted, or
	// the draw is skipped.
	ErrRasterizationFailed = cache.ErrRasterizationFailed

	// ErrStaleRegion means a recorded command referenced an atlas region
	// whose page was reset after recording. The command is dropped rather
	// than drawn with wrong texture coordinates.
	ErrStaleRegion = errors.New("sprite: stale atlas region")

	// ErrUnknownImage is returned when drawing an ImageID that was never
	// registered with AddImage.
	ErrUnknownImage = errors.New("sprite: unknown image")

	// ErrUnknownFont is returned when drawing with a FontID that was never
	// registered with AddFont.
	ErrUnknownFont = errors.New("sprite: unknown font")

	// ErrNotInFrame is returned when recording outside a
	// BeginFrame/EndFrame bracket.
	ErrNotInFrame = errors.New("sprite: draw outside BeginFrame/EndFrame")
)

// ConfigError reports invalid construction-time configuration. It is the
// only fatal error class: New fails and no Canvas is produced.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("sprite: invalid config %s: %s", e.Field, e.Reason)
}
