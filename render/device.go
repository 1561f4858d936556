package render

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/sprite/atlas"
)

// DeviceHandle provides GPU device access from the host application.
//
// The host (e.g. a gogpu.App) implements DeviceHandle and passes it in;
// this package never creates a device of its own, so atlas textures
// share the application's GPU resources.
//
// DeviceHandle is an alias for gpucontext.DeviceProvider, keeping full
// compatibility with the gpucontext ecosystem.
type DeviceHandle = gpucontext.DeviceProvider

// TextureDescriptor describes parameters for creating a texture.
// It mirrors the WebGPU GPUTextureDescriptor specification.
type TextureDescriptor struct {
	// Label is an optional debug label for the texture.
	Label string

	// Width and Height are the texture dimensions in pixels.
	Width  uint32
	Height uint32

	// Format is the texture pixel format.
	Format gputypes.TextureFormat

	// Usage specifies how the texture will be used.
	Usage TextureUsage
}

// TextureUsage specifies how a texture can be used.
// These flags can be combined with bitwise OR.
type TextureUsage uint32

const (
	// TextureUsageCopySrc allows the texture to be used as a copy source.
	TextureUsageCopySrc TextureUsage = 1 << iota

	// TextureUsageCopyDst allows the texture to be used as a copy destination.
	TextureUsageCopyDst

	// TextureUsageTextureBinding allows the texture to be sampled in shaders.
	TextureUsageTextureBinding

	// TextureUsageRenderAttachment allows the texture to be rendered into.
	TextureUsageRenderAttachment
)

// Texture represents a GPU texture resource owned by a backend.
type Texture interface {
	// Width returns the texture width in pixels.
	Width() uint32

	// Height returns the texture height in pixels.
	Height() uint32

	// Format returns the texture pixel format.
	Format() gputypes.TextureFormat

	// Destroy releases GPU resources associated with this texture.
	Destroy()
}

// TextureFactory creates textures. Implemented by backend/wgpu.
type TextureFactory interface {
	CreateTexture(desc TextureDescriptor) (Texture, error)
}

// TextureWriter copies pixel data into a texture sub-region.
// data holds tightly packed rows of bytesPerRow bytes each.
// Implemented by backend/wgpu over the device queue.
type TextureWriter interface {
	WriteTexture(tex Texture, x, y, w, h int, data []byte, bytesPerRow int) error
}

// FormatFor returns the texture format backing an atlas kind:
// R8Unorm for coverage masks, RGBA8Unorm for color sprites.
func FormatFor(kind atlas.Kind) gputypes.TextureFormat {
	if kind == atlas.Mask {
		return gputypes.TextureFormatR8Unorm
	}
	return gputypes.TextureFormatRGBA8Unorm
}

// PageDescriptor returns the descriptor for an atlas page texture of
// the given kind and dimensions.
func PageDescriptor(kind atlas.Kind, page atlas.PageID, w, h int) TextureDescriptor {
	return TextureDescriptor{
		Label:  fmt.Sprintf("%s atlas page %d", kind, page),
		Width:  uint32(w),
		Height: uint32(h),
		Format: FormatFor(kind),
		Usage:  TextureUsageCopyDst | TextureUsageTextureBinding,
	}
}

// NullDeviceHandle is a DeviceHandle with nil implementations.
// Used in tests and CPU-only setups where no GPU is available.
type NullDeviceHandle struct{}

// Device returns nil for the null device.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil for the null device.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null device.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// AdapterInfo returns unknown adapter info for the null device.
func (NullDeviceHandle) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Type: gpucontext.AdapterTypeUnknown}
}

// SurfaceFormat returns undefined format for the null device.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

// Ensure NullDeviceHandle implements DeviceHandle.
var _ DeviceHandle = NullDeviceHandle{}
