// Package wgpu implements the render texture contracts over
// gogpu/wgpu's HAL layer. It creates atlas page textures and copies
// staged pixel data into them through the device queue.
package wgpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	types "github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/sprite/render"
)

// Backend adapts a HAL device and queue to the render package's
// TextureFactory and TextureWriter interfaces.
//
// Backend is safe for concurrent use; the HAL device and queue handle
// their own synchronization.
type Backend struct {
	device hal.Device
	queue  hal.Queue
}

// New creates a Backend over an existing HAL device and queue.
// The Backend never creates a device of its own.
func New(device hal.Device, queue hal.Queue) (*Backend, error) {
	if device == nil || queue == nil {
		return nil, errors.New("wgpu: nil device or queue")
	}
	return &Backend{device: device, queue: queue}, nil
}

// NewFromHandle creates a Backend from a host device handle. The handle
// must expose its underlying HAL device and queue through HalDevice and
// HalQueue methods, as gogpu application providers do. Handles without HAL
// access, such as render.NullDeviceHandle, are rejected.
func NewFromHandle(handle render.DeviceHandle) (*Backend, error) {
	if handle == nil {
		return nil, errors.New("wgpu: nil device handle")
	}
	hp, ok := handle.(interface {
		HalDevice() any
		HalQueue() any
	})
	if !ok {
		return nil, errors.New("wgpu: device handle does not expose HAL types")
	}
	device, _ := hp.HalDevice().(hal.Device)
	queue, _ := hp.HalQueue().(hal.Queue)
	return New(device, queue)
}

// NewPageTable returns a PageTable backed by this device.
func (b *Backend) NewPageTable(pageW, pageH int) *render.PageTable {
	return render.NewPageTable(b, b, pageW, pageH)
}

// CreateTexture implements render.TextureFactory.
func (b *Backend) CreateTexture(desc render.TextureDescriptor) (render.Texture, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return nil, fmt.Errorf("wgpu: invalid texture size %dx%d", desc.Width, desc.Height)
	}

	halDesc := &hal.TextureDescriptor{
		Label: desc.Label,
		Size: hal.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     types.TextureDimension2D,
		Format:        convertFormat(desc.Format),
		Usage:         convertUsage(desc.Usage),
	}

	tex, err := b.device.CreateTexture(halDesc)
	if err != nil {
		return nil, fmt.Errorf("wgpu: create texture: %w", err)
	}
	return &texture{backend: b, tex: tex, desc: desc}, nil
}

// WriteTexture implements render.TextureWriter. data holds tightly
// packed rows of bytesPerRow bytes; the region must lie inside the
// texture.
func (b *Backend) WriteTexture(t render.Texture, x, y, w, h int, data []byte, bytesPerRow int) error {
	tex, ok := t.(*texture)
	if !ok {
		return errors.New("wgpu: texture was not created by this backend")
	}
	if w <= 0 || h <= 0 {
		return fmt.Errorf("wgpu: invalid write region %dx%d", w, h)
	}
	if x < 0 || y < 0 || uint32(x+w) > tex.desc.Width || uint32(y+h) > tex.desc.Height {
		return fmt.Errorf("wgpu: write region (%d,%d %dx%d) outside %dx%d texture",
			x, y, w, h, tex.desc.Width, tex.desc.Height)
	}
	if len(data) < h*bytesPerRow {
		return fmt.Errorf("wgpu: %d bytes for %d rows of %d", len(data), h, bytesPerRow)
	}

	dst := &hal.ImageCopyTexture{
		Texture:  tex.tex,
		MipLevel: 0,
		Origin:   hal.Origin3D{X: uint32(x), Y: uint32(y), Z: 0},
		Aspect:   types.TextureAspectAll,
	}
	layout := &hal.ImageDataLayout{
		Offset:       0,
		BytesPerRow:  uint32(bytesPerRow),
		RowsPerImage: uint32(h),
	}
	size := &hal.Extent3D{
		Width:              uint32(w),
		Height:             uint32(h),
		DepthOrArrayLayers: 1,
	}

	b.queue.WriteTexture(dst, data, layout, size)
	return nil
}

// texture wraps a HAL texture with its creation parameters.
type texture struct {
	backend *Backend
	tex     hal.Texture
	desc    render.TextureDescriptor
}

func (t *texture) Width() uint32                  { return t.desc.Width }
func (t *texture) Height() uint32                 { return t.desc.Height }
func (t *texture) Format() gputypes.TextureFormat { return t.desc.Format }

func (t *texture) Destroy() {
	t.backend.device.DestroyTexture(t.tex)
}

// convertFormat maps gputypes formats to HAL formats.
func convertFormat(format gputypes.TextureFormat) types.TextureFormat {
	switch format {
	case gputypes.TextureFormatR8Unorm:
		return types.TextureFormatR8Unorm
	case gputypes.TextureFormatRGBA8Unorm:
		return types.TextureFormatRGBA8Unorm
	case gputypes.TextureFormatRGBA8UnormSrgb:
		return types.TextureFormatRGBA8UnormSrgb
	case gputypes.TextureFormatBGRA8Unorm:
		return types.TextureFormatBGRA8Unorm
	default:
		return types.TextureFormatRGBA8Unorm
	}
}

// convertUsage maps render usage flags to HAL usage flags.
func convertUsage(usage render.TextureUsage) types.TextureUsage {
	var u types.TextureUsage
	if usage&render.TextureUsageCopySrc != 0 {
		u |= types.TextureUsageCopySrc
	}
	if usage&render.TextureUsageCopyDst != 0 {
		u |= types.TextureUsageCopyDst
	}
	if usage&render.TextureUsageTextureBinding != 0 {
		u |= types.TextureUsageTextureBinding
	}
	if usage&render.TextureUsageRenderAttachment != 0 {
		u |= types.TextureUsageRenderAttachment
	}
	return u
}
