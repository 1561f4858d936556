package wgpu

import (
	"testing"

	"github.com/gogpu/gputypes"
	types "github.com/gogpu/gputypes"

	"github.com/gogpu/sprite/render"
)

func TestNewRejectsNil(t *testing.T) {
	if _, err := New(nil, nil); err == nil {
		t.Error("New(nil, nil) succeeded, want error")
	}
}

// nilHalHandle exposes HAL accessors that yield no device, on top of the
// null device handle.
type nilHalHandle struct {
	render.NullDeviceHandle
}

func (nilHalHandle) HalDevice() any { return nil }
func (nilHalHandle) HalQueue() any  { return nil }

func TestNewFromHandle(t *testing.T) {
	if _, err := NewFromHandle(nil); err == nil {
		t.Error("NewFromHandle(nil) succeeded, want error")
	}
	// NullDeviceHandle carries no HAL device and must be rejected.
	if _, err := NewFromHandle(render.NullDeviceHandle{}); err == nil {
		t.Error("NewFromHandle(NullDeviceHandle) succeeded, want error")
	}
	if _, err := NewFromHandle(nilHalHandle{}); err == nil {
		t.Error("NewFromHandle with nil HAL device succeeded, want error")
	}
}

func TestConvertFormat(t *testing.T) {
	tests := []struct {
		in   gputypes.TextureFormat
		want types.TextureFormat
	}{
		{gputypes.TextureFormatR8Unorm, types.TextureFormatR8Unorm},
		{gputypes.TextureFormatRGBA8Unorm, types.TextureFormatRGBA8Unorm},
		{gputypes.TextureFormatRGBA8UnormSrgb, types.TextureFormatRGBA8UnormSrgb},
		{gputypes.TextureFormatBGRA8Unorm, types.TextureFormatBGRA8Unorm},
	}
	for _, tt := range tests {
		if got := convertFormat(tt.in); got != tt.want {
			t.Errorf("convertFormat(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestConvertUsage(t *testing.T) {
	u := convertUsage(render.TextureUsageCopyDst | render.TextureUsageTextureBinding)
	if u&types.TextureUsageCopyDst == 0 {
		t.Error("CopyDst flag not converted")
	}
	if u&types.TextureUsageTextureBinding == 0 {
		t.Error("TextureBinding flag not converted")
	}
	if u&types.TextureUsageCopySrc != 0 {
		t.Error("CopySrc flag set without being requested")
	}
}

func TestWriteTextureRejectsForeignTexture(t *testing.T) {
	b := &Backend{}
	var foreign render.Texture
	if err := b.WriteTexture(foreign, 0, 0, 1, 1, []byte{0}, 1); err == nil {
		t.Error("foreign texture accepted")
	}
}
