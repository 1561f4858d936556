// Package render defines the GPU-facing contracts for the atlas
// pipeline. A Canvas produces frames of pixel writes and draw batches;
// this package maps them onto texture objects supplied by a backend.
//
// The device is always received from the host application via
// DeviceHandle, never created here. backend/wgpu provides the
// TextureFactory and TextureWriter implementations over gogpu/wgpu.
package render
