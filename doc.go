// Package retroframe uploads emulator video frames into a GPU texture.
//
// # Overview
//
// Emulation cores (libretro and similar) hand the frontend a raw pixel
// buffer every frame. The buffer may use one of two encodings (RGB565 or
// XRGB8888), its resolution may change at any time, and its rows may be
// padded past the visible width. retroframe turns such buffers into a
// sampled 2D texture with as little work per frame as possible.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/retroframe"
//	    "github.com/gogpu/retroframe/backend/native"
//	)
//
//	dev, err := native.NewDeviceFromProvider(provider)
//	if err != nil {
//	    return err
//	}
//	up, err := retroframe.NewUploader(dev)
//	if err != nil {
//	    return err
//	}
//	defer up.Close()
//
//	// From the core's SET_PIXEL_FORMAT environment call:
//	up.SetPixelFormat(retroframe.PixelFormat(code))
//
//	// From the core's video refresh callback:
//	if err := up.OnNewFrame(retroframe.Frame{Data: buf, Width: w, Height: h, Pitch: pitch}); err != nil {
//	    // drop the frame, try again next tick
//	}
//
//	view := dev.View(up.Texture())
//
// # Upload Paths
//
// When Pitch equals Width times the bytes per pixel the frame is written
// with a single transfer. Otherwise each row is written separately so the
// padding is skipped. Texture storage is reallocated only when the frame
// dimensions change.
//
// # Backends
//
//   - backend/native: gogpu/wgpu HAL (Vulkan, Metal, DX12, GLES)
//   - backend/memory: host memory, for tests and offline tools
//
// # Logging
//
// retroframe is silent by default. Call SetLogger to enable logging.
package retroframe
