//go:build !nogpu

// Package native provides a retroframe.Device backed by gogpu/wgpu/hal.
//
// Textures are created as 2D RGBA8Unorm textures with TextureBinding and
// CopyDst usage, together with a view and a sampler for binding in the
// host's render pass. WebGPU has no packed 16-bit color format, so RGB565
// frames are expanded to RGBA8 on the CPU while being written.
package native

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/retroframe"
	"github.com/gogpu/retroframe/internal/pixconv"
)

// textureFormat is the storage format of every texture on this device.
const textureFormat = gputypes.TextureFormatRGBA8Unorm

// texture is the HAL state behind one retroframe.TextureHandle.
type texture struct {
	label string

	tex  hal.Texture
	view hal.TextureView

	sampler    hal.Sampler
	sampling   retroframe.SamplerState
	hasSampler bool

	// samplerErr is the last sampler creation failure, reported by the
	// next WriteRegion.
	samplerErr error

	width, height uint32
}

// Device implements retroframe.Device on a HAL device and queue.
//
// Thread Safety: the handle table is protected by a mutex so the render
// pipeline may look up views from another goroutine. Uploads themselves
// must still be serialized by the caller.
type Device struct {
	mu     sync.Mutex
	device hal.Device
	queue  hal.Queue

	textures map[retroframe.TextureHandle]*texture
	next     retroframe.TextureHandle

	// staging holds RGBA8 rows expanded from RGB565 input.
	staging []byte
}

var _ retroframe.Device = (*Device)(nil)

// NewDevice wraps a HAL device and queue. The caller keeps ownership of
// both; Close releases only the resources created through this Device.
func NewDevice(device hal.Device, queue hal.Queue) (*Device, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	return &Device{
		device:   device,
		queue:    queue,
		textures: make(map[retroframe.TextureHandle]*texture),
		next:     1,
	}, nil
}

// CreateTexture implements retroframe.Device. Storage is created later by
// AllocateStorage.
func (d *Device) CreateTexture(label string) (retroframe.TextureHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	h := d.next
	d.next++
	d.textures[h] = &texture{label: label}
	return h, nil
}

// AllocateStorage implements retroframe.Device. The previous HAL texture
// and view are destroyed only after the new ones were created, so a failed
// allocation leaves the old storage bound.
func (d *Device) AllocateStorage(h retroframe.TextureHandle, width, height int, _ retroframe.TransferParams) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	t, ok := d.textures[h]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownTexture, h)
	}

	w, ht := uint32(width), uint32(height) //nolint:gosec // validated positive above
	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         t.label,
		Size:          hal.Extent3D{Width: w, Height: ht, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        textureFormat,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create texture %dx%d: %w", width, height, err)
	}

	view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         t.label + "_view",
		Format:        textureFormat,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		d.device.DestroyTexture(tex)
		return fmt.Errorf("create texture view: %w", err)
	}

	d.releaseStorage(t)
	t.tex = tex
	t.view = view
	t.width = w
	t.height = ht

	retroframe.Logger().Debug("native: texture storage created",
		slog.String("label", t.label),
		slog.Int("width", width),
		slog.Int("height", height))
	return nil
}

// SetSampling implements retroframe.Device. HAL samplers are immutable, so
// a new sampler is created only when state differs from the current one.
// A creation failure is returned by the next WriteRegion on h.
func (d *Device) SetSampling(h retroframe.TextureHandle, state retroframe.SamplerState) {
	d.mu.Lock()
	defer d.mu.Unlock()

	t, ok := d.textures[h]
	if !ok || (t.hasSampler && t.sampling == state) {
		return
	}

	sampler, err := d.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        t.label + "_sampler",
		AddressModeU: addressMode(state.WrapS),
		AddressModeV: addressMode(state.WrapT),
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    filterMode(state.MagFilter),
		MinFilter:    filterMode(state.MinFilter),
		MipmapFilter: gputypes.FilterModeNearest,
	})
	if err != nil {
		retroframe.Logger().Warn("native: create sampler failed",
			slog.String("label", t.label),
			slog.String("error", err.Error()))
		t.samplerErr = fmt.Errorf("create sampler: %w", err)
		return
	}
	if t.sampler != nil {
		d.device.DestroySampler(t.sampler)
	}
	t.sampler = sampler
	t.sampling = state
	t.hasSampler = true
	t.samplerErr = nil
}

// WriteRegion implements retroframe.Device.
func (d *Device) WriteRegion(h retroframe.TextureHandle, region retroframe.Region, params retroframe.TransferParams) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	t, ok := d.textures[h]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownTexture, h)
	}
	if t.tex == nil {
		return ErrNoStorage
	}
	if t.samplerErr != nil {
		return t.samplerErr
	}
	if region.Y < 0 || region.Rows <= 0 || region.Width <= 0 ||
		uint32(region.Y+region.Rows) > t.height || uint32(region.Width) > t.width { //nolint:gosec // checked non-negative
		return fmt.Errorf("%w: rows %d+%d width %d in %dx%d",
			ErrInvalidDimensions, region.Y, region.Rows, region.Width, t.width, t.height)
	}

	rowBytes := params.RowBytes(region.Width)
	stride := region.Stride
	if region.Rows == 1 || stride == 0 {
		stride = rowBytes
	}
	if need := (region.Rows-1)*stride + rowBytes; len(region.Data) < need {
		return fmt.Errorf("%w: %d source bytes, need %d", ErrShortData, len(region.Data), need)
	}

	data := region.Data
	bytesPerRow := stride
	if params.TransferType == retroframe.TransferUnsignedShort565 {
		size := region.Width * 4 * region.Rows
		if cap(d.staging) < size {
			d.staging = make([]byte, size)
		}
		data = d.staging[:size]
		pixconv.Expand565Rows(data, region.Data, region.Width, region.Rows, stride)
		bytesPerRow = region.Width * 4
	} else {
		data = data[:(region.Rows-1)*stride+rowBytes]
	}

	dst := &hal.ImageCopyTexture{
		Texture:  t.tex,
		MipLevel: 0,
	}
	dst.Origin.Y = uint32(region.Y) //nolint:gosec // checked non-negative

	err := d.queue.WriteTexture(
		dst,
		data,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(bytesPerRow), //nolint:gosec // row sizes fit uint32
			RowsPerImage: uint32(region.Rows), //nolint:gosec // checked positive
		},
		&hal.Extent3D{
			Width:              uint32(region.Width), //nolint:gosec // checked positive
			Height:             uint32(region.Rows),  //nolint:gosec // checked positive
			DepthOrArrayLayers: 1,
		},
	)
	if err != nil {
		return fmt.Errorf("write texture rows %d+%d: %w", region.Y, region.Rows, err)
	}
	return nil
}

// DestroyTexture implements retroframe.Device.
func (d *Device) DestroyTexture(h retroframe.TextureHandle) {
	d.mu.Lock()
	defer d.mu.Unlock()

	t, ok := d.textures[h]
	if !ok {
		return
	}
	delete(d.textures, h)
	d.releaseStorage(t)
	if t.sampler != nil {
		d.device.DestroySampler(t.sampler)
		t.sampler = nil
	}
}

// Texture returns the HAL texture currently backing h, or nil. The value
// changes when the uploader reallocates storage.
func (d *Device) Texture(h retroframe.TextureHandle) hal.Texture {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.textures[h]; ok {
		return t.tex
	}
	return nil
}

// View returns the texture view of h for binding, or nil.
func (d *Device) View(h retroframe.TextureHandle) hal.TextureView {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.textures[h]; ok {
		return t.view
	}
	return nil
}

// Sampler returns the sampler of h for binding, or nil.
func (d *Device) Sampler(h retroframe.TextureHandle) hal.Sampler {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.textures[h]; ok {
		return t.sampler
	}
	return nil
}

// Size returns the storage dimensions of h.
func (d *Device) Size(h retroframe.TextureHandle) (width, height uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.textures[h]; ok {
		return t.width, t.height
	}
	return 0, 0
}

// Close destroys every texture created through d. The HAL device and queue
// are left to their owner.
func (d *Device) Close() {
	d.mu.Lock()
	handles := make([]retroframe.TextureHandle, 0, len(d.textures))
	for h := range d.textures {
		handles = append(handles, h)
	}
	d.mu.Unlock()

	for _, h := range handles {
		d.DestroyTexture(h)
	}
	d.staging = nil
}

// releaseStorage destroys the view and texture of t. Caller holds d.mu.
func (d *Device) releaseStorage(t *texture) {
	if t.view != nil {
		d.device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.tex != nil {
		d.device.DestroyTexture(t.tex)
		t.tex = nil
	}
	t.width = 0
	t.height = 0
}

func addressMode(m retroframe.WrapMode) gputypes.AddressMode {
	if m == retroframe.WrapRepeat {
		return gputypes.AddressModeRepeat
	}
	return gputypes.AddressModeClampToEdge
}

func filterMode(m retroframe.FilterMode) gputypes.FilterMode {
	if m == retroframe.FilterLinear {
		return gputypes.FilterModeLinear
	}
	return gputypes.FilterModeNearest
}
