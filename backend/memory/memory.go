// Package memory provides a retroframe.Device that keeps texture storage in
// host memory.
//
// It is used by tests to inspect exactly what reached the texture and by
// offline tools that need the uploaded image without a GPU. Every call is
// counted, and allocation or write failures can be injected.
package memory

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/retroframe"
	"github.com/gogpu/retroframe/internal/pixconv"
)

// Device errors.
var (
	// ErrUnknownTexture is returned for handles the device did not create or
	// has already destroyed.
	ErrUnknownTexture = errors.New("memory: unknown texture")

	// ErrNoStorage is returned when writing to a texture without storage.
	ErrNoStorage = errors.New("memory: texture has no storage")

	// ErrOutOfBounds is returned when a region does not fit the texture.
	ErrOutOfBounds = errors.New("memory: region out of bounds")
)

// Texture is the host-side state of one texture.
type Texture struct {
	Label    string
	Width    int
	Height   int
	Params   retroframe.TransferParams
	Sampling retroframe.SamplerState

	// Pix holds Height tightly packed rows of Width*Params.BytesPerPixel bytes.
	Pix []byte
}

// Stride returns the number of bytes per row of Pix.
func (t *Texture) Stride() int {
	return t.Width * t.Params.BytesPerPixel
}

// Stats counts the calls a Device has received.
type Stats struct {
	Creates     int
	Allocations int
	Writes      int
	RowsWritten int
	Samplings   int
	Destroys    int
}

// Device is an in-memory retroframe.Device. The zero value is not usable;
// create one with New.
//
// Device is NOT safe for concurrent use.
type Device struct {
	textures map[retroframe.TextureHandle]*Texture
	next     retroframe.TextureHandle

	// Stats is updated on every call.
	Stats Stats

	// OnAllocate, if set, is called before each storage allocation. A
	// non-nil return makes the allocation fail with that error.
	OnAllocate func(width, height int, params retroframe.TransferParams) error

	// OnWrite, if set, is called before each region write. A non-nil return
	// makes the write fail with that error.
	OnWrite func(region retroframe.Region) error
}

var _ retroframe.Device = (*Device)(nil)

// New creates an empty Device.
func New() *Device {
	return &Device{
		textures: make(map[retroframe.TextureHandle]*Texture),
		next:     1,
	}
}

// CreateTexture implements retroframe.Device.
func (d *Device) CreateTexture(label string) (retroframe.TextureHandle, error) {
	h := d.next
	d.next++
	d.textures[h] = &Texture{Label: label}
	d.Stats.Creates++
	return h, nil
}

// AllocateStorage implements retroframe.Device.
func (d *Device) AllocateStorage(tex retroframe.TextureHandle, width, height int, params retroframe.TransferParams) error {
	t, ok := d.textures[tex]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownTexture, tex)
	}
	if d.OnAllocate != nil {
		if err := d.OnAllocate(width, height, params); err != nil {
			return err
		}
	}
	t.Width = width
	t.Height = height
	t.Params = params
	t.Pix = make([]byte, width*height*params.BytesPerPixel)
	d.Stats.Allocations++
	return nil
}

// SetSampling implements retroframe.Device.
func (d *Device) SetSampling(tex retroframe.TextureHandle, state retroframe.SamplerState) {
	if t, ok := d.textures[tex]; ok {
		t.Sampling = state
	}
	d.Stats.Samplings++
}

// WriteRegion implements retroframe.Device.
func (d *Device) WriteRegion(tex retroframe.TextureHandle, region retroframe.Region, params retroframe.TransferParams) error {
	t, ok := d.textures[tex]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownTexture, tex)
	}
	if t.Pix == nil {
		return ErrNoStorage
	}
	if d.OnWrite != nil {
		if err := d.OnWrite(region); err != nil {
			return err
		}
	}
	if params.BytesPerPixel != t.Params.BytesPerPixel {
		return fmt.Errorf("%w: %d bytes per pixel into %s storage",
			ErrOutOfBounds, params.BytesPerPixel, t.Params.InternalFormat)
	}
	if region.Y < 0 || region.Rows <= 0 || region.Y+region.Rows > t.Height || region.Width > t.Width {
		return fmt.Errorf("%w: rows %d+%d width %d in %dx%d",
			ErrOutOfBounds, region.Y, region.Rows, region.Width, t.Width, t.Height)
	}

	rowBytes := region.Width * params.BytesPerPixel
	stride := region.Stride
	if region.Rows == 1 || stride == 0 {
		stride = rowBytes
	}
	if need := (region.Rows-1)*stride + rowBytes; len(region.Data) < need {
		return fmt.Errorf("%w: %d source bytes, need %d", ErrOutOfBounds, len(region.Data), need)
	}

	dstStride := t.Stride()
	for y := 0; y < region.Rows; y++ {
		dst := t.Pix[(region.Y+y)*dstStride:]
		copy(dst[:rowBytes], region.Data[y*stride:y*stride+rowBytes])
	}
	d.Stats.Writes++
	d.Stats.RowsWritten += region.Rows
	return nil
}

// DestroyTexture implements retroframe.Device.
func (d *Device) DestroyTexture(tex retroframe.TextureHandle) {
	if _, ok := d.textures[tex]; !ok {
		return
	}
	delete(d.textures, tex)
	d.Stats.Destroys++
}

// Texture returns the state of tex, or nil if it does not exist.
func (d *Device) Texture(tex retroframe.TextureHandle) *Texture {
	return d.textures[tex]
}

// Snapshot renders the contents of tex as an opaque RGBA image. Returns nil
// if tex has no storage.
func (d *Device) Snapshot(tex retroframe.TextureHandle) *image.RGBA {
	t := d.textures[tex]
	if t == nil || t.Pix == nil {
		return nil
	}
	img := image.NewRGBA(image.Rect(0, 0, t.Width, t.Height))
	switch t.Params.InternalFormat {
	case retroframe.InternalFormatRGB565:
		pixconv.Expand565Rows(img.Pix, t.Pix, t.Width, t.Height, t.Stride())
	default:
		copy(img.Pix, t.Pix)
		// The X byte of XRGB8888 is undefined; show frames opaque.
		for i := 3; i < len(img.Pix); i += 4 {
			img.Pix[i] = 0xff
		}
	}
	return img
}
