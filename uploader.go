package retroframe

import (
	"fmt"
	"log/slog"
)

// Uploader copies emulator frames into a single GPU texture.
//
// It owns one texture handle for its whole lifetime and reallocates the
// texture storage only when the frame dimensions (or the storage format)
// change. Frames whose rows are tightly packed are transferred in one call;
// padded frames are transferred row by row.
//
// Uploader is NOT safe for concurrent use. All calls must come from the
// render thread.
type Uploader struct {
	dev      Device
	texture  TextureHandle
	observer FrameObserver

	format PixelFormat
	params TransferParams

	// Storage state. lastWidth/lastHeight are zero until the first frame.
	lastWidth     int
	lastHeight    int
	storageFormat InternalFormat

	scratchConvert bool
	scratch        []byte

	closed bool
}

// NewUploader creates an Uploader and its texture handle on dev.
// Texture storage is not allocated until the first frame arrives.
func NewUploader(dev Device, opts ...Option) (*Uploader, error) {
	if dev == nil {
		return nil, ErrNilDevice
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	tex, err := dev.CreateTexture(o.label)
	if err != nil {
		return nil, fmt.Errorf("create texture: %w", err)
	}

	u := &Uploader{
		dev:            dev,
		texture:        tex,
		observer:       o.observer,
		scratchConvert: o.scratchConvert,
	}
	u.SetPixelFormat(o.format)
	return u, nil
}

// SetPixelFormat selects the encoding of subsequent frames. Unsupported
// codes fall back to DefaultPixelFormat; this never fails, so a core's
// format request cannot interrupt emulation.
func (u *Uploader) SetPixelFormat(f PixelFormat) {
	resolved := f.Resolve()
	if resolved != f {
		Logger().Debug("retroframe: unsupported pixel format, using default",
			slog.String("requested", f.String()),
			slog.String("using", resolved.String()))
	}
	u.format = resolved
	u.params = ParamsFor(resolved)
}

// PixelFormat returns the active pixel format.
func (u *Uploader) PixelFormat() PixelFormat {
	return u.format
}

// Params returns the transfer parameters of the active pixel format.
func (u *Uploader) Params() TransferParams {
	return u.params
}

// Size returns the dimensions of the current texture storage, or zeros if
// no frame has been uploaded.
func (u *Uploader) Size() (width, height int) {
	return u.lastWidth, u.lastHeight
}

// Texture returns the texture handle. The handle stays the same for the
// lifetime of the Uploader; its storage is replaced when frame dimensions
// change.
func (u *Uploader) Texture() TextureHandle {
	return u.texture
}

// Framebuffer always returns zero: frames are uploaded straight into a
// texture and no off-screen render target exists.
func (u *Uploader) Framebuffer() FramebufferHandle {
	return 0
}

// OnNewFrame converts and uploads one frame.
//
// For XRGB8888 frames the red and blue channels of f.Data are swapped in
// place over the full Pitch*Height extent, unless WithScratchConversion was
// given. On error the frame is dropped; the texture keeps its previous
// storage and contents may be partially updated only for ErrUpload.
func (u *Uploader) OnNewFrame(f Frame) error {
	if u.closed {
		return ErrClosed
	}

	// Snapshot params so the whole frame is handled under one format.
	params := u.params
	if err := f.validate(params); err != nil {
		return err
	}

	extent := f.Pitch * f.Height
	src := f.Data[:extent]
	if u.format == PixelFormatXRGB8888 {
		src = u.convert(src)
	}

	u.dev.SetSampling(u.texture, LinearClamp)

	reallocated := false
	if f.Width != u.lastWidth || f.Height != u.lastHeight || params.InternalFormat != u.storageFormat {
		if err := u.dev.AllocateStorage(u.texture, f.Width, f.Height, params); err != nil {
			Logger().Warn("retroframe: texture allocation failed",
				slog.Int("width", f.Width),
				slog.Int("height", f.Height),
				slog.String("error", err.Error()))
			return fmt.Errorf("%w: %dx%d %s: %w", ErrAllocation, f.Width, f.Height, params.InternalFormat, err)
		}
		reallocated = true
		Logger().Debug("retroframe: texture storage allocated",
			slog.Int("width", f.Width),
			slog.Int("height", f.Height),
			slog.String("format", params.InternalFormat.String()))
	}
	u.lastWidth, u.lastHeight = f.Width, f.Height
	u.storageFormat = params.InternalFormat

	path, err := u.write(src, f, params)
	if err != nil {
		Logger().Warn("retroframe: texture upload failed", slog.String("error", err.Error()))
		return err
	}

	if u.observer != nil {
		u.observer.FrameUploaded(FrameInfo{
			Width:       f.Width,
			Height:      f.Height,
			Pitch:       f.Pitch,
			Format:      u.format,
			Path:        path,
			Reallocated: reallocated,
		})
	}
	return nil
}

// convert swaps red and blue in src, or in a copy of it when scratch
// conversion is enabled, and returns the buffer to upload from.
func (u *Uploader) convert(src []byte) []byte {
	if !u.scratchConvert {
		SwapRedBlue(src)
		return src
	}
	if cap(u.scratch) < len(src) {
		u.scratch = make([]byte, len(src))
	}
	buf := u.scratch[:len(src)]
	copy(buf, src)
	SwapRedBlue(buf)
	return buf
}

// write transfers src into the texture, in one call when rows are packed
// and one call per row otherwise.
func (u *Uploader) write(src []byte, f Frame, params TransferParams) (UploadPath, error) {
	rowBytes := params.RowBytes(f.Width)

	if f.Pitch == rowBytes {
		err := u.dev.WriteRegion(u.texture, Region{
			Y:      0,
			Width:  f.Width,
			Rows:   f.Height,
			Stride: f.Pitch,
			Data:   src,
		}, params)
		if err != nil {
			return UploadContiguous, fmt.Errorf("%w: %w", ErrUpload, err)
		}
		return UploadContiguous, nil
	}

	for y := 0; y < f.Height; y++ {
		off := y * f.Pitch
		err := u.dev.WriteRegion(u.texture, Region{
			Y:     y,
			Width: f.Width,
			Rows:  1,
			Data:  src[off : off+rowBytes],
		}, params)
		if err != nil {
			return UploadPerRow, fmt.Errorf("%w: row %d: %w", ErrUpload, y, err)
		}
	}
	return UploadPerRow, nil
}

// Close destroys the texture. It is safe to call more than once.
func (u *Uploader) Close() {
	if u.closed {
		return
	}
	u.closed = true
	u.dev.DestroyTexture(u.texture)
	u.texture = 0
	u.lastWidth, u.lastHeight = 0, 0
	u.scratch = nil
}
