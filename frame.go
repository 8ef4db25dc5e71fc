package retroframe

import (
	"fmt"
	"math"
)

// Frame is one video frame delivered by an emulation core.
//
// Data is owned by the caller. OnNewFrame may modify it in place when the
// active format needs channel conversion, and keeps no reference to it
// after returning.
type Frame struct {
	Data   []byte
	Width  int
	Height int

	// Pitch is the number of bytes from the start of one row to the next.
	Pitch int
}

// validate checks f against the upload contract for params.
func (f Frame) validate(params TransferParams) error {
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalidFrame, f.Width, f.Height)
	}
	if f.Width > math.MaxInt/params.BytesPerPixel {
		return fmt.Errorf("%w: width %d overflows row size", ErrInvalidFrame, f.Width)
	}
	if row := params.RowBytes(f.Width); f.Pitch < row {
		return fmt.Errorf("%w: pitch %d shorter than row of %d bytes", ErrInvalidFrame, f.Pitch, row)
	}
	if f.Pitch > math.MaxInt/f.Height {
		return fmt.Errorf("%w: pitch %d overflows frame size", ErrInvalidFrame, f.Pitch)
	}
	if need := f.Pitch * f.Height; len(f.Data) < need {
		return fmt.Errorf("%w: buffer holds %d bytes, need %d", ErrInvalidFrame, len(f.Data), need)
	}
	return nil
}

// UploadPath identifies how a frame was transferred to the texture.
type UploadPath uint8

const (
	// UploadContiguous is a single transfer of the whole frame.
	UploadContiguous UploadPath = iota

	// UploadPerRow is one transfer per row, skipping row padding.
	UploadPerRow
)

// String returns a human-readable name for the path.
func (p UploadPath) String() string {
	switch p {
	case UploadContiguous:
		return "contiguous"
	case UploadPerRow:
		return "per-row"
	default:
		return fmt.Sprintf("Unknown(%d)", p)
	}
}

// FrameInfo describes a completed upload.
type FrameInfo struct {
	Width       int
	Height      int
	Pitch       int
	Format      PixelFormat
	Path        UploadPath
	Reallocated bool
}

// FrameObserver is notified after every successful upload.
// The render pipeline uses it for per-frame bookkeeping such as aspect
// ratio tracking or scheduling a redraw.
type FrameObserver interface {
	FrameUploaded(info FrameInfo)
}

// FrameObserverFunc adapts a function to FrameObserver.
type FrameObserverFunc func(info FrameInfo)

// FrameUploaded calls fn(info).
func (fn FrameObserverFunc) FrameUploaded(info FrameInfo) { fn(info) }
