package retroframe

import "errors"

// Upload errors. Returned errors wrap one of these; test with errors.Is.
var (
	// ErrNilDevice is returned by NewUploader when no device is given.
	ErrNilDevice = errors.New("retroframe: device is nil")

	// ErrInvalidFrame is returned when frame geometry violates the upload
	// contract: zero dimensions, pitch shorter than a row, or a buffer
	// shorter than pitch*height.
	ErrInvalidFrame = errors.New("retroframe: invalid frame")

	// ErrAllocation is returned when texture storage could not be allocated.
	// The frame is dropped and the previous storage is kept.
	ErrAllocation = errors.New("retroframe: texture allocation failed")

	// ErrUpload is returned when the device rejected a pixel transfer.
	ErrUpload = errors.New("retroframe: texture upload failed")

	// ErrClosed is returned when the uploader has been closed.
	ErrClosed = errors.New("retroframe: uploader is closed")
)
