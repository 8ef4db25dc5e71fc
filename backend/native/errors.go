//go:build !nogpu

package native

import "errors"

// Package errors for the HAL device.
var (
	// ErrNilDevice is returned when the HAL device or queue is nil.
	ErrNilDevice = errors.New("native: HAL device or queue is nil")

	// ErrProviderNotHAL is returned when a device provider does not expose
	// HAL types.
	ErrProviderNotHAL = errors.New("native: provider does not expose HAL device")

	// ErrUnknownTexture is returned for handles this device did not create
	// or has already destroyed.
	ErrUnknownTexture = errors.New("native: unknown texture")

	// ErrNoStorage is returned when writing to a texture before storage
	// was allocated.
	ErrNoStorage = errors.New("native: texture has no storage")

	// ErrInvalidDimensions is returned when a size or region is invalid.
	ErrInvalidDimensions = errors.New("native: invalid dimensions")

	// ErrShortData is returned when a region's data is smaller than its
	// rows require.
	ErrShortData = errors.New("native: region data too short")
)
