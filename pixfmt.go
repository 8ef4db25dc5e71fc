package retroframe

import "fmt"

// PixelFormat is the pixel encoding of frames produced by an emulation core.
// Values match the libretro RETRO_PIXEL_FORMAT_* codes so a core's
// environment callback argument can be passed through unchanged.
type PixelFormat uint32

const (
	// PixelFormat0RGB1555 is the legacy libretro default. It is recognised
	// but not supported, and resolves to PixelFormatRGB565.
	PixelFormat0RGB1555 PixelFormat = 0

	// PixelFormatXRGB8888 is 32-bit XRGB stored as little-endian words,
	// which puts blue in the first byte of each pixel.
	PixelFormatXRGB8888 PixelFormat = 1

	// PixelFormatRGB565 is 16-bit packed 5-6-5. It is the default.
	PixelFormatRGB565 PixelFormat = 2
)

// DefaultPixelFormat is used for any code that is not explicitly supported.
const DefaultPixelFormat = PixelFormatRGB565

// String returns a human-readable name for the format.
func (f PixelFormat) String() string {
	switch f {
	case PixelFormat0RGB1555:
		return "0RGB1555"
	case PixelFormatXRGB8888:
		return "XRGB8888"
	case PixelFormatRGB565:
		return "RGB565"
	default:
		return fmt.Sprintf("Unknown(%d)", uint32(f))
	}
}

// Resolve returns the format that will actually be used for f.
// Unsupported codes fall back to DefaultPixelFormat.
func (f PixelFormat) Resolve() PixelFormat {
	switch f {
	case PixelFormatXRGB8888:
		return PixelFormatXRGB8888
	default:
		return DefaultPixelFormat
	}
}

// InternalFormat is the storage format of the GPU texture.
type InternalFormat uint8

const (
	// InternalFormatRGB565 stores 16-bit packed 5-6-5 texels.
	InternalFormatRGB565 InternalFormat = iota

	// InternalFormatRGBA8 stores 8 bits per channel, RGBA order.
	InternalFormatRGBA8
)

// String returns a human-readable name for the format.
func (f InternalFormat) String() string {
	switch f {
	case InternalFormatRGB565:
		return "RGB565"
	case InternalFormatRGBA8:
		return "RGBA8"
	default:
		return fmt.Sprintf("Unknown(%d)", f)
	}
}

// ChannelLayout is the channel order of the source data as seen by the GPU.
type ChannelLayout uint8

const (
	// ChannelLayoutRGB is a 3-channel layout.
	ChannelLayoutRGB ChannelLayout = iota

	// ChannelLayoutRGBA is a 4-channel layout.
	ChannelLayoutRGBA
)

// String returns a human-readable name for the layout.
func (l ChannelLayout) String() string {
	switch l {
	case ChannelLayoutRGB:
		return "RGB"
	case ChannelLayoutRGBA:
		return "RGBA"
	default:
		return fmt.Sprintf("Unknown(%d)", l)
	}
}

// TransferType is the component encoding of the source data.
type TransferType uint8

const (
	// TransferUnsignedShort565 is one 16-bit word per pixel, packed 5-6-5.
	TransferUnsignedShort565 TransferType = iota

	// TransferUnsignedByte is one unsigned byte per channel.
	TransferUnsignedByte
)

// String returns a human-readable name for the transfer type.
func (t TransferType) String() string {
	switch t {
	case TransferUnsignedShort565:
		return "UnsignedShort565"
	case TransferUnsignedByte:
		return "UnsignedByte"
	default:
		return fmt.Sprintf("Unknown(%d)", t)
	}
}

// TransferParams describes how frame bytes are laid out and how the GPU
// should interpret them. It is derived from a PixelFormat by ParamsFor and
// always replaced as a whole.
type TransferParams struct {
	// BytesPerPixel is the size of one source pixel.
	BytesPerPixel int

	// InternalFormat is the texture storage format.
	InternalFormat InternalFormat

	// ExternalFormat is the channel layout of the source data.
	ExternalFormat ChannelLayout

	// TransferType is the component encoding of the source data.
	TransferType TransferType

	// UnpackAlignment is the row alignment the source rows are read with.
	UnpackAlignment int
}

// RowBytes returns the number of bytes in an unpadded row of width pixels.
func (p TransferParams) RowBytes(width int) int {
	return width * p.BytesPerPixel
}

// ParamsFor returns the transfer parameters for a pixel format.
// Unsupported codes yield the parameters of DefaultPixelFormat.
func ParamsFor(f PixelFormat) TransferParams {
	switch f.Resolve() {
	case PixelFormatXRGB8888:
		return TransferParams{
			BytesPerPixel:   4,
			InternalFormat:  InternalFormatRGBA8,
			ExternalFormat:  ChannelLayoutRGBA,
			TransferType:    TransferUnsignedByte,
			UnpackAlignment: 4,
		}
	default:
		return TransferParams{
			BytesPerPixel:   2,
			InternalFormat:  InternalFormatRGB565,
			ExternalFormat:  ChannelLayoutRGB,
			TransferType:    TransferUnsignedShort565,
			UnpackAlignment: 2,
		}
	}
}
