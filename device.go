package retroframe

// TextureHandle is an opaque identifier for a texture owned by a Device.
// The zero value means no texture.
type TextureHandle uintptr

// FramebufferHandle is an opaque identifier for an off-screen render target.
// The zero value means no framebuffer.
type FramebufferHandle uintptr

// FilterMode selects texel filtering.
type FilterMode uint8

const (
	// FilterNearest samples the closest texel.
	FilterNearest FilterMode = iota

	// FilterLinear interpolates between neighbouring texels.
	FilterLinear
)

// WrapMode selects how coordinates outside [0, 1] are resolved.
type WrapMode uint8

const (
	// WrapClampToEdge clamps to the edge texel.
	WrapClampToEdge WrapMode = iota

	// WrapRepeat tiles the texture.
	WrapRepeat
)

// SamplerState holds the sampling parameters of a texture.
type SamplerState struct {
	MinFilter FilterMode
	MagFilter FilterMode
	WrapS     WrapMode
	WrapT     WrapMode
}

// LinearClamp is the sampling state applied to every uploaded frame.
var LinearClamp = SamplerState{
	MinFilter: FilterLinear,
	MagFilter: FilterLinear,
	WrapS:     WrapClampToEdge,
	WrapT:     WrapClampToEdge,
}

// Region is a block of rows written into a texture.
// Data holds Rows rows of Width pixels, each starting Stride bytes after the
// previous one. For a single-row region Stride may be zero.
type Region struct {
	// Y is the first destination row.
	Y int

	// Width is the row width in pixels.
	Width int

	// Rows is the number of rows.
	Rows int

	// Stride is the distance in bytes between source rows.
	Stride int

	// Data is the source pixel data.
	Data []byte
}

// Device is the single-2D-texture GPU surface an Uploader drives.
//
// Implementations are provided by backend/native (gogpu/wgpu HAL) and
// backend/memory (host memory, for tests and tooling). A Device is used from
// a single goroutine by the Uploader; implementations need not add locking
// for that use.
type Device interface {
	// CreateTexture creates a texture handle without storage.
	CreateTexture(label string) (TextureHandle, error)

	// AllocateStorage (re)allocates storage for tex. Previous contents are
	// discarded. Returns an error if the GPU could not provide the memory.
	AllocateStorage(tex TextureHandle, width, height int, params TransferParams) error

	// SetSampling applies sampling state to tex.
	SetSampling(tex TextureHandle, state SamplerState)

	// WriteRegion copies region into the storage of tex using params to
	// interpret the source bytes.
	WriteRegion(tex TextureHandle, region Region, params TransferParams) error

	// DestroyTexture releases tex and its storage.
	DestroyTexture(tex TextureHandle)
}
