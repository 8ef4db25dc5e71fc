package retroframe

// Option configures an Uploader during creation.
//
// Example:
//
//	up, err := retroframe.NewUploader(dev,
//	    retroframe.WithPixelFormat(retroframe.PixelFormatXRGB8888),
//	    retroframe.WithObserver(stats),
//	)
type Option func(*uploaderOptions)

// uploaderOptions holds optional configuration for Uploader creation.
type uploaderOptions struct {
	format         PixelFormat
	observer       FrameObserver
	label          string
	scratchConvert bool
}

// defaultOptions returns the default uploader options.
func defaultOptions() uploaderOptions {
	return uploaderOptions{
		format: DefaultPixelFormat,
		label:  "retroframe_texture",
	}
}

// WithPixelFormat sets the initial pixel format. Equivalent to calling
// SetPixelFormat right after NewUploader.
func WithPixelFormat(f PixelFormat) Option {
	return func(o *uploaderOptions) {
		o.format = f
	}
}

// WithObserver registers the post-upload notification hook.
func WithObserver(obs FrameObserver) Option {
	return func(o *uploaderOptions) {
		o.observer = obs
	}
}

// WithLabel sets the debug label of the texture.
func WithLabel(label string) Option {
	return func(o *uploaderOptions) {
		o.label = label
	}
}

// WithScratchConversion makes the uploader convert XRGB8888 frames into an
// internal buffer instead of rewriting the caller's data. It costs one copy
// per frame and is meant for callers that reuse or share frame memory.
func WithScratchConversion() Option {
	return func(o *uploaderOptions) {
		o.scratchConvert = true
	}
}
