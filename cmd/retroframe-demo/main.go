// Command retroframe-demo feeds emulator-style frames through a
// retroframe.Uploader and writes the resulting texture as a PNG.
//
// Without -input it generates color bars in the requested pixel format.
// With -input it reads raw frames of pitch*height bytes from a file, as
// dumped from a libretro core's video refresh callback.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"log"
	"log/slog"
	"os"

	"golang.org/x/image/draw"

	"github.com/gogpu/retroframe"
	"github.com/gogpu/retroframe/backend/memory"
	"github.com/gogpu/retroframe/internal/pixconv"
)

// config holds the command-line settings.
type config struct {
	format string
	width  int
	height int
	pitch  int
	frames int
	input  string
	output string
	scale  int
}

func main() {
	var cfg config
	flag.StringVar(&cfg.format, "format", "rgb565", "pixel format: rgb565 or xrgb8888")
	flag.IntVar(&cfg.width, "width", 256, "frame width in pixels")
	flag.IntVar(&cfg.height, "height", 224, "frame height in pixels")
	flag.IntVar(&cfg.pitch, "pitch", 0, "bytes per row (0 = packed)")
	flag.IntVar(&cfg.frames, "frames", 60, "number of frames to upload")
	flag.StringVar(&cfg.input, "input", "", "raw frame file (default: generated color bars)")
	flag.StringVar(&cfg.output, "output", "frame.png", "output file")
	flag.IntVar(&cfg.scale, "scale", 2, "integer upscale factor for the output image")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	if *verbose {
		retroframe.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	if err := run(cfg); err != nil {
		log.Fatal(err)
	}
}

func run(cfg config) error {
	pf, err := parseFormat(cfg.format)
	if err != nil {
		return err
	}
	if cfg.pitch == 0 {
		cfg.pitch = cfg.width * retroframe.ParamsFor(pf).BytesPerPixel
	}

	var src frameSource
	if cfg.input != "" {
		f, err := os.Open(cfg.input)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		src = &rawSource{r: f, size: cfg.pitch * cfg.height}
	} else {
		src = &barsSource{format: pf, width: cfg.width, height: cfg.height, pitch: cfg.pitch}
	}

	dev := memory.New()
	var stats retroframe.FrameStats
	up, err := retroframe.NewUploader(dev,
		retroframe.WithPixelFormat(pf),
		retroframe.WithObserver(&stats),
	)
	if err != nil {
		return fmt.Errorf("create uploader: %w", err)
	}
	defer up.Close()

	for i := 0; i < cfg.frames; i++ {
		data, err := src.next(i)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read frame %d: %w", i, err)
		}
		frame := retroframe.Frame{Data: data, Width: cfg.width, Height: cfg.height, Pitch: cfg.pitch}
		if err := up.OnNewFrame(frame); err != nil {
			log.Printf("Dropped frame %d: %v", i, err)
		}
	}

	img := dev.Snapshot(up.Texture())
	if img == nil {
		return errors.New("no frame was uploaded")
	}
	if err := savePNG(cfg.output, upscale(img, cfg.scale)); err != nil {
		return fmt.Errorf("save: %w", err)
	}

	log.Printf("Uploaded %d frames (%d reallocations, %d per-row, %d device writes), saved %s",
		stats.Frames, stats.Reallocations, stats.PerRowUploads, dev.Stats.Writes, cfg.output)
	return nil
}

func parseFormat(s string) (retroframe.PixelFormat, error) {
	switch s {
	case "rgb565":
		return retroframe.PixelFormatRGB565, nil
	case "xrgb8888":
		return retroframe.PixelFormatXRGB8888, nil
	default:
		return 0, fmt.Errorf("unknown pixel format %q", s)
	}
}

type frameSource interface {
	next(i int) ([]byte, error)
}

// rawSource reads consecutive frames of size bytes.
type rawSource struct {
	r    io.Reader
	size int
	buf  []byte
}

func (s *rawSource) next(int) ([]byte, error) {
	if s.buf == nil {
		s.buf = make([]byte, s.size)
	}
	if _, err := io.ReadFull(s.r, s.buf); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, io.EOF
		}
		return nil, err
	}
	return s.buf, nil
}

// barsSource generates scrolling vertical color bars.
type barsSource struct {
	format retroframe.PixelFormat
	width  int
	height int
	pitch  int
	buf    []byte
}

var bars = [][3]byte{
	{0xFF, 0xFF, 0xFF},
	{0xFF, 0xFF, 0x00},
	{0x00, 0xFF, 0xFF},
	{0x00, 0xFF, 0x00},
	{0xFF, 0x00, 0xFF},
	{0xFF, 0x00, 0x00},
	{0x00, 0x00, 0xFF},
}

func (s *barsSource) next(i int) ([]byte, error) {
	// A fresh buffer every frame: XRGB8888 frames are converted in place.
	if s.buf == nil || s.format == retroframe.PixelFormatXRGB8888 {
		s.buf = make([]byte, s.pitch*s.height)
	}
	for y := 0; y < s.height; y++ {
		row := s.buf[y*s.pitch:]
		for x := 0; x < s.width; x++ {
			c := bars[((x+i)*len(bars)/s.width)%len(bars)]
			if s.format == retroframe.PixelFormatXRGB8888 {
				// Little-endian XRGB: B, G, R, X in memory.
				row[4*x], row[4*x+1], row[4*x+2], row[4*x+3] = c[2], c[1], c[0], 0
			} else {
				pixconv.Pack565(row[2*x:], c[0], c[1], c[2])
			}
		}
	}
	return s.buf, nil
}

func upscale(img *image.RGBA, factor int) image.Image {
	if factor <= 1 {
		return img
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
