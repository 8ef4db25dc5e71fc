//go:build !nogpu

package native

import (
	"errors"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/retroframe"
)

// openNoopHAL opens the first adapter of the noop backend. The device and
// instance are released when t finishes.
func openNoopHAL(t *testing.T) (hal.Device, hal.Queue) {
	t.Helper()
	instance, err := noop.API{}.CreateInstance(nil)
	if err != nil {
		t.Fatalf("noop instance: %v", err)
	}
	t.Cleanup(instance.Destroy)

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		t.Fatal("noop backend reported no adapters")
	}
	opened, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		t.Fatalf("noop adapter open: %v", err)
	}
	t.Cleanup(opened.Device.Destroy)
	return opened.Device, opened.Queue
}

// countingDevice wraps a hal.Device and counts texture creation.
// Setting failCreate or failSampler makes the matching call fail.
type countingDevice struct {
	hal.Device
	created     int
	destroyed   int
	failCreate  error
	failSampler error
}

func (d *countingDevice) CreateSampler(desc *hal.SamplerDescriptor) (hal.Sampler, error) {
	if d.failSampler != nil {
		return nil, d.failSampler
	}
	return d.Device.CreateSampler(desc)
}

func (d *countingDevice) CreateTexture(desc *hal.TextureDescriptor) (hal.Texture, error) {
	if d.failCreate != nil {
		return nil, d.failCreate
	}
	d.created++
	return d.Device.CreateTexture(desc)
}

func (d *countingDevice) DestroyTexture(tex hal.Texture) {
	d.destroyed++
	d.Device.DestroyTexture(tex)
}

// failingQueue wraps a hal.Queue whose texture writes fail with err.
type failingQueue struct {
	hal.Queue
	err error
}

func (q *failingQueue) WriteTexture(*hal.ImageCopyTexture, []byte, *hal.ImageDataLayout, *hal.Extent3D) error {
	return q.err
}

func newTestDevice(t *testing.T) (*Device, *countingDevice) {
	t.Helper()
	device, queue := openNoopHAL(t)
	return newTestDeviceWithQueue(t, device, queue)
}

func newTestDeviceWithQueue(t *testing.T, device hal.Device, queue hal.Queue) (*Device, *countingDevice) {
	t.Helper()
	cd := &countingDevice{Device: device}
	dev, err := NewDevice(cd, queue)
	if err != nil {
		t.Fatalf("NewDevice failed: %v", err)
	}
	t.Cleanup(dev.Close)
	return dev, cd
}

func TestNewDeviceNil(t *testing.T) {
	if _, err := NewDevice(nil, nil); !errors.Is(err, ErrNilDevice) {
		t.Errorf("NewDevice(nil, nil) error = %v, want ErrNilDevice", err)
	}
}

func TestDeviceAllocateStorage(t *testing.T) {
	dev, cd := newTestDevice(t)

	h, err := dev.CreateTexture("test")
	if err != nil {
		t.Fatalf("CreateTexture failed: %v", err)
	}
	if dev.Texture(h) != nil {
		t.Error("expected nil HAL texture before AllocateStorage")
	}

	params := retroframe.ParamsFor(retroframe.PixelFormatXRGB8888)
	if err := dev.AllocateStorage(h, 256, 224, params); err != nil {
		t.Fatalf("AllocateStorage failed: %v", err)
	}
	if dev.Texture(h) == nil {
		t.Error("expected non-nil HAL texture after AllocateStorage")
	}
	if dev.View(h) == nil {
		t.Error("expected non-nil view after AllocateStorage")
	}
	if w, ht := dev.Size(h); w != 256 || ht != 224 {
		t.Errorf("Size() = (%d, %d), want (256, 224)", w, ht)
	}

	// Resize replaces the old texture.
	if err := dev.AllocateStorage(h, 320, 240, params); err != nil {
		t.Fatalf("AllocateStorage resize failed: %v", err)
	}
	if cd.created != 2 || cd.destroyed != 1 {
		t.Errorf("created/destroyed = %d/%d, want 2/1", cd.created, cd.destroyed)
	}
}

func TestDeviceAllocateStorageFailureKeepsOld(t *testing.T) {
	dev, cd := newTestDevice(t)
	h, _ := dev.CreateTexture("test")
	params := retroframe.ParamsFor(retroframe.PixelFormatRGB565)

	if err := dev.AllocateStorage(h, 160, 144, params); err != nil {
		t.Fatalf("AllocateStorage failed: %v", err)
	}
	old := dev.Texture(h)

	oom := errors.New("out of memory")
	cd.failCreate = oom
	err := dev.AllocateStorage(h, 320, 288, params)
	if !errors.Is(err, oom) {
		t.Fatalf("AllocateStorage error = %v, want wrapped oom", err)
	}
	if dev.Texture(h) != old {
		t.Error("failed allocation replaced the existing texture")
	}
	if w, ht := dev.Size(h); w != 160 || ht != 144 {
		t.Errorf("Size() = (%d, %d), want (160, 144)", w, ht)
	}
}

func TestDeviceAllocateStorageInvalid(t *testing.T) {
	dev, _ := newTestDevice(t)
	h, _ := dev.CreateTexture("test")
	params := retroframe.ParamsFor(retroframe.PixelFormatRGB565)

	if err := dev.AllocateStorage(h, 0, 10, params); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("AllocateStorage(0, 10) error = %v, want ErrInvalidDimensions", err)
	}
	if err := dev.AllocateStorage(99, 10, 10, params); !errors.Is(err, ErrUnknownTexture) {
		t.Errorf("AllocateStorage(unknown) error = %v, want ErrUnknownTexture", err)
	}
}

func TestDeviceSetSampling(t *testing.T) {
	dev, _ := newTestDevice(t)
	h, _ := dev.CreateTexture("test")

	dev.SetSampling(h, retroframe.LinearClamp)
	first := dev.Sampler(h)
	if first == nil {
		t.Fatal("expected non-nil sampler")
	}

	// Same state keeps the sampler.
	dev.SetSampling(h, retroframe.LinearClamp)
	if dev.Sampler(h) != first {
		t.Error("sampler recreated for identical state")
	}

	nearest := retroframe.SamplerState{
		MinFilter: retroframe.FilterNearest,
		MagFilter: retroframe.FilterNearest,
	}
	dev.SetSampling(h, nearest)
	if dev.Sampler(h) == nil {
		t.Error("expected sampler after state change")
	}
}

func TestDeviceWriteRegion(t *testing.T) {
	tests := []struct {
		name   string
		format retroframe.PixelFormat
		region retroframe.Region
	}{
		{
			name:   "xrgb contiguous",
			format: retroframe.PixelFormatXRGB8888,
			region: retroframe.Region{Width: 4, Rows: 4, Stride: 16, Data: make([]byte, 64)},
		},
		{
			name:   "xrgb single row",
			format: retroframe.PixelFormatXRGB8888,
			region: retroframe.Region{Y: 3, Width: 4, Rows: 1, Data: make([]byte, 16)},
		},
		{
			name:   "rgb565 contiguous",
			format: retroframe.PixelFormatRGB565,
			region: retroframe.Region{Width: 4, Rows: 4, Stride: 8, Data: make([]byte, 32)},
		},
		{
			name:   "rgb565 single row",
			format: retroframe.PixelFormatRGB565,
			region: retroframe.Region{Y: 2, Width: 4, Rows: 1, Data: make([]byte, 8)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev, _ := newTestDevice(t)
			h, _ := dev.CreateTexture("test")
			params := retroframe.ParamsFor(tt.format)
			if err := dev.AllocateStorage(h, 4, 4, params); err != nil {
				t.Fatalf("AllocateStorage failed: %v", err)
			}
			if err := dev.WriteRegion(h, tt.region, params); err != nil {
				t.Errorf("WriteRegion failed: %v", err)
			}
		})
	}
}

func TestDeviceWriteRegionErrors(t *testing.T) {
	dev, _ := newTestDevice(t)
	h, _ := dev.CreateTexture("test")
	params := retroframe.ParamsFor(retroframe.PixelFormatXRGB8888)

	row := retroframe.Region{Width: 4, Rows: 1, Data: make([]byte, 16)}
	if err := dev.WriteRegion(h, row, params); !errors.Is(err, ErrNoStorage) {
		t.Errorf("WriteRegion before storage error = %v, want ErrNoStorage", err)
	}

	if err := dev.AllocateStorage(h, 4, 4, params); err != nil {
		t.Fatalf("AllocateStorage failed: %v", err)
	}

	outside := retroframe.Region{Y: 4, Width: 4, Rows: 1, Data: make([]byte, 16)}
	if err := dev.WriteRegion(h, outside, params); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("WriteRegion outside error = %v, want ErrInvalidDimensions", err)
	}

	short := retroframe.Region{Width: 4, Rows: 2, Stride: 16, Data: make([]byte, 20)}
	if err := dev.WriteRegion(h, short, params); !errors.Is(err, ErrShortData) {
		t.Errorf("WriteRegion short error = %v, want ErrShortData", err)
	}
}

func TestDeviceWriteRegionQueueFailure(t *testing.T) {
	device, queue := openNoopHAL(t)
	lost := errors.New("device lost")
	dev, _ := newTestDeviceWithQueue(t, device, &failingQueue{Queue: queue, err: lost})

	h, _ := dev.CreateTexture("test")
	params := retroframe.ParamsFor(retroframe.PixelFormatRGB565)
	if err := dev.AllocateStorage(h, 4, 4, params); err != nil {
		t.Fatalf("AllocateStorage failed: %v", err)
	}
	region := retroframe.Region{Width: 4, Rows: 4, Stride: 8, Data: make([]byte, 32)}
	if err := dev.WriteRegion(h, region, params); !errors.Is(err, lost) {
		t.Errorf("WriteRegion error = %v, want wrapped %v", err, lost)
	}
}

func TestUploaderOnFailingQueue(t *testing.T) {
	device, queue := openNoopHAL(t)
	lost := errors.New("device lost")
	dev, _ := newTestDeviceWithQueue(t, device, &failingQueue{Queue: queue, err: lost})

	var notified int
	up, err := retroframe.NewUploader(dev, retroframe.WithObserver(retroframe.FrameObserverFunc(func(retroframe.FrameInfo) {
		notified++
	})))
	if err != nil {
		t.Fatalf("NewUploader failed: %v", err)
	}
	defer up.Close()

	frame := retroframe.Frame{Data: make([]byte, 32), Width: 4, Height: 4, Pitch: 8}
	err = up.OnNewFrame(frame)
	if !errors.Is(err, retroframe.ErrUpload) || !errors.Is(err, lost) {
		t.Errorf("OnNewFrame error = %v, want ErrUpload wrapping %v", err, lost)
	}
	if notified != 0 {
		t.Errorf("observer called %d times after failed upload, want 0", notified)
	}
}

func TestDeviceSamplerFailureReportedOnWrite(t *testing.T) {
	dev, cd := newTestDevice(t)
	h, _ := dev.CreateTexture("test")
	params := retroframe.ParamsFor(retroframe.PixelFormatXRGB8888)
	if err := dev.AllocateStorage(h, 4, 4, params); err != nil {
		t.Fatalf("AllocateStorage failed: %v", err)
	}

	broken := errors.New("sampler heap exhausted")
	cd.failSampler = broken
	dev.SetSampling(h, retroframe.LinearClamp)
	if dev.Sampler(h) != nil {
		t.Error("expected no sampler after failed creation")
	}
	row := retroframe.Region{Width: 4, Rows: 1, Data: make([]byte, 16)}
	if err := dev.WriteRegion(h, row, params); !errors.Is(err, broken) {
		t.Errorf("WriteRegion error = %v, want wrapped %v", err, broken)
	}

	// The next SetSampling retries and clears the failure.
	cd.failSampler = nil
	dev.SetSampling(h, retroframe.LinearClamp)
	if dev.Sampler(h) == nil {
		t.Fatal("expected sampler after retry")
	}
	if err := dev.WriteRegion(h, row, params); err != nil {
		t.Errorf("WriteRegion after retry failed: %v", err)
	}
}

func TestDeviceDestroyTexture(t *testing.T) {
	dev, cd := newTestDevice(t)
	h, _ := dev.CreateTexture("test")
	params := retroframe.ParamsFor(retroframe.PixelFormatRGB565)
	if err := dev.AllocateStorage(h, 8, 8, params); err != nil {
		t.Fatalf("AllocateStorage failed: %v", err)
	}
	dev.SetSampling(h, retroframe.LinearClamp)

	dev.DestroyTexture(h)
	if cd.destroyed != 1 {
		t.Errorf("destroyed = %d, want 1", cd.destroyed)
	}
	if dev.Texture(h) != nil || dev.View(h) != nil || dev.Sampler(h) != nil {
		t.Error("expected no resources after DestroyTexture")
	}

	// Second destroy is a no-op.
	dev.DestroyTexture(h)
	if cd.destroyed != 1 {
		t.Errorf("destroyed = %d after double destroy, want 1", cd.destroyed)
	}
}

// halOnlyProvider exposes HAL types through the provider interface.
type halOnlyProvider struct {
	gpucontext.DeviceProvider
	device hal.Device
	queue  hal.Queue
}

func (p *halOnlyProvider) HalDevice() any { return p.device }
func (p *halOnlyProvider) HalQueue() any  { return p.queue }

// plainProvider implements only gpucontext.DeviceProvider.
type plainProvider struct {
	gpucontext.DeviceProvider
}

func TestNewDeviceFromProvider(t *testing.T) {
	device, queue := openNoopHAL(t)

	dev, err := NewDeviceFromProvider(&halOnlyProvider{device: device, queue: queue})
	if err != nil {
		t.Fatalf("NewDeviceFromProvider failed: %v", err)
	}
	defer dev.Close()

	if _, err := NewDeviceFromProvider(&plainProvider{}); !errors.Is(err, ErrProviderNotHAL) {
		t.Errorf("plain provider error = %v, want ErrProviderNotHAL", err)
	}
	if _, err := NewDeviceFromProvider(nil); !errors.Is(err, ErrNilDevice) {
		t.Errorf("nil provider error = %v, want ErrNilDevice", err)
	}
	if _, err := NewDeviceFromProvider(&halOnlyProvider{}); !errors.Is(err, ErrProviderNotHAL) {
		t.Errorf("empty HAL provider error = %v, want ErrProviderNotHAL", err)
	}
}

func TestUploaderOnNativeDevice(t *testing.T) {
	dev, cd := newTestDevice(t)

	up, err := retroframe.NewUploader(dev, retroframe.WithPixelFormat(retroframe.PixelFormatXRGB8888))
	if err != nil {
		t.Fatalf("NewUploader failed: %v", err)
	}
	defer up.Close()

	frame := retroframe.Frame{Data: make([]byte, 320*240*4), Width: 320, Height: 240, Pitch: 320 * 4}
	for i := 0; i < 3; i++ {
		if err := up.OnNewFrame(frame); err != nil {
			t.Fatalf("OnNewFrame %d failed: %v", i, err)
		}
	}
	if cd.created != 1 {
		t.Errorf("HAL textures created = %d, want 1", cd.created)
	}
	if dev.View(up.Texture()) == nil {
		t.Error("expected bound view after upload")
	}

	// Padded RGB565 frame goes through the per-row path and reallocates.
	up.SetPixelFormat(retroframe.PixelFormatRGB565)
	padded := retroframe.Frame{Data: make([]byte, 10*4), Width: 4, Height: 4, Pitch: 10}
	if err := up.OnNewFrame(padded); err != nil {
		t.Fatalf("OnNewFrame padded failed: %v", err)
	}
	if cd.created != 2 {
		t.Errorf("HAL textures created = %d, want 2", cd.created)
	}
}
