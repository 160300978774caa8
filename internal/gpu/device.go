// Package gpu is the GPU pipeline engine. It drives compute kernels over
// wgpu/hal: working frames live in storage buffers as packed RGBA texels,
// stage kernels run as compute passes, and results come back through
// map-read staging buffers.
package gpu

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// deviceWaitTimeout bounds every fence wait. A fence that does not signal
// within this window is treated as device loss, not a slow frame.
const deviceWaitTimeout = 5 * time.Second

var (
	// ErrNoBackend reports that no GPU backend is registered or usable.
	ErrNoBackend = errors.New("gpu: vulkan backend not available")

	// ErrNoAdapter reports that the backend exposes no adapters.
	ErrNoAdapter = errors.New("gpu: no adapters found")

	// ErrDeviceLost reports that the device stopped responding. The device
	// must be reopened before further work.
	ErrDeviceLost = errors.New("gpu: device lost")

	// ErrAllocation reports a failed GPU resource allocation.
	ErrAllocation = errors.New("gpu: resource allocation failed")

	// ErrClosed reports use of a closed device.
	ErrClosed = errors.New("gpu: device is closed")
)

// Device owns the hal instance, device, and queue, plus the compiled stage
// pipelines shared by its sessions.
//
// Device is safe for concurrent use; sessions are not.
type Device struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	pipes    *pipelineSet

	adapterName string

	// external is true when the device came from a provider; Close must
	// not destroy resources it does not own.
	external bool
}

// Open acquires a GPU device through the Vulkan backend, preferring a
// discrete or integrated adapter, and compiles the stage pipelines.
func Open() (*Device, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, ErrNoBackend
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("%w: create instance: %v", ErrNoBackend, err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("open device: %w", err)
	}

	d := &Device{
		instance:    instance,
		device:      openDev.Device,
		queue:       openDev.Queue,
		adapterName: selected.Info.Name,
	}
	if err := d.compilePipelines(); err != nil {
		d.Close()
		return nil, err
	}

	slogger().Info("gpu device opened", "adapter", d.adapterName)
	return d, nil
}

// Adopt wraps a shared GPU device from an external provider instead of
// opening one. The provider must expose HalDevice() any and HalQueue() any
// returning hal.Device and hal.Queue. Close will not destroy adopted
// resources.
func Adopt(provider any) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("gpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("gpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("gpu: provider HalQueue is not hal.Queue")
	}

	d := &Device{
		device:      device,
		queue:       queue,
		adapterName: "external",
		external:    true,
	}
	if err := d.compilePipelines(); err != nil {
		return nil, err
	}

	slogger().Info("gpu device adopted from provider")
	return d, nil
}

func (d *Device) compilePipelines() error {
	pipes, err := newPipelineSet(d.device)
	if err != nil {
		return err
	}
	d.pipes = pipes
	return nil
}

// Name returns the adapter name the device was opened on.
func (d *Device) Name() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.adapterName
}

// Close destroys the pipelines and, for devices opened by this package,
// the device and instance. Safe to call multiple times.
func (d *Device) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pipes != nil {
		d.pipes.destroy(d.device)
		d.pipes = nil
	}
	if !d.external {
		if d.device != nil {
			d.device.Destroy()
		}
		if d.instance != nil {
			d.instance.Destroy()
		}
	}
	d.device = nil
	d.queue = nil
	d.instance = nil
}

// closed reports whether Close has run (or Open never finished).
func (d *Device) closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.device == nil
}

// Probe round-trips a tiny frame through the texture layer to confirm the
// device actually executes work, not just enumerates.
func (d *Device) Probe() error {
	pixels := []uint8{
		10, 20, 30, 255, 40, 50, 60, 255,
		70, 80, 90, 255, 100, 110, 120, 255,
	}
	tex, err := d.CreateTextureFromPixels(pixels, 2, 2)
	if err != nil {
		return fmt.Errorf("probe upload: %w", err)
	}
	defer d.DestroyTexture(tex)

	got := make([]uint8, len(pixels))
	if err := d.ReadTexturePixels(tex, got); err != nil {
		return fmt.Errorf("probe readback: %w", err)
	}
	for i := range pixels {
		if got[i] != pixels[i] {
			return fmt.Errorf("probe mismatch at byte %d: got %d, want %d", i, got[i], pixels[i])
		}
	}
	return nil
}
