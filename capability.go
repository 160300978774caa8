package literoom

import (
	"context"
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"

	"github.com/tesla3327/literoom-sub019/internal/gpu"
)

// DeviceHandle provides GPU device access from a host application.
//
// Host frameworks that already own a device (a windowed gogpu app, for
// example) implement DeviceHandle and pass it to SetDeviceProvider,
// letting the pipeline share that device instead of opening its own.
//
// DeviceHandle is an alias for gpucontext.DeviceProvider, providing a
// pipeline-specific name for the interface while staying compatible with
// the gpucontext ecosystem. Concrete providers must additionally expose
// HalDevice() any and HalQueue() any methods returning wgpu/hal types.
type DeviceHandle = gpucontext.DeviceProvider

// Capability owns the process-wide GPU device. Initialize probes for a
// usable adapter exactly once; the outcome is latched until Reset. A
// Capability is safe for concurrent use and may back any number of
// Pipelines.
type Capability struct {
	mu      sync.Mutex
	dev     *gpu.Device
	tried   bool
	initErr error
}

// NewCapability returns an uninitialized capability. Most applications use
// the package singleton via Default instead.
func NewCapability() *Capability {
	return &Capability{}
}

var defaultCapability = NewCapability()

// Default returns the process-wide capability singleton.
func Default() *Capability {
	return defaultCapability
}

// Initialize probes for a GPU device and reports whether one is available.
// The first call does the work; repeat calls return the latched outcome
// without touching the device again. A canceled context returns false
// without latching, so a later call can still probe.
func (c *Capability) Initialize(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tried {
		return c.dev != nil
	}
	if err := ctx.Err(); err != nil {
		return false
	}
	c.tried = true

	dev, err := gpu.Open()
	if err != nil {
		c.initErr = err
		Logger().Warn("gpu unavailable, software engine required", "error", err)
		return false
	}
	if err := dev.Probe(); err != nil {
		dev.Close()
		c.initErr = fmt.Errorf("device probe: %w", err)
		Logger().Warn("gpu probe failed, software engine required", "error", err)
		return false
	}
	c.dev = dev
	Logger().Info("gpu initialized", "adapter", dev.Name())
	return true
}

// Ready reports whether a probed device is currently held.
func (c *Capability) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dev != nil
}

// InitError returns the failure from the initialization attempt, or nil.
func (c *Capability) InitError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initErr
}

// AdapterName returns the name of the held adapter, or "" when none is
// initialized.
func (c *Capability) AdapterName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dev == nil {
		return ""
	}
	return c.dev.Name()
}

// SetDeviceProvider adopts a device shared by the host application in
// place of opening one. The adopted device is probed before it replaces
// any currently held device; on failure the capability keeps its previous
// state. The host retains ownership of the underlying device.
func (c *Capability) SetDeviceProvider(provider DeviceHandle) error {
	dev, err := gpu.Adopt(provider)
	if err != nil {
		return err
	}
	if err := dev.Probe(); err != nil {
		dev.Close()
		return fmt.Errorf("adopted device probe: %w", err)
	}
	c.mu.Lock()
	old := c.dev
	c.dev = dev
	c.tried = true
	c.initErr = nil
	c.mu.Unlock()
	if old != nil {
		old.Close()
	}
	Logger().Info("gpu device adopted from host", "adapter", dev.Name())
	return nil
}

// Reset releases the held device and clears the latched outcome. The next
// Initialize call probes from scratch. Pipelines built on this capability
// must be reset as well before they process again.
func (c *Capability) Reset() {
	c.mu.Lock()
	dev := c.dev
	c.dev = nil
	c.tried = false
	c.initErr = nil
	c.mu.Unlock()
	if dev != nil {
		dev.Close()
	}
}

// SetDeviceProvider passes a host device provider to the default
// capability, enabling GPU device sharing with the application's own
// graphics stack.
func SetDeviceProvider(provider DeviceHandle) error {
	return Default().SetDeviceProvider(provider)
}

// acquire returns the held device or the error a Process call should
// surface: ErrNotInitialized before any Initialize attempt, ErrUnavailable
// after a failed one.
func (c *Capability) acquire() (*gpu.Device, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.tried {
		return nil, ErrNotInitialized
	}
	if c.dev == nil {
		if c.initErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, c.initErr)
		}
		return nil, ErrUnavailable
	}
	return c.dev, nil
}
