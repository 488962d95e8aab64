// Package gpu provides a hardware redact.Compositor on top of wgpu's HAL.
//
// The compositor either opens its own device on a named backend
// (Vulkan, Metal, DX12, GL, or the CPU/noop "software" backend) or borrows
// a device from a host application through a gpucontext.DeviceProvider.
// The HAL backend implementations must be linked into the binary, usually
// with a blank import:
//
//	import _ "github.com/gogpu/wgpu/hal/allbackends"
//
// Usage:
//
//	c, err := gpu.NewCompositor(gpu.Config{Backend: "vulkan"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	eng, err := redact.New(redact.WithCompositor(c))
package gpu

import (
	"log/slog"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/redact"
	gpuimpl "github.com/gogpu/redact/internal/gpu"
	"github.com/gogpu/redact/overlay"
	"github.com/gogpu/redact/region"
)

// Re-exported errors.
var (
	ErrBackendUnavailable = gpuimpl.ErrBackendUnavailable
	ErrNoAdapter          = gpuimpl.ErrNoAdapter
	ErrNotHALProvider     = gpuimpl.ErrNotHALProvider
	ErrExternalTarget     = gpuimpl.ErrExternalTarget
)

// Config selects the device and blend mode of a Compositor.
type Config struct {
	// Backend names the HAL backend: "vulkan", "metal", "dx12", "gl",
	// or "software"/"noop". Ignored when Provider is set.
	Backend string

	// Provider shares a host application's device instead of opening one.
	// It must expose HalDevice() and HalQueue().
	Provider any

	redact.CompositorOptions
}

// Stats describes GPU compositor activity: quads in the last frame,
// submitted frames and vertex buffer capacity.
type Stats = gpuimpl.Stats

// TargetFormat is the texture format external targets must use.
const TargetFormat = gpuimpl.TargetFormat

// Compositor implements redact.Compositor with a GPU render pass.
type Compositor struct {
	device *gpuimpl.Device
	inner  *gpuimpl.Compositor
}

var _ redact.Compositor = (*Compositor)(nil)

// NewCompositor opens or borrows a device as described by cfg.
func NewCompositor(cfg Config) (*Compositor, error) {
	gpuimpl.SetLogger(redact.Logger())

	var (
		dev *gpuimpl.Device
		err error
	)
	if cfg.Provider != nil {
		dev, err = gpuimpl.FromProvider(cfg.Provider)
	} else {
		backend, perr := gpuimpl.ParseBackend(cfg.Backend)
		if perr != nil {
			return nil, perr
		}
		dev, err = gpuimpl.OpenDevice(backend)
	}
	if err != nil {
		return nil, err
	}

	inner, err := gpuimpl.NewCompositor(dev.Device, dev.Queue, gpuimpl.Options{
		CombinedBlend: cfg.CombinedBlend,
	})
	if err != nil {
		dev.Close()
		return nil, err
	}
	return &Compositor{device: dev, inner: inner}, nil
}

// SetLogger forwards l to the GPU internals. redact.SetLogger calls it for
// compositors owned by a live engine.
func (c *Compositor) SetLogger(l *slog.Logger) {
	gpuimpl.SetLogger(l)
}

// DeviceName returns the adapter name.
func (c *Compositor) DeviceName() string { return c.device.Name }

// Begin starts a frame.
func (c *Compositor) Begin(width, height int) error {
	return c.inner.Begin(width, height)
}

// DrawBase uploads frame and draws it full-screen.
func (c *Compositor) DrawBase(frame *redact.Frame) error {
	if frame == nil {
		return redact.ErrNilFrame
	}
	return c.inner.DrawBase(frame.Data(), frame.Width(), frame.Height())
}

// SetOverlay uploads img as the overlay texture. Nil clears it.
func (c *Compositor) SetOverlay(img *overlay.Image) error {
	if img == nil {
		return c.inner.SetOverlay(nil, 0, 0)
	}
	return c.inner.SetOverlay(img.Pix, img.Width, img.Height)
}

// HasOverlay reports whether an overlay texture is installed.
func (c *Compositor) HasOverlay() bool { return c.inner.HasOverlay() }

// DrawRegion queues one overlay quad.
func (c *Compositor) DrawRegion(box region.Rect, alpha float64) error {
	return c.inner.DrawRegion(box, float32(alpha))
}

// End submits the frame.
func (c *Compositor) End() error { return c.inner.End() }

// Device returns the HAL device frames are rendered on, for allocating
// views passed to SetTarget.
func (c *Compositor) Device() hal.Device { return c.device.Device }

// SetTarget renders subsequent frames into view instead of the
// compositor's own texture, for example a host surface obtained through
// the Provider's device. The view must be TargetFormat and at least the
// frame size. A nil view switches back to the owned texture.
func (c *Compositor) SetTarget(view hal.TextureView) {
	c.inner.SetTarget(view)
}

// ReadFrame copies the last rendered frame back to the CPU. It blocks
// until the GPU is idle and fails with ErrExternalTarget while a view set
// with SetTarget is the render target.
func (c *Compositor) ReadFrame(dst *redact.Frame) error {
	if dst == nil {
		return redact.ErrNilFrame
	}
	return c.inner.ReadPixels(dst.Data())
}

// Stats returns GPU compositor counters.
func (c *Compositor) Stats() Stats { return c.inner.Stats() }

// Close releases GPU resources and, if owned, the device.
func (c *Compositor) Close() error {
	c.inner.Destroy()
	c.device.Close()
	return nil
}
