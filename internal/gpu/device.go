package gpu

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Device errors.
var (
	// ErrBackendUnavailable is returned when the requested HAL backend is
	// not registered in this binary.
	ErrBackendUnavailable = errors.New("gpu: backend not available")

	// ErrNoAdapter is returned when a backend exposes no adapters.
	ErrNoAdapter = errors.New("gpu: no GPU adapters found")

	// ErrNotHALProvider is returned when a shared device provider does not
	// expose hal.Device and hal.Queue.
	ErrNotHALProvider = errors.New("gpu: provider does not expose HAL types")
)

// Device is an opened HAL device and its queue. A Device opened through
// OpenDevice owns the instance and device and destroys them on Close; one
// obtained from a provider only borrows them.
type Device struct {
	Device hal.Device
	Queue  hal.Queue
	Name   string

	instance hal.Instance
	external bool
}

// ParseBackend maps a backend name to its gputypes value. "software" and
// "noop" both select BackendEmpty: whichever of the CPU or no-op HAL
// backends is linked in serves it.
func ParseBackend(name string) (gputypes.Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "vulkan", "vk":
		return gputypes.BackendVulkan, nil
	case "metal":
		return gputypes.BackendMetal, nil
	case "dx12", "d3d12":
		return gputypes.BackendDX12, nil
	case "gl", "gles", "opengl":
		return gputypes.BackendGL, nil
	case "software", "noop", "empty":
		return gputypes.BackendEmpty, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrBackendUnavailable, name)
	}
}

// OpenDevice creates an instance on the registered backend and opens the
// first discrete or integrated adapter, falling back to the first adapter.
func OpenDevice(backend gputypes.Backend) (*Device, error) {
	b, ok := hal.GetBackend(backend)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, backend)
	}
	instance, err := b.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}

	open, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("open device: %w", err)
	}
	slogger().Info("gpu: device opened", "adapter", selected.Info.Name, "backend", backend)

	return &Device{
		Device:   open.Device,
		Queue:    open.Queue,
		Name:     selected.Info.Name,
		instance: instance,
	}, nil
}

// FromProvider borrows the device of an external provider such as a
// gogpu window. The provider must expose HalDevice() and HalQueue()
// returning hal.Device and hal.Queue. When it is also a
// gpucontext.DeviceProvider its adapter name is recorded.
func FromProvider(provider any) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNotHALProvider
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is %T", ErrNotHALProvider, hp.HalDevice())
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is %T", ErrNotHALProvider, hp.HalQueue())
	}

	d := &Device{Device: device, Queue: queue, Name: "external", external: true}
	if dp, ok := provider.(gpucontext.DeviceProvider); ok {
		info := dp.AdapterInfo()
		d.Name = info.Name
		slogger().Info("gpu: using shared device", "adapter", info.Name, "type", info.Type)
	}
	return d, nil
}

// External reports whether the device is borrowed from a provider.
func (d *Device) External() bool { return d.external }

// Close releases the device and instance if this Device owns them.
func (d *Device) Close() {
	if d == nil {
		return
	}
	if !d.external {
		if d.Device != nil {
			d.Device.Destroy()
		}
		if d.instance != nil {
			d.instance.Destroy()
		}
	}
	d.Device = nil
	d.Queue = nil
	d.instance = nil
}
