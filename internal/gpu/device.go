//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// Device is an opened HAL device and its queue.
// A Device obtained from a provider is shared and not destroyed by Close.
type Device struct {
	Device hal.Device
	Queue  hal.Queue
	Name   string

	instance hal.Instance
	external bool
	timeline *Timeline
}

// Timeline returns the submission timeline of the device queue. Every
// component sharing the device must submit through it.
func (d *Device) Timeline() *Timeline {
	if d.timeline == nil {
		d.timeline = NewTimeline(d.Device, d.Queue)
	}
	return d.timeline
}

// OpenDevice opens the first discrete or integrated GPU on the Vulkan
// backend, falling back to the first adapter found.
func OpenDevice() (*Device, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("%w: vulkan backend not available", ErrNoAdapter)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
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
	slogger().Info("gpu: adapter selected", "name", selected.Info.Name)
	return &Device{
		Device:   openDev.Device,
		Queue:    openDev.Queue,
		Name:     selected.Info.Name,
		instance: instance,
	}, nil
}

// DeviceFromProvider borrows the device of an external provider such as a
// gogpu application. The provider's Device() must expose HalDevice() and
// HalQueue(), as *wgpu.Device does.
func DeviceFromProvider(provider gpucontext.DeviceProvider) (*Device, error) {
	type halBridge interface {
		HalDevice() hal.Device
		HalQueue() hal.Queue
	}
	if provider == nil {
		return nil, ErrProvider
	}
	dev := provider.Device()
	if dev == nil {
		return nil, fmt.Errorf("%w: provider Device is nil", ErrProvider)
	}
	hb, ok := dev.(halBridge)
	if !ok {
		return nil, fmt.Errorf("%w: provider Device is %T", ErrProvider, dev)
	}
	device, queue := hb.HalDevice(), hb.HalQueue()
	if device == nil || queue == nil {
		return nil, fmt.Errorf("%w: provider device has no HAL backend", ErrProvider)
	}
	slogger().Info("gpu: using shared device from provider")
	return &Device{Device: device, Queue: queue, Name: "shared", external: true}, nil
}

// WrapDevice wraps a device and queue the caller keeps ownership of.
func WrapDevice(device hal.Device, queue hal.Queue) (*Device, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	return &Device{Device: device, Queue: queue, Name: "external", external: true}, nil
}

// Close destroys the device and instance unless they are shared.
func (d *Device) Close() {
	if d.external {
		d.Device = nil
		d.Queue = nil
		return
	}
	if d.Device != nil {
		d.Device.Destroy()
		d.Device = nil
	}
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
	d.Queue = nil
}
