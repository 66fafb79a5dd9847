package swapvk

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// DeviceSelector picks the physical device to render with.
type DeviceSelector func(candidates []PhysicalDevice) (PhysicalDevice, error)

// PhysicalDevice is a GPU able to render to the surface.
type PhysicalDevice struct {
	Handle     vk.PhysicalDevice
	Name       string
	Type       vk.PhysicalDeviceType
	Families   QueueFamilies
	Extensions []string
}

// Discrete reports whether the device is a dedicated GPU.
func (p PhysicalDevice) Discrete() bool {
	return p.Type == vk.PhysicalDeviceTypeDiscreteGpu
}

// PreferDiscrete selects the first discrete GPU, otherwise the first candidate.
func PreferDiscrete(candidates []PhysicalDevice) (PhysicalDevice, error) {
	if len(candidates) == 0 {
		return PhysicalDevice{}, errors.New("no GPU can render to the surface")
	}
	for _, c := range candidates {
		if c.Discrete() {
			return c, nil
		}
	}
	return candidates[0], nil
}

// CoreDevice is the logical device and the queues the renderer uses.
type CoreDevice struct {
	gpu              PhysicalDevice
	properties       vk.PhysicalDeviceProperties
	memoryProperties vk.PhysicalDeviceMemoryProperties
	handle           vk.Device
	graphicsQueue    vk.Queue
	presentQueue     vk.Queue
}

// SuitableDevices lists the GPUs that have graphics and present queue
// families, expose every required extension and report at least one surface
// format and present mode.
func SuitableDevices(instance vk.Instance, surface vk.Surface, required []string) ([]PhysicalDevice, error) {
	var count uint32
	ret := vk.EnumeratePhysicalDevices(instance, &count, nil)
	if isError(ret) {
		return nil, errors.Wrap(NewError(ret), "enumerate physical devices")
	}
	if count == 0 {
		return nil, errors.New("vulkan error: no GPU devices found")
	}
	gpus := make([]vk.PhysicalDevice, count)
	ret = vk.EnumeratePhysicalDevices(instance, &count, gpus)
	if isError(ret) {
		return nil, errors.Wrap(NewError(ret), "enumerate physical devices")
	}

	var suitable []PhysicalDevice
	for _, gpu := range gpus {
		families, ok := FindQueueFamilies(gpu, surface)
		if !ok {
			continue
		}
		extensions, err := DeviceExtensions(gpu)
		if err != nil {
			continue
		}
		if _, missing := checkExisting(extensions, required); len(missing) > 0 {
			continue
		}
		support, err := querySurfaceSupport(gpu, surface)
		if err != nil || len(support.Formats) == 0 || len(support.PresentModes) == 0 {
			continue
		}
		var props vk.PhysicalDeviceProperties
		vk.GetPhysicalDeviceProperties(gpu, &props)
		props.Deref()
		suitable = append(suitable, PhysicalDevice{
			Handle:     gpu,
			Name:       vk.ToString(props.DeviceName[:]),
			Type:       props.DeviceType,
			Families:   families,
			Extensions: extensions,
		})
	}
	return suitable, nil
}

// NewCoreDevice creates the logical device on gpu.
func NewCoreDevice(gpu PhysicalDevice, extensions NameSet, layers []string, logs *Loggers) (*CoreDevice, error) {
	names, err := extensions.Select(gpu.Extensions, logs.Warn)
	if err != nil {
		return nil, errors.Wrapf(err, "device %s extensions", gpu.Name)
	}
	logs.Info.Printf("vulkan: using %s, enabling %d device extensions", gpu.Name, len(names))

	queueInfos := gpu.Families.CreateInfos()
	var device vk.Device
	ret := vk.CreateDevice(gpu.Handle, &vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(names)),
		PpEnabledExtensionNames: names,
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     layers,
	}, nil, &device)
	if isError(ret) {
		return nil, errors.Wrapf(NewError(ret), "create device on %s", gpu.Name)
	}

	core := &CoreDevice{gpu: gpu, handle: device}
	vk.GetPhysicalDeviceProperties(gpu.Handle, &core.properties)
	core.properties.Deref()
	vk.GetPhysicalDeviceMemoryProperties(gpu.Handle, &core.memoryProperties)
	core.memoryProperties.Deref()

	vk.GetDeviceQueue(device, gpu.Families.Graphics, 0, &core.graphicsQueue)
	core.presentQueue = core.graphicsQueue
	if gpu.Families.Separate() {
		vk.GetDeviceQueue(device, gpu.Families.Present, 0, &core.presentQueue)
	}
	return core, nil
}

func (d *CoreDevice) Handle() vk.Device {
	return d.handle
}

func (d *CoreDevice) Physical() PhysicalDevice {
	return d.gpu
}

func (d *CoreDevice) MemoryProperties() vk.PhysicalDeviceMemoryProperties {
	return d.memoryProperties
}

func (d *CoreDevice) Destroy() {
	if d.handle != nil {
		vk.DeviceWaitIdle(d.handle)
		vk.DestroyDevice(d.handle, nil)
		d.handle = nil
	}
}
