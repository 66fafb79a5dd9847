package swapvk

import (
	vk "github.com/vulkan-go/vulkan"
)

// QueueFamilies are the queue family indices a device renders and presents with.
type QueueFamilies struct {
	Graphics uint32
	Present  uint32
}

// Separate reports whether presentation uses its own queue family.
func (q QueueFamilies) Separate() bool {
	return q.Graphics != q.Present
}

// Indices lists the distinct families.
func (q QueueFamilies) Indices() []uint32 {
	if q.Separate() {
		return []uint32{q.Graphics, q.Present}
	}
	return []uint32{q.Graphics}
}

// CreateInfos requests one queue of each distinct family.
func (q QueueFamilies) CreateInfos() []vk.DeviceQueueCreateInfo {
	indices := q.Indices()
	infos := make([]vk.DeviceQueueCreateInfo, len(indices))
	for i, family := range indices {
		infos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: family,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		}
	}
	return infos
}

func queueFamilyProperties(gpu vk.PhysicalDevice) []vk.QueueFamilyProperties {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, nil)
	props := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, props)
	for i := range props {
		props[i].Deref()
	}
	return props
}

// FindQueueFamilies looks for a graphics family that can present to surface,
// and otherwise for any graphics family plus a separate present family.
func FindQueueFamilies(gpu vk.PhysicalDevice, surface vk.Surface) (QueueFamilies, bool) {
	props := queueFamilyProperties(gpu)
	supportsPresent := func(i uint32) bool {
		var supported vk.Bool32
		vk.GetPhysicalDeviceSurfaceSupport(gpu, i, surface, &supported)
		return supported.B()
	}

	var (
		families      QueueFamilies
		graphicsFound bool
		presentFound  bool
	)
	for i := range props {
		index := uint32(i)
		if props[i].QueueCount == 0 {
			continue
		}
		graphics := props[i].QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0
		present := supportsPresent(index)
		if graphics && present {
			return QueueFamilies{Graphics: index, Present: index}, true
		}
		if graphics && !graphicsFound {
			families.Graphics, graphicsFound = index, true
		}
		if present && !presentFound {
			families.Present, presentFound = index, true
		}
	}
	return families, graphicsFound && presentFound
}
