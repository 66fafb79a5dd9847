package swapvk

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/andewx/swapvk/frame"
)

// DepthImage is a device-local depth attachment sized to one generation.
type DepthImage struct {
	device vk.Device
	Format vk.Format
	Image  vk.Image
	Memory vk.DeviceMemory
	View   vk.ImageView
}

// NewDepthImage allocates a depth attachment of extent in format.
func NewDepthImage(device *CoreDevice, format vk.Format, extent frame.Extent) (_ *DepthImage, err error) {
	var s frame.Scope
	defer s.ReleaseOnError(&err)

	handle := device.handle
	depth := &DepthImage{device: handle, Format: format}
	ret := vk.CreateImage(handle, &vk.ImageCreateInfo{
		SType:         vk.StructureTypeImageCreateInfo,
		ImageType:     vk.ImageType2d,
		Format:        format,
		Extent:        vk.Extent3D{Width: extent.Width, Height: extent.Height, Depth: 1},
		MipLevels:     1,
		ArrayLayers:   1,
		Samples:       vk.SampleCount1Bit,
		Tiling:        vk.ImageTilingOptimal,
		Usage:         vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}, nil, &depth.Image)
	if isError(ret) {
		return nil, errors.Wrap(NewError(ret), "create depth image")
	}
	image := depth.Image
	s.Add(func() { vk.DestroyImage(handle, image, nil) })

	var reqs vk.MemoryRequirements
	vk.GetImageMemoryRequirements(handle, depth.Image, &reqs)
	reqs.Deref()

	memType, ok := FindRequiredMemoryType(device.memoryProperties,
		vk.MemoryPropertyFlagBits(reqs.MemoryTypeBits), vk.MemoryPropertyDeviceLocalBit)
	if !ok {
		return nil, errors.New("no device local memory type for the depth image")
	}
	ret = vk.AllocateMemory(handle, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  reqs.Size,
		MemoryTypeIndex: memType,
	}, nil, &depth.Memory)
	if isError(ret) {
		return nil, errors.Wrap(NewError(ret), "allocate depth memory")
	}
	memory := depth.Memory
	s.Add(func() { vk.FreeMemory(handle, memory, nil) })

	if ret := vk.BindImageMemory(handle, depth.Image, depth.Memory, 0); isError(ret) {
		return nil, errors.Wrap(NewError(ret), "bind depth memory")
	}

	depth.View, err = createImageView(handle, depth.Image, format, vk.ImageAspectDepthBit)
	if err != nil {
		return nil, err
	}
	s.Move()
	return depth, nil
}

func (d *DepthImage) Destroy() {
	vk.DestroyImageView(d.device, d.View, nil)
	vk.DestroyImage(d.device, d.Image, nil)
	vk.FreeMemory(d.device, d.Memory, nil)
}
