package swapvk

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/andewx/swapvk/frame"
)

// Swapchain is a vk.Swapchain and the queue it presents on. It implements
// frame.Swapchain.
type Swapchain struct {
	device       vk.Device
	presentQueue vk.Queue
	handle       vk.Swapchain
}

// querySurfaceSupport reads what surface offers on gpu.
func querySurfaceSupport(gpu vk.PhysicalDevice, surface vk.Surface) (frame.SurfaceSupport, error) {
	var support frame.SurfaceSupport

	var caps vk.SurfaceCapabilities
	ret := vk.GetPhysicalDeviceSurfaceCapabilities(gpu, surface, &caps)
	if isError(ret) {
		return support, errors.Wrap(newError(ret), "surface capabilities")
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()
	support.Capabilities = frame.SurfaceCapabilities{
		MinImageCount:  caps.MinImageCount,
		MaxImageCount:  caps.MaxImageCount,
		CurrentExtent:  toExtent(caps.CurrentExtent),
		MinImageExtent: toExtent(caps.MinImageExtent),
		MaxImageExtent: toExtent(caps.MaxImageExtent),
	}

	var formatCount uint32
	ret = vk.GetPhysicalDeviceSurfaceFormats(gpu, surface, &formatCount, nil)
	if isError(ret) {
		return support, errors.Wrap(newError(ret), "surface formats")
	}
	formats := make([]vk.SurfaceFormat, formatCount)
	ret = vk.GetPhysicalDeviceSurfaceFormats(gpu, surface, &formatCount, formats)
	if isError(ret) {
		return support, errors.Wrap(newError(ret), "surface formats")
	}
	for i := range formats[:formatCount] {
		formats[i].Deref()
		support.Formats = append(support.Formats, frame.SurfaceFormat{
			Format:     frame.Format(formats[i].Format),
			ColorSpace: frame.ColorSpace(formats[i].ColorSpace),
		})
	}

	var modeCount uint32
	ret = vk.GetPhysicalDeviceSurfacePresentModes(gpu, surface, &modeCount, nil)
	if isError(ret) {
		return support, errors.Wrap(newError(ret), "present modes")
	}
	modes := make([]vk.PresentMode, modeCount)
	ret = vk.GetPhysicalDeviceSurfacePresentModes(gpu, surface, &modeCount, modes)
	if isError(ret) {
		return support, errors.Wrap(newError(ret), "present modes")
	}
	for _, m := range modes[:modeCount] {
		support.PresentModes = append(support.PresentModes, frame.PresentMode(m))
	}
	return support, nil
}

// surfaceTransform prefers the identity transform.
func surfaceTransform(caps vk.SurfaceCapabilities) vk.SurfaceTransformFlagBits {
	if vk.SurfaceTransformFlagBits(caps.SupportedTransforms)&vk.SurfaceTransformIdentityBit != 0 {
		return vk.SurfaceTransformIdentityBit
	}
	return caps.CurrentTransform
}

// compositeAlpha returns the first supported mode; one of them is always set.
func compositeAlpha(caps vk.SurfaceCapabilities) vk.CompositeAlphaFlagBits {
	for _, flag := range []vk.CompositeAlphaFlagBits{
		vk.CompositeAlphaOpaqueBit,
		vk.CompositeAlphaPreMultipliedBit,
		vk.CompositeAlphaPostMultipliedBit,
		vk.CompositeAlphaInheritBit,
	} {
		if caps.SupportedCompositeAlpha&vk.CompositeAlphaFlags(flag) != 0 {
			return flag
		}
	}
	return vk.CompositeAlphaOpaqueBit
}

func newSwapchain(c *Context, info frame.SwapchainInfo) (*Swapchain, error) {
	var caps vk.SurfaceCapabilities
	ret := vk.GetPhysicalDeviceSurfaceCapabilities(c.gpu.Handle, c.surface, &caps)
	if isError(ret) {
		return nil, errors.Wrap(newError(ret), "surface capabilities")
	}
	caps.Deref()

	oldHandle := vk.NullSwapchain
	if old, ok := info.Old.(*Swapchain); ok && old != nil {
		oldHandle = old.handle
	}

	createInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          c.surface,
		MinImageCount:    info.ImageCount,
		ImageFormat:      vk.Format(info.Format.Format),
		ImageColorSpace:  vk.ColorSpace(info.Format.ColorSpace),
		ImageExtent:      vk.Extent2D{Width: info.Extent.Width, Height: info.Extent.Height},
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		PreTransform:     surfaceTransform(caps),
		CompositeAlpha:   compositeAlpha(caps),
		ImageArrayLayers: 1,
		ImageSharingMode: vk.SharingModeExclusive,
		PresentMode:      vk.PresentMode(info.PresentMode),
		OldSwapchain:     oldHandle,
		Clipped:          vk.True,
	}
	families := c.gpu.Families
	if families.Separate() {
		indices := families.Indices()
		createInfo.ImageSharingMode = vk.SharingModeConcurrent
		createInfo.QueueFamilyIndexCount = uint32(len(indices))
		createInfo.PQueueFamilyIndices = indices
	}

	var handle vk.Swapchain
	ret = vk.CreateSwapchain(c.device.handle, &createInfo, nil, &handle)
	if isError(ret) {
		return nil, NewError(ret)
	}
	return &Swapchain{
		device:       c.device.handle,
		presentQueue: c.device.presentQueue,
		handle:       handle,
	}, nil
}

func (s *Swapchain) Images() ([]frame.Image, error) {
	var count uint32
	ret := vk.GetSwapchainImages(s.device, s.handle, &count, nil)
	if isError(ret) {
		return nil, errors.Wrap(newError(ret), "swapchain image count")
	}
	images := make([]vk.Image, count)
	ret = vk.GetSwapchainImages(s.device, s.handle, &count, images)
	if isError(ret) {
		return nil, errors.Wrap(newError(ret), "swapchain images")
	}
	out := make([]frame.Image, count)
	for i := range out {
		out[i] = images[i]
	}
	return out, nil
}

func (s *Swapchain) AcquireNextImage(signal frame.Semaphore) (uint32, frame.Status, error) {
	var index uint32
	ret := vk.AcquireNextImage(s.device, s.handle, vk.MaxUint64, semaphoreHandle(signal), vk.NullFence, &index)
	status, err := presentStatus(ret)
	return index, status, err
}

func (s *Swapchain) Present(index uint32, wait frame.Semaphore) (frame.Status, error) {
	ret := vk.QueuePresent(s.presentQueue, &vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{semaphoreHandle(wait)},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{s.handle},
		PImageIndices:      []uint32{index},
	})
	return presentStatus(ret)
}

func (s *Swapchain) Destroy() {
	vk.DestroySwapchain(s.device, s.handle, nil)
	s.handle = vk.NullSwapchain
}

// presentStatus maps the results the frame loop recovers from; anything else
// is an error.
func presentStatus(ret vk.Result) (frame.Status, error) {
	switch ret {
	case vk.Success:
		return frame.StatusSuccess, nil
	case vk.Suboptimal:
		return frame.StatusSuboptimal, nil
	case vk.ErrorOutOfDate:
		return frame.StatusOutOfDate, nil
	}
	return frame.StatusSuccess, NewError(ret)
}

func toExtent(e vk.Extent2D) frame.Extent {
	return frame.Extent{Width: e.Width, Height: e.Height}
}
