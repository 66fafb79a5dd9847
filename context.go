package swapvk

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/andewx/swapvk/frame"
)

// Context gives the frame driver access to a device and a surface. It
// implements frame.Backend; handles it returns are vk.Image, vk.ImageView and
// vk.CommandBuffer values.
type Context struct {
	device  *CoreDevice
	gpu     PhysicalDevice
	surface vk.Surface
	pool    *CommandPool
}

// NewContext creates the command pool of the graphics queue family.
func NewContext(device *CoreDevice, surface vk.Surface) (*Context, error) {
	pool, err := NewCommandPool(device.handle, device.gpu.Families.Graphics)
	if err != nil {
		return nil, err
	}
	return &Context{
		device:  device,
		gpu:     device.gpu,
		surface: surface,
		pool:    pool,
	}, nil
}

func (c *Context) Device() vk.Device {
	return c.device.handle
}

func (c *Context) SurfaceSupport() (frame.SurfaceSupport, error) {
	return querySurfaceSupport(c.gpu.Handle, c.surface)
}

func (c *Context) CreateSwapchain(info frame.SwapchainInfo) (frame.Swapchain, error) {
	chain, err := newSwapchain(c, info)
	if err != nil {
		return nil, err
	}
	return chain, nil
}

func (c *Context) CreateImageView(image frame.Image, format frame.Format) (frame.ImageView, error) {
	img, ok := image.(vk.Image)
	if !ok {
		return nil, errors.Errorf("not a swapchain image: %T", image)
	}
	view, err := createImageView(c.device.handle, img, vk.Format(format), vk.ImageAspectColorBit)
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (c *Context) DestroyImageView(view frame.ImageView) {
	if v, ok := view.(vk.ImageView); ok {
		vk.DestroyImageView(c.device.handle, v, nil)
	}
}

func (c *Context) CreateFence(signaled bool) (frame.Fence, error) {
	f, err := newFence(c.device.handle, signaled)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (c *Context) CreateSemaphore() (frame.Semaphore, error) {
	s, err := newSemaphore(c.device.handle)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (c *Context) AllocateCommandBuffers(count int) ([]frame.CommandBuffer, error) {
	buffers, err := c.pool.Allocate(count)
	if err != nil {
		return nil, err
	}
	out := make([]frame.CommandBuffer, len(buffers))
	for i := range buffers {
		out[i] = buffers[i]
	}
	return out, nil
}

func (c *Context) FreeCommandBuffers(cmds []frame.CommandBuffer) {
	buffers := make([]vk.CommandBuffer, 0, len(cmds))
	for _, cmd := range cmds {
		if b, ok := cmd.(vk.CommandBuffer); ok {
			buffers = append(buffers, b)
		}
	}
	c.pool.Free(buffers)
}

// Submit queues cmd on the graphics queue. The color attachment output stage
// waits for wait; signal and fence are signaled when cmd completes.
func (c *Context) Submit(cmd frame.CommandBuffer, wait, signal frame.Semaphore, fence frame.Fence) error {
	buf, ok := cmd.(vk.CommandBuffer)
	if !ok {
		return errors.Errorf("not a command buffer: %T", cmd)
	}
	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{buf},
	}
	if w := semaphoreHandle(wait); w != vk.NullSemaphore {
		submitInfo.WaitSemaphoreCount = 1
		submitInfo.PWaitSemaphores = []vk.Semaphore{w}
		// PWaitDstStageMask is a pointer to an array of pipeline
		// stages at which each corresponding semaphore wait will occur.
		submitInfo.PWaitDstStageMask = []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		}
	}
	if s := semaphoreHandle(signal); s != vk.NullSemaphore {
		submitInfo.SignalSemaphoreCount = 1
		submitInfo.PSignalSemaphores = []vk.Semaphore{s}
	}
	ret := vk.QueueSubmit(c.device.graphicsQueue, 1, []vk.SubmitInfo{submitInfo}, fenceHandle(fence))
	if isError(ret) {
		return NewError(ret)
	}
	return nil
}

func (c *Context) WaitIdle() error {
	return newError(vk.DeviceWaitIdle(c.device.handle))
}

func (c *Context) Destroy() {
	if c.pool != nil {
		c.pool.Destroy()
		c.pool = nil
	}
}
