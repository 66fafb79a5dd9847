package swapvk

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// CommandPool allocates the primary command buffers of the graphics queue family.
type CommandPool struct {
	device vk.Device
	pool   vk.CommandPool
}

func NewCommandPool(device vk.Device, family uint32) (*CommandPool, error) {
	var pool vk.CommandPool
	ret := vk.CreateCommandPool(device, &vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: family,
		// ResetCommandBufferBit allows command buffers to be reset individually.
		Flags: vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}, nil, &pool)
	if isError(ret) {
		return nil, errors.Wrap(newError(ret), "create command pool")
	}
	return &CommandPool{device: device, pool: pool}, nil
}

func (c *CommandPool) Allocate(count int) ([]vk.CommandBuffer, error) {
	buffers := make([]vk.CommandBuffer, count)
	if count == 0 {
		return buffers, nil
	}
	ret := vk.AllocateCommandBuffers(c.device, &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        c.pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: uint32(count),
	}, buffers)
	if isError(ret) {
		return nil, errors.Wrapf(newError(ret), "allocate %d command buffers", count)
	}
	return buffers, nil
}

func (c *CommandPool) Free(buffers []vk.CommandBuffer) {
	if len(buffers) > 0 {
		vk.FreeCommandBuffers(c.device, c.pool, uint32(len(buffers)), buffers)
	}
}

func (c *CommandPool) Destroy() {
	vk.DestroyCommandPool(c.device, c.pool, nil)
}
