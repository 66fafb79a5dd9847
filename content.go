package swapvk

import (
	"unsafe"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/andewx/swapvk/frame"
)

// TriangleContent clears the target and draws one triangle whose projection
// follows the target extent. It implements frame.ContentProvider.
type TriangleContent struct {
	ClearColor [4]float32
}

func (t *TriangleContent) RecordCommands(c frame.CommandBuffer, target frame.RenderTarget) error {
	cmd, ok := c.(vk.CommandBuffer)
	if !ok {
		return errors.Errorf("not a command buffer: %T", c)
	}
	res, ok := target.Pipeline.(*PipelineResources)
	if !ok {
		return errors.Errorf("unsupported pipeline %T", target.Pipeline)
	}
	framebuffer, ok := target.Framebuffer.(vk.Framebuffer)
	if !ok {
		return errors.Errorf("not a framebuffer: %T", target.Framebuffer)
	}

	ret := vk.BeginCommandBuffer(cmd, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageSimultaneousUseBit),
	})
	if isError(ret) {
		return errors.Wrap(NewError(ret), "begin command buffer")
	}

	clearValues := []vk.ClearValue{
		vk.NewClearValue(t.ClearColor[:]),
		vk.NewClearDepthStencil(1.0, 0),
	}
	vk.CmdBeginRenderPass(cmd, &vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  res.RenderPass(),
		Framebuffer: framebuffer,
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: vk.Extent2D{Width: target.Extent.Width, Height: target.Extent.Height},
		},
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}, vk.SubpassContentsInline)
	vk.CmdBindPipeline(cmd, vk.PipelineBindPointGraphics, res.Handle())

	mvp := Projection(target.Extent)
	vk.CmdPushConstants(cmd, res.Layout(), vk.ShaderStageFlags(vk.ShaderStageVertexBit),
		0, PushConstantSize, unsafe.Pointer(&mvp[0][0]))
	vk.CmdDraw(cmd, 3, 1, 0, 0)
	vk.CmdEndRenderPass(cmd)

	if ret := vk.EndCommandBuffer(cmd); isError(ret) {
		return errors.Wrap(NewError(ret), "end command buffer")
	}
	return nil
}
