package swapvk

import (
	"log"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/andewx/swapvk/frame"
)

// PipelineBuilder holds the fixed-function state of the triangle pipeline and
// builds the size dependent objects for each swapchain generation. It
// implements frame.PipelineFactory.
type PipelineBuilder struct {
	ctx     *Context
	shaders *ShaderProgram
	log     *log.Logger

	depthFormat vk.Format

	shaderStages         []vk.PipelineShaderStageCreateInfo
	vertexInputInfo      vk.PipelineVertexInputStateCreateInfo
	inputAssembly        vk.PipelineInputAssemblyStateCreateInfo
	rasterizer           vk.PipelineRasterizationStateCreateInfo
	colorBlendAttachment vk.PipelineColorBlendAttachmentState
	multisampling        vk.PipelineMultisampleStateCreateInfo
	depthStencil         vk.PipelineDepthStencilStateCreateInfo
}

// NewPipelineBuilder picks a depth format and fills in the state shared by
// every generation.
func NewPipelineBuilder(ctx *Context, shaders *ShaderProgram, logger *log.Logger) (*PipelineBuilder, error) {
	depthFormat, err := FindSupportedFormat(ctx.gpu.Handle, DepthFormats,
		vk.ImageTilingOptimal, vk.FormatFeatureDepthStencilAttachmentBit)
	if err != nil {
		return nil, errors.Wrap(err, "depth format")
	}

	pb := &PipelineBuilder{
		ctx:         ctx,
		shaders:     shaders,
		log:         logger,
		depthFormat: depthFormat,
	}

	pb.shaderStages = []vk.PipelineShaderStageCreateInfo{
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Flags:  vk.PipelineShaderStageCreateFlags(0),
			Stage:  vk.ShaderStageVertexBit,
			Module: shaders.Vertex,
			PName:  safeString("main"),
		},
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Flags:  vk.PipelineShaderStageCreateFlags(0),
			Stage:  vk.ShaderStageFragmentBit,
			Module: shaders.Fragment,
			PName:  safeString("main"),
		},
	}

	// Vertices come from gl_VertexIndex.
	pb.vertexInputInfo = vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   0,
		VertexAttributeDescriptionCount: 0,
	}

	pb.inputAssembly = vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               vk.PrimitiveTopologyTriangleList,
		PrimitiveRestartEnable: vk.False,
	}

	pb.rasterizer = vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		DepthClampEnable:        vk.False,
		RasterizerDiscardEnable: vk.False,
		PolygonMode:             vk.PolygonModeFill,
		CullMode:                vk.CullModeFlags(vk.CullModeNone),
		FrontFace:               vk.FrontFaceClockwise,
		DepthBiasEnable:         vk.False,
		LineWidth:               1.0,
	}

	pb.multisampling = vk.PipelineMultisampleStateCreateInfo{
		SType:                 vk.StructureTypePipelineMultisampleStateCreateInfo,
		RasterizationSamples:  vk.SampleCount1Bit,
		SampleShadingEnable:   vk.False,
		MinSampleShading:      1.0,
		AlphaToCoverageEnable: vk.False,
		AlphaToOneEnable:      vk.False,
	}

	// No blending, but every channel is written.
	pb.colorBlendAttachment = vk.PipelineColorBlendAttachmentState{
		ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit | vk.ColorComponentGBit |
			vk.ColorComponentBBit | vk.ColorComponentABit),
		BlendEnable: vk.False,
	}

	pb.depthStencil = vk.PipelineDepthStencilStateCreateInfo{
		SType:                 vk.StructureTypePipelineDepthStencilStateCreateInfo,
		Flags:                 vk.PipelineDepthStencilStateCreateFlags(0),
		DepthTestEnable:       vk.True,
		DepthWriteEnable:      vk.True,
		DepthCompareOp:        vk.CompareOpLessOrEqual,
		DepthBoundsTestEnable: vk.False,
		StencilTestEnable:     vk.False,
		MinDepthBounds:        0.0,
		MaxDepthBounds:        1.0,
	}
	return pb, nil
}

// PipelineResources are the objects derived from one generation: a depth
// attachment, the render pass, the graphics pipeline and a framebuffer per
// swapchain image.
type PipelineResources struct {
	Extent frame.Extent

	depth        *DepthImage
	renderPass   vk.RenderPass
	layout       vk.PipelineLayout
	pipeline     vk.Pipeline
	framebuffers []vk.Framebuffer

	scope frame.Scope
}

// BuildPipeline implements frame.PipelineFactory.
func (p *PipelineBuilder) BuildPipeline(gen *frame.Generation) (_ frame.Pipeline, err error) {
	var s frame.Scope
	defer s.ReleaseOnError(&err)

	device := p.ctx.device
	handle := device.handle
	res := &PipelineResources{Extent: gen.Extent}

	res.depth, err = NewDepthImage(device, p.depthFormat, gen.Extent)
	if err != nil {
		return nil, err
	}
	s.Add(res.depth.Destroy)

	res.renderPass, err = newRenderPass(handle, vk.Format(gen.Format.Format), p.depthFormat)
	if err != nil {
		return nil, err
	}
	renderPass := res.renderPass
	s.Add(func() { vk.DestroyRenderPass(handle, renderPass, nil) })

	res.layout, err = p.createLayout()
	if err != nil {
		return nil, err
	}
	layout := res.layout
	s.Add(func() { vk.DestroyPipelineLayout(handle, layout, nil) })

	res.pipeline, err = p.createPipeline(gen.Extent, renderPass, layout)
	if err != nil {
		return nil, err
	}
	pipeline := res.pipeline
	s.Add(func() { vk.DestroyPipeline(handle, pipeline, nil) })

	res.framebuffers = make([]vk.Framebuffer, 0, len(gen.Views))
	for i, v := range gen.Views {
		view, ok := v.(vk.ImageView)
		if !ok {
			return nil, errors.Errorf("view %d is %T, not a vk.ImageView", i, v)
		}
		var fb vk.Framebuffer
		ret := vk.CreateFramebuffer(handle, &vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			RenderPass:      renderPass,
			AttachmentCount: 2,
			PAttachments:    []vk.ImageView{view, res.depth.View},
			Width:           gen.Extent.Width,
			Height:          gen.Extent.Height,
			Layers:          1,
		}, nil, &fb)
		if isError(ret) {
			return nil, errors.Wrapf(NewError(ret), "create framebuffer %d", i)
		}
		s.Add(func() { vk.DestroyFramebuffer(handle, fb, nil) })
		res.framebuffers = append(res.framebuffers, fb)
	}

	if p.log != nil {
		p.log.Printf("pipeline built for generation %d at %s", gen.Seq, gen.Extent)
	}
	res.scope = s.Move()
	return res, nil
}

func (p *PipelineBuilder) createLayout() (vk.PipelineLayout, error) {
	var layout vk.PipelineLayout
	ret := vk.CreatePipelineLayout(p.ctx.device.handle, &vk.PipelineLayoutCreateInfo{
		SType:                  vk.StructureTypePipelineLayoutCreateInfo,
		PushConstantRangeCount: 1,
		PPushConstantRanges: []vk.PushConstantRange{{
			StageFlags: vk.ShaderStageFlags(vk.ShaderStageVertexBit),
			Offset:     0,
			Size:       PushConstantSize,
		}},
	}, nil, &layout)
	if isError(ret) {
		return vk.NullPipelineLayout, errors.Wrap(NewError(ret), "create pipeline layout")
	}
	return layout, nil
}

// createPipeline bakes the viewport and scissor of extent into the pipeline,
// so a new one is needed whenever the swapchain is rebuilt.
func (p *PipelineBuilder) createPipeline(extent frame.Extent, renderPass vk.RenderPass, layout vk.PipelineLayout) (vk.Pipeline, error) {
	viewports := []vk.Viewport{{
		X:        0,
		Y:        0,
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MinDepth: 0.0,
		MaxDepth: 1.0,
	}}
	scissors := []vk.Rect2D{{
		Offset: vk.Offset2D{},
		Extent: vk.Extent2D{Width: extent.Width, Height: extent.Height},
	}}
	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		PViewports:    viewports,
		ScissorCount:  1,
		PScissors:     scissors,
	}

	blendState := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vk.False,
		LogicOp:         vk.LogicOpCopy,
		AttachmentCount: 1,
		PAttachments:    []vk.PipelineColorBlendAttachmentState{p.colorBlendAttachment},
	}

	pipelineInfo := vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(p.shaderStages)),
		PStages:             p.shaderStages,
		PVertexInputState:   &p.vertexInputInfo,
		PInputAssemblyState: &p.inputAssembly,
		PViewportState:      &viewportState,
		PRasterizationState: &p.rasterizer,
		PMultisampleState:   &p.multisampling,
		PDepthStencilState:  &p.depthStencil,
		PColorBlendState:    &blendState,
		Layout:              layout,
		RenderPass:          renderPass,
		Subpass:             0,
	}

	pipelines := []vk.Pipeline{vk.NullPipeline}
	ret := vk.CreateGraphicsPipelines(p.ctx.device.handle, nil, 1,
		[]vk.GraphicsPipelineCreateInfo{pipelineInfo}, nil, pipelines)
	if isError(ret) {
		return vk.NullPipeline, errors.Wrap(NewError(ret), "create graphics pipeline")
	}
	return pipelines[0], nil
}

// Framebuffer implements frame.Pipeline. The returned value is a vk.Framebuffer.
func (r *PipelineResources) Framebuffer(index int) frame.Framebuffer {
	return r.framebuffers[index]
}

func (r *PipelineResources) RenderPass() vk.RenderPass {
	return r.renderPass
}

func (r *PipelineResources) Layout() vk.PipelineLayout {
	return r.layout
}

func (r *PipelineResources) Handle() vk.Pipeline {
	return r.pipeline
}

// Destroy releases the framebuffers first and the depth image last.
func (r *PipelineResources) Destroy() {
	r.scope.Release()
	r.framebuffers = nil
}
