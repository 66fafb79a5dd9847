package frame

import "time"

// Backend is the device context as seen by the frame loop. It outlives every
// generation and every frame slot.
type Backend interface {
	// SurfaceSupport queries the current surface capabilities, formats and present modes.
	SurfaceSupport() (SurfaceSupport, error)
	// CreateSwapchain creates a presentable image chain. info.Old may carry a
	// retired chain that the new one replaces.
	CreateSwapchain(info SwapchainInfo) (Swapchain, error)
	CreateImageView(image Image, format Format) (ImageView, error)
	DestroyImageView(view ImageView)
	// CreateFence creates a CPU-observable completion signal, optionally already signaled.
	CreateFence(signaled bool) (Fence, error)
	// CreateSemaphore creates a GPU-timeline-only signal.
	CreateSemaphore() (Semaphore, error)
	AllocateCommandBuffers(count int) ([]CommandBuffer, error)
	FreeCommandBuffers(cmds []CommandBuffer)
	// Submit queues cmd on the graphics queue. The GPU waits on wait before
	// color output, then signals signal and fence on completion.
	Submit(cmd CommandBuffer, wait, signal Semaphore, fence Fence) error
	// WaitIdle blocks until every queue of the device has drained.
	WaitIdle() error
}

// SwapchainInfo describes a swapchain to create.
type SwapchainInfo struct {
	Format      SurfaceFormat
	PresentMode PresentMode
	Extent      Extent
	ImageCount  uint32
	Old         Swapchain
}

// Swapchain is a native presentable image chain.
type Swapchain interface {
	Images() ([]Image, error)
	// AcquireNextImage requests the next presentable image; signal is
	// signaled on the GPU timeline once the image is ready.
	AcquireNextImage(signal Semaphore) (uint32, Status, error)
	// Present queues image index for presentation after wait is signaled.
	Present(index uint32, wait Semaphore) (Status, error)
	Destroy()
}

// Fence is a CPU-observable GPU completion signal.
type Fence interface {
	// Wait blocks until the fence is signaled. It returns ErrFenceTimeout
	// when timeout elapses first.
	Wait(timeout time.Duration) error
	Reset() error
	Signaled() (bool, error)
	Destroy()
}

// Semaphore orders GPU work without CPU involvement.
type Semaphore interface {
	Destroy()
}

// Window is the window-system collaborator.
type Window interface {
	// FramebufferSize reports the drawable size; (0, 0) means not presentable.
	FramebufferSize() (int, int)
	PollEvents()
	// WaitEvents blocks until at least one event is available.
	WaitEvents()
	ShouldClose() bool
}

// Pipeline is the set of render-target and pipeline objects derived from one
// generation.
type Pipeline interface {
	Framebuffer(index int) Framebuffer
	Destroy()
}

// PipelineFactory builds the frame pipeline resources for a generation.
type PipelineFactory interface {
	BuildPipeline(gen *Generation) (Pipeline, error)
}

// ContentProvider records the draw commands for one render target.
type ContentProvider interface {
	RecordCommands(cmd CommandBuffer, target RenderTarget) error
}
