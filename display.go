package swapvk

import (
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Display is the GLFW window frames are presented to. It implements
// frame.Window.
type Display struct {
	window  *glfw.Window
	surface vk.Surface
}

// NewDisplay opens a window without a client API. glfw.Init must have been
// called on the main thread.
func NewDisplay(u WindowUsage) (*Display, error) {
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Visible, glfw.True)
	resizable := glfw.False
	if u.Resizable {
		resizable = glfw.True
	}
	glfw.WindowHint(glfw.Resizable, resizable)

	window, err := glfw.CreateWindow(u.Width, u.Height, u.Title, nil, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create window")
	}
	return &Display{window: window}, nil
}

// OnResize calls fn whenever the framebuffer size changes, minimizing included.
func (d *Display) OnResize(fn func()) {
	d.window.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		fn()
	})
}

func (d *Display) FramebufferSize() (int, int) {
	return d.window.GetFramebufferSize()
}

func (d *Display) PollEvents() {
	glfw.PollEvents()
}

func (d *Display) WaitEvents() {
	glfw.WaitEvents()
}

func (d *Display) ShouldClose() bool {
	return d.window.ShouldClose()
}

// RequestClose marks the window for closing and wakes the event loop. It may
// be called from any goroutine.
func (d *Display) RequestClose() {
	d.window.SetShouldClose(true)
	glfw.PostEmptyEvent()
}

func (d *Display) Window() *glfw.Window {
	return d.window
}

// RequiredExtensions are the instance extensions a surface for this window needs.
func (d *Display) RequiredExtensions() []string {
	return d.window.GetRequiredInstanceExtensions()
}

// CreateSurface creates the window surface on instance.
func (d *Display) CreateSurface(instance vk.Instance) (vk.Surface, error) {
	ptr, err := d.window.CreateWindowSurface(instance, nil)
	if err != nil {
		return vk.NullSurface, errors.Wrap(err, "create window surface")
	}
	d.surface = vk.SurfaceFromPointer(ptr)
	return d.surface, nil
}

// DestroySurface destroys the surface created on instance.
func (d *Display) DestroySurface(instance vk.Instance) {
	if d.surface != vk.NullSurface {
		vk.DestroySurface(instance, d.surface, nil)
		d.surface = vk.NullSurface
	}
}

func (d *Display) Destroy() {
	if d.window != nil {
		d.window.Destroy()
		d.window = nil
	}
}
