package swapvk

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/andewx/swapvk/frame"
)

const logFlags = log.Ldate | log.Ltime | log.Lshortfile

// Loggers are the info, warning and error streams of the renderer.
type Loggers struct {
	Info  *log.Logger
	Warn  *log.Logger
	Error *log.Logger

	files []*os.File
}

// NewStdLoggers writes every stream to stderr.
func NewStdLoggers() *Loggers {
	return newLoggers(os.Stderr, os.Stderr, os.Stderr)
}

func newLoggers(info, warn, errw io.Writer) *Loggers {
	return &Loggers{
		Info:  log.New(info, "INFO: ", logFlags),
		Warn:  log.New(warn, "WARNING: ", logFlags),
		Error: log.New(errw, "ERROR: ", logFlags),
	}
}

// NewLoggers appends each stream to its own file in dir: info_log.txt,
// warn_log.txt and error_log.txt.
func NewLoggers(dir string) (*Loggers, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, "log dir")
	}
	var files []*os.File
	for _, name := range []string{"info_log.txt", "warn_log.txt", "error_log.txt"} {
		f, err := os.OpenFile(filepath.Join(dir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
		if err != nil {
			for _, opened := range files {
				opened.Close()
			}
			return nil, errors.Wrap(err, "open log")
		}
		files = append(files, f)
	}
	logs := newLoggers(files[0], files[1], files[2])
	logs.files = files
	return logs, nil
}

// Close closes the log files, if any.
func (l *Loggers) Close() error {
	var first error
	for _, f := range l.files {
		if err := f.Close(); err != nil && first == nil {
			first = err
		}
	}
	l.files = nil
	return first
}

// Core owns every long-lived Vulkan object behind a frame driver: the
// instance, the window surface, the logical device, the backend context, the
// shaders and the pipeline builder. The driver borrows them through Backend,
// Pipelines and Content.
type Core struct {
	usage   *Usage
	display *Display

	instance  *Instance
	surface   vk.Surface
	device    *CoreDevice
	context   *Context
	shaders   *ShaderProgram
	pipelines *PipelineBuilder
	content   *TriangleContent

	scope frame.Scope
}

// NewCore creates the device context for display. A nil selector picks
// PreferDiscrete.
func NewCore(u *Usage, display *Display, selector DeviceSelector, logs *Loggers) (_ *Core, err error) {
	if selector == nil {
		selector = PreferDiscrete
	}
	core := &Core{usage: u, display: display}
	defer core.scope.ReleaseOnError(&err)

	core.instance, err = NewInstance(u, display.RequiredExtensions(), logs)
	if err != nil {
		return nil, err
	}
	core.scope.Add(core.instance.Destroy)
	instance := core.instance.Handle()

	core.surface, err = display.CreateSurface(instance)
	if err != nil {
		return nil, err
	}
	core.scope.Add(func() { display.DestroySurface(instance) })

	deviceNames := u.deviceNames()
	candidates, err := SuitableDevices(instance, core.surface, deviceNames.Required)
	if err != nil {
		return nil, err
	}
	gpu, err := selector(candidates)
	if err != nil {
		return nil, err
	}

	core.device, err = NewCoreDevice(gpu, deviceNames, core.instance.layers, logs)
	if err != nil {
		return nil, err
	}
	core.scope.Add(core.device.Destroy)

	core.context, err = NewContext(core.device, core.surface)
	if err != nil {
		return nil, err
	}
	core.scope.Add(core.context.Destroy)

	core.shaders, err = LoadShaderProgram(core.device.Handle(), u.Shaders.Vertex, u.Shaders.Fragment)
	if err != nil {
		return nil, err
	}
	core.scope.Add(core.shaders.Destroy)

	core.pipelines, err = NewPipelineBuilder(core.context, core.shaders, logs.Info)
	if err != nil {
		return nil, err
	}
	core.content = &TriangleContent{ClearColor: u.ClearColor}
	return core, nil
}

// Backend is the frame.Backend of the device.
func (c *Core) Backend() frame.Backend {
	return c.context
}

func (c *Core) Pipelines() frame.PipelineFactory {
	return c.pipelines
}

func (c *Core) Content() frame.ContentProvider {
	return c.content
}

func (c *Core) Device() *CoreDevice {
	return c.device
}

// Destroy releases everything NewCore created, newest first. The frame
// driver must have been shut down before.
func (c *Core) Destroy() {
	c.scope.Release()
}
