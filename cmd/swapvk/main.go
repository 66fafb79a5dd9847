// Command swapvk opens a window and renders a triangle through the frame
// driver, rebuilding the swapchain as the window is resized or minimized.
package main

import (
	"flag"
	"log"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"
	"github.com/xlab/closer"

	"github.com/andewx/swapvk"
	"github.com/andewx/swapvk/frame"
)

func init() {
	// GLFW and the Vulkan loader must stay on the main thread.
	runtime.LockOSThread()
}

var (
	configPath = flag.String("config", "", "YAML usage file")
	width      = flag.Int("width", 0, "window width")
	height     = flag.Int("height", 0, "window height")
	frames     = flag.Int("frames", 0, "frames in flight")
	debug      = flag.Bool("debug", false, "enable the validation layer")
	logDir     = flag.String("logs", "", "write logs to this directory instead of stderr")
)

func main() {
	flag.Parse()

	u := swapvk.DefaultUsage()
	if *configPath != "" {
		var err error
		if u, err = swapvk.LoadUsage(*configPath); err != nil {
			swapvk.Fatal(err)
		}
	}
	applyFlags(u)
	if err := u.Validate(); err != nil {
		swapvk.Fatal(err)
	}

	logs := swapvk.NewStdLoggers()
	if u.LogDir != "" {
		var err error
		if logs, err = swapvk.NewLoggers(u.LogDir); err != nil {
			swapvk.Fatal(err)
		}
	}

	if err := glfw.Init(); err != nil {
		swapvk.Fatal(err, func() { logs.Close() })
	}
	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())
	if err := vk.Init(); err != nil {
		swapvk.Fatal(err, glfw.Terminate, func() { logs.Close() })
	}

	display, err := swapvk.NewDisplay(u.Window)
	if err != nil {
		swapvk.Fatal(err, glfw.Terminate, func() { logs.Close() })
	}
	core, err := swapvk.NewCore(u, display, nil, logs)
	if err != nil {
		swapvk.Fatal(err, display.Destroy, glfw.Terminate, func() { logs.Close() })
	}

	driver, err := frame.NewDriver(core.Backend(), display, core.Pipelines(), core.Content(), u.DriverConfig(logs.Info))
	if err != nil {
		swapvk.Fatal(err, core.Destroy, display.Destroy, glfw.Terminate, func() { logs.Close() })
	}
	display.OnResize(driver.NotifyResized)

	// A signal only asks the loop to stop; everything is released here on
	// the main thread once Run returns.
	gate := newCloseGate(display.RequestClose)
	closer.Bind(gate.Interrupt)
	defer closer.Close()

	log.Printf("swapvk: %dx%d, %d frames in flight", u.Window.Width, u.Window.Height, u.Frames.InFlight)
	runErr := driver.Run()
	gate.Release(func() {
		if err := driver.Shutdown(); err != nil {
			logs.Error.Println(err)
		}
		stats := driver.Stats()
		logs.Info.Printf("%d frames, %d submitted, %d skipped, %d rebuilds, last frame %s",
			stats.Frames, stats.Submissions, stats.Skipped, stats.Rebuilds, stats.FrameTime)
		core.Destroy()
		display.Destroy()
		glfw.Terminate()
	})
	if runErr != nil {
		logs.Error.Println(runErr)
		logs.Close()
		closer.Fatalln(runErr)
	}
	logs.Close()
}

func applyFlags(u *swapvk.Usage) {
	if *width > 0 {
		u.Window.Width = *width
	}
	if *height > 0 {
		u.Window.Height = *height
	}
	if *frames > 0 {
		u.Frames.InFlight = *frames
	}
	if *debug {
		u.Validation = true
	}
	if *logDir != "" {
		u.LogDir = *logDir
	}
}
