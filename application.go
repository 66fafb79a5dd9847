package swapvk

import (
	"log"
	"time"

	vk "github.com/vulkan-go/vulkan"

	"github.com/andewx/swapvk/frame"
)

var (
	DefaultVulkanAppVersion = vk.MakeVersion(1, 0, 0)
	DefaultVulkanAPIVersion = vk.MakeVersion(1, 1, 0)
)

const EngineName = "swapvk"

// Preferences converts the configured present modes and formats. Names were
// checked by Validate; unknown ones are skipped.
func (u *Usage) Preferences() frame.Preferences {
	var prefs frame.Preferences
	for _, name := range u.Present.Formats {
		if f, ok := ParseFormat(name); ok {
			prefs.Formats = append(prefs.Formats, frame.SurfaceFormat{
				Format:     f,
				ColorSpace: frame.ColorSpaceSrgbNonlinear,
			})
		}
	}
	for _, name := range u.Present.Modes {
		if m, ok := frame.ParsePresentMode(name); ok {
			prefs.PresentModes = append(prefs.PresentModes, m)
		}
	}
	if prefs.Formats == nil && prefs.PresentModes == nil {
		return frame.DefaultPreferences()
	}
	return prefs
}

// DriverConfig is the frame driver configuration for this usage.
func (u *Usage) DriverConfig(logger *log.Logger) frame.Config {
	return frame.Config{
		FramesInFlight: u.Frames.InFlight,
		FenceTimeout:   u.fenceTimeout(),
		Preferences:    u.Preferences(),
		HandoffRetired: u.Frames.HandoffRetired,
		Logger:         logger,
	}
}

func (u *Usage) fenceTimeout() time.Duration {
	if u.Frames.FenceTimeout == 0 {
		return frame.NoTimeout
	}
	return u.Frames.FenceTimeout
}

// instanceNames are the instance extensions and layers to ask for given what
// the window system requires.
func (u *Usage) instanceNames(windowExtensions []string) (extensions, layers NameSet) {
	extensions.Required = append(extensions.Required, windowExtensions...)
	extensions.Wanted = append(extensions.Wanted, u.InstanceExtensions...)
	extensions.Wanted = append(extensions.Wanted, platformInstanceExtensions()...)
	layers.Wanted = append(layers.Wanted, u.Layers...)
	if u.Validation {
		extensions.Wanted = append(extensions.Wanted, DebugReportExtension)
		layers.Wanted = append(layers.Wanted, ValidationLayer)
	}
	return extensions, layers
}

func (u *Usage) deviceNames() NameSet {
	return NameSet{
		Required: []string{SwapchainExtension},
		Wanted:   append(append([]string{}, u.DeviceExtensions...), platformDeviceExtensions()...),
	}
}
