package swapvk

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andewx/swapvk/frame"
)

func TestParseUsageDefaults(t *testing.T) {
	u, err := ParseUsage(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultUsage(), u)
	assert.Equal(t, frame.DefaultFramesInFlight, u.Frames.InFlight)
	assert.Zero(t, u.Frames.FenceTimeout)
	assert.Equal(t, frame.NoTimeout, u.DriverConfig(nil).FenceTimeout, "fence waits are unbounded by default")
}

func TestParseUsageOverrides(t *testing.T) {
	data := []byte(`
name: demo
window:
  width: 640
  height: 480
frames:
  in_flight: 3
  fence_timeout: 250ms
  handoff_retired: true
present:
  modes: [immediate, fifo]
validation: true
clear_color: [1, 0, 0, 1]
device_extensions: [VK_KHR_maintenance1]
`)
	u, err := ParseUsage(data)
	require.NoError(t, err)

	assert.Equal(t, "demo", u.Name)
	assert.Equal(t, 640, u.Window.Width)
	assert.Equal(t, 480, u.Window.Height)
	// Untouched fields keep their defaults.
	assert.Equal(t, "swapvk", u.Window.Title)
	assert.True(t, u.Window.Resizable)
	assert.Equal(t, []string{"b8g8r8a8_srgb"}, u.Present.Formats)
	assert.Equal(t, "shaders/vert.spv", u.Shaders.Vertex)

	assert.Equal(t, 3, u.Frames.InFlight)
	assert.Equal(t, 250*time.Millisecond, u.Frames.FenceTimeout)
	assert.True(t, u.Frames.HandoffRetired)
	assert.Equal(t, []string{"immediate", "fifo"}, u.Present.Modes)
	assert.True(t, u.Validation)
	assert.Equal(t, [4]float32{1, 0, 0, 1}, u.ClearColor)
	assert.Equal(t, []string{"VK_KHR_maintenance1"}, u.DeviceExtensions)
}

func TestParseUsageInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"zero frames", "frames: {in_flight: 0}", "in_flight"},
		{"negative timeout", "frames: {fence_timeout: -1s}", "fence_timeout"},
		{"unknown mode", "present: {modes: [vsync]}", "present mode"},
		{"unknown format", "present: {formats: [rgb565]}", "surface format"},
		{"negative size", "window: {width: -1}", "window size"},
		{"missing shader", "shaders: {vertex: ''}", "shaders"},
		{"bad yaml", "frames: [", "decode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseUsage([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadUsage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: from-file\n"), 0644))

	u, err := LoadUsage(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", u.Name)

	_, err = LoadUsage(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestUsagePreferences(t *testing.T) {
	srgb := frame.SurfaceFormat{Format: frame.FormatB8g8r8a8Srgb, ColorSpace: frame.ColorSpaceSrgbNonlinear}
	unorm := frame.SurfaceFormat{Format: frame.FormatR8g8b8a8Unorm, ColorSpace: frame.ColorSpaceSrgbNonlinear}

	tests := []struct {
		name    string
		present PresentUsage
		want    frame.Preferences
	}{
		{
			name:    "defaults",
			present: DefaultUsage().Present,
			want:    frame.DefaultPreferences(),
		},
		{
			name:    "ordered",
			present: PresentUsage{Modes: []string{"fifo_relaxed", "fifo"}, Formats: []string{"R8G8B8A8_UNORM", "b8g8r8a8_srgb"}},
			want: frame.Preferences{
				Formats:      []frame.SurfaceFormat{unorm, srgb},
				PresentModes: []frame.PresentMode{frame.PresentModeFifoRelaxed, frame.PresentModeFifo},
			},
		},
		{
			name:    "empty falls back",
			present: PresentUsage{},
			want:    frame.DefaultPreferences(),
		},
		{
			name:    "modes only",
			present: PresentUsage{Modes: []string{"immediate"}},
			want:    frame.Preferences{PresentModes: []frame.PresentMode{frame.PresentModeImmediate}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := DefaultUsage()
			u.Present = tt.present
			assert.Equal(t, tt.want, u.Preferences())
		})
	}
}

func TestDriverConfig(t *testing.T) {
	u := DefaultUsage()
	u.Frames.InFlight = 3
	u.Frames.HandoffRetired = true
	logs := NewStdLoggers()

	cfg := u.DriverConfig(logs.Info)
	assert.Equal(t, 3, cfg.FramesInFlight)
	assert.Equal(t, frame.NoTimeout, cfg.FenceTimeout)

	u.Frames.FenceTimeout = 2 * time.Second
	assert.Equal(t, 2*time.Second, u.DriverConfig(nil).FenceTimeout)
	assert.True(t, cfg.HandoffRetired)
	assert.Equal(t, frame.DefaultPreferences(), cfg.Preferences)
	assert.Same(t, logs.Info, cfg.Logger)
}

func TestInstanceNames(t *testing.T) {
	u := DefaultUsage()
	u.Layers = []string{"VK_LAYER_LUNARG_monitor"}

	extensions, layers := u.instanceNames([]string{"VK_KHR_surface"})
	assert.Equal(t, []string{"VK_KHR_surface"}, extensions.Required)
	assert.NotContains(t, extensions.Wanted, DebugReportExtension)
	assert.Equal(t, []string{"VK_LAYER_LUNARG_monitor"}, layers.Wanted)

	u.Validation = true
	extensions, layers = u.instanceNames([]string{"VK_KHR_surface"})
	assert.Contains(t, extensions.Wanted, DebugReportExtension)
	assert.Contains(t, layers.Wanted, ValidationLayer)
	assert.Empty(t, layers.Required)

	devices := u.deviceNames()
	assert.Equal(t, []string{SwapchainExtension}, devices.Required)
}
