package swapvk

import (
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/andewx/swapvk/frame"
)

// Usage is the application configuration, read from YAML.
//
//	name: swapvk
//	window: {width: 1280, height: 720, title: swapvk, resizable: true}
//	frames: {in_flight: 2, fence_timeout: 0s, handoff_retired: false}
//	present: {modes: [mailbox, immediate], formats: [b8g8r8a8_srgb]}
//	shaders: {vertex: shaders/vert.spv, fragment: shaders/frag.spv}
//	validation: true
//	log_dir: logs
//	clear_color: [0.02, 0.02, 0.05, 1]
type Usage struct {
	Name               string       `yaml:"name"`
	Window             WindowUsage  `yaml:"window"`
	Frames             FrameUsage   `yaml:"frames"`
	Present            PresentUsage `yaml:"present"`
	Shaders            ShaderUsage  `yaml:"shaders"`
	Validation         bool         `yaml:"validation"`
	LogDir             string       `yaml:"log_dir"`
	ClearColor         [4]float32   `yaml:"clear_color"`
	InstanceExtensions []string     `yaml:"instance_extensions"`
	DeviceExtensions   []string     `yaml:"device_extensions"`
	Layers             []string     `yaml:"layers"`
}

type WindowUsage struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	Title     string `yaml:"title"`
	Resizable bool   `yaml:"resizable"`
}

// FrameUsage configures the frame driver. FenceTimeout bounds frame fence
// waits and an expired wait is treated as a hung GPU; zero waits forever.
type FrameUsage struct {
	InFlight       int           `yaml:"in_flight"`
	FenceTimeout   time.Duration `yaml:"fence_timeout"`
	HandoffRetired bool          `yaml:"handoff_retired"`
}

// PresentUsage lists present modes and surface formats by name, most
// preferred first.
type PresentUsage struct {
	Modes   []string `yaml:"modes"`
	Formats []string `yaml:"formats"`
}

type ShaderUsage struct {
	Vertex   string `yaml:"vertex"`
	Fragment string `yaml:"fragment"`
}

func DefaultUsage() *Usage {
	return &Usage{
		Name: "swapvk",
		Window: WindowUsage{
			Width:     1280,
			Height:    720,
			Title:     "swapvk",
			Resizable: true,
		},
		Frames: FrameUsage{
			InFlight: frame.DefaultFramesInFlight,
		},
		Present: PresentUsage{
			Modes:   []string{"mailbox"},
			Formats: []string{"b8g8r8a8_srgb"},
		},
		Shaders: ShaderUsage{
			Vertex:   "shaders/vert.spv",
			Fragment: "shaders/frag.spv",
		},
		ClearColor: [4]float32{0.02, 0.02, 0.05, 1},
	}
}

// LoadUsage reads path on top of DefaultUsage and validates the result.
func LoadUsage(path string) (*Usage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read usage")
	}
	u, err := ParseUsage(data)
	if err != nil {
		return nil, errors.Wrapf(err, "usage %s", path)
	}
	return u, nil
}

func ParseUsage(data []byte) (*Usage, error) {
	u := DefaultUsage()
	if err := yaml.Unmarshal(data, u); err != nil {
		return nil, errors.Wrap(err, "decode usage")
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

func (u *Usage) Validate() error {
	if u.Window.Width < 0 || u.Window.Height < 0 {
		return errors.Errorf("invalid window size %dx%d", u.Window.Width, u.Window.Height)
	}
	if u.Frames.InFlight < 1 {
		return errors.Errorf("frames.in_flight must be at least 1, got %d", u.Frames.InFlight)
	}
	if u.Frames.FenceTimeout < 0 {
		return errors.Errorf("negative frames.fence_timeout %s", u.Frames.FenceTimeout)
	}
	for _, m := range u.Present.Modes {
		if _, ok := frame.ParsePresentMode(m); !ok {
			return errors.Errorf("unknown present mode %q", m)
		}
	}
	for _, f := range u.Present.Formats {
		if _, ok := ParseFormat(f); !ok {
			return errors.Errorf("unknown surface format %q", f)
		}
	}
	if u.Shaders.Vertex == "" || u.Shaders.Fragment == "" {
		return errors.New("both shaders.vertex and shaders.fragment are required")
	}
	return nil
}

var formatNames = map[string]frame.Format{
	"b8g8r8a8_srgb":  frame.FormatB8g8r8a8Srgb,
	"b8g8r8a8_unorm": frame.FormatB8g8r8a8Unorm,
	"r8g8b8a8_srgb":  frame.FormatR8g8b8a8Srgb,
	"r8g8b8a8_unorm": frame.FormatR8g8b8a8Unorm,
}

// ParseFormat maps a lower-case format name such as "b8g8r8a8_srgb" to its format.
func ParseFormat(name string) (frame.Format, bool) {
	f, ok := formatNames[strings.ToLower(name)]
	return f, ok
}
