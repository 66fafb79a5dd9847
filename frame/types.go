// Package frame drives the per-frame render loop of a presentation pipeline:
// frames in flight, swapchain generations and their rebuild when the surface
// goes out of date. Native graphics objects are reached through the Backend,
// Swapchain, Fence and Semaphore interfaces so the state machine itself never
// touches a graphics API directly.
package frame

import (
	"fmt"
	"math"
	"time"
)

// Opaque native handles. A Backend hands them out and is the only party that
// looks inside them.
type (
	Image         interface{}
	ImageView     interface{}
	Framebuffer   interface{}
	CommandBuffer interface{}
)

// Format mirrors the native image format enumeration.
type Format int32

const (
	FormatUndefined     Format = 0
	FormatR8g8b8a8Unorm Format = 37
	FormatR8g8b8a8Srgb  Format = 43
	FormatB8g8r8a8Unorm Format = 44
	FormatB8g8r8a8Srgb  Format = 50
)

// ColorSpace mirrors the native presentation color space enumeration.
type ColorSpace int32

const ColorSpaceSrgbNonlinear ColorSpace = 0

// SurfaceFormat is a (format, color space) pair supported by a surface.
type SurfaceFormat struct {
	Format     Format
	ColorSpace ColorSpace
}

// PresentMode mirrors the native presentation mode enumeration.
type PresentMode int32

const (
	PresentModeImmediate   PresentMode = 0
	PresentModeMailbox     PresentMode = 1
	PresentModeFifo        PresentMode = 2
	PresentModeFifoRelaxed PresentMode = 3
)

func (m PresentMode) String() string {
	switch m {
	case PresentModeImmediate:
		return "immediate"
	case PresentModeMailbox:
		return "mailbox"
	case PresentModeFifo:
		return "fifo"
	case PresentModeFifoRelaxed:
		return "fifo_relaxed"
	}
	return fmt.Sprintf("present_mode(%d)", int32(m))
}

// ParsePresentMode is the inverse of PresentMode.String.
func ParsePresentMode(s string) (PresentMode, bool) {
	for _, m := range []PresentMode{PresentModeImmediate, PresentModeMailbox, PresentModeFifo, PresentModeFifoRelaxed} {
		if m.String() == s {
			return m, true
		}
	}
	return PresentModeFifo, false
}

// UndefinedExtent is reported as the current surface width when the
// swapchain, not the surface, decides the extent.
const UndefinedExtent = math.MaxUint32

// Extent is a size in pixels.
type Extent struct {
	Width  uint32
	Height uint32
}

func (e Extent) IsZero() bool {
	return e.Width == 0 || e.Height == 0
}

func (e Extent) Aspect() float32 {
	if e.Height == 0 {
		return 1
	}
	return float32(e.Width) / float32(e.Height)
}

func (e Extent) String() string {
	return fmt.Sprintf("%dx%d", e.Width, e.Height)
}

// SurfaceCapabilities are the surface limits reported by the presentation backend.
type SurfaceCapabilities struct {
	MinImageCount  uint32
	MaxImageCount  uint32 // 0 means no limit
	CurrentExtent  Extent
	MinImageExtent Extent
	MaxImageExtent Extent
}

// SurfaceSupport is everything the capability provider knows about the surface,
// already filtered for the selected device.
type SurfaceSupport struct {
	Capabilities SurfaceCapabilities
	Formats      []SurfaceFormat
	PresentModes []PresentMode
}

// Status is the recognized outcome of an acquire or present request.
type Status int

const (
	StatusSuccess Status = iota
	StatusSuboptimal
	StatusOutOfDate
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusSuboptimal:
		return "suboptimal"
	case StatusOutOfDate:
		return "out_of_date"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// NoTimeout makes a fence wait block until the fence signals.
const NoTimeout time.Duration = math.MaxInt64

// RenderTarget is everything a ContentProvider needs to record the commands
// for one swapchain image.
type RenderTarget struct {
	Index       int
	Generation  uint64
	Image       Image
	View        ImageView
	Framebuffer Framebuffer
	Extent      Extent
	Format      Format
	Pipeline    Pipeline
}
