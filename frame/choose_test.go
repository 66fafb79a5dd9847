package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChooseSurfaceFormat(t *testing.T) {
	srgb := SurfaceFormat{Format: FormatB8g8r8a8Srgb, ColorSpace: ColorSpaceSrgbNonlinear}
	unorm := SurfaceFormat{Format: FormatB8g8r8a8Unorm, ColorSpace: ColorSpaceSrgbNonlinear}
	rgba := SurfaceFormat{Format: FormatR8g8b8a8Unorm, ColorSpace: ColorSpaceSrgbNonlinear}
	undefined := SurfaceFormat{Format: FormatUndefined, ColorSpace: ColorSpaceSrgbNonlinear}

	tests := []struct {
		name      string
		available []SurfaceFormat
		preferred []SurfaceFormat
		want      SurfaceFormat
	}{
		{"preferred present", []SurfaceFormat{rgba, srgb}, []SurfaceFormat{srgb}, srgb},
		{"first preference wins", []SurfaceFormat{unorm, srgb}, []SurfaceFormat{srgb, unorm}, srgb},
		{"fallback to first supported", []SurfaceFormat{rgba, unorm}, []SurfaceFormat{srgb}, rgba},
		{"no preferences", []SurfaceFormat{unorm}, nil, unorm},
		{"lone undefined takes preference", []SurfaceFormat{undefined}, []SurfaceFormat{srgb}, srgb},
		{"lone undefined without preference", []SurfaceFormat{undefined}, nil, unorm},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ChooseSurfaceFormat(tt.available, tt.preferred)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("empty", func(t *testing.T) {
		_, err := ChooseSurfaceFormat(nil, []SurfaceFormat{srgb})
		assert.ErrorIs(t, err, ErrNoCompatibleFormat)
	})
}

func TestChoosePresentMode(t *testing.T) {
	tests := []struct {
		name      string
		available []PresentMode
		preferred []PresentMode
		want      PresentMode
	}{
		{"mailbox preferred", []PresentMode{PresentModeFifo, PresentModeMailbox}, []PresentMode{PresentModeMailbox}, PresentModeMailbox},
		{"immediate fallback", []PresentMode{PresentModeFifo, PresentModeImmediate}, []PresentMode{PresentModeMailbox}, PresentModeImmediate},
		{"fifo fallback", []PresentMode{PresentModeFifo}, []PresentMode{PresentModeMailbox}, PresentModeFifo},
		{"fifo even when unlisted", []PresentMode{PresentModeFifoRelaxed}, nil, PresentModeFifo},
		{"second preference", []PresentMode{PresentModeFifo, PresentModeFifoRelaxed}, []PresentMode{PresentModeMailbox, PresentModeFifoRelaxed}, PresentModeFifoRelaxed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ChoosePresentMode(tt.available, tt.preferred)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("empty", func(t *testing.T) {
		_, err := ChoosePresentMode(nil, nil)
		assert.ErrorIs(t, err, ErrNoCompatibleMode)
	})
}

func TestChooseExtent(t *testing.T) {
	bounded := SurfaceCapabilities{
		CurrentExtent:  Extent{Width: UndefinedExtent, Height: UndefinedExtent},
		MinImageExtent: Extent{Width: 16, Height: 16},
		MaxImageExtent: Extent{Width: 1920, Height: 1080},
	}
	fixed := bounded
	fixed.CurrentExtent = Extent{Width: 800, Height: 600}

	tests := []struct {
		name    string
		caps    SurfaceCapabilities
		desired Extent
		want    Extent
	}{
		{"current extent wins", fixed, Extent{Width: 1280, Height: 720}, Extent{Width: 800, Height: 600}},
		{"desired inside bounds", bounded, Extent{Width: 1280, Height: 720}, Extent{Width: 1280, Height: 720}},
		{"clamped to max", bounded, Extent{Width: 4000, Height: 3000}, Extent{Width: 1920, Height: 1080}},
		{"clamped to min", bounded, Extent{Width: 1, Height: 2}, Extent{Width: 16, Height: 16}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ChooseExtent(tt.caps, tt.desired))
		})
	}
}

func TestChooseImageCount(t *testing.T) {
	tests := []struct {
		name     string
		min, max uint32
		want     uint32
	}{
		{"one over minimum", 2, 8, 3},
		{"unbounded", 3, 0, 4},
		{"capped at maximum", 3, 3, 3},
		{"zero minimum", 0, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caps := SurfaceCapabilities{MinImageCount: tt.min, MaxImageCount: tt.max}
			assert.Equal(t, tt.want, ChooseImageCount(caps))
		})
	}
}

func TestParsePresentMode(t *testing.T) {
	for _, m := range []PresentMode{PresentModeImmediate, PresentModeMailbox, PresentModeFifo, PresentModeFifoRelaxed} {
		got, ok := ParsePresentMode(m.String())
		assert.True(t, ok, m.String())
		assert.Equal(t, m, got)
	}
	got, ok := ParsePresentMode("vsync")
	assert.False(t, ok)
	assert.Equal(t, PresentModeFifo, got)
}

func TestExtent(t *testing.T) {
	assert.True(t, Extent{Width: 0, Height: 600}.IsZero())
	assert.True(t, Extent{Width: 800, Height: 0}.IsZero())
	assert.False(t, Extent{Width: 1, Height: 1}.IsZero())
	assert.Equal(t, "1280x720", Extent{Width: 1280, Height: 720}.String())
	assert.InDelta(t, 16.0/9.0, Extent{Width: 1280, Height: 720}.Aspect(), 1e-6)
	assert.Equal(t, float32(1), Extent{Width: 1280}.Aspect())
}
