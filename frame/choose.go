package frame

// Preferences orders the surface formats and present modes a generation tries
// first.
type Preferences struct {
	Formats      []SurfaceFormat
	PresentModes []PresentMode
}

// DefaultPreferences prefers sRGB BGRA8 and the low-latency mailbox mode.
func DefaultPreferences() Preferences {
	return Preferences{
		Formats: []SurfaceFormat{
			{Format: FormatB8g8r8a8Srgb, ColorSpace: ColorSpaceSrgbNonlinear},
		},
		PresentModes: []PresentMode{PresentModeMailbox},
	}
}

// ChooseSurfaceFormat returns the first preferred pair the surface supports,
// otherwise the first supported format.
func ChooseSurfaceFormat(available []SurfaceFormat, preferred []SurfaceFormat) (SurfaceFormat, error) {
	if len(available) == 0 {
		return SurfaceFormat{}, ErrNoCompatibleFormat
	}
	for _, want := range preferred {
		for _, f := range available {
			if f == want {
				return f, nil
			}
		}
	}
	// A lone undefined entry means the surface has no preference at all.
	if len(available) == 1 && available[0].Format == FormatUndefined {
		f := available[0]
		f.Format = FormatB8g8r8a8Unorm
		if len(preferred) > 0 {
			f = preferred[0]
		}
		return f, nil
	}
	return available[0], nil
}

// ChoosePresentMode returns the first preferred mode the surface supports and
// otherwise falls back to immediate, then FIFO.
func ChoosePresentMode(available []PresentMode, preferred []PresentMode) (PresentMode, error) {
	if len(available) == 0 {
		return 0, ErrNoCompatibleMode
	}
	has := func(m PresentMode) bool {
		for _, a := range available {
			if a == m {
				return true
			}
		}
		return false
	}
	for _, m := range preferred {
		if has(m) {
			return m, nil
		}
	}
	if has(PresentModeImmediate) {
		return PresentModeImmediate, nil
	}
	// FIFO is the one mode every conforming surface supports.
	return PresentModeFifo, nil
}

// ChooseExtent uses the surface's current extent when it reports one and
// otherwise clamps desired into the surface bounds.
func ChooseExtent(caps SurfaceCapabilities, desired Extent) Extent {
	if caps.CurrentExtent.Width != UndefinedExtent {
		return caps.CurrentExtent
	}
	return Extent{
		Width:  clamp(desired.Width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clamp(desired.Height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

// ChooseImageCount requests one image more than the surface minimum, capped at
// the surface maximum when there is one.
func ChooseImageCount(caps SurfaceCapabilities) uint32 {
	count := caps.MinImageCount + 1
	if count < 1 {
		count = 1
	}
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

func clamp(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if hi > 0 && v > hi {
		return hi
	}
	return v
}
