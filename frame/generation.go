package frame

import "github.com/pkg/errors"

// GenerationInfo are the inputs of NewGeneration.
type GenerationInfo struct {
	// Desired is the window framebuffer size, used when the surface lets the
	// swapchain pick its extent.
	Desired Extent
	// Previous is a retired generation whose chain the new one replaces, or nil.
	Previous    *Generation
	Seq         uint64
	Preferences Preferences
}

// Generation is one immutable swapchain: its images, one view per image, and
// the parameters it was created with. A rebuild never mutates a Generation;
// it destroys it and creates the next one.
type Generation struct {
	Seq         uint64
	Extent      Extent
	Format      SurfaceFormat
	PresentMode PresentMode
	Images      []Image
	Views       []ImageView

	chain Swapchain
	views Scope
	owned Scope
	valid bool
}

// NewGeneration creates a swapchain sized for the current surface together
// with a view for each of its images.
func NewGeneration(b Backend, info GenerationInfo) (gen *Generation, err error) {
	support, err := b.SurfaceSupport()
	if err != nil {
		return nil, errors.Wrap(err, "query surface support")
	}
	format, err := ChooseSurfaceFormat(support.Formats, info.Preferences.Formats)
	if err != nil {
		return nil, err
	}
	mode, err := ChoosePresentMode(support.PresentModes, info.Preferences.PresentModes)
	if err != nil {
		return nil, err
	}
	caps := support.Capabilities
	extent := ChooseExtent(caps, info.Desired)

	var old Swapchain
	if info.Previous != nil {
		old = info.Previous.chain
	}

	var owned, views Scope
	defer owned.ReleaseOnError(&err)
	defer views.ReleaseOnError(&err)

	chain, err := b.CreateSwapchain(SwapchainInfo{
		Format:      format,
		PresentMode: mode,
		Extent:      extent,
		ImageCount:  ChooseImageCount(caps),
		Old:         old,
	})
	if err != nil {
		return nil, errors.Wrapf(ErrCreationFailed, "%s %s: %v", extent, mode, err)
	}
	owned.Add(chain.Destroy)

	images, err := chain.Images()
	if err != nil {
		return nil, errors.Wrap(err, "get swapchain images")
	}
	if len(images) == 0 {
		return nil, errors.Wrap(ErrCreationFailed, "swapchain has no images")
	}
	imageViews := make([]ImageView, len(images))
	for i, img := range images {
		view, err := b.CreateImageView(img, format.Format)
		if err != nil {
			return nil, errors.Wrapf(err, "create image view %d", i)
		}
		views.Add(func() { b.DestroyImageView(view) })
		imageViews[i] = view
	}

	return &Generation{
		Seq:         info.Seq,
		Extent:      extent,
		Format:      format,
		PresentMode: mode,
		Images:      images,
		Views:       imageViews,
		chain:       chain,
		views:       views.Move(),
		owned:       owned.Move(),
		valid:       true,
	}, nil
}

func (g *Generation) Swapchain() Swapchain {
	return g.chain
}

// Len is the number of presentable images.
func (g *Generation) Len() int {
	return len(g.Images)
}

// Valid reports whether the generation can still be rendered to.
func (g *Generation) Valid() bool {
	return g != nil && g.valid
}

// Invalidate marks the generation obsolete without releasing anything.
func (g *Generation) Invalidate() {
	g.valid = false
}

// Retire releases the image views but keeps the chain object alive so it can
// be handed to its successor through GenerationInfo.Previous.
func (g *Generation) Retire() {
	g.valid = false
	g.views.Release()
	g.Views = nil
}

// Destroy releases the views and then the chain. The caller guarantees no
// submitted work still references the images.
func (g *Generation) Destroy() {
	g.Retire()
	g.owned.Release()
	g.Images = nil
	g.chain = nil
}
