package frame

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// fakeGPU is an in-memory Backend. Submitted work completes only when a
// fence is waited on or the device is idled, which makes frames stay in
// flight for as long as the driver lets them.
type fakeGPU struct {
	support SurfaceSupport

	events     []string
	violations []string

	fences     []*fakeFence
	chains     []*fakeChain
	semaphores int
	liveViews  int
	liveCmds   int

	// inFlight maps an image of the live chain to the fence of its last submission.
	inFlight map[int]*fakeFence
	submits  []*fakeCmd

	acquires   int
	presents   int
	acquireAt  map[int]Status // acquire call number (1-based) to status
	presentAt  map[int]Status
	stuck      bool // WaitIdle leaves fences unsignaled
	failChain  bool
	fenceWaits int
}

func newFakeGPU(minImages uint32) *fakeGPU {
	return &fakeGPU{
		support: SurfaceSupport{
			Capabilities: SurfaceCapabilities{
				MinImageCount:  minImages,
				MaxImageCount:  8,
				CurrentExtent:  Extent{Width: UndefinedExtent, Height: UndefinedExtent},
				MinImageExtent: Extent{Width: 1, Height: 1},
				MaxImageExtent: Extent{Width: 4096, Height: 4096},
			},
			Formats: []SurfaceFormat{
				{Format: FormatB8g8r8a8Unorm, ColorSpace: ColorSpaceSrgbNonlinear},
				{Format: FormatB8g8r8a8Srgb, ColorSpace: ColorSpaceSrgbNonlinear},
			},
			PresentModes: []PresentMode{PresentModeFifo, PresentModeMailbox},
		},
		inFlight:  map[int]*fakeFence{},
		acquireAt: map[int]Status{},
		presentAt: map[int]Status{},
	}
}

func (g *fakeGPU) record(format string, args ...interface{}) {
	g.events = append(g.events, fmt.Sprintf(format, args...))
}

func (g *fakeGPU) busy() bool {
	for _, f := range g.fences {
		if !f.destroyed && !f.signaled {
			return true
		}
	}
	return false
}

func (g *fakeGPU) count(event string) int {
	n := 0
	for _, e := range g.events {
		if e == event {
			n++
		}
	}
	return n
}

func (g *fakeGPU) index(event string, from int) int {
	for i := from; i < len(g.events); i++ {
		if g.events[i] == event {
			return i
		}
	}
	return -1
}

func (g *fakeGPU) SurfaceSupport() (SurfaceSupport, error) {
	return g.support, nil
}

func (g *fakeGPU) CreateSwapchain(info SwapchainInfo) (Swapchain, error) {
	if g.failChain {
		return nil, errors.New("fake: out of memory")
	}
	c := &fakeChain{gpu: g, id: len(g.chains), info: info}
	if info.Old != nil {
		old := info.Old.(*fakeChain)
		if old.destroyed {
			g.violations = append(g.violations, "old chain handed over after destroy")
		}
		c.replaced = old.id
	}
	g.chains = append(g.chains, c)
	g.inFlight = map[int]*fakeFence{}
	g.record("create-chain")
	return c, nil
}

func (g *fakeGPU) CreateImageView(image Image, format Format) (ImageView, error) {
	g.liveViews++
	return fakeView{image: image.(fakeImage)}, nil
}

func (g *fakeGPU) DestroyImageView(view ImageView) {
	if g.busy() {
		g.violations = append(g.violations, "image view destroyed while a fence is unsignaled")
	}
	g.liveViews--
	g.record("destroy-view")
}

func (g *fakeGPU) CreateFence(signaled bool) (Fence, error) {
	f := &fakeFence{gpu: g, id: len(g.fences), signaled: signaled}
	g.fences = append(g.fences, f)
	return f, nil
}

func (g *fakeGPU) CreateSemaphore() (Semaphore, error) {
	g.semaphores++
	return &fakeSemaphore{gpu: g}, nil
}

func (g *fakeGPU) AllocateCommandBuffers(count int) ([]CommandBuffer, error) {
	cmds := make([]CommandBuffer, count)
	for i := range cmds {
		cmds[i] = &fakeCmd{image: -1}
	}
	g.liveCmds += count
	return cmds, nil
}

func (g *fakeGPU) FreeCommandBuffers(cmds []CommandBuffer) {
	if g.busy() {
		g.violations = append(g.violations, "command buffers freed while a fence is unsignaled")
	}
	g.liveCmds -= len(cmds)
	g.record("free-commands")
}

func (g *fakeGPU) Submit(cmd CommandBuffer, wait, signal Semaphore, fence Fence) error {
	c := cmd.(*fakeCmd)
	f := fence.(*fakeFence)
	if f.signaled {
		g.violations = append(g.violations, "submitted with a signaled fence")
	}
	// A slot resubmitting to the image it last wrote has already waited on
	// and reset its own fence.
	if prev := g.inFlight[c.image]; prev != nil && prev != f && !prev.signaled {
		g.violations = append(g.violations, fmt.Sprintf("image %d written by two frames in flight", c.image))
	}
	g.inFlight[c.image] = f
	g.submits = append(g.submits, c)
	g.record("submit")
	return nil
}

func (g *fakeGPU) WaitIdle() error {
	g.record("idle")
	if g.stuck {
		return nil
	}
	for _, f := range g.fences {
		f.signaled = true
	}
	return nil
}

type fakeFence struct {
	gpu       *fakeGPU
	id        int
	signaled  bool
	destroyed bool
}

func (f *fakeFence) Wait(timeout time.Duration) error {
	if f.destroyed {
		return errors.New("fake: wait on destroyed fence")
	}
	if !f.signaled {
		f.gpu.fenceWaits++
		f.signaled = true
	}
	return nil
}

func (f *fakeFence) Reset() error {
	f.signaled = false
	return nil
}

func (f *fakeFence) Signaled() (bool, error) {
	return f.signaled, nil
}

func (f *fakeFence) Destroy() {
	if !f.signaled {
		f.gpu.violations = append(f.gpu.violations, fmt.Sprintf("fence %d destroyed while unsignaled", f.id))
	}
	f.destroyed = true
	f.gpu.record("destroy-fence")
}

type fakeSemaphore struct {
	gpu *fakeGPU
}

func (s *fakeSemaphore) Destroy() {
	s.gpu.semaphores--
}

type fakeImage struct {
	chain int
	index int
}

type fakeView struct {
	image fakeImage
}

type fakeCmd struct {
	image int
	seq   uint64
}

type fakeChain struct {
	gpu       *fakeGPU
	id        int
	info      SwapchainInfo
	next      int
	replaced  int
	destroyed bool
}

func (c *fakeChain) Images() ([]Image, error) {
	images := make([]Image, c.info.ImageCount)
	for i := range images {
		images[i] = fakeImage{chain: c.id, index: i}
	}
	return images, nil
}

func (c *fakeChain) AcquireNextImage(signal Semaphore) (uint32, Status, error) {
	c.gpu.acquires++
	if st, ok := c.gpu.acquireAt[c.gpu.acquires]; ok && st == StatusOutOfDate {
		return 0, st, nil
	}
	index := uint32(c.next % int(c.info.ImageCount))
	c.next++
	return index, c.gpu.acquireAt[c.gpu.acquires], nil
}

func (c *fakeChain) Present(index uint32, wait Semaphore) (Status, error) {
	c.gpu.presents++
	c.gpu.record("present")
	return c.gpu.presentAt[c.gpu.presents], nil
}

func (c *fakeChain) Destroy() {
	if c.gpu.busy() {
		c.gpu.violations = append(c.gpu.violations, "chain destroyed while a fence is unsignaled")
	}
	c.destroyed = true
	c.gpu.record("destroy-chain")
}

type fakePipeline struct {
	gpu *fakeGPU
	gen *Generation
}

func (p *fakePipeline) Framebuffer(index int) Framebuffer {
	return fmt.Sprintf("fb-%d-%d", p.gen.Seq, index)
}

func (p *fakePipeline) Destroy() {
	p.gpu.record("destroy-pipeline")
}

type fakePipelines struct {
	gpu   *fakeGPU
	built []Extent
	fail  bool
}

func (f *fakePipelines) BuildPipeline(gen *Generation) (Pipeline, error) {
	if f.fail {
		return nil, errors.New("fake: pipeline build failed")
	}
	f.built = append(f.built, gen.Extent)
	return &fakePipeline{gpu: f.gpu, gen: gen}, nil
}

type fakeContent struct {
	recorded int
}

func (c *fakeContent) RecordCommands(cmd CommandBuffer, target RenderTarget) error {
	fc := cmd.(*fakeCmd)
	fc.image = target.Index
	fc.seq = target.Generation
	c.recorded++
	return nil
}

// fakeWindow reports the sizes queued in sizes, one per query; the last one
// sticks.
type fakeWindow struct {
	sizes      []Extent
	queries    int
	polls      int
	waits      int
	closeAfter int // ShouldClose turns true after this many calls; 0 never
	closeCalls int
}

func newFakeWindow(w, h uint32) *fakeWindow {
	return &fakeWindow{sizes: []Extent{{Width: w, Height: h}}}
}

func (w *fakeWindow) resize(sizes ...Extent) {
	w.sizes = sizes
}

func (w *fakeWindow) FramebufferSize() (int, int) {
	w.queries++
	e := w.sizes[0]
	if len(w.sizes) > 1 {
		w.sizes = w.sizes[1:]
	}
	return int(e.Width), int(e.Height)
}

func (w *fakeWindow) PollEvents() { w.polls++ }

func (w *fakeWindow) WaitEvents() { w.waits++ }

func (w *fakeWindow) ShouldClose() bool {
	w.closeCalls++
	return w.closeAfter > 0 && w.closeCalls > w.closeAfter
}

type fakeSetup struct {
	gpu       *fakeGPU
	window    *fakeWindow
	pipelines *fakePipelines
	content   *fakeContent
}

func newFakeSetup(minImages uint32, w, h uint32) *fakeSetup {
	gpu := newFakeGPU(minImages)
	return &fakeSetup{
		gpu:       gpu,
		window:    newFakeWindow(w, h),
		pipelines: &fakePipelines{gpu: gpu},
		content:   &fakeContent{},
	}
}

func (s *fakeSetup) driver(cfg Config) (*Driver, error) {
	return NewDriver(s.gpu, s.window, s.pipelines, s.content, cfg)
}
