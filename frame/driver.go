package frame

import (
	"io"
	"log"
	"sync/atomic"
	"time"

	"github.com/loov/hrtime"
	"github.com/pkg/errors"
)

// State is the state of the frame driver.
type State int

const (
	StateRunning State = iota
	StateAwaitingSurface
	StateRebuilding
	StateShuttingDown
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateAwaitingSurface:
		return "awaiting_surface"
	case StateRebuilding:
		return "rebuilding"
	case StateShuttingDown:
		return "shutting_down"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// Config tunes the driver.
type Config struct {
	// FramesInFlight is how many frames the CPU may record ahead of the GPU.
	FramesInFlight int
	// FenceTimeout bounds every fence wait. Zero means NoTimeout.
	FenceTimeout time.Duration
	Preferences  Preferences
	// HandoffRetired passes the previous chain to its successor and destroys
	// it only once the successor exists.
	HandoffRetired bool
	Logger         *log.Logger
}

const DefaultFramesInFlight = 2

// Stats counts what the driver did so far.
type Stats struct {
	Frames      uint64 // frame iterations, including ones skipped on acquire
	Submissions uint64
	Skipped     uint64 // iterations that ended at an out-of-date acquire
	Rebuilds    uint64
	ImageWaits  uint64 // waits on the previous owner of an acquired image
	FrameTime   time.Duration
}

// Driver owns the swapchain generation, its pipeline resources and command
// sequences, and the frame slots, and advances them one Tick at a time.
// A Driver is used from a single goroutine; only NotifyResized may be called
// from elsewhere.
type Driver struct {
	cfg      Config
	backend  Backend
	window   Window
	pipeline PipelineFactory
	content  ContentProvider
	log      *log.Logger

	state State
	sync  *SyncSet
	image ImageTable

	gen      *Generation
	pipe     Pipeline
	commands *CommandSet
	seq      uint64

	resized atomic.Bool
	stats   Stats
}

// NewDriver creates the frame slots and the first generation. A window that
// starts with a zero-area framebuffer leaves the driver AwaitingSurface.
func NewDriver(b Backend, w Window, pipeline PipelineFactory, content ContentProvider, cfg Config) (d *Driver, err error) {
	if cfg.FramesInFlight == 0 {
		cfg.FramesInFlight = DefaultFramesInFlight
	}
	if cfg.FenceTimeout == 0 {
		cfg.FenceTimeout = NoTimeout
	}
	if cfg.Preferences.Formats == nil && cfg.Preferences.PresentModes == nil {
		cfg.Preferences = DefaultPreferences()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	d = &Driver{
		cfg:      cfg,
		backend:  b,
		window:   w,
		pipeline: pipeline,
		content:  content,
		log:      logger,
	}

	d.sync, err = NewSyncSet(b, cfg.FramesInFlight)
	if err != nil {
		return nil, errors.Wrap(err, "create frame slots")
	}
	defer func() {
		if err != nil {
			d.sync.Destroy()
		}
	}()

	extent := d.windowExtent()
	if extent.IsZero() {
		d.log.Printf("frame: surface is %s at startup, waiting for it", extent)
		d.state = StateAwaitingSurface
		return d, nil
	}
	if err = d.build(extent, nil); err != nil {
		return nil, errors.Wrap(err, "create initial swapchain")
	}
	d.state = StateRunning
	return d, nil
}

func (d *Driver) State() State {
	return d.state
}

// Cursor is the index of the frame slot the next iteration uses.
func (d *Driver) Cursor() int {
	return d.sync.Cursor()
}

func (d *Driver) Stats() Stats {
	return d.stats
}

// Generation returns the live generation, nil while none exists.
func (d *Driver) Generation() *Generation {
	return d.gen
}

// NotifyResized flags the surface as changed. The driver rebuilds after the
// next presentation.
func (d *Driver) NotifyResized() {
	d.resized.Store(true)
}

// RequestRebuild forces a rebuild on the next Tick.
func (d *Driver) RequestRebuild() {
	if d.state == StateRunning {
		d.transition(StateRebuilding, "rebuild requested")
	}
}

// Run ticks until the window asks to close and then shuts down. Any error
// it returns is fatal; the driver has already been shut down.
func (d *Driver) Run() error {
	for !d.window.ShouldClose() {
		if d.state != StateAwaitingSurface {
			d.window.PollEvents()
		}
		if err := d.Tick(); err != nil {
			if serr := d.Shutdown(); serr != nil {
				d.log.Printf("frame: shutdown after failure: %v", serr)
			}
			return err
		}
	}
	return d.Shutdown()
}

// Tick performs the work of the current state once.
func (d *Driver) Tick() error {
	switch d.state {
	case StateRunning:
		return d.drawFrame()
	case StateRebuilding:
		return d.rebuild()
	case StateAwaitingSurface:
		d.window.WaitEvents()
		if !d.windowExtent().IsZero() {
			d.transition(StateRebuilding, "surface restored")
		}
		return nil
	}
	return ErrStopped
}

func (d *Driver) drawFrame() error {
	start := hrtime.Now()
	slot := d.sync.Current()

	if err := slot.InFlight.Wait(d.cfg.FenceTimeout); err != nil {
		return errors.Wrapf(err, "wait frame slot %d", d.sync.Cursor())
	}

	index, status, err := d.gen.Swapchain().AcquireNextImage(slot.ImageAvailable)
	if err != nil {
		return errors.Wrap(err, "acquire swapchain image")
	}
	if status == StatusOutOfDate {
		d.stats.Frames++
		d.stats.Skipped++
		d.sync.Advance()
		d.gen.Invalidate()
		d.transition(StateRebuilding, "acquire reported out of date")
		return nil
	}

	if prior := d.image.Owner(index); prior != nil && prior != slot.InFlight {
		signaled, err := prior.Signaled()
		if err != nil {
			return errors.Wrapf(err, "fence status for image %d", index)
		}
		if !signaled {
			d.stats.ImageWaits++
			if err := prior.Wait(d.cfg.FenceTimeout); err != nil {
				return errors.Wrapf(err, "wait previous frame on image %d", index)
			}
		}
	}
	d.image.Claim(index, slot.InFlight)

	if err := slot.InFlight.Reset(); err != nil {
		return errors.Wrapf(err, "reset frame slot %d", d.sync.Cursor())
	}
	err = d.backend.Submit(d.commands.Command(index), slot.ImageAvailable, slot.RenderFinished, slot.InFlight)
	if err != nil {
		return errors.Wrapf(err, "submit image %d", index)
	}
	d.stats.Submissions++

	status, err = d.gen.Swapchain().Present(index, slot.RenderFinished)
	if err != nil {
		return errors.Wrapf(err, "present image %d", index)
	}
	d.stats.Frames++
	d.sync.Advance()
	d.stats.FrameTime = hrtime.Since(start)

	switch {
	case status != StatusSuccess:
		d.gen.Invalidate()
		d.transition(StateRebuilding, "present reported "+status.String())
	case d.resized.Load():
		d.transition(StateRebuilding, "window resized")
	}
	return nil
}

func (d *Driver) rebuild() error {
	extent := d.windowExtent()
	if extent.IsZero() {
		d.transition(StateAwaitingSurface, "surface is "+extent.String())
		return nil
	}
	// The rebuild uses the size observed now, so resizes reported before
	// this point are covered.
	d.resized.Store(false)

	if err := d.idle(); err != nil {
		return err
	}
	var previous *Generation
	if d.cfg.HandoffRetired && d.gen != nil {
		d.releaseDerived()
		d.gen.Retire()
		previous = d.gen
	} else {
		d.release()
	}
	d.gen = nil

	err := d.build(extent, previous)
	if previous != nil {
		previous.Destroy()
	}
	if err != nil {
		return errors.Wrapf(err, "rebuild swapchain at %s", extent)
	}
	d.stats.Rebuilds++
	d.log.Printf("frame: generation %d ready: %s, %d images, %s (last frame %s)",
		d.gen.Seq, d.gen.Extent, d.gen.Len(), d.gen.PresentMode, d.stats.FrameTime)
	d.transition(StateRunning, "rebuilt")
	return nil
}

// Shutdown drains the GPU and releases everything the driver owns, frame
// slots first.
func (d *Driver) Shutdown() error {
	if d.state == StateStopped {
		return nil
	}
	d.transition(StateShuttingDown, "shutdown")
	err := d.backend.WaitIdle()
	if err != nil {
		err = errors.Wrap(err, "wait idle before shutdown")
	}
	d.sync.Destroy()
	d.release()
	d.state = StateStopped
	return err
}

// idle is the barrier every destroy of generation-owned objects sits behind.
func (d *Driver) idle() error {
	if err := d.backend.WaitIdle(); err != nil {
		return errors.Wrap(err, "wait idle before rebuild")
	}
	ok, err := d.sync.Idle()
	if err != nil {
		return err
	}
	if !ok {
		return ErrGenerationBusy
	}
	return nil
}

// build creates a generation, its pipeline resources and its commands.
func (d *Driver) build(extent Extent, previous *Generation) (err error) {
	d.seq++
	gen, err := NewGeneration(d.backend, GenerationInfo{
		Desired:     extent,
		Previous:    previous,
		Seq:         d.seq,
		Preferences: d.cfg.Preferences,
	})
	if err != nil {
		return err
	}
	var s Scope
	defer s.ReleaseOnError(&err)
	s.Add(gen.Destroy)

	pipe, err := d.pipeline.BuildPipeline(gen)
	if err != nil {
		return errors.Wrap(err, "build pipeline resources")
	}
	s.Add(pipe.Destroy)

	commands, err := RecordCommands(d.backend, gen, pipe, d.content)
	if err != nil {
		return err
	}
	d.gen, d.pipe, d.commands = gen, pipe, commands
	d.image.Reset(gen.Len())
	s.Move()
	return nil
}

// releaseDerived destroys the commands and pipeline resources of the live generation.
func (d *Driver) releaseDerived() {
	if d.commands != nil {
		d.commands.Destroy()
		d.commands = nil
	}
	if d.pipe != nil {
		d.pipe.Destroy()
		d.pipe = nil
	}
}

func (d *Driver) release() {
	d.releaseDerived()
	if d.gen != nil {
		d.gen.Destroy()
		d.gen = nil
	}
	d.image.Reset(0)
}

func (d *Driver) transition(to State, reason string) {
	if d.state == to {
		return
	}
	d.log.Printf("frame: %s -> %s (%s)", d.state, to, reason)
	d.state = to
}

func (d *Driver) windowExtent() Extent {
	w, h := d.window.FramebufferSize()
	if w < 0 || h < 0 {
		return Extent{}
	}
	return Extent{Width: uint32(w), Height: uint32(h)}
}
