package frame

import "github.com/pkg/errors"

var (
	ErrNoCompatibleFormat = errors.New("frame: surface reports no compatible format")
	ErrNoCompatibleMode   = errors.New("frame: surface reports no compatible present mode")
	ErrCreationFailed     = errors.New("frame: swapchain creation failed")

	// ErrFenceTimeout means a fence wait expired. Waits are unbounded by
	// default so this indicates a hung GPU.
	ErrFenceTimeout = errors.New("frame: fence wait timed out")
	// ErrGenerationBusy means a generation was about to be destroyed while a
	// frame fence was still unsignaled.
	ErrGenerationBusy = errors.New("frame: generation destroyed while frames are in flight")
	ErrStopped        = errors.New("frame: driver stopped")
)
