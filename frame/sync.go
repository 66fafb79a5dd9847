package frame

import "github.com/pkg/errors"

// FrameSlot is the synchronization state of one frame in flight.
type FrameSlot struct {
	// ImageAvailable is signaled when the acquired image is ready to be written.
	ImageAvailable Semaphore
	// RenderFinished is signaled when the frame's commands completed and the
	// image may be presented.
	RenderFinished Semaphore
	// InFlight is signaled when the GPU finished the slot's last submission.
	InFlight Fence
}

// SyncSet is the fixed ring of frame slots. It is created once and survives
// every swapchain rebuild.
type SyncSet struct {
	slots  []FrameSlot
	cursor int
	scope  Scope
}

// NewSyncSet creates frames slots with their fences already signaled.
func NewSyncSet(b Backend, frames int) (set *SyncSet, err error) {
	if frames < 1 {
		return nil, errors.Errorf("frame: invalid frames in flight %d", frames)
	}
	var s Scope
	defer s.ReleaseOnError(&err)

	slots := make([]FrameSlot, frames)
	for i := range slots {
		if slots[i].ImageAvailable, err = b.CreateSemaphore(); err != nil {
			return nil, errors.Wrapf(err, "create image available semaphore %d", i)
		}
		s.Add(slots[i].ImageAvailable.Destroy)
		if slots[i].RenderFinished, err = b.CreateSemaphore(); err != nil {
			return nil, errors.Wrapf(err, "create render finished semaphore %d", i)
		}
		s.Add(slots[i].RenderFinished.Destroy)
		if slots[i].InFlight, err = b.CreateFence(true); err != nil {
			return nil, errors.Wrapf(err, "create in-flight fence %d", i)
		}
		s.Add(slots[i].InFlight.Destroy)
	}
	return &SyncSet{slots: slots, scope: s.Move()}, nil
}

// Len is the number of frames in flight.
func (s *SyncSet) Len() int {
	return len(s.slots)
}

// Cursor is the index of the slot the current frame uses.
func (s *SyncSet) Cursor() int {
	return s.cursor
}

// Current returns the slot at the cursor.
func (s *SyncSet) Current() *FrameSlot {
	return &s.slots[s.cursor]
}

// Advance moves the cursor to the next slot and returns it.
func (s *SyncSet) Advance() int {
	s.cursor = (s.cursor + 1) % len(s.slots)
	return s.cursor
}

// Idle reports whether every slot fence is signaled.
func (s *SyncSet) Idle() (bool, error) {
	for i := range s.slots {
		ok, err := s.slots[i].InFlight.Signaled()
		if err != nil {
			return false, errors.Wrapf(err, "fence status %d", i)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func (s *SyncSet) Destroy() {
	s.scope.Release()
	s.slots = nil
}

// ImageTable maps a swapchain image index to the fence of the frame that last
// submitted work against it.
type ImageTable struct {
	owners []Fence
}

// Reset forgets every claim and sizes the table for count images.
func (t *ImageTable) Reset(count int) {
	t.owners = make([]Fence, count)
}

func (t *ImageTable) Len() int {
	return len(t.owners)
}

// Owner returns the fence that last claimed index, or nil.
func (t *ImageTable) Owner(index uint32) Fence {
	if int(index) >= len(t.owners) {
		return nil
	}
	return t.owners[index]
}

// Claim records fence as the owner of index.
func (t *ImageTable) Claim(index uint32, fence Fence) {
	if int(index) >= len(t.owners) {
		grown := make([]Fence, index+1)
		copy(grown, t.owners)
		t.owners = grown
	}
	t.owners[index] = fence
}
