package swapvk

import (
	"time"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/andewx/swapvk/frame"
)

// fence wraps a vk.Fence as a frame.Fence.
type fence struct {
	device vk.Device
	handle vk.Fence
}

func newFence(device vk.Device, signaled bool) (*fence, error) {
	var flags vk.FenceCreateFlags
	if signaled {
		flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}
	var handle vk.Fence
	ret := vk.CreateFence(device, &vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
		Flags: flags,
	}, nil, &handle)
	if isError(ret) {
		return nil, newError(ret)
	}
	return &fence{device: device, handle: handle}, nil
}

// Wait blocks until the fence signals. It reports frame.ErrFenceTimeout when
// timeout passes first.
func (f *fence) Wait(timeout time.Duration) error {
	ret := vk.WaitForFences(f.device, 1, []vk.Fence{f.handle}, vk.True, timeoutNanos(timeout))
	switch ret {
	case vk.Success:
		return nil
	case vk.Timeout:
		return errors.Wrapf(frame.ErrFenceTimeout, "after %s", timeout)
	}
	return newError(ret)
}

func (f *fence) Reset() error {
	return newError(vk.ResetFences(f.device, 1, []vk.Fence{f.handle}))
}

func (f *fence) Signaled() (bool, error) {
	switch ret := vk.GetFenceStatus(f.device, f.handle); ret {
	case vk.Success:
		return true, nil
	case vk.NotReady:
		return false, nil
	default:
		return false, newError(ret)
	}
}

func (f *fence) Destroy() {
	vk.DestroyFence(f.device, f.handle, nil)
	f.handle = vk.NullFence
}

func timeoutNanos(timeout time.Duration) uint64 {
	if timeout == frame.NoTimeout || timeout < 0 {
		return vk.MaxUint64
	}
	return uint64(timeout.Nanoseconds())
}

// semaphore wraps a vk.Semaphore as a frame.Semaphore.
type semaphore struct {
	device vk.Device
	handle vk.Semaphore
}

func newSemaphore(device vk.Device) (*semaphore, error) {
	var handle vk.Semaphore
	ret := vk.CreateSemaphore(device, &vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}, nil, &handle)
	if isError(ret) {
		return nil, newError(ret)
	}
	return &semaphore{device: device, handle: handle}, nil
}

func (s *semaphore) Destroy() {
	vk.DestroySemaphore(s.device, s.handle, nil)
	s.handle = vk.NullSemaphore
}

func semaphoreHandle(s frame.Semaphore) vk.Semaphore {
	if sem, ok := s.(*semaphore); ok && sem != nil {
		return sem.handle
	}
	return vk.NullSemaphore
}

func fenceHandle(f frame.Fence) vk.Fence {
	if fe, ok := f.(*fence); ok && fe != nil {
		return fe.handle
	}
	return vk.NullFence
}
