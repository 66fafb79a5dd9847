package main

import "sync"

// closeGate hands an exit request from the signal goroutine to the main
// thread. GLFW and Vulkan objects are only released by Release, which runs
// on the main thread; Interrupt asks the render loop to stop and then blocks
// until Release is done.
type closeGate struct {
	request func()

	mu       sync.Mutex
	released bool
	done     chan struct{}
	once     sync.Once
}

func newCloseGate(request func()) *closeGate {
	return &closeGate{request: request, done: make(chan struct{})}
}

// Interrupt is bound to process exit. It is a no-op once Release has run.
func (g *closeGate) Interrupt() {
	g.mu.Lock()
	if !g.released {
		g.request()
	}
	g.mu.Unlock()
	<-g.done
}

// Release runs teardown and unblocks any pending Interrupt.
func (g *closeGate) Release(teardown func()) {
	g.mu.Lock()
	if !g.released {
		teardown()
		g.released = true
	}
	g.mu.Unlock()
	g.once.Do(func() { close(g.done) })
}
