package frame

import "github.com/pkg/errors"

// CommandSet holds one pre-recorded command sequence per swapchain image of a
// generation.
type CommandSet struct {
	Seq     uint64
	buffers []CommandBuffer
	scope   Scope
}

// RecordCommands allocates a command buffer per image of gen and lets content
// record each one against the matching framebuffer of pipe.
func RecordCommands(b Backend, gen *Generation, pipe Pipeline, content ContentProvider) (set *CommandSet, err error) {
	n := gen.Len()
	cmds, err := b.AllocateCommandBuffers(n)
	if err != nil {
		return nil, errors.Wrapf(err, "allocate %d command buffers", n)
	}
	if len(cmds) != n {
		b.FreeCommandBuffers(cmds)
		return nil, errors.Errorf("allocated %d command buffers, want %d", len(cmds), n)
	}
	var s Scope
	defer s.ReleaseOnError(&err)
	s.Add(func() { b.FreeCommandBuffers(cmds) })

	for i := range cmds {
		target := RenderTarget{
			Index:       i,
			Generation:  gen.Seq,
			Image:       gen.Images[i],
			View:        gen.Views[i],
			Framebuffer: pipe.Framebuffer(i),
			Extent:      gen.Extent,
			Format:      gen.Format.Format,
			Pipeline:    pipe,
		}
		if err := content.RecordCommands(cmds[i], target); err != nil {
			return nil, errors.Wrapf(err, "record commands for image %d", i)
		}
	}
	return &CommandSet{Seq: gen.Seq, buffers: cmds, scope: s.Move()}, nil
}

// Command returns the sequence recorded for image index.
func (c *CommandSet) Command(index uint32) CommandBuffer {
	return c.buffers[index]
}

func (c *CommandSet) Len() int {
	return len(c.buffers)
}

func (c *CommandSet) Destroy() {
	c.scope.Release()
	c.buffers = nil
}
