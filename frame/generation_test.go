package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeneration(t *testing.T) {
	gpu := newFakeGPU(2)
	gen, err := NewGeneration(gpu, GenerationInfo{
		Desired:     Extent{Width: 800, Height: 600},
		Seq:         7,
		Preferences: DefaultPreferences(),
	})
	require.NoError(t, err)

	assert.Equal(t, uint64(7), gen.Seq)
	assert.Equal(t, Extent{Width: 800, Height: 600}, gen.Extent)
	assert.Equal(t, FormatB8g8r8a8Srgb, gen.Format.Format)
	assert.Equal(t, PresentModeMailbox, gen.PresentMode)
	assert.Equal(t, 3, gen.Len())
	assert.Len(t, gen.Views, 3)
	assert.Equal(t, 3, gpu.liveViews)
	assert.True(t, gen.Valid())

	gen.Invalidate()
	assert.False(t, gen.Valid())

	gen.Destroy()
	assert.Equal(t, 0, gpu.liveViews)
	assert.True(t, gpu.chains[0].destroyed)
	assert.Nil(t, gen.Swapchain())
	assert.Less(t, gpu.index("destroy-view", 0), gpu.index("destroy-chain", 0), "views go before the chain")
}

func TestNewGenerationIsRepeatable(t *testing.T) {
	gpu := newFakeGPU(2)
	info := GenerationInfo{Desired: Extent{Width: 1024, Height: 768}, Preferences: DefaultPreferences()}

	first, err := NewGeneration(gpu, info)
	require.NoError(t, err)
	first.Destroy()

	second, err := NewGeneration(gpu, info)
	require.NoError(t, err)
	defer second.Destroy()

	assert.Equal(t, first.Extent, second.Extent)
	assert.Equal(t, first.Format, second.Format)
	assert.Equal(t, first.PresentMode, second.PresentMode)
	assert.Equal(t, 3, second.Len())
	assert.Equal(t, 3, gpu.liveViews)
}

func TestNewGenerationFailures(t *testing.T) {
	t.Run("no formats", func(t *testing.T) {
		gpu := newFakeGPU(2)
		gpu.support.Formats = nil
		_, err := NewGeneration(gpu, GenerationInfo{Desired: Extent{Width: 8, Height: 8}})
		assert.ErrorIs(t, err, ErrNoCompatibleFormat)
		assert.Empty(t, gpu.chains)
	})

	t.Run("no present modes", func(t *testing.T) {
		gpu := newFakeGPU(2)
		gpu.support.PresentModes = nil
		_, err := NewGeneration(gpu, GenerationInfo{Desired: Extent{Width: 8, Height: 8}})
		assert.ErrorIs(t, err, ErrNoCompatibleMode)
	})

	t.Run("creation rejected", func(t *testing.T) {
		gpu := newFakeGPU(2)
		gpu.failChain = true
		_, err := NewGeneration(gpu, GenerationInfo{Desired: Extent{Width: 8, Height: 8}})
		assert.ErrorIs(t, err, ErrCreationFailed)
		assert.Equal(t, 0, gpu.liveViews)
	})
}

func TestGenerationRetireHandsOverChain(t *testing.T) {
	gpu := newFakeGPU(2)
	info := GenerationInfo{Desired: Extent{Width: 640, Height: 480}, Seq: 1}

	old, err := NewGeneration(gpu, info)
	require.NoError(t, err)
	old.Retire()
	assert.False(t, old.Valid())
	assert.Equal(t, 0, gpu.liveViews)
	assert.NotNil(t, old.Swapchain())

	info.Previous, info.Seq = old, 2
	next, err := NewGeneration(gpu, info)
	require.NoError(t, err)
	old.Destroy()

	assert.Equal(t, gpu.chains[0], gpu.chains[1].info.Old)
	assert.True(t, gpu.chains[0].destroyed)
	assert.False(t, gpu.chains[1].destroyed)
	assert.Empty(t, gpu.violations)
	next.Destroy()
}

func TestRecordCommands(t *testing.T) {
	gpu := newFakeGPU(2)
	gen, err := NewGeneration(gpu, GenerationInfo{Desired: Extent{Width: 320, Height: 240}, Seq: 4})
	require.NoError(t, err)
	defer gen.Destroy()

	pipelines := &fakePipelines{gpu: gpu}
	pipe, err := pipelines.BuildPipeline(gen)
	require.NoError(t, err)
	content := &fakeContent{}

	set, err := RecordCommands(gpu, gen, pipe, content)
	require.NoError(t, err)
	assert.Equal(t, gen.Len(), set.Len())
	assert.Equal(t, gen.Len(), content.recorded)
	for i := 0; i < set.Len(); i++ {
		cmd := set.Command(uint32(i)).(*fakeCmd)
		assert.Equal(t, i, cmd.image)
		assert.Equal(t, uint64(4), cmd.seq)
	}

	set.Destroy()
	assert.Equal(t, 0, gpu.liveCmds)
}
