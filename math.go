package swapvk

import (
	"math"

	lin "github.com/xlab/linmath"

	"github.com/andewx/swapvk/frame"
)

// PushConstantSize is the size of the model-view-projection matrix pushed to
// the vertex stage.
const PushConstantSize = 64

// VulkanProjectionMat converts an OpenGL style projection matrix to Vulkan style projection matrix.
// Vulkan has a topLeft clipSpace with [0, 1] depth range instead of [-1, 1].
//
// linmath outputs projection matrices in GL style clipSpace,
// perform a simple fixup step to change the projection to Vulkan style.
func VulkanProjectionMat(m *lin.Mat4x4, proj *lin.Mat4x4) {
	// Flip Y, then map z from [-1, 1] to [0, 1]. Columns are stored first.
	clip := lin.Mat4x4{
		{1, 0, 0, 0},
		{0, -1, 0, 0},
		{0, 0, 0.5, 0},
		{0, 0, 0.5, 1},
	}
	m.Mult(&clip, proj)
}

// Projection is the model-view-projection matrix for a frame of extent. The
// aspect ratio follows the extent so the image is not stretched when the
// window changes shape.
func Projection(extent frame.Extent) lin.Mat4x4 {
	var proj, clipProj, view, model, viewModel, mvp lin.Mat4x4
	proj.Perspective(float32(math.Pi/4), extent.Aspect(), 0.1, 100)
	VulkanProjectionMat(&clipProj, &proj)
	view.LookAt(
		&lin.Vec3{0, 0, 2.5},
		&lin.Vec3{0, 0, 0},
		&lin.Vec3{0, 1, 0},
	)
	model.Identity()
	viewModel.Mult(&view, &model)
	mvp.Mult(&clipProj, &viewModel)
	return mvp
}
