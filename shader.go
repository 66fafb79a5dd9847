package swapvk

import (
	"encoding/binary"
	"os"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
	"golang.org/x/sync/errgroup"
)

//go:generate glslangValidator -V shaders/triangle.vert -o shaders/vert.spv
//go:generate glslangValidator -V shaders/triangle.frag -o shaders/frag.spv

// SPIRVMagic is the first word of every SPIR-V module.
const SPIRVMagic = 0x07230203

// ShaderProgram is the vertex and fragment stage of the graphics pipeline.
type ShaderProgram struct {
	device   vk.Device
	Vertex   vk.ShaderModule
	Fragment vk.ShaderModule
}

// LoadShaderProgram reads both SPIR-V files concurrently and creates their
// shader modules.
func LoadShaderProgram(device vk.Device, vertexPath, fragmentPath string) (*ShaderProgram, error) {
	paths := [2]string{vertexPath, fragmentPath}
	var code [2][]uint32
	var g errgroup.Group
	for i := range paths {
		i := i
		g.Go(func() error {
			words, err := ReadSPIRV(paths[i])
			if err != nil {
				return err
			}
			code[i] = words
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	vertex, err := createShaderModule(device, code[0])
	if err != nil {
		return nil, errors.Wrapf(err, "vertex shader %s", vertexPath)
	}
	fragment, err := createShaderModule(device, code[1])
	if err != nil {
		vk.DestroyShaderModule(device, vertex, nil)
		return nil, errors.Wrapf(err, "fragment shader %s", fragmentPath)
	}
	return &ShaderProgram{device: device, Vertex: vertex, Fragment: fragment}, nil
}

// ReadSPIRV loads a SPIR-V binary as the words Vulkan expects.
func ReadSPIRV(path string) ([]uint32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read shader")
	}
	words, err := DecodeSPIRV(data)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return words, nil
}

// DecodeSPIRV checks the module header and converts data to little-endian words.
func DecodeSPIRV(data []byte) ([]uint32, error) {
	if len(data)%4 != 0 {
		return nil, errors.Errorf("SPIR-V size %d is not a multiple of 4", len(data))
	}
	// Magic, version, generator, bound and schema.
	if len(data) < 20 {
		return nil, errors.Errorf("SPIR-V module of %d bytes is too short", len(data))
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	if words[0] != SPIRVMagic {
		return nil, errors.Errorf("bad SPIR-V magic %#08x", words[0])
	}
	return words, nil
}

func createShaderModule(device vk.Device, code []uint32) (vk.ShaderModule, error) {
	var module vk.ShaderModule
	ret := vk.CreateShaderModule(device, &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code) * 4),
		PCode:    code,
	}, nil, &module)
	if isError(ret) {
		return vk.NullShaderModule, NewError(ret)
	}
	return module, nil
}

func (p *ShaderProgram) Destroy() {
	vk.DestroyShaderModule(p.device, p.Vertex, nil)
	vk.DestroyShaderModule(p.device, p.Fragment, nil)
}
