package swapvk

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Instance is the Vulkan instance together with the layers it enabled, which
// devices enable as well.
type Instance struct {
	handle        vk.Instance
	layers        []string
	debugCallback vk.DebugReportCallback
}

// NewInstance creates the instance for u. windowExtensions are the extensions
// the window system needs to create a surface.
func NewInstance(u *Usage, windowExtensions []string, logs *Loggers) (inst *Instance, err error) {
	extSet, layerSet := u.instanceNames(windowExtensions)

	actualExtensions, err := InstanceExtensions()
	if err != nil {
		return nil, errors.Wrap(err, "enumerate instance extensions")
	}
	extensions, err := extSet.Select(actualExtensions, logs.Warn)
	if err != nil {
		return nil, errors.Wrap(err, "instance extensions")
	}
	actualLayers, err := ValidationLayers()
	if err != nil {
		return nil, errors.Wrap(err, "enumerate layers")
	}
	layers, err := layerSet.Select(actualLayers, logs.Warn)
	if err != nil {
		return nil, errors.Wrap(err, "layers")
	}
	logs.Info.Printf("vulkan: enabling %d instance extensions, %d layers", len(extensions), len(layers))

	var instance vk.Instance
	ret := vk.CreateInstance(&vk.InstanceCreateInfo{
		SType: vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &vk.ApplicationInfo{
			SType:              vk.StructureTypeApplicationInfo,
			ApiVersion:         uint32(DefaultVulkanAPIVersion),
			ApplicationVersion: uint32(DefaultVulkanAppVersion),
			PApplicationName:   safeString(u.Name),
			PEngineName:        safeString(EngineName),
		},
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     layers,
		Flags:                   portabilityFlags(),
	}, nil, &instance)
	if isError(ret) {
		return nil, errors.Wrap(NewError(ret), "create instance")
	}
	vk.InitInstance(instance)
	inst = &Instance{handle: instance, layers: layers}

	if u.Validation && contains(extensions, DebugReportExtension) {
		debugLogs = logs
		ret := vk.CreateDebugReportCallback(instance, &vk.DebugReportCallbackCreateInfo{
			SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit),
			PfnCallback: dbgCallbackFunc,
		}, nil, &inst.debugCallback)
		if isError(ret) {
			logs.Warn.Printf("vulkan: debug report callback unavailable: %v", NewError(ret))
		} else {
			logs.Info.Println("vulkan: debug report callback enabled")
		}
	}
	return inst, nil
}

func (i *Instance) Handle() vk.Instance {
	return i.handle
}

func (i *Instance) Destroy() {
	if i.debugCallback != vk.NullDebugReportCallback {
		vk.DestroyDebugReportCallback(i.handle, i.debugCallback, nil)
		i.debugCallback = vk.NullDebugReportCallback
	}
	if i.handle != nil {
		vk.DestroyInstance(i.handle, nil)
		i.handle = nil
	}
}
