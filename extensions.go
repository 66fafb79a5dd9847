package swapvk

import (
	"log"
	"strings"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

const (
	SwapchainExtension              = "VK_KHR_swapchain"
	DebugReportExtension            = "VK_EXT_debug_report"
	PortabilityEnumerationExtension = "VK_KHR_portability_enumeration"
	PortabilitySubsetExtension      = "VK_KHR_portability_subset"
	ValidationLayer                 = "VK_LAYER_KHRONOS_validation"
)

// InstanceExtensions gets a list of instance extensions available on the platform.
func InstanceExtensions() (names []string, err error) {
	defer checkErr(&err)

	var count uint32
	ret := vk.EnumerateInstanceExtensionProperties("", &count, nil)
	orPanic(newError(ret))
	list := make([]vk.ExtensionProperties, count)
	ret = vk.EnumerateInstanceExtensionProperties("", &count, list)
	orPanic(newError(ret))
	for _, ext := range list {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, err
}

// DeviceExtensions gets a list of extensions available on the provided physical device.
func DeviceExtensions(gpu vk.PhysicalDevice) (names []string, err error) {
	defer checkErr(&err)

	var count uint32
	ret := vk.EnumerateDeviceExtensionProperties(gpu, "", &count, nil)
	orPanic(newError(ret))
	list := make([]vk.ExtensionProperties, count)
	ret = vk.EnumerateDeviceExtensionProperties(gpu, "", &count, list)
	orPanic(newError(ret))
	for _, ext := range list {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, err
}

// ValidationLayers gets a list of validation layers available on the platform.
func ValidationLayers() (names []string, err error) {
	defer checkErr(&err)

	var count uint32
	ret := vk.EnumerateInstanceLayerProperties(&count, nil)
	orPanic(newError(ret))
	list := make([]vk.LayerProperties, count)
	ret = vk.EnumerateInstanceLayerProperties(&count, list)
	orPanic(newError(ret))
	for _, layer := range list {
		layer.Deref()
		names = append(names, vk.ToString(layer.LayerName[:]))
	}
	return names, err
}

// NameSet selects the extension or layer names to enable out of what the
// platform offers.
type NameSet struct {
	Required []string
	Wanted   []string
}

// Select returns the null-terminated names to enable. A missing required
// name is an error; a missing wanted name is logged and skipped.
func (s NameSet) Select(actual []string, warn *log.Logger) ([]string, error) {
	required, missing := checkExisting(actual, s.Required)
	if len(missing) > 0 {
		return nil, errors.Errorf("missing required %s", strings.Join(missing, ", "))
	}
	wanted, missing := checkExisting(actual, s.Wanted)
	if len(missing) > 0 && warn != nil {
		warn.Printf("vulkan: skipping unavailable %s", strings.Join(missing, ", "))
	}
	names := required
	for _, w := range wanted {
		if !contains(names, w) {
			names = append(names, w)
		}
	}
	return safeStrings(names), nil
}

// checkExisting splits wanted into the names present in actual and the ones
// that are not. Names are compared without a trailing null.
func checkExisting(actual, wanted []string) (existing, missing []string) {
	for _, w := range wanted {
		w = strings.TrimSuffix(w, "\x00")
		if contains(actual, w) {
			existing = append(existing, w)
		} else {
			missing = append(missing, w)
		}
	}
	return existing, missing
}

func contains(list []string, name string) bool {
	for _, s := range list {
		if strings.TrimSuffix(s, "\x00") == name {
			return true
		}
	}
	return false
}

func safeString(s string) string {
	if strings.HasSuffix(s, "\x00") {
		return s
	}
	return s + "\x00"
}

func safeStrings(list []string) []string {
	out := make([]string, len(list))
	for i := range list {
		out[i] = safeString(list[i])
	}
	return out
}

// FindRequiredMemoryType returns the first memory type allowed by
// deviceRequirements that carries all of hostRequirements.
func FindRequiredMemoryType(props vk.PhysicalDeviceMemoryProperties,
	deviceRequirements, hostRequirements vk.MemoryPropertyFlagBits) (uint32, bool) {

	for i := uint32(0); i < props.MemoryTypeCount && i < vk.MaxMemoryTypes; i++ {
		if deviceRequirements&(vk.MemoryPropertyFlagBits(1)<<i) != 0 {
			props.MemoryTypes[i].Deref()
			flags := props.MemoryTypes[i].PropertyFlags
			if flags&vk.MemoryPropertyFlags(hostRequirements) == vk.MemoryPropertyFlags(hostRequirements) {
				return i, true
			}
		}
	}
	return 0, false
}
