package swapvk

import (
	"log"
	"runtime"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// PlatformOS is the host system in the capitalized form used for platform
// specific instance setup.
var PlatformOS = platformName(runtime.GOOS)

func platformName(goos string) string {
	switch goos {
	case "darwin":
		return "Darwin"
	case "windows":
		return "Windows"
	case "linux":
		return "Linux"
	case "android":
		return "Android"
	}
	return goos
}

// portabilityFlags is VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR on
// systems where the driver is a portability layer.
func portabilityFlags() vk.InstanceCreateFlags {
	if PlatformOS == "Darwin" {
		return vk.InstanceCreateFlags(0x00000001)
	}
	return vk.InstanceCreateFlags(0)
}

// platformInstanceExtensions are the instance extensions the host needs on
// top of the ones the window system asks for.
func platformInstanceExtensions() []string {
	if PlatformOS == "Darwin" {
		return []string{PortabilityEnumerationExtension}
	}
	return nil
}

func platformDeviceExtensions() []string {
	if PlatformOS == "Darwin" {
		return []string{PortabilitySubsetExtension}
	}
	return nil
}

// debugLogs receive validation layer reports.
var debugLogs = NewStdLoggers()

func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType,
	object uint64, location uint, messageCode int32, pLayerPrefix string,
	pMessage string, pUserData unsafe.Pointer) vk.Bool32 {

	logger, kind := debugLogger(flags)
	logger.Printf("vulkan %s: [%s] Code %d : %s", kind, pLayerPrefix, messageCode, pMessage)
	return vk.Bool32(vk.False)
}

func debugLogger(flags vk.DebugReportFlags) (*log.Logger, string) {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		return debugLogs.Error, "error"
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		return debugLogs.Warn, "warning"
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		return debugLogs.Warn, "performance warning"
	case flags&vk.DebugReportFlags(vk.DebugReportDebugBit) != 0:
		return debugLogs.Info, "debug"
	}
	return debugLogs.Info, "information"
}
