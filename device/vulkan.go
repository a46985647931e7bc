package device

import (
	"errors"
	"fmt"

	vk "github.com/devblok/vulkan"
)

// DefaultVulkanApplicationInfo describes the tracker as a Vulkan application
var DefaultVulkanApplicationInfo = &vk.ApplicationInfo{
	SType:              vk.StructureTypeApplicationInfo,
	ApiVersion:         vk.MakeVersion(1, 0, 0),
	ApplicationVersion: vk.MakeVersion(1, 0, 0),
	PApplicationName:   "ngxinfo\x00",
	PEngineName:        "ngxtrack\x00",
}

// NewVulkan creates a Vulkan instance and enumerates its physical devices.
func NewVulkan(appInfo *vk.ApplicationInfo) (*Vulkan, error) {
	if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
		return nil, errors.New("vk.InstanceProcAddr(): " + err.Error())
	}
	if err := vk.Init(); err != nil {
		return nil, errors.New("vk.Init(): " + err.Error())
	}

	instanceInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}

	v := &Vulkan{}
	if err := vk.Error(vk.CreateInstance(&instanceInfo, nil, &v.instance)); err != nil {
		return nil, errors.New("vk.CreateInstance(): " + err.Error())
	}
	vk.InitInstance(v.instance)

	if err := v.enumerateDevices(); err != nil {
		vk.DestroyInstance(v.instance, nil)
		return nil, err
	}
	return v, nil
}

// Vulkan enumerates adapters through a Vulkan instance
type Vulkan struct {
	availableDevices []vk.PhysicalDevice
	instance         vk.Instance
}

func (v *Vulkan) enumerateDevices() error {
	var deviceCount uint32
	if err := vk.Error(vk.EnumeratePhysicalDevices(v.instance, &deviceCount, nil)); err != nil {
		return fmt.Errorf("vulkan physical device enumeration failed: %s", err)
	}
	v.availableDevices = make([]vk.PhysicalDevice, deviceCount)
	if err := vk.Error(vk.EnumeratePhysicalDevices(v.instance, &deviceCount, v.availableDevices)); err != nil {
		return fmt.Errorf("vulkan physical device enumeration failed: %s", err)
	}
	return nil
}

// Adapters implements Enumerator
func (v *Vulkan) Adapters() []Adapter {
	adapters := make([]Adapter, len(v.availableDevices))
	for i, dev := range v.availableDevices {
		// Get extension info
		var numDeviceExtensions uint32
		if err := vk.Error(vk.EnumerateDeviceExtensionProperties(dev, "", &numDeviceExtensions, nil)); err != nil {
			adapters[i].Invalid = true
		}
		deviceExt := make([]vk.ExtensionProperties, numDeviceExtensions)
		if err := vk.Error(vk.EnumerateDeviceExtensionProperties(dev, "", &numDeviceExtensions, deviceExt)); err != nil {
			adapters[i].Invalid = true
		}
		for _, ext := range deviceExt {
			ext.Deref()
			adapters[i].Extensions = append(adapters[i].Extensions, vk.ToString(ext.ExtensionName[:]))
		}

		// Get memory info
		var memoryProperties vk.PhysicalDeviceMemoryProperties
		vk.GetPhysicalDeviceMemoryProperties(dev, &memoryProperties)
		memoryProperties.Deref()
		for iMem := uint32(0); iMem < memoryProperties.MemoryHeapCount; iMem++ {
			heap := memoryProperties.MemoryHeaps[iMem]
			heap.Deref()
			if heap.Flags&vk.MemoryHeapFlags(vk.MemoryHeapDeviceLocalBit) != 0 {
				adapters[i].Memory += uint64(heap.Size)
			}
		}

		// Get general device info
		var properties vk.PhysicalDeviceProperties
		vk.GetPhysicalDeviceProperties(dev, &properties)
		properties.Deref()
		adapters[i].ID = properties.DeviceID
		adapters[i].VendorID = properties.VendorID
		adapters[i].Name = vk.ToString(properties.DeviceName[:])
		adapters[i].Type = deviceType(properties.DeviceType)
		adapters[i].APIVersion = properties.ApiVersion
		adapters[i].DriverVersion = DriverVersion(properties.DriverVersion)
	}
	return adapters
}

func deviceType(t vk.PhysicalDeviceType) string {
	switch t {
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return "integrated"
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return "discrete"
	case vk.PhysicalDeviceTypeVirtualGpu:
		return "virtual"
	case vk.PhysicalDeviceTypeCpu:
		return "cpu"
	}
	return "other"
}

// Destroy destroys the Vulkan instance
func (v *Vulkan) Destroy() {
	if v == nil {
		return
	}
	v.availableDevices = nil
	vk.DestroyInstance(v.instance, nil)
}
