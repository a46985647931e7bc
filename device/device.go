package device

import (
	"fmt"
	"strings"
)

// VendorNVIDIA is the PCI vendor id of NVIDIA adapters.
const VendorNVIDIA = 0x10DE

// DriverVersion is the driver version as reported by the Vulkan driver,
// its packing depends on the vendor.
type DriverVersion uint32

// NVIDIA decodes an NVIDIA packed driver version, e.g. 551.86.
func (v DriverVersion) NVIDIA() (major, minor uint32) {
	return (uint32(v) >> 22) & 0x3ff, (uint32(v) >> 14) & 0xff
}

// Generic decodes a version packed the way Vulkan packs its own.
func (v DriverVersion) Generic() (major, minor, patch uint32) {
	return uint32(v) >> 22, (uint32(v) >> 12) & 0x3ff, uint32(v) & 0xfff
}

// Adapter describes a physical rendering device
type Adapter struct {
	ID            uint32
	VendorID      uint32
	Name          string
	Type          string
	APIVersion    uint32
	DriverVersion DriverVersion
	Memory        uint64
	Extensions    []string
	Invalid       bool
}

// IsNVIDIA reports whether the adapter is made by NVIDIA.
func (a Adapter) IsNVIDIA() bool {
	return a.VendorID == VendorNVIDIA
}

// Driver formats the driver version the way the vendor does.
func (a Adapter) Driver() string {
	if a.IsNVIDIA() {
		major, minor := a.DriverVersion.NVIDIA()
		return fmt.Sprintf("%d.%02d", major, minor)
	}
	major, minor, patch := a.DriverVersion.Generic()
	return fmt.Sprintf("%d.%d.%d", major, minor, patch)
}

// HasExtension reports whether the adapter exposes a device extension.
func (a Adapter) HasExtension(name string) bool {
	for _, ext := range a.Extensions {
		if strings.EqualFold(ext, name) {
			return true
		}
	}
	return false
}

// Enumerator lists the rendering devices of the machine
type Enumerator interface {
	Adapters() []Adapter
	Destroy()
}

// NVIDIAAdapters filters adapters down to valid NVIDIA ones, those
// are the only ones the vendor SDK can run on.
func NVIDIAAdapters(adapters []Adapter) []Adapter {
	var nv []Adapter
	for _, a := range adapters {
		if a.IsNVIDIA() && !a.Invalid {
			nv = append(nv, a)
		}
	}
	return nv
}
