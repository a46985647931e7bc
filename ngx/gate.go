// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package ngx

// Gate answers which DLSS behaviours are available for a given
// SDK version. The version ranges were worked out against vendor
// releases and are not monotonic: sharpening went away in 2.5.1,
// presets A through E went away in 3.8.10 and came back with 310.
// Anything newer or older than the known releases falls back to
// whatever the oldest matching range says.
type Gate struct {
	v Version
}

// NewGate returns a gate for the given version.
func NewGate(v Version) Gate {
	return Gate{v: v}
}

// Version returns the version the gate evaluates.
func (g Gate) Version() Version {
	return g.v
}

// HasSharpening reports whether the sharpness parameter is honoured.
func (g Gate) HasSharpening() bool {
	v := g.v
	return v.Major <= 2 && (v.Major != 2 || v.Minor < 5 || v.Build < 1)
}

// HasDLAAQualityLevel reports whether DLAA is a selectable perf quality value.
func (g Gate) HasDLAAQualityLevel() bool {
	v := g.v
	return v.Major > 3 || (v.Major == 3 && (v.Minor > 1 || (v.Minor == 1 && v.Build >= 13)))
}

// HasAlphaUpscaling reports whether the alpha upscaling create flag exists.
func (g Gate) HasAlphaUpscaling() bool {
	v := g.v
	return v.Major > 3 || (v.Major == 3 && v.Minor > 6)
}

// HasPresetE reports whether render preset E exists.
func (g Gate) HasPresetE() bool {
	v := g.v
	return v.Major > 3 || (v.Major == 3 && v.Minor > 6)
}

// HasPresetsAThroughD reports whether the legacy presets A-D are available.
func (g Gate) HasPresetsAThroughD() bool {
	v := g.v
	return v.Major < 3 ||
		v.Major >= 310 ||
		(v.Major == 3 && (v.Minor < 8 || (v.Minor == 8 && v.Build <= 9)))
}

// HasPresetsAThroughE reports whether the legacy presets A-E are available.
func (g Gate) HasPresetsAThroughE() bool {
	v := g.v
	return g.HasPresetsAThroughD() && (v.Major < 310 || v.Minor < 3)
}

// HasPresetJ reports whether render preset J exists.
func (g Gate) HasPresetJ() bool {
	v := g.v
	return v.Major > 310 || (v.Major == 310 && v.Minor >= 1)
}

// HasPresetK reports whether render preset K exists.
func (g Gate) HasPresetK() bool {
	v := g.v
	return v.Major > 310 || (v.Major == 310 && (v.Minor > 2 || (v.Minor == 2 && v.Build >= 1)))
}

// SupportsPreset reports whether p can be requested from the SDK.
// Presets none of the predicates cover are never reported as supported.
func (g Gate) SupportsPreset(p Preset) bool {
	switch p {
	case PresetDefault:
		return true
	case PresetA, PresetB, PresetC, PresetD:
		return g.HasPresetsAThroughD()
	case PresetE:
		return g.HasPresetE() && g.HasPresetsAThroughE()
	case PresetJ:
		return g.HasPresetJ()
	case PresetK:
		return g.HasPresetK()
	}
	return false
}

// SupportsPerfQuality reports whether q can be requested from the SDK.
func (g Gate) SupportsPerfQuality(q PerfQuality) bool {
	switch q {
	case PerfQualityMaxPerf, PerfQualityBalanced, PerfQualityMaxQuality,
		PerfQualityUltraPerformance, PerfQualityUltraQuality:
		return true
	case PerfQualityDLAA:
		return g.HasDLAAQualityLevel()
	}
	return false
}

// Capability is one named gate predicate and its result.
type Capability struct {
	Name      string
	Supported bool
}

// Capabilities evaluates every predicate, in a fixed order.
func (g Gate) Capabilities() []Capability {
	return []Capability{
		{"Sharpening", g.HasSharpening()},
		{"DLAAQualityLevel", g.HasDLAAQualityLevel()},
		{"AlphaUpscaling", g.HasAlphaUpscaling()},
		{"PresetE", g.HasPresetE()},
		{"PresetsAThroughD", g.HasPresetsAThroughD()},
		{"PresetsAThroughE", g.HasPresetsAThroughE()},
		{"PresetJ", g.HasPresetJ()},
		{"PresetK", g.HasPresetK()},
	}
}
