// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package ngx

import (
	"fmt"
	"strings"
)

// Handle is the opaque identity the SDK hands out when a feature is created.
type Handle uintptr

// Parameters is the address of a vendor owned parameter block.
type Parameters uintptr

// Result is a vendor result code, passed through untouched.
type Result uint32

// Vendor result codes
const (
	ResultSuccess Result = 0x1
	ResultFail    Result = 0xBAD00000

	ResultFailFeatureNotSupported       = ResultFail | 1
	ResultFailPlatformError             = ResultFail | 2
	ResultFailFeatureAlreadyExists      = ResultFail | 3
	ResultFailFeatureNotFound           = ResultFail | 4
	ResultFailInvalidParameter          = ResultFail | 5
	ResultFailScratchBufferTooSmall     = ResultFail | 6
	ResultFailNotInitialized            = ResultFail | 7
	ResultFailUnsupportedInputFormat    = ResultFail | 8
	ResultFailRWFlagMissing             = ResultFail | 9
	ResultFailMissingInput              = ResultFail | 10
	ResultFailUnableToInitializeFeature = ResultFail | 11
	ResultFailOutOfDate                 = ResultFail | 12
	ResultFailOutOfGPUMemory            = ResultFail | 13
	ResultFailUnsupportedFormat         = ResultFail | 14
	ResultFailUnableToWriteToAppData    = ResultFail | 15
	ResultFailUnsupportedParameter      = ResultFail | 16
	ResultFailDenied                    = ResultFail | 17
	ResultFailNotImplemented            = ResultFail | 18
)

var resultNames = map[Result]string{
	ResultSuccess:                       "Success",
	ResultFail:                          "Fail",
	ResultFailFeatureNotSupported:       "FeatureNotSupported",
	ResultFailPlatformError:             "PlatformError",
	ResultFailFeatureAlreadyExists:      "FeatureAlreadyExists",
	ResultFailFeatureNotFound:           "FeatureNotFound",
	ResultFailInvalidParameter:          "InvalidParameter",
	ResultFailScratchBufferTooSmall:     "ScratchBufferTooSmall",
	ResultFailNotInitialized:            "NotInitialized",
	ResultFailUnsupportedInputFormat:    "UnsupportedInputFormat",
	ResultFailRWFlagMissing:             "RWFlagMissing",
	ResultFailMissingInput:              "MissingInput",
	ResultFailUnableToInitializeFeature: "UnableToInitializeFeature",
	ResultFailOutOfDate:                 "OutOfDate",
	ResultFailOutOfGPUMemory:            "OutOfGPUMemory",
	ResultFailUnsupportedFormat:         "UnsupportedFormat",
	ResultFailUnableToWriteToAppData:    "UnableToWriteToAppDataPath",
	ResultFailUnsupportedParameter:      "UnsupportedParameter",
	ResultFailDenied:                    "Denied",
	ResultFailNotImplemented:            "NotImplemented",
}

// Succeeded mirrors the vendor's success test, anything outside
// of the failure range counts as success.
func (r Result) Succeeded() bool {
	return r&0xFFF00000 != ResultFail
}

// Failed is the negation of Succeeded.
func (r Result) Failed() bool {
	return !r.Succeeded()
}

func (r Result) String() string {
	if name, ok := resultNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Result(%#x)", uint32(r))
}

// Feature identifies a vendor feature kind.
type Feature int32

// Vendor feature identifiers
const (
	FeatureReserved0             Feature = 0
	FeatureSuperSampling         Feature = 1
	FeatureInPainting            Feature = 2
	FeatureImageSuperResolution  Feature = 3
	FeatureSlowMotion            Feature = 4
	FeatureVideoSuperResolution  Feature = 5
	FeatureReserved1             Feature = 6
	FeatureReserved2             Feature = 7
	FeatureReserved3             Feature = 8
	FeatureImageSignalProcessing Feature = 9
	FeatureDeepResolve           Feature = 10
	FeatureFrameGeneration       Feature = 11
	FeatureDeepDVC               Feature = 12
	FeatureRayReconstruction     Feature = 13
)

var featureNames = [...]string{
	"Reserved0",
	"SuperSampling",
	"InPainting",
	"ImageSuperResolution",
	"SlowMotion",
	"VideoSuperResolution",
	"Reserved1",
	"Reserved2",
	"Reserved3",
	"ImageSignalProcessing",
	"DeepResolve",
	"FrameGeneration",
	"DeepDVC",
	"RayReconstruction",
}

func (f Feature) String() string {
	if f >= 0 && int(f) < len(featureNames) {
		return featureNames[f]
	}
	return fmt.Sprintf("Feature(%d)", int32(f))
}

// Preset is a DLSS render preset hint value.
type Preset uint32

// Render presets
const (
	PresetDefault Preset = iota
	PresetA
	PresetB
	PresetC
	PresetD
	PresetE
	PresetF
	PresetG
	PresetH
	PresetI
	PresetJ
	PresetK
)

func (p Preset) String() string {
	if p == PresetDefault {
		return "Default"
	}
	if p <= PresetK {
		return string(rune('A' + p - PresetA))
	}
	return fmt.Sprintf("Preset(%d)", uint32(p))
}

// ParsePreset parses a preset letter or "default".
func ParsePreset(s string) (Preset, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "default") {
		return PresetDefault, nil
	}
	if len(s) == 1 {
		c := strings.ToUpper(s)[0]
		if c >= 'A' && c <= 'K' {
			return PresetA + Preset(c-'A'), nil
		}
	}
	return PresetDefault, fmt.Errorf("unknown render preset %q", s)
}

// PerfQuality is the vendor perf/quality selector.
type PerfQuality int32

// Perf/quality values
const (
	PerfQualityMaxPerf PerfQuality = iota
	PerfQualityBalanced
	PerfQualityMaxQuality
	PerfQualityUltraPerformance
	PerfQualityUltraQuality
	PerfQualityDLAA
)

var perfQualityNames = [...]string{
	"Performance",
	"Balanced",
	"Quality",
	"UltraPerformance",
	"UltraQuality",
	"DLAA",
}

func (q PerfQuality) String() string {
	if q >= 0 && int(q) < len(perfQualityNames) {
		return perfQualityNames[q]
	}
	return fmt.Sprintf("PerfQuality(%d)", int32(q))
}

// ParsePerfQuality parses a perf quality name, case insensitive.
func ParsePerfQuality(s string) (PerfQuality, error) {
	for i, name := range perfQualityNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return PerfQuality(i), nil
		}
	}
	return 0, fmt.Errorf("unknown perf quality %q", s)
}

// CreateFlags are the DLSS feature creation flags.
type CreateFlags int32

// Creation flags
const (
	FlagIsHDR          CreateFlags = 1 << 0
	FlagMVLowRes       CreateFlags = 1 << 1
	FlagMVJittered     CreateFlags = 1 << 2
	FlagDepthInverted  CreateFlags = 1 << 3
	FlagReserved0      CreateFlags = 1 << 4
	FlagDoSharpening   CreateFlags = 1 << 5
	FlagAutoExposure   CreateFlags = 1 << 6
	FlagAlphaUpscaling CreateFlags = 1 << 7
)

// Parameter names, these must match the vendor strings exactly.
const (
	ParamWidth            = "Width"
	ParamHeight           = "Height"
	ParamOutWidth         = "OutWidth"
	ParamOutHeight        = "OutHeight"
	ParamPerfQualityValue = "PerfQualityValue"
	ParamSharpness        = "Sharpness"
	ParamReset            = "Reset"
	ParamCreateFlags      = "DLSS.Feature.Create.Flags"
	ParamFreeMemOnRelease = "FreeMemOnReleaseFeature"
	ParamCreationNodeMask = "CreationNodeMask"
	ParamVisibilityMask   = "VisibilityNodeMask"
	ParamEnableOutput     = "EnableOutputSubrects"

	ParamJitterOffsetX = "Jitter.Offset.X"
	ParamJitterOffsetY = "Jitter.Offset.Y"
	ParamMVScaleX      = "MV.Scale.X"
	ParamMVScaleY      = "MV.Scale.Y"

	ParamPresetDLAA             = "DLSS.Hint.Render.Preset.DLAA"
	ParamPresetQuality          = "DLSS.Hint.Render.Preset.Quality"
	ParamPresetBalanced         = "DLSS.Hint.Render.Preset.Balanced"
	ParamPresetPerformance      = "DLSS.Hint.Render.Preset.Performance"
	ParamPresetUltraPerformance = "DLSS.Hint.Render.Preset.UltraPerformance"
	ParamPresetUltraQuality     = "DLSS.Hint.Render.Preset.UltraQuality"

	ParamSuperSamplingAvailable      = "SuperSampling.Available"
	ParamSuperSamplingNeedsDriver    = "SuperSampling.NeedsUpdatedDriver"
	ParamSuperSamplingMinDriverMajor = "SuperSampling.MinDriverVersionMajor"
	ParamSuperSamplingMinDriverMinor = "SuperSampling.MinDriverVersionMinor"
	ParamFrameGenerationAvailable    = "FrameGeneration.Available"
	ParamSizeInBytes                 = "SizeInBytes"

	ParamDLSSGEnableInterp = "DLSSG.EnableInterp"
	ParamDLSSGMultiFrame   = "DLSSG.MultiFrameCount"
	ParamDLSSGBackbuffer   = "DLSSG.Backbuffer"
	ParamDLSSGHUDLess      = "DLSSG.HUDLess"
	ParamDLSSGUI           = "DLSSG.UI"
	ParamDLSSGMVecs        = "DLSSG.MVecs"
	ParamDLSSGDepth        = "DLSSG.Depth"
)

var presetParams = map[string]bool{
	ParamPresetDLAA:             true,
	ParamPresetQuality:          true,
	ParamPresetBalanced:         true,
	ParamPresetPerformance:      true,
	ParamPresetUltraPerformance: true,
	ParamPresetUltraQuality:     true,
}

// IsPresetParam reports whether name is one of the render preset hints.
func IsPresetParam(name string) bool {
	return presetParams[name]
}
