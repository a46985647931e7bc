// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package ngx_test

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/devblok/ngxtrack/ngx"
	"github.com/devblok/ngxtrack/ngx/ngxtest"
)

const params ngx.Parameters = 0xA000

func newInterceptor(c *qt.C, dlss string) (*ngx.Interceptor, *ngx.Registry, *ngxtest.Vendor, *ngxtest.Clock) {
	reg, clock := newTestRegistry(c.TB, map[string]string{ngx.DefaultDLSSModule: dlss})
	c.Assert(reg.EstablishVersions(), qt.Not(qt.IsNil)) // DLSS-G module is unknown

	vendor := ngxtest.NewVendor()
	ic := ngx.NewInterceptor(reg)
	ic.Bind(vendor.Originals())
	return ic, reg, vendor, clock
}

func TestInterceptRoundTrip(t *testing.T) {
	c := qt.New(t)
	ic, _, vendor, _ := newInterceptor(c, "3.7.10.0")

	ic.SetI(params, "Test.I", -7)
	var i int32
	c.Assert(ic.GetI(params, "Test.I", &i), qt.Equals, ngx.ResultSuccess)
	c.Assert(i, qt.Equals, int32(-7))

	ic.SetUI(params, "Test.UI", 7)
	var ui uint32
	c.Assert(ic.GetUI(params, "Test.UI", &ui), qt.Equals, ngx.ResultSuccess)
	c.Assert(ui, qt.Equals, uint32(7))

	ic.SetULL(params, "Test.ULL", 1<<40)
	var ull uint64
	c.Assert(ic.GetULL(params, "Test.ULL", &ull), qt.Equals, ngx.ResultSuccess)
	c.Assert(ull, qt.Equals, uint64(1<<40))

	ic.SetF(params, "Test.F", 0.25)
	var f float32
	c.Assert(ic.GetF(params, "Test.F", &f), qt.Equals, ngx.ResultSuccess)
	c.Assert(f, qt.Equals, float32(0.25))

	ic.SetD(params, "Test.D", 0.125)
	var d float64
	c.Assert(ic.GetD(params, "Test.D", &d), qt.Equals, ngx.ResultSuccess)
	c.Assert(d, qt.Equals, 0.125)

	// one vendor call per intercepted call
	c.Assert(vendor.Calls(), qt.Equals, int64(10))
}

func TestInterceptPassesResultThrough(t *testing.T) {
	c := qt.New(t)
	ic, _, vendor, _ := newInterceptor(c, "3.7.10.0")

	var v uint32 = 99
	c.Assert(ic.GetUI(params, "Missing", &v), qt.Equals, ngx.ResultFailUnsupportedParameter)
	c.Assert(v, qt.Equals, uint32(99))

	vendor.Put(params, "Typed", float32(1))
	c.Assert(ic.GetUI(params, "Typed", &v), qt.Equals, ngx.ResultFailInvalidParameter)
	c.Assert(vendor.Calls(), qt.Equals, int64(2))
}

func TestInterceptUnbound(t *testing.T) {
	c := qt.New(t)
	reg, _ := newTestRegistry(t, nil)
	ic := ngx.NewInterceptor(reg)

	// must not crash
	ic.SetI(params, ngx.ParamWidth, 1)
	ic.SetUI(params, ngx.ParamWidth, 1)
	ic.SetULL(params, ngx.ParamWidth, 1)
	ic.SetF(params, ngx.ParamSharpness, 1)
	ic.SetD(params, ngx.ParamSharpness, 1)

	var i int32 = 5
	c.Assert(ic.GetI(params, ngx.ParamWidth, &i), qt.Equals, ngx.ResultFailNotInitialized)
	c.Assert(i, qt.Equals, int32(5))
	var p uintptr
	c.Assert(ic.GetVoidPointer(params, ngx.ParamDLSSGUI, &p), qt.Equals, ngx.ResultFailNotInitialized)

	// partially bound
	vendor := ngxtest.NewVendor()
	o := vendor.Originals()
	o.GetF = nil
	ic.Bind(o)
	var f float32
	c.Assert(ic.GetF(params, ngx.ParamSharpness, &f), qt.Equals, ngx.ResultFailNotInitialized)
	c.Assert(vendor.Calls(), qt.Equals, int64(0))
}

func TestInterceptPresetOverride(t *testing.T) {
	c := qt.New(t)
	ic, _, vendor, _ := newInterceptor(c, "310.2.1.0")

	ic.SetOverrides(ngx.Overrides{ForcePreset: true, Preset: ngx.PresetK})
	ic.SetUI(params, ngx.ParamPresetQuality, uint32(ngx.PresetC))

	v, _ := vendor.Value(params, ngx.ParamPresetQuality)
	c.Assert(v, qt.Equals, uint32(ngx.PresetK))

	// not a preset parameter, left alone
	ic.SetUI(params, ngx.ParamWidth, 3)
	v, _ = vendor.Value(params, ngx.ParamWidth)
	c.Assert(v, qt.Equals, uint32(3))
}

func TestInterceptOverrideNeedsSupport(t *testing.T) {
	c := qt.New(t)
	ic, _, vendor, _ := newInterceptor(c, "3.7.10.0")

	ic.SetOverrides(ngx.Overrides{
		ForcePreset:      true,
		Preset:           ngx.PresetK,
		ForcePerfQuality: true,
		PerfQuality:      ngx.PerfQualityDLAA,
		ForceSharpness:   true,
		Sharpness:        0.5,
		AlphaUpscaling:   true,
	})

	ic.SetUI(params, ngx.ParamPresetQuality, uint32(ngx.PresetC))
	v, _ := vendor.Value(params, ngx.ParamPresetQuality)
	c.Check(v, qt.Equals, uint32(ngx.PresetC))

	// DLAA exists since 3.1.13
	ic.SetI(params, ngx.ParamPerfQualityValue, int32(ngx.PerfQualityBalanced))
	v, _ = vendor.Value(params, ngx.ParamPerfQualityValue)
	c.Check(v, qt.Equals, int32(ngx.PerfQualityDLAA))

	// sharpening went away in 2.5.1
	ic.SetF(params, ngx.ParamSharpness, 0.1)
	v, _ = vendor.Value(params, ngx.ParamSharpness)
	c.Check(v, qt.Equals, float32(0.1))

	// alpha upscaling exists since 3.7
	ic.SetI(params, ngx.ParamCreateFlags, int32(ngx.FlagMVLowRes))
	v, _ = vendor.Value(params, ngx.ParamCreateFlags)
	c.Check(v, qt.Equals, int32(ngx.FlagMVLowRes|ngx.FlagAlphaUpscaling))
}

func TestInterceptSharpnessOverride(t *testing.T) {
	c := qt.New(t)
	ic, _, vendor, _ := newInterceptor(c, "2.4.0.0")
	ic.SetOverrides(ngx.Overrides{ForceSharpness: true, Sharpness: 0.5})

	ic.SetF(params, ngx.ParamSharpness, 0.1)
	v, _ := vendor.Value(params, ngx.ParamSharpness)
	c.Assert(v, qt.Equals, float32(0.5))
}

func TestInterceptObservesOwnedBlock(t *testing.T) {
	c := qt.New(t)
	ic, reg, _, clock := newInterceptor(c, "3.7.10.0")
	fc := reg.Context(ngx.D3D12).SuperSampling
	inst := fc.CreateInstance(1, params, ngx.FeatureSuperSampling)

	ic.SetUI(params, ngx.ParamWidth, 1280)
	ic.SetUI(params, ngx.ParamHeight, 720)
	ic.SetUI(params, ngx.ParamOutWidth, 2560)
	ic.SetUI(params, ngx.ParamOutHeight, 1440)
	ic.SetI(params, ngx.ParamCreateFlags, int32(ngx.FlagMVLowRes))
	ic.SetI(params, ngx.ParamPerfQualityValue, int32(ngx.PerfQualityMaxQuality))
	ic.SetF(params, ngx.ParamJitterOffsetX, 0.5)
	ic.SetF(params, ngx.ParamJitterOffsetY, -0.25)
	ic.SetF(params, ngx.ParamMVScaleX, 1280)
	ic.SetF(params, ngx.ParamMVScaleY, 720)

	o := fc.Observed()
	c.Check(o.Width, qt.Equals, uint32(1280))
	c.Check(o.Height, qt.Equals, uint32(720))
	c.Check(o.OutWidth, qt.Equals, uint32(2560))
	c.Check(o.OutHeight, qt.Equals, uint32(1440))
	c.Check(o.HDR(), qt.IsFalse)
	c.Check(o.PerfQuality, qt.Equals, ngx.PerfQualityMaxQuality)
	c.Check(o.Jitter, qt.Equals, mgl32.Vec2{0.5, -0.25})
	c.Check(o.MVScale, qt.Equals, mgl32.Vec2{1280, 720})

	clock.Set(20)
	fc.EvaluateFeature(inst)
	c.Assert(fc.ResetPending(), qt.IsFalse)

	// same size again is not a change
	ic.SetUI(params, ngx.ParamWidth, 1280)
	c.Assert(fc.ResetPending(), qt.IsFalse)

	ic.SetUI(params, ngx.ParamWidth, 1920)
	c.Assert(fc.ResetPending(), qt.IsTrue)
}

func TestInterceptHDRChangeResets(t *testing.T) {
	c := qt.New(t)
	ic, reg, _, _ := newInterceptor(c, "3.7.10.0")
	fc := reg.Context(ngx.Vulkan).SuperSampling
	fc.CreateInstance(1, params, ngx.FeatureSuperSampling)

	ic.SetI(params, ngx.ParamCreateFlags, int32(ngx.FlagMVLowRes))
	c.Assert(fc.ResetPending(), qt.IsFalse)

	ic.SetI(params, ngx.ParamCreateFlags, int32(ngx.FlagMVLowRes|ngx.FlagIsHDR))
	c.Assert(fc.ResetPending(), qt.IsTrue)
	c.Assert(fc.Observed().HDR(), qt.IsTrue)
}

func TestInterceptHDRChangeFromZeroFlagsResets(t *testing.T) {
	c := qt.New(t)
	ic, reg, _, _ := newInterceptor(c, "3.7.10.0")
	const sdr ngx.Parameters = 0xB000
	fc := reg.Context(ngx.D3D12).SuperSampling
	fc.CreateInstance(2, sdr, ngx.FeatureSuperSampling)

	// zero is a valid flag word, the first write only records it
	ic.SetI(sdr, ngx.ParamCreateFlags, 0)
	c.Assert(fc.ResetPending(), qt.IsFalse)

	ic.SetI(sdr, ngx.ParamCreateFlags, int32(ngx.FlagIsHDR))
	c.Assert(fc.Observed().HDR(), qt.IsTrue)
	c.Assert(fc.ResetPending(), qt.IsTrue)
}

func TestInterceptUnownedBlockNotObserved(t *testing.T) {
	c := qt.New(t)
	ic, reg, vendor, _ := newInterceptor(c, "3.7.10.0")

	ic.SetUI(params, ngx.ParamWidth, 1280)
	for _, ctx := range reg.Contexts() {
		c.Check(ctx.SuperSampling.Observed().Width, qt.Equals, uint32(0))
	}
	c.Assert(vendor.Calls(), qt.Equals, int64(1))
}

func TestEvaluateAppliesPendingReset(t *testing.T) {
	c := qt.New(t)
	ic, reg, vendor, clock := newInterceptor(c, "3.7.10.0")
	fc := reg.Context(ngx.D3D11).SuperSampling
	inst := fc.CreateInstance(1, params, ngx.FeatureSuperSampling)

	clock.Set(1)
	c.Assert(ic.EvaluateFeature(fc, inst), qt.IsTrue)
	_, ok := vendor.Value(params, ngx.ParamReset)
	c.Assert(ok, qt.IsFalse)

	reg.RequestReset()
	clock.Set(2)
	c.Assert(ic.EvaluateFeature(fc, inst), qt.IsTrue)
	v, _ := vendor.Value(params, ngx.ParamReset)
	c.Assert(v, qt.Equals, int32(1))
	c.Assert(fc.ResetPending(), qt.IsFalse)
	c.Assert(fc.LastFrame(), qt.Equals, uint64(2))

	c.Assert(ic.EvaluateFeature(fc, nil), qt.IsFalse)
}

func TestPendingResetKeptWithoutSetter(t *testing.T) {
	c := qt.New(t)
	reg, clock := newTestRegistry(t, nil)
	vendor := ngxtest.NewVendor()
	ic := ngx.NewInterceptor(reg)
	fc := reg.Context(ngx.D3D12).SuperSampling
	inst := fc.CreateInstance(1, params, ngx.FeatureSuperSampling)

	clock.Set(5)
	fc.RequestReset()
	c.Assert(ic.ApplyPendingReset(params, fc), qt.IsFalse)
	c.Assert(fc.ResetPending(), qt.IsTrue)

	// getters alone can't deliver the reset either
	ic.Bind(ngx.Originals{GetI: vendor.Originals().GetI})
	c.Assert(ic.ApplyPendingReset(params, fc), qt.IsFalse)
	c.Assert(fc.ResetPending(), qt.IsTrue)
	_, ok := vendor.Value(params, ngx.ParamReset)
	c.Assert(ok, qt.IsFalse)

	ic.Bind(vendor.Originals())
	c.Assert(ic.EvaluateFeature(fc, inst), qt.IsTrue)
	v, _ := vendor.Value(params, ngx.ParamReset)
	c.Assert(v, qt.Equals, int32(1))
	c.Assert(fc.ResetPending(), qt.IsFalse)
}

func TestInterceptTracksFrameGenerationBuffers(t *testing.T) {
	c := qt.New(t)
	ic, reg, vendor, _ := newInterceptor(c, "3.7.10.0")
	fg := reg.Context(ngx.D3D12).FrameGeneration
	fg.CreateInstance(1, params, ngx.FeatureFrameGeneration)

	vendor.Put(params, ngx.ParamDLSSGUI, uintptr(0x1111))
	vendor.Put(params, ngx.ParamDLSSGDepth, uintptr(0x2222))

	var p uintptr
	c.Assert(ic.GetVoidPointer(params, ngx.ParamDLSSGUI, &p), qt.Equals, ngx.ResultSuccess)
	c.Assert(p, qt.Equals, uintptr(0x1111))
	c.Assert(ic.GetVoidPointer(params, ngx.ParamDLSSGDepth, &p), qt.Equals, ngx.ResultSuccess)
	c.Assert(ic.GetVoidPointer(params, ngx.ParamDLSSGHUDLess, &p), qt.Equals, ngx.ResultFailUnsupportedParameter)

	b := fg.Buffers()
	c.Check(b.UI, qt.Equals, uintptr(0x1111))
	c.Check(b.Depth, qt.Equals, uintptr(0x2222))
	c.Check(b.HUDLess, qt.Equals, uintptr(0))
}
