// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package ngx

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Originals are the vendor's own parameter accessors, the ones the detours
// replaced. Any of them may be nil until the vendor module is hooked.
type Originals struct {
	SetI   func(params Parameters, name string, value int32)
	SetUI  func(params Parameters, name string, value uint32)
	SetULL func(params Parameters, name string, value uint64)
	SetF   func(params Parameters, name string, value float32)
	SetD   func(params Parameters, name string, value float64)

	GetI           func(params Parameters, name string, out *int32) Result
	GetUI          func(params Parameters, name string, out *uint32) Result
	GetULL         func(params Parameters, name string, out *uint64) Result
	GetF           func(params Parameters, name string, out *float32) Result
	GetD           func(params Parameters, name string, out *float64) Result
	GetVoidPointer func(params Parameters, name string, out *uintptr) Result
}

// Overrides are values forced onto the SDK regardless of what the game
// asks for. Each one is applied only if the loaded SDK supports it.
type Overrides struct {
	ForcePreset bool
	Preset      Preset

	ForcePerfQuality bool
	PerfQuality      PerfQuality

	ForceSharpness bool
	Sharpness      float32

	AlphaUpscaling bool
	AutoExposure   bool
}

// Interceptor implements the detoured parameter accessors. Every call is
// forwarded to the vendor exactly once; set calls may be observed and
// overridden on the way in, get results are passed back untouched.
type Interceptor struct {
	reg *Registry
	log logrus.FieldLogger

	originals atomic.Pointer[Originals]
	overrides atomic.Pointer[Overrides]
}

// NewInterceptor creates an interceptor with no originals bound yet.
func NewInterceptor(reg *Registry) *Interceptor {
	ic := &Interceptor{
		reg: reg,
		log: reg.Logger().WithField("layer", "params"),
	}
	ic.originals.Store(&Originals{})
	ic.overrides.Store(&Overrides{})
	return ic
}

// Bind publishes the vendor's original accessors.
func (ic *Interceptor) Bind(o Originals) {
	ic.originals.Store(&o)
}

// SetOverrides replaces the active overrides.
func (ic *Interceptor) SetOverrides(o Overrides) {
	ic.overrides.Store(&o)
}

// Overrides returns the active overrides.
func (ic *Interceptor) Overrides() Overrides {
	return *ic.overrides.Load()
}

// SetI intercepts the vendor's int setter.
func (ic *Interceptor) SetI(params Parameters, name string, value int32) {
	fn := ic.originals.Load().SetI
	if fn == nil {
		return
	}
	fn(params, name, int32(ic.observeInteger(params, name, int64(value))))
}

// SetUI intercepts the vendor's unsigned int setter.
func (ic *Interceptor) SetUI(params Parameters, name string, value uint32) {
	fn := ic.originals.Load().SetUI
	if fn == nil {
		return
	}
	fn(params, name, uint32(ic.observeInteger(params, name, int64(value))))
}

// SetULL intercepts the vendor's unsigned long long setter.
func (ic *Interceptor) SetULL(params Parameters, name string, value uint64) {
	fn := ic.originals.Load().SetULL
	if fn == nil {
		return
	}
	fn(params, name, uint64(ic.observeInteger(params, name, int64(value))))
}

// SetF intercepts the vendor's float setter.
func (ic *Interceptor) SetF(params Parameters, name string, value float32) {
	fn := ic.originals.Load().SetF
	if fn == nil {
		return
	}
	fn(params, name, float32(ic.observeFloat(params, name, float64(value))))
}

// SetD intercepts the vendor's double setter.
func (ic *Interceptor) SetD(params Parameters, name string, value float64) {
	fn := ic.originals.Load().SetD
	if fn == nil {
		return
	}
	fn(params, name, ic.observeFloat(params, name, value))
}

// GetI intercepts the vendor's int getter.
func (ic *Interceptor) GetI(params Parameters, name string, out *int32) Result {
	fn := ic.originals.Load().GetI
	if fn == nil {
		return ResultFailNotInitialized
	}
	return ic.traceGet(name, fn(params, name, out))
}

// GetUI intercepts the vendor's unsigned int getter.
func (ic *Interceptor) GetUI(params Parameters, name string, out *uint32) Result {
	fn := ic.originals.Load().GetUI
	if fn == nil {
		return ResultFailNotInitialized
	}
	return ic.traceGet(name, fn(params, name, out))
}

// GetULL intercepts the vendor's unsigned long long getter.
func (ic *Interceptor) GetULL(params Parameters, name string, out *uint64) Result {
	fn := ic.originals.Load().GetULL
	if fn == nil {
		return ResultFailNotInitialized
	}
	return ic.traceGet(name, fn(params, name, out))
}

// GetF intercepts the vendor's float getter.
func (ic *Interceptor) GetF(params Parameters, name string, out *float32) Result {
	fn := ic.originals.Load().GetF
	if fn == nil {
		return ResultFailNotInitialized
	}
	return ic.traceGet(name, fn(params, name, out))
}

// GetD intercepts the vendor's double getter.
func (ic *Interceptor) GetD(params Parameters, name string, out *float64) Result {
	fn := ic.originals.Load().GetD
	if fn == nil {
		return ResultFailNotInitialized
	}
	return ic.traceGet(name, fn(params, name, out))
}

// GetVoidPointer intercepts the vendor's pointer getter. Frame generation
// resources handed out this way are recorded on the owning context.
func (ic *Interceptor) GetVoidPointer(params Parameters, name string, out *uintptr) Result {
	fn := ic.originals.Load().GetVoidPointer
	if fn == nil {
		return ResultFailNotInitialized
	}

	res := fn(params, name, out)
	if res.Succeeded() && out != nil {
		if ctx, _ := ic.reg.Owner(params); ctx != nil && ctx.family.Kind() == FrameGeneration {
			ctx.observePointer(name, *out)
		}
	}
	return ic.traceGet(name, res)
}

func (ic *Interceptor) traceGet(name string, res Result) Result {
	if res.Failed() {
		ic.log.WithFields(logrus.Fields{
			"param":  name,
			"result": res.String(),
		}).Debug("vendor get failed")
	}
	return res
}

// ApplyPendingReset forwards Reset=1 for params if ctx has a reset pending.
// Without a bound int setter the reset stays pending.
func (ic *Interceptor) ApplyPendingReset(params Parameters, ctx *FeatureContext) bool {
	fn := ic.originals.Load().SetI
	if ctx == nil || fn == nil || !ctx.ConsumeReset() {
		return false
	}
	fn(params, ParamReset, 1)
	ctx.log.Debug("reset applied")
	return true
}

// EvaluateFeature is the per frame entry point: it applies a pending
// reset to the instance's parameters and records the evaluation.
func (ic *Interceptor) EvaluateFeature(ctx *FeatureContext, inst *Instance) bool {
	if ctx == nil || inst == nil {
		return false
	}
	ic.ApplyPendingReset(inst.Parameters, ctx)
	return ctx.EvaluateFeature(inst)
}

// observeInteger applies overrides to an integer value and records it
// on the owning context. It returns the value to forward.
func (ic *Interceptor) observeInteger(params Parameters, name string, value int64) int64 {
	ov := ic.overrides.Load()
	gate := ic.reg.superSampling.Gate()

	switch {
	case IsPresetParam(name):
		if ov.ForcePreset && gate.SupportsPreset(ov.Preset) {
			value = ic.override(name, value, int64(ov.Preset))
		}
	case name == ParamPerfQualityValue:
		if ov.ForcePerfQuality && gate.SupportsPerfQuality(ov.PerfQuality) {
			value = ic.override(name, value, int64(ov.PerfQuality))
		}
	case name == ParamCreateFlags:
		flags := CreateFlags(value)
		if ov.AlphaUpscaling && gate.HasAlphaUpscaling() {
			flags |= FlagAlphaUpscaling
		}
		if ov.AutoExposure {
			flags |= FlagAutoExposure
		}
		value = ic.override(name, value, int64(flags))
	}

	if ctx, _ := ic.reg.Owner(params); ctx != nil {
		ctx.observeInteger(name, value)
	}
	return value
}

func (ic *Interceptor) observeFloat(params Parameters, name string, value float64) float64 {
	ov := ic.overrides.Load()
	if name == ParamSharpness && ov.ForceSharpness && ic.reg.superSampling.Gate().HasSharpening() {
		if value != float64(ov.Sharpness) {
			ic.log.WithFields(logrus.Fields{
				"param": name,
				"from":  value,
				"to":    ov.Sharpness,
			}).Debug("parameter overridden")
		}
		value = float64(ov.Sharpness)
	}

	if ctx, _ := ic.reg.Owner(params); ctx != nil {
		ctx.observeFloat(name, value)
	}
	return value
}

func (ic *Interceptor) override(name string, from, to int64) int64 {
	if from != to {
		ic.log.WithFields(logrus.Fields{
			"param": name,
			"from":  from,
			"to":    to,
		}).Debug("parameter overridden")
	}
	return to
}
