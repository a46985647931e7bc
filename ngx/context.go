// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package ngx

import (
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"
)

// FrameClock reports how many frames the host has drawn so far.
type FrameClock interface {
	FramesDrawn() uint64
}

// Backend identifies the graphics API a context belongs to.
type Backend int

// Supported backends
const (
	D3D11 Backend = iota
	D3D12
	Vulkan
)

// Backends lists every backend in a stable order.
var Backends = [...]Backend{D3D11, D3D12, Vulkan}

func (b Backend) String() string {
	switch b {
	case D3D11:
		return "D3D11"
	case D3D12:
		return "D3D12"
	case Vulkan:
		return "Vulkan"
	}
	return "unknown"
}

// Observation holds the last parameter values seen for a context.
type Observation struct {
	Width     uint32
	Height    uint32
	OutWidth  uint32
	OutHeight uint32

	Flags       CreateFlags
	PerfQuality PerfQuality
	Preset      Preset
	Sharpness   float32

	Jitter  mgl32.Vec2
	MVScale mgl32.Vec2
}

// HDR reports whether the creation flags ask for HDR input.
func (o Observation) HDR() bool {
	return o.Flags&FlagIsHDR != 0
}

// Buffers keeps the resource pointers frame generation was handed.
// They are bookkeeping only, nothing here owns them.
type Buffers struct {
	UI         uintptr
	HUDLess    uintptr
	Backbuffer uintptr
	MVecs      uintptr
	Depth      uintptr
}

// FeatureContext tracks the instances of one feature family on one backend.
type FeatureContext struct {
	backend Backend
	family  *Family
	clock   FrameClock
	guard   *Spinlock
	log     logrus.FieldLogger

	table *Table

	last       atomic.Pointer[Instance]
	lastFrame  atomic.Uint64
	resetFrame atomic.Uint64

	// guarded by guard
	observed  Observation
	flagsSeen bool
	buffers   Buffers
}

func newFeatureContext(backend Backend, family *Family, clock FrameClock, guard *Spinlock, log logrus.FieldLogger) *FeatureContext {
	c := &FeatureContext{
		backend: backend,
		family:  family,
		clock:   clock,
		guard:   guard,
		log: log.WithFields(logrus.Fields{
			"backend": backend.String(),
			"family":  family.Kind().String(),
		}),
	}
	c.table = NewTable(c.evicted)
	return c
}

// Backend returns the backend the context belongs to.
func (c *FeatureContext) Backend() Backend {
	return c.backend
}

// Family returns the feature family shared by every backend.
func (c *FeatureContext) Family() *Family {
	return c.family
}

// Instances returns the underlying instance table.
func (c *FeatureContext) Instances() *Table {
	return c.table
}

// HasInstance reports whether handle is tracked.
func (c *FeatureContext) HasInstance(handle Handle) bool {
	return c.table.Has(handle)
}

// GetInstance returns the record for handle or nil.
func (c *FeatureContext) GetInstance(handle Handle) *Instance {
	return c.table.Get(handle)
}

// CreateInstance records an instance the vendor just created.
func (c *FeatureContext) CreateInstance(handle Handle, params Parameters, feature Feature) *Instance {
	inst := c.table.Insert(handle, params, feature)
	c.log.WithFields(logrus.Fields{
		"handle":  uintptr(handle),
		"feature": feature.String(),
	}).Debug("feature instance created")
	return inst
}

// ReleaseInstance forgets an instance the vendor released.
func (c *FeatureContext) ReleaseInstance(handle Handle) bool {
	if !c.table.Remove(handle) {
		return false
	}
	c.log.WithField("handle", uintptr(handle)).Debug("feature instance released")
	return true
}

// evicted runs under the table's write lock, so the back-reference
// is gone before anyone can look the handle up again.
func (c *FeatureContext) evicted(inst *Instance) {
	c.last.CompareAndSwap(inst, nil)
}

// EvaluateFeature records that inst is evaluated on the current frame.
// It returns false without touching anything when inst is nil.
// It takes no locks and doesn't allocate.
func (c *FeatureContext) EvaluateFeature(inst *Instance) bool {
	if inst == nil {
		return false
	}

	frame := c.clock.FramesDrawn()

	// The frame goes into the record before the record is published,
	// a reader that finds the record through last also finds its frame.
	storeMax(&inst.lastFrame, frame)
	c.last.Store(inst)
	storeMax(&c.lastFrame, frame)
	return true
}

func storeMax(v *atomic.Uint64, n uint64) {
	for {
		cur := v.Load()
		if n <= cur || v.CompareAndSwap(cur, n) {
			return
		}
	}
}

// LastEvaluation returns the last evaluated instance and the frame it was
// evaluated on, read from the same record. The instance is checked against
// the table first, so a released one is never returned.
func (c *FeatureContext) LastEvaluation() (*Instance, uint64) {
	inst := c.last.Load()
	if inst == nil {
		return nil, 0
	}
	frame := inst.lastFrame.Load()
	if c.table.Resolve(inst.ref) != inst {
		return nil, 0
	}
	return inst, frame
}

// LastInstance returns the last evaluated instance, if it's still live.
func (c *FeatureContext) LastInstance() *Instance {
	inst, _ := c.LastEvaluation()
	return inst
}

// LastFrame returns the most recent frame any instance was evaluated on.
func (c *FeatureContext) LastFrame() uint64 {
	return c.lastFrame.Load()
}

// IsActive reports whether an instance was evaluated within the last window frames.
func (c *FeatureContext) IsActive(window uint64) bool {
	inst, frame := c.LastEvaluation()
	if inst == nil {
		return false
	}
	now := c.clock.FramesDrawn()
	return now <= frame || now-frame <= window
}

// RequestReset asks for the feature to be reset before its next evaluation.
// The watermark is never below the last evaluated frame, so an evaluation
// racing the request can't expire it.
func (c *FeatureContext) RequestReset() {
	frame := c.clock.FramesDrawn()
	if last := c.lastFrame.Load(); last > frame {
		frame = last
	}
	if frame == 0 {
		frame = 1
	}
	c.resetFrame.Store(frame)
	c.log.WithField("frame", frame).Debug("reset requested")
}

// ResetPending reports whether the reset watermark is at or past the last evaluated frame.
func (c *FeatureContext) ResetPending() bool {
	reset := c.resetFrame.Load()
	return reset != 0 && reset >= c.lastFrame.Load()
}

// ConsumeReset clears a pending reset. Only one caller wins a given request.
func (c *FeatureContext) ConsumeReset() bool {
	reset := c.resetFrame.Load()
	if reset == 0 || reset < c.lastFrame.Load() {
		return false
	}
	return c.resetFrame.CompareAndSwap(reset, 0)
}

// ResetFrame returns the raw reset watermark, zero when none is set.
func (c *FeatureContext) ResetFrame() uint64 {
	return c.resetFrame.Load()
}

// Observed returns a copy of the last observed parameter values.
func (c *FeatureContext) Observed() Observation {
	c.guard.Lock()
	o := c.observed
	c.guard.Unlock()
	return o
}

// Buffers returns a copy of the frame generation buffer pointers.
func (c *FeatureContext) Buffers() Buffers {
	c.guard.Lock()
	b := c.buffers
	c.guard.Unlock()
	return b
}

// observeInteger records an integer parameter. Changes in resolution
// or HDR mode invalidate the feature, those request a reset.
func (c *FeatureContext) observeInteger(name string, value int64) {
	var reset bool

	c.guard.Lock()
	o := &c.observed
	switch name {
	case ParamWidth:
		reset = updateDim(&o.Width, value)
	case ParamHeight:
		reset = updateDim(&o.Height, value)
	case ParamOutWidth:
		reset = updateDim(&o.OutWidth, value)
	case ParamOutHeight:
		reset = updateDim(&o.OutHeight, value)
	case ParamCreateFlags:
		flags := CreateFlags(value)
		reset = c.flagsSeen && (o.Flags^flags)&FlagIsHDR != 0
		o.Flags = flags
		c.flagsSeen = true
	case ParamPerfQualityValue:
		o.PerfQuality = PerfQuality(value)
	default:
		if IsPresetParam(name) {
			o.Preset = Preset(value)
		}
	}
	c.guard.Unlock()

	if reset {
		c.RequestReset()
	}
}

func updateDim(dim *uint32, value int64) bool {
	v := uint32(value)
	changed := *dim != 0 && *dim != v
	*dim = v
	return changed
}

func (c *FeatureContext) observeFloat(name string, value float64) {
	c.guard.Lock()
	o := &c.observed
	switch name {
	case ParamSharpness:
		o.Sharpness = float32(value)
	case ParamJitterOffsetX:
		o.Jitter[0] = float32(value)
	case ParamJitterOffsetY:
		o.Jitter[1] = float32(value)
	case ParamMVScaleX:
		o.MVScale[0] = float32(value)
	case ParamMVScaleY:
		o.MVScale[1] = float32(value)
	}
	c.guard.Unlock()
}

func (c *FeatureContext) observePointer(name string, ptr uintptr) {
	c.guard.Lock()
	b := &c.buffers
	switch name {
	case ParamDLSSGUI:
		b.UI = ptr
	case ParamDLSSGHUDLess:
		b.HUDLess = ptr
	case ParamDLSSGBackbuffer:
		b.Backbuffer = ptr
	case ParamDLSSGMVecs:
		b.MVecs = ptr
	case ParamDLSSGDepth:
		b.Depth = ptr
	}
	c.guard.Unlock()
}

// Context groups both feature families for one backend.
type Context struct {
	backend    Backend
	registry   *Registry
	apisCalled atomic.Bool

	SuperSampling   *FeatureContext
	FrameGeneration *FeatureContext
}

// Backend returns the context's backend.
func (c *Context) Backend() Backend {
	return c.backend
}

// LogCall marks the backend as used and makes sure
// the super sampling version is known.
func (c *Context) LogCall() {
	c.apisCalled.Store(true)
	if !c.registry.superSampling.Established() {
		c.registry.establish(c.registry.superSampling, c.registry.cfg.DLSSModule)
	}
}

// APIsCalled reports whether the SDK was called through this backend.
func (c *Context) APIsCalled() bool {
	return c.apisCalled.Load()
}

// Feature returns the feature context for kind.
func (c *Context) Feature(kind FamilyKind) *FeatureContext {
	if kind == FrameGeneration {
		return c.FrameGeneration
	}
	return c.SuperSampling
}
