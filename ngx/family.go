// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package ngx

import (
	"sync/atomic"
)

// FamilyKind identifies a feature family.
type FamilyKind int

// Feature families
const (
	SuperSampling FamilyKind = iota
	FrameGeneration
)

func (k FamilyKind) String() string {
	switch k {
	case SuperSampling:
		return "DLSS"
	case FrameGeneration:
		return "DLSS-G"
	}
	return "unknown"
}

// IndicatorVisible is the indicator flag bit that shows the vendor on-screen indicator.
const IndicatorVisible uint32 = 0x400

// Family holds state that is shared by every backend for one feature family.
// A single vendor module version applies to the whole process, so there is
// exactly one Family per kind, owned by the Registry.
//
// The version is set once while the SDK module is discovered and
// is read without locking afterwards.
type Family struct {
	kind FamilyKind

	guard       *Spinlock
	version     atomic.Pointer[Version]
	established atomic.Bool
	indicator   atomic.Uint32
}

// NewFamily creates a family, guard serialises version writes.
func NewFamily(kind FamilyKind, guard *Spinlock) *Family {
	if guard == nil {
		guard = &Spinlock{}
	}
	f := &Family{
		kind:  kind,
		guard: guard,
	}
	f.version.Store(&Version{})
	return f
}

// Kind returns the family kind.
func (f *Family) Kind() FamilyKind {
	return f.kind
}

// EstablishVersion records the module version. Only the first call
// takes effect, later ones report false. A driver override is kept too,
// only OverrideVersion replaces it.
func (f *Family) EstablishVersion(v Version) bool {
	f.guard.Lock()
	defer f.guard.Unlock()

	if f.established.Load() {
		return false
	}

	v.DriverOverride = false
	f.version.Store(&v)
	f.established.Store(true)
	return true
}

// OverrideVersion forces a driver reported version.
func (f *Family) OverrideVersion(v Version) {
	f.guard.Lock()
	defer f.guard.Unlock()

	v.DriverOverride = true
	f.version.Store(&v)
	f.established.Store(true)
}

// Established reports whether a version has been recorded.
func (f *Family) Established() bool {
	return f.established.Load()
}

// Version returns the current version, the zero Version until established.
func (f *Family) Version() Version {
	return *f.version.Load()
}

// Gate returns a capability gate for the current version.
func (f *Family) Gate() Gate {
	return NewGate(f.Version())
}

// ShowIndicator sets or clears the visible bit, other flag bits are kept.
func (f *Family) ShowIndicator(show bool) {
	for {
		cur := f.indicator.Load()
		next := cur &^ IndicatorVisible
		if show {
			next |= IndicatorVisible
		}
		if cur == next || f.indicator.CompareAndSwap(cur, next) {
			return
		}
	}
}

// IsIndicatorShown reports the stored indicator state.
func (f *Family) IsIndicatorShown() bool {
	return f.indicator.Load()&IndicatorVisible != 0
}

// IndicatorFlags returns the raw indicator flag word.
func (f *Family) IndicatorFlags() uint32 {
	return f.indicator.Load()
}

// SetIndicatorFlags replaces the raw indicator flag word, as read from the driver.
func (f *Family) SetIndicatorFlags(flags uint32) {
	f.indicator.Store(flags)
}
