// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package ngxtest provides an in-memory stand-in for the vendor
// parameter accessors, for tests and simulations.
package ngxtest

import (
	"sync"
	"sync/atomic"

	"github.com/devblok/ngxtrack/ngx"
)

type key struct {
	params ngx.Parameters
	name   string
}

// Vendor stores parameter values per block and name, like the SDK does,
// and counts every call it receives.
type Vendor struct {
	mu     sync.Mutex
	values map[key]interface{}

	calls atomic.Int64
}

// NewVendor creates an empty vendor.
func NewVendor() *Vendor {
	return &Vendor{values: make(map[key]interface{})}
}

// Calls returns the number of accessor calls received.
func (v *Vendor) Calls() int64 {
	return v.calls.Load()
}

// Put stores a value directly, bypassing the call counter.
func (v *Vendor) Put(params ngx.Parameters, name string, value interface{}) {
	v.mu.Lock()
	v.values[key{params, name}] = value
	v.mu.Unlock()
}

// Value returns the stored value of a parameter.
func (v *Vendor) Value(params ngx.Parameters, name string) (interface{}, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	val, ok := v.values[key{params, name}]
	return val, ok
}

func (v *Vendor) set(params ngx.Parameters, name string, value interface{}) {
	v.calls.Add(1)
	v.Put(params, name, value)
}

func get[T any](v *Vendor, params ngx.Parameters, name string, out *T) ngx.Result {
	v.calls.Add(1)
	if out == nil {
		return ngx.ResultFailInvalidParameter
	}
	val, ok := v.Value(params, name)
	if !ok {
		return ngx.ResultFailUnsupportedParameter
	}
	typed, ok := val.(T)
	if !ok {
		return ngx.ResultFailInvalidParameter
	}
	*out = typed
	return ngx.ResultSuccess
}

// Originals returns accessors backed by the vendor.
func (v *Vendor) Originals() ngx.Originals {
	return ngx.Originals{
		SetI:   func(p ngx.Parameters, n string, val int32) { v.set(p, n, val) },
		SetUI:  func(p ngx.Parameters, n string, val uint32) { v.set(p, n, val) },
		SetULL: func(p ngx.Parameters, n string, val uint64) { v.set(p, n, val) },
		SetF:   func(p ngx.Parameters, n string, val float32) { v.set(p, n, val) },
		SetD:   func(p ngx.Parameters, n string, val float64) { v.set(p, n, val) },

		GetI:           func(p ngx.Parameters, n string, out *int32) ngx.Result { return get(v, p, n, out) },
		GetUI:          func(p ngx.Parameters, n string, out *uint32) ngx.Result { return get(v, p, n, out) },
		GetULL:         func(p ngx.Parameters, n string, out *uint64) ngx.Result { return get(v, p, n, out) },
		GetF:           func(p ngx.Parameters, n string, out *float32) ngx.Result { return get(v, p, n, out) },
		GetD:           func(p ngx.Parameters, n string, out *float64) ngx.Result { return get(v, p, n, out) },
		GetVoidPointer: func(p ngx.Parameters, n string, out *uintptr) ngx.Result { return get(v, p, n, out) },
	}
}

// Clock is a manually advanced frame clock.
type Clock struct {
	frames atomic.Uint64
}

// FramesDrawn implements ngx.FrameClock.
func (c *Clock) FramesDrawn() uint64 {
	return c.frames.Load()
}

// Set moves the clock to frame.
func (c *Clock) Set(frame uint64) {
	c.frames.Store(frame)
}

// Advance moves the clock one frame forward and returns the new frame.
func (c *Clock) Advance() uint64 {
	return c.frames.Add(1)
}
