// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package ngx tracks DLSS and DLSS-G feature instances created through the
// vendor NGX SDK on every graphics backend, gates SDK behaviours on the
// module version loaded at runtime and sits between the game and the
// vendor's parameter accessors.
//
// A Registry is the process wide entry point. It owns one Family per feature
// family (the version and indicator state that applies to the whole process)
// and one Context per backend, each holding a FeatureContext per family.
package ngx

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Default vendor module names.
const (
	DefaultDLSSModule  = "nvngx_dlss.dll"
	DefaultDLSSGModule = "nvngx_dlssg.dll"
)

// Config configures a Registry.
type Config struct {
	// Clock is the host's frames drawn counter, required.
	Clock FrameClock

	// Versions discovers module versions. Defaults to reading
	// version resources from disk.
	Versions VersionSource

	// Logger defaults to the logrus standard logger.
	Logger logrus.FieldLogger

	DLSSModule  string
	DLSSGModule string
}

// Registry wires families, backend contexts and the frame clock together.
type Registry struct {
	cfg   Config
	log   logrus.FieldLogger
	guard Spinlock

	superSampling   *Family
	frameGeneration *Family

	contexts [len(Backends)]*Context
}

// NewRegistry creates a registry with empty contexts for every backend.
func NewRegistry(cfg Config) (*Registry, error) {
	if cfg.Clock == nil {
		return nil, errors.New("ngx: registry needs a frame clock")
	}
	if cfg.Versions == nil {
		cfg.Versions = FileVersionSource{}
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	if cfg.DLSSModule == "" {
		cfg.DLSSModule = DefaultDLSSModule
	}
	if cfg.DLSSGModule == "" {
		cfg.DLSSGModule = DefaultDLSSGModule
	}

	r := &Registry{
		cfg: cfg,
		log: cfg.Logger.WithField("component", "ngx"),
	}
	r.superSampling = NewFamily(SuperSampling, &r.guard)
	r.frameGeneration = NewFamily(FrameGeneration, &r.guard)

	for _, b := range Backends {
		r.contexts[b] = &Context{
			backend:         b,
			registry:        r,
			SuperSampling:   newFeatureContext(b, r.superSampling, cfg.Clock, &r.guard, r.log),
			FrameGeneration: newFeatureContext(b, r.frameGeneration, cfg.Clock, &r.guard, r.log),
		}
	}
	return r, nil
}

// Context returns the context for backend b, or nil for an unknown backend.
func (r *Registry) Context(b Backend) *Context {
	if b < 0 || int(b) >= len(r.contexts) {
		return nil
	}
	return r.contexts[b]
}

// Contexts returns every backend context.
func (r *Registry) Contexts() []*Context {
	return r.contexts[:]
}

// SuperSampling returns the DLSS family.
func (r *Registry) SuperSampling() *Family {
	return r.superSampling
}

// FrameGeneration returns the DLSS-G family.
func (r *Registry) FrameGeneration() *Family {
	return r.frameGeneration
}

// Guard returns the lock protecting shared parameter state.
func (r *Registry) Guard() *Spinlock {
	return &r.guard
}

// Clock returns the frame clock.
func (r *Registry) Clock() FrameClock {
	return r.cfg.Clock
}

// Logger returns the registry's logger.
func (r *Registry) Logger() logrus.FieldLogger {
	return r.log
}

// EstablishVersions reads the version of both vendor modules.
// Families that already know their version are skipped.
func (r *Registry) EstablishVersions() error {
	var errs []error
	if !r.superSampling.Established() {
		if err := r.establish(r.superSampling, r.cfg.DLSSModule); err != nil {
			errs = append(errs, err)
		}
	}
	if !r.frameGeneration.Established() {
		if err := r.establish(r.frameGeneration, r.cfg.DLSSGModule); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) establish(f *Family, module string) error {
	v, err := r.cfg.Versions.ModuleVersion(module)
	if err != nil {
		r.log.WithError(err).WithField("module", module).Debug("module version unavailable")
		return fmt.Errorf("%s version: %w", f.Kind(), err)
	}
	if f.EstablishVersion(v) {
		r.log.WithFields(logrus.Fields{
			"family":  f.Kind().String(),
			"module":  module,
			"version": v.String(),
		}).Info("SDK version established")
	}
	return nil
}

// RequestReset asks every live feature on every backend to reset,
// for instance after the swapchain changed resolution or HDR mode.
func (r *Registry) RequestReset() {
	for _, c := range r.contexts {
		for _, fc := range []*FeatureContext{c.SuperSampling, c.FrameGeneration} {
			if fc.table.Len() > 0 {
				fc.RequestReset()
			}
		}
	}
}

// SuperSamplingActive reports whether DLSS ran on any backend within window frames.
func (r *Registry) SuperSamplingActive(window uint64) bool {
	return r.active(SuperSampling, window)
}

// FrameGenerationActive reports whether DLSS-G ran on any backend within window frames.
func (r *Registry) FrameGenerationActive(window uint64) bool {
	return r.active(FrameGeneration, window)
}

func (r *Registry) active(kind FamilyKind, window uint64) bool {
	for _, c := range r.contexts {
		if c.Feature(kind).IsActive(window) {
			return true
		}
	}
	return false
}

// Owner finds the feature context and instance using a parameter block.
// Both are nil when no tracked instance uses it.
func (r *Registry) Owner(params Parameters) (*FeatureContext, *Instance) {
	if params == 0 {
		return nil, nil
	}
	for _, c := range r.contexts {
		if inst := c.SuperSampling.table.ByParameters(params); inst != nil {
			return c.SuperSampling, inst
		}
		if inst := c.FrameGeneration.table.ByParameters(params); inst != nil {
			return c.FrameGeneration, inst
		}
	}
	return nil, nil
}

// Reset forgets every tracked instance, used when the vendor module unloads.
func (r *Registry) Reset() {
	for _, c := range r.contexts {
		c.SuperSampling.table.Clear()
		c.FrameGeneration.table.Clear()
	}
	r.log.Info("feature instances cleared")
}
