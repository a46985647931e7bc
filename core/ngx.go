package core

import (
	"github.com/sirupsen/logrus"

	"github.com/devblok/ngxtrack/ngx"
)

// RegistryConfig returns the registry configuration for the given clock and logger.
func (c NGXConfiguration) RegistryConfig(clock ngx.FrameClock, versions ngx.VersionSource, logger logrus.FieldLogger) ngx.Config {
	return ngx.Config{
		Clock:       clock,
		Versions:    versions,
		Logger:      logger,
		DLSSModule:  c.DLSSModule,
		DLSSGModule: c.DLSSGModule,
	}
}

// Apply pushes version overrides, the indicator state and
// parameter overrides into a registry and its interceptor.
func (c NGXConfiguration) Apply(reg *ngx.Registry, ic *ngx.Interceptor) {
	if !c.DLSSVersionOverride.IsZero() {
		reg.SuperSampling().OverrideVersion(c.DLSSVersionOverride)
	}
	if !c.DLSSGVersionOverride.IsZero() {
		reg.FrameGeneration().OverrideVersion(c.DLSSGVersionOverride)
	}
	reg.SuperSampling().ShowIndicator(c.ShowIndicator)
	reg.FrameGeneration().ShowIndicator(c.ShowIndicator)
	if ic != nil {
		ic.SetOverrides(c.Overrides)
	}
}
