package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gobuffalo/envy"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/devblok/ngxtrack/ngx"
)

// Configuration defines the process wide tracker configuration
type Configuration struct {
	Log  LogConfiguration
	NGX  NGXConfiguration
	Time TimeConfiguration
}

// LogConfiguration configures the logger
type LogConfiguration struct {
	Level logrus.Level

	// Format is either "text" or "json"
	Format string
}

// NGXConfiguration configures the feature registry and interceptor
type NGXConfiguration struct {
	DLSSModule  string
	DLSSGModule string

	// Versions the driver reports in place of the module's own,
	// zero when not overridden
	DLSSVersionOverride  ngx.Version
	DLSSGVersionOverride ngx.Version

	Overrides     ngx.Overrides
	ShowIndicator bool

	// ActiveWindow is the number of frames a feature counts
	// as active after it was last evaluated
	ActiveWindow uint64
}

// TimeConfiguration is used to configure time services
type TimeConfiguration struct {
	// FramesPerSecond caps frames per second that is put out
	// To unlimit, set to 0
	FramesPerSecond int
}

// Environment variables read by LoadConfiguration
const (
	EnvLogLevel             = "NGX_LOG_LEVEL"
	EnvLogFormat            = "NGX_LOG_FORMAT"
	EnvDLSSModule           = "NGX_DLSS_MODULE"
	EnvDLSSGModule          = "NGX_DLSSG_MODULE"
	EnvDLSSVersionOverride  = "NGX_DLSS_VERSION_OVERRIDE"
	EnvDLSSGVersionOverride = "NGX_DLSSG_VERSION_OVERRIDE"
	EnvForcePreset          = "NGX_FORCE_PRESET"
	EnvForcePerfQuality     = "NGX_FORCE_PERF_QUALITY"
	EnvForceSharpness       = "NGX_FORCE_SHARPNESS"
	EnvAlphaUpscaling       = "NGX_ALPHA_UPSCALING"
	EnvAutoExposure         = "NGX_AUTO_EXPOSURE"
	EnvShowIndicator        = "NGX_SHOW_INDICATOR"
	EnvActiveWindow         = "NGX_ACTIVE_WINDOW"
	EnvFramesPerSecond      = "TIME_FPS"
)

// ErrConfiguration wraps every invalid configuration value.
var ErrConfiguration = errors.New("invalid configuration")

// DefaultConfiguration returns the configuration used when nothing is set.
func DefaultConfiguration() Configuration {
	return Configuration{
		Log: LogConfiguration{
			Level:  logrus.InfoLevel,
			Format: "text",
		},
		NGX: NGXConfiguration{
			DLSSModule:   ngx.DefaultDLSSModule,
			DLSSGModule:  ngx.DefaultDLSSGModule,
			ActiveWindow: 2,
		},
		Time: TimeConfiguration{
			FramesPerSecond: 60,
		},
	}
}

// LoadConfiguration reads the configuration from the environment.
// The given .env files are read first, in order, but never replace
// a variable that is already set. Empty variables count as unset.
func LoadConfiguration(files ...string) (Configuration, error) {
	for _, file := range files {
		vars, err := godotenv.Read(file)
		if err != nil {
			return Configuration{}, fmt.Errorf("%s: %w", file, err)
		}
		for key, value := range vars {
			if current, err := envy.MustGet(key); err != nil || current == "" {
				envy.Set(key, value)
			}
		}
	}

	cfg := DefaultConfiguration()
	p := parser{}

	if s := env(EnvLogLevel, ""); s != "" {
		level, err := logrus.ParseLevel(s)
		p.check(EnvLogLevel, err)
		cfg.Log.Level = level
	}
	switch format := strings.ToLower(env(EnvLogFormat, cfg.Log.Format)); format {
	case "text", "json":
		cfg.Log.Format = format
	default:
		p.check(EnvLogFormat, fmt.Errorf("unknown format %q", format))
	}

	cfg.NGX.DLSSModule = env(EnvDLSSModule, cfg.NGX.DLSSModule)
	cfg.NGX.DLSSGModule = env(EnvDLSSGModule, cfg.NGX.DLSSGModule)
	cfg.NGX.DLSSVersionOverride = p.version(EnvDLSSVersionOverride)
	cfg.NGX.DLSSGVersionOverride = p.version(EnvDLSSGVersionOverride)

	o := &cfg.NGX.Overrides
	if s := env(EnvForcePreset, ""); s != "" {
		preset, err := ngx.ParsePreset(s)
		p.check(EnvForcePreset, err)
		o.ForcePreset, o.Preset = err == nil, preset
	}
	if s := env(EnvForcePerfQuality, ""); s != "" {
		quality, err := ngx.ParsePerfQuality(s)
		p.check(EnvForcePerfQuality, err)
		o.ForcePerfQuality, o.PerfQuality = err == nil, quality
	}
	if s := env(EnvForceSharpness, ""); s != "" {
		sharpness, err := strconv.ParseFloat(s, 32)
		if err == nil && (sharpness < -1 || sharpness > 1) {
			err = fmt.Errorf("sharpness %v outside [-1, 1]", sharpness)
		}
		p.check(EnvForceSharpness, err)
		o.ForceSharpness, o.Sharpness = err == nil, float32(sharpness)
	}
	o.AlphaUpscaling = p.bool(EnvAlphaUpscaling)
	o.AutoExposure = p.bool(EnvAutoExposure)
	cfg.NGX.ShowIndicator = p.bool(EnvShowIndicator)

	if s := env(EnvActiveWindow, ""); s != "" {
		window, err := strconv.ParseUint(s, 10, 64)
		p.check(EnvActiveWindow, err)
		if err == nil {
			cfg.NGX.ActiveWindow = window
		}
	}
	if s := env(EnvFramesPerSecond, ""); s != "" {
		fps, err := strconv.Atoi(s)
		if err == nil && fps < 0 {
			err = errors.New("negative frame rate")
		}
		p.check(EnvFramesPerSecond, err)
		if err == nil {
			cfg.Time.FramesPerSecond = fps
		}
	}

	if err := errors.Join(p.errs...); err != nil {
		return Configuration{}, err
	}
	return cfg, nil
}

// env is envy.Get with empty values treated as unset.
func env(key, def string) string {
	if v := strings.TrimSpace(envy.Get(key, "")); v != "" {
		return v
	}
	return def
}

type parser struct {
	errs []error
}

func (p *parser) check(key string, err error) {
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%w: %s: %v", ErrConfiguration, key, err))
	}
}

func (p *parser) bool(key string) bool {
	s := env(key, "")
	if s == "" {
		return false
	}
	b, err := strconv.ParseBool(s)
	p.check(key, err)
	return b
}

func (p *parser) version(key string) ngx.Version {
	s := env(key, "")
	if s == "" {
		return ngx.Version{}
	}
	v, err := ngx.ParseVersion(s)
	p.check(key, err)
	return v
}
