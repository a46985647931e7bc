// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	glm "github.com/go-gl/mathgl/mgl32"
	log "github.com/sirupsen/logrus"

	"github.com/devblok/ngxtrack/core"
	"github.com/devblok/ngxtrack/ngx"
	"github.com/devblok/ngxtrack/ngx/ngxtest"
	"github.com/devblok/ngxtrack/utility/snapshot"
)

var (
	envFile      = flag.String("env", "", "Load configuration from a .env file")
	frames       = flag.Uint64("frames", 600, "Number of frames to simulate, 0 runs until interrupted")
	resizeAt     = flag.Uint64("resize", 300, "Frame at which the swapchain changes resolution, 0 to never resize")
	dlssVersion  = flag.String("dlss", "310.2.1.0", "Simulated DLSS module version")
	dlssgVersion = flag.String("dlssg", "310.2.1.0", "Simulated DLSS-G module version")
	outFile      = flag.String("o", "", "Write a diagnostic snapshot to this file")
)

// renderer is one simulated render thread using the SDK through one backend.
type renderer struct {
	ctx    *ngx.Context
	ic     *ngx.Interceptor
	vendor *ngxtest.Vendor
	log    log.FieldLogger

	ssParams ngx.Parameters
	fgParams ngx.Parameters

	superSampling   *ngx.Instance
	frameGeneration *ngx.Instance

	frames chan uint64
}

func newRenderer(reg *ngx.Registry, ic *ngx.Interceptor, vendor *ngxtest.Vendor, b ngx.Backend) *renderer {
	base := ngx.Parameters(0x10000 * (int(b) + 1))
	r := &renderer{
		ctx:      reg.Context(b),
		ic:       ic,
		vendor:   vendor,
		log:      reg.Logger().WithField("backend", b.String()),
		ssParams: base,
		frames:   make(chan uint64),
	}

	r.ctx.LogCall()
	r.superSampling = r.ctx.SuperSampling.CreateInstance(ngx.Handle(base+1), r.ssParams, ngx.FeatureSuperSampling)
	if b != ngx.D3D11 {
		r.fgParams = base + 0x100
		r.frameGeneration = r.ctx.FrameGeneration.CreateInstance(ngx.Handle(base+2), r.fgParams, ngx.FeatureFrameGeneration)
		for i, name := range []string{ngx.ParamDLSSGBackbuffer, ngx.ParamDLSSGHUDLess, ngx.ParamDLSSGUI, ngx.ParamDLSSGMVecs, ngx.ParamDLSSGDepth} {
			vendor.Put(r.fgParams, name, uintptr(base)+uintptr(0x1000*(i+1)))
		}
	}
	return r
}

func (r *renderer) run(wg *sync.WaitGroup) {
	defer wg.Done()
	for frame := range r.frames {
		r.render(frame)
	}
}

func (r *renderer) render(frame uint64) {
	width, height := uint32(1920), uint32(1080)
	if *resizeAt != 0 && frame >= *resizeAt {
		width, height = 2560, 1440
	}

	ic, p := r.ic, r.ssParams
	ic.SetUI(p, ngx.ParamOutWidth, width)
	ic.SetUI(p, ngx.ParamOutHeight, height)
	ic.SetUI(p, ngx.ParamWidth, width*2/3)
	ic.SetUI(p, ngx.ParamHeight, height*2/3)
	ic.SetI(p, ngx.ParamPerfQualityValue, int32(ngx.PerfQualityMaxQuality))
	ic.SetUI(p, ngx.ParamPresetQuality, uint32(ngx.PresetE))
	ic.SetI(p, ngx.ParamCreateFlags, int32(ngx.FlagMVLowRes|ngx.FlagMVJittered|ngx.FlagDepthInverted))
	ic.SetF(p, ngx.ParamSharpness, 0.2)

	// Halton(2,3) jitter, as renderers usually feed it
	jitter := glm.Vec2{halton(frame, 2) - 0.5, halton(frame, 3) - 0.5}
	ic.SetF(p, ngx.ParamJitterOffsetX, jitter.X())
	ic.SetF(p, ngx.ParamJitterOffsetY, jitter.Y())
	ic.SetF(p, ngx.ParamMVScaleX, float32(width*2/3))
	ic.SetF(p, ngx.ParamMVScaleY, float32(height*2/3))

	if ic.EvaluateFeature(r.ctx.SuperSampling, r.superSampling) && frame%120 == 0 {
		r.log.WithField("frame", frame).Debug("super sampling evaluated")
	}

	if r.frameGeneration != nil {
		ic.SetI(r.fgParams, ngx.ParamDLSSGEnableInterp, 1)
		ic.SetUI(r.fgParams, ngx.ParamDLSSGMultiFrame, 1)
		var ptr uintptr
		for _, name := range []string{ngx.ParamDLSSGBackbuffer, ngx.ParamDLSSGHUDLess, ngx.ParamDLSSGUI, ngx.ParamDLSSGMVecs, ngx.ParamDLSSGDepth} {
			ic.GetVoidPointer(r.fgParams, name, &ptr)
		}
		ic.EvaluateFeature(r.ctx.FrameGeneration, r.frameGeneration)
	}
}

func halton(index uint64, base uint64) float32 {
	f, result := float32(1), float32(0)
	for i := index + 1; i > 0; i /= base {
		f /= float32(base)
		result += f * float32(i%base)
	}
	return result
}

func main() {
	flag.Parse()

	var files []string
	if *envFile != "" {
		files = append(files, *envFile)
	}
	cfg, err := core.LoadConfiguration(files...)
	if err != nil {
		log.Fatal(err)
	}
	logger := core.NewLogger(cfg.Log)

	versions, err := ngx.NewStaticVersionSource(map[string]string{
		cfg.NGX.DLSSModule:  *dlssVersion,
		cfg.NGX.DLSSGModule: *dlssgVersion,
	})
	if err != nil {
		logger.Fatal(err)
	}

	timeService := core.NewTime(cfg.Time)
	defer timeService.Stop()

	reg, err := ngx.NewRegistry(cfg.NGX.RegistryConfig(timeService.Frames(), versions, logger))
	if err != nil {
		logger.Fatal(err)
	}
	if err := reg.EstablishVersions(); err != nil {
		logger.Fatal(err)
	}

	vendor := ngxtest.NewVendor()
	ic := ngx.NewInterceptor(reg)
	ic.Bind(vendor.Originals())
	cfg.NGX.Apply(reg, ic)

	sdkLog := ngx.LogCallback(logger.WithField("component", "sdk"))
	sdkLog(fmt.Sprintf("simulated SDK %s loaded", reg.SuperSampling().Version()), ngx.LoggingOn, ngx.FeatureSuperSampling)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	var renderers []*renderer
	var renderSync sync.WaitGroup
	for _, b := range ngx.Backends {
		r := newRenderer(reg, ic, vendor, b)
		renderers = append(renderers, r)
		renderSync.Add(1)
		go r.run(&renderSync)
	}

	/* Status loop */
	var statusSync sync.WaitGroup
	statusSync.Add(1)
	go func() {
		defer statusSync.Done()
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				logger.WithFields(log.Fields{
					"frame":           timeService.Frames().FramesDrawn(),
					"superSampling":   reg.SuperSamplingActive(cfg.NGX.ActiveWindow),
					"frameGeneration": reg.FrameGenerationActive(cfg.NGX.ActiveWindow),
				}).Info("status")
			}
		}
	}()

	/* Frame loop */
	timeService.Loop(ctx, func(frame uint64) {
		for _, r := range renderers {
			r.frames <- frame
		}
		if *frames != 0 && frame >= *frames {
			cancel()
		}
	})

	for _, r := range renderers {
		close(r.frames)
	}
	renderSync.Wait()
	cancel()
	statusSync.Wait()

	status := report(reg, cfg.NGX.ActiveWindow)
	fmt.Print(status)

	if *outFile != "" {
		if err := writeSnapshot(*outFile, reg, ic, status); err != nil {
			logger.Fatal(err)
		}
		logger.WithField("file", *outFile).Info("snapshot written")
	}
}

func report(reg *ngx.Registry, window uint64) string {
	var sb strings.Builder
	for _, c := range reg.Contexts() {
		for _, fc := range []*ngx.FeatureContext{c.SuperSampling, c.FrameGeneration} {
			inst, frame := fc.LastEvaluation()
			if inst == nil {
				continue
			}
			o := fc.Observed()
			fmt.Fprintf(&sb, "%s %s: handle %#x frame %d active %t render %dx%d output %dx%d quality %s preset %s\n",
				c.Backend(), fc.Family().Kind(), uintptr(inst.Handle), frame, fc.IsActive(window),
				o.Width, o.Height, o.OutWidth, o.OutHeight, o.PerfQuality, o.Preset)
		}
	}
	return sb.String()
}

func writeSnapshot(path string, reg *ngx.Registry, ic *ngx.Interceptor, status string) error {
	builder := snapshot.NewBuilder(snapshot.Header{Author: "ngxsim"})
	if err := builder.Add("status.txt", []byte(status)); err != nil {
		return err
	}

	var wg sync.WaitGroup
	errs := make(chan error, 2*len(reg.Contexts()))
	for _, c := range reg.Contexts() {
		for _, fc := range []*ngx.FeatureContext{c.SuperSampling, c.FrameGeneration} {
			inst := fc.LastInstance()
			if inst == nil {
				continue
			}
			name := fmt.Sprintf("%s/%s.txt", c.Backend(), fc.Family().Kind())
			wg.Add(1)
			go func(params ngx.Parameters) {
				defer wg.Done()
				errs <- builder.Add(name, []byte(ngx.FormatDump(ngx.Dump(ic, params))))
			}(inst.Parameters)
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := builder.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
