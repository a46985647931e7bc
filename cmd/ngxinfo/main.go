// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	log "github.com/sirupsen/logrus"

	"github.com/devblok/ngxtrack/core"
	"github.com/devblok/ngxtrack/device"
	"github.com/devblok/ngxtrack/ngx"
)

var (
	envFile      = flag.String("env", "", "Load configuration from a .env file")
	moduleDir    = flag.String("dir", "", "Directory holding the vendor modules")
	dlssVersion  = flag.String("dlss", "", "Assume this DLSS version instead of reading the module")
	dlssgVersion = flag.String("dlssg", "", "Assume this DLSS-G version instead of reading the module")
	noVulkan     = flag.Bool("novk", false, "Skip Vulkan adapter enumeration")
)

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

	versions, err := versionSource(cfg.NGX)
	if err != nil {
		logger.Fatal(err)
	}

	reg, err := ngx.NewRegistry(cfg.NGX.RegistryConfig(&core.FrameCounter{}, versions, logger))
	if err != nil {
		logger.Fatal(err)
	}
	cfg.NGX.Apply(reg, nil)
	if err := reg.EstablishVersions(); err != nil {
		logger.WithError(err).Warn("not every SDK version could be established")
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	printFamilies(w, reg.SuperSampling(), reg.FrameGeneration())
	printPresets(w, reg.SuperSampling().Gate())
	w.Flush()

	if !*noVulkan {
		printAdapters(logger)
	}
}

func versionSource(cfg core.NGXConfiguration) (ngx.VersionSource, error) {
	if *dlssVersion == "" && *dlssgVersion == "" {
		return ngx.FileVersionSource{Dir: *moduleDir}, nil
	}
	static := map[string]string{}
	if *dlssVersion != "" {
		static[cfg.DLSSModule] = *dlssVersion
	}
	if *dlssgVersion != "" {
		static[cfg.DLSSGModule] = *dlssgVersion
	}
	return ngx.NewStaticVersionSource(static)
}

func printFamilies(w *tabwriter.Writer, families ...*ngx.Family) {
	fmt.Fprint(w, "capability")
	for _, f := range families {
		v := f.Version()
		state := v.String()
		if !f.Established() {
			state = "unknown"
		} else if v.DriverOverride {
			state += " (driver)"
		}
		fmt.Fprintf(w, "\t%s %s", f.Kind(), state)
	}
	fmt.Fprintln(w)

	rows := make([][]ngx.Capability, len(families))
	for i, f := range families {
		rows[i] = f.Gate().Capabilities()
	}
	for c := range rows[0] {
		fmt.Fprint(w, rows[0][c].Name)
		for i := range families {
			fmt.Fprintf(w, "\t%s", yesNo(rows[i][c].Supported))
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)
}

func printPresets(w *tabwriter.Writer, gate ngx.Gate) {
	var presets, qualities []string
	for p := ngx.PresetA; p <= ngx.PresetK; p++ {
		if gate.SupportsPreset(p) {
			presets = append(presets, p.String())
		}
	}
	for q := ngx.PerfQualityMaxPerf; q <= ngx.PerfQualityDLAA; q++ {
		if gate.SupportsPerfQuality(q) {
			qualities = append(qualities, q.String())
		}
	}
	fmt.Fprintf(w, "render presets\t%s\n", strings.Join(presets, " "))
	fmt.Fprintf(w, "perf quality\t%s\n\n", strings.Join(qualities, " "))
}

func printAdapters(logger *log.Logger) {
	vulkan, err := device.NewVulkan(device.DefaultVulkanApplicationInfo)
	if err != nil {
		logger.WithError(err).Warn("Vulkan unavailable, adapters not listed")
		return
	}
	defer vulkan.Destroy()

	adapters := vulkan.Adapters()
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "adapter\ttype\tdriver\tmemory")
	for _, a := range adapters {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d MiB\n", a.Name, a.Type, a.Driver(), a.Memory>>20)
	}
	w.Flush()

	if len(device.NVIDIAAdapters(adapters)) == 0 {
		logger.Warn("no NVIDIA adapter found, the SDK will not load")
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
