// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package ngx

import (
	"fmt"
	"strings"
	"text/tabwriter"
)

// Kind is the value type of a parameter.
type Kind int

// Parameter kinds
const (
	KindInt Kind = iota
	KindUint
	KindULL
	KindFloat
	KindDouble
	KindPointer
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindULL:
		return "ull"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindPointer:
		return "void*"
	}
	return "?"
}

// ParamSpec names a parameter and the accessor used to read it.
type ParamSpec struct {
	Name string
	Kind Kind
}

// KnownParameters are the parameters a dump reads.
var KnownParameters = []ParamSpec{
	{ParamSuperSamplingAvailable, KindInt},
	{ParamSuperSamplingNeedsDriver, KindInt},
	{ParamSuperSamplingMinDriverMajor, KindInt},
	{ParamSuperSamplingMinDriverMinor, KindInt},
	{ParamFrameGenerationAvailable, KindInt},
	{ParamWidth, KindUint},
	{ParamHeight, KindUint},
	{ParamOutWidth, KindUint},
	{ParamOutHeight, KindUint},
	{ParamPerfQualityValue, KindInt},
	{ParamCreateFlags, KindInt},
	{ParamSharpness, KindFloat},
	{ParamFreeMemOnRelease, KindInt},
	{ParamCreationNodeMask, KindUint},
	{ParamVisibilityMask, KindUint},
	{ParamEnableOutput, KindInt},
	{ParamPresetDLAA, KindUint},
	{ParamPresetQuality, KindUint},
	{ParamPresetBalanced, KindUint},
	{ParamPresetPerformance, KindUint},
	{ParamPresetUltraPerformance, KindUint},
	{ParamPresetUltraQuality, KindUint},
	{ParamSizeInBytes, KindULL},
	{ParamDLSSGEnableInterp, KindInt},
	{ParamDLSSGMultiFrame, KindUint},
	{ParamDLSSGBackbuffer, KindPointer},
	{ParamDLSSGHUDLess, KindPointer},
	{ParamDLSSGUI, KindPointer},
	{ParamDLSSGMVecs, KindPointer},
	{ParamDLSSGDepth, KindPointer},
}

// DumpEntry is one parameter read from a block.
type DumpEntry struct {
	Name   string
	Kind   Kind
	Result Result
	Value  string
}

// Dump reads every known parameter of params through the interceptor.
// Entries for failed reads carry the vendor result and no value.
func Dump(ic *Interceptor, params Parameters) []DumpEntry {
	entries := make([]DumpEntry, 0, len(KnownParameters))
	for _, spec := range KnownParameters {
		e := DumpEntry{Name: spec.Name, Kind: spec.Kind}
		switch spec.Kind {
		case KindInt:
			var v int32
			e.Result = ic.GetI(params, spec.Name, &v)
			e.Value = fmt.Sprint(v)
		case KindUint:
			var v uint32
			e.Result = ic.GetUI(params, spec.Name, &v)
			e.Value = fmt.Sprint(v)
		case KindULL:
			var v uint64
			e.Result = ic.GetULL(params, spec.Name, &v)
			e.Value = fmt.Sprint(v)
		case KindFloat:
			var v float32
			e.Result = ic.GetF(params, spec.Name, &v)
			e.Value = fmt.Sprintf("%g", v)
		case KindDouble:
			var v float64
			e.Result = ic.GetD(params, spec.Name, &v)
			e.Value = fmt.Sprintf("%g", v)
		case KindPointer:
			var v uintptr
			e.Result = ic.GetVoidPointer(params, spec.Name, &v)
			e.Value = fmt.Sprintf("%#x", v)
		}
		if e.Result.Failed() {
			e.Value = ""
		}
		entries = append(entries, e)
	}
	return entries
}

// FormatDump renders entries as an aligned table.
func FormatDump(entries []DumpEntry) string {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	for _, e := range entries {
		value := e.Value
		if e.Result.Failed() {
			value = "<" + e.Result.String() + ">"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Name, e.Kind, value)
	}
	w.Flush()
	return sb.String()
}
