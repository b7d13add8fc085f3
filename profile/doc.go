// Package profile provides optional runtime profiling backed by
// [github.com/pkg/profile].
//
// Profiling is compiled in only with the pprof build tag:
//
//	go build -tags pprof .
//
// Without the tag [Modes] is empty and [Profiler.Start] always returns a
// no-op [Stopper], so callers never need their own build constraints.
//
//	p := profile.Profiler{Mode: "cpu", Path: dir, Quiet: true}
//	defer p.Start().Stop()
//
// Profile files are written to Path with names matching the mode (cpu.pprof,
// mem.pprof, and so on) and can be inspected with "go tool pprof".
package profile

// Tag is the build tag required to enable profiling.
const Tag = `pprof`
