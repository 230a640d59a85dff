// Package profile provides optional runtime profiling for the tsk
// command, backed by [github.com/pkg/profile].
//
// Profiling is compiled in only with the "pprof" build tag:
//
//	go build -tags pprof .
//
// Without the tag every operation is a no-op with zero overhead, so the
// CLI exposes its profiling flags unconditionally.
//
// Supported modes (with the tag): allocs, block, clock, cpu, goroutine,
// heap, mem, mutex, thread, trace. [Modes] returns the list
// programmatically.
//
//	tsk --pprof-mode=cpu --pprof-dir=/tmp/profiles compile app.tsk
//
// Profile files are written to the output directory named after the mode,
// e.g. cpu.pprof. The pprof build also registers the net/http/pprof
// handlers, so an embedding application that serves HTTP gains the
// /debug/pprof/ endpoints for free.
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
