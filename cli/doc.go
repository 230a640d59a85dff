// Package cli contains the command line interface for tsk.
//
// # Commands
//
//   - parse:     parse a document and print the resolved configuration
//     (tsk, json, or yaml)
//   - get:       print the value at one dotted key path
//   - fmt:       rewrite a document in canonical form
//   - compile:   compile a document into a binary container (.pnt)
//   - decompile: decode a container back to text
//   - inspect:   show a container's header and metadata
//   - keygen:    generate encryption and signing keys
//   - version:   print version information
//
// # Logging Options
//
//   - --log-level: minimum log level (trace, debug, info, warn, error)
//   - --log-format: output format (json, text)
//   - --log-time-layout: timestamp format (RFC3339, RFC3339Nano, ...)
//   - --log-caller: include caller information
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof .
//
//   - --pprof-mode: enable profiling (allocs, block, clock, cpu,
//     goroutine, heap, mem, mutex, thread, trace)
//   - --pprof-dir: profile output directory
package cli
