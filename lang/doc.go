// Package lang implements the configuration language: a line-oriented
// document format with [section] headers, scope blocks, global and
// section-local variables, eagerly evaluated expressions, and cross-file
// references between documents.
//
// Parsing is a single pass over the input. Each line classifies as a
// section header, scope delimiter, key assignment, or array item, and
// assignment values evaluate immediately against the state accumulated so
// far. The result is a Config holding the fully resolved value tree.
package lang
