// Package preflight provides readiness checks for the filesystem paths and
// external binaries vidmeta depends on.
//
// The CLI "vidmeta status" command renders these results as a table, and
// batch runs call RunAll before touching any input so a missing ffprobe or
// an unwritable scratch directory fails fast instead of once per item.
//
// Optional features are only checked when enabled in config.
package preflight
