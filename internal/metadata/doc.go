// Package metadata normalizes raw ffprobe reports into stable, consumer
// friendly records.
//
// Three operations are supported:
//   - Extract derives the full Metadata record from a parsed report
//   - Duration decomposes a bare decimal-seconds value into HH:MM:SS parts
//   - Resolution parses a "WxH" value and classifies its quality tier
//
// Every function here is pure: no I/O, no shared state, and identical input
// always yields identical output. Missing report fields never fail; each
// derived field documents its default. Number parsing and rendering rules
// live in derive.go so all three operations round and pad the same way.
package metadata
