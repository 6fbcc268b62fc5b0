// Package ffprobe provides a typed wrapper around ffprobe output.
//
// This package has no vidmeta-specific dependencies beyond the shared error
// markers.
//
// Key types:
//   - Report: parsed ffprobe JSON with streams and format metadata plus the
//     verbatim payload it was decoded from
//   - Stream: individual audio/video/subtitle stream properties
//   - Format: container-level metadata (duration, size, bitrate)
//   - Value: an optional scalar that accepts JSON strings or numbers
//
// Primary entry points:
//   - Client.Inspect: full format and stream dump as JSON
//   - Client.Duration: container duration in seconds, as text
//   - Client.Resolution: first video stream as "WxH" text
//   - ParseReport: decode a JSON dump obtained elsewhere
package ffprobe
