// Package services defines shared utilities consumed by the probe pipeline and
// its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers, item indexes, and operation
//     names for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     from ffprobe, remote fetches, and configuration into stable kinds.
//
// Use these helpers when wiring new pipeline code so error handling and
// observability stay uniform.
package services
