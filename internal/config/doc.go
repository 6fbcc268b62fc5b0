// Package config loads, normalizes, and validates vidmeta configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the VIDMETA_FFPROBE environment
// override. The Config type centralizes every knob the CLI and pipeline need,
// so scratch and log directories, ffprobe settings, and fetch limits are
// discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
