// Command vidmeta extracts normalized video metadata with ffprobe.
//
// Single inputs are handled by the metadata, duration, and resolution
// commands; batch reads JSON Lines items and writes one output item per line.
// Supporting commands manage the run history, the scratch directory, and the
// configuration file. Logs go to stderr so stdout can be piped; `vidmeta logs`
// reads the optional log file.
package main
