// Package logs reads the optional vidmeta log file for the `vidmeta logs`
// command: the last N lines, then new lines as they are appended when
// following.
package logs
