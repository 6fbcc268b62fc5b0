// Package source turns pipeline inputs into local files that ffprobe can read.
//
// Inputs arrive as a local path, a base64 payload attached to the item, or an
// http(s) URL. Payloads and downloads are written to uniquely named scratch
// files that the caller must Release. Sweep removes scratch files orphaned by
// crashed runs; it takes an exclusive lock on the scratch directory while
// active runs hold a shared Claim.
package source
