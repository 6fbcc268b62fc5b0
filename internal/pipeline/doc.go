// Package pipeline runs the normalizer over a batch of items.
//
// Items are processed strictly in order, one at a time. Each item's input is
// resolved to a local file, probed according to the requested operation, and
// normalized; the result is merged into a copy of the item's JSON under the
// configured output field. A failing item either aborts the run or, when
// ContinueOnFail is set, carries an "error" key and the run moves on.
package pipeline
