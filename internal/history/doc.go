// Package history persists per-item pipeline outcomes in SQLite.
//
// Each batch run gets a UUID; every item it processes becomes one row
// carrying the input label, operation, status, error text, and the derived
// JSON result. The store is optional: the pipeline runs without it and a
// failed write never fails an item.
package history
