// Package stores provides the snapshot store for reference data.
// It holds the currently published refdata.Snapshot behind an atomic pointer,
// keeps a bounded publish history, and is the only way a new snapshot
// becomes visible to readers.
package stores
