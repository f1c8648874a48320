// Package loader turns seed files into published reference data snapshots.
//
// A reload reads and validates the configured seeds, builds an immutable
// snapshot, lints it with the policy engine and, when no blocking violation
// is found, publishes it to the snapshot store. A reload that fails or is
// rejected leaves the previously published snapshot in place, so readers
// never see a partial or rejected data set.
package loader
