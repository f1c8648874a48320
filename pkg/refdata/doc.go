// Package refdata holds the reference data model and its read-only accessors.
//
// Reference data (product stores, facility types, location types, countries,
// states, party roles and external mapping types) is published as an
// immutable Snapshot. Every accessor is a pure function of a snapshot: it
// never mutates it and never fails. A missing record is reported through the
// comma-ok form, never through an error.
//
// Snapshots are replaced, not edited. Producers build a Collections value,
// turn it into a Snapshot with NewSnapshot and hand it to a publisher (see
// package stores). Consumers read through an Accessor bound to a View, which
// resolves the current snapshot on every call.
package refdata
