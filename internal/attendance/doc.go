// Package attendance holds the canonical roster and punch domain model: raw
// record normalization, name resolution, and the idempotent SQLite store.
//
// Data flows one way: raw records fetched from a terminal are normalized into
// typed records, names are resolved against the roster, and batches are
// persisted with replace semantics for users and insert-if-absent semantics
// for punches. Re-syncing a device is always safe.
package attendance
