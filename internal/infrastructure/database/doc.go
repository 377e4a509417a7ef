// Package database manages the SQLite database for zkfleet.
//
// It wraps database/sql with connection setup (WAL, busy timeout, single
// writer), embedded schema migrations, health checks, and durability
// controls used by bulk loads.
//
// SQLite supports a single writer; all write paths in this application go
// through one *DB and callers must serialize multi-statement operations.
package database
