// Package database manages the SQLite connection used for the playback
// history store: WAL mode, busy timeout, a single-writer pool and
// forward-only schema migrations applied from an embedded filesystem.
package database
