// Package history records the control actions taken on the display
// (start, stop, brightness changes) in SQLite and serves paginated
// queries over them. Recording is best-effort and never blocks a
// display operation.
package history
