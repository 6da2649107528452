// Package catalog lists and resolves the GIF assets available to the
// display. Assets live flat in a single configured directory; listing is
// always best-effort and never fails the caller.
package catalog
