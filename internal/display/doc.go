// Package display supervises the single led-image-viewer process that
// drives the LED matrix.
//
// At most one viewer runs at a time. Start stops any current viewer and
// launches a new one for the requested asset; Stop escalates from
// SIGTERM to SIGKILL after a grace period; brightness changes restart
// the viewer because the binary only reads brightness at startup.
//
// Status snapshots re-probe process liveness from the OS, so a viewer
// that crashed on its own is reported as not running even though the
// supervisor still remembers which asset it was showing.
package display
