// Package process wraps a single spawned child process as an owned
// resource: launch in its own process group, capture output, probe
// liveness, signal the group and reap the exit status exactly once.
//
// The package has no restart or supervision policy of its own. Callers
// decide when to launch, when to escalate from SIGTERM to SIGKILL and
// when to discard the handle.
package process
