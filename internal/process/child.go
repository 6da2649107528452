package process

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"syscall"
	"time"
)

// outputBufferSize is the read buffer size for child stdout/stderr capture.
const outputBufferSize = 4096

// Config holds launch parameters for a child process.
type Config struct {
	// Name is a human-readable identifier for logging.
	Name string

	// Binary is the path to the executable.
	Binary string

	// Args are command-line arguments passed to the binary.
	Args []string
}

// Logger defines the logging interface for the process package.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}

// Child is a handle to one spawned process. A Child is created by Launch
// and is not reusable: once the process exits and has been reaped, the
// handle only reports that fact.
type Child struct {
	name   string
	cmd    *exec.Cmd
	logger Logger

	done chan struct{}

	mu      sync.Mutex
	waitErr error
}

// Launch starts the configured binary in a new process group and returns
// a handle to it. Stdout and stderr are drained to the logger, and the
// exit status is reaped by a single background goroutine so the process
// table entry is always reclaimed.
func Launch(cfg Config, logger Logger) (*Child, error) {
	if logger == nil {
		logger = noopLogger{}
	}

	cmd := exec.Command(cfg.Binary, cfg.Args...) //nolint:gosec // binary path comes from validated config
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("creating stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("creating stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", cfg.Name, err)
	}

	c := &Child{
		name:   cfg.Name,
		cmd:    cmd,
		logger: logger,
		done:   make(chan struct{}),
	}

	go c.captureOutput("stdout", stdout)
	go c.captureOutput("stderr", stderr)

	// Single reaper: cmd.Wait must be called exactly once, and it also
	// closes the pipes once the capture goroutines have drained them.
	go func() {
		err := cmd.Wait()
		c.mu.Lock()
		c.waitErr = err
		c.mu.Unlock()
		close(c.done)
		c.logger.Debug("process reaped", "name", c.name, "pid", cmd.Process.Pid, "error", err)
	}()

	logger.Info("process started", "name", cfg.Name, "pid", cmd.Process.Pid, "binary", cfg.Binary)

	return c, nil
}

// captureOutput drains one output stream to the logger.
func (c *Child) captureOutput(stream string, r io.Reader) {
	buf := make([]byte, outputBufferSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			c.logger.Debug("process output",
				"name", c.name,
				"stream", stream,
				"output", string(buf[:n]),
			)
		}
		if err != nil {
			return
		}
	}
}

// PID returns the child's process ID.
func (c *Child) PID() int {
	return c.cmd.Process.Pid
}

// Alive reports whether the process still exists in the process table.
// It checks the exit channel first, then probes the OS with signal 0 so
// the answer is never taken from the cached handle alone.
func (c *Child) Alive() bool {
	select {
	case <-c.done:
		return false
	default:
	}
	return c.cmd.Process.Signal(syscall.Signal(0)) == nil
}

// Terminate sends SIGTERM to the child's process group. A process that
// already exited is not an error.
func (c *Child) Terminate() error {
	return c.signalGroup(syscall.SIGTERM)
}

// Kill sends SIGKILL to the child's process group. A process that
// already exited is not an error.
func (c *Child) Kill() error {
	return c.signalGroup(syscall.SIGKILL)
}

// signalGroup signals the whole process group via the negative PID.
func (c *Child) signalGroup(sig syscall.Signal) error {
	err := syscall.Kill(-c.cmd.Process.Pid, sig)
	if err != nil && !errors.Is(err, syscall.ESRCH) {
		return fmt.Errorf("signalling %s process group: %w", c.name, err)
	}
	return nil
}

// WaitTimeout blocks until the process has been reaped or the timeout
// elapses. It reports true when the process exited within the window.
func (c *Child) WaitTimeout(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-c.done:
		return true
	case <-timer.C:
		return false
	}
}

// Wait blocks until the process has been reaped and returns its exit
// error, nil for a clean exit.
func (c *Child) Wait() error {
	<-c.done
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.waitErr
}
