package display

import (
	"fmt"
	"sync"
	"time"

	"github.com/pixelforge/ledmatrixd/internal/catalog"
	"github.com/pixelforge/ledmatrixd/internal/process"
)

// Config holds the supervisor's fixed parameters.
type Config struct {
	// ViewerBinary is the path to the led-image-viewer executable.
	ViewerBinary string

	// Rows and Cols describe the LED matrix geometry.
	Rows int
	Cols int

	// DefaultBrightness is used until a caller sets one. Clamped to [1,100].
	DefaultBrightness int

	// GracePeriod is how long Stop waits after SIGTERM before SIGKILL.
	GracePeriod time.Duration
}

// Status is a point-in-time snapshot of the supervisor.
type Status struct {
	// Running reports whether the viewer process is alive right now,
	// probed from the OS rather than taken from the cached handle.
	Running bool `json:"running"`

	// ActiveAsset is the asset the supervisor last launched, nil when no
	// viewer is owned. It remains set for a viewer that exited on its own
	// until the next Start or Stop.
	ActiveAsset *string `json:"active_asset"`

	Brightness int `json:"brightness"`
	Rows       int `json:"rows"`
	Cols       int `json:"cols"`

	// Assets is the current catalog listing.
	Assets []catalog.Entry `json:"assets"`
}

// Logger defines the logging interface for the supervisor.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Supervisor owns at most one viewer process at a time.
//
// Lifecycle operations (Start, Stop, UpdateBrightness, Close) are
// serialised by opMu for their whole check-act sequence, including the
// Stop grace wait. Ownership fields are additionally guarded by mu so
// Status never blocks behind a slow Stop.
type Supervisor struct {
	cfg     Config
	catalog *catalog.Catalog
	logger  Logger

	opMu sync.Mutex

	mu          sync.RWMutex
	child       *process.Child
	activeAsset string
	brightness  int

	onChange func(Status)
}

// New creates a Supervisor. The catalog is used to resolve asset names
// and to populate status listings.
func New(cfg Config, cat *catalog.Catalog) *Supervisor {
	return &Supervisor{
		cfg:        cfg,
		catalog:    cat,
		logger:     noopLogger{},
		brightness: clampBrightness(cfg.DefaultBrightness),
	}
}

// SetLogger sets the logger for the supervisor.
func (s *Supervisor) SetLogger(logger Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// SetOnChange registers a hook fired after every completed lifecycle
// mutation with a fresh status snapshot. Must be called before the
// supervisor is shared across goroutines.
func (s *Supervisor) SetOnChange(fn func(Status)) {
	s.onChange = fn
}

// Start displays the named asset, replacing any currently running viewer.
//
// The asset is resolved before anything else: an unknown name returns
// ErrAssetNotFound and leaves the current viewer untouched. A non-nil
// brightness is clamped into [1,100] and becomes the stored brightness.
// If spawning the viewer fails the supervisor ends up idle and
// ErrLaunchFailed is returned with the underlying cause wrapped.
func (s *Supervisor) Start(asset string, brightness *int) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return s.startLocked(asset, brightness)
}

// startLocked implements Start. Caller holds opMu.
func (s *Supervisor) startLocked(asset string, brightness *int) error {
	path, err := s.catalog.Resolve(asset)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrAssetNotFound, asset)
	}

	s.stopLocked()

	s.mu.Lock()
	if brightness != nil {
		s.brightness = clampBrightness(*brightness)
	}
	b := s.brightness
	s.mu.Unlock()

	child, err := process.Launch(process.Config{
		Name:   "led-image-viewer",
		Binary: s.cfg.ViewerBinary,
		Args: []string{
			path,
			fmt.Sprintf("--led-rows=%d", s.cfg.Rows),
			fmt.Sprintf("--led-cols=%d", s.cfg.Cols),
			fmt.Sprintf("--led-brightness=%d", b),
			"-f",
		},
	}, s.logger)
	if err != nil {
		s.logger.Error("viewer launch failed", "asset", asset, "error", err)
		return fmt.Errorf("%w: %v", ErrLaunchFailed, err)
	}

	s.mu.Lock()
	s.child = child
	s.activeAsset = asset
	s.mu.Unlock()

	s.logger.Info("display started", "asset", asset, "brightness", b, "pid", child.PID())
	s.notify()

	return nil
}

// Stop terminates the current viewer, if any. It is idempotent and
// always clears ownership; termination problems are logged, never
// surfaced.
func (s *Supervisor) Stop() error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	changed := s.stopLocked()
	if changed {
		s.notify()
	}
	return nil
}

// stopLocked does the actual termination. Caller holds opMu.
// Reports whether there was a viewer to clear.
func (s *Supervisor) stopLocked() bool {
	s.mu.RLock()
	child := s.child
	asset := s.activeAsset
	s.mu.RUnlock()

	if child == nil {
		return false
	}

	if child.Alive() {
		if err := child.Terminate(); err != nil {
			s.logger.Warn("viewer SIGTERM failed", "asset", asset, "error", err)
		}
		if !child.WaitTimeout(s.cfg.GracePeriod) {
			s.logger.Warn("viewer ignored SIGTERM, killing", "asset", asset, "grace", s.cfg.GracePeriod)
			if err := child.Kill(); err != nil {
				s.logger.Warn("viewer SIGKILL failed", "asset", asset, "error", err)
			}
			if err := child.Wait(); err != nil {
				s.logger.Debug("viewer exit status", "asset", asset, "error", err)
			}
		}
	} else {
		// Already gone; sweep any orphaned group members and reap.
		if err := child.Kill(); err != nil {
			s.logger.Debug("viewer group sweep failed", "asset", asset, "error", err)
		}
		if err := child.Wait(); err != nil {
			s.logger.Debug("viewer exit status", "asset", asset, "error", err)
		}
	}

	s.mu.Lock()
	s.child = nil
	s.activeAsset = ""
	s.mu.Unlock()

	s.logger.Info("display stopped", "asset", asset)
	return true
}

// UpdateBrightness sets the brightness for current and future playback.
//
// Values outside [1,100] return ErrBrightnessRange without touching any
// state. While a viewer is alive the same asset is restarted at the new
// brightness, since the viewer only reads brightness at startup.
func (s *Supervisor) UpdateBrightness(brightness int) error {
	if brightness < 1 || brightness > 100 {
		return fmt.Errorf("%w: %d", ErrBrightnessRange, brightness)
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.RLock()
	child := s.child
	asset := s.activeAsset
	s.mu.RUnlock()

	if child == nil || !child.Alive() {
		s.mu.Lock()
		s.brightness = brightness
		s.mu.Unlock()

		s.logger.Info("brightness stored", "brightness", brightness)
		s.notify()
		return nil
	}

	// Restart with the same asset at the new level; the viewer only
	// reads brightness once at startup.
	s.logger.Info("restarting viewer for brightness change", "asset", asset, "brightness", brightness)
	return s.startLocked(asset, &brightness)
}

// Status returns a snapshot of the supervisor with liveness re-probed
// from the OS and a current catalog listing attached.
func (s *Supervisor) Status() Status {
	s.mu.RLock()
	child := s.child
	asset := s.activeAsset
	brightness := s.brightness
	s.mu.RUnlock()

	st := Status{
		Brightness: brightness,
		Rows:       s.cfg.Rows,
		Cols:       s.cfg.Cols,
		Assets:     s.catalog.List(),
	}

	if child != nil {
		st.Running = child.Alive()
		st.ActiveAsset = &asset
	}

	return st
}

// Brightness returns the stored brightness level.
func (s *Supervisor) Brightness() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.brightness
}

// Close stops any running viewer at service teardown. Failures are
// logged only.
func (s *Supervisor) Close() error {
	return s.Stop()
}

func (s *Supervisor) notify() {
	if s.onChange != nil {
		s.onChange(s.Status())
	}
}

func clampBrightness(b int) int {
	if b < 1 {
		return 1
	}
	if b > 100 {
		return 100
	}
	return b
}
