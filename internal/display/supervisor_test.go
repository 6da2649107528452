package display

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/pixelforge/ledmatrixd/internal/catalog"
)

// newTestSupervisor builds a supervisor over a temp asset directory and a
// fake viewer binary that sleeps until signalled.
func newTestSupervisor(t *testing.T, assets ...string) (*Supervisor, string) {
	t.Helper()

	assetDir := t.TempDir()
	for _, name := range assets {
		if err := os.WriteFile(filepath.Join(assetDir, name), []byte("GIF89a"), 0644); err != nil {
			t.Fatalf("failed to write asset: %v", err)
		}
	}

	viewer := filepath.Join(t.TempDir(), "viewer.sh")
	script := "#!/bin/sh\nexec sleep 30\n"
	if err := os.WriteFile(viewer, []byte(script), 0755); err != nil {
		t.Fatalf("failed to write viewer stub: %v", err)
	}

	sup := New(Config{
		ViewerBinary:      viewer,
		Rows:              64,
		Cols:              64,
		DefaultBrightness: 100,
		GracePeriod:       2 * time.Second,
	}, catalog.New(assetDir))

	t.Cleanup(func() { _ = sup.Close() })

	return sup, viewer
}

func TestSupervisor_StartAndStatus(t *testing.T) {
	sup, _ := newTestSupervisor(t, "loop.gif", "wave.gif")

	b := 50
	if err := sup.Start("loop.gif", &b); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	st := sup.Status()
	if !st.Running {
		t.Error("Status().Running = false after Start")
	}
	if st.ActiveAsset == nil || *st.ActiveAsset != "loop.gif" {
		t.Errorf("Status().ActiveAsset = %v, want loop.gif", st.ActiveAsset)
	}
	if st.Brightness != 50 {
		t.Errorf("Status().Brightness = %d, want 50", st.Brightness)
	}
	if st.Rows != 64 || st.Cols != 64 {
		t.Errorf("Status() geometry = %dx%d, want 64x64", st.Rows, st.Cols)
	}
	if len(st.Assets) != 2 {
		t.Errorf("Status().Assets has %d entries, want 2", len(st.Assets))
	}
}

func TestSupervisor_StartMissingAsset(t *testing.T) {
	sup, _ := newTestSupervisor(t, "loop.gif")

	if err := sup.Start("loop.gif", nil); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	before := sup.Status()

	err := sup.Start("missing.gif", nil)
	if !errors.Is(err, ErrAssetNotFound) {
		t.Fatalf("Start(missing) error = %v, want ErrAssetNotFound", err)
	}

	// The running viewer must be untouched.
	after := sup.Status()
	if !after.Running {
		t.Error("viewer was stopped by a failed Start")
	}
	if after.ActiveAsset == nil || *after.ActiveAsset != *before.ActiveAsset {
		t.Errorf("ActiveAsset changed: %v -> %v", before.ActiveAsset, after.ActiveAsset)
	}
}

func TestSupervisor_StartReplacesRunningViewer(t *testing.T) {
	sup, _ := newTestSupervisor(t, "first.gif", "second.gif")

	if err := sup.Start("first.gif", nil); err != nil {
		t.Fatalf("Start(first) error = %v", err)
	}
	sup.mu.RLock()
	firstPID := sup.child.PID()
	sup.mu.RUnlock()

	if err := sup.Start("second.gif", nil); err != nil {
		t.Fatalf("Start(second) error = %v", err)
	}

	st := sup.Status()
	if st.ActiveAsset == nil || *st.ActiveAsset != "second.gif" {
		t.Errorf("ActiveAsset = %v, want second.gif", st.ActiveAsset)
	}
	if !st.Running {
		t.Error("Running = false after replacement Start")
	}

	// The first viewer must be gone from the process table.
	if err := syscall.Kill(firstPID, syscall.Signal(0)); err == nil {
		t.Errorf("first viewer pid %d still alive", firstPID)
	}
}

func TestSupervisor_StopIdempotent(t *testing.T) {
	sup, _ := newTestSupervisor(t, "loop.gif")

	if err := sup.Stop(); err != nil {
		t.Errorf("Stop() on idle supervisor error = %v", err)
	}

	if err := sup.Start("loop.gif", nil); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := sup.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}

	st := sup.Status()
	if st.Running {
		t.Error("Running = true after Stop")
	}
	if st.ActiveAsset != nil {
		t.Errorf("ActiveAsset = %v after Stop, want nil", st.ActiveAsset)
	}

	if err := sup.Stop(); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
}

func TestSupervisor_LaunchFailure(t *testing.T) {
	assetDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(assetDir, "loop.gif"), []byte("GIF89a"), 0644); err != nil {
		t.Fatalf("failed to write asset: %v", err)
	}

	sup := New(Config{
		ViewerBinary:      "/nonexistent/viewer",
		Rows:              64,
		Cols:              64,
		DefaultBrightness: 100,
		GracePeriod:       time.Second,
	}, catalog.New(assetDir))

	err := sup.Start("loop.gif", nil)
	if !errors.Is(err, ErrLaunchFailed) {
		t.Fatalf("Start() error = %v, want ErrLaunchFailed", err)
	}

	st := sup.Status()
	if st.Running || st.ActiveAsset != nil {
		t.Error("supervisor not idle after launch failure")
	}
}

func TestSupervisor_UpdateBrightness(t *testing.T) {
	sup, _ := newTestSupervisor(t, "loop.gif")

	tests := []struct {
		brightness int
		wantErr    bool
	}{
		{0, true},
		{101, true},
		{-5, true},
		{1, false},
		{100, false},
		{42, false},
	}

	for _, tt := range tests {
		err := sup.UpdateBrightness(tt.brightness)
		if (err != nil) != tt.wantErr {
			t.Errorf("UpdateBrightness(%d) error = %v, wantErr %v", tt.brightness, err, tt.wantErr)
		}
		if tt.wantErr {
			if !errors.Is(err, ErrBrightnessRange) {
				t.Errorf("UpdateBrightness(%d) error = %v, want ErrBrightnessRange", tt.brightness, err)
			}
			if sup.Brightness() == tt.brightness {
				t.Errorf("invalid brightness %d was stored", tt.brightness)
			}
		} else if sup.Brightness() != tt.brightness {
			t.Errorf("Brightness() = %d, want %d", sup.Brightness(), tt.brightness)
		}
	}
}

func TestSupervisor_UpdateBrightnessRestartsViewer(t *testing.T) {
	sup, _ := newTestSupervisor(t, "loop.gif")

	if err := sup.Start("loop.gif", nil); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	sup.mu.RLock()
	oldPID := sup.child.PID()
	sup.mu.RUnlock()

	if err := sup.UpdateBrightness(25); err != nil {
		t.Fatalf("UpdateBrightness() error = %v", err)
	}

	st := sup.Status()
	if !st.Running {
		t.Error("Running = false after brightness restart")
	}
	if st.ActiveAsset == nil || *st.ActiveAsset != "loop.gif" {
		t.Errorf("ActiveAsset = %v, want loop.gif", st.ActiveAsset)
	}
	if st.Brightness != 25 {
		t.Errorf("Brightness = %d, want 25", st.Brightness)
	}

	sup.mu.RLock()
	newPID := sup.child.PID()
	sup.mu.RUnlock()
	if newPID == oldPID {
		t.Error("viewer was not restarted for brightness change")
	}
}

func TestSupervisor_StartClampsBrightness(t *testing.T) {
	sup, _ := newTestSupervisor(t, "loop.gif")

	over := 250
	if err := sup.Start("loop.gif", &over); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if got := sup.Brightness(); got != 100 {
		t.Errorf("Brightness() = %d after clamp, want 100", got)
	}

	under := -3
	if err := sup.Start("loop.gif", &under); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if got := sup.Brightness(); got != 1 {
		t.Errorf("Brightness() = %d after clamp, want 1", got)
	}
}

func TestSupervisor_SelfExitedViewer(t *testing.T) {
	assetDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(assetDir, "loop.gif"), []byte("GIF89a"), 0644); err != nil {
		t.Fatalf("failed to write asset: %v", err)
	}

	viewer := filepath.Join(t.TempDir(), "viewer.sh")
	if err := os.WriteFile(viewer, []byte("#!/bin/sh\nexit 0\n"), 0755); err != nil {
		t.Fatalf("failed to write viewer stub: %v", err)
	}

	sup := New(Config{
		ViewerBinary:      viewer,
		Rows:              64,
		Cols:              64,
		DefaultBrightness: 100,
		GracePeriod:       time.Second,
	}, catalog.New(assetDir))
	t.Cleanup(func() { _ = sup.Close() })

	if err := sup.Start("loop.gif", nil); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	// Wait for the stub to exit on its own.
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if !sup.Status().Running {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	st := sup.Status()
	if st.Running {
		t.Fatal("Running = true for a viewer that exited on its own")
	}
	// The handle is still owned, so the asset remains reported.
	if st.ActiveAsset == nil || *st.ActiveAsset != "loop.gif" {
		t.Errorf("ActiveAsset = %v, want loop.gif while handle is owned", st.ActiveAsset)
	}

	// Stop must reap cleanly and clear ownership.
	if err := sup.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if sup.Status().ActiveAsset != nil {
		t.Error("ActiveAsset still set after Stop")
	}
}

func TestSupervisor_ConcurrentStarts(t *testing.T) {
	sup, _ := newTestSupervisor(t, "loop.gif")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = sup.Start("loop.gif", nil)
		}()
	}
	wg.Wait()

	st := sup.Status()
	if !st.Running {
		t.Error("Running = false after concurrent Starts")
	}

	// Exactly one viewer should remain.
	sup.mu.RLock()
	child := sup.child
	sup.mu.RUnlock()
	if child == nil || !child.Alive() {
		t.Error("no live child after concurrent Starts")
	}
}

func TestSupervisor_OnChange(t *testing.T) {
	sup, _ := newTestSupervisor(t, "loop.gif")

	var mu sync.Mutex
	var events []Status
	sup.SetOnChange(func(st Status) {
		mu.Lock()
		events = append(events, st)
		mu.Unlock()
	})

	if err := sup.Start("loop.gif", nil); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := sup.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 2 {
		t.Fatalf("got %d change events, want 2", len(events))
	}
	if !events[0].Running {
		t.Error("first event should report running")
	}
	if events[1].Running {
		t.Error("second event should report stopped")
	}
}
