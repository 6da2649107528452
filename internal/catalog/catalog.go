package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNotFound is returned by Resolve when no asset with the given name
// exists in the asset directory.
var ErrNotFound = errors.New("asset not found")

// Entry describes one displayable asset.
type Entry struct {
	// Name is the bare file name, e.g. "rainbow.gif".
	Name string `json:"name"`

	// SizeLabel is a human-readable file size, e.g. "2.0 KB".
	SizeLabel string `json:"size"`

	// Path is the resolved absolute path to the file.
	Path string `json:"path"`
}

// Logger defines the logging interface for the catalog.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Catalog scans a single directory for GIF assets.
type Catalog struct {
	dir    string
	logger Logger
}

// New creates a Catalog over the given asset directory.
func New(dir string) *Catalog {
	return &Catalog{
		dir:    dir,
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the catalog.
func (c *Catalog) SetLogger(logger Logger) {
	if logger != nil {
		c.logger = logger
	}
}

// List returns all GIF assets in the directory, sorted by name.
//
// Listing is best-effort: a missing or unreadable directory yields an
// empty list, and entries whose metadata cannot be read are skipped.
// List never returns an error.
func (c *Catalog) List() []Entry {
	dirEntries, err := os.ReadDir(c.dir)
	if err != nil {
		c.logger.Warn("asset directory unreadable", "dir", c.dir, "error", err)
		return []Entry{}
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasSuffix(strings.ToLower(de.Name()), ".gif") {
			continue
		}

		info, err := de.Info()
		if err != nil {
			c.logger.Warn("skipping unreadable asset", "name", de.Name(), "error", err)
			continue
		}

		path, err := filepath.Abs(filepath.Join(c.dir, de.Name()))
		if err != nil {
			c.logger.Warn("skipping unresolvable asset", "name", de.Name(), "error", err)
			continue
		}

		entries = append(entries, Entry{
			Name:      de.Name(),
			SizeLabel: formatSize(info.Size()),
			Path:      path,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})

	return entries
}

// Resolve maps a bare asset name to its absolute path.
//
// Names containing path separators are rejected so callers cannot reach
// outside the asset directory. Returns ErrNotFound when no such file
// exists.
func (c *Catalog) Resolve(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid asset name %q: %w", name, ErrNotFound)
	}

	path := filepath.Join(c.dir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("asset %q: %w", name, ErrNotFound)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("asset %q: %w", name, ErrNotFound)
	}

	return abs, nil
}

// formatSize renders a byte count as "512 B", "2.0 KB" or "1.5 MB"
// using 1024-based units.
func formatSize(size int64) string {
	switch {
	case size < 1024:
		return fmt.Sprintf("%d B", size)
	case size < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(size)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(size)/(1024*1024))
	}
}
