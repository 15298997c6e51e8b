package infrastructure

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// TempWorkspace is the shared scratch directory for in-flight downloads.
// Attempt artifacts are named <request-uuid>-<seq>.* so one failed attempt
// can be discarded, siblings included, without touching anything else.
type TempWorkspace struct {
	root string
}

// NewTempWorkspace creates the workspace directory if needed.
func NewTempWorkspace(root string) (*TempWorkspace, error) {
	if root == "" {
		return nil, fmt.Errorf("workspace root not configured")
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create workspace %s: %w", root, err)
	}
	return &TempWorkspace{root: root}, nil
}

// Root returns the workspace directory.
func (w *TempWorkspace) Root() string {
	return w.root
}

// Stage returns the base path for one attempt. Request IDs are uuids, so
// concurrent requests can never collide on a stage path.
func (w *TempWorkspace) Stage(requestID string, seq int) string {
	return filepath.Join(w.root, fmt.Sprintf("%s-%02d", requestID, seq))
}

// Discard removes every file sharing basePath as a prefix: the media file
// itself plus whatever partial artifacts the backend left next to it
// (.part, .ytdl, .info.json and friends).
func (w *TempWorkspace) Discard(basePath string) error {
	matches, err := filepath.Glob(basePath + "*")
	if err != nil {
		return err
	}
	var errs []error
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// DiscardArtifact removes a delivered file and its siblings once the caller
// is done with it.
func (w *TempWorkspace) DiscardArtifact(path string) error {
	base := strings.TrimSuffix(path, filepath.Ext(path))
	if base == "" {
		return os.Remove(path)
	}
	return w.Discard(base)
}

// Sweep removes workspace files whose modification time is older than
// maxAge. Recovers disk space after crash-interrupted runs.
func (w *TempWorkspace) Sweep(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(w.root)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	var errs []error
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(w.root, entry.Name())); err != nil {
			if !os.IsNotExist(err) {
				errs = append(errs, err)
			}
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}
