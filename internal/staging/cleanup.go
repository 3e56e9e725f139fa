package staging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"redactor/internal/logging"
)

// SweepResult contains the outcome of a stale entry sweep.
type SweepResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// Entry describes one staged file or scratch directory.
type Entry struct {
	Name    string
	Path    string
	Dir     bool
	ModTime time.Time
	Size    int64
}

// Sweep removes entries of stagingDir whose name starts with one of prefixes
// and whose modification time is older than maxAge. Other entries are left
// alone so a staging dir shared with other tools is safe to sweep.
func Sweep(ctx context.Context, stagingDir string, maxAge time.Duration, prefixes []string, logger *slog.Logger) SweepResult {
	result := SweepResult{}
	if logger == nil {
		logger = logging.NewNop()
	}

	entries, err := List(stagingDir, prefixes)
	if err != nil {
		result.Errors = append(result.Errors, CleanupError{Path: stagingDir, Error: err})
		return result
	}

	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		if !entry.ModTime.Before(cutoff) {
			continue
		}
		if err := os.RemoveAll(entry.Path); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: entry.Path, Error: err})
			logging.WarnWithContext(logger, "failed to remove stale staged entry", "staging_cleanup_failed",
				logging.String("path", entry.Path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check paths.staging_dir permissions"),
				logging.String(logging.FieldImpact, "disk space not reclaimed"),
			)
			continue
		}
		result.Removed = append(result.Removed, entry.Path)
		logger.Info("removed stale staged entry",
			logging.String("path", entry.Path),
			logging.Duration("age", time.Since(entry.ModTime)),
			logging.String(logging.FieldEventType, "staging_cleanup"),
		)
	}

	return result
}

// List returns the staged entries matching prefixes, oldest first. A missing
// or blank staging dir yields no entries.
func List(stagingDir string, prefixes []string) ([]Entry, error) {
	stagingDir = strings.TrimSpace(stagingDir)
	if stagingDir == "" {
		return nil, nil
	}

	dirEntries, err := os.ReadDir(stagingDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var entries []Entry
	for _, de := range dirEntries {
		if !hasPrefix(de.Name(), prefixes) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		path := filepath.Join(stagingDir, de.Name())
		size := info.Size()
		if de.IsDir() {
			size, _ = dirSize(path)
		}
		entries = append(entries, Entry{
			Name:    de.Name(),
			Path:    path,
			Dir:     de.IsDir(),
			ModTime: info.ModTime(),
			Size:    size,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ModTime.Before(entries[j].ModTime)
	})
	return entries, nil
}

func hasPrefix(name string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// dirSize calculates the total size of a directory recursively.
func dirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // best effort
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}
