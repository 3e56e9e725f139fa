// Package fileutil publishes rendered outputs to their destination.
package fileutil

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CopyFileVerified copies src to dst and returns the bytes written. Data is
// staged in a temporary file beside dst and checked against the source by
// SHA-256 before it is renamed over dst. On failure dst is left untouched.
func CopyFileVerified(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".partial-*")
	if err != nil {
		return 0, fmt.Errorf("create temp: %w", err)
	}
	published := false
	defer func() {
		if !published {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	want := sha256.New()
	n, err := io.Copy(tmp, io.TeeReader(in, want))
	if err != nil {
		return n, fmt.Errorf("copy: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return n, fmt.Errorf("sync: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return n, fmt.Errorf("rewind: %w", err)
	}
	got := sha256.New()
	m, err := io.Copy(got, tmp)
	if err != nil {
		return n, fmt.Errorf("read back: %w", err)
	}
	if m != n || !bytes.Equal(got.Sum(nil), want.Sum(nil)) {
		return n, fmt.Errorf("verify %s: wrote %d bytes, read back %d with a different digest", dst, n, m)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return n, fmt.Errorf("chmod: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return n, fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return n, fmt.Errorf("publish: %w", err)
	}
	published = true
	return n, nil
}
