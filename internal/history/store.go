package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"
)

// Store is the export journal. It is safe for concurrent use and may be
// shared with other processes pointing at the same file.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates the parent directory if needed, opens the database in WAL
// mode and applies pending migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("history dir: %w", err)
	}
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", path, err)
	}
	// A single connection keeps the pragmas and the migration transaction
	// on the same handle.
	db.SetMaxOpenConns(1)
	if err := migrate(context.Background(), db, path); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, path: path}, nil
}

func dsn(path string) string {
	q := url.Values{}
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "synchronous(NORMAL)")
	return "file:" + path + "?" + q.Encode()
}

// Path is the database location.
func (s *Store) Path() string { return s.path }

// Close releases the database handle. It is safe on a nil store.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

const (
	busyAttempts = 5
	busyBackoff  = 10 * time.Millisecond
)

// write runs op, retrying while another process holds the write lock for
// longer than busy_timeout.
func (s *Store) write(ctx context.Context, op func() error) error {
	wait := busyBackoff
	for attempt := 1; ; attempt++ {
		err := op()
		if err == nil || !busy(err) || attempt == busyAttempts {
			return err
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		wait *= 2
	}
}

func busy(err error) bool {
	var serr *sqlite.Error
	if errors.As(err, &serr) {
		// Primary result code lives in the low byte.
		return serr.Code()&0xff == 5
	}
	return strings.Contains(err.Error(), "database is locked")
}
