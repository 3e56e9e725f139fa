package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Status is the outcome of an export attempt.
type Status string

const (
	StatusComplete Status = "complete"
	StatusError    Status = "error"
)

// ErrNotFound is returned by Get for unknown ids.
var ErrNotFound = errors.New("export entry not found")

// Entry is one recorded export attempt.
type Entry struct {
	ID           string    `json:"id"`
	Status       Status    `json:"status"`
	VideoName    string    `json:"videoName"`
	Filename     string    `json:"filename"`
	Redactions   int       `json:"redactions"`
	Effects      []string  `json:"effects"`
	GraphDigest  string    `json:"graphDigest,omitempty"`
	OutputBytes  int64     `json:"outputBytes"`
	ErrorKind    string    `json:"errorKind,omitempty"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
	StartedAt    time.Time `json:"startedAt"`
	FinishedAt   time.Time `json:"finishedAt"`
}

// Elapsed is the wall time the attempt took.
func (e Entry) Elapsed() time.Duration {
	if e.FinishedAt.Before(e.StartedAt) {
		return 0
	}
	return e.FinishedAt.Sub(e.StartedAt)
}

// Fixed-width UTC timestamps keep lexical and chronological order aligned.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Record inserts an entry. Recording the same id twice replaces the entry.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if strings.TrimSpace(e.ID) == "" {
		return errors.New("record export: empty id")
	}
	query := `INSERT OR REPLACE INTO exports
		(id, status, video_name, filename, redactions, effects, graph_digest, output_bytes, error_kind, error_message, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	return s.write(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query,
			e.ID,
			string(e.Status),
			e.VideoName,
			e.Filename,
			e.Redactions,
			strings.Join(e.Effects, ","),
			e.GraphDigest,
			e.OutputBytes,
			e.ErrorKind,
			e.ErrorMessage,
			e.StartedAt.UTC().Format(timeLayout),
			e.FinishedAt.UTC().Format(timeLayout),
		)
		return err
	})
}

const selectColumns = `id, status, video_name, filename, redactions, effects, graph_digest, output_bytes, error_kind, error_message, started_at, finished_at`

// List returns up to limit entries, newest first. A non-positive limit
// returns everything.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	query := "SELECT " + selectColumns + " FROM exports ORDER BY started_at DESC, id DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exports: %w", err)
	}
	return entries, nil
}

// Get loads a single entry.
func (s *Store) Get(ctx context.Context, id string) (Entry, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+selectColumns+" FROM exports WHERE id = ?", id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return entry, err
}

// Prune removes entries that started before cutoff and reports how many were
// deleted.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	var affected int64
	err := s.write(ctx, func() error {
		res, err := s.db.ExecContext(ctx, "DELETE FROM exports WHERE started_at < ?", cutoff.UTC().Format(timeLayout))
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("prune exports: %w", err)
	}
	return affected, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var (
		e                 Entry
		status, effects   string
		started, finished string
	)
	if err := row.Scan(
		&e.ID,
		&status,
		&e.VideoName,
		&e.Filename,
		&e.Redactions,
		&effects,
		&e.GraphDigest,
		&e.OutputBytes,
		&e.ErrorKind,
		&e.ErrorMessage,
		&started,
		&finished,
	); err != nil {
		return Entry{}, err
	}
	e.Status = Status(status)
	if effects != "" {
		e.Effects = strings.Split(effects, ",")
	} else {
		e.Effects = []string{}
	}
	var err error
	if e.StartedAt, err = time.Parse(timeLayout, started); err != nil {
		return Entry{}, fmt.Errorf("parse started_at: %w", err)
	}
	if e.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
		return Entry{}, fmt.Errorf("parse finished_at: %w", err)
	}
	return e, nil
}
