// Package accesslog persists one row per served request in SQLite.
package accesslog

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schema string

// Entry is one served request.
type Entry struct {
	ID         int64
	RequestID  string
	RemoteAddr string
	Method     string
	Path       string
	Range      string
	Status     int
	Bytes      int64
	Duration   time.Duration
	ServedAt   time.Time
}

type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at dataSourceName and applies the
// schema. ":memory:" works for tests.
func Open(dataSourceName string) (*Store, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, err
	}
	// One connection: SQLite serializes writers anyway and ":memory:" is
	// per-connection.
	db.SetMaxOpenConns(1)

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	if _, err = db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts e and returns its row ID.
func (s *Store) Record(ctx context.Context, e Entry) (int64, error) {
	if e.ServedAt.IsZero() {
		e.ServedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO access_log(request_id, remote_addr, method, path, range_header, status, bytes, duration_us, served_at)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.RequestID, e.RemoteAddr, e.Method, e.Path, e.Range, e.Status, e.Bytes,
		e.Duration.Microseconds(), e.ServedAt.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("record access: %w", err)
	}
	return res.LastInsertId()
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, request_id, remote_addr, method, path, range_header, status, bytes, duration_us, served_at
		 FROM access_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			durationUS int64
		)
		err := rows.Scan(&e.ID, &e.RequestID, &e.RemoteAddr, &e.Method, &e.Path, &e.Range,
			&e.Status, &e.Bytes, &durationUS, &e.ServedAt)
		if err != nil {
			return nil, err
		}
		e.Duration = time.Duration(durationUS) * time.Microsecond
		entries = append(entries, e)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// CountByStatus returns how many requests were answered with each status.
func (s *Store) CountByStatus(ctx context.Context) (map[int]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM access_log GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int]int64)
	for rows.Next() {
		var (
			status int
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
