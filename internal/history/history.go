// Package history keeps a local SQLite log of generated reports.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pranshuparmar/hostreport/pkg/model"
)

const schema = `CREATE TABLE IF NOT EXISTS reports(
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	generated_at INTEGER NOT NULL,
	hostname TEXT NOT NULL,
	overall TEXT NOT NULL,
	findings INTEGER NOT NULL,
	sections INTEGER NOT NULL,
	payload TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reports_generated_at ON reports(generated_at);`

// Entry is one stored report run.
type Entry struct {
	ID          int64
	GeneratedAt time.Time
	Hostname    string
	Overall     model.Severity
	Findings    int
	Sections    int
}

type Store struct {
	db *sql.DB
}

// Open creates the database file and its parent directory when missing.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("history path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	dsn := "file:" + path + "?_pragma=busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open history: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Save appends r and returns the row id.
func (s *Store) Save(ctx context.Context, r model.Report) (int64, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return 0, fmt.Errorf("encode report: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO reports(generated_at, hostname, overall, findings, sections, payload) VALUES(?,?,?,?,?,?)`,
		r.Metadata.GeneratedAt.UTC().UnixMilli(),
		r.Metadata.Hostname,
		r.HealthDigest.Overall.String(),
		len(r.HealthDigest.Findings),
		len(r.Sections),
		string(payload),
	)
	if err != nil {
		return 0, fmt.Errorf("save report: %w", err)
	}
	return res.LastInsertId()
}

// Recent returns up to n entries, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		return []Entry{}, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, generated_at, hostname, overall, findings, sections FROM reports ORDER BY generated_at DESC, id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e       Entry
			ts      int64
			overall string
		)
		if err := rows.Scan(&e.ID, &ts, &e.Hostname, &overall, &e.Findings, &e.Sections); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		e.GeneratedAt = time.UnixMilli(ts).UTC()
		if e.Overall, err = model.ParseSeverity(overall); err != nil {
			return nil, fmt.Errorf("entry %d: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Load returns the full report stored under id.
func (s *Store) Load(ctx context.Context, id int64) (model.Report, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM reports WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Report{}, fmt.Errorf("report %d not found", id)
	}
	if err != nil {
		return model.Report{}, fmt.Errorf("load report %d: %w", id, err)
	}

	var r model.Report
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		return model.Report{}, fmt.Errorf("decode report %d: %w", id, err)
	}
	return r, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
