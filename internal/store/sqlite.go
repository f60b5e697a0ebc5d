package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS grid_snapshots (
    id           TEXT PRIMARY KEY,
    name         TEXT NOT NULL,
    row_count    INTEGER NOT NULL,
    column_count INTEGER NOT NULL,
    data         TEXT NOT NULL,
    created_at   INTEGER NOT NULL          -- UnixNano
);

CREATE INDEX IF NOT EXISTS idx_grid_snapshots_created ON grid_snapshots(created_at);
`

// SQLite stores snapshots in a single SQLite database file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path. The path
// ":memory:" gives a private in-memory database.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	memory := path == ":memory:"
	if !memory {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	dsn := path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if memory {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Save(ctx context.Context, snap Snapshot) (uuid.UUID, error) {
	data, err := prepare(&snap)
	if err != nil {
		return uuid.Nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO grid_snapshots (id, name, row_count, column_count, data, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			row_count = excluded.row_count,
			column_count = excluded.column_count,
			data = excluded.data`,
		snap.ID.String(), snap.Name, snap.Grid.Height(), snap.Grid.Width(), string(data), snap.CreatedAt.UnixNano(),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("save snapshot: %w", err)
	}
	return snap.ID, nil
}

func (s *SQLite) Get(ctx context.Context, id uuid.UUID) (*Snapshot, error) {
	var (
		name    string
		data    string
		created int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT name, data, created_at FROM grid_snapshots WHERE id = ?`, id.String(),
	).Scan(&name, &data, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	g, err := DecodeGrid([]byte(data))
	if err != nil {
		return nil, err
	}
	return &Snapshot{ID: id, Name: name, CreatedAt: time.Unix(0, created).UTC(), Grid: g}, nil
}

func (s *SQLite) List(ctx context.Context) ([]Info, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, row_count, column_count, created_at
		FROM grid_snapshots ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	out := make([]Info, 0)
	for rows.Next() {
		var (
			info    Info
			id      string
			created int64
		)
		if err := rows.Scan(&id, &info.Name, &info.Rows, &info.Columns, &created); err != nil {
			return nil, err
		}
		if info.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("list snapshots: bad id %q: %w", id, err)
		}
		info.CreatedAt = time.Unix(0, created).UTC()
		out = append(out, info)
	}
	return out, rows.Err()
}

func (s *SQLite) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM grid_snapshots WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
