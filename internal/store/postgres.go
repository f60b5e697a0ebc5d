package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the subset of pgx shared by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS grid_snapshots (
    id           UUID PRIMARY KEY,
    name         TEXT NOT NULL,
    row_count    INTEGER NOT NULL,
    column_count INTEGER NOT NULL,
    data         JSONB NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_grid_snapshots_created ON grid_snapshots (created_at DESC);
`

// PoolOptions tunes the connection pool opened by OpenPostgres.
type PoolOptions struct {
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Postgres stores snapshots in a PostgreSQL table.
type Postgres struct {
	db   DBTX
	pool *pgxpool.Pool // nil when built over a caller's DBTX
}

// OpenPostgres connects to url, verifies the connection and creates the
// snapshot table if it does not exist.
func OpenPostgres(ctx context.Context, url string, opts PoolOptions) (*Postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	if opts.MaxConns > 0 {
		poolConfig.MaxConns = int32(opts.MaxConns)
	}
	if opts.MinConns > 0 {
		poolConfig.MinConns = int32(opts.MinConns)
	}
	if opts.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = opts.MaxConnLifetime
	}
	if opts.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = opts.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	p := &Postgres{db: pool, pool: pool}
	if err := p.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

// NewPostgres wraps an existing connection or transaction. Close does not
// close db.
func NewPostgres(db DBTX) *Postgres {
	return &Postgres{db: db}
}

// Migrate creates the snapshot table and index.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (p *Postgres) Save(ctx context.Context, s Snapshot) (uuid.UUID, error) {
	data, err := prepare(&s)
	if err != nil {
		return uuid.Nil, err
	}

	_, err = p.db.Exec(ctx, `
		INSERT INTO grid_snapshots (id, name, row_count, column_count, data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			row_count = EXCLUDED.row_count,
			column_count = EXCLUDED.column_count,
			data = EXCLUDED.data`,
		toPgUUID(s.ID), s.Name, s.Grid.Height(), s.Grid.Width(), data,
		pgtype.Timestamptz{Time: s.CreatedAt, Valid: true},
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("save snapshot: %w", err)
	}
	return s.ID, nil
}

func (p *Postgres) Get(ctx context.Context, id uuid.UUID) (*Snapshot, error) {
	var (
		name      string
		data      []byte
		createdAt pgtype.Timestamptz
	)
	err := p.db.QueryRow(ctx,
		`SELECT name, data, created_at FROM grid_snapshots WHERE id = $1`, toPgUUID(id),
	).Scan(&name, &data, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	g, err := DecodeGrid(data)
	if err != nil {
		return nil, err
	}
	return &Snapshot{ID: id, Name: name, CreatedAt: createdAt.Time.UTC(), Grid: g}, nil
}

func (p *Postgres) List(ctx context.Context) ([]Info, error) {
	rows, err := p.db.Query(ctx, `
		SELECT id, name, row_count, column_count, created_at
		FROM grid_snapshots ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	out := make([]Info, 0)
	for rows.Next() {
		info, err := scanInfo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanInfo(rows pgx.Rows) (Info, error) {
	var (
		id        pgtype.UUID
		info      Info
		rowCount  pgtype.Int4
		colCount  pgtype.Int4
		createdAt pgtype.Timestamptz
	)
	if err := rows.Scan(&id, &info.Name, &rowCount, &colCount, &createdAt); err != nil {
		return Info{}, err
	}
	info.ID = fromPgUUID(id)
	info.Rows = int(rowCount.Int32)
	info.Columns = int(colCount.Int32)
	info.CreatedAt = createdAt.Time.UTC()
	return info, nil
}

func (p *Postgres) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := p.db.Exec(ctx, `DELETE FROM grid_snapshots WHERE id = $1`, toPgUUID(id))
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (p *Postgres) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}

func toPgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

func fromPgUUID(id pgtype.UUID) uuid.UUID {
	if !id.Valid {
		return uuid.Nil
	}
	return uuid.UUID(id.Bytes)
}
