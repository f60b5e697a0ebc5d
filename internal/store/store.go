// Package store persists grid snapshots.
//
// A snapshot is a named copy of a grid taken at a point in time. Grids are
// stored as JSON with one tagged value per cell, so cell kinds and empty
// cells come back exactly as they were saved. Three backends share the
// Store interface: Postgres for deployments, SQLite for single-node use and
// Memory for tests and throwaway sessions.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/gridtable/internal/grid"
	"github.com/google/uuid"
)

// ErrNotFound is returned for an unknown snapshot id.
var ErrNotFound = errors.New("snapshot not found")

// Snapshot is a saved grid.
type Snapshot struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
	Grid      *grid.Grid
}

// Info describes a snapshot without loading its cells.
type Info struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Rows      int       `json:"rows"`
	Columns   int       `json:"columns"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is implemented by every snapshot backend.
type Store interface {
	// Save writes s and returns its id. A zero ID gets a fresh one; an
	// existing ID is overwritten but keeps its original CreatedAt.
	Save(ctx context.Context, s Snapshot) (uuid.UUID, error)
	Get(ctx context.Context, id uuid.UUID) (*Snapshot, error)
	// List returns every snapshot, newest first.
	List(ctx context.Context) ([]Info, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Close() error
}

// prepare fills in defaults and encodes the grid for a backend.
func prepare(s *Snapshot) ([]byte, error) {
	if s.Grid == nil {
		return nil, fmt.Errorf("%w: snapshot has no grid", grid.ErrInvalidArgument)
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	return EncodeGrid(s.Grid)
}

func infoOf(s Snapshot) Info {
	return Info{
		ID:        s.ID,
		Name:      s.Name,
		Rows:      s.Grid.Height(),
		Columns:   s.Grid.Width(),
		CreatedAt: s.CreatedAt,
	}
}

// encodedGrid is the JSON form of a grid. Columns is kept separately so a
// grid with columns but no rows survives.
type encodedGrid struct {
	Columns int            `json:"columns"`
	Rows    [][]grid.Value `json:"rows"`
}

// EncodeGrid serializes g losslessly.
func EncodeGrid(g *grid.Grid) ([]byte, error) {
	enc := encodedGrid{Columns: g.Width(), Rows: make([][]grid.Value, 0, g.Height())}
	for _, row := range g.Rows() {
		enc.Rows = append(enc.Rows, row.Values())
	}
	return json.Marshal(enc)
}

// DecodeGrid rebuilds a grid written by EncodeGrid.
func DecodeGrid(data []byte) (*grid.Grid, error) {
	var enc encodedGrid
	if err := json.Unmarshal(data, &enc); err != nil {
		return nil, fmt.Errorf("decode grid: %w", err)
	}
	if enc.Columns < 0 {
		return nil, fmt.Errorf("decode grid: negative column count %d", enc.Columns)
	}

	g := grid.New()
	if enc.Columns > 0 {
		if _, err := g.InsertColumn(enc.Columns - 1); err != nil {
			return nil, err
		}
	}
	for r, values := range enc.Rows {
		if len(values) != enc.Columns {
			return nil, fmt.Errorf("decode grid: %w", &grid.RecordError{Row: r, Fields: len(values), Want: enc.Columns})
		}
		row := g.AppendRow()
		for c, v := range values {
			cell, err := row.CellAt(c)
			if err != nil {
				return nil, err
			}
			cell.Set(v)
		}
	}
	return g, nil
}
