package core

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/gridtable/internal/grid"
	"github.com/JonMunkholm/gridtable/internal/logging"
	"github.com/JonMunkholm/gridtable/internal/store"
	"github.com/JonMunkholm/gridtable/internal/tabletext"
	"github.com/google/uuid"
)

// Save persists a grid to the snapshot store. The first save creates a
// snapshot; later saves of the same grid overwrite it and keep its
// creation time.
func (s *Service) Save(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	logger := logging.WithFields(ctx, "grid_id", id)

	var snapID uuid.UUID
	err := s.with(id, func(w *workspaceGrid) error {
		var err error
		snapID, err = s.store.Save(ctx, store.Snapshot{
			ID:   w.snapshotID,
			Name: w.name,
			Grid: w.grid,
		})
		if err != nil {
			return fmt.Errorf("save snapshot: %w", err)
		}
		w.snapshotID = snapID
		return nil
	})
	if err != nil {
		logger.Error("save failed", "error", err)
		return uuid.Nil, err
	}

	logger.Info("grid saved", "snapshot_id", snapID)
	return snapID, nil
}

// Open loads a snapshot into a new workspace grid. Saving the new grid
// overwrites the snapshot it came from.
//
// Schemas are not stored with snapshots; each column gets the parser for
// the kind of its last non-empty cell, and the first row is treated as a
// header when it is all text above typed columns.
func (s *Service) Open(ctx context.Context, snapID uuid.UUID) (GridInfo, error) {
	snap, err := s.store.Get(ctx, snapID)
	if err != nil {
		return GridInfo{}, fmt.Errorf("open snapshot %s: %w", snapID, err)
	}

	schema, header := inferSchema(snap.Grid)
	w := s.add(snap.Name, snap.Grid, schema, header)
	w.snapshotID = snap.ID
	info := w.info()

	logging.WithFields(ctx, "grid_id", info.ID).Info("snapshot opened",
		"snapshot_id", snap.ID, "rows", info.Rows, "columns", info.Columns)
	return info, nil
}

// Snapshots lists saved snapshots, newest first.
func (s *Service) Snapshots(ctx context.Context) ([]store.Info, error) {
	return s.store.List(ctx)
}

// DeleteSnapshot removes a saved snapshot. Open grids are not affected.
func (s *Service) DeleteSnapshot(ctx context.Context, snapID uuid.UUID) error {
	if err := s.store.Delete(ctx, snapID); err != nil {
		return fmt.Errorf("delete snapshot %s: %w", snapID, err)
	}
	logging.WithFields(ctx, "snapshot_id", snapID).Info("snapshot deleted")
	return nil
}

func parserForKind(k grid.Kind) tabletext.Parser {
	switch k {
	case grid.KindInt:
		return tabletext.Integer
	case grid.KindLong:
		return tabletext.Long
	case grid.KindFloat, grid.KindDouble:
		return tabletext.Double
	case grid.KindBool:
		return tabletext.Boolean
	default:
		return tabletext.String
	}
}

func inferSchema(g *grid.Grid) ([]tabletext.Parser, bool) {
	schema := make([]tabletext.Parser, g.Width())
	typed := false
	for c, col := range g.Columns() {
		kind := grid.KindText
		for r := g.Height() - 1; r >= 0; r-- {
			cell, err := col.CellAt(r)
			if err == nil && !cell.IsEmpty() {
				kind = cell.Content().Kind()
				break
			}
		}
		schema[c] = parserForKind(kind)
		typed = typed || schema[c].Kind != grid.KindText
	}

	if !typed || g.Height() < 2 {
		return schema, false
	}
	first, err := g.RowAt(0)
	if err != nil {
		return schema, false
	}
	for _, v := range first.Values() {
		if v.Kind() != grid.KindText && v.Kind() != grid.KindEmpty {
			return schema, false
		}
	}
	return schema, true
}
