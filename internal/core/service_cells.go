package core

import (
	"context"
	"errors"
	"slices"

	"github.com/JonMunkholm/gridtable/internal/grid"
	"github.com/JonMunkholm/gridtable/internal/logging"
	"github.com/JonMunkholm/gridtable/internal/tabletext"
	"github.com/google/uuid"
)

// GetCell returns the content of one cell.
func (s *Service) GetCell(_ context.Context, id uuid.UUID, row, col int) (grid.Value, error) {
	var v grid.Value
	err := s.with(id, func(w *workspaceGrid) error {
		cell, err := w.grid.CellAt(row, col)
		if err != nil {
			return err
		}
		v = cell.Content()
		return nil
	})
	return v, err
}

// SetCell stores v in one cell as is.
func (s *Service) SetCell(ctx context.Context, id uuid.UUID, row, col int, v grid.Value) error {
	err := s.with(id, func(w *workspaceGrid) error {
		cell, err := w.grid.CellAt(row, col)
		if err != nil {
			return err
		}
		cell.Set(v)
		w.touch()
		return nil
	})
	if err == nil {
		logging.WithFields(ctx, "grid_id", id).Debug("cell set", "row", row, "column", col, "kind", v.Kind())
	}
	return err
}

// SetCellText converts text with the column's parser and stores the result,
// the same way a load would. The header row takes text unconverted.
func (s *Service) SetCellText(ctx context.Context, id uuid.UUID, row, col int, text string) (grid.Value, error) {
	var v grid.Value
	err := s.with(id, func(w *workspaceGrid) error {
		cell, err := w.grid.CellAt(row, col)
		if err != nil {
			return err
		}

		if w.isHeader(row) {
			v = grid.Text(text)
		} else {
			v, err = w.parser(col).Parse(text)
			if err != nil {
				var ce *grid.ConversionError
				if errors.As(err, &ce) {
					ce.Row, ce.Column = row, col
				}
				return err
			}
		}
		cell.Set(v)
		w.touch()
		return nil
	})
	if err == nil {
		logging.WithFields(ctx, "grid_id", id).Debug("cell set", "row", row, "column", col, "kind", v.Kind())
	}
	return v, err
}

// ClearCell empties one cell.
func (s *Service) ClearCell(_ context.Context, id uuid.UUID, row, col int) error {
	return s.with(id, func(w *workspaceGrid) error {
		cell, err := w.grid.CellAt(row, col)
		if err != nil {
			return err
		}
		cell.Clear()
		w.touch()
		return nil
	})
}

// parser returns the parser for col, falling back to String for columns
// the schema does not cover.
func (w *workspaceGrid) parser(col int) tabletext.Parser {
	if col < len(w.schema) {
		return w.schema[col]
	}
	return tabletext.String
}

// Values copies the grid's contents row by row.
func (s *Service) Values(_ context.Context, id uuid.UUID) ([][]grid.Value, error) {
	var rows [][]grid.Value
	err := s.with(id, func(w *workspaceGrid) error {
		rows = make([][]grid.Value, 0, w.grid.Height())
		for _, r := range w.grid.Rows() {
			rows = append(rows, r.Values())
		}
		return nil
	})
	return rows, err
}

// InsertRow inserts an empty row at index. An index past the end appends
// empty rows until the grid reaches it.
func (s *Service) InsertRow(ctx context.Context, id uuid.UUID, index int) (GridInfo, error) {
	return s.mutate(ctx, id, "row inserted", func(w *workspaceGrid) error {
		if index >= 0 {
			if err := s.checkHeight(grownTo(index, w.grid.Height())); err != nil {
				return err
			}
		}
		_, err := w.grid.InsertRow(index)
		return err
	}, "index", index)
}

// AppendRow adds an empty row at the bottom.
func (s *Service) AppendRow(ctx context.Context, id uuid.UUID) (GridInfo, error) {
	return s.mutate(ctx, id, "row appended", func(w *workspaceGrid) error {
		if err := s.checkHeight(grownTo(w.grid.Height(), w.grid.Height())); err != nil {
			return err
		}
		w.grid.AppendRow()
		return nil
	})
}

// InsertColumn inserts an empty text column at index, gap-filling like
// InsertRow. The schema grows with it.
func (s *Service) InsertColumn(ctx context.Context, id uuid.UUID, index int) (GridInfo, error) {
	return s.mutate(ctx, id, "column inserted", func(w *workspaceGrid) error {
		if index >= 0 {
			if err := s.checkWidth(grownTo(index, w.grid.Width())); err != nil {
				return err
			}
		}
		if _, err := w.grid.InsertColumn(index); err != nil {
			return err
		}
		w.schema = insertParsers(w.schema, index, w.grid.Width())
		return nil
	}, "index", index)
}

// AppendColumn adds an empty text column at the right.
func (s *Service) AppendColumn(ctx context.Context, id uuid.UUID) (GridInfo, error) {
	return s.mutate(ctx, id, "column appended", func(w *workspaceGrid) error {
		if err := s.checkWidth(grownTo(w.grid.Width(), w.grid.Width())); err != nil {
			return err
		}
		w.grid.AppendColumn()
		w.schema = insertParsers(w.schema, len(w.schema), w.grid.Width())
		return nil
	})
}

// insertParsers keeps a schema in step with a column insert at index that
// left the grid width columns wide.
func insertParsers(schema []tabletext.Parser, index, width int) []tabletext.Parser {
	if index < len(schema) {
		return slices.Insert(schema, index, tabletext.String)
	}
	for len(schema) < width {
		schema = append(schema, tabletext.String)
	}
	return schema
}

func (s *Service) mutate(ctx context.Context, id uuid.UUID, msg string, fn func(w *workspaceGrid) error, attrs ...any) (GridInfo, error) {
	var info GridInfo
	err := s.with(id, func(w *workspaceGrid) error {
		if err := fn(w); err != nil {
			return err
		}
		w.touch()
		info = w.info()
		return nil
	})
	if err != nil {
		return GridInfo{}, err
	}
	logging.WithFields(ctx, "grid_id", id).Info(msg,
		append(attrs, "rows", info.Rows, "columns", info.Columns)...)
	return info, nil
}
