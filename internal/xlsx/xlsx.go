// Package xlsx moves grids in and out of Excel workbooks.
package xlsx

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/JonMunkholm/gridtable/internal/grid"
	"github.com/JonMunkholm/gridtable/internal/tabletext"
	"github.com/xuri/excelize/v2"
)

// DefaultSheet is the sheet written when none is named.
const DefaultSheet = "Sheet1"

// ErrNoSheet is returned when the requested sheet does not exist.
var ErrNoSheet = errors.New("sheet not found")

// Export writes g to a new workbook at path. Typed cells keep their kind as
// far as Excel allows: numbers stay numeric and booleans stay booleans.
// Empty cells are left blank.
func Export(g *grid.Grid, path, sheet string) error {
	f, err := build(g, sheet)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return grid.NewIOError("write", path, err)
	}
	return nil
}

// ExportTo is Export onto an arbitrary writer.
func ExportTo(w io.Writer, g *grid.Grid, sheet string) error {
	f, err := build(g, sheet)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return grid.NewIOError("write", "", err)
	}
	return nil
}

func build(g *grid.Grid, sheet string) (*excelize.File, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: nil grid", grid.ErrInvalidArgument)
	}
	if sheet == "" {
		sheet = DefaultSheet
	}

	f := excelize.NewFile()
	if sheet != DefaultSheet {
		if err := f.SetSheetName(DefaultSheet, sheet); err != nil {
			f.Close()
			return nil, fmt.Errorf("%w: sheet name %q: %v", grid.ErrInvalidArgument, sheet, err)
		}
	}

	for r, row := range g.Rows() {
		for c, v := range row.Values() {
			if v.IsEmpty() {
				continue
			}
			name, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				f.Close()
				return nil, err
			}
			if err := f.SetCellValue(sheet, name, cellValue(v)); err != nil {
				f.Close()
				return nil, fmt.Errorf("set %s: %w", name, err)
			}
		}
	}
	return f, nil
}

// cellValue maps a grid value onto the Go type excelize stores natively.
// Non-finite floats have no Excel representation and are written as text.
func cellValue(v grid.Value) any {
	switch v.Kind() {
	case grid.KindFloat, grid.KindDouble:
		d, _ := v.AsDouble()
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return v.String()
		}
	}
	return v.Any()
}

// Options configures Import.
type Options struct {
	Sheet   string // default: the first sheet in the workbook
	Header  bool
	Parsers []tabletext.Parser
}

// Import reads one sheet of the workbook at path into a new grid. Each cell
// goes through its column's parser exactly as a text load would; blank
// cells, including those missing from the end of a short row, stay empty.
// A row wider than the schema fails with a *grid.RecordError.
func Import(path string, opts Options) (*grid.Grid, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, grid.NewIOError("open", path, err)
	}
	defer f.Close()
	return read(f, opts)
}

// ImportFrom is Import over a reader holding a workbook.
func ImportFrom(r io.Reader, opts Options) (*grid.Grid, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, grid.NewIOError("read", "", err)
	}
	defer f.Close()
	return read(f, opts)
}

func read(f *excelize.File, opts Options) (*grid.Grid, error) {
	if len(opts.Parsers) == 0 {
		return nil, fmt.Errorf("%w: no column parsers", grid.ErrInvalidArgument)
	}

	sheet := opts.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoSheet, sheet)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, grid.NewIOError("read", sheet, err)
	}

	width := len(opts.Parsers)
	g := grid.New()
	if _, err := g.InsertColumn(width - 1); err != nil {
		return nil, err
	}

	for r, fields := range rows {
		if len(fields) > width {
			return nil, &grid.RecordError{Row: r, Fields: len(fields), Want: width}
		}
		row := g.AppendRow()
		for c, field := range fields {
			if field == "" {
				continue
			}
			cell, err := row.CellAt(c)
			if err != nil {
				return nil, err
			}
			if opts.Header && r == 0 {
				cell.SetText(field)
				continue
			}
			v, err := opts.Parsers[c].Parse(field)
			if err != nil {
				var ce *grid.ConversionError
				if errors.As(err, &ce) {
					ce.Row, ce.Column = r, c
				}
				return nil, err
			}
			cell.Set(v)
		}
	}
	return g, nil
}

// Sheets lists the sheet names of the workbook at path.
func Sheets(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, grid.NewIOError("open", path, err)
	}
	defer f.Close()
	return f.GetSheetList(), nil
}
