package grid

import (
	"iter"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Grid is a growable table of cells addressed either by absolute position or
// by Row and Column handles. The zero value is an empty grid.
//
// A Grid is not safe for concurrent use. Callers that share one across
// goroutines must serialize every call, including lookups, because a handle
// lookup may rebuild the position caches.
type Grid struct {
	rows    []*Row
	columns []*Column

	// Derived handle -> index maps. nil means stale; rebuilt on the next
	// lookup from rows/columns. Never patched in place.
	rowPos    map[*Row]int
	columnPos map[*Column]int
}

// MaxExtent bounds the number of rows and the number of columns in a grid.
// Inserts that would grow past it fail with ErrInvalidArgument.
const MaxExtent = math.MaxInt32

// New returns an empty grid with zero rows and zero columns.
func New() *Grid {
	return &Grid{}
}

// Height returns the number of rows.
func (g *Grid) Height() int {
	return len(g.rows)
}

// Width returns the number of columns.
func (g *Grid) Width() int {
	return len(g.columns)
}

// InsertRow inserts a new row immediately before the row currently at index
// and returns the row now at index. Index may equal Height (append).
//
// Index beyond Height is allowed on purpose: enough empty rows are appended
// to make the height index+1, and the last of them is returned. Every new
// row receives one empty cell per existing column. Negative indices fail
// with ErrIndexOutOfRange, and indices that would take the height past
// MaxExtent with ErrInvalidArgument; both leave the grid unchanged.
func (g *Grid) InsertRow(index int) (*Row, error) {
	if index < 0 {
		return nil, &IndexError{Axis: AxisRow, Index: index, Count: len(g.rows)}
	}
	if max(index, len(g.rows)) >= MaxExtent {
		return nil, invalidArgument("row index %d would exceed %d rows", index, MaxExtent)
	}

	start := min(index, len(g.rows))
	added := make([]*Row, index-start+1)
	for i := range added {
		added[i] = g.newRow()
	}

	g.rows = slices.Insert(g.rows, start, added...)
	g.rowPos = nil

	return g.rows[index], nil
}

// InsertColumn inserts a new column immediately before the column currently
// at index and returns the column now at index, with the same gap-filling
// policy as InsertRow. Every existing row receives one empty cell per new
// column at the matching position.
func (g *Grid) InsertColumn(index int) (*Column, error) {
	if index < 0 {
		return nil, &IndexError{Axis: AxisColumn, Index: index, Count: len(g.columns)}
	}
	if max(index, len(g.columns)) >= MaxExtent {
		return nil, invalidArgument("column index %d would exceed %d columns", index, MaxExtent)
	}

	start := min(index, len(g.columns))
	added := make([]*Column, index-start+1)
	for i := range added {
		added[i] = &Column{grid: g}
	}

	for _, row := range g.rows {
		cells := make([]*Cell, len(added))
		for i := range cells {
			cells[i] = &Cell{}
		}
		row.cells = slices.Insert(row.cells, start, cells...)
	}

	g.columns = slices.Insert(g.columns, start, added...)
	g.columnPos = nil

	return g.columns[index], nil
}

// AppendRow adds a row after the last one. It returns nil once the grid
// holds MaxExtent rows.
func (g *Grid) AppendRow() *Row {
	r, _ := g.InsertRow(len(g.rows))
	return r
}

// AppendColumn adds a column after the last one. It returns nil once the
// grid holds MaxExtent columns.
func (g *Grid) AppendColumn() *Column {
	c, _ := g.InsertColumn(len(g.columns))
	return c
}

func (g *Grid) newRow() *Row {
	r := &Row{grid: g, cells: make([]*Cell, len(g.columns))}
	for i := range r.cells {
		r.cells[i] = &Cell{}
	}
	return r
}

// RowAt returns the row handle at an absolute index.
func (g *Grid) RowAt(index int) (*Row, error) {
	if index < 0 || index >= len(g.rows) {
		return nil, &IndexError{Axis: AxisRow, Index: index, Count: len(g.rows)}
	}
	return g.rows[index], nil
}

// ColumnAt returns the column handle at an absolute index.
func (g *Grid) ColumnAt(index int) (*Column, error) {
	if index < 0 || index >= len(g.columns) {
		return nil, &IndexError{Axis: AxisColumn, Index: index, Count: len(g.columns)}
	}
	return g.columns[index], nil
}

// RowIndex returns the current absolute index of r.
func (g *Grid) RowIndex(r *Row) (int, error) {
	if r == nil {
		return 0, invalidArgument("nil row")
	}
	if r.grid == nil {
		return 0, invalidArgument("detached row")
	}
	if r.grid != g {
		return 0, invalidArgument("row belongs to another grid")
	}

	if g.rowPos == nil {
		g.rowPos = make(map[*Row]int, len(g.rows))
		for i, row := range g.rows {
			g.rowPos[row] = i
		}
	}
	return g.rowPos[r], nil
}

// ColumnIndex returns the current absolute index of c.
func (g *Grid) ColumnIndex(c *Column) (int, error) {
	if c == nil {
		return 0, invalidArgument("nil column")
	}
	if c.grid == nil {
		return 0, invalidArgument("detached column")
	}
	if c.grid != g {
		return 0, invalidArgument("column belongs to another grid")
	}

	if g.columnPos == nil {
		g.columnPos = make(map[*Column]int, len(g.columns))
		for i, col := range g.columns {
			g.columnPos[col] = i
		}
	}
	return g.columnPos[c], nil
}

// Rows iterates over the current rows top to bottom. Structural mutation
// during iteration is not supported.
func (g *Grid) Rows() iter.Seq2[int, *Row] {
	return func(yield func(int, *Row) bool) {
		for i, r := range g.rows {
			if !yield(i, r) {
				return
			}
		}
	}
}

// Columns iterates over the current columns left to right.
func (g *Grid) Columns() iter.Seq2[int, *Column] {
	return func(yield func(int, *Column) bool) {
		for i, c := range g.columns {
			if !yield(i, c) {
				return
			}
		}
	}
}

// String returns a debug dump: a "table HxW:" line followed by every row
// with cells separated by ", ".
func (g *Grid) String() string {
	var b strings.Builder
	b.WriteString("table ")
	b.WriteString(strconv.Itoa(len(g.rows)))
	b.WriteByte('x')
	b.WriteString(strconv.Itoa(len(g.columns)))
	b.WriteString(":\n")
	for _, r := range g.rows {
		for c, cell := range r.cells {
			if c != 0 {
				b.WriteString(", ")
			}
			b.WriteString(cell.value.String())
		}
		b.WriteByte('\n')
	}
	return b.String()
}
