package grid

import "fmt"

// Row is a position-independent handle to one row of a Grid. It keeps
// denoting the same logical row while rows are inserted before it.
type Row struct {
	grid  *Grid
	cells []*Cell // one per column, in column order
}

// Column is a position-independent handle to one column of a Grid. It holds
// no cells itself; cells live under rows and are found by column position.
type Column struct {
	grid *Grid
}

// Cell holds the content at one row/column intersection. Cells are created
// empty.
type Cell struct {
	value Value
}

// Index returns the current absolute index of the row.
func (r *Row) Index() (int, error) {
	if r == nil {
		return 0, invalidArgument("nil row")
	}
	if r.grid == nil {
		return 0, invalidArgument("detached row")
	}
	return r.grid.RowIndex(r)
}

// Len returns the number of cells in the row, always the grid's width.
func (r *Row) Len() int {
	return len(r.cells)
}

// Cell returns the row's cell in column c.
func (r *Row) Cell(c *Column) (*Cell, error) {
	if r == nil {
		return nil, invalidArgument("nil row")
	}
	if r.grid == nil {
		return nil, invalidArgument("detached row")
	}
	i, err := r.grid.ColumnIndex(c)
	if err != nil {
		return nil, err
	}
	return r.cells[i], nil
}

// CellAt returns the row's cell at an absolute column index.
func (r *Row) CellAt(column int) (*Cell, error) {
	if r == nil {
		return nil, invalidArgument("nil row")
	}
	if column < 0 || column >= len(r.cells) {
		return nil, &IndexError{Axis: AxisColumn, Index: column, Count: len(r.cells)}
	}
	return r.cells[column], nil
}

// Values returns a copy of the row's content in column order.
func (r *Row) Values() []Value {
	out := make([]Value, len(r.cells))
	for i, c := range r.cells {
		out[i] = c.value
	}
	return out
}

// Index returns the current absolute index of the column.
func (c *Column) Index() (int, error) {
	if c == nil {
		return 0, invalidArgument("nil column")
	}
	if c.grid == nil {
		return 0, invalidArgument("detached column")
	}
	return c.grid.ColumnIndex(c)
}

// Cell returns the column's cell in row r. The column's index is resolved on
// every call through the grid's cache.
func (c *Column) Cell(r *Row) (*Cell, error) {
	if c == nil {
		return nil, invalidArgument("nil column")
	}
	if c.grid == nil {
		return nil, invalidArgument("detached column")
	}
	return c.grid.Cell(r, c)
}

// CellAt returns the column's cell at an absolute row index.
func (c *Column) CellAt(row int) (*Cell, error) {
	if c == nil {
		return nil, invalidArgument("nil column")
	}
	if c.grid == nil {
		return nil, invalidArgument("detached column")
	}
	return c.grid.ColumnCell(row, c)
}

// Cell returns the cell at the intersection of two handles.
func (g *Grid) Cell(r *Row, c *Column) (*Cell, error) {
	ri, err := g.RowIndex(r)
	if err != nil {
		return nil, err
	}
	ci, err := g.ColumnIndex(c)
	if err != nil {
		return nil, err
	}
	return g.rows[ri].cells[ci], nil
}

// RowCell returns the cell at row handle r and absolute column index.
func (g *Grid) RowCell(r *Row, column int) (*Cell, error) {
	ri, err := g.RowIndex(r)
	if err != nil {
		return nil, err
	}
	return g.CellAt(ri, column)
}

// ColumnCell returns the cell at absolute row index and column handle c.
func (g *Grid) ColumnCell(row int, c *Column) (*Cell, error) {
	ci, err := g.ColumnIndex(c)
	if err != nil {
		return nil, err
	}
	return g.CellAt(row, ci)
}

// CellAt returns the cell at absolute row and column indices.
func (g *Grid) CellAt(row, column int) (*Cell, error) {
	r, err := g.RowAt(row)
	if err != nil {
		return nil, err
	}
	if column < 0 || column >= len(g.columns) {
		return nil, &IndexError{Axis: AxisColumn, Index: column, Count: len(g.columns)}
	}
	return r.cells[column], nil
}

// Content returns the current value, possibly Empty.
func (c *Cell) Content() Value {
	return c.value
}

// IsEmpty reports whether the cell has no content.
func (c *Cell) IsEmpty() bool {
	return c.value.IsEmpty()
}

// Set overwrites the content with v.
func (c *Cell) Set(v Value) {
	c.value = v
}

// SetAny stores an arbitrary Go value, mapped through ValueOf. The cell is
// left unchanged when the value has no representation.
func (c *Cell) SetAny(x any) error {
	v, err := ValueOf(x)
	if err != nil {
		return err
	}
	c.value = v
	return nil
}

// Byte and short values widen to Int.
func (c *Cell) SetByte(b int8) { c.value = Int(int32(b)) }
func (c *Cell) SetShort(s int16) { c.value = Int(int32(s)) }
func (c *Cell) SetInt(i int32) { c.value = Int(i) }
func (c *Cell) SetLong(l int64) { c.value = Long(l) }
func (c *Cell) SetFloat(f float32) { c.value = Float(f) }
func (c *Cell) SetDouble(d float64) { c.value = Double(d) }
func (c *Cell) SetBool(b bool) { c.value = Bool(b) }
func (c *Cell) SetText(s string) { c.value = Text(s) }

// SetRune stores a single character as text.
func (c *Cell) SetRune(r rune) { c.value = Text(string(r)) }

// Clear resets the cell to empty.
func (c *Cell) Clear() {
	c.value = Empty
}

func (c *Cell) Byte() (int8, error) { return c.value.AsByte() }
func (c *Cell) Short() (int16, error) { return c.value.AsShort() }
func (c *Cell) Int() (int32, error) { return c.value.AsInt() }
func (c *Cell) Long() (int64, error) { return c.value.AsLong() }
func (c *Cell) Float() (float32, error) { return c.value.AsFloat() }
func (c *Cell) Double() (float64, error) { return c.value.AsDouble() }
func (c *Cell) Bool() (bool, error) { return c.value.AsBool() }

// Text returns the textual form of the content, failing only when empty.
func (c *Cell) Text() (string, error) {
	return c.value.AsText()
}

// String returns the textual form of the content; empty cells yield "".
func (c *Cell) String() string {
	return c.value.String()
}

// GoString helps when a cell shows up in test failure output.
func (c *Cell) GoString() string {
	return fmt.Sprintf("grid.Cell{%s %q}", c.value.Kind(), c.value.String())
}
