// Package grid provides an in-memory, growable two-dimensional table.
//
// Cells can be addressed by absolute position (row index, column index) or
// through Row and Column handles that keep denoting the same logical slice
// while other rows and columns are inserted around them:
//
//	g := grid.New()
//	header := g.AppendRow()
//	g.AppendRow()
//
//	b := g.AppendColumn()
//	a, _ := g.InsertColumn(0) // before b
//
//	cell, _ := header.Cell(a)
//	cell.SetText("column a")
//
// # Position caches
//
// Resolving a handle to its index goes through a handle -> index map per
// axis. Any structural mutation drops the map for that axis and the next
// lookup rebuilds it in one pass over the current order, so a lookup never
// observes an index from before the mutation.
//
// # Gap-filling inserts
//
// Inserting past the current end is permitted: InsertRow(5) on a grid of
// height 2 appends rows until the height is 6. Loaders build their column
// set this way with a single InsertColumn(width-1).
//
// # Content
//
// A Cell holds a Value, a closed sum over empty, text, int, long, float,
// double and bool. Typed getters never truncate: an integral getter on a
// fractional or out-of-range number fails with ErrValueConversion, and any
// getter on an empty cell fails with ErrEmptyCell.
//
// Rows and columns cannot be deleted. A Grid is not safe for concurrent use.
package grid
