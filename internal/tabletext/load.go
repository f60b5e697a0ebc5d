package tabletext

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/JonMunkholm/gridtable/internal/grid"
	"github.com/JonMunkholm/gridtable/internal/resource"
)

const (
	// DefaultSeparator is the field separator used when none is given.
	DefaultSeparator = ","

	readBufferSize  = 32 * 1024
	writeBufferSize = 8 * 1024
)

// ProgressInterval is how often (in lines) Load reports progress.
var ProgressInterval = 1000

// Progress describes how far a load has got.
type Progress struct {
	Rows      int   // lines turned into rows so far
	BytesRead int64 // bytes consumed from the source
}

// Options configures Load.
type Options struct {
	// Separator splits each line into fields. It is a literal string, not a
	// pattern; there is no quoting or escaping of embedded separators.
	Separator string

	// Header stores the first line as text regardless of the parsers.
	Header bool

	// Parsers holds one parser per column and fixes the grid's width.
	Parsers []Parser

	// Sanitize replaces invalid UTF-8 in the input with '?'.
	Sanitize bool

	// Progress, when set, is called every ProgressInterval rows and once
	// more after the last row.
	Progress func(Progress)
}

func (o Options) validate() error {
	if o.Separator == "" {
		return fmt.Errorf("%w: empty separator", grid.ErrInvalidArgument)
	}
	if len(o.Parsers) == 0 {
		return fmt.Errorf("%w: no column parsers", grid.ErrInvalidArgument)
	}
	return nil
}

// Load builds a new grid from delimited text. The grid has one column per
// parser and one row per input line. A header line, when requested, is
// stored as literal text in row 0.
//
// Every line must split into exactly len(opts.Parsers) fields, or Load fails
// with a *grid.RecordError naming the 0-based line and the actual count. A
// field its parser rejects fails the load with a *grid.ConversionError. No
// partially built grid is ever returned.
func Load(r io.Reader, opts Options) (*grid.Grid, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil reader", grid.ErrInvalidArgument)
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	counter := &countingReader{r: r}
	var src io.Reader = counter
	if opts.Sanitize {
		src = newSanitizingReader(counter)
	}

	br := bufio.NewReaderSize(src, readBufferSize)
	if err := skipBOM(br); err != nil {
		return nil, grid.NewIOError("read", "", err)
	}

	width := len(opts.Parsers)
	g := grid.New()
	if _, err := g.InsertColumn(width - 1); err != nil {
		return nil, err
	}

	report := func(rows int) {
		if opts.Progress != nil {
			opts.Progress(Progress{Rows: rows, BytesRead: counter.n})
		}
	}

	for row := 0; ; row++ {
		line, err := readLine(br)
		if errors.Is(err, io.EOF) {
			report(row)
			return g, nil
		}
		if err != nil {
			return nil, grid.NewIOError("read", "", err)
		}

		fields := strings.Split(line, opts.Separator)
		if len(fields) != width {
			return nil, &grid.RecordError{Row: row, Fields: len(fields), Want: width}
		}

		if err := fillRow(g.AppendRow(), row, fields, opts); err != nil {
			return nil, err
		}

		if ProgressInterval > 0 && (row+1)%ProgressInterval == 0 {
			report(row + 1)
		}
	}
}

func fillRow(r *grid.Row, row int, fields []string, opts Options) error {
	for col, field := range fields {
		cell, err := r.CellAt(col)
		if err != nil {
			return err
		}

		if opts.Header && row == 0 {
			cell.SetText(field)
			continue
		}

		v, err := opts.Parsers[col].Parse(field)
		if err != nil {
			var ce *grid.ConversionError
			if errors.As(err, &ce) {
				ce.Row, ce.Column = row, col
			}
			return err
		}
		cell.Set(v)
	}
	return nil
}

// readLine returns the next line without its terminator ("\n" or "\r\n").
// A final line without a terminator is still returned; io.EOF is returned
// only when no bytes remain.
func readLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, nil
}

// LoadString is Load over an in-memory string.
func LoadString(s string, opts Options) (*grid.Grid, error) {
	return Load(strings.NewReader(s), opts)
}

// LoadFile opens path, loads it and closes it on every exit path.
func LoadFile(path string, opts Options) (g *grid.Grid, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, grid.NewIOError("open", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			g, err = nil, grid.NewIOError("close", path, cerr)
		}
	}()

	return Load(f, opts)
}

// LoadResource opens a named resource through loader and loads it. The
// resource is closed on every exit path. A missing resource reports
// resource.ErrNotFound.
func LoadResource(loader resource.Loader, name string, opts Options) (*grid.Grid, error) {
	if loader == nil {
		return nil, fmt.Errorf("%w: nil loader", grid.ErrInvalidArgument)
	}
	rc, err := loader.Open(name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return Load(rc, opts)
}
