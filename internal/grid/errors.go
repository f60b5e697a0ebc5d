package grid

import (
	"errors"
	"fmt"
)

// Error classes. Every error returned by this package (and by the text,
// xlsx and resource adapters built on it) matches exactly one of these
// through errors.Is.
var (
	// ErrInvalidArgument indicates a missing or foreign input, such as a nil
	// handle or a handle that belongs to another grid.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrIndexOutOfRange indicates an absolute index that is negative or at
	// or beyond the current row/column count.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrMalformedRecord indicates a delimited line with the wrong field count.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrValueConversion indicates text that a column parser cannot convert,
	// or a typed getter the stored value cannot satisfy.
	ErrValueConversion = errors.New("value conversion error")

	// ErrEmptyCell indicates a typed getter called on an empty cell.
	ErrEmptyCell = errors.New("empty cell")

	// ErrResourceIO indicates an underlying read or write failure.
	ErrResourceIO = errors.New("resource i/o error")
)

// Axis names the dimension an index error refers to.
type Axis string

const (
	AxisRow    Axis = "row"
	AxisColumn Axis = "column"
)

// IndexError reports an absolute index outside [0, Count).
type IndexError struct {
	Axis  Axis
	Index int
	Count int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s index %d out of range [0, %d)", e.Axis, e.Index, e.Count)
}

func (e *IndexError) Unwrap() error {
	return ErrIndexOutOfRange
}

// RecordError reports a line whose field count does not match the schema.
// Row is 0-based and counts every line, including a header line.
type RecordError struct {
	Row    int
	Fields int
	Want   int
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("malformed record: invalid width %d for row %d (want %d)", e.Fields, e.Row, e.Want)
}

func (e *RecordError) Unwrap() error {
	return ErrMalformedRecord
}

// ConversionError reports a value that cannot be represented as the
// requested kind. Row and Column are -1 when the error did not come from a
// positioned load.
type ConversionError struct {
	From   Kind
	To     Kind
	Text   string
	Row    int
	Column int
	Err    error
}

func (e *ConversionError) Error() string {
	msg := fmt.Sprintf("cannot convert %s to %s", e.From, e.To)
	if e.Text != "" || e.From == KindText {
		msg = fmt.Sprintf("cannot convert %s %q to %s", e.From, e.Text, e.To)
	}
	if e.Row >= 0 {
		msg = fmt.Sprintf("%s at row %d, column %d", msg, e.Row, e.Column)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is matches ErrValueConversion so callers need not care about the detail.
func (e *ConversionError) Is(target error) bool {
	return target == ErrValueConversion
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// IOError wraps a failure of the underlying reader, writer or file.
type IOError struct {
	Op   string // "read", "write", "open", "close"
	Path string // optional
	Err  error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("resource i/o error: %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("resource i/o error: %s: %v", e.Op, e.Err)
}

func (e *IOError) Is(target error) bool {
	return target == ErrResourceIO
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError wraps err as an IOError. Returns nil if err is nil.
func NewIOError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Op: op, Path: path, Err: err}
}

// invalidArgument formats an ErrInvalidArgument with detail.
func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
