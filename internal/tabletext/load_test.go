package tabletext

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/JonMunkholm/gridtable/internal/grid"
	"github.com/JonMunkholm/gridtable/internal/resource"
)

func TestLoad_HeaderAndTypedColumns(t *testing.T) {
	g, err := LoadString("a,b\n1,2.5\n3,4.5\n", Options{
		Separator: ",",
		Header:    true,
		Parsers:   []Parser{Integer, Double},
	})
	if err != nil {
		t.Fatalf("LoadString() error = %v", err)
	}
	if g.Height() != 3 || g.Width() != 2 {
		t.Fatalf("size = %dx%d, want 3x2", g.Height(), g.Width())
	}

	for col, want := range []string{"a", "b"} {
		c, _ := g.CellAt(0, col)
		if c.Content().Kind() != grid.KindText {
			t.Errorf("header cell %d kind = %v, want text", col, c.Content().Kind())
		}
		if got, _ := c.Text(); got != want {
			t.Errorf("header cell %d = %q, want %q", col, got, want)
		}
	}

	c, _ := g.CellAt(1, 0)
	if got, err := c.Int(); err != nil || got != 1 {
		t.Errorf("cell(1,0).Int() = %v, %v, want 1", got, err)
	}
	c, _ = g.CellAt(2, 1)
	if got, err := c.Double(); err != nil || got != 4.5 {
		t.Errorf("cell(2,1).Double() = %v, %v, want 4.5", got, err)
	}
}

func TestLoad_MalformedRecord(t *testing.T) {
	_, err := LoadString("1,2,3\n1,2\n", Options{
		Separator: ",",
		Parsers:   Repeat(String, 3),
	})
	if !errors.Is(err, grid.ErrMalformedRecord) {
		t.Fatalf("error = %v, want ErrMalformedRecord", err)
	}
	var re *grid.RecordError
	if !errors.As(err, &re) {
		t.Fatalf("error %T is not a *grid.RecordError", err)
	}
	if re.Row != 1 || re.Fields != 2 || re.Want != 3 {
		t.Errorf("RecordError = %+v, want row 1 fields 2 want 3", *re)
	}
}

func TestLoad_ConversionFailure(t *testing.T) {
	g, err := LoadString("1,2\n3,x\n", Options{
		Separator: ",",
		Parsers:   []Parser{Integer, Double},
	})
	if g != nil {
		t.Error("failed load returned a grid")
	}
	if !errors.Is(err, grid.ErrValueConversion) {
		t.Fatalf("error = %v, want ErrValueConversion", err)
	}
	var ce *grid.ConversionError
	if !errors.As(err, &ce) {
		t.Fatalf("error %T is not a *grid.ConversionError", err)
	}
	if ce.Row != 1 || ce.Column != 1 || ce.Text != "x" || ce.To != grid.KindDouble {
		t.Errorf("ConversionError = %+v, want row 1 column 1 text x to double", *ce)
	}
}

func TestLoad_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{name: "empty separator", opts: Options{Parsers: []Parser{String}}},
		{name: "no parsers", opts: Options{Separator: ","}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadString("a\n", tt.opts)
			if !errors.Is(err, grid.ErrInvalidArgument) {
				t.Errorf("error = %v, want ErrInvalidArgument", err)
			}
		})
	}

	if _, err := Load(nil, Options{Separator: ",", Parsers: []Parser{String}}); !errors.Is(err, grid.ErrInvalidArgument) {
		t.Errorf("Load(nil) error = %v, want ErrInvalidArgument", err)
	}
}

func TestLoad_LineEndings(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantHeight int
		wantLast   string
	}{
		{name: "LF", input: "a,b\nc,d\n", wantHeight: 2, wantLast: "d"},
		{name: "CRLF", input: "a,b\r\nc,d\r\n", wantHeight: 2, wantLast: "d"},
		{name: "no final terminator", input: "a,b\nc,d", wantHeight: 2, wantLast: "d"},
		{name: "BOM", input: "\xEF\xBB\xBFa,b\nc,d\n", wantHeight: 2, wantLast: "d"},
		{name: "empty input", input: "", wantHeight: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := LoadString(tt.input, Options{Separator: ",", Parsers: Repeat(String, 2)})
			if err != nil {
				t.Fatalf("LoadString() error = %v", err)
			}
			if g.Height() != tt.wantHeight {
				t.Fatalf("Height() = %d, want %d", g.Height(), tt.wantHeight)
			}
			if g.Width() != 2 {
				t.Errorf("Width() = %d, want 2", g.Width())
			}
			if tt.wantHeight == 0 {
				return
			}
			c, _ := g.CellAt(g.Height()-1, 1)
			if got, _ := c.Text(); got != tt.wantLast {
				t.Errorf("last cell = %q, want %q", got, tt.wantLast)
			}
			first, _ := g.CellAt(0, 0)
			if got, _ := first.Text(); got != "a" {
				t.Errorf("first cell = %q, want %q", got, "a")
			}
		})
	}
}

func TestLoad_MultiCharSeparator(t *testing.T) {
	g, err := LoadString("a::b::c\n", Options{Separator: "::", Parsers: Repeat(String, 3)})
	if err != nil {
		t.Fatalf("LoadString() error = %v", err)
	}
	c, _ := g.CellAt(0, 2)
	if got, _ := c.Text(); got != "c" {
		t.Errorf("cell(0,2) = %q, want %q", got, "c")
	}
}

func TestLoad_Sanitize(t *testing.T) {
	g, err := LoadString("a\x80b,c\n", Options{Separator: ",", Parsers: Repeat(String, 2), Sanitize: true})
	if err != nil {
		t.Fatalf("LoadString() error = %v", err)
	}
	c, _ := g.CellAt(0, 0)
	if got, _ := c.Text(); got != "a?b" {
		t.Errorf("cell(0,0) = %q, want %q", got, "a?b")
	}
}

func TestLoad_Progress(t *testing.T) {
	old := ProgressInterval
	ProgressInterval = 2
	defer func() { ProgressInterval = old }()

	var reports []Progress
	_, err := LoadString("1\n2\n3\n4\n5\n", Options{
		Separator: ",",
		Parsers:   []Parser{Integer},
		Progress:  func(p Progress) { reports = append(reports, p) },
	})
	if err != nil {
		t.Fatalf("LoadString() error = %v", err)
	}

	var rows []int
	for _, p := range reports {
		rows = append(rows, p.Rows)
	}
	want := []int{2, 4, 5}
	if len(rows) != len(want) {
		t.Fatalf("progress rows = %v, want %v", rows, want)
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Errorf("progress rows = %v, want %v", rows, want)
			break
		}
	}
	if last := reports[len(reports)-1]; last.BytesRead != 10 {
		t.Errorf("final BytesRead = %d, want 10", last.BytesRead)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.txt")
	if err := os.WriteFile(path, []byte("x;1\ny;2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	g, err := LoadFile(path, Options{Separator: ";", Parsers: []Parser{String, Long}})
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	c, _ := g.CellAt(1, 1)
	if got, _ := c.Long(); got != 2 {
		t.Errorf("cell(1,1) = %d, want 2", got)
	}

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.txt"), Options{Separator: ";", Parsers: []Parser{String}})
	if !errors.Is(err, grid.ErrResourceIO) {
		t.Errorf("missing file error = %v, want ErrResourceIO", err)
	}
}

func TestLoadResource(t *testing.T) {
	loader := resource.FSLoader(fstest.MapFS{
		"tables/people.txt": {Data: []byte("name,age\nann,41\n")},
	})
	opts := Options{Separator: ",", Header: true, Parsers: []Parser{String, Integer}}

	g, err := LoadResource(loader, "tables/people.txt", opts)
	if err != nil {
		t.Fatalf("LoadResource() error = %v", err)
	}
	c, _ := g.CellAt(1, 1)
	if got, _ := c.Int(); got != 41 {
		t.Errorf("age = %d, want 41", got)
	}

	if _, err := LoadResource(loader, "tables/missing.txt", opts); !errors.Is(err, resource.ErrNotFound) {
		t.Errorf("missing resource error = %v, want resource.ErrNotFound", err)
	}
	if _, err := LoadResource(nil, "x", opts); !errors.Is(err, grid.ErrInvalidArgument) {
		t.Errorf("nil loader error = %v, want ErrInvalidArgument", err)
	}
}

func TestSanitizingReader_SplitRune(t *testing.T) {
	// "é" is 0xC3 0xA9; feed it one byte per read.
	src := &byteReader{data: []byte("a\xC3\xA9b")}
	r := newSanitizingReader(src)

	var out strings.Builder
	buf := make([]byte, 8)
	for {
		n, err := r.Read(buf)
		out.Write(buf[:n])
		if err != nil {
			break
		}
	}
	if out.String() != "aéb" {
		t.Errorf("got %q, want %q", out.String(), "aéb")
	}
}

// byteReader returns at most one byte per Read call.
type byteReader struct {
	data []byte
}

func (b *byteReader) Read(p []byte) (int, error) {
	if len(b.data) == 0 {
		return 0, io.EOF
	}
	p[0] = b.data[0]
	b.data = b.data[1:]
	return 1, nil
}
