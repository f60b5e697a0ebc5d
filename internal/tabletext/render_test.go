package tabletext

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JonMunkholm/gridtable/internal/grid"
)

func TestRender_RoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		sep    string
		fields int
	}{
		{name: "comma", input: "a,b,c\nd,e,f\n", sep: ",", fields: 3},
		{name: "tab", input: "x\ty\n\t\n", sep: "\t", fields: 2},
		{name: "single column", input: "one\ntwo\nthree\n", sep: ",", fields: 1},
		{name: "unicode", input: "日本,ü\n", sep: ",", fields: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := LoadString(tt.input, Options{Separator: tt.sep, Parsers: Repeat(String, tt.fields)})
			if err != nil {
				t.Fatalf("LoadString() error = %v", err)
			}
			got, err := RenderString(g, tt.sep)
			if err != nil {
				t.Fatalf("RenderString() error = %v", err)
			}
			if got != tt.input {
				t.Errorf("round trip = %q, want %q", got, tt.input)
			}
		})
	}
}

func TestRender_EmptyCells(t *testing.T) {
	g := grid.New()
	if _, err := g.InsertColumn(2); err != nil {
		t.Fatal(err)
	}
	g.AppendRow()
	c, _ := g.CellAt(0, 1)
	c.SetInt(7)

	got, err := RenderString(g, ",")
	if err != nil {
		t.Fatalf("RenderString() error = %v", err)
	}
	if got != ",7,\n" {
		t.Errorf("RenderString() = %q, want %q", got, ",7,\n")
	}
}

func TestRender_TypedValues(t *testing.T) {
	g, err := LoadString("1,2.5,true,9000000000\n", Options{
		Separator: ",",
		Parsers:   []Parser{Integer, Double, Boolean, Long},
	})
	if err != nil {
		t.Fatalf("LoadString() error = %v", err)
	}
	got, _ := RenderString(g, "|")
	if want := "1|2.5|true|9000000000\n"; got != want {
		t.Errorf("RenderString() = %q, want %q", got, want)
	}
}

func TestRender_NilArguments(t *testing.T) {
	if err := Render(nil, grid.New(), ","); !errors.Is(err, grid.ErrInvalidArgument) {
		t.Errorf("nil writer error = %v, want ErrInvalidArgument", err)
	}
	var b strings.Builder
	if err := Render(&b, nil, ","); !errors.Is(err, grid.ErrInvalidArgument) {
		t.Errorf("nil grid error = %v, want ErrInvalidArgument", err)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestRender_WriteFailure(t *testing.T) {
	g, _ := LoadString("a\n", Options{Separator: ",", Parsers: []Parser{String}})
	err := Render(failingWriter{}, g, ",")
	if !errors.Is(err, grid.ErrResourceIO) {
		t.Errorf("error = %v, want ErrResourceIO", err)
	}
}

func TestRenderFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	if err := os.WriteFile(path, []byte("old contents\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	g, _ := LoadString("a;b\n", Options{Separator: ";", Parsers: Repeat(String, 2)})
	if err := RenderFile(path, g, ""); err != nil {
		t.Fatalf("RenderFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "a,b\n" {
		t.Errorf("file = %q, want %q", data, "a,b\n")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want 1 (temp file left behind)", len(entries))
	}
}

func TestRenderFile_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no", "such", "out.txt")
	err := RenderFile(path, grid.New(), ",")
	if !errors.Is(err, grid.ErrResourceIO) {
		t.Errorf("error = %v, want ErrResourceIO", err)
	}
}

func TestRenderAligned(t *testing.T) {
	g, err := LoadString("name,n\nann,42\n日本,7\n", Options{
		Separator: ",",
		Header:    true,
		Parsers:   []Parser{String, Integer},
	})
	if err != nil {
		t.Fatalf("LoadString() error = %v", err)
	}

	var b strings.Builder
	if err := RenderAligned(&b, g, AlignedOptions{HeaderRule: true}); err != nil {
		t.Fatalf("RenderAligned() error = %v", err)
	}
	want := "name | n\n" +
		"-----+---\n" +
		"ann  | 42\n" +
		"日本 |  7\n"
	if b.String() != want {
		t.Errorf("RenderAligned() =\n%s\nwant\n%s", b.String(), want)
	}
}

func TestRenderAligned_HeaderRow(t *testing.T) {
	g, _ := LoadString("x,1\nname,n\n", Options{Separator: ",", Parsers: Repeat(String, 2)})

	var b strings.Builder
	if err := RenderAligned(&b, g, AlignedOptions{HeaderRule: true, HeaderRow: 1}); err != nil {
		t.Fatalf("RenderAligned() error = %v", err)
	}
	if want := "x    | 1\nname | n\n-----+--\n"; b.String() != want {
		t.Errorf("RenderAligned() = %q, want %q", b.String(), want)
	}
}

func TestRenderAligned_MaxWidth(t *testing.T) {
	g, _ := LoadString("abcdefgh,x\n", Options{Separator: ",", Parsers: Repeat(String, 2)})

	var b strings.Builder
	if err := RenderAligned(&b, g, AlignedOptions{Separator: " ", MaxWidth: 4}); err != nil {
		t.Fatalf("RenderAligned() error = %v", err)
	}
	if want := "abc… x\n"; b.String() != want {
		t.Errorf("RenderAligned() = %q, want %q", b.String(), want)
	}
}
