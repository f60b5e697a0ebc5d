package store

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/JonMunkholm/gridtable/internal/grid"
	"github.com/google/uuid"
)

func typedGrid(t *testing.T) *grid.Grid {
	t.Helper()
	g := grid.New()
	if _, err := g.InsertColumn(3); err != nil {
		t.Fatal(err)
	}
	if _, err := g.InsertRow(1); err != nil {
		t.Fatal(err)
	}
	values := [][]grid.Value{
		{grid.Text("name"), grid.Int(7), grid.Long(1 << 40), grid.Empty},
		{grid.Float(1.5), grid.Double(math.Inf(-1)), grid.Bool(true), grid.Text("")},
	}
	for r, row := range values {
		for c, v := range row {
			cell, err := g.CellAt(r, c)
			if err != nil {
				t.Fatal(err)
			}
			cell.Set(v)
		}
	}
	return g
}

func assertSameGrid(t *testing.T, got, want *grid.Grid) {
	t.Helper()
	if got.Height() != want.Height() || got.Width() != want.Width() {
		t.Fatalf("size = %dx%d, want %dx%d", got.Height(), got.Width(), want.Height(), want.Width())
	}
	for r := 0; r < want.Height(); r++ {
		for c := 0; c < want.Width(); c++ {
			g, _ := got.CellAt(r, c)
			w, _ := want.CellAt(r, c)
			if !g.Content().Equal(w.Content()) || g.Content().Kind() != w.Content().Kind() {
				t.Errorf("cell(%d,%d) = %#v, want %#v", r, c, g, w)
			}
		}
	}
}

func TestEncodeDecodeGrid(t *testing.T) {
	want := typedGrid(t)
	data, err := EncodeGrid(want)
	if err != nil {
		t.Fatalf("EncodeGrid() error = %v", err)
	}
	got, err := DecodeGrid(data)
	if err != nil {
		t.Fatalf("DecodeGrid() error = %v", err)
	}
	assertSameGrid(t, got, want)
}

func TestDecodeGrid_ColumnsWithoutRows(t *testing.T) {
	g := grid.New()
	g.AppendColumn()
	g.AppendColumn()

	data, _ := EncodeGrid(g)
	back, err := DecodeGrid(data)
	if err != nil {
		t.Fatalf("DecodeGrid() error = %v", err)
	}
	if back.Height() != 0 || back.Width() != 2 {
		t.Errorf("size = %dx%d, want 0x2", back.Height(), back.Width())
	}
}

func TestDecodeGrid_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not json", data: "nope"},
		{name: "negative columns", data: `{"columns":-1,"rows":[]}`},
		{name: "ragged row", data: `{"columns":2,"rows":[[{"k":"empty"}]]}`},
		{name: "unknown kind", data: `{"columns":1,"rows":[[{"k":"money","v":1}]]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeGrid([]byte(tt.data)); err == nil {
				t.Error("DecodeGrid() succeeded, want error")
			}
		})
	}
}

// testStore runs the behaviour every backend must share.
func testStore(t *testing.T, s Store) {
	ctx := context.Background()
	t.Cleanup(func() { s.Close() })

	t.Run("save and get", func(t *testing.T) {
		want := typedGrid(t)
		id, err := s.Save(ctx, Snapshot{Name: "first", Grid: want})
		if err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if id == uuid.Nil {
			t.Fatal("Save() returned nil id")
		}

		snap, err := s.Get(ctx, id)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if snap.ID != id || snap.Name != "first" || snap.CreatedAt.IsZero() {
			t.Errorf("snapshot = %+v", snap)
		}
		assertSameGrid(t, snap.Grid, want)
	})

	t.Run("snapshot does not alias the grid", func(t *testing.T) {
		g := typedGrid(t)
		id, err := s.Save(ctx, Snapshot{Name: "alias", Grid: g})
		if err != nil {
			t.Fatal(err)
		}
		c, _ := g.CellAt(0, 0)
		c.SetText("changed")

		snap, err := s.Get(ctx, id)
		if err != nil {
			t.Fatal(err)
		}
		got, _ := snap.Grid.CellAt(0, 0)
		if text, _ := got.Text(); text != "name" {
			t.Errorf("stored cell = %q, want %q", text, "name")
		}
	})

	t.Run("overwrite and list order", func(t *testing.T) {
		base := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
		older, err := s.Save(ctx, Snapshot{Name: "older", CreatedAt: base, Grid: grid.New()})
		if err != nil {
			t.Fatal(err)
		}
		newer, err := s.Save(ctx, Snapshot{Name: "newer", CreatedAt: base.Add(time.Hour), Grid: typedGrid(t)})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := s.Save(ctx, Snapshot{ID: older, Name: "older renamed", CreatedAt: base, Grid: grid.New()}); err != nil {
			t.Fatal(err)
		}

		list, err := s.List(ctx)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(list) < 2 || list[0].ID != newer || list[1].ID != older {
			t.Fatalf("List() order = %+v, want newer then older first", list)
		}
		if list[0].Rows != 2 || list[0].Columns != 4 {
			t.Errorf("newer info = %dx%d, want 2x4", list[0].Rows, list[0].Columns)
		}
		if list[1].Name != "older renamed" {
			t.Errorf("overwritten name = %q, want %q", list[1].Name, "older renamed")
		}
	})

	t.Run("overwrite keeps creation time", func(t *testing.T) {
		created := time.Date(2031, 6, 1, 12, 0, 0, 0, time.UTC)
		id, err := s.Save(ctx, Snapshot{Name: "kept", CreatedAt: created, Grid: grid.New()})
		if err != nil {
			t.Fatal(err)
		}
		for _, at := range []time.Time{{}, created.Add(48 * time.Hour)} {
			if _, err := s.Save(ctx, Snapshot{ID: id, Name: "kept", CreatedAt: at, Grid: typedGrid(t)}); err != nil {
				t.Fatal(err)
			}
			snap, err := s.Get(ctx, id)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if !snap.CreatedAt.Equal(created) {
				t.Errorf("CreatedAt after overwrite = %v, want %v", snap.CreatedAt, created)
			}
			if snap.Grid.Height() != 2 {
				t.Errorf("overwritten grid height = %d, want 2", snap.Grid.Height())
			}
		}
	})

	t.Run("delete", func(t *testing.T) {
		id, err := s.Save(ctx, Snapshot{Name: "doomed", Grid: grid.New()})
		if err != nil {
			t.Fatal(err)
		}
		if err := s.Delete(ctx, id); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if _, err := s.Get(ctx, id); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get(deleted) error = %v, want ErrNotFound", err)
		}
		if err := s.Delete(ctx, id); !errors.Is(err, ErrNotFound) {
			t.Errorf("Delete(deleted) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("nil grid", func(t *testing.T) {
		if _, err := s.Save(ctx, Snapshot{Name: "empty"}); !errors.Is(err, grid.ErrInvalidArgument) {
			t.Errorf("Save(nil grid) error = %v, want ErrInvalidArgument", err)
		}
	})
}

func TestMemory(t *testing.T) {
	testStore(t, NewMemory())
}

func TestSQLite_InMemory(t *testing.T) {
	s, err := OpenSQLite(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	testStore(t, s)
}

func TestSQLite_FileReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "snapshots.db")

	s, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	id, err := s.Save(ctx, Snapshot{Name: "kept", Grid: typedGrid(t)})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()
	snap, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() after reopen error = %v", err)
	}
	assertSameGrid(t, snap.Grid, typedGrid(t))
}

// TestPostgres needs a disposable database; set GRIDTABLE_TEST_DATABASE_URL
// to run it.
func TestPostgres(t *testing.T) {
	url := os.Getenv("GRIDTABLE_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("GRIDTABLE_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	p, err := OpenPostgres(ctx, url, PoolOptions{MaxConns: 2})
	if err != nil {
		t.Fatalf("OpenPostgres() error = %v", err)
	}
	if _, err := p.db.Exec(ctx, `TRUNCATE grid_snapshots`); err != nil {
		t.Fatal(err)
	}
	testStore(t, p)
}

func TestPgUUID(t *testing.T) {
	id := uuid.New()
	if got := fromPgUUID(toPgUUID(id)); got != id {
		t.Errorf("round trip = %s, want %s", got, id)
	}
}
