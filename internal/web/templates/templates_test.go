package templates

import (
	"context"
	"strings"
	"testing"

	"github.com/JonMunkholm/gridtable/internal/core"
	"github.com/JonMunkholm/gridtable/internal/grid"
	"github.com/google/uuid"
)

func TestGridView(t *testing.T) {
	info := core.GridInfo{ID: uuid.New(), Name: "<people>", Rows: 2, Columns: 2, Schema: "string,integer"}
	rows := [][]grid.Value{
		{grid.Text("name"), grid.Text("n")},
		{grid.Text("a&b"), grid.Int(42)},
	}

	var b strings.Builder
	if err := GridView(info, rows).Render(context.Background(), &b); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	html := b.String()

	for _, want := range []string{
		"<title>&lt;people&gt; | gridtable</title>",
		"<h1>&lt;people&gt;</h1>",
		"a&amp;b",
		`<td class="num" title="int">42</td>`,
		"/api/grids/" + info.ID.String() + "/render",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("GridView() missing %q", want)
		}
	}
	if strings.Contains(html, "<people>") {
		t.Error("GridView() did not escape the grid name")
	}
}

func TestDashboard(t *testing.T) {
	var b strings.Builder
	if err := Dashboard(nil, nil).Render(context.Background(), &b); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(b.String(), "No open grids") || !strings.Contains(b.String(), "No saved snapshots") {
		t.Errorf("Dashboard(empty) = %q", b.String())
	}

	b.Reset()
	grids := []core.GridInfo{{ID: uuid.New(), Name: "rates", Rows: 3, Columns: 1}}
	if err := Dashboard(grids, nil).Render(context.Background(), &b); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(b.String(), ">rates</a>") || !strings.Contains(b.String(), "3 &times; 1") {
		t.Errorf("Dashboard() = %q, want a row for rates", b.String())
	}
}

func TestErrorAlert(t *testing.T) {
	var b strings.Builder
	if err := ErrorAlert("Grid not found", "Import it <again>", "GRID001").Render(context.Background(), &b); err != nil {
		t.Fatal(err)
	}
	want := `<div class="alert" role="alert"><strong>Grid not found</strong> <span>Import it &lt;again&gt;</span> <small class="muted">(GRID001)</small></div>`
	if b.String() != want {
		t.Errorf("ErrorAlert() = %q, want %q", b.String(), want)
	}
}

func TestErrorPage(t *testing.T) {
	var b strings.Builder
	if err := ErrorPage("Invalid request", "Check the <input>", "REQ001").Render(context.Background(), &b); err != nil {
		t.Fatal(err)
	}
	html := b.String()
	for _, want := range []string{
		"<!doctype html>",
		"<title>Error | gridtable</title>",
		`<div class="alert" role="alert"><strong>Invalid request</strong>`,
		"Check the &lt;input&gt;",
		"</main></body></html>",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("ErrorPage() missing %q", want)
		}
	}
}
