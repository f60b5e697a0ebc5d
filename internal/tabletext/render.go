package tabletext

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/gridtable/internal/grid"
)

// Render writes g as delimited text: one line per row, each terminated by
// "\n", fields joined by sep. Empty cells render as empty fields. Fields
// are not quoted, so content containing sep will not load back.
func Render(w io.Writer, g *grid.Grid, sep string) error {
	if w == nil {
		return fmt.Errorf("%w: nil writer", grid.ErrInvalidArgument)
	}
	if g == nil {
		return fmt.Errorf("%w: nil grid", grid.ErrInvalidArgument)
	}

	bw := bufio.NewWriterSize(w, writeBufferSize)
	for _, row := range g.Rows() {
		for c, v := range row.Values() {
			if c != 0 {
				bw.WriteString(sep)
			}
			bw.WriteString(v.String())
		}
		if err := bw.WriteByte('\n'); err != nil {
			return grid.NewIOError("write", "", err)
		}
	}
	return grid.NewIOError("write", "", bw.Flush())
}

// RenderString renders g into a string.
func RenderString(g *grid.Grid, sep string) (string, error) {
	var b strings.Builder
	if err := Render(&b, g, sep); err != nil {
		return "", err
	}
	return b.String(), nil
}

// RenderFile renders g to path with sep (DefaultSeparator if empty). The
// text is written to a temporary file in the same directory and renamed
// over path only after a successful flush and close, so a failed render
// leaves any previous file at path intact.
func RenderFile(path string, g *grid.Grid, sep string) (err error) {
	if g == nil {
		return fmt.Errorf("%w: nil grid", grid.ErrInvalidArgument)
	}
	if sep == "" {
		sep = DefaultSeparator
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return grid.NewIOError("open", path, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err := tmp.Chmod(0o644); err != nil {
		return grid.NewIOError("open", path, err)
	}
	if err := Render(tmp, g, sep); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return grid.NewIOError("close", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return grid.NewIOError("write", path, err)
	}
	return nil
}
