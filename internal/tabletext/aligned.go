package tabletext

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/gridtable/internal/grid"
	"github.com/mattn/go-runewidth"
)

// AlignedOptions configures RenderAligned.
type AlignedOptions struct {
	// Separator goes between padded columns (default " | ").
	Separator string

	// MaxWidth truncates cells wider than this many terminal columns,
	// marking the cut with "…". Zero means no limit.
	MaxWidth int

	// HeaderRule draws a dashed line after the header row.
	HeaderRule bool

	// HeaderRow is the index of the header row (default 0).
	HeaderRow int
}

// RenderAligned writes g for humans: columns padded to a common display
// width, numbers right-aligned and everything else left-aligned. Widths are
// measured in terminal cells, so wide (CJK) and combining characters line
// up. Trailing padding is trimmed from each line.
func RenderAligned(w io.Writer, g *grid.Grid, opts AlignedOptions) error {
	if w == nil {
		return fmt.Errorf("%w: nil writer", grid.ErrInvalidArgument)
	}
	if g == nil {
		return fmt.Errorf("%w: nil grid", grid.ErrInvalidArgument)
	}
	sep := opts.Separator
	if sep == "" {
		sep = " | "
	}

	rows := make([][]grid.Value, 0, g.Height())
	text := make([][]string, 0, g.Height())
	widths := make([]int, g.Width())
	for _, row := range g.Rows() {
		values := row.Values()
		cells := make([]string, len(values))
		for c, v := range values {
			s := v.String()
			if opts.MaxWidth > 0 && runewidth.StringWidth(s) > opts.MaxWidth {
				s = runewidth.Truncate(s, opts.MaxWidth, "…")
			}
			cells[c] = s
			widths[c] = max(widths[c], runewidth.StringWidth(s))
		}
		rows = append(rows, values)
		text = append(text, cells)
	}

	bw := bufio.NewWriterSize(w, writeBufferSize)
	for r, cells := range text {
		var line strings.Builder
		for c, s := range cells {
			if c != 0 {
				line.WriteString(sep)
			}
			if isNumeric(rows[r][c].Kind()) {
				line.WriteString(runewidth.FillLeft(s, widths[c]))
			} else {
				line.WriteString(runewidth.FillRight(s, widths[c]))
			}
		}
		bw.WriteString(strings.TrimRight(line.String(), " "))
		bw.WriteByte('\n')

		if opts.HeaderRule && r == opts.HeaderRow {
			writeRule(bw, widths, sep)
		}
	}
	return grid.NewIOError("write", "", bw.Flush())
}

func writeRule(bw *bufio.Writer, widths []int, sep string) {
	cross := strings.Map(func(r rune) rune {
		if r == ' ' {
			return '-'
		}
		return '+'
	}, sep)
	for c, w := range widths {
		if c != 0 {
			bw.WriteString(cross)
		}
		bw.WriteString(strings.Repeat("-", w))
	}
	bw.WriteByte('\n')
}

func isNumeric(k grid.Kind) bool {
	switch k {
	case grid.KindInt, grid.KindLong, grid.KindFloat, grid.KindDouble:
		return true
	}
	return false
}
