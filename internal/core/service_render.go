package core

import (
	"context"
	"io"

	"github.com/JonMunkholm/gridtable/internal/tabletext"
	"github.com/JonMunkholm/gridtable/internal/xlsx"
	"github.com/google/uuid"
)

// Render writes a grid to out as delimited text, or as padded columns when
// opts.Aligned is set.
func (s *Service) Render(_ context.Context, id uuid.UUID, out io.Writer, opts RenderOptions) error {
	return s.with(id, func(w *workspaceGrid) error {
		if opts.Aligned {
			header := w.headerIndex()
			return tabletext.RenderAligned(out, w.grid, tabletext.AlignedOptions{
				Separator:  opts.Separator,
				MaxWidth:   opts.MaxWidth,
				HeaderRule: header >= 0,
				HeaderRow:  max(header, 0),
			})
		}
		sep := opts.Separator
		if sep == "" {
			sep = s.cfg.Separator
		}
		return tabletext.Render(out, w.grid, sep)
	})
}

// ExportXLSX writes a grid to out as a workbook with one sheet.
func (s *Service) ExportXLSX(_ context.Context, id uuid.UUID, out io.Writer, sheet string) error {
	return s.with(id, func(w *workspaceGrid) error {
		return xlsx.ExportTo(out, w.grid, sheet)
	})
}
