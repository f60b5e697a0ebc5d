package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/JonMunkholm/gridtable/internal/grid"
	"github.com/JonMunkholm/gridtable/internal/logging"
	"github.com/JonMunkholm/gridtable/internal/tabletext"
	"github.com/JonMunkholm/gridtable/internal/xlsx"
)

// ErrImportTooLarge is returned when an import body exceeds Import.MaxSize.
var ErrImportTooLarge = errors.New("import too large")

// Import reads r into a new workspace grid. At most Import.MaxConcurrent
// imports run at once; others wait up to Import.MaxWaitTime and then fail
// with ErrTooManyImports.
func (s *Service) Import(ctx context.Context, req ImportRequest, r io.Reader) (GridInfo, error) {
	if r == nil {
		return GridInfo{}, fmt.Errorf("%w: nil reader", grid.ErrInvalidArgument)
	}
	logger := logging.WithFields(ctx, clientAttrs(ctx)...).With("name", req.Name, "format", req.Format)

	parsers, err := s.schemas.Resolve(req.Schema)
	if err != nil {
		return GridInfo{}, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		logger.Warn("import rejected", "error", err)
		return GridInfo{}, err
	}
	defer s.limiter.Release()

	start := time.Now()
	body := &sizeLimitReader{r: r, limit: s.cfg.MaxSize}

	var g *grid.Grid
	switch req.Format {
	case FormatText, "":
		sep := req.Separator
		if sep == "" {
			sep = s.cfg.Separator
		}
		g, err = tabletext.Load(body, tabletext.Options{
			Separator: sep,
			Header:    req.Header,
			Parsers:   parsers,
			Sanitize:  s.cfg.Sanitize,
			Progress: func(p tabletext.Progress) {
				logger.Debug("import progress", "rows", p.Rows, "bytes", p.BytesRead)
			},
		})
	case FormatXLSX:
		g, err = xlsx.ImportFrom(body, xlsx.Options{
			Sheet:   req.Sheet,
			Header:  req.Header,
			Parsers: parsers,
		})
	default:
		return GridInfo{}, fmt.Errorf("%w: unknown import format %q", grid.ErrInvalidArgument, req.Format)
	}
	if body.exceeded {
		err = fmt.Errorf("%w: limit is %d bytes", ErrImportTooLarge, s.cfg.MaxSize)
	}
	if err == nil {
		err = s.checkImportExtent(g)
	}
	if err != nil {
		logger.Error("import failed", "error", err, "duration", time.Since(start))
		return GridInfo{}, err
	}

	w := s.add(req.Name, g, parsers, req.Header)
	info := w.info()
	logger.Info("grid imported",
		"grid_id", info.ID,
		"rows", info.Rows,
		"columns", info.Columns,
		"bytes", body.read,
		"duration", time.Since(start),
	)
	return info, nil
}

// sizeLimitReader fails once more than limit bytes are available. A
// non-positive limit disables the check.
type sizeLimitReader struct {
	r        io.Reader
	limit    int64
	read     int64
	exceeded bool
}

func (l *sizeLimitReader) Read(p []byte) (int, error) {
	if l.exceeded {
		return 0, ErrImportTooLarge
	}
	if l.limit <= 0 {
		n, err := l.r.Read(p)
		l.read += int64(n)
		return n, err
	}

	if l.read >= l.limit {
		// At the limit: one more byte means the body is too large.
		var extra [1]byte
		n, err := l.r.Read(extra[:])
		if n > 0 {
			l.exceeded = true
			return 0, ErrImportTooLarge
		}
		return 0, err
	}

	if rest := l.limit - l.read; int64(len(p)) > rest {
		p = p[:rest]
	}
	n, err := l.r.Read(p)
	l.read += int64(n)
	return n, err
}

// checkImportExtent rejects a loaded grid larger than the row or column limit.
func (s *Service) checkImportExtent(g *grid.Grid) error {
	if s.checkHeight(g.Height()) != nil {
		return fmt.Errorf("%w: %d rows exceeds the limit of %d", ErrImportTooLarge, g.Height(), s.cfg.MaxRows)
	}
	if s.checkWidth(g.Width()) != nil {
		return fmt.Errorf("%w: %d columns exceeds the limit of %d", ErrImportTooLarge, g.Width(), s.cfg.MaxColumns)
	}
	return nil
}
