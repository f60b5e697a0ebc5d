package core

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/JonMunkholm/gridtable/internal/config"
	"github.com/JonMunkholm/gridtable/internal/grid"
	"github.com/JonMunkholm/gridtable/internal/logging"
	"github.com/JonMunkholm/gridtable/internal/resource"
	"github.com/JonMunkholm/gridtable/internal/store"
	"github.com/JonMunkholm/gridtable/internal/tabletext"
	"github.com/google/uuid"
)

// ErrGridNotFound is returned for an id that is not in the workspace.
var ErrGridNotFound = errors.New("grid not found")

// DefaultGridName names grids created or imported without one.
const DefaultGridName = "untitled"

// Service owns the workspace of open grids and the snapshot store behind it.
type Service struct {
	store   store.Store
	limiter *ImportLimiter
	schemas *SchemaRegistry
	cfg     config.ImportConfig

	mu    sync.RWMutex
	grids map[uuid.UUID]*workspaceGrid
}

// workspaceGrid is one open grid. A grid is not safe for concurrent use, so
// every access goes through mu.
type workspaceGrid struct {
	mu         sync.Mutex
	id         uuid.UUID
	name       string
	grid       *grid.Grid
	schema     []tabletext.Parser
	header     *grid.Row // nil when the grid has no header row
	createdAt  time.Time
	updatedAt  time.Time
	snapshotID uuid.UUID
}

func (w *workspaceGrid) info() GridInfo {
	return GridInfo{
		ID:         w.id,
		Name:       w.name,
		Rows:       w.grid.Height(),
		Columns:    w.grid.Width(),
		Schema:     tabletext.SchemaString(w.schema),
		CreatedAt:  w.createdAt,
		UpdatedAt:  w.updatedAt,
		SnapshotID: w.snapshotID,
	}
}

// isHeader reports whether the row at index is the header row, wherever
// inserts have moved it.
func (w *workspaceGrid) isHeader(index int) bool {
	if w.header == nil {
		return false
	}
	r, err := w.grid.RowAt(index)
	return err == nil && r == w.header
}

// headerIndex returns the header row's current index, or -1.
func (w *workspaceGrid) headerIndex() int {
	if w.header == nil {
		return -1
	}
	i, err := w.header.Index()
	if err != nil {
		return -1
	}
	return i
}

func (w *workspaceGrid) touch() {
	w.updatedAt = time.Now().UTC()
}

// NewService creates a Service backed by st. When cfg names a schema file,
// its entries are registered as named schemas; the file is looked up in
// cfg.Import.ResourceDirs.
func NewService(st store.Store, cfg *config.Config) (*Service, error) {
	if st == nil {
		return nil, fmt.Errorf("%w: nil store", grid.ErrInvalidArgument)
	}
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", grid.ErrInvalidArgument)
	}

	s := &Service{
		store:   st,
		limiter: NewImportLimiter(cfg.Import.MaxConcurrent, cfg.Import.MaxWaitTime),
		schemas: NewSchemaRegistry(),
		cfg:     cfg.Import,
		grids:   make(map[uuid.UUID]*workspaceGrid),
	}

	if cfg.Import.SchemaFile != "" {
		loader := resource.DirLoader(cfg.Import.ResourceDirs...)
		props, err := resource.LoadPropertiesFrom(loader, cfg.Import.SchemaFile)
		if err != nil {
			return nil, fmt.Errorf("load schemas: %w", err)
		}
		if err := s.schemas.RegisterAll(props); err != nil {
			return nil, fmt.Errorf("load schemas: %w", err)
		}
	}
	return s, nil
}

// Schemas returns the named schema registry.
func (s *Service) Schemas() *SchemaRegistry {
	return s.schemas
}

// add puts a new grid in the workspace. With header set, the grid's current
// first row is its header from then on.
func (s *Service) add(name string, g *grid.Grid, schema []tabletext.Parser, header bool) *workspaceGrid {
	if strings.TrimSpace(name) == "" {
		name = DefaultGridName
	}
	var headerRow *grid.Row
	if header {
		headerRow, _ = g.RowAt(0)
	}
	now := time.Now().UTC()
	w := &workspaceGrid{
		id:        uuid.New(),
		name:      name,
		grid:      g,
		schema:    schema,
		header:    headerRow,
		createdAt: now,
		updatedAt: now,
	}

	s.mu.Lock()
	s.grids[w.id] = w
	s.mu.Unlock()
	return w
}

func (s *Service) lookup(id uuid.UUID) (*workspaceGrid, error) {
	s.mu.RLock()
	w, ok := s.grids[id]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGridNotFound, id)
	}
	return w, nil
}

// with runs fn while holding the grid's lock.
func (s *Service) with(id uuid.UUID, fn func(w *workspaceGrid) error) error {
	w, err := s.lookup(id)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return fn(w)
}

// checkHeight fails when a grid would end up with more than MaxRows rows.
// A non-positive limit disables the check.
func (s *Service) checkHeight(rows int) error {
	if s.cfg.MaxRows > 0 && rows > s.cfg.MaxRows {
		return fmt.Errorf("%w: %d rows exceeds the limit of %d", grid.ErrInvalidArgument, rows, s.cfg.MaxRows)
	}
	return nil
}

// checkWidth is checkHeight for MaxColumns.
func (s *Service) checkWidth(cols int) error {
	if s.cfg.MaxColumns > 0 && cols > s.cfg.MaxColumns {
		return fmt.Errorf("%w: %d columns exceeds the limit of %d", grid.ErrInvalidArgument, cols, s.cfg.MaxColumns)
	}
	return nil
}

// grownTo is the extent after inserting at index into an axis of length n.
// It saturates rather than overflow for huge indexes.
func grownTo(index, n int) int {
	m := max(index, n)
	if m == math.MaxInt {
		return m
	}
	return m + 1
}

// Create adds an empty rows x cols grid of text columns.
func (s *Service) Create(ctx context.Context, name string, rows, cols int) (GridInfo, error) {
	if rows < 0 || cols < 0 {
		return GridInfo{}, fmt.Errorf("%w: negative size %dx%d", grid.ErrInvalidArgument, rows, cols)
	}
	if err := s.checkHeight(rows); err != nil {
		return GridInfo{}, err
	}
	if err := s.checkWidth(cols); err != nil {
		return GridInfo{}, err
	}

	g := grid.New()
	if cols > 0 {
		if _, err := g.InsertColumn(cols - 1); err != nil {
			return GridInfo{}, err
		}
	}
	if rows > 0 {
		if _, err := g.InsertRow(rows - 1); err != nil {
			return GridInfo{}, err
		}
	}

	w := s.add(name, g, tabletext.Repeat(tabletext.String, cols), false)
	info := w.info()
	logging.WithFields(ctx, "grid_id", info.ID).Info("grid created",
		"rows", info.Rows, "columns", info.Columns)
	return info, nil
}

// Info summarizes one grid.
func (s *Service) Info(_ context.Context, id uuid.UUID) (GridInfo, error) {
	var info GridInfo
	err := s.with(id, func(w *workspaceGrid) error {
		info = w.info()
		return nil
	})
	return info, err
}

// List summarizes every open grid, oldest first.
func (s *Service) List(_ context.Context) []GridInfo {
	s.mu.RLock()
	open := make([]*workspaceGrid, 0, len(s.grids))
	for _, w := range s.grids {
		open = append(open, w)
	}
	s.mu.RUnlock()

	infos := make([]GridInfo, len(open))
	for i, w := range open {
		w.mu.Lock()
		infos[i] = w.info()
		w.mu.Unlock()
	}

	sort.Slice(infos, func(i, j int) bool {
		if !infos[i].CreatedAt.Equal(infos[j].CreatedAt) {
			return infos[i].CreatedAt.Before(infos[j].CreatedAt)
		}
		return infos[i].ID.String() < infos[j].ID.String()
	})
	return infos
}

// Delete closes a grid. Saved snapshots are not affected.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	_, ok := s.grids[id]
	delete(s.grids, id)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrGridNotFound, id)
	}
	logging.WithFields(ctx, "grid_id", id).Info("grid closed")
	return nil
}

// ImportLimiterStatus returns the current state of the import limiter.
func (s *Service) ImportLimiterStatus() ImportLimiterStatus {
	return s.limiter.Status()
}

// WaitForImports blocks until no import is running or ctx is done.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// Close releases the snapshot store.
func (s *Service) Close() error {
	return s.store.Close()
}
