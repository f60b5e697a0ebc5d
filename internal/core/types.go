package core

import (
	"time"

	"github.com/google/uuid"
)

// Format identifies the encoding of an import body.
type Format string

const (
	FormatText Format = "text"
	FormatXLSX Format = "xlsx"
)

// ImportRequest describes how to turn an uploaded body into a grid.
type ImportRequest struct {
	Name      string // display name (default: "untitled")
	Format    Format // default: FormatText
	Schema    string // named schema or comma-separated parser names
	Separator string // text only (default: Import.Separator)
	Header    bool   // store the first line as text
	Sheet     string // xlsx only (default: first sheet)
}

// GridInfo summarizes a grid held in the workspace.
type GridInfo struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Rows       int       `json:"rows"`
	Columns    int       `json:"columns"`
	Schema     string    `json:"schema,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	SnapshotID uuid.UUID `json:"snapshot_id,omitzero"`
}

// RenderOptions selects how Render writes a grid.
type RenderOptions struct {
	Separator string // delimited output (default: Import.Separator)
	Aligned   bool   // padded, human-readable columns instead
	MaxWidth  int    // aligned only: truncate wider cells
}

// ImportLimiterStatus is a snapshot of the import limiter's state.
type ImportLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}
