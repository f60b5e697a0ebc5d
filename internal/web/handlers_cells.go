package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/JonMunkholm/gridtable/internal/core"
	"github.com/JonMunkholm/gridtable/internal/grid"
	"github.com/google/uuid"
)

// cellResponse describes one cell. Value carries the tagged form
// {"k":"int","v":42}; Kind and Text are there for clients that only print.
type cellResponse struct {
	Row    int        `json:"row"`
	Column int        `json:"column"`
	Kind   string     `json:"kind"`
	Text   string     `json:"text"`
	Value  grid.Value `json:"value"`
}

func newCellResponse(row, col int, v grid.Value) cellResponse {
	return cellResponse{Row: row, Column: col, Kind: v.Kind().String(), Text: v.String(), Value: v}
}

// setCellRequest sets a cell either from text, converted by the column's
// parser, or from a tagged value stored as is.
type setCellRequest struct {
	Text  *string     `json:"text"`
	Value *grid.Value `json:"value"`
}

// handleGetCell returns one cell.
func (s *Server) handleGetCell(w http.ResponseWriter, r *http.Request) {
	id, row, col, err := cellPosition(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	v, err := s.service.GetCell(r.Context(), id, row, col)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newCellResponse(row, col, v))
}

// handleSetCell updates one cell.
func (s *Server) handleSetCell(w http.ResponseWriter, r *http.Request) {
	id, row, col, err := cellPosition(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req setCellRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, fmt.Errorf("%w: invalid request body: %v", grid.ErrInvalidArgument, err))
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	var v grid.Value
	switch {
	case req.Text != nil && req.Value != nil:
		err = fmt.Errorf("%w: set either text or value, not both", grid.ErrInvalidArgument)
	case req.Text != nil:
		v, err = s.service.SetCellText(ctx, id, row, col, *req.Text)
	case req.Value != nil:
		v = *req.Value
		err = s.service.SetCell(ctx, id, row, col, v)
	default:
		err = fmt.Errorf("%w: request has neither text nor value", grid.ErrInvalidArgument)
	}
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newCellResponse(row, col, v))
}

// handleClearCell empties one cell.
func (s *Server) handleClearCell(w http.ResponseWriter, r *http.Request) {
	id, row, col, err := cellPosition(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.service.ClearCell(r.Context(), id, row, col); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleInsertRow inserts a row at ?at=, or appends one without it.
func (s *Server) handleInsertRow(w http.ResponseWriter, r *http.Request) {
	s.insert(w, r, s.service.InsertRow, s.service.AppendRow)
}

// handleInsertColumn inserts a column at ?at=, or appends one without it.
func (s *Server) handleInsertColumn(w http.ResponseWriter, r *http.Request) {
	s.insert(w, r, s.service.InsertColumn, s.service.AppendColumn)
}

func (s *Server) insert(w http.ResponseWriter, r *http.Request,
	insertAt func(context.Context, uuid.UUID, int) (core.GridInfo, error),
	appendOne func(context.Context, uuid.UUID) (core.GridInfo, error),
) {
	id, err := uuidParam(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	at, ok, err := optionalIntQuery(r, "at")
	if err != nil {
		respondError(w, r, err)
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	var info core.GridInfo
	if ok {
		info, err = insertAt(ctx, id, at)
	} else {
		info, err = appendOne(ctx, id)
	}
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, info)
}
