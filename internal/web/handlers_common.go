package web

// This file contains shared utilities and helper functions used across handlers.

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/gridtable/internal/grid"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// uuidParam parses a uuid path parameter.
func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid %s %q", grid.ErrInvalidArgument, name, raw)
	}
	return id, nil
}

// intParam parses an integer path parameter.
func intParam(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	i, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s %q", grid.ErrInvalidArgument, name, raw)
	}
	return i, nil
}

// optionalIntQuery parses an integer query parameter. ok is false when the
// parameter is absent.
func optionalIntQuery(r *http.Request, name string) (i int, ok bool, err error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false, nil
	}
	i, err = strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("%w: invalid %s %q", grid.ErrInvalidArgument, name, raw)
	}
	return i, true, nil
}

// boolQuery parses a boolean query parameter with a default value.
func boolQuery(r *http.Request, name string, defaultVal bool) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: invalid %s %q", grid.ErrInvalidArgument, name, raw)
	}
	return b, nil
}

// cellPosition parses the {id}/{row}/{col} path of a cell route.
func cellPosition(r *http.Request) (id uuid.UUID, row, col int, err error) {
	if id, err = uuidParam(r, "id"); err != nil {
		return
	}
	if row, err = intParam(r, "row"); err != nil {
		return
	}
	col, err = intParam(r, "col")
	return
}
