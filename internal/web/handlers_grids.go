package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/JonMunkholm/gridtable/internal/core"
	"github.com/JonMunkholm/gridtable/internal/grid"
	"github.com/JonMunkholm/gridtable/internal/resource"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	// multipartOverhead is allowed on top of Import.MaxSize for form framing.
	multipartOverhead = 64 * 1024
)

// handleListGrids returns every open grid.
func (s *Server) handleListGrids(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.service.List(r.Context()))
}

// handleImport creates a grid from the request body.
//
// The body is either the raw data or a multipart form with a "file" part.
// Query parameters: schema (required), name, sep, header, format
// (text|xlsx) and sheet. The format defaults to xlsx for workbook uploads,
// judged by content type or file extension.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	header, err := boolQuery(r, "header", false)
	if err != nil {
		respondError(w, r, err)
		return
	}
	req := core.ImportRequest{
		Name:      q.Get("name"),
		Format:    core.Format(strings.ToLower(q.Get("format"))),
		Schema:    q.Get("schema"),
		Separator: q.Get("sep"),
		Header:    header,
		Sheet:     q.Get("sheet"),
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Import.MaxSize+multipartOverhead)

	var body io.Reader = r.Body
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		part, err := filePart(r)
		if err != nil {
			respondError(w, r, err)
			return
		}
		defer part.Close()

		body = part
		if req.Name == "" {
			req.Name = resource.FileName(part.FileName())
		}
		if req.Format == "" && strings.EqualFold(resource.Extension(part.FileName()), ".xlsx") {
			req.Format = core.FormatXLSX
		}
	case xlsxContentType:
		if req.Format == "" {
			req.Format = core.FormatXLSX
		}
	}

	ctx := WithRequestMetadata(r.Context(), r)
	info, err := s.service.Import(ctx, req, body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = fmt.Errorf("%w: %v", core.ErrImportTooLarge, err)
		}
		respondError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, info)
}

type multipartFile interface {
	io.ReadCloser
	FileName() string
}

// filePart streams the "file" part of a multipart body without buffering
// the whole form.
func filePart(r *http.Request) (multipartFile, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, fmt.Errorf("%w: invalid multipart body: %v", grid.ErrInvalidArgument, err)
	}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: no file provided", grid.ErrInvalidArgument)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: invalid multipart body: %v", grid.ErrInvalidArgument, err)
		}
		if part.FormName() == "file" {
			return part, nil
		}
		part.Close()
	}
}

type createRequest struct {
	Name    string `json:"name"`
	Rows    int    `json:"rows"`
	Columns int    `json:"columns"`
}

// handleCreate creates an empty grid of text columns.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, fmt.Errorf("%w: invalid request body", grid.ErrInvalidArgument))
		return
	}

	info, err := s.service.Create(WithRequestMetadata(r.Context(), r), req.Name, req.Rows, req.Columns)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, info)
}

// handleGridInfo returns one grid's summary.
func (s *Server) handleGridInfo(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	info, err := s.service.Info(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, info)
}

// handleDeleteGrid closes a grid.
func (s *Server) handleDeleteGrid(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.service.Delete(WithRequestMetadata(r.Context(), r), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRender writes a grid as text. Query parameters: sep, aligned and
// width (aligned only).
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	aligned, err := boolQuery(r, "aligned", false)
	if err != nil {
		respondError(w, r, err)
		return
	}
	width, _, err := optionalIntQuery(r, "width")
	if err != nil {
		respondError(w, r, err)
		return
	}

	// Render fully before writing so a failure can still be reported.
	var buf bytes.Buffer
	opts := core.RenderOptions{
		Separator: r.URL.Query().Get("sep"),
		Aligned:   aligned,
		MaxWidth:  width,
	}
	if err := s.service.Render(r.Context(), id, &buf, opts); err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	buf.WriteTo(w)
}

// handleExportXLSX downloads a grid as a workbook.
func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	info, err := s.service.Info(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := s.service.ExportXLSX(r.Context(), id, &buf, r.URL.Query().Get("sheet")); err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": info.Name + ".xlsx",
	}))
	buf.WriteTo(w)
}
