package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JonMunkholm/gridtable/internal/core"
	"github.com/JonMunkholm/gridtable/internal/grid"
	"github.com/JonMunkholm/gridtable/internal/logging"
	"github.com/JonMunkholm/gridtable/internal/resource"
	"github.com/JonMunkholm/gridtable/internal/store"
	"github.com/JonMunkholm/gridtable/internal/web/templates"
	"github.com/JonMunkholm/gridtable/internal/xlsx"
	"github.com/a-h/templ"
)

// errRateLimited is reported when a client exceeds its request budget.
var errRateLimited = errors.New("rate limit exceeded")

// ErrorResponse is the JSON body of a failed API call. Error duplicates
// Message for clients that only read "error".
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor picks the HTTP status for an error. The first matching class
// wins, so wrapped causes (an i/o error caused by an oversized body) are
// listed before the classes that wrap them.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrImportTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrTooManyImports), errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, core.ErrGridNotFound),
		errors.Is(err, store.ErrNotFound),
		errors.Is(err, resource.ErrNotFound),
		errors.Is(err, xlsx.ErrNoSheet):
		return http.StatusNotFound
	case errors.Is(err, grid.ErrInvalidArgument),
		errors.Is(err, grid.ErrIndexOutOfRange),
		errors.Is(err, grid.ErrMalformedRecord),
		errors.Is(err, grid.ErrValueConversion),
		errors.Is(err, grid.ErrEmptyCell):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError is the single exit for failed requests. The technical error
// is logged with the request id (warn below 500, error at or above); the
// client gets the core.MapError message as an HTMX alert fragment, a JSON
// ErrorResponse or a full error page.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := core.MapError(err)

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logging.FromContext(r.Context()).Log(r.Context(), level, "request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"code", msg.Code,
		"error", err,
	)

	switch {
	case isHTMX(r):
		writeHTML(w, r, status, templates.ErrorAlert(msg.Message, msg.Action, msg.Code))
	case wantsJSON(r):
		writeJSON(w, r, status, ErrorResponse{
			Error:   msg.Message,
			Message: msg.Message,
			Action:  msg.Action,
			Code:    msg.Code,
		})
	default:
		writeHTML(w, r, status, templates.ErrorPage(msg.Message, msg.Action, msg.Code))
	}
}

func writeHTML(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render error", "error", err)
	}
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON reports whether the client asked for, sent, or is calling an
// endpoint that speaks JSON.
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.Contains(r.Header.Get("Content-Type"), "application/json") ||
		strings.HasPrefix(r.URL.Path, "/api/")
}
