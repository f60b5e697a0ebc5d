package web

import (
	"net/http"

	"github.com/JonMunkholm/gridtable/internal/logging"
	"github.com/JonMunkholm/gridtable/internal/web/templates"
)

// handleDashboard renders the main dashboard page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// The page still renders when the store is down; snapshots are just
	// left out.
	snapshots, err := s.service.Snapshots(ctx)
	if err != nil {
		logging.FromContext(ctx).Warn("list snapshots failed", "error", err)
	}

	writeHTML(w, r, http.StatusOK, templates.Dashboard(s.service.List(ctx), snapshots))
}

// handleGridView renders one grid as an HTML table.
func (s *Server) handleGridView(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuidParam(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	info, err := s.service.Info(ctx, id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	rows, err := s.service.Values(ctx, id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeHTML(w, r, http.StatusOK, templates.GridView(info, rows))
}

// handleStatus reports import capacity and the named schemas.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"imports": s.service.ImportLimiterStatus(),
		"schemas": s.service.Schemas().Names(),
	})
}
