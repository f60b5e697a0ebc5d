package web

import (
	"net/http"
)

// handleSave persists a grid and returns the snapshot id.
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	snapID, err := s.service.Save(WithRequestMetadata(r.Context(), r), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"grid_id":     id,
		"snapshot_id": snapID,
	})
}

// handleListSnapshots returns every saved snapshot, newest first.
func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	snaps, err := s.service.Snapshots(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, snaps)
}

// handleOpenSnapshot loads a snapshot into a new workspace grid.
func (s *Server) handleOpenSnapshot(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	info, err := s.service.Open(WithRequestMetadata(r.Context(), r), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, info)
}

// handleDeleteSnapshot removes a saved snapshot.
func (s *Server) handleDeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.service.DeleteSnapshot(WithRequestMetadata(r.Context(), r), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
