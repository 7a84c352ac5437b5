package api

import (
	"net/http"
	"strconv"

	"github.com/Chronolens/chronolens/pkg/authcore"
)

func (s *Server) handleSyncFull(w http.ResponseWriter, r *http.Request) {
	userID := authcore.UserIDFromContext(r.Context())

	rows, since, err := s.catalog.SyncFull(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Since", strconv.FormatInt(since, 10))
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleSyncPartial(w http.ResponseWriter, r *http.Request) {
	userID := authcore.UserIDFromContext(r.Context())

	since, err := strconv.ParseInt(r.Header.Get("Since"), 10, 64)
	if err != nil {
		writeError(w, errBadRequest)
		return
	}

	result, newSince, err := s.catalog.SyncPartial(r.Context(), userID, since)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Since", strconv.FormatInt(newSince, 10))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"uploaded": result.Uploaded,
		"deleted":  result.Deleted,
	})
}
