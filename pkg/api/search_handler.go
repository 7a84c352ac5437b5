package api

import (
	"encoding/json"
	"net/http"

	"github.com/Chronolens/chronolens/pkg/authcore"
	"github.com/Chronolens/chronolens/pkg/bus"
)

type searchRequest struct {
	UserID   string `json:"user_id"`
	Query    string `json:"query"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

// handleSearch forwards {user_id, query, page, page_size} over the
// clip-process-search request/reply subject (spec §4.5, §6). The reply
// is forwarded verbatim — the embedding worker is an opaque collaborator
// that already returns {id, preview_url}[] (spec §9's "treat it as an
// external service").
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	userID := authcore.UserIDFromContext(r.Context())

	query := r.URL.Query().Get("query")
	if query == "" {
		writeError(w, errBadRequest)
		return
	}
	page, pageSize := pagination(r)

	payload, err := json.Marshal(searchRequest{
		UserID:   userID.String(),
		Query:    query,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		writeError(w, Error.Wrap(err))
		return
	}

	reply, err := s.bus.Request(r.Context(), bus.SubjectClipSearch, payload, SearchTimeout)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(reply)
}
