package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/Chronolens/chronolens/pkg/authcore"
	"github.com/Chronolens/chronolens/pkg/blobstore"
	"github.com/Chronolens/chronolens/pkg/catalog"
)

type previewItem struct {
	ID         uuid.UUID `json:"id"`
	PreviewURL string    `json:"preview_url"`
}

// presignPreview turns a PreviewRow into the {id, preview_url} shape of
// spec §4.5: a null preview_id presigns to an empty string rather than
// erroring, since the preview worker may not have run yet.
func (s *Server) presignPreview(r *http.Request, row catalog.PreviewRow) (previewItem, error) {
	item := previewItem{ID: row.MediaID}
	if row.PreviewID == nil {
		return item, nil
	}
	url, err := s.blobs.PresignGet(r.Context(), *row.PreviewID, PresignTTL)
	if err != nil {
		return previewItem{}, err
	}
	item.PreviewURL = url
	return item, nil
}

func (s *Server) presignPreviews(r *http.Request, rows []catalog.PreviewRow) ([]previewItem, error) {
	items := make([]previewItem, 0, len(rows))
	for _, row := range rows {
		item, err := s.presignPreview(r, row)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *Server) handlePreviews(w http.ResponseWriter, r *http.Request) {
	userID := authcore.UserIDFromContext(r.Context())
	page, pageSize := pagination(r)

	rows, err := s.catalog.GetPreviews(r.Context(), userID, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	items, err := s.presignPreviews(r, rows)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	userID := authcore.UserIDFromContext(r.Context())
	mediaID, err := uuid.Parse(mux.Vars(r)["media_id"])
	if err != nil {
		writeError(w, errBadRequest)
		return
	}

	row, err := s.catalog.GetPreviewFromUser(r.Context(), userID, mediaID)
	if err != nil {
		writeError(w, err)
		return
	}
	if row.PreviewID == nil {
		writeJSON(w, http.StatusOK, "")
		return
	}
	url, err := s.blobs.PresignGet(r.Context(), *row.PreviewID, PresignTTL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, url)
}

type mediaResponse struct {
	catalog.Media
	MediaURL string `json:"media_url"`
}

func (s *Server) handleMedia(w http.ResponseWriter, r *http.Request) {
	userID := authcore.UserIDFromContext(r.Context())
	mediaID, err := uuid.Parse(mux.Vars(r)["media_id"])
	if err != nil {
		writeError(w, errBadRequest)
		return
	}

	media, err := s.catalog.GetMedia(r.Context(), userID, mediaID)
	if err != nil {
		writeError(w, err)
		return
	}

	url, err := s.blobs.PresignGet(r.Context(), blobstore.OriginalKey(media.ID.String()), PresignTTL)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, mediaResponse{Media: media, MediaURL: url})
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	userID := authcore.UserIDFromContext(r.Context())
	page, pageSize := pagination(r)

	logs, err := s.catalog.GetLogs(r.Context(), userID, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"logs": logs})
}

type faceItem struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	FeaturedPhotoID *uuid.UUID `json:"featured_photo_id,omitempty"`
	MediaID         uuid.UUID  `json:"media_id"`
	BBox            [4]float64 `json:"bbox"`
}

type clusterItem struct {
	ID      uuid.UUID  `json:"id"`
	MediaID uuid.UUID  `json:"media_id"`
	BBox    [4]float64 `json:"bbox"`
}

func (s *Server) handleFaces(w http.ResponseWriter, r *http.Request) {
	userID := authcore.UserIDFromContext(r.Context())

	faces, clusters, err := s.catalog.GetFaces(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	faceItems := make([]faceItem, 0, len(faces))
	for _, f := range faces {
		faceItems = append(faceItems, faceItem{
			ID:              f.Face.ID,
			Name:            f.Face.Name,
			FeaturedPhotoID: f.Face.FeaturedPhotoID,
			MediaID:         f.MediaID,
			BBox:            f.BBox,
		})
	}
	clusterItems := make([]clusterItem, 0, len(clusters))
	for _, c := range clusters {
		clusterItems = append(clusterItems, clusterItem{
			ID:      c.Cluster.ID,
			MediaID: c.MediaID,
			BBox:    c.BBox,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"faces": faceItems, "clusters": clusterItems})
}

func (s *Server) handleClusterPreviews(w http.ResponseWriter, r *http.Request) {
	userID := authcore.UserIDFromContext(r.Context())
	clusterID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, errBadRequest)
		return
	}
	page, pageSize := pagination(r)

	rows, err := s.catalog.GetClusterPreviews(r.Context(), userID, clusterID, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	items, err := s.presignPreviews(r, rows)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleFacePreviews(w http.ResponseWriter, r *http.Request) {
	userID := authcore.UserIDFromContext(r.Context())
	faceID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, errBadRequest)
		return
	}
	page, pageSize := pagination(r)

	rows, err := s.catalog.GetFacePreviews(r.Context(), userID, faceID, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	items, err := s.presignPreviews(r, rows)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

type createFaceRequest struct {
	IDs  []uuid.UUID `json:"ids"`
	Name string      `json:"name"`
}

func (s *Server) handleCreateFace(w http.ResponseWriter, r *http.Request) {
	userID := authcore.UserIDFromContext(r.Context())

	var req createFaceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if _, err := s.catalog.InsertFace(r.Context(), userID, req.IDs, req.Name); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, nil)
}
