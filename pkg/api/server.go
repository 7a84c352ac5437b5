package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/Chronolens/chronolens/pkg/authcore"
	"github.com/Chronolens/chronolens/pkg/blobstore"
	"github.com/Chronolens/chronolens/pkg/bus"
	"github.com/Chronolens/chronolens/pkg/catalog"
)

// PresignTTL is the lifetime of every presigned GET URL minted by the
// sync/browse endpoints (spec §4.5, §5).
const PresignTTL = 24 * time.Hour

// SearchTimeout bounds the clip-process-search request/reply round trip.
const SearchTimeout = 10 * time.Second

// Server wires the Catalog, BlobStore, Bus and Signer collaborators
// behind the spec §6 HTTP surface.
type Server struct {
	catalog catalog.Catalog
	blobs   blobstore.BlobStore
	bus     bus.Bus
	signer  *authcore.Signer
	log     *zap.Logger
}

// New builds a Server. The caller owns the lifecycle of every
// collaborator (they are closed/shut down outside this package).
func New(cat catalog.Catalog, blobs blobstore.BlobStore, msgBus bus.Bus, signer *authcore.Signer, log *zap.Logger) *Server {
	return &Server{catalog: cat, blobs: blobs, bus: msgBus, signer: signer, log: log}
}

// Router builds the gorilla/mux router for the full spec §6 surface.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/register", s.handleRegister).Methods("POST")
	r.HandleFunc("/login", s.handleLogin).Methods("POST")
	r.HandleFunc("/refresh", s.handleRefresh).Methods("POST")

	auth := r.NewRoute().Subrouter()
	auth.Use(authcore.Middleware(s.signer, s.handleAuthReject))

	auth.HandleFunc("/image/upload", s.handleUpload).Methods("POST")
	auth.HandleFunc("/sync/full", s.handleSyncFull).Methods("GET")
	auth.HandleFunc("/sync/partial", s.handleSyncPartial).Methods("GET")
	auth.HandleFunc("/previews", s.handlePreviews).Methods("GET")
	auth.HandleFunc("/preview/{media_id}", s.handlePreview).Methods("GET")
	auth.HandleFunc("/media/{media_id}", s.handleMedia).Methods("GET")
	auth.HandleFunc("/logs", s.handleLogs).Methods("GET")
	auth.HandleFunc("/faces", s.handleFaces).Methods("GET")
	auth.HandleFunc("/cluster/{id}", s.handleClusterPreviews).Methods("GET")
	auth.HandleFunc("/face/{id}", s.handleFacePreviews).Methods("GET")
	auth.HandleFunc("/search", s.handleSearch).Methods("GET")
	auth.HandleFunc("/create_face", s.handleCreateFace).Methods("POST")

	return r
}

func (s *Server) handleAuthReject(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, err)
}
