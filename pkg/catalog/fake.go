package catalog

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Fake is an in-memory Catalog used by tests across the module so they
// don't need a live Postgres instance. It implements the same invariants
// as Postgres (unique (user_id, hash), monotonic last_modified_at,
// tombstone-aware queries) with a mutex instead of transactions.
type Fake struct {
	mu sync.Mutex

	users      map[uuid.UUID]User
	usersByKey map[string]uuid.UUID
	media      map[uuid.UUID]Media
	mediaFaces map[uuid.UUID]MediaFace
	clusters   map[uuid.UUID]Cluster
	faces      map[uuid.UUID]Face
	logs       []Log
	clock      int64
}

// NewFake returns an empty in-memory Catalog.
func NewFake() *Fake {
	return &Fake{
		users:      make(map[uuid.UUID]User),
		usersByKey: make(map[string]uuid.UUID),
		media:      make(map[uuid.UUID]Media),
		mediaFaces: make(map[uuid.UUID]MediaFace),
		clusters:   make(map[uuid.UUID]Cluster),
		faces:      make(map[uuid.UUID]Face),
	}
}

// tick returns a strictly increasing millisecond-ish clock value, so that
// tests exercising monotonic last_modified_at ordering don't depend on
// wall-clock resolution.
func (f *Fake) tick() int64 {
	f.clock++
	return f.clock
}

// AddMediaFace is a test helper — there is no spec'd HTTP path that
// creates face detections (that's the out-of-scope embedding/face
// worker), but sync/cluster/face listing tests need rows to query
// against.
func (f *Fake) AddMediaFace(mf MediaFace) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if mf.ID == uuid.Nil {
		mf.ID = uuid.New()
	}
	f.mediaFaces[mf.ID] = mf
}

// AddCluster is a test helper, see AddMediaFace.
func (f *Fake) AddCluster(c Cluster) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	f.clusters[c.ID] = c
}

func (f *Fake) GetUser(_ context.Context, id uuid.UUID) (User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return User{}, NotFound.New("user %s", id)
	}
	return u, nil
}

func (f *Fake) GetUserByUsername(_ context.Context, username string) (User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.usersByKey[username]
	if !ok {
		return User{}, NotFound.New("user %q", username)
	}
	return f.users[id], nil
}

func (f *Fake) AddUser(_ context.Context, username, passwordHash string) (User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.usersByKey[username]; exists {
		return User{}, AlreadyExists.New("username %q", username)
	}
	u := User{ID: uuid.New(), Username: username, PasswordHash: passwordHash}
	f.users[u.ID] = u
	f.usersByKey[username] = u.ID
	return u, nil
}

func (f *Fake) QueryMedia(_ context.Context, userID uuid.UUID, hash string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.media {
		if m.UserID == userID && m.Hash == hash {
			return true, nil
		}
	}
	return false, nil
}

func (f *Fake) AddMedia(_ context.Context, m Media) (Media, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.media {
		if existing.UserID == m.UserID && existing.Hash == m.Hash {
			return Media{}, AlreadyExists.New("media for user %s hash %s", m.UserID, m.Hash)
		}
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.LastModifiedAt = f.tick()
	m.Deleted = false
	f.media[m.ID] = m
	return m, nil
}

func (f *Fake) UserHasMedia(_ context.Context, userID, mediaID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.media[mediaID]
	return ok && m.UserID == userID && !m.Deleted, nil
}

func (f *Fake) UpdateMediaPreview(_ context.Context, mediaID uuid.UUID, previewID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.media[mediaID]
	if !ok {
		return NotFound.New("media %s", mediaID)
	}
	m.PreviewID = &previewID
	m.LastModifiedAt = f.tick()
	f.media[mediaID] = m
	return nil
}

func (f *Fake) SetMediaMetadata(_ context.Context, mediaID uuid.UUID, fields MediaMetadataFields) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.media[mediaID]
	if !ok {
		return NotFound.New("media %s", mediaID)
	}
	if fields.Longitude != nil {
		m.Longitude = fields.Longitude
	}
	if fields.Latitude != nil {
		m.Latitude = fields.Latitude
	}
	if fields.ImageWidth != nil {
		m.ImageWidth = fields.ImageWidth
	}
	if fields.ImageLength != nil {
		m.ImageLength = fields.ImageLength
	}
	if fields.Make != nil {
		m.Make = fields.Make
	}
	if fields.Model != nil {
		m.Model = fields.Model
	}
	if fields.FNumber != nil {
		m.FNumber = fields.FNumber
	}
	if fields.ExposureTime != nil {
		m.ExposureTime = fields.ExposureTime
	}
	if fields.PhotographicSensitivity != nil {
		m.PhotographicSensitivity = fields.PhotographicSensitivity
	}
	if fields.Orientation != nil {
		m.Orientation = fields.Orientation
	}
	m.LastModifiedAt = f.tick()
	f.media[mediaID] = m
	return nil
}

func (f *Fake) SyncFull(_ context.Context, userID uuid.UUID) ([]MediaSummary, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []MediaSummary
	for _, m := range f.media {
		if m.UserID == userID && !m.Deleted {
			out = append(out, MediaSummary{ID: m.ID, CreatedAt: m.CreatedAt, Hash: m.Hash})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt < out[j].CreatedAt })
	return out, f.clock, nil
}

func (f *Fake) SyncPartial(_ context.Context, userID uuid.UUID, since int64) (SyncPartialResult, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var res SyncPartialResult
	for _, m := range f.media {
		if m.UserID != userID || m.LastModifiedAt <= since {
			continue
		}
		if m.Deleted {
			res.Deleted = append(res.Deleted, m.ID)
		} else {
			res.Uploaded = append(res.Uploaded, MediaSummary{ID: m.ID, CreatedAt: m.CreatedAt, Hash: m.Hash})
		}
	}
	return res, f.clock, nil
}

func (f *Fake) mediaForUser(userID uuid.UUID) []Media {
	var out []Media
	for _, m := range f.media {
		if m.UserID == userID && !m.Deleted {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out
}

func paginate[T any](items []T, page, pageSize int) []T {
	start := (page - 1) * pageSize
	if start < 0 || start >= len(items) {
		return nil
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func (f *Fake) GetPreviews(_ context.Context, userID uuid.UUID, page, pageSize int) ([]PreviewRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ms := paginate(f.mediaForUser(userID), page, pageSize)
	out := make([]PreviewRow, 0, len(ms))
	for _, m := range ms {
		out = append(out, PreviewRow{MediaID: m.ID, PreviewID: m.PreviewID})
	}
	return out, nil
}

func (f *Fake) GetPreviewFromUser(_ context.Context, userID, mediaID uuid.UUID) (PreviewRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.media[mediaID]
	if !ok || m.UserID != userID || m.Deleted {
		return PreviewRow{}, NotFound.New("media %s", mediaID)
	}
	return PreviewRow{MediaID: m.ID, PreviewID: m.PreviewID}, nil
}

func (f *Fake) GetMedia(_ context.Context, userID, mediaID uuid.UUID) (Media, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.media[mediaID]
	if !ok || m.UserID != userID || m.Deleted {
		return Media{}, NotFound.New("media %s", mediaID)
	}
	return m, nil
}

func (f *Fake) clusterDetections(clusterID uuid.UUID) []MediaFace {
	var out []MediaFace
	for _, mf := range f.mediaFaces {
		if mf.ClusterID != nil && *mf.ClusterID == clusterID {
			out = append(out, mf)
		}
	}
	return out
}

func (f *Fake) GetClusterPreviews(_ context.Context, userID, clusterID uuid.UUID, page, pageSize int) ([]PreviewRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[uuid.UUID]bool{}
	var ms []Media
	for _, mf := range f.clusterDetections(clusterID) {
		m, ok := f.media[mf.MediaID]
		if !ok || m.UserID != userID || m.Deleted || seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		ms = append(ms, m)
	}
	sort.Slice(ms, func(i, j int) bool { return ms[i].CreatedAt > ms[j].CreatedAt })
	page_ := paginate(ms, page, pageSize)
	out := make([]PreviewRow, 0, len(page_))
	for _, m := range page_ {
		out = append(out, PreviewRow{MediaID: m.ID, PreviewID: m.PreviewID})
	}
	return out, nil
}

func (f *Fake) GetFacePreviews(_ context.Context, userID, faceID uuid.UUID, page, pageSize int) ([]PreviewRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var clusterIDs []uuid.UUID
	for _, c := range f.clusters {
		if c.FaceID != nil && *c.FaceID == faceID {
			clusterIDs = append(clusterIDs, c.ID)
		}
	}
	seen := map[uuid.UUID]bool{}
	var ms []Media
	for _, cid := range clusterIDs {
		for _, mf := range f.clusterDetections(cid) {
			m, ok := f.media[mf.MediaID]
			if !ok || m.UserID != userID || m.Deleted || seen[m.ID] {
				continue
			}
			seen[m.ID] = true
			ms = append(ms, m)
		}
	}
	sort.Slice(ms, func(i, j int) bool { return ms[i].CreatedAt > ms[j].CreatedAt })
	page_ := paginate(ms, page, pageSize)
	out := make([]PreviewRow, 0, len(page_))
	for _, m := range page_ {
		out = append(out, PreviewRow{MediaID: m.ID, PreviewID: m.PreviewID})
	}
	return out, nil
}

func (f *Fake) GetFaces(_ context.Context, userID uuid.UUID) ([]FaceRepresentative, []ClusterRepresentative, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var faceDetections []MediaFace
	for _, mf := range f.mediaFaces {
		faceDetections = append(faceDetections, mf)
	}
	sort.Slice(faceDetections, func(i, j int) bool { return faceDetections[i].ID.String() > faceDetections[j].ID.String() })

	seenFace := map[uuid.UUID]bool{}
	var faces []FaceRepresentative
	for _, face := range f.faces {
		if face.UserID != userID {
			continue
		}
		for _, mf := range faceDetections {
			if mf.ClusterID == nil {
				continue
			}
			c, ok := f.clusters[*mf.ClusterID]
			if !ok || c.FaceID == nil || *c.FaceID != face.ID {
				continue
			}
			if seenFace[face.ID] {
				continue
			}
			seenFace[face.ID] = true
			faces = append(faces, FaceRepresentative{
				Face: face, MediaFaceID: mf.ID, MediaID: mf.MediaID, BBox: mf.BBox,
			})
		}
	}

	seenCluster := map[uuid.UUID]bool{}
	var clusters []ClusterRepresentative
	for _, mf := range faceDetections {
		if mf.ClusterID == nil {
			continue
		}
		c, ok := f.clusters[*mf.ClusterID]
		if !ok || c.UserID != userID || c.FaceID != nil || seenCluster[c.ID] {
			continue
		}
		seenCluster[c.ID] = true
		clusters = append(clusters, ClusterRepresentative{
			Cluster: c, MediaFaceID: mf.ID, MediaID: mf.MediaID, BBox: mf.BBox,
		})
	}
	return faces, clusters, nil
}

func (f *Fake) AddLog(_ context.Context, userID uuid.UUID, level LogLevel, date int64, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, Log{ID: uuid.New(), UserID: userID, Level: level, Date: date, Message: message})
	return nil
}

func (f *Fake) GetLogs(_ context.Context, userID uuid.UUID, page, pageSize int) ([]Log, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ls []Log
	for _, l := range f.logs {
		if l.UserID == userID {
			ls = append(ls, l)
		}
	}
	sort.Slice(ls, func(i, j int) bool { return ls[i].Date > ls[j].Date })
	return paginate(ls, page, pageSize), nil
}

func (f *Fake) InsertFace(_ context.Context, userID uuid.UUID, mediaIDs []uuid.UUID, name string) (Face, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	// Validate every media id has a detection before mutating anything,
	// mirroring the all-or-nothing transaction in the Postgres
	// implementation.
	clusterByMedia := make(map[uuid.UUID]uuid.UUID, len(mediaIDs))
	for _, mediaID := range mediaIDs {
		var latest *MediaFace
		for _, mf := range f.mediaFaces {
			if mf.MediaID != mediaID {
				continue
			}
			if latest == nil || mf.ID.String() > latest.ID.String() {
				mfCopy := mf
				latest = &mfCopy
			}
		}
		if latest == nil || latest.ClusterID == nil {
			return Face{}, NotFound.New("no face detection for media %s", mediaID)
		}
		clusterByMedia[mediaID] = *latest.ClusterID
	}

	face := Face{ID: uuid.New(), UserID: userID, Name: name}
	f.faces[face.ID] = face
	for _, clusterID := range clusterByMedia {
		c := f.clusters[clusterID]
		c.FaceID = &face.ID
		f.clusters[clusterID] = c
	}
	return face, nil
}

func (f *Fake) DeleteMedia(_ context.Context, userID, mediaID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.media[mediaID]
	if !ok || m.UserID != userID {
		return NotFound.New("media %s", mediaID)
	}
	m.Deleted = true
	m.LastModifiedAt = f.tick()
	f.media[mediaID] = m
	return nil
}

var _ Catalog = (*Fake)(nil)
