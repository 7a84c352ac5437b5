// Package catalog is the relational source of truth for Chronolens: users,
// media rows, previews, face records, clusters, and per-user logs.
package catalog

import "github.com/google/uuid"

// User is an account holder. Rows are never mutated after creation except
// through an administrative flow outside this package's scope.
type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
}

// Media is the central entity: one row per accepted original. JSON tags
// are the spec §6 wire contract — every field that crosses the HTTP
// surface (GET /media/:id) is snake_case on the wire.
type Media struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	PreviewID      *string   `json:"preview_id"`
	Hash           string    `json:"hash"`
	CreatedAt      int64     `json:"created_at"`
	LastModifiedAt int64     `json:"last_modified_at"`
	Deleted        bool      `json:"deleted"`

	FileSize *int64  `json:"file_size"`
	FileName *string `json:"file_name"`

	Longitude               *float64 `json:"longitude"`
	Latitude                *float64 `json:"latitude"`
	ImageWidth              *int64   `json:"image_width"`
	ImageLength             *int64   `json:"image_length"`
	Make                    *string  `json:"make"`
	Model                   *string  `json:"model"`
	FNumber                 *float64 `json:"fnumber"`
	ExposureTime            *string  `json:"exposure_time"`
	PhotographicSensitivity *int64   `json:"photographic_sensitivity"`
	Orientation             *int64   `json:"orientation"`

	ClipEmbedding []float32 `json:"-"`
}

// MediaFace is a single face detection within a Media row.
type MediaFace struct {
	ID        uuid.UUID
	MediaID   uuid.UUID
	Embedding []float32
	BBox      [4]float64
	ClusterID *uuid.UUID
}

// Cluster groups MediaFace detections judged to depict the same person.
type Cluster struct {
	ID     uuid.UUID
	UserID uuid.UUID
	FaceID *uuid.UUID
}

// Face is a user-named person, the union of one or more Clusters.
type Face struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	Name            string
	FeaturedPhotoID *uuid.UUID
}

// LogLevel is the severity of a Log row.
type LogLevel string

const (
	LogInfo  LogLevel = "Info"
	LogError LogLevel = "Error"
)

// Log is one entry in a user's ordered activity stream.
type Log struct {
	ID      uuid.UUID `json:"id"`
	UserID  uuid.UUID `json:"user_id"`
	Level   LogLevel  `json:"level"`
	Date    int64     `json:"date"`
	Message string    `json:"message"`
}

// MediaSummary is the row shape returned by full/partial sync.
type MediaSummary struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt int64     `json:"created_at"`
	Hash      string    `json:"hash"`
}

// SyncPartialResult is the response of a partial-sync query.
type SyncPartialResult struct {
	Uploaded []MediaSummary
	Deleted  []uuid.UUID
}

// PreviewRow is one entry of a previews/cluster/face listing, before
// presigning: the media id and its (possibly absent) preview object key.
type PreviewRow struct {
	MediaID   uuid.UUID
	PreviewID *string
}

// FaceRepresentative is a named face rendered with one representative
// detection (bbox + owning media id).
type FaceRepresentative struct {
	Face        Face
	MediaFaceID uuid.UUID
	MediaID     uuid.UUID
	BBox        [4]float64
}

// ClusterRepresentative is an unlabeled cluster rendered with one
// representative detection.
type ClusterRepresentative struct {
	Cluster     Cluster
	MediaFaceID uuid.UUID
	MediaID     uuid.UUID
	BBox        [4]float64
}

// MediaMetadataFields are the worker-writable EXIF columns on a Media row.
// A nil pointer means "leave the existing value untouched"; callers that
// want to null out a field must have this reflected by not setting it in
// the source data in the first place (EXIF extraction never clears a
// previously-set field).
type MediaMetadataFields struct {
	Longitude               *float64
	Latitude                *float64
	ImageWidth              *int64
	ImageLength             *int64
	Make                    *string
	Model                   *string
	FNumber                 *float64
	ExposureTime            *string
	PhotographicSensitivity *int64
	Orientation             *int64
}
