package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Catalog is the full set of typed operations the rest of Chronolens uses
// to read and write the relational store. Every mutating operation bumps
// last_modified_at on the rows it touches, except AddLog which only
// appends to the Log table (spec §4.6).
type Catalog interface {
	GetUser(ctx context.Context, id uuid.UUID) (User, error)
	GetUserByUsername(ctx context.Context, username string) (User, error)
	AddUser(ctx context.Context, username, passwordHash string) (User, error)

	QueryMedia(ctx context.Context, userID uuid.UUID, hash string) (bool, error)
	AddMedia(ctx context.Context, m Media) (Media, error)
	UserHasMedia(ctx context.Context, userID, mediaID uuid.UUID) (bool, error)

	UpdateMediaPreview(ctx context.Context, mediaID uuid.UUID, previewID string) error
	SetMediaMetadata(ctx context.Context, mediaID uuid.UUID, fields MediaMetadataFields) error

	SyncFull(ctx context.Context, userID uuid.UUID) ([]MediaSummary, int64, error)
	SyncPartial(ctx context.Context, userID uuid.UUID, since int64) (SyncPartialResult, int64, error)

	GetPreviews(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]PreviewRow, error)
	GetPreviewFromUser(ctx context.Context, userID, mediaID uuid.UUID) (PreviewRow, error)
	GetMedia(ctx context.Context, userID, mediaID uuid.UUID) (Media, error)

	GetClusterPreviews(ctx context.Context, userID, clusterID uuid.UUID, page, pageSize int) ([]PreviewRow, error)
	GetFacePreviews(ctx context.Context, userID, faceID uuid.UUID, page, pageSize int) ([]PreviewRow, error)
	GetFaces(ctx context.Context, userID uuid.UUID) ([]FaceRepresentative, []ClusterRepresentative, error)

	AddLog(ctx context.Context, userID uuid.UUID, level LogLevel, date int64, message string) error
	GetLogs(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]Log, error)

	InsertFace(ctx context.Context, userID uuid.UUID, mediaIDs []uuid.UUID, name string) (Face, error)

	// DeleteMedia marks a Media row as a tombstone (deleted=true) and bumps
	// last_modified_at. It is not part of spec §6's HTTP surface but is
	// exercised by sync-round-trip tests (spec §8 property 3) and is the
	// compensating counterpart workers would call if Chronolens grew a
	// delete endpoint; kept here as the one Catalog write path that flips
	// the tombstone bit, since AddMedia/UpdateMediaPreview/SetMediaMetadata
	// never do.
	DeleteMedia(ctx context.Context, userID, mediaID uuid.UUID) error
}
