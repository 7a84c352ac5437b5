// Package blobstore is the content-addressed object store collaborator:
// originals at key <media_id>, previews at key prev/<media_id> (spec §6).
package blobstore

import (
	"context"
	"io"
	"time"
)

// Object is a GET result: the body plus the content type the store has
// recorded for the key.
type Object struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// Upload is a handle to an in-progress multipart upload (spec §4.2 steps
// 5-7). Part is 1-indexed and parts must be completed in order.
type Upload interface {
	// UploadPart stages one part and returns its ETag. Every part except
	// the last must be at least 5 MiB (S3's own minimum). UploadPart does
	// not check the size itself; callers following the Ingress algorithm
	// in spec §4.2 naturally satisfy it.
	UploadPart(ctx context.Context, partNumber int32, data []byte) (etag string, err error)
	// Complete finalizes the object from the parts uploaded so far.
	Complete(ctx context.Context) error
	// Abort discards the upload and any parts staged so far. Safe to call
	// after Complete has already succeeded (no-op in that case for
	// implementations that track completion) or failed.
	Abort(ctx context.Context) error
}

// BlobStore is the Blob store collaborator (spec §2, §4.2, §4.3, §4.4).
type BlobStore interface {
	InitiateMultipartUpload(ctx context.Context, key, contentType string) (Upload, error)
	Get(ctx context.Context, key string) (Object, error)
	Put(ctx context.Context, key, contentType string, data []byte) error
	Delete(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// OriginalKey is the object key an original is stored under.
func OriginalKey(mediaID string) string { return mediaID }

// PreviewKey is the object key a derived preview is stored under.
func PreviewKey(mediaID string) string { return "prev/" + mediaID }

// MinPartSize is the minimum size of every part except the last, per
// spec §4.2 step 6.
const MinPartSize = 5 * 1024 * 1024
