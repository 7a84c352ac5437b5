package api

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Chronolens/chronolens/pkg/authcore"
	"github.com/Chronolens/chronolens/pkg/blobstore"
	"github.com/Chronolens/chronolens/pkg/bus"
	"github.com/Chronolens/chronolens/pkg/catalog"
)

// uploadPartSize is the streaming buffer size of spec §4.2 step 6 — also
// S3's own minimum part size (blobstore.MinPartSize).
const uploadPartSize = blobstore.MinPartSize

var supportedContentTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/heic": true,
	"image/heif": true,
}

// parseContentDigest accepts "sha-1=:<base64>:", tolerating surrounding
// whitespace (original_source's parser does the same).
func parseContentDigest(header string) (string, error) {
	header = strings.TrimSpace(header)
	const prefix = "sha-1=:"
	if !strings.HasPrefix(header, prefix) || !strings.HasSuffix(header, ":") {
		return "", errBadRequest
	}
	digest := strings.TrimSuffix(strings.TrimPrefix(header, prefix), ":")
	digest = strings.TrimSpace(digest)
	if digest == "" {
		return "", errBadRequest
	}
	if _, err := base64.StdEncoding.DecodeString(digest); err != nil {
		return "", errBadRequest
	}
	return digest, nil
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := authcore.UserIDFromContext(ctx)

	contentType := r.Header.Get("Content-Type")
	timestampHeader := r.Header.Get("Timestamp")
	digestHeader := r.Header.Get("Content-Digest")

	timestamp, err := strconv.ParseInt(strings.TrimSpace(timestampHeader), 10, 64)
	if err != nil {
		s.logUploadFailure(ctx, userID, errBadRequest)
		writeError(w, errBadRequest)
		return
	}
	digest, err := parseContentDigest(digestHeader)
	if err != nil {
		s.logUploadFailure(ctx, userID, err)
		writeError(w, err)
		return
	}

	exists, err := s.catalog.QueryMedia(ctx, userID, digest)
	if err != nil {
		s.logUploadFailure(ctx, userID, err)
		writeError(w, err)
		return
	}
	if exists {
		s.logUploadFailure(ctx, userID, errPreconditionFailed)
		writeError(w, errPreconditionFailed)
		return
	}

	if !supportedContentTypes[contentType] {
		s.logUploadFailure(ctx, userID, errUnsupportedMediaType)
		writeError(w, errUnsupportedMediaType)
		return
	}

	mediaID := uuid.New()
	key := blobstore.OriginalKey(mediaID.String())

	upload, err := s.blobs.InitiateMultipartUpload(ctx, key, contentType)
	if err != nil {
		s.logUploadFailure(ctx, userID, err)
		writeError(w, err)
		return
	}

	fileSize, err := s.streamToParts(ctx, upload, r.Body)
	if err != nil {
		_ = upload.Abort(ctx)
		s.logUploadFailure(ctx, userID, err)
		writeError(w, err)
		return
	}

	if err := upload.Complete(ctx); err != nil {
		_ = upload.Abort(ctx)
		s.logUploadFailure(ctx, userID, err)
		writeError(w, err)
		return
	}

	media := catalog.Media{
		ID:        mediaID,
		UserID:    userID,
		Hash:      digest,
		CreatedAt: timestamp,
		FileSize:  &fileSize,
	}
	if _, err := s.catalog.AddMedia(ctx, media); err != nil {
		// Compensating delete (spec §4.2 step 8, §3 invariant): the
		// object must not outlive a failed Media insert.
		if delErr := s.blobs.Delete(ctx, key); delErr != nil {
			s.log.Error("orphaned upload object after failed insert",
				zapErr(delErr), zapStr("key", key))
		}
		s.logUploadFailure(ctx, userID, err)
		writeError(w, err)
		return
	}

	payload := []byte(mediaID.String())
	for _, subject := range []string{bus.SubjectPreviews, bus.SubjectMetadata, bus.SubjectImageProcess} {
		if err := s.bus.Publish(ctx, subject, payload); err != nil {
			s.log.Error("failed to publish derivation work", zapErr(err), zapStr("subject", subject))
			s.logUploadFailure(ctx, userID, err)
			writeError(w, err)
			return
		}
	}

	if err := s.catalog.AddLog(ctx, userID, catalog.LogInfo, timestamp, "uploaded successfully"); err != nil {
		s.log.Error("failed to append upload log", zapErr(err))
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(mediaID.String()))
}

// streamToParts implements spec §4.2 step 6: accumulate a 5 MiB buffer,
// upload a part on each fill, flush a possibly-smaller trailing part. It
// never buffers the whole body (spec §4.2's streaming policy); peak
// memory is one part buffer plus small constants.
func (s *Server) streamToParts(ctx context.Context, upload blobstore.Upload, body io.Reader) (int64, error) {
	buf := make([]byte, uploadPartSize)
	var partNumber int32 = 1
	var total int64

	for {
		n, readErr := io.ReadFull(body, buf)
		if n > 0 {
			etag, err := upload.UploadPart(ctx, partNumber, buf[:n])
			if err != nil {
				return total, blobstore.Transient.Wrap(err)
			}
			_ = etag
			partNumber++
			total += int64(n)
		}
		if readErr == io.EOF {
			return total, nil
		}
		if readErr == io.ErrUnexpectedEOF {
			// The final, possibly-smaller trailing part; n bytes above
			// have already been uploaded.
			return total, nil
		}
		if readErr != nil {
			return total, Error.Wrap(readErr)
		}
	}
}

// logUploadFailure appends the Error log row spec §7 requires on every
// user-facing upload failure branch. Failure to append the log itself is
// only logged locally — it must never mask the original error returned
// to the client.
func (s *Server) logUploadFailure(ctx context.Context, userID uuid.UUID, cause error) {
	if err := s.catalog.AddLog(ctx, userID, catalog.LogError, time.Now().UnixMilli(), cause.Error()); err != nil {
		s.log.Error("failed to append upload failure log", zapErr(err))
	}
}
