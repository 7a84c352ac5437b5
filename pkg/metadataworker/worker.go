// Package metadataworker consumes the "metadata" subject: it parses
// EXIF from the original and writes the extracted fields back to the
// Catalog row (spec §4.4).
package metadataworker

import (
	"context"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Chronolens/chronolens/pkg/blobstore"
	"github.com/Chronolens/chronolens/pkg/bus"
	"github.com/Chronolens/chronolens/pkg/catalog"
	"github.com/Chronolens/chronolens/pkg/imageproc"
)

// MaxConcurrent is the per-process concurrency bound of spec §5.
const MaxConcurrent = 5

// ConsumerName is the durable consumer name spec §6 names for this
// subject.
const ConsumerName = "metadata_consumer"

// Worker extracts EXIF metadata. Like previewworker.Worker it holds no
// per-message state.
type Worker struct {
	catalog catalog.Catalog
	blobs   blobstore.BlobStore
	log     *zap.Logger
}

// New builds a Worker over the given collaborators.
func New(cat catalog.Catalog, blobs blobstore.BlobStore, log *zap.Logger) *Worker {
	return &Worker{catalog: cat, blobs: blobs, log: log}
}

// Run subscribes the durable "metadata" consumer and blocks until ctx is
// canceled.
func (w *Worker) Run(ctx context.Context, b bus.Bus) error {
	sub, err := b.Subscribe(ctx, bus.SubjectMetadata, ConsumerName, MaxConcurrent, w.Handle)
	if err != nil {
		return err
	}
	<-ctx.Done()
	return sub.Close()
}

// Handle processes one delivered message (spec §4.4's Algorithm).
func (w *Worker) Handle(ctx context.Context, msg bus.Msg) {
	mediaID := string(msg.Data())
	log := w.log.With(zap.String("media_id", mediaID))

	original, err := w.blobs.Get(ctx, blobstore.OriginalKey(mediaID))
	if err != nil {
		if blobstore.NotFound.Has(err) {
			log.Warn("original missing, terminating message", zap.Error(err))
			settle(log, msg.Term())
			return
		}
		log.Error("transient error fetching original", zap.Error(err))
		settle(log, msg.Nak())
		return
	}
	defer original.Body.Close()

	data, err := io.ReadAll(original.Body)
	if err != nil {
		log.Error("failed reading original body", zap.Error(err))
		settle(log, msg.Nak())
		return
	}

	fields, err := imageproc.ExtractMetadata(data)
	if err != nil {
		log.Warn("unparseable EXIF, terminating message", zap.Error(err))
		settle(log, msg.Term())
		return
	}

	id, err := uuid.Parse(mediaID)
	if err != nil {
		log.Warn("unparseable media id, terminating message", zap.Error(err))
		settle(log, msg.Term())
		return
	}
	if err := w.catalog.SetMediaMetadata(ctx, id, fields); err != nil {
		log.Error("failed updating media row", zap.Error(err))
		settle(log, msg.Nak())
		return
	}

	settle(log, msg.Ack())
}

func settle(log *zap.Logger, err error) {
	if err != nil {
		log.Error("failed to settle message", zap.Error(err))
	}
}
