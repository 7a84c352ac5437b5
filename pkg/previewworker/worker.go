// Package previewworker consumes the "previews" subject: it decodes an
// original (including HEIF), resizes it to a fixed preview height, and
// writes the derived artifact back to the Blob store and Catalog (spec
// §4.3).
package previewworker

import (
	"context"

	"go.uber.org/zap"

	"github.com/Chronolens/chronolens/pkg/blobstore"
	"github.com/Chronolens/chronolens/pkg/bus"
	"github.com/Chronolens/chronolens/pkg/catalog"
	"github.com/Chronolens/chronolens/pkg/imageproc"
)

// MaxConcurrent is the per-process concurrency bound of spec §4.3/§5.
const MaxConcurrent = 5

// ConsumerName is the durable consumer name spec §6 names for this
// subject.
const ConsumerName = "preview_consumer"

// Worker derives previews. It holds no mutable state of its own — every
// message is processed independently (spec §5).
type Worker struct {
	catalog catalog.Catalog
	blobs   blobstore.BlobStore
	log     *zap.Logger
}

// New builds a Worker over the given collaborators.
func New(cat catalog.Catalog, blobs blobstore.BlobStore, log *zap.Logger) *Worker {
	return &Worker{catalog: cat, blobs: blobs, log: log}
}

// Run subscribes the durable "previews" consumer and blocks until ctx is
// canceled.
func (w *Worker) Run(ctx context.Context, b bus.Bus) error {
	sub, err := b.Subscribe(ctx, bus.SubjectPreviews, ConsumerName, MaxConcurrent, w.Handle)
	if err != nil {
		return err
	}
	<-ctx.Done()
	return sub.Close()
}

// Handle processes one delivered message (spec §4.3's Algorithm). It is
// exported so tests can drive it directly without a live bus.
func (w *Worker) Handle(ctx context.Context, msg bus.Msg) {
	mediaID := string(msg.Data())
	log := w.log.With(zap.String("media_id", mediaID))

	original, err := w.blobs.Get(ctx, blobstore.OriginalKey(mediaID))
	if err != nil {
		if blobstore.NotFound.Has(err) {
			log.Warn("original missing, terminating message", zap.Error(err))
			ackResult(log, msg.Term())
			return
		}
		log.Error("transient error fetching original", zap.Error(err))
		ackResult(log, msg.Nak())
		return
	}
	defer original.Body.Close()

	data, err := readAll(original)
	if err != nil {
		log.Error("failed reading original body", zap.Error(err))
		ackResult(log, msg.Nak())
		return
	}

	img, err := imageproc.DecodeOriginal(data, original.ContentType)
	if err != nil {
		log.Warn("unparseable original, terminating message", zap.Error(err))
		ackResult(log, msg.Term())
		return
	}

	preview, err := imageproc.GeneratePreview(img)
	if err != nil {
		log.Error("failed generating preview", zap.Error(err))
		ackResult(log, msg.Nak())
		return
	}

	previewKey := blobstore.PreviewKey(mediaID)
	if err := w.blobs.Put(ctx, previewKey, preview.ContentType, preview.Data); err != nil {
		log.Error("failed writing preview object", zap.Error(err))
		ackResult(log, msg.Nak())
		return
	}

	id, err := parseMediaID(mediaID)
	if err != nil {
		log.Warn("unparseable media id, terminating message", zap.Error(err))
		ackResult(log, msg.Term())
		return
	}
	if err := w.catalog.UpdateMediaPreview(ctx, id, previewKey); err != nil {
		log.Error("failed updating media row", zap.Error(err))
		ackResult(log, msg.Nak())
		return
	}

	ackResult(log, msg.Ack())
}

func ackResult(log *zap.Logger, err error) {
	if err != nil {
		log.Error("failed to settle message", zap.Error(err))
	}
}
