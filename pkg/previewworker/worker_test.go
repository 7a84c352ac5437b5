package previewworker_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Chronolens/chronolens/pkg/blobstore"
	"github.com/Chronolens/chronolens/pkg/catalog"
	"github.com/Chronolens/chronolens/pkg/previewworker"
)

func encodeJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 400, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 400; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

// fakeMsg is a bus.Msg test double that records which of Ack/Nak/Term
// was called — exactly one must be, per spec §4.3.
type fakeMsg struct {
	data    []byte
	acked   *bool
	nakked  *bool
	termed  *bool
}

func newFakeMsg(mediaID string) (fakeMsg, *bool, *bool, *bool) {
	acked, nakked, termed := new(bool), new(bool), new(bool)
	return fakeMsg{data: []byte(mediaID), acked: acked, nakked: nakked, termed: termed}, acked, nakked, termed
}

func (m fakeMsg) Data() []byte { return m.data }
func (m fakeMsg) Ack() error   { *m.acked = true; return nil }
func (m fakeMsg) Nak() error   { *m.nakked = true; return nil }
func (m fakeMsg) Term() error  { *m.termed = true; return nil }

func TestPreviewWorkerDerivesAndUpdatesCatalog(t *testing.T) {
	cat := catalog.NewFake()
	blobs := blobstore.NewFake()
	ctx := context.Background()

	user, err := cat.AddUser(ctx, "alice", "hash")
	require.NoError(t, err)
	media, err := cat.AddMedia(ctx, catalog.Media{ID: uuid.New(), UserID: user.ID, Hash: "d"})
	require.NoError(t, err)

	require.NoError(t, blobs.Put(ctx, blobstore.OriginalKey(media.ID.String()), "image/jpeg", encodeJPEG(t)))

	w := previewworker.New(cat, blobs, zaptest.NewLogger(t))
	msg, acked, nakked, termed := newFakeMsg(media.ID.String())
	w.Handle(ctx, msg)

	require.True(t, *acked)
	assert.False(t, *nakked)
	assert.False(t, *termed)
	assert.True(t, blobs.Has(blobstore.PreviewKey(media.ID.String())))

	updated, err := cat.GetMedia(ctx, user.ID, media.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.PreviewID)
	assert.Equal(t, blobstore.PreviewKey(media.ID.String()), *updated.PreviewID)
}

func TestPreviewWorkerRedeliveryIsIdempotent(t *testing.T) {
	cat := catalog.NewFake()
	blobs := blobstore.NewFake()
	ctx := context.Background()

	user, err := cat.AddUser(ctx, "alice", "hash")
	require.NoError(t, err)
	media, err := cat.AddMedia(ctx, catalog.Media{ID: uuid.New(), UserID: user.ID, Hash: "d"})
	require.NoError(t, err)
	require.NoError(t, blobs.Put(ctx, blobstore.OriginalKey(media.ID.String()), "image/jpeg", encodeJPEG(t)))

	w := previewworker.New(cat, blobs, zaptest.NewLogger(t))

	msg1, acked1, _, _ := newFakeMsg(media.ID.String())
	w.Handle(ctx, msg1)
	require.True(t, *acked1)
	first, err := cat.GetMedia(ctx, user.ID, media.ID)
	require.NoError(t, err)

	msg2, acked2, _, _ := newFakeMsg(media.ID.String())
	w.Handle(ctx, msg2)
	require.True(t, *acked2)
	second, err := cat.GetMedia(ctx, user.ID, media.ID)
	require.NoError(t, err)

	assert.Equal(t, *first.PreviewID, *second.PreviewID)
}

func TestPreviewWorkerTermsOnMissingOriginal(t *testing.T) {
	cat := catalog.NewFake()
	blobs := blobstore.NewFake()
	ctx := context.Background()

	user, err := cat.AddUser(ctx, "alice", "hash")
	require.NoError(t, err)
	media, err := cat.AddMedia(ctx, catalog.Media{ID: uuid.New(), UserID: user.ID, Hash: "d"})
	require.NoError(t, err)

	w := previewworker.New(cat, blobs, zaptest.NewLogger(t))
	msg, acked, nakked, termed := newFakeMsg(media.ID.String())
	w.Handle(ctx, msg)

	assert.False(t, *acked)
	assert.False(t, *nakked)
	assert.True(t, *termed)
}
