package metadataworker_test

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
	"github.com/Chronolens/chronolens/pkg/metadataworker"
)

type fakeMsg struct {
	data   []byte
	acked  *bool
	nakked *bool
	termed *bool
}

func newFakeMsg(mediaID string) (fakeMsg, *bool, *bool, *bool) {
	acked, nakked, termed := new(bool), new(bool), new(bool)
	return fakeMsg{data: []byte(mediaID), acked: acked, nakked: nakked, termed: termed}, acked, nakked, termed
}

func (m fakeMsg) Data() []byte { return m.data }
func (m fakeMsg) Ack() error   { *m.acked = true; return nil }
func (m fakeMsg) Nak() error   { *m.nakked = true; return nil }
func (m fakeMsg) Term() error  { *m.termed = true; return nil }

func plainJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.RGBA{R: 1, G: 2, B: 3, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestMetadataWorkerTermsOnUnparseableEXIF(t *testing.T) {
	cat := catalog.NewFake()
	blobs := blobstore.NewFake()
	ctx := context.Background()

	user, err := cat.AddUser(ctx, "alice", "hash")
	require.NoError(t, err)
	media, err := cat.AddMedia(ctx, catalog.Media{ID: uuid.New(), UserID: user.ID, Hash: "d"})
	require.NoError(t, err)
	require.NoError(t, blobs.Put(ctx, blobstore.OriginalKey(media.ID.String()), "image/jpeg", plainJPEG(t)))

	w := metadataworker.New(cat, blobs, zaptest.NewLogger(t))
	msg, acked, nakked, termed := newFakeMsg(media.ID.String())
	w.Handle(ctx, msg)

	assert.False(t, *acked)
	assert.False(t, *nakked)
	assert.True(t, *termed)
}

func TestMetadataWorkerTermsOnMissingOriginal(t *testing.T) {
	cat := catalog.NewFake()
	blobs := blobstore.NewFake()
	ctx := context.Background()

	user, err := cat.AddUser(ctx, "alice", "hash")
	require.NoError(t, err)
	media, err := cat.AddMedia(ctx, catalog.Media{ID: uuid.New(), UserID: user.ID, Hash: "d"})
	require.NoError(t, err)

	w := metadataworker.New(cat, blobs, zaptest.NewLogger(t))
	msg, acked, nakked, termed := newFakeMsg(media.ID.String())
	w.Handle(ctx, msg)

	assert.False(t, *acked)
	assert.False(t, *nakked)
	assert.True(t, *termed)
}
