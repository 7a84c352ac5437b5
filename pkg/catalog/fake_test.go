package catalog_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chronolens/chronolens/pkg/catalog"
)

func TestDedup(t *testing.T) {
	ctx := context.Background()
	cat := catalog.NewFake()
	user, err := cat.AddUser(ctx, "alice", "hash")
	require.NoError(t, err)

	m := catalog.Media{UserID: user.ID, Hash: "digest-a", CreatedAt: 1700000000000}
	_, err = cat.AddMedia(ctx, m)
	require.NoError(t, err)

	_, err = cat.AddMedia(ctx, m)
	require.Error(t, err)
	assert.True(t, catalog.AlreadyExists.Has(err))

	exists, err := cat.QueryMedia(ctx, user.ID, "digest-a")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMonotonicSyncWatermark(t *testing.T) {
	ctx := context.Background()
	cat := catalog.NewFake()
	user, err := cat.AddUser(ctx, "alice", "hash")
	require.NoError(t, err)

	m1, err := cat.AddMedia(ctx, catalog.Media{UserID: user.ID, Hash: "h1", CreatedAt: 1})
	require.NoError(t, err)
	firstModified := m1.LastModifiedAt

	require.NoError(t, cat.UpdateMediaPreview(ctx, m1.ID, "prev/"+m1.ID.String()))
	updated, err := cat.GetMedia(ctx, user.ID, m1.ID)
	require.NoError(t, err)
	assert.Greater(t, updated.LastModifiedAt, firstModified)

	_, err = cat.AddMedia(ctx, catalog.Media{UserID: user.ID, Hash: "h2", CreatedAt: 2})
	require.NoError(t, err)

	res, _, err := cat.SyncPartial(ctx, user.ID, firstModified)
	require.NoError(t, err)

	var gotIDs []uuid.UUID
	for _, s := range res.Uploaded {
		gotIDs = append(gotIDs, s.ID)
	}
	assert.Contains(t, gotIDs, m1.ID, "preview update must surface past its own previous watermark")
}

func TestSyncRoundTrip(t *testing.T) {
	ctx := context.Background()
	cat := catalog.NewFake()
	user, err := cat.AddUser(ctx, "alice", "hash")
	require.NoError(t, err)

	m1, err := cat.AddMedia(ctx, catalog.Media{UserID: user.ID, Hash: "h1", CreatedAt: 1})
	require.NoError(t, err)

	_, since0, err := cat.SyncFull(ctx, user.ID)
	require.NoError(t, err)

	m2, err := cat.AddMedia(ctx, catalog.Media{UserID: user.ID, Hash: "h2", CreatedAt: 2})
	require.NoError(t, err)
	require.NoError(t, cat.DeleteMedia(ctx, user.ID, m1.ID))

	res, _, err := cat.SyncPartial(ctx, user.ID, since0)
	require.NoError(t, err)

	require.Len(t, res.Uploaded, 1)
	assert.Equal(t, m2.ID, res.Uploaded[0].ID)
	require.Len(t, res.Deleted, 1)
	assert.Equal(t, m1.ID, res.Deleted[0])
}

func TestAccessScoping(t *testing.T) {
	ctx := context.Background()
	cat := catalog.NewFake()
	alice, err := cat.AddUser(ctx, "alice", "hash")
	require.NoError(t, err)
	bob, err := cat.AddUser(ctx, "bob", "hash")
	require.NoError(t, err)

	m, err := cat.AddMedia(ctx, catalog.Media{UserID: alice.ID, Hash: "h1", CreatedAt: 1})
	require.NoError(t, err)

	_, err = cat.GetMedia(ctx, bob.ID, m.ID)
	assert.Error(t, err)
	assert.True(t, catalog.NotFound.Has(err))

	has, err := cat.UserHasMedia(ctx, bob.ID, m.ID)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestInsertFaceIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	cat := catalog.NewFake()
	user, err := cat.AddUser(ctx, "alice", "hash")
	require.NoError(t, err)

	m1, err := cat.AddMedia(ctx, catalog.Media{UserID: user.ID, Hash: "h1", CreatedAt: 1})
	require.NoError(t, err)
	m2, err := cat.AddMedia(ctx, catalog.Media{UserID: user.ID, Hash: "h2", CreatedAt: 2})
	require.NoError(t, err)

	clusterID := uuid.New()
	cat.AddCluster(catalog.Cluster{ID: clusterID, UserID: user.ID})
	cat.AddMediaFace(catalog.MediaFace{MediaID: m1.ID, ClusterID: &clusterID})

	// m2 has no detection — the whole call must fail, leaving no Face row.
	_, err = cat.InsertFace(ctx, user.ID, []uuid.UUID{m1.ID, m2.ID}, "Alice's friend")
	assert.Error(t, err)

	faces, _, err := cat.GetFaces(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, faces)
}

func TestPreviewPagination(t *testing.T) {
	ctx := context.Background()
	cat := catalog.NewFake()
	user, err := cat.AddUser(ctx, "alice", "hash")
	require.NoError(t, err)

	for i := int64(0); i < 5; i++ {
		_, err := cat.AddMedia(ctx, catalog.Media{UserID: user.ID, Hash: uuid.NewString(), CreatedAt: i})
		require.NoError(t, err)
	}

	page1, err := cat.GetPreviews(ctx, user.ID, 1, 2)
	require.NoError(t, err)
	assert.Len(t, page1, 2)

	page3, err := cat.GetPreviews(ctx, user.ID, 3, 2)
	require.NoError(t, err)
	assert.Len(t, page3, 1)
}
