package api_test

import (
	"bytes"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Chronolens/chronolens/pkg/api"
	"github.com/Chronolens/chronolens/pkg/authcore"
	"github.com/Chronolens/chronolens/pkg/blobstore"
	"github.com/Chronolens/chronolens/pkg/bus"
	"github.com/Chronolens/chronolens/pkg/catalog"
)

func newHarness(t *testing.T) (api.Server, http.Handler, *authcore.Signer) {
	t.Helper()
	cat := catalog.NewFake()
	blobs := blobstore.NewFake()
	msgBus := bus.NewFake()
	signer := authcore.NewSigner("test-secret")

	srv := api.New(cat, blobs, msgBus, signer, zap.NewNop())
	return *srv, srv.Router(), signer
}

func registerAndLogin(t *testing.T, router http.Handler, username string) string {
	t.Helper()

	body, _ := json.Marshal(map[string]string{"username": username, "password": "hunter2"})
	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var tokens struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tokens))
	return tokens.AccessToken
}

func uploadPNG(t *testing.T, router http.Handler, access string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	sum := sha1.Sum(data)
	digest := base64.StdEncoding.EncodeToString(sum[:])

	req := httptest.NewRequest(http.MethodPost, "/image/upload", bytes.NewReader(data))
	req.Header.Set("Authorization", "Bearer "+access)
	req.Header.Set("Content-Type", "image/png")
	req.Header.Set("Timestamp", "1700000000000")
	req.Header.Set("Content-Digest", "sha-1=:"+digest+":")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestUploadThenSyncFull(t *testing.T) {
	_, router, _ := newHarness(t)
	access := registerAndLogin(t, router, "alice")

	rec := uploadPNG(t, router, access, bytes.Repeat([]byte{1, 2, 3}, 100))
	require.Equal(t, http.StatusOK, rec.Code)
	mediaID := rec.Body.String()
	assert.NotEmpty(t, mediaID)

	req := httptest.NewRequest(http.MethodGet, "/sync/full", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Since"))

	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, mediaID, rows[0]["id"])
}

func TestDuplicateUploadIsPreconditionFailed(t *testing.T) {
	_, router, _ := newHarness(t)
	access := registerAndLogin(t, router, "alice")
	data := bytes.Repeat([]byte{9}, 64)

	first := uploadPNG(t, router, access, data)
	require.Equal(t, http.StatusOK, first.Code)

	second := uploadPNG(t, router, access, data)
	assert.Equal(t, http.StatusPreconditionFailed, second.Code)
}

func TestMalformedUploadHeaderAppendsErrorLog(t *testing.T) {
	_, router, _ := newHarness(t)
	access := registerAndLogin(t, router, "alice")
	data := bytes.Repeat([]byte{9}, 64)
	sum := sha1.Sum(data)
	digest := base64.StdEncoding.EncodeToString(sum[:])

	req := httptest.NewRequest(http.MethodPost, "/image/upload", bytes.NewReader(data))
	req.Header.Set("Authorization", "Bearer "+access)
	req.Header.Set("Content-Type", "image/png")
	req.Header.Set("Timestamp", "not-a-number")
	req.Header.Set("Content-Digest", "sha-1=:"+digest+":")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/logs", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Logs []map[string]interface{} `json:"logs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Logs, 1)
	assert.Equal(t, string(catalog.LogError), body.Logs[0]["level"])
}

func TestUnsupportedContentTypeIsRejected(t *testing.T) {
	_, router, _ := newHarness(t)
	access := registerAndLogin(t, router, "alice")
	data := bytes.Repeat([]byte{9}, 64)
	sum := sha1.Sum(data)
	digest := base64.StdEncoding.EncodeToString(sum[:])

	req := httptest.NewRequest(http.MethodPost, "/image/upload", bytes.NewReader(data))
	req.Header.Set("Authorization", "Bearer "+access)
	req.Header.Set("Content-Type", "application/pdf")
	req.Header.Set("Timestamp", "1700000000000")
	req.Header.Set("Content-Digest", "sha-1=:"+digest+":")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestCrossUserAccessIsForbidden(t *testing.T) {
	_, router, _ := newHarness(t)
	aliceAccess := registerAndLogin(t, router, "alice")
	bobAccess := registerAndLogin(t, router, "bob")

	rec := uploadPNG(t, router, aliceAccess, bytes.Repeat([]byte{4}, 64))
	require.Equal(t, http.StatusOK, rec.Code)
	mediaID := rec.Body.String()

	req := httptest.NewRequest(http.MethodGet, "/preview/"+mediaID, nil)
	req.Header.Set("Authorization", "Bearer "+bobAccess)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMissingBearerIsUnauthorized(t *testing.T) {
	_, router, _ := newHarness(t)
	req := httptest.NewRequest(http.MethodGet, "/sync/full", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
