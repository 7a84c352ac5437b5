package authcore_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chronolens/chronolens/pkg/authcore"
)

func TestIssueAndValidate(t *testing.T) {
	signer := authcore.NewSigner("test-secret")
	userID := uuid.New()

	pair, err := signer.IssuePair(userID)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	claims, err := signer.ValidateAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
}

func TestRefreshBinding(t *testing.T) {
	signer := authcore.NewSigner("test-secret")
	userID := uuid.New()

	pairA, err := signer.IssuePair(userID)
	require.NoError(t, err)
	// iat has millisecond resolution and is the only claim that varies
	// between two pairs for one user, so let the clock move before
	// issuing pair B; otherwise both pairs are byte-identical.
	time.Sleep(2 * time.Millisecond)
	pairB, err := signer.IssuePair(userID)
	require.NoError(t, err)

	// A refresh token minted with access A cannot mint new tokens when
	// presented with access B != A (spec §8 property 6 / S5).
	_, err = signer.Refresh(pairA.AccessToken, pairB.RefreshToken)
	assert.Error(t, err)
	assert.True(t, authcore.Forbidden.Has(err))

	fresh, err := signer.Refresh(pairA.AccessToken, pairA.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, fresh.AccessToken)
}

func TestValidateRejectsMalformedToken(t *testing.T) {
	signer := authcore.NewSigner("test-secret")
	_, err := signer.ValidateAccess("not-a-jwt")
	assert.Error(t, err)
	assert.True(t, authcore.Unauthorized.Has(err))
}

func TestRefreshRejectsUndecodableTokens(t *testing.T) {
	signer := authcore.NewSigner("test-secret")
	_, err := signer.Refresh("garbage", "garbage")
	assert.Error(t, err)
	assert.True(t, authcore.BadRequest.Has(err))
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := authcore.HashPassword("hunter2")
	require.NoError(t, err)
	assert.NoError(t, authcore.VerifyPassword(hash, "hunter2"))

	err = authcore.VerifyPassword(hash, "wrong")
	assert.Error(t, err)
	assert.True(t, authcore.Forbidden.Has(err))
}
