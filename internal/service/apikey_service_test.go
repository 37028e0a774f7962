package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/makkenzo/niches-hunter-api/internal/ierr"
	"github.com/makkenzo/niches-hunter-api/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAPIKeyService(f *walletFixture) *APIKeyService {
	return NewAPIKeyService(f.keys, f.svc, 5, zap.NewNop())
}

func TestCreateAPIKey(t *testing.T) {
	f := newWalletFixture()
	svc := newAPIKeyService(f)
	ctx := context.Background()
	userID := uuid.New()

	resp, err := svc.CreateAPIKey(ctx, userID, "ci")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.Key, "nh_"))
	assert.Equal(t, util.DisplayPrefix(resp.Key), resp.DisplayPrefix)

	stored, err := f.keys.FindByHash(ctx, util.HashAPIKey(resp.Key))
	require.NoError(t, err)
	assert.Equal(t, userID, stored.UserID)
	assert.True(t, stored.IsActive)
	assert.NotEqual(t, resp.Key, stored.KeyHash)

	w, err := f.wallets.FindByUser(ctx, userID)
	require.NoError(t, err, "key generation creates the wallet")
	assert.Equal(t, int64(100), w.BalanceCents)
}

func TestCreateAPIKey_LimitReached(t *testing.T) {
	f := newWalletFixture()
	svc := newAPIKeyService(f)
	ctx := context.Background()
	userID := uuid.New()

	for i := 0; i < 5; i++ {
		_, err := svc.CreateAPIKey(ctx, userID, "")
		require.NoError(t, err)
	}
	_, err := svc.CreateAPIKey(ctx, userID, "")
	assert.ErrorIs(t, err, ierr.ErrConflict)
	assert.ErrorIs(t, err, ierr.ErrAPIKeyLimitReached)

	keys, err := svc.ListAPIKeys(ctx, userID)
	require.NoError(t, err)
	require.Len(t, keys, 5)

	require.NoError(t, svc.RevokeAPIKey(ctx, userID, keys[0].ID))
	_, err = svc.CreateAPIKey(ctx, userID, "")
	assert.NoError(t, err, "revoked keys do not count against the limit")
}

func TestRevokeAPIKey(t *testing.T) {
	f := newWalletFixture()
	svc := newAPIKeyService(f)
	ctx := context.Background()
	owner := uuid.New()

	created, err := svc.CreateAPIKey(ctx, owner, "")
	require.NoError(t, err)

	t.Run("foreign key is not found", func(t *testing.T) {
		err := svc.RevokeAPIKey(ctx, uuid.New(), created.ID)
		assert.ErrorIs(t, err, ierr.ErrNotFound)
	})

	t.Run("unknown key is not found", func(t *testing.T) {
		err := svc.RevokeAPIKey(ctx, owner, uuid.New())
		assert.ErrorIs(t, err, ierr.ErrNotFound)
	})

	t.Run("revoke twice", func(t *testing.T) {
		require.NoError(t, svc.RevokeAPIKey(ctx, owner, created.ID))
		require.NoError(t, svc.RevokeAPIKey(ctx, owner, created.ID))

		k, err := f.keys.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.False(t, k.IsActive)
	})
}
