package memstorage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/makkenzo/niches-hunter-api/internal/domain/account"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRepository_ResetPasswordKeepsTokenWhenUpdateFails(t *testing.T) {
	repo := NewAccountRepository()
	ctx := context.Background()
	now := time.Now()
	userID := uuid.New()

	require.NoError(t, repo.CreateResetToken(ctx, &account.PasswordResetToken{
		TokenHash: "h1",
		UserID:    userID,
		ExpiresAt: now.Add(time.Hour),
	}))

	_, err := repo.ResetPassword(ctx, "h1", "new-hash", now)
	require.ErrorIs(t, err, account.ErrAccountNotFound)
	assert.Nil(t, repo.resetTokens["h1"].UsedAt, "token stays usable when the password is not stored")

	repo.mu.Lock()
	repo.accounts[userID] = &account.Account{ID: userID, Email: "late@example.com", PasswordHash: "old-hash"}
	repo.mu.Unlock()

	got, err := repo.ResetPassword(ctx, "h1", "new-hash", now)
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	acc, err := repo.FindByID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", acc.PasswordHash)

	_, err = repo.ResetPassword(ctx, "h1", "third-hash", now)
	assert.ErrorIs(t, err, account.ErrResetTokenInvalid)
}
