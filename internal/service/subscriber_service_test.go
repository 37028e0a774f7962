package service

import (
	"context"
	"testing"

	"github.com/makkenzo/niches-hunter-api/internal/storage/memstorage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSubscribe_Idempotent(t *testing.T) {
	repo := memstorage.NewSubscriberRepository()
	mailer := &fakeEnqueuer{}
	svc := NewSubscriberService(repo, mailer, "https://nicheshunter.app", zap.NewNop())
	ctx := context.Background()

	resp, err := svc.Subscribe(ctx, "Reader@Example.com", "")
	require.NoError(t, err)
	assert.True(t, resp.Created)

	resp, err = svc.Subscribe(ctx, "reader@example.com", "footer")
	require.NoError(t, err)
	assert.True(t, resp.Subscribed)
	assert.False(t, resp.Created)

	assert.Equal(t, 1, repo.Count())
	assert.Len(t, mailer.messages(), 1, "welcome mail only on first signup")
}
