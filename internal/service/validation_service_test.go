package service

import (
	"context"
	"strings"
	"testing"

	"github.com/makkenzo/niches-hunter-api/internal/domain/account"
	"github.com/makkenzo/niches-hunter-api/internal/handler/dto"
	"github.com/makkenzo/niches-hunter-api/internal/ierr"
	"github.com/makkenzo/niches-hunter-api/internal/storage/memstorage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestValidate(t *testing.T) {
	ctx := context.Background()
	accounts := memstorage.NewAccountRepository()
	subs := NewAccountService(accounts, nil, testAuthConfig(), "", "", zap.NewNop())
	gen := &fakeGenerator{text: "Verdict: promising"}
	svc := NewValidationService(memstorage.NewValidationRepository(), gen, subs, zap.NewNop())

	acc := accounts.AddAccount("idea@example.com", "password123")
	req := dto.CreateValidationRequest{Idea: "A CRM for independent pet sitters", TargetMarket: "US"}

	_, err := svc.Validate(ctx, acc.ID, req)
	assert.ErrorIs(t, err, ierr.ErrPaymentRequired)
	assert.Empty(t, gen.prompt, "the provider is not called without a subscription")

	require.NoError(t, accounts.UpsertCustomer(ctx, &account.Customer{UserID: acc.ID, SubscriptionStatus: account.SubscriptionActive}))
	resp, err := svc.Validate(ctx, acc.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Verdict: promising", resp.Result)
	assert.Equal(t, "gemini-test", resp.Model)
	assert.True(t, strings.Contains(gen.prompt, "pet sitters"))

	gen.err = assert.AnError
	_, err = svc.Validate(ctx, acc.ID, req)
	assert.ErrorIs(t, err, ierr.ErrUpstream)

	history, err := svc.List(ctx, acc.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}
