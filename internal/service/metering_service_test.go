package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/makkenzo/niches-hunter-api/internal/domain/apikey"
	"github.com/makkenzo/niches-hunter-api/internal/ierr"
	"github.com/makkenzo/niches-hunter-api/internal/pricing"
	"github.com/makkenzo/niches-hunter-api/internal/ratelimit"
	"github.com/makkenzo/niches-hunter-api/internal/storage/memstorage"
	"github.com/makkenzo/niches-hunter-api/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type meteringFixture struct {
	keys    *memstorage.APIKeyRepository
	wallets *memstorage.WalletRepository
	svc     *MeteringService
}

func newMeteringFixture(limiter ratelimit.Limiter) *meteringFixture {
	f := &meteringFixture{
		keys:    memstorage.NewAPIKeyRepository(),
		wallets: memstorage.NewWalletRepository(),
	}
	if limiter == nil {
		limiter = ratelimit.NewMemoryLimiter(ratelimit.Policy{Window: time.Minute, Max: 30})
	}
	f.svc = NewMeteringService(f.keys, f.wallets, limiter, pricing.NewDefaultTable(), "https://nicheshunter.app/developer", zap.NewNop())
	return f
}

// addKey stores a key for a new user whose wallet holds balance cents.
func (f *meteringFixture) addKey(t *testing.T, balance int64, active bool) (string, *apikey.APIKey) {
	t.Helper()
	fullKey, prefix, hash, err := util.GenerateAPIKey()
	require.NoError(t, err)
	k := &apikey.APIKey{UserID: uuid.New(), KeyHash: hash, DisplayPrefix: prefix, IsActive: active}
	_, err = f.keys.Create(context.Background(), k)
	require.NoError(t, err)
	_, err = f.wallets.CreateIfAbsent(context.Background(), k.UserID, balance)
	require.NoError(t, err)
	return fullKey, k
}

func TestAuthenticate(t *testing.T) {
	f := newMeteringFixture(nil)
	ctx := context.Background()
	activeKey, active := f.addKey(t, 1000, true)
	inactiveKey, _ := f.addKey(t, 1000, false)

	got, err := f.svc.Authenticate(ctx, "Bearer "+activeKey)
	require.NoError(t, err)
	assert.Equal(t, active.ID, got.ID)

	for name, header := range map[string]string{
		"missing":      "",
		"no bearer":    activeKey,
		"malformed":    "Bearer not-a-key",
		"unknown":      "Bearer nh_" + "abcdefghijklmnopqrstuvwxyz012345",
		"inactive key": "Bearer " + inactiveKey,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Authenticate(ctx, header)
			assert.ErrorIs(t, err, ierr.ErrUnauthorized)
		})
	}
}

func TestCharge_DebitsCost(t *testing.T) {
	f := newMeteringFixture(nil)
	ctx := context.Background()
	_, key := f.addKey(t, 100, true)

	charge, err := f.svc.Charge(ctx, key, "/api/v1/niches/0042")
	require.NoError(t, err)
	assert.Equal(t, int64(50), charge.CostCents)
	assert.Equal(t, int64(50), charge.BalanceCents)

	usage, err := f.wallets.RecentUsage(ctx, key.UserID, 10)
	require.NoError(t, err)
	require.Len(t, usage, 1)
	assert.Equal(t, "/api/v1/niches/0042", usage[0].EndpointPath)
	assert.Equal(t, key.ID, usage[0].APIKeyID)
}

func TestCharge_InsufficientFundsLeavesBalance(t *testing.T) {
	f := newMeteringFixture(nil)
	ctx := context.Background()
	_, key := f.addKey(t, 40, true)

	_, err := f.svc.Charge(ctx, key, "/api/v1/niches/0042")
	require.ErrorIs(t, err, ierr.ErrInsufficientFunds)

	var insufficient *InsufficientFundsError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, int64(40), insufficient.BalanceCents)
	assert.Equal(t, int64(50), insufficient.CostCents)
	assert.Equal(t, "https://nicheshunter.app/developer", insufficient.TopUpURL)

	w, err := f.wallets.FindByUser(ctx, key.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(40), w.BalanceCents)
	assert.Zero(t, w.TotalSpentCents)
}

func TestCharge_MissingWallet(t *testing.T) {
	f := newMeteringFixture(nil)
	key := &apikey.APIKey{ID: uuid.New(), UserID: uuid.New(), IsActive: true}

	_, err := f.svc.Charge(context.Background(), key, "/api/v1/categories")
	assert.ErrorIs(t, err, ierr.ErrInsufficientFunds)
}

func TestCharge_ConcurrentCallsOnSingleCostBalance(t *testing.T) {
	f := newMeteringFixture(nil)
	ctx := context.Background()
	_, key := f.addKey(t, 50, true)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.svc.Charge(ctx, key, "/api/v1/niches/0042")
		}(i)
	}
	wg.Wait()

	var ok, insufficient int
	for _, err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ierr.ErrInsufficientFunds):
			insufficient++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, insufficient)

	w, err := f.wallets.FindByUser(ctx, key.UserID)
	require.NoError(t, err)
	assert.Zero(t, w.BalanceCents)
}

func TestCheckRate(t *testing.T) {
	f := newMeteringFixture(nil)
	_, key := f.addKey(t, 0, true)

	for i := 0; i < 30; i++ {
		require.True(t, f.svc.CheckRate(context.Background(), key).Allowed)
	}
	d := f.svc.CheckRate(context.Background(), key)
	assert.False(t, d.Allowed)
	assert.Equal(t, time.Minute, d.RetryAfter)
}

func TestCheckRate_FailsOpen(t *testing.T) {
	f := newMeteringFixture(failingLimiter{})
	_, key := f.addKey(t, 0, true)

	assert.True(t, f.svc.CheckRate(context.Background(), key).Allowed)
}
