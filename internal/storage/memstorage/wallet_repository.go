package memstorage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/makkenzo/niches-hunter-api/internal/domain/wallet"
)

// WalletRepository serializes every mutation behind one mutex so Debit keeps
// the same check-and-charge atomicity as the database function.
type WalletRepository struct {
	mu      sync.Mutex
	wallets map[uuid.UUID]*wallet.Wallet
	usage   []*wallet.UsageRecord
	topups  map[string]struct{}
}

func NewWalletRepository() *WalletRepository {
	return &WalletRepository{
		wallets: make(map[uuid.UUID]*wallet.Wallet),
		topups:  make(map[string]struct{}),
	}
}

var _ wallet.Repository = (*WalletRepository)(nil)

func (r *WalletRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*wallet.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.wallets[userID]
	if !ok {
		return nil, wallet.ErrWalletNotFound
	}
	wCopy := *w
	return &wCopy, nil
}

func (r *WalletRepository) CreateIfAbsent(ctx context.Context, userID uuid.UUID, seedCents int64) (*wallet.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.wallets[userID]
	if !ok {
		now := time.Now()
		w = &wallet.Wallet{UserID: userID, BalanceCents: seedCents, CreatedAt: now, UpdatedAt: now}
		r.wallets[userID] = w
	}
	wCopy := *w
	return &wCopy, nil
}

func (r *WalletRepository) Debit(ctx context.Context, params wallet.DebitParams) (*wallet.DebitResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.wallets[params.UserID]
	if !ok {
		return &wallet.DebitResult{}, wallet.ErrInsufficientFunds
	}
	if w.BalanceCents < params.CostCents {
		return &wallet.DebitResult{BalanceCents: w.BalanceCents}, wallet.ErrInsufficientFunds
	}

	now := time.Now()
	w.BalanceCents -= params.CostCents
	w.TotalSpentCents += params.CostCents
	w.UpdatedAt = now
	r.usage = append(r.usage, &wallet.UsageRecord{
		ID:           uuid.New(),
		UserID:       params.UserID,
		APIKeyID:     params.APIKeyID,
		EndpointPath: params.EndpointPath,
		CostCents:    params.CostCents,
		CreatedAt:    now,
	})
	return &wallet.DebitResult{BalanceCents: w.BalanceCents, ChargedCents: params.CostCents}, nil
}

func (r *WalletRepository) Credit(ctx context.Context, params wallet.CreditParams) (*wallet.Wallet, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.wallets[params.UserID]
	if !ok {
		now := time.Now()
		w = &wallet.Wallet{UserID: params.UserID, CreatedAt: now, UpdatedAt: now}
		r.wallets[params.UserID] = w
	}
	if _, done := r.topups[params.Reference]; done {
		wCopy := *w
		return &wCopy, false, nil
	}
	r.topups[params.Reference] = struct{}{}
	w.BalanceCents += params.AmountCents
	w.UpdatedAt = time.Now()
	wCopy := *w
	return &wCopy, true, nil
}

func (r *WalletRepository) RecentUsage(ctx context.Context, userID uuid.UUID, limit int) ([]*wallet.UsageRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*wallet.UsageRecord, 0)
	for i := len(r.usage) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		if u := r.usage[i]; u.UserID == userID {
			uCopy := *u
			out = append(out, &uCopy)
		}
	}
	return out, nil
}

func (r *WalletRepository) CountUsageSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, u := range r.usage {
		if u.UserID == userID && !u.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}
