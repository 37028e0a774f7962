package wallet

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrWalletNotFound    = errors.New("wallet not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

type Repository interface {
	FindByUser(ctx context.Context, userID uuid.UUID) (*Wallet, error)
	// CreateIfAbsent inserts a wallet seeded with seedCents unless one exists and
	// returns the stored wallet either way.
	CreateIfAbsent(ctx context.Context, userID uuid.UUID, seedCents int64) (*Wallet, error)
	// Debit re-checks the balance, charges it and appends a usage record as one
	// indivisible operation. It returns ErrInsufficientFunds without changing
	// anything when the balance does not cover the cost.
	Debit(ctx context.Context, params DebitParams) (*DebitResult, error)
	// Credit adds funds once per reference; applied reports whether this call did it.
	Credit(ctx context.Context, params CreditParams) (w *Wallet, applied bool, err error)
	RecentUsage(ctx context.Context, userID uuid.UUID, limit int) ([]*UsageRecord, error)
	CountUsageSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error)
}
