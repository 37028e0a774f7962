package wallet

import (
	"time"

	"github.com/google/uuid"
)

type Wallet struct {
	UserID          uuid.UUID `db:"user_id"`
	BalanceCents    int64     `db:"balance_cents"`
	TotalSpentCents int64     `db:"total_spent_cents"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

// UsageRecord is the append-only audit row written together with every debit.
type UsageRecord struct {
	ID           uuid.UUID `db:"id"`
	UserID       uuid.UUID `db:"user_id"`
	APIKeyID     uuid.UUID `db:"api_key_id"`
	EndpointPath string    `db:"endpoint_path"`
	CostCents    int64     `db:"cost_cents"`
	CreatedAt    time.Time `db:"created_at"`
}

type DebitParams struct {
	UserID       uuid.UUID
	APIKeyID     uuid.UUID
	EndpointPath string
	CostCents    int64
}

type DebitResult struct {
	BalanceCents int64
	ChargedCents int64
}

type CreditParams struct {
	UserID      uuid.UUID
	AmountCents int64
	// Reference makes the credit idempotent (checkout session id for top-ups).
	Reference string
}
