package validation

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Validation struct {
	ID           uuid.UUID `db:"id"`
	UserID       uuid.UUID `db:"user_id"`
	Idea         string    `db:"idea"`
	TargetMarket string    `db:"target_market"`
	Result       string    `db:"result"`
	Model        string    `db:"model"`
	CreatedAt    time.Time `db:"created_at"`
}

type Repository interface {
	Create(ctx context.Context, v *Validation) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*Validation, error)
}
