package account

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrEmailTaken        = errors.New("email already registered")
	ErrCustomerNotFound  = errors.New("customer not found")
	ErrResetTokenInvalid = errors.New("reset token invalid")
)

type Repository interface {
	Create(ctx context.Context, acc *Account) (uuid.UUID, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)

	FindCustomer(ctx context.Context, userID uuid.UUID) (*Customer, error)
	FindCustomerByStripeID(ctx context.Context, stripeCustomerID string) (*Customer, error)
	UpsertCustomer(ctx context.Context, c *Customer) error

	CreateResetToken(ctx context.Context, t *PasswordResetToken) error
	// ResetPassword marks a valid token as used and stores passwordHash for its
	// owner. Either both happen or neither does.
	ResetPassword(ctx context.Context, tokenHash, passwordHash string, now time.Time) (uuid.UUID, error)
	DeleteExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}
