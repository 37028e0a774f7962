package apikey

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrAPIKeyNotFound = errors.New("api key not found or disabled")

type Repository interface {
	// FindByHash returns the key with the given hash regardless of its active flag.
	FindByHash(ctx context.Context, keyHash string) (*APIKey, error)
	FindByID(ctx context.Context, id uuid.UUID) (*APIKey, error)
	Create(ctx context.Context, key *APIKey) (uuid.UUID, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*APIKey, error)
	CountActiveByUser(ctx context.Context, userID uuid.UUID) (int, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	UpdateLastUsed(ctx context.Context, id uuid.UUID, lastUsed time.Time) error
}
