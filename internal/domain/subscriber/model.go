package subscriber

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Subscriber struct {
	ID        uuid.UUID `db:"id"`
	Email     string    `db:"email"`
	Source    string    `db:"source"`
	CreatedAt time.Time `db:"created_at"`
}

type Repository interface {
	// Add inserts the subscriber; created is false when the email was already present.
	Add(ctx context.Context, s *Subscriber) (created bool, err error)
}
