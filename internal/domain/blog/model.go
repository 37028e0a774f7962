package blog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("blog post not found")

type Post struct {
	ID          uuid.UUID `db:"id"`
	Slug        string    `db:"slug"`
	Title       string    `db:"title"`
	Excerpt     string    `db:"excerpt"`
	Body        string    `db:"body"`
	PublishedAt time.Time `db:"published_at"`
}

type Repository interface {
	List(ctx context.Context, limit, offset int) ([]*Post, error)
	FindBySlug(ctx context.Context, slug string) (*Post, error)
}
