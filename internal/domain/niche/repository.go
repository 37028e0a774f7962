package niche

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("niche not found")

type Repository interface {
	List(ctx context.Context, params ListParams) ([]*Niche, int64, error)
	FindByCode(ctx context.Context, code string) (*Niche, error)
	Categories(ctx context.Context) ([]*Category, error)
}
