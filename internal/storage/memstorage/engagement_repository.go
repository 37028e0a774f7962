package memstorage

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/makkenzo/niches-hunter-api/internal/domain/subscriber"
	"github.com/makkenzo/niches-hunter-api/internal/domain/validation"
)

type ValidationRepository struct {
	mu    sync.RWMutex
	items []*validation.Validation
}

func NewValidationRepository() *ValidationRepository {
	return &ValidationRepository{}
}

var _ validation.Repository = (*ValidationRepository)(nil)

func (r *ValidationRepository) Create(ctx context.Context, v *validation.Validation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	v.ID, v.CreatedAt = uuid.New(), time.Now()
	stored := *v
	r.items = append(r.items, &stored)
	return nil
}

func (r *ValidationRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*validation.Validation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*validation.Validation, 0)
	for i := len(r.items) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		if v := r.items[i]; v.UserID == userID {
			vCopy := *v
			out = append(out, &vCopy)
		}
	}
	return out, nil
}

type SubscriberRepository struct {
	mu     sync.Mutex
	emails map[string]*subscriber.Subscriber
}

func NewSubscriberRepository() *SubscriberRepository {
	return &SubscriberRepository{emails: make(map[string]*subscriber.Subscriber)}
}

var _ subscriber.Repository = (*SubscriberRepository)(nil)

func (r *SubscriberRepository) Add(ctx context.Context, s *subscriber.Subscriber) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(s.Email)
	if _, ok := r.emails[key]; ok {
		return false, nil
	}
	s.ID, s.CreatedAt = uuid.New(), time.Now()
	stored := *s
	r.emails[key] = &stored
	return true, nil
}

func (r *SubscriberRepository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.emails)
}
