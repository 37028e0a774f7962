package memstorage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/makkenzo/niches-hunter-api/internal/domain/apikey"
)

type APIKeyRepository struct {
	mu   sync.RWMutex
	keys map[uuid.UUID]*apikey.APIKey
}

func NewAPIKeyRepository() *APIKeyRepository {
	return &APIKeyRepository{keys: make(map[uuid.UUID]*apikey.APIKey)}
}

var _ apikey.Repository = (*APIKeyRepository)(nil)

func (r *APIKeyRepository) FindByHash(ctx context.Context, keyHash string) (*apikey.APIKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, k := range r.keys {
		if k.KeyHash == keyHash {
			kCopy := *k
			return &kCopy, nil
		}
	}
	return nil, apikey.ErrAPIKeyNotFound
}

func (r *APIKeyRepository) FindByID(ctx context.Context, id uuid.UUID) (*apikey.APIKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	k, ok := r.keys[id]
	if !ok {
		return nil, apikey.ErrAPIKeyNotFound
	}
	kCopy := *k
	return &kCopy, nil
}

func (r *APIKeyRepository) Create(ctx context.Context, key *apikey.APIKey) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key.ID = uuid.New()
	key.CreatedAt = time.Now()
	stored := *key
	r.keys[key.ID] = &stored
	return key.ID, nil
}

func (r *APIKeyRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*apikey.APIKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*apikey.APIKey, 0)
	for _, k := range r.keys {
		if k.UserID == userID {
			kCopy := *k
			out = append(out, &kCopy)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *APIKeyRepository) CountActiveByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, k := range r.keys {
		if k.UserID == userID && k.IsActive {
			n++
		}
	}
	return n, nil
}

func (r *APIKeyRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k, ok := r.keys[id]
	if !ok {
		return apikey.ErrAPIKeyNotFound
	}
	k.IsActive = false
	return nil
}

func (r *APIKeyRepository) UpdateLastUsed(ctx context.Context, id uuid.UUID, lastUsed time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if k, ok := r.keys[id]; ok {
		t := lastUsed
		k.LastUsedAt = &t
	}
	return nil
}
