package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/makkenzo/niches-hunter-api/internal/domain/apikey"
)

type CreateAPIKeyRequest struct {
	Name string `json:"name" binding:"omitempty,max=64"`
}

// CreateAPIKeyResponse is the only response that ever carries the raw key.
type CreateAPIKeyResponse struct {
	ID            uuid.UUID `json:"id"`
	Key           string    `json:"key"`
	DisplayPrefix string    `json:"display_prefix"`
	Name          string    `json:"name"`
	CreatedAt     time.Time `json:"created_at"`
}

type APIKeyResponse struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	DisplayPrefix string     `json:"display_prefix"`
	IsActive      bool       `json:"is_active"`
	CreatedAt     time.Time  `json:"created_at"`
	LastUsedAt    *time.Time `json:"last_used_at,omitempty"`
}

func NewAPIKeyResponse(k *apikey.APIKey) *APIKeyResponse {
	return &APIKeyResponse{
		ID:            k.ID,
		Name:          k.Name,
		DisplayPrefix: k.DisplayPrefix,
		IsActive:      k.IsActive,
		CreatedAt:     k.CreatedAt,
		LastUsedAt:    k.LastUsedAt,
	}
}
