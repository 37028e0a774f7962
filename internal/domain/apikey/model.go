package apikey

import (
	"time"

	"github.com/google/uuid"
)

type APIKey struct {
	ID            uuid.UUID  `db:"id"`
	UserID        uuid.UUID  `db:"user_id"`
	Name          string     `db:"name"`
	KeyHash       string     `db:"key_hash"`
	DisplayPrefix string     `db:"display_prefix"`
	IsActive      bool       `db:"is_active"`
	CreatedAt     time.Time  `db:"created_at"`
	LastUsedAt    *time.Time `db:"last_used_at"`
}

const (
	APIKeyPrefix        = "nh_"
	APIKeySecretLength  = 32
	APIKeyAlphabet      = "abcdefghijklmnopqrstuvwxyz0123456789"
	DisplayPrefixLength = 11
)
