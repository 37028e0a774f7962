package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/makkenzo/niches-hunter-api/internal/domain/apikey"
	"github.com/makkenzo/niches-hunter-api/internal/handler/dto"
	"github.com/makkenzo/niches-hunter-api/internal/ierr"
	"github.com/makkenzo/niches-hunter-api/internal/util"
	"go.uber.org/zap"
)

type APIKeyService struct {
	repo      apikey.Repository
	wallets   *WalletService
	maxActive int
	logger    *zap.Logger
}

func NewAPIKeyService(repo apikey.Repository, wallets *WalletService, maxActive int, logger *zap.Logger) *APIKeyService {
	return &APIKeyService{
		repo:      repo,
		wallets:   wallets,
		maxActive: maxActive,
		logger:    logger.Named("APIKeyService"),
	}
}

func (s *APIKeyService) CreateAPIKey(ctx context.Context, userID uuid.UUID, name string) (*dto.CreateAPIKeyResponse, error) {
	s.logger.Info("Generating new API key", zap.String("user_id", userID.String()))

	active, err := s.repo.CountActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("repository error counting api keys: %w", err)
	}
	if active >= s.maxActive {
		s.logger.Info("API key limit reached", zap.String("user_id", userID.String()), zap.Int("active", active))
		return nil, fmt.Errorf("%w: %w (max %d)", ierr.ErrConflict, ierr.ErrAPIKeyLimitReached, s.maxActive)
	}

	if _, err := s.wallets.EnsureWallet(ctx, userID); err != nil {
		return nil, err
	}

	fullKey, prefix, keyHash, err := util.GenerateAPIKey()
	if err != nil {
		s.logger.Error("Failed to generate api key components", zap.Error(err))
		return nil, fmt.Errorf("%w: failed generating key: %v", ierr.ErrInternalServer, err)
	}

	newKey := &apikey.APIKey{
		UserID:        userID,
		Name:          name,
		KeyHash:       keyHash,
		DisplayPrefix: prefix,
		IsActive:      true,
	}
	insertedID, err := s.repo.Create(ctx, newKey)
	if err != nil {
		s.logger.Error("Failed to save new api key", zap.Error(err))
		return nil, fmt.Errorf("repository error creating api key: %w", err)
	}

	s.logger.Info("API key created successfully", zap.String("id", insertedID.String()), zap.String("prefix", prefix))
	return &dto.CreateAPIKeyResponse{
		ID:            insertedID,
		Key:           fullKey,
		DisplayPrefix: prefix,
		Name:          name,
		CreatedAt:     newKey.CreatedAt,
	}, nil
}

func (s *APIKeyService) ListAPIKeys(ctx context.Context, userID uuid.UUID) ([]*dto.APIKeyResponse, error) {
	keys, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list api keys from repository", zap.Error(err))
		return nil, fmt.Errorf("repository error listing api keys: %w", err)
	}

	responses := make([]*dto.APIKeyResponse, len(keys))
	for i, key := range keys {
		responses[i] = dto.NewAPIKeyResponse(key)
	}
	return responses, nil
}

// RevokeAPIKey deactivates a key owned by userID. Revoking an inactive key succeeds.
func (s *APIKeyService) RevokeAPIKey(ctx context.Context, userID, id uuid.UUID) error {
	key, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apikey.ErrAPIKeyNotFound) {
			return fmt.Errorf("%w: api key %s", ierr.ErrNotFound, id)
		}
		return fmt.Errorf("repository error loading api key %s: %w", id, err)
	}
	if key.UserID != userID {
		s.logger.Warn("Attempt to revoke api key of another user",
			zap.String("id", id.String()), zap.String("user_id", userID.String()))
		return fmt.Errorf("%w: api key %s", ierr.ErrNotFound, id)
	}
	if !key.IsActive {
		return nil
	}

	if err := s.repo.Deactivate(ctx, id); err != nil {
		s.logger.Error("Failed to revoke api key via repository", zap.String("id", id.String()), zap.Error(err))
		return fmt.Errorf("repository error revoking api key %s: %w", id, err)
	}
	s.logger.Info("API key revoked successfully", zap.String("id", id.String()))
	return nil
}
