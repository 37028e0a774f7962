package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/makkenzo/niches-hunter-api/internal/ai"
	"github.com/makkenzo/niches-hunter-api/internal/domain/validation"
	"github.com/makkenzo/niches-hunter-api/internal/handler/dto"
	"github.com/makkenzo/niches-hunter-api/internal/ierr"
	"go.uber.org/zap"
)

const validationHistoryLimit = 50

type ValidationService struct {
	repo      validation.Repository
	generator ai.Generator
	subs      SubscriptionChecker
	logger    *zap.Logger
}

func NewValidationService(repo validation.Repository, generator ai.Generator, subs SubscriptionChecker, logger *zap.Logger) *ValidationService {
	return &ValidationService{
		repo:      repo,
		generator: generator,
		subs:      subs,
		logger:    logger.Named("ValidationService"),
	}
}

// Validate asks the AI provider to assess an idea and stores the result.
func (s *ValidationService) Validate(ctx context.Context, userID uuid.UUID, req dto.CreateValidationRequest) (*dto.ValidationResponse, error) {
	subscribed, err := s.subs.IsSubscribed(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !subscribed {
		return nil, fmt.Errorf("%w: %w", ierr.ErrPaymentRequired, ierr.ErrSubscriptionRequired)
	}
	if s.generator == nil {
		s.logger.Error("Validation requested but no AI provider is configured")
		return nil, fmt.Errorf("%w: %v", ierr.ErrUpstream, ai.ErrNotConfigured)
	}

	result, err := s.generator.Generate(ctx, ai.ValidationPrompt(req.Idea, req.TargetMarket))
	if err != nil {
		s.logger.Error("AI provider failed to validate idea", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ierr.ErrUpstream, err)
	}

	v := &validation.Validation{
		UserID:       userID,
		Idea:         req.Idea,
		TargetMarket: req.TargetMarket,
		Result:       result,
		Model:        s.generator.Model(),
	}
	if err := s.repo.Create(ctx, v); err != nil {
		return nil, fmt.Errorf("repository error storing validation: %w", err)
	}
	return dto.NewValidationResponse(v), nil
}

func (s *ValidationService) List(ctx context.Context, userID uuid.UUID) ([]*dto.ValidationResponse, error) {
	items, err := s.repo.ListByUser(ctx, userID, validationHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("repository error listing validations: %w", err)
	}
	out := make([]*dto.ValidationResponse, len(items))
	for i, v := range items {
		out[i] = dto.NewValidationResponse(v)
	}
	return out, nil
}
