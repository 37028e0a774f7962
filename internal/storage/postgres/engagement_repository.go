package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/makkenzo/niches-hunter-api/internal/domain/subscriber"
	"github.com/makkenzo/niches-hunter-api/internal/domain/validation"
	"go.uber.org/zap"
)

type ValidationRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewValidationRepository(db *pgxpool.Pool, logger *zap.Logger) *ValidationRepository {
	return &ValidationRepository{
		db:     db,
		logger: logger.Named("ValidationRepository"),
	}
}

var _ validation.Repository = (*ValidationRepository)(nil)

func (r *ValidationRepository) Create(ctx context.Context, v *validation.Validation) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO validations (user_id, idea, target_market, result, model)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, v.UserID, v.Idea, v.TargetMarket, v.Result, v.Model).Scan(&v.ID, &v.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to store validation", zap.String("user_id", v.UserID.String()), zap.Error(err))
		return fmt.Errorf("db error creating validation: %w", err)
	}
	return nil
}

func (r *ValidationRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*validation.Validation, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, idea, target_market, result, model, created_at
		FROM validations
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("db error listing validations: %w", err)
	}
	defer rows.Close()

	out := make([]*validation.Validation, 0)
	for rows.Next() {
		var v validation.Validation
		if err := rows.Scan(&v.ID, &v.UserID, &v.Idea, &v.TargetMarket, &v.Result, &v.Model, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error scanning validation: %w", err)
		}
		out = append(out, &v)
	}
	return out, rows.Err()
}

type SubscriberRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewSubscriberRepository(db *pgxpool.Pool, logger *zap.Logger) *SubscriberRepository {
	return &SubscriberRepository{
		db:     db,
		logger: logger.Named("SubscriberRepository"),
	}
}

var _ subscriber.Repository = (*SubscriberRepository)(nil)

func (r *SubscriberRepository) Add(ctx context.Context, s *subscriber.Subscriber) (bool, error) {
	cmdTag, err := r.db.Exec(ctx, `
		INSERT INTO subscribers (email, source)
		VALUES ($1, $2)
		ON CONFLICT (email) DO NOTHING
	`, s.Email, s.Source)
	if err != nil {
		r.logger.Error("Failed to add subscriber", zap.Error(err))
		return false, fmt.Errorf("db error adding subscriber: %w", err)
	}
	return cmdTag.RowsAffected() > 0, nil
}
