package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/makkenzo/niches-hunter-api/internal/domain/account"
	"go.uber.org/zap"
)

const customerColumns = `user_id, stripe_customer_id, stripe_subscription_id, subscription_status, plan, current_period_end, updated_at`

type AccountRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewAccountRepository(db *pgxpool.Pool, logger *zap.Logger) *AccountRepository {
	return &AccountRepository{
		db:     db,
		logger: logger.Named("AccountRepository"),
	}
}

var _ account.Repository = (*AccountRepository)(nil)

func (r *AccountRepository) Create(ctx context.Context, acc *account.Account) (uuid.UUID, error) {
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (email, password_hash)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, acc.Email, acc.PasswordHash).Scan(&acc.ID, &acc.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return uuid.Nil, account.ErrEmailTaken
		}
		r.logger.Error("Failed to create account", zap.Error(err))
		return uuid.Nil, fmt.Errorf("db error creating account: %w", err)
	}
	r.logger.Info("Account created", zap.String("id", acc.ID.String()))
	return acc.ID, nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	return r.findOne(ctx, `SELECT id, email, password_hash, created_at FROM users WHERE id = $1`, id)
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*account.Account, error) {
	return r.findOne(ctx, `SELECT id, email, password_hash, created_at FROM users WHERE email = $1`, email)
}

func (r *AccountRepository) findOne(ctx context.Context, query string, arg any) (*account.Account, error) {
	var acc account.Account
	err := r.db.QueryRow(ctx, query, arg).Scan(&acc.ID, &acc.Email, &acc.PasswordHash, &acc.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound
		}
		r.logger.Error("Failed to find account", zap.Error(err))
		return nil, fmt.Errorf("db error finding account: %w", err)
	}
	return &acc, nil
}

func (r *AccountRepository) FindCustomer(ctx context.Context, userID uuid.UUID) (*account.Customer, error) {
	return r.findCustomer(ctx, `SELECT `+customerColumns+` FROM customers WHERE user_id = $1`, userID)
}

func (r *AccountRepository) FindCustomerByStripeID(ctx context.Context, stripeCustomerID string) (*account.Customer, error) {
	return r.findCustomer(ctx, `SELECT `+customerColumns+` FROM customers WHERE stripe_customer_id = $1`, stripeCustomerID)
}

func (r *AccountRepository) findCustomer(ctx context.Context, query string, arg any) (*account.Customer, error) {
	var c account.Customer
	var stripeCustomerID, subscriptionID sql.NullString
	var periodEnd sql.NullTime
	var status, plan string

	err := r.db.QueryRow(ctx, query, arg).Scan(
		&c.UserID,
		&stripeCustomerID,
		&subscriptionID,
		&status,
		&plan,
		&periodEnd,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrCustomerNotFound
		}
		r.logger.Error("Failed to find customer", zap.Error(err))
		return nil, fmt.Errorf("db error finding customer: %w", err)
	}

	c.StripeCustomerID = stripeCustomerID.String
	c.StripeSubscriptionID = subscriptionID.String
	c.SubscriptionStatus = account.SubscriptionStatus(status)
	c.Plan = account.Plan(plan)
	if periodEnd.Valid {
		c.CurrentPeriodEnd = &periodEnd.Time
	}
	return &c, nil
}

func (r *AccountRepository) UpsertCustomer(ctx context.Context, c *account.Customer) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO customers (user_id, stripe_customer_id, stripe_subscription_id, subscription_status, plan, current_period_end, updated_at)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, $5, $6, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			stripe_customer_id     = COALESCE(EXCLUDED.stripe_customer_id, customers.stripe_customer_id),
			stripe_subscription_id = COALESCE(EXCLUDED.stripe_subscription_id, customers.stripe_subscription_id),
			subscription_status    = EXCLUDED.subscription_status,
			plan                   = EXCLUDED.plan,
			current_period_end     = EXCLUDED.current_period_end,
			updated_at             = NOW()
	`,
		c.UserID,
		c.StripeCustomerID,
		c.StripeSubscriptionID,
		string(c.SubscriptionStatus),
		string(c.Plan),
		c.CurrentPeriodEnd,
	)
	if err != nil {
		r.logger.Error("Failed to upsert customer", zap.String("user_id", c.UserID.String()), zap.Error(err))
		return fmt.Errorf("db error upserting customer: %w", err)
	}
	return nil
}

func (r *AccountRepository) CreateResetToken(ctx context.Context, t *account.PasswordResetToken) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO password_reset_tokens (token_hash, user_id, expires_at)
		VALUES ($1, $2, $3)
	`, t.TokenHash, t.UserID, t.ExpiresAt)
	if err != nil {
		return fmt.Errorf("db error creating reset token: %w", err)
	}
	return nil
}

func (r *AccountRepository) ResetPassword(ctx context.Context, tokenHash, passwordHash string, now time.Time) (uuid.UUID, error) {
	var userID uuid.UUID
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			UPDATE password_reset_tokens
			   SET used_at = $2
			 WHERE token_hash = $1
			   AND used_at IS NULL
			   AND expires_at > $2
			RETURNING user_id
		`, tokenHash, now).Scan(&userID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return account.ErrResetTokenInvalid
			}
			return fmt.Errorf("db error consuming reset token: %w", err)
		}

		cmdTag, err := tx.Exec(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, passwordHash, userID)
		if err != nil {
			return fmt.Errorf("db error updating password: %w", err)
		}
		if cmdTag.RowsAffected() == 0 {
			return account.ErrAccountNotFound
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return userID, nil
}

func (r *AccountRepository) DeleteExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	cmdTag, err := r.db.Exec(ctx,
		`DELETE FROM password_reset_tokens WHERE expires_at <= $1 OR used_at IS NOT NULL`, now)
	if err != nil {
		return 0, fmt.Errorf("db error deleting reset tokens: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}
