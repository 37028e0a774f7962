package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/makkenzo/niches-hunter-api/internal/domain/wallet"
	"go.uber.org/zap"
)

const walletColumns = `user_id, balance_cents, total_spent_cents, created_at, updated_at`

type WalletRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewWalletRepository(db *pgxpool.Pool, logger *zap.Logger) *WalletRepository {
	return &WalletRepository{
		db:     db,
		logger: logger.Named("WalletRepository"),
	}
}

var _ wallet.Repository = (*WalletRepository)(nil)

func (r *WalletRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*wallet.Wallet, error) {
	w, err := scanWallet(r.db.QueryRow(ctx, `SELECT `+walletColumns+` FROM api_wallets WHERE user_id = $1`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, wallet.ErrWalletNotFound
		}
		r.logger.Error("Failed to find wallet", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, fmt.Errorf("db error finding wallet: %w", err)
	}
	return w, nil
}

func (r *WalletRepository) CreateIfAbsent(ctx context.Context, userID uuid.UUID, seedCents int64) (*wallet.Wallet, error) {
	cmdTag, err := r.db.Exec(ctx, `
		INSERT INTO api_wallets (user_id, balance_cents)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING
	`, userID, seedCents)
	if err != nil {
		r.logger.Error("Failed to create wallet", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, fmt.Errorf("db error creating wallet: %w", err)
	}
	if cmdTag.RowsAffected() > 0 {
		r.logger.Info("Wallet created",
			zap.String("user_id", userID.String()),
			zap.Int64("seed_cents", seedCents),
		)
	}
	return r.FindByUser(ctx, userID)
}

// Debit delegates to debit_api_wallet so the conditional decrement and the
// usage insert happen in a single statement.
func (r *WalletRepository) Debit(ctx context.Context, params wallet.DebitParams) (*wallet.DebitResult, error) {
	var success bool
	var balance int64
	err := r.db.QueryRow(ctx,
		`SELECT success, balance_cents FROM debit_api_wallet($1, $2, $3, $4)`,
		params.UserID, params.CostCents, params.APIKeyID, params.EndpointPath,
	).Scan(&success, &balance)
	if err != nil {
		r.logger.Error("Failed to debit wallet",
			zap.String("user_id", params.UserID.String()),
			zap.Int64("cost_cents", params.CostCents),
			zap.Error(err),
		)
		return nil, fmt.Errorf("db error debiting wallet: %w", err)
	}
	if !success {
		return &wallet.DebitResult{BalanceCents: balance}, wallet.ErrInsufficientFunds
	}
	return &wallet.DebitResult{BalanceCents: balance, ChargedCents: params.CostCents}, nil
}

func (r *WalletRepository) Credit(ctx context.Context, params wallet.CreditParams) (*wallet.Wallet, bool, error) {
	var credited *wallet.Wallet
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		cmdTag, err := tx.Exec(ctx, `
			INSERT INTO api_wallet_topups (reference, user_id, amount_cents)
			VALUES ($1, $2, $3)
			ON CONFLICT (reference) DO NOTHING
		`, params.Reference, params.UserID, params.AmountCents)
		if err != nil {
			return fmt.Errorf("db error recording top-up: %w", err)
		}
		if cmdTag.RowsAffected() == 0 {
			return nil
		}

		credited, err = scanWallet(tx.QueryRow(ctx, `
			INSERT INTO api_wallets (user_id, balance_cents)
			VALUES ($1, $2)
			ON CONFLICT (user_id) DO UPDATE
			   SET balance_cents = api_wallets.balance_cents + EXCLUDED.balance_cents,
			       updated_at = NOW()
			RETURNING `+walletColumns,
			params.UserID, params.AmountCents))
		if err != nil {
			return fmt.Errorf("db error crediting wallet: %w", err)
		}
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to credit wallet", zap.String("reference", params.Reference), zap.Error(err))
		return nil, false, err
	}

	if credited == nil {
		r.logger.Info("Top-up already applied", zap.String("reference", params.Reference))
		w, err := r.FindByUser(ctx, params.UserID)
		return w, false, err
	}

	r.logger.Info("Wallet credited",
		zap.String("user_id", params.UserID.String()),
		zap.Int64("amount_cents", params.AmountCents),
		zap.String("reference", params.Reference),
	)
	return credited, true, nil
}

func (r *WalletRepository) RecentUsage(ctx context.Context, userID uuid.UUID, limit int) ([]*wallet.UsageRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, api_key_id, endpoint_path, cost_cents, created_at
		FROM api_usage
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("db error listing usage: %w", err)
	}
	defer rows.Close()

	records := make([]*wallet.UsageRecord, 0, limit)
	for rows.Next() {
		var u wallet.UsageRecord
		if err := rows.Scan(&u.ID, &u.UserID, &u.APIKeyID, &u.EndpointPath, &u.CostCents, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error scanning usage: %w", err)
		}
		records = append(records, &u)
	}
	return records, rows.Err()
}

func (r *WalletRepository) CountUsageSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM api_usage WHERE user_id = $1 AND created_at >= $2`,
		userID, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("db error counting usage: %w", err)
	}
	return count, nil
}

func scanWallet(row pgx.Row) (*wallet.Wallet, error) {
	var w wallet.Wallet
	if err := row.Scan(&w.UserID, &w.BalanceCents, &w.TotalSpentCents, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, err
	}
	return &w, nil
}
