package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/makkenzo/niches-hunter-api/internal/config"
	"github.com/makkenzo/niches-hunter-api/internal/domain/account"
	"github.com/makkenzo/niches-hunter-api/internal/domain/apikey"
	"github.com/makkenzo/niches-hunter-api/internal/domain/wallet"
	"github.com/makkenzo/niches-hunter-api/internal/handler/dto"
	"github.com/makkenzo/niches-hunter-api/internal/ierr"
	"github.com/makkenzo/niches-hunter-api/internal/util"
	"go.uber.org/zap"
)

const (
	recentUsageLimit = 20
	usageWindow      = 30 * 24 * time.Hour
)

type WalletService struct {
	wallets  wallet.Repository
	accounts account.Repository
	keys     apikey.Repository
	cfg      config.APIAccessConfig
	logger   *zap.Logger
	now      func() time.Time
}

func NewWalletService(
	wallets wallet.Repository,
	accounts account.Repository,
	keys apikey.Repository,
	cfg config.APIAccessConfig,
	logger *zap.Logger,
) *WalletService {
	return &WalletService{
		wallets:  wallets,
		accounts: accounts,
		keys:     keys,
		cfg:      cfg,
		logger:   logger.Named("WalletService"),
		now:      time.Now,
	}
}

// EnsureWallet returns the user's wallet, creating it with the seed credit
// that matches their subscription state when it does not exist yet.
func (s *WalletService) EnsureWallet(ctx context.Context, userID uuid.UUID) (*wallet.Wallet, error) {
	w, err := s.wallets.FindByUser(ctx, userID)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, wallet.ErrWalletNotFound) {
		return nil, fmt.Errorf("repository error loading wallet: %w", err)
	}

	seed := s.cfg.SeedFreeCents
	customer, err := s.accounts.FindCustomer(ctx, userID)
	switch {
	case err == nil:
		if customer.IsSubscribed() {
			seed = s.cfg.SeedSubscriberCents
		}
	case errors.Is(err, account.ErrCustomerNotFound):
	default:
		s.logger.Warn("Could not load customer while seeding wallet, using free seed",
			zap.String("user_id", userID.String()), zap.Error(err))
	}

	w, err = s.wallets.CreateIfAbsent(ctx, userID, seed)
	if err != nil {
		s.logger.Error("Failed to create wallet", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, fmt.Errorf("repository error creating wallet: %w", err)
	}
	return w, nil
}

func (s *WalletService) Dashboard(ctx context.Context, userID uuid.UUID) (*dto.DeveloperDashboardResponse, error) {
	w, err := s.EnsureWallet(ctx, userID)
	if err != nil {
		return nil, err
	}

	keys, err := s.keys.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("repository error listing api keys: %w", err)
	}
	usage, err := s.wallets.RecentUsage(ctx, userID, recentUsageLimit)
	if err != nil {
		return nil, fmt.Errorf("repository error listing usage: %w", err)
	}
	calls, err := s.wallets.CountUsageSince(ctx, userID, s.now().Add(-usageWindow))
	if err != nil {
		return nil, fmt.Errorf("repository error counting usage: %w", err)
	}

	resp := &dto.DeveloperDashboardResponse{
		BalanceCents:    w.BalanceCents,
		Balance:         util.CentsToDollars(w.BalanceCents),
		TotalSpentCents: w.TotalSpentCents,
		TotalSpent:      util.CentsToDollars(w.TotalSpentCents),
		Keys:            make([]*dto.APIKeyResponse, len(keys)),
		MaxActiveKeys:   s.cfg.MaxActiveKeys,
		RecentUsage:     make([]*dto.UsageResponse, len(usage)),
		CallsLast30Days: calls,
	}
	for i, k := range keys {
		resp.Keys[i] = dto.NewAPIKeyResponse(k)
	}
	for i, u := range usage {
		resp.RecentUsage[i] = dto.NewUsageResponse(u)
	}
	return resp, nil
}

// ValidateTopUp checks amountCents against the configured bounds.
func (s *WalletService) ValidateTopUp(amountCents int64) error {
	if amountCents < s.cfg.MinTopUpCents || (s.cfg.MaxTopUpCents > 0 && amountCents > s.cfg.MaxTopUpCents) {
		return fmt.Errorf("%w: amount_cents must be between %d and %d",
			ierr.ErrValidation, s.cfg.MinTopUpCents, s.cfg.MaxTopUpCents)
	}
	return nil
}

// CreditTopUp applies a paid top-up once per reference.
func (s *WalletService) CreditTopUp(ctx context.Context, userID uuid.UUID, amountCents int64, reference string) (bool, error) {
	if amountCents <= 0 {
		return false, fmt.Errorf("%w: top-up amount must be positive", ierr.ErrValidation)
	}
	if _, err := s.EnsureWallet(ctx, userID); err != nil {
		return false, err
	}

	w, applied, err := s.wallets.Credit(ctx, wallet.CreditParams{
		UserID:      userID,
		AmountCents: amountCents,
		Reference:   reference,
	})
	if err != nil {
		s.logger.Error("Failed to credit wallet", zap.String("user_id", userID.String()), zap.Error(err))
		return false, fmt.Errorf("repository error crediting wallet: %w", err)
	}
	if applied {
		s.logger.Info("Wallet topped up",
			zap.String("user_id", userID.String()),
			zap.Int64("amount_cents", amountCents),
			zap.Int64("balance_cents", w.BalanceCents),
		)
	}
	return applied, nil
}
