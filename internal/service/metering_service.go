package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/makkenzo/niches-hunter-api/internal/domain/apikey"
	"github.com/makkenzo/niches-hunter-api/internal/domain/wallet"
	"github.com/makkenzo/niches-hunter-api/internal/ierr"
	"github.com/makkenzo/niches-hunter-api/internal/metrics"
	"github.com/makkenzo/niches-hunter-api/internal/pricing"
	"github.com/makkenzo/niches-hunter-api/internal/ratelimit"
	"github.com/makkenzo/niches-hunter-api/internal/util"
	"go.uber.org/zap"
)

const bearerPrefix = "Bearer "

// InsufficientFundsError carries the figures rendered in the 402 body.
type InsufficientFundsError struct {
	BalanceCents int64
	CostCents    int64
	TopUpURL     string
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient credits: balance %d, cost %d", e.BalanceCents, e.CostCents)
}

func (e *InsufficientFundsError) Unwrap() error { return ierr.ErrInsufficientFunds }

// Charge is the outcome of a successful debit.
type Charge struct {
	CostCents    int64
	BalanceCents int64
}

// MeteringService drives a metered request through authentication, rate
// limiting, pricing and the wallet debit.
type MeteringService struct {
	keys     apikey.Repository
	wallets  wallet.Repository
	limiter  ratelimit.Limiter
	costs    *pricing.Table
	topUpURL string
	logger   *zap.Logger
	now      func() time.Time
}

func NewMeteringService(
	keys apikey.Repository,
	wallets wallet.Repository,
	limiter ratelimit.Limiter,
	costs *pricing.Table,
	topUpURL string,
	logger *zap.Logger,
) *MeteringService {
	return &MeteringService{
		keys:     keys,
		wallets:  wallets,
		limiter:  limiter,
		costs:    costs,
		topUpURL: topUpURL,
		logger:   logger.Named("MeteringService"),
		now:      time.Now,
	}
}

// Authenticate resolves the bearer credential in an Authorization header value.
// Every failure, including an inactive key, is reported as ierr.ErrUnauthorized.
func (s *MeteringService) Authenticate(ctx context.Context, authHeader string) (*apikey.APIKey, error) {
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return nil, fmt.Errorf("%w: missing bearer api key", ierr.ErrUnauthorized)
	}
	raw := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
	if !util.LooksLikeAPIKey(raw) {
		return nil, fmt.Errorf("%w: malformed api key", ierr.ErrUnauthorized)
	}

	key, err := s.keys.FindByHash(ctx, util.HashAPIKey(raw))
	if err != nil {
		if errors.Is(err, apikey.ErrAPIKeyNotFound) {
			s.logger.Debug("Unknown api key presented", zap.String("prefix", util.DisplayPrefix(raw)))
			return nil, fmt.Errorf("%w: %v", ierr.ErrUnauthorized, ierr.ErrAPIKeyNotFound)
		}
		s.logger.Error("Failed to look up api key", zap.Error(err))
		return nil, fmt.Errorf("%w: api key lookup failed: %v", ierr.ErrInternalServer, err)
	}
	if !key.IsActive {
		s.logger.Info("Inactive api key presented", zap.String("key_id", key.ID.String()))
		return nil, fmt.Errorf("%w: %v", ierr.ErrUnauthorized, ierr.ErrAPIKeyNotFound)
	}
	return key, nil
}

// CheckRate applies the per-key limiter. A limiter backend failure admits the request.
func (s *MeteringService) CheckRate(ctx context.Context, key *apikey.APIKey) ratelimit.Decision {
	decision, err := s.limiter.Allow(ctx, key.ID.String())
	if err != nil {
		metrics.RateLimiterErrors.Inc()
		s.logger.Warn("Rate limiter unavailable, admitting request", zap.String("key_id", key.ID.String()), zap.Error(err))
		return ratelimit.Decision{Allowed: true}
	}
	return decision
}

func (s *MeteringService) CostOf(path string) int64 {
	return s.costs.CostOf(path)
}

// Charge prices path, verifies the wallet covers it and debits it atomically.
func (s *MeteringService) Charge(ctx context.Context, key *apikey.APIKey, path string) (*Charge, error) {
	cost := s.costs.CostOf(path)

	w, err := s.wallets.FindByUser(ctx, key.UserID)
	if err != nil {
		if errors.Is(err, wallet.ErrWalletNotFound) {
			return nil, s.insufficient(0, cost)
		}
		s.logger.Error("Failed to load wallet", zap.String("user_id", key.UserID.String()), zap.Error(err))
		return nil, fmt.Errorf("%w: wallet lookup failed: %v", ierr.ErrInternalServer, err)
	}
	if w.BalanceCents < cost {
		return nil, s.insufficient(w.BalanceCents, cost)
	}

	res, err := s.wallets.Debit(ctx, wallet.DebitParams{
		UserID:       key.UserID,
		APIKeyID:     key.ID,
		EndpointPath: path,
		CostCents:    cost,
	})
	if err != nil {
		if errors.Is(err, wallet.ErrInsufficientFunds) {
			var balance int64
			if res != nil {
				balance = res.BalanceCents
			}
			s.logger.Info("Debit lost race for remaining balance",
				zap.String("user_id", key.UserID.String()),
				zap.Int64("cost_cents", cost),
			)
			return nil, s.insufficient(balance, cost)
		}
		s.logger.Error("Wallet debit failed",
			zap.String("user_id", key.UserID.String()),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: debit failed: %v", ierr.ErrInternalServer, err)
	}

	metrics.CreditsDebitedCents.WithLabelValues(s.costs.PatternOf(path)).Add(float64(cost))
	return &Charge{CostCents: res.ChargedCents, BalanceCents: res.BalanceCents}, nil
}

// TouchLastUsed records key usage in the background; failures are only logged.
func (s *MeteringService) TouchLastUsed(keyID uuid.UUID) {
	at := s.now().UTC()
	go func(id uuid.UUID, repo apikey.Repository, l *zap.Logger) {
		ctxAsync, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := repo.UpdateLastUsed(ctxAsync, id, at); err != nil {
			l.Error("Failed to update API key last used time asynchronously", zap.String("key_id", id.String()), zap.Error(err))
		}
	}(keyID, s.keys, s.logger)
}

func (s *MeteringService) insufficient(balance, cost int64) error {
	return &InsufficientFundsError{BalanceCents: balance, CostCents: cost, TopUpURL: s.topUpURL}
}
