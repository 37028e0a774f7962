package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/makkenzo/niches-hunter-api/internal/config"
	"github.com/makkenzo/niches-hunter-api/internal/domain/account"
	"github.com/makkenzo/niches-hunter-api/internal/handler/dto"
	"github.com/makkenzo/niches-hunter-api/internal/ierr"
	"github.com/makkenzo/niches-hunter-api/internal/payments"
	"go.uber.org/zap"
)

type BillingService struct {
	gateway  payments.Gateway
	accounts account.Repository
	wallets  *WalletService
	cfg      config.StripeConfig
	logger   *zap.Logger
}

func NewBillingService(
	gateway payments.Gateway,
	accounts account.Repository,
	wallets *WalletService,
	cfg config.StripeConfig,
	logger *zap.Logger,
) *BillingService {
	return &BillingService{
		gateway:  gateway,
		accounts: accounts,
		wallets:  wallets,
		cfg:      cfg,
		logger:   logger.Named("BillingService"),
	}
}

func (s *BillingService) priceFor(plan string) (string, error) {
	switch account.Plan(plan) {
	case account.PlanMonthly:
		return s.cfg.MonthlyPriceID, nil
	case account.PlanYearly:
		return s.cfg.YearlyPriceID, nil
	default:
		return "", fmt.Errorf("%w: unknown plan %q", ierr.ErrValidation, plan)
	}
}

// SubscriptionCheckout opens a Stripe checkout in subscription mode for plan.
func (s *BillingService) SubscriptionCheckout(ctx context.Context, userID uuid.UUID, plan string) (*dto.CheckoutResponse, error) {
	priceID, err := s.priceFor(plan)
	if err != nil {
		return nil, err
	}
	acc, customerID, err := s.billingIdentity(ctx, userID)
	if err != nil {
		return nil, err
	}

	res, err := s.gateway.CreateSubscriptionCheckout(ctx, payments.SubscriptionCheckoutParams{
		UserID:     userID,
		Email:      acc.Email,
		CustomerID: customerID,
		PriceID:    priceID,
		Plan:       plan,
	})
	if err != nil {
		s.logger.Error("Stripe subscription checkout failed", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ierr.ErrUpstream, err)
	}
	return &dto.CheckoutResponse{URL: res.URL, SessionID: res.SessionID}, nil
}

// TopUpCheckout opens a one-off payment for API credits.
func (s *BillingService) TopUpCheckout(ctx context.Context, userID uuid.UUID, amountCents int64) (*dto.CheckoutResponse, error) {
	if err := s.wallets.ValidateTopUp(amountCents); err != nil {
		return nil, err
	}
	acc, customerID, err := s.billingIdentity(ctx, userID)
	if err != nil {
		return nil, err
	}

	res, err := s.gateway.CreateTopUpCheckout(ctx, payments.TopUpCheckoutParams{
		UserID:      userID,
		Email:       acc.Email,
		CustomerID:  customerID,
		AmountCents: amountCents,
	})
	if err != nil {
		s.logger.Error("Stripe top-up checkout failed", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ierr.ErrUpstream, err)
	}
	return &dto.CheckoutResponse{URL: res.URL, SessionID: res.SessionID}, nil
}

func (s *BillingService) Portal(ctx context.Context, userID uuid.UUID) (*dto.PortalResponse, error) {
	customer, err := s.accounts.FindCustomer(ctx, userID)
	if err != nil && !errors.Is(err, account.ErrCustomerNotFound) {
		return nil, fmt.Errorf("repository error finding customer: %w", err)
	}
	if customer == nil || customer.StripeCustomerID == "" {
		return nil, fmt.Errorf("%w: %w", ierr.ErrNotFound, ierr.ErrNoBillingAccount)
	}

	url, err := s.gateway.CreatePortalSession(ctx, customer.StripeCustomerID)
	if err != nil {
		s.logger.Error("Stripe portal session failed", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ierr.ErrUpstream, err)
	}
	return &dto.PortalResponse{URL: url}, nil
}

// billingIdentity returns the account and its Stripe customer id, if one is stored.
func (s *BillingService) billingIdentity(ctx context.Context, userID uuid.UUID) (*account.Account, string, error) {
	acc, err := s.accounts.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			return nil, "", fmt.Errorf("%w: %w", ierr.ErrUnauthorized, ierr.ErrUserNotFound)
		}
		return nil, "", fmt.Errorf("repository error finding account: %w", err)
	}
	customer, err := s.accounts.FindCustomer(ctx, userID)
	if err != nil {
		if errors.Is(err, account.ErrCustomerNotFound) {
			return acc, "", nil
		}
		return nil, "", fmt.Errorf("repository error finding customer: %w", err)
	}
	return acc, customer.StripeCustomerID, nil
}
