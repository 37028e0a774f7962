package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/makkenzo/niches-hunter-api/internal/domain/account"
	"github.com/makkenzo/niches-hunter-api/internal/ierr"
	"github.com/makkenzo/niches-hunter-api/internal/metrics"
	"github.com/makkenzo/niches-hunter-api/internal/payments"
	"github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"
)

const (
	webhookIdempotencyScope = "stripe-webhook"
	webhookIdempotencyTTL   = 7 * 24 * time.Hour

	webhookProcessed = "processed"
	webhookDuplicate = "duplicate"
	webhookIgnored   = "ignored"
	webhookFailed    = "failed"
)

// IdempotencyStore is satisfied by the redis Store.
type IdempotencyStore interface {
	SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	IdempotencyKey(scope, id string) string
}

type WebhookService struct {
	gateway  payments.Gateway
	accounts account.Repository
	wallets  *WalletService
	store    IdempotencyStore
	logger   *zap.Logger
}

func NewWebhookService(
	gateway payments.Gateway,
	accounts account.Repository,
	wallets *WalletService,
	store IdempotencyStore,
	logger *zap.Logger,
) *WebhookService {
	return &WebhookService{
		gateway:  gateway,
		accounts: accounts,
		wallets:  wallets,
		store:    store,
		logger:   logger.Named("WebhookService"),
	}
}

// HandleStripe verifies and applies a Stripe webhook delivery. Nothing is
// touched before the signature has been checked.
func (s *WebhookService) HandleStripe(ctx context.Context, payload []byte, signature string) error {
	if signature == "" {
		return fmt.Errorf("%w: missing stripe signature", ierr.ErrValidation)
	}
	event, err := s.gateway.VerifyWebhook(payload, signature)
	if err != nil {
		s.logger.Warn("Rejected webhook with invalid signature", zap.Error(err))
		return fmt.Errorf("%w: invalid stripe signature", ierr.ErrValidation)
	}

	log := s.logger.With(zap.String("event_id", event.ID), zap.String("event_type", string(event.Type)))

	marked := false
	if s.store != nil && event.ID != "" {
		key := s.store.IdempotencyKey(webhookIdempotencyScope, event.ID)
		set, err := s.store.SetNX(ctx, key, "1", webhookIdempotencyTTL)
		switch {
		case err != nil:
			log.Warn("Idempotency guard unavailable, processing event anyway", zap.Error(err))
		case !set:
			log.Info("Duplicate webhook event acknowledged")
			metrics.WebhookEvents.WithLabelValues(string(event.Type), webhookDuplicate).Inc()
			return nil
		default:
			marked = true
		}
	}

	result, err := s.dispatch(ctx, event, log)
	if err != nil {
		metrics.WebhookEvents.WithLabelValues(string(event.Type), webhookFailed).Inc()
		if marked {
			if delErr := s.store.Del(ctx, s.store.IdempotencyKey(webhookIdempotencyScope, event.ID)); delErr != nil {
				log.Warn("Failed to release idempotency key", zap.Error(delErr))
			}
		}
		log.Error("Webhook event processing failed", zap.Error(err))
		return err
	}

	metrics.WebhookEvents.WithLabelValues(string(event.Type), result).Inc()
	log.Info("Webhook event handled", zap.String("result", result))
	return nil
}

func (s *WebhookService) dispatch(ctx context.Context, event *stripe.Event, log *zap.Logger) (string, error) {
	switch string(event.Type) {
	case payments.EventCheckoutCompleted:
		checkout, err := payments.CheckoutFromEvent(event)
		if err != nil {
			log.Warn("Unusable checkout event", zap.Error(err))
			return webhookIgnored, nil
		}
		return s.applyCheckout(ctx, checkout, log)
	case payments.EventSubscriptionCreated, payments.EventSubscriptionUpdated, payments.EventSubscriptionDeleted:
		change, err := payments.SubscriptionFromEvent(event)
		if err != nil {
			log.Warn("Unusable subscription event", zap.Error(err))
			return webhookIgnored, nil
		}
		return s.applySubscription(ctx, change, log)
	default:
		return webhookIgnored, nil
	}
}

func (s *WebhookService) applyCheckout(ctx context.Context, co *payments.CompletedCheckout, log *zap.Logger) (string, error) {
	switch co.Purpose {
	case payments.PurposeAPICredits:
		if !co.Paid || co.AmountCents <= 0 {
			log.Info("Top-up checkout not paid, skipping", zap.String("session_id", co.SessionID))
			return webhookIgnored, nil
		}
		if _, err := s.wallets.CreditTopUp(ctx, co.UserID, co.AmountCents, co.SessionID); err != nil {
			return "", err
		}
		return webhookProcessed, nil

	case payments.PurposeSubscription, "":
		if co.SubscriptionID == "" && co.Purpose == "" {
			return webhookIgnored, nil
		}
		customer, err := s.existingCustomer(ctx, co.UserID)
		if err != nil {
			return "", err
		}
		customer.StripeCustomerID = co.CustomerID
		customer.StripeSubscriptionID = co.SubscriptionID
		customer.SubscriptionStatus = account.SubscriptionActive
		if co.Plan != "" {
			customer.Plan = account.Plan(co.Plan)
		}
		if err := s.accounts.UpsertCustomer(ctx, customer); err != nil {
			return "", fmt.Errorf("repository error linking subscription: %w", err)
		}
		return webhookProcessed, nil

	default:
		return webhookIgnored, nil
	}
}

func (s *WebhookService) applySubscription(ctx context.Context, change *payments.SubscriptionChange, log *zap.Logger) (string, error) {
	var customer *account.Customer
	if change.CustomerID != "" {
		c, err := s.accounts.FindCustomerByStripeID(ctx, change.CustomerID)
		if err != nil && !errors.Is(err, account.ErrCustomerNotFound) {
			return "", fmt.Errorf("repository error finding customer: %w", err)
		}
		customer = c
	}
	if customer == nil {
		if change.UserID == uuid.Nil {
			log.Warn("Subscription event for unknown customer", zap.String("customer_id", change.CustomerID))
			return webhookIgnored, nil
		}
		c, err := s.existingCustomer(ctx, change.UserID)
		if err != nil {
			return "", err
		}
		customer = c
	}

	customer.StripeCustomerID = change.CustomerID
	customer.StripeSubscriptionID = change.SubscriptionID
	customer.SubscriptionStatus = account.SubscriptionStatus(change.Status)
	if change.Plan != "" {
		customer.Plan = account.Plan(change.Plan)
	}
	if change.CurrentPeriodEnd != nil {
		customer.CurrentPeriodEnd = change.CurrentPeriodEnd
	}
	if err := s.accounts.UpsertCustomer(ctx, customer); err != nil {
		return "", fmt.Errorf("repository error syncing subscription: %w", err)
	}
	return webhookProcessed, nil
}

// existingCustomer returns the stored customer row or a fresh one for userID.
func (s *WebhookService) existingCustomer(ctx context.Context, userID uuid.UUID) (*account.Customer, error) {
	c, err := s.accounts.FindCustomer(ctx, userID)
	if err != nil {
		if errors.Is(err, account.ErrCustomerNotFound) {
			return &account.Customer{UserID: userID}, nil
		}
		return nil, fmt.Errorf("repository error finding customer: %w", err)
	}
	return c, nil
}
