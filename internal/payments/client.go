package payments

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/makkenzo/niches-hunter-api/internal/config"
	"github.com/stripe/stripe-go/v82"
	portalsession "github.com/stripe/stripe-go/v82/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"
	"go.uber.org/zap"
)

// Metadata keys written on checkout sessions and read back by the webhook.
const (
	MetaPurpose     = "purpose"
	MetaUserID      = "user_id"
	MetaPlan        = "plan"
	MetaAmountCents = "amount_cents"

	PurposeSubscription = "subscription"
	PurposeAPICredits   = "api_credits"
)

// Gateway is the subset of Stripe the services depend on.
type Gateway interface {
	CreateSubscriptionCheckout(ctx context.Context, params SubscriptionCheckoutParams) (*CheckoutResult, error)
	CreateTopUpCheckout(ctx context.Context, params TopUpCheckoutParams) (*CheckoutResult, error)
	CreatePortalSession(ctx context.Context, customerID string) (string, error)
	VerifyWebhook(payload []byte, signature string) (*stripe.Event, error)
}

type SubscriptionCheckoutParams struct {
	UserID     uuid.UUID
	Email      string
	CustomerID string
	PriceID    string
	Plan       string
}

type TopUpCheckoutParams struct {
	UserID      uuid.UUID
	Email       string
	CustomerID  string
	AmountCents int64
}

type CheckoutResult struct {
	SessionID string
	URL       string
}

type Client struct {
	cfg    config.StripeConfig
	logger *zap.Logger
}

func NewClient(cfg config.StripeConfig, logger *zap.Logger) *Client {
	stripe.Key = cfg.SecretKey
	return &Client{
		cfg:    cfg,
		logger: logger.Named("StripeClient"),
	}
}

var _ Gateway = (*Client)(nil)

func (c *Client) CreateSubscriptionCheckout(ctx context.Context, params SubscriptionCheckoutParams) (*CheckoutResult, error) {
	metadata := map[string]string{
		MetaPurpose: PurposeSubscription,
		MetaUserID:  params.UserID.String(),
		MetaPlan:    params.Plan,
	}

	sessionParams := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(params.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(c.cfg.SuccessURL),
		CancelURL:         stripe.String(c.cfg.CancelURL),
		ClientReferenceID: stripe.String(params.UserID.String()),
		Metadata:          metadata,
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: metadata,
		},
	}
	applyCustomer(sessionParams, params.CustomerID, params.Email)
	sessionParams.Context = ctx

	sess, err := checkoutsession.New(sessionParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	c.logger.Info("Created subscription checkout session",
		zap.String("session_id", sess.ID),
		zap.String("user_id", params.UserID.String()),
		zap.String("plan", params.Plan),
	)
	return &CheckoutResult{SessionID: sess.ID, URL: sess.URL}, nil
}

func (c *Client) CreateTopUpCheckout(ctx context.Context, params TopUpCheckoutParams) (*CheckoutResult, error) {
	metadata := map[string]string{
		MetaPurpose:     PurposeAPICredits,
		MetaUserID:      params.UserID.String(),
		MetaAmountCents: strconv.FormatInt(params.AmountCents, 10),
	}

	sessionParams := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyUSD)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("Niches Hunter API credits"),
					},
					UnitAmount: stripe.Int64(params.AmountCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(c.cfg.SuccessURL),
		CancelURL:         stripe.String(c.cfg.CancelURL),
		ClientReferenceID: stripe.String(params.UserID.String()),
		Metadata:          metadata,
	}
	applyCustomer(sessionParams, params.CustomerID, params.Email)
	sessionParams.Context = ctx

	sess, err := checkoutsession.New(sessionParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create top-up checkout session: %w", err)
	}

	c.logger.Info("Created top-up checkout session",
		zap.String("session_id", sess.ID),
		zap.String("user_id", params.UserID.String()),
		zap.Int64("amount_cents", params.AmountCents),
	)
	return &CheckoutResult{SessionID: sess.ID, URL: sess.URL}, nil
}

func (c *Client) CreatePortalSession(ctx context.Context, customerID string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(c.cfg.PortalReturnURL),
	}
	params.Context = ctx

	sess, err := portalsession.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create billing portal session: %w", err)
	}
	return sess.URL, nil
}

func (c *Client) VerifyWebhook(payload []byte, signature string) (*stripe.Event, error) {
	event, err := webhook.ConstructEvent(payload, signature, c.cfg.WebhookSecret)
	if err != nil {
		return nil, fmt.Errorf("webhook signature verification failed: %w", err)
	}
	return &event, nil
}

func applyCustomer(params *stripe.CheckoutSessionParams, customerID, email string) {
	if customerID != "" {
		params.Customer = stripe.String(customerID)
		return
	}
	if email != "" {
		params.CustomerEmail = stripe.String(email)
	}
}
