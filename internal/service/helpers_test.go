package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/makkenzo/niches-hunter-api/internal/config"
	"github.com/makkenzo/niches-hunter-api/internal/payments"
	"github.com/makkenzo/niches-hunter-api/internal/ratelimit"
	"github.com/makkenzo/niches-hunter-api/internal/tasks"
	"github.com/stripe/stripe-go/v82"
)

func testAPIAccessConfig() config.APIAccessConfig {
	return config.APIAccessConfig{
		RateLimitWindow:     time.Minute,
		RateLimitMax:        30,
		MaxActiveKeys:       5,
		SeedFreeCents:       100,
		SeedSubscriberCents: 500,
		MinTopUpCents:       500,
		MaxTopUpCents:       50000,
		TopUpURL:            "https://nicheshunter.app/developer",
	}
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:     "test-secret",
		SessionTTL:    time.Hour,
		CookieName:    "nh_session",
		ResetTokenTTL: time.Hour,
	}
}

type fakeEnqueuer struct {
	mu   sync.Mutex
	sent []tasks.EmailPayload
	err  error
}

func (f *fakeEnqueuer) EnqueueEmail(_ context.Context, p tasks.EmailPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, p)
	return nil
}

func (f *fakeEnqueuer) messages() []tasks.EmailPayload {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tasks.EmailPayload(nil), f.sent...)
}

type fakeGateway struct {
	subscriptionCalls []payments.SubscriptionCheckoutParams
	topUpCalls        []payments.TopUpCheckoutParams
	portalCustomer    string
	event             *stripe.Event
	err               error
}

func (f *fakeGateway) CreateSubscriptionCheckout(_ context.Context, p payments.SubscriptionCheckoutParams) (*payments.CheckoutResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.subscriptionCalls = append(f.subscriptionCalls, p)
	return &payments.CheckoutResult{SessionID: "cs_sub", URL: "https://checkout.stripe.test/cs_sub"}, nil
}

func (f *fakeGateway) CreateTopUpCheckout(_ context.Context, p payments.TopUpCheckoutParams) (*payments.CheckoutResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.topUpCalls = append(f.topUpCalls, p)
	return &payments.CheckoutResult{SessionID: "cs_topup", URL: "https://checkout.stripe.test/cs_topup"}, nil
}

func (f *fakeGateway) CreatePortalSession(_ context.Context, customerID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.portalCustomer = customerID
	return "https://billing.stripe.test/" + customerID, nil
}

// VerifyWebhook accepts the signature "valid" and returns the configured event.
func (f *fakeGateway) VerifyWebhook(_ []byte, signature string) (*stripe.Event, error) {
	if signature != "valid" {
		return nil, errors.New("signature mismatch")
	}
	return f.event, nil
}

type memoryIdempotencyStore struct {
	mu   sync.Mutex
	keys map[string]struct{}
	err  error
}

func newMemoryIdempotencyStore() *memoryIdempotencyStore {
	return &memoryIdempotencyStore{keys: make(map[string]struct{})}
}

func (s *memoryIdempotencyStore) SetNX(_ context.Context, key string, _ interface{}, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	if _, ok := s.keys[key]; ok {
		return false, nil
	}
	s.keys[key] = struct{}{}
	return true, nil
}

func (s *memoryIdempotencyStore) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.keys, k)
	}
	return nil
}

func (s *memoryIdempotencyStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("nh:idempotency:%s:%s", scope, id)
}

type fakeGenerator struct {
	text   string
	err    error
	prompt string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.text, f.err
}

func (f *fakeGenerator) Model() string { return "gemini-test" }

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (ratelimit.Decision, error) {
	return ratelimit.Decision{}, errors.New("redis: connection refused")
}
