package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/makkenzo/niches-hunter-api/internal/domain/account"
	"github.com/makkenzo/niches-hunter-api/internal/domain/wallet"
	"github.com/makkenzo/niches-hunter-api/internal/ierr"
	"github.com/makkenzo/niches-hunter-api/internal/payments"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"
)

type webhookFixture struct {
	*walletFixture
	gw    *fakeGateway
	store *memoryIdempotencyStore
	svc   *WebhookService
}

func newWebhookFixture() *webhookFixture {
	wf := newWalletFixture()
	f := &webhookFixture{walletFixture: wf, gw: &fakeGateway{}, store: newMemoryIdempotencyStore()}
	f.svc = NewWebhookService(f.gw, wf.accounts, wf.svc, f.store, zap.NewNop())
	return f
}

func stripeEvent(id, typ, raw string) *stripe.Event {
	return &stripe.Event{ID: id, Type: stripe.EventType(typ), Data: &stripe.EventData{Raw: []byte(raw)}}
}

func TestHandleStripe_RejectsBadSignature(t *testing.T) {
	f := newWebhookFixture()
	userID := uuid.New()
	f.gw.event = stripeEvent("evt_1", payments.EventCheckoutCompleted,
		`{"id":"cs_1","payment_status":"paid","amount_total":1000,"metadata":{"purpose":"api_credits","user_id":"`+userID.String()+`"}}`)

	err := f.svc.HandleStripe(context.Background(), []byte("{}"), "")
	assert.ErrorIs(t, err, ierr.ErrValidation)
	err = f.svc.HandleStripe(context.Background(), []byte("{}"), "forged")
	assert.ErrorIs(t, err, ierr.ErrValidation)

	_, err = f.wallets.FindByUser(context.Background(), userID)
	assert.Error(t, err, "nothing is applied before verification")
	assert.Empty(t, f.store.keys)
}

func TestHandleStripe_TopUpCreditedOnce(t *testing.T) {
	f := newWebhookFixture()
	ctx := context.Background()
	userID := uuid.New()
	raw := `{"id":"cs_top","payment_status":"paid","amount_total":2500,"metadata":{"purpose":"api_credits","user_id":"` + userID.String() + `"}}`

	f.gw.event = stripeEvent("evt_top", payments.EventCheckoutCompleted, raw)
	require.NoError(t, f.svc.HandleStripe(ctx, []byte(raw), "valid"))
	require.NoError(t, f.svc.HandleStripe(ctx, []byte(raw), "valid"))

	// A redelivery under a new event id is still credited once per session.
	f.gw.event = stripeEvent("evt_top_retry", payments.EventCheckoutCompleted, raw)
	require.NoError(t, f.svc.HandleStripe(ctx, []byte(raw), "valid"))

	w, err := f.wallets.FindByUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(100+2500), w.BalanceCents)
}

func TestHandleStripe_UnpaidTopUpIgnored(t *testing.T) {
	f := newWebhookFixture()
	userID := uuid.New()
	raw := `{"id":"cs_unpaid","payment_status":"unpaid","amount_total":2500,"metadata":{"purpose":"api_credits","user_id":"` + userID.String() + `"}}`
	f.gw.event = stripeEvent("evt_unpaid", payments.EventCheckoutCompleted, raw)

	require.NoError(t, f.svc.HandleStripe(context.Background(), []byte(raw), "valid"))
	_, err := f.wallets.FindByUser(context.Background(), userID)
	assert.Error(t, err)
}

func TestHandleStripe_SubscriptionLifecycle(t *testing.T) {
	f := newWebhookFixture()
	ctx := context.Background()
	acc := f.accounts.AddAccount("sub@example.com", "password123")

	checkout := `{"id":"cs_sub","customer":"cus_9","subscription":"sub_9","payment_status":"paid","metadata":{"purpose":"subscription","plan":"monthly","user_id":"` + acc.ID.String() + `"}}`
	f.gw.event = stripeEvent("evt_c", payments.EventCheckoutCompleted, checkout)
	require.NoError(t, f.svc.HandleStripe(ctx, []byte(checkout), "valid"))

	c, err := f.accounts.FindCustomer(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, "cus_9", c.StripeCustomerID)
	assert.Equal(t, "sub_9", c.StripeSubscriptionID)
	assert.True(t, c.IsSubscribed())
	assert.Equal(t, account.PlanMonthly, c.Plan)

	deleted := `{"id":"sub_9","object":"subscription","customer":"cus_9","status":"active"}`
	f.gw.event = stripeEvent("evt_d", payments.EventSubscriptionDeleted, deleted)
	require.NoError(t, f.svc.HandleStripe(ctx, []byte(deleted), "valid"))

	c, err = f.accounts.FindCustomer(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, account.SubscriptionCanceled, c.SubscriptionStatus)
	assert.Equal(t, account.PlanMonthly, c.Plan, "plan survives a status sync without metadata")
}

func TestHandleStripe_SubscriptionForUnknownCustomerUsesMetadata(t *testing.T) {
	f := newWebhookFixture()
	ctx := context.Background()
	userID := uuid.New()

	raw := `{"id":"sub_1","object":"subscription","customer":"cus_new","status":"trialing","metadata":{"user_id":"` + userID.String() + `","plan":"yearly"}}`
	f.gw.event = stripeEvent("evt_s", payments.EventSubscriptionCreated, raw)
	require.NoError(t, f.svc.HandleStripe(ctx, []byte(raw), "valid"))

	c, err := f.accounts.FindCustomer(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, account.SubscriptionTrialing, c.SubscriptionStatus)
	assert.Equal(t, "cus_new", c.StripeCustomerID)
}

func TestHandleStripe_FailureReleasesGuard(t *testing.T) {
	f := newWebhookFixture()
	ctx := context.Background()
	userID := uuid.New()
	raw := `{"id":"cs_x","payment_status":"paid","amount_total":1000,"metadata":{"purpose":"api_credits","user_id":"` + userID.String() + `"}}`
	f.gw.event = stripeEvent("evt_x", payments.EventCheckoutCompleted, raw)

	f.svc.wallets = NewWalletService(brokenWallets{f.wallets}, f.accounts, f.keys, testAPIAccessConfig(), zap.NewNop())
	err := f.svc.HandleStripe(ctx, []byte(raw), "valid")
	require.Error(t, err)
	assert.Empty(t, f.store.keys, "a failed event can be redelivered")

	f.svc.wallets = f.walletFixture.svc
	require.NoError(t, f.svc.HandleStripe(ctx, []byte(raw), "valid"))
	w, err := f.wallets.FindByUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1100), w.BalanceCents)
}

func TestHandleStripe_IgnoresOtherEvents(t *testing.T) {
	f := newWebhookFixture()
	f.gw.event = stripeEvent("evt_i", "invoice.paid", `{"id":"in_1"}`)
	assert.NoError(t, f.svc.HandleStripe(context.Background(), []byte("{}"), "valid"))
}

// brokenWallets fails every credit.
type brokenWallets struct {
	wallet.Repository
}

func (brokenWallets) Credit(context.Context, wallet.CreditParams) (*wallet.Wallet, bool, error) {
	return nil, false, errors.New("credit unavailable")
}
