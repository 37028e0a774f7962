package payments

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
)

func TestCheckoutFromEvent_TopUp(t *testing.T) {
	userID := uuid.New()
	raw := []byte(`{
		"id": "cs_test_1",
		"object": "checkout.session",
		"customer": "cus_1",
		"amount_total": 2500,
		"payment_status": "paid",
		"metadata": {"purpose": "api_credits", "user_id": "` + userID.String() + `", "amount_cents": "2500"}
	}`)
	event := &stripe.Event{Type: EventCheckoutCompleted, Data: &stripe.EventData{Raw: raw}}

	got, err := CheckoutFromEvent(event)
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", got.SessionID)
	assert.Equal(t, PurposeAPICredits, got.Purpose)
	assert.Equal(t, userID, got.UserID)
	assert.Equal(t, "cus_1", got.CustomerID)
	assert.Equal(t, int64(2500), got.AmountCents)
	assert.True(t, got.Paid)
}

func TestCheckoutFromEvent_FallsBackToClientReference(t *testing.T) {
	userID := uuid.New()
	raw := []byte(`{"id": "cs_2", "client_reference_id": "` + userID.String() + `", "subscription": "sub_9", "metadata": {"purpose": "subscription", "plan": "yearly"}}`)
	got, err := CheckoutFromEvent(&stripe.Event{Type: EventCheckoutCompleted, Data: &stripe.EventData{Raw: raw}})
	require.NoError(t, err)
	assert.Equal(t, userID, got.UserID)
	assert.Equal(t, "sub_9", got.SubscriptionID)
	assert.Equal(t, "yearly", got.Plan)
}

func TestCheckoutFromEvent_RejectsMissingUser(t *testing.T) {
	raw := []byte(`{"id": "cs_3", "metadata": {}}`)
	_, err := CheckoutFromEvent(&stripe.Event{Type: EventCheckoutCompleted, Data: &stripe.EventData{Raw: raw}})
	assert.Error(t, err)
}

func TestSubscriptionFromEvent(t *testing.T) {
	userID := uuid.New()
	raw := []byte(`{
		"id": "sub_1",
		"object": "subscription",
		"customer": "cus_1",
		"status": "active",
		"metadata": {"user_id": "` + userID.String() + `", "plan": "monthly"},
		"items": {"object": "list", "data": [{"id": "si_1", "current_period_end": 1767225600}]}
	}`)

	got, err := SubscriptionFromEvent(&stripe.Event{Type: EventSubscriptionUpdated, Data: &stripe.EventData{Raw: raw}})
	require.NoError(t, err)
	assert.Equal(t, "sub_1", got.SubscriptionID)
	assert.Equal(t, "cus_1", got.CustomerID)
	assert.Equal(t, "active", got.Status)
	assert.Equal(t, "monthly", got.Plan)
	assert.Equal(t, userID, got.UserID)
	require.NotNil(t, got.CurrentPeriodEnd)
	assert.Equal(t, int64(1767225600), got.CurrentPeriodEnd.Unix())

	deleted, err := SubscriptionFromEvent(&stripe.Event{Type: EventSubscriptionDeleted, Data: &stripe.EventData{Raw: raw}})
	require.NoError(t, err)
	assert.Equal(t, "canceled", deleted.Status)
}

func TestSubscriptionFromEvent_WrongType(t *testing.T) {
	_, err := SubscriptionFromEvent(&stripe.Event{Type: "invoice.paid", Data: &stripe.EventData{Raw: []byte(`{}`)}})
	assert.Error(t, err)
}
