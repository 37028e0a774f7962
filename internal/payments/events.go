package payments

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
)

const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventSubscriptionCreated = "customer.subscription.created"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
)

// CompletedCheckout is what the webhook needs from a checkout.session.completed event.
type CompletedCheckout struct {
	SessionID      string
	Purpose        string
	UserID         uuid.UUID
	Plan           string
	CustomerID     string
	SubscriptionID string
	AmountCents    int64
	Paid           bool
}

func CheckoutFromEvent(event *stripe.Event) (*CompletedCheckout, error) {
	if event.Type != EventCheckoutCompleted {
		return nil, fmt.Errorf("event type %s is not %s", event.Type, EventCheckoutCompleted)
	}

	var sess stripe.CheckoutSession
	if err := sess.UnmarshalJSON(event.Data.Raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkout session: %w", err)
	}

	rawUserID := sess.Metadata[MetaUserID]
	if rawUserID == "" {
		rawUserID = sess.ClientReferenceID
	}
	userID, err := uuid.Parse(rawUserID)
	if err != nil {
		return nil, fmt.Errorf("checkout session %s has no valid user id: %w", sess.ID, err)
	}

	out := &CompletedCheckout{
		SessionID:   sess.ID,
		Purpose:     sess.Metadata[MetaPurpose],
		UserID:      userID,
		Plan:        sess.Metadata[MetaPlan],
		AmountCents: sess.AmountTotal,
		Paid:        sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
	}
	if sess.Customer != nil {
		out.CustomerID = sess.Customer.ID
	}
	if sess.Subscription != nil {
		out.SubscriptionID = sess.Subscription.ID
	}
	if out.AmountCents == 0 {
		if v, err := strconv.ParseInt(sess.Metadata[MetaAmountCents], 10, 64); err == nil {
			out.AmountCents = v
		}
	}
	return out, nil
}

// SubscriptionChange is the status sync extracted from a customer.subscription.* event.
type SubscriptionChange struct {
	SubscriptionID   string
	CustomerID       string
	Status           string
	Plan             string
	UserID           uuid.UUID
	CurrentPeriodEnd *time.Time
}

func SubscriptionFromEvent(event *stripe.Event) (*SubscriptionChange, error) {
	switch event.Type {
	case EventSubscriptionCreated, EventSubscriptionUpdated, EventSubscriptionDeleted:
	default:
		return nil, fmt.Errorf("event type %s does not contain subscription data", event.Type)
	}

	var sub stripe.Subscription
	if err := sub.UnmarshalJSON(event.Data.Raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal subscription: %w", err)
	}

	change := &SubscriptionChange{
		SubscriptionID: sub.ID,
		Status:         string(sub.Status),
	}
	if sub.Customer != nil {
		change.CustomerID = sub.Customer.ID
	}
	if sub.Metadata != nil {
		change.Plan = sub.Metadata[MetaPlan]
		if id, err := uuid.Parse(sub.Metadata[MetaUserID]); err == nil {
			change.UserID = id
		}
	}
	// v82 moved the billing period onto subscription items.
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].CurrentPeriodEnd > 0 {
		end := time.Unix(sub.Items.Data[0].CurrentPeriodEnd, 0).UTC()
		change.CurrentPeriodEnd = &end
	}
	if event.Type == EventSubscriptionDeleted {
		change.Status = string(stripe.SubscriptionStatusCanceled)
	}
	return change, nil
}
