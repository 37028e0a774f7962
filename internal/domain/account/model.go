package account

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionStatus string

const (
	SubscriptionNone       SubscriptionStatus = ""
	SubscriptionActive     SubscriptionStatus = "active"
	SubscriptionTrialing   SubscriptionStatus = "trialing"
	SubscriptionPastDue    SubscriptionStatus = "past_due"
	SubscriptionCanceled   SubscriptionStatus = "canceled"
	SubscriptionIncomplete SubscriptionStatus = "incomplete"
	SubscriptionUnpaid     SubscriptionStatus = "unpaid"
)

type Plan string

const (
	PlanMonthly Plan = "monthly"
	PlanYearly  Plan = "yearly"
)

type Account struct {
	ID           uuid.UUID `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

// Customer links an account to its Stripe billing state.
type Customer struct {
	UserID               uuid.UUID          `db:"user_id"`
	StripeCustomerID     string             `db:"stripe_customer_id"`
	StripeSubscriptionID string             `db:"stripe_subscription_id"`
	SubscriptionStatus   SubscriptionStatus `db:"subscription_status"`
	Plan                 Plan               `db:"plan"`
	CurrentPeriodEnd     *time.Time         `db:"current_period_end"`
	UpdatedAt            time.Time          `db:"updated_at"`
}

func (c *Customer) IsSubscribed() bool {
	if c == nil {
		return false
	}
	return c.SubscriptionStatus == SubscriptionActive || c.SubscriptionStatus == SubscriptionTrialing
}

type PasswordResetToken struct {
	TokenHash string     `db:"token_hash"`
	UserID    uuid.UUID  `db:"user_id"`
	ExpiresAt time.Time  `db:"expires_at"`
	UsedAt    *time.Time `db:"used_at"`
	CreatedAt time.Time  `db:"created_at"`
}
