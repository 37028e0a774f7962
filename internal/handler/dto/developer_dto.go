package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/makkenzo/niches-hunter-api/internal/domain/wallet"
	"github.com/makkenzo/niches-hunter-api/internal/util"
)

type DeveloperDashboardResponse struct {
	BalanceCents    int64             `json:"balance_cents"`
	Balance         string            `json:"balance"`
	TotalSpentCents int64             `json:"total_spent_cents"`
	TotalSpent      string            `json:"total_spent"`
	Keys            []*APIKeyResponse `json:"keys"`
	MaxActiveKeys   int               `json:"max_active_keys"`
	RecentUsage     []*UsageResponse  `json:"recent_usage"`
	CallsLast30Days int64             `json:"calls_last_30_days"`
}

type UsageResponse struct {
	APIKeyID  uuid.UUID `json:"api_key_id"`
	Endpoint  string    `json:"endpoint"`
	CostCents int64     `json:"cost_cents"`
	Cost      string    `json:"cost"`
	CreatedAt time.Time `json:"created_at"`
}

func NewUsageResponse(u *wallet.UsageRecord) *UsageResponse {
	return &UsageResponse{
		APIKeyID:  u.APIKeyID,
		Endpoint:  u.EndpointPath,
		CostCents: u.CostCents,
		Cost:      util.CentsToDollars(u.CostCents),
		CreatedAt: u.CreatedAt,
	}
}

type TopUpRequest struct {
	AmountCents int64 `json:"amount_cents" binding:"required,gt=0"`
}

type CheckoutResponse struct {
	URL       string `json:"url"`
	SessionID string `json:"session_id,omitempty"`
}
