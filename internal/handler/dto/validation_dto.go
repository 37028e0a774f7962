package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/makkenzo/niches-hunter-api/internal/domain/validation"
)

type CreateValidationRequest struct {
	Idea         string `json:"idea" binding:"required,min=10,max=2000"`
	TargetMarket string `json:"target_market" binding:"omitempty,max=200"`
}

type ValidationResponse struct {
	ID           uuid.UUID `json:"id"`
	Idea         string    `json:"idea"`
	TargetMarket string    `json:"target_market,omitempty"`
	Result       string    `json:"result"`
	Model        string    `json:"model"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewValidationResponse(v *validation.Validation) *ValidationResponse {
	return &ValidationResponse{
		ID:           v.ID,
		Idea:         v.Idea,
		TargetMarket: v.TargetMarket,
		Result:       v.Result,
		Model:        v.Model,
		CreatedAt:    v.CreatedAt,
	}
}
