package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/makkenzo/niches-hunter-api/internal/ierr"
	"github.com/makkenzo/niches-hunter-api/internal/service"
	"github.com/stretchr/testify/assert"
)

func TestBuildErrorResponse(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", fmt.Errorf("%w: bad limit", ierr.ErrValidation), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"invalid credentials", fmt.Errorf("%w: %w", ierr.ErrUnauthorized, ierr.ErrInvalidCredentials), http.StatusUnauthorized, "UNAUTHENTICATED"},
		{"rate limited", fmt.Errorf("%w: key nh_abc", ierr.ErrRateLimited), http.StatusTooManyRequests, "RATE_LIMITED"},
		{"subscription", fmt.Errorf("%w: %w", ierr.ErrPaymentRequired, ierr.ErrSubscriptionRequired), http.StatusPaymentRequired, "PAYMENT_REQUIRED"},
		{"foreign row", fmt.Errorf("%w: project", ierr.ErrForbidden), http.StatusNotFound, "NOT_FOUND"},
		{"conflict", fmt.Errorf("%w: %w", ierr.ErrConflict, ierr.ErrEmailTaken), http.StatusConflict, "CONFLICT"},
		{"upstream", fmt.Errorf("%w: gemini", ierr.ErrUpstream), http.StatusInternalServerError, "UPSTREAM_ERROR"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := buildErrorResponse(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, resp.Code)
		})
	}
}

func TestBuildErrorResponse_InsufficientFunds(t *testing.T) {
	err := fmt.Errorf("charge: %w", &service.InsufficientFundsError{BalanceCents: 10, CostCents: 50, TopUpURL: "https://nicheshunter.app/developer"})

	status, resp := buildErrorResponse(err)
	assert.Equal(t, http.StatusPaymentRequired, status)
	assert.Equal(t, "INSUFFICIENT_CREDITS", resp.Code)
	assert.Equal(t, "0.10", resp.Balance)
	assert.Equal(t, "0.50", resp.Cost)
	assert.Equal(t, "https://nicheshunter.app/developer", resp.TopUpURL)
}

func TestBuildErrorResponse_NoBillingAccount(t *testing.T) {
	_, resp := buildErrorResponse(fmt.Errorf("%w: %w", ierr.ErrNotFound, ierr.ErrNoBillingAccount))
	assert.Equal(t, "No billing account for this user.", resp.Error)
}
