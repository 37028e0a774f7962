package middleware

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/makkenzo/niches-hunter-api/internal/domain/apikey"
	"github.com/makkenzo/niches-hunter-api/internal/ierr"
	"github.com/makkenzo/niches-hunter-api/internal/metrics"
	"github.com/makkenzo/niches-hunter-api/internal/service"
	"github.com/makkenzo/niches-hunter-api/internal/util"
	"go.uber.org/zap"
)

const (
	authorizationHeader = "Authorization"
	apiKeyContextKey    = "apiKey"
	chargeContextKey    = "apiCharge"

	HeaderCreditsRemaining = "X-Credits-Remaining"
	HeaderCreditsUsed      = "X-Credits-Used"
)

// APIKeyAuthMiddleware authenticates the bearer API key and applies the
// per-key rate limit. It never touches the wallet.
func APIKeyAuthMiddleware(metering *service.MeteringService, logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("APIKeyAuthMiddleware")
	return func(c *gin.Context) {
		key, err := metering.Authenticate(c.Request.Context(), c.GetHeader(authorizationHeader))
		if err != nil {
			outcome := metrics.OutcomeUnauthenticated
			if !errors.Is(err, ierr.ErrUnauthorized) {
				outcome = metrics.OutcomeError
			}
			metrics.GateDecisions.WithLabelValues(outcome).Inc()
			_ = c.Error(err)
			c.Abort()
			return
		}

		decision := metering.CheckRate(c.Request.Context(), key)
		if !decision.Allowed {
			log.Info("Rate limit exceeded", zap.String("key_id", key.ID.String()))
			metrics.GateDecisions.WithLabelValues(metrics.OutcomeRateLimited).Inc()
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(decision.RetryAfter.Seconds()))))
			_ = c.Error(fmt.Errorf("%w: api key %s", ierr.ErrRateLimited, key.DisplayPrefix))
			c.Abort()
			return
		}

		c.Set(apiKeyContextKey, key)
		c.Next()
	}
}

// APIKeyChargeMiddleware prices the request path and debits the key owner's
// wallet before the handler runs.
func APIKeyChargeMiddleware(metering *service.MeteringService, logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("APIKeyChargeMiddleware")
	return func(c *gin.Context) {
		key := GetAPIKey(c)
		if key == nil {
			log.Error("Charge middleware reached without an authenticated key")
			_ = c.Error(fmt.Errorf("%w: api key missing from context", ierr.ErrInternalServer))
			c.Abort()
			return
		}

		charge, err := metering.Charge(c.Request.Context(), key, c.Request.URL.Path)
		if err != nil {
			outcome := metrics.OutcomeError
			if errors.Is(err, ierr.ErrInsufficientFunds) {
				outcome = metrics.OutcomeInsufficientFunds
			}
			metrics.GateDecisions.WithLabelValues(outcome).Inc()
			_ = c.Error(err)
			c.Abort()
			return
		}

		metering.TouchLastUsed(key.ID)
		metrics.GateDecisions.WithLabelValues(metrics.OutcomeServed).Inc()
		log.Debug("Metered request charged",
			zap.String("key_id", key.ID.String()),
			zap.Int64("cost_cents", charge.CostCents),
			zap.Int64("balance_cents", charge.BalanceCents),
		)
		c.Set(chargeContextKey, charge)
		c.Next()
	}
}

func GetAPIKey(c *gin.Context) *apikey.APIKey {
	value, exists := c.Get(apiKeyContextKey)
	if !exists {
		return nil
	}
	key, ok := value.(*apikey.APIKey)
	if !ok {
		return nil
	}
	return key
}

// SetCreditHeaders writes the post-debit balance and the cost of the request.
func SetCreditHeaders(c *gin.Context) {
	value, exists := c.Get(chargeContextKey)
	if !exists {
		return
	}
	charge, ok := value.(*service.Charge)
	if !ok {
		return
	}
	c.Header(HeaderCreditsRemaining, util.CentsToDollars(charge.BalanceCents))
	c.Header(HeaderCreditsUsed, util.CentsToDollars(charge.CostCents))
}

// RejectInvalidRequest aborts a metered request before it is charged.
func RejectInvalidRequest(c *gin.Context, err error) {
	metrics.GateDecisions.WithLabelValues(metrics.OutcomeInvalidRequest).Inc()
	_ = c.Error(err)
	c.Abort()
}
