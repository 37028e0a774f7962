package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/makkenzo/niches-hunter-api/internal/handler/dto"
	"github.com/makkenzo/niches-hunter-api/internal/ierr"
	"github.com/makkenzo/niches-hunter-api/internal/service"
	"github.com/makkenzo/niches-hunter-api/internal/util"
	"go.uber.org/zap"
)

func ErrorHandlerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("ErrorHandler")
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status, errResponse := buildErrorResponse(err)

		if status >= http.StatusInternalServerError {
			log.Error("Request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		} else {
			log.Debug("Request rejected", zap.Int("status", status), zap.String("path", c.Request.URL.Path), zap.Error(err))
		}

		c.AbortWithStatusJSON(status, errResponse)
	}
}

func buildErrorResponse(err error) (int, dto.APIErrorResponse) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return http.StatusBadRequest, dto.APIErrorResponse{
			Error:   "Input validation failed.",
			Code:    "VALIDATION_ERROR",
			Details: buildValidationErrors(ve),
		}
	}

	var insufficient *service.InsufficientFundsError
	if errors.As(err, &insufficient) {
		return http.StatusPaymentRequired, dto.APIErrorResponse{
			Error:    "Insufficient API credits.",
			Code:     "INSUFFICIENT_CREDITS",
			Balance:  util.CentsToDollars(insufficient.BalanceCents),
			Cost:     util.CentsToDollars(insufficient.CostCents),
			TopUpURL: insufficient.TopUpURL,
		}
	}

	switch {
	case errors.Is(err, ierr.ErrValidation):
		return http.StatusBadRequest, dto.APIErrorResponse{Error: err.Error(), Code: "VALIDATION_ERROR"}
	case errors.Is(err, ierr.ErrUnauthorized), errors.Is(err, ierr.ErrInvalidCredentials), errors.Is(err, ierr.ErrInvalidToken):
		msg := "Authentication required or failed."
		if errors.Is(err, ierr.ErrInvalidCredentials) {
			msg = ierr.ErrInvalidCredentials.Error()
		}
		return http.StatusUnauthorized, dto.APIErrorResponse{Error: msg, Code: "UNAUTHENTICATED"}
	case errors.Is(err, ierr.ErrRateLimited):
		return http.StatusTooManyRequests, dto.APIErrorResponse{Error: "Rate limit exceeded.", Code: "RATE_LIMITED"}
	case errors.Is(err, ierr.ErrInsufficientFunds):
		return http.StatusPaymentRequired, dto.APIErrorResponse{Error: "Insufficient API credits.", Code: "INSUFFICIENT_CREDITS"}
	case errors.Is(err, ierr.ErrSubscriptionRequired), errors.Is(err, ierr.ErrPaymentRequired):
		return http.StatusPaymentRequired, dto.APIErrorResponse{Error: ierr.ErrSubscriptionRequired.Error(), Code: "PAYMENT_REQUIRED"}
	// Rows owned by someone else are reported exactly like missing ones.
	case errors.Is(err, ierr.ErrForbidden), errors.Is(err, ierr.ErrNotFound), errors.Is(err, ierr.ErrUserNotFound):
		msg := "The requested resource was not found."
		if errors.Is(err, ierr.ErrNoBillingAccount) {
			msg = "No billing account for this user."
		}
		return http.StatusNotFound, dto.APIErrorResponse{Error: msg, Code: "NOT_FOUND"}
	case errors.Is(err, ierr.ErrConflict):
		return http.StatusConflict, dto.APIErrorResponse{Error: err.Error(), Code: "CONFLICT"}
	case errors.Is(err, ierr.ErrUpstream):
		return http.StatusInternalServerError, dto.APIErrorResponse{Error: "An upstream service failed.", Code: "UPSTREAM_ERROR"}
	default:
		return http.StatusInternalServerError, dto.APIErrorResponse{Error: "An unexpected error occurred.", Code: "INTERNAL_ERROR"}
	}
}

func buildValidationErrors(ve validator.ValidationErrors) []dto.FieldError {
	details := make([]dto.FieldError, len(ve))
	for i, fe := range ve {
		details[i] = dto.FieldError{
			Field:   fe.Field(),
			Message: getValidationErrorMsg(fe),
		}
	}
	return details
}

func getValidationErrorMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Field '%s' is required", fe.Field())
	case "email":
		return fmt.Sprintf("Field '%s' must be a valid email address", fe.Field())
	case "oneof":
		return fmt.Sprintf("Field '%s' must be one of [%s]", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("Field '%s' must be at least %s long", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("Field '%s' must be at most %s long", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("Field '%s' must be greater than or equal to %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("Field '%s' must be less than or equal to %s", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("Field '%s' must be greater than %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("Field '%s' failed validation on the '%s' tag", fe.Field(), fe.Tag())
	}
}
