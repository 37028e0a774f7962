package ierr

import "errors"

var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrUpdateFailed    = errors.New("resource update failed")
	ErrNotFound        = errors.New("resource not found")
	ErrConflict        = errors.New("resource conflict")
	ErrPaymentRequired = errors.New("payment required")
	ErrRateLimited     = errors.New("rate limit exceeded")
	ErrUpstream        = errors.New("upstream service failed")
	ErrInternalServer  = errors.New("internal server error")

	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrInvalidToken         = errors.New("invalid or expired token")
	ErrTokenParsingFailed   = errors.New("failed to parse token")
	ErrEmailTaken           = errors.New("email already registered")
	ErrAPIKeyNotFound       = errors.New("api key not found or disabled")
	ErrAPIKeyLimitReached   = errors.New("maximum number of active api keys reached")
	ErrWalletNotFound       = errors.New("wallet not found")
	ErrInsufficientFunds    = errors.New("insufficient credits")
	ErrSubscriptionRequired = errors.New("active subscription required")
	ErrNoBillingAccount     = errors.New("no billing account")
)
