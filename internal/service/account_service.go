package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/makkenzo/niches-hunter-api/internal/config"
	"github.com/makkenzo/niches-hunter-api/internal/domain/account"
	"github.com/makkenzo/niches-hunter-api/internal/email"
	"github.com/makkenzo/niches-hunter-api/internal/handler/dto"
	"github.com/makkenzo/niches-hunter-api/internal/ierr"
	"github.com/makkenzo/niches-hunter-api/internal/tasks"
	"github.com/makkenzo/niches-hunter-api/internal/util"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const resetTokenBytes = 32

type AccountService struct {
	repo     account.Repository
	mailer   tasks.EmailEnqueuer
	authCfg  config.AuthConfig
	appURL   string
	adminTo  string
	bcryptOp int
	logger   *zap.Logger
	now      func() time.Time
}

func NewAccountService(
	repo account.Repository,
	mailer tasks.EmailEnqueuer,
	authCfg config.AuthConfig,
	appURL string,
	adminAddress string,
	logger *zap.Logger,
) *AccountService {
	return &AccountService{
		repo:     repo,
		mailer:   mailer,
		authCfg:  authCfg,
		appURL:   strings.TrimRight(appURL, "/"),
		adminTo:  adminAddress,
		bcryptOp: bcrypt.DefaultCost,
		logger:   logger.Named("AccountService"),
		now:      time.Now,
	}
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

func (s *AccountService) Signup(ctx context.Context, emailAddr, password string) (*account.Account, error) {
	emailAddr = normalizeEmail(emailAddr)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptOp)
	if err != nil {
		return nil, fmt.Errorf("%w: failed hashing password: %v", ierr.ErrInternalServer, err)
	}

	acc := &account.Account{Email: emailAddr, PasswordHash: string(hash)}
	if _, err := s.repo.Create(ctx, acc); err != nil {
		if errors.Is(err, account.ErrEmailTaken) {
			return nil, fmt.Errorf("%w: %w", ierr.ErrConflict, ierr.ErrEmailTaken)
		}
		s.logger.Error("Failed to create account", zap.Error(err))
		return nil, fmt.Errorf("repository error creating account: %w", err)
	}

	s.logger.Info("Account signed up", zap.String("user_id", acc.ID.String()))
	s.enqueue(ctx, email.WelcomeMessage(acc.Email, s.appURL))
	if s.adminTo != "" {
		s.enqueue(ctx, email.AdminSignupMessage(s.adminTo, acc.Email))
	}
	return acc, nil
}

func (s *AccountService) Login(ctx context.Context, emailAddr, password string) (*account.Account, error) {
	acc, err := s.repo.FindByEmail(ctx, normalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			return nil, fmt.Errorf("%w: %w", ierr.ErrUnauthorized, ierr.ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("repository error finding account: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		s.logger.Info("Invalid login attempt", zap.String("user_id", acc.ID.String()))
		return nil, fmt.Errorf("%w: %w", ierr.ErrUnauthorized, ierr.ErrInvalidCredentials)
	}
	return acc, nil
}

// IssueToken signs a session token for userID.
func (s *AccountService) IssueToken(userID uuid.UUID) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(s.authCfg.SessionTTL)
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.authCfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: failed signing session: %v", ierr.ErrInternalServer, err)
	}
	return signed, expires, nil
}

// ParseToken validates a session token and returns the user id it was issued for.
func (s *AccountService) ParseToken(tokenString string) (uuid.UUID, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.authCfg.JWTSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return uuid.Nil, fmt.Errorf("%w: %w", ierr.ErrUnauthorized, ierr.ErrInvalidToken)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", ierr.ErrUnauthorized, ierr.ErrTokenParsingFailed)
	}
	return userID, nil
}

func (s *AccountService) Session(ctx context.Context, userID uuid.UUID) (*dto.SessionResponse, error) {
	acc, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			return nil, fmt.Errorf("%w: %w", ierr.ErrUnauthorized, ierr.ErrUserNotFound)
		}
		return nil, fmt.Errorf("repository error finding account: %w", err)
	}

	resp := &dto.SessionResponse{
		User: dto.UserResponse{ID: acc.ID, Email: acc.Email, CreatedAt: acc.CreatedAt},
	}
	customer, err := s.customer(ctx, userID)
	if err != nil {
		return nil, err
	}
	if customer != nil {
		resp.Subscription = dto.SubscriptionResponse{
			Active:           customer.IsSubscribed(),
			Status:           string(customer.SubscriptionStatus),
			Plan:             string(customer.Plan),
			CurrentPeriodEnd: customer.CurrentPeriodEnd,
		}
	}
	return resp, nil
}

// IsSubscribed reports whether userID has an active or trialing subscription.
func (s *AccountService) IsSubscribed(ctx context.Context, userID uuid.UUID) (bool, error) {
	customer, err := s.customer(ctx, userID)
	if err != nil {
		return false, err
	}
	return customer.IsSubscribed(), nil
}

func (s *AccountService) customer(ctx context.Context, userID uuid.UUID) (*account.Customer, error) {
	c, err := s.repo.FindCustomer(ctx, userID)
	if err != nil {
		if errors.Is(err, account.ErrCustomerNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("repository error finding customer: %w", err)
	}
	return c, nil
}

// ForgotPassword never reveals whether the address is registered.
func (s *AccountService) ForgotPassword(ctx context.Context, emailAddr string) error {
	acc, err := s.repo.FindByEmail(ctx, normalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			s.logger.Debug("Password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("repository error finding account: %w", err)
	}

	token, tokenHash, err := util.GenerateToken(resetTokenBytes)
	if err != nil {
		return fmt.Errorf("%w: failed generating reset token: %v", ierr.ErrInternalServer, err)
	}
	err = s.repo.CreateResetToken(ctx, &account.PasswordResetToken{
		TokenHash: tokenHash,
		UserID:    acc.ID,
		ExpiresAt: s.now().Add(s.authCfg.ResetTokenTTL),
	})
	if err != nil {
		s.logger.Error("Failed to store reset token", zap.String("user_id", acc.ID.String()), zap.Error(err))
		return fmt.Errorf("repository error storing reset token: %w", err)
	}

	s.enqueue(ctx, email.PasswordResetMessage(acc.Email, s.appURL+"/reset-password?token="+token))
	return nil
}

func (s *AccountService) ResetPassword(ctx context.Context, token, newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptOp)
	if err != nil {
		return fmt.Errorf("%w: failed hashing password: %v", ierr.ErrInternalServer, err)
	}

	userID, err := s.repo.ResetPassword(ctx, util.HashAPIKey(token), string(hash), s.now())
	if err != nil {
		if errors.Is(err, account.ErrResetTokenInvalid) {
			return fmt.Errorf("%w: %w", ierr.ErrValidation, ierr.ErrInvalidToken)
		}
		return fmt.Errorf("repository error resetting password: %w", err)
	}
	s.logger.Info("Password reset", zap.String("user_id", userID.String()))
	return nil
}

func (s *AccountService) enqueue(ctx context.Context, msg email.Message) {
	enqueueEmail(ctx, s.mailer, msg, s.logger)
}

// enqueueEmail queues msg for delivery. Mail is best effort and never fails the caller.
func enqueueEmail(ctx context.Context, mailer tasks.EmailEnqueuer, msg email.Message, logger *zap.Logger) {
	if mailer == nil {
		return
	}
	err := mailer.EnqueueEmail(ctx, tasks.EmailPayload{To: msg.To, Subject: msg.Subject, HTML: msg.HTML})
	if err != nil {
		logger.Warn("Failed to enqueue email", zap.String("subject", msg.Subject), zap.Error(err))
	}
}
