package service

import (
	"context"
	"fmt"

	"github.com/makkenzo/niches-hunter-api/internal/domain/subscriber"
	"github.com/makkenzo/niches-hunter-api/internal/email"
	"github.com/makkenzo/niches-hunter-api/internal/handler/dto"
	"github.com/makkenzo/niches-hunter-api/internal/tasks"
	"go.uber.org/zap"
)

const defaultSubscribeSource = "website"

type SubscriberService struct {
	repo   subscriber.Repository
	mailer tasks.EmailEnqueuer
	appURL string
	logger *zap.Logger
}

func NewSubscriberService(repo subscriber.Repository, mailer tasks.EmailEnqueuer, appURL string, logger *zap.Logger) *SubscriberService {
	return &SubscriberService{
		repo:   repo,
		mailer: mailer,
		appURL: appURL,
		logger: logger.Named("SubscriberService"),
	}
}

// Subscribe adds emailAddr to the newsletter. Subscribing twice is not an error.
func (s *SubscriberService) Subscribe(ctx context.Context, emailAddr, source string) (*dto.SubscribeResponse, error) {
	if source == "" {
		source = defaultSubscribeSource
	}
	sub := &subscriber.Subscriber{Email: normalizeEmail(emailAddr), Source: source}

	created, err := s.repo.Add(ctx, sub)
	if err != nil {
		return nil, fmt.Errorf("repository error adding subscriber: %w", err)
	}
	if created {
		s.logger.Info("Newsletter subscriber added", zap.String("source", source))
		enqueueEmail(ctx, s.mailer, email.NewsletterWelcomeMessage(sub.Email, s.appURL), s.logger)
	}
	return &dto.SubscribeResponse{Subscribed: true, Created: created}, nil
}
