package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/makkenzo/niches-hunter-api/internal/domain/blog"
	"github.com/makkenzo/niches-hunter-api/internal/domain/niche"
	"github.com/makkenzo/niches-hunter-api/internal/handler/dto"
	"github.com/makkenzo/niches-hunter-api/internal/ierr"
	"go.uber.org/zap"
)

// SubscriptionChecker reports whether a user holds an active subscription.
type SubscriptionChecker interface {
	IsSubscribed(ctx context.Context, userID uuid.UUID) (bool, error)
}

type ContentService struct {
	niches niche.Repository
	posts  blog.Repository
	subs   SubscriptionChecker
	logger *zap.Logger
}

func NewContentService(niches niche.Repository, posts blog.Repository, subs SubscriptionChecker, logger *zap.Logger) *ContentService {
	return &ContentService{
		niches: niches,
		posts:  posts,
		subs:   subs,
		logger: logger.Named("ContentService"),
	}
}

// entitled resolves the viewer's subscription. Anonymous viewers pass uuid.Nil.
func (s *ContentService) entitled(ctx context.Context, viewer uuid.UUID) bool {
	if viewer == uuid.Nil || s.subs == nil {
		return false
	}
	ok, err := s.subs.IsSubscribed(ctx, viewer)
	if err != nil {
		s.logger.Warn("Could not resolve subscription, serving locked content", zap.String("user_id", viewer.String()), zap.Error(err))
		return false
	}
	return ok
}

// ListNiches serves the public catalogue with premium niches locked for non-subscribers.
func (s *ContentService) ListNiches(ctx context.Context, viewer uuid.UUID, req dto.ListNichesRequest) (*dto.NicheListResponse, error) {
	return s.listNiches(ctx, req, func(items []*niche.Niche) {
		niche.LockUnlessEntitled(items, s.entitled(ctx, viewer))
	})
}

func (s *ContentService) GetNiche(ctx context.Context, viewer uuid.UUID, code string) (*dto.NicheResponse, error) {
	n, err := s.findNiche(ctx, code)
	if err != nil {
		return nil, err
	}
	niche.LockUnlessEntitled([]*niche.Niche{n}, s.entitled(ctx, viewer))
	return dto.NewNicheResponse(n), nil
}

// APIListNiches is the metered, unlocked listing.
func (s *ContentService) APIListNiches(ctx context.Context, req dto.ListNichesRequest) (*dto.NicheListResponse, error) {
	return s.listNiches(ctx, req, nil)
}

func (s *ContentService) APIGetNiche(ctx context.Context, code string) (*dto.NicheResponse, error) {
	n, err := s.findNiche(ctx, code)
	if err != nil {
		return nil, err
	}
	return dto.NewNicheResponse(n), nil
}

func (s *ContentService) Opportunities(ctx context.Context, limit int) ([]*dto.NicheResponse, error) {
	items, _, err := s.niches.List(ctx, niche.ListParams{Limit: limit, OrderByScore: true})
	if err != nil {
		return nil, fmt.Errorf("repository error listing opportunities: %w", err)
	}
	return dto.NewNicheResponses(items), nil
}

// ValidateRankings rejects a rankings query with neither filter set.
func ValidateRankings(req dto.RankingsRequest) error {
	if req.Country == "" && req.Category == "" {
		return fmt.Errorf("%w: country or category is required", ierr.ErrValidation)
	}
	return nil
}

func (s *ContentService) Rankings(ctx context.Context, req dto.RankingsRequest) (*dto.RankingsResponse, error) {
	if err := ValidateRankings(req); err != nil {
		return nil, err
	}
	items, _, err := s.niches.List(ctx, niche.ListParams{
		Country:      req.Country,
		Category:     req.Category,
		Limit:        req.Limit,
		OrderByScore: true,
	})
	if err != nil {
		return nil, fmt.Errorf("repository error listing rankings: %w", err)
	}

	resp := &dto.RankingsResponse{
		Country:  req.Country,
		Category: req.Category,
		Rankings: make([]*dto.RankedNicheResponse, len(items)),
	}
	for i, n := range items {
		resp.Rankings[i] = &dto.RankedNicheResponse{Rank: i + 1, NicheResponse: dto.NewNicheResponse(n)}
	}
	return resp, nil
}

func (s *ContentService) Categories(ctx context.Context) ([]*dto.CategoryResponse, error) {
	cats, err := s.niches.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("repository error listing categories: %w", err)
	}
	out := make([]*dto.CategoryResponse, len(cats))
	for i, c := range cats {
		out[i] = &dto.CategoryResponse{Name: c.Name, Count: c.Count}
	}
	return out, nil
}

func (s *ContentService) ListPosts(ctx context.Context, req dto.ListBlogRequest) ([]*dto.BlogPostResponse, error) {
	posts, err := s.posts.List(ctx, req.Limit, req.Offset)
	if err != nil {
		return nil, fmt.Errorf("repository error listing blog posts: %w", err)
	}
	out := make([]*dto.BlogPostResponse, len(posts))
	for i, p := range posts {
		out[i] = dto.NewBlogPostResponse(p)
		out[i].Body = ""
	}
	return out, nil
}

func (s *ContentService) GetPost(ctx context.Context, slug string) (*dto.BlogPostResponse, error) {
	p, err := s.posts.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, blog.ErrNotFound) {
			return nil, fmt.Errorf("%w: blog post %q", ierr.ErrNotFound, slug)
		}
		return nil, fmt.Errorf("repository error finding blog post: %w", err)
	}
	return dto.NewBlogPostResponse(p), nil
}

func (s *ContentService) listNiches(ctx context.Context, req dto.ListNichesRequest, prepare func([]*niche.Niche)) (*dto.NicheListResponse, error) {
	items, total, err := s.niches.List(ctx, niche.ListParams{
		Category: req.Category,
		Country:  req.Country,
		Limit:    req.Limit,
		Offset:   req.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("repository error listing niches: %w", err)
	}
	if prepare != nil {
		prepare(items)
	}
	return &dto.NicheListResponse{
		Niches: dto.NewNicheResponses(items),
		Total:  total,
		Limit:  req.Limit,
		Offset: req.Offset,
	}, nil
}

func (s *ContentService) findNiche(ctx context.Context, code string) (*niche.Niche, error) {
	n, err := s.niches.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, niche.ErrNotFound) {
			return nil, fmt.Errorf("%w: niche %q", ierr.ErrNotFound, code)
		}
		return nil, fmt.Errorf("repository error finding niche: %w", err)
	}
	return n, nil
}
