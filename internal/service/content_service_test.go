package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/makkenzo/niches-hunter-api/internal/domain/account"
	"github.com/makkenzo/niches-hunter-api/internal/domain/blog"
	"github.com/makkenzo/niches-hunter-api/internal/domain/niche"
	"github.com/makkenzo/niches-hunter-api/internal/handler/dto"
	"github.com/makkenzo/niches-hunter-api/internal/ierr"
	"github.com/makkenzo/niches-hunter-api/internal/storage/memstorage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testNiches() []*niche.Niche {
	revenue := int64(12000)
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	return []*niche.Niche{
		{
			Code: "0042", Title: "Pet sitting CRM", Category: "productivity", Country: "US",
			Tagline: "Run a sitting business from one app", Description: "Full write-up",
			OpportunityScore: 81, CompetitionLevel: niche.CompetitionLow, MonthlyRevenueEstimate: &revenue,
			MarketSize: "$40M", KeyInsights: json.RawMessage(`["few incumbents"]`), Strategy: "SEO first",
			IsPremium: true, PublishedAt: base,
		},
		{
			Code: "0043", Title: "Habit tracker for runners", Category: "health", Country: "FR",
			Tagline: "Stay on plan", Description: "Free write-up", OpportunityScore: 64,
			CompetitionLevel: niche.CompetitionHigh, PublishedAt: base.Add(24 * time.Hour),
		},
		{
			Code: "0044", Title: "Meal planner", Category: "health", Country: "US",
			Tagline: "Plan the week", Description: "Another write-up", OpportunityScore: 90,
			CompetitionLevel: niche.CompetitionMedium, IsPremium: true, PublishedAt: base.Add(48 * time.Hour),
		},
	}
}

func newContentService(t *testing.T) (*ContentService, *memstorage.AccountRepository) {
	t.Helper()
	accounts := memstorage.NewAccountRepository()
	subs := NewAccountService(accounts, nil, testAuthConfig(), "", "", zap.NewNop())
	posts := memstorage.NewBlogRepository(
		&blog.Post{ID: uuid.New(), Slug: "finding-niches", Title: "Finding niches", Excerpt: "How", Body: "Long body", PublishedAt: time.Now().Add(-time.Hour)},
	)
	return NewContentService(memstorage.NewNicheRepository(testNiches()...), posts, subs, zap.NewNop()), accounts
}

func TestGetNiche_LockPolicy(t *testing.T) {
	svc, accounts := newContentService(t)
	ctx := context.Background()

	locked, err := svc.GetNiche(ctx, uuid.Nil, "0042")
	require.NoError(t, err)
	assert.True(t, locked.Locked)
	assert.Equal(t, "Pet sitting CRM", locked.Title)
	assert.Equal(t, 81, locked.OpportunityScore)
	assert.Equal(t, "Run a sitting business from one app", locked.Tagline)
	assert.Empty(t, locked.Description)
	assert.Empty(t, locked.Strategy)
	assert.Nil(t, locked.KeyInsights)
	assert.Nil(t, locked.MonthlyRevenueEstimate)
	assert.Empty(t, locked.MarketSize)

	free, err := svc.GetNiche(ctx, uuid.Nil, "0043")
	require.NoError(t, err)
	assert.False(t, free.Locked)
	assert.Equal(t, "Free write-up", free.Description)

	acc := accounts.AddAccount("paid@example.com", "password123")
	require.NoError(t, accounts.UpsertCustomer(ctx, &account.Customer{UserID: acc.ID, SubscriptionStatus: account.SubscriptionActive}))
	unlocked, err := svc.GetNiche(ctx, acc.ID, "0042")
	require.NoError(t, err)
	assert.False(t, unlocked.Locked)
	assert.Equal(t, "Full write-up", unlocked.Description)

	_, err = svc.GetNiche(ctx, uuid.Nil, "9999")
	assert.ErrorIs(t, err, ierr.ErrNotFound)
}

func TestListNiches_LocksPremiumForAnonymous(t *testing.T) {
	svc, _ := newContentService(t)

	resp, err := svc.ListNiches(context.Background(), uuid.Nil, dto.ListNichesRequest{Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.Total)
	for _, n := range resp.Niches {
		assert.Equal(t, n.IsPremium, n.Locked, n.Code)
	}
}

func TestAPIListNiches_FullFields(t *testing.T) {
	svc, _ := newContentService(t)

	resp, err := svc.APIListNiches(context.Background(), dto.ListNichesRequest{Category: "health", Limit: 20})
	require.NoError(t, err)
	require.Len(t, resp.Niches, 2)
	assert.Equal(t, "0044", resp.Niches[0].Code, "newest first")
	for _, n := range resp.Niches {
		assert.False(t, n.Locked)
		assert.NotEmpty(t, n.Description)
	}
}

func TestOpportunitiesAndRankings(t *testing.T) {
	svc, _ := newContentService(t)
	ctx := context.Background()

	opps, err := svc.Opportunities(ctx, 2)
	require.NoError(t, err)
	require.Len(t, opps, 2)
	assert.Equal(t, "0044", opps[0].Code)
	assert.Equal(t, "0042", opps[1].Code)

	_, err = svc.Rankings(ctx, dto.RankingsRequest{Limit: 25})
	assert.ErrorIs(t, err, ierr.ErrValidation)

	ranked, err := svc.Rankings(ctx, dto.RankingsRequest{Country: "US", Limit: 25})
	require.NoError(t, err)
	require.Len(t, ranked.Rankings, 2)
	assert.Equal(t, 1, ranked.Rankings[0].Rank)
	assert.Equal(t, "0044", ranked.Rankings[0].Code)
	assert.Equal(t, 2, ranked.Rankings[1].Rank)

	cats, err := svc.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "health", cats[0].Name)
	assert.Equal(t, int64(2), cats[0].Count)
}

func TestBlog(t *testing.T) {
	svc, _ := newContentService(t)
	ctx := context.Background()

	posts, err := svc.ListPosts(ctx, dto.ListBlogRequest{Limit: 10})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Empty(t, posts[0].Body)

	post, err := svc.GetPost(ctx, "finding-niches")
	require.NoError(t, err)
	assert.Equal(t, "Long body", post.Body)

	_, err = svc.GetPost(ctx, "missing")
	assert.ErrorIs(t, err, ierr.ErrNotFound)
}
