package dto

import (
	"encoding/json"
	"time"

	"github.com/makkenzo/niches-hunter-api/internal/domain/blog"
	"github.com/makkenzo/niches-hunter-api/internal/domain/niche"
)

type ListNichesRequest struct {
	Category string `form:"category" binding:"omitempty,max=64"`
	Country  string `form:"country" binding:"omitempty,max=8"`
	Limit    int    `form:"limit,default=20" binding:"gte=1,lte=100"`
	Offset   int    `form:"offset,default=0" binding:"omitempty,gte=0"`
}

type OpportunitiesRequest struct {
	Limit int `form:"limit,default=10" binding:"gte=1,lte=100"`
}

type RankingsRequest struct {
	Country  string `form:"country" binding:"omitempty,max=8"`
	Category string `form:"category" binding:"omitempty,max=64"`
	Limit    int    `form:"limit,default=25" binding:"gte=1,lte=100"`
}

type NicheResponse struct {
	Code                   string          `json:"code"`
	Title                  string          `json:"title"`
	Category               string          `json:"category"`
	Country                string          `json:"country"`
	Tagline                string          `json:"tagline"`
	Description            string          `json:"description,omitempty"`
	OpportunityScore       int             `json:"opportunity_score"`
	CompetitionLevel       string          `json:"competition_level"`
	MonthlyRevenueEstimate *int64          `json:"monthly_revenue_estimate,omitempty"`
	MarketSize             string          `json:"market_size,omitempty"`
	Trend                  string          `json:"trend,omitempty"`
	KeyInsights            json.RawMessage `json:"key_insights,omitempty" swaggertype:"array,string"`
	Strategy               string          `json:"strategy,omitempty"`
	IsPremium              bool            `json:"is_premium"`
	Locked                 bool            `json:"locked"`
	PublishedAt            time.Time       `json:"published_at"`
}

func NewNicheResponse(n *niche.Niche) *NicheResponse {
	return &NicheResponse{
		Code:                   n.Code,
		Title:                  n.Title,
		Category:               n.Category,
		Country:                n.Country,
		Tagline:                n.Tagline,
		Description:            n.Description,
		OpportunityScore:       n.OpportunityScore,
		CompetitionLevel:       string(n.CompetitionLevel),
		MonthlyRevenueEstimate: n.MonthlyRevenueEstimate,
		MarketSize:             n.MarketSize,
		Trend:                  n.Trend,
		KeyInsights:            n.KeyInsights,
		Strategy:               n.Strategy,
		IsPremium:              n.IsPremium,
		Locked:                 n.Locked,
		PublishedAt:            n.PublishedAt,
	}
}

func NewNicheResponses(items []*niche.Niche) []*NicheResponse {
	out := make([]*NicheResponse, len(items))
	for i, n := range items {
		out[i] = NewNicheResponse(n)
	}
	return out
}

type NicheListResponse struct {
	Niches []*NicheResponse `json:"niches"`
	Total  int64            `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

type RankedNicheResponse struct {
	Rank int `json:"rank"`
	*NicheResponse
}

type RankingsResponse struct {
	Country  string                 `json:"country,omitempty"`
	Category string                 `json:"category,omitempty"`
	Rankings []*RankedNicheResponse `json:"rankings"`
}

type CategoryResponse struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

type ListBlogRequest struct {
	Limit  int `form:"limit,default=12" binding:"gte=1,lte=50"`
	Offset int `form:"offset,default=0" binding:"omitempty,gte=0"`
}

type BlogPostResponse struct {
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Excerpt     string    `json:"excerpt"`
	Body        string    `json:"body,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

func NewBlogPostResponse(p *blog.Post) *BlogPostResponse {
	return &BlogPostResponse{
		Slug:        p.Slug,
		Title:       p.Title,
		Excerpt:     p.Excerpt,
		Body:        p.Body,
		PublishedAt: p.PublishedAt,
	}
}

type SubscribeRequest struct {
	Email  string `json:"email" binding:"required,email,max=254"`
	Source string `json:"source" binding:"omitempty,max=64"`
}

type SubscribeResponse struct {
	Subscribed bool `json:"subscribed"`
	Created    bool `json:"created"`
}
