package niche

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type CompetitionLevel string

const (
	CompetitionLow    CompetitionLevel = "low"
	CompetitionMedium CompetitionLevel = "medium"
	CompetitionHigh   CompetitionLevel = "high"
)

type Niche struct {
	ID                     uuid.UUID        `db:"id"`
	Code                   string           `db:"code"`
	Title                  string           `db:"title"`
	Category               string           `db:"category"`
	Country                string           `db:"country"`
	Tagline                string           `db:"tagline"`
	Description            string           `db:"description"`
	OpportunityScore       int              `db:"opportunity_score"`
	CompetitionLevel       CompetitionLevel `db:"competition_level"`
	MonthlyRevenueEstimate *int64           `db:"monthly_revenue_estimate"`
	MarketSize             string           `db:"market_size"`
	Trend                  string           `db:"trend"`
	KeyInsights            json.RawMessage  `db:"key_insights"`
	Strategy               string           `db:"strategy"`
	IsPremium              bool             `db:"is_premium"`
	Locked                 bool             `db:"-"`
	PublishedAt            time.Time        `db:"published_at"`
	CreatedAt              time.Time        `db:"created_at"`
}

// Lock hides the paid fields of a premium niche. Identity and teaser fields
// (code, title, category, country, tagline, score) stay visible.
func (n *Niche) Lock() {
	n.Description = ""
	n.KeyInsights = nil
	n.Strategy = ""
	n.MonthlyRevenueEstimate = nil
	n.MarketSize = ""
	n.Locked = true
}

// LockUnlessEntitled applies Lock to premium niches when the caller is not subscribed.
func LockUnlessEntitled(items []*Niche, subscribed bool) {
	if subscribed {
		return
	}
	for _, n := range items {
		if n.IsPremium {
			n.Lock()
		}
	}
}

type Category struct {
	Name  string `db:"category"`
	Count int64  `db:"count"`
}

type Ranked struct {
	Rank  int
	Niche *Niche
}

type ListParams struct {
	Category string
	Country  string
	Limit    int
	Offset   int
	// OrderByScore sorts by opportunity score instead of publication date.
	OrderByScore bool
}
