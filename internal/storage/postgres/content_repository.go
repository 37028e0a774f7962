package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/makkenzo/niches-hunter-api/internal/domain/blog"
	"github.com/makkenzo/niches-hunter-api/internal/domain/niche"
	"go.uber.org/zap"
)

const nicheColumns = `id, code, title, category, country, tagline, description, opportunity_score,
	competition_level, monthly_revenue_estimate, market_size, trend, key_insights, strategy,
	is_premium, published_at, created_at`

type NicheRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewNicheRepository(db *pgxpool.Pool, logger *zap.Logger) *NicheRepository {
	return &NicheRepository{
		db:     db,
		logger: logger.Named("NicheRepository"),
	}
}

var _ niche.Repository = (*NicheRepository)(nil)

func (r *NicheRepository) List(ctx context.Context, params niche.ListParams) ([]*niche.Niche, int64, error) {
	var where []string
	var args []any
	if params.Category != "" {
		args = append(args, params.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	if params.Country != "" {
		args = append(args, params.Country)
		where = append(where, fmt.Sprintf("country = $%d", len(args)))
	}
	whereSQL := ""
	if len(where) > 0 {
		whereSQL = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM niches`+whereSQL, args...).Scan(&total); err != nil {
		r.logger.Error("Failed to count niches", zap.Error(err))
		return nil, 0, fmt.Errorf("db error counting niches: %w", err)
	}

	order := " ORDER BY published_at DESC, code"
	if params.OrderByScore {
		order = " ORDER BY opportunity_score DESC, code"
	}
	args = append(args, params.Limit, params.Offset)
	query := `SELECT ` + nicheColumns + ` FROM niches` + whereSQL + order +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list niches", zap.Error(err))
		return nil, 0, fmt.Errorf("db error listing niches: %w", err)
	}
	defer rows.Close()

	items := make([]*niche.Niche, 0, params.Limit)
	for rows.Next() {
		n, err := scanNiche(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("db error scanning niche: %w", err)
		}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("db error iterating niches: %w", err)
	}
	return items, total, nil
}

func (r *NicheRepository) FindByCode(ctx context.Context, code string) (*niche.Niche, error) {
	n, err := scanNiche(r.db.QueryRow(ctx, `SELECT `+nicheColumns+` FROM niches WHERE code = $1`, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, niche.ErrNotFound
		}
		r.logger.Error("Failed to find niche", zap.String("code", code), zap.Error(err))
		return nil, fmt.Errorf("db error finding niche: %w", err)
	}
	return n, nil
}

func (r *NicheRepository) Categories(ctx context.Context) ([]*niche.Category, error) {
	rows, err := r.db.Query(ctx, `
		SELECT category, COUNT(*)
		FROM niches
		GROUP BY category
		ORDER BY COUNT(*) DESC, category
	`)
	if err != nil {
		return nil, fmt.Errorf("db error listing categories: %w", err)
	}
	defer rows.Close()

	out := make([]*niche.Category, 0)
	for rows.Next() {
		var c niche.Category
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			return nil, fmt.Errorf("db error scanning category: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func scanNiche(row pgx.Row) (*niche.Niche, error) {
	var n niche.Niche
	var revenue sql.NullInt64
	var insights []byte
	var competition string
	err := row.Scan(
		&n.ID,
		&n.Code,
		&n.Title,
		&n.Category,
		&n.Country,
		&n.Tagline,
		&n.Description,
		&n.OpportunityScore,
		&competition,
		&revenue,
		&n.MarketSize,
		&n.Trend,
		&insights,
		&n.Strategy,
		&n.IsPremium,
		&n.PublishedAt,
		&n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	n.CompetitionLevel = niche.CompetitionLevel(competition)
	if revenue.Valid {
		n.MonthlyRevenueEstimate = &revenue.Int64
	}
	if len(insights) > 0 {
		n.KeyInsights = json.RawMessage(insights)
	}
	return &n, nil
}

type BlogRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewBlogRepository(db *pgxpool.Pool, logger *zap.Logger) *BlogRepository {
	return &BlogRepository{
		db:     db,
		logger: logger.Named("BlogRepository"),
	}
}

var _ blog.Repository = (*BlogRepository)(nil)

func (r *BlogRepository) List(ctx context.Context, limit, offset int) ([]*blog.Post, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, slug, title, excerpt, '' AS body, published_at
		FROM blog_posts
		WHERE published_at <= NOW()
		ORDER BY published_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list blog posts", zap.Error(err))
		return nil, fmt.Errorf("db error listing blog posts: %w", err)
	}
	defer rows.Close()

	posts := make([]*blog.Post, 0, limit)
	for rows.Next() {
		var p blog.Post
		if err := rows.Scan(&p.ID, &p.Slug, &p.Title, &p.Excerpt, &p.Body, &p.PublishedAt); err != nil {
			return nil, fmt.Errorf("db error scanning blog post: %w", err)
		}
		posts = append(posts, &p)
	}
	return posts, rows.Err()
}

func (r *BlogRepository) FindBySlug(ctx context.Context, slug string) (*blog.Post, error) {
	var p blog.Post
	err := r.db.QueryRow(ctx, `
		SELECT id, slug, title, excerpt, body, published_at
		FROM blog_posts
		WHERE slug = $1 AND published_at <= NOW()
	`, slug).Scan(&p.ID, &p.Slug, &p.Title, &p.Excerpt, &p.Body, &p.PublishedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, blog.ErrNotFound
		}
		return nil, fmt.Errorf("db error finding blog post: %w", err)
	}
	return &p, nil
}
