package memstorage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/makkenzo/niches-hunter-api/internal/domain/blog"
	"github.com/makkenzo/niches-hunter-api/internal/domain/niche"
)

type NicheRepository struct {
	mu     sync.RWMutex
	niches []*niche.Niche
}

// NewNicheRepository stores copies of the given niches.
func NewNicheRepository(seed ...*niche.Niche) *NicheRepository {
	r := &NicheRepository{}
	for _, n := range seed {
		nCopy := *n
		r.niches = append(r.niches, &nCopy)
	}
	return r
}

var _ niche.Repository = (*NicheRepository)(nil)

func (r *NicheRepository) List(ctx context.Context, params niche.ListParams) ([]*niche.Niche, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*niche.Niche, 0)
	for _, n := range r.niches {
		if params.Category != "" && n.Category != params.Category {
			continue
		}
		if params.Country != "" && n.Country != params.Country {
			continue
		}
		nCopy := *n
		matched = append(matched, &nCopy)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if params.OrderByScore {
			if a.OpportunityScore != b.OpportunityScore {
				return a.OpportunityScore > b.OpportunityScore
			}
			return a.Code < b.Code
		}
		if !a.PublishedAt.Equal(b.PublishedAt) {
			return a.PublishedAt.After(b.PublishedAt)
		}
		return a.Code < b.Code
	})

	total := int64(len(matched))
	start := min(params.Offset, len(matched))
	end := len(matched)
	if params.Limit > 0 {
		end = min(start+params.Limit, len(matched))
	}
	return matched[start:end], total, nil
}

func (r *NicheRepository) FindByCode(ctx context.Context, code string) (*niche.Niche, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, n := range r.niches {
		if n.Code == code {
			nCopy := *n
			return &nCopy, nil
		}
	}
	return nil, niche.ErrNotFound
}

func (r *NicheRepository) Categories(ctx context.Context) ([]*niche.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int64)
	for _, n := range r.niches {
		counts[n.Category]++
	}
	out := make([]*niche.Category, 0, len(counts))
	for name, count := range counts {
		out = append(out, &niche.Category{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

type BlogRepository struct {
	mu    sync.RWMutex
	posts []*blog.Post
}

func NewBlogRepository(seed ...*blog.Post) *BlogRepository {
	r := &BlogRepository{}
	for _, p := range seed {
		pCopy := *p
		r.posts = append(r.posts, &pCopy)
	}
	return r
}

var _ blog.Repository = (*BlogRepository)(nil)

func (r *BlogRepository) List(ctx context.Context, limit, offset int) ([]*blog.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := time.Now()
	out := make([]*blog.Post, 0)
	for _, p := range r.posts {
		if p.PublishedAt.After(now) {
			continue
		}
		pCopy := *p
		pCopy.Body = ""
		out = append(out, &pCopy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PublishedAt.After(out[j].PublishedAt) })

	start := min(offset, len(out))
	end := len(out)
	if limit > 0 {
		end = min(start+limit, len(out))
	}
	return out[start:end], nil
}

func (r *BlogRepository) FindBySlug(ctx context.Context, slug string) (*blog.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.posts {
		if p.Slug == slug && !p.PublishedAt.After(time.Now()) {
			pCopy := *p
			return &pCopy, nil
		}
	}
	return nil, blog.ErrNotFound
}
