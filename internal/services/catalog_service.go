package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"campusmarket/internal/domain"
	"campusmarket/internal/lifecycle"
	"campusmarket/internal/repos"
	"campusmarket/internal/validate"
)

// catalogNS is the cache namespace bumped by every write that can change
// what the catalog shows.
const catalogNS = "catalog"

const (
	SortRecommended = "recommended"
	SortRecent      = "recent"
	SortPriceAsc    = "price_asc"
	SortPriceDesc   = "price_desc"

	defaultPageSize = 12
	maxPageSize     = 48
	// recommendedPool bounds how many active listings are scored per request.
	recommendedPool = 500
)

type SearchParams struct {
	Q         string
	Category  string
	Type      string
	Condition string
	Sort      string
	Page      int
	PageSize  int
}

type SearchResult struct {
	Items    []ItemView `json:"items"`
	Page     int        `json:"page"`
	PageSize int        `json:"pageSize"`
}

type CatalogService struct {
	*Env
}

func NewCatalogService(env *Env) *CatalogService { return &CatalogService{Env: env} }

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var cats []domain.Category
	if s.Cache.Get(ctx, "categories", &cats) {
		return cats, nil
	}
	cats, err := s.Store.Categories.List(ctx)
	if err != nil {
		return nil, Internal("catalog.categories", err)
	}
	s.Cache.Set(ctx, "categories", cats)
	return cats, nil
}

// filter validates p into a repository filter. Blank fields mean "any".
func (p SearchParams) filter() (repos.ItemFilter, SearchParams, error) {
	var f repos.ItemFilter
	if strings.TrimSpace(p.Q) != "" {
		q, ok := validate.Q(p.Q)
		if !ok {
			return f, p, Validation("invalid search query")
		}
		f.Q = strings.ToLower(q)
	}
	if strings.TrimSpace(p.Category) != "" {
		id, ok := validate.ID(p.Category)
		if !ok {
			return f, p, Validation("invalid category")
		}
		f.CategoryID = id
	}
	if p.Type != "" {
		t := domain.TransactionType(strings.ToUpper(p.Type))
		if !t.Valid() {
			return f, p, Validation("invalid type")
		}
		f.Type = t
	}
	if p.Condition != "" {
		c := domain.Condition(strings.ToUpper(p.Condition))
		if !c.Valid() {
			return f, p, Validation("invalid condition")
		}
		f.Condition = c
	}
	switch p.Sort {
	case "":
		p.Sort = SortRecommended
	case SortRecommended, SortRecent, SortPriceAsc, SortPriceDesc:
	default:
		return f, p, Validation("invalid sort")
	}
	f.Sort = p.Sort
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = defaultPageSize
	}
	if p.PageSize > maxPageSize {
		p.PageSize = maxPageSize
	}
	f.Limit, f.Offset = p.PageSize, (p.Page-1)*p.PageSize
	return f, p, nil
}

// Search lists active listings. The recommended order scores a bounded pool
// in memory on every request; the others are ordered by the database.
func (s *CatalogService) Search(ctx context.Context, p SearchParams) (SearchResult, error) {
	f, p, err := p.filter()
	if err != nil {
		return SearchResult{}, err
	}
	key := fmt.Sprintf("search:%d:%+v", s.Cache.Gen(ctx, catalogNS), f)
	var cached SearchResult
	if s.Cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	now := s.now()
	var rows []domain.ItemSummary
	if f.Sort == SortRecommended {
		page := f
		page.Limit, page.Offset = recommendedPool, 0
		all, err := s.Store.Items.SearchActive(ctx, page, now)
		if err != nil {
			return SearchResult{}, Internal("catalog.search", err)
		}
		rows = pageOf(recommend(all, now), f.Offset, f.Limit)
	} else {
		rows, err = s.Store.Items.SearchActive(ctx, f, now)
		if err != nil {
			return SearchResult{}, Internal("catalog.search", err)
		}
	}

	out := SearchResult{Items: make([]ItemView, 0, len(rows)), Page: p.Page, PageSize: p.PageSize}
	for _, r := range rows {
		out.Items = append(out.Items, viewOf(r, now))
	}
	s.Cache.Set(ctx, key, out)
	return out, nil
}

func scoreInputOf(it domain.ItemSummary) lifecycle.ScoreInput {
	in := lifecycle.ScoreInput{
		PublishedAt:    it.CreatedAt,
		SellerRating:   it.SellerRating,
		SellerReviews:  it.SellerReviews,
		HasImage:       it.PrimaryImage != "",
		DescriptionLen: len([]rune(it.Description)),
		Type:           it.Type,
		PriceCents:     it.PriceCents,
		Favorites:      it.FavoriteCount,
		Interests:      it.InterestCount,
	}
	if it.PublishedAt != nil {
		in.PublishedAt = *it.PublishedAt
	}
	return in
}

func recommend(items []domain.ItemSummary, now time.Time) []domain.ItemSummary {
	inputs := make([]lifecycle.ScoreInput, len(items))
	for i, it := range items {
		inputs[i] = scoreInputOf(it)
	}
	out := make([]domain.ItemSummary, len(items))
	for i, idx := range lifecycle.Rank(inputs, now) {
		out[i] = items[idx]
	}
	return out
}

func pageOf(items []domain.ItemSummary, offset, limit int) []domain.ItemSummary {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
