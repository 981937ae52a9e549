package lifecycle

import (
	"sort"
	"time"

	"campusmarket/internal/domain"
)

const (
	maxRecency    = 2.0
	maxReputation = 1.0
	maxQuality    = 2.5
	maxEngagement = 3.5

	// recency halves after this many days
	recencyHalfLife = 7.0
	minDescription  = 40
)

type ScoreInput struct {
	PublishedAt    time.Time
	SellerRating   float64 // mean 0..5
	SellerReviews  int
	HasImage       bool
	DescriptionLen int
	Type           domain.TransactionType
	PriceCents     *int64
	Favorites      int
	Interests      int
}

// saturate maps n >= 0 onto [0,1) with diminishing returns; k is the count
// that yields one half.
func saturate(n, k float64) float64 {
	if n <= 0 {
		return 0
	}
	return n / (n + k)
}

func recency(published, now time.Time) float64 {
	age := now.Sub(published).Hours() / 24
	if age < 0 {
		age = 0
	}
	return maxRecency / (1 + age/recencyHalfLife)
}

func reputation(avg float64, count int) float64 {
	if avg < 0 {
		avg = 0
	}
	if avg > 5 {
		avg = 5
	}
	return 0.7*(avg/5) + 0.3*saturate(float64(count), 5)
}

func quality(in ScoreInput) float64 {
	s := 0.0
	if in.HasImage {
		s += 1.0
	}
	if in.DescriptionLen >= minDescription {
		s += 0.75
	}
	// only sales carry a price; other listings get the credit outright
	if in.Type != domain.Sale || (in.PriceCents != nil && *in.PriceCents > 0) {
		s += 0.75
	}
	return s
}

func engagement(favorites, interests int) float64 {
	return 1.5*saturate(float64(favorites), 3) + 2.0*saturate(float64(interests), 2)
}

// Score is the sum of four bounded components; the ceilings are 2, 1, 2.5 and 3.5.
func Score(in ScoreInput, now time.Time) float64 {
	return recency(in.PublishedAt, now) +
		reputation(in.SellerRating, in.SellerReviews) +
		quality(in) +
		engagement(in.Favorites, in.Interests)
}

type Scored struct {
	Score       float64
	PublishedAt time.Time
	Index       int
}

// Rank returns indexes of inputs ordered by score desc, newest first on ties.
func Rank(inputs []ScoreInput, now time.Time) []int {
	scored := make([]Scored, len(inputs))
	for i, in := range inputs {
		scored[i] = Scored{Score: Score(in, now), PublishedAt: in.PublishedAt, Index: i}
	}
	sort.SliceStable(scored, func(a, b int) bool {
		if scored[a].Score != scored[b].Score {
			return scored[a].Score > scored[b].Score
		}
		return scored[a].PublishedAt.After(scored[b].PublishedAt)
	})
	out := make([]int, len(scored))
	for i, s := range scored {
		out[i] = s.Index
	}
	return out
}
