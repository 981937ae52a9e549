package services

import (
	"context"

	"campusmarket/internal/domain"
	"campusmarket/internal/events"
	"campusmarket/internal/lifecycle"
	applog "campusmarket/internal/log"
	"campusmarket/internal/repos"
	"campusmarket/internal/validate"
)

type Dashboard struct {
	Published []ItemView `json:"published"`
	Finalized []ItemView `json:"finalized"`
	Inactive  []ItemView `json:"inactive"`
	Expired   []ItemView `json:"expired"`
}

type DashboardService struct {
	*Env
}

func NewDashboardService(env *Env) *DashboardService { return &DashboardService{Env: env} }

// RefreshExpired stores EXPIRED on every published listing of userID whose
// expiry has passed. Idempotent.
func (s *DashboardService) RefreshExpired(ctx context.Context, userID string) error {
	n, err := s.Store.Items.RefreshExpired(ctx, userID, s.now())
	if err != nil {
		return Internal("dashboard.refresh", err)
	}
	if n > 0 {
		s.Metrics.AddExpired(n)
		s.Cache.Bump(ctx, catalogNS)
		applog.With("dashboard.refresh", map[string]any{"user_id": userID, "expired": n}).Info("listings expired")
	}
	return nil
}

// Get reconciles stored status first, then buckets by effective status.
// Drafts have no bucket.
func (s *DashboardService) Get(ctx context.Context, userID string) (Dashboard, error) {
	if err := s.RefreshExpired(ctx, userID); err != nil {
		return Dashboard{}, err
	}
	items, err := s.Store.Items.ListByOwner(ctx, userID)
	if err != nil {
		return Dashboard{}, Internal("dashboard.list", err)
	}
	now := s.now()
	d := Dashboard{Published: []ItemView{}, Finalized: []ItemView{}, Inactive: []ItemView{}, Expired: []ItemView{}}
	for _, it := range items {
		v := viewOf(it, now)
		switch v.Code {
		case domain.Published:
			d.Published = append(d.Published, v)
		case domain.Finalized:
			d.Finalized = append(d.Finalized, v)
		case domain.Inactive:
			d.Inactive = append(d.Inactive, v)
		case domain.Expired:
			d.Expired = append(d.Expired, v)
		}
	}
	return d, nil
}

// Reactivate republishes every id that userID owns and that is INACTIVE or
// EXPIRED. Other ids are skipped silently.
func (s *DashboardService) Reactivate(ctx context.Context, userID string, ids []string) (int64, error) {
	ids, ok := validate.IDList(ids)
	if !ok {
		return 0, Validation("ids must be a non-empty list of item ids")
	}
	// Reconcile first so a listing that just lapsed is eligible.
	if err := s.RefreshExpired(ctx, userID); err != nil {
		return 0, err
	}

	now := s.now()
	expires := lifecycle.ExpiryFrom(now)
	var updated int64
	var done []string
	seen := make(map[string]bool, len(ids))
	err := s.Store.InTx(ctx, func(r repos.Repos) error {
		for _, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true
			n, err := r.Items.Reactivate(ctx, id, userID, now, expires)
			if err != nil {
				return err
			}
			if n > 0 {
				done = append(done, id)
			}
			updated += n
		}
		return nil
	})
	s.count("dashboard.reactivate", err)
	if err != nil {
		return 0, Internal("dashboard.reactivate", err)
	}
	if updated == 0 {
		return 0, NotFound("no inactive or expired listings of yours matched")
	}
	s.Cache.Bump(ctx, catalogNS)
	for _, id := range done {
		s.publish(ctx, events.ItemReactivated, userID, map[string]any{"itemId": id, "expiresAt": expires})
	}
	return updated, nil
}
