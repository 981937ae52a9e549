package services

import (
	"context"

	"campusmarket/internal/repos"
)

const (
	OpAdd    = "add"
	OpRemove = "remove"
)

type FavoriteService struct {
	*Env
}

func NewFavoriteService(env *Env) *FavoriteService { return &FavoriteService{Env: env} }

// Toggle adds or removes a favorite and returns whether the item is now
// favorited. Both directions are idempotent.
func (s *FavoriteService) Toggle(ctx context.Context, userID, itemID, op string) (bool, error) {
	it, op, err := relationTarget(ctx, s.Store.Repos, itemID, op)
	if err != nil && !(op == OpRemove && KindOf(err) == KindNotFound) {
		return false, err
	}
	if op == OpRemove {
		if err := s.Store.Favorites.Remove(ctx, userID, itemID); err != nil {
			return false, Internal("favorite.remove", err)
		}
		s.count("favorite.remove", nil)
		return false, nil
	}

	if it.OwnerID == userID {
		s.count("favorite.add", errRejected)
		return false, Conflict("you cannot favorite your own item")
	}
	err = s.Store.Favorites.Add(ctx, userID, it.ID, s.now())
	if err != nil && !repos.IsUniqueViolation(err) {
		s.count("favorite.add", err)
		return false, Internal("favorite.add", err)
	}
	s.count("favorite.add", nil)
	return true, nil
}

func (s *FavoriteService) List(ctx context.Context, userID string) ([]repos.FavoriteRow, error) {
	rows, err := s.Store.Favorites.List(ctx, userID)
	if err != nil {
		return nil, Internal("favorite.list", err)
	}
	return rows, nil
}
