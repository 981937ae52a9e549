package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	applog "campusmarket/internal/log"
	"campusmarket/internal/repos"
	"campusmarket/internal/validate"
)

type CartService struct {
	*Env
}

func NewCartService(env *Env) *CartService { return &CartService{Env: env} }

// Toggle adds or removes a cart row and returns whether the item is now in
// the cart. A repeat add only refreshes updated_at.
func (s *CartService) Toggle(ctx context.Context, userID, itemID, op string) (bool, error) {
	it, op, err := relationTarget(ctx, s.Store.Repos, itemID, op)
	if err != nil && !(op == OpRemove && KindOf(err) == KindNotFound) {
		return false, err
	}
	if op == OpRemove {
		if err := s.Store.Carts.Remove(ctx, userID, itemID); err != nil {
			return false, Internal("cart.remove", err)
		}
		s.count("cart.remove", nil)
		return false, nil
	}

	if it.OwnerID == userID {
		s.count("cart.add", errRejected)
		return false, Conflict("you cannot add your own item to the cart")
	}
	if !available(it, s.now()) {
		s.count("cart.add", errRejected)
		return false, Conflict("item is unavailable")
	}
	if err := s.Store.Carts.Upsert(ctx, userID, it.ID, it.LoanDays, s.now()); err != nil {
		s.count("cart.add", err)
		return false, Internal("cart.add", err)
	}
	// Pick up an interest expressed before the item was carted.
	if _, err := s.Store.Interests.GetByPair(ctx, userID, it.ID); err == nil {
		syncCartFlag(ctx, s.Store.Repos, userID, it.ID, true, s.now())
	}
	s.count("cart.add", nil)
	return true, nil
}

// SetQty changes the desired quantity, bounded by what the owner has.
func (s *CartService) SetQty(ctx context.Context, userID, itemID string, qty int) error {
	itemID, ok := validate.ID(itemID)
	if !ok {
		return Validation("invalid item id")
	}
	ci, err := s.Store.Carts.Get(ctx, userID, itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return NotFound("item not in cart")
	}
	if err != nil {
		return Internal("cart.get", err)
	}
	it, err := s.Store.Items.Get(ctx, ci.ItemID)
	if err != nil {
		return Internal("cart.item", err)
	}
	if qty < 1 || qty > it.Quantity {
		return Validation("quantity must be between 1 and the available quantity")
	}
	if _, err := s.Store.Carts.SetQty(ctx, userID, itemID, qty, s.now()); err != nil {
		return Internal("cart.qty", err)
	}
	return nil
}

type CartView struct {
	Items      []repos.CartLine `json:"items"`
	TotalCents int64            `json:"totalCents"`
	TotalLabel string           `json:"totalLabel"`
}

func (s *CartService) View(ctx context.Context, userID string) (CartView, error) {
	items, total, err := s.Store.Carts.List(ctx, userID)
	if err != nil {
		return CartView{}, Internal("cart.view", err)
	}
	return CartView{Items: items, TotalCents: total, TotalLabel: FormatBRL(total)}, nil
}

// syncCartFlag mirrors an interest onto the cart row for the same pair.
// It is best-effort by contract: a missing cart row or a failed update is
// logged and swallowed, and must never fail the interest operation.
func syncCartFlag(ctx context.Context, r repos.Repos, userID, itemID string, interested bool, now time.Time) {
	n, err := r.Carts.SetInterested(ctx, userID, itemID, interested, now)
	if err != nil {
		applog.With("cart.sync_interest", map[string]any{"item_id": itemID}).WithField("err", err.Error()).Warn("cart flag sync failed")
		return
	}
	if n == 0 {
		applog.With("cart.sync_interest", map[string]any{"item_id": itemID}).Debug("no cart row to sync")
	}
}
