package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"campusmarket/internal/domain"
	"campusmarket/internal/lifecycle"
	"campusmarket/internal/repos"
	"campusmarket/internal/validate"
)

// errRejected marks a request refused by a business rule in action metrics.
var errRejected = errors.New("rejected")

// relationTarget validates the (op, item) pair of a toggle request and loads
// the item.
func relationTarget(ctx context.Context, r repos.Repos, itemID, op string) (domain.Item, string, error) {
	op, ok := validate.Op(op)
	if !ok {
		return domain.Item{}, "", Validation("op must be add or remove")
	}
	itemID, ok = validate.ID(itemID)
	if !ok {
		return domain.Item{}, "", Validation("invalid item id")
	}
	it, err := r.Items.Get(ctx, itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return it, op, NotFound("item not found")
	}
	if err != nil {
		return it, op, Internal("relation.item", err)
	}
	return it, op, nil
}

// available reports whether buyers can act on it right now.
func available(it domain.Item, now time.Time) bool {
	return it.Status == domain.Published &&
		lifecycle.Resolve(lifecycle.InputOf(it), now).Code == domain.Published &&
		it.Quantity > 0
}
