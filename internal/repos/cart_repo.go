package repos

import (
	"context"
	"time"

	"campusmarket/internal/domain"
)

type CartRepo struct{ q Querier }

func NewCartRepo(q Querier) *CartRepo { return &CartRepo{q: q} }

// Upsert creates the (user, item) row with qty 1, or only touches updated_at
// when it already exists.
func (r *CartRepo) Upsert(ctx context.Context, userID, itemID string, loanDays *int, now time.Time) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO cart_items(user_id, item_id, qty, interested, loan_days, created_at)
		VALUES(?, ?, 1, 0, ?, ?)
		ON CONFLICT(user_id, item_id) DO UPDATE
		SET updated_at = excluded.created_at
	`, userID, itemID, loanDays, now)
	return err
}

func (r *CartRepo) Remove(ctx context.Context, userID, itemID string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = ? AND item_id = ?`, userID, itemID)
	return err
}

func (r *CartRepo) Get(ctx context.Context, userID, itemID string) (domain.CartItem, error) {
	var ci domain.CartItem
	err := r.q.GetContext(ctx, &ci, `
		SELECT user_id, item_id, qty, interested, loan_days, created_at, updated_at
		FROM cart_items WHERE user_id = ? AND item_id = ?
	`, userID, itemID)
	return ci, err
}

// SetInterested returns the number of cart rows touched (0 when the pair is
// not in the cart).
func (r *CartRepo) SetInterested(ctx context.Context, userID, itemID string, interested bool, now time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `
		UPDATE cart_items SET interested = ?, updated_at = ?
		WHERE user_id = ? AND item_id = ?
	`, interested, now, userID, itemID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *CartRepo) SetQty(ctx context.Context, userID, itemID string, qty int, now time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `
		UPDATE cart_items SET qty = ?, updated_at = ?
		WHERE user_id = ? AND item_id = ?
	`, qty, now, userID, itemID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type CartLine struct {
	ItemID     string  `db:"item_id" json:"itemId"`
	Title      string  `db:"title" json:"title"`
	Type       string  `db:"type" json:"type"`
	Status     string  `db:"status" json:"status"`
	PriceCents *int64  `db:"price_cents" json:"priceCents,omitempty"`
	PriceLabel *string `db:"price_label" json:"priceLabel,omitempty"`
	Qty        int     `db:"qty" json:"qty"`
	Available  int     `db:"available" json:"available"`
	Interested bool    `db:"interested" json:"interested"`
	LoanDays   *int    `db:"loan_days" json:"loanDays,omitempty"`
	Subtotal   int64   `db:"subtotal" json:"subtotalCents"`
}

func (r *CartRepo) List(ctx context.Context, userID string) ([]CartLine, int64, error) {
	rows := []CartLine{}
	if err := r.q.SelectContext(ctx, &rows, `
	  SELECT ci.item_id, i.title, i.type, i.status, i.price_cents, i.price_label,
	         ci.qty, i.quantity AS available, ci.interested, ci.loan_days,
	         (ci.qty * COALESCE(i.price_cents, 0)) AS subtotal
	  FROM cart_items ci JOIN items i ON i.id = ci.item_id
	  WHERE ci.user_id = ?
	  ORDER BY ci.created_at
	`, userID); err != nil {
		return nil, 0, err
	}
	var total int64
	for _, it := range rows {
		total += it.Subtotal
	}
	return rows, total, nil
}
