package repos

import (
	"context"
	"time"
)

type FavoriteRepo struct{ q Querier }

func NewFavoriteRepo(q Querier) *FavoriteRepo { return &FavoriteRepo{q: q} }

// Add is idempotent: a second add for the same pair is absorbed by the key.
func (r *FavoriteRepo) Add(ctx context.Context, userID, itemID string, now time.Time) error {
	_, err := r.q.ExecContext(ctx, `
	  INSERT INTO favorites(user_id, item_id, created_at)
	  VALUES(?, ?, ?)
	  ON CONFLICT(user_id, item_id) DO NOTHING
	`, userID, itemID, now)
	return err
}

func (r *FavoriteRepo) Remove(ctx context.Context, userID, itemID string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM favorites WHERE user_id=? AND item_id=?`, userID, itemID)
	return err
}

func (r *FavoriteRepo) Count(ctx context.Context, userID, itemID string) (int, error) {
	var n int
	err := r.q.GetContext(ctx, &n, `SELECT COUNT(*) FROM favorites WHERE user_id=? AND item_id=?`, userID, itemID)
	return n, err
}

type FavoriteRow struct {
	ItemID       string    `db:"item_id" json:"itemId"`
	Title        string    `db:"title" json:"title"`
	Type         string    `db:"type" json:"type"`
	PriceLabel   *string   `db:"price_label" json:"priceLabel,omitempty"`
	Status       string    `db:"status" json:"status"`
	PrimaryImage string    `db:"primary_image" json:"primaryImage"`
	CreatedAt    time.Time `db:"created_at" json:"favoritedAt"`
}

func (r *FavoriteRepo) List(ctx context.Context, userID string) ([]FavoriteRow, error) {
	out := []FavoriteRow{}
	err := r.q.SelectContext(ctx, &out, `
	  SELECT i.id AS item_id, i.title, i.type, i.price_label, i.status,
	         COALESCE((SELECT im.url FROM item_images im WHERE im.item_id = i.id ORDER BY im.position LIMIT 1), '') AS primary_image,
	         f.created_at
	  FROM favorites f
	  JOIN items i ON i.id = f.item_id
	  WHERE f.user_id = ?
	  ORDER BY f.created_at DESC
	`, userID)
	return out, err
}
