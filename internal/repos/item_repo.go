package repos

import (
	"context"
	"strings"
	"time"

	"campusmarket/internal/domain"
)

type ItemRepo struct{ q Querier }

func NewItemRepo(q Querier) *ItemRepo { return &ItemRepo{q: q} }

const itemCols = `
    i.id, i.owner_id, i.category_id, i.title, i.description, i.type, i.condition, i.quantity,
    i.price_cents, i.price_label, i.loan_days, i.status, i.created_at, i.published_at,
    i.expires_at, i.inactivated_at, i.finalized_at, i.updated_at`

const summaryCols = itemCols + `,
    COALESCE((SELECT im.url FROM item_images im WHERE im.item_id = i.id ORDER BY im.position LIMIT 1), '') AS primary_image,
    COALESCE((SELECT AVG(r.rating) FROM item_reviews r WHERE r.item_id = i.id), 0.0) AS rating_avg,
    (SELECT COUNT(*) FROM item_reviews r WHERE r.item_id = i.id) AS review_count,
    (SELECT COUNT(*) FROM favorites f WHERE f.item_id = i.id) AS favorite_count,
    (SELECT COUNT(*) FROM interests n WHERE n.item_id = i.id) AS interest_count,
    u.rating_avg AS seller_rating,
    u.rating_count AS seller_reviews`

func (r *ItemRepo) Insert(ctx context.Context, it domain.Item) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO items(
		  id, owner_id, category_id, title, description, type, condition, quantity,
		  price_cents, price_label, loan_days, status, created_at, published_at, expires_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
	`, it.ID, it.OwnerID, it.CategoryID, it.Title, it.Description, it.Type, it.Condition, it.Quantity,
		it.PriceCents, it.PriceLabel, it.LoanDays, it.Status, it.CreatedAt, it.PublishedAt, it.ExpiresAt)
	return err
}

// UpdateDetails rewrites the editable fields. Status and timestamps are owned
// by the lifecycle methods below.
func (r *ItemRepo) UpdateDetails(ctx context.Context, it domain.Item, now time.Time) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE items SET
		  category_id = ?, title = ?, description = ?, type = ?, condition = ?, quantity = ?,
		  price_cents = ?, price_label = ?, loan_days = ?, updated_at = ?
		WHERE id = ?
	`, it.CategoryID, it.Title, it.Description, it.Type, it.Condition, it.Quantity,
		it.PriceCents, it.PriceLabel, it.LoanDays, now, it.ID)
	return err
}

func (r *ItemRepo) ReplaceImages(ctx context.Context, itemID string, urls []string) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM item_images WHERE item_id = ?`, itemID); err != nil {
		return err
	}
	for pos, u := range urls {
		if _, err := r.q.ExecContext(ctx, `INSERT INTO item_images(item_id, position, url) VALUES(?,?,?)`, itemID, pos, u); err != nil {
			return err
		}
	}
	return nil
}

func (r *ItemRepo) Images(ctx context.Context, itemID string) ([]string, error) {
	out := []string{}
	err := r.q.SelectContext(ctx, &out, `SELECT url FROM item_images WHERE item_id = ? ORDER BY position`, itemID)
	return out, err
}

func (r *ItemRepo) Get(ctx context.Context, id string) (domain.Item, error) {
	var it domain.Item
	err := r.q.GetContext(ctx, &it, `SELECT `+itemCols+` FROM items i WHERE i.id = ?`, id)
	return it, err
}

func (r *ItemRepo) GetSummary(ctx context.Context, id string) (domain.ItemSummary, error) {
	var it domain.ItemSummary
	err := r.q.GetContext(ctx, &it, `
	  SELECT `+summaryCols+`
	  FROM items i JOIN users u ON u.id = i.owner_id
	  WHERE i.id = ?`, id)
	return it, err
}

func (r *ItemRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.ItemSummary, error) {
	out := []domain.ItemSummary{}
	err := r.q.SelectContext(ctx, &out, `
	  SELECT `+summaryCols+`
	  FROM items i JOIN users u ON u.id = i.owner_id
	  WHERE i.owner_id = ?
	  ORDER BY i.published_at DESC, i.created_at DESC`, ownerID)
	return out, err
}

// RefreshExpired persists the derived EXPIRED status for one owner's listings
// in a single statement.
func (r *ItemRepo) RefreshExpired(ctx context.Context, ownerID string, now time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `
		UPDATE items SET status = 'EXPIRED', updated_at = ?
		WHERE owner_id = ? AND status = 'PUBLISHED'
		  AND expires_at IS NOT NULL AND expires_at <= ?
	`, now, ownerID, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Reactivate republishes one listing if it belongs to ownerID and is
// INACTIVE or EXPIRED. Returns 0 when the guard does not match.
func (r *ItemRepo) Reactivate(ctx context.Context, id, ownerID string, now, expires time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `
		UPDATE items SET
		  status = 'PUBLISHED', published_at = ?, expires_at = ?,
		  inactivated_at = NULL, finalized_at = NULL, updated_at = ?
		WHERE id = ? AND owner_id = ? AND status IN ('INACTIVE','EXPIRED')
	`, now, expires, now, id, ownerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *ItemRepo) Inactivate(ctx context.Context, id, ownerID string, now time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `
		UPDATE items SET status = 'INACTIVE', inactivated_at = ?, updated_at = ?
		WHERE id = ? AND owner_id = ? AND status = 'PUBLISHED'
	`, now, now, id, ownerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *ItemRepo) Finalize(ctx context.Context, id, ownerID string, now time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `
		UPDATE items SET status = 'FINALIZED', finalized_at = ?, updated_at = ?
		WHERE id = ? AND owner_id = ? AND status = 'PUBLISHED'
	`, now, now, id, ownerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Delete removes the listing and every dependent row. Run it inside
// Store.InTx so a failure leaves nothing half-deleted.
func (r *ItemRepo) Delete(ctx context.Context, id string) (int64, error) {
	for _, q := range []string{
		`DELETE FROM item_images WHERE item_id = ?`,
		`DELETE FROM item_reviews WHERE item_id = ?`,
		`DELETE FROM interests WHERE item_id = ?`,
		`DELETE FROM favorites WHERE item_id = ?`,
		`DELETE FROM cart_items WHERE item_id = ?`,
	} {
		if _, err := r.q.ExecContext(ctx, q, id); err != nil {
			return 0, err
		}
	}
	res, err := r.q.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// likeEscaper makes wildcard characters in user input match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type ItemFilter struct {
	Q          string
	CategoryID string
	Type       domain.TransactionType
	Condition  domain.Condition
	Sort       string // recent | price_asc | price_desc; anything else is unsorted
	Limit      int
	Offset     int
}

// SearchActive lists listings a buyer can act on: stored PUBLISHED, in stock
// and not past their expiry.
func (r *ItemRepo) SearchActive(ctx context.Context, f ItemFilter, now time.Time) ([]domain.ItemSummary, error) {
	where := `i.status = 'PUBLISHED' AND i.quantity > 0 AND (i.expires_at IS NULL OR i.expires_at > ?)`
	args := []any{now}
	if f.Q != "" {
		where += ` AND (LOWER(i.title) LIKE ? ESCAPE '\' OR LOWER(i.description) LIKE ? ESCAPE '\')`
		pat := "%" + likeEscaper.Replace(f.Q) + "%"
		args = append(args, pat, pat)
	}
	if f.CategoryID != "" {
		where += ` AND i.category_id = ?`
		args = append(args, f.CategoryID)
	}
	if f.Type != "" {
		where += ` AND i.type = ?`
		args = append(args, f.Type)
	}
	if f.Condition != "" {
		where += ` AND i.condition = ?`
		args = append(args, f.Condition)
	}

	order := `i.published_at DESC`
	switch f.Sort {
	case "price_asc":
		order = `i.price_cents IS NULL, i.price_cents ASC, i.published_at DESC`
	case "price_desc":
		order = `i.price_cents IS NULL, i.price_cents DESC, i.published_at DESC`
	}

	sql := `
	  SELECT ` + summaryCols + `
	  FROM items i JOIN users u ON u.id = i.owner_id
	  WHERE ` + where + `
	  ORDER BY ` + order + `
	  LIMIT ? OFFSET ?`
	args = append(args, f.Limit, f.Offset)

	out := []domain.ItemSummary{}
	err := r.q.SelectContext(ctx, &out, sql, args...)
	return out, err
}
