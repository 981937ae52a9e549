package repos

import (
	"context"
	"time"

	"campusmarket/internal/domain"
)

type InterestRepo struct{ q Querier }

func NewInterestRepo(q Querier) *InterestRepo { return &InterestRepo{q: q} }

const interestCols = `n.id, n.user_id, n.item_id, n.status, n.share_email, n.share_phone, n.created_at, n.decided_at`

// Create inserts a PENDING interest. An existing row for the pair is left
// untouched and inserted reports false.
func (r *InterestRepo) Create(ctx context.Context, id, userID, itemID string, now time.Time) (inserted bool, err error) {
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO interests(id, user_id, item_id, status, created_at)
		VALUES(?, ?, ?, 'PENDING', ?)
		ON CONFLICT(user_id, item_id) DO NOTHING
	`, id, userID, itemID, now)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *InterestRepo) Delete(ctx context.Context, userID, itemID string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM interests WHERE user_id = ? AND item_id = ?`, userID, itemID)
	return err
}

// InterestWithOwner is an interest joined with the owner of its item.
type InterestWithOwner struct {
	domain.Interest
	OwnerID string `db:"owner_id" json:"ownerId"`
}

func (r *InterestRepo) Get(ctx context.Context, id string) (InterestWithOwner, error) {
	var n InterestWithOwner
	err := r.q.GetContext(ctx, &n, `
		SELECT `+interestCols+`, i.owner_id
		FROM interests n JOIN items i ON i.id = n.item_id
		WHERE n.id = ?`, id)
	return n, err
}

func (r *InterestRepo) GetByPair(ctx context.Context, userID, itemID string) (domain.Interest, error) {
	var n domain.Interest
	err := r.q.GetContext(ctx, &n, `SELECT `+interestCols+` FROM interests n WHERE n.user_id = ? AND n.item_id = ?`, userID, itemID)
	return n, err
}

// Decide moves a PENDING interest to status. Returns 0 when the interest was
// already decided.
func (r *InterestRepo) Decide(ctx context.Context, id string, status domain.InterestStatus, shareEmail, sharePhone bool, now time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `
		UPDATE interests SET status = ?, share_email = ?, share_phone = ?, decided_at = ?
		WHERE id = ? AND status = 'PENDING'
	`, status, shareEmail, sharePhone, now, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// InterestView is what either side of an interest sees. Contact fields are
// filled only when the owner shared them.
type InterestView struct {
	domain.Interest
	ItemTitle string `db:"item_title" json:"itemTitle"`
	OwnerID   string `db:"owner_id" json:"ownerId"`
	Counter   string `db:"counter_name" json:"counterpartName"`
	Email     string `db:"contact_email" json:"contactEmail,omitempty"`
	Phone     string `db:"contact_phone" json:"contactPhone,omitempty"`
}

// ListReceived lists interests on items owned by ownerID, with the
// interested user's name.
func (r *InterestRepo) ListReceived(ctx context.Context, ownerID string) ([]InterestView, error) {
	out := []InterestView{}
	err := r.q.SelectContext(ctx, &out, `
		SELECT `+interestCols+`, i.title AS item_title, i.owner_id,
		       u.name AS counter_name, '' AS contact_email, '' AS contact_phone
		FROM interests n
		JOIN items i ON i.id = n.item_id
		JOIN users u ON u.id = n.user_id
		WHERE i.owner_id = ?
		ORDER BY n.created_at DESC`, ownerID)
	return out, err
}

// ListSent lists userID's own interests with the owner's contact details
// where the owner accepted and chose to share them.
func (r *InterestRepo) ListSent(ctx context.Context, userID string) ([]InterestView, error) {
	out := []InterestView{}
	err := r.q.SelectContext(ctx, &out, `
		SELECT `+interestCols+`, i.title AS item_title, i.owner_id,
		       u.name AS counter_name,
		       CASE WHEN n.status = 'ACCEPTED' AND n.share_email THEN u.email ELSE '' END AS contact_email,
		       CASE WHEN n.status = 'ACCEPTED' AND n.share_phone THEN u.phone ELSE '' END AS contact_phone
		FROM interests n
		JOIN items i ON i.id = n.item_id
		JOIN users u ON u.id = i.owner_id
		WHERE n.user_id = ?
		ORDER BY n.created_at DESC`, userID)
	return out, err
}
