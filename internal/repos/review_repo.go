package repos

import (
	"context"
	"time"

	"campusmarket/internal/domain"
)

type ReviewRepo struct{ q Querier }

func NewReviewRepo(q Querier) *ReviewRepo { return &ReviewRepo{q: q} }

// table maps a review kind to its table and subject column. Both values are
// constants, never user input.
func table(kind domain.ReviewKind) (string, string) {
	if kind == domain.UserReview {
		return "user_reviews", "subject_id"
	}
	return "item_reviews", "item_id"
}

func (r *ReviewRepo) Create(ctx context.Context, kind domain.ReviewKind, rv domain.Review) error {
	tbl, col := table(kind)
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO `+tbl+`(id, author_id, `+col+`, rating, title, comment, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?)
	`, rv.ID, rv.AuthorID, rv.SubjectID, rv.Rating, rv.Title, rv.Comment, rv.CreatedAt)
	return err
}

func (r *ReviewRepo) Get(ctx context.Context, kind domain.ReviewKind, id string) (domain.Review, error) {
	tbl, col := table(kind)
	var rv domain.Review
	err := r.q.GetContext(ctx, &rv, `
		SELECT id, author_id, `+col+` AS subject_id, rating,
		       COALESCE(title, '') AS title, COALESCE(comment, '') AS comment, created_at, updated_at
		FROM `+tbl+` WHERE id = ?`, id)
	return rv, err
}

func (r *ReviewRepo) Update(ctx context.Context, kind domain.ReviewKind, id string, rating int, title, comment string, now time.Time) error {
	tbl, _ := table(kind)
	_, err := r.q.ExecContext(ctx, `
		UPDATE `+tbl+` SET rating = ?, title = ?, comment = ?, updated_at = ?
		WHERE id = ?
	`, rating, title, comment, now, id)
	return err
}

func (r *ReviewRepo) Delete(ctx context.Context, kind domain.ReviewKind, id string) error {
	tbl, _ := table(kind)
	_, err := r.q.ExecContext(ctx, `DELETE FROM `+tbl+` WHERE id = ?`, id)
	return err
}

type ReviewView struct {
	domain.Review
	AuthorName string `db:"author_name" json:"authorName"`
}

func (r *ReviewRepo) ListForSubject(ctx context.Context, kind domain.ReviewKind, subjectID string) ([]ReviewView, error) {
	tbl, col := table(kind)
	out := []ReviewView{}
	err := r.q.SelectContext(ctx, &out, `
		SELECT v.id, v.author_id, v.`+col+` AS subject_id, v.rating,
		       COALESCE(v.title, '') AS title, COALESCE(v.comment, '') AS comment,
		       v.created_at, v.updated_at, u.name AS author_name
		FROM `+tbl+` v JOIN users u ON u.id = v.author_id
		WHERE v.`+col+` = ?
		ORDER BY v.created_at DESC`, subjectID)
	return out, err
}
