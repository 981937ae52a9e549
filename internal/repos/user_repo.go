package repos

import (
	"context"
	"time"

	"campusmarket/internal/domain"
)

type UserRepo struct{ q Querier }

func NewUserRepo(q Querier) *UserRepo { return &UserRepo{q: q} }

const userCols = `id,email,name,phone,password_hash,role,rating_avg,rating_count,created_at`

func (r *UserRepo) Create(ctx context.Context, id, email, name, phone, hash, role string, now time.Time) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO users(id,email,name,phone,password_hash,role,created_at)
		VALUES(?,?,?,?,?,?,?)
	`, id, email, name, phone, hash, role, now)
	return err
}

func (r *UserRepo) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.q.GetContext(ctx, &u, `SELECT `+userCols+` FROM users WHERE LOWER(email)=LOWER(?)`, email)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.q.GetContext(ctx, &u, `SELECT `+userCols+` FROM users WHERE id=?`, id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// List returns non-admin accounts ordered by email.
func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	var out []domain.User
	err := r.q.SelectContext(ctx, &out, `SELECT `+userCols+` FROM users WHERE role != 'ADMIN' ORDER BY email`)
	return out, err
}

func (r *UserRepo) BindSession(ctx context.Context, sid, userID string) error {
	_, err := r.q.ExecContext(ctx, `INSERT INTO sessions(id,user_id,last_seen)
                          VALUES(?,?,CURRENT_TIMESTAMP)
                          ON CONFLICT(id) DO UPDATE SET user_id=excluded.user_id,last_seen=CURRENT_TIMESTAMP`, sid, userID)
	return err
}

func (r *UserRepo) SessionUser(ctx context.Context, sid string) (*domain.User, error) {
	var u domain.User
	err := r.q.GetContext(ctx, &u, `
      SELECT u.id,u.email,u.name,u.phone,u.password_hash,u.role,u.rating_avg,u.rating_count,u.created_at
      FROM sessions s
      JOIN users u ON u.id=s.user_id
      WHERE s.id=?`, sid)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) UnbindSession(ctx context.Context, sid string) error {
	_, err := r.q.ExecContext(ctx, `UPDATE sessions SET user_id=NULL,last_seen=CURRENT_TIMESTAMP WHERE id=?`, sid)
	return err
}

// RecomputeReputation refreshes the denormalized mean rating and review count.
func (r *UserRepo) RecomputeReputation(ctx context.Context, userID string) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE users SET
		  rating_avg   = COALESCE((SELECT AVG(rating) FROM user_reviews WHERE subject_id = ?), 0.0),
		  rating_count = (SELECT COUNT(*) FROM user_reviews WHERE subject_id = ?)
		WHERE id = ?
	`, userID, userID, userID)
	return err
}

// ReviewedSubjects lists users that userID has written reviews about.
func (r *UserRepo) ReviewedSubjects(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.q.SelectContext(ctx, &ids, `SELECT subject_id FROM user_reviews WHERE author_id=?`, userID)
	return ids, err
}

// Delete removes the user row; items, relations, reviews and sessions go
// with it through the foreign keys. Call inside a transaction together with
// the reputation recompute of the users they had reviewed.
func (r *UserRepo) Delete(ctx context.Context, userID string) (int64, error) {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM sessions WHERE user_id=?`, userID); err != nil {
		return 0, err
	}
	res, err := r.q.ExecContext(ctx, `DELETE FROM users WHERE id=?`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
