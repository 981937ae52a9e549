package repos

import (
	"context"

	"campusmarket/internal/domain"
)

type CategoryRepo struct{ q Querier }

func NewCategoryRepo(q Querier) *CategoryRepo { return &CategoryRepo{q: q} }

func (r *CategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	var out []domain.Category
	err := r.q.SelectContext(ctx, &out, `SELECT id, name FROM categories ORDER BY name`)
	return out, err
}

func (r *CategoryRepo) Exists(ctx context.Context, id string) (bool, error) {
	var n int
	err := r.q.GetContext(ctx, &n, `SELECT COUNT(*) FROM categories WHERE id = ?`, id)
	return n > 0, err
}
