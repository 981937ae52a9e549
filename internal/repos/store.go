package repos

import (
	"context"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Querier is satisfied by both *sqlx.DB and *sqlx.Tx, so every repo can run
// inside or outside a transaction.
type Querier interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

type Repos struct {
	Users      *UserRepo
	Categories *CategoryRepo
	Items      *ItemRepo
	Favorites  *FavoriteRepo
	Carts      *CartRepo
	Interests  *InterestRepo
	Reviews    *ReviewRepo
}

func NewRepos(q Querier) Repos {
	return Repos{
		Users:      NewUserRepo(q),
		Categories: NewCategoryRepo(q),
		Items:      NewItemRepo(q),
		Favorites:  NewFavoriteRepo(q),
		Carts:      NewCartRepo(q),
		Interests:  NewInterestRepo(q),
		Reviews:    NewReviewRepo(q),
	}
}

// Store is the unit of work: Repos for single statements, InTx for writes
// that span several tables.
type Store struct {
	DB *sqlx.DB
	Repos
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{DB: db, Repos: NewRepos(db)}
}

func (s *Store) InTx(ctx context.Context, fn func(r Repos) error) error {
	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(NewRepos(tx)); err != nil {
		return err
	}
	return tx.Commit()
}

// IsUniqueViolation reports a UNIQUE/PRIMARY KEY constraint failure.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) {
		// SQLITE_CONSTRAINT_PRIMARYKEY (1555), SQLITE_CONSTRAINT_UNIQUE (2067)
		if c := coder.Code(); c == 1555 || c == 2067 {
			return true
		}
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
