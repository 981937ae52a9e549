package repos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	applog "campusmarket/internal/log"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// One connection: sqlite serializes writers anyway, and ":memory:"
	// databases only exist per connection.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		return nil, err
	}

	if err := migrateUp(db); err != nil {
		return nil, err
	}
	if err := seedCategories(db); err != nil {
		return nil, err
	}
	// Ensure demo users exist (idempotent; safe to run every start)
	if err := seedUsers(db); err != nil {
		return nil, err
	}

	return db, nil
}

func seedCategories(db *sqlx.DB) error {
	_, err := db.Exec(`
		INSERT INTO categories(id, name) VALUES
		  ('books', 'Books'),
		  ('electronics', 'Electronics'),
		  ('furniture', 'Furniture'),
		  ('lab-gear', 'Lab Gear'),
		  ('clothing', 'Clothing'),
		  ('other', 'Other')
		ON CONFLICT(id) DO NOTHING
	`)
	return err
}

// seedUsers ensures a few USERs and one ADMIN exist (idempotent).
func seedUsers(db *sqlx.DB) error {
	type u struct {
		ID, Email, Name, Phone, Role, Hash string
	}
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM users`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	applog.With("seed.users", nil).Info("inserting demo users")

	h, err := bcrypt.GenerateFromPassword([]byte("Passw0rd!"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	users := []u{
		{"u-alice", "alice@campus.test", "Alice", "+55 11 90000-0001", "USER", string(h)},
		{"u-bob", "bob@campus.test", "Bob", "+55 11 90000-0002", "USER", string(h)},
		{"u-carol", "carol@campus.test", "Carol", "", "USER", string(h)},
		{"u-admin", "admin@campus.test", "Admin", "", "ADMIN", string(h)},
	}

	return NewStore(db).InTx(context.Background(), func(r Repos) error {
		now := time.Now().UTC().Truncate(time.Second)
		for _, x := range users {
			if err := r.Users.Create(context.Background(), x.ID, x.Email, x.Name, x.Phone, x.Hash, x.Role, now); err != nil {
				return err
			}
		}
		return nil
	})
}
