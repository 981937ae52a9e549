package domain

import "time"

type User struct {
	ID          string    `db:"id" json:"id"`
	Email       string    `db:"email" json:"email"`
	Name        string    `db:"name" json:"name"`
	Phone       string    `db:"phone" json:"phone,omitempty"`
	Hash        string    `db:"password_hash" json:"-"`
	Role        string    `db:"role" json:"role"` // USER | ADMIN
	RatingAvg   float64   `db:"rating_avg" json:"ratingAvg"`
	RatingCount int       `db:"rating_count" json:"ratingCount"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)
