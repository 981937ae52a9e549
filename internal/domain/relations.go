package domain

import "time"

type InterestStatus string

const (
	InterestPending  InterestStatus = "PENDING"
	InterestAccepted InterestStatus = "ACCEPTED"
	InterestRejected InterestStatus = "REJECTED"
)

type Interest struct {
	ID         string         `db:"id" json:"id"`
	UserID     string         `db:"user_id" json:"userId"`
	ItemID     string         `db:"item_id" json:"itemId"`
	Status     InterestStatus `db:"status" json:"status"`
	ShareEmail bool           `db:"share_email" json:"shareEmail"`
	SharePhone bool           `db:"share_phone" json:"sharePhone"`
	CreatedAt  time.Time      `db:"created_at" json:"createdAt"`
	DecidedAt  *time.Time     `db:"decided_at" json:"decidedAt,omitempty"`
}

type Favorite struct {
	UserID    string    `db:"user_id" json:"userId"`
	ItemID    string    `db:"item_id" json:"itemId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type CartItem struct {
	UserID     string     `db:"user_id" json:"userId"`
	ItemID     string     `db:"item_id" json:"itemId"`
	Qty        int        `db:"qty" json:"qty"`
	Interested bool       `db:"interested" json:"interested"`
	LoanDays   *int       `db:"loan_days" json:"loanDays,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt  *time.Time `db:"updated_at" json:"updatedAt,omitempty"`
}

// Review covers both item and user reviews; SubjectID is an item id or a user id.
type Review struct {
	ID        string     `db:"id" json:"id"`
	AuthorID  string     `db:"author_id" json:"authorId"`
	SubjectID string     `db:"subject_id" json:"subjectId"`
	Rating    int        `db:"rating" json:"rating"`
	Title     string     `db:"title" json:"title,omitempty"`
	Comment   string     `db:"comment" json:"comment,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt *time.Time `db:"updated_at" json:"updatedAt,omitempty"`
}

type ReviewKind string

const (
	ItemReview ReviewKind = "item"
	UserReview ReviewKind = "user"
)
