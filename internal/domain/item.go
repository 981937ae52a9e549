package domain

import "time"

type Category struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

type TransactionType string

const (
	Sale     TransactionType = "SALE"
	Loan     TransactionType = "LOAN"
	Donation TransactionType = "DONATION"
)

func (t TransactionType) Valid() bool {
	return t == Sale || t == Loan || t == Donation
}

func (t TransactionType) Label() string {
	switch t {
	case Sale:
		return "Sale"
	case Loan:
		return "Loan"
	case Donation:
		return "Donation"
	}
	return string(t)
}

type Condition string

const (
	New     Condition = "NEW"
	SemiNew Condition = "SEMI_NEW"
	Used    Condition = "USED"
)

func (c Condition) Valid() bool {
	return c == New || c == SemiNew || c == Used
}

func (c Condition) Label() string {
	switch c {
	case New:
		return "New"
	case SemiNew:
		return "Semi-new"
	case Used:
		return "Used"
	}
	return string(c)
}

type Status string

const (
	Draft     Status = "DRAFT"
	Published Status = "PUBLISHED"
	Inactive  Status = "INACTIVE"
	Finalized Status = "FINALIZED"
	Expired   Status = "EXPIRED"
)

func (s Status) Label() string {
	switch s {
	case Draft:
		return "Draft"
	case Published:
		return "Published"
	case Inactive:
		return "Inactive"
	case Finalized:
		return "Finalized"
	case Expired:
		return "Expired"
	}
	return string(s)
}

// Item is a listing row. PriceCents/PriceLabel are set only for SALE items,
// LoanDays only for LOAN items.
type Item struct {
	ID            string          `db:"id"`
	OwnerID       string          `db:"owner_id"`
	CategoryID    string          `db:"category_id"`
	Title         string          `db:"title"`
	Description   string          `db:"description"`
	Type          TransactionType `db:"type"`
	Condition     Condition       `db:"condition"`
	Quantity      int             `db:"quantity"`
	PriceCents    *int64          `db:"price_cents"`
	PriceLabel    *string         `db:"price_label"`
	LoanDays      *int            `db:"loan_days"`
	Status        Status          `db:"status"`
	CreatedAt     time.Time       `db:"created_at"`
	PublishedAt   *time.Time      `db:"published_at"`
	ExpiresAt     *time.Time      `db:"expires_at"`
	InactivatedAt *time.Time      `db:"inactivated_at"`
	FinalizedAt   *time.Time      `db:"finalized_at"`
	UpdatedAt     *time.Time      `db:"updated_at"`
}

// ItemSummary is an item joined with the aggregates that listing pages show.
type ItemSummary struct {
	Item
	PrimaryImage  string  `db:"primary_image"`
	RatingAvg     float64 `db:"rating_avg"`
	ReviewCount   int     `db:"review_count"`
	FavoriteCount int     `db:"favorite_count"`
	InterestCount int     `db:"interest_count"`
	SellerRating  float64 `db:"seller_rating"`
	SellerReviews int     `db:"seller_reviews"`
}
