package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"campusmarket/internal/domain"
	"campusmarket/internal/lifecycle"
)

// ItemView is the display record shared by the dashboard, catalog and
// item detail payloads.
type ItemView struct {
	ID             string                 `json:"id"`
	OwnerID        string                 `json:"ownerId"`
	CategoryID     string                 `json:"categoryId"`
	Title          string                 `json:"title"`
	Type           domain.TransactionType `json:"type"`
	TypeLabel      string                 `json:"typeLabel"`
	PriceLabel     string                 `json:"priceLabel"`
	Condition      domain.Condition       `json:"condition"`
	ConditionLabel string                 `json:"conditionLabel"`
	Quantity       int                    `json:"quantity"`
	RatingAvg      float64                `json:"ratingAvg"`
	ReviewCount    int                    `json:"reviewCount"`
	PrimaryImage   string                 `json:"primaryImage"`
	lifecycle.Resolution
	lifecycle.Removal
}

func viewOf(s domain.ItemSummary, now time.Time) ItemView {
	res := lifecycle.Resolve(lifecycle.InputOf(s.Item), now)
	v := ItemView{
		ID:             s.ID,
		OwnerID:        s.OwnerID,
		CategoryID:     s.CategoryID,
		Title:          s.Title,
		Type:           s.Type,
		TypeLabel:      s.Type.Label(),
		PriceLabel:     termLabel(s.Item),
		Condition:      s.Condition,
		ConditionLabel: s.Condition.Label(),
		Quantity:       s.Quantity,
		RatingAvg:      s.RatingAvg,
		ReviewCount:    s.ReviewCount,
		PrimaryImage:   s.PrimaryImage,
		Resolution:     res,
	}
	// Removal info only means something once the listing has expired.
	if res.Code == domain.Expired {
		v.Removal = lifecycle.ComputeRemoval(res.ExpiresAt, now)
	}
	return v
}

// termLabel is the price for sales, the loan term for loans and "Free" for
// donations.
func termLabel(it domain.Item) string {
	switch it.Type {
	case domain.Sale:
		if it.PriceLabel != nil && *it.PriceLabel != "" {
			return *it.PriceLabel
		}
		if it.PriceCents != nil {
			return FormatBRL(*it.PriceCents)
		}
	case domain.Loan:
		if it.LoanDays != nil {
			if *it.LoanDays == 1 {
				return "Loan for 1 day"
			}
			return fmt.Sprintf("Loan for %d days", *it.LoanDays)
		}
	case domain.Donation:
		return "Free"
	}
	return ""
}

// FormatBRL renders cents as Brazilian reais: 123456 -> "R$ 1.234,56".
func FormatBRL(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	whole := strconv.FormatInt(cents/100, 10)
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	s := fmt.Sprintf("R$ %s,%02d", b.String(), cents%100)
	if neg {
		return "-" + s
	}
	return s
}
