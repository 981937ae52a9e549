// Package lifecycle holds the pure item lifecycle rules: effective status,
// removal countdown and recommendation scoring. Nothing here touches storage.
package lifecycle

import (
	"time"

	"campusmarket/internal/domain"
)

const (
	// DefaultExpirationMonths is how long a listing stays published.
	DefaultExpirationMonths = 2
	// RemovalGraceMonths is how long an expired listing stays visible to its owner.
	RemovalGraceMonths = 1
)

// AddMonths adds calendar months; day overflow rolls into the following month
// (Jan 31 + 1 month = Mar 3 in a non-leap year).
func AddMonths(t time.Time, n int) time.Time { return t.AddDate(0, n, 0) }

// ExpiryFrom is the default expiry for a listing published at t.
func ExpiryFrom(t time.Time) time.Time { return AddMonths(t, DefaultExpirationMonths) }

type StatusInput struct {
	Stored      domain.Status
	CreatedAt   time.Time
	PublishedAt *time.Time
	ExpiresAt   *time.Time
}

func InputOf(it domain.Item) StatusInput {
	return StatusInput{Stored: it.Status, CreatedAt: it.CreatedAt, PublishedAt: it.PublishedAt, ExpiresAt: it.ExpiresAt}
}

type Resolution struct {
	Code        domain.Status `json:"statusCode"`
	Label       string        `json:"statusLabel"`
	PublishedAt time.Time     `json:"publishedAt"`
	ExpiresAt   *time.Time    `json:"expiresAt"`
}

// Resolve computes the effective status. A PUBLISHED listing whose expiry has
// passed reads as EXPIRED even before storage is reconciled.
func Resolve(in StatusInput, now time.Time) Resolution {
	published := in.CreatedAt
	if in.PublishedAt != nil {
		published = *in.PublishedAt
	}

	var expires *time.Time
	switch {
	case in.ExpiresAt != nil:
		e := *in.ExpiresAt
		expires = &e
	case !published.IsZero():
		e := ExpiryFrom(published)
		expires = &e
	}

	code := in.Stored
	if in.Stored == domain.Published && expires != nil && !expires.After(now) {
		code = domain.Expired
	}
	return Resolution{Code: code, Label: code.Label(), PublishedAt: published, ExpiresAt: expires}
}
