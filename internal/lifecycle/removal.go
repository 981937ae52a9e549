package lifecycle

import (
	"fmt"
	"time"
)

type Removal struct {
	RemovalDate      *time.Time `json:"removalDate"`
	RemovalCountdown *string    `json:"removalCountdown"`
}

// ComputeRemoval returns when an expired listing becomes eligible for
// permanent removal and a countdown for display.
func ComputeRemoval(expiresAt *time.Time, now time.Time) Removal {
	if expiresAt == nil {
		return Removal{}
	}
	date := AddMonths(*expiresAt, RemovalGraceMonths)
	s := countdown(date.Sub(now))
	return Removal{RemovalDate: &date, RemovalCountdown: &s}
}

func countdown(diff time.Duration) string {
	if diff <= 0 {
		return "will be removed in less than 24 hours"
	}
	days := int(diff / (24 * time.Hour))
	if days >= 1 {
		return "will be removed in " + plural(days, "day")
	}
	hours := int(diff / time.Hour)
	if hours >= 1 {
		return "will be removed in " + plural(hours, "hour")
	}
	minutes := int(diff / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	return "will be removed in " + plural(minutes, "minute")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
