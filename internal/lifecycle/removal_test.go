package lifecycle

import (
	"testing"
	"time"
)

func TestComputeRemovalNil(t *testing.T) {
	r := ComputeRemoval(nil, time.Now())
	if r.RemovalDate != nil || r.RemovalCountdown != nil {
		t.Fatalf("want nil removal, got %+v", r)
	}
}

func TestComputeRemovalTiers(t *testing.T) {
	now := ts("2026-05-10T12:00:00Z")
	cases := []struct {
		name string
		// offset of the removal date from now
		offset time.Duration
		want   string
	}{
		{"already due", -time.Hour, "will be removed in less than 24 hours"},
		{"exactly due", 0, "will be removed in less than 24 hours"},
		{"three days", 3*24*time.Hour + 5*time.Hour, "will be removed in 3 days"},
		{"one day", 24*time.Hour + time.Minute, "will be removed in 1 day"},
		{"five hours", 5*time.Hour + 59*time.Minute, "will be removed in 5 hours"},
		{"one hour", time.Hour, "will be removed in 1 hour"},
		{"minutes", 42*time.Minute + 30*time.Second, "will be removed in 42 minutes"},
		{"under a minute", 20 * time.Second, "will be removed in 1 minute"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			removal := now.Add(tc.offset)
			// removal = expiry + 1 month, so step back a month for the input
			expires := removal.AddDate(0, -RemovalGraceMonths, 0)
			r := ComputeRemoval(&expires, now)
			if r.RemovalDate == nil || !r.RemovalDate.Equal(removal) {
				t.Fatalf("want removal date %s, got %v", removal, r.RemovalDate)
			}
			if r.RemovalCountdown == nil || *r.RemovalCountdown != tc.want {
				t.Fatalf("want %q, got %v", tc.want, r.RemovalCountdown)
			}
		})
	}
}

func TestComputeRemovalExpiresNowIsAMonthAway(t *testing.T) {
	now := ts("2026-05-10T12:00:00Z")
	r := ComputeRemoval(&now, now)
	if *r.RemovalCountdown != "will be removed in 31 days" {
		t.Fatalf("got %q", *r.RemovalCountdown)
	}
}

func TestComputeRemovalRemovalDateIsNow(t *testing.T) {
	now := ts("2026-05-10T12:00:00Z")
	expires := ts("2026-04-10T12:00:00Z")
	r := ComputeRemoval(&expires, now)
	if *r.RemovalCountdown != "will be removed in less than 24 hours" {
		t.Fatalf("got %q", *r.RemovalCountdown)
	}
}
