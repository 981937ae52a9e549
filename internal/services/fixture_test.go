package services_test

import (
	"context"
	"testing"
	"time"

	"campusmarket/internal/domain"
	"campusmarket/internal/events"
	"campusmarket/internal/metrics"
	"campusmarket/internal/repos"
	"campusmarket/internal/services"
)

// Seeded by repos.OpenDB.
const (
	alice = "u-alice"
	bob   = "u-bob"
	carol = "u-carol"
	admin = "u-admin"
)

var t0 = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	env    *services.Env
	store  *repos.Store
	events *events.Memory
	now    time.Time
	ctx    context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	f := &fixture{store: repos.NewStore(db), events: &events.Memory{}, now: t0, ctx: context.Background()}
	f.env = &services.Env{
		Store:   f.store,
		Events:  f.events,
		Metrics: metrics.New(),
		Now:     func() time.Time { return f.now },
	}
	return f
}

func (f *fixture) advance(d time.Duration) { f.now = f.now.Add(d) }

func i64(n int64) *int64 { return &n }
func intp(n int) *int    { return &n }

func saleInput(title string, cents int64) services.ItemInput {
	return services.ItemInput{
		CategoryID:  "books",
		Title:       title,
		Description: "Hardcover, a few pencil notes in chapter three, otherwise clean.",
		Type:        domain.Sale,
		Condition:   domain.Used,
		Quantity:    1,
		PriceCents:  i64(cents),
		Images:      []string{"https://img.campus.test/" + title + ".jpg"},
	}
}

func (f *fixture) createItem(t *testing.T, owner string, in services.ItemInput) services.ItemDetail {
	t.Helper()
	d, err := services.NewItemService(f.env).Create(f.ctx, owner, in)
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	return d
}

func (f *fixture) storedStatus(t *testing.T, id string) domain.Status {
	t.Helper()
	it, err := f.store.Items.Get(f.ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	return it.Status
}

func wantKind(t *testing.T, err error, k services.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("want %s error, got nil", k)
	}
	if got := services.KindOf(err); got != k {
		t.Fatalf("want %s error, got %s (%v)", k, got, err)
	}
}
