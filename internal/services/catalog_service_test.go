package services_test

import (
	"testing"
	"time"

	"campusmarket/internal/domain"
	"campusmarket/internal/lifecycle"
	"campusmarket/internal/services"
)

func ids(v []services.ItemView) []string {
	out := make([]string, len(v))
	for i, it := range v {
		out[i] = it.ID
	}
	return out
}

func TestSearchOnlyShowsActiveListings(t *testing.T) {
	f := newFixture(t)
	items := services.NewItemService(f.env)
	live := f.createItem(t, alice, saleInput("algebra", 2000))
	off := f.createItem(t, alice, saleInput("algebra2", 2000))
	empty := saleInput("algebra3", 2000)
	empty.Quantity = 0
	f.createItem(t, alice, empty)
	if err := items.Inactivate(f.ctx, alice, off.ID); err != nil {
		t.Fatal(err)
	}

	cat := services.NewCatalogService(f.env)
	got, err := cat.Search(f.ctx, services.SearchParams{Q: "ALGEBRA"})
	if err != nil {
		t.Fatal(err)
	}
	if g := ids(got.Items); len(g) != 1 || g[0] != live.ID {
		t.Fatalf("active = %v, want [%s]", g, live.ID)
	}

	f.now = lifecycle.AddMonths(t0, 2)
	got, err = cat.Search(f.ctx, services.SearchParams{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Items) != 0 {
		t.Fatalf("expired listing still searchable: %v", ids(got.Items))
	}
}

func TestSearchFiltersAndPriceSort(t *testing.T) {
	f := newFixture(t)
	cheap := f.createItem(t, alice, saleInput("cheap", 100))
	dear := f.createItem(t, bob, saleInput("dear", 9000))
	don := saleInput("gift", 0)
	don.Type = domain.Donation
	gift := f.createItem(t, bob, don)

	cat := services.NewCatalogService(f.env)
	got, err := cat.Search(f.ctx, services.SearchParams{Sort: "price_desc"})
	if err != nil {
		t.Fatal(err)
	}
	if g := ids(got.Items); len(g) != 3 || g[0] != dear.ID || g[1] != cheap.ID || g[2] != gift.ID {
		t.Fatalf("price_desc = %v", g)
	}

	got, err = cat.Search(f.ctx, services.SearchParams{Type: "donation"})
	if err != nil {
		t.Fatal(err)
	}
	if g := ids(got.Items); len(g) != 1 || g[0] != gift.ID {
		t.Fatalf("type filter = %v", g)
	}

	got, err = cat.Search(f.ctx, services.SearchParams{Sort: "price_asc", PageSize: 1, Page: 2})
	if err != nil {
		t.Fatal(err)
	}
	if g := ids(got.Items); len(g) != 1 || g[0] != dear.ID {
		t.Fatalf("page 2 = %v", g)
	}

	for _, p := range []services.SearchParams{{Sort: "random"}, {Type: "RENT"}, {Q: "<b>"}} {
		_, err := cat.Search(f.ctx, p)
		wantKind(t, err, services.KindValidation)
	}
}

func TestSearchTreatsWildcardsLiterally(t *testing.T) {
	f := newFixture(t)
	f.createItem(t, alice, saleInput("notes-axb", 500))
	want := f.createItem(t, alice, saleInput("notes-a_b", 500))

	cat := services.NewCatalogService(f.env)
	got, err := cat.Search(f.ctx, services.SearchParams{Q: "a_b"})
	if err != nil {
		t.Fatal(err)
	}
	if g := ids(got.Items); len(g) != 1 || g[0] != want.ID {
		t.Fatalf("a_b = %v, want [%s]", g, want.ID)
	}
}

func TestRecommendedFavorsEngagement(t *testing.T) {
	f := newFixture(t)
	quiet := f.createItem(t, alice, saleInput("quiet", 500))
	f.advance(time.Second)
	hot := f.createItem(t, alice, saleInput("hot", 500))
	f.advance(time.Second)
	newest := f.createItem(t, alice, saleInput("newest", 500))

	favs := services.NewFavoriteService(f.env)
	interests := services.NewInterestService(f.env)
	for _, u := range []string{bob, carol} {
		if _, err := favs.Toggle(f.ctx, u, hot.ID, "add"); err != nil {
			t.Fatal(err)
		}
		if _, err := interests.Set(f.ctx, u, hot.ID, "add"); err != nil {
			t.Fatal(err)
		}
	}

	got, err := services.NewCatalogService(f.env).Search(f.ctx, services.SearchParams{})
	if err != nil {
		t.Fatal(err)
	}
	g := ids(got.Items)
	if len(g) != 3 || g[0] != hot.ID {
		t.Fatalf("recommended = %v, want %s first", g, hot.ID)
	}
	// same listing quality, so the younger one ranks higher
	if g[1] != newest.ID || g[2] != quiet.ID {
		t.Fatalf("tie order = %v", g)
	}
}

func TestListCategories(t *testing.T) {
	f := newFixture(t)
	cats, err := services.NewCatalogService(f.env).ListCategories(f.ctx)
	if err != nil || len(cats) < 6 {
		t.Fatalf("categories: %v %v", cats, err)
	}
}
