package services_test

import (
	"testing"
	"time"

	"campusmarket/internal/domain"
	"campusmarket/internal/services"
)

func reputation(t *testing.T, f *fixture, id string) (float64, int) {
	t.Helper()
	u, err := f.store.Users.ByID(f.ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	return u.RatingAvg, u.RatingCount
}

func TestUserReviewRecomputesReputation(t *testing.T) {
	f := newFixture(t)
	reviews := services.NewReviewService(f.env)

	rb, err := reviews.Create(f.ctx, bob, domain.UserReview, alice, services.ReviewInput{Rating: 5, Comment: "quick handoff"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := reviews.Create(f.ctx, carol, domain.UserReview, alice, services.ReviewInput{Rating: 2}); err != nil {
		t.Fatal(err)
	}
	if avg, n := reputation(t, f, alice); avg != 3.5 || n != 2 {
		t.Fatalf("reputation = %v/%d, want 3.5/2", avg, n)
	}

	if _, err := reviews.Update(f.ctx, bob, domain.UserReview, rb.ID, services.ReviewInput{Rating: 4}); err != nil {
		t.Fatal(err)
	}
	if avg, _ := reputation(t, f, alice); avg != 3 {
		t.Fatalf("after edit avg = %v, want 3", avg)
	}
	if err := reviews.Delete(f.ctx, bob, domain.UserReview, rb.ID); err != nil {
		t.Fatal(err)
	}
	if avg, n := reputation(t, f, alice); avg != 2 || n != 1 {
		t.Fatalf("after delete = %v/%d, want 2/1", avg, n)
	}

	p, err := reviews.Profile(f.ctx, alice)
	if err != nil || p.RatingCount != 1 || len(p.Reviews) != 1 || p.Reviews[0].AuthorName != "Carol" {
		t.Fatalf("profile: %+v %v", p, err)
	}
}

func TestReviewRules(t *testing.T) {
	f := newFixture(t)
	reviews := services.NewReviewService(f.env)
	d := f.createItem(t, alice, saleInput("notes", 0))

	_, err := reviews.Create(f.ctx, alice, domain.ItemReview, d.ID, services.ReviewInput{Rating: 5})
	wantKind(t, err, services.KindConflict)
	_, err = reviews.Create(f.ctx, alice, domain.UserReview, alice, services.ReviewInput{Rating: 5})
	wantKind(t, err, services.KindConflict)
	_, err = reviews.Create(f.ctx, bob, domain.ItemReview, d.ID, services.ReviewInput{Rating: 6})
	wantKind(t, err, services.KindValidation)
	_, err = reviews.Create(f.ctx, bob, domain.UserReview, "ghost", services.ReviewInput{Rating: 3})
	wantKind(t, err, services.KindNotFound)

	if _, err := reviews.Create(f.ctx, bob, domain.ItemReview, d.ID, services.ReviewInput{Rating: 4}); err != nil {
		t.Fatal(err)
	}
	_, err = reviews.Create(f.ctx, bob, domain.ItemReview, d.ID, services.ReviewInput{Rating: 1})
	wantKind(t, err, services.KindConflict)

	det, err := services.NewItemService(f.env).Detail(f.ctx, carol, d.ID)
	if err != nil || det.ReviewCount != 1 || det.RatingAvg != 4 {
		t.Fatalf("item aggregates: %+v %v", det.ItemView, err)
	}
}

func TestReviewEditWindow(t *testing.T) {
	f := newFixture(t)
	reviews := services.NewReviewService(f.env)
	rv, err := reviews.Create(f.ctx, bob, domain.UserReview, carol, services.ReviewInput{Rating: 3})
	if err != nil {
		t.Fatal(err)
	}

	_, err = reviews.Update(f.ctx, carol, domain.UserReview, rv.ID, services.ReviewInput{Rating: 1})
	wantKind(t, err, services.KindPermission)

	f.advance(47 * time.Hour)
	if _, err := reviews.Update(f.ctx, bob, domain.UserReview, rv.ID, services.ReviewInput{Rating: 4}); err != nil {
		t.Fatalf("edit inside window: %v", err)
	}
	f.advance(2 * time.Hour)
	_, err = reviews.Update(f.ctx, bob, domain.UserReview, rv.ID, services.ReviewInput{Rating: 5})
	wantKind(t, err, services.KindConflict)
	wantKind(t, reviews.Delete(f.ctx, bob, domain.UserReview, rv.ID), services.KindConflict)
}
