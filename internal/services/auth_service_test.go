package services_test

import (
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"campusmarket/internal/domain"
	"campusmarket/internal/services"
)

func newAuth(f *fixture) *services.AuthService {
	return services.NewAuthService(f.env, "test-secret", time.Hour, bcrypt.MinCost)
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	auth := newAuth(f)

	u, err := auth.Register(f.ctx, "dana@campus.test", "Dana", "", "S3cure!pass")
	if err != nil {
		t.Fatal(err)
	}
	if u.Role != domain.RoleUser || u.Hash == "S3cure!pass" {
		t.Fatalf("registered user: %+v", u)
	}
	_, err = auth.Register(f.ctx, "DANA@campus.test", "Dana 2", "", "S3cure!pass")
	wantKind(t, err, services.KindConflict)
	_, err = auth.Register(f.ctx, "eve@campus.test", "Eve", "", "weak")
	wantKind(t, err, services.KindValidation)

	got, err := auth.Login(f.ctx, "sid-1", "dana@campus.test", "S3cure!pass")
	if err != nil || got.ID != u.ID {
		t.Fatalf("login: %v %v", got, err)
	}
	cur, err := auth.CurrentUser(f.ctx, "sid-1")
	if err != nil || cur.ID != u.ID {
		t.Fatalf("session: %v %v", cur, err)
	}
	if err := auth.Logout(f.ctx, "sid-1"); err != nil {
		t.Fatal(err)
	}
	_, err = auth.CurrentUser(f.ctx, "sid-1")
	wantKind(t, err, services.KindAuth)

	_, err = auth.Login(f.ctx, "sid-2", "dana@campus.test", "wrong")
	wantKind(t, err, services.KindAuth)
}

func TestLoginStorageFailureIsInternal(t *testing.T) {
	f := newFixture(t)
	auth := newAuth(f)

	_, err := auth.Login(f.ctx, "", "nobody@campus.test", "Passw0rd!")
	wantKind(t, err, services.KindAuth)

	if err := f.store.DB.Close(); err != nil {
		t.Fatal(err)
	}
	_, err = auth.Login(f.ctx, "", "alice@campus.test", "Passw0rd!")
	wantKind(t, err, services.KindInternal)
}

func TestTokenRoundTrip(t *testing.T) {
	f := newFixture(t)
	auth := newAuth(f)
	u, err := f.store.Users.ByID(f.ctx, bob)
	if err != nil {
		t.Fatal(err)
	}
	tok, exp, err := auth.IssueToken(u)
	if err != nil {
		t.Fatal(err)
	}
	if !exp.Equal(t0.Add(time.Hour)) {
		t.Fatalf("exp = %v", exp)
	}
	got, err := auth.UserFromToken(f.ctx, tok)
	if err != nil || got.ID != bob {
		t.Fatalf("token user: %v %v", got, err)
	}

	other := services.NewAuthService(f.env, "other-secret", time.Hour, bcrypt.MinCost)
	_, err = other.UserFromToken(f.ctx, tok)
	wantKind(t, err, services.KindAuth)

	f.advance(2 * time.Hour)
	_, err = auth.UserFromToken(f.ctx, tok)
	wantKind(t, err, services.KindAuth)
}

func TestAdminDeleteUserRecomputesReputation(t *testing.T) {
	f := newFixture(t)
	reviews := services.NewReviewService(f.env)
	if _, err := reviews.Create(f.ctx, bob, domain.UserReview, alice, services.ReviewInput{Rating: 1}); err != nil {
		t.Fatal(err)
	}
	if _, err := reviews.Create(f.ctx, carol, domain.UserReview, alice, services.ReviewInput{Rating: 5}); err != nil {
		t.Fatal(err)
	}
	f.createItem(t, bob, saleInput("bobs", 100))

	adm := services.NewAdminService(f.env)
	wantKind(t, adm.DeleteUser(f.ctx, admin, admin), services.KindConflict)
	if err := adm.DeleteUser(f.ctx, admin, bob); err != nil {
		t.Fatal(err)
	}
	if avg, n := reputation(t, f, alice); avg != 5 || n != 1 {
		t.Fatalf("alice reputation = %v/%d, want 5/1", avg, n)
	}
	var items int
	if err := f.store.DB.Get(&items, `SELECT COUNT(*) FROM items WHERE owner_id=?`, bob); err != nil || items != 0 {
		t.Fatalf("bob's items left: %d %v", items, err)
	}
	wantKind(t, adm.DeleteUser(f.ctx, admin, bob), services.KindNotFound)

	users, err := adm.Users(f.ctx)
	if err != nil || len(users) != 2 {
		t.Fatalf("users: %v %v", users, err)
	}
}
