package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"campusmarket/internal/domain"
	"campusmarket/internal/events"
	"campusmarket/internal/repos"
	"campusmarket/internal/validate"
)

// ReviewEditWindow is how long after creation the author may edit or delete.
const ReviewEditWindow = 48 * time.Hour

const maxComment = 1000

type ReviewInput struct {
	Rating  int    `json:"rating"`
	Title   string `json:"title"`
	Comment string `json:"comment"`
}

func (in ReviewInput) clean() (ReviewInput, error) {
	if !validate.Rating(in.Rating) {
		return in, Validation("rating must be between 1 and 5")
	}
	var ok bool
	if in.Title, ok = validate.Text(in.Title, 120); !ok {
		return in, Validation("title must be at most 120 characters")
	}
	if in.Comment, ok = validate.Text(in.Comment, maxComment); !ok {
		return in, Validation("comment must be at most 1000 characters")
	}
	return in, nil
}

type ReviewService struct {
	*Env
}

func NewReviewService(env *Env) *ReviewService { return &ReviewService{Env: env} }

// subjectOwner resolves who a review is about, to refuse self-reviews.
func subjectOwner(ctx context.Context, r repos.Repos, kind domain.ReviewKind, subjectID string) (string, error) {
	if kind == domain.UserReview {
		u, err := r.Users.ByID(ctx, subjectID)
		if errors.Is(err, sql.ErrNoRows) {
			return "", NotFound("user not found")
		}
		if err != nil {
			return "", Internal("review.subject", err)
		}
		return u.ID, nil
	}
	it, err := r.Items.Get(ctx, subjectID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", NotFound("item not found")
	}
	if err != nil {
		return "", Internal("review.subject", err)
	}
	return it.OwnerID, nil
}

func (s *ReviewService) Create(ctx context.Context, authorID string, kind domain.ReviewKind, subjectID string, in ReviewInput) (domain.Review, error) {
	subjectID, ok := validate.ID(subjectID)
	if !ok {
		return domain.Review{}, Validation("invalid subject id")
	}
	in, err := in.clean()
	if err != nil {
		return domain.Review{}, err
	}
	rv := domain.Review{
		ID:        uuid.NewString(),
		AuthorID:  authorID,
		SubjectID: subjectID,
		Rating:    in.Rating,
		Title:     in.Title,
		Comment:   in.Comment,
		CreatedAt: s.now(),
	}
	err = s.Store.InTx(ctx, func(r repos.Repos) error {
		owner, err := subjectOwner(ctx, r, kind, subjectID)
		if err != nil {
			return err
		}
		if owner == authorID {
			return Conflict("you cannot review yourself or your own item")
		}
		if err := r.Reviews.Create(ctx, kind, rv); err != nil {
			if repos.IsUniqueViolation(err) {
				return Conflict("you already reviewed this")
			}
			return Internal("review.create", err)
		}
		return s.recompute(ctx, r, kind, subjectID)
	})
	s.count("review.create", err)
	if err != nil {
		return domain.Review{}, err
	}
	s.Cache.Bump(ctx, catalogNS)
	s.publish(ctx, events.ReviewCreated, authorID, map[string]any{"kind": kind, "subjectId": subjectID, "rating": rv.Rating})
	return rv, nil
}

func (s *ReviewService) recompute(ctx context.Context, r repos.Repos, kind domain.ReviewKind, subjectID string) error {
	if kind != domain.UserReview {
		return nil
	}
	if err := r.Users.RecomputeReputation(ctx, subjectID); err != nil {
		return Internal("review.reputation", err)
	}
	return nil
}

// editable loads a review and checks authorship and the edit window.
func (s *ReviewService) editable(ctx context.Context, r repos.Repos, authorID string, kind domain.ReviewKind, id string) (domain.Review, error) {
	id, ok := validate.ID(id)
	if !ok {
		return domain.Review{}, Validation("invalid review id")
	}
	rv, err := r.Reviews.Get(ctx, kind, id)
	if errors.Is(err, sql.ErrNoRows) {
		return rv, NotFound("review not found")
	}
	if err != nil {
		return rv, Internal("review.get", err)
	}
	if rv.AuthorID != authorID {
		return rv, Permission("only the author can change a review")
	}
	if s.now().Sub(rv.CreatedAt) > ReviewEditWindow {
		return rv, Conflict("reviews can only be changed within 2 days of posting")
	}
	return rv, nil
}

func (s *ReviewService) Update(ctx context.Context, authorID string, kind domain.ReviewKind, id string, in ReviewInput) (domain.Review, error) {
	in, err := in.clean()
	if err != nil {
		return domain.Review{}, err
	}
	now := s.now()
	var out domain.Review
	err = s.Store.InTx(ctx, func(r repos.Repos) error {
		rv, err := s.editable(ctx, r, authorID, kind, id)
		if err != nil {
			return err
		}
		if err := r.Reviews.Update(ctx, kind, rv.ID, in.Rating, in.Title, in.Comment, now); err != nil {
			return Internal("review.update", err)
		}
		rv.Rating, rv.Title, rv.Comment, rv.UpdatedAt = in.Rating, in.Title, in.Comment, &now
		out = rv
		return s.recompute(ctx, r, kind, rv.SubjectID)
	})
	s.count("review.update", err)
	if err != nil {
		return domain.Review{}, err
	}
	s.Cache.Bump(ctx, catalogNS)
	return out, nil
}

func (s *ReviewService) Delete(ctx context.Context, authorID string, kind domain.ReviewKind, id string) error {
	err := s.Store.InTx(ctx, func(r repos.Repos) error {
		rv, err := s.editable(ctx, r, authorID, kind, id)
		if err != nil {
			return err
		}
		if err := r.Reviews.Delete(ctx, kind, rv.ID); err != nil {
			return Internal("review.delete", err)
		}
		return s.recompute(ctx, r, kind, rv.SubjectID)
	})
	s.count("review.delete", err)
	if err == nil {
		s.Cache.Bump(ctx, catalogNS)
	}
	return err
}

func (s *ReviewService) List(ctx context.Context, kind domain.ReviewKind, subjectID string) ([]repos.ReviewView, error) {
	subjectID, ok := validate.ID(subjectID)
	if !ok {
		return nil, Validation("invalid subject id")
	}
	out, err := s.Store.Reviews.ListForSubject(ctx, kind, subjectID)
	if err != nil {
		return nil, Internal("review.list", err)
	}
	return out, nil
}

type Profile struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	RatingAvg   float64            `json:"ratingAvg"`
	RatingCount int                `json:"ratingCount"`
	MemberSince time.Time          `json:"memberSince"`
	Reviews     []repos.ReviewView `json:"reviews"`
	Listings    []ItemView         `json:"listings"`
}

// Profile is the public view of a user: reputation, reviews received and
// listings currently on offer.
func (s *ReviewService) Profile(ctx context.Context, userID string) (Profile, error) {
	userID, ok := validate.ID(userID)
	if !ok {
		return Profile{}, Validation("invalid user id")
	}
	u, err := s.Store.Users.ByID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, NotFound("user not found")
	}
	if err != nil {
		return Profile{}, Internal("profile.user", err)
	}
	revs, err := s.Store.Reviews.ListForSubject(ctx, domain.UserReview, userID)
	if err != nil {
		return Profile{}, Internal("profile.reviews", err)
	}
	items, err := s.Store.Items.ListByOwner(ctx, userID)
	if err != nil {
		return Profile{}, Internal("profile.items", err)
	}
	now := s.now()
	listings := []ItemView{}
	for _, it := range items {
		if v := viewOf(it, now); v.Code == domain.Published && it.Quantity > 0 {
			listings = append(listings, v)
		}
	}
	return Profile{
		ID: u.ID, Name: u.Name, RatingAvg: u.RatingAvg, RatingCount: u.RatingCount,
		MemberSince: u.CreatedAt, Reviews: revs, Listings: listings,
	}, nil
}
