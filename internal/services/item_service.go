package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/oklog/ulid/v2"

	"campusmarket/internal/domain"
	"campusmarket/internal/events"
	"campusmarket/internal/lifecycle"
	"campusmarket/internal/repos"
	"campusmarket/internal/validate"
)

const (
	maxImages      = 8
	maxDescription = 2000
	maxQuantity    = 999
	maxLoanDays    = 365
)

type ItemInput struct {
	CategoryID  string                 `json:"categoryId"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Type        domain.TransactionType `json:"type"`
	Condition   domain.Condition       `json:"condition"`
	Quantity    int                    `json:"quantity"`
	PriceCents  *int64                 `json:"priceCents"`
	LoanDays    *int                   `json:"loanDays"`
	Images      []string               `json:"images"`
}

type ItemDetail struct {
	ItemView
	Description   string             `json:"description"`
	PriceCents    *int64             `json:"priceCents,omitempty"`
	LoanDays      *int               `json:"loanDays,omitempty"`
	Images        []string           `json:"images"`
	SellerRating  float64            `json:"sellerRating"`
	SellerReviews int                `json:"sellerReviews"`
	Favorites     int                `json:"favoriteCount"`
	Interests     int                `json:"interestCount"`
	Reviews       []repos.ReviewView `json:"reviews"`
}

type ItemService struct {
	*Env
}

func NewItemService(env *Env) *ItemService { return &ItemService{Env: env} }

// check normalizes in and reports every problem at once.
func (s *ItemService) check(ctx context.Context, in ItemInput) (ItemInput, error) {
	var errs *multierror.Error
	var ok bool

	if in.Title, ok = validate.Title(in.Title); !ok {
		errs = multierror.Append(errs, errors.New("title must be 3-120 characters"))
	}
	if in.Description, ok = validate.Text(in.Description, maxDescription); !ok {
		errs = multierror.Append(errs, fmt.Errorf("description must be at most %d characters", maxDescription))
	}
	in.Type = domain.TransactionType(strings.ToUpper(strings.TrimSpace(string(in.Type))))
	if !in.Type.Valid() {
		errs = multierror.Append(errs, errors.New("type must be SALE, LOAN or DONATION"))
	}
	in.Condition = domain.Condition(strings.ToUpper(strings.TrimSpace(string(in.Condition))))
	if !in.Condition.Valid() {
		errs = multierror.Append(errs, errors.New("condition must be NEW, SEMI_NEW or USED"))
	}
	if in.Quantity < 0 || in.Quantity > maxQuantity {
		errs = multierror.Append(errs, fmt.Errorf("quantity must be between 0 and %d", maxQuantity))
	}

	switch in.Type {
	case domain.Sale:
		if in.PriceCents == nil || *in.PriceCents < 0 {
			errs = multierror.Append(errs, errors.New("sale listings need a non-negative price"))
		}
	default:
		in.PriceCents = nil
	}
	switch in.Type {
	case domain.Loan:
		if in.LoanDays == nil || *in.LoanDays < 1 || *in.LoanDays > maxLoanDays {
			errs = multierror.Append(errs, fmt.Errorf("loan listings need a term of 1-%d days", maxLoanDays))
		}
	default:
		in.LoanDays = nil
	}

	if len(in.Images) == 0 {
		errs = multierror.Append(errs, errors.New("at least one image is required"))
	} else if len(in.Images) > maxImages {
		errs = multierror.Append(errs, fmt.Errorf("at most %d images", maxImages))
	}
	for i, u := range in.Images {
		if in.Images[i], ok = validate.ImageURL(u); !ok {
			errs = multierror.Append(errs, fmt.Errorf("image %d is not a valid url", i+1))
		}
	}

	if id, ok := validate.ID(in.CategoryID); !ok {
		errs = multierror.Append(errs, errors.New("category is required"))
	} else {
		in.CategoryID = id
		exists, err := s.Store.Categories.Exists(ctx, id)
		if err != nil {
			return in, Internal("item.category", err)
		}
		if !exists {
			errs = multierror.Append(errs, errors.New("unknown category"))
		}
	}

	if err := errs.ErrorOrNil(); err != nil {
		return in, Validation(joinErrors(errs))
	}
	return in, nil
}

func joinErrors(m *multierror.Error) string {
	msgs := make([]string, len(m.Errors))
	for i, e := range m.Errors {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

func priceLabelOf(cents *int64) *string {
	if cents == nil {
		return nil
	}
	l := FormatBRL(*cents)
	return &l
}

// Create publishes a listing immediately: published now, expiring after the
// default window.
func (s *ItemService) Create(ctx context.Context, ownerID string, in ItemInput) (ItemDetail, error) {
	in, err := s.check(ctx, in)
	if err != nil {
		return ItemDetail{}, err
	}
	now := s.now()
	expires := lifecycle.ExpiryFrom(now)
	it := domain.Item{
		ID:          ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		OwnerID:     ownerID,
		CategoryID:  in.CategoryID,
		Title:       in.Title,
		Description: in.Description,
		Type:        in.Type,
		Condition:   in.Condition,
		Quantity:    in.Quantity,
		PriceCents:  in.PriceCents,
		PriceLabel:  priceLabelOf(in.PriceCents),
		LoanDays:    in.LoanDays,
		Status:      domain.Published,
		CreatedAt:   now,
		PublishedAt: &now,
		ExpiresAt:   &expires,
	}
	err = s.Store.InTx(ctx, func(r repos.Repos) error {
		if err := r.Items.Insert(ctx, it); err != nil {
			return err
		}
		return r.Items.ReplaceImages(ctx, it.ID, in.Images)
	})
	s.count("item.create", err)
	if err != nil {
		return ItemDetail{}, Internal("item.create", err)
	}
	s.Cache.Bump(ctx, catalogNS)
	s.publish(ctx, events.ItemPublished, ownerID, map[string]any{"itemId": it.ID, "expiresAt": expires})
	return s.Detail(ctx, ownerID, it.ID)
}

// owned loads an item and checks that actorID owns it.
func owned(ctx context.Context, r repos.Repos, actorID, id string) (domain.Item, error) {
	it, err := r.Items.Get(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return it, NotFound("item not found")
	}
	if err != nil {
		return it, Internal("item.get", err)
	}
	if it.OwnerID != actorID {
		return it, Permission("not the owner of this item")
	}
	return it, nil
}

// Update rewrites the listing and replaces its image set in one transaction.
func (s *ItemService) Update(ctx context.Context, ownerID, id string, in ItemInput) (ItemDetail, error) {
	in, err := s.check(ctx, in)
	if err != nil {
		return ItemDetail{}, err
	}
	now := s.now()
	err = s.Store.InTx(ctx, func(r repos.Repos) error {
		it, err := owned(ctx, r, ownerID, id)
		if err != nil {
			return err
		}
		if it.Status == domain.Finalized {
			return Conflict("finalized listings cannot be edited")
		}
		it.CategoryID, it.Title, it.Description = in.CategoryID, in.Title, in.Description
		it.Type, it.Condition, it.Quantity = in.Type, in.Condition, in.Quantity
		it.PriceCents, it.PriceLabel, it.LoanDays = in.PriceCents, priceLabelOf(in.PriceCents), in.LoanDays
		if err := r.Items.UpdateDetails(ctx, it, now); err != nil {
			return Internal("item.update", err)
		}
		if err := r.Items.ReplaceImages(ctx, id, in.Images); err != nil {
			return Internal("item.images", err)
		}
		return nil
	})
	s.count("item.update", err)
	if err != nil {
		return ItemDetail{}, err
	}
	s.Cache.Bump(ctx, catalogNS)
	return s.Detail(ctx, ownerID, id)
}

type transition func(r repos.Repos, id, ownerID string) (int64, error)

// move applies an owner-initiated transition out of PUBLISHED.
func (s *ItemService) move(ctx context.Context, ownerID, id, action, event string, apply transition) error {
	now := s.now()
	it, err := owned(ctx, s.Store.Repos, ownerID, id)
	if err != nil {
		return err
	}
	if lifecycle.Resolve(lifecycle.InputOf(it), now).Code != domain.Published {
		return Conflict("only published listings can be " + action)
	}
	n, err := apply(s.Store.Repos, id, ownerID)
	if err != nil {
		return Internal("item."+action, err)
	}
	if n == 0 {
		return Conflict("only published listings can be " + action)
	}
	s.Cache.Bump(ctx, catalogNS)
	s.publish(ctx, event, ownerID, map[string]any{"itemId": id})
	return nil
}

func (s *ItemService) Inactivate(ctx context.Context, ownerID, id string) error {
	now := s.now()
	err := s.move(ctx, ownerID, id, "inactivated", events.ItemInactivated, func(r repos.Repos, id, owner string) (int64, error) {
		return r.Items.Inactivate(ctx, id, owner, now)
	})
	s.count("item.inactivate", err)
	return err
}

func (s *ItemService) Finalize(ctx context.Context, ownerID, id string) error {
	now := s.now()
	err := s.move(ctx, ownerID, id, "finalized", events.ItemFinalized, func(r repos.Repos, id, owner string) (int64, error) {
		return r.Items.Finalize(ctx, id, owner, now)
	})
	s.count("item.finalize", err)
	return err
}

// Delete removes a listing and all dependent rows atomically. Admins may
// delete any listing.
func (s *ItemService) Delete(ctx context.Context, actor *domain.User, id string) error {
	err := s.Store.InTx(ctx, func(r repos.Repos) error {
		it, err := r.Items.Get(ctx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return NotFound("item not found")
		}
		if err != nil {
			return Internal("item.get", err)
		}
		if it.OwnerID != actor.ID && actor.Role != domain.RoleAdmin {
			return Permission("not the owner of this item")
		}
		if _, err := r.Items.Delete(ctx, id); err != nil {
			return Internal("item.delete", err)
		}
		return nil
	})
	s.count("item.delete", err)
	if err != nil {
		return err
	}
	s.Cache.Bump(ctx, catalogNS)
	s.publish(ctx, events.ItemDeleted, actor.ID, map[string]any{"itemId": id})
	return nil
}

// Detail returns a listing. Anyone but the owner only sees it while its
// effective status is PUBLISHED.
func (s *ItemService) Detail(ctx context.Context, viewerID, id string) (ItemDetail, error) {
	sum, err := s.Store.Items.GetSummary(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ItemDetail{}, NotFound("item not found")
	}
	if err != nil {
		return ItemDetail{}, Internal("item.detail", err)
	}
	v := viewOf(sum, s.now())
	if sum.OwnerID != viewerID && v.Code != domain.Published {
		return ItemDetail{}, NotFound("item not found")
	}
	imgs, err := s.Store.Items.Images(ctx, id)
	if err != nil {
		return ItemDetail{}, Internal("item.images", err)
	}
	revs, err := s.Store.Reviews.ListForSubject(ctx, domain.ItemReview, id)
	if err != nil {
		return ItemDetail{}, Internal("item.reviews", err)
	}
	return ItemDetail{
		ItemView:      v,
		Description:   sum.Description,
		PriceCents:    sum.PriceCents,
		LoanDays:      sum.LoanDays,
		Images:        imgs,
		SellerRating:  sum.SellerRating,
		SellerReviews: sum.SellerReviews,
		Favorites:     sum.FavoriteCount,
		Interests:     sum.InterestCount,
		Reviews:       revs,
	}, nil
}
