package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"campusmarket/internal/domain"
	"campusmarket/internal/events"
	"campusmarket/internal/repos"
	"campusmarket/internal/validate"
)

const (
	ActionAccept = "accept"
	ActionReject = "reject"
)

type InterestService struct {
	*Env
}

func NewInterestService(env *Env) *InterestService { return &InterestService{Env: env} }

// Set adds or withdraws userID's interest in an item and returns whether the
// user is now interested. Adding over an existing interest changes nothing,
// whatever its state.
func (s *InterestService) Set(ctx context.Context, userID, itemID, op string) (bool, error) {
	it, op, err := relationTarget(ctx, s.Store.Repos, itemID, op)
	if err != nil && !(op == OpRemove && KindOf(err) == KindNotFound) {
		return false, err
	}
	now := s.now()
	if op == OpRemove {
		if err := s.Store.Interests.Delete(ctx, userID, itemID); err != nil {
			return false, Internal("interest.remove", err)
		}
		syncCartFlag(ctx, s.Store.Repos, userID, itemID, false, now)
		s.count("interest.remove", nil)
		return false, nil
	}

	if it.OwnerID == userID {
		s.count("interest.add", errRejected)
		return false, Conflict("you cannot express interest in your own item")
	}
	inserted, err := s.Store.Interests.Create(ctx, uuid.NewString(), userID, it.ID, now)
	if err != nil {
		s.count("interest.add", err)
		return false, Internal("interest.add", err)
	}
	syncCartFlag(ctx, s.Store.Repos, userID, it.ID, true, now)
	s.count("interest.add", nil)
	if inserted {
		s.publish(ctx, events.InterestCreated, userID, map[string]any{"itemId": it.ID, "ownerId": it.OwnerID})
	}
	return true, nil
}

// Decide moves a PENDING interest to ACCEPTED or REJECTED. Only the item
// owner may decide; accepting requires sharing at least one contact.
func (s *InterestService) Decide(ctx context.Context, ownerID, interestID, action string, shareEmail, sharePhone bool) (domain.Interest, error) {
	interestID, ok := validate.ID(interestID)
	if !ok {
		return domain.Interest{}, Validation("invalid interest id")
	}
	action = strings.ToLower(strings.TrimSpace(action))
	if action != ActionAccept && action != ActionReject {
		return domain.Interest{}, Validation("action must be accept or reject")
	}

	n, err := s.Store.Interests.Get(ctx, interestID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Interest{}, NotFound("interest not found")
	}
	if err != nil {
		return domain.Interest{}, Internal("interest.get", err)
	}
	if n.OwnerID != ownerID {
		s.count("interest."+action, errRejected)
		return domain.Interest{}, Permission("only the item owner can decide on an interest")
	}

	status := domain.InterestAccepted
	event := events.InterestAccepted
	if action == ActionAccept {
		if !shareEmail && !sharePhone {
			return domain.Interest{}, Validation("share at least one contact (email or phone) to accept")
		}
	} else {
		status, event = domain.InterestRejected, events.InterestRejected
		shareEmail, sharePhone = false, false
	}
	if n.Status != domain.InterestPending {
		return domain.Interest{}, Conflict("interest already decided")
	}

	now := s.now()
	updated, err := s.Store.Interests.Decide(ctx, interestID, status, shareEmail, sharePhone, now)
	s.count("interest."+action, err)
	if err != nil {
		return domain.Interest{}, Internal("interest.decide", err)
	}
	if updated == 0 {
		return domain.Interest{}, Conflict("interest already decided")
	}
	s.publish(ctx, event, ownerID, map[string]any{"interestId": interestID, "itemId": n.ItemID, "userId": n.UserID})

	out := n.Interest
	out.Status, out.ShareEmail, out.SharePhone, out.DecidedAt = status, shareEmail, sharePhone, &now
	return out, nil
}

type InterestLists struct {
	Received []repos.InterestView `json:"received"`
	Sent     []repos.InterestView `json:"sent"`
}

func (s *InterestService) List(ctx context.Context, userID string) (InterestLists, error) {
	recv, err := s.Store.Interests.ListReceived(ctx, userID)
	if err != nil {
		return InterestLists{}, Internal("interest.received", err)
	}
	sent, err := s.Store.Interests.ListSent(ctx, userID)
	if err != nil {
		return InterestLists{}, Internal("interest.sent", err)
	}
	return InterestLists{Received: recv, Sent: sent}, nil
}
