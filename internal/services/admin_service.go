package services

import (
	"context"

	"campusmarket/internal/domain"
	"campusmarket/internal/repos"
	"campusmarket/internal/validate"
)

type AdminService struct {
	*Env
}

func NewAdminService(env *Env) *AdminService { return &AdminService{Env: env} }

func (s *AdminService) Users(ctx context.Context) ([]domain.User, error) {
	users, err := s.Store.Users.List(ctx)
	if err != nil {
		return nil, Internal("admin.users", err)
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

// DeleteUser removes a user with everything they own, then refreshes the
// reputation of everyone they had reviewed.
func (s *AdminService) DeleteUser(ctx context.Context, adminID, userID string) error {
	userID, ok := validate.ID(userID)
	if !ok {
		return Validation("invalid user id")
	}
	if userID == adminID {
		return Conflict("admins cannot delete themselves")
	}
	err := s.Store.InTx(ctx, func(r repos.Repos) error {
		subjects, err := r.Users.ReviewedSubjects(ctx, userID)
		if err != nil {
			return Internal("admin.subjects", err)
		}
		n, err := r.Users.Delete(ctx, userID)
		if err != nil {
			return Internal("admin.delete_user", err)
		}
		if n == 0 {
			return NotFound("user not found")
		}
		for _, id := range subjects {
			if err := r.Users.RecomputeReputation(ctx, id); err != nil {
				return Internal("admin.reputation", err)
			}
		}
		return nil
	})
	s.count("admin.delete_user", err)
	if err == nil {
		s.Cache.Bump(ctx, catalogNS)
	}
	return err
}
