package application

import (
	"context"
	"errors"

	"github.com/villagemarket/village-market/internal/domain/entity"
	repo "github.com/villagemarket/village-market/internal/domain/repository"
)

// Actor is the authenticated caller of a service method.
type Actor struct {
	UserID string
	Role   entity.Role
}

func (a Actor) IsAdmin() bool { return a.Role == entity.RoleAdmin }

// verifiedCreator resolves the caller's creator profile and requires it to
// be VERIFIED.
func verifiedCreator(ctx context.Context, creators repo.CreatorRepository, userID string) (*entity.Creator, error) {
	c, err := creators.GetByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrCreatorNotVerified
	}
	if err != nil {
		return nil, err
	}
	if !c.IsVerified() {
		return nil, ErrCreatorNotVerified
	}
	return c, nil
}

// canManagePool allows admins and the verified creator owning the pool.
func canManagePool(ctx context.Context, creators repo.CreatorRepository, actor Actor, pool *entity.Pool) error {
	if actor.IsAdmin() {
		return nil
	}
	c, err := verifiedCreator(ctx, creators, actor.UserID)
	if errors.Is(err, ErrCreatorNotVerified) {
		return ErrForbidden
	}
	if err != nil {
		return err
	}
	if c.ID != pool.CreatorID {
		return ErrForbidden
	}
	return nil
}

// notFound translates a repository miss into the service's own sentinel.
func notFound(err, sentinel error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return sentinel
	}
	return err
}
