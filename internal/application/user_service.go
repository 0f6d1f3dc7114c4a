package application

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/villagemarket/village-market/internal/domain/entity"
	repo "github.com/villagemarket/village-market/internal/domain/repository"
	"github.com/villagemarket/village-market/internal/infrastructure/storage"
	"github.com/villagemarket/village-market/pkg/helpers"
)

type UserService struct {
	Repo   repo.UserRepository
	Auth   *AuthService
	Images storage.ImageStore
	Logger *logrus.Logger
}

func NewUserService(r repo.UserRepository, auth *AuthService, images storage.ImageStore, logger *logrus.Logger) *UserService {
	return &UserService{Repo: r, Auth: auth, Images: images, Logger: logger}
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return u, nil
}

// UpdateProfileInput carries optional fields; nil leaves a field unchanged.
type UpdateProfileInput struct {
	Name      *string
	Phone     *string
	AvatarURL *string
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) != "" {
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Phone != nil {
		u.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.AvatarURL != nil {
		u.AvatarURL = strings.TrimSpace(*in.AvatarURL)
	}
	if err := s.Repo.Update(ctx, u); err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	s.Auth.TouchSession(ctx, u)
	return u, nil
}

func (s *UserService) ChangePassword(ctx context.Context, userID, current, next string) error {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return notFound(err, ErrUserNotFound)
	}
	if !helpers.CompareHashAndPassword(u.Password, current) {
		return ErrWrongPassword
	}
	hash, err := helpers.HashPassword(next)
	if err != nil {
		return err
	}
	return notFound(s.Repo.UpdatePassword(ctx, userID, hash), ErrUserNotFound)
}

// UploadAvatar stores the image and points the profile at it.
func (s *UserService) UploadAvatar(ctx context.Context, userID string, up Upload) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	url, err := storeImage(ctx, s.Images, "avatars/"+userID, up)
	if err != nil {
		return nil, err
	}
	old := u.AvatarURL
	u.AvatarURL = url
	if err := s.Repo.Update(ctx, u); err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	if err := dropImage(ctx, s.Images, old); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Warn("old avatar delete failed")
	}
	s.Auth.TouchSession(ctx, u)
	return u, nil
}

func (s *UserService) List(ctx context.Context, f repo.UserFilter) ([]entity.User, int, error) {
	return s.Repo.List(ctx, f)
}

// AdminUpdateInput carries optional fields; nil leaves a field unchanged.
type AdminUpdateInput struct {
	Name   *string
	Phone  *string
	Role   *entity.Role
	Status *entity.UserStatus
}

// AdminUpdate edits another account. Suspending or deactivating a user ends
// their session at once.
func (s *UserService) AdminUpdate(ctx context.Context, actor Actor, id string, in AdminUpdateInput) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	if actor.UserID == id {
		if in.Role != nil && *in.Role != u.Role {
			return nil, ErrSelfAction
		}
		if in.Status != nil && *in.Status != entity.UserActive {
			return nil, ErrSelfAction
		}
	}

	if in.Name != nil && strings.TrimSpace(*in.Name) != "" {
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Phone != nil {
		u.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Role != nil {
		u.Role = *in.Role
	}
	if in.Status != nil {
		u.Status = *in.Status
	}
	if err := s.Repo.Update(ctx, u); err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}

	if !u.CanSignIn() || in.Role != nil {
		if err := s.Auth.Revoke(ctx, u.ID); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("session revoke failed")
		}
	} else {
		s.Auth.TouchSession(ctx, u)
	}
	return u, nil
}

// Delete removes an account that has no contributions and owns no pools.
func (s *UserService) Delete(ctx context.Context, actor Actor, id string) error {
	if actor.UserID == id {
		return ErrSelfAction
	}
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return notFound(err, ErrUserNotFound)
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return ErrUserHasHistory
		}
		return notFound(err, ErrUserNotFound)
	}
	if err := s.Auth.Revoke(ctx, id); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", id).Warn("session revoke after delete failed")
	}
	if err := dropImage(ctx, s.Images, u.AvatarURL); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", id).Warn("avatar delete failed")
	}
	return nil
}
