package application

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/villagemarket/village-market/internal/domain/entity"
	repo "github.com/villagemarket/village-market/internal/domain/repository"
	"github.com/villagemarket/village-market/internal/infrastructure/storage"
)

type TeamMemberService struct {
	Repo   repo.TeamMemberRepository
	Images storage.ImageStore
	Logger *logrus.Logger
}

func NewTeamMemberService(r repo.TeamMemberRepository, images storage.ImageStore, logger *logrus.Logger) *TeamMemberService {
	return &TeamMemberService{Repo: r, Images: images, Logger: logger}
}

func (s *TeamMemberService) List(ctx context.Context) ([]entity.TeamMember, error) {
	return s.Repo.List(ctx)
}

type TeamMemberInput struct {
	Name         *string
	Role         *string
	Bio          *string
	AvatarURL    *string
	DisplayOrder *int
}

func (in TeamMemberInput) apply(m *entity.TeamMember) {
	if in.Name != nil && strings.TrimSpace(*in.Name) != "" {
		m.Name = strings.TrimSpace(*in.Name)
	}
	if in.Role != nil && strings.TrimSpace(*in.Role) != "" {
		m.Role = strings.TrimSpace(*in.Role)
	}
	if in.Bio != nil {
		m.Bio = strings.TrimSpace(*in.Bio)
	}
	if in.AvatarURL != nil {
		m.AvatarURL = strings.TrimSpace(*in.AvatarURL)
	}
	if in.DisplayOrder != nil {
		m.DisplayOrder = *in.DisplayOrder
	}
}

func (s *TeamMemberService) Create(ctx context.Context, in TeamMemberInput) (*entity.TeamMember, error) {
	m := &entity.TeamMember{}
	in.apply(m)
	if err := s.Repo.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *TeamMemberService) Update(ctx context.Context, id string, in TeamMemberInput) (*entity.TeamMember, error) {
	m, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrTeamMemberNotFound)
	}
	in.apply(m)
	if err := s.Repo.Update(ctx, m); err != nil {
		return nil, notFound(err, ErrTeamMemberNotFound)
	}
	return m, nil
}

func (s *TeamMemberService) Delete(ctx context.Context, id string) error {
	m, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return notFound(err, ErrTeamMemberNotFound)
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return notFound(err, ErrTeamMemberNotFound)
	}
	if err := dropImage(ctx, s.Images, m.AvatarURL); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("team_member_id", m.ID).Warn("avatar delete failed")
	}
	return nil
}

func (s *TeamMemberService) UploadAvatar(ctx context.Context, id string, up Upload) (*entity.TeamMember, error) {
	m, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrTeamMemberNotFound)
	}
	url, err := storeImage(ctx, s.Images, "team", up)
	if err != nil {
		return nil, err
	}
	old := m.AvatarURL
	m.AvatarURL = url
	if err := s.Repo.Update(ctx, m); err != nil {
		return nil, notFound(err, ErrTeamMemberNotFound)
	}
	if err := dropImage(ctx, s.Images, old); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("team_member_id", id).Warn("old avatar delete failed")
	}
	return m, nil
}
