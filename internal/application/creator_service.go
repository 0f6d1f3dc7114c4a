package application

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/villagemarket/village-market/internal/domain/entity"
	repo "github.com/villagemarket/village-market/internal/domain/repository"
	"github.com/villagemarket/village-market/pkg/helpers"
	tpl "github.com/villagemarket/village-market/pkg/mailer/templates"
)

type CreatorService struct {
	Repo   repo.CreatorRepository
	Mail   *Notifier
	Logger *logrus.Logger
}

func NewCreatorService(r repo.CreatorRepository, mail *Notifier, logger *logrus.Logger) *CreatorService {
	return &CreatorService{Repo: r, Mail: mail, Logger: logger}
}

type CreatorInput struct {
	Name         string
	Email        string
	Phone        string
	Organization string
	Address      string
	IDType       entity.IDType
	IDNumber     string
}

// Register attaches a PENDING creator profile to the caller's account.
func (s *CreatorService) Register(ctx context.Context, userID string, in CreatorInput) (*entity.Creator, error) {
	if _, err := s.Repo.GetByUserID(ctx, userID); err == nil {
		return nil, ErrCreatorExists
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	c := &entity.Creator{
		UserID:       userID,
		Name:         strings.TrimSpace(in.Name),
		Email:        normalizeEmail(in.Email),
		Phone:        strings.TrimSpace(in.Phone),
		Organization: strings.TrimSpace(in.Organization),
		Address:      strings.TrimSpace(in.Address),
		IDType:       in.IDType,
		IDNumber:     strings.TrimSpace(in.IDNumber),
		Status:       entity.CreatorPending,
	}
	if err := s.Repo.Create(ctx, c); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return nil, ErrCreatorExists
		}
		return nil, err
	}
	return c, nil
}

func (s *CreatorService) Mine(ctx context.Context, userID string) (*entity.Creator, error) {
	c, err := s.Repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrCreatorNotFound)
	}
	return c, nil
}

// UpdateMine edits the caller's profile. Identity fields are frozen once the
// profile is VERIFIED.
func (s *CreatorService) UpdateMine(ctx context.Context, userID string, in CreatorInput) (*entity.Creator, error) {
	c, err := s.Repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrCreatorNotFound)
	}

	kycChanged := (in.IDType != "" && in.IDType != c.IDType) ||
		(in.IDNumber != "" && strings.TrimSpace(in.IDNumber) != c.IDNumber) ||
		(in.Name != "" && strings.TrimSpace(in.Name) != c.Name)
	if c.Status == entity.CreatorVerified && kycChanged {
		return nil, ErrCreatorLocked
	}

	setIf(&c.Name, in.Name)
	if in.Email != "" {
		c.Email = normalizeEmail(in.Email)
	}
	setIf(&c.Phone, in.Phone)
	setIf(&c.Organization, in.Organization)
	setIf(&c.Address, in.Address)
	if in.IDType != "" {
		c.IDType = in.IDType
	}
	setIf(&c.IDNumber, in.IDNumber)

	if err := s.Repo.Update(ctx, c); err != nil {
		return nil, notFound(err, ErrCreatorNotFound)
	}
	return c, nil
}

func setIf(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func (s *CreatorService) List(ctx context.Context, f repo.CreatorFilter) ([]entity.Creator, int, error) {
	return s.Repo.List(ctx, f)
}

func (s *CreatorService) Get(ctx context.Context, id string) (*entity.Creator, error) {
	c, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrCreatorNotFound)
	}
	return c, nil
}

// SetStatus verifies, suspends or resets a creator and emails the outcome.
func (s *CreatorService) SetStatus(ctx context.Context, id string, status entity.CreatorStatus) (*entity.Creator, error) {
	c, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrCreatorNotFound)
	}
	if c.Status == status {
		return c, nil
	}
	c.Status = status
	if err := s.Repo.Update(ctx, c); err != nil {
		return nil, notFound(err, ErrCreatorNotFound)
	}
	helpers.LogInfo(s.Logger, "creator status changed", logrus.Fields{"creator_id": c.ID, "status": status})
	var opts []tpl.Option
	if cfg := s.Mail.Config(); cfg != nil && status == entity.CreatorVerified {
		opts = append(opts, tpl.WithActionURL(strings.TrimRight(cfg.FrontendURL, "/")+"/pools/new"))
	}
	s.Mail.Send(ctx, c.Email, tpl.CreatorStatus, tpl.NewCreatorStatusData(s.Mail.Config(), c.Name, c.Email, string(status), opts...))
	return c, nil
}

func (s *CreatorService) Delete(ctx context.Context, id string) error {
	c, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return notFound(err, ErrCreatorNotFound)
	}
	if c.PoolsCreated > 0 {
		return ErrCreatorHasPools
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return ErrCreatorHasPools
		}
		return notFound(err, ErrCreatorNotFound)
	}
	return nil
}
