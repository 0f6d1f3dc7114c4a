package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/villagemarket/village-market/internal/domain/entity"
	"github.com/villagemarket/village-market/internal/domain/pricing"
	repo "github.com/villagemarket/village-market/internal/domain/repository"
	"github.com/villagemarket/village-market/internal/infrastructure/storage"
	"github.com/villagemarket/village-market/pkg/helpers"
)

const slugAttempts = 3

type PoolService struct {
	Repo          repo.PoolRepository
	Creators      repo.CreatorRepository
	Contributions repo.ContributionRepository
	Index         PoolSearcher
	Images        storage.ImageStore
	Logger        *logrus.Logger
	Now           func() time.Time
}

func NewPoolService(r repo.PoolRepository, creators repo.CreatorRepository, contributions repo.ContributionRepository, search PoolSearcher, images storage.ImageStore, logger *logrus.Logger) *PoolService {
	return &PoolService{
		Repo:          r,
		Creators:      creators,
		Contributions: contributions,
		Index:         search,
		Images:        images,
		Logger:        logger,
		Now:           time.Now,
	}
}

func (s *PoolService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *PoolService) index(ctx context.Context, p *entity.Pool) {
	if s.Index != nil && p != nil {
		s.Index.IndexPool(context.WithoutCancel(ctx), p)
	}
}

// Get resolves a pool by uuid or slug.
func (s *PoolService) Get(ctx context.Context, idOrSlug string) (*entity.Pool, error) {
	return findPool(ctx, s.Repo, idOrSlug)
}

// findPool looks a pool up by UUID, or by slug for anything else.
func findPool(ctx context.Context, pools repo.PoolRepository, idOrSlug string) (*entity.Pool, error) {
	var (
		p   *entity.Pool
		err error
	)
	if _, perr := uuid.Parse(idOrSlug); perr == nil {
		p, err = pools.GetByID(ctx, idOrSlug)
	} else {
		p, err = pools.GetBySlug(ctx, idOrSlug)
	}
	if err != nil {
		return nil, notFound(err, ErrPoolNotFound)
	}
	return p, nil
}

func (s *PoolService) List(ctx context.Context, f repo.PoolFilter) ([]entity.Pool, int, error) {
	return s.Repo.List(ctx, f)
}

// ListForCreator lists pools owned by the caller's creator profile.
func (s *PoolService) ListForCreator(ctx context.Context, userID string, f repo.PoolFilter) ([]entity.Pool, int, error) {
	c, err := s.Creators.GetByUserID(ctx, userID)
	if err != nil {
		return nil, 0, notFound(err, ErrCreatorNotFound)
	}
	f.CreatorID = c.ID
	return s.Repo.List(ctx, f)
}

// Search queries the full-text index and falls back to a SQL match when the
// index is unavailable.
func (s *PoolService) Search(ctx context.Context, q, status string, limit int) ([]entity.Pool, error) {
	q = strings.TrimSpace(q)
	if s.Index != nil && q != "" {
		ids, err := s.Index.SearchPools(ctx, q, status, limit)
		if err == nil {
			out := make([]entity.Pool, 0, len(ids))
			for _, id := range ids {
				p, gErr := s.Repo.GetByID(ctx, id)
				if errors.Is(gErr, repo.ErrNotFound) {
					continue
				}
				if gErr != nil {
					return nil, gErr
				}
				out = append(out, *p)
			}
			return out, nil
		}
		if s.Logger != nil {
			s.Logger.WithError(err).Debug("pool search falling back to sql")
		}
	}
	pools, _, err := s.Repo.List(ctx, repo.PoolFilter{Status: status, Query: q, Page: repo.Page{Limit: limit}})
	return pools, err
}

// Quote prices slots against the pool's current fill.
func (s *PoolService) Quote(ctx context.Context, idOrSlug string, slots int) (*entity.Pool, pricing.Quotation, error) {
	p, err := s.Get(ctx, idOrSlug)
	if err != nil {
		return nil, pricing.Quotation{}, err
	}
	q, err := pricing.Quote(p.Goal, p.Contributors, p.CurrentContributors, slots)
	return p, q, quoteErr(err)
}

func quoteErr(err error) error {
	switch {
	case errors.Is(err, pricing.ErrInvalidSlots):
		return ErrInvalidSlots
	case errors.Is(err, pricing.ErrNoSlotsLeft):
		return ErrSlotsUnavailable
	}
	return err
}

type PoolInput struct {
	Title        string
	Description  string
	Category     entity.Category
	Goal         int64
	Contributors int
	State        string
	City         string
	Address      string
	Deadline     time.Time
	ImageURL     string
	// CreatorID is honored for admins only.
	CreatorID string
}

// Create opens a pool. Verified creators get a PENDING pool awaiting admin
// approval; admins create ACTIVE pools on behalf of any creator.
func (s *PoolService) Create(ctx context.Context, actor Actor, in PoolInput) (*entity.Pool, error) {
	if !in.Deadline.IsZero() && !in.Deadline.After(s.now()) {
		return nil, ErrInvalidDeadline
	}
	if in.Goal <= 0 || in.Goal > pricing.MaxGoal {
		return nil, ErrInvalidGoal
	}

	p := &entity.Pool{
		Title:        strings.TrimSpace(in.Title),
		Description:  strings.TrimSpace(in.Description),
		Category:     in.Category,
		ImageURL:     strings.TrimSpace(in.ImageURL),
		Goal:         in.Goal,
		Contributors: in.Contributors,
		State:        strings.TrimSpace(in.State),
		City:         strings.TrimSpace(in.City),
		Address:      strings.TrimSpace(in.Address),
		Deadline:     in.Deadline,
	}

	if actor.IsAdmin() {
		c, err := s.Creators.GetByID(ctx, in.CreatorID)
		if err != nil {
			return nil, notFound(err, ErrCreatorNotFound)
		}
		p.CreatorID = c.ID
		p.Status = entity.PoolActive
	} else {
		c, err := verifiedCreator(ctx, s.Creators, actor.UserID)
		if err != nil {
			return nil, err
		}
		p.CreatorID = c.ID
		p.Status = entity.PoolPending
	}

	var err error
	for i := 0; i < slugAttempts; i++ {
		p.Slug = helpers.UniqueSlug(p.Title)
		if err = s.Repo.Create(ctx, p); !errors.Is(err, repo.ErrConflict) {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	helpers.LogInfo(s.Logger, "pool created", logrus.Fields{"pool_id": p.ID, "creator_id": p.CreatorID, "status": p.Status})
	s.index(ctx, p)
	return p, nil
}

// PoolUpdate carries optional fields; nil leaves a field unchanged.
type PoolUpdate struct {
	Title        *string
	Description  *string
	Category     *entity.Category
	Goal         *int64
	Contributors *int
	State        *string
	City         *string
	Address      *string
	Deadline     *time.Time
	ImageURL     *string
}

// Update edits a pool. The goal and slot count are fixed once any slot is
// filled.
func (s *PoolService) Update(ctx context.Context, actor Actor, idOrSlug string, in PoolUpdate) (*entity.Pool, error) {
	p, err := s.Get(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}
	if err := canManagePool(ctx, s.Creators, actor, p); err != nil {
		return nil, err
	}
	if p.IsTerminal() {
		return nil, ErrPoolClosed
	}

	if in.Goal != nil && (*in.Goal <= 0 || *in.Goal > pricing.MaxGoal) {
		return nil, ErrInvalidGoal
	}
	targetChanged := (in.Goal != nil && *in.Goal != p.Goal) ||
		(in.Contributors != nil && *in.Contributors != p.Contributors)
	if targetChanged && p.CurrentContributors > 0 {
		return nil, ErrPoolTargetLocked
	}
	if in.Contributors != nil && *in.Contributors < p.CurrentContributors {
		return nil, ErrPoolTargetLocked
	}
	if in.Deadline != nil && !in.Deadline.IsZero() && !in.Deadline.After(s.now()) {
		return nil, ErrInvalidDeadline
	}

	if in.Title != nil && strings.TrimSpace(*in.Title) != "" {
		p.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	if in.Goal != nil {
		p.Goal = *in.Goal
	}
	if in.Contributors != nil {
		p.Contributors = *in.Contributors
	}
	if in.State != nil {
		p.State = strings.TrimSpace(*in.State)
	}
	if in.City != nil {
		p.City = strings.TrimSpace(*in.City)
	}
	if in.Address != nil {
		p.Address = strings.TrimSpace(*in.Address)
	}
	if in.Deadline != nil {
		p.Deadline = *in.Deadline
	}
	if in.ImageURL != nil {
		p.ImageURL = strings.TrimSpace(*in.ImageURL)
	}

	if err := s.Repo.Update(ctx, p); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return nil, ErrPoolTargetLocked
		}
		return nil, notFound(err, ErrPoolNotFound)
	}
	s.index(ctx, p)
	return p, nil
}

// ChangeStatus moves a pool along its lifecycle. Only admins approve
// PENDING pools.
func (s *PoolService) ChangeStatus(ctx context.Context, actor Actor, idOrSlug string, to entity.PoolStatus) (*entity.Pool, error) {
	p, err := s.Get(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}
	if err := canManagePool(ctx, s.Creators, actor, p); err != nil {
		return nil, err
	}
	if !entity.CanTransition(p.Status, to) {
		return nil, ErrInvalidTransition
	}
	if p.Status == entity.PoolPending && to == entity.PoolActive && !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	if err := s.Repo.UpdateStatus(ctx, p.ID, p.Status, to); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return nil, ErrInvalidTransition
		}
		return nil, notFound(err, ErrPoolNotFound)
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"pool_id": p.ID, "from": p.Status, "to": to, "by": actor.UserID}).Info("pool status changed")
	}
	p.Status = to
	p.UpdatedAt = s.now()
	s.index(ctx, p)
	return p, nil
}

func (s *PoolService) UploadImage(ctx context.Context, actor Actor, idOrSlug string, up Upload) (*entity.Pool, error) {
	p, err := s.Get(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}
	if err := canManagePool(ctx, s.Creators, actor, p); err != nil {
		return nil, err
	}
	url, err := storeImage(ctx, s.Images, "pools/"+p.ID, up)
	if err != nil {
		return nil, err
	}
	old := p.ImageURL
	p.ImageURL = url
	if err := s.Repo.Update(ctx, p); err != nil {
		return nil, notFound(err, ErrPoolNotFound)
	}
	if err := dropImage(ctx, s.Images, old); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("pool_id", p.ID).Warn("old pool image delete failed")
	}
	s.index(ctx, p)
	return p, nil
}

// Delete removes a pool nobody has paid into. Admin only.
func (s *PoolService) Delete(ctx context.Context, actor Actor, idOrSlug string) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	p, err := s.Get(ctx, idOrSlug)
	if err != nil {
		return err
	}
	paid, err := s.Contributions.CountForPool(ctx, p.ID, entity.ContributionSuccess)
	if err != nil {
		return err
	}
	if paid > 0 {
		return ErrPoolHasContributions
	}
	if err := s.Repo.Delete(ctx, p.ID); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return ErrPoolHasContributions
		}
		return notFound(err, ErrPoolNotFound)
	}
	if s.Index != nil {
		s.Index.DeletePool(context.WithoutCancel(ctx), p.ID)
	}
	if err := dropImage(ctx, s.Images, p.ImageURL); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("pool_id", p.ID).Warn("pool image delete failed")
	}
	return nil
}
