package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/villagemarket/village-market/internal/domain/entity"
	"github.com/villagemarket/village-market/internal/domain/pricing"
	repo "github.com/villagemarket/village-market/internal/domain/repository"
	"github.com/villagemarket/village-market/internal/infrastructure/payment"
	tpl "github.com/villagemarket/village-market/pkg/mailer/templates"
)

const (
	defaultHoldTTL  = 30 * time.Minute
	koboPerNaira    = 100
	referencePrefix = "VM-"
	broadcastPage   = 100
)

type ContributionService struct {
	Repo        repo.ContributionRepository
	Pools       repo.PoolRepository
	Users       repo.UserRepository
	Creators    repo.CreatorRepository
	Gateway     PaymentGateway
	Index       PoolSearcher
	Mail        *Notifier
	Logger      *logrus.Logger
	Currency    string
	CallbackURL string
	HoldTTL     time.Duration
	Now         func() time.Time
}

type ContributionConfig struct {
	Currency    string
	CallbackURL string
	HoldTTL     time.Duration
}

func NewContributionService(r repo.ContributionRepository, pools repo.PoolRepository, users repo.UserRepository, creators repo.CreatorRepository, gw PaymentGateway, index PoolSearcher, mail *Notifier, logger *logrus.Logger, cfg ContributionConfig) *ContributionService {
	if cfg.HoldTTL <= 0 {
		cfg.HoldTTL = defaultHoldTTL
	}
	if cfg.Currency == "" {
		cfg.Currency = "NGN"
	}
	return &ContributionService{
		Repo:        r,
		Pools:       pools,
		Users:       users,
		Creators:    creators,
		Gateway:     gw,
		Index:       index,
		Mail:        mail,
		Logger:      logger,
		Currency:    cfg.Currency,
		CallbackURL: cfg.CallbackURL,
		HoldTTL:     cfg.HoldTTL,
		Now:         time.Now,
	}
}

func (s *ContributionService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func newReference() string {
	return referencePrefix + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
}

type InitializeInput struct {
	PoolID string
	Slots  int
	// Amount is what the client believes it is paying; nil skips the check.
	Amount *int64
}

// Checkout is a reserved contribution and the gateway page to pay it on.
type Checkout struct {
	Contribution     *entity.Contribution
	AuthorizationURL string
	AccessCode       string
}

// Initialize prices the slots server-side, holds them with a PENDING
// contribution and opens a gateway transaction.
func (s *ContributionService) Initialize(ctx context.Context, userID string, in InitializeInput) (*Checkout, error) {
	if s.Gateway == nil {
		return nil, ErrPaymentsDisabled
	}

	p, err := s.Pools.GetByID(ctx, in.PoolID)
	if err != nil {
		return nil, notFound(err, ErrPoolNotFound)
	}
	if !p.AcceptsContributions(s.now()) {
		return nil, ErrPoolClosed
	}
	q, err := pricing.Quote(p.Goal, p.Contributors, p.CurrentContributors, in.Slots)
	if err != nil {
		return nil, quoteErr(err)
	}
	if in.Amount != nil && *in.Amount != q.Total {
		return nil, ErrAmountMismatch
	}
	if q.Total <= 0 || q.Total > math.MaxInt64/koboPerNaira {
		return nil, ErrInvalidGoal
	}

	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}

	c := &entity.Contribution{
		PoolID:         p.ID,
		UserID:         u.ID,
		Amount:         q.Total,
		Slots:          in.Slots,
		Reference:      newReference(),
		Status:         entity.ContributionPending,
		DeliveryStatus: entity.DeliveryPending,
	}
	err = s.Repo.Reserve(ctx, c, s.HoldTTL, func(locked *entity.Pool, held int) error {
		if !locked.AcceptsContributions(s.now()) {
			return ErrPoolClosed
		}
		if in.Slots > pricing.RemainingSlots(locked.Contributors, locked.CurrentContributors)-held {
			return ErrSlotsUnavailable
		}
		if pricing.Total(pricing.PerSlot(locked.Goal, locked.Contributors), in.Slots) != c.Amount {
			return ErrAmountMismatch
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	res, err := s.Gateway.Initialize(ctx, payment.InitializeRequest{
		Email:       u.Email,
		Amount:      c.Amount * koboPerNaira,
		Reference:   c.Reference,
		Currency:    s.Currency,
		CallbackURL: s.CallbackURL,
		Metadata: map[string]any{
			"contribution_id": c.ID,
			"pool_id":         p.ID,
			"slots":           c.Slots,
		},
	})
	if err != nil {
		if mErr := s.Repo.MarkFailed(context.WithoutCancel(ctx), c.Reference); mErr != nil && s.Logger != nil {
			s.Logger.WithError(mErr).WithField("reference", c.Reference).Warn("release hold failed")
		}
		if errors.Is(err, payment.ErrNotConfigured) {
			return nil, ErrPaymentsDisabled
		}
		return nil, fmt.Errorf("initialize payment: %w", err)
	}

	c.PoolTitle, c.UserName, c.UserEmail = p.Title, u.Name, u.Email
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"reference": c.Reference, "pool_id": p.ID, "slots": c.Slots, "amount": c.Amount}).Info("payment initialized")
	}
	return &Checkout{Contribution: c, AuthorizationURL: res.AuthorizationURL, AccessCode: res.AccessCode}, nil
}

// Verify settles reference for actor, who must be the payer, the pool's
// creator or an admin.
func (s *ContributionService) Verify(ctx context.Context, actor Actor, reference string) (*entity.Contribution, error) {
	c, err := s.Repo.GetByReference(ctx, reference)
	if err != nil {
		return nil, notFound(err, ErrContributionNotFound)
	}
	if c.UserID != actor.UserID {
		if _, err := s.managePool(ctx, actor, c.PoolID); err != nil {
			return nil, err
		}
	}
	return s.verify(ctx, c)
}

// Confirm settles reference when the gateway redirects the browser back.
// Its result only drives the redirect target.
func (s *ContributionService) Confirm(ctx context.Context, reference string) (*entity.Contribution, error) {
	c, err := s.Repo.GetByReference(ctx, reference)
	if err != nil {
		return nil, notFound(err, ErrContributionNotFound)
	}
	return s.verify(ctx, c)
}

// verify asks the gateway for the state of c and settles it. Settling an
// already successful reference returns it unchanged.
func (s *ContributionService) verify(ctx context.Context, c *entity.Contribution) (*entity.Contribution, error) {
	reference := c.Reference
	switch c.Status {
	case entity.ContributionSuccess:
		return c, nil
	case entity.ContributionFailed:
		return c, ErrPaymentFailed
	}
	if s.Gateway == nil {
		return nil, ErrPaymentsDisabled
	}
	tx, err := s.Gateway.Verify(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("verify payment: %w", err)
	}
	return s.settle(ctx, c, tx)
}

// HandleWebhook settles charge.success events posted by the gateway. Other
// events and unknown references are ignored.
func (s *ContributionService) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	if s.Gateway == nil {
		return ErrPaymentsDisabled
	}
	if !s.Gateway.VerifySignature(body, signature) {
		return ErrInvalidSignature
	}
	var ev payment.WebhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("decode webhook: %w", err)
	}
	if ev.Event != payment.EventChargeSuccess {
		return nil
	}

	c, err := s.Repo.GetByReference(ctx, ev.Data.Reference)
	if errors.Is(err, repo.ErrNotFound) {
		if s.Logger != nil {
			s.Logger.WithField("reference", ev.Data.Reference).Warn("webhook for unknown reference")
		}
		return nil
	}
	if err != nil {
		return err
	}
	if c.Status != entity.ContributionPending {
		return nil
	}
	_, err = s.settle(ctx, c, &ev.Data)
	return err
}

func (s *ContributionService) settle(ctx context.Context, c *entity.Contribution, tx *payment.Transaction) (*entity.Contribution, error) {
	log := s.entry(c.Reference)

	switch tx.Status {
	case payment.StatusSuccess:
	case payment.StatusFailed, payment.StatusAbandoned:
		s.fail(ctx, c.Reference)
		return nil, ErrPaymentFailed
	default:
		return nil, ErrPaymentPending
	}

	if tx.Amount != c.Amount*koboPerNaira || (tx.Currency != "" && !strings.EqualFold(tx.Currency, s.Currency)) {
		if log != nil {
			log.WithFields(logrus.Fields{"expected": c.Amount * koboPerNaira, "paid": tx.Amount, "currency": tx.Currency}).Error("paid amount does not match contribution")
		}
		s.fail(ctx, c.Reference)
		return nil, ErrAmountMismatch
	}

	paidAt := s.now()
	if tx.PaidAt != nil && !tx.PaidAt.IsZero() {
		paidAt = *tx.PaidAt
	}

	st, err := s.Repo.Settle(ctx, c.Reference, paidAt, func(p *entity.Pool, pending *entity.Contribution) error {
		if p.Status != entity.PoolActive {
			return ErrPoolClosed
		}
		if pending.Slots > pricing.RemainingSlots(p.Contributors, p.CurrentContributors) {
			return ErrSlotsUnavailable
		}
		return nil
	})
	if errors.Is(err, ErrPoolClosed) || errors.Is(err, ErrSlotsUnavailable) {
		if log != nil {
			log.WithError(err).Error("paid contribution could not be applied; refund required")
		}
		s.fail(ctx, c.Reference)
		return nil, err
	}
	if err != nil {
		return nil, notFound(err, ErrContributionNotFound)
	}
	if st.AlreadySettled {
		return mergeSettled(c, st.Contribution), nil
	}

	settled := mergeSettled(c, st.Contribution)
	if log != nil {
		log.WithFields(logrus.Fields{"pool_id": st.Pool.ID, "filled": st.Pool.CurrentContributors, "pool_status": st.Pool.Status}).Info("contribution settled")
	}
	if s.Index != nil {
		s.Index.IndexPool(context.WithoutCancel(ctx), st.Pool)
	}
	s.Mail.Send(ctx, settled.UserEmail, tpl.ContributionReceipt, tpl.NewContributionReceiptData(
		s.Mail.Config(), settled.UserName, settled.UserEmail, settled.PoolTitle, settled.Amount, settled.Slots, settled.Reference,
		tpl.WithTime(paidAt),
	))
	return settled, nil
}

// mergeSettled keeps the joined read fields of c and takes the payment
// state from the settled row.
func mergeSettled(c, settled *entity.Contribution) *entity.Contribution {
	out := *c
	if settled != nil {
		out.Status = settled.Status
		out.PaidAt = settled.PaidAt
		out.DeliveryStatus = settled.DeliveryStatus
	}
	return &out
}

func (s *ContributionService) fail(ctx context.Context, reference string) {
	if err := s.Repo.MarkFailed(context.WithoutCancel(ctx), reference); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("reference", reference).Warn("mark contribution failed")
	}
}

func (s *ContributionService) entry(reference string) *logrus.Entry {
	if s.Logger == nil {
		return nil
	}
	return s.Logger.WithField("reference", reference)
}

func (s *ContributionService) Get(ctx context.Context, actor Actor, id string) (*entity.Contribution, error) {
	c, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrContributionNotFound)
	}
	if c.UserID == actor.UserID {
		return c, nil
	}
	if _, err := s.managePool(ctx, actor, c.PoolID); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ContributionService) managePool(ctx context.Context, actor Actor, idOrSlug string) (*entity.Pool, error) {
	p, err := findPool(ctx, s.Pools, idOrSlug)
	if err != nil {
		return nil, err
	}
	return p, canManagePool(ctx, s.Creators, actor, p)
}

func (s *ContributionService) ListMine(ctx context.Context, userID string, f repo.ContributionFilter) ([]entity.Contribution, int, error) {
	f.UserID = userID
	return s.Repo.List(ctx, f)
}

// ListForPool is open to the pool's creator and admins.
func (s *ContributionService) ListForPool(ctx context.Context, actor Actor, idOrSlug string, f repo.ContributionFilter) ([]entity.Contribution, int, error) {
	p, err := s.managePool(ctx, actor, idOrSlug)
	if err != nil {
		return nil, 0, err
	}
	f.PoolID = p.ID
	return s.Repo.List(ctx, f)
}

func (s *ContributionService) ListAll(ctx context.Context, f repo.ContributionFilter) ([]entity.Contribution, int, error) {
	return s.Repo.List(ctx, f)
}

// UpdateDelivery advances delivery tracking of a paid contribution and
// tells the contributor.
func (s *ContributionService) UpdateDelivery(ctx context.Context, actor Actor, id string, to entity.DeliveryStatus) (*entity.Contribution, error) {
	c, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrContributionNotFound)
	}
	if _, err := s.managePool(ctx, actor, c.PoolID); err != nil {
		return nil, err
	}
	if c.Status != entity.ContributionSuccess {
		return nil, ErrNotPaid
	}
	if !entity.CanAdvanceDelivery(c.DeliveryStatus, to) {
		return nil, ErrInvalidDelivery
	}
	if err := s.Repo.UpdateDelivery(ctx, c.ID, to); err != nil {
		return nil, notFound(err, ErrContributionNotFound)
	}
	c.DeliveryStatus = to
	c.UpdatedAt = s.now()

	s.Mail.Send(ctx, c.UserEmail, tpl.DeliveryUpdate, tpl.NewDeliveryUpdateData(s.Mail.Config(), c.UserName, c.UserEmail, c.PoolTitle, string(to)))
	return c, nil
}

// Broadcast emails every paying contributor of a pool once. It returns the
// number of recipients.
func (s *ContributionService) Broadcast(ctx context.Context, actor Actor, idOrSlug, subject, message string) (int, error) {
	p, err := s.managePool(ctx, actor, idOrSlug)
	if err != nil {
		return 0, err
	}

	seen := map[string]bool{}
	f := repo.ContributionFilter{PoolID: p.ID, Status: string(entity.ContributionSuccess), Page: repo.Page{Limit: broadcastPage}}
	for {
		items, total, err := s.Repo.List(ctx, f)
		if err != nil {
			return len(seen), err
		}
		for _, c := range items {
			if c.UserEmail == "" || seen[c.UserEmail] {
				continue
			}
			seen[c.UserEmail] = true
			s.Mail.Send(ctx, c.UserEmail, tpl.PoolBroadcast, tpl.NewPoolBroadcastData(s.Mail.Config(), c.UserName, c.UserEmail, p.Title, subject, message))
		}
		f.Offset += len(items)
		if len(items) == 0 || f.Offset >= total {
			break
		}
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"pool_id": p.ID, "recipients": len(seen)}).Info("pool broadcast queued")
	}
	return len(seen), nil
}
