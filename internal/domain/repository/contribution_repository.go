package repository

import (
	"context"
	"time"

	"github.com/villagemarket/village-market/internal/domain/entity"
)

type ContributionFilter struct {
	PoolID         string
	UserID         string
	Status         string
	DeliveryStatus string
	Page
}

// HoldCheck runs inside the reservation transaction with the pool row
// locked. held is the number of slots currently reserved by live PENDING
// contributions. Returning an error aborts the reservation.
type HoldCheck func(pool *entity.Pool, held int) error

// SettleCheck runs inside the settlement transaction with both the
// contribution and its pool locked. Returning an error aborts settlement.
type SettleCheck func(pool *entity.Pool, c *entity.Contribution) error

// Settlement is the outcome of settling a reference.
type Settlement struct {
	Contribution *entity.Contribution
	Pool         *entity.Pool
	// AlreadySettled is true when the reference was SUCCESS before the call.
	AlreadySettled bool
}

type ContributionRepository interface {
	// Reserve inserts c as PENDING once check accepts the locked pool.
	// Holds older than holdTTL do not count towards held.
	Reserve(ctx context.Context, c *entity.Contribution, holdTTL time.Duration, check HoldCheck) error
	// Settle marks the contribution SUCCESS and applies its amount and slots
	// to the pool, the payer and the creator atomically. The pool becomes
	// COMPLETED when its last slot fills.
	Settle(ctx context.Context, reference string, paidAt time.Time, check SettleCheck) (*Settlement, error)
	MarkFailed(ctx context.Context, reference string) error
	GetByID(ctx context.Context, id string) (*entity.Contribution, error)
	GetByReference(ctx context.Context, reference string) (*entity.Contribution, error)
	UpdateDelivery(ctx context.Context, id string, status entity.DeliveryStatus) error
	List(ctx context.Context, f ContributionFilter) ([]entity.Contribution, int, error)
	CountSuccessful(ctx context.Context) (int, error)
	CountForPool(ctx context.Context, poolID string, status entity.ContributionStatus) (int, error)
}
