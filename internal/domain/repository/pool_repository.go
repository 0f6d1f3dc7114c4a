package repository

import (
	"context"

	"github.com/villagemarket/village-market/internal/domain/entity"
)

type PoolFilter struct {
	Status    string
	Category  string
	State     string
	CreatorID string
	Query     string
	Page
}

// PoolRepository persists pools. Create also bumps the owning creator's
// PoolsCreated counter in the same transaction.
type PoolRepository interface {
	Create(ctx context.Context, p *entity.Pool) error
	GetByID(ctx context.Context, id string) (*entity.Pool, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Pool, error)
	// Update returns ErrConflict when the stored goal or contributors differ
	// from p and a slot has already been filled.
	Update(ctx context.Context, p *entity.Pool) error
	// UpdateStatus moves a pool from one status to another and returns
	// ErrConflict when the stored status is no longer from.
	UpdateStatus(ctx context.Context, id string, from, to entity.PoolStatus) error
	// Delete drops the pool together with its unpaid contributions and
	// returns ErrConflict when a successful one exists.
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f PoolFilter) ([]entity.Pool, int, error)
	CountByStatus(ctx context.Context) (map[string]int, error)
	TotalRaised(ctx context.Context) (int64, error)
}
