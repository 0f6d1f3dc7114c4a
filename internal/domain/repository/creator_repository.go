package repository

import (
	"context"

	"github.com/villagemarket/village-market/internal/domain/entity"
)

type CreatorFilter struct {
	Status string
	Query  string
	Page
}

type CreatorRepository interface {
	Create(ctx context.Context, c *entity.Creator) error
	GetByID(ctx context.Context, id string) (*entity.Creator, error)
	GetByUserID(ctx context.Context, userID string) (*entity.Creator, error)
	Update(ctx context.Context, c *entity.Creator) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f CreatorFilter) ([]entity.Creator, int, error)
	CountByStatus(ctx context.Context) (map[string]int, error)
}
