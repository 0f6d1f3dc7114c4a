package repository

import (
	"context"

	"github.com/villagemarket/village-market/internal/domain/entity"
)

type TeamMemberRepository interface {
	Create(ctx context.Context, m *entity.TeamMember) error
	GetByID(ctx context.Context, id string) (*entity.TeamMember, error)
	Update(ctx context.Context, m *entity.TeamMember) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]entity.TeamMember, error)
}
