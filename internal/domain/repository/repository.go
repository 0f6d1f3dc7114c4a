package repository

import (
	"context"
	"errors"

	"github.com/villagemarket/village-market/internal/domain/entity"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrConflict covers unique and foreign key violations.
	ErrConflict = errors.New("conflict")
)

// Page bounds list queries. Limit <= 0 means the repository default.
type Page struct {
	Limit  int
	Offset int
}

// UserFilter narrows admin user listings. Empty fields match everything.
type UserFilter struct {
	Role   string
	Status string
	Query  string
	Page
}

type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	UpdatePassword(ctx context.Context, id, hash string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f UserFilter) ([]entity.User, int, error)
	// CountBy returns counts keyed "role:<ROLE>" and "status:<STATUS>".
	CountBy(ctx context.Context) (map[string]int, error)
}
