package entity

import "time"

type Category string

const (
	CategoryFoodStuffs Category = "FOOD_STUFFS"
	CategoryLivestock  Category = "LIVESTOCK"
)

type PoolStatus string

const (
	PoolPending   PoolStatus = "PENDING"
	PoolActive    PoolStatus = "ACTIVE"
	PoolCompleted PoolStatus = "COMPLETED"
	PoolCancelled PoolStatus = "CANCELLED"
)

// Pool is a bulk-purchase campaign split into Contributors slots.
// CurrentContributors counts filled slots, not distinct payers.
type Pool struct {
	ID                  string
	Slug                string
	Title               string
	Description         string
	Category            Category
	ImageURL            string
	Goal                int64
	Contributors        int
	CurrentAmount       int64
	CurrentContributors int
	State               string
	City                string
	Address             string
	Deadline            time.Time
	Status              PoolStatus
	CreatorID           string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// IsTerminal reports whether no further status change is allowed.
func (p *Pool) IsTerminal() bool {
	return p.Status == PoolCompleted || p.Status == PoolCancelled
}

// AcceptsContributions reports whether the pool is open for payment at t.
func (p *Pool) AcceptsContributions(t time.Time) bool {
	if p.Status != PoolActive {
		return false
	}
	return p.Deadline.IsZero() || t.Before(p.Deadline)
}

var poolTransitions = map[PoolStatus][]PoolStatus{
	PoolPending: {PoolActive, PoolCancelled},
	PoolActive:  {PoolCompleted, PoolCancelled},
}

// CanTransition reports whether a pool may move from one status to another.
func CanTransition(from, to PoolStatus) bool {
	for _, s := range poolTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func ValidCategory(c string) bool {
	switch Category(c) {
	case CategoryFoodStuffs, CategoryLivestock:
		return true
	}
	return false
}

func ValidPoolStatus(s string) bool {
	switch PoolStatus(s) {
	case PoolPending, PoolActive, PoolCompleted, PoolCancelled:
		return true
	}
	return false
}
