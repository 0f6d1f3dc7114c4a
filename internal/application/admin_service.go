package application

import (
	"context"
	"strings"

	repo "github.com/villagemarket/village-market/internal/domain/repository"
)

type AdminService struct {
	Users         repo.UserRepository
	Creators      repo.CreatorRepository
	Pools         repo.PoolRepository
	Contributions repo.ContributionRepository
}

func NewAdminService(users repo.UserRepository, creators repo.CreatorRepository, pools repo.PoolRepository, contributions repo.ContributionRepository) *AdminService {
	return &AdminService{Users: users, Creators: creators, Pools: pools, Contributions: contributions}
}

type Stats struct {
	UsersByRole             map[string]int `json:"users_by_role"`
	UsersByStatus           map[string]int `json:"users_by_status"`
	TotalUsers              int            `json:"total_users"`
	CreatorsByStatus        map[string]int `json:"creators_by_status"`
	PoolsByStatus           map[string]int `json:"pools_by_status"`
	TotalRaised             int64          `json:"total_raised"`
	SuccessfulContributions int            `json:"successful_contributions"`
}

// Stats gathers the dashboard counters.
func (s *AdminService) Stats(ctx context.Context) (*Stats, error) {
	users, err := s.Users.CountBy(ctx)
	if err != nil {
		return nil, err
	}
	out := &Stats{UsersByRole: map[string]int{}, UsersByStatus: map[string]int{}}
	for k, n := range users {
		switch {
		case strings.HasPrefix(k, "role:"):
			out.UsersByRole[strings.TrimPrefix(k, "role:")] = n
			out.TotalUsers += n
		case strings.HasPrefix(k, "status:"):
			out.UsersByStatus[strings.TrimPrefix(k, "status:")] = n
		}
	}

	if out.CreatorsByStatus, err = s.Creators.CountByStatus(ctx); err != nil {
		return nil, err
	}
	if out.PoolsByStatus, err = s.Pools.CountByStatus(ctx); err != nil {
		return nil, err
	}
	if out.TotalRaised, err = s.Pools.TotalRaised(ctx); err != nil {
		return nil, err
	}
	if out.SuccessfulContributions, err = s.Contributions.CountSuccessful(ctx); err != nil {
		return nil, err
	}
	return out, nil
}
