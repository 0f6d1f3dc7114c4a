package application

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/villagemarket/village-market/internal/domain/entity"
)

type fixture struct {
	db       *memDB
	users    memUsers
	creators memCreators
	pools    memPools
	contribs memContributions
	gw       *fakeGateway
	pub      *capturedPublisher
	mail     *Notifier
}

func newFixture() *fixture {
	db := newMemDB()
	pub := &capturedPublisher{}
	return &fixture{
		db:       db,
		users:    memUsers{db},
		creators: memCreators{db},
		pools:    memPools{db},
		contribs: memContributions{db},
		gw:       newFakeGateway(),
		pub:      pub,
		mail:     NewNotifier(pub, nil, nil),
	}
}

func (f *fixture) user(t *testing.T, email string, role entity.Role) *entity.User {
	t.Helper()
	u := &entity.User{Name: "User " + email, Email: email, Role: role, Status: entity.UserActive}
	require.NoError(t, f.users.Create(t.Context(), u))
	return u
}

func (f *fixture) creator(t *testing.T, owner *entity.User, status entity.CreatorStatus) *entity.Creator {
	t.Helper()
	c := &entity.Creator{UserID: owner.ID, Name: owner.Name, Email: owner.Email, IDType: entity.IDTypeNIN, IDNumber: "12345678901", Status: status}
	require.NoError(t, f.creators.Create(t.Context(), c))
	return c
}

func (f *fixture) pool(t *testing.T, c *entity.Creator, goal int64, slots int, status entity.PoolStatus) *entity.Pool {
	t.Helper()
	p := &entity.Pool{
		Slug:         "pool-" + uuid.NewString()[:8],
		Title:        "Rice bulk buy",
		Category:     entity.CategoryFoodStuffs,
		Goal:         goal,
		Contributors: slots,
		Deadline:     time.Now().Add(48 * time.Hour),
		Status:       status,
		CreatorID:    c.ID,
	}
	require.NoError(t, f.pools.Create(t.Context(), p))
	return p
}

func (f *fixture) contributionService() *ContributionService {
	return NewContributionService(f.contribs, f.pools, f.users, f.creators, f.gw, nil, f.mail, nil, ContributionConfig{Currency: "NGN"})
}

func (f *fixture) poolService() *PoolService {
	return NewPoolService(f.pools, f.creators, f.contribs, nil, nil, nil)
}

func actorOf(u *entity.User) Actor { return Actor{UserID: u.ID, Role: u.Role} }
