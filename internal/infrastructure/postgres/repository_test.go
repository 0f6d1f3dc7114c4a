package postgres

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/villagemarket/village-market/internal/domain/entity"
	"github.com/villagemarket/village-market/internal/domain/repository"
)

// These tests run against a real PostgreSQL named by TEST_DATABASE_URL and
// truncate every table first. They are skipped when it is unset.
func testDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	require.NoError(t, migrateUp(dsn))

	pool, err := NewPool(t.Context(), dsn, PoolOptions{AppName: "village-market-test", MaxConns: 4})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(t.Context(), `TRUNCATE contributions, pools, creators, users, team_members CASCADE`)
	require.NoError(t, err)
	return pool
}

func migrateUp(dsn string) error {
	dir, err := filepath.Abs("../../../db/migrations")
	if err != nil {
		return err
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

type seeded struct {
	buyer   *entity.User
	creator *entity.Creator
	pool    *entity.Pool
}

func seed(t *testing.T, db *pgxpool.Pool, goal int64, slots int) seeded {
	t.Helper()
	ctx := t.Context()
	owner := &entity.User{Name: "Owner", Email: uuid.NewString() + "@example.com", Password: "x", Role: entity.RoleContributor, Status: entity.UserActive}
	buyer := &entity.User{Name: "Buyer", Email: uuid.NewString() + "@example.com", Password: "x", Role: entity.RoleContributor, Status: entity.UserActive}
	users := NewUserRepository(db)
	require.NoError(t, users.Create(ctx, owner))
	require.NoError(t, users.Create(ctx, buyer))

	c := &entity.Creator{UserID: owner.ID, Name: owner.Name, Email: owner.Email, IDType: entity.IDTypeNIN, IDNumber: "12345678901", Status: entity.CreatorVerified}
	require.NoError(t, NewCreatorRepository(db).Create(ctx, c))

	p := &entity.Pool{
		Slug:         "rice-" + uuid.NewString()[:8],
		Title:        "Rice bulk buy",
		Category:     entity.CategoryFoodStuffs,
		Goal:         goal,
		Contributors: slots,
		Deadline:     time.Now().Add(48 * time.Hour),
		Status:       entity.PoolActive,
		CreatorID:    c.ID,
	}
	require.NoError(t, NewPoolRepository(db).Create(ctx, p))
	return seeded{buyer: buyer, creator: c, pool: p}
}

func reserve(t *testing.T, r *ContributionRepository, s seeded, slots int, ttl time.Duration) (*entity.Contribution, int) {
	t.Helper()
	c := &entity.Contribution{
		PoolID:    s.pool.ID,
		UserID:    s.buyer.ID,
		Amount:    s.pool.Goal / int64(s.pool.Contributors) * int64(slots),
		Slots:     slots,
		Reference: "VM-" + uuid.NewString(),
	}
	held := -1
	require.NoError(t, r.Reserve(t.Context(), c, ttl, func(_ *entity.Pool, h int) error {
		held = h
		return nil
	}))
	return c, held
}

func TestContributionRepository_ReserveCountsLiveHolds(t *testing.T) {
	db := testDB(t)
	repo := NewContributionRepository(db)
	s := seed(t, db, 100000, 4)
	ttl := 30 * time.Minute

	c1, held := reserve(t, repo, s, 2, ttl)
	assert.Zero(t, held)
	assert.Equal(t, entity.ContributionPending, c1.Status)

	c2, held := reserve(t, repo, s, 1, ttl)
	assert.Equal(t, 2, held)

	_, err := db.Exec(t.Context(), `UPDATE contributions SET created_at = now() - interval '2 hours' WHERE id = $1`, c1.ID)
	require.NoError(t, err)
	_, held = reserve(t, repo, s, 1, ttl)
	assert.Equal(t, 1, held, "expired hold no longer counts")

	require.NoError(t, repo.MarkFailed(t.Context(), c2.Reference))
	_, held = reserve(t, repo, s, 1, ttl)
	assert.Equal(t, 1, held, "failed hold no longer counts")

	rejected := errors.New("no room")
	err = repo.Reserve(t.Context(), &entity.Contribution{PoolID: s.pool.ID, UserID: s.buyer.ID, Amount: 25000, Slots: 1, Reference: "VM-" + uuid.NewString()},
		ttl, func(*entity.Pool, int) error { return rejected })
	assert.ErrorIs(t, err, rejected)
	n, err := repo.CountForPool(t.Context(), s.pool.ID, entity.ContributionPending)
	require.NoError(t, err)
	assert.Equal(t, 3, n, "rejected hold is rolled back")
}

func TestContributionRepository_SettleCompletesOnLastSlot(t *testing.T) {
	db := testDB(t)
	repo := NewContributionRepository(db)
	s := seed(t, db, 100000, 2)
	ttl := 30 * time.Minute
	a, _ := reserve(t, repo, s, 1, ttl)
	b, _ := reserve(t, repo, s, 1, ttl)
	paidAt := time.Now().UTC().Truncate(time.Second)

	refused := errors.New("amount mismatch")
	_, err := repo.Settle(t.Context(), a.Reference, paidAt, func(*entity.Pool, *entity.Contribution) error { return refused })
	assert.ErrorIs(t, err, refused)

	out, err := repo.Settle(t.Context(), a.Reference, paidAt, nil)
	require.NoError(t, err)
	assert.False(t, out.AlreadySettled)
	assert.Equal(t, entity.ContributionSuccess, out.Contribution.Status)
	assert.Equal(t, entity.PoolActive, out.Pool.Status)
	assert.Equal(t, 1, out.Pool.CurrentContributors)
	assert.Equal(t, int64(50000), out.Pool.CurrentAmount)

	out, err = repo.Settle(t.Context(), b.Reference, paidAt, nil)
	require.NoError(t, err)
	assert.Equal(t, entity.PoolCompleted, out.Pool.Status)
	assert.Equal(t, 2, out.Pool.CurrentContributors)
	assert.Equal(t, int64(100000), out.Pool.CurrentAmount)

	again, err := repo.Settle(t.Context(), b.Reference, paidAt, func(*entity.Pool, *entity.Contribution) error {
		t.Error("check must not run for a settled reference")
		return nil
	})
	require.NoError(t, err)
	assert.True(t, again.AlreadySettled)

	p, err := NewPoolRepository(db).GetByID(t.Context(), s.pool.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, p.CurrentContributors)
	assert.Equal(t, int64(100000), p.CurrentAmount)

	u, err := NewUserRepository(db).GetByID(t.Context(), s.buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100000), u.TotalContributed)
	cr, err := NewCreatorRepository(db).GetByID(t.Context(), s.creator.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100000), cr.TotalRaised)

	require.NoError(t, repo.MarkFailed(t.Context(), a.Reference))
	got, err := repo.GetByReference(t.Context(), a.Reference)
	require.NoError(t, err)
	assert.Equal(t, entity.ContributionSuccess, got.Status, "late failure never undoes a payment")
}

func TestPoolRepository_GuardedWrites(t *testing.T) {
	db := testDB(t)
	pools := NewPoolRepository(db)
	contribs := NewContributionRepository(db)
	s := seed(t, db, 100000, 4)
	ctx := t.Context()

	assert.ErrorIs(t, pools.UpdateStatus(ctx, s.pool.ID, entity.PoolPending, entity.PoolActive), repository.ErrConflict)
	assert.ErrorIs(t, pools.UpdateStatus(ctx, uuid.NewString(), entity.PoolActive, entity.PoolCancelled), repository.ErrNotFound)

	_, err := pools.GetByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	c, _ := reserve(t, contribs, s, 1, time.Hour)
	_, err = contribs.Settle(ctx, c.Reference, time.Now(), nil)
	require.NoError(t, err)

	p := *s.pool
	p.Goal = 200000
	assert.ErrorIs(t, pools.Update(ctx, &p), repository.ErrConflict, "target is fixed once a slot is filled")
	p.Goal = s.pool.Goal
	p.Title = "Rice bulk buy, renamed"
	require.NoError(t, pools.Update(ctx, &p))

	assert.ErrorIs(t, pools.Delete(ctx, s.pool.ID), repository.ErrConflict)

	other := seed(t, db, 100000, 4)
	abandoned, _ := reserve(t, contribs, other, 2, time.Hour)
	require.NoError(t, contribs.MarkFailed(ctx, abandoned.Reference))
	reserve(t, contribs, other, 1, time.Hour)
	require.NoError(t, pools.Delete(ctx, other.pool.ID))
	_, err = contribs.GetByReference(ctx, abandoned.Reference)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	cr, err := NewCreatorRepository(db).GetByID(ctx, other.creator.ID)
	require.NoError(t, err)
	assert.Zero(t, cr.PoolsCreated)

	require.NoError(t, pools.UpdateStatus(ctx, s.pool.ID, entity.PoolActive, entity.PoolCancelled))
	assert.ErrorIs(t, pools.UpdateStatus(ctx, s.pool.ID, entity.PoolActive, entity.PoolCompleted), repository.ErrConflict)
}
