package main

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/villagemarket/village-market/config"
	"github.com/villagemarket/village-market/internal/domain/entity"
	repo "github.com/villagemarket/village-market/internal/domain/repository"
	pginfra "github.com/villagemarket/village-market/internal/infrastructure/postgres"
	"github.com/villagemarket/village-market/pkg/helpers"
)

var teamSeed = []entity.TeamMember{
	{Name: "Adaeze Okafor", Role: "Founder & CEO", Bio: "Connects farming communities with city buyers.", DisplayOrder: 1},
	{Name: "Tunde Bakare", Role: "Head of Operations", Bio: "Runs sourcing, logistics and delivery.", DisplayOrder: 2},
	{Name: "Hauwa Sani", Role: "Community Lead", Bio: "Supports creators through verification.", DisplayOrder: 3},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env, cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{AppName: cfg.AppName + "-seed", MaxConns: 2})
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	users := pginfra.NewUserRepository(pool)
	team := pginfra.NewTeamMemberRepository(pool)

	admin, err := ensureUser(ctx, users, cfg.SeedAdminName, cfg.SeedAdminEmail, cfg.SeedAdminPassword, entity.RoleAdmin)
	if err != nil {
		logger.WithError(err).Fatal("failed to seed admin")
	}
	logger.WithFields(logrus.Fields{"id": admin.ID, "email": admin.Email}).Info("admin ready")

	if err := seedTeam(ctx, team); err != nil {
		logger.WithError(err).Fatal("failed to seed team members")
	}

	if cfg.SeedDemoData {
		creators := pginfra.NewCreatorRepository(pool)
		pools := pginfra.NewPoolRepository(pool)
		if err := seedDemo(ctx, logger, users, creators, pools); err != nil {
			logger.WithError(err).Fatal("failed to seed demo data")
		}
	}
	logger.Info("seed complete")
}

func ensureUser(ctx context.Context, users repo.UserRepository, name, email, password string, role entity.Role) (*entity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := users.GetByEmail(ctx, email)
	if err == nil {
		if u.Role != role {
			u.Role = role
			return u, users.Update(ctx, u)
		}
		return u, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u = &entity.User{Name: name, Email: email, Password: hash, Role: role, Status: entity.UserActive}
	return u, users.Create(ctx, u)
}

func seedTeam(ctx context.Context, team repo.TeamMemberRepository) error {
	existing, err := team.List(ctx)
	if err != nil || len(existing) > 0 {
		return err
	}
	for i := range teamSeed {
		m := teamSeed[i]
		if err := team.Create(ctx, &m); err != nil {
			return err
		}
	}
	return nil
}

func seedDemo(ctx context.Context, logger *logrus.Logger, users repo.UserRepository, creators repo.CreatorRepository, pools repo.PoolRepository) error {
	u, err := ensureUser(ctx, users, "Demo Creator", "creator@villagemarket.local", "creator123", entity.RoleContributor)
	if err != nil {
		return err
	}
	c, err := creators.GetByUserID(ctx, u.ID)
	if errors.Is(err, repo.ErrNotFound) {
		c = &entity.Creator{
			UserID:       u.ID,
			Name:         u.Name,
			Email:        u.Email,
			Phone:        "+2348012345678",
			Organization: "Demo Farms Cooperative",
			Address:      "12 Market Road, Ibadan",
			IDType:       entity.IDTypeNIN,
			IDNumber:     "12345678901",
			Status:       entity.CreatorVerified,
		}
		err = creators.Create(ctx, c)
	}
	if err != nil {
		return err
	}
	if c.PoolsCreated > 0 {
		logger.Info("demo pools already present")
		return nil
	}

	demo := []entity.Pool{
		{
			Title:        "50kg bag of rice",
			Description:  "Bulk purchase of premium parboiled rice, split into 20 slots.",
			Category:     entity.CategoryFoodStuffs,
			Goal:         500000,
			Contributors: 20,
			State:        "Oyo",
			City:         "Ibadan",
		},
		{
			Title:        "Festive cow share",
			Description:  "One healthy cow shared between 10 households.",
			Category:     entity.CategoryLivestock,
			Goal:         1200000,
			Contributors: 10,
			State:        "Lagos",
			City:         "Ikeja",
			Deadline:     time.Now().AddDate(0, 1, 0),
		},
	}
	for i := range demo {
		p := demo[i]
		p.Slug = helpers.UniqueSlug(p.Title)
		p.Status = entity.PoolActive
		p.CreatorID = c.ID
		if err := pools.Create(ctx, &p); err != nil {
			return err
		}
		logger.WithFields(logrus.Fields{"pool_id": p.ID, "slug": p.Slug}).Info("demo pool created")
	}
	return nil
}
