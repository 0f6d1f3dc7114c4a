package router

import (
	"context"
	"fmt"

	app "github.com/villagemarket/village-market/internal/application"
	"github.com/villagemarket/village-market/internal/container"
	pginfra "github.com/villagemarket/village-market/internal/infrastructure/postgres"
	"github.com/villagemarket/village-market/internal/infrastructure/storage"
	handlers "github.com/villagemarket/village-market/internal/interface/http"
	"github.com/villagemarket/village-market/internal/router/modules"
	"github.com/villagemarket/village-market/pkg/helpers"
)

// Services holds every application service, built once from the container.
type Services struct {
	Auth          *app.AuthService
	Users         *app.UserService
	Creators      *app.CreatorService
	Pools         *app.PoolService
	Contributions *app.ContributionService
	Team          *app.TeamMemberService
	Admin         *app.AdminService
}

func buildServices() Services {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	db := container.GetPGPool()

	users := pginfra.NewUserRepository(db)
	creators := pginfra.NewCreatorRepository(db)
	pools := pginfra.NewPoolRepository(db)
	contributions := pginfra.NewContributionRepository(db)
	team := pginfra.NewTeamMemberRepository(db)

	images := container.GetImageStore()
	if images == nil {
		images = storage.Disabled{}
	}
	index := container.GetPoolIndex()

	// a nil *Paystack must not reach the interface as a typed nil
	var gateway app.PaymentGateway
	if ps := container.GetPaystack(); ps != nil {
		gateway = ps
	}

	mail := app.NewNotifier(container.GetPublisher(), cfg, logger)
	auth := app.NewAuthService(users, container.GetJWT(), container.GetRedis(), mail, logger, cfg.SessionTTL, cfg.ResetPasswordURL)

	return Services{
		Auth:     auth,
		Users:    app.NewUserService(users, auth, images, logger),
		Creators: app.NewCreatorService(creators, mail, logger),
		Pools:    app.NewPoolService(pools, creators, contributions, index, images, logger),
		Contributions: app.NewContributionService(contributions, pools, users, creators, gateway, index, mail, logger, app.ContributionConfig{
			Currency:    cfg.Currency,
			CallbackURL: cfg.PaystackCallbackURL,
			HoldTTL:     cfg.PaymentHoldTTL,
		}),
		Team:  app.NewTeamMemberService(team, images, logger),
		Admin: app.NewAdminService(users, creators, pools, contributions),
	}
}

func healthChecks() map[string]handlers.Pinger {
	checks := map[string]handlers.Pinger{}
	if db := container.GetPGPool(); db != nil {
		checks["postgres"] = db
	}
	if rdb := container.GetRedis(); rdb != nil {
		checks["redis"] = handlers.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}
	if es := container.GetES(); es != nil {
		checks["elasticsearch"] = handlers.PingFunc(func(ctx context.Context) error {
			res, err := es.Ping(es.Ping.WithContext(ctx))
			if err != nil {
				return err
			}
			defer res.Body.Close()
			if res.IsError() {
				return fmt.Errorf("elasticsearch ping: %s", res.Status())
			}
			return nil
		})
	}
	if gcs := container.GetGCS(); gcs != nil {
		bucket := container.GetConfig().GCSBucket
		checks["storage"] = handlers.PingFunc(func(ctx context.Context) error {
			_, err := gcs.Bucket(bucket).Attrs(ctx)
			return err
		})
	}
	return checks
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	jwt := container.GetJWT()
	cookies := helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure)
	svc := buildServices()

	r.Add(modules.NewHealthModule(handlers.NewHealthHandler(healthChecks())))
	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(svc.Auth, logger, cookies, !cfg.MailSendEnabled && cfg.Env == "development"), jwt))
	r.Add(modules.NewUserModule(handlers.NewUserHandler(svc.Users, logger), jwt))
	r.Add(modules.NewCreatorModule(handlers.NewCreatorHandler(svc.Creators, svc.Pools, logger), jwt))
	r.Add(modules.NewPoolModule(handlers.NewPoolHandler(svc.Pools, logger), jwt))
	r.Add(modules.NewPaymentModule(handlers.NewContributionHandler(svc.Contributions, logger, cfg.PaymentSuccessURL, cfg.PaymentFailureURL), jwt))
	r.Add(modules.NewEmailModule(handlers.NewEmailHandler(svc.Contributions, logger, cfg), jwt))
	r.Add(modules.NewTeamModule(handlers.NewTeamHandler(svc.Team, logger), jwt))
	r.Add(modules.NewAdminModule(handlers.NewAdminHandler(svc.Admin, logger), jwt))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
