package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/villagemarket/village-market/config"
	"github.com/villagemarket/village-market/internal/container"
	"github.com/villagemarket/village-market/internal/infrastructure/payment"
	pginfra "github.com/villagemarket/village-market/internal/infrastructure/postgres"
	"github.com/villagemarket/village-market/internal/infrastructure/search"
	"github.com/villagemarket/village-market/internal/infrastructure/storage"
	"github.com/villagemarket/village-market/internal/interface/middleware"
	"github.com/villagemarket/village-market/internal/router"
	"github.com/villagemarket/village-market/pkg/helpers"
	"github.com/villagemarket/village-market/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env, cfg.LogLevel)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	// Initialize Postgres pool
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{
		AppName:     cfg.AppName,
		MaxConns:    cfg.DBMaxConns,
		MinConns:    cfg.DBMinConns,
		MaxConnLife: cfg.DBMaxConnLife,
	})
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	// Run migrations using database/sql with pgx stdlib
	if err := runMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	// Redis
	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer func() { _ = rdb.Close() }()

	// JWT
	jwtManager := helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)

	// Provide infra singletons to container for registry auto-wiring
	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetPGPool(pool)
	container.SetRedis(rdb)
	container.SetJWT(jwtManager)

	images, closeImages := imageStore(ctx, cfg, logger)
	defer closeImages()
	container.SetImageStore(images)

	if pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue); err != nil {
		logger.WithError(err).Warn("rabbitmq unavailable; emails will not be queued")
	} else {
		defer pub.Close()
		container.SetPublisher(pub)
	}

	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			logger.WithError(err).Warn("elasticsearch unavailable; pool search uses postgres")
		} else {
			idx := search.NewPoolIndex(es, cfg.ESPoolsIndex, logger)
			if err := idx.EnsureIndex(ctx); err != nil {
				logger.WithError(err).Warn("pool index setup failed")
			}
			container.SetES(es)
			container.SetPoolIndex(idx)
		}
	}

	if cfg.PaymentsEnabled() {
		container.SetPaystack(payment.NewPaystack(cfg.PaystackSecretKey, cfg.PaystackBaseURL, nil))
	} else {
		logger.Warn("PAYSTACK_SECRET_KEY not set; payments are disabled")
	}

	// Gin engine and global middleware
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	// CORS
	corsCfg := cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "If-None-Match", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "ETag", middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	r.Use(cors.New(corsCfg))
	if cfg.HTTPLogEnabled {
		r.Use(middleware.AccessLog(logger))
	}

	// Registry: auto-register modules using container
	reg := router.NewRegistry(r)
	router.InitModules(reg)
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Errorf("server forced to shutdown: %v", err)
		return
	}
	logger.Info("server exited properly")
}

// imageStore picks the upload backend from STORAGE_DRIVER. Misconfiguration
// disables uploads instead of stopping the server.
func imageStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (storage.ImageStore, func()) {
	noop := func() {}
	switch cfg.StorageDriver {
	case "gcs":
		if cfg.GCSBucket == "" {
			logger.Warn("GCS_BUCKET not set; uploads disabled")
			return storage.Disabled{}, noop
		}
		client, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			logger.WithError(err).Warn("gcs client init failed; uploads disabled")
			return storage.Disabled{}, noop
		}
		container.SetGCS(client)
		return storage.NewGCS(client, cfg.GCSBucket), func() { _ = client.Close() }
	case "cloudinary":
		store, err := storage.NewCloudinary(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
		if err != nil {
			logger.WithError(err).Warn("cloudinary init failed; uploads disabled")
			return storage.Disabled{}, noop
		}
		return store, noop
	case "":
		logger.Info("STORAGE_DRIVER not set; uploads disabled")
	default:
		logger.Warnf("unknown STORAGE_DRIVER %q; uploads disabled", cfg.StorageDriver)
	}
	return storage.Disabled{}, noop
}

func runMigrations(dsn string, migrationsDir string, logger *logrus.Logger) error {
	// Open sql DB via pgx stdlib
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", migrationsDir), "postgres", driver)
	if err != nil {
		return err
	}
	logger.Info("running migrations...")
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to run")
		return nil
	}
	return err
}
