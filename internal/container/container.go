package container

import (
	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/villagemarket/village-market/config"
	"github.com/villagemarket/village-market/internal/infrastructure/payment"
	"github.com/villagemarket/village-market/internal/infrastructure/search"
	imgstore "github.com/villagemarket/village-market/internal/infrastructure/storage"
	"github.com/villagemarket/village-market/pkg/helpers"
)

// app-level container to share constructed components across packages
// Router can auto-wire modules from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	gcsClient   *storage.Client

	jwtManager *helpers.JWTManager

	publisher  helpers.Publisher
	esClient   *elasticsearch.Client
	poolIndex  *search.PoolIndex
	imageStore imgstore.ImageStore
	paystack   *payment.Paystack
)

func SetConfig(c *config.Config)   { cfg = c }
func GetConfig() *config.Config    { return cfg }
func SetLogger(l *logrus.Logger)   { logger = l }
func GetLogger() *logrus.Logger    { return logger }
func SetPGPool(p *pgxpool.Pool)    { pgPool = p }
func GetPGPool() *pgxpool.Pool     { return pgPool }
func SetRedis(r *redis.Client)     { redisClient = r }
func GetRedis() *redis.Client      { return redisClient }
func SetGCS(s *storage.Client)     { gcsClient = s }
func GetGCS() *storage.Client      { return gcsClient }
func SetJWT(m *helpers.JWTManager) { jwtManager = m }
func GetJWT() *helpers.JWTManager  { return jwtManager }

// SetPublisher stores the email job publisher. Pass an untyped nil, not a
// nil *RabbitPublisher, when RabbitMQ is not configured.
func SetPublisher(p helpers.Publisher)    { publisher = p }
func GetPublisher() helpers.Publisher     { return publisher }
func SetES(c *elasticsearch.Client)       { esClient = c }
func GetES() *elasticsearch.Client        { return esClient }
func SetPoolIndex(i *search.PoolIndex)    { poolIndex = i }
func GetPoolIndex() *search.PoolIndex     { return poolIndex }
func SetImageStore(s imgstore.ImageStore) { imageStore = s }
func GetImageStore() imgstore.ImageStore  { return imageStore }
func SetPaystack(p *payment.Paystack)     { paystack = p }
func GetPaystack() *payment.Paystack      { return paystack }
