package provider

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/storefront/internal/authz"
	"github.com/storefront/internal/cache"
	"github.com/storefront/internal/config"
	"github.com/storefront/internal/constants"
	"github.com/storefront/internal/logger"
	"github.com/storefront/internal/metrics"
	"github.com/storefront/internal/models"
	"github.com/storefront/internal/objstore"
	"github.com/storefront/internal/payment/stripe"
	"github.com/storefront/internal/queue"
	"github.com/storefront/internal/repository"
	"github.com/storefront/internal/service"
	"github.com/storefront/internal/shipping/easypost"
	"github.com/storefront/internal/store"

	"gorm.io/gorm"
)

const (
	affiliateDirName        = "affiliates"
	affiliateSettingsFile   = "affiliate-settings.json"
	minioBucketCheckTimeout = 10 * time.Second
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	DB          *gorm.DB
	Metrics     *metrics.Metrics
	Cache       *cache.Client
	QueueClient *queue.Client
	RecordStore *store.RecordStore
	Media       objstore.Store

	// Repositories
	UserRepo      repository.UserRepository
	ProductRepo   repository.ProductRepository
	OrderRepo     repository.OrderRepository
	AffiliateRepo repository.AffiliateRepository
	SettingRepo   repository.SettingRepository

	// Services
	AuthzService            *authz.Service
	AuthService             *service.AuthService
	CaptchaService          *service.CaptchaService
	AffiliateSettingService *service.AffiliateSettingService
	AffiliateService        *service.AffiliateService
	OrderService            *service.OrderService
	ProductService          *service.ProductService
	PaymentService          *service.PaymentService
	ShippingService         *service.ShippingService
	UploadService           *service.UploadService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	c := &Container{Config: cfg}

	if cfg.Metrics.Enabled {
		c.Metrics = metrics.New(cfg.Metrics.Namespace)
	}

	// 初始化缓存
	c.Cache = cache.NewClient(&cfg.Redis)

	// 初始化队列客户端
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			c.QueueClient = qc
		}
	}

	if err := c.initDB(); err != nil {
		return nil, err
	}
	if err := c.initStorage(); err != nil {
		return nil, err
	}
	if err := c.initServices(); err != nil {
		return nil, err
	}
	return c, nil
}

// Close 释放外部连接
func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if err := c.QueueClient.Close(); err != nil {
		logger.Warnw("provider_close_queue_failed", "error", err)
	}
	if err := c.Cache.Close(); err != nil {
		logger.Warnw("provider_close_redis_failed", "error", err)
	}
	if c.DB != nil {
		if sqlDB, err := c.DB.DB(); err == nil {
			return sqlDB.Close()
		}
	}
	return nil
}

func (c *Container) initDB() error {
	dbCfg := c.Config.Database
	if isFileSQLite(dbCfg.Driver, dbCfg.DSN) {
		if err := os.MkdirAll(filepath.Dir(dbCfg.DSN), 0o755); err != nil {
			return fmt.Errorf("create database dir failed: %w", err)
		}
	}
	db, err := models.OpenDB(dbCfg.Driver, dbCfg.DSN, models.DBPoolConfig{
		MaxOpenConns:           dbCfg.Pool.MaxOpenConns,
		MaxIdleConns:           dbCfg.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: dbCfg.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: dbCfg.Pool.ConnMaxIdleTimeSeconds,
	})
	if err != nil {
		return fmt.Errorf("open database failed: %w", err)
	}
	c.DB = db
	return nil
}

func (c *Container) initStorage() error {
	storageCfg := c.Config.Storage
	cipher, err := store.NewCipher(storageCfg.EncryptKey, storageCfg.Authenticate)
	if err != nil {
		return fmt.Errorf("init record cipher failed: %w", err)
	}

	var backend store.Backend
	switch strings.ToLower(strings.TrimSpace(storageCfg.Backend)) {
	case constants.StorageBackendDatabase:
		sqlBackend, err := store.NewSQLBackend(c.DB)
		if err != nil {
			return fmt.Errorf("init record table failed: %w", err)
		}
		backend = sqlBackend
	default:
		backend = store.NewFileBackend(storageCfg.DataDir)
	}
	c.RecordStore = store.NewRecordStore(backend, cipher)

	var ledgerCipher *store.Cipher
	if c.Config.Affiliate.EncryptLedger {
		ledgerCipher = cipher
	}
	c.UserRepo = repository.NewUserRepository(c.RecordStore)
	c.ProductRepo = repository.NewProductRepository(c.RecordStore)
	c.OrderRepo = repository.NewOrderRepository(c.RecordStore)
	c.AffiliateRepo = repository.NewAffiliateRepository(filepath.Join(storageCfg.DataDir, affiliateDirName), ledgerCipher)
	c.SettingRepo = repository.NewSettingRepository(filepath.Join(storageCfg.DataDir, affiliateSettingsFile))

	media, err := newMediaStore(c.Config)
	if err != nil {
		return err
	}
	c.Media = media
	logger.Infow("provider_storage_ready",
		"record_backend", storageCfg.Backend,
		"data_dir", storageCfg.DataDir,
		"ledger_encrypted", ledgerCipher != nil,
		"media_driver", c.Config.Upload.Driver,
	)
	return nil
}

func (c *Container) initServices() error {
	authzService, err := authz.NewService(c.DB)
	if err != nil {
		return err
	}
	if err := authzService.BootstrapBuiltinRoles(); err != nil {
		return fmt.Errorf("bootstrap builtin roles failed: %w", err)
	}
	c.AuthzService = authzService

	c.AffiliateSettingService = service.NewAffiliateSettingService(c.SettingRepo)
	c.AffiliateService = service.NewAffiliateService(c.AffiliateRepo, c.AffiliateSettingService, c.Metrics, c.Config.Affiliate.LinkBaseURL)
	c.AuthService = service.NewAuthService(c.Config, c.UserRepo, c.AffiliateService)
	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.ProductService = service.NewProductService(c.ProductRepo)
	c.UploadService = service.NewUploadService(c.Config.Upload, c.Media)

	// 队列可用时无归属推荐异步落盘
	var orphans service.OrphanRecorder
	if c.QueueClient.Enabled() {
		orphans = c.QueueClient
	}
	c.OrderService = service.NewOrderService(c.OrderRepo, c.AffiliateService, orphans, c.Metrics, c.Config.Affiliate.OrphanPolicy)

	// 未配置的渠道传入 nil 接口，由服务返回未配置错误
	var intents service.PaymentIntentCreator
	if strings.TrimSpace(c.Config.Stripe.SecretKey) != "" {
		client, err := stripe.NewClient(stripe.Config{
			SecretKey:       c.Config.Stripe.SecretKey,
			APIBaseURL:      c.Config.Stripe.APIBaseURL,
			DefaultCurrency: c.Config.Stripe.DefaultCurrency,
		}, nil)
		if err != nil {
			logger.Warnw("provider_init_stripe_failed", "error", err)
		} else {
			intents = client
		}
	}
	c.PaymentService = service.NewPaymentService(intents)

	var quoter service.RateQuoter
	if strings.TrimSpace(c.Config.EasyPost.APIKey) != "" {
		client, err := easypost.NewClient(easypost.Config{
			APIKey:         c.Config.EasyPost.APIKey,
			APIBaseURL:     c.Config.EasyPost.APIBaseURL,
			DefaultFromZip: c.Config.EasyPost.DefaultFromZip,
			DefaultToZip:   c.Config.EasyPost.DefaultToZip,
		}, nil)
		if err != nil {
			logger.Warnw("provider_init_easypost_failed", "error", err)
		} else {
			quoter = client
		}
	}
	c.ShippingService = service.NewShippingService(quoter)
	return nil
}

func newMediaStore(cfg *config.Config) (objstore.Store, error) {
	if strings.EqualFold(strings.TrimSpace(cfg.Upload.Driver), constants.MediaDriverMinio) {
		minioStore, err := objstore.NewMinIOStore(cfg.MinIO)
		if err != nil {
			return nil, fmt.Errorf("init minio store failed: %w", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), minioBucketCheckTimeout)
		defer cancel()
		if err := minioStore.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("ensure minio bucket failed: %w", err)
		}
		return minioStore, nil
	}
	localStore, err := objstore.NewLocalStore(cfg.Upload.Dir)
	if err != nil {
		return nil, fmt.Errorf("init local media store failed: %w", err)
	}
	return localStore, nil
}

func isFileSQLite(driver, dsn string) bool {
	d := strings.ToLower(strings.TrimSpace(driver))
	if d != "" && d != "sqlite" {
		return false
	}
	dsn = strings.TrimSpace(dsn)
	if dsn == "" || strings.HasPrefix(dsn, "file:") || strings.Contains(dsn, ":memory:") {
		return false
	}
	return true
}
