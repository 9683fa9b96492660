package fx

import (
	"fmt"
	"time"

	"ledgersync/internal/config"
	"ledgersync/internal/logger"
	"ledgersync/internal/module/classify/cache"
	"ledgersync/internal/service"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// CoreModule provides core application dependencies: configuration, the
// logger, the database connection, the redis-backed classification cache,
// and the encryption service bank-adapter credentials are sealed with at
// rest.
var CoreModule = fx.Module("core",
	fx.Provide(
		config.Load,
		NewLogger,
		NewDatabase,
		config.NewRedisClient,
		NewCacheStore,
		NewEncryptionService,
	),
)

// NewCacheStore wraps the redis client in the classification matrix cache,
// TTL'd as a backstop behind the explicit per-write invalidations.
func NewCacheStore(cfg *config.Config, client *redis.Client) *cache.Store {
	return cache.NewStore(client, time.Duration(cfg.Classify.CacheTTLSeconds)*time.Second)
}

// NewLogger creates a new zap logger based on config
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	log, err := logger.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	log.Info("Logger initialized",
		zap.String("level", cfg.Logging.Level),
		zap.String("format", cfg.Logging.Format),
	)

	return log, nil
}

// NewDatabase creates a new database connection
func NewDatabase(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	log.Info("Connecting to database...",
		zap.String("host", cfg.Database.Host),
		zap.Int("port", cfg.Database.Port),
		zap.String("database", cfg.Database.Name),
		zap.String("user", cfg.Database.User),
	)
	var dsn string

	// Use DATABASE_URL if available, otherwise construct from components
	if cfg.Database.URL != "" {
		dsn = cfg.Database.URL
	} else {
		dsn = fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			cfg.Database.Host,
			cfg.Database.Port,
			cfg.Database.User,
			cfg.Database.Pass,
			cfg.Database.Name,
		)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})

	if err != nil {
		log.Error("Failed to connect to database", zap.Error(err))
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Error("Failed to get database instance", zap.Error(err))
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Info("Successfully connected to database",
		zap.Int("max_idle_conns", 10),
		zap.Int("max_open_conns", 100),
		zap.Duration("conn_max_lifetime", time.Hour),
	)
	return db, nil
}

// NewEncryptionService creates a new encryption service
func NewEncryptionService(cfg *config.Config, log *zap.Logger) (*service.EncryptionService, error) {
	encryptionService, err := service.NewEncryptionService(cfg.Encryption.Key)
	if err != nil {
		log.Error("Failed to initialize encryption service", zap.Error(err))
		return nil, fmt.Errorf("encryption service initialization failed: %w", err)
	}

	log.Info("Encryption service initialized (AES-256-GCM)")
	return encryptionService, nil
}
