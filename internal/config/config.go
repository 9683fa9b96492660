package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Config is the root configuration object, assembled once at startup and
// threaded explicitly through constructors — no package-level settings.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Logging    LoggingConfig
	Encryption EncryptionConfig
	Auth       AuthConfig
	Accounting   AccountingConfig
	Classify     ClassifyConfig
	BankSync     BankSyncConfig
	SyncWorker   SyncWorkerConfig
	Maintenance  MaintenanceConfig
	ExternalAPIs ExternalAPIsConfig
}

// ExternalAPIsConfig carries credentials for third-party collaborators the
// core depends on through a port interface (spec §6) — currently only the
// text encoder's embedding backend.
type ExternalAPIsConfig struct {
	GeminiAPIKey string
}

type ServerConfig struct {
	Host string
	Port string
	Env  string // "development" or "production"
}

type DatabaseConfig struct {
	URL  string
	Host string
	Port int
	User string
	Pass string
	Name string
}

type RedisConfig struct {
	URL      string
	Host     string
	Port     int
	Password string
	DB       int
}

type LoggingConfig struct {
	Level  string
	Format string
}

// EncryptionConfig holds the AES-256 key used to encrypt bank-adapter
// credentials at rest.
type EncryptionConfig struct {
	Key string
}

// AuthConfig carries the JWT secret used to verify the bearer token that
// establishes the current-user identity context.
type AuthConfig struct {
	JWTSecret string
}

// AccountingConfig carries the system-wide accounting settings the kernel
// needs but must not hold as package globals.
type AccountingConfig struct {
	DefaultCurrency             string
	OpeningBalanceAccountNumber string
	// DefaultExpenseAccountNumber and DefaultIncomeAccountNumber back the
	// Import Coordinator's sign-based fallback when no rule, pre-classified
	// result, or classification tier resolves a counter-account (spec §4.5
	// step 5).
	DefaultExpenseAccountNumber string
	DefaultIncomeAccountNumber  string
}

// ClassifyConfig carries the classification pipeline's per-deployment
// thresholds. Per-user overrides, where supported, layer on top of these.
type ClassifyConfig struct {
	ExampleHighConfidence  float64
	ExampleAcceptThreshold float64
	ExampleMarginThreshold float64
	AnchorAcceptThreshold  float64
	NoiseFrequencyThreshold float64
	NoiseDampenerCap        int
	ExampleStoreCapPerAccount int

	SearchTimeoutSeconds   int
	SearchRateLimitSeconds int

	EncoderModelID  string
	EncoderDimension int

	// CacheTTLSeconds bounds how long a redis-cached example/anchor matrix
	// is trusted before GetMatrix falls back to Postgres anyway, a backstop
	// behind the explicit invalidation Append and RecomputeAll perform.
	CacheTTLSeconds int
}

type BankSyncConfig struct {
	FetchWindowDays int
}

type SyncWorkerConfig struct {
	Enabled       bool
	IntervalMin   int
	MaxConcurrent int
	TimeoutMin    int
}

// MaintenanceConfig carries the nightly cron job's schedule and tunables:
// anchor embedding recompute and noise-model garbage collection.
type MaintenanceConfig struct {
	Enabled           bool
	Schedule          string
	NoiseGCMinCount   int
}

// Load initializes and loads configuration using Viper.
func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./server")
	viper.AddConfigPath("../")

	viper.AutomaticEnv()
	viper.SetEnvPrefix("")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Printf("Warning: .env file not found, using environment variables and defaults")
		} else {
			log.Printf("Error reading config file: %v", err)
		}
	} else {
		log.Printf("Using config file: %s", viper.ConfigFileUsed())
	}

	return &Config{
		Server: ServerConfig{
			Host: viper.GetString("HOST"),
			Port: viper.GetString("PORT"),
			Env:  viper.GetString("APP_ENV"),
		},
		Database: DatabaseConfig{
			URL:  viper.GetString("DATABASE_URL"),
			Host: viper.GetString("DB_HOST"),
			Port: viper.GetInt("DB_PORT"),
			User: viper.GetString("DB_USER"),
			Pass: viper.GetString("DB_PASSWORD"),
			Name: viper.GetString("DB_NAME"),
		},
		Redis: RedisConfig{
			URL:      viper.GetString("REDIS_URL"),
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Logging: LoggingConfig{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: viper.GetString("LOG_FORMAT"),
		},
		Encryption: EncryptionConfig{
			Key: viper.GetString("ENCRYPTION_KEY"),
		},
		Auth: AuthConfig{
			JWTSecret: viper.GetString("JWT_SECRET"),
		},
		Accounting: AccountingConfig{
			DefaultCurrency:             viper.GetString("ACCOUNTING_DEFAULT_CURRENCY"),
			OpeningBalanceAccountNumber: viper.GetString("ACCOUNTING_OPENING_BALANCE_ACCOUNT_NUMBER"),
			DefaultExpenseAccountNumber: viper.GetString("ACCOUNTING_DEFAULT_EXPENSE_ACCOUNT_NUMBER"),
			DefaultIncomeAccountNumber:  viper.GetString("ACCOUNTING_DEFAULT_INCOME_ACCOUNT_NUMBER"),
		},
		Classify: ClassifyConfig{
			ExampleHighConfidence:     viper.GetFloat64("CLASSIFY_EXAMPLE_HIGH_CONFIDENCE"),
			ExampleAcceptThreshold:    viper.GetFloat64("CLASSIFY_EXAMPLE_ACCEPT_THRESHOLD"),
			ExampleMarginThreshold:    viper.GetFloat64("CLASSIFY_EXAMPLE_MARGIN_THRESHOLD"),
			AnchorAcceptThreshold:     viper.GetFloat64("CLASSIFY_ANCHOR_ACCEPT_THRESHOLD"),
			NoiseFrequencyThreshold:   viper.GetFloat64("CLASSIFY_NOISE_FREQUENCY_THRESHOLD"),
			NoiseDampenerCap:          viper.GetInt("CLASSIFY_NOISE_DAMPENER_CAP"),
			ExampleStoreCapPerAccount: viper.GetInt("CLASSIFY_EXAMPLE_STORE_CAP_PER_ACCOUNT"),
			SearchTimeoutSeconds:      viper.GetInt("CLASSIFY_SEARCH_TIMEOUT_SECONDS"),
			SearchRateLimitSeconds:    viper.GetInt("CLASSIFY_SEARCH_RATE_LIMIT_SECONDS"),
			EncoderModelID:            viper.GetString("CLASSIFY_ENCODER_MODEL_ID"),
			EncoderDimension:          viper.GetInt("CLASSIFY_ENCODER_DIMENSION"),
			CacheTTLSeconds:           viper.GetInt("CLASSIFY_CACHE_TTL_SECONDS"),
		},
		BankSync: BankSyncConfig{
			FetchWindowDays: viper.GetInt("BANKSYNC_FETCH_WINDOW_DAYS"),
		},
		SyncWorker: SyncWorkerConfig{
			Enabled:       viper.GetBool("SYNC_WORKER_ENABLED"),
			IntervalMin:   viper.GetInt("SYNC_WORKER_INTERVAL_MIN"),
			MaxConcurrent: viper.GetInt("SYNC_WORKER_MAX_CONCURRENT"),
			TimeoutMin:    viper.GetInt("SYNC_WORKER_TIMEOUT_MIN"),
		},
		Maintenance: MaintenanceConfig{
			Enabled:         viper.GetBool("MAINTENANCE_ENABLED"),
			Schedule:        viper.GetString("MAINTENANCE_SCHEDULE"),
			NoiseGCMinCount: viper.GetInt("MAINTENANCE_NOISE_GC_MIN_COUNT"),
		},
		ExternalAPIs: ExternalAPIsConfig{
			GeminiAPIKey: viper.GetString("GEMINI_API_KEY"),
		},
	}
}

// setDefaults sets default values for all configuration options.
func setDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("APP_ENV", "development")

	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("DB_USER", "ledgersync")
	viper.SetDefault("DB_PASSWORD", "ledgersync")
	viper.SetDefault("DB_NAME", "ledgersync")

	viper.SetDefault("JWT_SECRET", "dev-secret-change-in-production")

	viper.SetDefault("REDIS_URL", "redis://localhost:6379")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", 6379)
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)

	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")

	viper.SetDefault("ENCRYPTION_KEY", "dev-key-32bytes-change-in-prod!!")

	viper.SetDefault("ACCOUNTING_DEFAULT_CURRENCY", "EUR")
	viper.SetDefault("ACCOUNTING_OPENING_BALANCE_ACCOUNT_NUMBER", "2000")
	viper.SetDefault("ACCOUNTING_DEFAULT_EXPENSE_ACCOUNT_NUMBER", "6000")
	viper.SetDefault("ACCOUNTING_DEFAULT_INCOME_ACCOUNT_NUMBER", "4000")

	viper.SetDefault("CLASSIFY_EXAMPLE_HIGH_CONFIDENCE", 0.85)
	viper.SetDefault("CLASSIFY_EXAMPLE_ACCEPT_THRESHOLD", 0.70)
	viper.SetDefault("CLASSIFY_EXAMPLE_MARGIN_THRESHOLD", 0.10)
	viper.SetDefault("CLASSIFY_ANCHOR_ACCEPT_THRESHOLD", 0.55)
	viper.SetDefault("CLASSIFY_NOISE_FREQUENCY_THRESHOLD", 0.30)
	viper.SetDefault("CLASSIFY_NOISE_DAMPENER_CAP", 100)
	viper.SetDefault("CLASSIFY_EXAMPLE_STORE_CAP_PER_ACCOUNT", 500)
	viper.SetDefault("CLASSIFY_SEARCH_TIMEOUT_SECONDS", 5)
	viper.SetDefault("CLASSIFY_SEARCH_RATE_LIMIT_SECONDS", 1)
	viper.SetDefault("CLASSIFY_ENCODER_MODEL_ID", "text-embedding-004")
	viper.SetDefault("CLASSIFY_ENCODER_DIMENSION", 768)
	viper.SetDefault("CLASSIFY_CACHE_TTL_SECONDS", 21600)

	viper.SetDefault("BANKSYNC_FETCH_WINDOW_DAYS", 90)

	viper.SetDefault("SYNC_WORKER_ENABLED", true)
	viper.SetDefault("SYNC_WORKER_INTERVAL_MIN", 15)
	viper.SetDefault("SYNC_WORKER_MAX_CONCURRENT", 5)
	viper.SetDefault("SYNC_WORKER_TIMEOUT_MIN", 5)

	viper.SetDefault("MAINTENANCE_ENABLED", true)
	viper.SetDefault("MAINTENANCE_SCHEDULE", "0 3 * * *")
	viper.SetDefault("MAINTENANCE_NOISE_GC_MIN_COUNT", 2)

	viper.SetDefault("GEMINI_API_KEY", "")
}
