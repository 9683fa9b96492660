package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

// GetStringConfig returns a string configuration value.
func GetStringConfig(key string, defaultValue ...string) string {
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

// GetIntConfig returns an integer configuration value.
func GetIntConfig(key string, defaultValue ...int) int {
	if viper.IsSet(key) {
		return viper.GetInt(key)
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return 0
}

// GetBoolConfig returns a boolean configuration value.
func GetBoolConfig(key string, defaultValue ...bool) bool {
	if viper.IsSet(key) {
		return viper.GetBool(key)
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return false
}

// ValidateConfig validates required configuration values.
func ValidateConfig() error {
	requiredKeys := []string{
		"JWT_SECRET",
		"DB_HOST",
		"DB_USER",
		"DB_PASSWORD",
		"DB_NAME",
	}

	var missingKeys []string
	for _, key := range requiredKeys {
		if !viper.IsSet(key) || viper.GetString(key) == "" {
			missingKeys = append(missingKeys, key)
		}
	}

	if len(missingKeys) > 0 {
		return fmt.Errorf("missing required configuration keys: %s", strings.Join(missingKeys, ", "))
	}

	return nil
}

// PrintConfig prints the current configuration, excluding secrets.
func PrintConfig() {
	log.Println("=== Configuration ===")
	log.Printf("Server: %s:%s (%s)", GetStringConfig("HOST"), GetStringConfig("PORT"), GetStringConfig("APP_ENV"))
	log.Printf("Database: %s:%d/%s", GetStringConfig("DB_HOST"), GetIntConfig("DB_PORT"), GetStringConfig("DB_NAME"))
	log.Printf("Redis: %s:%d", GetStringConfig("REDIS_HOST"), GetIntConfig("REDIS_PORT"))
	log.Printf("Log Level: %s", GetStringConfig("LOG_LEVEL"))
	log.Printf("Accounting default currency: %s", GetStringConfig("ACCOUNTING_DEFAULT_CURRENCY"))
	log.Printf("Opening-balance account number: %s", GetStringConfig("ACCOUNTING_OPENING_BALANCE_ACCOUNT_NUMBER"))
	log.Println("=====================")
}

// IsDevelopment returns true if running in development mode.
func IsDevelopment() bool {
	return GetStringConfig("APP_ENV") != "production"
}

// IsProduction returns true if running in production mode.
func IsProduction() bool {
	return GetStringConfig("APP_ENV") == "production"
}

// GetDatabaseURL returns the complete database URL.
func GetDatabaseURL() string {
	if url := GetStringConfig("DATABASE_URL"); url != "" {
		return url
	}

	host := GetStringConfig("DB_HOST", "localhost")
	port := GetIntConfig("DB_PORT", 5432)
	user := GetStringConfig("DB_USER", "ledgersync")
	password := GetStringConfig("DB_PASSWORD", "ledgersync")
	name := GetStringConfig("DB_NAME", "ledgersync")

	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s", user, password, host, port, name)
}
