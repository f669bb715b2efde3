// Package config loads runtime configuration from the environment, with an
// optional TOML file layered underneath when BILLINGPRO_CONFIG points at one.
// Precedence: defaults, then file, then environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

type Config struct {
	DataPath    string `toml:"data_path"`
	DatabaseURL string `toml:"database_url"`

	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`

	LogLevel string `toml:"log_level"`

	Currency          string  `toml:"currency"`
	DefaultTaxRate    float64 `toml:"default_tax_rate"`
	LowStockThreshold int     `toml:"low_stock_threshold"`
	PaymentTermsDays  int     `toml:"payment_terms_days"`

	BackupEnabled   bool   `toml:"backup_enabled"`
	BackupFrequency string `toml:"backup_frequency"`
	BackupTimeOfDay string `toml:"backup_time_of_day"`
	BackupDir       string `toml:"backup_dir"`

	SummaryCacheTTLSeconds int `toml:"summary_cache_ttl_seconds"`
}

func defaults() Config {
	return Config{
		DataPath:               "billingpro.db",
		LogLevel:               "info",
		Currency:               "USD",
		DefaultTaxRate:         0,
		LowStockThreshold:      5,
		PaymentTermsDays:       30,
		BackupFrequency:        "daily",
		BackupTimeOfDay:        "02:00",
		BackupDir:              ".",
		SummaryCacheTTLSeconds: 60,
	}
}

func Load() (Config, error) {
	cfg := defaults()

	if path := os.Getenv("BILLINGPRO_CONFIG"); path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	stringVar(&cfg.DataPath, "BILLINGPRO_DATA")
	stringVar(&cfg.DatabaseURL, "DATABASE_URL")
	stringVar(&cfg.RedisAddr, "REDIS_ADDR")
	stringVar(&cfg.RedisPassword, "REDIS_PASSWORD")
	intVar(&cfg.RedisDB, "REDIS_DB")
	stringVar(&cfg.LogLevel, "BILLINGPRO_LOG_LEVEL")
	stringVar(&cfg.Currency, "BILLINGPRO_CURRENCY")
	floatVar(&cfg.DefaultTaxRate, "BILLINGPRO_TAX_RATE")
	intVar(&cfg.LowStockThreshold, "BILLINGPRO_LOW_STOCK")
	intVar(&cfg.PaymentTermsDays, "BILLINGPRO_PAYMENT_TERMS")
	boolVar(&cfg.BackupEnabled, "BILLINGPRO_BACKUP_ENABLED")
	stringVar(&cfg.BackupFrequency, "BILLINGPRO_BACKUP_FREQUENCY")
	stringVar(&cfg.BackupTimeOfDay, "BILLINGPRO_BACKUP_TIME")
	stringVar(&cfg.BackupDir, "BILLINGPRO_BACKUP_DIR")
	intVar(&cfg.SummaryCacheTTLSeconds, "BILLINGPRO_SUMMARY_TTL")

	return cfg, nil
}

func stringVar(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func intVar(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func floatVar(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func boolVar(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
