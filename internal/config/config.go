package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/jroneil/MI-Tool/internal/infrastructure/cache"
	"github.com/jroneil/MI-Tool/internal/infrastructure/database"
	"github.com/spf13/viper"
)

// Config is the process configuration, read from the environment and an optional .env file
type Config struct {
	Port             int
	Database         database.Config
	JWTSecret        string
	TokenTTL         time.Duration
	RecordLimit      int
	CORSOrigins      []string
	Redis            cache.RedisConfig
	SchemaCacheTTL   time.Duration
	UsageSchedule    string
	UsageWarnPercent int
	TxMaxRetries     int
	Logger           Logger
}

// Logger selects log level and output format
type Logger struct {
	Level  string
	Format string
}

// RedisEnabled reports whether a shared schema cache was configured
func (c *Config) RedisEnabled() bool {
	return c.Redis.Addr != ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", 8000)
	v.SetDefault("DB_HOST", "127.0.0.1")
	v.SetDefault("DB_PORT", 4000)
	v.SetDefault("DB_USER", "root")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "atlas")
	v.SetDefault("DB_TLS", false)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("ACCESS_TOKEN_EXPIRES_MINUTES", 1440)
	v.SetDefault("FREE_RECORD_LIMIT", 500)
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SCHEMA_CACHE_TTL", "10m")
	v.SetDefault("USAGE_REPORT_SCHEDULE", "@hourly")
	v.SetDefault("USAGE_WARN_PERCENT", 80)
	v.SetDefault("TX_MAX_RETRIES", 3)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
}

// Load reads envFiles (missing files are ignored) and then the environment.
// Variables already set in the environment win over .env entries.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port: v.GetInt("PORT"),
		Database: database.Config{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
			TLS:      v.GetBool("DB_TLS"),
		},
		JWTSecret:   v.GetString("JWT_SECRET"),
		TokenTTL:    time.Duration(v.GetInt("ACCESS_TOKEN_EXPIRES_MINUTES")) * time.Minute,
		RecordLimit: v.GetInt("FREE_RECORD_LIMIT"),
		CORSOrigins: splitList(v.GetString("CORS_ORIGINS")),
		Redis: cache.RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		SchemaCacheTTL:   v.GetDuration("SCHEMA_CACHE_TTL"),
		UsageSchedule:    strings.TrimSpace(v.GetString("USAGE_REPORT_SCHEDULE")),
		UsageWarnPercent: v.GetInt("USAGE_WARN_PERCENT"),
		TxMaxRetries:     v.GetInt("TX_MAX_RETRIES"),
		Logger: Logger{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}

	if cfg.RecordLimit < 1 {
		return nil, fmt.Errorf("FREE_RECORD_LIMIT must be positive, got %d", cfg.RecordLimit)
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("ACCESS_TOKEN_EXPIRES_MINUTES must be positive")
	}
	if cfg.UsageWarnPercent < 1 || cfg.UsageWarnPercent > 100 {
		return nil, fmt.Errorf("USAGE_WARN_PERCENT must be between 1 and 100, got %d", cfg.UsageWarnPercent)
	}
	return cfg, nil
}

func splitList(s string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
