package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Log      LogConfig
	Season   SeasonConfig
	Audit    AuditConfig
	Populate PopulateConfig
	Costs    CostsConfig
	Reports  ReportsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SeasonConfig bounds the winter season the roster covers.
type SeasonConfig struct {
	Start time.Time
	End   time.Time
}

// AuditConfig tunes report caching.
type AuditConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// PopulateConfig governs the slot filler and its proposal staging.
type PopulateConfig struct {
	Enabled     bool
	ProposalTTL time.Duration
}

// CostsConfig carries the court pricing.
type CostsConfig struct {
	HourlyRate float64
}

// ReportsConfig configures file exports.
type ReportsConfig struct {
	StorageDir string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	start, err := parseDate(v.GetString("SEASON_START"))
	if err != nil {
		return nil, err
	}
	end, err := parseDate(v.GetString("SEASON_END"))
	if err != nil {
		return nil, err
	}
	cfg.Season = SeasonConfig{Start: start, End: end}

	cfg.Audit = AuditConfig{
		CacheEnabled: v.GetBool("AUDIT_CACHE_ENABLED"),
		CacheTTL:     parseDuration(v.GetString("AUDIT_CACHE_TTL"), 10*time.Minute),
	}

	cfg.Populate = PopulateConfig{
		Enabled:     v.GetBool("ENABLE_POPULATE"),
		ProposalTTL: parseDuration(v.GetString("POPULATE_PROPOSAL_TTL"), 30*time.Minute),
	}

	cfg.Costs = CostsConfig{
		HourlyRate: v.GetFloat64("COURT_HOURLY_RATE"),
	}

	cfg.Reports = ReportsConfig{
		StorageDir: v.GetString("REPORTS_STORAGE_DIR"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "winterplan")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SEASON_START", "2025-10-01")
	v.SetDefault("SEASON_END", "2026-03-31")

	v.SetDefault("AUDIT_CACHE_ENABLED", false)
	v.SetDefault("AUDIT_CACHE_TTL", "10m")

	v.SetDefault("ENABLE_POPULATE", true)
	v.SetDefault("POPULATE_PROPOSAL_TTL", "30m")

	v.SetDefault("COURT_HOURLY_RATE", 17.50)

	v.SetDefault("REPORTS_STORAGE_DIR", "./exports")
}

func parseDate(raw string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(raw))
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
