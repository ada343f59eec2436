// Package config loads application settings from a .env file and environment variables.
// Environment variables always take precedence over .env file values.
package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/padraicbc/racematch/matching"
)

// Config holds all application configuration.
type Config struct {
	// PostgreSQL – either set DatabaseURL directly, or the individual fields.
	DatabaseURL string
	DBUser      string
	DBPass      string
	DBHost      string
	DBPort      string
	DBName      string
	DBSSLMode   string

	// JWT signing secret (required in production).
	JWTSecret string
	// AdminUsers may manage races, series and reviewer accounts.
	AdminUsers []string

	// Server
	Debug      bool
	Port       string
	TLSDomains []string

	// MySQL – used only by cmd/migrate.
	MySQLDSN string

	// Identity matching
	MatchMinThreshold            int
	MatchHighConfidenceThreshold int
	MatchAutoThreshold           int
	MatchUseBlocking             bool

	// Records resolved in parallel within one import batch.
	ImportConcurrency int
}

// Load reads configuration from a .env file (if present) and then from
// environment variables. Environment variables always win.
func Load() *Config {
	// Silently load .env – OK if the file doesn't exist (production uses real env vars).
	if err := godotenv.Load(); err != nil {
		log.Println("config: no .env file found, using environment variables only")
	}

	v := viper.New()
	v.AutomaticEnv()

	cfg, err := FromViper(v)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}

// FromViper builds and validates a Config from v.
func FromViper(v *viper.Viper) (*Config, error) {
	// Defaults
	v.SetDefault("DB_USER", "racematch")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "racematch")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("PORT", ":9000")
	v.SetDefault("TLS_DOMAINS", "")
	v.SetDefault("ADMIN_USERS", "admin")
	v.SetDefault("DEBUG", false)
	v.SetDefault("MATCH_MIN_THRESHOLD", matching.DefaultThresholds.Min)
	v.SetDefault("MATCH_HIGH_CONFIDENCE_THRESHOLD", matching.DefaultThresholds.HighConfidence)
	v.SetDefault("MATCH_AUTO_THRESHOLD", matching.DefaultThresholds.Auto)
	v.SetDefault("MATCH_USE_BLOCKING", false)
	v.SetDefault("IMPORT_CONCURRENCY", 1)

	cfg := &Config{
		DatabaseURL:                  v.GetString("DATABASE_URL"),
		DBUser:                       v.GetString("DB_USER"),
		DBPass:                       v.GetString("DB_PASS"),
		DBHost:                       v.GetString("DB_HOST"),
		DBPort:                       v.GetString("DB_PORT"),
		DBName:                       v.GetString("DB_NAME"),
		DBSSLMode:                    v.GetString("DB_SSLMODE"),
		JWTSecret:                    v.GetString("JWT_SECRET"),
		AdminUsers:                   splitTrimmed(v.GetString("ADMIN_USERS")),
		Debug:                        v.GetBool("DEBUG"),
		Port:                         v.GetString("PORT"),
		TLSDomains:                   splitTrimmed(v.GetString("TLS_DOMAINS")),
		MySQLDSN:                     v.GetString("MYSQL_DSN"),
		MatchMinThreshold:            v.GetInt("MATCH_MIN_THRESHOLD"),
		MatchHighConfidenceThreshold: v.GetInt("MATCH_HIGH_CONFIDENCE_THRESHOLD"),
		MatchAutoThreshold:           v.GetInt("MATCH_AUTO_THRESHOLD"),
		MatchUseBlocking:             v.GetBool("MATCH_USE_BLOCKING"),
		ImportConcurrency:            v.GetInt("IMPORT_CONCURRENCY"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// PostgresDSN returns the full PostgreSQL connection string.
// DATABASE_URL takes precedence over individual fields.
func (c *Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser,
		c.DBPass,
		c.DBHost,
		c.DBPort,
		c.DBName,
		c.DBSSLMode,
	)
}

// JWTKey returns the JWT signing key as a byte slice.
func (c *Config) JWTKey() []byte {
	return []byte(c.JWTSecret)
}

// Matching returns the resolver thresholds.
func (c *Config) Matching() matching.Thresholds {
	return matching.Thresholds{
		Min:            c.MatchMinThreshold,
		HighConfidence: c.MatchHighConfidenceThreshold,
		Auto:           c.MatchAutoThreshold,
	}
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" && c.DBPass == "" {
		return fmt.Errorf("DATABASE_URL or DB_PASS must be set")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be set")
	}
	if err := c.Matching().Validate(); err != nil {
		return err
	}
	if c.ImportConcurrency < 1 {
		return fmt.Errorf("IMPORT_CONCURRENCY must be at least 1, got %d", c.ImportConcurrency)
	}
	return nil
}

func splitTrimmed(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
