package config

import (
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
	Env string

	Database DatabaseConfig
	Log      LogConfig
	Reports  ReportsConfig
	Seed     SeedConfig
}

type DatabaseConfig struct {
	Path        string
	BusyTimeout time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// ReportsConfig controls report artifact generation.
type ReportsConfig struct {
	OutputDir  string
	PDFEnabled bool
	ResultTTL  time.Duration
}

// SeedConfig toggles the one-time sample-data bootstrap.
type SeedConfig struct {
	Enabled bool
}

// Load reads configuration from the environment, with a .env file applied
// first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("DATABASE_PATH", "school_database.db")
	v.SetDefault("DATABASE_BUSY_TIMEOUT", "30s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("REPORTS_OUTPUT_DIR", "reports")
	v.SetDefault("REPORTS_PDF_ENABLED", true)
	v.SetDefault("REPORTS_RESULT_TTL", "720h")
	v.SetDefault("SEED_ENABLED", true)

	cfg := &Config{
		Env: v.GetString("ENV"),
		Database: DatabaseConfig{
			Path:        v.GetString("DATABASE_PATH"),
			BusyTimeout: v.GetDuration("DATABASE_BUSY_TIMEOUT"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Reports: ReportsConfig{
			OutputDir:  v.GetString("REPORTS_OUTPUT_DIR"),
			PDFEnabled: v.GetBool("REPORTS_PDF_ENABLED"),
			ResultTTL:  v.GetDuration("REPORTS_RESULT_TTL"),
		},
		Seed: SeedConfig{
			Enabled: v.GetBool("SEED_ENABLED"),
		},
	}
	return cfg, nil
}
