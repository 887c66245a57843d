package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/youruser/pnlcard/internal/artifact"
	imagepkg "github.com/youruser/pnlcard/internal/image"
	"github.com/youruser/pnlcard/internal/market"
	"github.com/youruser/pnlcard/internal/util"
)

// Config holds application configuration
type Config struct {
	Port     int
	LogLevel string
	Pretty   bool

	DataDir string
	TempDir string

	ArtifactTTL    time.Duration
	ReaperSchedule string
	FetchTimeout   time.Duration

	KalshiBaseURL   string
	LogoURL         string
	GlobeURL        string
	StockBackground string
	FooterCaption   string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnvAsInt("PORT", 8080),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		Pretty:          getEnvAsBool("LOG_PRETTY", true),
		DataDir:         getEnv("DATA_DIR", "./data"),
		TempDir:         getEnv("TEMP_DIR", "./temp"),
		ArtifactTTL:     getEnvAsDuration("ARTIFACT_TTL", artifact.DefaultTTL),
		ReaperSchedule:  getEnv("REAPER_SCHEDULE", artifact.DefaultReaperSchedule),
		FetchTimeout:    getEnvAsDuration("FETCH_TIMEOUT", util.DefaultFetchTimeout),
		KalshiBaseURL:   getEnv("KALSHI_BASE_URL", market.DefaultBaseURL),
		LogoURL:         getEnv("CARD_LOGO_URL", ""),
		GlobeURL:        getEnv("CARD_GLOBE_URL", ""),
		StockBackground: getEnv("CARD_STOCK_BACKGROUND", ""),
		FooterCaption:   getEnv("CARD_FOOTER_CAPTION", imagepkg.DefaultFooterCaption),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.DataDir == "" {
		return fmt.Errorf("DATA_DIR is required")
	}
	if c.TempDir == "" {
		return fmt.Errorf("TEMP_DIR is required")
	}
	if c.ArtifactTTL <= 0 {
		return fmt.Errorf("ARTIFACT_TTL must be positive")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
