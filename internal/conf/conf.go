package conf

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/anthropics/wa-autoreply/internal/biz/domain"
)

// Config represents application configuration
type Config struct {
	// Data configuration
	Data DataConfig

	// Cooldown configuration
	Cooldown CooldownConfig

	// API configuration
	API APIConfig

	// Rules seed file configuration
	RulesPath string

	// Debug mode
	Debug bool
}

// DataConfig contains database configuration
type DataConfig struct {
	Dir string
}

// CooldownConfig contains cooldown gate bounds
type CooldownConfig struct {
	MaxEntries   int
	MaxAgeMin    int
	SweepMinutes int
}

// APIConfig contains admin API configuration
type APIConfig struct {
	Port int
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	// Data directory
	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		homeDir, _ := os.UserHomeDir()
		dataDir = filepath.Join(homeDir, ".wa-autoreply")
	}

	// Cooldown bounds
	maxEntries := 10000
	if val := os.Getenv("COOLDOWN_MAX_ENTRIES"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			maxEntries = parsed
		}
	}

	maxAgeMin := 24 * 60
	if val := os.Getenv("COOLDOWN_MAX_AGE_MINUTES"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			maxAgeMin = parsed
		}
	}

	sweepMin := 10
	if val := os.Getenv("COOLDOWN_SWEEP_MINUTES"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			sweepMin = parsed
		}
	}

	// Admin API port
	apiPort := 8970
	if val := os.Getenv("API_PORT"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			apiPort = parsed
		}
	}

	return &Config{
		Data: DataConfig{
			Dir: dataDir,
		},
		Cooldown: CooldownConfig{
			MaxEntries:   maxEntries,
			MaxAgeMin:    maxAgeMin,
			SweepMinutes: sweepMin,
		},
		API: APIConfig{
			Port: apiPort,
		},
		RulesPath: os.Getenv("RULES_CONFIG_PATH"),
		Debug:     os.Getenv("DEBUG") == "true",
	}
}

// NewCooldownGate builds the cooldown gate from the configured bounds
func (c *CooldownConfig) NewCooldownGate() *domain.CooldownGate {
	return domain.NewCooldownGate(c.MaxEntries, time.Duration(c.MaxAgeMin)*time.Minute)
}

// SweepInterval returns the cooldown sweep interval
func (c *CooldownConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepMinutes) * time.Minute
}
