// Package config loads service configuration from the environment and
// optional YAML files.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds the runtime configuration shared by all services.
type Config struct {
	DatabaseURL     string        `mapstructure:"database_url"`
	BatchSize       int           `mapstructure:"batch_size"`
	SleepInterval   time.Duration `mapstructure:"sleep_interval"`
	FetchInterval   time.Duration `mapstructure:"fetch_interval"`
	ServiceInstance string        `mapstructure:"hostname"`
	MetricsAddr     string        `mapstructure:"metrics_addr"`
	FeedsConfigPath string        `mapstructure:"feeds_config"`
	EQISConfigPath  string        `mapstructure:"eqis_config"`
}

// Load reads configuration from the environment (and a .env file when
// present). DATABASE_URL is required; everything else has defaults.
func Load() (*Config, error) {
	// Best-effort .env loading, matching local development setups.
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("batch_size", 50)
	v.SetDefault("sleep_interval", 60)
	v.SetDefault("fetch_interval", 30)
	v.SetDefault("hostname", "unknown")
	v.SetDefault("metrics_addr", "")
	v.SetDefault("feeds_config", "configs/feeds.yaml")
	v.SetDefault("eqis_config", "configs/metrics.yaml")
	v.AutomaticEnv()

	for _, key := range []string{
		"database_url", "batch_size", "sleep_interval", "fetch_interval",
		"hostname", "metrics_addr", "feeds_config", "eqis_config",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env %s: %w", key, err)
		}
	}

	cfg := &Config{
		DatabaseURL:     v.GetString("database_url"),
		BatchSize:       v.GetInt("batch_size"),
		SleepInterval:   time.Duration(v.GetInt("sleep_interval")) * time.Second,
		FetchInterval:   time.Duration(v.GetInt("fetch_interval")) * time.Second,
		ServiceInstance: v.GetString("hostname"),
		MetricsAddr:     v.GetString("metrics_addr"),
		FeedsConfigPath: v.GetString("feeds_config"),
		EQISConfigPath:  v.GetString("eqis_config"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}
	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("BATCH_SIZE must be positive, got %d", cfg.BatchSize)
	}
	return cfg, nil
}

// FeedEntry is one feed in the feeds.yaml sync file.
type FeedEntry struct {
	URL      string `yaml:"url"`
	Outlet   string `yaml:"outlet"`
	Interval int    `yaml:"interval"` // Poll interval in minutes
	Category string `yaml:"category"`
}

// FeedsFile is the shape of the administered feeds.yaml file.
type FeedsFile struct {
	Feeds    []FeedEntry `yaml:"feeds"`
	Defaults struct {
		Interval int `yaml:"interval"`
	} `yaml:"defaults"`
}

// LoadFeedsFile reads and validates a feeds.yaml file, applying the
// default poll interval where a feed leaves it unset.
func LoadFeedsFile(path string) (*FeedsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read feeds config %s: %w", path, err)
	}
	var file FeedsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse feeds config %s: %w", path, err)
	}
	for i := range file.Feeds {
		if file.Feeds[i].Interval == 0 {
			file.Feeds[i].Interval = file.Defaults.Interval
			if file.Feeds[i].Interval == 0 {
				file.Feeds[i].Interval = 30
			}
		}
		if file.Feeds[i].URL == "" || file.Feeds[i].Outlet == "" {
			return nil, fmt.Errorf("feeds config entry %d is missing url or outlet", i)
		}
	}
	return &file, nil
}

// EQISFile carries the EQIS weights and parameters from configs/metrics.yaml.
type EQISFile struct {
	Weights map[string]float64 `yaml:"weights"`
	Params  struct {
		RecencyTauDays       float64 `yaml:"recency_tau_days"`
		CoverageSaturation   float64 `yaml:"coverage_saturation"`
		CoherenceMinArticles int     `yaml:"coherence_min_articles"`
		HighRiskCap          float64 `yaml:"high_risk_cap"`
	} `yaml:"params"`
}

// LoadEQISFile reads the EQIS metrics configuration, falling back to the
// documented defaults when the file is absent.
func LoadEQISFile(path string) (*EQISFile, error) {
	file := &EQISFile{
		Weights: map[string]float64{
			"days":            0.20,
			"coverage":        0.20,
			"coherence":       0.15,
			"best_source":     0.15,
			"corroboration":   0.20,
			"correction_risk": 0.10,
		},
	}
	file.Params.RecencyTauDays = 5
	file.Params.CoverageSaturation = 20
	file.Params.CoherenceMinArticles = 2
	file.Params.HighRiskCap = 0.05

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return file, nil
		}
		return nil, fmt.Errorf("failed to read EQIS config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, file); err != nil {
		return nil, fmt.Errorf("failed to parse EQIS config %s: %w", path, err)
	}
	return file, nil
}
