package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	defaultInputSize      = 224
	defaultListenAddr     = ":8080"
	defaultDBPath         = "campuscycle.db"
	defaultUploadDir      = "uploads"
	defaultAcquireTimeout = 30 * time.Second
	defaultSweepSchedule  = "0 * * * *" // hourly
)

type Config struct {
	ModelPath  string `yaml:"model_path"`
	LabelsPath string `yaml:"labels_path"`
	InputSize  int    `yaml:"input_size"`

	DBPath     string `yaml:"db_path"`
	ListenAddr string `yaml:"listen_addr"`
	UploadDir  string `yaml:"upload_dir"`

	WatchDir              string `yaml:"watch_dir"`
	AcquireTimeoutSeconds int    `yaml:"acquire_timeout_seconds"`

	SweepSchedule string `yaml:"sweep_schedule"`

	GeoLat *float64 `yaml:"geo_lat"` // fixed installation coordinate, both
	GeoLng *float64 `yaml:"geo_lng"` // unset means location unavailable

	Debug bool `yaml:"debug"`
}

// LoadConfig reads config.yaml (or $CONFIG_PATH), applies environment
// variable overrides, then fills defaults. Invalid values are fatal at
// startup.
func LoadConfig() Config {
	var cfg Config

	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", configPath, err)
		}
		log.Infof("[Config] Loaded %s", configPath)
	}

	// Env vars override YAML values
	envOverride(&cfg.ModelPath, "MODEL_PATH")
	envOverride(&cfg.LabelsPath, "LABELS_PATH")
	envOverrideInt(&cfg.InputSize, "INPUT_SIZE")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverride(&cfg.ListenAddr, "LISTEN_ADDR")
	envOverride(&cfg.UploadDir, "UPLOAD_DIR")
	envOverride(&cfg.WatchDir, "WATCH_DIR")
	envOverrideInt(&cfg.AcquireTimeoutSeconds, "ACQUIRE_TIMEOUT_SECONDS")
	envOverride(&cfg.SweepSchedule, "SWEEP_SCHEDULE")
	envOverrideBool(&cfg.Debug, "DEBUG")

	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.InputSize <= 0 {
		c.InputSize = defaultInputSize
	}
	if c.DBPath == "" {
		c.DBPath = defaultDBPath
	}
	if c.ListenAddr == "" {
		c.ListenAddr = defaultListenAddr
	}
	if c.UploadDir == "" {
		c.UploadDir = defaultUploadDir
	}
	if c.AcquireTimeoutSeconds <= 0 {
		c.AcquireTimeoutSeconds = int(defaultAcquireTimeout / time.Second)
	}
	if c.SweepSchedule == "" {
		c.SweepSchedule = defaultSweepSchedule
	}
}

// AcquireTimeout returns the frame acquisition bound as a duration.
func (c Config) AcquireTimeout() time.Duration {
	return time.Duration(c.AcquireTimeoutSeconds) * time.Second
}

// ValidateModel checks the settings the classifier cannot start without.
func (c Config) ValidateModel() error {
	if c.ModelPath == "" {
		return fmt.Errorf("model_path is required")
	}
	if c.LabelsPath == "" {
		return fmt.Errorf("labels_path is required")
	}
	return nil
}

func envOverride(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

func envOverrideInt(target *int, key string) {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			log.Fatalf("Invalid value for %s: %q", key, v)
		}
		*target = n
	}
}

func envOverrideBool(target *bool, key string) {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Fatalf("Invalid value for %s: %q", key, v)
		}
		*target = b
	}
}
