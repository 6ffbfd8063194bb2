package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// DefaultPredictionURL is the development address of the prediction service
const DefaultPredictionURL = "http://localhost:8000"

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
}

// PredictionConfig points at the external prediction service
type PredictionConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"` // 0 = no timeout
}

// AuditConfig selects where prediction attempts are recorded
type AuditConfig struct {
	Driver string `yaml:"driver"` // none, sqlite, postgres
	DSN    string `yaml:"dsn"`
}

// SessionConfig controls dashboard session lifetime
type SessionConfig struct {
	IdleMinutes int    `yaml:"idle_minutes"`
	PruneCron   string `yaml:"prune_cron"`
}

// SymbolsConfig controls the ticker suggestion list
type SymbolsConfig struct {
	Dir        string `yaml:"dir"`
	SourceURL  string `yaml:"source_url"`
	UpdateCron string `yaml:"update_cron"` // empty = never refresh automatically
}

type Config struct {
	// Server settings
	Port string `yaml:"port"`

	Prediction PredictionConfig `yaml:"prediction_api"`
	Logging    LoggingConfig    `yaml:"logging"`
	Audit      AuditConfig      `yaml:"audit"`
	Sessions   SessionConfig    `yaml:"sessions"`
	Symbols    SymbolsConfig    `yaml:"symbols"`
}

// PredictionTimeout returns the configured client timeout, zero when unset
func (c *Config) PredictionTimeout() time.Duration {
	if c.Prediction.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Prediction.TimeoutSeconds) * time.Second
}

// SessionIdle returns how long an untouched session is kept
func (c *Config) SessionIdle() time.Duration {
	return time.Duration(c.Sessions.IdleMinutes) * time.Minute
}

// Load reads .env (if present), environment defaults and config.yaml
func Load() *Config {
	return LoadFrom("config.yaml")
}

// LoadFrom is Load with an explicit YAML path. A missing or unparsable file
// leaves the environment values in place.
func LoadFrom(path string) *Config {
	// .env is optional; real environment variables win over it
	_ = godotenv.Load(".env")

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Prediction: PredictionConfig{
			BaseURL:        getEnv("PREDICTION_API_URL", DefaultPredictionURL),
			TimeoutSeconds: getEnvInt("PREDICTION_TIMEOUT_SECONDS", 0),
		},
		Logging: LoggingConfig{
			LogLevel: getEnv("LOG_LEVEL", "info"),
			LogFile:  getEnv("LOG_FILE", "stockai.log"),
		},
		Audit: AuditConfig{
			Driver: getEnv("AUDIT_DRIVER", "none"),
			DSN:    getEnv("AUDIT_DSN", ""),
		},
		Sessions: SessionConfig{
			IdleMinutes: getEnvInt("SESSION_IDLE_MINUTES", 60),
			PruneCron:   getEnv("SESSION_PRUNE_CRON", "0 */5 * * * *"),
		},
		Symbols: SymbolsConfig{
			Dir:        getEnv("SYMBOLS_DIR", "assets/symbols"),
			SourceURL:  getEnv("SYMBOLS_SOURCE_URL", "https://raw.githubusercontent.com/datasets/s-and-p-500-companies/master/data/constituents.csv"),
			UpdateCron: getEnv("SYMBOLS_UPDATE_CRON", ""),
		},
	}

	if yamlCfg := loadYAMLConfig(path); yamlCfg != nil {
		applyYAML(cfg, yamlCfg)
	}

	if cfg.Sessions.IdleMinutes <= 0 {
		cfg.Sessions.IdleMinutes = 60
	}

	return cfg
}

// applyYAML copies every non-empty YAML value over the env defaults
func applyYAML(cfg, yamlCfg *Config) {
	if yamlCfg.Port != "" {
		cfg.Port = yamlCfg.Port
	}

	if yamlCfg.Prediction.BaseURL != "" {
		cfg.Prediction.BaseURL = yamlCfg.Prediction.BaseURL
	}
	if yamlCfg.Prediction.TimeoutSeconds > 0 {
		cfg.Prediction.TimeoutSeconds = yamlCfg.Prediction.TimeoutSeconds
	}

	if yamlCfg.Logging.LogLevel != "" {
		cfg.Logging.LogLevel = yamlCfg.Logging.LogLevel
	}
	if yamlCfg.Logging.LogFile != "" {
		cfg.Logging.LogFile = yamlCfg.Logging.LogFile
	}

	if yamlCfg.Audit.Driver != "" {
		cfg.Audit.Driver = yamlCfg.Audit.Driver
	}
	if yamlCfg.Audit.DSN != "" {
		cfg.Audit.DSN = yamlCfg.Audit.DSN
	}

	if yamlCfg.Sessions.IdleMinutes > 0 {
		cfg.Sessions.IdleMinutes = yamlCfg.Sessions.IdleMinutes
	}
	if yamlCfg.Sessions.PruneCron != "" {
		cfg.Sessions.PruneCron = yamlCfg.Sessions.PruneCron
	}

	if yamlCfg.Symbols.Dir != "" {
		cfg.Symbols.Dir = yamlCfg.Symbols.Dir
	}
	if yamlCfg.Symbols.SourceURL != "" {
		cfg.Symbols.SourceURL = yamlCfg.Symbols.SourceURL
	}
	if yamlCfg.Symbols.UpdateCron != "" {
		cfg.Symbols.UpdateCron = yamlCfg.Symbols.UpdateCron
	}
}

func loadYAMLConfig(path string) *Config {
	data, err := os.ReadFile(path)
	if err != nil {
		// Could not read config file - silently return nil
		return nil
	}

	var yamlCfg Config
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		// Could not parse config file - silently return nil
		return nil
	}

	return &yamlCfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
