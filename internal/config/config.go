package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config is the complete application configuration. It is constructed once
// at process start and passed by parameter into every component that needs
// it; nothing reads configuration ambiently.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Pipeline PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Cache    CacheConfig    `yaml:"cache" envconfig:"CACHE"`
}

// LoggingConfig controls the slog setup.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/pipeline.log"`
}

// PipelineConfig controls the batch ingestion run.
type PipelineConfig struct {
	// Formats are the export formats written per table unless overridden
	// on the command line.
	Formats []string `yaml:"formats" envconfig:"FORMATS" default:"parquet,csv" validate:"min=1,dive,oneof=parquet csv json sqlite"`
	// PriorityTables are processed when no table selector is given.
	PriorityTables []string `yaml:"priority_tables" envconfig:"PRIORITY_TABLES" default:"table02,table08,table11" validate:"min=1"`
	// ColumnMappings optionally points at a column-mappings JSON file.
	// Empty means the embedded default resource.
	ColumnMappings string `yaml:"column_mappings" envconfig:"COLUMN_MAPPINGS"`
	// DatabaseName is the sqlite file written under the database directory.
	DatabaseName string `yaml:"database_name" envconfig:"DATABASE_NAME" default:"trade_stats.db" validate:"required"`
}

// ServerConfig contains the data server configuration.
type ServerConfig struct {
	Port            int             `yaml:"port" envconfig:"PORT" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration for the data server.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100" validate:"min=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50" validate:"min=0"`
}

// CacheConfig controls the data server's in-memory table cache.
type CacheConfig struct {
	TTL time.Duration `yaml:"ttl" envconfig:"TTL" default:"1h" validate:"min=0"`
}

// envPrefix is the environment variable prefix, e.g. TRADE_SERVER_PORT.
const envPrefix = "TRADE"

// Load builds the configuration with the precedence environment > YAML file
// > built-in defaults. envconfig fills the default tags into every field, so
// after the file overlays them only variables actually present in the
// environment are re-applied.
func Load(configFile string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			env := cfg
			if err := loadFromFile(configFile, &cfg); err != nil {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
			applyEnvOverrides(&cfg, env)
		}
	}

	if err := cfg.Paths.resolve(); err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func envSet(key string) bool {
	_, ok := os.LookupEnv(envPrefix + "_" + key)
	return ok
}

// applyEnvOverrides re-asserts the fields whose environment variable is
// explicitly set, restoring them over whatever the file wrote.
func applyEnvOverrides(out *Config, env Config) {
	if envSet("LOGGING_LEVEL") {
		out.Logging.Level = env.Logging.Level
	}
	if envSet("LOGGING_FORMAT") {
		out.Logging.Format = env.Logging.Format
	}
	if envSet("LOGGING_OUTPUT") {
		out.Logging.Output = env.Logging.Output
	}
	if envSet("LOGGING_FILE_PATH") {
		out.Logging.FilePath = env.Logging.FilePath
	}

	if envSet("PIPELINE_FORMATS") {
		out.Pipeline.Formats = env.Pipeline.Formats
	}
	if envSet("PIPELINE_PRIORITY_TABLES") {
		out.Pipeline.PriorityTables = env.Pipeline.PriorityTables
	}
	if envSet("PIPELINE_COLUMN_MAPPINGS") {
		out.Pipeline.ColumnMappings = env.Pipeline.ColumnMappings
	}
	if envSet("PIPELINE_DATABASE_NAME") {
		out.Pipeline.DatabaseName = env.Pipeline.DatabaseName
	}

	if envSet("PATHS_DATA_DIR") {
		out.Paths.DataDir = env.Paths.DataDir
	}
	if envSet("PATHS_PROCESSED_DIR") {
		out.Paths.ProcessedDir = env.Paths.ProcessedDir
	}
	if envSet("PATHS_LOGS_DIR") {
		out.Paths.LogsDir = env.Paths.LogsDir
	}

	if envSet("SERVER_PORT") {
		out.Server.Port = env.Server.Port
	}
	if envSet("SERVER_READ_TIMEOUT") {
		out.Server.ReadTimeout = env.Server.ReadTimeout
	}
	if envSet("SERVER_WRITE_TIMEOUT") {
		out.Server.WriteTimeout = env.Server.WriteTimeout
	}
	if envSet("SERVER_IDLE_TIMEOUT") {
		out.Server.IdleTimeout = env.Server.IdleTimeout
	}
	if envSet("SERVER_SHUTDOWN_TIMEOUT") {
		out.Server.ShutdownTimeout = env.Server.ShutdownTimeout
	}
	if envSet("SERVER_RATE_LIMIT_ENABLED") {
		out.Server.RateLimit.Enabled = env.Server.RateLimit.Enabled
	}
	if envSet("SERVER_RATE_LIMIT_RPS") {
		out.Server.RateLimit.RPS = env.Server.RateLimit.RPS
	}
	if envSet("SERVER_RATE_LIMIT_BURST") {
		out.Server.RateLimit.Burst = env.Server.RateLimit.Burst
	}

	if envSet("CACHE_TTL") {
		out.Cache.TTL = env.Cache.TTL
	}
}
