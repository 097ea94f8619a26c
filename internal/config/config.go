// Package config loads application configuration from config.yaml and the
// GEC_ environment, and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Storage  StorageConfig  `yaml:"storage" mapstructure:"storage"`
	Ingest   IngestConfig   `yaml:"ingest" mapstructure:"ingest"`
	Template TemplateConfig `yaml:"template" mapstructure:"template"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// StorageConfig configures where stored document references resolve.
type StorageConfig struct {
	// Bucket is the default bucket for references that omit one. Its scheme
	// selects the backend (local directory, http(s), ftp).
	Bucket    string `yaml:"bucket" mapstructure:"bucket"`
	LocalRoot string `yaml:"local_root" mapstructure:"local_root"`
	// HTTP fetcher tuning.
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries" mapstructure:"max_retries"`
	// FTP credentials for ftp:// buckets.
	FTPUser     string `yaml:"ftp_user" mapstructure:"ftp_user"`
	FTPPassword string `yaml:"ftp_password" mapstructure:"ftp_password"`
}

// IngestConfig configures import processing.
type IngestConfig struct {
	// MaxConcurrentTables bounds the per-table fan-out within one import.
	MaxConcurrentTables int `yaml:"max_concurrent_tables" mapstructure:"max_concurrent_tables"`
	// PreviewRows caps the sample rows returned in preview mode.
	PreviewRows int `yaml:"preview_rows" mapstructure:"preview_rows"`
}

// TemplateConfig points at optional template definition overrides.
type TemplateConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the HTTP import server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
	// MaxUploadMB bounds multipart upload size.
	MaxUploadMB int `yaml:"max_upload_mb" mapstructure:"max_upload_mb"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("GEC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("storage.bucket", "uploads")
	v.SetDefault("storage.local_root", ".")
	v.SetDefault("storage.user_agent", "gec-ingest/1.0")
	v.SetDefault("storage.timeout_secs", 30)
	v.SetDefault("storage.max_retries", 3)
	v.SetDefault("ingest.max_concurrent_tables", 4)
	v.SetDefault("ingest.preview_rows", 5)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_upload_mb", 32)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the configuration for the given run mode.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch c.Store.Driver {
	case "postgres":
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required for the postgres driver")
		}
	case "sqlite":
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required for the sqlite driver (database file path)")
		}
	default:
		problems = append(problems, "store.driver must be postgres or sqlite")
	}

	if c.Ingest.MaxConcurrentTables < 1 || c.Ingest.MaxConcurrentTables > 32 {
		problems = append(problems, "ingest.max_concurrent_tables must be between 1 and 32")
	}
	if c.Ingest.PreviewRows < 1 {
		problems = append(problems, "ingest.preview_rows must be >= 1")
	}

	switch mode {
	case "import", "migrate":
	case "serve":
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
		if c.Server.MaxUploadMB <= 0 {
			problems = append(problems, "server.max_upload_mb must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
