// Package config loads ror-cli configuration from file, .env and environment.
package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	ROR      RORConfig      `yaml:"ror" mapstructure:"ror"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// RORConfig holds registry API settings.
type RORConfig struct {
	BaseURL       string `yaml:"base_url" mapstructure:"base_url"`
	UserAgent     string `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs   int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MinIntervalMs int    `yaml:"min_interval_ms" mapstructure:"min_interval_ms"`
}

// PipelineConfig configures the augment and minimize stages.
type PipelineConfig struct {
	MaxColumns       int      `yaml:"max_columns" mapstructure:"max_columns"`
	Sentinels        []string `yaml:"sentinels" mapstructure:"sentinels"`
	IDSentinels      []string `yaml:"id_sentinels" mapstructure:"id_sentinels"`
	WorkDir          string   `yaml:"work_dir" mapstructure:"work_dir"`
	IntermediateFile string   `yaml:"intermediate_file" mapstructure:"intermediate_file"`
	MinimalFile      string   `yaml:"minimal_file" mapstructure:"minimal_file"`
}

// StoreConfig configures the run history backend. An empty DatabaseURL
// disables run history.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	// .env is optional; real environment variables take precedence.
	_ = godotenv.Load()

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ROR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("ror.base_url", "https://api.ror.org")
	v.SetDefault("ror.user_agent", "ror-cli/1.0")
	v.SetDefault("ror.timeout_secs", 30)
	v.SetDefault("ror.min_interval_ms", 50)
	v.SetDefault("pipeline.max_columns", 40)
	v.SetDefault("pipeline.sentinels", []string{"#N/A"})
	v.SetDefault("pipeline.id_sentinels", []string{"0"})
	v.SetDefault("pipeline.work_dir", ".")
	v.SetDefault("pipeline.intermediate_file", "working_file_with_rors_added_by_name.csv")
	v.SetDefault("pipeline.minimal_file", "working_file_minimal.csv")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

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

// Validate checks value ranges that would otherwise fail late.
func (c *Config) Validate() error {
	if c.ROR.BaseURL == "" {
		return eris.New("config: ror.base_url is required")
	}
	if c.ROR.MinIntervalMs < 0 {
		return eris.Errorf("config: ror.min_interval_ms must be >= 0, got %d", c.ROR.MinIntervalMs)
	}
	if c.ROR.TimeoutSecs < 0 {
		return eris.Errorf("config: ror.timeout_secs must be >= 0, got %d", c.ROR.TimeoutSecs)
	}
	if c.Pipeline.MaxColumns <= 0 {
		return eris.Errorf("config: pipeline.max_columns must be > 0, got %d", c.Pipeline.MaxColumns)
	}
	if c.Pipeline.IntermediateFile == "" || c.Pipeline.MinimalFile == "" {
		return eris.New("config: pipeline file names are required")
	}
	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		return eris.Errorf("config: unknown store.driver %q", c.Store.Driver)
	}
	return nil
}

// Redacted returns a copy safe to print, with credentials masked.
func (c Config) Redacted() Config {
	if c.Store.DatabaseURL != "" && c.Store.Driver == "postgres" {
		c.Store.DatabaseURL = "***"
	}
	return c
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
