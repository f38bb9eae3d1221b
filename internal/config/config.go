// Package config loads fncall settings from an optional YAML file and
// FNCALL_* environment variables.
package config

import (
	goerrors "errors"
	"io"
	"strings"

	"github.com/agilira/go-errors"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Error codes.
const (
	ErrCodeConfigRead    = "FNCALL_CONFIG_READ"
	ErrCodeConfigInvalid = "FNCALL_CONFIG_INVALID"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "FNCALL"

// Config holds runtime and CLI settings.
type Config struct {
	AutoQuote bool   `mapstructure:"auto_quote" yaml:"auto_quote"`
	CacheSize int    `mapstructure:"cache_size" yaml:"cache_size" validate:"gte=0"`
	LogLevel  string `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
	Pretty    bool   `mapstructure:"pretty" yaml:"pretty"`
	Workers   int    `mapstructure:"workers" yaml:"workers" validate:"min=1,max=256"`
	Output    string `mapstructure:"output" yaml:"output" validate:"oneof=json yaml"`
	// Trace is an NDJSON file that receives parse trace events. Empty
	// disables tracing.
	Trace string `mapstructure:"trace" yaml:"trace,omitempty"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		AutoQuote: true,
		CacheSize: 1024,
		LogLevel:  "info",
		Workers:   4,
		Output:    "json",
	}
}

// Load reads path (or fncall.yaml from the working directory or
// $HOME/.config/fncall when path is empty), applies FNCALL_* overrides and
// validates the result. A missing default file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("auto_quote", def.AutoQuote)
	v.SetDefault("cache_size", def.CacheSize)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("pretty", def.Pretty)
	v.SetDefault("workers", def.Workers)
	v.SetDefault("output", def.Output)
	v.SetDefault("trace", def.Trace)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("log_level", EnvPrefix+"_LOG_LEVEL", "LOG_LEVEL"); err != nil {
		return nil, errors.Wrap(err, ErrCodeConfigRead, "failed to bind log level")
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, ErrCodeConfigRead, "failed to read config file "+path)
		}
	} else {
		v.SetConfigName("fncall")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/fncall")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !goerrors.As(err, &notFound) {
				return nil, errors.Wrap(err, ErrCodeConfigRead, "failed to read config file")
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, ErrCodeConfigInvalid, "failed to decode configuration")
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.Output = strings.ToLower(strings.TrimSpace(cfg.Output))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, ErrCodeConfigInvalid, "invalid configuration")
	}
	return nil
}

// Write encodes the configuration as YAML.
func (c *Config) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}
