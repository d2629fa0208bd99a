package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configuration from, lowest to highest precedence: built-in
// defaults, a YAML file, a .env file and GRADTRACK_* environment variables
// (GRADTRACK_STORE_BASE_URL overrides store.base_url).
//
// configFile may be empty, in which case gradtrack.yaml is looked up in the
// working directory and ./configs; a missing file is not an error.
func Load(configFile string) (*Config, error) {
	loadEnvFile(".env")

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("gradtrack")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("config: read gradtrack.yaml: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config: invalid: %w", err)
	}
	return &cfg, nil
}

// loadEnvFile never overrides variables already set in the environment.
func loadEnvFile(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	_ = godotenv.Load(path)
}

// applyDefaults fixes values that are present but unusable.
func applyDefaults(cfg *Config) {
	cfg.Store.Backend = strings.ToLower(strings.TrimSpace(cfg.Store.Backend))
	cfg.Store.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Store.BaseURL), "/")
	if cfg.Store.MaxAttempts <= 0 {
		cfg.Store.MaxAttempts = 1
	}
	if cfg.Store.Timeout <= 0 {
		cfg.Store.Timeout = defaultTimeout
	}
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))
	if cfg.SFTP.Port <= 0 {
		cfg.SFTP.Port = 22
	}
}

func validate(cfg *Config) error {
	switch cfg.Store.Backend {
	case BackendHTTP:
		if cfg.Store.BaseURL == "" {
			return errors.New("store.base_url is required for the http backend")
		}
	case BackendSQLite:
		if cfg.Store.SQLitePath == "" {
			return errors.New("store.sqlite_path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("store.backend %q: want %q or %q", cfg.Store.Backend, BackendHTTP, BackendSQLite)
	}

	switch cfg.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format %q: want json or console", cfg.Log.Format)
	}
	return nil
}
