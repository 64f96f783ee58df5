package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/spendsmart/internal/common"
	"github.com/Veraticus/spendsmart/internal/storage"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. SPENDSMART_STORAGE_BACKEND.
const EnvPrefix = "SPENDSMART"

// Configuration keys.
const (
	KeyStorageBackend = "storage.backend"
	KeyStoragePath    = "storage.path"
	KeyFlushDebounce  = "storage.flush_debounce"
	KeyLogLevel       = "logging.level"
	KeyLogFormat      = "logging.format"
)

// Config is the validated application configuration.
type Config struct {
	Storage StorageConfig
	Logging LoggingConfig
}

// StorageConfig selects and locates the store.
type StorageConfig struct {
	Backend       storage.Backend
	Path          string
	FlushDebounce time.Duration
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  string
	Format string
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyStorageBackend, string(storage.BackendSQLite))
	v.SetDefault(KeyStoragePath, "")
	v.SetDefault(KeyFlushDebounce, storage.DefaultFlushDebounce)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
}

// ConfigureViper points v at the config file and environment. An empty
// cfgFile searches $HOME/.config/spendsmart and the working directory.
func ConfigureViper(v *viper.Viper, cfgFile string) error {
	SetDefaults(v)

	cfgFile, err := ExpandPath(cfgFile)
	if err != nil {
		return err
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, ".config", "spendsmart"))
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

// LoadDotEnv loads environment variables from .env files that exist.
// Variables already set in the environment win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load %s: %w", strings.Join(existing, ", "), err)
	}
	return nil
}

// Load reads and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	backend, err := storage.ParseBackend(v.GetString(KeyStorageBackend))
	if err != nil {
		return nil, err
	}

	debounce := v.GetDuration(KeyFlushDebounce)
	if debounce <= 0 {
		return nil, fmt.Errorf("%w: %s must be positive, got %q",
			common.ErrInvalidConfig, KeyFlushDebounce, v.GetString(KeyFlushDebounce))
	}

	path, err := ExpandPath(v.GetString(KeyStoragePath))
	if err != nil {
		return nil, err
	}
	if path == "" && backend != storage.BackendMemory {
		path, err = DefaultStoragePath(backend)
		if err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		Storage: StorageConfig{
			Backend:       backend,
			Path:          path,
			FlushDebounce: debounce,
		},
		Logging: LoggingConfig{
			Level:  v.GetString(KeyLogLevel),
			Format: v.GetString(KeyLogFormat),
		},
	}

	if _, err := common.ParseLogLevel(cfg.Logging.Level); err != nil {
		return nil, err
	}
	switch cfg.Logging.Format {
	case "", "console", "json":
	default:
		return nil, fmt.Errorf("%w: invalid log format %q", common.ErrInvalidConfig, cfg.Logging.Format)
	}

	return cfg, nil
}

// DefaultStoragePath returns the data file for backend under
// $HOME/.local/share/spendsmart.
func DefaultStoragePath(backend storage.Backend) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	name := "spendsmart.db"
	if backend == storage.BackendSnapshot {
		name = "spendsmart.json"
	}
	return filepath.Join(home, ".local", "share", "spendsmart", name), nil
}
