// Package config provides configuration management for the mesh codec.
package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/viper"

	apperrors "github.com/mesh-codec/pkg/errors"
)

// Config holds all configuration for the application.
type Config struct {
	Codec    CodecConfig    `mapstructure:"codec"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
}

// CodecConfig holds the compression parameters.
type CodecConfig struct {
	// Atoms is the requested dictionary size; the emitted atom count may be
	// smaller when the height matrix has lower rank.
	Atoms int `mapstructure:"atoms"`

	// NBins is the resampling grid dimension N; each patch is parameterized
	// onto an N x N height grid.
	NBins int `mapstructure:"n_bins"`

	// PatchSizeLimit caps patch membership, seed included.
	PatchSizeLimit int `mapstructure:"patch_size_limit"`

	// PatchNormalTolerance is the normal-cone half angle in degrees; region
	// growth requires n_seed . n_w > cos(tolerance).
	PatchNormalTolerance float64 `mapstructure:"patch_normal_tolerance"`

	// FloatPrecision is the fractional digit count for serialized floats.
	FloatPrecision int `mapstructure:"float_precision"`

	// MaxWorker bounds the per-patch resampling worker pool.
	MaxWorker int `mapstructure:"max_worker"`
}

// StorageConfig holds object storage configuration for archived artifacts.
type StorageConfig struct {
	Type      string `mapstructure:"type"` // cos or local
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	SecretID  string `mapstructure:"secret_id"`
	SecretKey string `mapstructure:"secret_key"`
	Domain    string `mapstructure:"domain"`
	Scheme    string `mapstructure:"scheme"`
	LocalPath string `mapstructure:"local_path"`
	Compress  string `mapstructure:"compress"` // none, gzip or zstd
}

// DatabaseConfig holds the run-history database configuration.
type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Type     string `mapstructure:"type"` // sqlite, postgres or mysql
	Path     string `mapstructure:"path"` // sqlite file path
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	MaxConns int    `mapstructure:"max_conns"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration from the specified file path.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/mesh-codec")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// No config file, defaults apply.
		} else if os.IsNotExist(err) {
			// File specified but missing, defaults apply.
		} else {
			return nil, apperrors.Wrap(apperrors.CodeConfigInvalid, "failed to read config file", err)
		}
	}

	v.SetEnvPrefix("MESH_CODEC")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeConfigInvalid, "failed to unmarshal config", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadFromReader loads configuration from raw bytes (useful for testing).
func LoadFromReader(configType string, content []byte) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType(configType)
	if err := v.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeConfigInvalid, "failed to read config", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeConfigInvalid, "failed to unmarshal config", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Codec defaults.
	v.SetDefault("codec.atoms", 10)
	v.SetDefault("codec.n_bins", 10)
	v.SetDefault("codec.patch_size_limit", 22)
	v.SetDefault("codec.patch_normal_tolerance", 90.0)
	v.SetDefault("codec.float_precision", 4)
	v.SetDefault("codec.max_worker", 4)

	// Storage defaults
	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_path", "./archive")
	v.SetDefault("storage.compress", "none")

	// Database defaults
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.path", "./mesh-codec.db")
	v.SetDefault("database.max_conns", 4)

	// Log defaults
	v.SetDefault("log.level", "info")
}

// Validate validates the configuration. Codec parameter violations are
// surfaced before any work starts.
func (c *Config) Validate() error {
	if err := c.Codec.Validate(); err != nil {
		return err
	}

	switch c.Storage.Compress {
	case "", "none", "gzip", "zstd":
	default:
		return apperrors.Newf(apperrors.CodeConfigInvalid, "unsupported storage compression: %s", c.Storage.Compress)
	}

	if c.Database.Enabled {
		switch c.Database.Type {
		case "sqlite", "postgres", "mysql":
		default:
			return apperrors.Newf(apperrors.CodeConfigInvalid, "unsupported database type: %s", c.Database.Type)
		}
	}

	return nil
}

// Validate checks the codec parameter ranges.
func (c *CodecConfig) Validate() error {
	if c.Atoms <= 0 {
		return apperrors.Newf(apperrors.CodeConfigInvalid, "atoms must be positive, got %d", c.Atoms)
	}
	if c.NBins <= 1 {
		return apperrors.Newf(apperrors.CodeConfigInvalid, "n_bins must be greater than 1, got %d", c.NBins)
	}
	if c.PatchSizeLimit <= 0 {
		return apperrors.Newf(apperrors.CodeConfigInvalid, "patch_size_limit must be positive, got %d", c.PatchSizeLimit)
	}
	if c.PatchNormalTolerance <= 0 || c.PatchNormalTolerance > 180 {
		return apperrors.Newf(apperrors.CodeConfigInvalid, "patch_normal_tolerance must be in (0, 180], got %v", c.PatchNormalTolerance)
	}
	if c.FloatPrecision < 0 {
		return apperrors.Newf(apperrors.CodeConfigInvalid, "float_precision must be non-negative, got %d", c.FloatPrecision)
	}
	return nil
}

// DSN builds the database connection string for the configured backend.
func (c *DatabaseConfig) DSN() string {
	switch c.Type {
	case "postgres", "postgresql":
		return fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			c.Host, c.Port, c.User, c.Password, c.Database,
		)
	case "mysql":
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%d)/%s?parseTime=true&loc=Local",
			c.User, c.Password, c.Host, c.Port, c.Database,
		)
	default:
		return c.Path
	}
}
