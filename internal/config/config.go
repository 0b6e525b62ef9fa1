package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StorageSqlite = "sqlite"
	StorageMongo  = "mongo"
	StorageNone   = "none"
)

type Storage struct {
	Driver string `mapstructure:"Driver"`
	// Path of the sqlite database, defaults to snapshots.db in TDataDir.
	Path string `mapstructure:"Path"`
}

type Config struct {
	ApiId     int32             `mapstructure:"ApiId"`
	ApiHash   string            `mapstructure:"ApiHash"`
	Mongo     map[string]string `mapstructure:"Mongo"`
	Debug     bool              `mapstructure:"Debug"`
	TDataDir  string            `mapstructure:"TDataDir"`
	Storage   Storage           `mapstructure:"Storage"`
	PeerMerge string            `mapstructure:"PeerMerge"`
}

// InitConfiguration reads .env from the working directory, then the config
// file. An empty path looks for config.json in the working directory and in
// ~/.config/tgfolders; a missing file is not an error. TGFOLDERS_* variables
// override file values, TG_ID and TG_HASH fill in missing credentials.
func InitConfiguration(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvPrefix("TGFOLDERS")
	v.AutomaticEnv()
	v.SetDefault("TDataDir", ".tdlib")
	v.SetDefault("Storage.Driver", StorageSqlite)
	v.SetDefault("Mongo", map[string]string{"uri": "mongodb://localhost:27017", "db": "tgfolders"})
	v.SetDefault("PeerMerge", "missing")
	for _, key := range []string{"ApiId", "ApiHash", "Debug", "TDataDir", "PeerMerge"} {
		_ = v.BindEnv(key)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "tgfolders"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := applyLegacyEnv(&cfg); err != nil {
		return nil, err
	}
	if cfg.Storage.Driver == StorageSqlite && cfg.Storage.Path == "" {
		cfg.Storage.Path = defaultSqlitePath(cfg.TDataDir)
	}

	return &cfg, nil
}

func defaultSqlitePath(dataDir string) string {
	return filepath.Join(dataDir, "snapshots.db")
}

// SetSessionDir moves the TDLib data directory. A sqlite path derived from the
// old directory follows it.
func (c *Config) SetSessionDir(dir string) {
	if c.Storage.Driver == StorageSqlite && c.Storage.Path == defaultSqlitePath(c.TDataDir) {
		c.Storage.Path = defaultSqlitePath(dir)
	}
	c.TDataDir = dir
}

func applyLegacyEnv(cfg *Config) error {
	if cfg.ApiId == 0 {
		if raw := os.Getenv("TG_ID"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 32)
			if err != nil {
				return fmt.Errorf("invalid TG_ID %q: %w", raw, err)
			}
			cfg.ApiId = int32(id)
		}
	}
	if cfg.ApiHash == "" {
		cfg.ApiHash = os.Getenv("TG_HASH")
	}

	return nil
}

func (c *Config) Validate() error {
	if c.ApiId == 0 || c.ApiHash == "" {
		return errors.New("api credentials are not configured: set ApiId and ApiHash or TG_ID and TG_HASH")
	}
	switch c.Storage.Driver {
	case StorageSqlite, StorageMongo, StorageNone:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	return nil
}
