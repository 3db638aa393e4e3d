package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	dirName  = ".homebase"
	fileName = "config"
	fileType = "yaml"

	envPrefix = "HOMEBASE"
)

// Config holds application configuration
type Config struct {
	DBPath string

	LogLevel  string
	LogFormat string
	LogPath   string

	LinkSettleDelay   time.Duration
	FolderSettleDelay time.Duration
	RevertOnCancel    bool

	PersistAttempts int
}

// NewConfig creates a new configuration with defaults
func NewConfig() *Config {
	dir := Dir()
	return &Config{
		DBPath:            filepath.Join(dir, "homebase.db"),
		LogLevel:          "info",
		LogFormat:         "json",
		LogPath:           filepath.Join(dir, "homebase.log"),
		LinkSettleDelay:   200 * time.Millisecond,
		FolderSettleDelay: 300 * time.Millisecond,
		RevertOnCancel:    true,
		PersistAttempts:   3,
	}
}

// WithDBPath sets a custom database path
func (c *Config) WithDBPath(path string) *Config {
	c.DBPath = path
	return c
}

// WithLogLevel sets the log level
func (c *Config) WithLogLevel(level string) *Config {
	c.LogLevel = level
	return c
}

// Dir returns the homebase directory (~/.homebase).
func Dir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return dirName
	}
	return filepath.Join(homeDir, dirName)
}

// FilePath returns the default config file path (~/.homebase/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// Load reads the config file at path (the default location when empty)
// and HOMEBASE_* environment variables on top of the defaults. A missing
// file is not an error.
func Load(path string) (*Config, error) {
	def := NewConfig()

	v := viper.New()
	v.SetDefault("db_path", def.DBPath)
	v.SetDefault("log.level", def.LogLevel)
	v.SetDefault("log.format", def.LogFormat)
	v.SetDefault("log.path", def.LogPath)
	v.SetDefault("drag.link_settle_delay", def.LinkSettleDelay)
	v.SetDefault("drag.folder_settle_delay", def.FolderSettleDelay)
	v.SetDefault("drag.revert_on_cancel", def.RevertOnCancel)
	v.SetDefault("persist.max_attempts", def.PersistAttempts)

	if path == "" {
		path = FilePath()
	}
	v.SetConfigFile(path)
	v.SetConfigType(fileType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &Config{
		DBPath:            v.GetString("db_path"),
		LogLevel:          v.GetString("log.level"),
		LogFormat:         v.GetString("log.format"),
		LogPath:           v.GetString("log.path"),
		LinkSettleDelay:   v.GetDuration("drag.link_settle_delay"),
		FolderSettleDelay: v.GetDuration("drag.folder_settle_delay"),
		RevertOnCancel:    v.GetBool("drag.revert_on_cancel"),
		PersistAttempts:   v.GetInt("persist.max_attempts"),
	}
	if cfg.PersistAttempts < 1 {
		cfg.PersistAttempts = 1
	}
	return cfg, nil
}
