// Package config holds process-level settings for the keeper shell. Values
// resolve from flags, then KEEPER_-prefixed environment variables, then
// defaults. The engine packages never read configuration; everything they
// need arrives in the deck context.
package config

import (
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	v *viper.Viper
}

func New() *Config {
	v := viper.New()
	v.SetDefault("debug", false)
	v.SetDefault("cache-size", 128)
	v.SetDefault("reveal-games", 10)
	v.SetDefault("data-path", "./data")
	v.SetDefault("history-db", "keeper-history.db")
	v.SetEnvPrefix("keeper")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return &Config{v: v}
}

// Load parses command-line arguments on top of the environment.
func (c *Config) Load(args []string) error {
	fs := pflag.NewFlagSet("keeper", pflag.ContinueOnError)
	fs.Bool("debug", false, "log at debug level")
	fs.Int("cache-size", 128, "max strategy results kept in memory")
	fs.Int("reveal-games", 10, "default number of sample games per reveal")
	fs.String("data-path", "./data", "directory for history and deck files")
	fs.String("history-db", "keeper-history.db", "history database filename, relative to data-path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return c.v.BindPFlags(fs)
}

func (c *Config) GetBool(key string) bool { return c.v.GetBool(key) }

func (c *Config) CacheSize() int   { return c.v.GetInt("cache-size") }
func (c *Config) RevealGames() int { return c.v.GetInt("reveal-games") }
func (c *Config) DataPath() string { return c.v.GetString("data-path") }

// HistoryPath is the resolved location of the analysis history database.
func (c *Config) HistoryPath() string {
	db := c.v.GetString("history-db")
	if filepath.IsAbs(db) {
		return db
	}
	return filepath.Join(c.DataPath(), db)
}

// AdjustRelativePaths anchors relative paths at the executable's directory,
// for when the shell is launched from somewhere else.
func (c *Config) AdjustRelativePaths(basePath string) {
	dp := c.DataPath()
	if !filepath.IsAbs(dp) {
		c.v.Set("data-path", filepath.Join(basePath, dp))
	}
}
