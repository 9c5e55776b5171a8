package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/chromatree/chromatree/pkg/cache"
	"github.com/chromatree/chromatree/pkg/store"
)

// Cache backend names accepted in the config file.
const (
	cacheBackendFile  = "file"
	cacheBackendRedis = "redis"
	cacheBackendNone  = "none"
)

// Store backend names accepted in the config file.
const (
	storeBackendFile  = "file"
	storeBackendMongo = "mongo"
)

// Config is the on-disk CLI configuration, read from
// ~/.config/chromatree/config.toml. Every field has a working default;
// the file only needs to exist for non-default setups (redis cache,
// mongo run archive, custom KLEE install).
type Config struct {
	Solver SolverConfig `toml:"solver"`
	Cache  CacheConfig  `toml:"cache"`
	Store  StoreConfig  `toml:"store"`
	Serve  ServeConfig  `toml:"serve"`
}

// SolverConfig locates the KLEE toolchain.
type SolverConfig struct {
	Clang          string `toml:"clang"`
	Klee           string `toml:"klee"`
	KtestTool      string `toml:"ktest_tool"`
	Include        string `toml:"include"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// CacheConfig selects the artifact cache backend.
type CacheConfig struct {
	Backend       string `toml:"backend"` // file (default), redis, none
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// StoreConfig selects the run archive backend.
type StoreConfig struct {
	Backend       string `toml:"backend"` // file (default), mongo
	Dir           string `toml:"dir"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// ServeConfig configures the HTTP API server.
type ServeConfig struct {
	Addr string `toml:"addr"`
}

// DefaultConfig returns the configuration used when no config file
// exists.
func DefaultConfig() Config {
	return Config{
		Solver: SolverConfig{TimeoutSeconds: 30},
		Cache:  CacheConfig{Backend: cacheBackendFile},
		Store:  StoreConfig{Backend: storeBackendFile},
		Serve:  ServeConfig{Addr: ":8714"},
	}
}

// ConfigPath returns the default config file location.
func ConfigPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// LoadConfig reads the config file at path, or the default location
// when path is empty. A missing file yields the defaults; a present but
// malformed file is an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Solver.TimeoutSeconds <= 0 {
		cfg.Solver.TimeoutSeconds = 30
	}
	return cfg, nil
}

// redisCache connects to the configured Redis instance.
func (c *CLI) redisCache() (cache.Cache, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	cc := c.Config.Cache
	return cache.NewRedisCache(ctx, cc.RedisAddr, cc.RedisPassword, cc.RedisDB)
}

// newStore opens the configured run archive backend.
func (c *CLI) newStore(ctx context.Context) (store.Store, error) {
	switch c.Config.Store.Backend {
	case storeBackendMongo:
		return store.NewMongoStore(ctx, store.MongoConfig{
			URI:      c.Config.Store.MongoURI,
			Database: c.Config.Store.MongoDatabase,
		})
	default:
		return store.NewFileStore(c.Config.Store.Dir)
	}
}
