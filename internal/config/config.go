package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const envPrefix = "PAPAPIZZA_"

type Config struct {
	Env     string        `yaml:"env"`
	API     APIConfig     `yaml:"api"`
	Log     LogConfig     `yaml:"log"`
	Session SessionConfig `yaml:"session"`
	Cache   CacheConfig   `yaml:"cache"`
	Redis   RedisConfig   `yaml:"redis"`
	Breaker BreakerConfig `yaml:"breaker"`
	MockAPI MockAPIConfig `yaml:"mock_api"`
}

type APIConfig struct {
	URL     string        `yaml:"url" validate:"required,url"`
	Timeout time.Duration `yaml:"timeout" validate:"gt=0"`
	Vendor  string        `yaml:"vendor" validate:"required"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json text"`
}

type SessionConfig struct {
	Store   string        `yaml:"store" validate:"oneof=memory file redis"`
	File    string        `yaml:"file" validate:"required_if=Store file"`
	Profile string        `yaml:"profile" validate:"required_if=Store redis"`
	TTL     time.Duration `yaml:"ttl" validate:"gte=0"`
}

type CacheConfig struct {
	Kind string        `yaml:"kind" validate:"oneof=none memory redis"`
	TTL  time.Duration `yaml:"ttl" validate:"gte=0"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" validate:"omitempty,hostname_port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db" validate:"gte=0"`
}

type BreakerConfig struct {
	FailureThreshold uint32        `yaml:"failure_threshold" validate:"gte=1"`
	MaxRequests      uint32        `yaml:"max_requests" validate:"gte=1"`
	Interval         time.Duration `yaml:"interval" validate:"gte=0"`
	Timeout          time.Duration `yaml:"timeout" validate:"gt=0"`
}

type MockAPIConfig struct {
	Addr            string        `yaml:"addr" validate:"required"`
	MenuFile        string        `yaml:"menu_file"`
	RequestTimeout  time.Duration `yaml:"request_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
}

func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Config{
		Env: "development",
		API: APIConfig{
			URL:     "http://127.0.0.1:8000/api",
			Timeout: 15 * time.Second,
			Vendor:  "papa",
		},
		Log: LogConfig{Level: "warn", Format: "text"},
		Session: SessionConfig{
			Store:   "file",
			File:    filepath.Join(home, ".papapizza", "session.yaml"),
			Profile: "default",
			TTL:     30 * 24 * time.Hour,
		},
		Cache: CacheConfig{Kind: "memory", TTL: 10 * time.Minute},
		Redis: RedisConfig{Addr: "localhost:6379"},
		Breaker: BreakerConfig{
			FailureThreshold: 5,
			MaxRequests:      1,
			Interval:         time.Minute,
			Timeout:          30 * time.Second,
		},
		MockAPI: MockAPIConfig{
			Addr:            ":8000",
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
	}
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "papapizza.yaml"
	}
	return filepath.Join(home, ".papapizza", "config.yaml")
}

// Load reads defaults, then the YAML file, then PAPAPIZZA_* environment
// overrides, and validates the result. An empty path means DefaultPath,
// which may be missing; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if (c.Session.Store == "redis" || c.Cache.Kind == "redis") && c.Redis.Addr == "" {
		return errors.New("invalid config: redis.addr is required when redis is used")
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Env = getEnv("ENV", c.Env)
	c.API.URL = getEnv("API_URL", c.API.URL)
	c.API.Vendor = getEnv("VENDOR", c.API.Vendor)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
	c.Session.Store = getEnv("SESSION_STORE", c.Session.Store)
	c.Session.File = getEnv("SESSION_FILE", c.Session.File)
	c.Session.Profile = getEnv("SESSION_PROFILE", c.Session.Profile)
	c.Cache.Kind = getEnv("CACHE", c.Cache.Kind)
	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.MockAPI.Addr = getEnv("MOCK_ADDR", c.MockAPI.Addr)
	c.MockAPI.MenuFile = getEnv("MOCK_MENU", c.MockAPI.MenuFile)

	var err error
	if c.API.Timeout, err = getEnvDuration("API_TIMEOUT", c.API.Timeout); err != nil {
		return err
	}
	if c.Cache.TTL, err = getEnvDuration("CACHE_TTL", c.Cache.TTL); err != nil {
		return err
	}
	if c.Redis.DB, err = getEnvInt("REDIS_DB", c.Redis.DB); err != nil {
		return err
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(envPrefix + key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(envPrefix + key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s%s: %w", envPrefix, key, err)
	}
	return d, nil
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(envPrefix + key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s%s: %w", envPrefix, key, err)
	}
	return n, nil
}
