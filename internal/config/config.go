package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

const (
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	API     API     `yaml:"api"`
	Storage Storage `yaml:"storage"`
	Log     Log     `yaml:"log"`

	Currency string `yaml:"currency"`
	Locale   string `yaml:"locale"`
}

type API struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type Storage struct {
	Backend     string `yaml:"backend"`
	Key         string `yaml:"key"`
	Dir         string `yaml:"dir"`
	RedisURL    string `yaml:"redis_url"`
	PostgresDSN string `yaml:"postgres_dsn"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() Config {
	return Config{
		API: API{
			BaseURL: "http://localhost:3333",
			Timeout: 10 * time.Second,
		},
		Storage: Storage{
			Backend: BackendFile,
			Key:     "@RocketShoes:cart",
			Dir:     defaultDir(),
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
		Currency: "USD",
		Locale:   "en-US",
	}
}

// Load reads path on top of the defaults, then applies CART_* environment overrides.
// An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("os.ReadFile: %w", err)
		}

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("yaml.Unmarshal: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, fmt.Errorf("applyEnv: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	if c.API.BaseURL == "" {
		errs = append(errs, errors.New("api.base_url is empty"))
	}
	if c.API.Timeout < 0 {
		errs = append(errs, errors.New("api.timeout is negative"))
	}

	switch c.Storage.Backend {
	case BackendFile:
		if c.Storage.Dir == "" {
			errs = append(errs, errors.New("storage.dir is empty"))
		}
	case BackendRedis:
		if c.Storage.RedisURL == "" {
			errs = append(errs, errors.New("storage.redis_url is empty"))
		}
	case BackendPostgres:
		if c.Storage.PostgresDSN == "" {
			errs = append(errs, errors.New("storage.postgres_dsn is empty"))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("storage.backend[%s] is not supported", c.Storage.Backend))
	}

	if c.Storage.Key == "" {
		errs = append(errs, errors.New("storage.key is empty"))
	}

	if _, err := currency.ParseISO(c.Currency); err != nil {
		errs = append(errs, fmt.Errorf("currency[%s] is not valid: %w", c.Currency, err))
	}
	if _, err := language.Parse(c.Locale); err != nil {
		errs = append(errs, fmt.Errorf("locale[%s] is not valid: %w", c.Locale, err))
	}

	return errors.Join(errs...)
}

// CurrencyUnit and LanguageTag assume a validated config.
func (c Config) CurrencyUnit() currency.Unit {
	return currency.MustParseISO(c.Currency)
}

func (c Config) LanguageTag() language.Tag {
	return language.MustParse(c.Locale)
}

func (c *Config) applyEnv() error {
	c.API.BaseURL = getEnv("CART_API_BASE_URL", c.API.BaseURL)
	c.Storage.Backend = getEnv("CART_STORAGE_BACKEND", c.Storage.Backend)
	c.Storage.Key = getEnv("CART_STORAGE_KEY", c.Storage.Key)
	c.Storage.Dir = getEnv("CART_STORAGE_DIR", c.Storage.Dir)
	c.Storage.RedisURL = getEnv("CART_REDIS_URL", c.Storage.RedisURL)
	c.Storage.PostgresDSN = getEnv("CART_POSTGRES_DSN", c.Storage.PostgresDSN)
	c.Log.Level = getEnv("CART_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("CART_LOG_FORMAT", c.Log.Format)
	c.Currency = getEnv("CART_CURRENCY", c.Currency)
	c.Locale = getEnv("CART_LOCALE", c.Locale)

	timeout, err := getEnvDuration("CART_API_TIMEOUT", c.API.Timeout)
	if err != nil {
		return err
	}
	c.API.Timeout = timeout

	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	if d, err := time.ParseDuration(v); err == nil {
		return d, nil
	}

	// bare integers are seconds
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s[%s] is not a duration", key, v)
	}

	return time.Duration(n) * time.Second, nil
}

func defaultDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".cart"
	}
	return filepath.Join(dir, "cart-demo")
}
