package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP      HTTP      `yaml:"http"`
	Predictor Predictor `yaml:"predictor"`
	Cache     Cache     `yaml:"cache"`
	Security  Security  `yaml:"security"`
	Log       Log       `yaml:"log"`
}

type HTTP struct {
	Port string `yaml:"port"`
}

type Predictor struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// Cache is the Valkey/Redis backing the shared rate limiter. An empty Addr
// keeps rate limiting in memory.
type Cache struct {
	Addr string `yaml:"addr"`
	DB   int    `yaml:"db"`
}

type Security struct {
	DisableCSRF        bool   `yaml:"disable_csrf"`
	CSRFKey            string `yaml:"csrf_key"`
	DisableRateLimit   bool   `yaml:"disable_rate_limit"`
	RateLimitPerMinute int    `yaml:"rate_limit_per_minute"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

const DefaultPredictorURL = "http://127.0.0.1:5000/predict"

func Default() *Config {
	return &Config{
		HTTP:      HTTP{Port: "8080"},
		Predictor: Predictor{URL: DefaultPredictorURL},
		Security:  Security{RateLimitPerMinute: 120},
		Log:       Log{Level: "info", Format: "json"},
	}
}

// LoadDotEnv reads KEY=VALUE pairs from path without overriding variables
// that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Load layers defaults, the YAML file at path (if it exists) and the
// environment, in that order.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	setString(&c.HTTP.Port, "API_PORT")
	setString(&c.Predictor.URL, "PREDICTOR_URL")
	setString(&c.Cache.Addr, "VALKEY_ADDR")
	setString(&c.Security.CSRFKey, "CSRF_KEY")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")
	setString(&c.Log.File, "LOG_FILE")

	if v := os.Getenv("PREDICTOR_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("PREDICTOR_TIMEOUT: %w", err)
		}
		c.Predictor.Timeout = d
	}
	if err := setInt(&c.Cache.DB, "VALKEY_DB"); err != nil {
		return err
	}
	if err := setInt(&c.Security.RateLimitPerMinute, "RATE_LIMIT_PER_MINUTE"); err != nil {
		return err
	}
	setBool(&c.Security.DisableCSRF, "DISABLE_CSRF")
	setBool(&c.Security.DisableRateLimit, "DISABLE_RATELIMIT")
	return nil
}

func (c *Config) Validate() error {
	if c.HTTP.Port == "" {
		return errors.New("http port not set")
	}
	if c.Predictor.URL == "" {
		return errors.New("predictor url not set")
	}
	if c.Predictor.Timeout < 0 {
		return errors.New("predictor timeout must not be negative")
	}
	if c.Security.RateLimitPerMinute <= 0 {
		c.Security.RateLimitPerMinute = 60
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: invalid int %q", key, v)
	}
	*dst = n
	return nil
}

// setBool accepts "true" or "1", as the DISABLE_* switches always have.
func setBool(dst *bool, key string) {
	switch strings.ToLower(os.Getenv(key)) {
	case "true", "1":
		*dst = true
	case "false", "0":
		*dst = false
	}
}
