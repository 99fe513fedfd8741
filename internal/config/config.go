package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every setting the server needs. Loaded from a YAML file when
// one is present, otherwise from environment variables.
type Config struct {
	Postgres PostgresConfig `yaml:"postgres"`
	Elastic  ElasticConfig  `yaml:"elastic"`
	HTTP     HTTPConfig     `yaml:"http"`
	Session  SessionConfig  `yaml:"session"`
	Cron     CronConfig     `yaml:"cron"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// ElasticConfig holds Elasticsearch configuration.
type ElasticConfig struct {
	URL string `yaml:"url"`
}

// HTTPConfig holds listener configuration.
type HTTPConfig struct {
	Addr           string        `yaml:"addr"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	StoreTimeout   time.Duration `yaml:"store_timeout"`
}

// SessionConfig holds session-token configuration.
type SessionConfig struct {
	Secret     string        `yaml:"secret"`
	StudentTTL time.Duration `yaml:"student_ttl"`
	AdminTTL   time.Duration `yaml:"admin_ttl"`
}

// CronConfig holds the shared secret for the daily reset trigger.
type CronConfig struct {
	Secret string `yaml:"secret"`
}

// Load reads the configuration from a YAML file, falling back to environment
// variables when the file does not exist.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return loadFromEnv()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, cfg.validate()
}

func loadFromEnv() (*Config, error) {
	cfg := Config{
		Postgres: PostgresConfig{DSN: os.Getenv("POSTGRES_DSN")},
		Elastic:  ElasticConfig{URL: os.Getenv("ELASTIC_URL")},
		HTTP: HTTPConfig{
			Addr: os.Getenv("HTTP_ADDR"),
		},
		Session: SessionConfig{Secret: os.Getenv("SESSION_SECRET")},
		Cron:    CronConfig{Secret: os.Getenv("CRON_SECRET")},
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitCSV(v)
	}
	if v := os.Getenv("STORE_TIMEOUT_SECONDS"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid STORE_TIMEOUT_SECONDS: %w", err)
		}
		cfg.HTTP.StoreTimeout = time.Duration(secs) * time.Second
	}
	cfg.applyDefaults()
	return &cfg, cfg.validate()
}

func (c *Config) applyDefaults() {
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if len(c.HTTP.AllowedOrigins) == 0 {
		c.HTTP.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	if c.HTTP.StoreTimeout == 0 {
		c.HTTP.StoreTimeout = 5 * time.Second
	}
	if c.Session.StudentTTL == 0 {
		c.Session.StudentTTL = 24 * time.Hour
	}
	if c.Session.AdminTTL == 0 {
		c.Session.AdminTTL = 8 * time.Hour
	}
}

func (c *Config) validate() error {
	if c.Postgres.DSN == "" {
		return fmt.Errorf("postgres dsn is required")
	}
	if c.Session.Secret == "" {
		return fmt.Errorf("session secret is required")
	}
	if c.Cron.Secret == "" {
		return fmt.Errorf("cron secret is required")
	}
	return nil
}

func splitCSV(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
