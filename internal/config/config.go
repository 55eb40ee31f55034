package config

import (
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env      string `yaml:"env"`
		LogLevel string `yaml:"log_level"`
	} `yaml:"app"`

	Server struct {
		Addr               string   `yaml:"addr"`
		CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
		MaxBodyBytes       int64    `yaml:"max_body_bytes"`
	} `yaml:"server"`

	Storage struct {
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxOpenConns    int    `yaml:"max_open_conns"`
			MaxIdleConns    int    `yaml:"max_idle_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Cache struct {
		// Memory is the only backend; TTL bounds staleness of the advisory
		// lookup cache (scheme code, device fingerprint).
		DefaultTTL string `yaml:"default_ttl"`
	} `yaml:"cache"`

	API struct {
		DefaultLimit int `yaml:"default_limit"`
		MaxLimit     int `yaml:"max_limit"`
	} `yaml:"api"`
}

// Default returns the configuration baseline used when YAML/env provide nothing.
func Default() *Config {
	c := &Config{}
	c.App.Env = "dev"
	c.App.LogLevel = "info"
	c.Server.Addr = ":8080"
	c.Server.CORSAllowedOrigins = []string{"http://localhost:3000"}
	c.Server.MaxBodyBytes = 1 << 20
	c.Storage.Postgres.MaxOpenConns = 5
	c.Storage.Postgres.MaxIdleConns = 2
	c.Storage.Postgres.ConnMaxLifetime = "30m"
	c.Cache.DefaultTTL = "2m"
	c.API.DefaultLimit = 100
	c.API.MaxLimit = 1000
	return c
}

// Load reads an optional YAML file, then applies env overrides on top.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, err
		}
	}
	c.applyEnv()
	return c, nil
}

func (c *Config) applyEnv() {
	c.App.Env = getenv("APP_ENV", c.App.Env)
	c.App.LogLevel = getenv("LOG_LEVEL", c.App.LogLevel)
	c.Server.Addr = getenv("SERVER_ADDR", c.Server.Addr)
	if v := getenv("SERVER_CORS_ALLOWED_ORIGINS", ""); v != "" {
		c.Server.CORSAllowedOrigins = splitCSV(v)
	}
	c.Storage.DSN = getenv("STORAGE_DSN", c.Storage.DSN)
	c.Storage.Postgres.MaxOpenConns = getenvInt("POSTGRES_MAX_OPEN_CONNS", c.Storage.Postgres.MaxOpenConns)
	c.Storage.Postgres.MaxIdleConns = getenvInt("POSTGRES_MAX_IDLE_CONNS", c.Storage.Postgres.MaxIdleConns)
	c.Storage.Postgres.ConnMaxLifetime = getenv("POSTGRES_CONN_MAX_LIFETIME", c.Storage.Postgres.ConnMaxLifetime)
	c.Cache.DefaultTTL = getenv("CACHE_DEFAULT_TTL", c.Cache.DefaultTTL)
	c.API.DefaultLimit = getenvInt("API_DEFAULT_LIMIT", c.API.DefaultLimit)
	c.API.MaxLimit = getenvInt("API_MAX_LIMIT", c.API.MaxLimit)
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
