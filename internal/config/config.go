package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

type Account struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type Config struct {
	Server struct {
		Port          string `yaml:"port"`
		AllowedOrigin string `yaml:"allowed_origin"`
		PublicDir     string `yaml:"public_dir"`
		ReadTimeout   string `yaml:"read_timeout"`
		WriteTimeout  string `yaml:"write_timeout"`
	} `yaml:"server"`
	Storage struct {
		DataDir string `yaml:"data_dir"`
	} `yaml:"storage"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		// Source selects where quiz documents live: "file" (default) or "postgres".
		Source string `yaml:"source"`
		TTL    string `yaml:"ttl"`
	} `yaml:"quiz"`
	Auth struct {
		JWTSecret  string  `yaml:"jwt_secret"`
		TokenTTL   string  `yaml:"token_ttl"`
		SuperAdmin Account `yaml:"super_admin"`
		ViewOnly   Account `yaml:"view_only"`
	} `yaml:"auth"`
}

// Load reads YAML config from path, then applies environment overrides and
// defaults. A missing file is not an error; the service can run from env alone.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	cfg.applyEnv(os.LookupEnv)
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set(&c.Server.Port, "PORT")
	set(&c.Server.AllowedOrigin, "ALLOWED_CLIENT_ORIGIN")
	set(&c.Server.PublicDir, "PUBLIC_DIR")
	set(&c.Storage.DataDir, "DATA_DIR")
	set(&c.Postgres.URL, "DATABASE_URL")
	set(&c.Redis.Addr, "REDIS_ADDR")
	set(&c.Redis.Password, "REDIS_PASSWORD")
	set(&c.Quiz.Source, "QUIZ_SOURCE")
	set(&c.Auth.JWTSecret, "JWT_SECRET")
	set(&c.Auth.SuperAdmin.Username, "SUPER_ADMIN_USERNAME")
	set(&c.Auth.SuperAdmin.Password, "SUPER_ADMIN_PASSWORD")
	set(&c.Auth.ViewOnly.Username, "VIEW_ONLY_USERNAME")
	set(&c.Auth.ViewOnly.Password, "VIEW_ONLY_PASSWORD")
	if v, ok := lookup("REDIS_DB"); ok {
		if db, err := strconv.Atoi(v); err == nil {
			c.Redis.DB = db
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Server.AllowedOrigin == "" {
		c.Server.AllowedOrigin = "*"
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = "data"
	}
	if c.Quiz.Source == "" {
		c.Quiz.Source = SourceFile
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
