package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	defaultPort       = 2333
	defaultEnv        = "development"
	defaultTextFilter = "markdown"
	defaultPageSize   = 10
)

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int        `yaml:"port"`
	DSN            string     `yaml:"dsn"` // MySQL DSN
	RedisURL       string     `yaml:"redis_url"`
	Env            string     `yaml:"env"` // "development" | "production"
	JWTSecret      string     `yaml:"jwt_secret"`
	AllowedOrigins []string   `yaml:"allowed_origins"`
	Blog           BlogConfig `yaml:"blog"`
}

// BlogConfig is the site-wide editorial configuration the article engine
// consumes: the default text filter for new articles and display limits.
type BlogConfig struct {
	Name       string `yaml:"name"`
	URL        string `yaml:"url"`
	TextFilter string `yaml:"text_filter"`
	PageSize   int    `yaml:"page_size"`
}

// IsDev reports whether the app runs in development mode.
func (c *AppConfig) IsDev() bool { return c.Env != "production" }

// Load reads the YAML config from path and fills in defaults. A missing file
// yields a default development config rather than an error.
func Load(path string) (*AppConfig, error) {
	cfg := &AppConfig{}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}
	if cfg.Env == "" {
		cfg.Env = defaultEnv
	}
	if cfg.Blog.TextFilter == "" {
		cfg.Blog.TextFilter = defaultTextFilter
	}
	if cfg.Blog.PageSize <= 0 {
		cfg.Blog.PageSize = defaultPageSize
	}
	return cfg, nil
}
