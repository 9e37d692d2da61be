package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/scsmash3r/fresh-seo/internal/models"
)

// ErrMissingURL is returned when no site URL is configured.
var ErrMissingURL = errors.New("site.url is required")

type Config struct {
	Site struct {
		URL string
	}
	Server struct {
		Port int
	}
	Database struct {
		Driver string
		URL    string
	}
	Log struct {
		Level  string
		Format string
		Dir    string
	}
	Sitemap struct {
		Manifest  string
		StaticDir string
		Ignore    []string
		Overrides []models.Override
	}
}

// LoadConfig reads config.yaml from ".", "./config" or the explicit path,
// then FRESHSEO_* environment variables. A missing config file is only an
// error when path is set.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.url", "freshseo.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "pretty")
	v.SetDefault("sitemap.manifest", "fresh.gen.ts")
	v.SetDefault("sitemap.staticdir", "static")
	v.SetDefault("sitemap.ignore", []string{"sitemap.xml"})

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	v.SetEnvPrefix("FRESHSEO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Keys without a default are invisible to AutomaticEnv during Unmarshal.
	for _, key := range []string{"site.url", "log.dir"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	var config Config
	err := v.Unmarshal(&config, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeHookFunc("2006-01-02"),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	return &config, nil
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	if c.Site.URL == "" {
		return ErrMissingURL
	}
	for i := range c.Sitemap.Overrides {
		if err := c.Sitemap.Overrides[i].Validate(); err != nil {
			return fmt.Errorf("sitemap.overrides[%d]: %w", i, err)
		}
	}
	return nil
}

// BaseURL returns the site URL without a trailing slash, so that
// url + "/path" never doubles the separator.
func (c *Config) BaseURL() string {
	return strings.TrimSuffix(c.Site.URL, "/")
}
