// Package config provides configuration management.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/satishbabariya/ctf-migrate/internal/adapters/remote/cma"
)

// AppFs is the filesystem the CLI reads scripts and dotenv files from.
var AppFs = afero.NewOsFs()

// Config holds the application configuration.
type Config struct {
	AccessToken   string
	SpaceID       string
	EnvironmentID string
	MigrationsDir string
	BaseURL       string
	RateLimit     float64
	Concurrency   int
	Debug         bool
}

// Validate checks the settings every remote command needs.
func (c *Config) Validate() error {
	if c.AccessToken == "" {
		return fmt.Errorf("missing access token: pass --access-token or set CONTENTFUL_MANAGEMENT_ACCESS_TOKEN")
	}
	if c.SpaceID == "" {
		return fmt.Errorf("missing space id: pass --space-id or set CONTENTFUL_SPACE_ID")
	}
	if c.EnvironmentID == "" {
		return fmt.Errorf("missing environment id")
	}
	return nil
}

// New returns a viper instance with defaults and environment bindings.
func New() *viper.Viper {
	v := viper.New()

	v.SetConfigName(".ctf-migrate")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("CTF_MIGRATE")
	v.AutomaticEnv()

	v.SetDefault("environment_id", "master")
	v.SetDefault("migrations_dir", filepath.Join(".", "migrations"))
	v.SetDefault("base_url", cma.DefaultBaseURL)
	v.SetDefault("rate_limit", cma.DefaultRateLimit)
	v.SetDefault("concurrency", 5)
	v.SetDefault("debug", false)

	_ = v.BindEnv("access_token", "CONTENTFUL_MANAGEMENT_ACCESS_TOKEN")
	_ = v.BindEnv("space_id", "CONTENTFUL_SPACE_ID")
	_ = v.BindEnv("environment_id", "CONTENTFUL_ENV_ID")
	_ = v.BindEnv("migrations_dir", "CONTENTFUL_MIGRATIONS_DIR")
	_ = v.BindEnv("debug", "CTF_MIGRATE_DEBUG")
	return v
}

// LoadDotEnv loads .env and then .env.local, the latter taking priority.
func LoadDotEnv() {
	if _, err := AppFs.Stat(".env"); err == nil {
		// Don't fail if .env can't be loaded
		_ = godotenv.Load()
	}
	if _, err := AppFs.Stat(".env.local"); err == nil {
		_ = godotenv.Overload(".env.local")
	}
}

// Load reads the config file, if any, and returns the resolved configuration.
// Flags bound to v beforehand take precedence.
func Load(v *viper.Viper) (*Config, error) {
	home, err := homedir.Dir()
	if err != nil {
		return nil, fmt.Errorf("failed to find home directory: %w", err)
	}
	v.AddConfigPath(".")
	v.AddConfigPath(home)
	v.AddConfigPath(filepath.Join(home, ".config", "ctf-migrate"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return FromViper(v), nil
}

// FromViper builds a Config from already-populated settings.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		AccessToken:   v.GetString("access_token"),
		SpaceID:       v.GetString("space_id"),
		EnvironmentID: v.GetString("environment_id"),
		MigrationsDir: v.GetString("migrations_dir"),
		BaseURL:       v.GetString("base_url"),
		RateLimit:     v.GetFloat64("rate_limit"),
		Concurrency:   v.GetInt("concurrency"),
		Debug:         v.GetBool("debug"),
	}
}
