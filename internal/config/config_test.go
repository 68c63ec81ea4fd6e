package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/ctf-migrate/internal/adapters/remote/cma"
)

func TestNew_Defaults(t *testing.T) {
	cfg := FromViper(New())

	assert.Equal(t, "master", cfg.EnvironmentID)
	assert.Equal(t, "migrations", cfg.MigrationsDir)
	assert.Equal(t, cma.DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, float64(cma.DefaultRateLimit), cfg.RateLimit)
	assert.Equal(t, 5, cfg.Concurrency)
	assert.False(t, cfg.Debug)
}

func TestNew_EnvironmentBindings(t *testing.T) {
	t.Setenv("CONTENTFUL_MANAGEMENT_ACCESS_TOKEN", "CFPAT-env")
	t.Setenv("CONTENTFUL_SPACE_ID", "space-env")
	t.Setenv("CONTENTFUL_ENV_ID", "staging")
	t.Setenv("CONTENTFUL_MIGRATIONS_DIR", "scripts")
	t.Setenv("CTF_MIGRATE_CONCURRENCY", "9")

	cfg := FromViper(New())
	assert.Equal(t, "CFPAT-env", cfg.AccessToken)
	assert.Equal(t, "space-env", cfg.SpaceID)
	assert.Equal(t, "staging", cfg.EnvironmentID)
	assert.Equal(t, "scripts", cfg.MigrationsDir)
	assert.Equal(t, 9, cfg.Concurrency)
	require.NoError(t, cfg.Validate())
}

func TestNew_ExplicitValuesWin(t *testing.T) {
	t.Setenv("CONTENTFUL_SPACE_ID", "space-env")
	v := New()
	v.Set("space_id", "space-flag")
	assert.Equal(t, "space-flag", FromViper(v).SpaceID)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"complete", Config{AccessToken: "CFPAT-x", SpaceID: "s", EnvironmentID: "master"}, ""},
		{"no token", Config{SpaceID: "s", EnvironmentID: "master"}, "missing access token"},
		{"no space", Config{AccessToken: "CFPAT-x", EnvironmentID: "master"}, "missing space id"},
		{"no environment", Config{AccessToken: "CFPAT-x", SpaceID: "s"}, "missing environment id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
