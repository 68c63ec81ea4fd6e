// Package container provides dependency injection.
package container

import (
	"fmt"
	"time"

	"github.com/satishbabariya/ctf-migrate/internal/adapters/remote/cma"
	"github.com/satishbabariya/ctf-migrate/internal/adapters/storage"
	"github.com/satishbabariya/ctf-migrate/internal/config"
	"github.com/satishbabariya/ctf-migrate/internal/core/migration/domain"
	"github.com/satishbabariya/ctf-migrate/internal/core/migration/planner"
	"github.com/satishbabariya/ctf-migrate/internal/service"
	"github.com/satishbabariya/ctf-migrate/internal/ui"
)

// Container holds all application dependencies.
type Container struct {
	// Configuration
	config *config.Config

	// Adapters
	gateway  domain.Gateway
	storage  storage.Storage
	reporter domain.Reporter

	// Services
	migrationService *service.MigrationService
	bootstrapService *service.BootstrapService
	schemaService    *service.SchemaService
}

// Option replaces a default dependency.
type Option func(*Container)

// WithGateway sets the remote gateway.
func WithGateway(g domain.Gateway) Option {
	return func(c *Container) { c.gateway = g }
}

// WithStorage sets the scripts storage.
func WithStorage(s storage.Storage) Option {
	return func(c *Container) { c.storage = s }
}

// WithReporter sets the progress reporter.
func WithReporter(r domain.Reporter) Option {
	return func(c *Container) { c.reporter = r }
}

// NewContainer creates a new dependency injection container.
func NewContainer(cfg *config.Config, opts ...Option) (*Container, error) {
	c := &Container{
		config: cfg,
	}
	for _, opt := range opts {
		opt(c)
	}

	// Initialize adapters
	if c.gateway == nil {
		c.gateway = cma.NewGateway(
			cma.WithBaseURL(cfg.BaseURL),
			cma.WithRateLimit(cfg.RateLimit),
			cma.WithTimeout(30*time.Second),
		)
	}
	if c.storage == nil {
		st, err := storage.NewStorage(&storage.Config{Type: string(storage.TypeFilesystem)})
		if err != nil {
			return nil, fmt.Errorf("failed to create storage: %w", err)
		}
		c.storage = st
	}
	if c.reporter == nil {
		c.reporter = ui.NewConsoleReporter(true)
	}

	// Initialize services
	c.migrationService = service.NewMigrationService(
		c.gateway,
		c.storage,
		planner.NewPlanCompiler(),
		c.reporter,
		cfg.MigrationsDir,
	)
	c.bootstrapService = service.NewBootstrapService(c.migrationService)
	c.schemaService = service.NewSchemaService(c.migrationService, cfg.Concurrency)

	return c, nil
}

// Config returns the configuration the container was built from.
func (c *Container) Config() *config.Config {
	return c.config
}

// Credentials returns the credentials from the configuration.
func (c *Container) Credentials() domain.Credentials {
	return domain.Credentials{
		AccessToken:   c.config.AccessToken,
		SpaceID:       c.config.SpaceID,
		EnvironmentID: c.config.EnvironmentID,
	}
}

// MigrationService returns the migration service.
func (c *Container) MigrationService() *service.MigrationService {
	return c.migrationService
}

// BootstrapService returns the bootstrap service.
func (c *Container) BootstrapService() *service.BootstrapService {
	return c.bootstrapService
}

// SchemaService returns the schema service.
func (c *Container) SchemaService() *service.SchemaService {
	return c.schemaService
}
