package service

import (
	"context"

	"github.com/satishbabariya/ctf-migrate/internal/core/schema"
)

// SchemaService downloads the content model of an environment.
type SchemaService struct {
	migrations  *MigrationService
	concurrency int
}

// NewSchemaService creates a new schema service.
func NewSchemaService(migrations *MigrationService, concurrency int) *SchemaService {
	return &SchemaService{migrations: migrations, concurrency: concurrency}
}

// Download writes current-schema.json into the scripts directory and
// returns its path.
func (s *SchemaService) Download(ctx context.Context, in RunInput) (string, error) {
	m := s.migrations
	sess, err := m.open(ctx, in)
	if err != nil {
		return "", err
	}
	file, err := schema.Download(ctx, sess.remote, m.storage, m.dir, s.concurrency)
	if err != nil {
		return "", err
	}
	m.reporter.Success("Schema written to " + file)
	return file, nil
}
