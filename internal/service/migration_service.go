// Package service implements application services (use cases).
package service

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"time"

	"github.com/satishbabariya/ctf-migrate/internal/adapters/storage"
	"github.com/satishbabariya/ctf-migrate/internal/core/migration/domain"
	"github.com/satishbabariya/ctf-migrate/internal/core/migration/executor"
	"github.com/satishbabariya/ctf-migrate/internal/core/migration/loader"
	"github.com/satishbabariya/ctf-migrate/internal/core/migration/planner"
	"github.com/satishbabariya/ctf-migrate/internal/core/migration/script"
	"github.com/satishbabariya/ctf-migrate/internal/core/migration/store"
)

// MigrationService orchestrates migration operations.
type MigrationService struct {
	gateway  domain.Gateway
	storage  storage.Storage
	compiler planner.Compiler
	reporter domain.Reporter
	dir      string
	now      func() time.Time
}

// NewMigrationService creates a new migration service. dir is the scripts
// directory, relative to storage.
func NewMigrationService(
	gateway domain.Gateway,
	st storage.Storage,
	compiler planner.Compiler,
	reporter domain.Reporter,
	dir string,
) *MigrationService {
	if reporter == nil {
		reporter = domain.NopReporter{}
	}
	return &MigrationService{
		gateway:  gateway,
		storage:  st,
		compiler: compiler,
		reporter: reporter,
		dir:      dir,
		now:      time.Now,
	}
}

// SetClock overrides the clock used for script names and timestamps.
func (s *MigrationService) SetClock(now func() time.Time) {
	s.now = now
}

// Dir returns the scripts directory.
func (s *MigrationService) Dir() string {
	return s.dir
}

// RunInput represents input for commands that talk to an environment.
type RunInput struct {
	Credentials domain.Credentials
	DryRun      bool
	// Target is a script file name or path; empty means the default target.
	Target string
}

// session bundles what every remote command opens.
type session struct {
	remote domain.Session
	runner *executor.MigrationExecutor
	store  *store.Store
}

func (s *MigrationService) open(ctx context.Context, in RunInput) (*session, error) {
	if err := domain.CheckAccessToken(in.Credentials.AccessToken); err != nil {
		return nil, err
	}
	remote, err := s.gateway.Resolve(ctx, in.Credentials)
	if err != nil {
		return nil, err
	}

	runner := executor.NewMigrationExecutor(s.compiler, s.storage, executor.WithReporter(s.reporter))
	st, err := store.New(ctx, remote, store.Options{
		DryRun:      in.DryRun,
		AccessToken: in.Credentials.AccessToken,
		Runner:      runner,
	})
	if err != nil {
		return nil, err
	}
	return &session{remote: remote, runner: runner, store: st}, nil
}

// Init creates the content type that holds migration state.
func (s *MigrationService) Init(ctx context.Context, in RunInput) error {
	sess, err := s.open(ctx, in)
	if err != nil {
		return err
	}
	if err := sess.store.Init(ctx); err != nil {
		return err
	}
	s.reporter.Success(fmt.Sprintf("Content type '%s' is ready", store.ContentTypeID))
	return nil
}

// Create writes an empty script named after name and returns its path.
func (s *MigrationService) Create(ctx context.Context, name string) (string, error) {
	slug := script.Slugify(name)
	if slug == "" {
		return "", fmt.Errorf("invalid migration name %q", name)
	}
	if err := s.storage.MkdirAll(ctx, s.dir); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", s.dir, err)
	}

	file := path.Join(s.dir, script.FileName(s.now(), slug))
	if err := s.storage.Write(ctx, file, script.Template()); err != nil {
		return "", fmt.Errorf("failed to create migration: %w", err)
	}
	s.reporter.Success("Created " + file)
	return file, nil
}

// Load resolves the environment and returns the merged migration set.
func (s *MigrationService) Load(ctx context.Context, in RunInput) (*loader.Set, error) {
	sess, err := s.open(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, sess, in)
}

func (s *MigrationService) load(ctx context.Context, sess *session, in RunInput) (*loader.Set, error) {
	state, err := sess.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return loader.Load(ctx, s.storage, loader.Options{
		Dir:         s.dir,
		State:       state,
		Store:       sess.store,
		Runner:      sess.runner,
		Session:     sess.remote,
		AccessToken: in.Credentials.AccessToken,
		DryRun:      in.DryRun,
		Events: loader.Events{
			OnWarning: s.reporter.Warning,
			OnMigration: func(title string, direction domain.Direction) {
				s.reporter.Info(fmt.Sprintf("Running %s %s", title, direction))
			},
		},
		Now: s.now,
	})
}

// List returns every migration, applied or pending, in order.
func (s *MigrationService) List(ctx context.Context, in RunInput) ([]*loader.Migration, error) {
	set, err := s.Load(ctx, in)
	if err != nil {
		return nil, err
	}
	return set.Migrations(), nil
}

// Up applies pending migrations up to in.Target.
func (s *MigrationService) Up(ctx context.Context, in RunInput) error {
	set, err := s.Load(ctx, in)
	if err != nil {
		return err
	}
	if len(set.Pending()) == 0 {
		s.reporter.Info("No pending migrations")
		return nil
	}
	if err := set.Up(ctx, targetTitle(in.Target)); err != nil {
		return err
	}
	s.reporter.Success(s.doneMessage("Migrations applied", in.DryRun))
	return nil
}

// Down reverts applied migrations from the last one down to in.Target.
func (s *MigrationService) Down(ctx context.Context, in RunInput) error {
	set, err := s.Load(ctx, in)
	if err != nil {
		return err
	}
	if set.LastRun() == "" {
		// Set.Down reports the warning.
		return set.Down(ctx, "")
	}
	if err := set.Down(ctx, targetTitle(in.Target)); err != nil {
		return err
	}
	s.reporter.Success(s.doneMessage("Migrations reverted", in.DryRun))
	return nil
}

func (s *MigrationService) doneMessage(msg string, dryRun bool) string {
	if dryRun {
		return msg + " (dry run, state unchanged)"
	}
	return msg
}

// targetTitle accepts either a bare file name or a path to the script.
func targetTitle(target string) string {
	if target == "" {
		return ""
	}
	return filepath.Base(target)
}
