// Package store persists migration state inside the target environment.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/satishbabariya/ctf-migrate/internal/core/migration/domain"
	"github.com/satishbabariya/ctf-migrate/internal/core/migration/executor"
	"github.com/satishbabariya/ctf-migrate/internal/core/migration/intent"
	"github.com/satishbabariya/ctf-migrate/internal/debug"
)

const (
	// ContentTypeID is the content type holding the state entry.
	ContentTypeID = "migration"
	// EntryID is the id of the single state entry.
	EntryID = "single"

	stateField         = "state"
	contentTypeIDField = "contentTypeId"
)

// Options configures a Store.
type Options struct {
	// DryRun turns Save into a no-op.
	DryRun bool
	// AccessToken is handed to the runner when Init creates the content type.
	AccessToken string
	// Runner executes the intent Init builds.
	Runner executor.Runner
}

// Store reads and writes the state entry of one environment. The locale is
// resolved once in New and used for the lifetime of the store.
type Store struct {
	session domain.Session
	opts    Options
	locale  string
}

// New creates a store bound to session, resolving its default locale.
func New(ctx context.Context, session domain.Session, opts Options) (*Store, error) {
	locales, err := session.Locales(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch locales: %w", err)
	}
	return &Store{
		session: session,
		opts:    opts,
		locale:  domain.DefaultLocale(locales),
	}, nil
}

// Locale returns the locale state is stored under.
func (s *Store) Locale() string {
	return s.locale
}

// DryRun reports whether Save is disabled.
func (s *Store) DryRun() bool {
	return s.opts.DryRun
}

// Load reads the persisted state. A missing entry yields an empty state.
func (s *Store) Load(ctx context.Context) (*domain.MigrationState, error) {
	if _, err := s.session.ContentType(ctx, ContentTypeID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrContentTypeMissing
		}
		return nil, fmt.Errorf("failed to fetch content type %s: %w", ContentTypeID, err)
	}

	entry, err := s.session.Entry(ctx, EntryID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewMigrationState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch state entry: %w", err)
	}

	raw, ok := entry.Fields[stateField][s.locale]
	if !ok || raw == nil {
		return domain.NewMigrationState(), nil
	}
	state, err := decodeState(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode state entry: %w", err)
	}
	debug.Debug("Loaded migration state", "migrations", len(state.Migrations), "lastRun", state.LastRunTitle())
	return state, nil
}

// Write persists state, replacing the stored value. Pending records are
// dropped; when nothing is left the entry is deleted instead.
func (s *Store) Write(ctx context.Context, state *domain.MigrationState) error {
	applied := state.Applied()
	if len(applied) == 0 {
		return s.deleteState(ctx)
	}

	value, err := encodeState(&domain.MigrationState{LastRun: state.LastRun, Migrations: applied})
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	entry, err := s.session.Entry(ctx, EntryID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		_, err = s.session.CreateEntryWithID(ctx, ContentTypeID, EntryID, map[string]map[string]any{
			contentTypeIDField: {s.locale: EntryID},
			stateField:         {s.locale: value},
		})
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrContentTypeMissing
			}
			return fmt.Errorf("failed to create state entry: %w", err)
		}
	case err != nil:
		return fmt.Errorf("failed to fetch state entry: %w", err)
	default:
		if entry.Fields == nil {
			entry.Fields = make(map[string]map[string]any)
		}
		entry.Fields[stateField] = map[string]any{s.locale: value}
		if _, err := s.session.UpdateEntry(ctx, entry); err != nil {
			return fmt.Errorf("failed to update state entry: %w", err)
		}
	}

	debug.Debug("Wrote migration state", "migrations", len(applied), "lastRun", state.LastRunTitle())
	return nil
}

// Save is Write for the migration set; it does nothing in dry-run mode.
func (s *Store) Save(ctx context.Context, state *domain.MigrationState) error {
	if s.opts.DryRun {
		return nil
	}
	return s.Write(ctx, state)
}

// Init creates the migration content type unless it already exists.
func (s *Store) Init(ctx context.Context) error {
	_, err := s.session.ContentType(ctx, ContentTypeID)
	if err == nil {
		debug.Debug("Content type already exists", "id", ContentTypeID)
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("failed to probe content type %s: %w", ContentTypeID, err)
	}
	if s.opts.Runner == nil {
		return fmt.Errorf("no runner configured to create content type %s", ContentTypeID)
	}

	_, err = s.opts.Runner.Execute(ctx, executor.Job{
		Title:       "init",
		Intents:     intent.List{InitIntent()},
		AccessToken: s.opts.AccessToken,
		Session:     s.session,
	})
	if err != nil {
		return fmt.Errorf("failed to create content type %s: %w", ContentTypeID, err)
	}
	debug.Info("Created migration content type", "space", s.session.SpaceID(), "environment", s.session.EnvironmentID())
	return nil
}

// InitIntent returns the intent that creates the migration content type.
func InitIntent() *intent.CreateContentTypeIntent {
	return &intent.CreateContentTypeIntent{
		ID:           ContentTypeID,
		Name:         "Migration",
		Description:  "Meta data to store the state of content model through migrations",
		DisplayField: contentTypeIDField,
		Fields: []domain.Field{
			{ID: stateField, Name: "Migration State", Type: "Object", Required: true},
			{
				ID:          contentTypeIDField,
				Name:        "Content Type ID",
				Type:        "Symbol",
				Required:    true,
				Validations: []map[string]any{{"unique": true}},
			},
		},
	}
}

func (s *Store) deleteState(ctx context.Context) error {
	entry, err := s.session.Entry(ctx, EntryID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to fetch state entry: %w", err)
	}
	if err := s.session.DeleteEntry(ctx, EntryID, entry.Sys.Version); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("failed to delete state entry: %w", err)
	}
	debug.Debug("Deleted empty migration state")
	return nil
}

// encodeState converts state into the generic JSON value stored in the entry.
func encodeState(state *domain.MigrationState) (map[string]any, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return nil, err
	}
	var value map[string]any
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, err
	}
	return value, nil
}

func decodeState(raw any) (*domain.MigrationState, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	state := domain.NewMigrationState()
	if err := json.Unmarshal(data, state); err != nil {
		return nil, err
	}
	if state.Migrations == nil {
		state.Migrations = []domain.MigrationRecord{}
	}
	return state, nil
}
