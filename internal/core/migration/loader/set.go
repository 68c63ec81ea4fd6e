package loader

import (
	"context"
	"fmt"
	"time"

	"github.com/satishbabariya/ctf-migrate/internal/core/migration/domain"
	"github.com/satishbabariya/ctf-migrate/internal/core/migration/script"
	"github.com/satishbabariya/ctf-migrate/internal/debug"
)

// MigrationFunc runs one direction of a script.
type MigrationFunc func(ctx context.Context) error

// Migration is one entry of a Set.
type Migration struct {
	Title       string
	Description string
	Timestamp   *time.Time

	// Script is nil when the state lists a title whose file is gone.
	Script *script.Script

	up   MigrationFunc
	down MigrationFunc
}

// IsApplied reports whether the migration has been applied.
func (m *Migration) IsApplied() bool {
	return m.Timestamp != nil
}

// Events are notified while a Set loads and runs. They never affect control flow.
type Events struct {
	OnWarning   func(msg string)
	OnMigration func(title string, direction domain.Direction)
}

// StateStore persists the state of a Set.
type StateStore interface {
	Save(ctx context.Context, state *domain.MigrationState) error
}

// Set is an ordered, directional list of migrations merged with persisted state.
type Set struct {
	migrations []*Migration
	lastRun    *string
	// applied holds applied titles in the order they were applied.
	applied []string

	store  StateStore
	now    func() time.Time
	events []Events
}

// Subscribe registers event handlers.
func (s *Set) Subscribe(e Events) {
	s.events = append(s.events, e)
}

// Migrations returns every migration in order.
func (s *Set) Migrations() []*Migration {
	return append([]*Migration(nil), s.migrations...)
}

// Pending returns the migrations that have not been applied.
func (s *Set) Pending() []*Migration {
	var pending []*Migration
	for _, m := range s.migrations {
		if !m.IsApplied() {
			pending = append(pending, m)
		}
	}
	return pending
}

// LastRun returns the title of the most recently applied migration, or "".
func (s *Set) LastRun() string {
	if s.lastRun == nil {
		return ""
	}
	return *s.lastRun
}

// State returns the persisted form of the set: applied records in the order
// they were applied.
func (s *Set) State() *domain.MigrationState {
	state := domain.NewMigrationState()
	state.LastRun = s.lastRun
	for _, title := range s.applied {
		m := s.find(title)
		if m == nil || !m.IsApplied() {
			continue
		}
		state.Migrations = append(state.Migrations, domain.MigrationRecord{
			Title:       m.Title,
			Timestamp:   m.Timestamp,
			Description: m.Description,
		})
	}
	return state
}

// Up applies pending migrations in order up to and including target.
// An empty target applies everything.
func (s *Set) Up(ctx context.Context, target string) error {
	last := len(s.migrations) - 1
	if target != "" {
		idx, err := s.index(target)
		if err != nil {
			return err
		}
		last = idx
	}

	for i := 0; i <= last; i++ {
		m := s.migrations[i]
		if m.IsApplied() || m.up == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		s.notify(m.Title, domain.Up)
		if err := m.up(ctx); err != nil {
			return fmt.Errorf("failed to apply %s: %w", m.Title, err)
		}

		now := s.now()
		m.Timestamp = &now
		s.lastRun = domain.StringPtr(m.Title)
		s.markApplied(m.Title)
		if err := s.store.Save(ctx, s.State()); err != nil {
			return fmt.Errorf("failed to save state after %s: %w", m.Title, err)
		}
	}
	return nil
}

// Down reverts applied migrations from lastRun backwards down to and
// including target. An empty target reverts only lastRun. Without a
// lastRun there is nothing to revert.
func (s *Set) Down(ctx context.Context, target string) error {
	if s.lastRun == nil {
		s.warn("no migrations have been applied")
		return nil
	}

	from, err := s.index(*s.lastRun)
	if err != nil {
		return err
	}
	to := from
	if target != "" {
		if to, err = s.index(target); err != nil {
			return err
		}
	}

	for i := from; i >= to; i-- {
		m := s.migrations[i]
		if !m.IsApplied() {
			continue
		}
		if m.down == nil {
			return fmt.Errorf("cannot revert %s: script file is missing", m.Title)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		s.notify(m.Title, domain.Down)
		if err := m.down(ctx); err != nil {
			return fmt.Errorf("failed to revert %s: %w", m.Title, err)
		}

		m.Timestamp = nil
		s.markReverted(m.Title)
		s.lastRun = nil
		if n := len(s.applied); n > 0 {
			s.lastRun = domain.StringPtr(s.applied[n-1])
		}
		if err := s.store.Save(ctx, s.State()); err != nil {
			return fmt.Errorf("failed to save state after %s: %w", m.Title, err)
		}
	}
	return nil
}

func (s *Set) index(title string) (int, error) {
	for i, m := range s.migrations {
		if m.Title == title {
			return i, nil
		}
	}
	return -1, fmt.Errorf("migration %q not found", title)
}

func (s *Set) find(title string) *Migration {
	for _, m := range s.migrations {
		if m.Title == title {
			return m
		}
	}
	return nil
}

func (s *Set) markApplied(title string) {
	s.markReverted(title)
	s.applied = append(s.applied, title)
}

func (s *Set) markReverted(title string) {
	for i, t := range s.applied {
		if t == title {
			s.applied = append(s.applied[:i], s.applied[i+1:]...)
			return
		}
	}
}

func (s *Set) warn(msg string) {
	debug.Warn(msg)
	for _, e := range s.events {
		if e.OnWarning != nil {
			e.OnWarning(msg)
		}
	}
}

func (s *Set) notify(title string, direction domain.Direction) {
	for _, e := range s.events {
		if e.OnMigration != nil {
			e.OnMigration(title, direction)
		}
	}
}
