// Package loader builds an ordered migration set from a directory of scripts.
package loader

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	goversion "github.com/hashicorp/go-version"

	"github.com/satishbabariya/ctf-migrate/internal/adapters/storage"
	"github.com/satishbabariya/ctf-migrate/internal/core/migration/domain"
	"github.com/satishbabariya/ctf-migrate/internal/core/migration/executor"
	"github.com/satishbabariya/ctf-migrate/internal/core/migration/script"
	"github.com/satishbabariya/ctf-migrate/internal/debug"
	"github.com/satishbabariya/ctf-migrate/internal/version"
)

// Filter decides whether a file name in the scripts directory is loaded.
type Filter func(name string) bool

// DefaultFilter skips the schema snapshots kept next to the scripts.
func DefaultFilter(name string) bool {
	return name != script.SchemaFile && name != "current-schema.d.ts"
}

// Options configures Load.
type Options struct {
	Dir    string
	Filter Filter

	// ToolVersion is checked against each script's requires constraint.
	// Nil means the running build.
	ToolVersion *goversion.Version

	// State is the persisted state to merge. Nil means nothing was applied.
	State *domain.MigrationState
	Store StateStore

	Runner      executor.Runner
	Session     domain.Session
	AccessToken string
	DryRun      bool

	Events Events
	Now    func() time.Time
}

// Load scans opts.Dir, parses every script and merges opts.State.
func Load(ctx context.Context, store storage.Storage, opts Options) (*Set, error) {
	if opts.Filter == nil {
		opts.Filter = DefaultFilter
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	set := &Set{store: opts.Store, now: opts.Now}
	if set.store == nil {
		set.store = nopStore{}
	}
	set.Subscribe(opts.Events)

	files, err := store.List(ctx, opts.Dir)
	if err != nil && !errors.Is(err, storage.ErrNotExist) {
		return nil, fmt.Errorf("failed to list %s: %w", opts.Dir, err)
	}

	var scripts []*script.Script
	stems := make(map[string]string)
	for _, f := range files {
		if f.IsDir || !opts.Filter(f.Name) {
			continue
		}
		if !script.IsScriptFile(f.Name) {
			set.warn(fmt.Sprintf("skipping %s: not a migration script", f.Name))
			continue
		}
		stem := strings.TrimSuffix(f.Name, path.Ext(f.Name))
		if other, ok := stems[stem]; ok {
			set.warn(fmt.Sprintf("duplicate migration %s (also found %s)", f.Name, other))
		}
		stems[stem] = f.Name

		data, err := store.Read(ctx, path.Join(opts.Dir, f.Name))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f.Name, err)
		}
		s, err := script.Parse(f.Name, data)
		if err != nil {
			return nil, err
		}
		if err := checkRequires(s, opts.ToolVersion); err != nil {
			return nil, err
		}
		scripts = append(scripts, s)
	}
	sortScripts(scripts)

	state := opts.State
	if state == nil {
		state = domain.NewMigrationState()
	}
	for _, s := range scripts {
		m := &Migration{Title: s.Title, Description: s.Description, Script: s}
		if rec, ok := state.Find(s.Title); ok && rec.IsApplied() {
			ts := *rec.Timestamp
			m.Timestamp = &ts
		}
		m.up = bind(s, true, opts)
		m.down = bind(s, false, opts)
		set.migrations = append(set.migrations, m)
	}

	for _, rec := range state.Migrations {
		if !rec.IsApplied() {
			continue
		}
		if set.find(rec.Title) == nil {
			set.warn(fmt.Sprintf("migration %s is recorded as applied but its file is missing", rec.Title))
			ts := *rec.Timestamp
			set.migrations = append(set.migrations, &Migration{
				Title:       rec.Title,
				Description: rec.Description,
				Timestamp:   &ts,
			})
		}
		set.applied = append(set.applied, rec.Title)
	}
	set.lastRun = state.LastRun

	debug.Debug("Loaded migrations", "dir", opts.Dir, "total", len(set.migrations), "pending", len(set.Pending()))
	return set, nil
}

func bind(s *script.Script, up bool, opts Options) MigrationFunc {
	if opts.Runner == nil {
		return nil
	}
	return func(ctx context.Context) error {
		_, err := opts.Runner.Execute(ctx, executor.Job{
			Title:       s.Title,
			Intents:     s.Intents(up),
			AccessToken: opts.AccessToken,
			Session:     opts.Session,
			DryRun:      opts.DryRun,
		})
		return err
	}
}

func checkRequires(s *script.Script, tool *goversion.Version) error {
	if s.Requires == "" {
		return nil
	}
	var ok bool
	var err error
	if tool == nil {
		ok, err = version.Satisfies(s.Requires)
	} else {
		ok, err = version.SatisfiedBy(tool, s.Requires)
	}
	if err != nil {
		return fmt.Errorf("failed to check requires of %s: %w", s.Title, err)
	}
	if !ok {
		running := version.Version
		if tool != nil {
			running = tool.String()
		}
		return fmt.Errorf("%s requires ctf-migrate %s, running %s", s.Title, s.Requires, running)
	}
	return nil
}

// sortScripts orders by numeric prefix, then title.
func sortScripts(scripts []*script.Script) {
	sort.SliceStable(scripts, func(i, j int) bool {
		c := script.ComparePrefix(script.Prefix(scripts[i].Title), script.Prefix(scripts[j].Title))
		if c != 0 {
			return c < 0
		}
		return scripts[i].Title < scripts[j].Title
	})
}

type nopStore struct{}

func (nopStore) Save(context.Context, *domain.MigrationState) error { return nil }
