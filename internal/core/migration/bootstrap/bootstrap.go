// Package bootstrap generates baseline migration scripts from an existing content model.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/satishbabariya/ctf-migrate/internal/adapters/storage"
	"github.com/satishbabariya/ctf-migrate/internal/core/migration/domain"
	"github.com/satishbabariya/ctf-migrate/internal/core/migration/intent"
	"github.com/satishbabariya/ctf-migrate/internal/core/migration/script"
	"github.com/satishbabariya/ctf-migrate/internal/core/migration/store"
	"github.com/satishbabariya/ctf-migrate/internal/debug"
)

// DefaultConcurrency bounds concurrent editor interface fetches.
const DefaultConcurrency = 5

// StateWriter overwrites the persisted migration state.
type StateWriter interface {
	Write(ctx context.Context, state *domain.MigrationState) error
}

// Options configures a bootstrap run.
type Options struct {
	Dir         string
	Concurrency int
	// WriteState overwrites the persisted state with the generated files.
	WriteState bool
	Now        func() time.Time
}

func (o *Options) defaults() {
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Generator snapshots a content model into create scripts.
type Generator struct {
	session  domain.Session
	storage  storage.Storage
	state    StateWriter
	reporter domain.Reporter
}

// NewGenerator creates a new bootstrap generator.
func NewGenerator(session domain.Session, st storage.Storage, state StateWriter, reporter domain.Reporter) *Generator {
	if reporter == nil {
		reporter = domain.NopReporter{}
	}
	return &Generator{session: session, storage: st, state: state, reporter: reporter}
}

// Bootstrap deletes dir, generates one script per content type and, when
// opts.WriteState is set, records them all as applied.
func (g *Generator) Bootstrap(ctx context.Context, opts Options) ([]domain.CreatedFile, error) {
	opts.defaults()

	if err := g.DeleteScripts(ctx, opts.Dir); err != nil {
		return nil, err
	}
	files, err := g.Generate(ctx, opts)
	if err != nil {
		return nil, err
	}
	if opts.WriteState {
		if err := g.RewriteState(ctx, files, opts.Now()); err != nil {
			return files, err
		}
	}
	g.reporter.Success("Bootstrap successful")
	return files, nil
}

// DeleteScripts removes the scripts directory and everything in it.
func (g *Generator) DeleteScripts(ctx context.Context, dir string) error {
	if err := g.storage.RemoveAll(ctx, dir); err != nil {
		return fmt.Errorf("failed to delete migrations folder: %w", err)
	}
	g.reporter.Info("Migrations folder deleted")
	return nil
}

type snapshot struct {
	contentType domain.ContentType
	editor      *domain.EditorInterface
}

// Generate writes one create script per content type, except the one that
// stores migration state. Files are returned in the order the remote
// service listed the content types.
func (g *Generator) Generate(ctx context.Context, opts Options) ([]domain.CreatedFile, error) {
	opts.defaults()

	all, err := g.session.ContentTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch content types: %w", err)
	}
	var types []domain.ContentType
	for _, ct := range all {
		if ct.Sys.ID != store.ContentTypeID {
			types = append(types, ct)
		}
	}

	snapshots := make([]snapshot, len(types))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(opts.Concurrency)
	for i, ct := range types {
		eg.Go(func() error {
			ei, err := g.session.EditorInterface(egCtx, ct.Sys.ID)
			if errors.Is(err, domain.ErrNotFound) {
				ei, err = nil, nil
			}
			if err != nil {
				return fmt.Errorf("failed to fetch editor interface of %s: %w", ct.Sys.ID, err)
			}
			snapshots[i] = snapshot{contentType: ct, editor: ei}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	if err := g.storage.MkdirAll(ctx, opts.Dir); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", opts.Dir, err)
	}

	now := opts.Now()
	files := make([]domain.CreatedFile, 0, len(snapshots))
	for _, snap := range snapshots {
		id := snap.contentType.Sys.ID
		name := script.FileName(now, "create-"+script.CamelToDash(id))

		s := BuildScript(snap.contentType, snap.editor)
		s.Title = name
		data, err := script.Render(s)
		if err != nil {
			return nil, err
		}
		if err := g.storage.Write(ctx, path.Join(opts.Dir, name), data); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", name, err)
		}

		debug.Debug("Created bootstrap script", "contentType", id, "file", name)
		g.reporter.Info("Created " + name)
		files = append(files, domain.CreatedFile{ContentTypeID: id, FileName: name})
	}

	g.reporter.Success("Scripts generation successful")
	return files, nil
}

// RewriteState overwrites the persisted state so every file is applied at
// the given time, in generation order. No script is executed.
func (g *Generator) RewriteState(ctx context.Context, files []domain.CreatedFile, at time.Time) error {
	state := domain.NewMigrationState()
	for _, f := range files {
		ts := at
		state.Migrations = append(state.Migrations, domain.MigrationRecord{
			Title:       f.FileName,
			Timestamp:   &ts,
			Description: "Create content model for " + f.ContentTypeID,
		})
	}
	if n := len(files); n > 0 {
		state.LastRun = domain.StringPtr(files[n-1].FileName)
	}

	if err := g.state.Write(ctx, state); err != nil {
		return fmt.Errorf("failed to write migration state: %w", err)
	}
	g.reporter.Success("Wrote migration state")
	return nil
}

// BuildScript converts one content type and its editor interface into a
// script that recreates it. Nil and empty properties are pruned. Fields the
// remote marks deleted are left out together with their controls.
func BuildScript(ct domain.ContentType, editor *domain.EditorInterface) *script.Script {
	create := &intent.CreateContentTypeIntent{
		ID:           ct.Sys.ID,
		Name:         ct.Name,
		Description:  ct.Description,
		DisplayField: ct.DisplayField,
	}
	deleted := make(map[string]bool)
	for _, f := range ct.Fields {
		if f.Deleted {
			deleted[f.ID] = true
			continue
		}
		create.Fields = append(create.Fields, pruneField(f))
	}

	up := intent.List{create}
	if editor != nil {
		for _, c := range editor.Controls {
			if c.WidgetID == "" || deleted[c.FieldID] {
				continue
			}
			namespace := c.WidgetNamespace
			if namespace == "" {
				namespace = "builtin"
			}
			up = append(up, &intent.ChangeFieldControlIntent{
				ContentType:     ct.Sys.ID,
				FieldID:         c.FieldID,
				WidgetID:        c.WidgetID,
				WidgetNamespace: namespace,
				Settings:        pruneMap(c.Settings),
			})
		}
	}

	return &script.Script{
		Description: "Create content model for " + ct.Name,
		Up:          up,
		Down:        intent.List{&intent.DeleteContentTypeIntent{ID: ct.Sys.ID}},
	}
}
