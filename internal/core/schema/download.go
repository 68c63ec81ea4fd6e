// Package schema snapshots the content model of an environment.
package schema

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"

	"golang.org/x/sync/errgroup"

	"github.com/satishbabariya/ctf-migrate/internal/adapters/storage"
	"github.com/satishbabariya/ctf-migrate/internal/core/migration/domain"
	"github.com/satishbabariya/ctf-migrate/internal/core/migration/script"
)

// Snapshot is the content of current-schema.json.
type Snapshot struct {
	ContentTypes     []domain.ContentType   `json:"contentTypes"`
	EditorInterfaces []EditorInterfaceEntry `json:"editorInterfaces"`
	Locales          []domain.Locale        `json:"locales"`
}

// EditorInterfaceEntry is an editor interface tagged with its content type.
type EditorInterfaceEntry struct {
	ContentTypeID string           `json:"contentTypeId"`
	Controls      []domain.Control `json:"controls"`
}

// Take fetches the content model of session. Editor interfaces are fetched
// with at most concurrency requests in flight.
func Take(ctx context.Context, session domain.Session, concurrency int) (*Snapshot, error) {
	types, err := session.ContentTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch content types: %w", err)
	}
	locales, err := session.Locales(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch locales: %w", err)
	}

	editors := make([]*EditorInterfaceEntry, len(types))
	eg, egCtx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		eg.SetLimit(concurrency)
	}
	for i, ct := range types {
		eg.Go(func() error {
			ei, err := session.EditorInterface(egCtx, ct.Sys.ID)
			if errors.Is(err, domain.ErrNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to fetch editor interface of %s: %w", ct.Sys.ID, err)
			}
			editors[i] = &EditorInterfaceEntry{ContentTypeID: ct.Sys.ID, Controls: ei.Controls}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	snap := &Snapshot{
		ContentTypes:     types,
		EditorInterfaces: []EditorInterfaceEntry{},
		Locales:          locales,
	}
	for _, ei := range editors {
		if ei != nil {
			snap.EditorInterfaces = append(snap.EditorInterfaces, *ei)
		}
	}
	return snap, nil
}

// Download writes the snapshot of session to dir/current-schema.json and
// returns the path written.
func Download(ctx context.Context, session domain.Session, st storage.Storage, dir string, concurrency int) (string, error) {
	snap, err := Take(ctx, session, concurrency)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode schema: %w", err)
	}

	file := path.Join(dir, script.SchemaFile)
	if err := st.Write(ctx, file, append(data, '\n')); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", file, err)
	}
	return st.Resolve(file), nil
}
