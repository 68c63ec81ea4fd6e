package memory

import (
	"context"
	"net/http"

	"github.com/satishbabariya/ctf-migrate/internal/core/migration/domain"
)

// Entry returns one entry.
func (e *Environment) Entry(ctx context.Context, id string) (*domain.Entry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, ok := e.entries[id]
	if !ok {
		return nil, e.notFound(e.entryPath(id))
	}
	c := cloneEntry(*entry)
	return &c, nil
}

// CreateEntryWithID creates an entry of a published content type.
func (e *Environment) CreateEntryWithID(ctx context.Context, contentTypeID, id string, fields map[string]map[string]any) (*domain.Entry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	url := e.entryPath(id)
	rec, ok := e.types[contentTypeID]
	if !ok || rec.published == nil {
		return nil, e.fail(http.StatusUnprocessableEntity, url, "content type %q is not published", contentTypeID)
	}
	if _, exists := e.entries[id]; exists {
		return nil, e.fail(http.StatusConflict, url, "entry %q already exists", id)
	}
	for fieldID := range fields {
		if !hasField(rec.published.Fields, fieldID) {
			return nil, e.fail(http.StatusUnprocessableEntity, url, "unknown field %q", fieldID)
		}
	}

	entry := &domain.Entry{
		Sys: domain.Sys{
			ID:      id,
			Type:    "Entry",
			Version: 1,
			ContentType: &domain.LinkSys{Sys: domain.LinkRef{
				ID:       contentTypeID,
				Type:     "Link",
				LinkType: "ContentType",
			}},
		},
		Fields: copyFields(fields),
	}
	e.entries[id] = entry
	c := cloneEntry(*entry)
	return &c, nil
}

// UpdateEntry replaces the fields of an entry. The entry version must be current.
func (e *Environment) UpdateEntry(ctx context.Context, entry *domain.Entry) (*domain.Entry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	url := e.entryPath(entry.Sys.ID)
	existing, ok := e.entries[entry.Sys.ID]
	if !ok {
		return nil, e.notFound(url)
	}
	if entry.Sys.Version != existing.Sys.Version {
		return nil, e.versionMismatch(url, existing.Sys.Version, entry.Sys.Version)
	}

	existing.Fields = copyFields(entry.Fields)
	existing.Sys.Version++
	c := cloneEntry(*existing)
	return &c, nil
}

// DeleteEntry deletes an entry. A zero version skips the version check.
func (e *Environment) DeleteEntry(ctx context.Context, id string, version int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	url := e.entryPath(id)
	existing, ok := e.entries[id]
	if !ok {
		return e.notFound(url)
	}
	if version != 0 && version != existing.Sys.Version {
		return e.versionMismatch(url, existing.Sys.Version, version)
	}
	delete(e.entries, id)
	return nil
}

func (e *Environment) entryPath(id string) string {
	return domain.EnvironmentPath(e.spaceID, e.environmentID) + "/entries/" + id
}

func copyFields(fields map[string]map[string]any) map[string]map[string]any {
	out := make(map[string]map[string]any, len(fields))
	for k, locales := range fields {
		inner := make(map[string]any, len(locales))
		for l, v := range locales {
			inner[l] = v
		}
		out[k] = inner
	}
	return out
}

func cloneEntry(entry domain.Entry) domain.Entry {
	entry.Fields = copyFields(entry.Fields)
	return entry
}
