package cma

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/satishbabariya/ctf-migrate/internal/core/migration/domain"
)

// pageSize is the largest page the API serves.
const pageSize = 1000

// Session is one space/environment reached through a Client.
type Session struct {
	client        *Client
	spaceID       string
	environmentID string
}

type collection[T any] struct {
	Total int `json:"total"`
	Skip  int `json:"skip"`
	Limit int `json:"limit"`
	Items []T `json:"items"`
}

// SpaceID returns the space id.
func (s *Session) SpaceID() string { return s.spaceID }

// EnvironmentID returns the environment id.
func (s *Session) EnvironmentID() string { return s.environmentID }

func (s *Session) path(suffix string) string {
	return domain.EnvironmentPath(s.spaceID, s.environmentID) + suffix
}

// Locales returns the locales of the environment.
func (s *Session) Locales(ctx context.Context) ([]domain.Locale, error) {
	var page collection[domain.Locale]
	if err := s.client.do(ctx, http.MethodGet, s.path("/locales"), nil, nil, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

// ContentTypes returns every content type, following pagination.
func (s *Session) ContentTypes(ctx context.Context) ([]domain.ContentType, error) {
	var all []domain.ContentType
	for skip := 0; ; {
		q := url.Values{}
		q.Set("limit", strconv.Itoa(pageSize))
		q.Set("skip", strconv.Itoa(skip))

		var page collection[domain.ContentType]
		if err := s.client.do(ctx, http.MethodGet, s.path("/content_types?"+q.Encode()), nil, nil, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Items...)
		skip += len(page.Items)
		if len(page.Items) == 0 || skip >= page.Total {
			return all, nil
		}
	}
}

// ContentType returns one content type.
func (s *Session) ContentType(ctx context.Context, id string) (*domain.ContentType, error) {
	var ct domain.ContentType
	if err := s.client.do(ctx, http.MethodGet, domain.ContentTypePath(s.spaceID, s.environmentID, id), nil, nil, &ct); err != nil {
		return nil, err
	}
	return &ct, nil
}

// EditorInterface returns the editor interface of a content type.
func (s *Session) EditorInterface(ctx context.Context, contentTypeID string) (*domain.EditorInterface, error) {
	var ei domain.EditorInterface
	path := domain.ContentTypePath(s.spaceID, s.environmentID, contentTypeID) + "/editor_interface"
	if err := s.client.do(ctx, http.MethodGet, path, nil, nil, &ei); err != nil {
		return nil, err
	}
	return &ei, nil
}

// Entry returns one entry.
func (s *Session) Entry(ctx context.Context, id string) (*domain.Entry, error) {
	var entry domain.Entry
	if err := s.client.do(ctx, http.MethodGet, s.entryPath(id), nil, nil, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// CreateEntryWithID creates an entry with a chosen id.
func (s *Session) CreateEntryWithID(ctx context.Context, contentTypeID, id string, fields map[string]map[string]any) (*domain.Entry, error) {
	headers := map[string]string{domain.ContentTypeHeader: contentTypeID}
	body := map[string]any{"fields": fields}

	var entry domain.Entry
	if err := s.client.do(ctx, http.MethodPut, s.entryPath(id), headers, body, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// UpdateEntry replaces the fields of an entry at its current version.
func (s *Session) UpdateEntry(ctx context.Context, entry *domain.Entry) (*domain.Entry, error) {
	headers := map[string]string{domain.VersionHeader: strconv.Itoa(entry.Sys.Version)}
	body := map[string]any{"fields": entry.Fields}

	var updated domain.Entry
	if err := s.client.do(ctx, http.MethodPut, s.entryPath(entry.Sys.ID), headers, body, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteEntry deletes an entry.
func (s *Session) DeleteEntry(ctx context.Context, id string, version int) error {
	var headers map[string]string
	if version > 0 {
		headers = map[string]string{domain.VersionHeader: strconv.Itoa(version)}
	}
	return s.client.do(ctx, http.MethodDelete, s.entryPath(id), headers, nil, nil)
}

// Send executes one compiled request.
func (s *Session) Send(ctx context.Context, req domain.RemoteRequest) error {
	return s.client.do(ctx, req.Method, req.URL, req.Headers, req.Body, nil)
}

func (s *Session) entryPath(id string) string {
	return s.path("/entries/" + url.PathEscape(id))
}

// Ensure Session implements Session interface.
var _ domain.Session = (*Session)(nil)
