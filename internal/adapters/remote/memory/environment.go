// Package memory provides an in-process fake of the content management API.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/satishbabariya/ctf-migrate/internal/core/migration/domain"
)

type contentTypeRecord struct {
	draft     domain.ContentType
	published *domain.ContentType
}

type failure struct {
	match   func(domain.RemoteRequest) bool
	status  int
	message string
}

// Environment is one fake space/environment pair. It implements domain.Session.
// Versions follow the remote rules: every save or publish bumps the version,
// writes must carry the current version, and deletion requires unpublishing.
type Environment struct {
	mu            sync.Mutex
	spaceID       string
	environmentID string

	locales  []domain.Locale
	types    map[string]*contentTypeRecord
	order    []string
	editors  map[string]*domain.EditorInterface
	entries  map[string]*domain.Entry
	requests []domain.RemoteRequest
	failures []failure
}

// NewEnvironment creates an empty environment with an en-US default locale.
func NewEnvironment(spaceID, environmentID string) *Environment {
	return &Environment{
		spaceID:       spaceID,
		environmentID: environmentID,
		locales:       []domain.Locale{{Code: "en-US", Name: "English (United States)", Default: true}},
		types:         make(map[string]*contentTypeRecord),
		editors:       make(map[string]*domain.EditorInterface),
		entries:       make(map[string]*domain.Entry),
	}
}

// SpaceID returns the space id.
func (e *Environment) SpaceID() string { return e.spaceID }

// EnvironmentID returns the environment id.
func (e *Environment) EnvironmentID() string { return e.environmentID }

// SetLocales replaces the configured locales.
func (e *Environment) SetLocales(locales ...domain.Locale) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.locales = append([]domain.Locale(nil), locales...)
}

// Seed stores a published content type and its editor interface as-is.
func (e *Environment) Seed(ct domain.ContentType, editor *domain.EditorInterface) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if ct.Sys.Version == 0 {
		ct.Sys.Version = 2
		ct.Sys.PublishedVersion = 1
	}
	ct.Sys.Type = "ContentType"
	ct.Fields = append([]domain.Field(nil), ct.Fields...)
	published := cloneContentType(ct)
	if _, ok := e.types[ct.Sys.ID]; !ok {
		e.order = append(e.order, ct.Sys.ID)
	}
	e.types[ct.Sys.ID] = &contentTypeRecord{draft: ct, published: &published}

	if editor == nil {
		editor = &domain.EditorInterface{Sys: domain.Sys{Version: 1}, Controls: defaultControls(nil, ct.Fields)}
	}
	ei := cloneEditor(*editor)
	ei.Sys.ID = "default"
	ei.Sys.Type = "EditorInterface"
	e.editors[ct.Sys.ID] = &ei
}

// FailWhen makes Send reject matching requests with status and message.
func (e *Environment) FailWhen(match func(domain.RemoteRequest) bool, status int, message string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failures = append(e.failures, failure{match: match, status: status, message: message})
}

// Requests returns every request passed to Send, including failed ones.
func (e *Environment) Requests() []domain.RemoteRequest {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]domain.RemoteRequest(nil), e.requests...)
}

// ResetRequests clears the request log.
func (e *Environment) ResetRequests() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.requests = nil
}

// Locales returns the configured locales.
func (e *Environment) Locales(ctx context.Context) ([]domain.Locale, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]domain.Locale(nil), e.locales...), nil
}

// ContentTypes returns every content type in creation order.
func (e *Environment) ContentTypes(ctx context.Context) ([]domain.ContentType, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	types := make([]domain.ContentType, 0, len(e.order))
	for _, id := range e.order {
		types = append(types, cloneContentType(e.types[id].draft))
	}
	return types, nil
}

// ContentType returns one content type.
func (e *Environment) ContentType(ctx context.Context, id string) (*domain.ContentType, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec, ok := e.types[id]
	if !ok {
		return nil, e.notFound(e.contentTypePath(id))
	}
	ct := cloneContentType(rec.draft)
	return &ct, nil
}

// EditorInterface returns the editor interface of a content type.
func (e *Environment) EditorInterface(ctx context.Context, contentTypeID string) (*domain.EditorInterface, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ei, ok := e.editors[contentTypeID]
	if !ok {
		return nil, e.notFound(e.contentTypePath(contentTypeID) + "/editor_interface")
	}
	c := cloneEditor(*ei)
	return &c, nil
}

// Send applies one compiled request.
func (e *Environment) Send(ctx context.Context, req domain.RemoteRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.requests = append(e.requests, req)
	for _, f := range e.failures {
		if f.match(req) {
			return &domain.RequestError{
				StatusCode: f.status,
				Status:     http.StatusText(f.status),
				Message:    f.message,
				URL:        req.URL,
			}
		}
	}

	prefix := domain.EnvironmentPath(e.spaceID, e.environmentID) + "/content_types/"
	if !strings.HasPrefix(req.URL, prefix) {
		return e.notFound(req.URL)
	}
	parts := strings.Split(strings.TrimPrefix(req.URL, prefix), "/")
	id := parts[0]

	switch {
	case len(parts) == 1 && req.Method == http.MethodPut:
		return e.saveContentType(id, req)
	case len(parts) == 1 && req.Method == http.MethodDelete:
		return e.deleteContentType(id, req)
	case len(parts) == 2 && parts[1] == "published" && req.Method == http.MethodPut:
		return e.publishContentType(id, req)
	case len(parts) == 2 && parts[1] == "published" && req.Method == http.MethodDelete:
		return e.unpublishContentType(id, req)
	case len(parts) == 2 && parts[1] == "editor_interface" && req.Method == http.MethodPut:
		return e.saveEditorInterface(id, req)
	}
	return e.notFound(req.URL)
}

type contentTypeBody struct {
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	DisplayField string         `json:"displayField"`
	Fields       []domain.Field `json:"fields"`
}

type editorInterfaceBody struct {
	Controls []domain.Control `json:"controls"`
}

func (e *Environment) saveContentType(id string, req domain.RemoteRequest) error {
	var body contentTypeBody
	if err := decodeBody(req.Body, &body); err != nil {
		return e.fail(http.StatusBadRequest, req.URL, "invalid body: %v", err)
	}
	if body.Name == "" {
		return e.fail(http.StatusUnprocessableEntity, req.URL, "name is required")
	}

	rec, exists := e.types[id]
	version := requestVersion(req)
	if exists && version != rec.draft.Sys.Version {
		return e.versionMismatch(req.URL, rec.draft.Sys.Version, version)
	}
	if !exists && version != 0 {
		return e.notFound(req.URL)
	}

	fields := make([]domain.Field, 0, len(body.Fields))
	for _, f := range body.Fields {
		if !f.Deleted {
			fields = append(fields, f)
			continue
		}
		if !exists || rec.published == nil || !isOmitted(rec.published, f.ID) {
			return e.fail(http.StatusUnprocessableEntity, req.URL, "field %q must be omitted and published before it is deleted", f.ID)
		}
	}
	if body.DisplayField != "" && !hasField(fields, body.DisplayField) {
		return e.fail(http.StatusUnprocessableEntity, req.URL, "displayField %q is not a field", body.DisplayField)
	}

	next := domain.ContentType{
		Sys:          domain.Sys{ID: id, Type: "ContentType", Version: 1},
		Name:         body.Name,
		Description:  body.Description,
		DisplayField: body.DisplayField,
		Fields:       fields,
	}
	if exists {
		next.Sys.Version = rec.draft.Sys.Version + 1
		next.Sys.PublishedVersion = rec.draft.Sys.PublishedVersion
		rec.draft = next
		return nil
	}
	e.types[id] = &contentTypeRecord{draft: next}
	e.order = append(e.order, id)
	return nil
}

func (e *Environment) publishContentType(id string, req domain.RemoteRequest) error {
	rec, ok := e.types[id]
	if !ok {
		return e.notFound(req.URL)
	}
	if v := requestVersion(req); v != rec.draft.Sys.Version {
		return e.versionMismatch(req.URL, rec.draft.Sys.Version, v)
	}

	rec.draft.Sys.PublishedVersion = rec.draft.Sys.Version
	rec.draft.Sys.Version++
	published := cloneContentType(rec.draft)
	rec.published = &published

	ei, ok := e.editors[id]
	if !ok {
		e.editors[id] = &domain.EditorInterface{
			Sys:      domain.Sys{ID: "default", Type: "EditorInterface", Version: 1},
			Controls: defaultControls(nil, rec.draft.Fields),
		}
		return nil
	}
	ei.Controls = defaultControls(ei.Controls, rec.draft.Fields)
	return nil
}

func (e *Environment) unpublishContentType(id string, req domain.RemoteRequest) error {
	rec, ok := e.types[id]
	if !ok {
		return e.notFound(req.URL)
	}
	if rec.published == nil {
		return e.fail(http.StatusBadRequest, req.URL, "content type %q is not published", id)
	}
	if v := requestVersion(req); v != 0 && v != rec.draft.Sys.Version {
		return e.versionMismatch(req.URL, rec.draft.Sys.Version, v)
	}
	for _, entry := range e.entries {
		if entry.Sys.ContentType != nil && entry.Sys.ContentType.Sys.ID == id {
			return e.fail(http.StatusBadRequest, req.URL, "content type %q still has entries", id)
		}
	}

	rec.published = nil
	rec.draft.Sys.PublishedVersion = 0
	rec.draft.Sys.Version++
	return nil
}

func (e *Environment) deleteContentType(id string, req domain.RemoteRequest) error {
	rec, ok := e.types[id]
	if !ok {
		return e.notFound(req.URL)
	}
	if rec.published != nil {
		return e.fail(http.StatusBadRequest, req.URL, "content type %q must be unpublished before it is deleted", id)
	}
	if v := requestVersion(req); v != 0 && v != rec.draft.Sys.Version {
		return e.versionMismatch(req.URL, rec.draft.Sys.Version, v)
	}

	delete(e.types, id)
	delete(e.editors, id)
	for i, existing := range e.order {
		if existing == id {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	return nil
}

func (e *Environment) saveEditorInterface(id string, req domain.RemoteRequest) error {
	rec, ok := e.types[id]
	if !ok {
		return e.notFound(req.URL)
	}
	ei, ok := e.editors[id]
	if !ok {
		return e.notFound(req.URL)
	}
	if v := requestVersion(req); v != ei.Sys.Version {
		return e.versionMismatch(req.URL, ei.Sys.Version, v)
	}

	var body editorInterfaceBody
	if err := decodeBody(req.Body, &body); err != nil {
		return e.fail(http.StatusBadRequest, req.URL, "invalid body: %v", err)
	}
	for _, c := range body.Controls {
		if !hasField(rec.draft.Fields, c.FieldID) {
			return e.fail(http.StatusUnprocessableEntity, req.URL, "control references unknown field %q", c.FieldID)
		}
	}

	ei.Controls = body.Controls
	ei.Sys.Version++
	return nil
}

func (e *Environment) contentTypePath(id string) string {
	return domain.ContentTypePath(e.spaceID, e.environmentID, id)
}

func (e *Environment) notFound(url string) error {
	return &domain.RequestError{
		StatusCode: http.StatusNotFound,
		Status:     http.StatusText(http.StatusNotFound),
		Message:    "The resource could not be found.",
		URL:        url,
	}
}

func (e *Environment) versionMismatch(url string, current, got int) error {
	return &domain.RequestError{
		StatusCode: http.StatusConflict,
		Status:     http.StatusText(http.StatusConflict),
		Message:    "VersionMismatch",
		Details:    map[string]any{"current": current, "requested": got},
		URL:        url,
	}
}

func (e *Environment) fail(status int, url, format string, args ...any) error {
	return &domain.RequestError{
		StatusCode: status,
		Status:     http.StatusText(status),
		Message:    fmt.Sprintf(format, args...),
		URL:        url,
	}
}

func requestVersion(req domain.RemoteRequest) int {
	v, err := strconv.Atoi(req.Headers[domain.VersionHeader])
	if err != nil {
		return 0
	}
	return v
}

// decodeBody round-trips the body through JSON, as the wire would.
func decodeBody(body any, v any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func isOmitted(ct *domain.ContentType, fieldID string) bool {
	for _, f := range ct.Fields {
		if f.ID == fieldID {
			return f.Omitted
		}
	}
	return false
}

func hasField(fields []domain.Field, id string) bool {
	for _, f := range fields {
		if f.ID == id {
			return true
		}
	}
	return false
}

// defaultControls keeps existing controls for fields that still exist and
// adds the default widget for new ones.
func defaultControls(existing []domain.Control, fields []domain.Field) []domain.Control {
	byField := make(map[string]domain.Control, len(existing))
	for _, c := range existing {
		byField[c.FieldID] = c
	}
	controls := make([]domain.Control, 0, len(fields))
	for _, f := range fields {
		if c, ok := byField[f.ID]; ok {
			controls = append(controls, c)
			continue
		}
		controls = append(controls, domain.Control{
			FieldID:         f.ID,
			WidgetID:        DefaultWidget(f),
			WidgetNamespace: "builtin",
		})
	}
	return controls
}

// DefaultWidget returns the builtin widget assigned to a new field.
func DefaultWidget(f domain.Field) string {
	switch f.Type {
	case "Symbol":
		return "singleLine"
	case "Text":
		return "markdown"
	case "RichText":
		return "richTextEditor"
	case "Integer", "Number":
		return "numberEditor"
	case "Date":
		return "datePicker"
	case "Location":
		return "locationEditor"
	case "Boolean":
		return "boolean"
	case "Link":
		if f.LinkType == "Asset" {
			return "assetLinkEditor"
		}
		return "entryLinkEditor"
	case "Array":
		if f.Items != nil && f.Items.Type == "Symbol" {
			return "tagEditor"
		}
		if f.Items != nil && f.Items.LinkType == "Asset" {
			return "assetLinksEditor"
		}
		return "entryLinksEditor"
	default:
		return "objectEditor"
	}
}

func cloneContentType(ct domain.ContentType) domain.ContentType {
	ct.Fields = append([]domain.Field(nil), ct.Fields...)
	return ct
}

func cloneEditor(ei domain.EditorInterface) domain.EditorInterface {
	ei.Controls = append([]domain.Control(nil), ei.Controls...)
	return ei
}

// Ensure Environment implements Session interface.
var _ domain.Session = (*Environment)(nil)
