package domain

import (
	"context"
	"net/url"
	"regexp"
	"strconv"
)

// Header names understood by the content management API.
const (
	VersionHeader     = "X-Contentful-Version"
	ContentTypeHeader = "X-Contentful-Content-Type"
)

// Credentials identify one space/environment pair and the token used to reach it.
type Credentials struct {
	AccessToken   string
	SpaceID       string
	EnvironmentID string
}

var accessTokenPattern = regexp.MustCompile(`^CFPAT-`)

// CheckAccessToken validates the personal access token format.
func CheckAccessToken(token string) error {
	if !accessTokenPattern.MatchString(token) {
		return ErrInvalidCredential
	}
	return nil
}

// Sys carries system metadata of a remote entity.
type Sys struct {
	ID               string   `json:"id"`
	Type             string   `json:"type,omitempty"`
	Version          int      `json:"version,omitempty"`
	PublishedVersion int      `json:"publishedVersion,omitempty"`
	ContentType      *LinkSys `json:"contentType,omitempty"`
}

// LinkSys is a link to another entity.
type LinkSys struct {
	Sys LinkRef `json:"sys"`
}

// LinkRef identifies the target of a link.
type LinkRef struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	LinkType string `json:"linkType"`
}

// IsPublished reports whether the entity has a published version.
func (s Sys) IsPublished() bool {
	return s.PublishedVersion > 0
}

// ContentType is a schema entity with an ordered list of fields.
type ContentType struct {
	Sys          Sys     `json:"sys"`
	Name         string  `json:"name"`
	Description  string  `json:"description,omitempty"`
	DisplayField string  `json:"displayField,omitempty"`
	Fields       []Field `json:"fields"`
}

// Field returns the field with the given id.
func (c *ContentType) Field(id string) (*Field, bool) {
	for i := range c.Fields {
		if c.Fields[i].ID == id && !c.Fields[i].Deleted {
			return &c.Fields[i], true
		}
	}
	return nil, false
}

// Field is one field definition of a content type.
type Field struct {
	ID           string           `json:"id" yaml:"id"`
	Name         string           `json:"name" yaml:"name,omitempty"`
	Type         string           `json:"type" yaml:"type,omitempty"`
	LinkType     string           `json:"linkType,omitempty" yaml:"linkType,omitempty"`
	Items        *FieldItems      `json:"items,omitempty" yaml:"items,omitempty"`
	Localized    bool             `json:"localized" yaml:"localized,omitempty"`
	Required     bool             `json:"required" yaml:"required,omitempty"`
	Validations  []map[string]any `json:"validations,omitempty" yaml:"validations,omitempty"`
	DefaultValue map[string]any   `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
	Disabled     bool             `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	Omitted      bool             `json:"omitted,omitempty" yaml:"omitted,omitempty"`
	Deleted      bool             `json:"deleted,omitempty" yaml:"-"`
}

// FieldItems describes the element type of an Array field.
type FieldItems struct {
	Type        string           `json:"type" yaml:"type"`
	LinkType    string           `json:"linkType,omitempty" yaml:"linkType,omitempty"`
	Validations []map[string]any `json:"validations,omitempty" yaml:"validations,omitempty"`
}

// EditorInterface holds the UI controls of one content type.
type EditorInterface struct {
	Sys      Sys       `json:"sys"`
	Controls []Control `json:"controls"`
}

// Control binds a field to an editor widget.
type Control struct {
	FieldID         string         `json:"fieldId" yaml:"fieldId"`
	WidgetID        string         `json:"widgetId,omitempty" yaml:"widgetId,omitempty"`
	WidgetNamespace string         `json:"widgetNamespace,omitempty" yaml:"widgetNamespace,omitempty"`
	Settings        map[string]any `json:"settings,omitempty" yaml:"settings,omitempty"`
}

// Locale is one configured locale of an environment.
type Locale struct {
	Code    string `json:"code"`
	Name    string `json:"name,omitempty"`
	Default bool   `json:"default"`
}

// Entry is a content entry. Fields are keyed by field id, then locale.
type Entry struct {
	Sys    Sys                       `json:"sys"`
	Fields map[string]map[string]any `json:"fields"`
}

// RemoteRequest is one wire request produced by the plan compiler.
type RemoteRequest struct {
	Method  string            `json:"method"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    any               `json:"body,omitempty"`
}

// Version returns the version the request expects the entity to be at.
func (r RemoteRequest) Version() int {
	v, _ := strconv.Atoi(r.Headers[VersionHeader])
	return v
}

// Session is an authenticated handle to one space/environment pair.
type Session interface {
	SpaceID() string
	EnvironmentID() string

	Locales(ctx context.Context) ([]Locale, error)
	ContentTypes(ctx context.Context) ([]ContentType, error)
	ContentType(ctx context.Context, id string) (*ContentType, error)
	EditorInterface(ctx context.Context, contentTypeID string) (*EditorInterface, error)

	Entry(ctx context.Context, id string) (*Entry, error)
	CreateEntryWithID(ctx context.Context, contentTypeID, id string, fields map[string]map[string]any) (*Entry, error)
	UpdateEntry(ctx context.Context, entry *Entry) (*Entry, error)
	DeleteEntry(ctx context.Context, id string, version int) error

	// Send executes one compiled request. Failures are *RequestError.
	Send(ctx context.Context, req RemoteRequest) error
}

// Gateway resolves credentials into a Session.
type Gateway interface {
	Resolve(ctx context.Context, creds Credentials) (Session, error)
}

// EnvironmentPath returns the API path prefix of an environment.
func EnvironmentPath(spaceID, environmentID string) string {
	return "/spaces/" + url.PathEscape(spaceID) + "/environments/" + url.PathEscape(environmentID)
}

// ContentTypePath returns the API path of a content type.
func ContentTypePath(spaceID, environmentID, contentTypeID string) string {
	return EnvironmentPath(spaceID, environmentID) + "/content_types/" + url.PathEscape(contentTypeID)
}

// DefaultLocale picks the default locale code, falling back to en-US.
func DefaultLocale(locales []Locale) string {
	for _, l := range locales {
		if l.Default {
			return l.Code
		}
	}
	return "en-US"
}
