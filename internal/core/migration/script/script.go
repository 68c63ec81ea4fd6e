// Package script reads and writes migration script files.
//
// A script is a YAML document (JSON is accepted as well) named
// <number>-<slug>.yaml. New scripts use a UTC yyyymmddHHMMss number:
//
//	description: Add author to post
//	requires: ">= 0.1.0"
//	up:
//	  - createField:
//	      contentTypeId: post
//	      id: author
//	      name: Author
//	      type: Link
//	      linkType: Entry
//	down:
//	  - deleteField:
//	      contentTypeId: post
//	      id: author
package script

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/satishbabariya/ctf-migrate/internal/core/migration/intent"
)

// TimestampLayout is the UTC layout of the file name prefix.
const TimestampLayout = "20060102150405"

// SchemaFile is the schema snapshot written next to the scripts.
const SchemaFile = "current-schema.json"

var filePattern = regexp.MustCompile(`^(\d+)-([A-Za-z0-9][A-Za-z0-9._-]*)\.(yaml|yml|json)$`)

// Script is one parsed migration script.
type Script struct {
	Title       string      `yaml:"-"`
	Description string      `yaml:"description"`
	Requires    string      `yaml:"requires,omitempty"`
	Up          intent.List `yaml:"up"`
	Down        intent.List `yaml:"down"`
}

// Intents returns the intents for direction "up" or "down".
func (s *Script) Intents(up bool) intent.List {
	if up {
		return s.Up
	}
	return s.Down
}

// Parse decodes a script file. title is the file name.
func Parse(title string, data []byte) (*Script, error) {
	s := &Script{}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", title, err)
	}
	s.Title = title
	return s, nil
}

// Render encodes a script as YAML. Identical scripts render identically.
func Render(s *Script) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", s.Title, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", s.Title, err)
	}
	return buf.Bytes(), nil
}

// IsScriptFile reports whether name follows the script naming pattern.
// Any numeric prefix is accepted; generated names use TimestampLayout.
func IsScriptFile(name string) bool {
	return filePattern.MatchString(name)
}

// Prefix returns the numeric prefix of a script file name, or "".
func Prefix(name string) string {
	m := filePattern.FindStringSubmatch(name)
	if m == nil {
		return ""
	}
	return m[1]
}

// ComparePrefix orders two numeric prefixes by value. Leading zeros are
// ignored, so arbitrarily long prefixes compare without overflow.
func ComparePrefix(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

// Timestamp parses the UTC timestamp prefix of a generated script file name.
func Timestamp(name string) (time.Time, error) {
	prefix := Prefix(name)
	if len(prefix) != len(TimestampLayout) {
		return time.Time{}, fmt.Errorf("%q has no timestamp prefix", name)
	}
	return time.Parse(TimestampLayout, prefix)
}

// FileName builds <UTC timestamp>-<slug>.yaml.
func FileName(t time.Time, slug string) string {
	return fmt.Sprintf("%s-%s.yaml", t.UTC().Format(TimestampLayout), slug)
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a free-form name into a file name slug.
func Slugify(name string) string {
	slug := nonSlug.ReplaceAllString(strings.ToLower(CamelToDash(name)), "-")
	return strings.Trim(slug, "-")
}

// CamelToDash inserts a dash before every upper-case letter and lowers it.
func CamelToDash(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte('-')
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Template returns the body of a new, empty script.
func Template() []byte {
	return []byte(`description: <Put your description here>

up: []

down: []
`)
}
