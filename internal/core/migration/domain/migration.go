// Package domain contains the core entities and interfaces for the migration domain.
package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Direction is the direction a migration script is applied in.
type Direction string

const (
	// Up applies a script.
	Up Direction = "up"
	// Down reverts a script.
	Down Direction = "down"
)

// MigrationRecord is one entry of the persisted migration history.
// A nil Timestamp means the migration is pending.
type MigrationRecord struct {
	Title       string
	Timestamp   *time.Time
	Description string
}

// IsApplied reports whether the record carries an application time.
func (r MigrationRecord) IsApplied() bool {
	return r.Timestamp != nil
}

type recordJSON struct {
	Title       string          `json:"title"`
	Timestamp   json.RawMessage `json:"timestamp"`
	Description string          `json:"description"`
}

// MarshalJSON encodes the timestamp as epoch milliseconds, or null.
func (r MigrationRecord) MarshalJSON() ([]byte, error) {
	ts := json.RawMessage("null")
	if r.Timestamp != nil {
		ts = json.RawMessage(strconv.FormatInt(r.Timestamp.UnixMilli(), 10))
	}
	return json.Marshal(recordJSON{
		Title:       r.Title,
		Timestamp:   ts,
		Description: r.Description,
	})
}

// UnmarshalJSON accepts epoch milliseconds, RFC 3339 strings or null.
func (r *MigrationRecord) UnmarshalJSON(data []byte) error {
	var raw recordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	ts, err := parseTimestamp(raw.Timestamp)
	if err != nil {
		return fmt.Errorf("migration %q: %w", raw.Title, err)
	}
	r.Title = raw.Title
	r.Description = raw.Description
	r.Timestamp = ts
	return nil
}

func parseTimestamp(raw json.RawMessage) (*time.Time, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var millis float64
	if err := json.Unmarshal(raw, &millis); err == nil {
		if millis == 0 {
			return nil, nil
		}
		t := time.UnixMilli(int64(millis)).UTC()
		return &t, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("invalid timestamp %s", string(raw))
	}
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	t = t.UTC()
	return &t, nil
}

// MigrationState is the persisted "which migrations have run" record.
// Migrations is kept in application order.
type MigrationState struct {
	LastRun    *string           `json:"lastRun"`
	Migrations []MigrationRecord `json:"migrations"`
}

// NewMigrationState returns an empty state.
func NewMigrationState() *MigrationState {
	return &MigrationState{Migrations: []MigrationRecord{}}
}

// Applied returns the records that carry a timestamp, preserving order.
func (s *MigrationState) Applied() []MigrationRecord {
	if s == nil {
		return nil
	}
	applied := make([]MigrationRecord, 0, len(s.Migrations))
	for _, m := range s.Migrations {
		if m.IsApplied() {
			applied = append(applied, m)
		}
	}
	return applied
}

// IsEmpty reports whether nothing has been applied.
func (s *MigrationState) IsEmpty() bool {
	return len(s.Applied()) == 0
}

// Find returns the record with the given title.
func (s *MigrationState) Find(title string) (MigrationRecord, bool) {
	if s == nil {
		return MigrationRecord{}, false
	}
	for _, m := range s.Migrations {
		if m.Title == title {
			return m, true
		}
	}
	return MigrationRecord{}, false
}

// LastRunTitle returns LastRun or the empty string.
func (s *MigrationState) LastRunTitle() string {
	if s == nil || s.LastRun == nil {
		return ""
	}
	return *s.LastRun
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
