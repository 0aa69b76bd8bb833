// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidEntitySpec is returned by [EntitySpec.Validate] when a table or
// column name is not a plain lower-case SQL identifier.
var ErrInvalidEntitySpec = errors.New("invalid entity spec")

var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// EntitySpec names one record type whose fields carry user secrets. Which
// fields are sensitive is decided by the application; the definitions returned by
// [DefaultEntities] mirror the planner's current data model.
//
// Table and column names are interpolated into SQL and URLs, so they must
// pass Validate before use.
type EntitySpec struct {
	// Name is the plural, human-readable entity name used in reports and logs
	// (e.g. "journal-entries").
	Name string `json:"name"`

	// Table is the table (or REST resource) holding the records.
	Table string `json:"table"`

	// IDColumn is the primary-key column. Defaults to "id".
	IDColumn string `json:"id_column"`

	// OwnerColumn is the column holding the owning user id. Defaults to
	// "user_id".
	OwnerColumn string `json:"owner_column"`

	// Fields lists the sensitive text columns.
	Fields []string `json:"fields"`
}

// Validate checks that every identifier is safe to interpolate
// and fills IDColumn and OwnerColumn defaults.
func (e *EntitySpec) Validate() error {
	if e.IDColumn == "" {
		e.IDColumn = "id"
	}
	if e.OwnerColumn == "" {
		e.OwnerColumn = "user_id"
	}
	if e.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidEntitySpec)
	}
	if len(e.Fields) == 0 {
		return fmt.Errorf("%w: %s has no sensitive fields", ErrInvalidEntitySpec, e.Name)
	}

	identifiers := append([]string{e.Table, e.IDColumn, e.OwnerColumn}, e.Fields...)
	for _, id := range identifiers {
		if !identifierPattern.MatchString(id) {
			return fmt.Errorf("%w: %s: bad identifier %q", ErrInvalidEntitySpec, e.Name, id)
		}
	}

	return nil
}

// Columns returns the id column followed by the sensitive field columns.
func (e EntitySpec) Columns() []string {
	cols := make([]string, 0, len(e.Fields)+1)
	cols = append(cols, e.IDColumn)
	return append(cols, e.Fields...)
}

// DefaultEntities returns the record types the migration driver walks when
// the application does not supply its own list.
func DefaultEntities() []EntitySpec {
	return []EntitySpec{
		{
			Name:        "journal-entries",
			Table:       "journal_entries",
			IDColumn:    "id",
			OwnerColumn: "user_id",
			Fields:      []string{"title", "content"},
		},
		{
			Name:        "calendar-events",
			Table:       "calendar_events",
			IDColumn:    "id",
			OwnerColumn: "user_id",
			Fields:      []string{"title", "description", "location"},
		},
		{
			Name:        "recurring-transactions",
			Table:       "recurring_transactions",
			IDColumn:    "id",
			OwnerColumn: "user_id",
			Fields:      []string{"description", "notes"},
		},
		{
			Name:        "security-pins",
			Table:       "security_pins",
			IDColumn:    "id",
			OwnerColumn: "user_id",
			Fields:      []string{"label", "pin"},
		},
	}
}
