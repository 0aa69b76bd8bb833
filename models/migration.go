// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// EntityCounts aggregates one entity type's outcome of a migration run.
type EntityCounts struct {
	// Scanned is the number of records fetched.
	Scanned int `json:"scanned"`
	// Migrated is the number of fields rewritten as envelopes.
	Migrated int `json:"migrated"`
	// Skipped is the number of fields left alone because they were empty or
	// already encrypted.
	Skipped int `json:"skipped"`
	// Failed is the number of records whose encryption or write failed.
	Failed int `json:"failed"`
	// FetchError holds the reason the entity's records could not be listed.
	FetchError string `json:"fetch_error,omitempty"`
}

// MigrationReport is the result of one migration run for one user.
type MigrationReport struct {
	UserID   string                  `json:"user_id"`
	RunID    string                  `json:"run_id"`
	Entities map[string]EntityCounts `json:"entities"`
}

// NewMigrationReport returns an empty report for userID.
func NewMigrationReport(userID, runID string) MigrationReport {
	return MigrationReport{
		UserID:   userID,
		RunID:    runID,
		Entities: make(map[string]EntityCounts),
	}
}

// TotalMigrated sums Migrated over every entity.
func (r MigrationReport) TotalMigrated() int {
	total := 0
	for _, c := range r.Entities {
		total += c.Migrated
	}
	return total
}

// TotalFailed sums record failures plus one per entity that could not be
// listed.
func (r MigrationReport) TotalFailed() int {
	total := 0
	for _, c := range r.Entities {
		total += c.Failed
		if c.FetchError != "" {
			total++
		}
	}
	return total
}
