package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMigrationReport_Totals(t *testing.T) {
	r := NewMigrationReport("u-1", "run-1")
	assert.Zero(t, r.TotalMigrated())
	assert.Zero(t, r.TotalFailed())

	r.Entities["journal-entries"] = EntityCounts{Scanned: 3, Migrated: 4, Skipped: 2, Failed: 1}
	r.Entities["calendar-events"] = EntityCounts{FetchError: "storage failure"}
	r.Entities["security-pins"] = EntityCounts{Scanned: 1, Migrated: 1}

	assert.Equal(t, 5, r.TotalMigrated())
	assert.Equal(t, 2, r.TotalFailed())
}

func TestNewBuildInfo(t *testing.T) {
	assert.Equal(t, BuildInfo{Version: "v1.2.0", Date: "N/A", Commit: "N/A"}, NewBuildInfo("v1.2.0", "", ""))
}
