package models

// Record is one row of a sensitive entity table as seen by the migration
// driver: its id plus the current stored value of every sensitive field.
// A nil value is a SQL NULL / JSON null.
type Record struct {
	ID     string
	Fields map[string]*string
}
