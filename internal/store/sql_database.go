package store

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-field-crypt/internal/logger"
	"github.com/MKhiriev/go-field-crypt/migrations"
)

// Dialect names understood by [migrations.Migrate] and by the statement
// builder.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite3"
)

// ErrorClassificator inspects driver errors of one database flavour.
type ErrorClassificator interface {
	// Classify reports whether the failed operation may succeed on retry.
	Classify(err error) ErrorClassification
	// IsUniqueViolation reports whether err is a unique or primary key
	// constraint violation.
	IsUniqueViolation(err error) bool
}

// DB is a *sql.DB bound to a dialect. The statement builder renders the
// dialect's placeholder format.
type DB struct {
	*sql.DB
	dialect            string
	builder            sq.StatementBuilderType
	errorClassificator ErrorClassificator
	logger             *logger.Logger
}

func newDB(conn *sql.DB, dialect string, classificator ErrorClassificator, log *logger.Logger) *DB {
	var placeholder sq.PlaceholderFormat = sq.Question
	if dialect == DialectPostgres {
		placeholder = sq.Dollar
	}

	return &DB{
		DB:                 conn,
		dialect:            dialect,
		builder:            sq.StatementBuilder.PlaceholderFormat(placeholder),
		errorClassificator: classificator,
		logger:             log,
	}
}

// Migrate applies the embedded schema migrations.
func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB, db.dialect)
}

// storageError wraps err with [ErrStorage] and cause, and logs the retry
// classification.
func (db *DB) storageError(log *logger.Logger, fn string, cause, err error) error {
	log.Err(err).
		Str("func", fn).
		Str("classification", db.errorClassificator.Classify(err).String()).
		Msg(cause.Error())

	return fmt.Errorf("%w: %w: %w", ErrStorage, cause, err)
}
