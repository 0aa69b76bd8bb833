package service

import "errors"

var (
	// ErrNoSession is returned when an operation needs the session secret and
	// none is set.
	ErrNoSession = errors.New("no encryption password in session")

	// ErrPasswordNotConfigured is returned when a user has no wrapped
	// password to recover.
	ErrPasswordNotConfigured = errors.New("encryption password is not configured")

	// ErrMigrationFailed is returned by Migrate when records or entities
	// failed and nothing was migrated. The report is returned alongside.
	ErrMigrationFailed = errors.New("migration failed")
)
