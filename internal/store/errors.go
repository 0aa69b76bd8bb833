package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
// The HTTP adapter maps its responses onto the same values.
var (
	// ErrProfileNotFound is returned when no encryption profile row exists for
	// the requested user.
	ErrProfileNotFound = errors.New("encryption profile not found")

	// ErrProfileAlreadyExists is returned when inserting a profile loses the
	// race against another writer for the same user id. Callers re-read the
	// row and use the stored salt.
	ErrProfileAlreadyExists = errors.New("encryption profile already exists")

	// ErrRecordNotFound is returned when an update targets a record that does
	// not exist or is owned by another user.
	ErrRecordNotFound = errors.New("record not found")

	// ErrStorage wraps every driver, transport or decoding failure that has no
	// more specific sentinel.
	ErrStorage = errors.New("storage failure")
)

// Low-level errors wrapped together with [ErrStorage].
var (
	// ErrBuildingSQLQuery is returned when squirrel cannot render a statement.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when a SELECT fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrExecutingStatement is returned when an INSERT or UPDATE fails.
	ErrExecutingStatement = errors.New("failed to execute statement")

	// ErrScanningRows is returned when scanning a result row fails.
	ErrScanningRows = errors.New("failed to scan rows")

	// ErrUnsupportedDialect is returned for a backend name with no SQL driver.
	ErrUnsupportedDialect = errors.New("unsupported sql dialect")
)
