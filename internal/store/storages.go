package store

import (
	"context"
	"fmt"
	"io"

	"github.com/MKhiriev/go-field-crypt/internal/config"
	"github.com/MKhiriev/go-field-crypt/internal/logger"
)

// Storages groups the repositories of one backend.
type Storages struct {
	Profiles ProfileRepository
	Records  RecordRepository

	closer io.Closer
}

// NewStorages assembles a [Storages]. closer may be nil.
func NewStorages(profiles ProfileRepository, records RecordRepository, closer io.Closer) *Storages {
	return &Storages{
		Profiles: profiles,
		Records:  records,
		closer:   closer,
	}
}

// Close releases the underlying connection, if any.
func (s *Storages) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// NewSQLStorages connects to the configured relational backend, applies the
// embedded schema migrations and returns repositories bound to it.
func NewSQLStorages(ctx context.Context, cfg config.Storage, log *logger.Logger) (*Storages, error) {
	var (
		db  *DB
		err error
	)

	switch cfg.Backend {
	case config.BackendPostgres:
		db, err = NewConnectPostgres(ctx, cfg.DB, log)
	case config.BackendSQLite:
		db, err = NewConnectSQLite(ctx, cfg.DB, log)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDialect, cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	if err = db.Migrate(); err != nil {
		log.Err(err).Str("func", "NewSQLStorages").Msg("error applying migrations")
		db.Close()
		return nil, err
	}

	return NewStorages(NewProfileRepository(db, log), NewRecordRepository(db, log), db), nil
}
