// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-field-crypt/internal/logger"
	"github.com/MKhiriev/go-field-crypt/models"
)

// recordRepository is the SQL implementation of [RecordRepository]. Table and
// column names come from a validated [models.EntitySpec].
type recordRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewRecordRepository constructs a [RecordRepository] backed by db.
func NewRecordRepository(db *DB, logger *logger.Logger) RecordRepository {
	logger.Debug().Msg("creating record repository")
	return &recordRepository{
		db:     db,
		logger: logger,
	}
}

// ListRecords selects the id and sensitive columns of every record owned by
// userID. NULL columns map to nil values.
func (r *recordRepository) ListRecords(ctx context.Context, entity models.EntitySpec, userID string) ([]models.Record, error) {
	log := logger.FromContext(ctx)

	if err := entity.Validate(); err != nil {
		return nil, err
	}

	columns := entity.Columns()
	query, args, err := r.db.builder.
		Select(columns...).
		From(entity.Table).
		Where(sq.Eq{entity.OwnerColumn: userID}).
		OrderBy(entity.IDColumn).
		ToSql()
	if err != nil {
		return nil, r.db.storageError(log, "*recordRepository.ListRecords", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, r.db.storageError(log, "*recordRepository.ListRecords", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var records []models.Record
	for rows.Next() {
		values := make([]sql.NullString, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}

		if err = rows.Scan(dest...); err != nil {
			return nil, r.db.storageError(log, "*recordRepository.ListRecords", ErrScanningRows, err)
		}

		record := models.Record{
			ID:     values[0].String,
			Fields: make(map[string]*string, len(entity.Fields)),
		}
		for i, field := range entity.Fields {
			if v := values[i+1]; v.Valid {
				record.Fields[field] = &v.String
			} else {
				record.Fields[field] = nil
			}
		}
		records = append(records, record)
	}
	if err = rows.Err(); err != nil {
		return nil, r.db.storageError(log, "*recordRepository.ListRecords", ErrScanningRows, err)
	}

	log.Debug().
		Str("func", "*recordRepository.ListRecords").
		Str("entity", entity.Name).
		Int("records", len(records)).
		Msg("records listed")

	return records, nil
}

// UpdateFields rewrites the given columns of one record. Zero affected rows
// means the record does not exist for this user.
func (r *recordRepository) UpdateFields(ctx context.Context, entity models.EntitySpec, userID, recordID string, values map[string]string) error {
	log := logger.FromContext(ctx)

	if err := entity.Validate(); err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}

	setMap := make(map[string]any, len(values))
	for field, value := range values {
		if !slices.Contains(entity.Fields, field) {
			return fmt.Errorf("%w: %s is not a sensitive field of %s", models.ErrInvalidEntitySpec, field, entity.Name)
		}
		setMap[field] = value
	}

	query, args, err := r.db.builder.
		Update(entity.Table).
		SetMap(setMap).
		Where(sq.And{
			sq.Eq{entity.IDColumn: recordID},
			sq.Eq{entity.OwnerColumn: userID},
		}).
		ToSql()
	if err != nil {
		return r.db.storageError(log, "*recordRepository.UpdateFields", ErrBuildingSQLQuery, err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return r.db.storageError(log, "*recordRepository.UpdateFields", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return r.db.storageError(log, "*recordRepository.UpdateFields", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s %s", ErrRecordNotFound, entity.Name, recordID)
	}

	return nil
}
