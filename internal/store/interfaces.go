// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

import (
	"context"

	"github.com/MKhiriev/go-field-crypt/models"
)

// ProfileRepository persists one [models.EncryptionProfile] per user. The
// user id is the uniqueness key: concurrent inserts for one user must yield
// exactly one row, the loser receiving [ErrProfileAlreadyExists].
type ProfileRepository interface {
	// GetProfile returns [ErrProfileNotFound] when the user has no row.
	GetProfile(ctx context.Context, userID string) (models.EncryptionProfile, error)
	// CreateProfile inserts the row. The salt is never updated afterwards.
	CreateProfile(ctx context.Context, profile models.EncryptionProfile) error
	// SaveWrappedPassword stores the wrapped password and marks the profile
	// as configured.
	SaveWrappedPassword(ctx context.Context, userID, envelope string) error
}

// RecordRepository reads and rewrites the sensitive columns of the entity
// tables described by [models.EntitySpec].
type RecordRepository interface {
	// ListRecords returns every record of entity owned by userID, ordered by
	// id, with the entity's sensitive fields populated.
	ListRecords(ctx context.Context, entity models.EntitySpec, userID string) ([]models.Record, error)
	// UpdateFields overwrites the given sensitive columns of one record owned
	// by userID. Keys of values must be fields of entity.
	UpdateFields(ctx context.Context, entity models.EntitySpec, userID, recordID string, values map[string]string) error
}
