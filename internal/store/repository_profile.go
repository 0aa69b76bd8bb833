// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-field-crypt/internal/logger"
	"github.com/MKhiriev/go-field-crypt/models"
)

var profileTable = models.EncryptionProfile{}.TableName()

const (
	profileUserIDColumn        = "user_id"
	profileSaltColumn          = "salt"
	profileEncryptedPassColumn = "encrypted_password"
	profileConfiguredColumn    = "encryption_password_configured"
	profileCreatedAtColumn     = "created_at"
)

// profileRepository is the SQL implementation of [ProfileRepository] over the
// user_encryption table.
type profileRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewProfileRepository constructs a [ProfileRepository] backed by db.
func NewProfileRepository(db *DB, logger *logger.Logger) ProfileRepository {
	logger.Debug().Msg("creating profile repository")
	return &profileRepository{
		db:     db,
		logger: logger,
	}
}

// GetProfile selects the row of userID.
//
// Error handling:
//   - no row → [ErrProfileNotFound].
//   - any other failure → wrapped [ErrStorage].
func (r *profileRepository) GetProfile(ctx context.Context, userID string) (models.EncryptionProfile, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder.
		Select(profileUserIDColumn, profileSaltColumn, profileEncryptedPassColumn, profileConfiguredColumn, profileCreatedAtColumn).
		From(profileTable).
		Where(sq.Eq{profileUserIDColumn: userID}).
		ToSql()
	if err != nil {
		return models.EncryptionProfile{}, r.db.storageError(log, "*profileRepository.GetProfile", ErrBuildingSQLQuery, err)
	}

	var (
		profile models.EncryptionProfile
		wrapped sql.NullString
	)
	err = r.db.QueryRowContext(ctx, query, args...).
		Scan(&profile.UserID, &profile.Salt, &wrapped, &profile.PasswordConfigured, &profile.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.EncryptionProfile{}, ErrProfileNotFound
	}
	if err != nil {
		return models.EncryptionProfile{}, r.db.storageError(log, "*profileRepository.GetProfile", ErrExecutingQuery, err)
	}

	if wrapped.Valid {
		profile.EncryptedPassword = &wrapped.String
	}

	return profile, nil
}

// CreateProfile inserts the row. A unique violation on user_id means another
// writer got there first and is reported as [ErrProfileAlreadyExists].
func (r *profileRepository) CreateProfile(ctx context.Context, profile models.EncryptionProfile) error {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder.
		Insert(profileTable).
		Columns(profileUserIDColumn, profileSaltColumn, profileEncryptedPassColumn, profileConfiguredColumn).
		Values(profile.UserID, profile.Salt, profile.EncryptedPassword, profile.PasswordConfigured).
		ToSql()
	if err != nil {
		return r.db.storageError(log, "*profileRepository.CreateProfile", ErrBuildingSQLQuery, err)
	}

	if _, err = r.db.ExecContext(ctx, query, args...); err != nil {
		if r.db.errorClassificator.IsUniqueViolation(err) {
			log.Debug().Str("func", "*profileRepository.CreateProfile").Str("user_id", profile.UserID).Msg("profile already exists")
			return ErrProfileAlreadyExists
		}
		return r.db.storageError(log, "*profileRepository.CreateProfile", ErrExecutingStatement, err)
	}

	return nil
}

// SaveWrappedPassword updates the password columns only; the salt is never
// rewritten.
func (r *profileRepository) SaveWrappedPassword(ctx context.Context, userID, envelope string) error {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder.
		Update(profileTable).
		Set(profileEncryptedPassColumn, envelope).
		Set(profileConfiguredColumn, true).
		Where(sq.Eq{profileUserIDColumn: userID}).
		ToSql()
	if err != nil {
		return r.db.storageError(log, "*profileRepository.SaveWrappedPassword", ErrBuildingSQLQuery, err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return r.db.storageError(log, "*profileRepository.SaveWrappedPassword", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return r.db.storageError(log, "*profileRepository.SaveWrappedPassword", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrProfileNotFound
	}

	return nil
}
