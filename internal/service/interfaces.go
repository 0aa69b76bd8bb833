// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"

	"github.com/MKhiriev/go-field-crypt/internal/crypto"
	"github.com/MKhiriev/go-field-crypt/models"
)

// FieldService encrypts and decrypts single values and ordered collections
// of values on behalf of the user whose password is in the session.
//
// With no session secret every call is a pass-through. Empty values are
// always passed through, and DecryptField returns values the classifier does
// not recognise as envelopes unchanged. A value that looks like an envelope
// but does not open is an error wrapping [crypto.ErrAuthentication]; the
// stored value is never returned in its place.
type FieldService interface {
	EncryptField(ctx context.Context, userID, value string) (string, error)
	DecryptField(ctx context.Context, userID, value string) (string, error)
	// EncryptArray maps EncryptField over values. nil stays nil, empty stays
	// empty and nil elements stay nil. The first failing element aborts the
	// call and its index is part of the error.
	EncryptArray(ctx context.Context, userID string, values []*string) ([]*string, error)
	// DecryptArray is the DecryptField counterpart of EncryptArray.
	DecryptArray(ctx context.Context, userID string, values []*string) ([]*string, error)
	// Logout clears the session secret and every cached secret of userID.
	Logout(userID string)
}

// PasswordService manages the user's encryption password: first setup and
// recovery from its wrapped copy in the store.
type PasswordService interface {
	// Setup stores the wrapped password, marks the profile configured and
	// puts the password into the session.
	Setup(ctx context.Context, userID, password string) error
	// Recover unwraps the stored password into the session. It reports false
	// when the user has not configured one.
	Recover(ctx context.Context, userID string) (bool, error)
	IsConfigured(ctx context.Context, userID string) (bool, error)
}

// MigrationService encrypts a user's legacy plaintext records in place.
type MigrationService interface {
	// Migrate puts password into the session and rewrites every non-empty,
	// not yet encrypted sensitive field of every configured entity. It is
	// best effort: a failing record is logged and counted, the rest carry on.
	// The session is left set.
	Migrate(ctx context.Context, userID, password string) (models.MigrationReport, error)
}

// KeyProvider is the part of the key store the services rely on.
type KeyProvider interface {
	GetOrCreateSalt(ctx context.Context, userID string) ([]byte, error)
	DeriveAndCacheKey(ctx context.Context, userID, password string) (crypto.DerivedKey, error)
	ClearCache(userID string)
}

// PasswordWrapper seals the encryption password for storage.
type PasswordWrapper interface {
	WrapPassword(password, userID string) (string, error)
	UnwrapPassword(envelope, userID string) (string, error)
}
