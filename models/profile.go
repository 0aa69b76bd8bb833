// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// EncryptionProfile is the per-user row kept by the external record store.
// It carries the user's KDF salt and, once the user has configured one, the
// encryption password wrapped under the user's wrapping key.
//
// The salt is written once, when the first key is derived for the user, and
// never updated afterwards: regenerating it would make every existing
// envelope unrecoverable. Only EncryptedPassword and PasswordConfigured are
// ever modified.
type EncryptionProfile struct {
	// UserID is the opaque identifier handed in by the application. It is the
	// store's uniqueness key for this row.
	UserID string `json:"user_id"`

	// Salt is the Base64 (standard encoding) of 32 random bytes.
	Salt string `json:"salt"`

	// EncryptedPassword is the CipherEnvelope of the user's encryption
	// password, or nil when no password has been configured.
	EncryptedPassword *string `json:"encrypted_password"`

	// PasswordConfigured reports whether EncryptedPassword holds a usable
	// wrapped password.
	PasswordConfigured bool `json:"encryption_password_configured"`

	// CreatedAt is assigned by the store on insert.
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// TableName returns the name of the table that holds encryption profiles.
func (p EncryptionProfile) TableName() string {
	return "user_encryption"
}
