// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package keystore

import (
	"fmt"

	"github.com/MKhiriev/go-field-crypt/internal/crypto"
)

// wrappingKeyPrefix namespaces wrapping keys inside the key cache.
const wrappingKeyPrefix = "userId-key:"

func wrappingCacheKey(userID string) string {
	return wrappingKeyPrefix + userID
}

// Wrapper encrypts a user's encryption password so it can be stored next to
// the salt and recovered on another device without re-typing it.
//
// Threat model: the wrapping key is PBKDF2(userID, constant). With the
// default, publicly known constant anyone who can read the profile row (it
// holds the user id) can recompute the key and recover the password. The
// wrap only hides the password from someone who sees the encrypted_password
// column alone. Deployments that need more set the constant to a secret that
// is not stored with the rows; doing so invalidates every existing wrap.
type Wrapper struct {
	engine   crypto.Engine
	keys     *KeyStore
	constant []byte
}

// NewWrapper constructs a [Wrapper] that caches its keys in keys.
func NewWrapper(engine crypto.Engine, keys *KeyStore, constant string) *Wrapper {
	return &Wrapper{
		engine:   engine,
		keys:     keys,
		constant: []byte(constant),
	}
}

// DeriveWrappingKey returns the wrapping key of userID. No user secret is
// involved.
func (w *Wrapper) DeriveWrappingKey(userID string) (crypto.DerivedKey, error) {
	if userID == "" {
		return crypto.DerivedKey{}, ErrEmptyUserID
	}

	name := wrappingCacheKey(userID)
	if key, ok := w.cachedKey(name); ok {
		return key, nil
	}

	ks := w.keys
	v, err, _ := ks.keyFlight.Do(name, func() (any, error) {
		if key, ok := w.cachedKey(name); ok {
			return key, nil
		}

		generation := ks.currentGeneration()
		key, err := w.engine.DeriveKey(userID, w.constant, ks.iterations)
		if err != nil {
			return crypto.DerivedKey{}, err
		}

		ks.mu.Lock()
		if ks.generation == generation {
			ks.wrapKeys[name] = key
		}
		ks.mu.Unlock()

		return key, nil
	})
	if err != nil {
		return crypto.DerivedKey{}, err
	}

	return v.(crypto.DerivedKey), nil
}

func (w *Wrapper) cachedKey(name string) (crypto.DerivedKey, bool) {
	w.keys.mu.Lock()
	defer w.keys.mu.Unlock()
	key, ok := w.keys.wrapKeys[name]
	return key, ok
}

// WrapPassword seals password under the wrapping key of userID.
func (w *Wrapper) WrapPassword(password, userID string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	key, err := w.DeriveWrappingKey(userID)
	if err != nil {
		return "", err
	}

	envelope, err := w.engine.Encrypt(password, key)
	if err != nil {
		return "", fmt.Errorf("wrap password of user %s: %w", userID, err)
	}
	return envelope, nil
}

// UnwrapPassword opens an envelope produced by WrapPassword. A wrong user id
// or a changed constant yields [crypto.ErrAuthentication].
func (w *Wrapper) UnwrapPassword(envelope, userID string) (string, error) {
	key, err := w.DeriveWrappingKey(userID)
	if err != nil {
		return "", err
	}

	password, err := w.engine.Decrypt(envelope, key)
	if err != nil {
		return "", fmt.Errorf("unwrap password of user %s: %w", userID, err)
	}
	return password, nil
}
