// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package keystore owns the in-memory secrets of the field encryption
// envelope: per-user salts, derived data keys and wrapping keys.
//
// Salts are persisted through a [store.ProfileRepository] the first time a
// key is derived for a user and are never rewritten. Derived keys live only
// in memory and are wiped by ClearCache, which must be called at logout.
package keystore

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/MKhiriev/go-field-crypt/internal/crypto"
	"github.com/MKhiriev/go-field-crypt/internal/logger"
	"github.com/MKhiriev/go-field-crypt/internal/store"
	"github.com/MKhiriev/go-field-crypt/models"
)

// flightTimeout bounds a shared salt or key computation. A flight does not
// follow the cancellation of the caller that started it, since other callers
// may be waiting on its result.
const flightTimeout = 30 * time.Second

// keyID identifies one (user, password) pair without keeping the password.
type keyID struct {
	userID string
	digest [sha256.Size]byte
}

func newKeyID(userID, password string) keyID {
	h := sha256.New()
	h.Write([]byte(userID))
	h.Write([]byte{0})
	h.Write([]byte(password))

	id := keyID{userID: userID}
	h.Sum(id.digest[:0])
	return id
}

func (id keyID) String() string {
	return id.userID + "\x00" + hex.EncodeToString(id.digest[:])
}

// KeyStore caches salts and derived keys per user. It is safe for concurrent
// use; concurrent misses for the same salt or key share one computation.
type KeyStore struct {
	engine     crypto.Engine
	profiles   store.ProfileRepository
	iterations int
	random     io.Reader
	logger     *logger.Logger

	mu         sync.Mutex
	generation uint64
	salts      map[string][]byte
	keys       map[keyID]crypto.DerivedKey
	wrapKeys   map[string]crypto.DerivedKey

	saltFlight singleflight.Group
	keyFlight  singleflight.Group
}

// New constructs a [KeyStore]. iterations is the PBKDF2 count used for every
// key it derives.
func New(engine crypto.Engine, profiles store.ProfileRepository, iterations int, log *logger.Logger) *KeyStore {
	return &KeyStore{
		engine:     engine,
		profiles:   profiles,
		iterations: iterations,
		random:     rand.Reader,
		logger:     log,
		salts:      make(map[string][]byte),
		keys:       make(map[keyID]crypto.DerivedKey),
		wrapKeys:   make(map[string]crypto.DerivedKey),
	}
}

// GetOrCreateSalt returns the user's salt from memory, then from the store.
// When the store has none, a fresh random salt is inserted; if that insert
// loses a race the stored salt is re-read and used instead of the local one.
func (ks *KeyStore) GetOrCreateSalt(ctx context.Context, userID string) ([]byte, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}

	if salt, ok := ks.cachedSalt(userID); ok {
		return salt, nil
	}

	ch := ks.saltFlight.DoChan(userID, func() (any, error) {
		// re-check: a flight for this user may have finished since the miss
		if salt, ok := ks.cachedSalt(userID); ok {
			return salt, nil
		}

		flightCtx, cancel := detach(ctx)
		defer cancel()

		generation := ks.currentGeneration()
		salt, err := ks.loadOrCreateSalt(flightCtx, userID)
		if err != nil {
			return nil, err
		}

		ks.mu.Lock()
		if ks.generation == generation {
			ks.salts[userID] = salt
		}
		ks.mu.Unlock()

		return salt, nil
	})
	v, err := awaitFlight(ctx, ch)
	if err != nil {
		return nil, err
	}

	return v.([]byte), nil
}

// detach returns a context for a shared flight: it keeps the values of ctx,
// the logger among them, but not its cancellation.
func detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), flightTimeout)
}

// awaitFlight waits for a flight result or for ctx, whichever comes first.
// Giving up on ctx leaves the flight running for the other waiters.
func awaitFlight(ctx context.Context, ch <-chan singleflight.Result) (any, error) {
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (ks *KeyStore) cachedSalt(userID string) ([]byte, bool) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	salt, ok := ks.salts[userID]
	return salt, ok
}

func (ks *KeyStore) currentGeneration() uint64 {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	return ks.generation
}

func (ks *KeyStore) loadOrCreateSalt(ctx context.Context, userID string) ([]byte, error) {
	log := logger.FromContext(ctx)

	profile, err := ks.profiles.GetProfile(ctx, userID)
	if err == nil {
		return decodeSalt(userID, profile.Salt)
	}
	if !errors.Is(err, store.ErrProfileNotFound) {
		return nil, fmt.Errorf("fetch salt of user %s: %w", userID, err)
	}

	salt, err := crypto.ReadSalt(ks.random)
	if err != nil {
		return nil, err
	}

	err = ks.profiles.CreateProfile(ctx, models.EncryptionProfile{
		UserID: userID,
		Salt:   base64.StdEncoding.EncodeToString(salt),
	})
	switch {
	case err == nil:
		log.Info().Str("func", "*KeyStore.loadOrCreateSalt").Str("user_id", userID).Msg("salt created")
		return salt, nil
	case errors.Is(err, store.ErrProfileAlreadyExists):
		log.Info().Str("func", "*KeyStore.loadOrCreateSalt").Str("user_id", userID).Msg("salt created concurrently, re-fetching")
	default:
		return nil, fmt.Errorf("persist salt of user %s: %w", userID, err)
	}

	profile, err = ks.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("re-fetch salt of user %s: %w", userID, err)
	}
	return decodeSalt(userID, profile.Salt)
}

func decodeSalt(userID, encoded string) ([]byte, error) {
	salt, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: user %s: %w", ErrMalformedSalt, userID, err)
	}
	if len(salt) == 0 {
		return nil, fmt.Errorf("%w: user %s: empty", ErrMalformedSalt, userID)
	}
	return salt, nil
}

// DeriveAndCacheKey returns the data key of (userID, password), running the
// KDF only on a cache miss.
func (ks *KeyStore) DeriveAndCacheKey(ctx context.Context, userID, password string) (crypto.DerivedKey, error) {
	if userID == "" {
		return crypto.DerivedKey{}, ErrEmptyUserID
	}

	id := newKeyID(userID, password)
	if key, ok := ks.cachedKey(id); ok {
		return key, nil
	}

	ch := ks.keyFlight.DoChan(id.String(), func() (any, error) {
		if key, ok := ks.cachedKey(id); ok {
			return key, nil
		}

		flightCtx, cancel := detach(ctx)
		defer cancel()

		generation := ks.currentGeneration()
		salt, err := ks.GetOrCreateSalt(flightCtx, userID)
		if err != nil {
			return crypto.DerivedKey{}, err
		}

		logger.FromContext(flightCtx).Debug().
			Str("func", "*KeyStore.DeriveAndCacheKey").
			Str("user_id", userID).
			Msg("deriving data key")

		key, err := ks.engine.DeriveKey(password, salt, ks.iterations)
		if err != nil {
			return crypto.DerivedKey{}, err
		}

		ks.mu.Lock()
		if ks.generation == generation {
			ks.keys[id] = key
		}
		ks.mu.Unlock()

		return key, nil
	})
	v, err := awaitFlight(ctx, ch)
	if err != nil {
		return crypto.DerivedKey{}, err
	}

	return v.(crypto.DerivedKey), nil
}

func (ks *KeyStore) cachedKey(id keyID) (crypto.DerivedKey, bool) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	key, ok := ks.keys[id]
	return key, ok
}

// ClearCache drops and wipes the keys and salt of userID, or of every user
// when userID is empty.
func (ks *KeyStore) ClearCache(userID string) {
	ks.mu.Lock()
	defer ks.mu.Unlock()

	ks.generation++

	for id, key := range ks.keys {
		if userID == "" || id.userID == userID {
			key.Wipe()
			delete(ks.keys, id)
		}
	}
	for name, key := range ks.wrapKeys {
		if userID == "" || name == wrappingCacheKey(userID) {
			key.Wipe()
			delete(ks.wrapKeys, name)
		}
	}
	if userID == "" {
		clear(ks.salts)
	} else {
		delete(ks.salts, userID)
	}

	ks.logger.Debug().Str("func", "*KeyStore.ClearCache").Str("user_id", userID).Msg("key cache cleared")
}

// CachedUsers returns the number of users with at least one cached secret.
func (ks *KeyStore) CachedUsers() int {
	ks.mu.Lock()
	defer ks.mu.Unlock()

	users := make(map[string]struct{})
	for id := range ks.keys {
		users[id.userID] = struct{}{}
	}
	for userID := range ks.salts {
		users[userID] = struct{}{}
	}
	for name := range ks.wrapKeys {
		users[strings.TrimPrefix(name, wrappingKeyPrefix)] = struct{}{}
	}
	return len(users)
}
