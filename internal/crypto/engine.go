// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/awnumar/memguard"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// KeySize is the length of every derived key (AES-256).
	KeySize = 32
	// SaltSize is the length of a per-user salt (256 bits).
	SaltSize = 32
	// NonceSize is the GCM IV length prepended to every envelope (96 bits).
	NonceSize = 12
	// TagSize is the GCM authentication tag length appended by Seal.
	TagSize = 16

	// MinIterations is the lowest PBKDF2 iteration count DeriveKey accepts.
	MinIterations = 100_000
	// DefaultIterations is the count used by every persisted envelope so far.
	// Changing it makes existing ciphertext unreadable.
	DefaultIterations = 100_000
)

// DerivedKey is an AES-256-GCM key produced by [Engine.DeriveKey]. It lives
// only in memory: it has no exported fields and no serialised form.
type DerivedKey struct {
	raw  []byte
	aead cipher.AEAD
}

// IsZero reports whether k was never derived.
func (k DerivedKey) IsZero() bool {
	return k.aead == nil
}

// Wipe zeroes the raw key bytes. The AES key schedule held by the AEAD is
// not reachable from here and stays in memory until collected. The key must
// not be used afterwards.
func (k DerivedKey) Wipe() {
	if k.raw != nil {
		memguard.WipeBytes(k.raw)
	}
}

// aesGCMEngine is the private implementation of [Engine].
type aesGCMEngine struct {
	// random supplies IVs; crypto/rand in production.
	random io.Reader
}

// NewEngine constructs an [Engine] backed by PBKDF2-HMAC-SHA256 and
// AES-256-GCM, drawing IVs from the OS CSPRNG.
func NewEngine() Engine {
	return &aesGCMEngine{random: rand.Reader}
}

// DeriveKey implements [Engine].
func (e *aesGCMEngine) DeriveKey(password string, salt []byte, iterations int) (DerivedKey, error) {
	if iterations < MinIterations {
		return DerivedKey{}, fmt.Errorf("%w: iterations %d below minimum %d", ErrKeyDerivation, iterations, MinIterations)
	}
	if len(salt) == 0 {
		return DerivedKey{}, fmt.Errorf("%w: empty salt", ErrKeyDerivation)
	}

	raw := pbkdf2.Key([]byte(password), salt, iterations, KeySize, sha256.New)

	aead, err := newAEAD(raw)
	if err != nil {
		memguard.WipeBytes(raw)
		return DerivedKey{}, fmt.Errorf("%w: %w", ErrKeyDerivation, err)
	}

	return DerivedKey{raw: raw, aead: aead}, nil
}

// Encrypt implements [Engine]. The output is Base64 (standard encoding) of
// nonce (12 bytes) ‖ ciphertext ‖ tag (16 bytes).
func (e *aesGCMEngine) Encrypt(plaintext string, key DerivedKey) (string, error) {
	if plaintext == "" {
		return plaintext, nil
	}
	if key.IsZero() {
		return "", fmt.Errorf("%w: key was not derived", ErrKeyDerivation)
	}

	// A fresh IV on every call: GCM with a repeated IV under one key leaks
	// the XOR of plaintexts and the authentication key.
	blob := make([]byte, NonceSize, NonceSize+len(plaintext)+TagSize)
	if _, err := io.ReadFull(e.random, blob); err != nil {
		return "", fmt.Errorf("%w: %w", ErrRandomSource, err)
	}

	blob = key.aead.Seal(blob, blob[:NonceSize], []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(blob), nil
}

// Decrypt implements [Engine]. It splits the IV from the remainder and
// verifies the tag as part of opening.
func (e *aesGCMEngine) Decrypt(envelope string, key DerivedKey) (string, error) {
	if envelope == "" {
		return envelope, nil
	}
	if key.IsZero() {
		return "", fmt.Errorf("%w: key was not derived", ErrAuthentication)
	}

	blob, err := base64.StdEncoding.DecodeString(envelope)
	if err != nil {
		return "", fmt.Errorf("%w: decode base64: %w", ErrAuthentication, err)
	}
	if len(blob) < NonceSize+TagSize {
		return "", fmt.Errorf("%w: envelope too short", ErrAuthentication)
	}

	nonce, ciphertext := blob[:NonceSize], blob[NonceSize:]
	plaintext, err := key.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		// Almost always a wrong password producing a wrong key.
		return "", fmt.Errorf("%w: %w", ErrAuthentication, err)
	}

	return string(plaintext), nil
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}
	return gcm, nil
}
