package crypto

import "errors"

var (
	// ErrKeyDerivation is returned when a key cannot be derived: KDF
	// parameters are out of range or the cipher primitive cannot be built.
	// It is fatal to the calling operation and is not retried.
	ErrKeyDerivation = errors.New("key derivation failed")

	// ErrAuthentication is returned when an envelope does not open under the
	// given key: wrong password, wrong key, or corrupted/tampered data.
	// Callers must surface it, never fall back to the stored value.
	ErrAuthentication = errors.New("envelope authentication failed")

	// ErrRandomSource is returned when the CSPRNG cannot supply an IV.
	ErrRandomSource = errors.New("random source unavailable")
)
