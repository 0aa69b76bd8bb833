package config

import "errors"

// Validation errors returned by [StructuredConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidCryptoConfigs indicates unusable KDF or wrapping parameters
	// (for example, too few iterations or an empty wrapping constant).
	ErrInvalidCryptoConfigs = errors.New("invalid crypto configuration")
	// ErrInvalidAdapterConfigs indicates invalid HTTP backend settings
	// (for example, missing address or request timeout).
	ErrInvalidAdapterConfigs = errors.New("invalid adapter configuration")
	// ErrInvalidStorageConfigs indicates an unknown backend or a missing DSN.
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidWorkerConfigs indicates invalid worker settings
	// (for example, zero migration concurrency).
	ErrInvalidWorkerConfigs = errors.New("invalid worker configuration")
)
