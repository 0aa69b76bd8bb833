// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"

	"github.com/MKhiriev/go-field-crypt/internal/crypto"
)

// validate checks that the final merged [StructuredConfig] satisfies all
// invariants before it is used at startup.
func (cfg *StructuredConfig) validate() error {
	if cfg.Crypto.KDFIterations < crypto.MinIterations {
		return fmt.Errorf("%w: kdf iterations %d below %d", ErrInvalidCryptoConfigs, cfg.Crypto.KDFIterations, crypto.MinIterations)
	}
	if cfg.Crypto.WrappingConstant == "" {
		return fmt.Errorf("%w: empty wrapping constant", ErrInvalidCryptoConfigs)
	}

	switch cfg.Storage.Backend {
	case BackendPostgres, BackendSQLite:
		if cfg.Storage.DB.DSN == "" {
			return fmt.Errorf("%w: empty DSN for %s backend", ErrInvalidStorageConfigs, cfg.Storage.Backend)
		}
	case BackendHTTP:
		if cfg.Adapter.HTTPAddress == "" || cfg.Adapter.RequestTimeout <= 0 {
			return ErrInvalidAdapterConfigs
		}
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalidStorageConfigs, cfg.Storage.Backend)
	}

	if cfg.Workers.MigrationConcurrency < 1 {
		return ErrInvalidWorkerConfigs
	}

	return nil
}
