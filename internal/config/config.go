// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// Storage backends accepted by [Storage.Backend].
const (
	// BackendPostgres stores profiles and records in PostgreSQL.
	BackendPostgres = "postgres"
	// BackendSQLite stores profiles and records in a local SQLite file.
	BackendSQLite = "sqlite"
	// BackendHTTP talks to a PostgREST-style backend-as-a-service.
	BackendHTTP = "http"
)

// DefaultWrappingConstant is the publicly known application constant that
// salts every user's wrapping key. Changing it makes every stored wrapped
// password unreadable.
const DefaultWrappingConstant = "go-field-crypt:password-wrap:v1"

// StructuredConfig is the top-level configuration container. It is
// populated by merging defaults, environment variables, command-line flags
// and an optional JSON file, in that order (later non-zero values win).
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type StructuredConfig struct {
	// Crypto holds key derivation and password wrapping parameters.
	Crypto Crypto `envPrefix:"CRYPTO_"`

	// Storage selects and configures the external record store.
	Storage Storage `envPrefix:"STORAGE_"`

	// Adapter configures the HTTP backend used when Storage.Backend is
	// [BackendHTTP].
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Workers holds settings for the migration fan-out.
	Workers Workers `envPrefix:"WORKERS_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// Crypto holds the parameters every envelope depends on. Both values are
// part of the persisted data format: existing ciphertext only opens with the
// values it was written with.
type Crypto struct {
	// KDFIterations is the PBKDF2 iteration count for data and wrapping keys.
	// Env: CRYPTO_KDF_ITERATIONS
	KDFIterations int `env:"KDF_ITERATIONS"`

	// WrappingConstant salts the per-user wrapping key. The default is public;
	// a deployment may set a server-held secret instead, which is what makes
	// the wrapped password resistant to someone who can read the profile row.
	// Env: CRYPTO_WRAPPING_CONSTANT
	WrappingConstant string `env:"WRAPPING_CONSTANT"`
}

// Storage selects the record store backend.
type Storage struct {
	// Backend is one of "postgres", "sqlite" or "http".
	// Env: STORAGE_BACKEND
	Backend string `env:"BACKEND"`

	// DB holds the relational database connection settings.
	DB DB `envPrefix:"DB_"`
}

// DB holds connection settings for the relational database backend.
type DB struct {
	// DSN is the PostgreSQL connection string or the SQLite file path.
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Adapter holds settings for the HTTP backend.
type Adapter struct {
	// HTTPAddress is the backend base URL (e.g. "https://project.example.co").
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// APIKey is sent in the "apikey" header of every request.
	// Env: ADAPTER_API_KEY
	APIKey string `env:"API_KEY"`

	// AccessToken is the bearer token of the signed-in user. When empty the
	// API key is used as bearer.
	// Env: ADAPTER_ACCESS_TOKEN
	AccessToken string `env:"ACCESS_TOKEN"`

	// RequestTimeout bounds every outbound request (e.g. "15s").
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Workers holds settings for background and batch work.
type Workers struct {
	// MigrationConcurrency is the number of records migrated in parallel.
	// Env: WORKERS_MIGRATION_CONCURRENCY
	MigrationConcurrency int `env:"MIGRATION_CONCURRENCY"`
}

// GetStructuredConfig loads, merges, and validates the configuration from
// all available sources in the following priority order (last source wins
// for non-zero fields):
//  1. Built-in defaults
//  2. Environment variables
//  3. Command-line flags parsed from args
//  4. JSON file (path resolved from sources 2 and 3)
//
// It returns the merged config and the positional arguments left after flag
// parsing.
func GetStructuredConfig(args []string) (*StructuredConfig, []string, error) {
	b := newConfigBuilder().
		withDefaults().
		withEnv().
		withFlags(args).
		withJSON()

	cfg, err := b.build()
	return cfg, b.args, err
}
