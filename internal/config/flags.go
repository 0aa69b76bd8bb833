package config

import (
	"flag"
	"fmt"
	"io"
	"time"
)

// ParseFlags parses configuration flags from args and returns the resulting
// partial config together with the remaining positional arguments.
//
// Flags:
//
//	-c/-config JSON file path with configs
//	-kdf-iterations PBKDF2 iteration count
//	-wrapping-constant password wrapping constant
//	-backend storage backend (postgres, sqlite, http)
//	-d database DSN or SQLite file path
//	-a HTTP backend base URL
//	-api-key HTTP backend API key
//	-access-token HTTP backend bearer token
//	-request-timeout HTTP request timeout (e.g., "15s")
//	-migration-concurrency records migrated in parallel
func ParseFlags(args []string) (*StructuredConfig, []string, error) {
	var jsonConfigPath string
	var kdfIterations int
	var wrappingConstant string
	var backend string
	var databaseDSN string
	var adapterAddress string
	var apiKey string
	var accessToken string
	var requestTimeout time.Duration
	var migrationConcurrency int

	fs := flag.NewFlagSet("fieldcrypt", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	fs.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	fs.IntVar(&kdfIterations, "kdf-iterations", 0, "PBKDF2 iteration count")
	fs.StringVar(&wrappingConstant, "wrapping-constant", "", "Password wrapping constant")
	fs.StringVar(&backend, "backend", "", "Storage backend: postgres, sqlite or http")
	fs.StringVar(&databaseDSN, "d", "", "Database DSN")
	fs.StringVar(&adapterAddress, "a", "", "HTTP backend base URL")
	fs.StringVar(&apiKey, "api-key", "", "HTTP backend API key")
	fs.StringVar(&accessToken, "access-token", "", "HTTP backend bearer token")
	fs.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 15s, 1m)")
	fs.IntVar(&migrationConcurrency, "migration-concurrency", 0, "Records migrated in parallel")

	if err := fs.Parse(args); err != nil {
		return nil, nil, fmt.Errorf("error parsing flags: %w", err)
	}

	return &StructuredConfig{
		Crypto: Crypto{
			KDFIterations:    kdfIterations,
			WrappingConstant: wrappingConstant,
		},
		Storage: Storage{
			Backend: backend,
			DB: DB{
				DSN: databaseDSN,
			},
		},
		Adapter: Adapter{
			HTTPAddress:    adapterAddress,
			APIKey:         apiKey,
			AccessToken:    accessToken,
			RequestTimeout: requestTimeout,
		},
		Workers: Workers{
			MigrationConcurrency: migrationConcurrency,
		},
		JSONFilePath: jsonConfigPath,
	}, fs.Args(), nil
}
