// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/MKhiriev/go-field-crypt/internal/crypto"
	"github.com/MKhiriev/go-field-crypt/internal/keystore"
	"github.com/MKhiriev/go-field-crypt/internal/logger"
	"github.com/MKhiriev/go-field-crypt/internal/store"
	"github.com/MKhiriev/go-field-crypt/models"
)

type migrationService struct {
	fields      FieldService
	session     *Session
	records     store.RecordRepository
	entities    []models.EntitySpec
	concurrency int
	logger      *logger.Logger
}

// NewMigrationService constructs a [MigrationService] walking entities with
// at most concurrency records in flight.
func NewMigrationService(fields FieldService, session *Session, records store.RecordRepository, entities []models.EntitySpec, concurrency int, log *logger.Logger) MigrationService {
	if concurrency < 1 {
		concurrency = 1
	}

	return &migrationService{
		fields:      fields,
		session:     session,
		records:     records,
		entities:    entities,
		concurrency: concurrency,
		logger:      log,
	}
}

func (s *migrationService) Migrate(ctx context.Context, userID, password string) (models.MigrationReport, error) {
	if password == "" {
		return models.MigrationReport{}, keystore.ErrEmptyPassword
	}

	runID := uuid.NewString()
	log := s.logger.GetChildLogger()
	log.Logger = log.With().Str("run_id", runID).Str("user_id", userID).Logger()
	ctx = log.WithContext(ctx)

	s.session.SetPassword(password)

	report := models.NewMigrationReport(userID, runID)
	for _, entity := range s.entities {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Entities[entity.Name] = s.migrateEntity(ctx, entity, userID)
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}

	migrated, failed := report.TotalMigrated(), report.TotalFailed()
	log.Info().
		Str("func", "*migrationService.Migrate").
		Int("migrated", migrated).
		Int("failed", failed).
		Msg("migration finished")

	if failed > 0 && migrated == 0 {
		return report, fmt.Errorf("%w: %d failures, nothing migrated", ErrMigrationFailed, failed)
	}

	return report, nil
}

func (s *migrationService) migrateEntity(ctx context.Context, entity models.EntitySpec, userID string) models.EntityCounts {
	log := logger.FromContext(ctx)

	records, err := s.records.ListRecords(ctx, entity, userID)
	if err != nil {
		log.Err(err).Str("func", "*migrationService.migrateEntity").Str("entity", entity.Name).Msg("error listing records")
		return models.EntityCounts{FetchError: err.Error()}
	}

	var (
		mu     sync.Mutex
		counts = models.EntityCounts{Scanned: len(records)}
		g      errgroup.Group
	)
	g.SetLimit(s.concurrency)

	for _, record := range records {
		if ctx.Err() != nil {
			break
		}

		g.Go(func() error {
			migrated, skipped, err := s.migrateRecord(ctx, entity, userID, record)

			mu.Lock()
			defer mu.Unlock()

			counts.Skipped += skipped
			if err != nil {
				counts.Failed++
				log.Err(err).
					Str("func", "*migrationService.migrateEntity").
					Str("entity", entity.Name).
					Str("record_id", record.ID).
					Msg("error migrating record")
				return nil
			}
			counts.Migrated += migrated
			return nil
		})
	}
	_ = g.Wait()

	log.Debug().
		Str("func", "*migrationService.migrateEntity").
		Str("entity", entity.Name).
		Int("scanned", counts.Scanned).
		Int("migrated", counts.Migrated).
		Int("skipped", counts.Skipped).
		Int("failed", counts.Failed).
		Msg("entity migrated")

	return counts
}

// migrateRecord encrypts the record's plaintext fields and writes them back
// in one update. Every encryption completes before the write starts.
func (s *migrationService) migrateRecord(ctx context.Context, entity models.EntitySpec, userID string, record models.Record) (migrated, skipped int, err error) {
	values := make(map[string]string, len(entity.Fields))

	for _, field := range entity.Fields {
		value := record.Fields[field]
		if value == nil || *value == "" || crypto.IsEncrypted(*value) {
			skipped++
			continue
		}

		envelope, err := s.fields.EncryptField(ctx, userID, *value)
		if err != nil {
			return 0, skipped, fmt.Errorf("field %s: %w", field, err)
		}
		if envelope == *value {
			// session cleared mid-run: EncryptField passed the value through
			return 0, skipped, ErrNoSession
		}
		values[field] = envelope
	}

	if len(values) == 0 {
		return 0, skipped, nil
	}

	if err = s.records.UpdateFields(ctx, entity, userID, record.ID, values); err != nil {
		return 0, skipped, err
	}

	return len(values), skipped, nil
}
