package service

import (
	"github.com/MKhiriev/go-field-crypt/internal/config"
	"github.com/MKhiriev/go-field-crypt/internal/crypto"
	"github.com/MKhiriev/go-field-crypt/internal/keystore"
	"github.com/MKhiriev/go-field-crypt/internal/logger"
	"github.com/MKhiriev/go-field-crypt/internal/store"
	"github.com/MKhiriev/go-field-crypt/models"
)

// Services wires the field encryption envelope for one signed-in user
// session.
type Services struct {
	Session          *Session
	Keys             *keystore.KeyStore
	FieldService     FieldService
	PasswordService  PasswordService
	MigrationService MigrationService
}

// NewServices builds every service over storages. entities lists the record
// types walked by the migration; nil means [models.DefaultEntities].
func NewServices(storages *store.Storages, cfg *config.StructuredConfig, entities []models.EntitySpec, log *logger.Logger) *Services {
	if entities == nil {
		entities = models.DefaultEntities()
	}

	engine := crypto.NewEngine()
	session := NewSession()
	keys := keystore.New(engine, storages.Profiles, cfg.Crypto.KDFIterations, log)
	wrapper := keystore.NewWrapper(engine, keys, cfg.Crypto.WrappingConstant)
	fields := NewFieldService(session, keys, engine)

	return &Services{
		Session:          session,
		Keys:             keys,
		FieldService:     fields,
		PasswordService:  NewPasswordService(session, keys, wrapper, storages.Profiles),
		MigrationService: NewMigrationService(fields, session, storages.Records, entities, cfg.Workers.MigrationConcurrency, log),
	}
}
