package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"sort"
	"sync"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-field-crypt/internal/crypto"
	"github.com/MKhiriev/go-field-crypt/internal/keystore"
	"github.com/MKhiriev/go-field-crypt/internal/logger"
	"github.com/MKhiriev/go-field-crypt/internal/mock"
	"github.com/MKhiriev/go-field-crypt/internal/store"
	"github.com/MKhiriev/go-field-crypt/models"
)

func ptr(s string) *string { return &s }

// testEnv is a wired set of services over a mocked profile repository that
// already holds a salt for every user.
type testEnv struct {
	session  *Session
	keys     *keystore.KeyStore
	engine   crypto.Engine
	fields   FieldService
	profiles *mock.MockProfileRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctrl := gomock.NewController(t)
	profiles := mock.NewMockProfileRepository(ctrl)

	salt := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0x42}, crypto.SaltSize))
	profiles.EXPECT().
		GetProfile(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, userID string) (models.EncryptionProfile, error) {
			return models.EncryptionProfile{UserID: userID, Salt: salt}, nil
		}).
		AnyTimes()

	engine := crypto.NewEngine()
	session := NewSession()
	keys := keystore.New(engine, profiles, crypto.DefaultIterations, logger.Nop())

	return &testEnv{
		session:  session,
		keys:     keys,
		engine:   engine,
		fields:   NewFieldService(session, keys, engine),
		profiles: profiles,
	}
}

// memoryRecords is an in-memory [store.RecordRepository] keyed by table.
type memoryRecords struct {
	mu      sync.Mutex
	tables  map[string]map[string]map[string]*string
	updates int
	failOn  map[string]error
}

func newMemoryRecords() *memoryRecords {
	return &memoryRecords{
		tables: make(map[string]map[string]map[string]*string),
		failOn: make(map[string]error),
	}
}

func (m *memoryRecords) put(table, id string, fields map[string]*string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tables[table] == nil {
		m.tables[table] = make(map[string]map[string]*string)
	}
	m.tables[table][id] = fields
}

func (m *memoryRecords) get(table, id, field string) *string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tables[table][id][field]
}

func (m *memoryRecords) ListRecords(_ context.Context, entity models.EntitySpec, _ string) ([]models.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failOn["list:"+entity.Table]; err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(m.tables[entity.Table]))
	for id := range m.tables[entity.Table] {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	records := make([]models.Record, 0, len(ids))
	for _, id := range ids {
		fields := make(map[string]*string)
		for k, v := range m.tables[entity.Table][id] {
			if v != nil {
				fields[k] = ptr(*v)
			} else {
				fields[k] = nil
			}
		}
		records = append(records, models.Record{ID: id, Fields: fields})
	}
	return records, nil
}

func (m *memoryRecords) UpdateFields(_ context.Context, entity models.EntitySpec, _, recordID string, values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failOn["update:"+entity.Table+":"+recordID]; err != nil {
		return err
	}

	row, ok := m.tables[entity.Table][recordID]
	if !ok {
		return fmt.Errorf("%w: %s", store.ErrRecordNotFound, recordID)
	}
	for k, v := range values {
		row[k] = ptr(v)
	}
	m.updates++
	return nil
}
