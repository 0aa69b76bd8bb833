package adapter

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-field-crypt/internal/config"
	"github.com/MKhiriev/go-field-crypt/internal/logger"
)

const testAPIKey = "anon-key"

// fakeBackend is an in-memory PostgREST lookalike serving user_encryption and
// journal_entries.
type fakeBackend struct {
	mu       sync.Mutex
	profiles map[string]map[string]any
	journal  []map[string]any

	lastQuery  map[string]string
	lastHeader http.Header
	lastBody   map[string]any
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{profiles: make(map[string]map[string]any)}
}

func (f *fakeBackend) router() http.Handler {
	r := chi.NewRouter()
	r.Use(f.record)
	r.Route("/rest/v1", func(r chi.Router) {
		r.Get("/user_encryption", f.getProfiles)
		r.Post("/user_encryption", f.createProfile)
		r.Patch("/user_encryption", f.patchProfile)
		r.Get("/journal_entries", f.listJournal)
		r.Patch("/journal_entries", f.patchJournal)
	})
	return r
}

func (f *fakeBackend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.lastQuery = make(map[string]string)
		for k := range r.URL.Query() {
			f.lastQuery[k] = r.URL.Query().Get(k)
		}
		f.lastHeader = r.Header.Clone()
		f.lastBody = nil
		if r.Body != nil && r.ContentLength != 0 {
			var body map[string]any
			if json.NewDecoder(r.Body).Decode(&body) == nil {
				f.lastBody = body
			}
		}
		f.mu.Unlock()

		if r.Header.Get("apikey") != testAPIKey {
			http.Error(w, `{"message":"no api key"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func eqValue(r *http.Request, key string) string {
	return strings.TrimPrefix(r.URL.Query().Get(key), "eq.")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeBackend) getProfiles(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rows := []map[string]any{}
	if p, ok := f.profiles[eqValue(r, "user_id")]; ok {
		rows = append(rows, p)
	}
	writeJSON(w, http.StatusOK, rows)
}

func (f *fakeBackend) createProfile(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	body := make(map[string]any, len(f.lastBody)+1)
	for k, v := range f.lastBody {
		body[k] = v
	}
	userID, _ := body["user_id"].(string)
	if _, ok := f.profiles[userID]; ok {
		writeJSON(w, http.StatusConflict, map[string]string{"code": "23505", "message": "duplicate key"})
		return
	}
	body["created_at"] = "2026-10-19T06:58:00.123456"
	f.profiles[userID] = body
	writeJSON(w, http.StatusCreated, []map[string]any{body})
}

func (f *fakeBackend) patchProfile(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rows := []map[string]any{}
	if p, ok := f.profiles[eqValue(r, "user_id")]; ok {
		for k, v := range f.lastBody {
			p[k] = v
		}
		rows = append(rows, p)
	}
	writeJSON(w, http.StatusOK, rows)
}

func (f *fakeBackend) listJournal(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	owner := eqValue(r, "user_id")
	rows := []map[string]any{}
	for _, row := range f.journal {
		if row["user_id"] == owner {
			rows = append(rows, row)
		}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (f *fakeBackend) patchJournal(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id, owner := eqValue(r, "id"), eqValue(r, "user_id")
	rows := []map[string]any{}
	for _, row := range f.journal {
		if stringify(row["id"]) == id && row["user_id"] == owner {
			for k, v := range f.lastBody {
				row[k] = v
			}
			rows = append(rows, row)
		}
	}
	writeJSON(w, http.StatusOK, rows)
}

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	c, err := NewClient(config.Adapter{HTTPAddress: serverURL, APIKey: testAPIKey}, logger.Nop())
	require.NoError(t, err)
	return c
}

func startFakeBackend(t *testing.T) (*fakeBackend, *Client) {
	t.Helper()
	backend := newFakeBackend()
	srv := httptest.NewServer(backend.router())
	t.Cleanup(srv.Close)
	return backend, newTestClient(t, srv.URL)
}
