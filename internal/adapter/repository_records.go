package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/MKhiriev/go-field-crypt/internal/logger"
	"github.com/MKhiriev/go-field-crypt/internal/store"
	"github.com/MKhiriev/go-field-crypt/models"
)

type recordRepository struct {
	client *Client
}

// NewRecordRepository constructs a [store.RecordRepository] served over HTTP.
func NewRecordRepository(client *Client) store.RecordRepository {
	return &recordRepository{client: client}
}

// ListRecords fetches the id and sensitive columns of every record owned by
// userID. Numeric ids are rendered in their JSON form.
func (r *recordRepository) ListRecords(ctx context.Context, entity models.EntitySpec, userID string) ([]models.Record, error) {
	log := logger.FromContext(ctx)

	if err := entity.Validate(); err != nil {
		return nil, err
	}

	resp, err := r.client.request(ctx).
		SetQueryParams(map[string]string{
			"select":           strings.Join(entity.Columns(), ","),
			entity.OwnerColumn: eq(userID),
			"order":            entity.IDColumn + ".asc",
		}).
		Get(tablePath(entity.Table))
	if err != nil {
		log.Err(err).Str("func", "*recordRepository.ListRecords").Str("entity", entity.Name).Msg("request failed")
		return nil, storageError("list "+entity.Name, err)
	}
	if err = mapHTTPError(resp); err != nil {
		log.Err(err).Str("func", "*recordRepository.ListRecords").Str("entity", entity.Name).Msg("unexpected response")
		return nil, storageError("list "+entity.Name, err)
	}

	var rows []map[string]any
	dec := json.NewDecoder(bytes.NewReader(resp.Body()))
	dec.UseNumber()
	if err = dec.Decode(&rows); err != nil {
		log.Err(err).Str("func", "*recordRepository.ListRecords").Str("entity", entity.Name).Msg("bad response body")
		return nil, storageError("decode "+entity.Name, err)
	}

	records := make([]models.Record, 0, len(rows))
	for _, row := range rows {
		record := models.Record{
			ID:     stringify(row[entity.IDColumn]),
			Fields: make(map[string]*string, len(entity.Fields)),
		}
		for _, field := range entity.Fields {
			if v, ok := row[field]; ok && v != nil {
				s := stringify(v)
				record.Fields[field] = &s
			} else {
				record.Fields[field] = nil
			}
		}
		records = append(records, record)
	}

	log.Debug().
		Str("func", "*recordRepository.ListRecords").
		Str("entity", entity.Name).
		Int("records", len(records)).
		Msg("records listed")

	return records, nil
}

// UpdateFields patches the given columns of one record. An empty
// representation means no row matched.
func (r *recordRepository) UpdateFields(ctx context.Context, entity models.EntitySpec, userID, recordID string, values map[string]string) error {
	log := logger.FromContext(ctx)

	if err := entity.Validate(); err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}
	for field := range values {
		if !slices.Contains(entity.Fields, field) {
			return fmt.Errorf("%w: %s is not a sensitive field of %s", models.ErrInvalidEntitySpec, field, entity.Name)
		}
	}

	var rows []json.RawMessage
	resp, err := r.client.writeRequest(ctx).
		SetQueryParams(map[string]string{
			entity.IDColumn:    eq(recordID),
			entity.OwnerColumn: eq(userID),
		}).
		SetBody(values).
		SetResult(&rows).
		Patch(tablePath(entity.Table))
	if err != nil {
		log.Err(err).Str("func", "*recordRepository.UpdateFields").Str("entity", entity.Name).Msg("request failed")
		return storageError("update "+entity.Name, err)
	}
	if err = mapHTTPError(resp); err != nil {
		log.Err(err).Str("func", "*recordRepository.UpdateFields").Str("entity", entity.Name).Msg("unexpected response")
		return storageError("update "+entity.Name, err)
	}

	if len(rows) == 0 {
		return fmt.Errorf("%w: %s %s", store.ErrRecordNotFound, entity.Name, recordID)
	}

	return nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
