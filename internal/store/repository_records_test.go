package store

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-field-crypt/internal/logger"
	"github.com/MKhiriev/go-field-crypt/models"
)

func journalEntity() models.EntitySpec {
	return models.EntitySpec{
		Name:   "journal-entries",
		Table:  "journal_entries",
		Fields: []string{"title", "content"},
	}
}

func newTestRecordRepo(t *testing.T, dialect string) (RecordRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newTestDB(t, dialect)
	return NewRecordRepository(db, logger.Nop()), mock
}

// ── ListRecords ──────────────────────────────────────────────────────────────

func TestListRecords_Success(t *testing.T) {
	repo, mock := newTestRecordRepo(t, DialectPostgres)

	rows := sqlmock.NewRows([]string{"id", "title", "content"}).
		AddRow("1", "Study", "Today I studied 3 hours").
		AddRow("2", nil, "")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, content FROM journal_entries WHERE user_id = $1 ORDER BY id")).
		WithArgs("u-42").
		WillReturnRows(rows)

	records, err := repo.ListRecords(context.Background(), journalEntity(), "u-42")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "1", records[0].ID)
	require.NotNil(t, records[0].Fields["title"])
	assert.Equal(t, "Study", *records[0].Fields["title"])
	assert.Equal(t, "Today I studied 3 hours", *records[0].Fields["content"])

	assert.Equal(t, "2", records[1].ID)
	assert.Nil(t, records[1].Fields["title"])
	require.NotNil(t, records[1].Fields["content"])
	assert.Equal(t, "", *records[1].Fields["content"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRecords_Empty(t *testing.T) {
	repo, mock := newTestRecordRepo(t, DialectSQLite)

	mock.ExpectQuery(regexp.QuoteMeta("FROM journal_entries WHERE user_id = ? ORDER BY id")).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "content"}))

	records, err := repo.ListRecords(context.Background(), journalEntity(), "u-1")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestListRecords_InvalidEntity(t *testing.T) {
	repo, _ := newTestRecordRepo(t, DialectPostgres)

	entity := journalEntity()
	entity.Table = "journal_entries; DROP TABLE users"

	_, err := repo.ListRecords(context.Background(), entity, "u-1")
	assert.ErrorIs(t, err, models.ErrInvalidEntitySpec)
}

func TestListRecords_QueryError(t *testing.T) {
	repo, mock := newTestRecordRepo(t, DialectPostgres)

	mock.ExpectQuery("FROM journal_entries").WillReturnError(errors.New("relation does not exist"))

	_, err := repo.ListRecords(context.Background(), journalEntity(), "u-1")
	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, ErrExecutingQuery)
}

func TestListRecords_RowError(t *testing.T) {
	repo, mock := newTestRecordRepo(t, DialectPostgres)

	rows := sqlmock.NewRows([]string{"id", "title", "content"}).
		AddRow("1", "a", "b").
		RowError(0, errors.New("connection reset"))

	mock.ExpectQuery("FROM journal_entries").WillReturnRows(rows)

	_, err := repo.ListRecords(context.Background(), journalEntity(), "u-1")
	assert.ErrorIs(t, err, ErrStorage)
}

// ── UpdateFields ─────────────────────────────────────────────────────────────

const updateJournal = "UPDATE journal_entries SET content = $1, title = $2 WHERE (id = $3 AND user_id = $4)"

func TestUpdateFields_Success(t *testing.T) {
	repo, mock := newTestRecordRepo(t, DialectPostgres)

	mock.ExpectExec(regexp.QuoteMeta(updateJournal)).
		WithArgs("ZW52LWNvbnRlbnQ=", "ZW52LXRpdGxl", "1", "u-42").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateFields(context.Background(), journalEntity(), "u-42", "1", map[string]string{
		"title":   "ZW52LXRpdGxl",
		"content": "ZW52LWNvbnRlbnQ=",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateFields_NothingToWrite(t *testing.T) {
	repo, mock := newTestRecordRepo(t, DialectPostgres)

	require.NoError(t, repo.UpdateFields(context.Background(), journalEntity(), "u-42", "1", nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateFields_UnknownField(t *testing.T) {
	repo, _ := newTestRecordRepo(t, DialectPostgres)

	err := repo.UpdateFields(context.Background(), journalEntity(), "u-42", "1", map[string]string{"user_id": "u-1"})
	assert.ErrorIs(t, err, models.ErrInvalidEntitySpec)
}

func TestUpdateFields_NotOwned(t *testing.T) {
	repo, mock := newTestRecordRepo(t, DialectPostgres)

	mock.ExpectExec("UPDATE journal_entries").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateFields(context.Background(), journalEntity(), "u-42", "99", map[string]string{"title": "x"})
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestUpdateFields_ExecError(t *testing.T) {
	repo, mock := newTestRecordRepo(t, DialectPostgres)

	mock.ExpectExec("UPDATE journal_entries").WillReturnError(pgError("40001"))

	err := repo.UpdateFields(context.Background(), journalEntity(), "u-42", "1", map[string]string{"title": "x"})
	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, ErrExecutingStatement)
}
