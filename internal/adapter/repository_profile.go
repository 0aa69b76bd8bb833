package adapter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-field-crypt/internal/logger"
	"github.com/MKhiriev/go-field-crypt/internal/store"
	"github.com/MKhiriev/go-field-crypt/models"
)

const profileColumns = "user_id,salt,encrypted_password,encryption_password_configured,created_at"

type profileRepository struct {
	client *Client
}

// NewProfileRepository constructs a [store.ProfileRepository] served over HTTP.
func NewProfileRepository(client *Client) store.ProfileRepository {
	return &profileRepository{client: client}
}

// timestampLayouts are the forms a timestamp column may take in JSON; a
// column without time zone comes back without an offset and is read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

type profileRow struct {
	UserID             string  `json:"user_id"`
	Salt               string  `json:"salt"`
	EncryptedPassword  *string `json:"encrypted_password"`
	PasswordConfigured bool    `json:"encryption_password_configured"`
	CreatedAt          string  `json:"created_at"`
}

func (r profileRow) toModel() models.EncryptionProfile {
	return models.EncryptionProfile{
		UserID:             r.UserID,
		Salt:               r.Salt,
		EncryptedPassword:  r.EncryptedPassword,
		PasswordConfigured: r.PasswordConfigured,
		CreatedAt:          parseTimestamp(r.CreatedAt),
	}
}

// parseTimestamp returns the zero time for values it cannot read; nothing
// depends on the creation time.
func parseTimestamp(value string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

type createProfileBody struct {
	UserID             string  `json:"user_id"`
	Salt               string  `json:"salt"`
	EncryptedPassword  *string `json:"encrypted_password"`
	PasswordConfigured bool    `json:"encryption_password_configured"`
}

type wrappedPasswordBody struct {
	EncryptedPassword  string `json:"encrypted_password"`
	PasswordConfigured bool   `json:"encryption_password_configured"`
}

func (r *profileRepository) path() string {
	return tablePath(models.EncryptionProfile{}.TableName())
}

func (r *profileRepository) GetProfile(ctx context.Context, userID string) (models.EncryptionProfile, error) {
	log := logger.FromContext(ctx)

	var rows []profileRow
	resp, err := r.client.request(ctx).
		SetQueryParams(map[string]string{
			"select":  profileColumns,
			"user_id": eq(userID),
		}).
		SetResult(&rows).
		Get(r.path())
	if err != nil {
		log.Err(err).Str("func", "*profileRepository.GetProfile").Msg("request failed")
		return models.EncryptionProfile{}, storageError("get profile", err)
	}
	if err = mapHTTPError(resp); err != nil {
		log.Err(err).Str("func", "*profileRepository.GetProfile").Msg("unexpected response")
		return models.EncryptionProfile{}, storageError("get profile", err)
	}

	if len(rows) == 0 {
		return models.EncryptionProfile{}, store.ErrProfileNotFound
	}

	return rows[0].toModel(), nil
}

func (r *profileRepository) CreateProfile(ctx context.Context, profile models.EncryptionProfile) error {
	log := logger.FromContext(ctx)

	resp, err := r.client.writeRequest(ctx).
		SetBody(createProfileBody{
			UserID:             profile.UserID,
			Salt:               profile.Salt,
			EncryptedPassword:  profile.EncryptedPassword,
			PasswordConfigured: profile.PasswordConfigured,
		}).
		Post(r.path())
	if err != nil {
		log.Err(err).Str("func", "*profileRepository.CreateProfile").Msg("request failed")
		return storageError("create profile", err)
	}

	if err = mapHTTPError(resp); err != nil {
		if errors.Is(err, ErrConflict) {
			return fmt.Errorf("%w: %s", store.ErrProfileAlreadyExists, profile.UserID)
		}
		log.Err(err).Str("func", "*profileRepository.CreateProfile").Msg("unexpected response")
		return storageError("create profile", err)
	}

	return nil
}

func (r *profileRepository) SaveWrappedPassword(ctx context.Context, userID, envelope string) error {
	log := logger.FromContext(ctx)

	var rows []profileRow
	resp, err := r.client.writeRequest(ctx).
		SetQueryParam("user_id", eq(userID)).
		SetBody(wrappedPasswordBody{EncryptedPassword: envelope, PasswordConfigured: true}).
		SetResult(&rows).
		Patch(r.path())
	if err != nil {
		log.Err(err).Str("func", "*profileRepository.SaveWrappedPassword").Msg("request failed")
		return storageError("save wrapped password", err)
	}
	if err = mapHTTPError(resp); err != nil {
		log.Err(err).Str("func", "*profileRepository.SaveWrappedPassword").Msg("unexpected response")
		return storageError("save wrapped password", err)
	}

	if len(rows) == 0 {
		return store.ErrProfileNotFound
	}

	return nil
}
