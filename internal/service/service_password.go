package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-field-crypt/internal/keystore"
	"github.com/MKhiriev/go-field-crypt/internal/logger"
	"github.com/MKhiriev/go-field-crypt/internal/store"
	"github.com/MKhiriev/go-field-crypt/models"
)

type passwordService struct {
	session  *Session
	keys     KeyProvider
	wrapper  PasswordWrapper
	profiles store.ProfileRepository
}

// NewPasswordService constructs a [PasswordService].
func NewPasswordService(session *Session, keys KeyProvider, wrapper PasswordWrapper, profiles store.ProfileRepository) PasswordService {
	return &passwordService{
		session:  session,
		keys:     keys,
		wrapper:  wrapper,
		profiles: profiles,
	}
}

func (s *passwordService) Setup(ctx context.Context, userID, password string) error {
	log := logger.FromContext(ctx)

	if password == "" {
		return keystore.ErrEmptyPassword
	}

	// the profile row (and its salt) must exist before the password columns
	// can be updated
	if _, err := s.keys.GetOrCreateSalt(ctx, userID); err != nil {
		return fmt.Errorf("ensure salt: %w", err)
	}

	envelope, err := s.wrapper.WrapPassword(password, userID)
	if err != nil {
		return err
	}

	if err = s.profiles.SaveWrappedPassword(ctx, userID, envelope); err != nil {
		log.Err(err).Str("func", "*passwordService.Setup").Str("user_id", userID).Msg("error saving wrapped password")
		return fmt.Errorf("save wrapped password: %w", err)
	}

	s.session.SetPassword(password)
	log.Info().Str("func", "*passwordService.Setup").Str("user_id", userID).Msg("encryption password configured")

	return nil
}

func (s *passwordService) Recover(ctx context.Context, userID string) (bool, error) {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if errors.Is(err, store.ErrProfileNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("fetch profile: %w", err)
	}
	if !passwordStored(profile) {
		return false, nil
	}

	password, err := s.wrapper.UnwrapPassword(*profile.EncryptedPassword, userID)
	if err != nil {
		return false, err
	}

	s.session.SetPassword(password)
	logger.FromContext(ctx).Info().Str("func", "*passwordService.Recover").Str("user_id", userID).Msg("encryption password recovered")

	return true, nil
}

func (s *passwordService) IsConfigured(ctx context.Context, userID string) (bool, error) {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if errors.Is(err, store.ErrProfileNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("fetch profile: %w", err)
	}

	return passwordStored(profile), nil
}

// passwordStored reports whether profile holds a usable wrapped password.
func passwordStored(profile models.EncryptionProfile) bool {
	return profile.PasswordConfigured && profile.EncryptedPassword != nil && *profile.EncryptedPassword != ""
}
