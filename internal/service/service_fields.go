// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-field-crypt/internal/crypto"
)

type fieldService struct {
	session *Session
	keys    KeyProvider
	engine  crypto.Engine
}

// NewFieldService constructs a [FieldService] bound to session.
func NewFieldService(session *Session, keys KeyProvider, engine crypto.Engine) FieldService {
	return &fieldService{
		session: session,
		keys:    keys,
		engine:  engine,
	}
}

func (s *fieldService) EncryptField(ctx context.Context, userID, value string) (string, error) {
	password, ok := s.session.Password()
	if !ok || value == "" {
		return value, nil
	}

	key, err := s.keys.DeriveAndCacheKey(ctx, userID, password)
	if err != nil {
		return "", fmt.Errorf("derive key: %w", err)
	}

	envelope, err := s.engine.Encrypt(value, key)
	if err != nil {
		return "", fmt.Errorf("encrypt field: %w", err)
	}
	return envelope, nil
}

func (s *fieldService) DecryptField(ctx context.Context, userID, value string) (string, error) {
	password, ok := s.session.Password()
	if !ok || value == "" || !crypto.IsEncrypted(value) {
		return value, nil
	}

	key, err := s.keys.DeriveAndCacheKey(ctx, userID, password)
	if err != nil {
		return "", fmt.Errorf("derive key: %w", err)
	}

	plaintext, err := s.engine.Decrypt(value, key)
	if err != nil {
		return "", fmt.Errorf("decrypt field: %w", err)
	}
	return plaintext, nil
}

func (s *fieldService) EncryptArray(ctx context.Context, userID string, values []*string) ([]*string, error) {
	return mapArray(values, func(v string) (string, error) {
		return s.EncryptField(ctx, userID, v)
	})
}

func (s *fieldService) DecryptArray(ctx context.Context, userID string, values []*string) ([]*string, error) {
	return mapArray(values, func(v string) (string, error) {
		return s.DecryptField(ctx, userID, v)
	})
}

func (s *fieldService) Logout(userID string) {
	s.session.Clear()
	s.keys.ClearCache(userID)
}

func mapArray(values []*string, fn func(string) (string, error)) ([]*string, error) {
	if values == nil {
		return nil, nil
	}

	out := make([]*string, len(values))
	for i, v := range values {
		if v == nil {
			continue
		}

		mapped, err := fn(*v)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = &mapped
	}
	return out, nil
}
