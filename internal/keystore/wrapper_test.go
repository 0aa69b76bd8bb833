package keystore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-field-crypt/internal/crypto"
	"github.com/MKhiriev/go-field-crypt/internal/mock"
)

const testConstant = "go-field-crypt:password-wrap:v1"

func newTestWrapper(t *testing.T) *Wrapper {
	t.Helper()
	ks, _ := newTestKeyStore(t, nil)
	return NewWrapper(crypto.NewEngine(), ks, testConstant)
}

func TestWrapPassword_RoundTrip(t *testing.T) {
	w := newTestWrapper(t)

	envelope, err := w.WrapPassword("correct horse", "u-42")
	require.NoError(t, err)
	assert.True(t, crypto.IsEncrypted(envelope))
	assert.NotContains(t, envelope, "correct horse")

	password, err := w.UnwrapPassword(envelope, "u-42")
	require.NoError(t, err)
	assert.Equal(t, "correct horse", password)
}

// A fresh wrapper with an empty cache recovers the password from the user id
// alone.
func TestUnwrapPassword_OtherDevice(t *testing.T) {
	envelope, err := newTestWrapper(t).WrapPassword("correct horse", "u-42")
	require.NoError(t, err)

	password, err := newTestWrapper(t).UnwrapPassword(envelope, "u-42")
	require.NoError(t, err)
	assert.Equal(t, "correct horse", password)
}

func TestUnwrapPassword_WrongUser(t *testing.T) {
	w := newTestWrapper(t)

	envelope, err := w.WrapPassword("correct horse", "u-42")
	require.NoError(t, err)

	_, err = w.UnwrapPassword(envelope, "u-43")
	assert.ErrorIs(t, err, crypto.ErrAuthentication)
}

func TestUnwrapPassword_DifferentConstant(t *testing.T) {
	envelope, err := newTestWrapper(t).WrapPassword("correct horse", "u-42")
	require.NoError(t, err)

	ks, _ := newTestKeyStore(t, nil)
	other := NewWrapper(crypto.NewEngine(), ks, "deployment-secret")

	_, err = other.UnwrapPassword(envelope, "u-42")
	assert.ErrorIs(t, err, crypto.ErrAuthentication)
}

func TestWrapPassword_Validation(t *testing.T) {
	w := newTestWrapper(t)

	_, err := w.WrapPassword("", "u-42")
	assert.ErrorIs(t, err, ErrEmptyPassword)

	_, err = w.WrapPassword("pw", "")
	assert.ErrorIs(t, err, ErrEmptyUserID)
}

// The wrapping key takes only the user id and the constant, and is cached in
// its own namespace of the key store.
func TestDeriveWrappingKey_CachedWithoutPassword(t *testing.T) {
	ctrl := gomock.NewController(t)
	engine := mock.NewMockEngine(ctrl)
	ks, _ := newTestKeyStore(t, engine)
	w := NewWrapper(engine, ks, testConstant)

	engine.EXPECT().
		DeriveKey("u-42", []byte(testConstant), crypto.DefaultIterations).
		Return(crypto.DerivedKey{}, nil).
		Times(1)

	for range 3 {
		_, err := w.DeriveWrappingKey("u-42")
		require.NoError(t, err)
	}

	assert.Contains(t, ks.wrapKeys, "userId-key:u-42")
	assert.Equal(t, 1, ks.CachedUsers())

	ks.ClearCache("u-42")
	assert.Empty(t, ks.wrapKeys)
}
