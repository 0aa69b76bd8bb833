package crypto

import (
	"crypto/rand"
	"fmt"
	"io"
)

// NewSalt returns SaltSize bytes from the OS CSPRNG.
func NewSalt() ([]byte, error) {
	return ReadSalt(rand.Reader)
}

// ReadSalt reads SaltSize bytes from r.
func ReadSalt(r io.Reader) ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(r, salt); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRandomSource, err)
	}
	return salt, nil
}
