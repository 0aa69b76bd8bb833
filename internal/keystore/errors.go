package keystore

import "errors"

var (
	// ErrMalformedSalt is returned when the salt stored for a user does not
	// decode to any bytes. The salt is never regenerated in that case: doing
	// so would orphan every envelope written under the old one.
	ErrMalformedSalt = errors.New("stored salt is malformed")

	// ErrEmptyUserID is returned when an operation is called without a user id.
	ErrEmptyUserID = errors.New("empty user id")

	// ErrEmptyPassword is returned when an empty password is offered for
	// wrapping.
	ErrEmptyPassword = errors.New("empty password")
)
