package client

import "errors"

var (
	ErrUsage                     = errors.New("usage: fieldcrypt [flags] <setup|recover|status|migrate|show> <user-id> [entity]")
	ErrUnknownCommand            = errors.New("unknown command")
	ErrUnknownEntity             = errors.New("unknown entity")
	ErrPasswordMismatch          = errors.New("passwords do not match")
	ErrPasswordAlreadyConfigured = errors.New("encryption password is already configured")
	ErrNilServices               = errors.New("services are not initialized")
)
