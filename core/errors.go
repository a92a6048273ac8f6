package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidConnection indicates a Connection failed validation.
	ErrInvalidConnection = errors.New("invalid connection")

	// ErrInvalidPerson indicates a Person failed validation.
	ErrInvalidPerson = errors.New("invalid person")

	// ErrInvalidTimestamp indicates a timestamp is in the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")

	// ErrEmptyName indicates the name of a person is empty.
	ErrEmptyName = errors.New("name cannot be empty")

	// ErrMissingIdentity indicates neither a profile URL nor a name is available.
	ErrMissingIdentity = errors.New("connection has no identity key")

	// ErrInvalidDate indicates a date string could not be parsed.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidLength indicates an encoded collection length is out of range.
	ErrInvalidLength = errors.New("invalid encoded length")
)
