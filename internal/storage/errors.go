package storage

import "errors"

var (
	// ErrNotFound indicates the target record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail indicates an account with this email already exists.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrNotPending indicates a lifecycle decision hit an account that is no
	// longer pending, typically a concurrent decision on the same account.
	ErrNotPending = errors.New("account is not pending")
)
