package repository

import "errors"

var (
	ErrNotFound   = errors.New("record not found")
	ErrEmailTaken = errors.New("email has already been taken")
	// ErrConstraint is an integrity violation the service layer did not anticipate.
	ErrConstraint = errors.New("constraint violation")
)
