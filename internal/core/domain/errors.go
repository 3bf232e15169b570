package domain

import "errors"

var (
	ErrUserExists         = errors.New("account already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrRequestNotFound    = errors.New("request not found")
	ErrForbidden          = errors.New("access forbidden")
	ErrInvalidRecord      = errors.New("record does not match schema")
	ErrDuplicateSubmit    = errors.New("form already submitted")
)
