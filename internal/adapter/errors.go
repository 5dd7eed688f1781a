package adapter

import "errors"

var (
	ErrBadRequest          = errors.New("remote rejected request")
	ErrUnauthorized        = errors.New("remote unauthorized")
	ErrNotFound            = errors.New("remote resource not found")
	ErrConflict            = errors.New("remote reported conflict")
	ErrInternalServerError = errors.New("remote internal error")
)
