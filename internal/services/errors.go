package services

import "errors"

// Error categories surfaced to the API layer. Handlers map these onto HTTP
// statuses with errors.Is; anything unwrapped is a 500.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrDispatch   = errors.New("dispatch failed")
)
