package services

import "errors"

// Failure classes surfaced to callers. Handlers map these onto HTTP statuses;
// everything else is an internal error.
var (
	ErrInputFormat = errors.New("invalid input format")
	ErrEmptyInput  = errors.New("input contains no data rows")
	ErrValidation  = errors.New("missing or invalid required fields")
	ErrGeneration  = errors.New("text generation failed")
	ErrRender      = errors.New("pdf rendering failed")
)
