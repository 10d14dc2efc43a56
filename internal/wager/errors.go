package wager

import "errors"

var (
	ErrInvalidOutcome = errors.New("invalid_outcome")
	ErrInvalidRequest = errors.New("invalid_request")
)
