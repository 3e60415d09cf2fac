package service

import (
	"errors"
	"fmt"
)

// Issuance errors. Every internal failure is wrapped into one of these
// sentinels together with its cause, so callers have a single error
// surface to match with errors.Is regardless of which stage failed.
var (
	ErrUnknownClient        = errors.New("unknown_client")
	ErrInvalidRequest       = errors.New("invalid_request")
	ErrInvalidConfiguration = errors.New("invalid_configuration")
	ErrCodeGeneration       = errors.New("code_generation_failed")
	ErrPersistence          = errors.New("persistence_failed")
)

func wrapErr(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %w", sentinel, cause)
}
