package gateway

import (
	"errors"
	"fmt"
)

// Error kinds the HTTP layer maps to status codes. Every stage of the
// request lifecycle either fully recovers or aborts with one of these.
var (
	// ErrValidation marks bad input, rejected before any network call.
	ErrValidation = errors.New("invalid request")

	// ErrUnauthorized marks operations that need a verified identity.
	ErrUnauthorized = errors.New("authentication required")

	// ErrProvider marks an unrecovered provider failure.
	ErrProvider = errors.New("provider failure")
)

var (
	errEmptyText   = fmt.Errorf("%w: text is empty", ErrValidation)
	errTextTooLong = fmt.Errorf("%w: text exceeds the maximum length", ErrValidation)
	errNoLanguage  = fmt.Errorf("%w: target language is required", ErrValidation)
)
