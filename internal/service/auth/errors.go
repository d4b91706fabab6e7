package auth

import (
	"errors"
	"fmt"
)

// Token verification errors. Everything a bad token can produce wraps
// ErrInvalidToken so callers can treat the family uniformly.
var (
	// ErrInvalidToken is returned when a token is malformed, carries an
	// invalid signature, or its claims fail validation.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is returned when a token is past its expiry.
	ErrExpiredToken = fmt.Errorf("%w: expired", ErrInvalidToken)

	// ErrMissingClaims is returned when a structurally valid token lacks
	// the identity claims this system requires (email).
	ErrMissingClaims = fmt.Errorf("%w: missing required claims", ErrInvalidToken)
)
