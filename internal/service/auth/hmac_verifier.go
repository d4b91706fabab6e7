package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hermesapp/hermes-api/internal/platform/logger"
)

// hmacVerifier is a TokenVerifier for HMAC-SHA256 signed tokens.
type hmacVerifier struct {
	signingKey []byte
	clockSkew  time.Duration
	timeFunc   func() time.Time // injectable for tests
}

// identityTokenClaims is the wire shape of the identity token.
type identityTokenClaims struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Verified bool   `json:"verified"`
	Phone    string `json:"phone"`
	jwt.RegisteredClaims
}

// Ensure hmacVerifier implements TokenVerifier.
var _ TokenVerifier = (*hmacVerifier)(nil)

// NewTokenVerifier creates a TokenVerifier that checks HMAC-SHA256
// signatures with the given secret. The secret must be at least 32
// characters.
func NewTokenVerifier(secret string) (TokenVerifier, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("jwt secret must be at least 32 characters")
	}

	return &hmacVerifier{
		signingKey: []byte(secret),
		clockSkew:  2 * time.Minute,
		timeFunc:   time.Now,
	}, nil
}

// Verify checks the token signature and validity window and returns the
// identity claims.
func (v *hmacVerifier) Verify(ctx context.Context, tokenString string) (*IdentityClaims, error) {
	log := logger.FromContext(ctx)
	now := v.timeFunc()

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(v.clockSkew),
		jwt.WithTimeFunc(func() time.Time { return now }),
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&identityTokenClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return v.signingKey, nil
		},
		parserOpts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			log.Debug("identity token rejected: expired", "error", err)
			return nil, ErrExpiredToken
		}
		log.Debug("identity token rejected", "error", err)
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*identityTokenClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Email == "" {
		log.Debug("identity token rejected: no email claim")
		return nil, ErrMissingClaims
	}

	return &IdentityClaims{
		Email:    claims.Email,
		Name:     claims.Name,
		Verified: claims.Verified,
		Phone:    claims.Phone,
	}, nil
}
