// Package auth verifies the signed identity tokens presented by
// clients. The identity provider signs a small claim set over HMAC;
// this package checks the signature and surfaces the claims; user
// resolution belongs to the auth mediator.
package auth

import "context"

// IdentityClaims is the claim set carried by a verified identity token.
type IdentityClaims struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Verified bool   `json:"verified"`
	Phone    string `json:"phone"`
}

// TokenVerifier validates a signed bearer token and extracts its
// identity claims.
type TokenVerifier interface {
	// Verify checks the token's signature and validity window and
	// returns the decoded claims. Failures are ErrInvalidToken or one
	// of its refinements.
	Verify(ctx context.Context, token string) (*IdentityClaims, error)
}
